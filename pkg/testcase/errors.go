package testcase

type err string

func (e err) Error() string {
	return string(e)
}

const (
	// ErrNilRunFunc occurs when a nil RunFunc is provided.
	ErrNilRunFunc = err("provided nil RunFunc")
	// ErrEmptyName occurs when a test case is created without a name.
	ErrEmptyName = err("test case name can't be empty")
)

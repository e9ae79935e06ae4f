package environment

type err string

func (e err) Error() string {
	return string(e)
}

const (
	// ErrNilFunctor occurs when a functor provider is created without a function.
	ErrNilFunctor = err("provided nil InfoFunctor")
	// ErrNilClient occurs when a kubernetes provider is created without a client.
	ErrNilClient = err("provided nil kubernetes client")
)

package types

// Status is the outcome of a report node.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
)

func (s Status) precedence() int {
	switch s {
	case StatusError:
		return 3
	case StatusFailed:
		return 2
	case StatusPassed:
		return 1
	default:
		return 0
	}
}

// Worst returns the status with the highest precedence:
// error > failed > passed > unknown.
func Worst(statuses ...Status) Status {
	worst := StatusUnknown
	for _, s := range statuses {
		if s.precedence() > worst.precedence() {
			worst = s
		}
	}
	return worst
}

// Counts holds the number of test cases per outcome.
type Counts struct {
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Error   int `json:"error" yaml:"error"`
	Unknown int `json:"unknown" yaml:"unknown"`
}

// Add adds a single status to the counts.
func (c *Counts) Add(s Status) {
	switch s {
	case StatusPassed:
		c.Passed++
	case StatusFailed:
		c.Failed++
	case StatusError:
		c.Error++
	default:
		c.Unknown++
	}
}

// Merge adds other counts to c.
func (c *Counts) Merge(other Counts) *Counts {
	c.Passed += other.Passed
	c.Failed += other.Failed
	c.Error += other.Error
	c.Unknown += other.Unknown
	return c
}

// Total returns the number of counted test cases.
func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Error + c.Unknown
}

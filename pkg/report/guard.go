package report

import (
	"fmt"
	"runtime/debug"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
)

// ErrorKind reports whether an error is of a kind a Guard should suppress.
type ErrorKind func(error) bool

// Is matches errors for which errors.Is(err, target) holds.
func Is(target error) ErrorKind {
	return func(err error) bool {
		return errors.Is(err, target)
	}
}

// As matches errors which have an error of type T in their chain.
func As[T error]() ErrorKind {
	return func(err error) bool {
		var t T
		return errors.As(err, &t)
	}
}

// PanicError wraps a value recovered from a panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value if it's an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Format prints the stack of the panic with %+v.
func (e *PanicError) Format(s fmt.State, verb rune) {
	switch {
	case verb == 'v' && s.Flag('+'):
		fmt.Fprintf(s, "%s\n\n%s", e.Error(), e.Stack)
	default:
		fmt.Fprint(s, e.Error())
	}
}

// Guard records errors and panics of accepted kinds into a report's logs and
// suppresses them. Other errors propagate unchanged, other panics propagate
// wrapped in a *PanicError.
//
// Basic usage:
//
//	func() (err error) {
//		defer rep.LoggedExceptions(report.Is(ErrTimeout)).Close(&err)
//		...
//	}()
type Guard struct {
	logger   logr.Logger
	kinds    []ErrorKind
	recorded []error
}

func newGuard(logger logr.Logger, kinds []ErrorKind) *Guard {
	return &Guard{
		logger: logger,
		kinds:  kinds,
	}
}

// Close inspects the outcome of the guarded scope and must be deferred directly.
// A matching panic is recovered and a matching error stored in *errp is
// cleared; both are recorded in the report's logs. Other panics continue as a
// *PanicError holding the original value and the stack of the panicking
// goroutine.
func (g *Guard) Close(errp *error) {
	if v := recover(); v != nil {
		err, ok := v.(*PanicError)
		if !ok {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
		if !g.accepts(err) {
			panic(err)
		}
		g.record(err)
		if errp != nil {
			*errp = nil
		}
		return
	}

	if errp == nil || *errp == nil {
		return
	}
	if g.accepts(*errp) {
		g.record(*errp)
		*errp = nil
	}
}

// Do runs f within the guarded scope.
func (g *Guard) Do(f func() error) (err error) {
	defer g.Close(&err)
	return f()
}

// Recorded returns the errors suppressed by the guard so far.
func (g *Guard) Recorded() []error {
	return g.recorded
}

func (g *Guard) accepts(err error) bool {
	if len(g.kinds) == 0 {
		return true
	}
	for _, k := range g.kinds {
		if k(err) {
			return true
		}
	}
	return false
}

func (g *Guard) record(err error) {
	g.recorded = append(g.recorded, err)
	g.logger.Error(err, err.Error())
}

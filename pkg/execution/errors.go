package execution

type err string

func (e err) Error() string {
	return string(e)
}

const (
	// ErrCoordinatorAlreadyStarted occurs when a coordinator has been already
	// started and it's attempted to be started again.
	ErrCoordinatorAlreadyStarted = err("coordinator already started")
	// ErrCantAddConsumersAfterStart occurs when consumers are tried to be added
	// after the coordinator has been already started.
	ErrCantAddConsumersAfterStart = err("can't add consumers after start")
	// ErrCoordinatorNotStarted occurs when triggering an execution on a
	// coordinator that hasn't been started.
	ErrCoordinatorNotStarted = err("coordinator not started")
	// ErrDuplicateSuite occurs when a suite with an already registered name is added.
	ErrDuplicateSuite = err("suite already added")
	// ErrNilSuiteProvided occurs when a nil Suite is provided.
	ErrNilSuiteProvided = err("provided nil Suite")
	// ErrNilCaseProvided occurs when a nil testcase.Case is provided.
	ErrNilCaseProvided = err("provided nil testcase.Case")
	// ErrNilSkeletonProvided occurs when a merger is created without a skeleton.
	ErrNilSkeletonProvided = err("provided nil skeleton report")
	// ErrInvalidConcurrency occurs when a non positive concurrency is configured.
	ErrInvalidConcurrency = err("concurrency has to be positive")
)

package report

type reportErr string

func (e reportErr) Error() string {
	return string(e)
}

const (
	// ErrIdentityMismatch occurs when merging reports whose uids differ.
	ErrIdentityMismatch = reportErr("report uids do not match")
	// ErrKindMismatch occurs when merging reports of different kinds, i.e.
	// a leaf into a group or groups of different categories.
	ErrKindMismatch = reportErr("report kinds do not match")
	// ErrDuplicateIdentity occurs when a child uid is already present in a group.
	ErrDuplicateIdentity = reportErr("duplicate child report uid")
	// ErrUnknownChild occurs when a merged in report contains a child that the
	// receiving group doesn't have.
	ErrUnknownChild = reportErr("child report not found")
	// ErrLookupMiss occurs when looking up a child uid that's not in a group.
	ErrLookupMiss = reportErr("no child report with uid")
	// ErrNilNode occurs when a nil report is provided where a report is required.
	ErrNilNode = reportErr("provided nil report")
	// ErrInvalidOption occurs when a construction option doesn't apply to the
	// constructed report kind.
	ErrInvalidOption = reportErr("invalid report option")
)

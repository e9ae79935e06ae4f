package report

import (
	"fmt"
	"reflect"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kong/kubernetes-testreport/pkg/types"
)

// Category distinguishes report kinds sharing the same structure, e.g. a suite
// group from a multitest group. Merges require matching categories.
type Category string

const (
	CategoryReport    Category = "report"
	CategoryTestCase  Category = "testcase"
	CategoryGroup     Category = "group"
	CategorySuite     Category = "suite"
	CategoryMultiTest Category = "multitest"
	CategoryPlan      Category = "plan"
)

// Node is a unit of the report tree: either a leaf *Report holding opaque
// entries or a *Group holding other nodes.
//
// Nodes are not safe for concurrent use. A node has a single owner at a time:
// the worker building it and, once handed off, the coordinator merging it.
type Node interface {
	Name() string
	Description() string
	UID() types.UID
	Category() Category
	// Logs returns the node's log records. The returned slice must not be
	// modified.
	Logs() []types.LogRecord
	// Logger returns a logger whose records are appended to the node's logs.
	Logger() logr.Logger
	// LoggedExceptions returns a guard recording and suppressing errors of the
	// provided kinds (any error if none are given) into the node's logs.
	LoggedExceptions(kinds ...ErrorKind) *Guard
	Status() types.Status
	Counts() types.Counts
	// Merge merges other, which must have the same uid and kind, into the node.
	// Merging is idempotent. On error the node is left unchanged.
	Merge(other Node, strict bool) error
	// Clone returns a deep copy of the node preserving uids.
	Clone() Node
	Equal(other Node) bool
	String() string

	checkMerge(other Node, strict bool) error
	merge(other Node, strict bool)
	filter(preds []Predicate)
	flattenedEntries(depth int) []FlatItem
}

// Item is a single element of a report tree: either a Node or an opaque entry
// of a leaf report.
type Item struct {
	Node  Node
	Entry *types.Entry
}

// IsNode reports whether the item holds a report node.
func (i Item) IsNode() bool {
	return i.Node != nil
}

// FlatItem is an Item annotated with its depth in the tree.
type FlatItem struct {
	Depth int
	Item
}

// Option configures a report upon creation.
type Option func(*options)

type options struct {
	uid         types.UID
	description string
	category    Category
	entries     []types.Entry
	children    []Node
	delegate    logr.Logger
	timer       types.Timer
}

// WithUID sets the report uid. Reports get a random uid otherwise.
func WithUID(uid types.UID) Option {
	return func(o *options) {
		o.uid = uid
	}
}

// WithDescription sets the report description.
func WithDescription(description string) Option {
	return func(o *options) {
		o.description = description
	}
}

// WithCategory sets the report category.
func WithCategory(c Category) Option {
	return func(o *options) {
		o.category = c
	}
}

// WithEntries sets the initial entries of a leaf report.
func WithEntries(entries ...types.Entry) Option {
	return func(o *options) {
		o.entries = append(o.entries, entries...)
	}
}

// WithChildren sets the initial children of a group.
func WithChildren(children ...Node) Option {
	return func(o *options) {
		o.children = append(o.children, children...)
	}
}

// WithTimer sets the timer of a leaf report.
func WithTimer(t types.Timer) Option {
	return func(o *options) {
		o.timer = t
	}
}

// WithDelegateLogger makes the report logger forward its records to l as well.
func WithDelegateLogger(l logr.Logger) Option {
	return func(o *options) {
		o.delegate = l
	}
}

func newOptions(defaultCategory Category, opts []Option) options {
	o := options{category: defaultCategory}
	for _, opt := range opts {
		opt(&o)
	}
	if o.uid == "" {
		o.uid = types.NewUID()
	}
	return o
}

// base holds what leaf reports and groups have in common.
type base struct {
	name        string
	description string
	uid         types.UID
	category    Category
	logs        []types.LogRecord
	delegate    logr.Logger
}

func newBase(name string, o options) base {
	return base{
		name:        name,
		description: o.description,
		uid:         o.uid,
		category:    o.category,
		delegate:    o.delegate,
	}
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Description() string {
	return b.description
}

func (b *base) UID() types.UID {
	return b.uid
}

func (b *base) Category() Category {
	return b.category
}

func (b *base) Logs() []types.LogRecord {
	return b.logs
}

func (b *base) Logger() logr.Logger {
	return logr.New(newRecorder(b))
}

func (b *base) LoggedExceptions(kinds ...ErrorKind) *Guard {
	return newGuard(b.Logger(), kinds)
}

// hasErrorLogs reports whether any error (or more severe) record was logged.
func (b *base) hasErrorLogs() bool {
	for _, rec := range b.logs {
		if rec.Level <= logrus.ErrorLevel {
			return true
		}
	}
	return false
}

// mergeLogs appends records of other that aren't present yet, keeping their
// relative order.
func (b *base) mergeLogs(other *base) {
	seen := make(map[types.UID]struct{}, len(b.logs))
	for _, rec := range b.logs {
		seen[rec.UID] = struct{}{}
	}
	for _, rec := range other.logs {
		if _, ok := seen[rec.UID]; ok {
			continue
		}
		seen[rec.UID] = struct{}{}
		b.logs = append(b.logs, rec.Clone())
	}
}

func (b *base) clone() base {
	c := *b
	c.logs = cloneLogs(b.logs)
	return c
}

func (b *base) equal(other *base) bool {
	if b.name != other.name ||
		b.description != other.description ||
		b.uid != other.uid ||
		b.category != other.category ||
		len(b.logs) != len(other.logs) {
		return false
	}
	for i := range b.logs {
		if !b.logs[i].Equal(other.logs[i]) {
			return false
		}
	}
	return true
}

func cloneLogs(logs []types.LogRecord) []types.LogRecord {
	if logs == nil {
		return nil
	}
	out := make([]types.LogRecord, len(logs))
	for i := range logs {
		out[i] = logs[i].Clone()
	}
	return out
}

func describe(kind string, b *base) string {
	return fmt.Sprintf("%s[%s](name=%q, uid=%q)", kind, b.category, b.name, b.uid)
}

// IsNil reports whether n is nil or a nil pointer to a node.
func IsNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// checkNode verifies that other can be merged onto self.
func checkNode(self, other Node) error {
	if IsNil(other) {
		return errors.Wrapf(ErrNilNode, "cannot merge onto %s", self)
	}
	if self.UID() != other.UID() {
		return errors.Wrapf(ErrIdentityMismatch,
			"report check failed for %s and %s: uids (%s, %s)",
			self, other, self.UID(), other.UID(),
		)
	}
	// Exact type match is required, categories separate sub kinds.
	if reflect.TypeOf(self) != reflect.TypeOf(other) || self.Category() != other.Category() {
		return errors.Wrapf(ErrKindMismatch,
			"report check failed for %s and %s: kinds (%T/%s, %T/%s)",
			self, other, self, self.Category(), other, other.Category(),
		)
	}
	return nil
}

package report

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/kong/kubernetes-testreport/pkg/types"
)

// Group is a report node whose entries are other report nodes. It keeps an
// index of its children by uid, consistent with its entries after every
// mutating operation.
type Group struct {
	base
	entries []Node
	index   map[types.UID]Node
}

var _ Node = (*Group)(nil)

// NewGroup creates a new group. Initial children must have distinct uids.
func NewGroup(name string, opts ...Option) (*Group, error) {
	o := newOptions(CategoryGroup, opts)
	if len(o.entries) > 0 {
		return nil, errors.Wrapf(ErrInvalidOption, "group %q can only hold child reports", name)
	}
	g := &Group{
		base:  newBase(name, o),
		index: map[types.UID]Node{},
	}
	if err := g.SetEntries(o.children); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Group) String() string {
	return describe("Group", &g.base)
}

// Entries returns a copy of the group's children.
func (g *Group) Entries() []Node {
	return append([]Node(nil), g.entries...)
}

// Len returns the number of children.
func (g *Group) Len() int {
	return len(g.entries)
}

// Append appends a child report. It fails if the child is nil or its uid is
// already present in the group, leaving the group unchanged.
func (g *Group) Append(n Node) error {
	if IsNil(n) {
		return errors.Wrapf(ErrNilNode, "cannot append to %s", g)
	}
	if _, ok := g.index[n.UID()]; ok {
		return errors.Wrapf(ErrDuplicateIdentity, "child report with uid %s already exists in %s", n.UID(), g)
	}
	g.index[n.UID()] = n
	g.entries = append(g.entries, n)
	return nil
}

// Extend appends children one by one. Children appended before a failing one
// are kept.
func (g *Group) Extend(nodes ...Node) error {
	for _, n := range nodes {
		if err := g.Append(n); err != nil {
			return err
		}
	}
	return nil
}

// SetEntries replaces the group's children and rebuilds the index. On error the
// previous children are restored.
func (g *Group) SetEntries(nodes []Node) error {
	for _, n := range nodes {
		if IsNil(n) {
			return errors.Wrapf(ErrNilNode, "cannot set entries of %s", g)
		}
	}
	prev := g.entries
	g.entries = append([]Node(nil), nodes...)
	if err := g.BuildIndex(false); err != nil {
		g.entries = prev
		return err
	}
	return nil
}

// BuildIndex rebuilds the uid index from the group's children and, if
// recursive, the indexes of all descendant groups.
func (g *Group) BuildIndex(recursive bool) error {
	index := make(map[types.UID]Node, len(g.entries))
	var dupes []string
	for _, child := range g.entries {
		if _, ok := index[child.UID()]; ok {
			dupes = append(dupes, child.UID().String())
			continue
		}
		index[child.UID()] = child
	}
	if len(dupes) > 0 {
		sort.Strings(dupes)
		return errors.Wrapf(ErrDuplicateIdentity, "cannot build index of %s with duplicate uids %v", g, dupes)
	}
	g.index = index

	if recursive {
		for _, child := range g.entries {
			if cg, ok := child.(*Group); ok {
				if err := cg.BuildIndex(true); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// GetByUID returns the child report with the given uid.
func (g *Group) GetByUID(uid types.UID) (Node, error) {
	n, ok := g.index[uid]
	if !ok {
		return nil, errors.Wrapf(ErrLookupMiss, "%s in %s", uid, g)
	}
	return n, nil
}

// Status returns the worst status among the group's children, or error if an
// error was logged on the group itself.
func (g *Group) Status() types.Status {
	if g.hasErrorLogs() {
		return types.StatusError
	}
	statuses := make([]types.Status, 0, len(g.entries))
	for _, child := range g.entries {
		statuses = append(statuses, child.Status())
	}
	return types.Worst(statuses...)
}

// Counts sums the counts of all leaf reports below the group.
func (g *Group) Counts() types.Counts {
	var c types.Counts
	for _, child := range g.entries {
		c.Merge(child.Counts())
	}
	return c
}

// Merge merges other onto g: children of other are merged recursively into
// g's children with the same uid, then logs are merged. Merging never adds
// children. In strict mode children unknown to g fail the merge, otherwise
// they are skipped. The whole merge is validated before g is modified.
func (g *Group) Merge(other Node, strict bool) error {
	if err := g.checkMerge(other, strict); err != nil {
		return err
	}
	g.merge(other, strict)
	return nil
}

// MergeChildren merges each child of other into g's child with the same uid
// without touching g's own logs.
func (g *Group) MergeChildren(other *Group, strict bool) error {
	if other == nil {
		return errors.Wrapf(ErrNilNode, "cannot merge children onto %s", g)
	}
	if err := g.checkChildren(other, strict); err != nil {
		return err
	}
	g.mergeChildren(other, strict)
	return nil
}

// UnknownChildren returns the uids of other's descendants which have no
// counterpart in g. These are the nodes a non strict merge skips.
func (g *Group) UnknownChildren(other *Group) []types.UID {
	if other == nil {
		return nil
	}
	var out []types.UID
	for _, child := range other.entries {
		own, ok := g.index[child.UID()]
		if !ok {
			out = append(out, child.UID())
			continue
		}
		og, ok := own.(*Group)
		cg, cok := child.(*Group)
		if ok && cok {
			out = append(out, og.UnknownChildren(cg)...)
		}
	}
	return out
}

func (g *Group) checkMerge(other Node, strict bool) error {
	if err := checkNode(g, other); err != nil {
		return err
	}
	return g.checkChildren(other.(*Group), strict)
}

func (g *Group) checkChildren(other *Group, strict bool) error {
	for _, child := range other.entries {
		own, ok := g.index[child.UID()]
		if !ok {
			if !strict {
				continue
			}
			return errors.Wrapf(ErrUnknownChild,
				"cannot merge %s onto %s, child report with uid %s",
				other, g, child.UID(),
			)
		}
		if err := own.checkMerge(child, strict); err != nil {
			return err
		}
	}
	return nil
}

func (g *Group) merge(other Node, strict bool) {
	o := other.(*Group)
	g.mergeChildren(o, strict)
	g.mergeLogs(&o.base)
}

func (g *Group) mergeChildren(other *Group, strict bool) {
	for _, child := range other.entries {
		if own, ok := g.index[child.UID()]; ok {
			own.merge(child, strict)
		}
	}
}

// Filter returns a copy of the group keeping children matched by at least one
// of the predicates. Kept children are filtered recursively and kept even if
// none of their own entries match.
func (g *Group) Filter(preds ...Predicate) (*Group, error) {
	c := g.clone()
	c.filter(preds)
	if err := c.BuildIndex(true); err != nil {
		return nil, err
	}
	return c, nil
}

// FilterInPlace is Filter without copying.
func (g *Group) FilterInPlace(preds ...Predicate) error {
	g.filter(preds)
	return g.BuildIndex(true)
}

func (g *Group) filter(preds []Predicate) {
	var kept []Node
	for _, child := range g.entries {
		if matchAny(preds, Item{Node: child}) {
			child.filter(preds)
			kept = append(kept, child)
		}
	}
	g.entries = kept
}

// Flatten traverses the tree depth first, left to right, starting with g.
// Entries of leaf reports follow their report.
func (g *Group) Flatten() []Item {
	flat := g.FlattenWithDepths()
	out := make([]Item, len(flat))
	for i := range flat {
		out[i] = flat[i].Item
	}
	return out
}

// FlattenWithDepths is Flatten with each item's depth, g being at depth 0.
func (g *Group) FlattenWithDepths() []FlatItem {
	return g.flatten(0)
}

func (g *Group) flatten(depth int) []FlatItem {
	out := []FlatItem{{Depth: depth, Item: Item{Node: g}}}
	out = append(out, g.flattenedEntries(depth+1)...)
	return out
}

func (g *Group) flattenedEntries(depth int) []FlatItem {
	var out []FlatItem
	for _, child := range g.entries {
		if cg, ok := child.(*Group); ok {
			out = append(out, cg.flatten(depth)...)
			continue
		}
		out = append(out, FlatItem{Depth: depth, Item: Item{Node: child}})
		out = append(out, child.flattenedEntries(depth+1)...)
	}
	return out
}

// FlattenedLogs returns the logs of every report in the tree, in Flatten order.
func (g *Group) FlattenedLogs() []types.LogRecord {
	var logs []types.LogRecord
	for _, item := range g.Flatten() {
		if item.IsNode() {
			logs = append(logs, item.Node.Logs()...)
		}
	}
	return logs
}

// Clone returns a deep copy of the group.
func (g *Group) Clone() Node {
	return g.clone()
}

func (g *Group) clone() *Group {
	c := &Group{
		base:  g.base.clone(),
		index: make(map[types.UID]Node, len(g.entries)),
	}
	if g.entries != nil {
		c.entries = make([]Node, 0, len(g.entries))
	}
	for _, child := range g.entries {
		cc := child.Clone()
		c.entries = append(c.entries, cc)
		c.index[cc.UID()] = cc
	}
	return c
}

// Equal reports whether other is a group with the same name, description,
// uid, category and logs whose children are equal to g's.
func (g *Group) Equal(other Node) bool {
	o, ok := other.(*Group)
	if !ok || o == nil {
		return false
	}
	if !g.base.equal(&o.base) || len(g.entries) != len(o.entries) {
		return false
	}
	for i := range g.entries {
		if !g.entries[i].Equal(o.entries[i]) {
			return false
		}
	}
	return true
}

package report

import "github.com/kong/kubernetes-testreport/pkg/types"

// Predicate decides whether an item is kept by Filter.
type Predicate func(Item) bool

func matchAny(preds []Predicate, item Item) bool {
	for _, p := range preds {
		if p(item) {
			return true
		}
	}
	return false
}

// Nodes matches every report node.
func Nodes() Predicate {
	return func(i Item) bool {
		return i.IsNode()
	}
}

// ByCategory matches report nodes of the given categories.
func ByCategory(categories ...Category) Predicate {
	return func(i Item) bool {
		if !i.IsNode() {
			return false
		}
		for _, c := range categories {
			if i.Node.Category() == c {
				return true
			}
		}
		return false
	}
}

// ByUID matches report nodes with one of the given uids.
func ByUID(uids ...types.UID) Predicate {
	set := make(map[types.UID]struct{}, len(uids))
	for _, uid := range uids {
		set[uid] = struct{}{}
	}
	return func(i Item) bool {
		if !i.IsNode() {
			return false
		}
		_, ok := set[i.Node.UID()]
		return ok
	}
}

// ByStatus matches report nodes with one of the given statuses.
func ByStatus(statuses ...types.Status) Predicate {
	return func(i Item) bool {
		if !i.IsNode() {
			return false
		}
		s := i.Node.Status()
		for _, status := range statuses {
			if s == status {
				return true
			}
		}
		return false
	}
}

// Entries matches entries for which f returns true.
func Entries(f func(types.Entry) bool) Predicate {
	return func(i Item) bool {
		return i.Entry != nil && f(*i.Entry)
	}
}

// FailedEntries matches entries that didn't pass.
func FailedEntries() Predicate {
	return Entries(func(e types.Entry) bool {
		return !e.Passed
	})
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(i Item) bool {
		return !p(i)
	}
}

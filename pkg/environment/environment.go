package environment

import (
	"context"
	"fmt"
	"sort"
)

// Kind presents provider's kind.
type Kind string

// Info holds facts about the environment a test plan runs in.
type Info map[string]any

// Merge merges the info with a different info overriding already existing
// entries if there's a collision.
func (i *Info) Merge(other Info) *Info {
	if *i == nil {
		*i = Info{}
	}
	for k, v := range other {
		(*i)[k] = v
	}
	return i
}

// KeysAndValues returns the info as a logr key value list, ordered by key.
func (i Info) KeysAndValues() []any {
	keys := make([]string, 0, len(i))
	for k := range i {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, i[k])
	}
	return kv
}

// Provider defines how an environment info provider can be used.
type Provider interface {
	Name() string
	Kind() Kind
	Provide(context.Context) (Info, error)
}

type base struct {
	kind Kind
	name string
}

func (pb base) Name() string {
	return pb.name
}

func (pb base) Kind() Kind {
	return pb.kind
}

func (pb base) WrapError(err error) error {
	return fmt.Errorf("%s/%s: %w", pb.Kind(), pb.Name(), err)
}

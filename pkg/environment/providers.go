package environment

import (
	"context"
	"os"
)

const (
	// HostnameKey is the info key under which one can find the hostname.
	HostnameKey = "hostname"
)

type fixedValue struct {
	data Info
	base
}

var _ Provider = (*fixedValue)(nil)

// NewFixedValueProvider creates fixed value provider which upon calling Provide
// will always provide the same info.
func NewFixedValueProvider(name string, data Info) (Provider, error) {
	return fixedValue{
		data: data,
		base: base{
			name: name,
			kind: "constant",
		},
	}, nil
}

func (p fixedValue) Provide(context.Context) (Info, error) {
	out := make(Info, len(p.data))
	return *out.Merge(p.data), nil
}

// InfoFunctor defines a function type that functor provider accepts as means
// for delivering environment info.
type InfoFunctor func(context.Context) (Info, error)

type functor struct {
	f InfoFunctor
	base
}

var _ Provider = (*functor)(nil)

// NewFunctorProvider creates a new functor provider that allows to define one's
// own retrieval logic by providing an InfoFunctor as parameter.
func NewFunctorProvider(name string, f InfoFunctor) (Provider, error) {
	if f == nil {
		return nil, ErrNilFunctor
	}
	return &functor{
		f: f,
		base: base{
			name: name,
			kind: "functor",
		},
	}, nil
}

// Provide returns the Info as returned by the configured functor.
func (p *functor) Provide(ctx context.Context) (Info, error) {
	info, err := p.f(ctx)
	if err != nil {
		return nil, p.WrapError(err)
	}
	return info, nil
}

// NewHostnameProvider creates hostname provider.
func NewHostnameProvider(name string) (Provider, error) {
	return &functor{
		f: func(context.Context) (Info, error) {
			hostname, err := os.Hostname()
			if err != nil {
				return nil, err
			}
			return Info{
				HostnameKey: hostname,
			}, nil
		},
		base: base{
			name: name,
			kind: "hostname",
		},
	}, nil
}

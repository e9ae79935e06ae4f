package testcase

import "fmt"

type base struct {
	kind Kind
	name string
}

func (cb base) Name() string {
	return cb.name
}

func (cb base) Kind() Kind {
	return cb.kind
}

func (cb base) WrapError(err error) error {
	return fmt.Errorf("%s/%s: %w", cb.Kind(), cb.Name(), err)
}

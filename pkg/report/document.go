package report

import (
	"github.com/pkg/errors"

	"github.com/kong/kubernetes-testreport/pkg/types"
)

// DocumentKind tells leaf and group documents apart.
type DocumentKind string

const (
	DocumentKindReport DocumentKind = "report"
	DocumentKindGroup  DocumentKind = "group"
)

// Document is the plain data form of a report tree used by serializers.
type Document struct {
	Kind        DocumentKind      `json:"kind" yaml:"kind"`
	Category    Category          `json:"category" yaml:"category"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	UID         types.UID         `json:"uid" yaml:"uid"`
	Status      types.Status      `json:"status" yaml:"status"`
	Timer       *types.Timer      `json:"timer,omitempty" yaml:"timer,omitempty"`
	Logs        []types.LogRecord `json:"logs,omitempty" yaml:"logs,omitempty"`
	Entries     []types.Entry     `json:"entries,omitempty" yaml:"entries,omitempty"`
	Children    []Document        `json:"children,omitempty" yaml:"children,omitempty"`
}

// ToDocument converts a report tree into its document form.
func ToDocument(n Node) Document {
	d := Document{
		Category:    n.Category(),
		Name:        n.Name(),
		Description: n.Description(),
		UID:         n.UID(),
		Status:      n.Status(),
		Logs:        cloneLogs(n.Logs()),
	}

	switch nn := n.(type) {
	case *Group:
		d.Kind = DocumentKindGroup
		for _, child := range nn.entries {
			d.Children = append(d.Children, ToDocument(child))
		}
	case *Report:
		d.Kind = DocumentKindReport
		d.Entries = cloneEntries(nn.entries)
		if t := nn.timer; !t.Start.IsZero() || !t.End.IsZero() {
			d.Timer = &t
		}
	}
	return d
}

// FromDocument rebuilds a report tree from its document form. Group indexes
// are rebuilt so duplicate child uids are rejected.
func FromDocument(d Document) (Node, error) {
	if d.UID == "" {
		return nil, errors.Errorf("document %q has no uid", d.Name)
	}
	opts := []Option{
		WithUID(d.UID),
		WithDescription(d.Description),
	}
	if d.Category != "" {
		opts = append(opts, WithCategory(d.Category))
	}

	switch d.Kind {
	case DocumentKindGroup:
		if len(d.Entries) > 0 {
			return nil, errors.Wrapf(ErrInvalidOption, "group document %q has entries", d.Name)
		}
		children := make([]Node, 0, len(d.Children))
		for _, cd := range d.Children {
			child, err := FromDocument(cd)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		g, err := NewGroup(d.Name, append(opts, WithChildren(children...))...)
		if err != nil {
			return nil, err
		}
		g.logs = cloneLogs(d.Logs)
		return g, nil

	case DocumentKindReport:
		if len(d.Children) > 0 {
			return nil, errors.Wrapf(ErrInvalidOption, "report document %q has children", d.Name)
		}
		if d.Timer != nil {
			opts = append(opts, WithTimer(*d.Timer))
		}
		r, err := NewReport(d.Name, append(opts, WithEntries(cloneEntries(d.Entries)...))...)
		if err != nil {
			return nil, err
		}
		r.logs = cloneLogs(d.Logs)
		return r, nil

	default:
		return nil, errors.Errorf("document %q has unknown kind %q", d.Name, d.Kind)
	}
}

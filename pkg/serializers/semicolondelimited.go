package serializers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kong/kubernetes-testreport/pkg/report"
)

type semicolonDelimited struct {
	signal string
}

// NewSemicolonDelimited creates a new serializer that will serialize report
// trees into a semicolon delimited summary.
func NewSemicolonDelimited(signal string) semicolonDelimited {
	return semicolonDelimited{
		signal: signal,
	}
}

func (s semicolonDelimited) Serialize(n report.Node) ([]byte, error) {
	if report.IsNil(n) {
		return nil, report.ErrNilNode
	}

	c := n.Counts()
	out := []string{
		fmt.Sprintf("name=%s;", n.Name()),
		fmt.Sprintf("passed=%d;", c.Passed),
		fmt.Sprintf("failed=%d;", c.Failed),
		fmt.Sprintf("error=%d;", c.Error),
		fmt.Sprintf("status=%s;", n.Status()),
	}

	if g, ok := n.(*report.Group); ok {
		children := make([]string, 0, g.Len())
		for _, child := range g.Entries() {
			children = append(children, fmt.Sprintf("%s:%s=%s;", child.Category(), child.Name(), child.Status()))
		}
		sort.Strings(children)
		out = append(out, children...)
	}

	prefix := "<14>signal=" + s.signal + ";"
	return []byte(prefix + strings.Join(out, "") + "\n"), nil
}

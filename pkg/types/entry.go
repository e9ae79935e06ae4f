package types

import "reflect"

// EntryType is the tag of an assertion entry. Exporters dispatch on it.
type EntryType string

const (
	EntryTypeLog          EntryType = "Log"
	EntryTypeEqual        EntryType = "Equal"
	EntryTypeNotEqual     EntryType = "NotEqual"
	EntryTypeLess         EntryType = "Less"
	EntryTypeGreater      EntryType = "Greater"
	EntryTypeContain      EntryType = "Contain"
	EntryTypeRegexMatch   EntryType = "RegexMatch"
	EntryTypeRaises       EntryType = "ExceptionRaised"
	EntryTypeGroup        EntryType = "Group"
	EntryTypeFail         EntryType = "Fail"
	EntryTypeTableMatch   EntryType = "TableMatch"
	EntryTypeDictMatch    EntryType = "DictMatch"
	EntryTypeFixMatch     EntryType = "FixMatch"
	EntryTypeIsClose      EntryType = "IsClose"
	EntryTypeGreaterEqual EntryType = "GreaterEqual"
	EntryTypeLessEqual    EntryType = "LessEqual"
)

// Payload holds the type specific data of an entry. The report core never
// looks into it.
type Payload map[string]any

// Merge merges the payload with a different payload overriding already
// existing keys if there's a collision.
func (p *Payload) Merge(other Payload) *Payload {
	if *p == nil {
		*p = Payload{}
	}
	for k, v := range other {
		(*p)[k] = v
	}
	return p
}

// Clone returns a deep copy of the payload. Nested maps and slices are copied,
// any other value is shared.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Equal reports whether both payloads hold the same data. Scalars compare by
// value regardless of their Go type and slices compare element wise, so a
// payload equals itself after a round trip through JSON or YAML. Empty and nil
// payloads are equal.
func (p Payload) Equal(other Payload) bool {
	return reflect.DeepEqual(normalizeValue(map[string]any(p)), normalizeValue(map[string]any(other)))
}

func normalizeValue(v any) any {
	switch vv := v.(type) {
	case nil:
		return nil
	case Payload:
		return normalizeValue(map[string]any(vv))
	case map[string]any:
		if len(vv) == 0 {
			return nil
		}
		out := make(map[string]any, len(vv))
		for k, e := range vv {
			out[k] = normalizeValue(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalizeValue(rv.Index(i).Interface())
		}
		return out
	default:
		return v
	}
}

func cloneValue(v any) any {
	switch vv := v.(type) {
	case Payload:
		return vv.Clone()
	case map[string]any:
		return map[string]any(Payload(vv).Clone())
	case []any:
		out := make([]any, len(vv))
		for i := range vv {
			out[i] = cloneValue(vv[i])
		}
		return out
	case []string:
		return append([]string(nil), vv...)
	default:
		return v
	}
}

// Entry is a serialized assertion record produced by the assertion layer.
type Entry struct {
	Type        EntryType `json:"type" yaml:"type"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Passed      bool      `json:"passed" yaml:"passed"`
	Payload     Payload   `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// NewAssertion creates an assertion entry of the given type. Payload parts are
// merged in order.
func NewAssertion(t EntryType, description string, passed bool, parts ...Payload) Entry {
	e := Entry{
		Type:        t,
		Description: description,
		Passed:      passed,
	}
	for _, part := range parts {
		e.Payload.Merge(part)
	}
	return e
}

// NewLogEntry creates a log entry, which always passes.
func NewLogEntry(message string) Entry {
	return Entry{
		Type:        EntryTypeLog,
		Description: message,
		Passed:      true,
	}
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	e.Payload = e.Payload.Clone()
	return e
}

// Title is what exporters show for the entry: its description or, if empty,
// its type.
func (e Entry) Title() string {
	if e.Description != "" {
		return e.Description
	}
	return string(e.Type)
}

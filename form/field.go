// Package form implements a section-gated form state machine.
//
// A Schema declares the fields of a form, the ordered validation rules of each
// section and the side effects applied when a governing field changes. A
// Machine holds the values of one form instance and moves between sections,
// refusing to advance past a section whose rules fail.
package form

type FieldID int

// NoField marks the absence of a field, e.g. a transition without focus.
const NoField FieldID = -1

type Kind int

const (
	KindText Kind = iota
	KindBool
)

type Field struct {
	Name  string
	Label string
	Kind  Kind
}

type Value struct {
	Text    string `json:"text,omitempty"`
	Checked bool   `json:"checked,omitempty"`
}

func Text(s string) Value { return Value{Text: s} }

func Bool(b bool) Value { return Value{Checked: b} }

// Values is indexed by FieldID.
type Values []Value

func (v Values) Get(id FieldID) Value {
	if id < 0 || int(id) >= len(v) {
		return Value{}
	}
	return v[id]
}

func (v Values) clone() Values {
	out := make(Values, len(v))
	copy(out, v)
	return out
}

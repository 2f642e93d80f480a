package form

import (
	"errors"
	"fmt"
)

var (
	ErrSectionBlocked   = errors.New("form: section has invalid fields")
	ErrJumpAhead        = errors.New("form: cannot jump past the current section")
	ErrSectionRange     = errors.New("form: section index out of range")
	ErrUnknownField     = errors.New("form: unknown field")
	ErrSubmitInProgress = errors.New("form: submission already in progress")
	ErrAlreadySubmitted = errors.New("form: form already submitted")
	ErrSubmissionFailed = errors.New("form: submission failed")
)

// FieldErrors holds at most one message per field of a schema. Only failing
// fields have a message.
type FieldErrors struct {
	msgs []string
}

func newFieldErrors(n int) FieldErrors {
	return FieldErrors{msgs: make([]string, n)}
}

func (e *FieldErrors) set(id FieldID, msg string) {
	if id >= 0 && int(id) < len(e.msgs) {
		e.msgs[id] = msg
	}
}

func (e *FieldErrors) clear(id FieldID) {
	e.set(id, "")
}

func (e FieldErrors) Get(id FieldID) (string, bool) {
	if id < 0 || int(id) >= len(e.msgs) || e.msgs[id] == "" {
		return "", false
	}
	return e.msgs[id], true
}

func (e FieldErrors) Len() int {
	n := 0
	for _, m := range e.msgs {
		if m != "" {
			n++
		}
	}
	return n
}

// Fields lists failing fields in FieldID order.
func (e FieldErrors) Fields() []FieldID {
	var out []FieldID
	for i, m := range e.msgs {
		if m != "" {
			out = append(out, FieldID(i))
		}
	}
	return out
}

func (e FieldErrors) clone() FieldErrors {
	out := FieldErrors{msgs: make([]string, len(e.msgs))}
	copy(out.msgs, e.msgs)
	return out
}

// SectionBlockedError reports a refused transition. Errors holds every
// failure that caused it, Focus the field that should receive input focus.
type SectionBlockedError struct {
	Section int
	Focus   FieldID
	Errors  FieldErrors
}

func (e *SectionBlockedError) Error() string {
	return fmt.Sprintf("form: section %d blocked by %d invalid field(s)", e.Section, e.Errors.Len())
}

func (e *SectionBlockedError) Unwrap() error { return ErrSectionBlocked }

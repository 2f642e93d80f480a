package form

import (
	"fmt"

	"loan-referral/domain"
)

// Snapshot is the serializable state of a Machine. Fields are keyed by name
// so stored snapshots survive reordering of a schema.
type Snapshot struct {
	Values  map[string]Value        `json:"values"`
	Errors  map[string]string       `json:"errors,omitempty"`
	Section int                     `json:"section"`
	Status  domain.SubmissionStatus `json:"status"`
	Reason  string                  `json:"reason,omitempty"`
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	values := make(map[string]Value, len(m.values))
	for i, v := range m.values {
		if v != (Value{}) {
			values[m.schema.fields[i].Name] = v
		}
	}
	return Snapshot{
		Values:  values,
		Errors:  m.schema.ErrorMap(m.errors),
		Section: m.section,
		Status:  m.status,
		Reason:  m.reason,
	}
}

// Restore rebuilds a Machine from snap. A snapshot taken mid-submission is
// restored as failed, since the submission it describes can no longer report.
func Restore(schema *Schema, snap Snapshot, opts ...Option) (*Machine, error) {
	if snap.Section < 0 || snap.Section >= schema.NumSections() {
		return nil, fmt.Errorf("%w: %d", ErrSectionRange, snap.Section)
	}

	m := NewMachine(schema, opts...)
	for name, v := range snap.Values {
		id, ok := schema.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		m.values[id] = v
	}
	for name, msg := range snap.Errors {
		id, ok := schema.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		m.errors.set(id, msg)
	}
	m.section = snap.Section
	m.status = snap.Status
	m.reason = snap.Reason
	if m.status == domain.StatusSubmitting {
		m.status = domain.StatusFailed
		m.reason = "submission interrupted"
	}
	return m, nil
}

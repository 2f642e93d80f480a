package form

import (
	"errors"
	"fmt"
)

type Section struct {
	Title string
	Rules []FieldRule
}

// Schema is immutable once built and safe to share between machines.
type Schema struct {
	fields   []Field
	byName   map[string]FieldID
	sections []Section
	owner    []int
	clears   []ClearRule
}

// NewSchema validates the declaration. fields[i] is the field with FieldID i.
func NewSchema(fields []Field, sections []Section, clears ...ClearRule) (*Schema, error) {
	if len(sections) == 0 {
		return nil, errors.New("form: schema needs at least one section")
	}

	s := &Schema{
		fields:   fields,
		byName:   make(map[string]FieldID, len(fields)),
		sections: sections,
		owner:    make([]int, len(fields)),
		clears:   clears,
	}
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("form: field %d has no name", i)
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, fmt.Errorf("form: duplicate field name %q", f.Name)
		}
		s.byName[f.Name] = FieldID(i)
		s.owner[i] = -1
	}

	for si, sec := range sections {
		for _, r := range sec.Rules {
			if !s.valid(r.Field) {
				return nil, fmt.Errorf("form: section %d references unknown field %d", si, r.Field)
			}
			if s.owner[r.Field] != -1 {
				return nil, fmt.Errorf("form: field %q is validated in more than one place", fields[r.Field].Name)
			}
			s.owner[r.Field] = si
			for _, c := range r.Checks {
				if c.Message() == "" {
					return nil, fmt.Errorf("form: check on field %q has an empty message", fields[r.Field].Name)
				}
			}
		}
	}

	for _, c := range clears {
		if !s.valid(c.Governing) || !s.valid(c.Dependent) || c.KeepWhen == nil {
			return nil, errors.New("form: malformed clear rule")
		}
	}
	return s, nil
}

// MustSchema is NewSchema for package-level declarations.
func MustSchema(fields []Field, sections []Section, clears ...ClearRule) *Schema {
	s, err := NewSchema(fields, sections, clears...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) valid(id FieldID) bool { return id >= 0 && int(id) < len(s.fields) }

func (s *Schema) NumSections() int { return len(s.sections) }

func (s *Schema) NumFields() int { return len(s.fields) }

func (s *Schema) Field(id FieldID) Field {
	if !s.valid(id) {
		return Field{}
	}
	return s.fields[id]
}

func (s *Schema) Lookup(name string) (FieldID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

func (s *Schema) SectionTitles() []string {
	out := make([]string, len(s.sections))
	for i, sec := range s.sections {
		out[i] = sec.Title
	}
	return out
}

// Owner returns the section validating id, or -1.
func (s *Schema) Owner(id FieldID) int {
	if !s.valid(id) {
		return -1
	}
	return s.owner[id]
}

// ValidateSection runs the rules of section i in declared order. first is the
// earliest failing field or NoField.
func (s *Schema) ValidateSection(i int, values Values) (errs FieldErrors, first FieldID) {
	errs = newFieldErrors(len(s.fields))
	first = NoField
	if i < 0 || i >= len(s.sections) {
		return errs, first
	}
	s.collect(i, values, &errs, &first)
	return errs, first
}

// ValidateAll unions every section's failures. first follows section order.
func (s *Schema) ValidateAll(values Values) (errs FieldErrors, first FieldID) {
	errs = newFieldErrors(len(s.fields))
	first = NoField
	for i := range s.sections {
		s.collect(i, values, &errs, &first)
	}
	return errs, first
}

func (s *Schema) collect(i int, values Values, errs *FieldErrors, first *FieldID) {
	for _, r := range s.sections[i].Rules {
		if msg, ok := r.evaluate(values); !ok {
			errs.set(r.Field, msg)
			if *first == NoField {
				*first = r.Field
			}
		}
	}
}

// ErrorMap renders errs keyed by field name.
func (s *Schema) ErrorMap(errs FieldErrors) map[string]string {
	out := make(map[string]string, errs.Len())
	for _, id := range errs.Fields() {
		msg, _ := errs.Get(id)
		out[s.fields[id].Name] = msg
	}
	return out
}

package form

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"loan-referral/domain"
)

// Submitter receives the values of a form that passed full validation.
type Submitter interface {
	Submit(ctx context.Context, values Values) error
}

type SubmitterFunc func(ctx context.Context, values Values) error

func (f SubmitterFunc) Submit(ctx context.Context, values Values) error { return f(ctx, values) }

// Transition tells the presentation layer where the form is now.
type Transition struct {
	Section     int
	Focus       FieldID
	ScrollToTop bool
}

type Option func(*Machine)

// WithSubmitTimeout bounds how long a submission may stay outstanding.
func WithSubmitTimeout(d time.Duration) Option {
	return func(m *Machine) { m.submitTimeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Machine is one live instance of a form. All methods are safe for
// concurrent use; the submitter runs outside the lock.
type Machine struct {
	mu            sync.Mutex
	schema        *Schema
	values        Values
	errors        FieldErrors
	section       int
	status        domain.SubmissionStatus
	reason        string
	submitTimeout time.Duration
	logger        *zap.Logger
}

func NewMachine(schema *Schema, opts ...Option) *Machine {
	m := &Machine{
		schema: schema,
		values: make(Values, schema.NumFields()),
		errors: newFieldErrors(schema.NumFields()),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Section() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.section
}

func (m *Machine) Value(id FieldID) Value {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values.Get(id)
}

func (m *Machine) Values() Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values.clone()
}

func (m *Machine) Errors() FieldErrors {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors.clone()
}

func (m *Machine) Status() (domain.SubmissionStatus, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status, m.reason
}

// Change stores value, applies clear rules governed by id and drops any
// error recorded for id. Errors are not recomputed here. A dependent field
// whose governing value does not keep it stays empty whatever is written.
func (m *Machine) Change(id FieldID, value Value) error {
	if !m.schema.valid(id) {
		return fmt.Errorf("%w: %d", ErrUnknownField, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[id] = value
	for _, c := range m.schema.clears {
		if (c.Governing == id || c.Dependent == id) && !c.KeepWhen(m.values) {
			m.values[c.Dependent] = Value{}
		}
	}
	m.errors.clear(id)
	return nil
}

// Next validates the current section and advances when it passes.
func (m *Machine) Next() (Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	errs, first := m.schema.ValidateSection(m.section, m.values)
	if first != NoField {
		m.errors = errs
		m.logger.Debug("section blocked",
			zap.Int("section", m.section),
			zap.Int("invalid", errs.Len()))
		return Transition{Section: m.section, Focus: first},
			&SectionBlockedError{Section: m.section, Focus: first, Errors: errs.clone()}
	}

	m.errors = newFieldErrors(m.schema.NumFields())
	if m.section < m.schema.NumSections()-1 {
		m.section++
	}
	return Transition{Section: m.section, Focus: NoField, ScrollToTop: true}, nil
}

func (m *Machine) Previous() Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.section > 0 {
		m.section--
	}
	return Transition{Section: m.section, Focus: NoField, ScrollToTop: true}
}

// JumpTo moves back to an already visited section without validating.
func (m *Machine) JumpTo(index int) (Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= m.schema.NumSections() {
		return Transition{Section: m.section, Focus: NoField}, fmt.Errorf("%w: %d", ErrSectionRange, index)
	}
	if index > m.section {
		return Transition{Section: m.section, Focus: NoField}, ErrJumpAhead
	}
	m.section = index
	return Transition{Section: m.section, Focus: NoField, ScrollToTop: true}, nil
}

// Submit validates every section. On failure it moves to the section owning
// the first failing field. On success it hands a copy of the values to sub
// exactly once and records the outcome.
func (m *Machine) Submit(ctx context.Context, sub Submitter) (Transition, error) {
	m.mu.Lock()
	switch m.status {
	case domain.StatusSubmitting:
		m.mu.Unlock()
		return Transition{Section: m.section, Focus: NoField}, ErrSubmitInProgress
	case domain.StatusSucceeded:
		m.mu.Unlock()
		return Transition{Section: m.section, Focus: NoField}, ErrAlreadySubmitted
	}

	errs, first := m.schema.ValidateAll(m.values)
	if first != NoField {
		m.errors = errs
		m.section = m.schema.Owner(first)
		t := Transition{Section: m.section, Focus: first}
		m.mu.Unlock()
		return t, &SectionBlockedError{Section: t.Section, Focus: first, Errors: errs.clone()}
	}

	m.errors = newFieldErrors(m.schema.NumFields())
	m.status = domain.StatusSubmitting
	m.reason = ""
	values := m.values.clone()
	timeout := m.submitTimeout
	m.mu.Unlock()

	err := m.run(ctx, sub, values, timeout)

	m.mu.Lock()
	defer m.mu.Unlock()
	t := Transition{Section: m.section, Focus: NoField}
	if err != nil {
		m.status = domain.StatusFailed
		m.reason = err.Error()
		m.logger.Warn("form submission failed", zap.Error(err))
		return t, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	m.status = domain.StatusSucceeded
	return t, nil
}

func (m *Machine) run(ctx context.Context, sub Submitter, values Values, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- sub.Submit(ctx, values) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

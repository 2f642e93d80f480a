package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"loan-referral/domain"
	"loan-referral/form"
	"loan-referral/metrics"
	"loan-referral/repository"
)

const sessionLockStripes = 64

// ApplicationView is the state of a multi-step application as shown to the
// client after each operation.
type ApplicationView struct {
	ID           string            `json:"id"`
	Section      int               `json:"section"`
	SectionTitle string            `json:"sectionTitle"`
	Sections     []string          `json:"sections"`
	Values       map[string]any    `json:"values"`
	Errors       map[string]string `json:"errors,omitempty"`
	Focus        string            `json:"focus,omitempty"`
	ScrollToTop  bool              `json:"scrollToTop,omitempty"`
	Status       string            `json:"status"`
	Reason       string            `json:"reason,omitempty"`
}

type ApplicationConfig struct {
	SessionTTL    time.Duration
	SubmitTimeout time.Duration
}

// ApplicationService drives multi-step application sessions. State lives in
// a SessionStore between requests; operations on one session are serialized.
type ApplicationService struct {
	schema    *form.Schema
	store     repository.SessionStore
	submitter LeadSubmitter
	repo      repository.LeadRepository
	cfg       ApplicationConfig
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	locks    [sessionLockStripes]sync.Mutex
	inflight sync.Map
}

func NewApplicationService(
	store repository.SessionStore,
	submitter LeadSubmitter,
	repo repository.LeadRepository,
	cfg ApplicationConfig,
	logger *zap.Logger,
	m *metrics.Metrics,
) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &ApplicationService{
		schema:    LoanApplicationSchema(),
		store:     store,
		submitter: submitter,
		repo:      repo,
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *ApplicationService) lock(id string) func() {
	mu := &s.locks[xxhash.Sum64String(id)%sessionLockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *ApplicationService) options() []form.Option {
	return []form.Option{form.WithSubmitTimeout(s.cfg.SubmitTimeout), form.WithLogger(s.logger)}
}

func (s *ApplicationService) Create(ctx context.Context) (ApplicationView, error) {
	id := uuid.NewString()
	m := form.NewMachine(s.schema, s.options()...)
	if err := s.store.Save(ctx, id, m.Snapshot(), s.cfg.SessionTTL); err != nil {
		return ApplicationView{}, err
	}
	s.logger.Debug("application session created", zap.String("session_id", id))
	return s.view(id, m, form.Transition{Focus: form.NoField}), nil
}

func (s *ApplicationService) Get(ctx context.Context, id string) (ApplicationView, error) {
	unlock := s.lock(id)
	defer unlock()

	snap, err := s.store.Load(ctx, id)
	if err != nil {
		return ApplicationView{}, err
	}
	m, err := form.Restore(s.schema, snap, s.options()...)
	if err != nil {
		return ApplicationView{}, err
	}
	return s.view(id, m, form.Transition{Section: m.Section(), Focus: form.NoField}), nil
}

// Change applies the given field values in schema order, so a governing
// field and its dependent sent together resolve deterministically.
func (s *ApplicationService) Change(ctx context.Context, id string, changes map[string]form.Value) (ApplicationView, error) {
	ids := make([]form.FieldID, 0, len(changes))
	for name := range changes {
		fid, ok := s.schema.Lookup(name)
		if !ok {
			return ApplicationView{}, fmt.Errorf("%w: %q", form.ErrUnknownField, name)
		}
		ids = append(ids, fid)
	}
	slices.Sort(ids)

	return s.apply(ctx, id, "change", func(m *form.Machine) (form.Transition, error) {
		for _, fid := range ids {
			if err := m.Change(fid, changes[s.schema.Field(fid).Name]); err != nil {
				return form.Transition{}, err
			}
		}
		return form.Transition{Section: m.Section(), Focus: form.NoField}, nil
	})
}

func (s *ApplicationService) Next(ctx context.Context, id string) (ApplicationView, error) {
	return s.apply(ctx, id, "next", func(m *form.Machine) (form.Transition, error) {
		return m.Next()
	})
}

func (s *ApplicationService) Previous(ctx context.Context, id string) (ApplicationView, error) {
	return s.apply(ctx, id, "previous", func(m *form.Machine) (form.Transition, error) {
		return m.Previous(), nil
	})
}

func (s *ApplicationService) JumpTo(ctx context.Context, id string, section int) (ApplicationView, error) {
	return s.apply(ctx, id, "jump", func(m *form.Machine) (form.Transition, error) {
		return m.JumpTo(section)
	})
}

// Discard drops a session and its stored state.
func (s *ApplicationService) Discard(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	if _, err := s.store.Load(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Submit validates every section and forwards the application once. A
// second Submit for a session whose submission is outstanding fails with
// form.ErrSubmitInProgress without waiting.
func (s *ApplicationService) Submit(ctx context.Context, id string) (ApplicationView, error) {
	if _, busy := s.inflight.LoadOrStore(id, struct{}{}); busy {
		return ApplicationView{}, form.ErrSubmitInProgress
	}
	defer s.inflight.Delete(id)

	return s.apply(ctx, id, "submit", func(m *form.Machine) (form.Transition, error) {
		t, err := m.Submit(ctx, form.SubmitterFunc(func(ctx context.Context, values form.Values) error {
			return s.submitter.SubmitApplication(ctx, applicationPayload(s.schema, values))
		}))

		var blocked *form.SectionBlockedError
		if errors.As(err, &blocked) {
			return t, err
		}

		status, reason := m.Status()
		record := domain.LeadRecord{
			ID:          id,
			Source:      "application",
			Fields:      fieldMap(s.schema, m.Values()),
			Status:      status,
			Reason:      reason,
			SubmittedAt: s.now(),
		}
		if saveErr := s.repo.Save(record); saveErr != nil {
			s.logger.Warn("failed to record application", zap.String("session_id", id), zap.Error(saveErr))
		}
		s.metrics.LeadSubmissions.WithLabelValues("application", status.String()).Inc()
		return t, err
	})
}

func (s *ApplicationService) apply(
	ctx context.Context,
	id string,
	op string,
	fn func(m *form.Machine) (form.Transition, error),
) (ApplicationView, error) {
	unlock := s.lock(id)
	defer unlock()

	snap, err := s.store.Load(ctx, id)
	if err != nil {
		return ApplicationView{}, err
	}
	m, err := form.Restore(s.schema, snap, s.options()...)
	if err != nil {
		return ApplicationView{}, err
	}

	t, opErr := fn(m)
	result := "ok"
	if opErr != nil {
		result = "refused"
	}
	s.metrics.FormTransitions.WithLabelValues(op, result).Inc()

	if err := s.store.Save(ctx, id, m.Snapshot(), s.cfg.SessionTTL); err != nil {
		return ApplicationView{}, err
	}

	return s.view(id, m, t), opErr
}

func (s *ApplicationService) view(id string, m *form.Machine, t form.Transition) ApplicationView {
	values := make(map[string]any)
	for i, v := range m.Values() {
		f := s.schema.Field(form.FieldID(i))
		switch {
		case f.Kind == form.KindBool:
			values[f.Name] = v.Checked
		case v.Text != "":
			values[f.Name] = v.Text
		}
	}

	status, reason := m.Status()
	titles := s.schema.SectionTitles()
	section := m.Section()
	v := ApplicationView{
		ID:           id,
		Section:      section,
		SectionTitle: titles[section],
		Sections:     titles,
		Values:       values,
		Errors:       s.schema.ErrorMap(m.Errors()),
		ScrollToTop:  t.ScrollToTop,
		Status:       status.String(),
		Reason:       reason,
	}
	if t.Focus != form.NoField {
		v.Focus = s.schema.Field(t.Focus).Name
	}
	return v
}

func applicationPayload(schema *form.Schema, values form.Values) map[string]any {
	out := make(map[string]any, len(values))
	for i, v := range values {
		f := schema.Field(form.FieldID(i))
		if f.Kind == form.KindBool {
			out[f.Name] = v.Checked
		} else {
			out[f.Name] = v.Text
		}
	}
	return out
}

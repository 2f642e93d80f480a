package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"loan-referral/domain"
	"loan-referral/form"
	"loan-referral/metrics"
	"loan-referral/repository"
)

// LeadSubmitter forwards validated leads to the intake backend.
type LeadSubmitter interface {
	SubmitCustomer(ctx context.Context, payload domain.LeadPayload) error
	SubmitApplication(ctx context.Context, fields map[string]any) error
}

type LeadOutcome struct {
	ID     string            `json:"id,omitempty"`
	Status string            `json:"status"`
	Reason string            `json:"reason,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
	Focus  string            `json:"focus,omitempty"`
}

// LeadService validates single-step applications and forwards them.
type LeadService struct {
	schema    *form.Schema
	submitter LeadSubmitter
	repo      repository.LeadRepository
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewLeadService(
	submitter LeadSubmitter,
	repo repository.LeadRepository,
	timeout time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	s := &LeadService{
		submitter: submitter,
		repo:      repo,
		timeout:   timeout,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
	s.schema = InitialApplicationSchema(func() time.Time { return s.now() })
	return s
}

// Apply validates app and, when every field passes, submits it once. The
// returned error is a *form.SectionBlockedError for invalid input and wraps
// form.ErrSubmissionFailed when the backend refused or timed out.
func (s *LeadService) Apply(ctx context.Context, app domain.InitialApplication) (LeadOutcome, error) {
	m := form.NewMachine(s.schema, form.WithSubmitTimeout(s.timeout), form.WithLogger(s.logger))
	for id, v := range map[form.FieldID]form.Value{
		InitialLoanAmount:        form.Text(app.LoanAmount),
		InitialFirstName:         form.Text(app.FirstName),
		InitialSecondName:        form.Text(app.SecondName),
		InitialLastName:          form.Text(app.LastName),
		InitialDOB:               form.Text(app.DOB),
		InitialContactNumber:     form.Text(app.ContactNumber),
		InitialEmail:             form.Text(app.Email),
		InitialNetTakeHomeSalary: form.Text(app.NetTakeHomeSalary),
		InitialLoanType:          form.Text(app.LoanType),
		InitialTermsAccepted:     form.Bool(app.TermsAccepted),
	} {
		if err := m.Change(id, v); err != nil {
			return LeadOutcome{}, err
		}
	}

	_, err := m.Submit(ctx, form.SubmitterFunc(func(ctx context.Context, values form.Values) error {
		return s.submitter.SubmitCustomer(ctx, customerPayload(values))
	}))

	var blocked *form.SectionBlockedError
	if errors.As(err, &blocked) {
		s.metrics.LeadSubmissions.WithLabelValues("initial", "invalid").Inc()
		return LeadOutcome{
			Status: domain.StatusIdle.String(),
			Errors: s.schema.ErrorMap(blocked.Errors),
			Focus:  s.schema.Field(blocked.Focus).Name,
		}, err
	}

	status, reason := m.Status()
	record := domain.LeadRecord{
		ID:          uuid.NewString(),
		Source:      "initial",
		Fields:      fieldMap(s.schema, m.Values()),
		Status:      status,
		Reason:      reason,
		SubmittedAt: s.now(),
	}
	if saveErr := s.repo.Save(record); saveErr != nil {
		s.logger.Warn("failed to record lead", zap.String("lead_id", record.ID), zap.Error(saveErr))
	}
	s.metrics.LeadSubmissions.WithLabelValues("initial", status.String()).Inc()

	outcome := LeadOutcome{ID: record.ID, Status: status.String(), Reason: reason}
	if err != nil {
		s.logger.Warn("lead submission failed", zap.String("lead_id", record.ID), zap.Error(err))
		return outcome, err
	}
	s.logger.Info("lead submitted", zap.String("lead_id", record.ID))
	return outcome, nil
}

func customerPayload(v form.Values) domain.LeadPayload {
	text := func(id form.FieldID) string { return strings.TrimSpace(v.Get(id).Text) }

	var dob *time.Time
	if t, err := time.Parse(dobLayout, text(InitialDOB)); err == nil {
		dob = &t
	}
	amount, _ := strconv.ParseFloat(text(InitialLoanAmount), 64)
	salary, _ := strconv.ParseFloat(text(InitialNetTakeHomeSalary), 64)

	return domain.LeadPayload{Customer: domain.Customer{
		FirstName:         text(InitialFirstName),
		MiddleName:        text(InitialSecondName),
		LastName:          text(InitialLastName),
		DateOfBirth:       dob,
		ContactNumber:     text(InitialContactNumber),
		EmailAddress:      text(InitialEmail),
		NetTakeHomeSalary: salary,
		Consent:           v.Get(InitialTermsAccepted).Checked,
		Lead: domain.Lead{
			LoanAmountRequired: amount,
			LoanType:           text(InitialLoanType),
		},
	}}
}

// fieldMap flattens values by field name; booleans become "true"/"false".
func fieldMap(schema *form.Schema, values form.Values) map[string]string {
	out := make(map[string]string, len(values))
	for i, v := range values {
		f := schema.Field(form.FieldID(i))
		if f.Kind == form.KindBool {
			out[f.Name] = strconv.FormatBool(v.Checked)
			continue
		}
		if v.Text != "" {
			out[f.Name] = v.Text
		}
	}
	return out
}

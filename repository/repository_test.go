package repository

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-referral/domain"
	"loan-referral/form"
)

func TestMockCache_Expiry(t *testing.T) {
	c := NewMockCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	v, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	now = now.Add(time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "p", "forever", 0))
	now = now.Add(24 * time.Hour)
	_, ok = c.Get(ctx, "p")
	assert.True(t, ok)
}

func TestMemorySessionStore(t *testing.T) {
	s := NewMemorySessionStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	snap := form.Snapshot{
		Values:  map[string]form.Value{"motherName": form.Text("Lakshmi")},
		Errors:  map[string]string{"fatherNameWithInitial": "Father Name is required"},
		Section: 0,
		Status:  domain.StatusFailed,
		Reason:  "timeout",
	}
	require.NoError(t, s.Save(ctx, "a", snap, time.Hour))

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	now = now.Add(time.Hour)
	_, err = s.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, s.Save(ctx, "b", snap, 0))
	require.NoError(t, s.Delete(ctx, "b"))
	_, err = s.Load(ctx, "b")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLeadRepositoryMemory(t *testing.T) {
	r := NewLeadRepositoryMemory()
	require.NoError(t, r.Save(domain.LeadRecord{ID: "1"}))
	require.NoError(t, r.Save(domain.LeadRecord{ID: "2"}))

	list := r.List()
	require.Len(t, list, 2)
	list[0].ID = "changed"
	assert.Equal(t, "1", r.List()[0].ID)
}

func TestLeadAPIClient_SubmitCustomer(t *testing.T) {
	var got domain.LeadPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/customer", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewLeadAPIClient(LeadAPIConfig{
		BaseURL:      srv.URL + "/",
		CustomerPath: "/customer",
		Timeout:      2 * time.Second,
	}, nil)

	payload := domain.LeadPayload{Customer: domain.Customer{
		FirstName: "Asha",
		Consent:   true,
		Lead:      domain.Lead{LoanAmountRequired: 250000, LoanType: "Fresh Loan"},
	}}
	require.NoError(t, c.SubmitCustomer(context.Background(), payload))
	assert.Equal(t, payload, got)
}

func TestLeadAPIClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"duplicate lead"}`))
	}))
	defer srv.Close()

	c := NewLeadAPIClient(LeadAPIConfig{BaseURL: srv.URL, ApplicationPath: "/application", Timeout: time.Second}, nil)
	err := c.SubmitApplication(context.Background(), map[string]any{"bankName": "HDFC Bank"})

	var subErr *SubmissionError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, http.StatusBadRequest, subErr.Status)
	assert.Equal(t, "duplicate lead", subErr.Message)
}

func TestLeadAPIClient_CanceledContext(t *testing.T) {
	c := NewLeadAPIClient(LeadAPIConfig{BaseURL: "http://127.0.0.1:1", CustomerPath: "/customer"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.SubmitCustomer(ctx, domain.LeadPayload{}), context.Canceled)
}

package form

import (
	"context"
	"errors"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-referral/domain"
)

const (
	fName FieldID = iota
	fStatus
	fPartner
	fPhone
	fAddress
	fConsent
)

var phoneRe = regexp.MustCompile(`^[0-9]{10}$`)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema(
		[]Field{
			{Name: "name"},
			{Name: "status"},
			{Name: "partner"},
			{Name: "phone"},
			{Name: "address"},
			{Name: "consent", Kind: KindBool},
		},
		[]Section{
			{Title: "Person", Rules: []FieldRule{
				Rule(fName, Required("name required"), MinLength(4, "name too short")),
				Rule(fStatus, Required("status required"), OneOf("status required", "Single", "Married")),
				Rule(fPartner, Required("partner required")).OnlyWhen(Equals(fStatus, "Married")),
			}},
			{Title: "Contact", Rules: []FieldRule{
				Rule(fPhone, Required("phone required"), Pattern(phoneRe, "phone invalid")),
			}},
			{Title: "Address", Rules: []FieldRule{
				Rule(fAddress, Required("address required"), MinLength(15, "address too short")),
			}},
			{Title: "Consent", Rules: []FieldRule{
				Rule(fConsent, Checked("consent required")),
			}},
		},
		ClearRule{Governing: fStatus, Dependent: fPartner, KeepWhen: Equals(fStatus, "Married")},
	)
	require.NoError(t, err)
	return s
}

func fill(t *testing.T, m *Machine) {
	t.Helper()
	require.NoError(t, m.Change(fName, Text("Asha Rao")))
	require.NoError(t, m.Change(fStatus, Text("Single")))
	require.NoError(t, m.Change(fPhone, Text("9876543210")))
	require.NoError(t, m.Change(fAddress, Text("12 MG Road, Bengaluru")))
	require.NoError(t, m.Change(fConsent, Bool(true)))
}

func TestNext_BlocksOnEmptyRequiredField(t *testing.T) {
	m := NewMachine(testSchema(t))
	require.NoError(t, m.Change(fStatus, Text("Single")))

	tr, err := m.Next()

	var blocked *SectionBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.ErrorIs(t, err, ErrSectionBlocked)
	assert.Equal(t, 0, m.Section())
	assert.Equal(t, fName, tr.Focus)

	errs := m.Errors()
	assert.Equal(t, 1, errs.Len())
	msg, ok := errs.Get(fName)
	assert.True(t, ok)
	assert.Equal(t, "name required", msg)
}

func TestNext_ReplacesPreviousErrors(t *testing.T) {
	m := NewMachine(testSchema(t))
	_, err := m.Next()
	require.Error(t, err)
	assert.Equal(t, 2, m.Errors().Len())

	require.NoError(t, m.Change(fName, Text("ab")))
	require.NoError(t, m.Change(fStatus, Text("Single")))
	_, err = m.Next()
	require.Error(t, err)

	errs := m.Errors()
	assert.Equal(t, []FieldID{fName}, errs.Fields())
	msg, _ := errs.Get(fName)
	assert.Equal(t, "name too short", msg)
}

func TestNext_AdvancesAndCapsAtLastSection(t *testing.T) {
	m := NewMachine(testSchema(t))
	fill(t, m)

	for want := 1; want <= 3; want++ {
		tr, err := m.Next()
		require.NoError(t, err)
		assert.Equal(t, want, tr.Section)
		assert.True(t, tr.ScrollToTop)
		assert.Equal(t, NoField, tr.Focus)
	}

	tr, err := m.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Section)
	assert.Equal(t, 0, m.Errors().Len())
}

func TestChange_ClearsOwnErrorOnly(t *testing.T) {
	m := NewMachine(testSchema(t))
	_, _ = m.Next()
	require.Equal(t, 2, m.Errors().Len())

	require.NoError(t, m.Change(fName, Text("x")))

	_, hasName := m.Errors().Get(fName)
	_, hasStatus := m.Errors().Get(fStatus)
	assert.False(t, hasName)
	assert.True(t, hasStatus)
}

func TestChange_ClearsDependentWhenGoverningChanges(t *testing.T) {
	m := NewMachine(testSchema(t))
	require.NoError(t, m.Change(fStatus, Text("Married")))
	require.NoError(t, m.Change(fPartner, Text("Ravi Kumar")))

	require.NoError(t, m.Change(fStatus, Text("Married")))
	assert.Equal(t, "Ravi Kumar", m.Value(fPartner).Text)

	require.NoError(t, m.Change(fStatus, Text("Single")))
	assert.Equal(t, "", m.Value(fPartner).Text)
}

func TestChange_DependentIgnoredWhileGoverningDisallows(t *testing.T) {
	m := NewMachine(testSchema(t))

	// Governing first, then the dependent: the write is dropped.
	require.NoError(t, m.Change(fStatus, Text("Single")))
	require.NoError(t, m.Change(fPartner, Text("Ravi Kumar")))
	assert.Equal(t, Value{}, m.Value(fPartner))

	// No governing value at all also disallows it.
	m = NewMachine(testSchema(t))
	require.NoError(t, m.Change(fPartner, Text("Ravi Kumar")))
	assert.Equal(t, Value{}, m.Value(fPartner))

	require.NoError(t, m.Change(fStatus, Text("Married")))
	require.NoError(t, m.Change(fPartner, Text("Ravi Kumar")))
	assert.Equal(t, "Ravi Kumar", m.Value(fPartner).Text)
}

func TestConditionalRule(t *testing.T) {
	m := NewMachine(testSchema(t))
	require.NoError(t, m.Change(fName, Text("Asha Rao")))
	require.NoError(t, m.Change(fStatus, Text("Married")))

	tr, err := m.Next()
	require.Error(t, err)
	assert.Equal(t, fPartner, tr.Focus)

	require.NoError(t, m.Change(fPartner, Text("Ravi")))
	_, err = m.Next()
	require.NoError(t, err)
}

func TestChange_UnknownField(t *testing.T) {
	m := NewMachine(testSchema(t))
	assert.ErrorIs(t, m.Change(FieldID(99), Text("x")), ErrUnknownField)
	assert.Equal(t, Value{}, m.Value(fName))
}

func TestPreviousAndJumpTo(t *testing.T) {
	m := NewMachine(testSchema(t))
	assert.Equal(t, 0, m.Previous().Section)

	fill(t, m)
	_, _ = m.Next()
	_, _ = m.Next()
	require.Equal(t, 2, m.Section())

	_, err := m.JumpTo(3)
	assert.ErrorIs(t, err, ErrJumpAhead)
	_, err = m.JumpTo(-1)
	assert.ErrorIs(t, err, ErrSectionRange)

	tr, err := m.JumpTo(0)
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Section)

	// jumping back does not revalidate, even with a now-invalid field
	require.NoError(t, m.Change(fName, Text("")))
	assert.Equal(t, 0, m.Previous().Section)
	assert.Equal(t, 0, m.Errors().Len())
}

func TestSubmit_JumpsToFirstInvalidSection(t *testing.T) {
	m := NewMachine(testSchema(t))
	fill(t, m)
	for i := 0; i < 3; i++ {
		_, err := m.Next()
		require.NoError(t, err)
	}
	require.NoError(t, m.Change(fAddress, Text("short")))
	require.NoError(t, m.Change(fConsent, Bool(false)))

	called := false
	tr, err := m.Submit(context.Background(), SubmitterFunc(func(context.Context, Values) error {
		called = true
		return nil
	}))

	var blocked *SectionBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.False(t, called)
	assert.Equal(t, 2, tr.Section)
	assert.Equal(t, fAddress, tr.Focus)
	assert.Equal(t, 2, m.Section())
	assert.Equal(t, []FieldID{fAddress, fConsent}, m.Errors().Fields())
	assert.Equal(t, 2, blocked.Errors.Len())
}

func TestSubmit_Success(t *testing.T) {
	m := NewMachine(testSchema(t))
	fill(t, m)

	var got Values
	_, err := m.Submit(context.Background(), SubmitterFunc(func(_ context.Context, v Values) error {
		got = v
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.Get(fName).Text)

	status, _ := m.Status()
	assert.Equal(t, domain.StatusSucceeded, status)

	_, err = m.Submit(context.Background(), SubmitterFunc(func(context.Context, Values) error {
		t.Fatal("submitter invoked twice")
		return nil
	}))
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmit_FailureIsRecordedAndRetryable(t *testing.T) {
	m := NewMachine(testSchema(t))
	fill(t, m)

	_, err := m.Submit(context.Background(), SubmitterFunc(func(context.Context, Values) error {
		return errors.New("upstream 500")
	}))
	assert.ErrorIs(t, err, ErrSubmissionFailed)

	status, reason := m.Status()
	assert.Equal(t, domain.StatusFailed, status)
	assert.Equal(t, "upstream 500", reason)

	_, err = m.Submit(context.Background(), SubmitterFunc(func(context.Context, Values) error { return nil }))
	require.NoError(t, err)
}

func TestSubmit_RefusedWhileOutstanding(t *testing.T) {
	m := NewMachine(testSchema(t))
	fill(t, m)

	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	slow := SubmitterFunc(func(context.Context, Values) error {
		calls.Add(1)
		close(entered)
		<-release
		return nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background(), slow)
		done <- err
	}()
	<-entered

	status, _ := m.Status()
	assert.Equal(t, domain.StatusSubmitting, status)

	_, err := m.Submit(context.Background(), slow)
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSubmit_TimeoutReleasesBusyState(t *testing.T) {
	m := NewMachine(testSchema(t), WithSubmitTimeout(20*time.Millisecond))
	fill(t, m)

	release := make(chan struct{})
	defer close(release)
	_, err := m.Submit(context.Background(), SubmitterFunc(func(ctx context.Context, _ Values) error {
		<-release
		return nil
	}))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	status, _ := m.Status()
	assert.Equal(t, domain.StatusFailed, status)
}

func TestSnapshotRestore(t *testing.T) {
	s := testSchema(t)
	m := NewMachine(s)
	fill(t, m)
	_, _ = m.Next()
	require.NoError(t, m.Change(fPhone, Text("123")))
	_, err := m.Next()
	require.Error(t, err)

	snap := m.Snapshot()
	assert.Equal(t, 1, snap.Section)
	assert.Equal(t, "phone invalid", snap.Errors["phone"])

	r, err := Restore(s, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Section())
	assert.Equal(t, m.Values(), r.Values())
	assert.Equal(t, m.Errors().Fields(), r.Errors().Fields())

	snap.Status = domain.StatusSubmitting
	r, err = Restore(s, snap)
	require.NoError(t, err)
	status, _ := r.Status()
	assert.Equal(t, domain.StatusFailed, status)

	snap.Values["bogus"] = Text("x")
	_, err = Restore(s, snap)
	assert.ErrorIs(t, err, ErrUnknownField)

	snap.Section = 9
	_, err = Restore(s, snap)
	assert.ErrorIs(t, err, ErrSectionRange)
}

package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchema_Rejects(t *testing.T) {
	fields := []Field{{Name: "a"}, {Name: "b"}}

	_, err := NewSchema(fields, nil)
	assert.Error(t, err)

	_, err = NewSchema([]Field{{Name: "a"}, {Name: "a"}}, []Section{{}})
	assert.Error(t, err)

	_, err = NewSchema(fields, []Section{{Rules: []FieldRule{Rule(5, Required("x"))}}})
	assert.Error(t, err)

	_, err = NewSchema(fields, []Section{
		{Rules: []FieldRule{Rule(0, Required("x"))}},
		{Rules: []FieldRule{Rule(0, Required("y"))}},
	})
	assert.Error(t, err)

	_, err = NewSchema(fields, []Section{{Rules: []FieldRule{Rule(0, Required(""))}}})
	assert.Error(t, err)

	_, err = NewSchema(fields, []Section{{}}, ClearRule{Governing: 0, Dependent: 1})
	assert.Error(t, err)
}

func TestChecks(t *testing.T) {
	tests := []struct {
		name  string
		check Check
		value Value
		want  bool
	}{
		{"required blank", Required("m"), Text("   "), false},
		{"required ok", Required("m"), Text(" a "), true},
		{"min length trims", MinLength(4, "m"), Text("  abc  "), false},
		{"min length ok", MinLength(4, "m"), Text("abcd"), true},
		{"numeric", Numeric("m"), Text("12.5"), true},
		{"numeric garbage", Numeric("m"), Text("12a"), false},
		{"numeric nan", Numeric("m"), Text("NaN"), false},
		{"range low bound", NumericRange(10000, 5000000, "m"), Text("10000"), true},
		{"range high bound", NumericRange(10000, 5000000, "m"), Text("5000000"), true},
		{"range below", NumericRange(10000, 5000000, "m"), Text("9999"), false},
		{"range above", NumericRange(10000, 5000000, "m"), Text("5000001"), false},
		{"one of", OneOf("m", "Own", "Rent"), Text("Rent"), true},
		{"one of miss", OneOf("m", "Own", "Rent"), Text("rent"), false},
		{"checked", Checked("m"), Bool(true), true},
		{"unchecked", Checked("m"), Bool(false), false},
		{"custom", Custom("m", func(v Value) bool { return v.Text == "x" }), Text("x"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check.Check(tt.value))
		})
	}
}

func TestValidateAll_FirstFieldFollowsSectionOrder(t *testing.T) {
	s := testSchema(t)
	values := make(Values, s.NumFields())
	values[fName] = Text("Asha Rao")
	values[fStatus] = Text("Single")

	errs, first := s.ValidateAll(values)
	require.Equal(t, fPhone, first)
	assert.Equal(t, 1, s.Owner(first))
	assert.Equal(t, map[string]string{
		"phone":   "phone required",
		"address": "address required",
		"consent": "consent required",
	}, s.ErrorMap(errs))
}

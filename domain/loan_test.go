package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTenureUnit(t *testing.T) {
	for in, want := range map[string]TenureUnit{
		"months": TenureMonths,
		"Month":  TenureMonths,
		" years": TenureYears,
		"year":   TenureYears,
	} {
		got, err := ParseTenureUnit(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTenureUnit("fortnights")
	assert.Error(t, err)
}

func TestSubmissionStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "submitting", StatusSubmitting.String())
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "failed", StatusFailed.String())
}

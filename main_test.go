package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEMICommand(t *testing.T) {
	out, err := execute(t, "emi", "--principal", "500000", "--rate", "10", "--tenure", "5", "--unit", "years")
	require.NoError(t, err)
	assert.Contains(t, out, "Monthly EMI:     ₹10,624")
	assert.Contains(t, out, "over 60 months")
	assert.NotContains(t, out, "Balance")
}

func TestEMICommandSchedule(t *testing.T) {
	out, err := execute(t, "emi", "-p", "120000", "-r", "0", "-t", "12", "--allow-zero-rate", "--schedule")
	require.NoError(t, err)
	assert.Contains(t, out, "Balance")
	assert.Contains(t, out, "10,000.00")
}

func TestEMICommandRejectsInvalidInput(t *testing.T) {
	_, err := execute(t, "emi", "-p", "120000", "-r", "0", "-t", "12")
	assert.ErrorContains(t, err, "invalid input")

	_, err = execute(t, "emi", "-p", "1000", "-r", "10", "-t", "12", "-u", "weeks")
	assert.ErrorContains(t, err, "unknown tenure unit")

	_, err = execute(t, "emi", "-r", "10", "-t", "12")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "loan-referral "+Version)
}

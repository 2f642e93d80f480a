package form

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Check is a single constraint on a field value.
type Check interface {
	Check(v Value) bool
	Message() string
}

type check struct {
	msg string
	fn  func(Value) bool
}

func (c check) Check(v Value) bool { return c.fn(v) }

func (c check) Message() string { return c.msg }

// Required fails on text that is empty after trimming.
func Required(msg string) Check {
	return check{msg: msg, fn: func(v Value) bool {
		return validate.Var(strings.TrimSpace(v.Text), "required") == nil
	}}
}

// MinLength counts characters of the trimmed text.
func MinLength(n int, msg string) Check {
	tag := fmt.Sprintf("min=%d", n)
	return check{msg: msg, fn: func(v Value) bool {
		return validate.Var(strings.TrimSpace(v.Text), tag) == nil
	}}
}

// Pattern matches the raw text against re.
func Pattern(re *regexp.Regexp, msg string) Check {
	return check{msg: msg, fn: func(v Value) bool {
		return re.MatchString(v.Text)
	}}
}

// Numeric accepts any finite decimal number.
func Numeric(msg string) Check {
	return check{msg: msg, fn: func(v Value) bool {
		_, ok := parseNumber(v.Text)
		return ok
	}}
}

// NumericRange accepts finite numbers within [min, max], bounds included.
func NumericRange(min, max float64, msg string) Check {
	tag := "gte=" + strconv.FormatFloat(min, 'f', -1, 64) + ",lte=" + strconv.FormatFloat(max, 'f', -1, 64)
	return check{msg: msg, fn: func(v Value) bool {
		f, ok := parseNumber(v.Text)
		if !ok {
			return false
		}
		return validate.Var(f, tag) == nil
	}}
}

// OneOf requires the text to be exactly one of options.
func OneOf(msg string, options ...string) Check {
	opts := slices.Clone(options)
	return check{msg: msg, fn: func(v Value) bool {
		return slices.Contains(opts, v.Text)
	}}
}

// Checked requires a boolean field to be set.
func Checked(msg string) Check {
	return check{msg: msg, fn: func(v Value) bool { return v.Checked }}
}

func Custom(msg string, pred func(Value) bool) Check {
	return check{msg: msg, fn: pred}
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Condition gates a rule or a clear on the current values.
type Condition func(values Values) bool

// Equals holds when field's text is exactly text.
func Equals(field FieldID, text string) Condition {
	return func(values Values) bool { return values.Get(field).Text == text }
}

// FieldRule binds an ordered list of checks to one field. The first failing
// check determines the field's message.
type FieldRule struct {
	Field  FieldID
	When   Condition
	Checks []Check
}

func Rule(field FieldID, checks ...Check) FieldRule {
	return FieldRule{Field: field, Checks: checks}
}

// OnlyWhen makes the rule apply only while cond holds.
func (r FieldRule) OnlyWhen(cond Condition) FieldRule {
	r.When = cond
	return r
}

func (r FieldRule) evaluate(values Values) (string, bool) {
	if r.When != nil && !r.When(values) {
		return "", true
	}
	v := values.Get(r.Field)
	for _, c := range r.Checks {
		if !c.Check(v) {
			return c.Message(), false
		}
	}
	return "", true
}

// ClearRule empties Dependent whenever Governing changes to a value for which
// KeepWhen does not hold.
type ClearRule struct {
	Governing FieldID
	Dependent FieldID
	KeepWhen  Condition
}

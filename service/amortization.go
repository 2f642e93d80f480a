package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"loan-referral/domain"
)

var ErrInvalidInput = errors.New("invalid input")

// growthPrecision is the number of decimal places kept while raising
// (1+R) to N.
const growthPrecision = 40

// ratePrecision is the number of decimal places kept for the monthly rate.
const ratePrecision = 32

// interestPrecision is the number of decimal places kept for each period's
// interest.
const interestPrecision = 12

var (
	one     = decimal.NewFromInt(1)
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// AmortizationEngine computes reducing-balance schedules. The zero value
// rejects a zero interest rate.
type AmortizationEngine struct {
	// AllowZeroRate switches rate 0 to the linear installment P/N instead
	// of rejecting it.
	AllowZeroRate bool
}

// ComputeSchedule uses the default engine.
func ComputeSchedule(req domain.LoanScheduleRequest) (domain.LoanScheduleResult, error) {
	return AmortizationEngine{}.ComputeSchedule(req)
}

// NewLoanScheduleRequest builds a request from floating point input,
// refusing NaN and infinities.
func NewLoanScheduleRequest(principal, ratePercent, tenure float64, unit domain.TenureUnit) (domain.LoanScheduleRequest, error) {
	for _, v := range []float64{principal, ratePercent, tenure} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.LoanScheduleRequest{}, fmt.Errorf("%w: value must be finite", ErrInvalidInput)
		}
	}
	return domain.LoanScheduleRequest{
		Principal:         decimal.NewFromFloat(principal),
		AnnualRatePercent: decimal.NewFromFloat(ratePercent),
		TenureValue:       decimal.NewFromFloat(tenure),
		TenureUnit:        unit,
	}, nil
}

// Periods returns the number of monthly installments of req.
func Periods(req domain.LoanScheduleRequest) (int, error) {
	n := req.TenureValue
	if req.TenureUnit == domain.TenureYears {
		n = n.Mul(twelve)
	}
	if !n.IsInteger() {
		return 0, fmt.Errorf("%w: tenure of %s %s is not a whole number of months", ErrInvalidInput, req.TenureValue, req.TenureUnit)
	}
	if n.Sign() <= 0 {
		return 0, fmt.Errorf("%w: tenure must be positive", ErrInvalidInput)
	}
	if n.GreaterThan(decimal.NewFromInt(MaxPeriods)) {
		return 0, fmt.Errorf("%w: tenure exceeds %d months", ErrInvalidInput, MaxPeriods)
	}
	return int(n.IntPart()), nil
}

func (e AmortizationEngine) validate(req domain.LoanScheduleRequest) error {
	if req.Principal.Sign() <= 0 {
		return fmt.Errorf("%w: principal must be positive", ErrInvalidInput)
	}
	if req.Principal.GreaterThan(decimal.NewFromInt(MaxLoanAmount)) {
		return fmt.Errorf("%w: principal exceeds %d", ErrInvalidInput, MaxLoanAmount)
	}
	if req.AnnualRatePercent.Sign() < 0 || (req.AnnualRatePercent.IsZero() && !e.AllowZeroRate) {
		return fmt.Errorf("%w: interest rate must be positive", ErrInvalidInput)
	}
	if req.AnnualRatePercent.GreaterThan(decimal.NewFromInt(MaxInterestRate)) {
		return fmt.Errorf("%w: interest rate exceeds %d%%", ErrInvalidInput, MaxInterestRate)
	}
	if req.TenureValue.Sign() <= 0 {
		return fmt.Errorf("%w: tenure must be positive", ErrInvalidInput)
	}
	return nil
}

// ComputeSchedule returns the fixed installment and the period-by-period
// split of req. It has no side effects.
func (e AmortizationEngine) ComputeSchedule(req domain.LoanScheduleRequest) (domain.LoanScheduleResult, error) {
	if err := e.validate(req); err != nil {
		return domain.LoanScheduleResult{}, err
	}
	n, err := Periods(req)
	if err != nil {
		return domain.LoanScheduleResult{}, err
	}

	principal := req.Principal
	rate := req.AnnualRatePercent.DivRound(twelve.Mul(hundred), ratePrecision)
	if rate.IsZero() && !e.AllowZeroRate {
		return domain.LoanScheduleResult{}, fmt.Errorf("%w: interest rate %s%% is too small", ErrInvalidInput, req.AnnualRatePercent)
	}
	periods := decimal.NewFromInt(int64(n))

	var installment decimal.Decimal
	if rate.IsZero() {
		installment = principal.Div(periods)
	} else {
		growth := powInt(one.Add(rate), n)
		installment = principal.Mul(rate).Mul(growth).Div(growth.Sub(one))
	}

	schedule := make([]domain.PeriodPayment, 0, n)
	balance := principal
	for p := 1; p <= n; p++ {
		interest := balance.Mul(rate).Round(interestPrecision)
		principalPart := installment.Sub(interest)
		balance = balance.Sub(principalPart)
		if balance.Sign() < 0 {
			balance = decimal.Zero
		}
		schedule = append(schedule, domain.PeriodPayment{
			Period:      p,
			Installment: installment,
			Principal:   principalPart,
			Interest:    interest,
			Balance:     balance,
		})
	}

	totalPayable := installment.Mul(periods)
	totalInterest := totalPayable.Sub(principal)

	return domain.LoanScheduleResult{
		Installment:    installment,
		TotalPayable:   totalPayable,
		TotalInterest:  totalInterest,
		Periods:        n,
		PrincipalShare: principal.Div(totalPayable).Mul(hundred).Round(2),
		InterestShare:  totalInterest.Div(totalPayable).Mul(hundred).Round(2),
		Schedule:       schedule,
	}, nil
}

func powInt(base decimal.Decimal, n int) decimal.Decimal {
	result := one
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(growthPrecision)
		}
		base = base.Mul(base).Round(growthPrecision)
		n >>= 1
	}
	return result
}

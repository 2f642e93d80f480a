package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"loan-referral/domain"
)

// MaxTenureOptions bounds how many tenures one comparison may evaluate.
const MaxTenureOptions = 120

type TenureComparisonRequest struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	MinMonths         int
	MaxMonths         int
	StepMonths        int
	// MaxInstallment drops tenures whose installment exceeds it. Zero
	// keeps every tenure.
	MaxInstallment decimal.Decimal
}

type TenureOption struct {
	Months        int
	Installment   decimal.Decimal
	TotalInterest decimal.Decimal
	TotalPayable  decimal.Decimal
}

type TenureComparison struct {
	// Recommended is the affordable tenure with the least total interest,
	// which is always the shortest one.
	Recommended int
	Options     []TenureOption
}

// TenureService evaluates one loan over a range of tenures.
type TenureService struct {
	engine AmortizationEngine
}

func NewTenureService(engine AmortizationEngine) *TenureService {
	return &TenureService{engine: engine}
}

func (s *TenureService) Compare(ctx context.Context, req TenureComparisonRequest) (TenureComparison, error) {
	step := req.StepMonths
	if step == 0 {
		step = 12
	}
	switch {
	case req.MinMonths <= 0 || req.MaxMonths <= 0 || step < 0:
		return TenureComparison{}, fmt.Errorf("%w: tenures must be positive", ErrInvalidInput)
	case req.MinMonths > req.MaxMonths:
		return TenureComparison{}, fmt.Errorf("%w: minimum tenure exceeds maximum", ErrInvalidInput)
	case (req.MaxMonths-req.MinMonths)/step+1 > MaxTenureOptions:
		return TenureComparison{}, fmt.Errorf("%w: more than %d tenures requested", ErrInvalidInput, MaxTenureOptions)
	case req.MaxInstallment.Sign() < 0:
		return TenureComparison{}, fmt.Errorf("%w: maximum installment must not be negative", ErrInvalidInput)
	}

	var terms []int
	for m := req.MinMonths; m <= req.MaxMonths; m += step {
		terms = append(terms, m)
	}

	results := make([]domain.LoanScheduleResult, len(terms))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, months := range terms {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := s.engine.ComputeSchedule(domain.LoanScheduleRequest{
				Principal:         req.Principal,
				AnnualRatePercent: req.AnnualRatePercent,
				TenureValue:       decimal.NewFromInt(int64(months)),
				TenureUnit:        domain.TenureMonths,
			})
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return TenureComparison{}, err
	}

	out := TenureComparison{Options: make([]TenureOption, 0, len(terms))}
	for _, res := range results {
		if !req.MaxInstallment.IsZero() && res.Installment.GreaterThan(req.MaxInstallment) {
			continue
		}
		out.Options = append(out.Options, TenureOption{
			Months:        res.Periods,
			Installment:   res.Installment,
			TotalInterest: res.TotalInterest,
			TotalPayable:  res.TotalPayable,
		})
	}
	if len(out.Options) == 0 {
		return TenureComparison{}, fmt.Errorf("%w: no tenure keeps the installment within %s", ErrInvalidInput, req.MaxInstallment)
	}

	sort.SliceStable(out.Options, func(i, j int) bool {
		return out.Options[i].TotalInterest.LessThan(out.Options[j].TotalInterest)
	})
	out.Recommended = out.Options[0].Months
	return out, nil
}

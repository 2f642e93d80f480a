package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type TenureUnit int

const (
	TenureMonths TenureUnit = iota
	TenureYears
)

func (u TenureUnit) String() string {
	if u == TenureYears {
		return "years"
	}
	return "months"
}

// ParseTenureUnit accepts "months"/"years" and their singular forms.
func ParseTenureUnit(s string) (TenureUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "month", "months":
		return TenureMonths, nil
	case "year", "years":
		return TenureYears, nil
	}
	return TenureMonths, fmt.Errorf("unknown tenure unit %q", s)
}

type LoanScheduleRequest struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TenureValue       decimal.Decimal
	TenureUnit        TenureUnit
}

type LoanScheduleResult struct {
	Installment    decimal.Decimal
	TotalPayable   decimal.Decimal
	TotalInterest  decimal.Decimal
	Periods        int
	PrincipalShare decimal.Decimal // percent of TotalPayable
	InterestShare  decimal.Decimal // percent of TotalPayable
	Schedule       []PeriodPayment
}

type PeriodPayment struct {
	Period      int
	Installment decimal.Decimal
	Principal   decimal.Decimal
	Interest    decimal.Decimal
	Balance     decimal.Decimal
}

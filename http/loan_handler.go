package http

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"loan-referral/domain"
	"loan-referral/format"
	"loan-referral/service"
)

type scheduleRequest struct {
	Principal float64 `json:"principal" validate:"gt=0"`
	Rate      float64 `json:"rate" validate:"gte=0"`
	Tenure    float64 `json:"tenure" validate:"gt=0"`
	Unit      string  `json:"unit" validate:"omitempty,oneof=month months year years"`
}

type periodRow struct {
	Period      int    `json:"period"`
	Installment string `json:"installment"`
	Principal   string `json:"principal"`
	Interest    string `json:"interest"`
	Balance     string `json:"balance"`
}

type formattedTotals struct {
	Currency      string `json:"currency"`
	Installment   string `json:"installment"`
	Principal     string `json:"principal"`
	TotalInterest string `json:"totalInterest"`
	TotalPayable  string `json:"totalPayable"`
}

type scheduleResponse struct {
	Installment    string          `json:"installment"`
	TotalPayable   string          `json:"totalPayable"`
	TotalInterest  string          `json:"totalInterest"`
	Periods        int             `json:"periods"`
	PrincipalShare string          `json:"principalShare"`
	InterestShare  string          `json:"interestShare"`
	Formatted      formattedTotals `json:"formatted"`
	Schedule       []periodRow     `json:"schedule,omitempty"`
}

type compareRequest struct {
	Principal      float64 `json:"principal" validate:"gt=0"`
	Rate           float64 `json:"rate" validate:"gte=0"`
	MinMonths      int     `json:"minMonths" validate:"gt=0"`
	MaxMonths      int     `json:"maxMonths" validate:"gtefield=MinMonths"`
	StepMonths     int     `json:"stepMonths" validate:"gte=0"`
	MaxInstallment float64 `json:"maxInstallment" validate:"gte=0"`
}

type tenureOption struct {
	Months        int    `json:"months"`
	Installment   string `json:"installment"`
	TotalInterest string `json:"totalInterest"`
	TotalPayable  string `json:"totalPayable"`
	Formatted     string `json:"formatted"`
}

type compareResponse struct {
	Recommended int            `json:"recommended"`
	Options     []tenureOption `json:"options"`
}

// LoanHandler serves EMI schedules and tenure comparisons.
type LoanHandler struct {
	service   *service.AmortizationService
	tenures   *service.TenureService
	formatter *format.Formatter
}

func NewLoanHandler(
	service *service.AmortizationService,
	tenures *service.TenureService,
	formatter *format.Formatter,
) *LoanHandler {
	if formatter == nil {
		formatter = format.INR()
	}
	return &LoanHandler{service: service, tenures: tenures, formatter: formatter}
}

func (h *LoanHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var in scheduleRequest
	if !decode(w, r, &in) {
		return
	}

	unit := domain.TenureMonths
	if in.Unit != "" {
		unit, _ = domain.ParseTenureUnit(in.Unit)
	}
	req, err := service.NewLoanScheduleRequest(in.Principal, in.Rate, in.Tenure, unit)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := h.service.Schedule(r.Context(), req)
	if errors.Is(err, service.ErrInvalidInput) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "schedule unavailable")
		return
	}

	writeJSON(w, http.StatusOK, h.render(req, result, r.URL.Query().Get("breakdown") != "false"))
}

func (h *LoanHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var in compareRequest
	if !decode(w, r, &in) {
		return
	}

	out, err := h.tenures.Compare(r.Context(), service.TenureComparisonRequest{
		Principal:         decimal.NewFromFloat(in.Principal),
		AnnualRatePercent: decimal.NewFromFloat(in.Rate),
		MinMonths:         in.MinMonths,
		MaxMonths:         in.MaxMonths,
		StepMonths:        in.StepMonths,
		MaxInstallment:    decimal.NewFromFloat(in.MaxInstallment),
	})
	if errors.Is(err, service.ErrInvalidInput) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "comparison unavailable")
		return
	}

	resp := compareResponse{Recommended: out.Recommended, Options: make([]tenureOption, len(out.Options))}
	for i, o := range out.Options {
		resp.Options[i] = tenureOption{
			Months:        o.Months,
			Installment:   money(o.Installment),
			TotalInterest: money(o.TotalInterest),
			TotalPayable:  money(o.TotalPayable),
			Formatted:     h.formatter.Currency(o.Installment),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) render(req domain.LoanScheduleRequest, res domain.LoanScheduleResult, breakdown bool) scheduleResponse {
	out := scheduleResponse{
		Installment:    money(res.Installment),
		TotalPayable:   money(res.TotalPayable),
		TotalInterest:  money(res.TotalInterest),
		Periods:        res.Periods,
		PrincipalShare: res.PrincipalShare.StringFixed(2),
		InterestShare:  res.InterestShare.StringFixed(2),
		Formatted: formattedTotals{
			Currency:      h.formatter.Code(),
			Installment:   h.formatter.Currency(res.Installment),
			Principal:     h.formatter.Currency(req.Principal),
			TotalInterest: h.formatter.Currency(res.TotalInterest),
			TotalPayable:  h.formatter.Currency(res.TotalPayable),
		},
	}
	if !breakdown {
		return out
	}

	out.Schedule = make([]periodRow, len(res.Schedule))
	for i, p := range res.Schedule {
		out.Schedule[i] = periodRow{
			Period:      p.Period,
			Installment: money(p.Installment),
			Principal:   money(p.Principal),
			Interest:    money(p.Interest),
			Balance:     money(p.Balance),
		}
	}
	return out
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

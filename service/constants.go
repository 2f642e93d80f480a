package service

const (
	MaxLoanAmount   = 1_000_000_000 // schedule principal ceiling
	MaxInterestRate = 1000          // percent per annum
	MaxPeriods      = 600           // 50 years of monthly installments

	MinLoan         = 10_000
	MaxLoan         = 5_000_000
	LoanAmountStep  = 1_000
	MinApplicantAge = 18

	NameMinLength    = 4
	AddressMinLength = 15
)

// AllowedEmailDomains restricts the single-step application to consumer
// mail providers.
var AllowedEmailDomains = []string{
	"gmail.com",
	"outlook.com",
	"yahoo.com",
	"hotmail.com",
	"icloud.com",
	"live.com",
	"msn.com",
}

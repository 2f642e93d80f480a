package domain

import "time"

// Customer is the payload shape accepted by the lead intake API.
type Customer struct {
	FirstName         string     `json:"first_name"`
	MiddleName        string     `json:"middle_name"`
	LastName          string     `json:"last_name"`
	DateOfBirth       *time.Time `json:"date_of_birth"`
	ContactNumber     string     `json:"contact_number"`
	EmailAddress      string     `json:"email_address"`
	NetTakeHomeSalary float64    `json:"new_take_home_salary"`
	Consent           bool       `json:"consent"`
	Lead              Lead       `json:"lead"`
}

type Lead struct {
	LoanAmountRequired float64 `json:"loan_amount_required"`
	LoanType           string  `json:"loan_type"`
}

type LeadPayload struct {
	Customer Customer `json:"customer"`
}

type InitialApplication struct {
	FirstName         string `json:"firstName"`
	SecondName        string `json:"secondName"`
	LastName          string `json:"lastName"`
	NetTakeHomeSalary string `json:"netTakeHomeSalary"`
	DOB               string `json:"dob"`
	ContactNumber     string `json:"contactNumber"`
	Email             string `json:"email"`
	LoanAmount        string `json:"loanAmount"`
	LoanType          string `json:"loanType"`
	TermsAccepted     bool   `json:"termsAccepted"`
}

type SubmissionStatus int

const (
	StatusIdle SubmissionStatus = iota
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s SubmissionStatus) String() string {
	switch s {
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return "idle"
}

// LeadRecord is one accepted lead and what happened when it was forwarded.
type LeadRecord struct {
	ID          string
	Source      string // "initial" or "application"
	Fields      map[string]string
	Status      SubmissionStatus
	Reason      string
	SubmittedAt time.Time
}

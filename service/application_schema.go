package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"loan-referral/form"
)

var (
	emailRe         = regexp.MustCompile(`^[\w.-]+@[a-zA-Z\d.-]+\.[a-zA-Z]{2,}$`)
	consumerEmailRe = regexp.MustCompile(`^[^\s@]+@[a-zA-Z0-9-]+\.[a-zA-Z]{2,}$`)
	phoneRe         = regexp.MustCompile(`^[0-9]{10}$`)
	decimalRe       = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,2})?$`)
	durationRe      = regexp.MustCompile(`(?i)^\d+(\.\d+)?(\s+(year|years|yr|yrs))?$`)
	accountRe       = regexp.MustCompile(`^[0-9]{9,18}$`)
)

const minChars = "Minimum 4 characters required"

// Multi-step loan application fields.
const (
	FatherNameWithInitial form.FieldID = iota
	MotherName
	MaritalStatus
	SpouseName
	CallerName
	PermanentName
	PermanentContactNumber

	OfficialMailID
	RentOrOwnHouse
	PresentAddress
	PresentAddressLandmark
	PresentAddressStayDuration
	PermanentAddress
	PresentContactNumber

	Designation
	CompanyNameAsPerPaySlip
	OfficeAddress
	OfficeAddressLandmark
	OfficeContactNumber
	TotalWorkExperience
	PresentCompanyWorkExperience
	NetTakeHomeSalary
	SalaryAccount
	ExistingLoanDetails
	LoanAmount
	BankName

	ReferenceRelative1
	ReferenceRelative2
	DocumentsMail
	DocumentsWhatsapp
)

var applicationFields = []form.Field{
	FatherNameWithInitial:        {Name: "fatherNameWithInitial", Label: "Father Name with Initial"},
	MotherName:                   {Name: "motherName", Label: "Mother Name"},
	MaritalStatus:                {Name: "maritalStatus", Label: "Marital Status"},
	SpouseName:                   {Name: "spouseName", Label: "Spouse's Name"},
	CallerName:                   {Name: "callerName", Label: "Caller Name"},
	PermanentName:                {Name: "permanentName", Label: "Permanent Name"},
	PermanentContactNumber:       {Name: "permanentContactNumber", Label: "Permanent Contact Number"},
	OfficialMailID:               {Name: "officialMailId", Label: "Official Mail ID"},
	RentOrOwnHouse:               {Name: "rentOrOwnHouse", Label: "Rent House / Own House"},
	PresentAddress:               {Name: "presentAddress", Label: "Present Address"},
	PresentAddressLandmark:       {Name: "presentAddressLandmark", Label: "Present Address Landmark"},
	PresentAddressStayDuration:   {Name: "presentAddressStayDuration", Label: "Present Address Stay Duration"},
	PermanentAddress:             {Name: "permanentAddress", Label: "Permanent Address"},
	PresentContactNumber:         {Name: "presentContactNumber", Label: "Present Contact Number"},
	Designation:                  {Name: "designation", Label: "Designation"},
	CompanyNameAsPerPaySlip:      {Name: "companyNameAsPerPaySlip", Label: "Company Name As Per Pay Slip"},
	OfficeAddress:                {Name: "officeAddress", Label: "Office Address"},
	OfficeAddressLandmark:        {Name: "officeAddressLandmark", Label: "Office Address Landmark"},
	OfficeContactNumber:          {Name: "officeContactNumber", Label: "Office Contact Number"},
	TotalWorkExperience:          {Name: "totalWorkExperience", Label: "Total Work Experience"},
	PresentCompanyWorkExperience: {Name: "presentCompanyWorkExperience", Label: "Present Company Work Experience"},
	NetTakeHomeSalary:            {Name: "netTakeHomeSalary", Label: "Net Take Home Salary"},
	SalaryAccount:                {Name: "salaryAccount", Label: "Salary Account"},
	ExistingLoanDetails:          {Name: "existingLoanDetails", Label: "Existing Loan Details"},
	LoanAmount:                   {Name: "loanAmount", Label: "Loan Amount"},
	BankName:                     {Name: "bankName", Label: "Bank Name"},
	ReferenceRelative1:           {Name: "referenceRelative1", Label: "Reference Relative 1"},
	ReferenceRelative2:           {Name: "referenceRelative2", Label: "Reference Relative 2"},
	DocumentsMail:                {Name: "documentsMail", Label: "Documents Mail"},
	DocumentsWhatsapp:            {Name: "documentsWhatsapp", Label: "Documents WhatsApp"},
}

func nameRule(id form.FieldID, required string) form.FieldRule {
	return form.Rule(id, form.Required(required), form.MinLength(NameMinLength, minChars))
}

func address(id form.FieldID, required string) form.FieldRule {
	return form.Rule(id, form.Required(required), form.MinLength(AddressMinLength, "Minimum 15 characters required"))
}

func phone(id form.FieldID, required string) form.FieldRule {
	return form.Rule(id, form.Required(required), form.Pattern(phoneRe, "Enter valid 10-digit number"))
}

var loanApplicationSchema = form.MustSchema(
	applicationFields,
	[]form.Section{
		{Title: "Applicant Details", Rules: []form.FieldRule{
			nameRule(FatherNameWithInitial, "Father Name is required"),
			nameRule(MotherName, "Mother's name is required"),
			form.Rule(MaritalStatus,
				form.Required("Please select marital status"),
				form.OneOf("Please select marital status", "Single", "Married", "Divorced", "Widowed")),
			form.Rule(SpouseName,
				form.Required("Spouse name is required"),
				form.MinLength(NameMinLength, minChars),
			).OnlyWhen(form.Equals(MaritalStatus, "Married")),
			phone(PermanentContactNumber, "Contact number is required"),
			nameRule(PermanentName, "Permanent name is required"),
		}},
		{Title: "Contact Information Address Details", Rules: []form.FieldRule{
			form.Rule(OfficialMailID,
				form.Required("Official email is required"),
				form.Pattern(emailRe, "Enter a valid email address")),
			form.Rule(RentOrOwnHouse,
				form.Required("Choose an option"),
				form.OneOf("Choose an option", "Own", "Rent")),
			address(PresentAddress, "Present address is required"),
			nameRule(PresentAddressLandmark, "Address landmark is required"),
			address(PermanentAddress, "Permanent address is required"),
			form.Rule(PresentAddressStayDuration,
				form.Required("Duration is required"),
				form.Custom(`Enter duration like "2" or "2 years"`, func(v form.Value) bool {
					return durationRe.MatchString(strings.TrimSpace(v.Text))
				})),
			phone(PresentContactNumber, "Present contact number is required"),
		}},
		{Title: "Employment Information", Rules: []form.FieldRule{
			nameRule(Designation, "Designation is required"),
			nameRule(CompanyNameAsPerPaySlip, "Company Name As Per Pay Slip is required"),
			address(OfficeAddress, "Office address is required"),
			nameRule(OfficeAddressLandmark, "Office Address landmark is required"),
			phone(OfficeContactNumber, "Office contact number is required"),
			form.Rule(TotalWorkExperience,
				form.Required("Total work experience is required"),
				form.Pattern(decimalRe, "Enter a valid number")),
			form.Rule(PresentCompanyWorkExperience,
				form.Required("Present company experience is required"),
				form.Pattern(decimalRe, "Enter a valid number")),
			form.Rule(SalaryAccount,
				form.Required("Salary account number is required"),
				form.Pattern(accountRe, "Enter 9–18 digit number")),
			nameRule(BankName, "Bank name is required"),
		}},
		{Title: "Document & References", Rules: []form.FieldRule{
			nameRule(ReferenceRelative1, "Reference Relative 1 is required"),
			nameRule(ReferenceRelative2, "Reference Relative 2 is required"),
			form.Rule(DocumentsMail,
				form.Required("Documents email is required"),
				form.Pattern(emailRe, "Enter valid email address")),
			phone(DocumentsWhatsapp, "WhatsApp number is required"),
		}},
	},
	form.ClearRule{Governing: MaritalStatus, Dependent: SpouseName, KeepWhen: form.Equals(MaritalStatus, "Married")},
)

// LoanApplicationSchema is the four-section application taken after a lead
// is accepted.
func LoanApplicationSchema() *form.Schema { return loanApplicationSchema }

// Single-step application fields.
const (
	InitialLoanAmount form.FieldID = iota
	InitialFirstName
	InitialSecondName
	InitialLastName
	InitialDOB
	InitialContactNumber
	InitialEmail
	InitialNetTakeHomeSalary
	InitialLoanType
	InitialTermsAccepted
)

const dobLayout = "2006-01-02"

// InitialApplicationSchema is the single-section lead form. now decides the
// cut-off date for the minimum age.
func InitialApplicationSchema(now func() time.Time) *form.Schema {
	if now == nil {
		now = time.Now
	}
	return form.MustSchema(
		[]form.Field{
			InitialLoanAmount:        {Name: "loanAmount", Label: "Loan Amount Required"},
			InitialFirstName:         {Name: "firstName", Label: "First Name"},
			InitialSecondName:        {Name: "secondName", Label: "Second Name"},
			InitialLastName:          {Name: "lastName", Label: "Last Name"},
			InitialDOB:               {Name: "dob", Label: "Date of Birth"},
			InitialContactNumber:     {Name: "contactNumber", Label: "Contact Number"},
			InitialEmail:             {Name: "email", Label: "Email"},
			InitialNetTakeHomeSalary: {Name: "netTakeHomeSalary", Label: "Net Take Home Salary"},
			InitialLoanType:          {Name: "loanType", Label: "Loan Type"},
			InitialTermsAccepted:     {Name: "termsAccepted", Label: "Terms and Conditions", Kind: form.KindBool},
		},
		[]form.Section{{Title: "Personal & Contact Information", Rules: []form.FieldRule{
			form.Rule(InitialFirstName,
				form.Required("First name is required"),
				form.MinLength(NameMinLength, "First name must be at least 4 characters")),
			form.Rule(InitialLastName,
				form.Required("Last name is required"),
				form.MinLength(NameMinLength, "Last name must be at least 4 characters")),
			form.Rule(InitialLoanAmount,
				form.Required("Loan amount is required"),
				form.Numeric("Loan amount must be a valid number"),
				form.NumericRange(MinLoan, MaxLoan,
					"Loan amount must be between "+strconv.Itoa(MinLoan)+" and "+strconv.Itoa(MaxLoan)),
				form.Custom("Amount must be in multiples of ₹1,000", func(v form.Value) bool {
					f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
					return err == nil && math.Mod(f, LoanAmountStep) == 0
				})),
			form.Rule(InitialDOB,
				form.Required("Date of birth is required"),
				form.Custom("Enter a valid date of birth", func(v form.Value) bool {
					_, err := time.Parse(dobLayout, strings.TrimSpace(v.Text))
					return err == nil
				}),
				form.Custom("You must be at least 18 years old", func(v form.Value) bool {
					dob, err := time.Parse(dobLayout, strings.TrimSpace(v.Text))
					if err != nil {
						return false
					}
					return isAdult(dob, now())
				})),
			form.Rule(InitialContactNumber,
				form.Required("Contact number is required"),
				form.Pattern(phoneRe, "Contact must be 10 digits")),
			form.Rule(InitialEmail,
				form.Required("Email is required"),
				form.Pattern(consumerEmailRe, "Enter valid email format"),
				form.Custom("Email domain not allowed", allowedEmailDomain)),
			form.Rule(InitialNetTakeHomeSalary,
				form.Required("Net salary is required"),
				form.Numeric("Salary must be a number"),
				form.Custom("Salary cannot be negative", func(v form.Value) bool {
					f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
					return err == nil && f >= 0
				})),
			form.Rule(InitialLoanType,
				form.Required("Please select loan type"),
				form.OneOf("Please select loan type", "Fresh Loan", "Balance Transfer")),
			form.Rule(InitialTermsAccepted,
				form.Checked("You must accept the Terms and Conditions and Privacy Policy")),
		}}},
	)
}

// isAdult reports whether someone born on dob is at least MinApplicantAge on
// the calendar day of now.
func isAdult(dob, now time.Time) bool {
	y, m, d := now.Date()
	cutoff := time.Date(y-MinApplicantAge, m, d, 0, 0, 0, 0, time.UTC)
	born := time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
	return !born.After(cutoff)
}

func allowedEmailDomain(v form.Value) bool {
	at := strings.LastIndexByte(v.Text, '@')
	if at < 0 {
		return false
	}
	host := strings.ToLower(v.Text[at+1:])
	for _, d := range AllowedEmailDomains {
		if d == host {
			return true
		}
	}
	return false
}

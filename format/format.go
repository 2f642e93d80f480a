// Package format renders amounts for display. Nothing here feeds back into
// computation.
package format

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
	symbol  string
}

// New builds a Formatter for locale (a BCP 47 tag such as "en-IN") and an
// ISO 4217 currency code. An empty symbol falls back to the code.
func New(locale, code, symbol string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("currency %q: %w", code, err)
	}
	if symbol == "" {
		symbol = unit.String() + " "
	}
	return &Formatter{printer: message.NewPrinter(tag), unit: unit, symbol: symbol}, nil
}

// INR is the formatter used when nothing is configured.
func INR() *Formatter {
	f, err := New("en-IN", "INR", "₹")
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Formatter) Code() string { return f.unit.String() }

// Currency rounds to whole units and groups digits per the locale.
func (f *Formatter) Currency(d decimal.Decimal) string {
	sign := ""
	if d.Sign() < 0 {
		sign = "-"
		d = d.Neg()
	}
	v := d.Round(0).InexactFloat64()
	return sign + f.symbol + f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}

// Amount renders d with exactly digits fraction digits.
func (f *Formatter) Amount(d decimal.Decimal, digits int) string {
	v := d.Round(int32(digits)).InexactFloat64()
	return f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits)))
}

// Percent renders a value already expressed in percent, e.g. 72.5 as "72.5%".
func (f *Formatter) Percent(d decimal.Decimal) string {
	return d.Round(2).String() + "%"
}

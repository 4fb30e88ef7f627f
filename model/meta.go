package model

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Defaults used when the invoice number parts are missing.
const (
	DefaultAbbrev   = "XXX"
	DefaultSequence = "01"
	DefaultCurrency = "USD"
	DefaultTermDays = 30
)

// Meta identifies the invoice.
type Meta struct {
	// Number is a freeform invoice number. When empty the number is built
	// from Abbrev and Sequence.
	Number    string `json:"number,omitempty" yaml:"number,omitempty"`
	Abbrev    string `json:"abbrev,omitempty" yaml:"abbrev,omitempty"`
	Sequence  string `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	IssueDate Date   `json:"issueDate,omitempty" yaml:"issueDate,omitempty"`
	DueDate   Date   `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Currency  string `json:"currency,omitempty" yaml:"currency,omitempty"`
	Status    string `json:"status,omitempty" yaml:"status,omitempty"`
	Terms     string `json:"terms,omitempty" yaml:"terms,omitempty"`
}

func (m Meta) normalize() Meta {
	m.Number = strings.TrimSpace(m.Number)
	m.Abbrev = strings.ToUpper(strings.TrimSpace(m.Abbrev))
	m.Sequence = strings.TrimSpace(m.Sequence)
	m.Title = strings.TrimSpace(m.Title)
	m.Currency = NormalizeCurrency(m.Currency)
	m.Status = strings.TrimSpace(m.Status)
	m.Terms = strings.TrimSpace(m.Terms)
	return m
}

// InvoiceNumber returns the freeform number or IN-{ABBREV}-{SEQ}.
func (m Meta) InvoiceNumber() string {
	if n := strings.TrimSpace(m.Number); n != "" {
		return n
	}
	abbrev := strings.TrimSpace(m.Abbrev)
	if abbrev == "" {
		abbrev = DefaultAbbrev
	}
	seq := strings.TrimSpace(m.Sequence)
	if seq == "" {
		seq = DefaultSequence
	}
	return "IN-" + strings.ToUpper(abbrev) + "-" + seq
}

// SplitNumber recovers the abbreviation and sequence from a number in the
// IN-{ABBREV}-{SEQ} shape. ok is false when s has fewer than two parts.
func SplitNumber(s string) (abbrev, seq string, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) < 2 {
		return "", "", false
	}
	seq = DefaultSequence
	if len(parts) > 2 && parts[2] != "" {
		seq = parts[2]
	}
	return parts[1], seq, true
}

var skipWords = map[string]bool{
	"THE": true, "A": true, "AN": true, "AND": true, "OF": true, "FOR": true,
	"TO": true, "IN": true, "ON": true, "AT": true, "FOUNDATION": true,
}

// Abbreviate derives a short upper-case code from a company name: the first
// letter of each significant word, at most six characters.
func Abbreviate(company string) string {
	var b strings.Builder
	for _, word := range strings.Fields(strings.ToUpper(company)) {
		word = strings.Map(func(r rune) rune {
			if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, word)
		if word == "" || skipWords[word] {
			continue
		}
		b.WriteByte(word[0])
		if b.Len() == 6 {
			break
		}
	}
	return b.String()
}

// TermsLabel returns the explicit terms, NET n derived from the issue and
// due dates, or NET 30.
func (m Meta) TermsLabel() string {
	if t := strings.TrimSpace(m.Terms); t != "" {
		return strings.ToUpper(t)
	}
	if !m.IssueDate.IsZero() && !m.DueDate.IsZero() {
		days := int(m.DueDate.t.Sub(m.IssueDate.t).Hours() / 24)
		if days >= 0 {
			return fmt.Sprintf("NET %d", days)
		}
	}
	return fmt.Sprintf("NET %d", DefaultTermDays)
}

// Date is a calendar date exchanged as YYYY-MM-DD. Unparseable input yields
// the zero Date, which renders as an empty string.
type Date struct {
	t time.Time
}

// NewDate wraps t, dropping the time of day.
func NewDate(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

const isoDate = "2006-01-02"

// ParseDate parses YYYY-MM-DD, returning the zero Date on failure.
func ParseDate(s string) Date {
	t, err := time.Parse(isoDate, strings.TrimSpace(s))
	if err != nil {
		return Date{}
	}
	return Date{t: t}
}

// DueIn returns the date days after issue.
func DueIn(issue Date, days int) Date {
	if issue.IsZero() {
		return Date{}
	}
	return Date{t: issue.t.AddDate(0, 0, days)}
}

// Display formats the date as 02-JAN-2006.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return strings.ToUpper(d.t.Format("02-Jan-2006"))
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.t.Format(isoDate)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	*d = ParseDate(string(b))
	return nil
}

var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "$",
	"AUD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// NormalizeCurrency upper-cases an ISO 4217 code and replaces unknown codes
// with USD.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return DefaultCurrency
	}
	for _, r := range code {
		if !unicode.IsLetter(r) {
			return DefaultCurrency
		}
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return DefaultCurrency
	}
	return unit.String()
}

// CurrencyPrefix is the symbol printed before amounts, or "CODE " for
// currencies without a dedicated symbol.
func CurrencyPrefix(code string) string {
	code = NormalizeCurrency(code)
	if s, ok := currencySymbols[code]; ok {
		return s
	}
	return code + " "
}

// FormatMoney rounds to cents and prefixes the currency symbol, with the
// sign in front: -$50.00.
func FormatMoney(v decimal.Decimal, code string) string {
	v = v.Round(2)
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	return sign + CurrencyPrefix(code) + v.StringFixed(2)
}

// FormatQuantity prints a quantity without trailing zeros.
func FormatQuantity(q decimal.Decimal) string {
	return q.String()
}

package invoicedoc

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Fields is the raw field mapping submitted by the form, as decoded from
// JSON. Decode with json.Decoder.UseNumber to keep amounts exact.
type Fields map[string]any

// Amount is a non-negative money amount in cents.
type Amount int64

// MaxAmount caps a single amount at one billion.
const MaxAmount Amount = 1_000_000_000_00

var decimalPattern = regexp.MustCompile(`^([0-9]+)(?:\.([0-9]{1,2}))?$`)

// ParseAmount parses a decimal amount with at most two fractional digits.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	m := decimalPattern.FindStringSubmatch(s)
	if m == nil {
		return parseAmountFallback(s)
	}

	whole, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || whole > int64(MaxAmount/100) {
		return 0, fmt.Errorf("exceeds maximum amount %s", MaxAmount)
	}
	frac := int64(0)
	if m[2] != "" {
		frac, _ = strconv.ParseInt(m[2], 10, 64)
		if len(m[2]) == 1 {
			frac *= 10
		}
	}

	a := Amount(whole*100 + frac)
	if a > MaxAmount {
		return 0, fmt.Errorf("exceeds maximum amount %s", MaxAmount)
	}
	return a, nil
}

// parseAmountFallback handles input the plain decimal pattern rejects:
// negatives, exponent notation, and too many decimals.
func parseAmountFallback(s string) (Amount, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if f == 0 {
		return 0, nil // -0 and -0.00
	}
	if f < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	plain := strconv.FormatFloat(f, 'f', -1, 64)
	if !decimalPattern.MatchString(plain) {
		return 0, fmt.Errorf("%q has more than two decimal places", s)
	}
	return ParseAmount(plain)
}

// String formats whole amounts without decimals and fractional amounts
// with exactly two, with no separators or currency symbol.
func (a Amount) String() string {
	whole, cents := int64(a)/100, int64(a)%100
	if cents == 0 {
		return strconv.FormatInt(whole, 10)
	}
	return fmt.Sprintf("%d.%02d", whole, cents)
}

// MarshalJSON encodes the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

var _ json.Marshaler = Amount(0)

// Placeholder names understood by the invoice template.
const (
	KeyInvoiceID       = "invoiceID"
	KeyPersonName      = "personName"
	KeySalary          = "salary"
	KeyEventID         = "eventID"
	KeyEventName       = "eventName"
	KeyEventDate       = "eventDate"
	KeyTravelExpenses  = "travelExpenses"
	KeyCarExpenses     = "carExpenses"
	KeyParkingExpenses = "parkingExpenses"
	KeyInvoiceDate     = "invoiceDate"
	KeyTotal           = "total"
)

// Record is the canonical, normalized invoice. It is immutable; build one
// with Normalize. Text and date fields may be absent, in which case the
// template merge reports them as missing instead of leaving a blank.
type Record struct {
	text map[string]string

	salary          Amount
	travelExpenses  Amount
	carExpenses     Amount
	parkingExpenses Amount
}

// Text returns a text or date field and whether it is present.
func (r *Record) Text(key string) (string, bool) {
	v, ok := r.text[key]
	return v, ok
}

// InvoiceID returns "{year}-{eventID}", or "" when eventID was absent.
func (r *Record) InvoiceID() string { return r.text[KeyInvoiceID] }

// PersonName returns the billed person's name.
func (r *Record) PersonName() string { return r.text[KeyPersonName] }

// EventID returns the event identifier.
func (r *Record) EventID() string { return r.text[KeyEventID] }

// EventName returns the event name.
func (r *Record) EventName() string { return r.text[KeyEventName] }

// EventDate returns the event date in MM-DD-YYYY form.
func (r *Record) EventDate() string { return r.text[KeyEventDate] }

// InvoiceDate returns the invoice date in MM-DD-YYYY form.
func (r *Record) InvoiceDate() string { return r.text[KeyInvoiceDate] }

// Salary returns the salary amount.
func (r *Record) Salary() Amount { return r.salary }

// TravelExpenses returns the travel expenses amount.
func (r *Record) TravelExpenses() Amount { return r.travelExpenses }

// CarExpenses returns the car expenses amount.
func (r *Record) CarExpenses() Amount { return r.carExpenses }

// ParkingExpenses returns the parking expenses amount.
func (r *Record) ParkingExpenses() Amount { return r.parkingExpenses }

// Total is always the sum of the four amount fields.
func (r *Record) Total() Amount {
	return r.salary + r.travelExpenses + r.carExpenses + r.parkingExpenses
}

// Placeholders returns the substitution map for the template merge.
// Only present fields appear; amounts are always present.
func (r *Record) Placeholders() map[string]string {
	out := make(map[string]string, len(r.text)+5)
	for k, v := range r.text {
		out[k] = v
	}
	out[KeySalary] = r.salary.String()
	out[KeyTravelExpenses] = r.travelExpenses.String()
	out[KeyCarExpenses] = r.carExpenses.String()
	out[KeyParkingExpenses] = r.parkingExpenses.String()
	out[KeyTotal] = r.Total().String()
	return out
}

// String renders a record for logs: identifier and total only.
func (r *Record) String() string {
	return fmt.Sprintf("invoice %s total %s", r.InvoiceID(), r.Total())
}

package invoicedoc

import (
	"encoding/json"
	"errors"
	"maps"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func janeDoe() Fields {
	return Fields{
		"personName":      "Jane Doe",
		"salary":          1000.0,
		"eventID":         "42",
		"eventName":       "Conf",
		"eventDate":       "01-01-2024",
		"travelExpenses":  50.0,
		"carExpenses":     0.0,
		"parkingExpenses": 20.0,
		"invoiceDate":     "01-02-2024",
	}
}

func TestNormalize_CompleteRecord(t *testing.T) {
	t.Parallel()

	rec, err := Normalize(janeDoe(), fixedNow)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := map[string]string{
		"invoiceID":       "2024-42",
		"personName":      "Jane Doe",
		"salary":          "1000",
		"eventID":         "42",
		"eventName":       "Conf",
		"eventDate":       "01-01-2024",
		"travelExpenses":  "50",
		"carExpenses":     "0",
		"parkingExpenses": "20",
		"invoiceDate":     "01-02-2024",
		"total":           "1070",
	}
	if diff := cmp.Diff(want, rec.Placeholders()); diff != "" {
		t.Errorf("Placeholders() mismatch (-want +got):\n%s", diff)
	}
	if rec.Total() != 107000 {
		t.Errorf("Total() = %d cents, want 107000", rec.Total())
	}
	if rec.InvoiceID() != "2024-42" {
		t.Errorf("InvoiceID() = %q, want %q", rec.InvoiceID(), "2024-42")
	}
}

func TestNormalize_Amounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		salary    any
		wantTotal string
	}{
		{"absent defaults to zero", nil, "70"},
		{"empty string is zero", "", "70"},
		{"whitespace string is zero", "  ", "70"},
		{"numeric string", "1000", "1070"},
		{"json number", json.Number("1000.5"), "1070.50"},
		{"two decimals", "999.99", "1069.99"},
		{"int", 1000, "1070"},
		{"int64", int64(1000), "1070"},
		{"float", 12.25, "82.25"},
		{"exponent", json.Number("1e3"), "1070"},
		{"negative zero", "-0", "70"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := janeDoe()
			if tt.salary == nil {
				delete(raw, "salary")
			} else {
				raw["salary"] = tt.salary
			}

			rec, err := Normalize(raw, fixedNow)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got := rec.Total().String(); got != tt.wantTotal {
				t.Errorf("total = %q, want %q", got, tt.wantTotal)
			}
		})
	}
}

func TestNormalize_IgnoresSuppliedTotalAndInvoiceID(t *testing.T) {
	t.Parallel()

	raw := janeDoe()
	raw["total"] = 999999
	raw["invoiceID"] = "forged"
	raw["invoiceId"] = "forged"

	rec, err := Normalize(raw, fixedNow)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	p := rec.Placeholders()
	if p["total"] != "1070" {
		t.Errorf("total = %q, want computed 1070", p["total"])
	}
	if p["invoiceID"] != "2024-42" {
		t.Errorf("invoiceID = %q, want derived 2024-42", p["invoiceID"])
	}
}

func TestNormalize_Dates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"canonical", "01-01-2024", "01-01-2024"},
		{"html date input", "2024-01-31", "01-31-2024"},
		{"slashes", "12/25/2024", "12-25-2024"},
		{"rfc3339", "2024-07-04T09:00:00Z", "07-04-2024"},
		{"surrounding spaces", " 01-01-2024 ", "01-01-2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := janeDoe()
			raw["eventDate"] = tt.input

			rec, err := Normalize(raw, fixedNow)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got := rec.EventDate(); got != tt.want {
				t.Errorf("EventDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize_InvoiceDateDefaultsToNow(t *testing.T) {
	t.Parallel()

	for _, v := range []any{nil, ""} {
		raw := janeDoe()
		if v == nil {
			delete(raw, "invoiceDate")
		} else {
			raw["invoiceDate"] = v
		}

		rec, err := Normalize(raw, fixedNow)
		if err != nil {
			t.Fatalf("Normalize(invoiceDate=%v) error = %v", v, err)
		}
		if got := rec.InvoiceDate(); got != "03-15-2024" {
			t.Errorf("InvoiceDate() = %q, want 03-15-2024", got)
		}
	}
}

func TestNormalize_InvoiceIDUsesGenerationYear(t *testing.T) {
	t.Parallel()

	raw := janeDoe()
	raw["eventDate"] = "12-31-2019"

	rec, err := Normalize(raw, time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if rec.InvoiceID() != "2031-42" {
		t.Errorf("InvoiceID() = %q, want 2031-42", rec.InvoiceID())
	}
}

func TestNormalize_EventIDAlias(t *testing.T) {
	t.Parallel()

	t.Run("alias accepted", func(t *testing.T) {
		t.Parallel()

		raw := janeDoe()
		delete(raw, "eventID")
		raw["eventId"] = "7"

		rec, err := Normalize(raw, fixedNow)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if rec.EventID() != "7" || rec.InvoiceID() != "2024-7" {
			t.Errorf("EventID() = %q, InvoiceID() = %q", rec.EventID(), rec.InvoiceID())
		}
	})

	t.Run("canonical key wins", func(t *testing.T) {
		t.Parallel()

		raw := janeDoe()
		raw["eventId"] = "7"

		rec, err := Normalize(raw, fixedNow)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if rec.EventID() != "42" {
			t.Errorf("EventID() = %q, want 42", rec.EventID())
		}
	})

	t.Run("numeric event id", func(t *testing.T) {
		t.Parallel()

		raw := janeDoe()
		raw["eventID"] = json.Number("42")

		rec, err := Normalize(raw, fixedNow)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if rec.InvoiceID() != "2024-42" {
			t.Errorf("InvoiceID() = %q, want 2024-42", rec.InvoiceID())
		}
	})
}

func TestNormalize_AbsentTextStaysAbsent(t *testing.T) {
	t.Parallel()

	rec, err := Normalize(Fields{"personName": "Jane"}, fixedNow)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	p := rec.Placeholders()
	for _, key := range []string{"eventID", "invoiceID", "eventName", "eventDate"} {
		if _, ok := p[key]; ok {
			t.Errorf("placeholder %q present, want absent", key)
		}
	}
	if p["total"] != "0" {
		t.Errorf("total = %q, want 0", p["total"])
	}
}

func TestNormalize_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(Fields)
		wantField string
	}{
		{"non numeric amount", func(f Fields) { f["salary"] = "abc" }, "salary"},
		{"negative amount", func(f Fields) { f["travelExpenses"] = -5.0 }, "travelExpenses"},
		{"negative string amount", func(f Fields) { f["carExpenses"] = "-1" }, "carExpenses"},
		{"three decimals", func(f Fields) { f["parkingExpenses"] = "1.234" }, "parkingExpenses"},
		{"bool amount", func(f Fields) { f["salary"] = true }, "salary"},
		{"amount too large", func(f Fields) { f["salary"] = "10000000000" }, "salary"},
		{"unparseable date", func(f Fields) { f["eventDate"] = "not-a-date" }, "eventDate"},
		{"impossible date", func(f Fields) { f["invoiceDate"] = "02-30-2024" }, "invoiceDate"},
		{"date of wrong type", func(f Fields) { f["eventDate"] = 20240101 }, "eventDate"},
		{"blank person name", func(f Fields) { f["personName"] = "   " }, "personName"},
		{"blank event id", func(f Fields) { f["eventID"] = "" }, "eventID"},
		{"name too long", func(f Fields) { f["personName"] = strings.Repeat("é", MaxTextLength+1) }, "personName"},
		{"object as text", func(f Fields) { f["eventName"] = map[string]any{} }, "eventName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := janeDoe()
			tt.mutate(raw)

			rec, err := Normalize(raw, fixedNow)
			if rec != nil {
				t.Error("Normalize() returned a record on error")
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Normalize() error = %v, want ErrValidation", err)
			}
			if KindOf(err) != KindValidation {
				t.Errorf("KindOf() = %q, want %q", KindOf(err), KindValidation)
			}

			fields := FieldErrors(err)
			if len(fields) != 1 || fields[0].Field != tt.wantField {
				t.Errorf("FieldErrors() = %v, want one error for %q", fields, tt.wantField)
			}
		})
	}
}

func TestNormalize_ReportsEveryInvalidField(t *testing.T) {
	t.Parallel()

	raw := janeDoe()
	raw["salary"] = "abc"
	raw["eventDate"] = "nope"
	raw["personName"] = ""

	_, err := Normalize(raw, fixedNow)

	var got []string
	for _, fe := range FieldErrors(err) {
		got = append(got, fe.Field)
	}
	want := []string{"personName", "eventDate", "salary"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("invalid fields mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_IsPure(t *testing.T) {
	t.Parallel()

	raw := janeDoe()
	raw["eventId"] = "alias"
	before := maps.Clone(raw)

	a, err := Normalize(raw, fixedNow)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	b, err := Normalize(raw, fixedNow)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if diff := cmp.Diff(a.Placeholders(), b.Placeholders()); diff != "" {
		t.Errorf("repeated Normalize() differs:\n%s", diff)
	}
	if diff := cmp.Diff(before, raw); diff != "" {
		t.Errorf("Normalize() modified its input:\n%s", diff)
	}
}

package invoicedoc

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alnah/go-invoicedoc/internal/dateutil"
)

// MaxTextLength bounds free-text fields, in characters.
const MaxTextLength = 200

// keyAliases maps alternate spellings sent by older form versions.
var keyAliases = map[string]string{
	"eventId": KeyEventID,
}

// amountKeys lists the numeric fields in validation order.
var amountKeys = []string{KeySalary, KeyTravelExpenses, KeyCarExpenses, KeyParkingExpenses}

// Normalize converts a raw field mapping into a canonical Record.
//
// Amounts default to 0 when absent, null or empty. Dates are accepted in
// several layouts and re-emitted as MM-DD-YYYY; an absent invoiceDate
// defaults to now. The invoice identifier and total are always derived,
// never taken from input. Every invalid field is reported: the returned
// error joins one *FieldError per field and matches ErrValidation.
//
// Normalize is pure: now is the only source of time.
func Normalize(raw Fields, now time.Time) (*Record, error) {
	in := canonicalKeys(raw)
	rec := &Record{text: make(map[string]string)}
	var errs []error

	if v, ok := in[KeyPersonName]; ok {
		s, err := textValue(KeyPersonName, v)
		switch {
		case err != nil:
			errs = append(errs, err)
		case strings.TrimSpace(s) == "":
			errs = append(errs, fieldErr(KeyPersonName, "must not be blank"))
		default:
			rec.text[KeyPersonName] = strings.TrimSpace(s)
		}
	}

	if v, ok := in[KeyEventID]; ok {
		s, err := textValue(KeyEventID, v)
		switch {
		case err != nil:
			errs = append(errs, err)
		case strings.TrimSpace(s) == "":
			errs = append(errs, fieldErr(KeyEventID, "must not be blank"))
		default:
			id := strings.TrimSpace(s)
			rec.text[KeyEventID] = id
			rec.text[KeyInvoiceID] = strconv.Itoa(now.Year()) + "-" + id
		}
	}

	if v, ok := in[KeyEventName]; ok {
		s, err := textValue(KeyEventName, v)
		if err != nil {
			errs = append(errs, err)
		} else {
			rec.text[KeyEventName] = strings.TrimSpace(s)
		}
	}

	for _, key := range []string{KeyEventDate, KeyInvoiceDate} {
		s, present, err := dateValue(key, in[key])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if present {
			rec.text[key] = s
		}
	}
	if _, ok := rec.text[KeyInvoiceDate]; !ok {
		rec.text[KeyInvoiceDate] = dateutil.Format(now)
	}

	amounts := make([]Amount, len(amountKeys))
	for i, key := range amountKeys {
		a, err := amountValue(key, in[key])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		amounts[i] = a
	}
	rec.salary, rec.travelExpenses, rec.carExpenses, rec.parkingExpenses = amounts[0], amounts[1], amounts[2], amounts[3]

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rec, nil
}

// canonicalKeys folds aliases. The canonical spelling wins when both appear.
func canonicalKeys(raw Fields) Fields {
	out := make(Fields, len(raw))
	for k, v := range raw {
		if _, isAlias := keyAliases[k]; !isAlias {
			out[k] = v
		}
	}
	for alias, canonical := range keyAliases {
		if v, ok := raw[alias]; ok {
			if _, taken := out[canonical]; !taken {
				out[canonical] = v
			}
		}
	}
	return out
}

// textValue accepts strings and numbers, rendering numbers verbatim.
func textValue(key string, v any) (string, error) {
	var s string
	switch t := v.(type) {
	case nil:
		s = ""
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	default:
		return "", fieldErr(key, "must be text, got %T", v)
	}
	if n := utf8.RuneCountInString(s); n > MaxTextLength {
		return "", fieldErr(key, "is %d characters, maximum is %d", n, MaxTextLength)
	}
	return s, nil
}

// dateValue returns the canonical date and whether the field is present.
// Empty strings count as absent.
func dateValue(key string, v any) (string, bool, error) {
	if v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, fieldErr(key, "must be a date string, got %T", v)
	}
	if strings.TrimSpace(s) == "" {
		return "", false, nil
	}
	canonical, err := dateutil.Canonicalize(s)
	if err != nil {
		return "", false, fieldErr(key, "%v", err)
	}
	return canonical, true, nil
}

// amountValue converts a numeric field. Absent, null and empty are zero.
func amountValue(key string, v any) (Amount, error) {
	var s string
	switch t := v.(type) {
	case nil:
		return 0, nil
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	default:
		return 0, fieldErr(key, "must be a number, got %T", v)
	}
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	a, err := ParseAmount(s)
	if err != nil {
		return 0, fieldErr(key, "%v", err)
	}
	return a, nil
}

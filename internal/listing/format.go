// Package listing renders user records as a collapsible-row table.
// Output is plain text decorated with lipgloss styles; PlainStyles renders
// without escape codes for pipes and tests.
package listing

import (
	"fmt"
	"strings"
	"time"

	"github.com/smileynet/pdm/internal/record"
)

// Placeholders shown in place of missing or malformed values.
const (
	NotAvailable = "N/A"
	InvalidDate  = "Invalid date"
	NoUsers      = "No users found."
	NoAddresses  = "No addresses listed."
	NoPhones     = "No phone numbers listed."
)

// FormatDate renders a wire date as M/D/YYYY. Empty input renders as N/A
// and anything unparseable as InvalidDate. Full RFC 3339 timestamps are
// accepted and rendered by their own calendar day.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NotAvailable
	}
	d, err := record.ParseDate(s)
	if err != nil {
		t, terr := time.Parse(time.RFC3339Nano, s)
		if terr != nil {
			return InvalidDate
		}
		d = record.DateOf(t)
	}
	return fmt.Sprintf("%d/%d/%d", int(d.Month), d.Day, d.Year)
}

// FormatAddress renders "<postal> <city>, <street> <house>" followed by
// " (<otherInfo>)" when present. Separators left dangling by empty parts
// are dropped; the field text itself is kept as entered.
func FormatAddress(a record.Address) string {
	s := strings.Join(nonEmpty(
		strings.Join(nonEmpty(a.PostalCode, a.City), " "),
		strings.Join(nonEmpty(a.Street, a.HouseNumber), " "),
	), ", ")
	if a.OtherInfo != "" {
		s = strings.Join(nonEmpty(s, "("+a.OtherInfo+")"), " ")
	}
	return s
}

// nonEmpty drops parts that are blank.
func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// FormatPhone renders a phone number with a leading "+".
func FormatPhone(p record.PhoneNumber) string {
	return "+" + p.PhoneNumber
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// Package schema validates user record payloads against the declarative
// rules carried in the record package's struct tags. Every violated rule is
// reported; validation never stops at the first failure.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/smileynet/pdm/internal/record"
)

// Violation is a single failed rule, scoped to a field path such as
// "email" or "addresses[1].city".
type Violation struct {
	Field   string
	Message string
}

// Violations is the full set of failed rules for one payload.
type Violations []Violation

// Error summarizes the violations.
func (v Violations) Error() string {
	if len(v) == 1 {
		return fmt.Sprintf("validation failed: %s: %s", v[0].Field, v[0].Message)
	}
	return fmt.Sprintf("validation failed: %d problems", len(v))
}

// For returns the messages recorded for the given field path.
func (v Violations) For(field string) []string {
	var msgs []string
	for _, vi := range v {
		if vi.Field == field {
			msgs = append(msgs, vi.Message)
		}
	}
	return msgs
}

// First returns the first message for field, or "" if the field is valid.
func (v Violations) First(field string) string {
	for _, vi := range v {
		if vi.Field == field {
			return vi.Message
		}
	}
	return ""
}

// Validator checks record payloads.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the record rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("isodate", isISODate)
	return &Validator{v: v}
}

// Input validates a create (or full edit) payload.
func (s *Validator) Input(in record.Input) error {
	return s.check(in)
}

// Update validates the fields supplied in a partial update.
func (s *Validator) Update(in record.UpdateInput) error {
	return s.check(in)
}

func (s *Validator) check(payload any) error {
	err := s.v.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("schema: %w", err)
	}
	out := make(Violations, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Violation{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe.Field(), fe.Tag()),
		})
	}
	return out
}

// fieldPath strips the root struct name from a validator namespace:
// "Input.addresses[0].city" becomes "addresses[0].city".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(record.DateLayout, fl.Field().String())
	return err == nil
}

// labels names each field for "<label> is required" messages.
var labels = map[string]string{
	"name":             "Name",
	"email":            "Email",
	"dateOfBirth":      "Date of birth",
	"placeOfBirth":     "Place of birth",
	"motherMaidenName": "Mother's maiden name",
	"taj":              "TAJ",
	"taxId":            "Tax ID",
	"postalCode":       "Postal code",
	"city":             "City",
	"street":           "Street",
	"houseNumber":      "House number",
	"phoneNumber":      "Phone number",
}

// Messages for rules that are not plain presence checks.
var special = map[string]string{
	"email/email":         "Invalid email address",
	"dateOfBirth/isodate": "Date of birth must be a valid date (YYYY-MM-DD)",
	"taj/len":             "TAJ must be exactly 9 characters",
	"taxId/len":           "Tax ID must be exactly 10 characters",
	"addresses/min":       "At least one address is required",
	"phoneNumbers/min":    "At least one phone number is required",
}

func message(field, tag string) string {
	if msg, ok := special[field+"/"+tag]; ok {
		return msg
	}
	label, ok := labels[field]
	if !ok {
		label = field
	}
	switch tag {
	case "required", "min":
		return label + " is required"
	default:
		return fmt.Sprintf("%s is invalid (%s)", label, tag)
	}
}

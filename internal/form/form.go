// Package form holds the editable state of one user record: scalar fields
// plus the address and phone collections, with validation and payload
// conversion. It has no rendering dependency; internal/dashboard draws it.
package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/smileynet/pdm/internal/record"
	"github.com/smileynet/pdm/internal/schema"
)

// ErrUnknownField is returned when a FieldRef does not name a field of the form.
var ErrUnknownField = errors.New("form: unknown field")

// Mode distinguishes creating a new record from editing an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// AddressEntry is an address row with its client-local tracking key.
// Key is never sent to the server; ID is the server id, if any.
type AddressEntry struct {
	Key string
	record.Address
}

// PhoneEntry is a phone row with its client-local tracking key.
type PhoneEntry struct {
	Key string
	record.PhoneNumber
}

// Form is the editable state of one record.
type Form struct {
	mode     Mode
	recordID string

	name             string
	email            string
	dobText          string
	dob              record.Date
	dobSet           bool
	placeOfBirth     string
	motherMaidenName string
	taj              string
	taxID            string

	addresses []AddressEntry
	phones    []PhoneEntry

	violations schema.Violations
	submitted  bool

	validator *schema.Validator
	newKey    func() string
}

// Option configures a Form.
type Option func(*Form)

// WithKeyFunc replaces the tracking key generator (random UUIDs by default).
func WithKeyFunc(fn func() string) Option {
	return func(f *Form) {
		f.newKey = fn
	}
}

// WithValidator sets the schema validator used by Validate and Submit.
func WithValidator(v *schema.Validator) Option {
	return func(f *Form) {
		f.validator = v
	}
}

// New creates a Form for initial, or an empty create-mode form when initial
// is nil.
func New(initial *record.UserRecord, opts ...Option) *Form {
	f := &Form{newKey: uuid.NewString}
	for _, opt := range opts {
		opt(f)
	}
	if f.validator == nil {
		f.validator = schema.New()
	}
	f.Reset(initial)
	return f
}

// Reset replaces the whole field set with the state derived from initial.
// Nothing from the previous record survives: scalars, collections,
// violations, and the submitted flag are all rebuilt.
func (f *Form) Reset(initial *record.UserRecord) {
	*f = Form{validator: f.validator, newKey: f.newKey}

	if initial == nil {
		f.mode = ModeCreate
		f.AppendAddress()
		f.AppendPhone()
		return
	}

	f.mode = ModeEdit
	f.recordID = initial.ID
	f.name = initial.Name
	f.email = initial.Email
	f.setDateText(initial.DateOfBirth)
	f.placeOfBirth = initial.PlaceOfBirth
	f.motherMaidenName = initial.MotherMaidenName
	f.taj = initial.TAJ
	f.taxID = initial.TaxID

	for _, a := range initial.Addresses {
		f.addresses = append(f.addresses, AddressEntry{Key: f.newKey(), Address: a})
	}
	for _, p := range initial.PhoneNumbers {
		f.phones = append(f.phones, PhoneEntry{Key: f.newKey(), PhoneNumber: p})
	}
	// The UI always shows at least one row per collection.
	if len(f.addresses) == 0 {
		f.AppendAddress()
	}
	if len(f.phones) == 0 {
		f.AppendPhone()
	}
}

// Mode reports whether the form creates or edits a record.
func (f *Form) Mode() Mode { return f.mode }

// RecordID returns the id of the record being edited, or "" in create mode.
func (f *Form) RecordID() string { return f.recordID }

// Submitted reports whether Submit has been called since the last Reset.
func (f *Form) Submitted() bool { return f.submitted }

// Addresses returns a copy of the address rows in display order.
func (f *Form) Addresses() []AddressEntry {
	return append([]AddressEntry(nil), f.addresses...)
}

// Phones returns a copy of the phone rows in display order.
func (f *Form) Phones() []PhoneEntry {
	return append([]PhoneEntry(nil), f.phones...)
}

// AppendAddress adds a blank address at the end and returns its key.
func (f *Form) AppendAddress() string {
	key := f.newKey()
	f.addresses = append(f.addresses, AddressEntry{Key: key})
	f.collectionsChanged()
	return key
}

// AppendPhone adds a blank phone number at the end and returns its key.
func (f *Form) AppendPhone() string {
	key := f.newKey()
	f.phones = append(f.phones, PhoneEntry{Key: key})
	f.collectionsChanged()
	return key
}

// CanRemoveAddress reports whether an address row may be removed.
func (f *Form) CanRemoveAddress() bool { return len(f.addresses) > 1 }

// CanRemovePhone reports whether a phone row may be removed.
func (f *Form) CanRemovePhone() bool { return len(f.phones) > 1 }

// RemoveAddress deletes the address at index i. It is a no-op returning
// false when only one address remains or i is out of range.
func (f *Form) RemoveAddress(i int) bool {
	if !f.CanRemoveAddress() || i < 0 || i >= len(f.addresses) {
		return false
	}
	f.addresses = append(f.addresses[:i:i], f.addresses[i+1:]...)
	f.collectionsChanged()
	return true
}

// RemovePhone deletes the phone number at index i. It is a no-op returning
// false when only one phone number remains or i is out of range.
func (f *Form) RemovePhone(i int) bool {
	if !f.CanRemovePhone() || i < 0 || i >= len(f.phones) {
		return false
	}
	f.phones = append(f.phones[:i:i], f.phones[i+1:]...)
	f.collectionsChanged()
	return true
}

// collectionsChanged keeps violations in step with re-indexed rows.
func (f *Form) collectionsChanged() {
	if f.validator == nil {
		return
	}
	if f.submitted {
		f.Validate()
		return
	}
	kept := f.violations[:0]
	for _, v := range f.violations {
		if !strings.HasPrefix(v.Field, "addresses") && !strings.HasPrefix(v.Field, "phoneNumbers") {
			kept = append(kept, v)
		}
	}
	f.violations = kept
}

// Date returns the internal date of birth and whether one is set.
func (f *Form) Date() (record.Date, bool) {
	return f.dob, f.dobSet
}

// SetDate sets the date of birth directly.
func (f *Form) SetDate(d record.Date) {
	f.dob = d
	f.dobSet = true
	f.dobText = d.String()
}

// ClearDate unsets the date of birth.
func (f *Form) ClearDate() {
	f.dob = record.Date{}
	f.dobSet = false
	f.dobText = ""
}

func (f *Form) setDateText(text string) {
	f.dobText = text
	d, err := record.ParseDate(strings.TrimSpace(text))
	if err != nil {
		f.dob = record.Date{}
		f.dobSet = false
		return
	}
	f.dob = d
	f.dobSet = true
}

// Value returns the current text of the field.
func (f *Form) Value(ref FieldRef) (string, error) {
	p, err := f.field(ref)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// SetValue replaces the text of the field. Setting the date of birth parses
// the text into the internal date value.
func (f *Form) SetValue(ref FieldRef, value string) error {
	if ref.Group == GroupUser && ref.Name == FieldDateOfBirth {
		f.setDateText(value)
	} else {
		p, err := f.field(ref)
		if err != nil {
			return err
		}
		*p = value
	}
	if f.submitted {
		f.Validate()
	}
	return nil
}

func (f *Form) field(ref FieldRef) (*string, error) {
	switch ref.Group {
	case GroupUser:
		switch ref.Name {
		case FieldName:
			return &f.name, nil
		case FieldEmail:
			return &f.email, nil
		case FieldDateOfBirth:
			return &f.dobText, nil
		case FieldPlaceOfBirth:
			return &f.placeOfBirth, nil
		case FieldMotherMaidenName:
			return &f.motherMaidenName, nil
		case FieldTAJ:
			return &f.taj, nil
		case FieldTaxID:
			return &f.taxID, nil
		}
	case GroupAddress:
		if ref.Index < 0 || ref.Index >= len(f.addresses) {
			break
		}
		a := &f.addresses[ref.Index].Address
		switch ref.Name {
		case FieldPostalCode:
			return &a.PostalCode, nil
		case FieldCity:
			return &a.City, nil
		case FieldStreet:
			return &a.Street, nil
		case FieldHouseNumber:
			return &a.HouseNumber, nil
		case FieldOtherInfo:
			return &a.OtherInfo, nil
		}
	case GroupPhone:
		if ref.Index < 0 || ref.Index >= len(f.phones) {
			break
		}
		if ref.Name == FieldPhoneNumber {
			return &f.phones[ref.Index].PhoneNumber.PhoneNumber, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownField, ref.Path())
}

// Input returns the current values as a payload, without validating.
// The date of birth is the text as entered.
func (f *Form) Input() record.Input {
	in := record.Input{
		Name:             f.name,
		Email:            f.email,
		DateOfBirth:      strings.TrimSpace(f.dobText),
		PlaceOfBirth:     f.placeOfBirth,
		MotherMaidenName: f.motherMaidenName,
		TAJ:              f.taj,
		TaxID:            f.taxID,
		Addresses:        make([]record.Address, len(f.addresses)),
		PhoneNumbers:     make([]record.PhoneNumber, len(f.phones)),
	}
	for i, a := range f.addresses {
		in.Addresses[i] = a.Address
	}
	for i, p := range f.phones {
		in.PhoneNumbers[i] = p.PhoneNumber
	}
	return in
}

// Violations returns the violations from the most recent validation.
func (f *Form) Violations() schema.Violations {
	return f.violations
}

// Validate evaluates every rule and records the result.
func (f *Form) Validate() schema.Violations {
	f.violations = f.check()
	return f.violations
}

// ValidateField evaluates the rules for a single field, updates the
// recorded violations for that field only, and returns its messages.
func (f *Form) ValidateField(ref FieldRef) []string {
	path := ref.Path()
	msgs := f.check().For(path)

	kept := make(schema.Violations, 0, len(f.violations)+len(msgs))
	for _, v := range f.violations {
		if v.Field != path {
			kept = append(kept, v)
		}
	}
	for _, m := range msgs {
		kept = append(kept, schema.Violation{Field: path, Message: m})
	}
	f.violations = kept
	return msgs
}

func (f *Form) check() schema.Violations {
	err := f.validator.Input(f.Input())
	if err == nil {
		return nil
	}
	var v schema.Violations
	if errors.As(err, &v) {
		return v
	}
	// A non-rule failure still blocks submission.
	return schema.Violations{{Field: "", Message: err.Error()}}
}

// Submit validates the form and returns the payload to send. On failure the
// returned error is schema.Violations and nothing should be sent.
func (f *Form) Submit() (record.Input, error) {
	f.submitted = true
	if v := f.Validate(); len(v) > 0 {
		return record.Input{}, v
	}
	in := f.Input()
	in.DateOfBirth = f.dob.String()
	if f.mode == ModeCreate {
		in = in.Create()
	}
	return in, nil
}

package form

import "fmt"

// Group identifies which part of the form a field belongs to.
type Group int

const (
	GroupUser Group = iota
	GroupAddress
	GroupPhone
)

// Field names. They match the JSON names used in violation paths.
const (
	FieldName             = "name"
	FieldEmail            = "email"
	FieldDateOfBirth      = "dateOfBirth"
	FieldPlaceOfBirth     = "placeOfBirth"
	FieldMotherMaidenName = "motherMaidenName"
	FieldTAJ              = "taj"
	FieldTaxID            = "taxId"

	FieldPostalCode  = "postalCode"
	FieldCity        = "city"
	FieldStreet      = "street"
	FieldHouseNumber = "houseNumber"
	FieldOtherInfo   = "otherInfo"

	FieldPhoneNumber = "phoneNumber"
)

var (
	userFields    = []string{FieldName, FieldEmail, FieldDateOfBirth, FieldPlaceOfBirth, FieldMotherMaidenName, FieldTAJ, FieldTaxID}
	addressFields = []string{FieldPostalCode, FieldCity, FieldStreet, FieldHouseNumber, FieldOtherInfo}
)

var fieldLabels = map[string]string{
	FieldName:             "Name",
	FieldEmail:            "Email",
	FieldDateOfBirth:      "Date of Birth",
	FieldPlaceOfBirth:     "Place of Birth",
	FieldMotherMaidenName: "Mother's Maiden Name",
	FieldTAJ:              "TAJ Number",
	FieldTaxID:            "Tax ID",
	FieldPostalCode:       "Postal Code",
	FieldCity:             "City",
	FieldStreet:           "Street",
	FieldHouseNumber:      "House Number",
	FieldOtherInfo:        "Other Info",
	FieldPhoneNumber:      "Phone Number",
}

// FieldRef addresses one editable field. Index is ignored for GroupUser.
type FieldRef struct {
	Group Group
	Index int
	Name  string
}

// User returns a reference to a scalar field.
func User(name string) FieldRef {
	return FieldRef{Group: GroupUser, Name: name}
}

// Address returns a reference to a field of the i-th address.
func Address(i int, name string) FieldRef {
	return FieldRef{Group: GroupAddress, Index: i, Name: name}
}

// Phone returns a reference to the i-th phone number.
func Phone(i int) FieldRef {
	return FieldRef{Group: GroupPhone, Index: i, Name: FieldPhoneNumber}
}

// Path renders the violation path for the field, e.g. "addresses[1].city".
func (r FieldRef) Path() string {
	switch r.Group {
	case GroupAddress:
		return fmt.Sprintf("addresses[%d].%s", r.Index, r.Name)
	case GroupPhone:
		return fmt.Sprintf("phoneNumbers[%d].%s", r.Index, r.Name)
	default:
		return r.Name
	}
}

// Label is the human-readable name of the field.
func (r FieldRef) Label() string {
	if l, ok := fieldLabels[r.Name]; ok {
		return l
	}
	return r.Name
}

// Fields lists every editable field in display order: scalars, then each
// address, then each phone number.
func (f *Form) Fields() []FieldRef {
	refs := make([]FieldRef, 0, len(userFields)+len(f.addresses)*len(addressFields)+len(f.phones))
	for _, name := range userFields {
		refs = append(refs, User(name))
	}
	for i := range f.addresses {
		for _, name := range addressFields {
			refs = append(refs, Address(i, name))
		}
	}
	for i := range f.phones {
		refs = append(refs, Phone(i))
	}
	return refs
}

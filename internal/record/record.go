// Package record defines the user record shapes exchanged with the users API.
package record

// Address is a postal address owned by a UserRecord.
type Address struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	PostalCode  string `json:"postalCode" yaml:"postalCode" validate:"required"`
	City        string `json:"city" yaml:"city" validate:"required"`
	Street      string `json:"street" yaml:"street" validate:"required"`
	HouseNumber string `json:"houseNumber" yaml:"houseNumber" validate:"required"`
	OtherInfo   string `json:"otherInfo,omitempty" yaml:"otherInfo,omitempty"`
}

// PhoneNumber is a phone number owned by a UserRecord.
type PhoneNumber struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	PhoneNumber string `json:"phoneNumber" yaml:"phoneNumber" validate:"required"`
}

// UserRecord is a user as returned by the API.
// DateOfBirth is the wire string (YYYY-MM-DD) and is empty for
// depersonalized records.
type UserRecord struct {
	ID               string        `json:"id" yaml:"id"`
	Name             string        `json:"name" yaml:"name"`
	Email            string        `json:"email" yaml:"email"`
	DateOfBirth      string        `json:"dateOfBirth" yaml:"dateOfBirth"`
	PlaceOfBirth     string        `json:"placeOfBirth" yaml:"placeOfBirth"`
	MotherMaidenName string        `json:"motherMaidenName" yaml:"motherMaidenName"`
	TAJ              string        `json:"taj" yaml:"taj"`
	TaxID            string        `json:"taxId" yaml:"taxId"`
	Addresses        []Address     `json:"addresses" yaml:"addresses"`
	PhoneNumbers     []PhoneNumber `json:"phoneNumbers" yaml:"phoneNumbers"`
}

// Input is the full payload for creating a user. Entries carry no server
// ids on create; on edit the form keeps the ids it was given.
type Input struct {
	Name             string        `json:"name" yaml:"name" validate:"required"`
	Email            string        `json:"email" yaml:"email" validate:"email"`
	DateOfBirth      string        `json:"dateOfBirth" yaml:"dateOfBirth" validate:"required,isodate"`
	PlaceOfBirth     string        `json:"placeOfBirth" yaml:"placeOfBirth" validate:"required"`
	MotherMaidenName string        `json:"motherMaidenName" yaml:"motherMaidenName" validate:"required"`
	TAJ              string        `json:"taj" yaml:"taj" validate:"len=9"`
	TaxID            string        `json:"taxId" yaml:"taxId" validate:"len=10"`
	Addresses        []Address     `json:"addresses" yaml:"addresses" validate:"min=1,dive"`
	PhoneNumbers     []PhoneNumber `json:"phoneNumbers" yaml:"phoneNumbers" validate:"min=1,dive"`
}

// UpdateInput is a partial update. Nil fields are not sent and stay
// unchanged on the server; supplied collections replace the stored ones.
type UpdateInput struct {
	Name             *string       `json:"name,omitempty" yaml:"name,omitempty" validate:"omitempty,min=1"`
	Email            *string       `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	DateOfBirth      *string       `json:"dateOfBirth,omitempty" yaml:"dateOfBirth,omitempty" validate:"omitempty,isodate"`
	PlaceOfBirth     *string       `json:"placeOfBirth,omitempty" yaml:"placeOfBirth,omitempty" validate:"omitempty,min=1"`
	MotherMaidenName *string       `json:"motherMaidenName,omitempty" yaml:"motherMaidenName,omitempty" validate:"omitempty,min=1"`
	TAJ              *string       `json:"taj,omitempty" yaml:"taj,omitempty" validate:"omitempty,len=9"`
	TaxID            *string       `json:"taxId,omitempty" yaml:"taxId,omitempty" validate:"omitempty,len=10"`
	Addresses        []Address     `json:"addresses,omitempty" yaml:"addresses,omitempty" validate:"omitempty,min=1,dive"`
	PhoneNumbers     []PhoneNumber `json:"phoneNumbers,omitempty" yaml:"phoneNumbers,omitempty" validate:"omitempty,min=1,dive"`
}

// Update returns an UpdateInput that supplies every field of in.
func (in Input) Update() UpdateInput {
	return UpdateInput{
		Name:             ptr(in.Name),
		Email:            ptr(in.Email),
		DateOfBirth:      ptr(in.DateOfBirth),
		PlaceOfBirth:     ptr(in.PlaceOfBirth),
		MotherMaidenName: ptr(in.MotherMaidenName),
		TAJ:              ptr(in.TAJ),
		TaxID:            ptr(in.TaxID),
		Addresses:        in.Addresses,
		PhoneNumbers:     in.PhoneNumbers,
	}
}

// Create returns a copy of in with server ids stripped from every entry.
func (in Input) Create() Input {
	out := in
	out.Addresses = make([]Address, len(in.Addresses))
	for i, a := range in.Addresses {
		a.ID = ""
		out.Addresses[i] = a
	}
	out.PhoneNumbers = make([]PhoneNumber, len(in.PhoneNumbers))
	for i, p := range in.PhoneNumbers {
		p.ID = ""
		out.PhoneNumbers[i] = p
	}
	return out
}

func ptr(s string) *string {
	return &s
}

package record

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "1990-01-15", want: Date{Year: 1990, Month: time.January, Day: 15}},
		{in: "2000-02-29", want: Date{Year: 2000, Month: time.February, Day: 29}},
		{in: "1999-02-29", wantErr: true},
		{in: "15/01/1990", wantErr: true},
		{in: "1990-1-15", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDate_StringRoundTrip(t *testing.T) {
	d := Date{Year: 987, Month: time.March, Day: 4}
	if d.String() != "0987-03-04" {
		t.Errorf("String() = %q, want %q", d.String(), "0987-03-04")
	}
	back, err := ParseDate(d.String())
	if err != nil || back != d {
		t.Errorf("ParseDate(String()) = %+v, %v; want %+v", back, err, d)
	}
}

func TestDateOf_KeepsLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+14", 14*3600)
	ts := time.Date(1990, time.January, 15, 23, 30, 0, 0, loc)

	if got := DateOf(ts); got != (Date{Year: 1990, Month: time.January, Day: 15}) {
		t.Errorf("DateOf() = %+v", got)
	}
	if !(Date{}).IsZero() {
		t.Error("zero Date IsZero() = false")
	}
}

func TestInput_CreateStripsIDs(t *testing.T) {
	in := Input{
		Name:         "x",
		Addresses:    []Address{{ID: "a1", City: "c"}},
		PhoneNumbers: []PhoneNumber{{ID: "p1", PhoneNumber: "1"}},
	}

	out := in.Create()

	if out.Addresses[0].ID != "" || out.PhoneNumbers[0].ID != "" {
		t.Errorf("Create() kept ids: %+v", out)
	}
	if in.Addresses[0].ID != "a1" {
		t.Error("Create() mutated the receiver")
	}
	b, err := json.Marshal(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), `"id"`) {
		t.Errorf("create payload carries ids: %s", b)
	}
}

func TestInput_UpdateSuppliesEveryField(t *testing.T) {
	in := Input{Name: "n", Email: "e", TAJ: "t", Addresses: []Address{{City: "c"}}}

	up := in.Update()

	if up.Name == nil || *up.Name != "n" || up.Email == nil || up.TaxID == nil {
		t.Errorf("Update() = %+v", up)
	}
	b, err := json.Marshal(up)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"name"`, `"taxId"`, `"dateOfBirth"`, `"addresses"`} {
		if !strings.Contains(string(b), key) {
			t.Errorf("update payload missing %s: %s", key, b)
		}
	}
}

func TestUpdateInput_OmitsUnsetFields(t *testing.T) {
	name := "Renamed"
	b, err := json.Marshal(UpdateInput{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"name":"Renamed"}` {
		t.Errorf("json = %s, want only name", b)
	}
}

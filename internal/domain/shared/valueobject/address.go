package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var pinCodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// Address is a value object representing a physical address.
// It is immutable - all operations return new Address instances.
type Address struct {
	state    string
	district string
	locality string
	detail   string
	pinCode  string
	country  string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithPinCode sets the PIN code for the address
func WithPinCode(pinCode string) AddressOption {
	return func(a *Address) {
		a.pinCode = strings.TrimSpace(pinCode)
	}
}

// WithCountry sets the country for the address
func WithCountry(country string) AddressOption {
	return func(a *Address) {
		a.country = strings.TrimSpace(country)
	}
}

// NewAddress creates a new Address with the required fields.
// State, district, and detail are required; locality and PIN code are optional.
func NewAddress(state, district, locality, detail string, opts ...AddressOption) (Address, error) {
	state = strings.TrimSpace(state)
	district = strings.TrimSpace(district)
	locality = strings.TrimSpace(locality)
	detail = strings.TrimSpace(detail)

	if state == "" {
		return Address{}, fmt.Errorf("state cannot be empty")
	}
	if len(state) > 100 {
		return Address{}, fmt.Errorf("state cannot exceed 100 characters")
	}
	if district == "" {
		return Address{}, fmt.Errorf("district cannot be empty")
	}
	if len(district) > 100 {
		return Address{}, fmt.Errorf("district cannot exceed 100 characters")
	}
	if detail == "" {
		return Address{}, fmt.Errorf("address detail cannot be empty")
	}
	if len(detail) > 255 {
		return Address{}, fmt.Errorf("address detail cannot exceed 255 characters")
	}

	addr := Address{
		state:    state,
		district: district,
		locality: locality,
		detail:   detail,
		country:  "India",
	}

	for _, opt := range opts {
		opt(&addr)
	}

	if addr.pinCode != "" && !pinCodePattern.MatchString(addr.pinCode) {
		return Address{}, fmt.Errorf("PIN code must be 6 digits")
	}
	if len(addr.country) > 100 {
		return Address{}, fmt.Errorf("country cannot exceed 100 characters")
	}

	return addr, nil
}

// State returns the state
func (a Address) State() string { return a.state }

// District returns the district
func (a Address) District() string { return a.district }

// Locality returns the locality or village
func (a Address) Locality() string { return a.locality }

// Detail returns the detailed address line
func (a Address) Detail() string { return a.detail }

// PinCode returns the PIN code
func (a Address) PinCode() string { return a.pinCode }

// Country returns the country
func (a Address) Country() string { return a.country }

// IsZero reports whether the address is unset
func (a Address) IsZero() bool {
	return a.state == "" && a.district == "" && a.detail == ""
}

// String returns a single-line rendering of the address
func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.detail, a.locality, a.district, a.state, a.pinCode, a.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Equals compares two addresses field by field
func (a Address) Equals(other Address) bool {
	return a == other
}

type addressJSON struct {
	State    string `json:"state"`
	District string `json:"district"`
	Locality string `json:"locality,omitempty"`
	Detail   string `json:"detail"`
	PinCode  string `json:"pin_code,omitempty"`
	Country  string `json:"country,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		State:    a.state,
		District: a.district,
		Locality: a.locality,
		Detail:   a.detail,
		PinCode:  a.pinCode,
		Country:  a.country,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Address) UnmarshalJSON(data []byte) error {
	var aux addressJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	opts := []AddressOption{}
	if aux.PinCode != "" {
		opts = append(opts, WithPinCode(aux.PinCode))
	}
	if aux.Country != "" {
		opts = append(opts, WithCountry(aux.Country))
	}
	addr, err := NewAddress(aux.State, aux.District, aux.Locality, aux.Detail, opts...)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Value implements driver.Valuer, storing the address as JSON
func (a Address) Value() (driver.Value, error) {
	if a.IsZero() {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
	return json.Unmarshal(data, a)
}

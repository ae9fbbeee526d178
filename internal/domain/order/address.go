package order

// Address holds the billing or shipping fields of an order. Fields are plain
// strings and default to empty; a missing source value never becomes null.
type Address struct {
	FirstName    string
	LastName     string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
	Email        string
	Phone        string
}

// IsEmpty reports whether every field of the address is blank
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Fields returns the address as canonical field-name/value pairs, in a fixed
// order. Used to mirror non-empty values into record-level metadata.
func (a Address) Fields() []AddressField {
	return []AddressField{
		{"first_name", a.FirstName},
		{"last_name", a.LastName},
		{"address_1", a.AddressLine1},
		{"address_2", a.AddressLine2},
		{"city", a.City},
		{"state", a.State},
		{"postcode", a.PostalCode},
		{"country", a.Country},
		{"email", a.Email},
		{"phone", a.Phone},
	}
}

// AddressField is a canonical field name paired with its value
type AddressField struct {
	Name  string
	Value string
}

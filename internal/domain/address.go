package domain

// ShippingAddress is embedded in orders as an independently editable
// snapshot of the address supplied at checkout.
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// Merge applies the non-empty fields of patch on top of the receiver and
// returns the result. Empty strings in patch leave the existing value alone.
func (a ShippingAddress) Merge(patch ShippingAddress) ShippingAddress {
	if patch.FullName != "" {
		a.FullName = patch.FullName
	}
	if patch.Address != "" {
		a.Address = patch.Address
	}
	if patch.City != "" {
		a.City = patch.City
	}
	if patch.PostalCode != "" {
		a.PostalCode = patch.PostalCode
	}
	if patch.Country != "" {
		a.Country = patch.Country
	}
	if patch.Phone != "" {
		a.Phone = patch.Phone
	}
	return a
}

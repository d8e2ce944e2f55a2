package types

import "strings"

// Address carries the delivery destination stored with an order. Persisted as
// jsonb; the platform never geocodes or validates it beyond required fields.
type Address struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

// IsZero reports whether no address fields were provided.
func (a Address) IsZero() bool {
	return a.Line1 == "" && a.Line2 == nil && a.City == "" &&
		a.State == "" && a.PostalCode == "" && a.Country == ""
}

// Validate checks the minimal required fields for a deliverable address.
func (a Address) Validate() error {
	missing := []string{}
	if strings.TrimSpace(a.Line1) == "" {
		missing = append(missing, "line1")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "postal_code")
	}
	if len(missing) > 0 {
		return &AddressError{Missing: missing}
	}
	return nil
}

// AddressError lists the required address fields that were absent.
type AddressError struct {
	Missing []string
}

func (e *AddressError) Error() string {
	return "address missing required fields: " + strings.Join(e.Missing, ", ")
}

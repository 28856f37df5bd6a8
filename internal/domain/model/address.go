package model

import "strings"

// Address is a postal address used for billing, shipping and tax zone matching.
type Address struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Zipcode   string `json:"zipcode"`
	Phone     string `json:"phone"`
	StateID   int64  `json:"state_id,omitempty"`
	CountryID int64  `json:"country_id"`
}

// MissingFields lists required fields that are blank.
func (a *Address) MissingFields() []string {
	if a == nil {
		return []string{"address"}
	}
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"firstname", a.Firstname},
		{"lastname", a.Lastname},
		{"address1", a.Address1},
		{"city", a.City},
		{"zipcode", a.Zipcode},
		{"phone", a.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if a.CountryID == 0 {
		missing = append(missing, "country_id")
	}
	return missing
}

// Clone returns a copy of the address.
func (a *Address) Clone() *Address {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Zone groups countries and states for tax and shipping applicability.
type Zone struct {
	ID         int64
	Name       string
	CountryIDs []int64
	StateIDs   []int64
}

// Include reports whether address lies inside the zone.
func (z Zone) Include(a *Address) bool {
	if a == nil {
		return false
	}
	for _, id := range z.StateIDs {
		if a.StateID != 0 && id == a.StateID {
			return true
		}
	}
	for _, id := range z.CountryIDs {
		if id == a.CountryID {
			return true
		}
	}
	return false
}

// IncludesCountry reports whether country is a member of the zone.
func (z Zone) IncludesCountry(countryID int64) bool {
	for _, id := range z.CountryIDs {
		if id == countryID {
			return true
		}
	}
	return false
}

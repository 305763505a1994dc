package models

// DebtorType discriminates the two debtor variants.
type DebtorType string

const (
	// DebtorPerson marks a natural person debtor.
	DebtorPerson DebtorType = "person"
	// DebtorCompany marks a company debtor.
	DebtorCompany DebtorType = "company"
)

// Residence classifies where a debtor lives.
type Residence string

const (
	// ResidenceSwitzerland marks a debtor resident in Switzerland.
	ResidenceSwitzerland Residence = "switzerland"
	// ResidenceForeign marks a debtor resident abroad.
	ResidenceForeign Residence = "foreign"
)

// Debtor is the party the enforcement proceeds against. Exactly one of
// Person and Company is set, matching Type. Residence and the flattened
// display address are shared by both variants.
type Debtor struct {
	ID      string         `json:"id"`
	Type    DebtorType     `json:"type"`
	Person  *PersonDebtor  `json:"person,omitempty"`
	Company *CompanyDebtor `json:"company,omitempty"`

	Residence Residence `json:"residence,omitempty"`
	Address   *Address  `json:"address,omitempty"`
}

// DisplayName returns the debtor's name for logs and lists.
func (d Debtor) DisplayName() string {
	switch {
	case d.Person != nil:
		if d.Person.Prename != "" {
			return d.Person.Prename + " " + d.Person.Name
		}
		return d.Person.Name
	case d.Company != nil:
		return d.Company.Name
	}
	return ""
}

// PersonDebtor is a natural person debtor.
type PersonDebtor struct {
	Prename         string   `json:"prename,omitempty"`
	Name            string   `json:"name"`
	DateOfBirth     *Date    `json:"dateOfBirth,omitempty"`
	CountryOfOrigin *Country `json:"countryOfOrigin,omitempty"`
}

// CompanyDebtor is a company debtor with its registry identifiers.
type CompanyDebtor struct {
	Name                       string `json:"name"`
	UID                        string `json:"uid,omitempty"`
	UIDOrganisationID          string `json:"uidOrganisationId,omitempty"`
	UIDOrganisationIDCategorie string `json:"uidOrganisationIdCategorie,omitempty"`
	LegalForm                  string `json:"legalForm,omitempty"`
	Canton                     string `json:"canton,omitempty"`
}

// Country is a country reference with localized names.
type Country struct {
	Name    LocalizedText `json:"name"`
	ISOCode string        `json:"isoCode,omitempty"`
}

// Address is a display-ready postal address. Line1 carries the street and
// house number already joined.
type Address struct {
	Line1      string `json:"line1,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

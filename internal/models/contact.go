package models

// Contact types emitted by the gazette.
const (
	// ContactTypeOffice marks registration office contacts.
	ContactTypeOffice = "office"
	// ContactTypePerson marks natural person contacts.
	ContactTypePerson = "person"
)

// Contact is a point of contact attached to a publication, typically the
// registration office running the enforcement. Fields merge data from the
// publication XML and the office detail endpoint.
type Contact struct {
	ID       string `json:"id"`
	OfficeID string `json:"officeId,omitempty"`
	Type     string `json:"type"`

	Name         string `json:"name,omitempty"`
	Street       string `json:"street,omitempty"`
	StreetNumber string `json:"streetNumber,omitempty"`
	ZipCode      string `json:"zipCode,omitempty"`
	Town         string `json:"town,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`

	ContainsPostOfficeBox bool           `json:"containsPostOfficeBox,omitempty"`
	PostOfficeBox         *PostOfficeBox `json:"postOfficeBox,omitempty"`
}

// PostOfficeBox is the post box detail of an office address.
type PostOfficeBox struct {
	Number  string `json:"number,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Town    string `json:"town,omitempty"`
}

// Package models defines the normalized records produced by the gazette
// ingestion pipeline.
package models

// PublicationType is the coarse classification of a gazette publication.
type PublicationType string

const (
	// TypeAuction marks real-estate auction publications (rubric SB01).
	TypeAuction PublicationType = "AUCTION"
	// TypeOther marks recognized publications outside the auction rubric.
	TypeOther PublicationType = "OTHER"
	// TypeUnknown marks documents without a recognized rubric marker.
	TypeUnknown PublicationType = "UNKNOWN"
)

// Languages lists the publication languages the gazette serves titles in.
var Languages = [4]string{"de", "fr", "it", "en"}

// LocalizedText carries a value in each of the four gazette languages.
// Languages absent from the source keep an empty string.
type LocalizedText struct {
	De string `json:"de"`
	Fr string `json:"fr"`
	It string `json:"it"`
	En string `json:"en"`
}

// Get returns the value for a language code, or "" for unknown codes.
func (t LocalizedText) Get(lang string) string {
	switch lang {
	case "de":
		return t.De
	case "fr":
		return t.Fr
	case "it":
		return t.It
	case "en":
		return t.En
	}
	return ""
}

// Set stores a value under a language code. Unknown codes are dropped.
func (t *LocalizedText) Set(lang, value string) {
	switch lang {
	case "de":
		t.De = value
	case "fr":
		t.Fr = value
	case "it":
		t.It = value
	case "en":
		t.En = value
	}
}

// Any returns the first non-empty value in gazette language order.
func (t LocalizedText) Any() string {
	for _, lang := range Languages {
		if v := t.Get(lang); v != "" {
			return v
		}
	}
	return ""
}

// ParsedPublication is the normalized form of one auction publication,
// including its auctions, debtors and contacts in source order.
type ParsedPublication struct {
	ID              string        `json:"id"`
	PublicationDate Date          `json:"publicationDate"`
	ExpirationDate  *Date         `json:"expirationDate,omitempty"`
	Language        string        `json:"language,omitempty"`
	Cantons         []string      `json:"cantons"`
	Title           LocalizedText `json:"title"`

	RegistrationOffice *RegistrationOffice `json:"registrationOffice,omitempty"`

	Auctions []Auction `json:"auctions"`
	Debtors  []Debtor  `json:"debtors"`
	Contacts []Contact `json:"contacts"`
}

// OfficeID returns the registration office identifier, or "" when the
// publication carries no office record.
func (p *ParsedPublication) OfficeID() string {
	if p.RegistrationOffice == nil {
		return ""
	}
	return p.RegistrationOffice.ID
}

// RegistrationOffice is the debt-enforcement office that issued the
// publication, as embedded in the publication XML.
type RegistrationOffice struct {
	ID                    string `json:"id"`
	DisplayName           string `json:"displayName"`
	Street                string `json:"street,omitempty"`
	StreetNumber          string `json:"streetNumber,omitempty"`
	ZipCode               string `json:"zipCode,omitempty"`
	Town                  string `json:"town,omitempty"`
	ContainsPostOfficeBox bool   `json:"containsPostOfficeBox,omitempty"`
}

// Auction is a single scheduled auction within a publication.
type Auction struct {
	ID       string     `json:"id"`
	Date     Date       `json:"date"`
	Time     *TimeOfDay `json:"time,omitempty"`
	Location string     `json:"location"`

	CirculationEntryDeadline    *Date  `json:"circulationEntryDeadline,omitempty"`
	CirculationCommentDeadline  string `json:"circulationCommentDeadline,omitempty"`
	RegistrationEntryDeadline   *Date  `json:"registrationEntryDeadline,omitempty"`
	RegistrationCommentDeadline string `json:"registrationCommentDeadline,omitempty"`

	Objects []AuctionObject `json:"objects"`
}

// AuctionObject is one auctioned item. Description holds the raw source
// markup verbatim; extraction and display are downstream concerns.
// Coordinates stay nil here; a geocoding collaborator fills them in later.
type AuctionObject struct {
	ID          string   `json:"id"`
	Order       int      `json:"order"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

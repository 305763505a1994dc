package shab

import "github.com/zailushangde/AuctionProperty/internal/models"

// MergeContact overlays the office detail record onto an XML-sourced
// contact. Non-empty detail fields win; XML values survive wherever the
// detail lacks them. A nil detail (failed or absent JSON lookup) returns
// the XML contact unchanged, and so does an office id mismatch.
func MergeContact(contact models.Contact, detail *OfficeDetail) models.Contact {
	if detail == nil {
		return contact
	}

	if contact.OfficeID != "" && detail.ID != "" && contact.OfficeID != detail.ID {
		return contact
	}

	merged := contact

	if merged.OfficeID == "" {
		merged.OfficeID = detail.ID
	}

	overlay(&merged.Name, detail.DisplayName)
	overlay(&merged.Street, detail.Street)
	overlay(&merged.StreetNumber, detail.StreetNumber)
	overlay(&merged.ZipCode, detail.SwissZipCode)
	overlay(&merged.Town, detail.Town)
	overlay(&merged.Phone, detail.Phone)
	overlay(&merged.Email, detail.Email)

	if detail.ContainsPostOfficeBox {
		merged.ContainsPostOfficeBox = true
	}

	if detail.PostOfficeBox != nil {
		box := *detail.PostOfficeBox
		merged.PostOfficeBox = &box
	}

	return merged
}

// MergeContacts applies the office detail to every matching contact of a
// publication. The input slice is not modified.
func MergeContacts(contacts []models.Contact, detail *OfficeDetail) []models.Contact {
	if len(contacts) == 0 {
		return contacts
	}

	merged := make([]models.Contact, len(contacts))
	for i, contact := range contacts {
		merged[i] = MergeContact(contact, detail)
	}

	return merged
}

func overlay(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

package shab

import (
	"errors"
	"strings"
	"testing"

	"github.com/zailushangde/AuctionProperty/internal/models"
)

func TestParse_FullPublication(t *testing.T) {
	raw := loadFixture(t, "auction_publication.xml")

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if pub.ID != "bb0b8622-5f8c-4b0e-9a4a-1c2b7d20a111" {
		t.Errorf("Expected publication id from document, got %q", pub.ID)
	}

	if got := pub.PublicationDate.String(); got != "2025-09-26" {
		t.Errorf("Expected publication date 2025-09-26, got %s", got)
	}

	if pub.ExpirationDate == nil || pub.ExpirationDate.String() != "2026-09-26" {
		t.Errorf("Expected expiration date 2026-09-26, got %v", pub.ExpirationDate)
	}

	if pub.Language != "fr" {
		t.Errorf("Expected language 'fr', got %q", pub.Language)
	}

	if len(pub.Cantons) != 1 || pub.Cantons[0] != "VS" {
		t.Errorf("Expected cantons [VS], got %v", pub.Cantons)
	}

	if pub.Title.De != "Betreibungsamtliche Grundstücksteigerung" {
		t.Errorf("Unexpected German title: %q", pub.Title.De)
	}

	if pub.Title.Fr == "" || pub.Title.It == "" || pub.Title.En == "" {
		t.Errorf("Expected all four title languages, got %+v", pub.Title)
	}
}

func TestParse_FullPublication_Office(t *testing.T) {
	raw := loadFixture(t, "auction_publication.xml")

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	office := pub.RegistrationOffice
	if office == nil {
		t.Fatal("Expected registration office, got nil")
	}

	if office.ID != "5cf836cf-1c64-4c02-9a1c-57437bd0e6a6" {
		t.Errorf("Unexpected office id: %q", office.ID)
	}

	if office.DisplayName != "Office des poursuites du district de Monthey" {
		t.Errorf("Unexpected office name: %q", office.DisplayName)
	}

	if office.Street != "Avenue de la Gare" || office.StreetNumber != "24" {
		t.Errorf("Unexpected office street: %q %q", office.Street, office.StreetNumber)
	}

	if office.ZipCode != "1870" || office.Town != "Monthey" {
		t.Errorf("Unexpected office town: %q %q", office.ZipCode, office.Town)
	}

	if office.ContainsPostOfficeBox {
		t.Error("Expected containsPostOfficeBox false")
	}

	if len(pub.Contacts) != 1 {
		t.Fatalf("Expected 1 contact, got %d", len(pub.Contacts))
	}

	contact := pub.Contacts[0]
	if contact.ID == "" {
		t.Error("Expected generated contact id")
	}

	if contact.Type != models.ContactTypeOffice {
		t.Errorf("Expected office contact, got %q", contact.Type)
	}

	if contact.OfficeID != office.ID {
		t.Errorf("Expected contact office id %q, got %q", office.ID, contact.OfficeID)
	}

	if contact.Name != office.DisplayName {
		t.Errorf("Expected contact name %q, got %q", office.DisplayName, contact.Name)
	}

	if contact.PostOfficeBox != nil {
		t.Errorf("Expected no post office box, got %+v", contact.PostOfficeBox)
	}
}

func TestParse_FullPublication_Auction(t *testing.T) {
	raw := loadFixture(t, "auction_publication.xml")

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(pub.Auctions) != 1 {
		t.Fatalf("Expected 1 auction, got %d", len(pub.Auctions))
	}

	auction := pub.Auctions[0]
	if auction.ID == "" {
		t.Error("Expected generated auction id")
	}

	if got := auction.Date.String(); got != "2025-10-23" {
		t.Errorf("Expected auction date 2025-10-23, got %s", got)
	}

	if auction.Time == nil || auction.Time.String() != "11:00:00" {
		t.Errorf("Expected auction time 11:00:00, got %v", auction.Time)
	}

	if auction.Location != "Salle des ventes, Avenue de la Gare 24, 1870 Monthey" {
		t.Errorf("Unexpected location: %q", auction.Location)
	}

	if auction.CirculationEntryDeadline == nil || auction.CirculationEntryDeadline.String() != "2025-10-10" {
		t.Errorf("Expected circulation deadline 2025-10-10, got %v", auction.CirculationEntryDeadline)
	}

	if auction.CirculationCommentDeadline != "20 jours dès la publication" {
		t.Errorf("Unexpected circulation comment: %q", auction.CirculationCommentDeadline)
	}

	if auction.RegistrationEntryDeadline == nil || auction.RegistrationEntryDeadline.String() != "2025-10-13" {
		t.Errorf("Expected registration deadline 2025-10-13, got %v", auction.RegistrationEntryDeadline)
	}

	if auction.RegistrationCommentDeadline != "10 jours dès la publication" {
		t.Errorf("Unexpected registration comment: %q", auction.RegistrationCommentDeadline)
	}

	if len(auction.Objects) != 1 {
		t.Fatalf("Expected 1 auction object, got %d", len(auction.Objects))
	}

	obj := auction.Objects[0]
	if obj.Order != 0 {
		t.Errorf("Expected order 0, got %d", obj.Order)
	}

	// The escaped markup in the source must come out decoded.
	if !strings.HasPrefix(obj.Description, "<p>PPE Clarens-Baugy 2314") {
		t.Errorf("Expected decoded markup description, got %q", obj.Description)
	}

	if !strings.Contains(obj.Description, "Rue du Port 25, 1815 Clarens") {
		t.Errorf("Expected object address in description, got %q", obj.Description)
	}

	if obj.Latitude != nil || obj.Longitude != nil {
		t.Error("Expected coordinates to stay unset at parse time")
	}
}

func TestParse_FullPublication_Debtor(t *testing.T) {
	raw := loadFixture(t, "auction_publication.xml")

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(pub.Debtors) != 1 {
		t.Fatalf("Expected 1 debtor, got %d", len(pub.Debtors))
	}

	debtor := pub.Debtors[0]
	if debtor.Type != models.DebtorPerson {
		t.Fatalf("Expected person debtor, got %s", debtor.Type)
	}

	if debtor.Person.Prename != "Blaise" || debtor.Person.Name != "Blein" {
		t.Errorf("Unexpected debtor name: %q %q", debtor.Person.Prename, debtor.Person.Name)
	}

	if debtor.Person.DateOfBirth == nil || debtor.Person.DateOfBirth.String() != "1964-04-29" {
		t.Errorf("Expected date of birth 1964-04-29, got %v", debtor.Person.DateOfBirth)
	}

	country := debtor.Person.CountryOfOrigin
	if country == nil {
		t.Fatal("Expected country of origin, got nil")
	}

	if country.Name.De != "Schweiz" || country.Name.Fr != "Suisse" {
		t.Errorf("Unexpected country names: %+v", country.Name)
	}

	if country.ISOCode != "CH" {
		t.Errorf("Expected ISO code CH, got %q", country.ISOCode)
	}

	if debtor.Residence != models.ResidenceSwitzerland {
		t.Errorf("Expected swiss residence, got %q", debtor.Residence)
	}

	addr := debtor.Address
	if addr == nil {
		t.Fatal("Expected debtor address, got nil")
	}

	if addr.Line1 != "Rue du Port 25" {
		t.Errorf("Expected 'Rue du Port 25', got %q", addr.Line1)
	}

	if addr.City != "Clarens" || addr.PostalCode != "1815" {
		t.Errorf("Unexpected city: %q %q", addr.City, addr.PostalCode)
	}
}

func TestParse_FlatLayout(t *testing.T) {
	raw := loadFixture(t, "auction_flat.xml")

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if pub.ID != "7d9f1c2e-3b44-4f7a-9c2d-8e5a6b7c8d9e" {
		t.Errorf("Unexpected publication id: %q", pub.ID)
	}

	// The dotted date layout must parse too.
	if got := pub.PublicationDate.String(); got != "2025-10-02" {
		t.Errorf("Expected publication date 2025-10-02, got %s", got)
	}

	if pub.ExpirationDate != nil {
		t.Errorf("Expected no expiration date, got %v", pub.ExpirationDate)
	}

	if pub.Language != "de" {
		t.Errorf("Expected default language 'de', got %q", pub.Language)
	}

	if len(pub.Cantons) != 2 || pub.Cantons[0] != "GE" || pub.Cantons[1] != "VD" {
		t.Errorf("Expected cantons [GE VD], got %v", pub.Cantons)
	}

	if pub.Title.De == "" || pub.Title.Fr != "" {
		t.Errorf("Expected German-only title, got %+v", pub.Title)
	}
}

func TestParse_FlatLayout_PostOfficeBox(t *testing.T) {
	raw := loadFixture(t, "auction_flat.xml")

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if pub.RegistrationOffice == nil || !pub.RegistrationOffice.ContainsPostOfficeBox {
		t.Fatal("Expected office with post office box flag")
	}

	if len(pub.Contacts) != 1 {
		t.Fatalf("Expected 1 contact, got %d", len(pub.Contacts))
	}

	box := pub.Contacts[0].PostOfficeBox
	if box == nil {
		t.Fatal("Expected post office box on contact, got nil")
	}

	if box.Number != "3862" || box.ZipCode != "1211" || box.Town != "Genève 3" {
		t.Errorf("Unexpected post office box: %+v", box)
	}
}

func TestParse_FlatLayout_AuctionDefaults(t *testing.T) {
	raw := loadFixture(t, "auction_flat.xml")

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(pub.Auctions) != 1 {
		t.Fatalf("Expected 1 auction, got %d", len(pub.Auctions))
	}

	auction := pub.Auctions[0]
	if auction.Time != nil {
		t.Errorf("Expected no auction time, got %v", auction.Time)
	}

	if auction.Location != "Nicht angegeben" {
		t.Errorf("Expected location placeholder, got %q", auction.Location)
	}

	if auction.CirculationEntryDeadline != nil || auction.RegistrationEntryDeadline != nil {
		t.Error("Expected no deadlines")
	}
}

func TestParse_FlatLayout_SiblingObjects(t *testing.T) {
	raw := loadFixture(t, "auction_flat.xml")

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	objects := pub.Auctions[0].Objects
	if len(objects) != 2 {
		t.Fatalf("Expected 2 auction objects from sibling elements, got %d", len(objects))
	}

	if objects[0].Order != 0 || objects[1].Order != 1 {
		t.Errorf("Expected orders 0 and 1, got %d and %d", objects[0].Order, objects[1].Order)
	}

	if !strings.Contains(objects[0].Description, "Carouge") {
		t.Errorf("Unexpected first object: %q", objects[0].Description)
	}

	if !strings.Contains(objects[1].Description, "Lancy") {
		t.Errorf("Unexpected second object: %q", objects[1].Description)
	}
}

func TestParse_FlatLayout_CompanyDebtor(t *testing.T) {
	raw := loadFixture(t, "auction_flat.xml")

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(pub.Debtors) != 1 {
		t.Fatalf("Expected 1 debtor, got %d", len(pub.Debtors))
	}

	debtor := pub.Debtors[0]
	if debtor.Type != models.DebtorCompany {
		t.Fatalf("Expected company debtor, got %s", debtor.Type)
	}

	if debtor.Company.Name != "Immobilière du Rhône SA" {
		t.Errorf("Unexpected company name: %q", debtor.Company.Name)
	}

	if debtor.Company.UID != "CHE-175.482.480" {
		t.Errorf("Unexpected company uid: %q", debtor.Company.UID)
	}

	if debtor.Company.LegalForm != "0106" {
		t.Errorf("Unexpected legal form: %q", debtor.Company.LegalForm)
	}

	if debtor.Residence != "" {
		t.Errorf("Expected no residence classification, got %q", debtor.Residence)
	}

	addr := debtor.Address
	if addr == nil {
		t.Fatal("Expected company address, got nil")
	}

	if addr.Line1 != "c/o Fiduciaire Lemania SA" {
		t.Errorf("Expected addressLine1 fallback, got %q", addr.Line1)
	}

	if addr.City != "Genève" || addr.PostalCode != "1204" {
		t.Errorf("Unexpected company address: %q %q", addr.City, addr.PostalCode)
	}
}

func TestParse_FallbackID(t *testing.T) {
	raw := []byte(`<publication>
  <publicationDate>2025-10-01</publicationDate>
  <cantons>BE</cantons>
  <title><de>Steigerung</de></title>
  <auction><date>2025-11-01</date></auction>
</publication>`)

	pub, err := NewParser(nil).Parse(raw, "fallback-77")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if pub.ID != "fallback-77" {
		t.Errorf("Expected fallback id, got %q", pub.ID)
	}
}

func TestParse_MandatoryFields(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{
			"missing id",
			`<publication>
  <publicationDate>2025-10-01</publicationDate>
  <cantons>BE</cantons>
  <title><de>Steigerung</de></title>
</publication>`,
		},
		{
			"missing publication date",
			`<publication>
  <id>p-1</id>
  <cantons>BE</cantons>
  <title><de>Steigerung</de></title>
</publication>`,
		},
		{
			"missing canton",
			`<publication>
  <id>p-1</id>
  <publicationDate>2025-10-01</publicationDate>
  <title><de>Steigerung</de></title>
</publication>`,
		},
		{
			"missing title",
			`<publication>
  <id>p-1</id>
  <publicationDate>2025-10-01</publicationDate>
  <cantons>BE</cantons>
</publication>`,
		},
		{
			"missing auction date",
			`<publication>
  <id>p-1</id>
  <publicationDate>2025-10-01</publicationDate>
  <cantons>BE</cantons>
  <title><de>Steigerung</de></title>
  <auction><location>Bern</location></auction>
</publication>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).Parse([]byte(tt.xml), "")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			if !errors.Is(err, ErrMissingField) {
				t.Errorf("Expected ErrMissingField, got %v", err)
			}

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("Expected *ParseError, got %T", err)
			}
		})
	}
}

func TestParse_MalformedXML(t *testing.T) {
	_, err := NewParser(nil).Parse([]byte(`<publication><id>x</id>`), "p-1")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if !errors.Is(err, ErrMalformedXML) {
		t.Errorf("Expected ErrMalformedXML, got %v", err)
	}
}

func TestParse_NoPublicationElement(t *testing.T) {
	_, err := NewParser(nil).Parse([]byte(`<export><meta><id>x</id></meta></export>`), "p-1")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if !errors.Is(err, ErrMalformedXML) {
		t.Errorf("Expected ErrMalformedXML, got %v", err)
	}
}

func TestParse_UnparseableOptionalValues(t *testing.T) {
	raw := []byte(`<publication>
  <id>p-1</id>
  <publicationDate>2025-10-01</publicationDate>
  <expirationDate>irgendwann</expirationDate>
  <cantons>BE</cantons>
  <title><de>Steigerung</de></title>
  <auction>
    <date>2025-11-01</date>
    <time>vormittags</time>
  </auction>
</publication>`)

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if pub.ExpirationDate != nil {
		t.Errorf("Expected unparseable expiration date to degrade to nil, got %v", pub.ExpirationDate)
	}

	if pub.Auctions[0].Time != nil {
		t.Errorf("Expected unparseable time to degrade to nil, got %v", pub.Auctions[0].Time)
	}
}

func TestParse_NamelessDebtorsSkipped(t *testing.T) {
	raw := []byte(`<publication>
  <id>p-1</id>
  <publicationDate>2025-10-01</publicationDate>
  <cantons>BE</cantons>
  <title><de>Steigerung</de></title>
  <auction><date>2025-11-01</date></auction>
  <debtor><person><prename>Hans</prename></person></debtor>
  <debtor><company><uid>CHE-100.200.300</uid></company></debtor>
  <debtor><person><name>Muster</name></person></debtor>
</publication>`)

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(pub.Debtors) != 1 {
		t.Fatalf("Expected only the named debtor to survive, got %d", len(pub.Debtors))
	}

	if pub.Debtors[0].Person.Name != "Muster" {
		t.Errorf("Unexpected surviving debtor: %+v", pub.Debtors[0])
	}
}

func TestParse_ForeignResidence(t *testing.T) {
	raw := []byte(`<publication>
  <id>p-1</id>
  <publicationDate>2025-10-01</publicationDate>
  <cantons>BE</cantons>
  <title><de>Steigerung</de></title>
  <auction><date>2025-11-01</date></auction>
  <debtor>
    <person>
      <name>Dupont</name>
      <residence><selectType>foreign</selectType></residence>
      <addressSwitzerland><town>Bern</town></addressSwitzerland>
      <addressForeign>
        <street>Rue de la Paix</street>
        <houseNumber>7</houseNumber>
        <zipCode>75002</zipCode>
        <town>Paris</town>
      </addressForeign>
    </person>
  </debtor>
</publication>`)

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	debtor := pub.Debtors[0]
	if debtor.Residence != models.ResidenceForeign {
		t.Fatalf("Expected foreign residence, got %q", debtor.Residence)
	}

	if debtor.Address == nil || debtor.Address.City != "Paris" {
		t.Errorf("Expected foreign address to win, got %+v", debtor.Address)
	}

	if debtor.Address.Line1 != "Rue de la Paix 7" {
		t.Errorf("Expected joined street, got %q", debtor.Address.Line1)
	}

	if debtor.Address.PostalCode != "75002" {
		t.Errorf("Expected zipCode fallback, got %q", debtor.Address.PostalCode)
	}
}

func TestParse_MultipleAuctions(t *testing.T) {
	raw := []byte(`<publication>
  <id>p-1</id>
  <publicationDate>2025-10-01</publicationDate>
  <cantons>BE</cantons>
  <title><de>Steigerung</de></title>
  <auction>
    <date>2025-11-01</date>
    <auctionObjects>Grundstück Nr. 100</auctionObjects>
  </auction>
  <auction>
    <date>2025-11-08</date>
  </auction>
</publication>`)

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(pub.Auctions) != 2 {
		t.Fatalf("Expected 2 auctions, got %d", len(pub.Auctions))
	}

	if len(pub.Auctions[0].Objects) != 1 {
		t.Errorf("Expected 1 object on first auction, got %d", len(pub.Auctions[0].Objects))
	}

	// The sibling fallback only applies to single-auction documents, so the
	// second auction keeps no objects.
	if len(pub.Auctions[1].Objects) != 0 {
		t.Errorf("Expected no objects on second auction, got %d", len(pub.Auctions[1].Objects))
	}
}

func TestParse_BlankObjectsSkipped(t *testing.T) {
	raw := []byte(`<publication>
  <id>p-1</id>
  <publicationDate>2025-10-01</publicationDate>
  <cantons>BE</cantons>
  <title><de>Steigerung</de></title>
  <auction>
    <date>2025-11-01</date>
    <auctionObjects>   </auctionObjects>
    <auctionObjects>Grundstück Nr. 100</auctionObjects>
  </auction>
</publication>`)

	pub, err := NewParser(nil).Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	objects := pub.Auctions[0].Objects
	if len(objects) != 1 {
		t.Fatalf("Expected blank object to be skipped, got %d objects", len(objects))
	}

	if objects[0].Order != 0 {
		t.Errorf("Expected surviving object at order 0, got %d", objects[0].Order)
	}
}

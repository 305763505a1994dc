package shab

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zailushangde/AuctionProperty/internal/logger"
	"github.com/zailushangde/AuctionProperty/internal/models"
)

// locationPlaceholder stands in for auctions published without a venue.
const locationPlaceholder = "Nicht angegeben"

// Parser normalizes gazette auction publication XML into domain records.
// Field lookups tolerate both the namespaced export layout (meta/content
// wrappers) and flat documents.
type Parser struct {
	log *logger.Logger
}

// NewParser creates a new parser instance.
func NewParser(log *logger.Logger) *Parser {
	if log == nil {
		log = logger.NewNop()
	}

	return &Parser{log: log}
}

// Parse decodes one publication document into its normalized form.
// publicationID is the identifier the document was fetched under; it backs
// up a missing id element in the document itself.
func (p *Parser) Parse(rawXML []byte, publicationID string) (*models.ParsedPublication, error) {
	root, err := decodeTree(rawXML)
	if err != nil {
		return nil, &ParseError{PublicationID: publicationID, Err: fmt.Errorf("%w: %v", ErrMalformedXML, err)}
	}

	pub := root
	if root.name != "publication" {
		if found := root.findFirst("publication"); found != nil {
			pub = found
		} else {
			return nil, &ParseError{PublicationID: publicationID, Err: fmt.Errorf("%w: no publication element", ErrMalformedXML)}
		}
	}

	return p.parsePublication(pub, publicationID)
}

func (p *Parser) parsePublication(pub *element, fallbackID string) (*models.ParsedPublication, error) {
	// Publication metadata sits directly on the element in flat documents
	// and under a meta wrapper in the namespaced export.
	scopes := []*element{pub}
	if meta := pub.child("meta"); meta != nil {
		scopes = append(scopes, meta)
	}

	lookup := func(name string) *element {
		for _, scope := range scopes {
			if el := scope.child(name); el != nil {
				return el
			}
		}

		return nil
	}

	lookupText := func(name string) string {
		if el := lookup(name); el != nil {
			return el.text()
		}

		return ""
	}

	id := lookupText("id")
	if id == "" {
		id = fallbackID
	}

	if id == "" {
		return nil, &ParseError{Err: fmt.Errorf("%w: publication id", ErrMissingField)}
	}

	fail := func(err error) (*models.ParsedPublication, error) {
		return nil, &ParseError{PublicationID: id, Err: err}
	}

	pubDate, err := p.mandatoryDate(lookupText("publicationDate"), "publicationDate")
	if err != nil {
		return fail(err)
	}

	parsed := &models.ParsedPublication{
		ID:              id,
		PublicationDate: pubDate,
		ExpirationDate:  p.optionalDate(id, lookupText("expirationDate"), "expirationDate"),
		Language:        lookupText("language"),
		Cantons:         parseCantons(scopes),
		Title:           parseTitle(lookup("title")),
		Auctions:        []models.Auction{},
		Debtors:         []models.Debtor{},
		Contacts:        []models.Contact{},
	}
	if parsed.Language == "" {
		parsed.Language = "de"
	}

	if len(parsed.Cantons) == 0 {
		return fail(fmt.Errorf("%w: canton", ErrMissingField))
	}

	if parsed.Title == (models.LocalizedText{}) {
		return fail(fmt.Errorf("%w: title", ErrMissingField))
	}

	if officeEl := lookup("registrationOffice"); officeEl != nil {
		office, contact := parseRegistrationOffice(officeEl)
		parsed.RegistrationOffice = office
		parsed.Contacts = append(parsed.Contacts, contact)
	}

	auctionEls := pub.findAll("auction")
	for _, el := range auctionEls {
		objEls := el.findAll("auctionObjects")
		if len(objEls) == 0 && len(auctionEls) == 1 {
			// Older exports attach the objects as a sibling of the
			// auction element.
			objEls = pub.findAll("auctionObjects")
		}

		auction, err := p.parseAuction(el, objEls)
		if err != nil {
			return fail(err)
		}

		parsed.Auctions = append(parsed.Auctions, auction)
	}

	for _, el := range pub.findAll("debtor") {
		debtor, ok := p.parseDebtor(id, el)
		if !ok {
			continue
		}

		parsed.Debtors = append(parsed.Debtors, debtor)
	}

	return parsed, nil
}

func (p *Parser) mandatoryDate(value, field string) (models.Date, error) {
	if value == "" {
		return models.Date{}, fmt.Errorf("%w: %s", ErrMissingField, field)
	}

	d, err := models.ParseDate(value)
	if err != nil {
		return models.Date{}, fmt.Errorf("%w: %s: %v", ErrMissingField, field, err)
	}

	return d, nil
}

// optionalDate parses a nullable date. Unparseable values degrade to nil
// rather than failing the publication.
func (p *Parser) optionalDate(pubID, value, field string) *models.Date {
	if value == "" {
		return nil
	}

	d, err := models.ParseDate(value)
	if err != nil {
		p.log.Warn("ignoring unparseable date", "publication", pubID, "field", field, "value", value)

		return nil
	}

	return &d
}

func parseCantons(scopes []*element) []string {
	var cantons []string

	for _, scope := range scopes {
		for _, el := range scope.children() {
			if el.name != "cantons" && el.name != "canton" {
				continue
			}

			for _, code := range strings.FieldsFunc(el.text(), func(r rune) bool {
				return r == ',' || r == ' '
			}) {
				cantons = append(cantons, code)
			}
		}
	}

	return cantons
}

// parseTitle builds the four-language title mapping. Languages absent from
// the source stay empty strings so consumers can rely on all four keys.
func parseTitle(el *element) models.LocalizedText {
	var title models.LocalizedText

	if el == nil {
		return title
	}

	for _, lang := range models.Languages {
		title.Set(lang, el.childText(lang))
	}

	return title
}

func parseRegistrationOffice(el *element) (*models.RegistrationOffice, models.Contact) {
	office := &models.RegistrationOffice{
		ID:                    el.childText("id"),
		DisplayName:           el.childText("displayName"),
		Street:                el.childText("street"),
		StreetNumber:          el.childText("streetNumber"),
		ZipCode:               el.childText("swissZipCode"),
		Town:                  el.childText("town"),
		ContainsPostOfficeBox: el.childText("containsPostOfficeBox") == "true",
	}

	contact := models.Contact{
		ID:                    uuid.New().String(),
		OfficeID:              office.ID,
		Type:                  models.ContactTypeOffice,
		Name:                  office.DisplayName,
		Street:                office.Street,
		StreetNumber:          office.StreetNumber,
		ZipCode:               office.ZipCode,
		Town:                  office.Town,
		ContainsPostOfficeBox: office.ContainsPostOfficeBox,
	}

	if box := el.child("postOfficeBox"); box != nil {
		contact.PostOfficeBox = &models.PostOfficeBox{
			Number:  box.childText("number"),
			ZipCode: box.childText("zipCode"),
			Town:    box.childText("town"),
		}
	}

	return office, contact
}

func (p *Parser) parseAuction(el *element, objEls []*element) (models.Auction, error) {
	date, err := p.mandatoryDate(el.childText("date"), "auction date")
	if err != nil {
		return models.Auction{}, err
	}

	auction := models.Auction{
		ID:       el.childText("id"),
		Date:     date,
		Location: el.childText("location"),
		Objects:  []models.AuctionObject{},
	}

	if auction.ID == "" {
		auction.ID = uuid.New().String()
	}

	if auction.Location == "" {
		auction.Location = locationPlaceholder
	}

	if value := el.childText("time"); value != "" {
		if t, err := models.ParseTimeOfDay(value); err == nil {
			auction.Time = &t
		} else {
			p.log.Warn("ignoring unparseable auction time", "auction", auction.ID, "value", value)
		}
	}

	if circ := el.findFirst("circulation"); circ != nil {
		auction.CirculationEntryDeadline = p.optionalDate(auction.ID, circ.childText("entryDeadline"), "circulation entryDeadline")
		auction.CirculationCommentDeadline = circ.childText("commentEntryDeadline")
	}

	if reg := el.findFirst("registration"); reg != nil {
		auction.RegistrationEntryDeadline = p.optionalDate(auction.ID, reg.childText("entryDeadline"), "registration entryDeadline")
		auction.RegistrationCommentDeadline = reg.childText("commentEntryDeadline")
	}

	for _, objEl := range objEls {
		description := objEl.deepText()
		if description == "" {
			continue
		}

		auction.Objects = append(auction.Objects, models.AuctionObject{
			ID:          uuid.New().String(),
			Order:       len(auction.Objects),
			Description: description,
		})
	}

	return auction, nil
}

// parseDebtor classifies a debtor element by the payload it carries: a
// company record wins, anything else is read as a person. Debtors without
// a name are dropped with a warning instead of failing the publication.
func (p *Parser) parseDebtor(pubID string, el *element) (models.Debtor, bool) {
	debtor := models.Debtor{ID: uuid.New().String()}

	if companyEl := el.findFirst("company"); companyEl != nil {
		debtor.Type = models.DebtorCompany
		debtor.Company = &models.CompanyDebtor{
			Name:                       companyEl.childText("name"),
			UID:                        companyEl.childText("uid"),
			UIDOrganisationID:          companyEl.childText("uidOrganisationId"),
			UIDOrganisationIDCategorie: companyEl.childText("uidOrganisationIdCategorie"),
			LegalForm:                  companyEl.childText("legalForm"),
			Canton:                     companyEl.childText("canton"),
		}
		debtor.Residence = parseResidence(companyEl)
		debtor.Address = parseAddress(companyEl.child("address"))

		if debtor.Company.Name == "" {
			p.log.Warn("skipping company debtor without name", "publication", pubID)

			return models.Debtor{}, false
		}

		return debtor, true
	}

	scope := el
	if personEl := el.findFirst("person"); personEl != nil {
		scope = personEl
	}

	debtor.Type = models.DebtorPerson
	debtor.Person = &models.PersonDebtor{
		Prename:     scope.childText("prename"),
		Name:        scope.childText("name"),
		DateOfBirth: p.optionalDate(pubID, scope.childText("dateOfBirth"), "dateOfBirth"),
	}

	if countryEl := scope.child("countryOfOrigin"); countryEl != nil {
		debtor.Person.CountryOfOrigin = &models.Country{
			Name:    parseTitle(countryEl.child("name")),
			ISOCode: countryEl.childText("isoCode"),
		}
	}

	debtor.Residence = parseResidence(scope)

	switch debtor.Residence {
	case models.ResidenceForeign:
		debtor.Address = parseAddress(scope.child("addressForeign"))
	default:
		debtor.Address = parseAddress(scope.child("addressSwitzerland"))
	}

	if debtor.Person.Name == "" {
		p.log.Warn("skipping person debtor without name", "publication", pubID)

		return models.Debtor{}, false
	}

	return debtor, true
}

func parseResidence(scope *element) models.Residence {
	residenceEl := scope.child("residence")
	if residenceEl == nil {
		return ""
	}

	switch residenceEl.childText("selectType") {
	case "switzerland":
		return models.ResidenceSwitzerland
	case "foreign":
		return models.ResidenceForeign
	}

	return ""
}

// parseAddress flattens a structured address element into the display
// triple shared by all debtor variants.
func parseAddress(el *element) *models.Address {
	if el == nil {
		return nil
	}

	line1 := strings.TrimSpace(el.childText("street") + " " + el.childText("houseNumber"))
	if line1 == "" {
		line1 = el.childText("addressLine1")
	}

	addr := &models.Address{
		Line1:      line1,
		City:       el.childText("town"),
		PostalCode: el.childText("swissZipCode"),
	}

	if addr.PostalCode == "" {
		addr.PostalCode = el.childText("zipCode")
	}

	if addr.Line1 == "" && addr.City == "" && addr.PostalCode == "" {
		return nil
	}

	return addr
}

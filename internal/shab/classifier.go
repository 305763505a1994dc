package shab

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zailushangde/AuctionProperty/internal/models"
)

// Rubric markers as the gazette emits them. SB01 is the debt-enforcement
// real-estate auction sub-rubric; HR01/HR02 belong to the commercial
// register.
const (
	subRubricAuction = "SB01"
)

var commercialRegisterRubrics = map[string]bool{
	"HR01": true,
	"HR02": true,
}

// Classify inspects a publication document's namespace declarations and
// rubric metadata and reports its coarse type. A well-formed document
// without a recognized marker classifies as TypeUnknown; only a document
// that is not well-formed XML is an error.
func Classify(rawXML []byte) (models.PublicationType, error) {
	dec := xml.NewDecoder(bytes.NewReader(rawXML))
	dec.CharsetReader = charsetReader

	sawRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return models.TypeUnknown, &ParseError{Err: fmt.Errorf("%w: %v", ErrMalformedXML, err)}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		// The export namespace on the root names the sub-rubric, e.g.
		// https://shab.ch/shab/SB01-export.
		if !sawRoot {
			sawRoot = true

			if t, conclusive := classifyNamespaces(start); conclusive {
				return t, nil
			}
		}

		if start.Name.Local != "subRubric" {
			continue
		}

		var value string
		if err := dec.DecodeElement(&value, &start); err != nil {
			return models.TypeUnknown, &ParseError{Err: fmt.Errorf("%w: %v", ErrMalformedXML, err)}
		}

		return classifyMarker(strings.TrimSpace(value)), nil
	}

	if !sawRoot {
		return models.TypeUnknown, &ParseError{Err: fmt.Errorf("%w: no root element", ErrMalformedXML)}
	}

	return models.TypeUnknown, nil
}

// classifyNamespaces checks the root's xmlns declarations for an export
// namespace naming a known sub-rubric.
func classifyNamespaces(start xml.StartElement) (models.PublicationType, bool) {
	for _, attr := range start.Attr {
		if attr.Name.Space != "xmlns" && attr.Name.Local != "xmlns" {
			continue
		}

		marker := strings.TrimSuffix(attr.Value[strings.LastIndex(attr.Value, "/")+1:], "-export")
		if t := classifyMarker(marker); t != models.TypeUnknown {
			return t, true
		}
	}

	return models.TypeUnknown, false
}

func classifyMarker(marker string) models.PublicationType {
	switch {
	case marker == subRubricAuction:
		return models.TypeAuction
	case commercialRegisterRubrics[marker]:
		return models.TypeOther
	}

	return models.TypeUnknown
}

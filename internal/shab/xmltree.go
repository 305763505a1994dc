package shab

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// element is a minimal XML tree node. Lookups go by local name only, so
// namespace prefix changes and wrapper layout differences between export
// versions do not break parsing. Content is kept in document order so
// text runs interleaved with child elements concatenate correctly.
type element struct {
	name    string
	attrs   []xml.Attr
	content []segment
}

// segment is one piece of element content: a child element or a run of
// character data. Exactly one of the two fields is meaningful.
type segment struct {
	el   *element
	text string
}

// decodeTree parses a whole document into an element tree. The returned
// element is the document root.
func decodeTree(raw []byte) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.CharsetReader = charsetReader

	var root *element

	var stack []*element

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: t.Name.Local, attrs: t.Attr}

			if len(stack) == 0 {
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.content = append(parent.content, segment{el: el})
			}

			stack = append(stack, el)
		case xml.CharData:
			if len(stack) > 0 {
				el := stack[len(stack)-1]
				el.content = append(el.content, segment{text: string(t)})
			}
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, errors.New("no root element")
	}

	return root, nil
}

// charsetReader tolerates the legacy encodings the gazette has declared on
// older exports. UTF-8 passes through untouched.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return input, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}

	return nil, fmt.Errorf("unsupported charset %q", charset)
}

// children returns the direct child elements in document order.
func (e *element) children() []*element {
	var out []*element

	for _, s := range e.content {
		if s.el != nil {
			out = append(out, s.el)
		}
	}

	return out
}

// child returns the first direct child element with the given local name,
// or nil. Preferred over findFirst wherever the schema position is known,
// since deep search can stray into nested records sharing field names.
func (e *element) child(name string) *element {
	for _, s := range e.content {
		if s.el != nil && s.el.name == name {
			return s.el
		}
	}

	return nil
}

// childText returns the trimmed text of the first direct child with the
// given local name, or "".
func (e *element) childText(name string) string {
	if found := e.child(name); found != nil {
		return found.text()
	}

	return ""
}

// findFirst returns the first descendant with the given local name in
// depth-first document order, or nil.
func (e *element) findFirst(name string) *element {
	for _, s := range e.content {
		if s.el == nil {
			continue
		}

		if s.el.name == name {
			return s.el
		}

		if found := s.el.findFirst(name); found != nil {
			return found
		}
	}

	return nil
}

// findAll returns every descendant with the given local name in
// depth-first document order.
func (e *element) findAll(name string) []*element {
	var out []*element

	for _, s := range e.content {
		if s.el == nil {
			continue
		}

		if s.el.name == name {
			out = append(out, s.el)
		}

		out = append(out, s.el.findAll(name)...)
	}

	return out
}

// text returns the element's directly contained character data, trimmed.
func (e *element) text() string {
	var b strings.Builder

	for _, s := range e.content {
		if s.el == nil {
			b.WriteString(s.text)
		}
	}

	return strings.TrimSpace(b.String())
}

// textOf returns the trimmed text of the first descendant with the given
// local name, or "".
func (e *element) textOf(name string) string {
	if found := e.findFirst(name); found != nil {
		return found.text()
	}

	return ""
}

// deepText returns all character data beneath the element in document
// order, trimmed. The gazette escapes embedded HTML, so the decoded text
// carries the markup as a literal string.
func (e *element) deepText() string {
	var b strings.Builder

	e.writeText(&b)

	return strings.TrimSpace(b.String())
}

func (e *element) writeText(b *strings.Builder) {
	for _, s := range e.content {
		if s.el != nil {
			s.el.writeText(b)

			continue
		}

		b.WriteString(s.text)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Section is one JATS <sec> with its heading and paragraph text.
type Section struct {
	Heading string
	Body    string
}

// ExtractXMLSections parses a JATS XML file into sections (R1.3). Only
// <sec> elements with non-empty paragraph text are returned, in document
// order. Sections without a <title> get the "Unknown Section" heading.
func ExtractXMLSections(path string) ([]Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening XML %s: %w", path, err)
	}
	defer f.Close()
	sections, err := ParseSections(f)
	if err != nil {
		return nil, fmt.Errorf("parsing XML %s: %w", path, err)
	}
	return sections, nil
}

// secFrame accumulates one open <sec> during the token walk. ord preserves
// document order for possibly nested sections.
type secFrame struct {
	ord     int
	heading string
	body    strings.Builder
}

// ParseSections walks JATS tokens collecting <sec> headings and their direct
// <p> children's character data.
func ParseSections(r io.Reader) ([]Section, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	type ordered struct {
		ord int
		sec Section
	}
	var out []ordered
	var stack []*secFrame
	var elems []string
	nextOrd := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sec":
				stack = append(stack, &secFrame{ord: nextOrd})
				nextOrd++
				elems = append(elems, "sec")
			case "title":
				if parentIs(elems, "sec") && len(stack) > 0 && stack[len(stack)-1].heading == "" {
					text, err := collectElementText(dec, t.Name.Local)
					if err != nil {
						return nil, err
					}
					stack[len(stack)-1].heading = strings.TrimSpace(text)
					continue // collectElementText consumed the end tag
				}
				elems = append(elems, t.Name.Local)
			case "p":
				if parentIs(elems, "sec") && len(stack) > 0 {
					text, err := collectElementText(dec, t.Name.Local)
					if err != nil {
						return nil, err
					}
					frame := stack[len(stack)-1]
					frame.body.WriteString(strings.TrimSpace(text))
					frame.body.WriteByte(' ')
					continue
				}
				elems = append(elems, t.Name.Local)
			default:
				elems = append(elems, t.Name.Local)
			}
		case xml.EndElement:
			if len(elems) > 0 {
				elems = elems[:len(elems)-1]
			}
			if t.Name.Local == "sec" && len(stack) > 0 {
				frame := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				body := strings.TrimSpace(frame.body.String())
				if body != "" {
					heading := frame.heading
					if heading == "" {
						heading = "Unknown Section"
					}
					out = append(out, ordered{ord: frame.ord, sec: Section{Heading: heading, Body: body}})
				}
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ord < out[j].ord })
	sections := make([]Section, 0, len(out))
	for _, o := range out {
		sections = append(sections, o.sec)
	}
	return sections, nil
}

// parentIs reports whether the innermost open element is name.
func parentIs(elems []string, name string) bool {
	return len(elems) > 0 && elems[len(elems)-1] == name
}

// collectElementText consumes tokens until the matching end tag for name,
// concatenating all character data (inline markup is flattened).
func collectElementText(dec *xml.Decoder, name string) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == name {
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == name {
				depth--
			}
		case xml.CharData:
			b.Write(t)
		}
	}
	return b.String(), nil
}

// =============================================================================
// Belgian Batch Converter - XML Writer Module
// =============================================================================
//
// This module renders a parsed DOM80 or BVB batch file as XML for
// downstream import and archiving.
//
// XML STRUCTURE:
//
//   <batch format="DOM80" source="lidgeld.dom80">
//     <header>
//       <aanmaakdatum>2011-03-01</aanmaakdatum>
//       <naam>SPORTCLUB</naam>
//     </header>
//     <details>
//       <detail n="1">
//         <volgnummer>1</volgnummer>
//         <bedrag>25.00</bedrag>
//       </detail>
//     </details>
//     <trailer>
//       <aantal_opdrachten>1</aantal_opdrachten>
//     </trailer>
//     <validation status="ok"/>
//   </batch>
//
// Element names are the record slot names of the format, so the XML reads
// like the bank documentation of the file.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/ginjaninja78/belgian-batch-converter/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// RootElement names the document element.
	// Default: "batch"
	RootElement string

	// DetailIndexAttribute is the attribute holding each detail's 1-based
	// position in the file.
	// Default: "n"
	DetailIndexAttribute string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		RootElement:           "batch",
		DetailIndexAttribute:  "n",
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate renders a batch view as XML with the default options.
func Generate(view *types.BatchView) ([]byte, error) {
	return GenerateWithOptions(view, DefaultGenerateOptions())
}

// GenerateWithOptions renders a batch view as XML.
//
// GENERATION PROCESS:
//   1. Build the element tree: header, details, trailer, validation
//   2. Stream it through an xml.Encoder, which escapes all text
func GenerateWithOptions(view *types.BatchView, options GenerateOptions) ([]byte, error) {
	if view == nil {
		return nil, fmt.Errorf("no batch to render")
	}
	if !validName(options.RootElement) || !validName(options.DetailIndexAttribute) {
		return nil, fmt.Errorf("invalid element or attribute name in options")
	}

	doc := buildDocument(view, options)

	var buf bytes.Buffer
	if options.IncludeXMLDeclaration {
		buf.WriteString(xml.Header)
	}
	enc := xml.NewEncoder(&buf)
	enc.Indent("", options.Indent)
	if err := doc.encode(enc); err != nil {
		return nil, fmt.Errorf("failed to encode XML: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("failed to encode XML: %w", err)
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// Element is a node of the generated document.
type Element struct {
	Name       string
	Attributes []xml.Attr
	Value      string
	Children   []Element
}

func buildDocument(view *types.BatchView, options GenerateOptions) Element {
	root := Element{
		Name: options.RootElement,
		Attributes: []xml.Attr{
			{Name: xml.Name{Local: "format"}, Value: view.Format},
			{Name: xml.Name{Local: "source"}, Value: view.SourceFile},
		},
	}

	root.Children = append(root.Children, fieldsElement("header", view.Header))

	details := Element{Name: "details"}
	for i, row := range view.Details {
		detail := Element{
			Name:       "detail",
			Attributes: []xml.Attr{{Name: xml.Name{Local: options.DetailIndexAttribute}, Value: strconv.Itoa(i + 1)}},
		}
		for j, value := range row {
			if j >= len(view.Columns) {
				break
			}
			detail.Children = append(detail.Children, simpleElement(view.Columns[j], value))
		}
		details.Children = append(details.Children, detail)
	}
	root.Children = append(root.Children, details)

	root.Children = append(root.Children, fieldsElement("trailer", view.Trailer))

	status := "ok"
	if len(view.Problems) > 0 {
		status = "mismatch"
	}
	validation := Element{
		Name:       "validation",
		Attributes: []xml.Attr{{Name: xml.Name{Local: "status"}, Value: status}},
	}
	for _, p := range view.Problems {
		validation.Children = append(validation.Children, simpleElement("problem", p))
	}
	for _, line := range view.SkippedLines {
		validation.Children = append(validation.Children, simpleElement("skippedLine", strconv.Itoa(line)))
	}
	root.Children = append(root.Children, validation)

	return root
}

func fieldsElement(name string, fields []types.Field) Element {
	e := Element{Name: name}
	for _, f := range fields {
		e.Children = append(e.Children, simpleElement(f.Name, f.Value))
	}
	return e
}

func simpleElement(name, value string) Element {
	return Element{Name: name, Value: value}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (e Element) encode(enc *xml.Encoder) error {
	start := xml.StartElement{Name: xml.Name{Local: e.Name}, Attr: e.Attributes}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.Value != "" {
		if err := enc.EncodeToken(xml.CharData(e.Value)); err != nil {
			return err
		}
	}
	for _, child := range e.Children {
		if err := child.encode(enc); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// validName accepts the XML names used for configured elements and
// attributes: a letter or underscore, then letters, digits, '_', '-', '.'.
func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if i == 0 && !letter {
			return false
		}
		if !letter && !(r >= '0' && r <= '9') && r != '-' && r != '.' {
			return false
		}
	}
	return true
}

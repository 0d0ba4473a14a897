package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Field is a labelled line on a sheet.
type Field struct {
	Label string
	Value string
}

// Section groups fields under a heading.
type Section struct {
	Heading string
	Fields  []Field
}

// Sheet describes a single-page document.
type Sheet struct {
	Title    string
	Subtitle string
	Sections []Section
	Footer   string
}

// PDFExporter renders sheets into PDF documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with a title, labelled sections and a footer.
func (e *PDFExporter) Render(sheet Sheet) ([]byte, error) {
	if len(sheet.Sections) == 0 {
		return nil, fmt.Errorf("pdf requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if sheet.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(sheet.Title)), "", 1, "C", false, 0, "")
	}
	if sheet.Subtitle != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, tr(sheet.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	const labelWidth = 45.0
	for _, section := range sheet.Sections {
		if section.Heading != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, tr(section.Heading), "B", 1, "", false, 0, "")
			pdf.Ln(1)
		}
		for _, field := range section.Fields {
			pdf.SetFont("Arial", "B", 9)
			pdf.CellFormat(labelWidth, 6, tr(field.Label), "", 0, "", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			value := field.Value
			if value == "" {
				value = "-"
			}
			pdf.MultiCell(0, 6, tr(value), "", "", false)
		}
		pdf.Ln(3)
	}

	if sheet.Footer != "" {
		pdf.SetFont("Arial", "I", 8)
		pdf.MultiCell(0, 5, tr(sheet.Footer), "T", "", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

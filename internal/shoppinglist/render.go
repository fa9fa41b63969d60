package shoppinglist

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	fontFamily   = "ListFont"
	titleSize    = 16
	lineSize     = 12
	lineHeight   = 8
	pageMarginMM = 15
)

// RenderOptions controls the exported document.
type RenderOptions struct {
	Title string
	// FontPath is an optional TrueType font used for non-Latin text.
	FontPath string
}

// RenderText writes the title followed by one line per item.
func RenderText(items []Item, opts RenderOptions) []byte {
	var b strings.Builder
	b.WriteString(opts.Title)
	b.WriteString("\n\n")
	for _, line := range Lines(items) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// RenderPDF lays out the list on A4 pages, breaking to a new page when a
// page fills up.
func RenderPDF(items []Item, opts RenderOptions) ([]byte, error) {
	pdf, err := layoutPDF(items, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func layoutPDF(items []Item, opts RenderOptions) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	pdf.SetAutoPageBreak(true, pageMarginMM)

	family := "Helvetica"
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if opts.FontPath != "" {
		pdf.AddUTF8Font(fontFamily, "", opts.FontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load font %s: %w", opts.FontPath, err)
		}
		family = fontFamily
		translate = func(s string) string { return s }
	}

	pdf.AddPage()
	pdf.SetFont(family, "", titleSize)
	pdf.CellFormat(0, lineHeight+2, translate(opts.Title), "", 1, "C", false, 0, "")
	pdf.Ln(lineHeight / 2)

	pdf.SetFont(family, "", lineSize)
	for _, line := range Lines(items) {
		pdf.MultiCell(0, lineHeight, translate(line), "", "L", false)
	}
	return pdf, pdf.Error()
}

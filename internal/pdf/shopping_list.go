// Package pdf renders the shopping list export.
package pdf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Layout in points from the top-left corner of an A4 page.
const (
	headingSize  = 32
	rowSize      = 15
	headingX     = 15.0
	rowX         = 15.0
	headingFromY = 800.0
	rowsFromY    = 750.0
	rowStep      = 20.0
	bottomMargin = 40.0
	topMargin    = 50.0

	fontFamily = "ShoppingList"
)

// DefaultTitle heads the document.
const DefaultTitle = "Shopping list"

// FileName is the attachment name of the export.
const FileName = "ShoppingCart.pdf"

// ShoppingListRenderer draws aggregated items on A4 pages.
type ShoppingListRenderer struct {
	fontPath string
	title    string
}

// NewShoppingListRenderer uses the TrueType font at fontPath when it exists
// and falls back to Helvetica otherwise.
func NewShoppingListRenderer(fontPath, title string) *ShoppingListRenderer {
	if title == "" {
		title = DefaultTitle
	}
	if _, err := os.Stat(fontPath); fontPath != "" && err != nil {
		logging.Warn().Err(err).Str("font", fontPath).Msg("shopping list font unavailable, using Helvetica")
	}
	return &ShoppingListRenderer{fontPath: fontPath, title: title}
}

// FormatItem renders one list row.
func FormatItem(item types.ShoppingListItem) string {
	return fmt.Sprintf(" - %s: %d, %s", item.Name, item.Amount, item.MeasurementUnit)
}

func (r *ShoppingListRenderer) Render(items []types.ShoppingListItem) ([]byte, error) {
	doc := r.draw(items)
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *ShoppingListRenderer) draw(items []types.ShoppingListItem) *fpdf.Fpdf {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	_, pageHeight := doc.GetPageSize()

	family, translate := r.font(doc)

	doc.AddPage()
	doc.SetFont(family, "", headingSize)
	doc.Text(headingX, pageHeight-headingFromY, translate(r.title))

	doc.SetFont(family, "", rowSize)
	y := pageHeight - rowsFromY
	for _, item := range items {
		if y > pageHeight-bottomMargin {
			doc.AddPage()
			doc.SetFont(family, "", rowSize)
			y = topMargin
		}
		doc.Text(rowX, y, translate(FormatItem(item)))
		y += rowStep
	}
	return doc
}

// font registers the configured font and returns its family with the text
// translator it needs.
func (r *ShoppingListRenderer) font(doc *fpdf.Fpdf) (string, func(string) string) {
	if r.fontPath != "" {
		if data, err := os.ReadFile(r.fontPath); err == nil {
			doc.AddUTF8FontFromBytes(fontFamily, "", data)
			if doc.Err() {
				logging.Warn().Err(doc.Error()).Str("font", r.fontPath).Msg("invalid shopping list font, using Helvetica")
				doc.ClearError()
			} else {
				return fontFamily, func(s string) string { return s }
			}
		}
	}
	return "Helvetica", doc.UnicodeTranslatorFromDescriptor("")
}

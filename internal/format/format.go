// Package format turns seller listings into labelled, styled-ready fields.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/csheth/cardscout/internal/margins"
)

// Hint tells the renderer how a field should be presented.
type Hint int

const (
	HintPlain Hint = iota
	HintPrice
	HintInStock
	HintStock
	HintURL
)

// Field is one labelled value of a listing.
type Field struct {
	Name  string
	Value string
	Hint  Hint
}

const (
	FieldID         = "ID"
	FieldType       = "Type"
	FieldScraperID  = "Scraper ID"
	FieldName       = "Name"
	FieldSetName    = "Set Name"
	FieldURL        = "URL"
	FieldPrice      = "Price"
	FieldFoil       = "Foil"
	FieldInStock    = "In Stock"
	FieldStock      = "Stock"
	FieldBorderless = "Borderless"
	FieldCondition  = "Condition"
)

var fieldHints = map[string]Hint{
	FieldURL:     HintURL,
	FieldPrice:   HintPrice,
	FieldInStock: HintInStock,
	FieldStock:   HintStock,
}

// HintFor returns the presentation hint registered for a field name.
func HintFor(name string) Hint {
	if hint, ok := fieldHints[name]; ok {
		return hint
	}
	return HintPlain
}

// Fields lists a listing's fields in display order.
func Fields(l margins.Listing) []Field {
	pairs := [][2]string{
		{FieldID, l.ID},
		{FieldType, l.Type},
		{FieldScraperID, l.ScraperID},
		{FieldName, l.Name},
		{FieldSetName, l.SetName},
		{FieldURL, l.URL},
		{FieldPrice, Price(l)},
		{FieldFoil, strconv.FormatBool(l.Foil)},
		{FieldInStock, strconv.FormatBool(l.InStock)},
		{FieldStock, strconv.Itoa(l.Stock)},
		{FieldBorderless, strconv.FormatBool(l.Borderless)},
		{FieldCondition, l.Condition},
	}
	fields := make([]Field, 0, len(pairs))
	for _, pair := range pairs {
		fields = append(fields, Field{Name: pair[0], Value: pair[1], Hint: HintFor(pair[0])})
	}
	return fields
}

// Price renders the listing price with its currency.
func Price(l margins.Listing) string {
	value := strconv.FormatFloat(l.Price, 'f', 2, 64)
	if currency := strings.TrimSpace(l.Currency); currency != "" {
		return value + " " + currency
	}
	return value
}

// Text renders a listing as "Name: value" lines.
func Text(l margins.Listing) string {
	var b strings.Builder
	for i, field := range Fields(l) {
		if i > 0 {
			b.WriteRune('\n')
		}
		fmt.Fprintf(&b, "%s: %s", field.Name, field.Value)
	}
	return b.String()
}

// OutOfStockNotice is shown for scrapers with nothing to sell.
func OutOfStockNotice(scraperID string) string {
	return fmt.Sprintf("%s out of stock", scraperID)
}

package format

import (
	"strings"
	"testing"

	"github.com/csheth/cardscout/internal/margins"
)

func sampleListing() margins.Listing {
	return margins.Listing{
		ID:        "42",
		Type:      "sell",
		ScraperID: "facetofacegames",
		Name:      "Heartfire",
		SetName:   "War of the Spark",
		URL:       "https://www.facetofacegames.com/heartfire",
		Price:     0.5,
		Currency:  "CAD",
		InStock:   true,
		Stock:     4,
		Condition: "NM",
	}
}

func TestFieldsOrderAndHints(t *testing.T) {
	fields := Fields(sampleListing())
	wantNames := []string{
		FieldID, FieldType, FieldScraperID, FieldName, FieldSetName, FieldURL,
		FieldPrice, FieldFoil, FieldInStock, FieldStock, FieldBorderless, FieldCondition,
	}
	if len(fields) != len(wantNames) {
		t.Fatalf("got %d fields, want %d", len(fields), len(wantNames))
	}
	for i, name := range wantNames {
		if fields[i].Name != name {
			t.Fatalf("field %d = %q, want %q", i, fields[i].Name, name)
		}
	}

	hints := map[string]Hint{}
	for _, field := range fields {
		hints[field.Name] = field.Hint
	}
	if hints[FieldStock] != HintStock || hints[FieldInStock] != HintInStock || hints[FieldURL] != HintURL {
		t.Fatalf("highlighted fields lost their hints: %#v", hints)
	}
	if hints[FieldName] != HintPlain {
		t.Fatalf("name should be plain, got %v", hints[FieldName])
	}
}

func TestPrice(t *testing.T) {
	l := sampleListing()
	if got := Price(l); got != "0.50 CAD" {
		t.Fatalf("Price = %q", got)
	}
	l.Currency = ""
	if got := Price(l); got != "0.50" {
		t.Fatalf("Price without currency = %q", got)
	}
}

func TestTextIncludesEveryField(t *testing.T) {
	text := Text(sampleListing())
	for _, want := range []string{"Stock: 4", "In Stock: true", "Price: 0.50 CAD", "Set Name: War of the Spark"} {
		if !strings.Contains(text, want) {
			t.Fatalf("text missing %q:\n%s", want, text)
		}
	}
}

func TestOutOfStockNotice(t *testing.T) {
	if got := OutOfStockNotice("kanatacg"); got != "kanatacg out of stock" {
		t.Fatalf("notice = %q", got)
	}
}

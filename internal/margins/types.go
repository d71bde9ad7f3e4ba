package margins

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Candidate is a single search hit pending disambiguation.
type Candidate struct {
	Name       string
	CardID     string
	ReleasedAt string
}

// Scraper describes one storefront the aggregator scrapes.
type Scraper struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Buylist  bool   `json:"buylist"`
	Selllist bool   `json:"selllist"`
}

// Listing is one seller's price and stock record for a card.
type Listing struct {
	ID         string
	Type       string
	ScraperID  string
	Name       string
	SetName    string
	URL        string
	Price      float64
	Currency   string
	Foil       bool
	InStock    bool
	Stock      int
	Borderless bool
	Condition  string
}

// DetailsResponse is the batch metadata answer for POST /v1/cards.
type DetailsResponse struct {
	Cards []DetailsCard `json:"cards"`
}

// DetailsCard carries the subset of the full card metadata the UI reads.
type DetailsCard struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SetName  string `json:"set_name"`
	ImageURL string `json:"image_url"`
}

// FirstImageURL reports the artwork URL of the first returned card.
func (d *DetailsResponse) FirstImageURL() (string, bool) {
	if d == nil || len(d.Cards) == 0 {
		return "", false
	}
	url := strings.TrimSpace(d.Cards[0].ImageURL)
	return url, url != ""
}

// Card is the metadata returned for a single card id.
type Card struct {
	ID         string
	Name       string
	SetName    string
	TypeLine   string
	ReleasedAt string
	ImageURL   string
}

type searchEnvelope struct {
	Cards *[]searchHit `json:"cards"`
}

type searchHit struct {
	Key      string `json:"key"`
	Metadata struct {
		ID         string `json:"id"`
		ReleasedAt string `json:"released_at"`
	} `json:"metadata"`
}

type detailsEnvelope struct {
	Cards *[]DetailsCard `json:"cards"`
}

type cardPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SetName    string `json:"set_name"`
	TypeLine   string `json:"type_line"`
	ReleasedAt string `json:"released_at"`
	ImageURL   string `json:"image_url"`
}

type listingPayload struct {
	ID         flexString `json:"id"`
	Type       string     `json:"type"`
	ScraperID  string     `json:"scraperId"`
	Name       string     `json:"name"`
	SetName    string     `json:"set_name"`
	URL        string     `json:"url"`
	Price      flexString `json:"price"`
	Currency   string     `json:"currency"`
	Foil       bool       `json:"foil"`
	InStock    bool       `json:"inStock"`
	Stock      flexString `json:"stock"`
	Borderless bool       `json:"borderless"`
	Condition  string     `json:"condition"`
}

// flexString accepts a JSON string, number or null. The aggregator is not
// consistent about quoting numeric fields.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = flexString(n.String())
	return nil
}

func (h searchHit) candidate(index int) (Candidate, error) {
	name := strings.TrimSpace(h.Key)
	if name == "" {
		return Candidate{}, fmt.Errorf("cards[%d]: missing key", index)
	}
	id, err := normalizeCardID(h.Metadata.ID)
	if err != nil {
		return Candidate{}, fmt.Errorf("cards[%d]: %w", index, err)
	}
	return Candidate{
		Name:       name,
		CardID:     id,
		ReleasedAt: strings.TrimSpace(h.Metadata.ReleasedAt),
	}, nil
}

func (p listingPayload) listing(index int) (Listing, error) {
	stock := 0
	if p.Stock != "" {
		value, err := strconv.ParseFloat(string(p.Stock), 64)
		if err != nil {
			return Listing{}, fmt.Errorf("listing[%d]: stock %q is not numeric", index, p.Stock)
		}
		if value > 0 {
			stock = int(value)
		}
	}
	var price float64
	if p.Price != "" {
		value, err := strconv.ParseFloat(string(p.Price), 64)
		if err != nil {
			return Listing{}, fmt.Errorf("listing[%d]: price %q is not numeric", index, p.Price)
		}
		price = value
	}
	return Listing{
		ID:         string(p.ID),
		Type:       p.Type,
		ScraperID:  p.ScraperID,
		Name:       p.Name,
		SetName:    p.SetName,
		URL:        p.URL,
		Price:      price,
		Currency:   p.Currency,
		Foil:       p.Foil,
		InStock:    p.InStock,
		Stock:      stock,
		Borderless: p.Borderless,
		Condition:  p.Condition,
	}, nil
}

func (p cardPayload) card() (Card, error) {
	id, err := normalizeCardID(p.ID)
	if err != nil {
		return Card{}, err
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Card{}, fmt.Errorf("card %s: missing name", id)
	}
	released := strings.TrimSpace(p.ReleasedAt)
	if released != "" {
		if _, err := time.Parse("2006-01-02", released); err != nil {
			released = ""
		}
	}
	return Card{
		ID:         id,
		Name:       name,
		SetName:    strings.TrimSpace(p.SetName),
		TypeLine:   strings.TrimSpace(p.TypeLine),
		ReleasedAt: released,
		ImageURL:   strings.TrimSpace(p.ImageURL),
	}, nil
}

// normalizeCardID validates that the id is a UUID and returns its canonical
// lowercase form.
func normalizeCardID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("missing card id")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("card id %q: %w", raw, err)
	}
	return parsed.String(), nil
}

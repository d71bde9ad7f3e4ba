// Package margins talks to the magicmargins card, scraper and stock API.
//
// Every operation is fail-soft: a transport or parse failure is logged and
// returned as a nil result together with an error wrapping ErrTransport or
// ErrParse. Callers treat any error as "no data".
package margins

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultBaseURL is the public aggregator endpoint.
	DefaultBaseURL = "https://magicmargins.ca"
	userAgent      = "cardscout/1.0"
	bodyPreview    = 256
)

// Config describes how to build a Client.
type Config struct {
	BaseURL string
	// Timeout of zero leaves the HTTP client's default (no timeout) in place.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client wraps the four aggregator operations plus card lookup and image
// downloads.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	var rc *resty.Client
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rc = resty.New()
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	rc.SetBaseURL(base)
	rc.SetHeader("User-Agent", userAgent)
	rc.SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{http: rc, logger: logger}
}

// Search looks up cards whose name matches query.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, c.fail("search", fmt.Errorf("%w: empty query", ErrInvalidInput), "query", query)
	}
	var envelope searchEnvelope
	err := c.getJSON(ctx, "search", "/v1/cards", func(r *resty.Request) {
		r.SetQueryParam("search", query)
		r.SetQueryParam("sparse", "false")
	}, &envelope)
	if err != nil {
		return nil, c.fail("search", err, "query", query)
	}
	if envelope.Cards == nil {
		return nil, c.fail("search", fmt.Errorf("%w: response has no cards field", ErrParse), "query", query)
	}
	hits := *envelope.Cards
	candidates := make([]Candidate, 0, len(hits))
	for i, hit := range hits {
		candidate, err := hit.candidate(i)
		if err != nil {
			return nil, c.fail("search", fmt.Errorf("%w: %w", ErrParse, err), "query", query)
		}
		candidates = append(candidates, candidate)
	}
	c.logger.Debug("[margins] search ok", "query", query, "hits", len(candidates))
	return candidates, nil
}

// FetchFullDetails returns the full metadata, including image_url, for a
// batch of card names.
func (c *Client) FetchFullDetails(ctx context.Context, names []string) (*DetailsResponse, error) {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			cleaned = append(cleaned, name)
		}
	}
	if len(cleaned) == 0 {
		return nil, c.fail("details", fmt.Errorf("%w: no card names", ErrInvalidInput))
	}
	payload := map[string]any{
		"cardNames": cleaned,
		"unique":    true,
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/v1/cards")
	if err := checkResponse(resp, err); err != nil {
		return nil, c.fail("details", err, "names", cleaned)
	}
	var envelope detailsEnvelope
	if err := decode(resp.Body(), &envelope); err != nil {
		return nil, c.fail("details", err, "names", cleaned)
	}
	if envelope.Cards == nil {
		return nil, c.fail("details", fmt.Errorf("%w: response has no cards field", ErrParse), "names", cleaned)
	}
	return &DetailsResponse{Cards: *envelope.Cards}, nil
}

// FetchCard returns metadata for a single card id.
func (c *Client) FetchCard(ctx context.Context, cardID string) (*Card, error) {
	id, err := normalizeCardID(cardID)
	if err != nil {
		return nil, c.fail("card", fmt.Errorf("%w: %w", ErrInvalidInput, err), "card", cardID)
	}
	var payload cardPayload
	err = c.getJSON(ctx, "card", "/v1/cards/{card}", func(r *resty.Request) {
		r.SetPathParam("card", id)
	}, &payload)
	if err != nil {
		return nil, c.fail("card", err, "card", id)
	}
	card, err := payload.card()
	if err != nil {
		return nil, c.fail("card", fmt.Errorf("%w: %w", ErrParse, err), "card", id)
	}
	return &card, nil
}

// ListScrapers returns the scraper ids in directory order.
func (c *Client) ListScrapers(ctx context.Context) ([]string, error) {
	var scrapers []Scraper
	if err := c.getJSON(ctx, "scrapers", "/v1/scrapers", nil, &scrapers); err != nil {
		return nil, c.fail("scrapers", err)
	}
	if scrapers == nil {
		return nil, c.fail("scrapers", fmt.Errorf("%w: empty scraper directory", ErrParse))
	}
	ids := make([]string, 0, len(scrapers))
	for i, scraper := range scrapers {
		id := strings.TrimSpace(scraper.ID)
		if id == "" {
			return nil, c.fail("scrapers", fmt.Errorf("%w: scrapers[%d]: missing id", ErrParse, i))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FetchSellerStock returns the listings one scraper reports for a card.
func (c *Client) FetchSellerStock(ctx context.Context, cardID, scraperID string) ([]Listing, error) {
	scraperID = strings.TrimSpace(scraperID)
	id, err := normalizeCardID(cardID)
	if err != nil || scraperID == "" {
		if err == nil {
			err = fmt.Errorf("missing scraper id")
		}
		return nil, c.fail("stock", fmt.Errorf("%w: %w", ErrInvalidInput, err), "card", cardID, "scraper", scraperID)
	}
	var payloads []listingPayload
	err = c.getJSON(ctx, "stock", "/v1/scrapers/{scraper}/scrape/{card}", func(r *resty.Request) {
		r.SetPathParam("scraper", scraperID)
		r.SetPathParam("card", id)
		r.SetQueryParam("ignore_sets", "true")
	}, &payloads)
	if err != nil {
		return nil, c.fail("stock", err, "card", id, "scraper", scraperID)
	}
	listings := make([]Listing, 0, len(payloads))
	for i, payload := range payloads {
		listing, err := payload.listing(i)
		if err != nil {
			return nil, c.fail("stock", fmt.Errorf("%w: %w", ErrParse, err), "card", id, "scraper", scraperID)
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// DownloadImage fetches raw image bytes from an absolute http(s) URL.
func (c *Client) DownloadImage(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.ParseRequestURI(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, c.fail("image", fmt.Errorf("%w: invalid image url %q", ErrInvalidInput, rawURL))
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "image/*").
		Get(parsed.String())
	if err := checkResponse(resp, err); err != nil {
		return nil, c.fail("image", err, "url", parsed.String())
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, c.fail("image", fmt.Errorf("%w: empty image body", ErrParse), "url", parsed.String())
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, prepare func(*resty.Request), out any) error {
	req := c.http.R().SetContext(ctx)
	if prepare != nil {
		prepare(req)
	}
	resp, err := req.Get(path)
	if err := checkResponse(resp, err); err != nil {
		return err
	}
	return decode(resp.Body(), out)
}

func (c *Client) fail(op string, err error, attrs ...any) error {
	args := append([]any{"op", op, "err", err}, attrs...)
	c.logger.Warn("[margins] request failed", args...)
	return fmt.Errorf("%s: %w", op, err)
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("%w: %s (%s)", ErrTransport, resp.Status(), preview(resp.Body()))
	}
	return nil
}

func decode(body []byte, out any) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return fmt.Errorf("%w: empty body", ErrParse)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	return nil
}

func preview(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > bodyPreview {
		return text[:bodyPreview] + "…"
	}
	return text
}

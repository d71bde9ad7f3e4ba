// Package artwork resolves, downloads, decodes and resizes card images.
package artwork

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"

	"github.com/csheth/cardscout/internal/margins"
)

const (
	// TargetWidth and TargetHeight are the canonical artwork resolution.
	TargetWidth  = 976
	TargetHeight = 1360
)

// ErrNoImage means the details lookup returned no image_url.
var ErrNoImage = errors.New("artwork: card has no image_url")

// Source is the subset of the API client the loader needs.
type Source interface {
	FetchFullDetails(ctx context.Context, names []string) (*margins.DetailsResponse, error)
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

// Artwork is a decoded, resized card image.
type Artwork struct {
	CardName string
	ImageURL string
	Format   string
	Image    image.Image
}

// Loader fetches artwork for a card name.
type Loader struct {
	source Source
	width  uint
	height uint
	logger *slog.Logger
}

// Options tune a Loader. Zero values use the canonical resolution.
type Options struct {
	Width  int
	Height int
	Logger *slog.Logger
}

// NewLoader builds a Loader backed by source.
func NewLoader(source Source, opts Options) *Loader {
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = TargetWidth
	}
	if height <= 0 {
		height = TargetHeight
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{source: source, width: uint(width), height: uint(height), logger: logger}
}

// Load resolves the artwork URL for name, downloads and decodes it, then
// resizes it to the loader's target resolution.
func (l *Loader) Load(ctx context.Context, name string) (*Artwork, error) {
	name = strings.TrimSpace(name)
	details, err := l.source.FetchFullDetails(ctx, []string{name})
	if err != nil {
		return nil, fmt.Errorf("resolve artwork for %q: %w", name, err)
	}
	imageURL, ok := details.FirstImageURL()
	if !ok {
		l.logger.Warn("[preview] details without image_url", "card", name)
		return nil, fmt.Errorf("%w (%s)", ErrNoImage, name)
	}
	data, err := l.source.DownloadImage(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("download artwork for %q: %w", name, err)
	}
	img, format, err := Decode(data)
	if err != nil {
		l.logger.Warn("[preview] decode failed", "card", name, "url", imageURL, "err", err)
		return nil, err
	}
	bounds := img.Bounds()
	l.logger.Debug("[preview] decoded", "card", name, "format", format, "width", bounds.Dx(), "height", bounds.Dy())
	return &Artwork{
		CardName: name,
		ImageURL: imageURL,
		Format:   format,
		Image:    Resize(img, l.width, l.height),
	}, nil
}

// Decode detects the format and decodes image bytes.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", errors.New("artwork: empty image data")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("artwork: decode image: %w", err)
	}
	return img, format, nil
}

// Resize scales img to exactly width×height.
func Resize(img image.Image, width, height uint) image.Image {
	bounds := img.Bounds()
	if uint(bounds.Dx()) == width && uint(bounds.Dy()) == height {
		return img
	}
	return resize.Resize(width, height, img, resize.Lanczos3)
}

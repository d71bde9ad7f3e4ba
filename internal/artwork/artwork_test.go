package artwork

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/cardscout/internal/margins"
)

type fakeSource struct {
	details  *margins.DetailsResponse
	err      error
	image    []byte
	imageErr error
	fetched  []string
}

func (f *fakeSource) FetchFullDetails(ctx context.Context, names []string) (*margins.DetailsResponse, error) {
	return f.details, f.err
}

func (f *fakeSource) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	f.fetched = append(f.fetched, url)
	return f.image, f.imageErr
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadResizesToTarget(t *testing.T) {
	source := &fakeSource{
		details: &margins.DetailsResponse{Cards: []margins.DetailsCard{{Name: "Heartfire", ImageURL: "https://img.example/h.png"}}},
		image:   pngBytes(t, 20, 28),
	}
	loader := NewLoader(source, Options{})

	art, err := loader.Load(context.Background(), "Heartfire")
	require.NoError(t, err)
	assert.Equal(t, "png", art.Format)
	assert.Equal(t, []string{"https://img.example/h.png"}, source.fetched)
	bounds := art.Image.Bounds()
	assert.Equal(t, TargetWidth, bounds.Dx())
	assert.Equal(t, TargetHeight, bounds.Dy())
}

func TestLoadWithoutImageURL(t *testing.T) {
	source := &fakeSource{details: &margins.DetailsResponse{Cards: []margins.DetailsCard{{Name: "Heartfire"}}}}
	art, err := NewLoader(source, Options{}).Load(context.Background(), "Heartfire")
	assert.Nil(t, art)
	assert.ErrorIs(t, err, ErrNoImage)
	assert.Empty(t, source.fetched)
}

func TestLoadPropagatesFailures(t *testing.T) {
	withURL := &margins.DetailsResponse{Cards: []margins.DetailsCard{{ImageURL: "https://img.example/h.png"}}}
	tests := []struct {
		name   string
		source *fakeSource
	}{
		{"details failed", &fakeSource{err: margins.ErrTransport}},
		{"download failed", &fakeSource{details: withURL, imageErr: margins.ErrTransport}},
		{"not an image", &fakeSource{details: withURL, image: []byte("<html>nope</html>")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art, err := NewLoader(tt.source, Options{Width: 10, Height: 14}).Load(context.Background(), "Heartfire")
			assert.Nil(t, art)
			assert.Error(t, err)
		})
	}
}

func TestDecodeRejectsEmpty(t *testing.T) {
	_, _, err := Decode(nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoImage))
}

func TestCellSize(t *testing.T) {
	cols, rows := CellSize(image.Rect(0, 0, TargetWidth, TargetHeight), 28)
	assert.Equal(t, 28, cols)
	assert.Equal(t, 20, rows)

	cols, rows = CellSize(image.Rect(0, 0, 0, 0), 28)
	assert.Zero(t, cols)
	assert.Zero(t, rows)
}

func TestRenderProducesOneLinePerCellRow(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 20))
	out := Render(img, 10)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 10)
	for _, line := range lines {
		assert.Equal(t, 10, lipgloss.Width(line))
	}
	assert.Empty(t, Render(nil, 10))
}

package infrastructure

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageHeightPx(t *testing.T) {
	assert.Equal(t, 2263, PageHeightPx(1600))
	assert.Equal(t, 1131, PageHeightPx(800))
}

func TestPageSlices(t *testing.T) {
	cases := []struct {
		name    string
		height  int
		heights []int
	}{
		{"shorter than a page", 900, []int{900}},
		{"exact page", 2263, []int{2263}},
		{"exact multiple has no blank tail", 2263 * 3, []int{2263, 2263, 2263}},
		{"one pixel over", 2264, []int{2263, 1}},
		{"two and a half", 5600, []int{2263, 2263, 1074}},
		{"empty", 0, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slices := PageSlices(1600, tc.height, 2263)
			var got []int
			top := 0
			for _, r := range slices {
				assert.Equal(t, top, r.Min.Y)
				assert.Equal(t, 1600, r.Dx())
				got = append(got, r.Dy())
				top = r.Max.Y
			}
			assert.Equal(t, tc.heights, got)
		})
	}
}

func raster(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 10 {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.Black)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func countPages(t *testing.T, b []byte) int {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	return r.NumPage()
}

func TestPDFComposer_Compose(t *testing.T) {
	cases := []struct {
		name   string
		height int
		pages  int
	}{
		{"single page", 200, 1},
		{"exact single page", PageHeightPx(200), 1},
		{"exact two pages", PageHeightPx(200) * 2, 2},
		{"three pages", PageHeightPx(200)*2 + 5, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, pages, err := NewPDFComposer().Compose(raster(t, 200, tc.height), "Ana Ruiz")
			require.NoError(t, err)
			assert.Equal(t, tc.pages, pages)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
			assert.Equal(t, tc.pages, countPages(t, out))
		})
	}
}

func TestPDFComposer_RejectsGarbage(t *testing.T) {
	_, _, err := NewPDFComposer().Compose([]byte("not a png"), "")
	assert.Error(t, err)
}

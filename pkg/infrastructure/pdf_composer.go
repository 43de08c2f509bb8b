package infrastructure

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/go-pdf/fpdf"
)

// A4 page size in millimetres.
const (
	A4WidthMM  = 210.0
	A4HeightMM = 297.0
)

// PageHeightPx is the raster height of one A4 page for a raster that is
// widthPx wide, keeping the page aspect ratio.
func PageHeightPx(widthPx int) int {
	return int(math.Round(float64(widthPx) * A4HeightMM / A4WidthMM))
}

// PageSlices cuts a raster of the given size into page-height bands. The last
// band holds whatever remains; a height that is an exact multiple of pagePx
// produces no empty trailing band.
func PageSlices(width, height, pagePx int) []image.Rectangle {
	if width <= 0 || height <= 0 || pagePx <= 0 {
		return nil
	}
	var out []image.Rectangle
	for top := 0; height-top > 0; top += pagePx {
		bottom := min(top+pagePx, height)
		out = append(out, image.Rect(0, top, width, bottom))
	}
	return out
}

// PDFComposer lays a tall PNG raster onto consecutive A4 pages.
type PDFComposer struct{}

func NewPDFComposer() *PDFComposer { return &PDFComposer{} }

// Compose returns the PDF bytes and the number of pages written. The title
// goes into the document metadata.
func (c *PDFComposer) Compose(raster []byte, title string) ([]byte, int, error) {
	img, err := png.Decode(bytes.NewReader(raster))
	if err != nil {
		return nil, 0, errors.Wrap(err, "decode raster")
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	slices := PageSlices(width, height, PageHeightPx(width))
	if len(slices) == 0 {
		return nil, 0, errors.Newf("empty raster %dx%d", width, height)
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator("linguacv", true)
	if title != "" {
		doc.SetTitle(title, true)
	}

	mmPerPx := A4WidthMM / float64(width)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, r := range slices {
		band := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		draw.Draw(band, band.Bounds(), img, b.Min.Add(r.Min), draw.Src)

		var buf bytes.Buffer
		if err := png.Encode(&buf, band); err != nil {
			return nil, 0, errors.Wrapf(err, "encode page %d", i+1)
		}
		name := fmt.Sprintf("page-%d", i+1)
		doc.RegisterImageOptionsReader(name, opts, &buf)
		doc.AddPage()
		doc.ImageOptions(name, 0, 0, A4WidthMM, float64(r.Dy())*mmPerPx, false, opts, 0, "")
	}
	if err := doc.Error(); err != nil {
		return nil, 0, errors.Wrap(err, "compose pdf")
	}

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, 0, errors.Wrap(err, "write pdf")
	}
	return out.Bytes(), len(slices), nil
}

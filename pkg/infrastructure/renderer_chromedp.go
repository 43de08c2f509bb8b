package infrastructure

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cockroachdb/errors"
)

// ChromedpRasterizer renders standalone HTML to a PNG in headless Chrome.
type ChromedpRasterizer struct {
	// ChromePath overrides the browser binary; empty uses chromedp's lookup.
	ChromePath string
	Timeout    time.Duration
}

func NewChromedpRasterizer(chromePath string) *ChromedpRasterizer {
	return &ChromedpRasterizer{ChromePath: chromePath, Timeout: 60 * time.Second}
}

// Rasterize lays the document out at widthPx CSS pixels and captures its
// full height at the given device scale. The PNG is widthPx*scale wide.
func (r *ChromedpRasterizer) Rasterize(ctx context.Context, html string, widthPx int, scale float64) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if r.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.ChromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	runCtx, cancelRun := context.WithTimeout(cctx, timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "linguacv-")
	if err != nil {
		return nil, errors.Wrap(err, "create temp dir")
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, errors.Wrap(err, "write document")
	}

	var (
		height float64
		png    []byte
	)
	err = chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(widthPx), 1000, chromedp.EmulateScale(scale)),
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.documentElement.scrollHeight`, &height),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			png, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithCaptureBeyondViewport(true).
				WithClip(&page.Viewport{
					X:      0,
					Y:      0,
					Width:  float64(widthPx),
					Height: math.Max(1, math.Ceil(height)),
					Scale:  1,
				}).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "chrome rasterize")
	}
	return png, nil
}

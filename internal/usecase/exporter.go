package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"linguacv/internal/domain"
	"linguacv/internal/model"
	"linguacv/internal/view"
)

// Rasterizer turns standalone HTML into a PNG rendered widthPx CSS pixels
// wide at the given device scale.
type Rasterizer interface {
	Rasterize(ctx context.Context, html string, widthPx int, scale float64) ([]byte, error)
}

// Composer paginates a raster into a PDF and reports the page count.
type Composer interface {
	Compose(raster []byte, title string) ([]byte, int, error)
}

// ExportLog records produced exports. Implementations may be no-ops.
type ExportLog interface {
	Save(ctx context.Context, rec domain.ExportRecord) error
}

type ExporterConfig struct {
	WidthPx int
	Scale   float64
	// ArtifactDir, when set, receives the HTML and PDF of every export.
	ArtifactDir string
}

func DefaultExporterConfig() ExporterConfig {
	return ExporterConfig{WidthPx: 800, Scale: 2}
}

// Exporter produces the downloadable PDF from a snapshot using the print
// template. It never reads the preview page.
type Exporter struct {
	rasterizer Rasterizer
	composer   Composer
	exports    ExportLog
	cfg        ExporterConfig
	clock      Clock
	logger     *zap.SugaredLogger
}

func NewExporter(r Rasterizer, c Composer, exports ExportLog, cfg ExporterConfig, clock Clock, log *zap.SugaredLogger) *Exporter {
	if cfg.WidthPx <= 0 {
		cfg.WidthPx = DefaultExporterConfig().WidthPx
	}
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultExporterConfig().Scale
	}
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Exporter{rasterizer: r, composer: c, exports: exports, cfg: cfg, clock: clock, logger: log}
}

// Export renders the snapshot to PDF. It fails with domain.ErrNoData when
// there is nothing to render and with domain.ErrRenderFailed when the
// rasterizer or composer fails. Failures are not retried.
func (e *Exporter) Export(ctx context.Context, snap *model.ResumeSnapshot) (*domain.ExportResult, error) {
	sections := domain.Normalize(snap)
	if snap == nil || !sections.HasAnyContent {
		return nil, domain.ErrNoData
	}

	name := ""
	if sections.Identity != nil {
		name = sections.Identity.Name
	}
	rec := domain.ExportRecord{
		ID:        uuid.New(),
		Filename:  domain.ExportFilename(name),
		CreatedAt: e.clock.Now(),
	}

	html, err := view.RenderDocument(sections)
	if err != nil {
		return nil, &domain.RenderError{Stage: "template", Err: err}
	}
	// The HTML is kept even when rendering fails below.
	e.writeArtifact(rec, ".html", []byte(html))

	raster, err := e.rasterizer.Rasterize(ctx, html, e.cfg.WidthPx, e.cfg.Scale)
	if err != nil {
		e.logger.Errorw("Rasterization failed", "export_id", rec.ID, "error", err)
		return nil, &domain.RenderError{Stage: "rasterize", Err: err}
	}
	pdf, pages, err := e.composer.Compose(raster, name)
	if err != nil {
		e.logger.Errorw("PDF composition failed", "export_id", rec.ID, "error", err)
		return nil, &domain.RenderError{Stage: "compose", Err: err}
	}
	rec.Pages = pages
	rec.SizeBytes = len(pdf)
	e.writeArtifact(rec, ".pdf", pdf)

	if e.exports != nil {
		if err := e.exports.Save(ctx, rec); err != nil {
			e.logger.Warnw("Failed to record export", "export_id", rec.ID, "error", err)
		}
	}
	e.logger.Infow("Export completed",
		"export_id", rec.ID,
		"filename", rec.Filename,
		"pages", rec.Pages,
		"bytes", rec.SizeBytes,
	)
	return &domain.ExportResult{Record: rec, HTML: html, PDF: pdf}, nil
}

func (e *Exporter) writeArtifact(rec domain.ExportRecord, ext string, b []byte) {
	if e.cfg.ArtifactDir == "" {
		return
	}
	if err := os.MkdirAll(e.cfg.ArtifactDir, 0o755); err != nil {
		e.logger.Warnw("Cannot create artifact dir", "dir", e.cfg.ArtifactDir, "error", err)
		return
	}
	base := strings.TrimSuffix(rec.Filename, ".pdf")
	name := fmt.Sprintf("%s_%s%s", base, rec.CreatedAt.Format("20060102T150405"), ext)
	path := filepath.Join(e.cfg.ArtifactDir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		e.logger.Warnw("Cannot write artifact", "path", path, "error", err)
		return
	}
	e.logger.Debugw("Artifact written", "path", path)
}

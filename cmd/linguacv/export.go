package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"linguacv/internal/logger"
	"linguacv/internal/model"
	"linguacv/internal/usecase"
	"linguacv/pkg/backend"
	"linguacv/pkg/infrastructure"
)

var (
	exportSnapshot string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current résumé to PDF",
	Long: `Fetch the latest snapshot from the backend (or read one from --snapshot)
and write the PDF. The file is named CV_{name}.pdf unless --out is given.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportSnapshot, "snapshot", "", "Read the snapshot from a JSON file instead of the backend")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (default: CV_{name}.pdf in the current directory)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	snap, err := loadSnapshot(cmd, exportSnapshot)
	if err != nil {
		return err
	}

	exporter := usecase.NewExporter(
		infrastructure.NewChromedpRasterizer(cfg.ChromePath),
		infrastructure.NewPDFComposer(),
		nil,
		usecase.ExporterConfig{WidthPx: 800, Scale: 2, ArtifactDir: cfg.ArtifactDir},
		nil,
		logger.Named("export"),
	)
	res, err := exporter.Export(ctx, snap)
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = res.Record.Filename
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create output dir")
		}
	}
	if err := os.WriteFile(out, res.PDF, 0o644); err != nil {
		return errors.Wrap(err, "write pdf")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d pages, %d bytes)\n", out, res.Record.Pages, res.Record.SizeBytes)
	return nil
}

// loadSnapshot reads a snapshot file when path is set, otherwise fetches
// /latest once.
func loadSnapshot(cmd *cobra.Command, path string) (*model.ResumeSnapshot, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read snapshot")
		}
		return model.DecodeSnapshot(b)
	}
	snap, err := backend.NewClient(cfg.BackendURL, cfg.FetchTimeout()).Latest(cmd.Context())
	if err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "fetch latest snapshot"), "is the backend running at "+cfg.BackendURL+"?")
	}
	return snap, nil
}

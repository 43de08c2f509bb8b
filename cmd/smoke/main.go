// Command smoke runs one poll and one export against an in-process fake
// backend, using the real Chrome rasterizer.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"linguacv/internal/adapter/repository"
	"linguacv/internal/logger"
	"linguacv/internal/usecase"
	"linguacv/pkg/backend"
	"linguacv/pkg/infrastructure"
)

var snapshot = map[string]interface{}{
	"personal": map[string]interface{}{
		"name": "Ana Ruiz", "location": "Madrid", "email": "ana@x.io", "phone": "+34 600 000 000",
	},
	"summary":   "Backend engineer focused on reliable data pipelines.",
	"education": map[string]interface{}{"school": "UPM", "degree": "BSc Computer Science", "start": "2012", "end": "2016"},
	"work": []interface{}{
		map[string]interface{}{"role": "Senior Engineer", "start": "2020", "end": "2023",
			"description1": "Built the ingestion API", "description2": "Cut p99 latency by 40%"},
		nil,
		map[string]interface{}{"role": "Engineer", "start": "2016", "end": "2020", "description1": "Maintained billing services"},
	},
	"certifications": []interface{}{map[string]interface{}{"name": "CKA", "issuer": "CNCF", "year": 2022}},
	"skills":         []string{"Go", "PostgreSQL", "Kubernetes"},
}

func startFakeBackend() (*http.Server, string, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot)
	})
	mux.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, "", err
	}
	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "fake backend failed: %v\n", err)
		}
	}()
	return srv, "http://" + ln.Addr().String(), nil
}

func main() {
	outDir := flag.String("out", filepath.Join("resume-data", "smoke"), "Directory for the exported files")
	chrome := flag.String("chrome", os.Getenv("CHROME_PATH"), "Chrome binary")
	flag.Parse()

	err := run(*outDir, *chrome)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "smoke failed: %v\n", err)
		os.Exit(1)
	}
}

func run(outDir, chrome string) error {
	if err := logger.Initialize(false, true); err != nil {
		return errors.Wrap(err, "init logger")
	}
	log := logger.Named("smoke")

	srv, baseURL, err := startFakeBackend()
	if err != nil {
		return errors.Wrap(err, "start fake backend")
	}
	defer srv.Shutdown(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	poller := usecase.NewPoller(backend.NewClient(baseURL, 5*time.Second), usecase.DefaultPollerConfig(), nil, logger.Named("poller"))
	updates, unsubscribe := poller.Subscribe()
	defer unsubscribe()
	poller.Start()
	defer poller.Stop()

	st := poller.State()
	select {
	case st = <-updates:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "no poll result")
	}
	if st.LastError != "" {
		return errors.Newf("poll failed: %s", st.LastError)
	}
	log.Infow("Poll succeeded", "phase", st.Phase, "next_in", st.CurrentDelay)

	exporter := usecase.NewExporter(
		infrastructure.NewChromedpRasterizer(chrome),
		infrastructure.NewPDFComposer(),
		repository.NewExportsRepo(nil),
		usecase.ExporterConfig{WidthPx: 800, Scale: 2, ArtifactDir: outDir},
		nil,
		logger.Named("export"),
	)
	res, err := exporter.Export(ctx, st.Snapshot)
	if err != nil {
		return errors.Wrap(err, "export")
	}
	fmt.Printf("Export completed: %s, %d page(s), %d bytes, artifacts in %s\n",
		res.Record.Filename, res.Record.Pages, res.Record.SizeBytes, outDir)
	return nil
}

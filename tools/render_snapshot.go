// render_snapshot writes the print HTML for a snapshot file so the export
// template can be iterated on in a browser without Chrome in the loop.
//
//	go run ./tools -in snapshot.json -out resume-data/generated/print.html
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"linguacv/internal/domain"
	"linguacv/internal/model"
	"linguacv/internal/view"
)

func main() {
	in := flag.String("in", "snapshot.json", "Snapshot JSON file")
	out := flag.String("out", filepath.Join("resume-data", "generated", "print.html"), "Output HTML file")
	flag.Parse()

	b, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read snapshot: %v\n", err)
		os.Exit(2)
	}
	snap, err := model.DecodeSnapshot(b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode snapshot: %v\n", err)
		os.Exit(2)
	}
	sections := domain.Normalize(snap)
	if !sections.HasAnyContent {
		fmt.Fprintln(os.Stderr, "snapshot has nothing to render")
		os.Exit(1)
	}
	html, err := view.RenderDocument(sections)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(2)
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create out dir: %v\n", err)
		os.Exit(2)
	}
	if err := os.WriteFile(*out, []byte(html), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("wrote %s (%s)\n", *out, domain.ExportFilename(nameOf(sections)))
}

func nameOf(s domain.Sections) string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Name
}

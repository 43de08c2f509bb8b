package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"linguacv/internal/domain"
)

var previewSnapshot string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the normalized résumé sections",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot(cmd, previewSnapshot)
		if err != nil {
			return err
		}
		renderSections(cmd.OutOrStdout(), domain.Normalize(snap))
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewSnapshot, "snapshot", "", "Read the snapshot from a JSON file instead of the backend")
}

func renderSections(w io.Writer, s domain.Sections) {
	if !s.HasAnyContent {
		fmt.Fprintln(w, "Empty resume.")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Section", "Content"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, VAlign: text.VAlignTop},
		{Number: 2, Align: text.AlignLeft, WidthMax: 72},
	})

	if id := s.Identity; id != nil {
		tw.AppendRow(table.Row{"Name", id.Name})
		if line := id.ContactLine(); line != "" {
			tw.AppendRow(table.Row{"Contact", line})
		}
	}
	if s.Summary != "" {
		tw.AppendRow(table.Row{"Summary", s.Summary})
	}
	if e := s.Education; e != nil {
		tw.AppendRow(table.Row{"Education", joinNonEmpty(", ", e.School, e.Degree, e.Dates)})
	}
	for _, wi := range s.Work {
		lines := []string{joinNonEmpty(", ", wi.Role, wi.Dates)}
		for _, b := range wi.Bullets {
			lines = append(lines, "• "+b)
		}
		tw.AppendRow(table.Row{"Experience", strings.Join(lines, "\n")})
	}
	for _, c := range s.Certifications {
		tw.AppendRow(table.Row{"Certification", c})
	}
	if len(s.Skills) > 0 {
		tw.AppendRow(table.Row{"Skills", strings.Join(s.Skills, ", ")})
	}
	tw.Render()
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

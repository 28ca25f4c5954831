// Package report renders a run summary for humans.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/input-output-hk/s3-checksum/s3types"
)

// Options controls rendering.
type Options struct {
	// NoColor disables ANSI colors in the verdict
	NoColor bool
}

// Write renders category statistics, totals, and then either the success
// verdict or the error ledger sorted by key.
func Write(w io.Writer, s *s3types.Summary, opts Options) error {
	if _, err := fmt.Fprintln(w, Categories(s)); err != nil {
		return err
	}

	if s.ManifestPath != "" {
		if _, err := fmt.Fprintf(w, "Manifest written to %s\n", s.ManifestPath); err != nil {
			return err
		}
	}

	if s.OK() {
		_, err := verdict(opts, color.FgGreen).Fprintln(w, successMessage(s))
		return err
	}

	if _, err := verdict(opts, color.FgRed).Fprintf(w, "%d object(s) failed:\n", len(s.Errors)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, Ledger(s))
	return err
}

// Categories renders the per-category table with a totals footer.
func Categories(s *s3types.Summary) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Category", "Objects", "Size"})

	for _, c := range s.Categories {
		tbl.AppendRow(table.Row{c.Name, c.Count, humanize.Bytes(uint64(max(c.Bytes, 0)))})
	}

	tbl.AppendFooter(table.Row{"Total", s.TotalCount, humanize.Bytes(uint64(max(s.TotalBytes, 0)))})
	return tbl.Render()
}

// Ledger renders the error ledger sorted by key.
func Ledger(s *s3types.Summary) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Key", "Error"})

	for _, key := range s.ErrorKeys() {
		tbl.AppendRow(table.Row{key, s.Errors[key]})
	}
	return tbl.Render()
}

func successMessage(s *s3types.Summary) string {
	if s.Mode == s3types.ModeVerify {
		return fmt.Sprintf("All %d object(s) verified against %s checksums.", s.TotalCount, s.Algorithm)
	}
	return fmt.Sprintf("Hashed %d object(s) with %s in %s.", s.TotalCount, s.Algorithm, s.Duration.Round(time.Millisecond))
}

func verdict(opts Options, attr color.Attribute) *color.Color {
	c := color.New(attr, color.Bold)
	if opts.NoColor {
		c.DisableColor()
	}
	return c
}

// Package output provides consistent CLI output formatting for corpus
// commands.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/corpuskit/corpus/internal/catalog"
	"github.com/corpuskit/corpus/internal/pack"
)

// Writer prints formatted command output. Icons are suppressed when the
// destination is not a terminal so piped output stays parseable.
type Writer struct {
	out   io.Writer
	fancy bool
}

// New creates a Writer for the given destination.
func New(out io.Writer) *Writer {
	fancy := false
	if f, ok := out.(*os.File); ok {
		fancy = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{out: out, fancy: fancy}
}

// Status prints a message with an optional icon.
// Write errors are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" && w.fancy {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
		return
	}
	_, _ = fmt.Fprintln(w.out, msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Status("✅", fmt.Sprintf(format, args...))
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Status("⚠️ ", fmt.Sprintf(format, args...))
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Status("❌", fmt.Sprintf(format, args...))
}

// PackSummary prints the result of a pack run.
func (w *Writer) PackSummary(res *pack.Result) {
	w.Successf("packed %s files (%s) into %s",
		humanize.Comma(int64(res.Files)),
		humanize.Bytes(uint64(res.TotalBytes)),
		res.BundlePath)
	if res.ManifestPath != "" {
		w.Status("", "index written to "+res.ManifestPath)
	}
	if res.Collection != nil {
		w.Status("", "registered as "+res.Collection.ID)
	}
	for _, warning := range res.Warnings {
		w.Warningf("%s", warning)
	}
}

// Collections prints the catalog listing, one collection per line.
func (w *Writer) Collections(cols []catalog.Collection) {
	if len(cols) == 0 {
		w.Status("", "no collections registered")
		return
	}
	for _, col := range cols {
		extra := ""
		if col.Name != "" {
			extra = "  (" + col.Name + ")"
		}
		if len(col.Tags) > 0 {
			extra += "  [" + strings.Join(col.Tags, ", ") + "]"
		}
		_, _ = fmt.Fprintf(w.out, "%-24s %-10s %s%s\n", col.ID, col.Kind, col.Source, extra)
	}
}

// Package report prints staging and verification results for humans.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/Norgate-AV/fsstage/internal/stager"
	"github.com/Norgate-AV/fsstage/internal/verify"
)

// Printer writes one line per result followed by a summary
type Printer struct {
	w     io.Writer
	quiet bool

	compress *color.Color
	copy     *color.Color
	skip     *color.Color
	fail     *color.Color
	prune    *color.Color
}

// NewPrinter creates a printer writing to w. Colour is enabled only when w
// is a terminal. In quiet mode only failures and the summary are printed.
func NewPrinter(w io.Writer, quiet bool) *Printer {
	p := &Printer{
		w:        w,
		quiet:    quiet,
		compress: color.New(color.FgGreen),
		copy:     color.New(color.FgCyan),
		skip:     color.New(color.Faint),
		fail:     color.New(color.FgRed, color.Bold),
		prune:    color.New(color.FgYellow),
	}

	p.SetColor(isTerminal(w))
	return p
}

// SetColor turns coloured tags on or off
func (p *Printer) SetColor(enabled bool) {
	for _, c := range []*color.Color{p.compress, p.copy, p.skip, p.fail, p.prune} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Stage prints every result of a staging run and the summary
func (p *Printer) Stage(r *stager.Report) {
	for _, res := range r.Results {
		p.Result(res)
	}

	p.Summary(r)
}

// Result prints a single result line
func (p *Printer) Result(res stager.Result) {
	if p.quiet && res.Outcome != stager.Failed {
		return
	}

	switch res.Outcome {
	case stager.Compressed:
		dest := res.RelPath + filepath.Ext(res.Dest)
		if res.DestSize > 0 {
			p.line(p.compress, "compress", "%s -> %s (%s -> %s)", res.RelPath, dest, size(res.SourceSize), size(res.DestSize))
		} else {
			p.line(p.compress, "compress", "%s -> %s (%s)", res.RelPath, dest, size(res.SourceSize))
		}
	case stager.Copied:
		p.line(p.copy, "copy", "%s (%s)", res.RelPath, size(res.SourceSize))
	case stager.Skipped:
		p.line(p.skip, "skip", "%s", res.RelPath)
	case stager.Pruned:
		p.line(p.prune, "prune", "%s", res.RelPath)
	case stager.Failed:
		name := res.RelPath
		if name == "" {
			name = res.Source
		}

		p.line(p.fail, "FAIL", "%s: %v", name, res.Err)
	}
}

// Summary prints the counts line for a staging run
func (p *Printer) Summary(r *stager.Report) {
	fmt.Fprintf(p.w, "%d compressed, %d copied, %d up to date, %d failed",
		r.Count(stager.Compressed), r.Count(stager.Copied), r.Count(stager.Skipped), r.Count(stager.Failed))

	if n := r.Count(stager.Pruned); n > 0 {
		fmt.Fprintf(p.w, ", %d pruned", n)
	}

	fmt.Fprintf(p.w, " in %s", r.Duration.Round(time.Millisecond))

	if r.DryRun {
		fmt.Fprint(p.w, " (dry run)")
	}

	fmt.Fprintln(p.w)
}

// Verify prints the problems found by a verification and a summary
func (p *Printer) Verify(r *verify.Result) {
	problems := r.Problems()
	for _, c := range problems {
		if c.Err != nil {
			p.line(p.fail, c.Status.String(), "%s: %v", c.RelPath, c.Err)
		} else {
			p.line(p.fail, c.Status.String(), "%s", c.RelPath)
		}
	}

	fmt.Fprintf(p.w, "%d checked, %d ok, %d problems\n", len(r.Checks), len(r.Checks)-len(problems), len(problems))
}

func (p *Printer) line(c *color.Color, tag, format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", c.Sprintf("%-8s", tag), fmt.Sprintf(format, args...))
}

func size(n int64) string {
	if n < 0 {
		n = 0
	}

	return humanize.IBytes(uint64(n))
}

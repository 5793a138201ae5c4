package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback while a page's units are probed.
type Reporter interface {
	Start(total int, description string)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a CIReporter if the CI environment variable is set, or
// a TerminalReporter otherwise. Both write to w.
func NewReporter(w io.Writer) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{out: w}
	}
	return &TerminalReporter{out: w}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int, description string) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	out   io.Writer
	total int
}

func (r *CIReporter) Start(total int, description string) {
	r.total = total
	fmt.Fprintf(r.out, "%s: %d units\n", description, total)
}

func (r *CIReporter) Update(current int, message string) {
	fmt.Fprintf(r.out, "[%d/%d] %s\n", current, r.total, message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(r.out, "probe complete")
}

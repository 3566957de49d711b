package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// SearchProgress is a spinner fed with the search's operation count.
type SearchProgress struct {
	bar *progressbar.ProgressBar
}

// NewSearchProgress starts a spinner on w.
func NewSearchProgress(w io.Writer, description string) *SearchProgress {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("ops"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription(ProgressStyle.Render(description)),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return &SearchProgress{bar: bar}
}

// Update sets the number of operations performed so far.
func (p *SearchProgress) Update(numOperations int) {
	if err := p.bar.Set(numOperations); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Finish stops the spinner.
func (p *SearchProgress) Finish() {
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}

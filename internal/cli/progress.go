package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/aswin0605itsme-droid/Eggai/internal/batch"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// BatchProgress reports batch progress as a bar on terminals and as one
// line per row elsewhere.
type BatchProgress struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
}

// NewBatchProgress creates a reporter for total rows.
func NewBatchProgress(w io.Writer, total int) *BatchProgress {
	p := &BatchProgress{writer: w}
	if !IsTerminal(w) {
		return p
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[yellow][bold]Predicting eggs...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// Update is a batch.Runner progress callback.
func (p *BatchProgress) Update(pr batch.Progress) {
	if p.bar != nil {
		if err := p.bar.Set(pr.Done); err != nil {
			slog.Debug("Failed to update progress bar", "error", err)
		}
		return
	}
	last := pr.Results[len(pr.Results)-1]
	id := last.ID
	if id == "" {
		id = fmt.Sprintf("row %d", pr.Done)
	}
	if _, err := fmt.Fprintf(p.writer, "[%d/%d] %s: %s\n", pr.Done, pr.Total, id, last.PredictedSex.Title()); err != nil {
		slog.Debug("Failed to write progress line", "error", err)
	}
}

// Finish completes the bar, if any.
func (p *BatchProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aswin0605itsme-droid/Eggai/internal/analyzer"
	"github.com/aswin0605itsme-droid/Eggai/internal/tui/themes"
)

// ScanConfig holds the configuration for running the live scan screen.
type ScanConfig struct {
	Session *analyzer.LiveSession
	Log     LogView
	Theme   string
}

const eventBuffer = 64

// RunLiveScan runs the live scan screen until the user quits or ctx is
// canceled. The camera is released on return.
func RunLiveScan(ctx context.Context, cfg ScanConfig) error {
	if cfg.Session == nil {
		return fmt.Errorf("session is required")
	}
	if cfg.Log == nil {
		return fmt.Errorf("log is required")
	}
	if cfg.Session.BatchNumber() == "" {
		return fmt.Errorf("batch number is required")
	}

	// Set up terminal cleanup on any exit
	cleanupTerminal := func() {
		// Ignore errors as this is best-effort cleanup
		_, _ = os.Stdout.Write([]byte("\033[?1049l")) // Exit alternate screen
		_, _ = os.Stdout.Write([]byte("\033[?25h"))   // Show cursor
		_, _ = os.Stdout.Write([]byte("\033[m"))      // Reset colors
	}
	defer cleanupTerminal()

	events := make(chan analyzer.LiveEvent, eventBuffer)
	done := make(chan struct{})
	cfg.Session.OnEvent(forwardEvents(events, done))
	defer cfg.Session.OnEvent(nil)
	defer func() { _ = cfg.Session.Stop() }()
	defer close(done)

	m := NewModel(ctx, cfg.Session, cfg.Log, events, themes.GetTheme(cfg.Theme))
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// forwardEvents feeds session events to the screen. Alignment ticks are
// dropped while the screen lags, as the next tick supersedes them. Every
// other event waits for room until done is closed, so a capture never
// leaves the screen stuck in the analyzing state.
func forwardEvents(events chan<- analyzer.LiveEvent, done <-chan struct{}) func(analyzer.LiveEvent) {
	return func(ev analyzer.LiveEvent) {
		if ev.Kind == analyzer.EventAlignment {
			select {
			case events <- ev:
			default:
			}
			return
		}
		select {
		case events <- ev:
		case <-done:
		}
	}
}

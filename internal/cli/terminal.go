package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/vijay-prabhu/jobmatch/internal/matcher"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
)

// Spinner frames for animated progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Terminal provides terminal-aware output utilities.
// Progress goes to stderr so stdout can carry JSON.
type Terminal struct {
	IsTerminal   bool
	UseColor     bool
	out          io.Writer
	spinnerIndex int
}

// NewTerminal creates a new Terminal writing to stderr
func NewTerminal() *Terminal {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))
	return &Terminal{
		IsTerminal: isTerminal,
		UseColor:   isTerminal, // Only use color in terminal
		out:        os.Stderr,
	}
}

// ClearLine clears the current line (terminal only)
func (t *Terminal) ClearLine() {
	if t.IsTerminal {
		fmt.Fprint(t.out, "\r\033[K")
	}
}

// Spinner returns the next spinner frame
func (t *Terminal) Spinner() string {
	if !t.IsTerminal {
		return ""
	}
	frame := spinnerFrames[t.spinnerIndex]
	t.spinnerIndex = (t.spinnerIndex + 1) % len(spinnerFrames)
	return frame
}

// Color wraps text in ANSI color codes (terminal only)
func (t *Terminal) Color(color, text string) string {
	if !t.UseColor {
		return text
	}
	return color + text + ColorReset
}

// FormatETA formats a duration as a human-readable ETA string
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		if s > 0 {
			return fmt.Sprintf("%dm%ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}

// PhaseColor returns the appropriate color for a pipeline phase
func PhaseColor(phase matcher.ProgressPhase) string {
	switch phase {
	case matcher.PhasePreparing:
		return ColorCyan
	case matcher.PhaseDeduplicating:
		return ColorBlue
	case matcher.PhaseIndexing:
		return ColorYellow
	case matcher.PhaseScoring:
		return ColorPurple
	case matcher.PhaseDelivering:
		return ColorGreen
	default:
		return ColorWhite
	}
}

// formatProgress renders one progress update
func (t *Terminal) formatProgress(p matcher.Progress) string {
	switch p.Phase {
	case matcher.PhaseScoring, matcher.PhaseDelivering:
		eta := ""
		if d := p.ETA(); d > 0 {
			eta = fmt.Sprintf(" (ETA: %s)", FormatETA(d))
		}
		return fmt.Sprintf("%s: %d/%d users (%d%%)%s", p.Description, p.Current, p.Total, p.Percentage(), eta)
	default:
		if spinner := t.Spinner(); spinner != "" {
			return fmt.Sprintf("%s %s: %d postings", spinner, p.Description, p.Total)
		}
		return fmt.Sprintf("%s: %d postings", p.Description, p.Total)
	}
}

// ProgressPrinter returns a callback that draws progress. Scoring updates
// arrive from several goroutines, so drawing is serialized.
func (t *Terminal) ProgressPrinter() matcher.ProgressCallback {
	var (
		mu             sync.Mutex
		lastPhase      matcher.ProgressPhase
		phaseStartTime time.Time
	)

	return func(p matcher.Progress) {
		mu.Lock()
		defer mu.Unlock()

		// Track phase start time for ETA
		if p.Phase != lastPhase {
			phaseStartTime = time.Now()
		}
		p.StartedAt = phaseStartTime

		msg := t.Color(PhaseColor(p.Phase), t.formatProgress(p))
		if t.IsTerminal {
			t.ClearLine()
			fmt.Fprint(t.out, msg)
		} else if p.Phase != lastPhase {
			// Non-terminals only get one line per phase
			fmt.Fprintln(t.out, msg)
		}
		lastPhase = p.Phase
	}
}

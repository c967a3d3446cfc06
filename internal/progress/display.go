package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Display prints step changes for terminal mode. It is an AdvanceFunc consumer and
// holds no reference to the indicator.
type Display struct {
	mutex         sync.Mutex
	out           io.Writer
	logger        zerolog.Logger
	enabled       bool
	lastDisplayed string
}

// NewDisplay creates a display writing to out. A disabled display only logs at debug.
func NewDisplay(out io.Writer, logger zerolog.Logger, enabled bool) *Display {
	return &Display{
		out:     out,
		logger:  logger.With().Str("component", "ProgressDisplay").Logger(),
		enabled: enabled,
	}
}

// Show renders one snapshot, skipping duplicates of the previous line.
func (d *Display) Show(s Snapshot) {
	line := FormatSnapshot(s)
	if line == "" {
		return
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if line == d.lastDisplayed {
		return
	}
	d.lastDisplayed = line

	if !d.enabled {
		d.logger.Debug().Msg(line)
		return
	}
	_, _ = fmt.Fprintln(d.out, line)
}

// Reset forgets the last printed line so the next attempt prints from the top.
func (d *Display) Reset() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.lastDisplayed = ""
}

// FormatSnapshot renders "⏳ [██░░░] 2/5 Checking SSL certificate". An empty step list
// yields "".
func FormatSnapshot(s Snapshot) string {
	total := len(s.Steps)
	if total == 0 {
		return ""
	}
	return fmt.Sprintf("⏳ %s %d/%d %s", createProgressBar(s.Cursor+1, total), s.Cursor+1, total, s.Current())
}

func createProgressBar(filled, width int) string {
	if width <= 0 {
		return ""
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// Package chart renders text bar charts and sparklines.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Bar is one labelled value.
type Bar struct {
	Label   string
	Value   float64
	Display string
}

const (
	defaultLabelWidth   = 24
	minBarWidth         = 10
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
	barColor            = "\x1b[33m"
)

var partialBlocks = []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉'}

// BarLines lays bars out in width cells: a truncated label column, the bar
// scaled to the largest value, then the display value. Paint, when set, wraps
// the bar segment of row i.
func BarLines(bars []Bar, width int, paint func(i int, bar string) string) []string {
	if len(bars) == 0 {
		return nil
	}
	labelWidth := 0
	valueWidth := 0
	maxVal := 0.0
	for _, b := range bars {
		labelWidth = max(labelWidth, runewidth.StringWidth(b.Label))
		valueWidth = max(valueWidth, runewidth.StringWidth(displayOf(b)))
		maxVal = math.Max(maxVal, b.Value)
	}
	labelWidth = min(labelWidth, defaultLabelWidth)
	barWidth := width - labelWidth - valueWidth - 2
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	lines := make([]string, 0, len(bars))
	for i, b := range bars {
		label := runewidth.FillRight(runewidth.Truncate(b.Label, labelWidth, "…"), labelWidth)
		bar := renderBar(b.Value, maxVal, barWidth)
		if paint != nil {
			bar = paint(i, bar)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", label, bar, runewidth.FillLeft(displayOf(b), valueWidth)))
	}
	return lines
}

// WriteBars prints a titled bar chart. Bars are colored when w is a terminal
// or forceColor is set, unless NO_COLOR is present.
func WriteBars(w io.Writer, title string, bars []Bar, width int, forceColor bool) error {
	if width <= 0 {
		width = TerminalWidth()
	}
	var paint func(int, string) string
	if shouldUseColor(w, forceColor) {
		paint = func(_ int, bar string) string {
			return barColor + bar + colorReset
		}
	}
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	lines := BarLines(bars, width, paint)
	if len(lines) == 0 {
		if _, err := fmt.Fprintln(w, "  no data"); err != nil {
			return err
		}
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func renderBar(value, maxVal float64, width int) string {
	if maxVal <= 0 || value <= 0 {
		return strings.Repeat(" ", width)
	}
	eighths := int(math.Round(value / maxVal * float64(width*8)))
	eighths = min(eighths, width*8)
	full := eighths / 8
	rem := eighths % 8
	var b strings.Builder
	b.WriteString(strings.Repeat("█", full))
	used := full
	if rem > 0 {
		b.WriteRune(partialBlocks[rem])
		used++
	}
	b.WriteString(strings.Repeat(" ", width-used))
	return b.String()
}

func displayOf(b Bar) string {
	if b.Display != "" {
		return b.Display
	}
	return fmt.Sprintf("%g", b.Value)
}

// TerminalWidth returns the stdout width, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

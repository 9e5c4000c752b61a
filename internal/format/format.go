// Package format renders numbers, rates and dates for display and export.
package format

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/verte-zerg/mcdash/internal/model"
)

// Date layouts used across tables, detail views and CSV files.
const (
	DateLayout     = "Jan 2, 2006"
	DateTimeLayout = "Jan 2, 2006 3:04 PM"
)

// Placeholders for absent values.
const (
	NotAvailable = "N/A"
	Never        = "Never"
)

var printer = message.NewPrinter(language.English)

// SetLocale switches the number printer to the given BCP 47 tag. Unknown tags
// fall back to English.
func SetLocale(tag string) {
	t, err := language.Parse(tag)
	if err != nil {
		t = language.English
	}
	printer = message.NewPrinter(t)
}

// Round2 rounds half away from zero at two decimals. Rounding works on the
// shortest decimal form of v, so 12.345 becomes 12.35.
func Round2(v float64) float64 {
	scaled, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', -1, 64)+"e2", 64)
	if err != nil {
		return math.Round(v*100) / 100
	}
	return math.Round(scaled) / 100
}

// Rate renders a percentage with two decimals, e.g. "12.35%".
func Rate(r model.Rate) string {
	return strconv.FormatFloat(Round2(r.Float()), 'f', 2, 64) + "%"
}

// Percent renders a plain float as a two-decimal percentage.
func Percent(v float64) string {
	return Rate(model.Rate(v))
}

// Count renders an integer with locale grouping, e.g. "12,345".
func Count(c model.Count) string {
	return printer.Sprintf("%d", c.Int())
}

// Number renders a float with locale grouping and the given decimals.
func Number(v float64, decimals int) string {
	return printer.Sprintf("%.*f", decimals, v)
}

// Date renders the calendar day of ts in local time, or N/A.
func Date(ts model.Timestamp) string {
	if !ts.Valid() {
		return NotAvailable
	}
	return ts.Local().Format(DateLayout)
}

// DateTime renders ts in local time with minutes, or N/A.
func DateTime(ts model.Timestamp) string {
	if !ts.Valid() {
		return NotAvailable
	}
	return ts.Local().Format(DateTimeLayout)
}

// Synced renders a last-sync time, or Never.
func Synced(ts model.Timestamp) string {
	if !ts.Valid() {
		return Never
	}
	return ts.Local().Format(DateTimeLayout)
}

// Rating renders a member rating as filled and empty stars.
func Rating(c model.Count) string {
	n := int(c.Int())
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	out := make([]rune, 0, 5)
	for i := 0; i < 5; i++ {
		if i < n {
			out = append(out, '★')
		} else {
			out = append(out, '☆')
		}
	}
	return string(out)
}

// Bool renders a flag as Yes/No.
func Bool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// OrDash returns s, or "-" when it is empty.
func OrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

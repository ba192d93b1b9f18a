// package formatter turns catalog data into display strings, view models and exports (CSV, Markdown, plain text)
package formatter

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	UnknownDate    = "Fecha desconocida"
	UnknownRuntime = "Duración desconocida"
	NotAvailable   = "No disponible"
	NoRating       = "N/A"

	// DefaultTruncate is the overview length used by cards and listings.
	DefaultTruncate = 150
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var printer = message.NewPrinter(language.Spanish)

// parseDate reads the YYYY-MM-DD dates the movie API returns.
func parseDate(date string) (time.Time, bool) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	return t, err == nil
}

// FormatDate renders a YYYY-MM-DD date in long Spanish form, e.g. "15 de enero de 2025".
//
// Empty input yields [UnknownDate]; unparsable input is returned unchanged.
func FormatDate(date string) string {
	if strings.TrimSpace(date) == "" {
		return UnknownDate
	}
	t, ok := parseDate(date)
	if !ok {
		return date
	}
	return strconv.Itoa(t.Day()) + " de " + spanishMonths[t.Month()-1] + " de " + strconv.Itoa(t.Year())
}

// ReleaseYear extracts the year of a YYYY-MM-DD date, or "" when it cannot be parsed.
func ReleaseYear(date string) string {
	t, ok := parseDate(date)
	if !ok {
		return ""
	}
	return strconv.Itoa(t.Year())
}

// FormatRuntime renders minutes as "2h 15m", "45m" or "2h".
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return UnknownRuntime
	}

	hours, mins := minutes/60, minutes%60
	switch {
	case hours == 0:
		return strconv.Itoa(mins) + "m"
	case mins == 0:
		return strconv.Itoa(hours) + "h"
	default:
		return strconv.Itoa(hours) + "h " + strconv.Itoa(mins) + "m"
	}
}

// FormatCurrency renders a whole-dollar amount with Spanish digit grouping, e.g. "63.000.000 US$".
func FormatCurrency(amount int64) string {
	if amount == 0 {
		return NotAvailable
	}
	return printer.Sprintf("%d", amount) + " US$"
}

// TruncateText cuts text to maxLength runes and appends "...". A non-positive maxLength uses [DefaultTruncate].
func TruncateText(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultTruncate
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return strings.TrimSpace(string(runes[:maxLength])) + "..."
}

// roundTo rounds half away from zero at the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// FormatRating renders a rating with a fixed number of decimals. NaN yields [NoRating].
func FormatRating(rating float64, decimals int) string {
	if math.IsNaN(rating) {
		return NoRating
	}
	if decimals < 0 {
		decimals = 1
	}
	return strconv.FormatFloat(roundTo(rating, decimals), 'f', decimals, 64)
}

// DisplayRating rounds to one decimal and drops a trailing zero: 8.46 → "8.5", 7.0 → "7".
func DisplayRating(rating float64) string {
	return strconv.FormatFloat(roundTo(rating, 1), 'f', -1, 64)
}

// RatingTier buckets a rating for badge colouring.
type RatingTier string

const (
	TierHigh RatingTier = "high"
	TierMid  RatingTier = "mid"
	TierLow  RatingTier = "low"
)

// TierFor returns [TierHigh] from 7, [TierMid] from 5 and [TierLow] below.
func TierFor(rating float64) RatingTier {
	switch {
	case rating >= 7:
		return TierHigh
	case rating >= 5:
		return TierMid
	default:
		return TierLow
	}
}

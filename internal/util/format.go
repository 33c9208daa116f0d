package util //nolint:revive // package name util hosts shared display formatting helpers

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/joinify/joinify-go/internal/domain/model"
)

const (
	dateTimeLayout      = "Mon, Jan 2, 2006, 03:04 PM"
	shortDateTimeLayout = "Mon, Jan 2, 03:04 PM"
	dateLayout          = "January 2, 2006"
	timeLayout          = "03:04 PM"
)

// FormatDateTime renders t for event listings. Within 24 hours of now the
// year is dropped and a "(Soon!)" or "(Past)" marker is appended.
func FormatDateTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := t.Sub(now)
	if diff.Abs() < 24*time.Hour {
		marker := " (Past)"
		if diff > 0 {
			marker = " (Soon!)"
		}
		return t.Format(shortDateTimeLayout) + marker
	}
	return t.Format(dateTimeLayout)
}

// FormatDate renders t as "January 2, 2006".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// FormatTime renders the clock time of t as "03:04 PM".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// RelativeTime renders t relative to now, e.g. "in 3 days" or "2 hours ago".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := t.Sub(now)
	abs := diff.Abs()

	var phrase string
	switch {
	case abs < time.Minute:
		return "Just now"
	case abs < time.Hour:
		phrase = plural(int(abs/time.Minute), "minute")
	case abs < 24*time.Hour:
		phrase = plural(int(abs/time.Hour), "hour")
	default:
		phrase = plural(int(abs/(24*time.Hour)), "day")
	}
	if diff > 0 {
		return "in " + phrase
	}
	return phrase + " ago"
}

// TimeUntilEvent renders the countdown shown next to an upcoming RSVP.
func TimeUntilEvent(t, now time.Time) string {
	diff := t.Sub(now)
	if diff < 0 {
		return "Event has passed"
	}
	days := int(math.Ceil(diff.Hours() / 24))
	hours := int(math.Ceil(diff.Hours()))
	switch {
	case days > 1:
		return fmt.Sprintf("%d days", days)
	case hours > 1:
		return fmt.Sprintf("%d hours", hours)
	default:
		return "Starting soon"
	}
}

// Truncate shortens s to maxLen runes and appends "..." when it was cut.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}

// CapitalizeFirst upper-cases the first rune and lower-cases the rest.
func CapitalizeFirst(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// CapitalizeWords applies CapitalizeFirst to every whitespace-separated word.
func CapitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = CapitalizeFirst(w)
	}
	return strings.Join(words, " ")
}

// FormatRSVPStatus renders a status for display ("confirmed", "pending", ...).
func FormatRSVPStatus(s model.RSVPStatus) string {
	return strings.ToLower(string(s))
}

// FormatFee renders a fee, with zero shown as "Free".
func FormatFee(fee float64) string {
	if fee <= 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", fee)
}

// Package export renders attendee rosters as downloadable CSV.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/joinify/joinify-go/internal/domain/model"
	"github.com/joinify/joinify-go/internal/util"
)

// EventSummary is the event context written in the CSV header row.
type EventSummary struct {
	Title       string
	DateTime    time.Time
	Location    string
	MaxCapacity int
}

// SummaryFromEvent builds an EventSummary from an event.
func SummaryFromEvent(e model.Event) EventSummary {
	return EventSummary{
		Title:       e.Title,
		DateTime:    e.DateTime.Time,
		Location:    e.Location,
		MaxCapacity: e.MaxCapacity,
	}
}

// WriteAttendeesCSV writes the roster: a summary row, a column header row,
// one row per attendee, then an export metadata footer. Every field is quoted.
func WriteAttendeesCSV(w io.Writer, ev EventSummary, attendees []model.User, exportedAt time.Time) error {
	bw := bufio.NewWriter(w)
	n := len(attendees)

	rows := make([][]string, 0, n+3)
	rows = append(rows,
		[]string{
			"Event", ev.Title,
			"Date", util.FormatDate(ev.DateTime),
			"Location", ev.Location,
			"Attendees", fmt.Sprintf("%d/%d", n, ev.MaxCapacity),
		},
		[]string{"Username", "Email", "Role"},
	)
	for _, a := range attendees {
		rows = append(rows, []string{a.Username, a.Email, a.Role})
	}
	rows = append(rows, []string{"Exported", exportedAt.Format(time.RFC3339), "Total", strconv.Itoa(n)})

	for _, row := range rows {
		if err := writeQuotedRow(bw, row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeQuotedRow(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// FileName suggests a file name for an event's attendee export.
func FileName(ev EventSummary) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(ev.Title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "event"
	}
	return name + "-attendees.csv"
}

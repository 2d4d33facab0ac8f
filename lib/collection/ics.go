package collection

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const icsProductID = "-//wcs-backend//waste collection schedule//EN"

func escapeICS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

func uidPart(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "-"))
}

// WriteICS renders the collections as all-day events in an iCalendar document.
// `stamp` is used as the DTSTAMP of every event.
func WriteICS(w io.Writer, calendarName string, stamp time.Time, collections []Collection) error {
	var out strings.Builder

	out.WriteString("BEGIN:VCALENDAR\r\n")
	out.WriteString("VERSION:2.0\r\n")
	fmt.Fprintf(&out, "PRODID:%s\r\n", icsProductID)
	fmt.Fprintf(&out, "X-WR-CALNAME:%s\r\n", escapeICS(calendarName))
	out.WriteString("CALSCALE:GREGORIAN\r\n")

	dtstamp := stamp.UTC().Format("20060102T150405Z")
	for _, c := range collections {
		fmt.Fprintf(
			&out, "BEGIN:VEVENT\r\nUID:%s-%s@%s\r\nDTSTAMP:%s\r\nDTSTART;VALUE=DATE:%s\r\nDTEND;VALUE=DATE:%s\r\nSUMMARY:%s\r\nEND:VEVENT\r\n",
			c.Date.Format("20060102"), uidPart(c.Type), uidPart(calendarName),
			dtstamp,
			c.Date.Format("20060102"),
			c.Date.AddDate(0, 0, 1).Format("20060102"),
			escapeICS(c.Type),
		)
	}

	out.WriteString("END:VCALENDAR\r\n")

	_, err := io.WriteString(w, out.String())
	return err
}

package mailer

import (
	"fmt"
	"strings"
	"time"
)

// CalendarEvent is the input to the iCalendar invite builder.
type CalendarEvent struct {
	UID           string
	Summary       string
	Start         time.Time
	End           time.Time
	TimeZone      string
	Location      string
	Description   string
	Organizer     string
	AttendeeEmail string
	// Stamp is the DTSTAMP instant; callers pass the request clock so
	// output is reproducible in tests.
	Stamp time.Time
}

// BuildICS renders a method=REQUEST VCALENDAR for one event.
func BuildICS(ev CalendarEvent) string {
	const layout = "20060102T150405"
	lines := []string{
		"BEGIN:VCALENDAR",
		"PRODID:-//Onboard//EN",
		"VERSION:2.0",
		"CALSCALE:GREGORIAN",
		"METHOD:REQUEST",
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:%s", ev.UID),
		fmt.Sprintf("DTSTAMP:%sZ", ev.Stamp.UTC().Format(layout)),
		fmt.Sprintf("SUMMARY:%s", ev.Summary),
		fmt.Sprintf("DTSTART;TZID=%s:%s", ev.TimeZone, ev.Start.Format(layout)),
		fmt.Sprintf("DTEND;TZID=%s:%s", ev.TimeZone, ev.End.Format(layout)),
		fmt.Sprintf("LOCATION:%s", ev.Location),
		fmt.Sprintf("DESCRIPTION:%s", ev.Description),
		fmt.Sprintf("ORGANIZER:MAILTO:%s", ev.Organizer),
		fmt.Sprintf("ATTENDEE;CN=%s;RSVP=TRUE:MAILTO:%s", ev.AttendeeEmail, ev.AttendeeEmail),
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}

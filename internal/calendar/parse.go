// Package calendar fetches, parses and renders iCalendar (RFC 5545) documents.
//
// Parsing is intentionally lenient: it is a line scanner that keeps any VEVENT
// carrying both SUMMARY and DTSTART and silently drops the rest, so a single
// broken event never rejects a whole feed.
package calendar

import (
	"errors"
	"strings"
)

const calendarMarker = "BEGIN:VCALENDAR"

var (
	ErrFormat        = errors.New("document is not an iCalendar feed")
	ErrEmptyCalendar = errors.New("no events found in calendar")
)

// Event is a VEVENT reduced to the properties todos are built from.
type Event struct {
	Summary string
	// Start is the raw DTSTART value, e.g. "20240115T090000Z" or "20240115".
	Start string
	// Due is captured from DUE but not used to build todos.
	Due string
}

// DueDate returns the date portion of DTSTART as YYYY-MM-DD, or "" when the
// value does not begin with a date.
func (e Event) DueDate() string {
	return datePortion(e.Start)
}

// IsCalendar reports whether text carries the VCALENDAR marker.
func IsCalendar(text string) bool {
	return strings.Contains(text, calendarMarker)
}

// Parse extracts the complete events of an iCalendar document. It returns
// ErrFormat when the calendar marker is missing and ErrEmptyCalendar when no
// event survives.
func Parse(text string) ([]Event, error) {
	if !IsCalendar(text) {
		return nil, ErrFormat
	}

	var (
		events  []Event
		current *Event
		seen    struct{ summary, start bool }
	)

	for _, line := range unfold(text) {
		name, value, ok := splitProperty(line)
		if !ok {
			continue
		}

		switch {
		case name == "BEGIN" && strings.EqualFold(value, "VEVENT"):
			current = &Event{}
			seen.summary, seen.start = false, false
		case name == "END" && strings.EqualFold(value, "VEVENT"):
			if current != nil && seen.summary && seen.start {
				events = append(events, *current)
			}
			current = nil
		case current == nil:
			continue
		case name == "SUMMARY":
			current.Summary = unescapeText(strings.TrimSpace(value))
			seen.summary = current.Summary != ""
		case name == "DTSTART":
			current.Start = strings.TrimSpace(value)
			seen.start = current.Start != ""
		case name == "DUE":
			current.Due = strings.TrimSpace(value)
		}
	}

	if len(events) == 0 {
		return nil, ErrEmptyCalendar
	}

	return events, nil
}

// unfold joins RFC 5545 continuation lines (those starting with a space or tab)
// onto the previous line and normalizes CRLF.
func unfold(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}

	return lines
}

// splitProperty separates "NAME;PARAM=X:value" into an upper-cased NAME and value.
func splitProperty(line string) (string, string, bool) {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		return "", "", false
	}

	name := line[:colon]
	if semi := strings.IndexByte(name, ';'); semi >= 0 {
		name = name[:semi]
	}

	return strings.ToUpper(strings.TrimSpace(name)), line[colon+1:], true
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

func unescapeText(value string) string {
	return textUnescaper.Replace(value)
}

// datePortion accepts both the extended form (2024-01-15T10:00:00) and the
// basic iCalendar form (20240115T100000Z) and returns 2024-01-15.
func datePortion(value string) string {
	value = strings.TrimSpace(value)

	if len(value) >= 10 && value[4] == '-' && value[7] == '-' && allDigits(value[0:4]+value[5:7]+value[8:10]) {
		return value[:10]
	}

	if len(value) >= 8 && allDigits(value[:8]) {
		return value[0:4] + "-" + value[4:6] + "-" + value[6:8]
	}

	return ""
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package caldav

import (
	"fmt"
	"strings"
	"time"

	"remotework.service/internal/core/model"
)

// prodID identifies this generator in every document we publish.
const prodID = "-//RemoteWork//CalendarSync//EN"

// calendarName is the prefix of the X-WR-CALNAME in bulk exports.
const calendarName = "Remote work"

var (
	ErrNoUser = fmt.Errorf("remote work entry has no user")
	ErrNoDate = fmt.Errorf("remote work entry has no date")
)

// EscapeText escapes free text for use in an iCalendar property value:
// backslash, semicolon, comma and newlines are escaped, carriage returns
// are dropped (RFC 5545 §3.3.11).
func EscapeText(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, ";", `\;`)
	text = strings.ReplaceAll(text, ",", `\,`)
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "\r", "")

	return text
}

// EventUID builds the canonical event identity for an entry. It is a pure
// function of (user id, date, type, domain), so the same entry always maps
// to the same remote event. The sync client derives its resource URLs from
// the same tuple; keep the two in lockstep.
func EventUID(entry *model.RemoteWork, domain string) (string, error) {
	if entry.User == nil {
		return "", ErrNoUser
	}
	if entry.Date.IsZero() {
		return "", ErrNoDate
	}

	return fmt.Sprintf("remote-work-%d-%s-%s@%s",
		entry.User.ID,
		entry.Date.Format("20060102"),
		entry.Type,
		domain,
	), nil
}

// EventFilename is the deterministic .ics resource name for an entry,
// matching the local part of the UID.
func EventFilename(entry *model.RemoteWork) (string, error) {
	if entry.User == nil {
		return "", ErrNoUser
	}
	if entry.Date.IsZero() {
		return "", ErrNoDate
	}

	return fmt.Sprintf("remote-work-%d-%s-%s.ics",
		entry.User.ID,
		entry.Date.Format("20060102"),
		entry.Type,
	), nil
}

// Summary composes the human-readable event title from the type label, a
// half-day marker and, when requested, the entry comment.
func Summary(entry *model.RemoteWork, includeComment bool) string {
	summary := model.InfoForType(entry.Type).Label

	if entry.HalfDay {
		summary += " (half day)"
	}

	if includeComment && entry.Comment != "" {
		summary += ": " + entry.Comment
	}

	return summary
}

// SerializeEvent renders a single all-day VEVENT block. The end date is
// the day after the entry date; all-day events are exclusive-end.
// dtstamp and sequence are passed in so that every event of one document
// shares them, and so that repeated serialization is byte-stable.
func SerializeEvent(entry *model.RemoteWork, domain string, dtstamp string, sequence int) (string, error) {
	if entry.Date.IsZero() {
		return "", ErrNoDate
	}

	uid, err := EventUID(entry, domain)
	if err != nil {
		return "", err
	}

	dtstart := entry.Date.Format("20060102")
	dtend := entry.Date.AddDate(0, 0, 1).Format("20060102")

	lines := []string{
		"BEGIN:VEVENT",
		"UID:" + uid,
		"DTSTAMP:" + dtstamp,
		"DTSTART;VALUE=DATE:" + dtstart,
		"DTEND;VALUE=DATE:" + dtend,
		"SUMMARY:" + EscapeText(Summary(entry, true)),
		fmt.Sprintf("SEQUENCE:%d", sequence),
		"TRANSP:OPAQUE",
	}

	if entry.Comment != "" {
		lines = append(lines, "DESCRIPTION:"+EscapeText(entry.Comment))
	}

	lines = append(lines, "END:VEVENT")

	return strings.Join(lines, "\r\n"), nil
}

// SerializeSingleEventCalendar wraps one entry in a VCALENDAR envelope,
// ready for a CalDAV PUT.
func SerializeSingleEventCalendar(entry *model.RemoteWork, domain string) (string, error) {
	dtstamp, sequence := stampAndSequence(time.Now())

	event, err := SerializeEvent(entry, domain, dtstamp, sequence)
	if err != nil {
		return "", err
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		event,
		"END:VCALENDAR",
	}

	return strings.Join(lines, "\r\n"), nil
}

// SerializeCalendar renders a bulk export document with all given entries.
// Entries without a date are silently skipped.
func SerializeCalendar(entries []*model.RemoteWork, ownerDisplayName string, domain string) string {
	return serializeCalendarAt(entries, ownerDisplayName, domain, time.Now())
}

func serializeCalendarAt(entries []*model.RemoteWork, ownerDisplayName string, domain string, now time.Time) string {
	dtstamp, sequence := stampAndSequence(now)

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:" + EscapeText(calendarName) + " - " + EscapeText(ownerDisplayName),
	}

	for _, entry := range entries {
		if entry.Date.IsZero() {
			continue
		}
		event, err := SerializeEvent(entry, domain, dtstamp, sequence)
		if err != nil {
			continue
		}
		lines = append(lines, event)
	}

	lines = append(lines, "END:VCALENDAR")

	return strings.Join(lines, "\r\n")
}

// stampAndSequence derives the shared DTSTAMP and SEQUENCE for one
// document. The sequence is a coarse quantization of "now": repeated
// syncs inside the same ten-second bucket reuse the number, syncs
// further apart increment it, so the server takes later PUTs as updates.
func stampAndSequence(now time.Time) (string, int) {
	now = now.UTC()
	return now.Format("20060102T150405Z"), int(now.Unix() / 10)
}

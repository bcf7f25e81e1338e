package caldav

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remotework.service/internal/core/model"
)

func testEntry() *model.RemoteWork {
	return &model.RemoteWork{
		ID:     1,
		User:   &model.User{ID: 42, Username: "jdoe", DisplayName: "Jane Doe"},
		Type:   model.TypeHomeoffice,
		Date:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Status: model.StatusApproved,
	}
}

func TestEscapeText(t *testing.T) {
	t.Run("escapes backslash before other characters", func(t *testing.T) {
		assert.Equal(t, `a\\b`, EscapeText(`a\b`))
	})

	t.Run("escapes semicolon comma and newline", func(t *testing.T) {
		assert.Equal(t, `a\;b\,c\nd`, EscapeText("a;b,c\nd"))
	})

	t.Run("drops carriage returns", func(t *testing.T) {
		assert.Equal(t, `a\nb`, EscapeText("a\r\nb"))
	})

	t.Run("leaves plain text alone", func(t *testing.T) {
		assert.Equal(t, "Home office", EscapeText("Home office"))
	})
}

func TestEventUID(t *testing.T) {
	t.Run("builds deterministic uid from user date type and domain", func(t *testing.T) {
		uid, err := EventUID(testEntry(), "example.com")
		require.NoError(t, err)
		assert.Equal(t, "remote-work-42-20250310-homeoffice@example.com", uid)
	})

	t.Run("same entry always maps to same uid", func(t *testing.T) {
		first, err := EventUID(testEntry(), "example.com")
		require.NoError(t, err)
		second, err := EventUID(testEntry(), "example.com")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("business trip yields a different uid", func(t *testing.T) {
		entry := testEntry()
		entry.Type = model.TypeBusinessTrip
		uid, err := EventUID(entry, "example.com")
		require.NoError(t, err)
		assert.Equal(t, "remote-work-42-20250310-business_trip@example.com", uid)
	})

	t.Run("rejects entry without user", func(t *testing.T) {
		entry := testEntry()
		entry.User = nil
		_, err := EventUID(entry, "example.com")
		assert.ErrorIs(t, err, ErrNoUser)
	})

	t.Run("rejects entry without date", func(t *testing.T) {
		entry := testEntry()
		entry.Date = time.Time{}
		_, err := EventUID(entry, "example.com")
		assert.ErrorIs(t, err, ErrNoDate)
	})
}

func TestEventFilename(t *testing.T) {
	t.Run("matches the local part of the uid", func(t *testing.T) {
		filename, err := EventFilename(testEntry())
		require.NoError(t, err)
		assert.Equal(t, "remote-work-42-20250310-homeoffice.ics", filename)
	})

	t.Run("rejects entry without user", func(t *testing.T) {
		entry := testEntry()
		entry.User = nil
		_, err := EventFilename(entry)
		assert.ErrorIs(t, err, ErrNoUser)
	})
}

func TestSummary(t *testing.T) {
	t.Run("uses the type label", func(t *testing.T) {
		assert.Equal(t, "Home office", Summary(testEntry(), true))
	})

	t.Run("marks half days", func(t *testing.T) {
		entry := testEntry()
		entry.HalfDay = true
		assert.Equal(t, "Home office (half day)", Summary(entry, true))
	})

	t.Run("appends the comment when requested", func(t *testing.T) {
		entry := testEntry()
		entry.Comment = "sprint planning"
		assert.Equal(t, "Home office: sprint planning", Summary(entry, true))
		assert.Equal(t, "Home office", Summary(entry, false))
	})

	t.Run("half day and comment combine", func(t *testing.T) {
		entry := testEntry()
		entry.HalfDay = true
		entry.Comment = "dentist"
		assert.Equal(t, "Home office (half day): dentist", Summary(entry, true))
	})
}

func TestSerializeEvent(t *testing.T) {
	t.Run("renders an all day event with exclusive end date", func(t *testing.T) {
		event, err := SerializeEvent(testEntry(), "example.com", "20250309T120000Z", 7)
		require.NoError(t, err)

		lines := strings.Split(event, "\r\n")
		assert.Equal(t, []string{
			"BEGIN:VEVENT",
			"UID:remote-work-42-20250310-homeoffice@example.com",
			"DTSTAMP:20250309T120000Z",
			"DTSTART;VALUE=DATE:20250310",
			"DTEND;VALUE=DATE:20250311",
			"SUMMARY:Home office",
			"SEQUENCE:7",
			"TRANSP:OPAQUE",
			"END:VEVENT",
		}, lines)
	})

	t.Run("end date crosses month boundary", func(t *testing.T) {
		entry := testEntry()
		entry.Date = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
		event, err := SerializeEvent(entry, "example.com", "20250330T120000Z", 1)
		require.NoError(t, err)
		assert.Contains(t, event, "DTSTART;VALUE=DATE:20250331")
		assert.Contains(t, event, "DTEND;VALUE=DATE:20250401")
	})

	t.Run("comment is escaped in summary and description", func(t *testing.T) {
		entry := testEntry()
		entry.Comment = "on-site; client A, client B"
		event, err := SerializeEvent(entry, "example.com", "20250309T120000Z", 1)
		require.NoError(t, err)
		assert.Contains(t, event, `SUMMARY:Home office: on-site\; client A\, client B`)
		assert.Contains(t, event, `DESCRIPTION:on-site\; client A\, client B`)
	})

	t.Run("no description without comment", func(t *testing.T) {
		event, err := SerializeEvent(testEntry(), "example.com", "20250309T120000Z", 1)
		require.NoError(t, err)
		assert.NotContains(t, event, "DESCRIPTION")
	})

	t.Run("byte stable for identical inputs", func(t *testing.T) {
		first, err := SerializeEvent(testEntry(), "example.com", "20250309T120000Z", 7)
		require.NoError(t, err)
		second, err := SerializeEvent(testEntry(), "example.com", "20250309T120000Z", 7)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects entry without date", func(t *testing.T) {
		entry := testEntry()
		entry.Date = time.Time{}
		_, err := SerializeEvent(entry, "example.com", "20250309T120000Z", 1)
		assert.ErrorIs(t, err, ErrNoDate)
	})
}

func TestSerializeSingleEventCalendar(t *testing.T) {
	t.Run("wraps the event in a publishable envelope", func(t *testing.T) {
		doc, err := SerializeSingleEventCalendar(testEntry(), "example.com")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(doc, "BEGIN:VCALENDAR\r\n"))
		assert.True(t, strings.HasSuffix(doc, "\r\nEND:VCALENDAR"))
		assert.Contains(t, doc, "VERSION:2.0")
		assert.Contains(t, doc, "PRODID:-//RemoteWork//CalendarSync//EN")
		assert.Contains(t, doc, "CALSCALE:GREGORIAN")
		assert.Contains(t, doc, "METHOD:PUBLISH")
		assert.NotContains(t, doc, "X-WR-CALNAME")
	})

	t.Run("output parses as a valid icalendar document", func(t *testing.T) {
		doc, err := SerializeSingleEventCalendar(testEntry(), "example.com")
		require.NoError(t, err)

		cal, err := ics.ParseCalendar(strings.NewReader(doc))
		require.NoError(t, err)

		events := cal.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "remote-work-42-20250310-homeoffice@example.com", events[0].Id())
	})

	t.Run("propagates missing user", func(t *testing.T) {
		entry := testEntry()
		entry.User = nil
		_, err := SerializeSingleEventCalendar(entry, "example.com")
		assert.ErrorIs(t, err, ErrNoUser)
	})
}

func TestSerializeCalendar(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	makeEntries := func() []*model.RemoteWork {
		user := &model.User{ID: 42, Username: "jdoe", DisplayName: "Jane Doe"}
		return []*model.RemoteWork{
			{ID: 1, User: user, Type: model.TypeHomeoffice, Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), Status: model.StatusApproved},
			{ID: 2, User: user, Type: model.TypeBusinessTrip, Date: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), Status: model.StatusApproved},
		}
	}

	t.Run("renders all entries into one document", func(t *testing.T) {
		doc := serializeCalendarAt(makeEntries(), "Jane Doe", "example.com", now)

		cal, err := ics.ParseCalendar(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, cal.Events(), 2)

		assert.Contains(t, doc, "X-WR-CALNAME:Remote work - Jane Doe")
	})

	t.Run("all events share dtstamp and sequence", func(t *testing.T) {
		doc := serializeCalendarAt(makeEntries(), "Jane Doe", "example.com", now)

		assert.Equal(t, 2, strings.Count(doc, "DTSTAMP:20250601T080000Z"))
		stamps := strings.Count(doc, "SEQUENCE:")
		assert.Equal(t, 2, stamps)
	})

	t.Run("skips entries without a date", func(t *testing.T) {
		entries := makeEntries()
		entries = append(entries, &model.RemoteWork{ID: 3, User: entries[0].User, Type: model.TypeHomeoffice})

		doc := serializeCalendarAt(entries, "Jane Doe", "example.com", now)
		cal, err := ics.ParseCalendar(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Len(t, cal.Events(), 2)
	})

	t.Run("escapes the owner name in the calendar name", func(t *testing.T) {
		doc := serializeCalendarAt(makeEntries(), "Doe; Jane", "example.com", now)
		assert.Contains(t, doc, `X-WR-CALNAME:Remote work - Doe\; Jane`)
	})

	t.Run("empty input yields an empty calendar", func(t *testing.T) {
		doc := serializeCalendarAt(nil, "Jane Doe", "example.com", now)
		assert.Contains(t, doc, "BEGIN:VCALENDAR")
		assert.NotContains(t, doc, "BEGIN:VEVENT")
	})
}

func TestStampAndSequence(t *testing.T) {
	t.Run("stamp is utc in basic format", func(t *testing.T) {
		stamp, _ := stampAndSequence(time.Date(2025, 3, 9, 13, 30, 5, 0, time.FixedZone("CET", 3600)))
		assert.Equal(t, "20250309T123005Z", stamp)
	})

	t.Run("sequence is stable inside a ten second bucket", func(t *testing.T) {
		base := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
		_, first := stampAndSequence(base)
		_, second := stampAndSequence(base.Add(5 * time.Second))
		_, third := stampAndSequence(base.Add(20 * time.Second))

		assert.Equal(t, first, second)
		assert.Greater(t, third, first)
	})
}

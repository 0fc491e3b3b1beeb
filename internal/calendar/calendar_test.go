package calendar

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-todo-planner/internal/model"
)

const twoEvents = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"BEGIN:VEVENT\r\n" +
	"SUMMARY:Dentist\r\n" +
	"DTSTART:20240115T090000Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"SUMMARY:Team offsite\r\n" +
	"DTSTART;VALUE=DATE:20240220\r\n" +
	"DUE:20240221\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParse_TwoWellFormedEvents(t *testing.T) {
	events, err := Parse(twoEvents)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Dentist", events[0].Summary)
	assert.Equal(t, "20240115T090000Z", events[0].Start)
	assert.Equal(t, "2024-01-15", events[0].DueDate())

	assert.Equal(t, "Team offsite", events[1].Summary)
	assert.Equal(t, "2024-02-20", events[1].DueDate())
	assert.Equal(t, "20240221", events[1].Due)
}

func TestParse_DropsIncompleteEvents(t *testing.T) {
	doc := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"BEGIN:VEVENT",
		"DTSTART:20240301",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:No start",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:Kept",
		"DTSTART:2024-03-05T10:00:00",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:Never closed",
		"DTSTART:20240306",
		"END:VCALENDAR",
	}, "\n")

	events, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Kept", events[0].Summary)
	assert.Equal(t, "2024-03-05", events[0].DueDate())
}

func TestParse_RejectsNonCalendar(t *testing.T) {
	_, err := Parse("BEGIN:VEVENT\nSUMMARY:x\nDTSTART:20240101\nEND:VEVENT\n")
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Parse("<html>not a calendar</html>")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestParse_EmptyCalendar(t *testing.T) {
	_, err := Parse("BEGIN:VCALENDAR\nVERSION:2.0\nEND:VCALENDAR\n")
	assert.ErrorIs(t, err, ErrEmptyCalendar)
}

func TestParse_FoldedAndEscapedSummary(t *testing.T) {
	doc := "BEGIN:VCALENDAR\r\n" +
		"BEGIN:VEVENT\r\n" +
		"SUMMARY;LANGUAGE=en:Quarterly planning\\, budget\r\n" +
		"  review\r\n" +
		"DTSTART;TZID=Europe/Berlin:20241001T140000\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	events, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Quarterly planning, budget review", events[0].Summary)
	assert.Equal(t, "2024-10-01", events[0].DueDate())
}

func TestParse_KeepsEventsAfterOversizedLine(t *testing.T) {
	doc := "BEGIN:VCALENDAR\r\n" +
		"BEGIN:VEVENT\r\nSUMMARY:first\r\nDTSTART:20240115\r\nEND:VEVENT\r\n" +
		"BEGIN:VEVENT\r\nSUMMARY:second\r\nDTSTART:20240116\r\n" +
		"DESCRIPTION:" + strings.Repeat("x", 2<<20) + "\r\n" +
		"END:VEVENT\r\n" +
		"BEGIN:VEVENT\r\nSUMMARY:third\r\nDTSTART:20240117\r\nEND:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	events, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "first", events[0].Summary)
	assert.Equal(t, "second", events[1].Summary)
	assert.Equal(t, "third", events[2].Summary)
	assert.Equal(t, "2024-01-17", events[2].DueDate())
}

func TestEvent_DueDate(t *testing.T) {
	cases := map[string]string{
		"20240115":             "2024-01-15",
		"20240115T090000Z":     "2024-01-15",
		"2024-01-15":           "2024-01-15",
		"2024-01-15T09:00:00Z": "2024-01-15",
		"garbage":              "",
		"":                     "",
	}

	for raw, want := range cases {
		assert.Equal(t, want, Event{Start: raw}.DueDate(), raw)
	}
}

func TestNormalizeURL(t *testing.T) {
	got, err := NormalizeURL(" webcal://example.com/cal.ics ")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cal.ics", got)

	got, err = NormalizeURL("http://example.com/a.ics")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/a.ics", got)

	for _, bad := range []string{"", "example.com/cal.ics", "ftp://example.com/cal.ics", "file:///etc/passwd", "https://"} {
		_, err := NormalizeURL(bad)
		assert.ErrorIs(t, err, ErrInvalidURL, bad)
	}
}

func TestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.ics":
			w.Header().Set("Content-Type", "text/calendar")
			_, _ = w.Write([]byte(twoEvents))
		case "/big.ics":
			_, _ = w.Write(bytes.Repeat([]byte("x"), 64))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	fetcher := NewFetcher(5*time.Second, 32)

	t.Run("success", func(t *testing.T) {
		big := NewFetcher(5*time.Second, 1<<20)
		text, err := big.Fetch(context.Background(), server.URL+"/ok.ics")
		require.NoError(t, err)
		assert.Equal(t, twoEvents, text)
	})

	t.Run("non-success status", func(t *testing.T) {
		_, err := fetcher.Fetch(context.Background(), server.URL+"/missing.ics")
		assert.ErrorIs(t, err, ErrFetch)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("too large", func(t *testing.T) {
		_, err := fetcher.Fetch(context.Background(), server.URL+"/big.ics")
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("network failure", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		addr := closed.URL
		closed.Close()

		_, err := fetcher.Fetch(context.Background(), addr+"/x.ics")
		assert.ErrorIs(t, err, ErrFetch)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := fetcher.Fetch(context.Background(), "mailto:someone@example.com")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})
}

func TestExport(t *testing.T) {
	due := "2024-05-01"
	todos := []model.Todo{
		{ID: 7, Title: "Pay rent", DueDate: &due, Category: "Home", Completed: true},
		{ID: 8, Title: "Someday", Category: model.DefaultCategory},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, todos, "example.test", time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "UID:todo-7@example.test")
	assert.Contains(t, out, "SUMMARY:Pay rent")
	assert.Contains(t, out, "20240501")
	assert.Contains(t, out, "X-TODO-COMPLETED:TRUE")
	assert.NotContains(t, out, "Someday")

	events, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2024-05-01", events[0].DueDate())
}

func TestExport_NoDatedTodos(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, []model.Todo{{ID: 1, Title: "Someday"}}, "example.test", time.Now()))

	assert.True(t, IsCalendar(buf.String()))
	_, err := Parse(buf.String())
	assert.ErrorIs(t, err, ErrEmptyCalendar)
}

package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-todo-planner/internal/calendar"
	"go-todo-planner/internal/model"
	"go-todo-planner/internal/repository"
)

type stubFetcher map[string]string

func (f stubFetcher) Fetch(_ context.Context, rawURL string) (string, error) {
	if _, err := calendar.NormalizeURL(rawURL); err != nil {
		return "", err
	}
	body, ok := f[rawURL]
	if !ok {
		return "", fmt.Errorf("%w: upstream status 404", calendar.ErrFetch)
	}
	return body, nil
}

const twoEvents = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"BEGIN:VEVENT\r\n" +
	"SUMMARY:Essay due\r\n" +
	"DTSTART;VALUE=DATE:20240115\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"SUMMARY:Midterm\r\n" +
	"DTSTART:20240220T090000Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART:20240301\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestImportService_Import(t *testing.T) {
	ctx := context.Background()

	fetcher := stubFetcher{
		"https://cal.example.com/good.ics":  twoEvents,
		"https://cal.example.com/html":      "<html>nope</html>",
		"https://cal.example.com/empty.ics": "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
	}

	todos := new(repository.MockTodoRepository)
	var created []model.Todo
	todos.On("Create", ctx, mock.AnythingOfType("*model.Todo")).
		Run(func(args mock.Arguments) {
			todo := args.Get(1).(*model.Todo)
			todo.ID = int64(len(created) + 1)
			created = append(created, *todo)
		}).
		Return(nil)

	svc := NewImportService(fetcher, NewTodoService(todos), "")

	report, err := svc.Import(ctx, 9, []string{
		"https://cal.example.com/good.ics",
		" ",
		"https://cal.example.com/missing.ics",
		"https://cal.example.com/html",
		"https://cal.example.com/empty.ics",
		"ftp://cal.example.com/x.ics",
	}, "School")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Results, 5)
	assert.Equal(t, model.ImportResult{URL: "https://cal.example.com/good.ics", Events: 2, Imported: 2}, report.Results[0])
	assert.Equal(t, "Failed to fetch calendar", report.Results[1].Error)
	assert.Equal(t, "The link does not contain a valid calendar", report.Results[2].Error)
	assert.Equal(t, "No events found in the calendar", report.Results[3].Error)
	assert.Equal(t, "Invalid calendar URL", report.Results[4].Error)
	assert.Contains(t, report.Message, "Imported 2 events from 1 of 5 calendars")
	assert.Contains(t, report.Message, "No events found in the calendar: https://cal.example.com/empty.ics")

	require.Len(t, created, 2)
	assert.Equal(t, "Essay due", created[0].Title)
	assert.Equal(t, "2024-01-15", *created[0].DueDate)
	assert.Equal(t, "2024-02-20", *created[1].DueDate)
	for _, todo := range created {
		assert.Equal(t, int64(9), todo.UserID)
		assert.Equal(t, "School", todo.Category)
		assert.False(t, todo.Completed)
	}
}

func TestImportService_CountsRejectedEvents(t *testing.T) {
	ctx := context.Background()
	todos := new(repository.MockTodoRepository)
	todos.On("Create", ctx, mock.MatchedBy(func(todo *model.Todo) bool { return todo.Title == "Essay due" })).Return(nil)
	todos.On("Create", ctx, mock.Anything).Return(model.ErrUserReference)

	svc := NewImportService(stubFetcher{"https://cal.example.com/good.ics": twoEvents}, NewTodoService(todos), "Imported")

	report, err := svc.Import(ctx, 9, []string{"https://cal.example.com/good.ics"}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.Results[0].Failed)
	assert.Empty(t, report.Results[0].Error)
}

func TestImportService_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	todos := new(repository.MockTodoRepository)
	svc := NewImportService(stubFetcher{"https://cal.example.com/good.ics": twoEvents}, NewTodoService(todos), "")

	report, err := svc.Import(ctx, 9, []string{"https://cal.example.com/good.ics"}, "")
	require.NoError(t, err)
	assert.Zero(t, report.Imported)
	assert.Equal(t, "import cancelled", report.Results[0].Error)
	todos.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImportService_RequiresURLs(t *testing.T) {
	svc := NewImportService(stubFetcher{}, NewTodoService(new(repository.MockTodoRepository)), "")

	_, err := svc.Import(context.Background(), 1, []string{"", "  "}, "")
	requireAPIError(t, err, http.StatusBadRequest)
}

func TestImportService_Proxy(t *testing.T) {
	ctx := context.Background()
	svc := NewImportService(stubFetcher{"https://cal.example.com/good.ics": twoEvents}, nil, "")

	text, err := svc.Proxy(ctx, "https://cal.example.com/good.ics")
	require.NoError(t, err)
	assert.Equal(t, twoEvents, text)

	_, err = svc.Proxy(ctx, "")
	requireAPIError(t, err, http.StatusBadRequest)

	_, err = svc.Proxy(ctx, "not a url")
	assert.ErrorIs(t, err, calendar.ErrInvalidURL)

	_, err = svc.Proxy(ctx, "https://cal.example.com/missing.ics")
	assert.ErrorIs(t, err, calendar.ErrFetch)
}

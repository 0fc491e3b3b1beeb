package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go-todo-planner/internal/calendar"
	"go-todo-planner/internal/model"
	"go-todo-planner/pkg/apierror"
)

type calendarFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// ImportService turns remote calendar feeds into todos of the caller.
type ImportService struct {
	fetcher         calendarFetcher
	todos           *TodoService
	defaultCategory string
}

func NewImportService(fetcher calendarFetcher, todos *TodoService, defaultCategory string) *ImportService {
	defaultCategory = strings.TrimSpace(defaultCategory)
	if defaultCategory == "" {
		defaultCategory = model.DefaultCategory
	}

	return &ImportService{
		fetcher:         fetcher,
		todos:           todos,
		defaultCategory: defaultCategory,
	}
}

// Proxy fetches a calendar on behalf of a browser client and returns the raw text.
func (s *ImportService) Proxy(ctx context.Context, rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", apierror.Validation("url is required", "url")
	}
	return s.fetcher.Fetch(ctx, rawURL)
}

// Import processes urls in order. A failing URL is recorded in its result and
// the batch moves on; once ctx is done the remaining URLs are skipped.
func (s *ImportService) Import(ctx context.Context, userID int64, urls []string, category string) (model.ImportReport, error) {
	targets := make([]string, 0, len(urls))
	for _, u := range urls {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			targets = append(targets, trimmed)
		}
	}
	if len(targets) == 0 {
		return model.ImportReport{}, apierror.Validation("at least one calendar url is required", "urls")
	}

	category = strings.TrimSpace(category)
	if category == "" {
		category = s.defaultCategory
	}

	report := model.ImportReport{Results: make([]model.ImportResult, 0, len(targets))}
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			report.Results = append(report.Results, model.ImportResult{URL: target, Error: "import cancelled"})
			continue
		}

		result := s.importOne(ctx, userID, target, category)
		report.Imported += result.Imported
		report.Results = append(report.Results, result)
	}

	report.Message = summarize(report)
	slog.Info("calendar import finished",
		"user_id", userID,
		"urls", len(targets),
		"imported", report.Imported,
	)

	return report, nil
}

func (s *ImportService) importOne(ctx context.Context, userID int64, target string, category string) model.ImportResult {
	result := model.ImportResult{URL: target}

	text, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		slog.Warn("calendar fetch failed", "url", target, "error", err)
		switch {
		case errors.Is(err, calendar.ErrInvalidURL):
			result.Error = "Invalid calendar URL"
		case errors.Is(err, calendar.ErrTooLarge):
			result.Error = "Calendar is too large"
		default:
			result.Error = "Failed to fetch calendar"
		}
		return result
	}

	events, err := calendar.Parse(text)
	switch {
	case errors.Is(err, calendar.ErrFormat):
		result.Error = "The link does not contain a valid calendar"
		return result
	case errors.Is(err, calendar.ErrEmptyCalendar):
		result.Error = "No events found in the calendar"
		return result
	case err != nil:
		result.Error = "Failed to parse calendar"
		return result
	}
	result.Events = len(events)

	for _, ev := range events {
		if ctx.Err() != nil {
			result.Failed += result.Events - result.Imported - result.Failed
			result.Error = "import cancelled"
			break
		}

		if _, err := s.todos.Create(ctx, userID, eventInput(ev, category)); err != nil {
			slog.Warn("imported event rejected", "url", target, "summary", ev.Summary, "error", err)
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result
}

func eventInput(ev calendar.Event, category string) model.TodoInput {
	title := ev.Summary
	completed := false
	input := model.TodoInput{
		Title:     &title,
		Completed: &completed,
		Category:  &category,
	}
	if date := ev.DueDate(); date != "" {
		input.DueDate = &date
	}
	return input
}

func summarize(report model.ImportReport) string {
	calendars := 0
	var problems []string
	for _, r := range report.Results {
		if r.Error == "" || r.Imported > 0 {
			calendars++
		}
		if r.Error != "" {
			problems = append(problems, fmt.Sprintf("%s: %s", r.Error, r.URL))
		}
	}

	msg := fmt.Sprintf("Imported %d events from %d of %d calendars", report.Imported, calendars, len(report.Results))
	if len(problems) > 0 {
		msg += ". " + strings.Join(problems, "; ")
	}
	return msg
}

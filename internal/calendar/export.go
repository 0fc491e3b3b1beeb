package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"go-todo-planner/internal/model"
)

const productID = "-//go-todo-planner//todos//EN"

// Export writes the dated todos as all-day VEVENTs. Undated todos have no place
// on a calendar grid and are skipped. uidDomain scopes the generated UIDs.
func Export(w io.Writer, todos []model.Todo, uidDomain string, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	stamp := now.UTC()
	for _, todo := range todos {
		if todo.DueDate == nil {
			continue
		}

		due, err := time.Parse(model.DateLayout, *todo.DueDate)
		if err != nil {
			return fmt.Errorf("todo %d has invalid due date %q: %w", todo.ID, *todo.DueDate, err)
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("todo-%d@%s", todo.ID, uidDomain))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDate(ical.PropDateTimeStart, due)
		event.Props.SetText(ical.PropSummary, todo.Title)
		event.Props.SetText(ical.PropCategories, todo.Category)
		if todo.Completed {
			event.Props.SetText("X-TODO-COMPLETED", "TRUE")
		}

		cal.Children = append(cal.Children, event.Component)
	}

	// The encoder rejects a VCALENDAR without children, so an empty export
	// is written by hand.
	if len(cal.Children) == 0 {
		_, err := io.WriteString(w, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:"+productID+"\r\nEND:VCALENDAR\r\n")
		return err
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}

	return nil
}

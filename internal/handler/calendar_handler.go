package handler

import (
	"net/http"

	"go-todo-planner/internal/model"
	"go-todo-planner/internal/service"
)

// CalendarHandler fetches remote calendars for browser clients blocked by CORS.
type CalendarHandler struct {
	imports *service.ImportService
}

func NewCalendarHandler(imports *service.ImportService) *CalendarHandler {
	return &CalendarHandler{imports: imports}
}

func (h *CalendarHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	var payload model.ProxyICalRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	text, err := h.imports.Proxy(r.Context(), payload.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ProxyICalResponse{ICal: text})
}

package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"go-todo-planner/internal/calendar"
	"go-todo-planner/internal/model"
	"go-todo-planner/internal/service"
	"go-todo-planner/pkg/apierror"
)

type TodoHandler struct {
	todos   *service.TodoService
	imports *service.ImportService
	// uidDomain is the right-hand side of exported event UIDs.
	uidDomain string
}

func NewTodoHandler(todos *service.TodoService, imports *service.ImportService, uidDomain string) *TodoHandler {
	return &TodoHandler{todos: todos, imports: imports, uidDomain: uidDomain}
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	query := r.URL.Query()
	filter := model.TodoFilter{
		DueDate:  query.Get("due"),
		Category: query.Get("category"),
	}
	if raw := query.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, apierror.Validation("completed must be true or false", "completed"))
			return
		}
		filter.Completed = &completed
	}

	todos, err := h.todos.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, todos)
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := todoIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	todo, err := h.todos.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.TodoInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	todo, err := h.todos.Create(r.Context(), userID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, todo)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := todoIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.TodoInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	todo, err := h.todos.Update(r.Context(), userID, id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := todoIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.todos.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TodoHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.ImportRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	report, err := h.imports.Import(r.Context(), userID, payload.URLs, payload.Category)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Export serves the caller's dated todos as an iCalendar feed.
func (h *TodoHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	todos, err := h.todos.List(r.Context(), userID, model.TodoFilter{})
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := calendar.Export(&buf, todos, h.uidDomain, time.Now()); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="todos.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

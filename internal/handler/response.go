package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-todo-planner/internal/calendar"
	"go-todo-planner/internal/middleware"
	"go-todo-planner/internal/model"
	"go-todo-planner/pkg/apierror"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps err to a status and an error body. Anything unclassified
// is logged and answered with a generic 500 so store internals never leak.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := model.APIError{
		Error: "Unexpected server error",
		Code:  "INTERNAL_ERROR",
	}

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Error = apiErr.Message
		body.Details = apiErr.Details
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Error = "Username or email already exists"
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		body.Code = "INVALID_CREDENTIALS"
		body.Error = "Invalid credentials"
	case errors.Is(err, model.ErrUnauthenticated):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHENTICATED"
		body.Error = "No token provided"
	case errors.Is(err, model.ErrInvalidToken):
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Error = "Invalid or expired token"
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Error = "Access denied"
	case errors.Is(err, model.ErrTodoNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Error = "Todo not found"
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Error = "User not found"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Code = "VALIDATION_ERROR"
		body.Error = "Invalid input"
	case errors.Is(err, calendar.ErrInvalidURL):
		status = http.StatusBadRequest
		body.Code = "VALIDATION_ERROR"
		body.Error = "A valid http, https or webcal url is required"
		body.Details = "url"
	case errors.Is(err, calendar.ErrFetch), errors.Is(err, calendar.ErrTooLarge):
		slog.Warn("calendar fetch failed", "error", err.Error())
		body.Code = "FETCH_ERROR"
		body.Error = "Failed to fetch calendar"
	case errors.Is(err, calendar.ErrFormat):
		status = http.StatusBadRequest
		body.Code = "FORMAT_ERROR"
		body.Error = "The link does not contain a valid calendar"
	case errors.Is(err, model.ErrUserReference):
		slog.Error("todo write rejected by store", "error", err.Error())
		body.Code = "STORAGE_ERROR"
		body.Error = "Failed to save todo"
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest)
	}
	return nil
}

// currentUser returns the id of the authenticated caller.
func currentUser(r *http.Request) (int64, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return 0, model.ErrUnauthenticated
	}
	return claims.UserID, nil
}

func todoIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.Validation("todo id must be a positive integer", "id")
	}
	return id, nil
}

package http

import (
	"errors"
	"net/http"

	"github.com/quotables/quotes-api/internal/quotes/service"
	"github.com/quotables/quotes-api/internal/quotes/store"
	"github.com/quotables/quotes-api/pkg/httpx"
	"github.com/quotables/quotes-api/pkg/slogx"
)

// writeServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognised is logged and reported as a 500 without leaking internals.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrUserDisabled):
		httpx.WriteError(w, http.StatusUnauthorized, "account disabled")
	case errors.Is(err, service.ErrWrongTokenType):
		httpx.WriteError(w, http.StatusUnauthorized, "wrong token type")
	case errors.Is(err, service.ErrUnknownRole):
		httpx.WriteError(w, http.StatusBadRequest, "unknown role")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err, "path", r.URL.Path)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

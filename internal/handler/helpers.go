package handler

import (
	"errors"
	"net/http"

	"quill/internal/domain"
	"quill/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Every domain
// error type carries its own status via the HTTPError interface;
// anything else is an unexpected 500.
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), err.Error())
		return
	}
	httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
}

package api

import (
	"errors"
	"net/http"
)

// API Errors.
var (
	ErrInvalidEndpoint   = errors.New("endpoint is invalid")
	ErrAlreadyRegistered = errors.New("an endpoint for this path is already registered")
	ErrAlreadyRunning    = errors.New("api server is already running")

	// Handlers wrap these to select the response status.
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)

func statusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package api

import (
	"context"
	"net/http"
)

// Request is a support struct to pool more request related information.
type Request struct {
	// Request is the http request.
	Request *http.Request

	// URLVars contains the URL variables extracted by the gorilla mux.
	URLVars map[string]string
}

// Ctx is a shortcut to access the request context.
func (ar *Request) Ctx() context.Context {
	return ar.Request.Context()
}

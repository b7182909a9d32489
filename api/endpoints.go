package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/safing/biodb/formats/dsd"
	"github.com/safing/biodb/log"
)

// Endpoint describes an API Endpoint.
// Path and exactly one function are required.
type Endpoint struct {
	Path     string
	MimeType string

	// DataFunc is for returning raw data, eg. a stored record.
	DataFunc DataFunc `json:"-"`

	// StructFunc is for returning any kind of struct. It is serialized in
	// the format requested by the Accept header, JSON by default.
	StructFunc StructFunc `json:"-"`

	// HandlerFunc is the raw http handler.
	HandlerFunc http.HandlerFunc `json:"-"`

	// Documentation Metadata.

	Name        string
	Description string
}

type (
	// DataFunc is for returning raw data.
	DataFunc func(ar *Request) (data []byte, err error)

	// StructFunc is for returning any kind of struct.
	StructFunc func(ar *Request) (i interface{}, err error)
)

// MIME Types.
const (
	MimeTypeJSON string = "application/json"
	MimeTypeText string = "text/plain"

	apiV1Path = "/api/v1/"
)

// RegisterEndpoint registers a new endpoint. An error will be returned if it
// does not pass the sanity checks.
func (s *Server) RegisterEndpoint(e Endpoint) error {
	if err := e.check(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEndpoint, err)
	}
	if s.running.IsSet() {
		return fmt.Errorf("%w: server is already running", ErrInvalidEndpoint)
	}

	if _, ok := s.endpoints[e.Path]; ok {
		return ErrAlreadyRegistered
	}

	s.endpoints[e.Path] = &e
	s.router.Handle(apiV1Path+e.Path, &e).Methods(http.MethodGet, http.MethodHead)
	return nil
}

func (e *Endpoint) check() error {
	// Check path.
	if strings.TrimSpace(e.Path) == "" {
		return errors.New("path is missing")
	}

	// Check functions.
	var defaultMimeType string
	fnCnt := 0
	if e.DataFunc != nil {
		fnCnt++
		defaultMimeType = MimeTypeText
	}
	if e.StructFunc != nil {
		fnCnt++
		defaultMimeType = MimeTypeJSON
	}
	if e.HandlerFunc != nil {
		fnCnt++
		defaultMimeType = MimeTypeText
	}
	if fnCnt != 1 {
		return errors.New("only one function may be set")
	}

	// Set default mime type.
	if e.MimeType == "" {
		e.MimeType = defaultMimeType
	}

	return nil
}

// Endpoints returns the registered endpoints sorted by path. The returned
// data must be treated as immutable.
func (s *Server) Endpoints() []*Endpoint {
	eps := make([]*Endpoint, 0, len(s.endpoints))
	for _, ep := range s.endpoints {
		eps = append(eps, ep)
	}

	sort.Slice(eps, func(i, j int) bool {
		return eps[i].Path < eps[j].Path
	})
	return eps
}

// ServeHTTP handles the http request.
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	apiRequest := &Request{
		Request: r,
		URLVars: mux.Vars(r),
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Execute function and get response data.
	var responseData []byte
	var err error

	switch {
	case e.DataFunc != nil:
		responseData, err = e.DataFunc(apiRequest)

	case e.StructFunc != nil:
		var v interface{}
		v, err = e.StructFunc(apiRequest)
		if err == nil {
			err = dsd.DumpToHTTPResponse(w, r, v, dsd.JSON)
			if err != nil {
				log.Tracer(r.Context()).Warningf("api: failed to write response: %s", err)
			}
			return
		}

	case e.HandlerFunc != nil:
		e.HandlerFunc(w, r)
		return

	default:
		http.Error(w, "missing handler", http.StatusInternalServerError)
		return
	}

	// Check for handler error.
	if err != nil {
		code := statusCode(err)
		if code == http.StatusInternalServerError {
			log.Warningf("api: %s failed: %s", r.URL.Path, err)
		}
		http.Error(w, err.Error(), code)
		return
	}

	// Write response.
	w.Header().Set("Content-Type", e.MimeType+"; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(responseData)))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(responseData)
	if err != nil {
		log.Tracer(r.Context()).Warningf("api: failed to write response: %s", err)
	}
}

package api

import (
	"net/http"
	"time"

	"github.com/safing/biodb/log"
)

// LogTracer is an http middleware that attaches a log tracer to the request context.
func LogTracer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, tracer := log.AddTracer(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
		tracer.Submit(log.DebugLevel, "api: request "+r.URL.Path)
	})
}

// RequestLogger is a logging middleware.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ew := newStatusRecorder(w)
		next.ServeHTTP(ew, r)
		log.Infof("api: %s %s %d %s", r.Method, r.RequestURI, ew.status, time.Since(start))
	})
}

// statusRecorder records the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

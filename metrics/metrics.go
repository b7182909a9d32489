// Package metrics holds the counters of the fetch and split pipeline and
// exports them in the prometheus text format.
package metrics

import (
	"io"
	"net/http"

	vm "github.com/VictoriaMetrics/metrics"
)

// Counters.
var (
	FetchRequests = vm.NewCounter("biodb_fetch_requests_total")
	FetchFailures = vm.NewCounter("biodb_fetch_failures_total")
	FetchBytes    = vm.NewCounter("biodb_fetch_bytes_total")

	SplitDumps         = vm.NewCounter("biodb_split_dumps_total")
	SplitRecords       = vm.NewCounter("biodb_split_records_total")
	SplitEmptyDumps    = vm.NewCounter("biodb_split_empty_dumps_total")
	CorruptRecordReads = vm.NewCounter("biodb_corrupt_record_reads_total")
)

// CacheHits returns the counter for cache hits of the named cache.
func CacheHits(cache string) *vm.Counter {
	return vm.GetOrCreateCounter(`biodb_cache_hits_total{cache="` + cache + `"}`)
}

// CacheMisses returns the counter for cache misses of the named cache.
func CacheMisses(cache string) *vm.Counter {
	return vm.GetOrCreateCounter(`biodb_cache_misses_total{cache="` + cache + `"}`)
}

// WritePrometheus writes all metrics, including the process metrics, to w.
func WritePrometheus(w io.Writer) {
	vm.WritePrometheus(w, true)
}

// Handler serves the metrics in the prometheus text format.
func Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	WritePrometheus(w)
}

package metrics

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWritePrometheus(t *testing.T) {
	t.Parallel()

	SplitRecords.Add(2)
	CacheHits("rfam-entries").Inc()

	buf := new(bytes.Buffer)
	WritePrometheus(buf)
	assert.Contains(t, buf.String(), "biodb_split_records_total")
	assert.Contains(t, buf.String(), `biodb_cache_hits_total{cache="rfam-entries"}`)
}

func TestHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Handler(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "biodb_fetch_requests_total")
}

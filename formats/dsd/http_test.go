package dsd

import (
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMimeTypes(t *testing.T) {
	t.Parallel()

	for _, mimeType := range FormatToMimeType {
		cleaned, _, err := mime.ParseMediaType(mimeType)
		assert.NoError(t, err, "mime type must be parse-able")
		assert.Equal(t, mimeType, cleaned, "mime type should be clean in map already")
	}

	for mimeType, mimeTypeCleaned := range map[string]string{
		"application/xml, image/webp":       "xml",
		"application/xml;q=0.9, image/webp": "xml",
		"application/x-yaml":                "yaml",
		"*":                                 "*",
		"*/*":                               "*",
		"text/yAMl":                         "yaml",
	} {
		cleaned := extractMimeType(mimeType)
		assert.Equal(t, mimeTypeCleaned, cleaned, "assumption for %q should hold", mimeType)
	}
}

func TestFormatFromAccept(t *testing.T) {
	t.Parallel()

	assert.Equal(t, AUTO, FormatFromAccept(""))
	assert.Equal(t, AUTO, FormatFromAccept("text/html, */*"))
	assert.Equal(t, YAML, FormatFromAccept("text/html, application/yaml;q=0.9"))
	assert.Equal(t, CBOR, FormatFromAccept("application/cbor"))
}

func TestHTTPRoundTrip(t *testing.T) {
	t.Parallel()

	subject := testFamily()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rfam/families", nil)
	req.Header.Set("Accept", "application/msgpack")
	require.NoError(t, DumpToHTTPResponse(rec, req, subject, JSON))
	assert.Equal(t, "application/msgpack", rec.Header().Get("Content-Type"))

	loaded := &family{}
	format, err := LoadFromHTTPResponse(rec.Result(), loaded)
	require.NoError(t, err)
	assert.Equal(t, MsgPack, format)
	assert.Equal(t, subject, loaded)

	// fallback
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/rfam/families", nil)
	require.NoError(t, DumpToHTTPResponse(rec, req, subject, JSON))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"accession":"RF00001"`)
}

func TestHTTPRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, DumpToHTTPRequest(req, testFamily(), YAML))
	assert.Equal(t, "application/yaml", req.Header.Get("Accept"))

	loaded := &family{}
	format, err := LoadFromHTTPRequest(req, loaded)
	require.NoError(t, err)
	assert.Equal(t, YAML, format)
	assert.Equal(t, testFamily(), loaded)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Del("Content-Type")
	_, err = LoadFromHTTPRequest(req, loaded)
	assert.ErrorIs(t, err, ErrMissingContentType)
}

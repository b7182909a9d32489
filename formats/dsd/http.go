package dsd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTP Errors.
var (
	ErrMissingBody        = errors.New("dsd: missing http body")
	ErrMissingContentType = errors.New("dsd: missing http content type")
)

const (
	httpHeaderContentType = "Content-Type"
)

// LoadFromHTTPRequest loads the data from the body into t, using the format
// from the Content-Type header.
func LoadFromHTTPRequest(r *http.Request, t interface{}) (format SerializationFormat, err error) {
	if r.Body == nil {
		return 0, ErrMissingBody
	}
	defer func() {
		_ = r.Body.Close()
	}()

	return loadFromHTTP(r.Body, r.Header.Get(httpHeaderContentType), t)
}

// LoadFromHTTPResponse loads the data from the body into t, using the
// format from the Content-Type header.
func LoadFromHTTPResponse(resp *http.Response, t interface{}) (format SerializationFormat, err error) {
	if resp.Body == nil {
		return 0, ErrMissingBody
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	return loadFromHTTP(resp.Body, resp.Header.Get(httpHeaderContentType), t)
}

func loadFromHTTP(body io.Reader, mimeType string, t interface{}) (format SerializationFormat, err error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return 0, fmt.Errorf("dsd: failed to read http body: %w", err)
	}

	if mimeType == "" {
		return 0, ErrMissingContentType
	}
	format, ok := MimeTypeToFormat[extractMimeType(mimeType)]
	if !ok {
		return 0, ErrIncompatibleFormat
	}

	return format, LoadAsFormat(data, format, t)
}

// RequestHTTPResponseFormat sets the Accept header to the given format.
func RequestHTTPResponseFormat(r *http.Request, format SerializationFormat) (mimeType string, err error) {
	mimeType, ok := FormatToMimeType[format]
	if !ok {
		return "", ErrIncompatibleFormat
	}
	r.Header.Set("Accept", mimeType)

	return mimeType, nil
}

// DumpToHTTPRequest serializes t into the request body.
func DumpToHTTPRequest(r *http.Request, t interface{}, format SerializationFormat) error {
	mimeType, err := RequestHTTPResponseFormat(r, format)
	if err != nil {
		return err
	}

	data, err := DumpWithoutIdentifier(t, format)
	if err != nil {
		return fmt.Errorf("dsd: failed to serialize: %w", err)
	}

	r.Header.Set(httpHeaderContentType, mimeType)
	r.Body = io.NopCloser(bytes.NewReader(data))
	r.ContentLength = int64(len(data))

	return nil
}

// DumpToHTTPResponse serializes t into the response, using the first
// supported format of the Accept header or the fallback format.
func DumpToHTTPResponse(w http.ResponseWriter, r *http.Request, t interface{}, fallbackFormat SerializationFormat) error {
	format := FormatFromAccept(r.Header.Get("Accept"))
	if format == AUTO {
		format = fallbackFormat
	}
	format, ok := format.ValidateSerializationFormat()
	if !ok {
		return ErrIncompatibleFormat
	}
	mimeType, ok := FormatToMimeType[format]
	if !ok {
		return ErrIncompatibleFormat
	}

	data, err := DumpWithoutIdentifier(t, format)
	if err != nil {
		return fmt.Errorf("dsd: failed to serialize: %w", err)
	}

	w.Header().Set(httpHeaderContentType, mimeType)
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("dsd: failed to write response: %w", err)
	}
	return nil
}

// FormatFromAccept returns the first supported format listed in the Accept
// header, or AUTO.
func FormatFromAccept(accept string) SerializationFormat {
	for _, mimeType := range strings.Split(accept, ",") {
		format, ok := MimeTypeToFormat[extractMimeType(mimeType)]
		if ok {
			return format
		}
	}
	return AUTO
}

// Mime type mappings.
var (
	FormatToMimeType = map[SerializationFormat]string{
		CBOR:    "application/cbor",
		JSON:    "application/json",
		MsgPack: "application/msgpack",
		YAML:    "application/yaml",
	}
	MimeTypeToFormat = map[string]SerializationFormat{
		"cbor":    CBOR,
		"json":    JSON,
		"msgpack": MsgPack,
		"yaml":    YAML,
		"yml":     YAML,
	}
)

func extractMimeType(mimeType string) string {
	if strings.Contains(mimeType, ",") {
		mimeType, _, _ = strings.Cut(mimeType, ",")
	}
	if strings.Contains(mimeType, ";") {
		mimeType, _, _ = strings.Cut(mimeType, ";")
	}
	if strings.Contains(mimeType, "/") {
		_, mimeType, _ = strings.Cut(mimeType, "/")
	}
	mimeType = strings.TrimPrefix(strings.TrimSpace(mimeType), "x-")
	return strings.ToLower(mimeType)
}

// Package fetch retrieves raw payloads from the remote databases.
//
// Everything that talks to the network goes through a Fetcher, so that the
// database clients and the dump splitter never depend on a particular
// transport or directory layout.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio"
	"github.com/hashicorp/go-multierror"

	"github.com/safing/biodb/log"
	"github.com/safing/biodb/metrics"
)

// Common errors.
var (
	ErrUnexpectedStatusCode = errors.New("received unexpected status")
	ErrNotFound             = errors.New("resource not found")
	ErrIncomplete           = errors.New("incomplete download")
	ErrNoMirrors            = errors.New("no mirrors configured")
)

// Fetcher retrieves remote resources.
type Fetcher interface {
	// Fetch returns the full body of the resource at rawURL.
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
	// FetchFile downloads the resource at rawURL to dstPath. The file at
	// dstPath is replaced atomically, it never holds a partial download.
	FetchFile(ctx context.Context, rawURL, dstPath string) error
	// Post sends body to rawURL and returns the response body.
	Post(ctx context.Context, rawURL, contentType string, body []byte) ([]byte, error)
}

// Error is returned for every failed fetch.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %q: %d %s: %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Err)
	}
	return fmt.Sprintf("failed to fetch %q: %s", e.URL, e.Err)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPFetcher fetches resources via HTTP(S).
type HTTPFetcher struct {
	Name      string
	UserAgent string
	Client    *http.Client

	// MaxTries is the amount of attempts per resource. Client errors (4xx)
	// are never retried.
	MaxTries int
	// Backoff is the base unit of the quadratic backoff between tries.
	Backoff time.Duration
	// TmpDir holds partial downloads. Defaults to the directory of the
	// destination file.
	TmpDir string
}

// NewHTTPFetcher returns a HTTPFetcher with sane defaults.
func NewHTTPFetcher(name, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		Name:      name,
		UserAgent: userAgent,
		Client: &http.Client{
			Timeout: 30 * time.Minute,
		},
		MaxTries: 3,
		Backoff:  time.Second,
	}
}

func (f *HTTPFetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

func (f *HTTPFetcher) name() string {
	if f.Name == "" {
		return "fetch"
	}
	return f.Name
}

// Fetch returns the full body of the resource at rawURL.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return f.retry(ctx, func(tries int) ([]byte, error) {
		return f.fetchData(ctx, http.MethodGet, rawURL, "", nil, tries)
	})
}

// Post sends body to rawURL and returns the response body.
func (f *HTTPFetcher) Post(ctx context.Context, rawURL, contentType string, body []byte) ([]byte, error) {
	return f.retry(ctx, func(tries int) ([]byte, error) {
		return f.fetchData(ctx, http.MethodPost, rawURL, contentType, body, tries)
	})
}

// PostForm sends the url encoded values to rawURL and returns the response body.
func (f *HTTPFetcher) PostForm(ctx context.Context, rawURL string, values url.Values) ([]byte, error) {
	return f.Post(ctx, rawURL, "application/x-www-form-urlencoded", []byte(values.Encode()))
}

// FetchFile downloads the resource at rawURL to dstPath.
func (f *HTTPFetcher) FetchFile(ctx context.Context, rawURL, dstPath string) error {
	_, err := f.retry(ctx, func(tries int) ([]byte, error) {
		return nil, f.fetchFile(ctx, rawURL, dstPath, tries)
	})
	return err
}

// FetchFileFromMirrors downloads path from the first of the mirror base URLs
// that serves it. Every mirror gets the full amount of tries.
func (f *HTTPFetcher) FetchFileFromMirrors(ctx context.Context, mirrors []string, path, dstPath string) error {
	if len(mirrors) == 0 {
		return &Error{URL: path, Err: ErrNoMirrors}
	}

	var errs *multierror.Error
	for _, mirror := range mirrors {
		rawURL, err := JoinURL(mirror, path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		err = f.FetchFile(ctx, rawURL, dstPath)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		log.Warningf("%s: mirror %s failed: %s", f.name(), mirror, err)
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}

func (f *HTTPFetcher) retry(ctx context.Context, fn func(tries int) ([]byte, error)) (data []byte, err error) {
	maxTries := f.MaxTries
	if maxTries < 1 {
		maxTries = 1
	}

	for tries := 0; tries < maxTries; tries++ {
		// backoff when retrying
		if tries > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(tries*tries) * f.Backoff):
			}
		}

		data, err = fn(tries)
		if err == nil {
			return data, nil
		}
		metrics.FetchFailures.Inc()

		var fetchErr *Error
		if errors.As(err, &fetchErr) && fetchErr.StatusCode >= 400 && fetchErr.StatusCode < 500 {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
		log.Warningf("%s: try %d/%d failed: %s", f.name(), tries+1, maxTries, err)
	}

	return nil, err
}

func (f *HTTPFetcher) fetchData(ctx context.Context, method, rawURL, contentType string, body []byte, tries int) ([]byte, error) {
	resp, err := f.makeRequest(ctx, method, rawURL, contentType, body, tries)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	// download
	var buf *bytes.Buffer
	if resp.ContentLength > 0 {
		buf = bytes.NewBuffer(make([]byte, 0, resp.ContentLength))
	} else {
		buf = new(bytes.Buffer)
	}
	n, err := io.Copy(buf, resp.Body)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	if resp.ContentLength >= 0 && resp.ContentLength != n {
		return nil, &Error{
			URL: rawURL,
			Err: fmt.Errorf("received %d out of %d bytes: %w", n, resp.ContentLength, ErrIncomplete),
		}
	}
	metrics.FetchBytes.Add(int(n))

	log.Debugf("%s: fetched %s (%d bytes)", f.name(), rawURL, n)
	return buf.Bytes(), nil
}

func (f *HTTPFetcher) fetchFile(ctx context.Context, rawURL, dstPath string, tries int) error {
	// check destination dir
	dirPath := filepath.Dir(dstPath)
	err := os.MkdirAll(dirPath, 0o755)
	if err != nil {
		return fmt.Errorf("could not create destination folder %s: %w", dirPath, err)
	}
	tmpDir := f.TmpDir
	if tmpDir == "" {
		tmpDir = dirPath
	}

	// open file for writing
	atomicFile, err := renameio.TempFile(tmpDir, dstPath)
	if err != nil {
		return fmt.Errorf("could not create temp file for download: %w", err)
	}
	defer atomicFile.Cleanup() //nolint:errcheck // ignore error, the temp file is removed in any case

	// start file download
	resp, err := f.makeRequest(ctx, http.MethodGet, rawURL, "", nil, tries)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	// download and write file
	n, err := io.Copy(atomicFile, resp.Body)
	if err != nil {
		return &Error{URL: rawURL, Err: err}
	}
	if resp.ContentLength >= 0 && resp.ContentLength != n {
		return &Error{
			URL: rawURL,
			Err: fmt.Errorf("received %d out of %d bytes: %w", n, resp.ContentLength, ErrIncomplete),
		}
	}
	metrics.FetchBytes.Add(int(n))

	// finalize file
	err = atomicFile.CloseAtomicallyReplace()
	if err != nil {
		return fmt.Errorf("%s: failed to finalize file %s: %w", f.name(), dstPath, err)
	}

	log.Infof("%s: fetched %s (stored to %s)", f.name(), rawURL, dstPath)
	return nil
}

func (f *HTTPFetcher) makeRequest(ctx context.Context, method, rawURL, contentType string, body []byte, tries int) (*http.Response, error) {
	metrics.FetchRequests.Inc()

	var bodyReader io.Reader = http.NoBody
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	// create request
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// set user agent
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	// start request
	log.Tracef("%s: %s %s (try %d)", f.name(), method, rawURL, tries+1)
	resp, err := f.client().Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	// check return code
	switch {
	case resp.StatusCode == http.StatusOK:
		return resp, nil
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, &Error{URL: rawURL, StatusCode: resp.StatusCode, Err: ErrNotFound}
	default:
		_ = resp.Body.Close()
		return nil, &Error{URL: rawURL, StatusCode: resp.StatusCode, Err: ErrUnexpectedStatusCode}
	}
}

// JoinURL appends the given path elements to base, keeping query parameters
// of base intact.
func JoinURL(base string, elems ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL %q: %w", base, err)
	}
	joined := strings.TrimSuffix(u.Path, "/")
	for _, elem := range elems {
		joined += "/" + strings.Trim(elem, "/")
	}
	u.Path = joined
	return u.String(), nil
}

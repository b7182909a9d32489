// Package pdb is a thin client for the Protein Data Bank.
package pdb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/safing/biodb/fetch"
	"github.com/safing/biodb/log"
)

// Default endpoints.
const (
	DefaultDownloadURL = "https://files.rcsb.org/download"
	DefaultSearchURL   = "https://www.rcsb.org/pdb/rest/search"
)

// ErrInvalidID is returned for malformed PDB identifiers.
var ErrInvalidID = errors.New("invalid pdb id")

var idPattern = regexp.MustCompile(`^[0-9][A-Za-z0-9]{3}$`)

// Client queries the PDB.
type Client struct {
	Fetcher     fetch.Fetcher
	DownloadURL string
	SearchURL   string
}

// NewClient returns a client using the default endpoints.
func NewClient(fetcher fetch.Fetcher) *Client {
	return &Client{
		Fetcher:     fetcher,
		DownloadURL: DefaultDownloadURL,
		SearchURL:   DefaultSearchURL,
	}
}

// ValidID reports whether id is a well-formed PDB identifier.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// GetEntry returns the entry in PDB format.
func (c *Client) GetEntry(ctx context.Context, id string) (string, error) {
	if !ValidID(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	entryURL, err := fetch.JoinURL(c.DownloadURL, strings.ToUpper(id)+".pdb")
	if err != nil {
		return "", err
	}
	data, err := c.Fetcher.Fetch(ctx, entryURL)
	if err != nil {
		return "", fmt.Errorf("failed to get pdb entry %s: %w", id, err)
	}
	return string(data), nil
}

// Query returns the ids of all entries matching q.
func (c *Client) Query(ctx context.Context, q *Query) ([]string, error) {
	ctx, tracer := log.AddTracer(ctx)
	defer tracer.Submit(log.DebugLevel, "pdb: query done")

	if q == nil {
		q = NewQuery()
	}
	body := q.XML()
	tracer.Tracef("pdb: sending composite query: %s", body)

	data, err := c.Fetcher.Post(ctx, c.SearchURL, "application/x-www-form-urlencoded", []byte(body))
	if err != nil {
		return nil, fmt.Errorf("failed to query pdb: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	// the response ends with a newline
	ids := strings.Split(string(data), "\n")
	ids = ids[:len(ids)-1]
	tracer.Tracef("pdb: query matched %d entries", len(ids))
	return ids, nil
}

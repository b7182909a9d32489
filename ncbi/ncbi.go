// Package ncbi is a thin client for the NCBI Entrez utilities and the NCBI
// file server.
package ncbi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/safing/biodb/fetch"
	"github.com/safing/biodb/log"
)

// Defaults.
const (
	DefaultEUtilsURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"
	DefaultFTPHost   = "ftp.ncbi.nlm.nih.gov"
	DefaultCDDURL    = "https://ftp.ncbi.nih.gov/pub/mmdb/cdd/cdd.tar.gz"

	// summaryPostThreshold is the amount of ids from which ESummary sends
	// the ids in a POST body instead of the query string.
	summaryPostThreshold = 200
)

// Errors.
var (
	ErrNoIDs           = errors.New("no ids given")
	ErrInvalidResponse = errors.New("invalid response")
	ErrNoCacheDir      = errors.New("no cache dir configured")
)

// Poster is a fetcher that can also send forms.
type Poster interface {
	fetch.Fetcher
	PostForm(ctx context.Context, rawURL string, values url.Values) ([]byte, error)
}

// Client queries the NCBI.
type Client struct {
	Fetcher   Poster
	Lister    fetch.Lister
	EUtilsURL string
	FTPHost   string
	CDDURL    string
	// CacheDir holds downloaded databases.
	CacheDir string
}

// NewClient returns a client using the default endpoints.
func NewClient(fetcher Poster, cacheDir string) *Client {
	return &Client{
		Fetcher:   fetcher,
		Lister:    &fetch.FTPLister{},
		EUtilsURL: DefaultEUtilsURL,
		FTPHost:   DefaultFTPHost,
		CDDURL:    DefaultCDDURL,
		CacheDir:  cacheDir,
	}
}

func (c *Client) utilURL(util string, params url.Values) (string, error) {
	u, err := fetch.JoinURL(c.EUtilsURL, util+".fcgi")
	if err != nil {
		return "", err
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u, nil
}

// EFetch returns the records of the given ids. If maxBytes is greater than
// zero, only the first maxBytes bytes of the response are returned, which is
// enough to read record headers.
func (c *Client) EFetch(ctx context.Context, db string, ids []string, rettype string, maxBytes int) (string, error) {
	if len(ids) == 0 {
		return "", ErrNoIDs
	}

	params := url.Values{}
	params.Set("db", db)
	params.Set("id", strings.Join(ids, ","))
	if rettype != "" {
		params.Set("rettype", rettype)
	}
	u, err := c.utilURL("efetch", params)
	if err != nil {
		return "", err
	}

	data, err := c.Fetcher.Fetch(ctx, u)
	if err != nil {
		return "", fmt.Errorf("efetch failed: %w", err)
	}
	if maxBytes > 0 && len(data) > maxBytes {
		data = data[:maxBytes]
	}
	return string(data), nil
}

// ESearch returns the raw search result for term.
func (c *Client) ESearch(ctx context.Context, db, term string, retstart, retmax int) (string, error) {
	data, err := c.esearch(ctx, db, term, retstart, retmax, "")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ESearchIDs returns the ids matching term.
func (c *Client) ESearchIDs(ctx context.Context, db, term string, retstart, retmax int) ([]string, error) {
	data, err := c.esearch(ctx, db, term, retstart, retmax, "json")
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("esearch: %w: not json", ErrInvalidResponse)
	}

	if errMsg := gjson.GetBytes(data, "esearchresult.ERROR"); errMsg.Exists() {
		return nil, fmt.Errorf("esearch: %s", errMsg.String())
	}
	result := gjson.GetBytes(data, "esearchresult.idlist")
	if !result.IsArray() {
		return nil, fmt.Errorf("esearch: %w: missing id list", ErrInvalidResponse)
	}

	ids := make([]string, 0, len(result.Array()))
	for _, id := range result.Array() {
		ids = append(ids, id.String())
	}
	log.Tracef("ncbi: esearch for %q in %s returned %d ids", term, db, len(ids))
	return ids, nil
}

func (c *Client) esearch(ctx context.Context, db, term string, retstart, retmax int, retmode string) ([]byte, error) {
	params := url.Values{}
	params.Set("db", db)
	params.Set("term", term)
	params.Set("retstart", strconv.Itoa(retstart))
	params.Set("retmax", strconv.Itoa(retmax))
	if retmode != "" {
		params.Set("retmode", retmode)
	}
	u, err := c.utilURL("esearch", params)
	if err != nil {
		return nil, err
	}

	data, err := c.Fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("esearch failed: %w", err)
	}
	return data, nil
}

// ESummary returns the document summaries of the given ids. Large id lists
// are sent as a form.
func (c *Client) ESummary(ctx context.Context, db string, ids []string, retstart, retmax int) (string, error) {
	if len(ids) == 0 {
		return "", ErrNoIDs
	}

	var (
		data []byte
		err  error
	)
	if len(ids) < summaryPostThreshold {
		params := url.Values{}
		params.Set("db", db)
		params.Set("id", strings.Join(ids, ","))
		params.Set("retstart", strconv.Itoa(retstart))
		params.Set("retmax", strconv.Itoa(retmax))

		var u string
		u, err = c.utilURL("esummary", params)
		if err != nil {
			return "", err
		}
		data, err = c.Fetcher.Fetch(ctx, u)
	} else {
		form := url.Values{}
		form.Set("db", db)
		form.Set("id", strings.Join(ids, ","))

		var u string
		u, err = c.utilURL("esummary", nil)
		if err != nil {
			return "", err
		}
		data, err = c.Fetcher.PostForm(ctx, u, form)
	}
	if err != nil {
		return "", fmt.Errorf("esummary failed: %w", err)
	}
	return string(data), nil
}

// ELink returns the links of id from dbfrom to db.
func (c *Client) ELink(ctx context.Context, db, dbfrom, id string) (string, error) {
	params := url.Values{}
	params.Set("db", db)
	params.Set("dbfrom", dbfrom)
	params.Set("id", id)
	u, err := c.utilURL("elink", params)
	if err != nil {
		return "", err
	}

	data, err := c.Fetcher.Fetch(ctx, u)
	if err != nil {
		return "", fmt.Errorf("elink failed: %w", err)
	}
	return string(data), nil
}

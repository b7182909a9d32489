// Package rfam is a client for the Rfam database of RNA families.
//
// Entries are either requested from the Rfam website or read from a local
// store, which is filled by splitting the bulk dumps of the Rfam file
// server (see Generate).
package rfam

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/bluele/gcache"
	"github.com/hashicorp/go-version"

	"github.com/safing/biodb/fetch"
	"github.com/safing/biodb/splitter"
	"github.com/safing/biodb/storage"
)

// Defaults.
const (
	DefaultWebsiteURL = "https://rfam.org"
	DefaultMirror     = "https://ftp.ebi.ac.uk/pub/databases/Rfam"
	CurrentVersion    = "CURRENT"

	entryCacheSize = 256
)

// Errors.
var (
	ErrFamilyNotFound   = errors.New("rfam family not found")
	ErrRecordNotFound   = errors.New("rfam record not found in store")
	ErrNoFamilies       = errors.New("no rfam families found in dump")
	ErrInvalidAccession = errors.New("invalid rfam accession")
	ErrInvalidVersion   = errors.New("invalid rfam version")
	ErrUnknownKind      = errors.New("unknown rfam record kind")
	ErrNoStore          = errors.New("no store configured")
)

var accessionPattern = regexp.MustCompile(`^RF[0-9]{5}$`)

// Kind is a kind of per-family record.
type Kind string

// Record kinds.
const (
	Seed Kind = "seed"
	Full Kind = "full"
	CM   Kind = "cm"
)

// Kinds lists all record kinds.
var Kinds = []Kind{Seed, Full, CM}

type kindInfo struct {
	dir  string
	ext  string
	dump string
	mode splitter.Mode
}

var kinds = map[Kind]kindInfo{
	Seed: {dir: "seed", ext: ".sto", dump: "Rfam.seed", mode: splitter.Alignment},
	Full: {dir: "full", ext: ".sto", dump: "Rfam.full", mode: splitter.Alignment},
	CM:   {dir: "CMs", ext: ".cm", dump: "Rfam.cm", mode: splitter.CovarianceModel},
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(name))
	if kind == "cms" {
		kind = CM
	}
	if _, ok := kinds[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return kind, nil
}

// IsAlignment reports whether records of the kind are Stockholm alignments.
func (k Kind) IsAlignment() bool {
	return k == Seed || k == Full
}

// Fetcher downloads from the Rfam servers.
type Fetcher interface {
	fetch.Fetcher
	FetchFileFromMirrors(ctx context.Context, mirrors []string, path, dstPath string) error
}

// Client accesses Rfam.
type Client struct {
	// UseWebsite selects the website for entries instead of the store.
	// The website always serves the current release.
	UseWebsite bool
	WebsiteURL string
	// Mirrors are base URLs of the Rfam file server.
	Mirrors []string
	Version string

	Fetcher Fetcher
	Store   storage.Interface
	// CacheDir holds the downloaded dumps and database files.
	CacheDir string

	entries     gcache.Cache
	entriesOnce sync.Once
}

// NewClient returns a client for the current release.
func NewClient(fetcher Fetcher, store storage.Interface, cacheDir string) *Client {
	return &Client{
		WebsiteURL: DefaultWebsiteURL,
		Mirrors:    []string{DefaultMirror},
		Version:    CurrentVersion,
		Fetcher:    fetcher,
		Store:      store,
		CacheDir:   cacheDir,
	}
}

// ValidateVersion checks that v is either CURRENT or a release number.
func ValidateVersion(v string) error {
	if v == CurrentVersion {
		return nil
	}
	if _, err := version.NewVersion(v); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	return nil
}

// ValidAccession reports whether acc is a well-formed Rfam accession.
func ValidAccession(acc string) bool {
	return accessionPattern.MatchString(acc)
}

func (c *Client) version() (string, error) {
	v := c.Version
	if v == "" {
		v = CurrentVersion
	}
	return v, ValidateVersion(v)
}

func (c *Client) entryCache() gcache.Cache {
	c.entriesOnce.Do(func() {
		c.entries = gcache.New(entryCacheSize).LRU().Build()
	})
	return c.entries
}

func (c *Client) records(kind Kind) (*storage.Prefixed, error) {
	info, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if c.Store == nil {
		return nil, ErrNoStore
	}
	return &storage.Prefixed{
		DB:        c.Store,
		Prefix:    info.dir + "/",
		Extension: info.ext,
	}, nil
}

// Accessions returns the accessions of all stored records of the kind.
func (c *Client) Accessions(kind Kind) ([]string, error) {
	records, err := c.records(kind)
	if err != nil {
		return nil, err
	}
	return records.IDs()
}

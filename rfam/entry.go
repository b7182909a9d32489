package rfam

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/safing/biodb/fetch"
	"github.com/safing/biodb/log"
	"github.com/safing/biodb/metrics"
	"github.com/safing/biodb/stockholm"
	"github.com/safing/biodb/storage"
)

// GetEntry returns the Stockholm alignment of a family. The website is asked
// if UseWebsite is set, the store otherwise. nseLabels is only honored by the
// website.
func (c *Client) GetEntry(ctx context.Context, acc string, kind Kind, nseLabels bool) ([]byte, error) {
	if !ValidAccession(acc) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccession, acc)
	}
	if !kind.IsAlignment() {
		return nil, fmt.Errorf("%w: %q is not an alignment", ErrUnknownKind, kind)
	}

	if c.UseWebsite {
		return c.websiteEntry(ctx, acc, kind, nseLabels)
	}
	return c.storedRecord(acc, kind)
}

// Record returns the raw stored record of a family. Alignments are checked
// for completeness.
func (c *Client) Record(acc string, kind Kind) ([]byte, error) {
	if !ValidAccession(acc) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccession, acc)
	}
	return c.storedRecord(acc, kind)
}

func (c *Client) storedRecord(acc string, kind Kind) ([]byte, error) {
	records, err := c.records(kind)
	if err != nil {
		return nil, err
	}

	content, err := records.Get(acc)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, records.Location(acc))
	case err != nil:
		return nil, err
	}

	if kind.IsAlignment() {
		if err := stockholm.Check(acc, records.Location(acc), content); err != nil {
			return nil, err
		}
	}
	return content, nil
}

// location returns where the entry of acc is read from.
func (c *Client) location(acc string, kind Kind) string {
	if c.UseWebsite {
		if u, err := c.websiteEntryURL(acc); err == nil {
			return u
		}
		return acc
	}
	if records, err := c.records(kind); err == nil {
		return records.Location(acc)
	}
	return acc
}

func (c *Client) websiteEntryURL(acc string) (string, error) {
	base := c.WebsiteURL
	if base == "" {
		base = DefaultWebsiteURL
	}
	return fetch.JoinURL(base, "family", acc, "alignment")
}

func (c *Client) websiteEntry(ctx context.Context, acc string, kind Kind, nseLabels bool) ([]byte, error) {
	labels := "0"
	if nseLabels {
		labels = "1"
	}
	query := url.Values{}
	query.Set("acc", acc)
	query.Set("alnType", string(kind))
	query.Set("nseLabels", labels)
	query.Set("format", "stockholm")
	query.Set("download", "1")

	entryURL, err := c.websiteEntryURL(acc)
	if err != nil {
		return nil, err
	}

	content, err := c.Fetcher.Fetch(ctx, entryURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(content, []byte(stockholm.Header)) {
		return nil, fmt.Errorf("%w: %s", ErrFamilyNotFound, acc)
	}
	return content, nil
}

// Entry returns the parsed alignment of a family. Parsed entries are cached
// until the next generation run.
func (c *Client) Entry(ctx context.Context, acc string, kind Kind, nseLabels bool) (*stockholm.Alignment, error) {
	cacheKey := fmt.Sprintf("%s/%s/%t/%t", kind, acc, nseLabels, c.UseWebsite)
	cache := c.entryCache()
	if cached, err := cache.Get(cacheKey); err == nil {
		metrics.CacheHits("rfam").Inc()
		return cached.(*stockholm.Alignment), nil //nolint:forcetypeassert
	}
	metrics.CacheMisses("rfam").Inc()

	content, err := c.GetEntry(ctx, acc, kind, nseLabels)
	if err != nil {
		return nil, err
	}
	alignment, err := stockholm.ParseRecord(acc, c.location(acc, kind), content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s alignment of %s: %w", kind, acc, err)
	}
	if alignment.Accession == "" {
		alignment.Accession = acc
	}

	if err := cache.Set(cacheKey, alignment); err != nil {
		log.Debugf("rfam: failed to cache entry %s: %s", cacheKey, err)
	}
	return alignment, nil
}

// EntryFasta returns the aligned sequences of a family in FASTA format.
func (c *Client) EntryFasta(ctx context.Context, acc string, kind Kind, nseLabels bool) ([]byte, error) {
	alignment, err := c.Entry(ctx, acc, kind, nseLabels)
	if err != nil {
		return nil, err
	}
	return alignment.Fasta(true), nil
}

// ConsensusSequence returns the reference annotation of the family's seed
// alignment as an ungapped sequence. It returns nil if the alignment has no
// reference annotation.
func (c *Client) ConsensusSequence(ctx context.Context, acc string) (*stockholm.Sequence, error) {
	content, err := c.GetEntry(ctx, acc, Seed, false)
	if err != nil {
		return nil, err
	}
	residues, ok := stockholm.ConsensusSequence(content)
	if !ok {
		return nil, nil //nolint:nilnil
	}
	return &stockholm.Sequence{
		Name:     "consensus sequence for " + acc,
		Residues: residues,
	}, nil
}

func (c *Client) purgeEntries() {
	c.entryCache().Purge()
}

package rfam

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/safing/biodb/fetch"
	"github.com/safing/biodb/log"
	"github.com/safing/biodb/splitter"
)

// Generate downloads the bulk dump of the given kind for the configured
// release, unless it is already present in the cache directory, and splits it
// into one stored record per family. Previously stored records of the kind
// are removed first.
func (c *Client) Generate(ctx context.Context, kind Kind) (*splitter.Result, error) {
	info, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	records, err := c.records(kind)
	if err != nil {
		return nil, err
	}

	dump, err := c.dump(ctx, info)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(dump)
	if err != nil {
		return nil, err
	}
	defer file.Close() //nolint:errcheck

	removed, err := records.Clear()
	if err != nil {
		return nil, fmt.Errorf("failed to clear %s records: %w", kind, err)
	}
	if removed > 0 {
		log.Debugf("rfam: removed %d previous %s records", removed, kind)
	}
	c.purgeEntries()

	log.Infof("rfam: splitting %s into %s records", dump, kind)
	result, err := splitter.SplitReader(ctx, file, info.mode, records)
	if err != nil {
		return nil, fmt.Errorf("failed to split %s: %w", dump, err)
	}

	if result.Empty() {
		return result, fmt.Errorf("%w: %s", ErrNoFamilies, dump)
	}
	log.Infof("rfam: stored %d %s records", result.Records(), kind)
	return result, nil
}

// dump returns the path of the unpacked dump of the configured release,
// downloading it first if needed.
func (c *Client) dump(ctx context.Context, info kindInfo) (string, error) {
	version, err := c.version()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(c.CacheDir, version, info.dir)
	dump := filepath.Join(dir, info.dump)
	if _, err := os.Stat(dump); err == nil {
		return dump, nil
	}

	// Start over, partial downloads are not resumed.
	if err := os.RemoveAll(dir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec
		return "", err
	}

	archive := dump + ".gz"
	log.Infof("rfam: downloading %s of release %s", info.dump, version)
	err = c.Fetcher.FetchFileFromMirrors(ctx, c.Mirrors, path.Join(version, info.dump+".gz"), archive)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", info.dump, err)
	}
	if err := fetch.UnpackGZIPFile(archive, dump); err != nil {
		return "", err
	}
	if err := os.Remove(archive); err != nil {
		log.Warningf("rfam: failed to remove %s: %s", archive, err)
	}
	return dump, nil
}

// GenerateAll generates the seed, full and covariance model records
// concurrently. All failures are reported.
func (c *Client) GenerateAll(ctx context.Context) (map[Kind]*splitter.Result, error) {
	var (
		lock    sync.Mutex
		results = make(map[Kind]*splitter.Result, len(Kinds))
		errs    *multierror.Error
		group   errgroup.Group
	)

	for _, kind := range Kinds {
		kind := kind
		group.Go(func() error {
			result, err := c.Generate(ctx, kind)

			lock.Lock()
			defer lock.Unlock()
			if result != nil {
				results[kind] = result
			}
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", kind, err))
			}
			return nil
		})
	}
	_ = group.Wait()

	return results, errs.ErrorOrNil()
}

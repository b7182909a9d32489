package ncbi

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/safing/biodb/fetch"
	"github.com/safing/biodb/log"
)

const fungiReportsDir = "genomes/ASSEMBLY_REPORTS/Eukaryotes/fungi/"

// CDDDir returns the directory holding the unpacked conserved domain
// database.
func (c *Client) CDDDir() string {
	return filepath.Join(c.CacheDir, "CDD")
}

// CDD downloads the conserved domain database and unpacks it into CDDDir.
// Previous data is removed first.
func (c *Client) CDD(ctx context.Context) error {
	if c.CacheDir == "" {
		return ErrNoCacheDir
	}

	dir := c.CDDDir()
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	archive := filepath.Join(dir, path.Base(c.CDDURL))
	if err := c.Fetcher.FetchFile(ctx, c.CDDURL, archive); err != nil {
		return fmt.Errorf("failed to download cdd: %w", err)
	}
	if err := fetch.UntarGZ(archive, dir); err != nil {
		return fmt.Errorf("failed to unpack cdd: %w", err)
	}
	if err := os.Remove(archive); err != nil {
		log.Warningf("ncbi: failed to remove cdd archive: %s", err)
	}

	log.Infof("ncbi: unpacked cdd to %s", dir)
	return nil
}

// AssembledFungiSpecies returns the names of all fungi species with an
// assembly report, sorted by directory name.
func (c *Client) AssembledFungiSpecies(ctx context.Context) ([]string, error) {
	entries, err := c.Lister.List(ctx, c.FTPHost, fungiReportsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list fungi assembly reports: %w", err)
	}
	sort.Strings(entries)

	species := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := path.Base(strings.TrimSuffix(entry, "/"))
		species = append(species, strings.ReplaceAll(name, "_", " "))
	}
	return species, nil
}

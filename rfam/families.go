package rfam

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/safing/biodb/fetch"
	"github.com/safing/biodb/formats/dsd"
	"github.com/safing/biodb/log"
	"github.com/safing/biodb/storage"
	"github.com/safing/biodb/table"
)

const (
	databaseFilesDir = "database_files"
	metaPrefix       = "meta/"
)

// FamilyColumns are the columns of the table returned by FamiliesDetails.
var FamilyColumns = []string{"id", "accession", "family", "description", "seed", "full"}

// GenomeColumns are the columns of the table returned by GenomicEntries.
var GenomeColumns = []string{"accession", "name", "lineage"}

// StructureRegion is a region of a 3D structure assigned to a family.
type StructureRegion struct {
	PDBID     string `json:"pdb_id" yaml:"pdb_id"`
	Chain     string `json:"chain" yaml:"chain"`
	Start3D   string `json:"start_3d" yaml:"start_3d"`
	End3D     string `json:"end_3d" yaml:"end_3d"`
	NCBIID    string `json:"ncbi_id" yaml:"ncbi_id"`
	NCBIStart string `json:"ncbi_start" yaml:"ncbi_start"`
	NCBIEnd   string `json:"ncbi_end" yaml:"ncbi_end"`
}

// databaseFile downloads a table of the Rfam database dump and returns its
// rows. Downloads are kept in the cache directory per release.
func (c *Client) databaseFile(ctx context.Context, name string) ([][]string, error) {
	version, err := c.version()
	if err != nil {
		return nil, err
	}

	fileName := name + ".txt.gz"
	dst := filepath.Join(c.CacheDir, databaseFilesDir, version, fileName)
	if _, err := os.Stat(dst); err != nil {
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil { //nolint:gosec
			return nil, err
		}
		log.Infof("rfam: downloading database table %s of release %s", name, version)
		err := c.Fetcher.FetchFileFromMirrors(ctx, c.Mirrors, path.Join(version, databaseFilesDir, fileName), dst)
		if err != nil {
			return nil, fmt.Errorf("failed to download database table %s: %w", name, err)
		}
	}

	file, err := os.Open(dst)
	if err != nil {
		return nil, err
	}
	defer file.Close() //nolint:errcheck

	reader, err := fetch.Unpack(file, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack database table %s: %w", name, err)
	}
	defer reader.Close() //nolint:errcheck

	return table.ReadDelimited(reader, "\t")
}

// FamiliesDetails returns the id, accession, family classification,
// description and the sequence counts of the seed and full alignments of
// all families.
func (c *Client) FamiliesDetails(ctx context.Context) (*table.Table, error) {
	rows, err := c.databaseFile(ctx, "family")
	if err != nil {
		return nil, err
	}

	families := table.New(FamilyColumns...)
	for _, tokens := range rows {
		if len(tokens) < 19 {
			log.Debugf("rfam: skipping short family row with %d fields", len(tokens))
			continue
		}
		classification := strings.TrimSuffix(tokens[18], ";")
		classification = strings.TrimSpace(strings.ReplaceAll(classification, ";", ","))
		if err := families.Append(
			tokens[3],
			tokens[2],
			classification,
			tokens[4],
			tokens[16],
			tokens[17],
		); err != nil {
			return nil, err
		}
	}
	return families, nil
}

// CachedFamiliesDetails returns the families table from the store, falling
// back to FamiliesDetails and storing the result.
func (c *Client) CachedFamiliesDetails(ctx context.Context) (*table.Table, error) {
	if c.Store == nil {
		return c.FamiliesDetails(ctx)
	}
	version, err := c.version()
	if err != nil {
		return nil, err
	}
	familiesMetaKey := metaPrefix + version + "/families.dsd"

	data, err := c.Store.Get(familiesMetaKey)
	switch {
	case err == nil:
		families := &table.Table{}
		_, loadErr := dsd.DecompressAndLoad(data, families)
		if loadErr == nil {
			return families, nil
		}
		log.Warningf("rfam: discarding unreadable families cache %s: %s", c.Store.Location(familiesMetaKey), loadErr)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	families, err := c.FamiliesDetails(ctx)
	if err != nil {
		return nil, err
	}
	data, err = dsd.DumpAndCompress(families, dsd.CBOR, dsd.GZIP)
	if err != nil {
		return nil, err
	}
	if err := c.Store.Put(familiesMetaKey, data); err != nil {
		log.Warningf("rfam: failed to cache families table: %s", err)
	}
	return families, nil
}

// FamiliesWithStructures returns the 3D structure regions assigned to each
// family, keyed by family accession.
func (c *Client) FamiliesWithStructures(ctx context.Context) (map[string][]StructureRegion, error) {
	familyRows, err := c.databaseFile(ctx, "family")
	if err != nil {
		return nil, err
	}
	regionRows, err := c.databaseFile(ctx, "pdb_rfam_reg")
	if err != nil {
		return nil, err
	}
	return joinStructures(familyRows, regionRows), nil
}

func joinStructures(familyRows, regionRows [][]string) map[string][]StructureRegion {
	// Regions reference families by their internal id.
	accessions := make(map[string]string, len(familyRows))
	for _, tokens := range familyRows {
		if len(tokens) < 3 {
			continue
		}
		accessions[tokens[0]] = tokens[2]
	}

	structures := make(map[string][]StructureRegion)
	for _, tokens := range regionRows {
		if len(tokens) < 9 {
			continue
		}
		accession, ok := accessions[tokens[1]]
		if !ok {
			log.Debugf("rfam: structure region %s references unknown family %s", tokens[0], tokens[1])
			continue
		}
		structures[accession] = append(structures[accession], StructureRegion{
			PDBID:     tokens[2],
			Chain:     tokens[3],
			Start3D:   tokens[4],
			End3D:     tokens[5],
			NCBIID:    tokens[6],
			NCBIStart: tokens[7],
			NCBIEnd:   tokens[8],
		})
	}
	return structures
}

// StructuredFamilies returns the sorted accessions of all families with 3D
// structures.
func StructuredFamilies(structures map[string][]StructureRegion) []string {
	accessions := make([]string, 0, len(structures))
	for accession := range structures {
		accessions = append(accessions, accession)
	}
	sort.Strings(accessions)
	return accessions
}

// GenomicEntries returns the accession, name and lineage of all genomes.
func (c *Client) GenomicEntries(ctx context.Context) (*table.Table, error) {
	rows, err := c.databaseFile(ctx, "genome_entry")
	if err != nil {
		return nil, err
	}

	genomes := table.New(GenomeColumns...)
	for _, tokens := range rows {
		if len(tokens) < 6 {
			continue
		}
		if err := genomes.Append(tokens[1], tokens[3], tokens[5]); err != nil {
			return nil, err
		}
	}
	return genomes, nil
}

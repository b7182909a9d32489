package rfam

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safing/biodb/fetch"
	"github.com/safing/biodb/stockholm"
	"github.com/safing/biodb/storage"
	"github.com/safing/biodb/storage/hashmap"
)

const seedDump = `# STOCKHOLM 1.0

#=GF AC   RF00001
#=GF ID   5S_rRNA
#=GS seqA/1-10 DE Escherichia coli

seqA/1-10    ACGU-ACGUA
seqB/1-10    ACGUUACGU-
#=GC SS_cons <<<....>>>
#=GC RF      ACGU.aCGUA
//
# STOCKHOLM 1.0

#=GF AC   RF00005
#=GF ID   tRNA

seqC/1-5    ACGUA
//
`

const cmDump = `INFERNAL1/a [1.1.4 | Dec 2020]
NAME     5S_rRNA
ACC      RF00001
CLEN     10
//
INFERNAL1/a [1.1.4 | Dec 2020]
NAME     tRNA
ACC      RF00005
CLEN     5
//
`

func gzipped(t *testing.T, content string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func row(fields ...string) string {
	return strings.Join(fields, "\t")
}

func familyRow(autoID, acc, id, description, seed, full, classification string) string {
	fields := make([]string, 19)
	fields[0] = autoID
	fields[2] = acc
	fields[3] = id
	fields[4] = description
	fields[16] = seed
	fields[17] = full
	fields[18] = classification
	return row(fields...)
}

type testServer struct {
	*httptest.Server

	lock  sync.Mutex
	files map[string][]byte
	hits  map[string]int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		files: make(map[string][]byte),
		hits:  make(map[string]int),
	}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.lock.Lock()
		defer ts.lock.Unlock()

		ts.hits[r.URL.Path]++
		data, ok := ts.files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) serve(path string, data []byte) {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.files[path] = data
}

func (ts *testServer) hitCount(path string) int {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	return ts.hits[path]
}

func newTestClient(t *testing.T, ts *testServer) (*Client, storage.Interface) {
	t.Helper()

	store, err := hashmap.NewHashMap("rfam", "")
	require.NoError(t, err)

	fetcher := fetch.NewHTTPFetcher("rfam-test", "biodb-test")
	fetcher.Backoff = time.Millisecond

	c := NewClient(fetcher, store, t.TempDir())
	c.WebsiteURL = ts.URL
	c.Mirrors = []string{ts.URL}
	return c, store
}

func TestGenerateSeed(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.serve("/CURRENT/Rfam.seed.gz", gzipped(t, seedDump))
	c, _ := newTestClient(t, ts)
	ctx := context.Background()

	result, err := c.Generate(ctx, Seed)
	require.NoError(t, err)
	assert.Equal(t, []string{"RF00001", "RF00005"}, result.Accessions)

	accessions, err := c.Accessions(Seed)
	require.NoError(t, err)
	assert.Equal(t, []string{"RF00001", "RF00005"}, accessions)

	content, err := c.GetEntry(ctx, "RF00005", Seed, false)
	require.NoError(t, err)
	assert.Equal(t, "# STOCKHOLM 1.0\n#=GF AC   RF00005\n#=GF ID   tRNA\n\nseqC/1-5    ACGUA\n//\n", string(content))

	// the unpacked dump is reused
	_, err = c.Generate(ctx, Seed)
	require.NoError(t, err)
	assert.Equal(t, 1, ts.hitCount("/CURRENT/Rfam.seed.gz"))
}

func TestGenerateNewRelease(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.serve("/14.9/Rfam.seed.gz", gzipped(t, seedDump))
	ts.serve("/14.10/Rfam.seed.gz", gzipped(t, "# STOCKHOLM 1.0\n#=GF AC   RF09999\n\nseqX/1-4    ACGU\n//\n"))
	c, store := newTestClient(t, ts)
	ctx := context.Background()

	c.Version = "14.9"
	_, err := c.Generate(ctx, Seed)
	require.NoError(t, err)
	_, err = c.Entry(ctx, "RF00001", Seed, false)
	require.NoError(t, err)

	c.Version = "14.10"
	result, err := c.Generate(ctx, Seed)
	require.NoError(t, err)
	assert.Equal(t, []string{"RF09999"}, result.Accessions)
	assert.Equal(t, 1, ts.hitCount("/14.10/Rfam.seed.gz"))

	accessions, err := c.Accessions(Seed)
	require.NoError(t, err)
	assert.Equal(t, []string{"RF09999"}, accessions)
	ok, err := store.Exists("seed/RF00001.sto")
	require.NoError(t, err)
	assert.False(t, ok, "records of the previous release must be gone")
	_, err = c.Entry(ctx, "RF00001", Seed, false)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	// switching back reuses the cached dump of that release
	c.Version = "14.9"
	result, err = c.Generate(ctx, Seed)
	require.NoError(t, err)
	assert.Equal(t, []string{"RF00001", "RF00005"}, result.Accessions)
	assert.Equal(t, 1, ts.hitCount("/14.9/Rfam.seed.gz"))
}

func TestEntry(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.serve("/CURRENT/Rfam.seed.gz", gzipped(t, seedDump))
	c, _ := newTestClient(t, ts)
	ctx := context.Background()

	_, err := c.Generate(ctx, Seed)
	require.NoError(t, err)

	alignment, err := c.Entry(ctx, "RF00001", Seed, false)
	require.NoError(t, err)
	assert.Equal(t, "RF00001", alignment.Accession)
	require.Len(t, alignment.Sequences, 2)
	assert.Equal(t, "<<<....>>>", alignment.ConsensusStructure())
	assert.Equal(t, map[string]string{"seqA/1-10": "Escherichia coli"}, alignment.Organisms())

	cached, err := c.Entry(ctx, "RF00001", Seed, false)
	require.NoError(t, err)
	assert.Same(t, alignment, cached)

	fasta, err := c.EntryFasta(ctx, "RF00001", Seed, false)
	require.NoError(t, err)
	assert.Equal(t, ">seqA/1-10\nACGU-ACGUA\n>seqB/1-10\nACGUUACGU-\n", string(fasta))

	consensus, err := c.ConsensusSequence(ctx, "RF00001")
	require.NoError(t, err)
	require.NotNil(t, consensus)
	assert.Equal(t, "consensus sequence for RF00001", consensus.Name)
	assert.Equal(t, "ACGUACGUA", consensus.Residues)

	consensus, err = c.ConsensusSequence(ctx, "RF00005")
	require.NoError(t, err)
	assert.Nil(t, consensus)
}

func TestGetEntryErrors(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	c, store := newTestClient(t, ts)
	ctx := context.Background()

	_, err := c.GetEntry(ctx, "RF00042", Seed, false)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = c.GetEntry(ctx, "../etc/passwd", Seed, false)
	assert.ErrorIs(t, err, ErrInvalidAccession)

	_, err = c.GetEntry(ctx, "RF00042", CM, false)
	assert.ErrorIs(t, err, ErrUnknownKind)

	require.NoError(t, store.Put("full/RF00009.sto", []byte("# STOCKHOLM 1.0\n#=GF AC RF00009\nseqA ACGU\n")))
	_, err = c.GetEntry(ctx, "RF00009", Full, false)
	require.ErrorIs(t, err, stockholm.ErrCorruptRecord)

	var corrupt *stockholm.CorruptRecordError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, "RF00009", corrupt.Accession)
	assert.Equal(t, store.Location("full/RF00009.sto"), corrupt.Path)
}

func TestWebsiteEntry(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/family/RF00003/alignment" {
			_, _ = w.Write([]byte("# STOCKHOLM 1.0\nseqA/1-4 ACGU\n"))
			return
		}
		if r.URL.Path != "/family/RF00001/alignment" {
			_, _ = w.Write([]byte("<html>family not found</html>"))
			return
		}
		query := r.URL.Query()
		assert.Equal(t, "RF00001", query.Get("acc"))
		assert.Equal(t, "full", query.Get("alnType"))
		assert.Equal(t, "1", query.Get("nseLabels"))
		assert.Equal(t, "stockholm", query.Get("format"))
		assert.Equal(t, "1", query.Get("download"))
		_, _ = w.Write([]byte("# STOCKHOLM 1.0\n#=GF AC RF00001\nseqA/1-4 ACGU\n//\n"))
	}))
	defer srv.Close()

	c := NewClient(fetch.NewHTTPFetcher("rfam-test", "biodb-test"), nil, t.TempDir())
	c.UseWebsite = true
	c.WebsiteURL = srv.URL
	ctx := context.Background()

	content, err := c.GetEntry(ctx, "RF00001", Full, true)
	require.NoError(t, err)
	assert.True(t, stockholm.Complete(content))

	_, err = c.GetEntry(ctx, "RF00002", Full, true)
	assert.ErrorIs(t, err, ErrFamilyNotFound)

	_, err = c.Entry(ctx, "RF00003", Full, false)
	var corrupt *stockholm.CorruptRecordError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, "RF00003", corrupt.Accession)
	assert.Equal(t, srv.URL+"/family/RF00003/alignment", corrupt.Path)
}

func TestGenerateCM(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.serve("/CURRENT/Rfam.cm.gz", gzipped(t, cmDump))
	c, store := newTestClient(t, ts)

	result, err := c.Generate(context.Background(), CM)
	require.NoError(t, err)
	assert.Equal(t, []string{"RF00001", "RF00005"}, result.Accessions)

	content, err := store.Get("CMs/RF00005.cm")
	require.NoError(t, err)
	assert.Equal(t, "INFERNAL1/a [1.1.4 | Dec 2020]\nNAME     tRNA\nACC      RF00005\nCLEN     5\n//\n", string(content))

	record, err := c.Record("RF00001", CM)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(record), "INFERNAL1/a"))
}

func TestGenerateEmptyDump(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.serve("/14.10/Rfam.full.gz", gzipped(t, "# STOCKHOLM 1.0\n"))
	c, _ := newTestClient(t, ts)
	c.Version = "14.10"

	result, err := c.Generate(context.Background(), Full)
	require.ErrorIs(t, err, ErrNoFamilies)
	assert.True(t, result.Empty())
}

func TestGenerateAll(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.serve("/CURRENT/Rfam.seed.gz", gzipped(t, seedDump))
	ts.serve("/CURRENT/Rfam.cm.gz", gzipped(t, cmDump))
	c, _ := newTestClient(t, ts)

	results, err := c.GenerateAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrNotFound)
	assert.Contains(t, err.Error(), "full")

	require.Contains(t, results, Seed)
	require.Contains(t, results, CM)
	assert.NotContains(t, results, Full)
	assert.Equal(t, 2, results[Seed].Records())
	assert.Equal(t, 2, results[CM].Records())
}

func TestMirrorFallback(t *testing.T) {
	t.Parallel()

	broken := newTestServer(t)
	ts := newTestServer(t)
	ts.serve("/CURRENT/Rfam.seed.gz", gzipped(t, seedDump))
	c, _ := newTestClient(t, ts)
	c.Mirrors = []string{broken.URL, ts.URL}

	result, err := c.Generate(context.Background(), Seed)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Records())
	assert.Equal(t, 1, broken.hitCount("/CURRENT/Rfam.seed.gz"))
}

func TestFamilies(t *testing.T) {
	t.Parallel()

	families := strings.Join([]string{
		familyRow("1", "RF00001", "5S_rRNA", "5S ribosomal RNA", "712", "139932", "Gene; rRNA;"),
		familyRow("5", "RF00005", "tRNA", "tRNA", "954", "1429129", "Gene; tRNA;"),
		"broken\trow",
	}, "\n") + "\n"
	regions := strings.Join([]string{
		row("1", "1", "1c2x", "C", "1", "120", "J01695.2", "1", "120"),
		row("2", "5", "1ehz", "A", "1", "76", "K01761.1", "1", "76"),
		row("3", "5", "1evv", "A", "1", "76", "K01761.1", "1", "76"),
		row("4", "99", "9xyz", "A", "1", "10", "X1", "1", "10"),
	}, "\n") + "\n"
	genomes := row("1", "GCA_000001405.28", "x", "Homo sapiens", "y", "Eukaryota; Metazoa;") + "\n"

	ts := newTestServer(t)
	ts.serve("/CURRENT/database_files/family.txt.gz", gzipped(t, families))
	ts.serve("/CURRENT/database_files/pdb_rfam_reg.txt.gz", gzipped(t, regions))
	ts.serve("/CURRENT/database_files/genome_entry.txt.gz", gzipped(t, genomes))
	c, store := newTestClient(t, ts)
	ctx := context.Background()

	details, err := c.FamiliesDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, FamilyColumns, details.Columns)
	assert.Equal(t, [][]string{
		{"5S_rRNA", "RF00001", "Gene, rRNA", "5S ribosomal RNA", "712", "139932"},
		{"tRNA", "RF00005", "Gene, tRNA", "tRNA", "954", "1429129"},
	}, details.Rows)

	cached, err := c.CachedFamiliesDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, details, cached)
	exists, err := store.Exists("meta/CURRENT/families.dsd")
	require.NoError(t, err)
	assert.True(t, exists)
	cached, err = c.CachedFamiliesDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, details, cached)
	assert.Equal(t, 1, ts.hitCount("/CURRENT/database_files/family.txt.gz"))

	structures, err := c.FamiliesWithStructures(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"RF00001", "RF00005"}, StructuredFamilies(structures))
	require.Len(t, structures["RF00005"], 2)
	assert.Equal(t, StructureRegion{
		PDBID:     "1ehz",
		Chain:     "A",
		Start3D:   "1",
		End3D:     "76",
		NCBIID:    "K01761.1",
		NCBIStart: "1",
		NCBIEnd:   "76",
	}, structures["RF00005"][0])

	genomic, err := c.GenomicEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"GCA_000001405.28", "Homo sapiens", "Eukaryota; Metazoa;"}}, genomic.Rows)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]Kind{"seed": Seed, "FULL": Full, "cm": CM, "CMs": CM} {
		kind, err := ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, kind)
	}
	_, err := ParseKind("hmm")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestValidateVersion(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateVersion("CURRENT"))
	assert.NoError(t, ValidateVersion("14.10"))
	assert.ErrorIs(t, ValidateVersion("latest"), ErrInvalidVersion)
	assert.ErrorIs(t, ValidateVersion("../etc"), ErrInvalidVersion)
}

package splitter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var twoFamilies = []string{
	"# STOCKHOLM 1.0",
	"#=GF AC   RF00001",
	"seq1 ACGU",
	"//",
	"# STOCKHOLM 1.0",
	"#=GF AC   RF00002",
	"seq2 GCUA",
	"//",
}

const cmDump = `INFERNAL1/a [1.1.4 | Dec 2020]
NAME     5S_rRNA
ACC      RF00001
STATES   353
NODES    95
//
NAME     5_8S_rRNA
ACCESSION RF00002
STATES   473
//`

func TestSplitAlignment(t *testing.T) {
	t.Parallel()

	records, err := Records(twoFamilies, Alignment)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "RF00001", records[0].Accession)
	assert.Equal(t, "# STOCKHOLM 1.0\n#=GF AC   RF00001\nseq1 ACGU\n//\n", string(records[0].Content))
	assert.Equal(t, "RF00002", records[1].Accession)
	assert.Equal(t, "# STOCKHOLM 1.0\n#=GF AC   RF00002\nseq2 GCUA\n//\n", string(records[1].Content))
}

func TestSplitAlignmentRoundTripCount(t *testing.T) {
	t.Parallel()

	var lines []string
	accessions := []string{"RF00005", "RF00010", "RF00177", "RF01051", "RF02543"}
	for _, acc := range accessions {
		lines = append(lines,
			"# STOCKHOLM 1.0",
			"",
			"#=GF AC   "+acc,
			"#=GF ID   family_"+acc,
			"#=GF DE   some description",
			"",
			"AB001721.1/2-116   GCCUGGCGGC",
			"#=GC SS_cons       <<<<..>>>>",
			"//",
		)
	}

	c := &Collector{}
	result, err := Split(lines, Alignment, c)
	require.NoError(t, err)
	assert.Equal(t, len(accessions), result.Records())
	assert.Equal(t, accessions, result.Accessions)
	assert.False(t, result.Empty())

	for i, record := range c.Records {
		assert.Equal(t, accessions[i], record.Accession)
		content := strings.TrimSpace(string(record.Content))
		assert.True(t, strings.HasSuffix(content, "//"), "record %s must end with sentinel", record.Accession)
		assert.True(t, strings.HasPrefix(content, StockholmHeader+"\n#=GF AC"), "record %s must start with header and marker", record.Accession)
		assert.Equal(t, 1, strings.Count(content, StockholmHeader))
		assert.Contains(t, content, "#=GF ID   family_"+accessions[i])
		if i > 0 {
			assert.NotContains(t, content, accessions[i-1])
		}
	}
}

func TestAlignmentAccession(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "RF00001", alignmentAccession("#=GF AC   RF00001"))
	assert.Equal(t, "RF00001", alignmentAccession("#=GF AC\tRF00001  "))
	assert.Equal(t, "RF04321", alignmentAccession("#=GF AC RF04321"))
	assert.Equal(t, "AC", alignmentAccession("#=GF AC"))
}

func TestModelAccession(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "RF00001", modelAccession("ACC      RF00001"))
	assert.Equal(t, "RF00002", modelAccession("ACCESSION RF00002"))
	assert.Equal(t, "RF00003", modelAccession("ACCESSION\tRF00003 "))
}

func TestSplitAlignmentIgnoresLeadingLines(t *testing.T) {
	t.Parallel()

	lines := append([]string{
		"garbage before the first family",
		"#=GF ID   nothing",
	}, twoFamilies...)

	records, err := Records(lines, Alignment)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.NotContains(t, string(records[0].Content), "garbage")
}

func TestSplitModel(t *testing.T) {
	t.Parallel()

	records, err := Records(strings.Split(cmDump, "\n"), CovarianceModel)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "RF00001", records[0].Accession)
	assert.Equal(t, `INFERNAL1/a [1.1.4 | Dec 2020]
NAME     5S_rRNA
ACC      RF00001
STATES   353
NODES    95
//
`, string(records[0].Content))

	assert.Equal(t, "RF00002", records[1].Accession)
	assert.Equal(t, `INFERNAL1/a [1.1.4 | Dec 2020]
NAME     5_8S_rRNA
ACCESSION RF00002
STATES   473
//
`, string(records[1].Content))
}

// flushRecorder records the number of lines fed when each record was stored.
type flushRecorder struct {
	m       *machine
	flushes []int
}

func (f *flushRecorder) Store(string, []byte) error {
	f.flushes = append(f.flushes, f.m.result.Lines)
	return nil
}

func TestSplitModelFlushTiming(t *testing.T) {
	t.Parallel()

	lines := strings.Split(cmDump, "\n")
	rec := &flushRecorder{}
	m, err := newMachine(CovarianceModel, rec)
	require.NoError(t, err)
	rec.m = m

	for i, line := range lines {
		require.NoError(t, m.feed(line))
		if line == "//" && i < len(lines)-1 {
			// the terminator does not flush
			assert.Len(t, rec.flushes, 0)
			assert.Equal(t, stateAccumulating, m.state)
		}
	}
	// first record is flushed on the second NAME line (line 7)
	require.Len(t, rec.flushes, 1)
	assert.Equal(t, 7, rec.flushes[0])

	result, err := m.finish()
	require.NoError(t, err)
	assert.Equal(t, []string{"RF00001", "RF00002"}, result.Accessions)
	assert.Equal(t, stateIdle, m.state)
}

func TestSplitModelWithoutPreamble(t *testing.T) {
	t.Parallel()

	records, err := Records([]string{
		"ACC RF00050",
		"STATES 1",
		"//",
	}, CovarianceModel)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ACC RF00050\nSTATES 1\n//\n", string(records[0].Content))
}

func TestSplitIdempotent(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		mode  Mode
		lines []string
	}{
		{Alignment, twoFamilies},
		{CovarianceModel, strings.Split(cmDump, "\n")},
	} {
		first, err := Records(tc.lines, tc.mode)
		require.NoError(t, err)
		second, err := Records(tc.lines, tc.mode)
		require.NoError(t, err)
		assert.Equal(t, first, second, tc.mode.String())
	}
}

func TestSplitEmpty(t *testing.T) {
	t.Parallel()

	for _, mode := range []Mode{Alignment, CovarianceModel} {
		c := &Collector{}
		result, err := Split(nil, mode, c)
		require.NoError(t, err)
		assert.True(t, result.Empty())
		assert.Equal(t, 0, result.Records())
		assert.Empty(t, c.Records)

		result, err = Split([]string{"no markers", "at all", "//"}, mode, c)
		require.NoError(t, err)
		assert.True(t, result.Empty())
		assert.Empty(t, c.Records)
	}
}

func TestSplitUnknownMode(t *testing.T) {
	t.Parallel()

	_, err := Split(twoFamilies, Mode(42), &Collector{})
	assert.ErrorIs(t, err, ErrUnknownMode)
}

type failingSink struct {
	stored int
}

var errSinkFull = errors.New("sink full")

func (f *failingSink) Store(string, []byte) error {
	if f.stored == 1 {
		return errSinkFull
	}
	f.stored++
	return nil
}

func TestSplitSinkError(t *testing.T) {
	t.Parallel()

	sink := &failingSink{}
	result, err := Split(twoFamilies, Alignment, sink)
	require.ErrorIs(t, err, errSinkFull)
	assert.Contains(t, err.Error(), "RF00002")
	assert.Equal(t, []string{"RF00001"}, result.Accessions)
}

func TestSplitReader(t *testing.T) {
	t.Parallel()

	c := &Collector{}
	result, err := SplitReader(context.Background(), strings.NewReader(strings.Join(twoFamilies, "\n")+"\n"), Alignment, c)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Records())
	assert.Equal(t, 8, result.Lines)

	fromLines, err := Records(twoFamilies, Alignment)
	require.NoError(t, err)
	assert.Equal(t, fromLines, c.Records)
}

func TestSplitReaderCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SplitReader(ctx, strings.NewReader(strings.Join(twoFamilies, "\n")), Alignment, &Collector{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := ParseMode("seed")
	require.NoError(t, err)
	assert.Equal(t, Alignment, m)

	m, err = ParseMode("CM")
	require.NoError(t, err)
	assert.Equal(t, CovarianceModel, m)

	_, err = ParseMode("fasta")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

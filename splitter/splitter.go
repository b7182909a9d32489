package splitter

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/safing/biodb/log"
	"github.com/safing/biodb/metrics"
)

// Markers.
const (
	StockholmHeader = "# STOCKHOLM 1.0"
	AlignmentMarker = "#=GF AC"

	ModelHeaderMarker    = "INFERNAL"
	ModelNameMarker      = "NAME"
	ModelAccessionMarker = "ACC"
	// ModelAccessionLong is checked before ModelAccessionMarker.
	ModelAccessionLong = "ACCESSION"
)

const (
	maxLineSize = 64 << 20
	// ctxCheckInterval is the number of lines between cancellation checks.
	ctxCheckInterval = 4096
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// Sink persists split records. Store must persist content as one unit,
// replacing previous content stored for the accession.
type Sink interface {
	Store(accession string, content []byte) error
}

// Record is a single family extracted from a dump.
type Record struct {
	Accession string
	Content   []byte
}

// Collector is a Sink that keeps all records in memory.
type Collector struct {
	Records []Record
}

// Store appends the record.
func (c *Collector) Store(accession string, content []byte) error {
	c.Records = append(c.Records, Record{
		Accession: accession,
		Content:   content,
	})
	return nil
}

// Result summarizes a split run.
type Result struct {
	Mode Mode
	// Accessions holds the accession of every flushed record, in order.
	Accessions []string
	// Lines is the number of processed lines.
	Lines int
}

// Records returns the number of flushed records.
func (r *Result) Records() int {
	return len(r.Accessions)
}

// Empty reports whether no record was found. An empty dump is not an error,
// but callers expecting families should treat it as suspicious.
func (r *Result) Empty() bool {
	return len(r.Accessions) == 0
}

type state uint8

const (
	stateIdle state = iota
	stateAccumulating
)

type machine struct {
	mode   Mode
	sink   Sink
	result *Result

	state     state
	accession string
	buf       bytes.Buffer

	// covariance model fields
	preamble    string
	hasPreamble bool
	nameLine    string
	hasNameLine bool
}

func newMachine(mode Mode, sink Sink) (*machine, error) {
	switch mode {
	case Alignment, CovarianceModel:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, mode)
	}

	return &machine{
		mode: mode,
		sink: sink,
		result: &Result{
			Mode: mode,
		},
	}, nil
}

// Split splits the lines of a dump and stores every record in sink. Lines
// must not contain their line terminators.
func Split(lines []string, mode Mode, sink Sink) (*Result, error) {
	m, err := newMachine(mode, sink)
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		if err := m.feed(line); err != nil {
			return m.result, err
		}
	}

	return m.finish()
}

// SplitReader splits the dump read from r and stores every record in sink.
func SplitReader(ctx context.Context, r io.Reader, mode Mode, sink Sink) (*Result, error) {
	m, err := newMachine(mode, sink)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if m.result.Lines%ctxCheckInterval == 0 && ctx.Err() != nil {
			return m.result, ctx.Err()
		}
		if err := m.feed(scanner.Text()); err != nil {
			return m.result, err
		}
	}
	if err := scanner.Err(); err != nil {
		return m.result, fmt.Errorf("failed to read dump: %w", err)
	}

	return m.finish()
}

// Records splits the lines of a dump and returns all records.
func Records(lines []string, mode Mode) ([]Record, error) {
	c := &Collector{}
	_, err := Split(lines, mode, c)
	if err != nil {
		return nil, err
	}
	return c.Records, nil
}

func (m *machine) feed(line string) error {
	m.result.Lines++

	if m.mode == Alignment {
		return m.feedAlignment(line)
	}
	return m.feedModel(line)
}

func (m *machine) feedAlignment(line string) error {
	switch {
	case strings.HasPrefix(line, AlignmentMarker):
		if err := m.flush(); err != nil {
			return err
		}
		m.begin(alignmentAccession(line), StockholmHeader, line)

	case m.state == stateAccumulating && !strings.HasPrefix(line, StockholmHeader):
		m.appendLine(line)
	}
	// everything before the first marker is discarded

	return nil
}

func (m *machine) feedModel(line string) error {
	switch {
	case strings.HasPrefix(line, ModelHeaderMarker):
		m.preamble = line
		m.hasPreamble = true

	case strings.HasPrefix(line, ModelNameMarker):
		m.nameLine = line
		m.hasNameLine = true
		if err := m.flush(); err != nil {
			return err
		}

	case strings.HasPrefix(line, ModelAccessionMarker):
		if m.state == stateAccumulating {
			log.Debugf("splitter: accession line without NAME line replaces unflushed record %s", m.accession)
		}
		seed := make([]string, 0, 3)
		if m.hasPreamble {
			seed = append(seed, m.preamble)
		}
		if m.hasNameLine {
			seed = append(seed, m.nameLine)
		}
		m.begin(modelAccession(line), append(seed, line)...)

	case m.state == stateAccumulating:
		// includes the "//" terminator
		m.appendLine(line)
	}

	return nil
}

func (m *machine) begin(accession string, lines ...string) {
	m.state = stateAccumulating
	m.accession = accession
	m.buf.Reset()
	for _, line := range lines {
		m.appendLine(line)
	}
}

func (m *machine) appendLine(line string) {
	m.buf.WriteString(line)
	m.buf.WriteByte('\n')
}

// flush stores the accumulated record, if there is one, and returns to idle.
func (m *machine) flush() error {
	if m.state != stateAccumulating {
		return nil
	}
	defer func() {
		m.state = stateIdle
		m.accession = ""
		m.buf.Reset()
	}()

	if m.accession == "" {
		log.Warningf("splitter: dropping %s record without accession", m.mode)
		return nil
	}

	content := make([]byte, m.buf.Len())
	copy(content, m.buf.Bytes())
	err := m.sink.Store(m.accession, content)
	if err != nil {
		return fmt.Errorf("failed to store record %s: %w", m.accession, err)
	}

	m.result.Accessions = append(m.result.Accessions, m.accession)
	metrics.SplitRecords.Inc()
	log.Tracef("splitter: flushed %s record %s (%d bytes)", m.mode, m.accession, len(content))
	return nil
}

func (m *machine) finish() (*Result, error) {
	// end-of-dump flush, there is no trailing marker
	if err := m.flush(); err != nil {
		return m.result, err
	}

	metrics.SplitDumps.Inc()
	if m.result.Empty() {
		metrics.SplitEmptyDumps.Inc()
		log.Warningf("splitter: no %s records found in dump of %d lines", m.mode, m.result.Lines)
	} else {
		log.Debugf("splitter: split %d %s records from %d lines", m.result.Records(), m.mode, m.result.Lines)
	}
	return m.result, nil
}

// alignmentAccession returns the second-to-last token of the marker line
// split on whitespace runs. The line terminator produces an empty trailing
// token, so this is the last token of the line.
func alignmentAccession(line string) string {
	tokens := whitespaceRuns.Split(line+"\n", -1)
	if len(tokens) < 2 {
		return ""
	}
	return tokens[len(tokens)-2]
}

// modelAccession returns everything after the ACCESSION or ACC tag, trimmed.
func modelAccession(line string) string {
	if strings.HasPrefix(line, ModelAccessionLong) {
		return strings.TrimSpace(strings.TrimPrefix(line, ModelAccessionLong))
	}
	return strings.TrimSpace(strings.TrimPrefix(line, ModelAccessionMarker))
}

// Package stockholm reads single-family Stockholm alignments as written by
// the splitter and by the Rfam website.
package stockholm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/safing/biodb/metrics"
)

// Format markers.
const (
	Header     = "# STOCKHOLM"
	Terminator = "//"

	fileFeature   = "#=GF"
	seqFeature    = "#=GS"
	columnFeature = "#=GC"

	consensusStructure = "SS_cons"
	referenceLine      = "#=GC RF"

	maxLineSize = 16 << 20
)

// Sequence is one aligned sequence.
type Sequence struct {
	Name     string
	Residues string
}

// Alignment is a parsed Stockholm record.
type Alignment struct {
	Accession string
	Sequences []*Sequence
	// Features holds the #=GF lines by tag, in order of appearance.
	Features map[string][]string
	// SequenceFeatures holds the #=GS lines by sequence name and tag.
	SequenceFeatures map[string]map[string]string
	// Columns holds the #=GC lines by tag, concatenated across blocks.
	Columns map[string]string
}

// Complete reports whether the content, with trailing whitespace trimmed,
// ends with the terminator line.
func Complete(content []byte) bool {
	trimmed := bytes.TrimRightFunc(content, isSpace)
	lastLine := trimmed
	if i := bytes.LastIndexByte(trimmed, '\n'); i >= 0 {
		lastLine = trimmed[i+1:]
	}
	return string(bytes.TrimSpace(lastLine)) == Terminator
}

// Check returns a *CorruptRecordError if content is not complete.
func Check(accession, path string, content []byte) error {
	if Complete(content) {
		return nil
	}
	metrics.CorruptRecordReads.Inc()
	return &CorruptRecordError{
		Accession: accession,
		Path:      path,
	}
}

// Parse parses a single Stockholm alignment.
func Parse(content []byte) (*Alignment, error) {
	return Read(bytes.NewReader(content))
}

// ParseRecord parses the stored record of accession found at path. A
// truncated record yields a *CorruptRecordError naming both.
func ParseRecord(accession, path string, content []byte) (*Alignment, error) {
	a, err := Parse(content)
	var corrupt *CorruptRecordError
	if errors.As(err, &corrupt) {
		if corrupt.Accession == "" {
			corrupt.Accession = accession
		}
		corrupt.Path = path
	}
	return a, err
}

// Read reads a single Stockholm alignment from r. Interleaved blocks are
// joined per sequence. Unknown markup lines are skipped.
func Read(r io.Reader) (*Alignment, error) {
	a := &Alignment{
		Features:         make(map[string][]string),
		SequenceFeatures: make(map[string]map[string]string),
		Columns:          make(map[string]string),
	}
	seqs := make(map[string]*Sequence)

	var (
		sawHeader bool
		complete  bool
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case !sawHeader:
			if !strings.HasPrefix(line, Header) {
				return nil, ErrNotStockholm
			}
			sawHeader = true
		case line == Terminator:
			complete = true
		case complete:
			// ignore anything after the terminator
		case strings.HasPrefix(line, fileFeature):
			tag, value := splitTag(strings.TrimPrefix(line, fileFeature))
			a.Features[tag] = append(a.Features[tag], value)
			if tag == "AC" && a.Accession == "" {
				a.Accession = value
			}
		case strings.HasPrefix(line, seqFeature):
			name, rest := splitTag(strings.TrimPrefix(line, seqFeature))
			tag, value := splitTag(rest)
			features, ok := a.SequenceFeatures[name]
			if !ok {
				features = make(map[string]string)
				a.SequenceFeatures[name] = features
			}
			if prev, ok := features[tag]; ok {
				value = prev + " " + value
			}
			features[tag] = value
		case strings.HasPrefix(line, columnFeature):
			fields := strings.Fields(strings.TrimPrefix(line, columnFeature))
			if len(fields) >= 2 {
				a.Columns[fields[0]] += fields[len(fields)-1]
			}
		case line[0] == '#':
			// #=GR and comments
		default:
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			name := fields[0]
			s, ok := seqs[name]
			if !ok {
				s = &Sequence{Name: name}
				seqs[name] = s
				a.Sequences = append(a.Sequences, s)
			}
			s.Residues += fields[len(fields)-1]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alignment: %w", err)
	}
	if !sawHeader {
		return nil, ErrNotStockholm
	}
	if !complete {
		metrics.CorruptRecordReads.Inc()
		return nil, &CorruptRecordError{Accession: a.Accession}
	}

	return a, nil
}

// Sequence returns the sequence with the given name.
func (a *Alignment) Sequence(name string) (*Sequence, bool) {
	for _, s := range a.Sequences {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Organisms returns the organism description (#=GS <name> DE) of every
// sequence that has one.
func (a *Alignment) Organisms() map[string]string {
	organisms := make(map[string]string)
	for name, features := range a.SequenceFeatures {
		if de, ok := features["DE"]; ok {
			organisms[name] = de
		}
	}
	return organisms
}

// ConsensusStructure returns the SS_cons column annotation.
func (a *Alignment) ConsensusStructure() string {
	return a.Columns[consensusStructure]
}

// ConsensusSequence extracts the reference annotation (#=GC RF lines) of
// raw Stockholm content with gap characters removed and upper-cased. It
// returns false if there is no reference annotation.
func ConsensusSequence(content []byte) (string, bool) {
	var (
		found bool
		sb    strings.Builder
	)
	for _, line := range strings.Split(string(content), "\n") {
		if !strings.HasPrefix(line, referenceLine) {
			continue
		}
		found = true
		sb.WriteString(stripGaps(strings.TrimSpace(strings.TrimPrefix(line, referenceLine))))
	}
	if !found {
		return "", false
	}
	return strings.ToUpper(sb.String()), true
}

var gapRemover = strings.NewReplacer(".", "", "-", "", "~", "")

func stripGaps(s string) string {
	return gapRemover.Replace(s)
}

func splitTag(s string) (tag, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

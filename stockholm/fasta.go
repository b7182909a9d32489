package stockholm

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// WriteFasta writes all sequences in FASTA format. Gapped sequences keep
// their alignment columns, with "." gaps written as "-".
func (a *Alignment) WriteFasta(w io.Writer, gapped bool) error {
	for _, s := range a.Sequences {
		residues := s.Residues
		if gapped {
			residues = strings.ReplaceAll(residues, ".", "-")
		} else {
			residues = stripGaps(residues)
		}
		if _, err := fmt.Fprintf(w, ">%s\n%s\n", s.Name, residues); err != nil {
			return err
		}
	}
	return nil
}

// Fasta returns the sequences in FASTA format.
func (a *Alignment) Fasta(gapped bool) []byte {
	var buf bytes.Buffer
	_ = a.WriteFasta(&buf, gapped) // bytes.Buffer does not fail
	return buf.Bytes()
}

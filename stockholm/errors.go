package stockholm

import (
	"errors"
	"fmt"
)

// Errors.
var (
	ErrCorruptRecord = errors.New("corrupt record")
	ErrNotStockholm  = errors.New("missing stockholm header")
	ErrUnbalanced    = errors.New("unbalanced secondary structure")
)

// CorruptRecordError is returned when a persisted record does not end with
// the "//" terminator, which indicates a truncated dump or an interrupted
// write. The record should be fetched or split again.
type CorruptRecordError struct {
	Accession string
	Path      string
}

func (e *CorruptRecordError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("record %s is incomplete: missing %q terminator", e.Accession, Terminator)
	}
	return fmt.Sprintf("record %s at %s is incomplete: missing %q terminator", e.Accession, e.Path, Terminator)
}

// Is lets errors.Is match ErrCorruptRecord.
func (e *CorruptRecordError) Is(target error) bool {
	return target == ErrCorruptRecord
}

package splitter

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects the dump layout.
type Mode uint8

// Modes.
const (
	Alignment Mode = iota + 1
	CovarianceModel
)

// ErrUnknownMode is returned for invalid modes.
var ErrUnknownMode = errors.New("unknown split mode")

func (m Mode) String() string {
	switch m {
	case Alignment:
		return "alignment"
	case CovarianceModel:
		return "cm"
	default:
		return fmt.Sprintf("mode(%d)", m)
	}
}

// ParseMode returns the mode with the given name.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "alignment", "stockholm", "sto", "seed", "full":
		return Alignment, nil
	case "cm", "covariance-model", "covariance":
		return CovarianceModel, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

package stockholm

import (
	"fmt"
	"unicode"

	"golang.org/x/exp/slices"
)

// BasePair is a pair of paired alignment columns, 1-based, Left < Right.
type BasePair struct {
	Left  int
	Right int
}

var closing = map[rune]rune{
	'>': '<',
	')': '(',
	']': '[',
	'}': '{',
}

// BasePairs returns the base pairs of the consensus structure, sorted by
// the left position.
func (a *Alignment) BasePairs() ([]BasePair, error) {
	return ParseStructure(a.ConsensusStructure())
}

// ParseStructure parses a secondary structure in WUSS notation. Bracket
// pairs <>, (), [] and {} are nested, pseudoknots are written as an upper
// case letter paired with its lower case counterpart. All other characters
// are unpaired columns.
func ParseStructure(structure string) ([]BasePair, error) {
	stacks := make(map[rune][]int)
	var pairs []BasePair

	pos := 0
	for _, c := range structure {
		pos++
		opening, isClosing := closing[c]
		switch {
		case c == '<' || c == '(' || c == '[' || c == '{':
			stacks[c] = append(stacks[c], pos)
		case isClosing:
			left, err := pop(stacks, opening, pos)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, BasePair{Left: left, Right: pos})
		case c >= 'A' && c <= 'Z':
			stacks[c] = append(stacks[c], pos)
		case c >= 'a' && c <= 'z':
			left, err := pop(stacks, unicode.ToUpper(c), pos)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, BasePair{Left: left, Right: pos})
		}
	}
	for c, stack := range stacks {
		if len(stack) > 0 {
			return nil, fmt.Errorf("%w: %d unclosed %q", ErrUnbalanced, len(stack), c)
		}
	}

	slices.SortFunc(pairs, func(a, b BasePair) int {
		return a.Left - b.Left
	})
	return pairs, nil
}

func pop(stacks map[rune][]int, opening rune, pos int) (int, error) {
	stack := stacks[opening]
	if len(stack) == 0 {
		return 0, fmt.Errorf("%w: no opening %q for column %d", ErrUnbalanced, opening, pos)
	}
	left := stack[len(stack)-1]
	stacks[opening] = stack[:len(stack)-1]
	return left, nil
}

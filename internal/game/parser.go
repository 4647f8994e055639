// internal/game/parser.go
//
// Bracket parser for the puzzle engine.
// Responsibilities:
//   - Extract "active" clues: bracketed spans with no nested brackets,
//     the only spans a player may act on.
//   - Recurse into nested spans so an outer clue is never reported active
//     while any inner clue is unresolved.
//   - Reject structurally broken documents (unbalanced brackets) with an
//     explicit error instead of scanning past the damage.
//
// Offsets in returned clues are absolute positions in the input document
// and become stale the moment the document is spliced; callers re-extract
// after every mutation (cheap at puzzle scale, trivially correct).

package game

import "fmt"

// ErrUnbalanced reports a structurally broken puzzle document.
type ErrUnbalanced struct {
	Pos int // byte offset of the offending bracket, -1 for unexpected EOF
}

func (e *ErrUnbalanced) Error() string {
	if e.Pos < 0 {
		return "unbalanced brackets: document ended inside a bracketed span"
	}
	return fmt.Sprintf("unbalanced brackets: unmatched ']' at offset %d", e.Pos)
}

// ExtractActiveClues scans doc left to right and returns every innermost
// bracketed span in document order.
//
// Each top-level span is delimited by walking a depth counter from its '['
// until depth returns to zero. A span with no nested '[' is itself active;
// otherwise its inner content is recursed into (with the proper offset) and
// only the active descendants are reported; the outer span stays inactive
// until they resolve.
func ExtractActiveClues(doc string) ([]Clue, error) {
	return extract(doc, 0)
}

// extract does the real work; base is added to all reported offsets so
// recursion into inner content yields absolute document positions.
func extract(doc string, base int) ([]Clue, error) {
	var clues []Clue
	i := 0
	for i < len(doc) {
		switch doc[i] {
		case ']':
			return nil, &ErrUnbalanced{Pos: base + i}
		case '[':
			depth := 1
			nested := false
			j := i + 1
			for ; j < len(doc); j++ {
				if doc[j] == '[' {
					depth++
					nested = true
				} else if doc[j] == ']' {
					depth--
					if depth == 0 {
						break
					}
				}
			}
			if depth != 0 {
				return nil, &ErrUnbalanced{Pos: -1}
			}
			inner := doc[i+1 : j]
			if nested {
				sub, err := extract(inner, base+i+1)
				if err != nil {
					return nil, err
				}
				clues = append(clues, sub...)
			} else {
				clues = append(clues, Clue{
					Start:      base + i,
					End:        base + j + 1,
					RawText:    doc[i : j+1],
					Expression: inner,
				})
			}
			i = j + 1
		default:
			i++
		}
	}
	return clues, nil
}

// findActive returns the active clue whose expression matches exactly, or
// false when the expression names nothing currently actionable.
func findActive(clues []Clue, expression string) (Clue, bool) {
	for _, c := range clues {
		if c.Expression == expression {
			return c, true
		}
	}
	return Clue{}, false
}

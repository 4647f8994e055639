// internal/game/types.go
//
// Core type definitions for the bracket puzzle engine.
// Defines:
//   - Clue: one bracketed span extracted from the puzzle text.
//   - Key: the answer key mapping clue expressions to solutions.
//   - State: immutable snapshot of a puzzle mid-solve.
//   - Outcome: the discriminated result of a guess/hint/reveal action.

package game

// Clue is a bracketed span in the puzzle text.
//
// Start/End are byte offsets into the document the clue was extracted from
// and are invalidated by any text replacement; callers must re-extract
// clues after every mutation rather than holding on to old offsets.
type Clue struct {
	Start      int    // offset of the opening '[' in the source document
	End        int    // offset one past the closing ']'
	RawText    string // full span including the surrounding brackets
	Expression string // inner text with '[' and ']' stripped
}

// Key maps a clue expression (exact text between brackets) to its canonical
// solution text. Provided by the puzzle record; immutable for a run.
type Key map[string]string

// State is an immutable snapshot of a puzzle being solved.
//
// Actions never mutate a State in place: each returns a fresh State with
// copied sets, so earlier snapshots stay valid for audit or replay.
//
// Sets are keyed on exact expression text. Two clues with byte-identical
// inner text are therefore indistinguishable here; accepted, because span
// offsets do not survive text splices and cannot serve as keys.
type State struct {
	Display    string          // current puzzle text, solutions spliced in
	Solved     map[string]bool // expressions resolved by guess or reveal
	Hinted     map[string]bool // expressions whose first letter was peeked
	Revealed   map[string]bool // expressions resolved by reveal
	TotalClues int             // answer-key size, fixed at load time
}

// NewState builds the initial state for a puzzle document.
func NewState(doc string, totalClues int) State {
	return State{
		Display:    doc,
		Solved:     map[string]bool{},
		Hinted:     map[string]bool{},
		Revealed:   map[string]bool{},
		TotalClues: totalClues,
	}
}

// clone copies the state with fresh sets so updates never alias the parent.
func (s State) clone() State {
	n := s
	n.Solved = make(map[string]bool, len(s.Solved)+1)
	n.Hinted = make(map[string]bool, len(s.Hinted)+1)
	n.Revealed = make(map[string]bool, len(s.Revealed)+1)
	for e := range s.Solved {
		n.Solved[e] = true
	}
	for e := range s.Hinted {
		n.Hinted[e] = true
	}
	for e := range s.Revealed {
		n.Revealed[e] = true
	}
	return n
}

// Completion returns solved-expression count over total clue count in [0,1].
func (s State) Completion() float64 {
	if s.TotalClues == 0 {
		return 1
	}
	return float64(len(s.Solved)) / float64(s.TotalClues)
}

// Outcome is the structured result of one action. Player-level failures
// (wrong guess, stale target, missing key entry) come back as Success=false
// with a message; only a structurally broken document is a Go error.
type Outcome struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	DisplayState   string `json:"displayState"`
	CluesRemaining int    `json:"cluesRemaining"`
	Expression     string `json:"expression,omitempty"` // clue the action resolved
	Hint           string `json:"hint,omitempty"`       // first letter, hint only
	Solution       string `json:"solution,omitempty"`   // full answer, reveal only
}

// internal/runner/session.go
//
// A Session is one puzzle-solving run in progress: the engine state plus
// the bookkeeping the engine itself deliberately does not own (step budget,
// guess counters, guess log). Sessions are driven either by the HTTP layer
// (an external agent calling action endpoints) or by Runner (an in-process
// Solver); both funnel through the same accounting here.

package runner

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bracketlab/arena/internal/game"
	"github.com/bracketlab/arena/internal/puzzles"
)

// DefaultMaxSteps is the per-run action budget when none is configured.
const DefaultMaxSteps = 50

// ErrBudgetExhausted is returned by actions on a session whose step budget
// is spent. The run is then terminal with "incomplete" status, not failed.
var ErrBudgetExhausted = errors.New("step budget exhausted")

// GuessRecord is one entry in a run's ordered guess log.
type GuessRecord struct {
	Expression string    `json:"expression"`
	GuessText  string    `json:"guessText"`
	Success    bool      `json:"success"`
	Timestamp  time.Time `json:"timestamp"`
}

// Stats is the accumulated action accounting consumed by scoring.
type Stats struct {
	Guesses              int     `json:"guesses"`
	CorrectGuesses       int     `json:"correctGuesses"`
	TotalClues           int     `json:"totalClues"`
	Hints                int     `json:"hints"`
	Reveals              int     `json:"reveals"`
	StepsTaken           int     `json:"stepsTaken"`
	CompletionPercentage float64 `json:"completionPercentage"`
}

// Result is the run result record produced at completion.
type Result struct {
	RunID        string            `json:"runId"`
	PuzzleID     string            `json:"puzzleId"`
	PuzzleDate   string            `json:"puzzleDate,omitempty"`
	Success      bool              `json:"success"`
	Stats        Stats             `json:"stats"`
	Score        int               `json:"score"`
	Rank         string            `json:"rank"`
	ScoreDetails game.ScoreDetails `json:"scoreDetails"`
	GuessLog     []GuessRecord     `json:"guessLog"`
}

// Session is a single in-progress run. Safe for concurrent use; every
// action is an atomic all-or-nothing transition on the embedded state.
type Session struct {
	ID       string
	Puzzle   puzzles.Puzzle
	MaxSteps int
	Started  time.Time

	mu       sync.Mutex
	state    game.State
	guesses  int
	correct  int
	steps    int
	guessLog []GuessRecord
}

// NewSession starts a run for the given puzzle. maxSteps <= 0 selects the
// default budget.
func NewSession(p puzzles.Puzzle, maxSteps int) *Session {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Session{
		ID:       uuid.NewString(),
		Puzzle:   p,
		MaxSteps: maxSteps,
		Started:  time.Now().UTC(),
		state:    p.NewState(),
	}
}

// State returns the current immutable engine state snapshot.
func (s *Session) State() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveClues re-derives the currently actionable clues from the display.
func (s *Session) ActiveClues() ([]game.Clue, error) {
	return game.ExtractActiveClues(s.State().Display)
}

// Guess spends one step on a guess. Every attempt is logged and counted;
// only a resolving one bumps the correct counter.
func (s *Session) Guess(expression, guessText string) (game.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.steps >= s.MaxSteps {
		return game.Outcome{}, ErrBudgetExhausted
	}
	out, next, err := game.Guess(s.state, s.Puzzle.Key(), expression, guessText)
	if err != nil {
		return game.Outcome{}, err
	}
	s.steps++
	s.guesses++
	if out.Success {
		s.correct++
	}
	s.guessLog = append(s.guessLog, GuessRecord{
		Expression: expression,
		GuessText:  guessText,
		Success:    out.Success,
		Timestamp:  time.Now().UTC(),
	})
	s.state = next
	return out, nil
}

// Hint spends one step peeking at a clue's first letter.
func (s *Session) Hint(expression string) (game.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.steps >= s.MaxSteps {
		return game.Outcome{}, ErrBudgetExhausted
	}
	out, next, err := game.Hint(s.state, s.Puzzle.Key(), expression)
	if err != nil {
		return game.Outcome{}, err
	}
	s.steps++
	s.state = next
	return out, nil
}

// Reveal spends one step disclosing a clue's full solution.
func (s *Session) Reveal(expression string) (game.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.steps >= s.MaxSteps {
		return game.Outcome{}, ErrBudgetExhausted
	}
	out, next, err := game.Reveal(s.state, s.Puzzle.Key(), expression)
	if err != nil {
		return game.Outcome{}, err
	}
	s.steps++
	s.state = next
	return out, nil
}

// Exhausted reports whether the step budget is spent.
func (s *Session) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps >= s.MaxSteps
}

// Completed reports whether no active clues remain.
func (s *Session) Completed() (bool, error) {
	clues, err := s.ActiveClues()
	if err != nil {
		return false, err
	}
	return len(clues) == 0, nil
}

// Snapshot returns the current accumulated statistics.
func (s *Session) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

func (s *Session) statsLocked() Stats {
	return Stats{
		Guesses:              s.guesses,
		CorrectGuesses:       s.correct,
		TotalClues:           s.state.TotalClues,
		Hints:                len(s.state.Hinted),
		Reveals:              len(s.state.Revealed),
		StepsTaken:           s.steps,
		CompletionPercentage: s.state.Completion(),
	}
}

// Finish scores the run and produces its result record. completed applies
// the hard completion gate; callers derive it from Completed().
func (s *Session) Finish(completed bool) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.statsLocked()
	wrong := st.Guesses - st.CorrectGuesses
	details := game.Finalize(st.Hints, st.Reveals, wrong, completed)
	log := make([]GuessRecord, len(s.guessLog))
	copy(log, s.guessLog)
	return Result{
		RunID:        s.ID,
		PuzzleID:     s.Puzzle.ID,
		PuzzleDate:   s.Puzzle.PuzzleDate,
		Success:      completed,
		Stats:        st,
		Score:        details.FinalScore,
		Rank:         details.Rank,
		ScoreDetails: details,
		GuessLog:     log,
	}
}

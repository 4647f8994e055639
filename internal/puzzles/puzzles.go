// internal/puzzles/puzzles.go
//
// Puzzle catalog management for the arena.
//
// Responsibilities:
//   - Load puzzle records from an environment-provided JSON file or fall
//     back to the embedded default catalog.
//   - Validate each puzzle structurally at load time (balanced brackets,
//     non-empty answer key) so broken data fails the boot, not a run.
//   - Supply lookups by ID, by date, by catalog index, and Stats.
//
// Puzzle record shape (JSON array of):
//   { "id": "...", "puzzleDate": "YYYY-MM-DD",
//     "initialPuzzle": "... [clue] ...",
//     "solutions": { "clue expression": "solution text", ... } }
//
// The answer key must hold an entry for every expression that becomes
// active during correct play, including outer expressions in their
// post-substitution form (inner solutions spliced in).
//
// Environment variables:
//   PUZZLES_FILE=/path/to/puzzles.json
//
// Initialization is run once (sync.Once), mirroring how the catalog is
// used: read-mostly, fixed for the process lifetime.

package puzzles

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/bracketlab/arena/assets"
	"github.com/bracketlab/arena/internal/game"
)

// Puzzle is one puzzle input record.
type Puzzle struct {
	ID            string            `json:"id"`
	PuzzleDate    string            `json:"puzzleDate"` // YYYY-MM-DD
	InitialPuzzle string            `json:"initialPuzzle"`
	Solutions     map[string]string `json:"solutions"`
}

// Key adapts the record's solutions to the engine's answer-key type.
func (p Puzzle) Key() game.Key { return game.Key(p.Solutions) }

// NewState builds the initial engine state for this puzzle. The total clue
// count is fixed here as the answer-key size.
func (p Puzzle) NewState() game.State {
	return game.NewState(p.InitialPuzzle, len(p.Solutions))
}

var (
	initOnce   sync.Once
	catalog    []Puzzle
	byID       map[string]int
	byDate     map[string]int
	initialErr error
)

// Init loads the puzzle catalog exactly once: from PUZZLES_FILE when set,
// otherwise from the embedded defaults.
func Init() error {
	initOnce.Do(func() {
		var raw []byte
		if path := os.Getenv("PUZZLES_FILE"); path != "" {
			raw, initialErr = os.ReadFile(path)
			if initialErr != nil {
				return
			}
		} else if raw, initialErr = assets.PuzzlesJSON(); initialErr != nil {
			return
		}

		catalog, initialErr = Parse(raw)
		if initialErr != nil {
			return
		}

		byID = make(map[string]int, len(catalog))
		byDate = make(map[string]int, len(catalog))
		for i, p := range catalog {
			if _, dup := byID[p.ID]; dup {
				initialErr = fmt.Errorf("puzzles: duplicate id %q", p.ID)
				return
			}
			byID[p.ID] = i
			if p.PuzzleDate != "" {
				byDate[p.PuzzleDate] = i
			}
		}
	})
	return initialErr
}

// Parse decodes and validates a JSON puzzle catalog. Exported so the CLI
// can load arbitrary files without touching the process-wide singleton.
func Parse(raw []byte) ([]Puzzle, error) {
	var ps []Puzzle
	if err := json.Unmarshal(raw, &ps); err != nil {
		return nil, fmt.Errorf("puzzles: decode catalog: %w", err)
	}
	if len(ps) == 0 {
		return nil, fmt.Errorf("puzzles: catalog is empty")
	}
	for _, p := range ps {
		if err := Validate(p); err != nil {
			return nil, err
		}
	}
	return ps, nil
}

// LoadFile reads and validates a puzzle catalog from disk.
func LoadFile(path string) ([]Puzzle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("puzzles: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Validate checks one record's structural integrity: an ID, a document
// that parses, and a non-empty answer key.
func Validate(p Puzzle) error {
	if p.ID == "" {
		return fmt.Errorf("puzzles: record missing id")
	}
	if _, err := game.ExtractActiveClues(p.InitialPuzzle); err != nil {
		return fmt.Errorf("puzzles: %s: %w", p.ID, err)
	}
	if len(p.Solutions) == 0 {
		return fmt.Errorf("puzzles: %s: empty answer key", p.ID)
	}
	return nil
}

// All returns the loaded catalog in file order.
func All() []Puzzle {
	return catalog
}

// ByID looks a puzzle up by its identifier.
func ByID(id string) (Puzzle, error) {
	if i, ok := byID[id]; ok {
		return catalog[i], nil
	}
	return Puzzle{}, fmt.Errorf("puzzles: no puzzle with id %q", id)
}

// ByDate looks a puzzle up by its YYYY-MM-DD date.
func ByDate(date string) (Puzzle, error) {
	if i, ok := byDate[date]; ok {
		return catalog[i], nil
	}
	return Puzzle{}, fmt.Errorf("puzzles: no puzzle for date %q", date)
}

// AtIndex returns the puzzle at a catalog position, used by the daily mode's
// deterministic date-to-index selection.
func AtIndex(i int) (Puzzle, error) {
	if i < 0 || i >= len(catalog) {
		return Puzzle{}, fmt.Errorf("puzzles: index %d out of range", i)
	}
	return catalog[i], nil
}

// Stats returns the number of loaded puzzles.
func Stats() int { return len(catalog) }

package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateKey_UTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	at := time.Date(2025, 11, 3, 23, 30, 0, 0, loc)
	assert.Equal(t, "2025-11-04", DateKey(at))
}

func TestPuzzleIndex_Deterministic(t *testing.T) {
	day := time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC)
	a := PuzzleIndex(day, "salt", 100)
	b := PuzzleIndex(day.Add(7*time.Hour), "salt", 100) // same date key
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 0)
	assert.Less(t, a, 100)
}

func TestPuzzleIndex_SaltChangesSelection(t *testing.T) {
	day := time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC)
	seen := map[int]bool{}
	for _, salt := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		seen[PuzzleIndex(day, salt, 1000)] = true
	}
	// Eight salts landing on one index would mean the HMAC is ignored.
	assert.Greater(t, len(seen), 1)
}

func TestPuzzleIndex_EmptyCatalog(t *testing.T) {
	assert.Equal(t, 0, PuzzleIndex(time.Now(), "salt", 0))
}

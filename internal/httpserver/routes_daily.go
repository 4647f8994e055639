// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes five endpoints under /daily:
//   - POST /daily/new         → start today's daily run (creates or reuses session)
//   - POST /daily/guess       → submit a guess for today's daily run
//   - POST /daily/hint        → take a peek on a clue in today's run
//   - POST /daily/reveal      → take a mega-peek on a clue in today's run
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Each user can play once per day (enforced by DB + in-memory session).
// Sessions are held in memory for active play and persisted to DB when the
// run reaches a terminal state. Deterministic puzzle selection is based on
// date + salt.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bracketlab/arena/internal/daily"
	"github.com/bracketlab/arena/internal/game"
	"github.com/bracketlab/arena/internal/puzzles"
	"github.com/bracketlab/arena/internal/runner"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]*dailyRun // active sessions keyed by userID|date
	mu       sync.Mutex           // guards sessions
}

// dailyRun holds transient in-memory state for an in-progress daily run.
type dailyRun struct {
	Session     *runner.Session
	UserID      string
	Date        string
	PuzzleIndex int
	Finished    bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		sessions: make(map[string]*dailyRun),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleAction(runner.ActionGuess))
		r.Post("/hint", dd.handleAction(runner.ActionHint))
		r.Post("/reveal", dd.handleAction(runner.ActionReveal))
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// puzzleNow returns today's date key, the deterministic catalog index, and
// the selected puzzle.
func (d *dailyServer) puzzleNow() (date string, idx int, p puzzles.Puzzle, err error) {
	now := time.Now().UTC()
	date = daily.DateKey(now)
	n := puzzles.Stats()
	if n == 0 {
		return date, 0, puzzles.Puzzle{}, errors.New("empty puzzle catalog")
	}
	idx = daily.PuzzleIndex(now, d.salt, n)
	p, err = puzzles.AtIndex(idx)
	return date, idx, p, err
}

// userIDWithAnon returns the authenticated user ID if logged in,
// otherwise ensures an anonymous ID via Server.ensureAnonID.
func (d *dailyServer) userIDWithAnon(w http.ResponseWriter, r *http.Request) (string, bool) {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID, true
	}
	return d.srv.ensureAnonID(w, r), true
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	RunID        string   `json:"runId"`
	Date         string   `json:"date"`
	Played       bool     `json:"played"`
	DisplayState string   `json:"displayState,omitempty"`
	ActiveClues  []string `json:"activeClues,omitempty"`
	MaxSteps     int      `json:"maxSteps,omitempty"`
}

// handleNew creates or reuses a daily session for the current date.
// - If user already has a DB row for today → return Played=true.
// - Otherwise create/reuse an in-memory session and return RunID.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid, ok := d.userIDWithAnon(w, r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	date, idx, p, err := d.puzzleNow()
	if err != nil {
		http.Error(w, "no daily puzzle", http.StatusServiceUnavailable)
		return
	}

	// Check if already played (persisted in DB).
	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err == nil && played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
		return
	}

	// Reuse or create session in memory.
	key := uid + "|" + date
	d.mu.Lock()
	if run, ok := d.sessions[key]; ok && !run.Finished {
		d.mu.Unlock()
		clues, _ := run.Session.ActiveClues()
		_ = json.NewEncoder(w).Encode(dailyNewRes{
			RunID:        run.Session.ID,
			Date:         date,
			DisplayState: run.Session.State().Display,
			ActiveClues:  expressions(clues),
			MaxSteps:     run.Session.MaxSteps,
		})
		return
	}
	run := &dailyRun{
		Session:     runner.NewSession(p, 0),
		UserID:      uid,
		Date:        date,
		PuzzleIndex: idx,
	}
	d.sessions[key] = run
	d.mu.Unlock()

	clues, _ := run.Session.ActiveClues()
	_ = json.NewEncoder(w).Encode(dailyNewRes{
		RunID:        run.Session.ID,
		Date:         date,
		DisplayState: run.Session.State().Display,
		ActiveClues:  expressions(clues),
		MaxSteps:     run.Session.MaxSteps,
	})
}

// -----------------------------------------------------------------------------
// /daily/guess, /daily/hint, /daily/reveal

// dailyActionReq is the request payload for the daily action endpoints.
type dailyActionReq struct {
	RunID      string `json:"runId"`
	Expression string `json:"expression"`
	Guess      string `json:"guess"` // guess endpoint only
}

// dailyActionRes is the response payload for the daily action endpoints.
type dailyActionRes struct {
	game.Outcome
	State  string         `json:"state"` // in_progress | finished | locked
	Result *runner.Result `json:"result,omitempty"`
}

// handleAction applies one action to today's daily session.
// - Ensures valid RunID and an unfinished session for today.
// - Applies the action through the shared run engine.
// - Persists the result to DB once the run is terminal.
func (d *dailyServer) handleAction(kind runner.ActionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := d.userIDWithAnon(w, r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var p dailyActionReq
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if p.RunID == "" || p.Expression == "" {
			http.Error(w, "invalid", http.StatusBadRequest)
			return
		}

		date := daily.DateKey(time.Now().UTC())

		// Find session.
		key := uid + "|" + date
		d.mu.Lock()
		run, ok := d.sessions[key]
		d.mu.Unlock()
		if !ok || run.Session.ID != p.RunID {
			http.Error(w, "no session", http.StatusConflict)
			return
		}
		if run.Finished {
			_ = json.NewEncoder(w).Encode(dailyActionRes{State: "locked"})
			return
		}

		var out game.Outcome
		var err error
		switch kind {
		case runner.ActionGuess:
			out, err = run.Session.Guess(p.Expression, p.Guess)
		case runner.ActionHint:
			out, err = run.Session.Hint(p.Expression)
		case runner.ActionReveal:
			out, err = run.Session.Reveal(p.Expression)
		}
		if errors.Is(err, runner.ErrBudgetExhausted) {
			res := d.finish(r, run, uid, date, false)
			_ = json.NewEncoder(w).Encode(dailyActionRes{
				Outcome: game.Outcome{Message: err.Error(), DisplayState: run.Session.State().Display},
				State:   "finished",
				Result:  &res,
			})
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		res := dailyActionRes{Outcome: out, State: "in_progress"}
		if out.Success && out.CluesRemaining == 0 {
			final := d.finish(r, run, uid, date, true)
			res.State = "finished"
			res.Result = &final
		} else if run.Session.Exhausted() {
			final := d.finish(r, run, uid, date, false)
			res.State = "finished"
			res.Result = &final
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

// finish scores the terminal daily run and persists it. The once-per-day
// rule is enforced by the unique (user_id, date) constraint underneath.
func (d *dailyServer) finish(r *http.Request, run *dailyRun, uid, date string, completed bool) runner.Result {
	d.mu.Lock()
	run.Finished = true
	d.mu.Unlock()

	res := run.Session.Finish(completed)
	elapsed := int(time.Since(run.Session.Started).Milliseconds())
	_ = d.store.InsertResult(r.Context(), daily.Result{
		UserID:      uid,
		Date:        date,
		PuzzleIndex: run.PuzzleIndex,
		Score:       res.Score,
		Rank:        res.Rank,
		Steps:       res.Stats.StepsTaken,
		ElapsedMs:   elapsed,
	})
	return res
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now().UTC())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}

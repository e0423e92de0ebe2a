// Package game runs one gomoku match: whose turn it is, which player (human
// or engine) moves, the move log and the final result.
package game

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/luxquant/gomoku/internal/board"
	"github.com/luxquant/gomoku/internal/config"
	"github.com/luxquant/gomoku/internal/search"
)

// Session is safe for concurrent use. The board itself never leaves the
// session; other goroutines read Snapshot.
type Session struct {
	mu        sync.Mutex
	cfg       config.Config
	patterns  *board.PatternTable
	board     *board.Board
	history   MoveHistory
	players   [2]Player
	status    Status
	toMove    board.Role
	round     int
	turnStart time.Time
	message   string
	logger    zerolog.Logger
	log       zerolog.Logger

	obsMu     sync.RWMutex
	observers []Observer

	snapMu sync.RWMutex
	snap   Snapshot
}

func New(cfg config.Config, logger zerolog.Logger) *Session {
	s := &Session{
		cfg:      cfg,
		patterns: board.DefaultPatterns(),
		logger:   logger,
		log:      logger.With().Str("component", "game").Logger(),
	}
	s.reset()
	return s
}

// Observe registers fn for every later event. Observers run on the goroutine
// that changed the state, after the session lock is released.
func (s *Session) Observe(fn Observer) {
	s.obsMu.Lock()
	s.observers = append(s.observers, fn)
	s.obsMu.Unlock()
}

func (s *Session) Reset() {
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
}

// Configure validates cfg, adopts it and starts over with a fresh board and
// fresh players.
func (s *Session) Configure(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.reset()
	s.mu.Unlock()
	return nil
}

func (s *Session) reset() {
	s.board = board.New(s.cfg.BoardSize, s.cfg.BoardOptions(s.patterns))
	s.history.Clear()
	s.createPlayers()
	s.status = StatusNotStarted
	s.toMove = board.Black
	s.round = 1
	s.message = ""
	s.turnStart = time.Now()
	s.refreshSnapshot()
}

func (s *Session) createPlayers() {
	engineCfg := s.cfg.EngineConfig(s.logger)
	newAI := func() Player { return NewAIPlayer(engineCfg) }
	switch s.cfg.Mode {
	case config.ModeAIvsAI:
		s.players = [2]Player{newAI(), newAI()}
	case config.ModeHumanVsHuman:
		s.players = [2]Player{NewHumanPlayer(), NewHumanPlayer()}
	default:
		if s.cfg.First == config.FirstAI {
			s.players = [2]Player{newAI(), NewHumanPlayer()}
		} else {
			s.players = [2]Player{NewHumanPlayer(), newAI()}
		}
	}
	s.log.Info().
		Str("black", playerLabel(s.players[board.Black])).
		Str("white", playerLabel(s.players[board.White])).
		Int("size", s.cfg.BoardSize).
		Int("depth", s.cfg.AiDepth).
		Msg("players ready")
}

func (s *Session) Start() {
	s.mu.Lock()
	if s.status != StatusNotStarted {
		s.mu.Unlock()
		return
	}
	s.status = StatusRunning
	s.turnStart = time.Now()
	s.refreshSnapshot()
	ev := Event{Kind: EventStart, Snapshot: s.snapshot()}
	s.mu.Unlock()
	s.publish(ev)
}

// Step lets the side to move act. It reports whether a move was played; a
// human without a submitted move is not an error.
func (s *Session) Step() (bool, error) {
	s.mu.Lock()
	if s.status != StatusRunning {
		s.mu.Unlock()
		return false, ErrNotRunning
	}
	player := s.players[s.toMove]
	ai, isAI := player.(*AIPlayer)
	var before search.Stats
	if isAI {
		before = ai.Engine().Stats()
	}
	res, ok := player.ChooseMove(s.board, s.toMove)
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	var events []Event
	var err error
	if res.HasMove {
		entry := HistoryEntry{Move: res.Move, Score: res.Value, IsAI: isAI}
		if isAI {
			after := ai.Engine().Stats()
			analysis := AnalyzeCell(s.board, res.Move, s.toMove)
			entry.Depth = ai.Engine().Depth()
			entry.Path = res.Path
			entry.Searches = after.Searches - before.Searches
			entry.CacheHits = after.Hits - before.Hits
			entry.Analysis = &analysis
		}
		events, err = s.apply(entry)
	} else {
		events = s.finishWithoutMove()
	}
	s.mu.Unlock()
	s.publish(events...)
	return err == nil && res.HasMove, err
}

// Submit plays a human move immediately.
func (s *Session) Submit(x, y int) error {
	s.mu.Lock()
	if s.status != StatusRunning {
		s.mu.Unlock()
		return ErrNotRunning
	}
	human, ok := s.players[s.toMove].(*HumanPlayer)
	if !ok {
		s.mu.Unlock()
		return ErrNotHumanTurn
	}
	human.SetPendingMove(board.Point{X: x, Y: y})
	res, _ := human.ChooseMove(s.board, s.toMove)
	events, err := s.apply(HistoryEntry{Move: res.Move})
	s.mu.Unlock()
	s.publish(events...)
	return err
}

// Undo takes back moves until a human is to move again, so against the
// engine both the engine's reply and the human move before it are removed.
func (s *Session) Undo() error {
	s.mu.Lock()
	if s.status == StatusNotStarted {
		s.mu.Unlock()
		return ErrNotRunning
	}
	if !s.players[board.Black].IsHuman() && !s.players[board.White].IsHuman() {
		s.mu.Unlock()
		return ErrNotHumanTurn
	}
	if !s.undoToHuman() {
		s.mu.Unlock()
		return ErrNothingToUndo
	}
	s.status = StatusRunning
	s.message = ""
	s.turnStart = time.Now()
	s.refreshSnapshot()
	ev := Event{Kind: EventUndo, Snapshot: s.snapshot()}
	s.mu.Unlock()
	s.publish(ev)
	return nil
}

func (s *Session) undoToHuman() bool {
	toMove, round := s.toMove, s.round
	var popped []HistoryEntry
	for {
		entry, ok := s.history.Pop()
		if !ok {
			break
		}
		s.board.Undo()
		popped = append(popped, entry)
		s.toMove = entry.Role
		s.round = entry.Round
		if s.players[s.toMove].IsHuman() && !entry.IsAI {
			break
		}
	}
	if len(popped) == 0 {
		return false
	}
	if !s.players[s.toMove].IsHuman() || popped[len(popped)-1].IsAI {
		// No human move left to take back: replay what was removed.
		for i := len(popped) - 1; i >= 0; i-- {
			e := popped[i]
			s.board.Put(e.Move.X, e.Move.Y, e.Role)
			s.history.Push(e)
		}
		s.toMove, s.round = toMove, round
		return false
	}
	s.log.Info().Int("moves", len(popped)).Int("round", s.round).Msg("undo")
	return true
}

// apply plays entry.Move for the side to move and completes the entry with
// the bookkeeping fields.
func (s *Session) apply(entry HistoryEntry) ([]Event, error) {
	role := s.toMove
	move := entry.Move
	if !s.board.Put(move.X, move.Y, role) {
		s.message = "Illegal move: " + move.String()
		s.refreshSnapshot()
		return nil, errors.Wrapf(ErrIllegalMove, "%s at %s", role, move)
	}
	entry.Role = role
	entry.Round = s.round
	entry.ElapsedMs = float64(time.Since(s.turnStart).Microseconds()) / 1000
	entry.Reason = ReasonHuman
	if entry.IsAI {
		entry.Reason = Reason(entry.Score, len(entry.Path))
	}
	s.history.Push(entry)
	s.message = ""
	s.log.Info().
		Int("round", entry.Round).
		Str("player", role.String()).
		Stringer("move", move).
		Bool("ai", entry.IsAI).
		Int("score", entry.Score).
		Str("reason", entry.Reason).
		Float64("elapsed_ms", entry.ElapsedMs).
		Msg("move played")
	if a := entry.Analysis; a != nil {
		s.log.Debug().
			Stringer("move", move).
			Int("own", a.Own).
			Int("opp", a.Opp).
			Str("threat", a.Threat).
			Str("opportunity", a.Opportunity).
			Strs("shapes", a.Shapes).
			Str("path", FormatPath(entry.Path, pathPreview)).
			Int("searches", entry.Searches).
			Int("cache_hits", entry.CacheHits).
			Msg("move analysis")
	}

	view := entry.View()
	if winner, ok := s.board.Winner(); ok {
		s.status = wonBy(winner)
	} else if s.board.IsGameOver() {
		s.status = StatusDraw
	} else {
		s.toMove = role.Opponent()
		s.round++
		s.turnStart = time.Now()
	}
	s.refreshSnapshot()

	events := []Event{{Kind: EventMove, Move: &view, Snapshot: s.snapshot()}}
	if s.status.Over() {
		s.log.Info().Stringer("status", s.status).Int("round", s.round).Msg("game over")
		events = append(events, Event{Kind: EventGameOver, Snapshot: s.snapshot()})
	}
	return events, nil
}

// finishWithoutMove ends the game as a draw when the engine has nothing
// to play.
func (s *Session) finishWithoutMove() []Event {
	s.status = StatusDraw
	s.message = "no valid moves for " + s.toMove.String()
	s.refreshSnapshot()
	s.log.Info().Str("player", s.toMove.String()).Msg("no valid moves, draw")
	return []Event{{Kind: EventGameOver, Snapshot: s.snapshot()}}
}

func (s *Session) publish(events ...Event) {
	if len(events) == 0 {
		return
	}
	s.obsMu.RLock()
	observers := append([]Observer(nil), s.observers...)
	s.obsMu.RUnlock()
	for _, ev := range events {
		for _, fn := range observers {
			fn(ev)
		}
	}
}

func (s *Session) refreshSnapshot() {
	snap := Snapshot{
		Mode:      s.cfg.Mode,
		Status:    s.status,
		ToMove:    s.toMove.String(),
		Round:     s.round,
		BoardSize: s.board.Size(),
		Rows:      Rows(s.board),
		History:   s.history.Views(),
		Players:   [2]string{playerLabel(s.players[board.Black]), playerLabel(s.players[board.White])},
		Message:   s.message,
	}
	if last, ok := s.board.LastMove(); ok {
		p := last.Point()
		snap.LastMove = &p
	}
	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
}

func (s *Session) snapshot() Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

// Snapshot returns the state as of the last change without waiting for a
// running search.
func (s *Session) Snapshot() Snapshot {
	return s.snapshot()
}

func (s *Session) Status() Status {
	return s.snapshot().Status
}

func (s *Session) ToMove() board.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toMove
}

func (s *Session) CurrentPlayerIsHuman() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players[s.toMove].IsHuman()
}

func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.All()
}

// Render draws the current board.
func (s *Session) Render() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Render(s.board)
}

// Candidates lists the moves the engine would consider for the side to move.
func (s *Session) Candidates() []board.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Moves(s.toMove, false, false)
}

func playerLabel(p Player) string {
	if p.IsHuman() {
		return PlayerHuman.String()
	}
	return PlayerAI.String()
}

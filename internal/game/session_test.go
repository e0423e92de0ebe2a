package game

import (
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/luxquant/gomoku/internal/board"
	"github.com/luxquant/gomoku/internal/config"
)

func newSession(mode, first string, size, depth int) *Session {
	cfg := config.DefaultConfig()
	cfg.Mode = mode
	cfg.First = first
	cfg.BoardSize = size
	cfg.AiDepth = depth
	return New(cfg, zerolog.Nop())
}

func TestStepBeforeStart(t *testing.T) {
	s := newSession(config.ModeAIvsAI, config.FirstAI, 9, 1)
	if _, err := s.Step(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
	if err := s.Submit(0, 0); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}

func TestHumanVsHumanFiveWins(t *testing.T) {
	s := newSession(config.ModeHumanVsHuman, config.FirstHuman, 9, 1)
	s.Start()
	for i := 0; i < 4; i++ {
		if err := s.Submit(i, 0); err != nil {
			t.Fatalf("black move %d: %v", i, err)
		}
		if err := s.Submit(i, 1); err != nil {
			t.Fatalf("white move %d: %v", i, err)
		}
	}
	if err := s.Submit(4, 0); err != nil {
		t.Fatalf("winning move: %v", err)
	}
	snap := s.Snapshot()
	if snap.Status != StatusBlackWon {
		t.Fatalf("expected black to win, got %v", snap.Status)
	}
	if snap.Round != 9 || len(snap.History) != 9 {
		t.Fatalf("expected 9 rounds, got round %d with %d moves", snap.Round, len(snap.History))
	}
	if err := s.Submit(5, 5); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning after the win, got %v", err)
	}
}

func TestFullBoardIsDraw(t *testing.T) {
	s := newSession(config.ModeHumanVsHuman, config.FirstHuman, 5, 1)
	s.Start()
	var black, white []board.Point
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			if (x/2+y)%2 == 0 {
				black = append(black, board.Point{X: x, Y: y})
			} else {
				white = append(white, board.Point{X: x, Y: y})
			}
		}
	}
	for i := range black {
		if err := s.Submit(black[i].X, black[i].Y); err != nil {
			t.Fatalf("black %v: %v", black[i], err)
		}
		if i < len(white) {
			if err := s.Submit(white[i].X, white[i].Y); err != nil {
				t.Fatalf("white %v: %v", white[i], err)
			}
		}
	}
	if s.Status() != StatusDraw {
		t.Fatalf("expected a draw, got %v", s.Status())
	}
}

func TestSubmitRejectsIllegalMoves(t *testing.T) {
	s := newSession(config.ModeHumanVsHuman, config.FirstHuman, 9, 1)
	s.Start()
	if err := s.Submit(4, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range []board.Point{{X: 4, Y: 4}, {X: -1, Y: 0}, {X: 9, Y: 9}} {
		if err := s.Submit(p.X, p.Y); !errors.Is(err, ErrIllegalMove) {
			t.Fatalf("expected ErrIllegalMove for %v, got %v", p, err)
		}
	}
	if s.ToMove() != board.White || len(s.History()) != 1 {
		t.Fatalf("illegal moves must not change the turn")
	}
	if s.Snapshot().Message == "" {
		t.Fatalf("expected an illegal move message in the snapshot")
	}
}

func TestAIOpensInCenterAndRejectsHumanInput(t *testing.T) {
	s := newSession(config.ModeHumanVsAI, config.FirstAI, 9, 1)
	s.Start()
	if s.CurrentPlayerIsHuman() {
		t.Fatalf("expected the engine to play black")
	}
	if err := s.Submit(0, 0); !errors.Is(err, ErrNotHumanTurn) {
		t.Fatalf("expected ErrNotHumanTurn, got %v", err)
	}
	played, err := s.Step()
	if err != nil || !played {
		t.Fatalf("expected the engine to move, got %v %v", played, err)
	}
	history := s.History()
	if len(history) != 1 || history[0].Move != (board.Point{X: 4, Y: 4}) || !history[0].IsAI {
		t.Fatalf("expected an engine move at the centre, got %+v", history)
	}
	if played, err := s.Step(); played || err != nil {
		t.Fatalf("expected a waiting human to be a no-op, got %v %v", played, err)
	}
}

func TestAIvsAIAlternates(t *testing.T) {
	s := newSession(config.ModeAIvsAI, config.FirstAI, 9, 1)
	s.Start()
	for i := 0; i < 4; i++ {
		if _, err := s.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	history := s.History()
	if len(history) != 4 {
		t.Fatalf("expected 4 moves, got %d", len(history))
	}
	for i, e := range history {
		want := board.Black
		if i%2 == 1 {
			want = board.White
		}
		if e.Role != want || !e.IsAI || e.Depth != 1 || e.Reason == "" {
			t.Fatalf("unexpected entry %d: %+v", i, e)
		}
	}
	if err := s.Undo(); !errors.Is(err, ErrNotHumanTurn) {
		t.Fatalf("expected undo to be refused without humans, got %v", err)
	}
}

func TestUndoAgainstAI(t *testing.T) {
	s := newSession(config.ModeHumanVsAI, config.FirstHuman, 9, 1)
	s.Start()
	if err := s.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
	if err := s.Submit(4, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Step(); err != nil {
		t.Fatalf("engine move: %v", err)
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("unexpected undo error: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.History) != 0 || snap.Round != 1 || snap.ToMove != board.Black.String() {
		t.Fatalf("expected a fresh position, got %+v", snap)
	}
	if !strings.Contains(s.Render(), ".") || strings.ContainsAny(s.Render(), "XO") {
		t.Fatalf("expected an empty rendered board")
	}
}

func TestUndoKeepsEngineOpening(t *testing.T) {
	s := newSession(config.ModeHumanVsAI, config.FirstAI, 9, 1)
	s.Start()
	if _, err := s.Step(); err != nil {
		t.Fatalf("engine move: %v", err)
	}
	if err := s.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
	if len(s.History()) != 1 || !s.CurrentPlayerIsHuman() {
		t.Fatalf("expected the engine opening to stay on the board")
	}
}

func TestObserversSeeEveryEvent(t *testing.T) {
	s := newSession(config.ModeHumanVsHuman, config.FirstHuman, 9, 1)
	var mu sync.Mutex
	var kinds []EventKind
	s.Observe(func(ev Event) {
		mu.Lock()
		kinds = append(kinds, ev.Kind)
		mu.Unlock()
	})
	s.Start()
	s.Submit(0, 0)
	s.Submit(1, 1)
	if err := s.Undo(); err != nil {
		t.Fatalf("unexpected undo error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []EventKind{EventStart, EventMove, EventMove, EventUndo}
	if len(kinds) != len(want) {
		t.Fatalf("expected events %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, kinds)
		}
	}
}

func TestCandidatesNearStones(t *testing.T) {
	s := newSession(config.ModeHumanVsHuman, config.FirstHuman, 9, 1)
	s.Start()
	s.Submit(4, 4)
	moves := s.Candidates()
	if len(moves) == 0 || len(moves) > 20 {
		t.Fatalf("unexpected candidate count %d", len(moves))
	}
}

func TestResetStartsOver(t *testing.T) {
	s := newSession(config.ModeHumanVsHuman, config.FirstHuman, 9, 1)
	s.Start()
	if err := s.Submit(4, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Reset()
	snap := s.Snapshot()
	if snap.Status != StatusNotStarted || len(snap.History) != 0 || snap.LastMove != nil {
		t.Fatalf("expected a fresh session, got %+v", snap)
	}
	if err := s.Submit(4, 4); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning before Start, got %v", err)
	}
	s.Start()
	if err := s.Submit(4, 4); err != nil {
		t.Fatalf("the centre should be free again: %v", err)
	}
}

func TestEngineMoveCarriesAnalysis(t *testing.T) {
	s := newSession(config.ModeHumanVsAI, config.FirstHuman, 9, 2)
	s.Start()
	if err := s.Submit(4, 4); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if played, err := s.Step(); err != nil || !played {
		t.Fatalf("expected the engine to move, got %v %v", played, err)
	}
	history := s.History()
	human, engine := history[0], history[1]
	if human.Analysis != nil || human.Path != nil || human.Searches != 0 {
		t.Fatalf("human moves carry no analysis: %+v", human)
	}
	if engine.Analysis == nil || len(engine.Path) == 0 || engine.Path[0] != engine.Move {
		t.Fatalf("expected a predicted path starting with the move, got %+v", engine)
	}
	if engine.Searches == 0 {
		t.Fatalf("expected search counts on the entry, got %+v", engine)
	}
	if engine.Reason != Reason(engine.Score, len(engine.Path)) {
		t.Fatalf("reason %q does not match score %d", engine.Reason, engine.Score)
	}
	view := engine.View()
	if view.Analysis != engine.Analysis || len(view.Path) != len(engine.Path) || view.Searches != engine.Searches {
		t.Fatalf("view dropped analysis fields: %+v", view)
	}
}

func TestConfigureStartsOverWithNewSettings(t *testing.T) {
	s := newSession(config.ModeHumanVsHuman, config.FirstHuman, 9, 1)
	s.Start()
	if err := s.Submit(4, 4); err != nil {
		t.Fatalf("submit: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.BoardSize = 2
	if err := s.Configure(cfg); err == nil {
		t.Fatalf("expected an invalid config to be refused")
	}
	if snap := s.Snapshot(); snap.BoardSize != 9 || len(snap.History) != 1 {
		t.Fatalf("a refused config must leave the game alone, got %+v", snap)
	}

	cfg.BoardSize = 11
	cfg.Mode = config.ModeHumanVsHuman
	if err := s.Configure(cfg); err != nil {
		t.Fatalf("configure: %v", err)
	}
	snap := s.Snapshot()
	if snap.BoardSize != 11 || len(snap.History) != 0 || snap.Status != StatusNotStarted {
		t.Fatalf("expected a fresh 11x11 game, got %+v", snap)
	}
}

func TestNoValidMovesEndsInDraw(t *testing.T) {
	s := newSession(config.ModeAIvsAI, config.FirstAI, 9, 1)
	s.Start()
	s.mu.Lock()
	events := s.finishWithoutMove()
	s.mu.Unlock()
	if len(events) != 1 || events[0].Kind != EventGameOver {
		t.Fatalf("expected a single game over event, got %+v", events)
	}
	snap := s.Snapshot()
	if snap.Status != StatusDraw || snap.Message != "no valid moves for Black" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

package game

import (
	"github.com/samber/lo"

	"github.com/luxquant/gomoku/internal/board"
)

type HistoryEntry struct {
	Move      board.Point
	Role      board.Role
	Round     int
	ElapsedMs float64
	IsAI      bool
	Score     int
	Reason    string
	Depth     int
	// Engine moves only.
	Path      []board.Point
	Analysis  *CellAnalysis
	Searches  int
	CacheHits int
}

type MoveHistory struct {
	entries []HistoryEntry
}

func (h *MoveHistory) Clear() {
	h.entries = nil
}

func (h *MoveHistory) Push(entry HistoryEntry) {
	h.entries = append(h.entries, entry)
}

func (h *MoveHistory) Pop() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	last := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return last, true
}

func (h MoveHistory) All() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}

// MoveView is the wire form of a history entry.
type MoveView struct {
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Player    string  `json:"player"`
	Round     int     `json:"round"`
	ElapsedMs float64 `json:"elapsed_ms"`
	IsAI      bool    `json:"is_ai"`
	Score     int     `json:"score"`
	Reason    string  `json:"reason,omitempty"`
	Depth     int     `json:"depth,omitempty"`

	Path      []board.Point `json:"path,omitempty"`
	Analysis  *CellAnalysis `json:"analysis,omitempty"`
	Searches  int           `json:"searches,omitempty"`
	CacheHits int           `json:"cache_hits,omitempty"`
}

func (e HistoryEntry) View() MoveView {
	return MoveView{
		X:         e.Move.X,
		Y:         e.Move.Y,
		Player:    e.Role.String(),
		Round:     e.Round,
		ElapsedMs: e.ElapsedMs,
		IsAI:      e.IsAI,
		Score:     e.Score,
		Reason:    e.Reason,
		Depth:     e.Depth,
		Path:      e.Path,
		Analysis:  e.Analysis,
		Searches:  e.Searches,
		CacheHits: e.CacheHits,
	}
}

func (h MoveHistory) Views() []MoveView {
	return lo.Map(h.entries, func(e HistoryEntry, _ int) MoveView {
		return e.View()
	})
}

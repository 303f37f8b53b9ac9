package engine

import "github.com/jaminalder/tictactoe-hotseat/internal/domain"

// Snapshot is a read-only copy of everything a presentation layer renders.
// Snapshots are comparable with ==; an unchanged snapshot after a command
// means the command was rejected.
type Snapshot struct {
    Config       domain.Config
    Board        domain.Board
    State        domain.GameState
    Match        domain.MatchState
    TimerEnabled bool
    SecondsLeft  int
    Score        domain.Score
    CanUndo      bool
    AIPending    bool
}

// IsHighlightedCell reports whether idx lies on the winning line.
func (s Snapshot) IsHighlightedCell(idx int) bool {
    win, ok := s.State.(domain.Win)
    return ok && win.Line.Contains(idx)
}

// Status is the headline for the current state, match result first.
func (s Snapshot) Status() string {
    if m, ok := s.Match.(domain.MatchOver); ok {
        return m.Status()
    }
    if s.AIPending {
        return "Computer is thinking..."
    }
    return s.State.Status()
}

// AITurn reports whether the live round is waiting on the computer.
func (s Snapshot) AITurn() bool {
    cur, ok := s.Current()
    return ok && s.Config.Opponent == domain.AI && cur == domain.AIMark
}

// Current returns the player to move, if the round is live.
func (s Snapshot) Current() (domain.Player, bool) {
    p, ok := s.State.(domain.Playing)
    return p.Current, ok
}

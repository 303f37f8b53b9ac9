package domain

import "fmt"

// Player identifies a side. The zero value marks an empty cell.
type Player uint8

const (
    Empty Player = iota
    X
    O
)

// Other returns the opposing side. Empty stays Empty.
func (p Player) Other() Player {
    switch p {
    case X:
        return O
    case O:
        return X
    default:
        return Empty
    }
}

func (p Player) String() string {
    switch p {
    case X:
        return "X"
    case O:
        return "O"
    default:
        return ""
    }
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Player

// Full reports whether no empty cell remains.
func (b Board) Full() bool {
    for _, c := range b {
        if c == Empty {
            return false
        }
    }
    return true
}

// EmptyCells returns the indices of empty cells in ascending order.
func (b Board) EmptyCells() []int {
    out := make([]int, 0, len(b))
    for i, c := range b {
        if c == Empty {
            out = append(out, i)
        }
    }
    return out
}

// Count returns how many cells p occupies.
func (b Board) Count(p Player) int {
    n := 0
    for _, c := range b {
        if c == p {
            n++
        }
    }
    return n
}

// InBounds reports whether idx addresses a cell.
func InBounds(idx int) bool { return idx >= 0 && idx < len(Board{}) }

// GameState is the state of the current round: Playing, Win or Draw.
type GameState interface {
    // Over reports whether the round has ended.
    Over() bool
    // Status is a short human-readable description.
    Status() string
    isGameState()
}

// Playing means the round is live and Current is to move.
type Playing struct{ Current Player }

// Win means Winner completed Line.
type Win struct {
    Winner Player
    Line   Line
}

// Draw means the board filled up without a winner.
type Draw struct{}

func (Playing) Over() bool { return false }
func (Win) Over() bool     { return true }
func (Draw) Over() bool    { return true }

func (s Playing) Status() string { return fmt.Sprintf("Current: %s", s.Current) }
func (s Win) Status() string     { return fmt.Sprintf("%s wins!", s.Winner) }
func (Draw) Status() string      { return "Draw!" }

func (Playing) isGameState() {}
func (Win) isGameState()     {}
func (Draw) isGameState()    {}

// MatchState is either InProgress or Finished.
type MatchState interface {
    Finished() bool
    isMatchState()
}

// InProgress means rounds are still being played.
type InProgress struct{}

// MatchOver means Winner reached the target score.
type MatchOver struct{ Winner Player }

func (InProgress) Finished() bool { return false }
func (MatchOver) Finished() bool  { return true }

func (InProgress) isMatchState() {}
func (MatchOver) isMatchState()  {}

// Status describes the finished match.
func (m MatchOver) Status() string { return fmt.Sprintf("%s wins the match!", m.Winner) }

// Score counts round wins within a match.
type Score struct {
    XWins int
    OWins int
}

// Add credits one round win to p.
func (s *Score) Add(p Player) {
    switch p {
    case X:
        s.XWins++
    case O:
        s.OWins++
    }
}

// Of returns p's win count.
func (s Score) Of(p Player) int {
    switch p {
    case X:
        return s.XWins
    case O:
        return s.OWins
    default:
        return 0
    }
}

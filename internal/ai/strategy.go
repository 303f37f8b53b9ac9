// Package ai holds the computer opponents. Every strategy answers the same
// question: given a board, which cell should the computer take next.
package ai

import (
    "math/rand/v2"

    "github.com/jaminalder/tictactoe-hotseat/internal/domain"
)

// Strategy picks a cell for the computer. ok is false when the board is
// already decided and there is nothing to play.
type Strategy interface {
    ChooseMove(b domain.Board) (idx int, ok bool)
}

// DefaultCacheSize bounds the minimax transposition cache. It covers every
// reachable position of a 3x3 game.
const DefaultCacheSize = 1 << 14

// New returns the strategy for d playing mark.
func New(d domain.Difficulty, mark domain.Player) Strategy {
    switch d {
    case domain.Heuristic:
        return &Heuristic{Mark: mark}
    case domain.Minimax:
        return NewMinimax(mark, DefaultCacheSize)
    default:
        return &Random{}
    }
}

// Random plays a uniformly chosen empty cell.
type Random struct {
    rng *rand.Rand // nil uses the global source
}

// NewRandom returns a Random with its own seeded source. The result is not
// safe for concurrent use.
func NewRandom(seed uint64) *Random {
    return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Random) ChooseMove(b domain.Board) (int, bool) {
    if domain.Decided(b) {
        return 0, false
    }
    empty := b.EmptyCells()
    return empty[r.intN(len(empty))], true
}

func (r *Random) intN(n int) int {
    if r == nil || r.rng == nil {
        return rand.IntN(n)
    }
    return r.rng.IntN(n)
}

// Heuristic takes an immediate win, otherwise blocks the opponent's
// immediate win, otherwise plays like Random.
type Heuristic struct {
    Mark     domain.Player
    Fallback *Random
}

func (h *Heuristic) ChooseMove(b domain.Board) (int, bool) {
    if domain.Decided(b) {
        return 0, false
    }
    if idx, ok := domain.WinningMoveIndex(h.Mark, b); ok {
        return idx, true
    }
    if idx, ok := domain.WinningMoveIndex(h.Mark.Other(), b); ok {
        return idx, true
    }
    return h.Fallback.ChooseMove(b)
}

package ai

import (
    "math"

    lru "github.com/hashicorp/golang-lru/v2"

    "github.com/jaminalder/tictactoe-hotseat/internal/domain"
)

// winScore is the value of a position Mark has won; a lost position scores
// -winScore and a draw 0. Each ply between a position and the game's end
// moves the value one step toward zero, so quicker wins and slower losses
// rank higher.
const winScore = 10

type position struct {
    board  domain.Board
    toMove domain.Player
}

// Minimax searches the full game tree. Mark maximizes, the other side
// minimizes; ties go to the lowest cell index.
type Minimax struct {
    Mark  domain.Player
    cache *lru.Cache[position, int]
}

// NewMinimax returns a Minimax for mark. A positive cacheSize memoizes
// position values across calls; values do not depend on the search root, so
// the cache never changes the chosen move.
func NewMinimax(mark domain.Player, cacheSize int) *Minimax {
    m := &Minimax{Mark: mark}
    if cacheSize > 0 {
        if c, err := lru.New[position, int](cacheSize); err == nil {
            m.cache = c
        }
    }
    return m
}

func (m *Minimax) ChooseMove(b domain.Board) (int, bool) {
    if domain.Decided(b) {
        return 0, false
    }
    best, bestScore := -1, math.MinInt
    for _, idx := range b.EmptyCells() {
        next := b
        next[idx] = m.Mark
        if s := m.value(next, m.Mark.Other()); s > bestScore {
            best, bestScore = idx, s
        }
    }
    return best, best >= 0
}

// Score returns the minimax value of b with toMove to play, from Mark's side.
func (m *Minimax) Score(b domain.Board, toMove domain.Player) int {
    return m.value(b, toMove)
}

func (m *Minimax) value(b domain.Board, toMove domain.Player) int {
    key := position{board: b, toMove: toMove}
    if m.cache != nil {
        if v, ok := m.cache.Get(key); ok {
            return v
        }
    }

    var v int
    switch {
    case domain.IsWinner(m.Mark, b):
        v = winScore
    case domain.IsWinner(m.Mark.Other(), b):
        v = -winScore
    case b.Full():
        v = 0
    default:
        maximizing := toMove == m.Mark
        if maximizing {
            v = math.MinInt
        } else {
            v = math.MaxInt
        }
        for _, idx := range b.EmptyCells() {
            next := b
            next[idx] = toMove
            child := decay(m.value(next, toMove.Other()))
            if (maximizing && child > v) || (!maximizing && child < v) {
                v = child
            }
        }
    }

    if m.cache != nil {
        m.cache.Add(key, v)
    }
    return v
}

// decay moves a value one step toward zero for each ply of distance.
func decay(v int) int {
    switch {
    case v > 0:
        return v - 1
    case v < 0:
        return v + 1
    }
    return 0
}

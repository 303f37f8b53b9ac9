package domain

// Move is one placed mark, in play order.
type Move struct {
    Index  int
    Player Player
}

// History is the stack of played moves used by undo. It does no validation.
type History struct {
    moves []Move
}

func (h *History) Record(idx int, p Player) {
    h.moves = append(h.moves, Move{Index: idx, Player: p})
}

// PopLast removes and returns the most recent move.
func (h *History) PopLast() (Move, bool) {
    if len(h.moves) == 0 {
        return Move{}, false
    }
    m := h.moves[len(h.moves)-1]
    h.moves = h.moves[:len(h.moves)-1]
    return m, true
}

// Last returns the most recent move without removing it.
func (h History) Last() (Move, bool) {
    if len(h.moves) == 0 {
        return Move{}, false
    }
    return h.moves[len(h.moves)-1], true
}

func (h *History) Reset()       { h.moves = nil }
func (h History) IsEmpty() bool { return len(h.moves) == 0 }
func (h History) Len() int      { return len(h.moves) }

// Moves returns a copy of the recorded moves, oldest first.
func (h History) Moves() []Move {
    out := make([]Move, len(h.moves))
    copy(out, h.moves)
    return out
}

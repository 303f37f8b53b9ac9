package domain

// Line is three cell indices forming a row, column or diagonal.
type Line [3]int

// Contains reports whether idx is one of the line's cells.
func (l Line) Contains(idx int) bool {
    return l[0] == idx || l[1] == idx || l[2] == idx
}

// Lines lists the winning lines in scan order: rows, columns, diagonals.
var Lines = [8]Line{
    // rows
    {0, 1, 2}, {3, 4, 5}, {6, 7, 8},
    // cols
    {0, 3, 6}, {1, 4, 7}, {2, 5, 8},
    // diags
    {0, 4, 8}, {2, 4, 6},
}

// IsWinner reports whether p holds all three cells of some line.
func IsWinner(p Player, b Board) bool {
    _, ok := WinningLine(p, b)
    return ok
}

// WinningLine returns the first line fully held by p.
func WinningLine(p Player, b Board) (Line, bool) {
    if p == Empty {
        return Line{}, false
    }
    for _, ln := range Lines {
        if b[ln[0]] == p && b[ln[1]] == p && b[ln[2]] == p {
            return ln, true
        }
    }
    return Line{}, false
}

// WinningMoveIndex returns the empty cell that would complete a line for p,
// taken from the first such line in scan order.
func WinningMoveIndex(p Player, b Board) (int, bool) {
    if p == Empty {
        return 0, false
    }
    for _, ln := range Lines {
        own, free := 0, -1
        for _, idx := range ln {
            switch b[idx] {
            case p:
                own++
            case Empty:
                free = idx
            }
        }
        if own == 2 && free >= 0 {
            return free, true
        }
    }
    return 0, false
}

// Decided reports whether someone has won or the board is full.
func Decided(b Board) bool {
    return IsWinner(X, b) || IsWinner(O, b) || b.Full()
}

package term

import (
    "fmt"
    "io"
    "strconv"
    "strings"

    "github.com/muesli/termenv"

    "github.com/jaminalder/tictactoe-hotseat/internal/domain"
    "github.com/jaminalder/tictactoe-hotseat/internal/engine"
)

// Renderer draws snapshots to a terminal.
type Renderer struct {
    out *termenv.Output
}

// NewRenderer writes to w, detecting the color profile unless opts set one.
func NewRenderer(w io.Writer, opts ...termenv.OutputOption) *Renderer {
    return &Renderer{out: termenv.NewOutput(w, opts...)}
}

// Clear wipes the screen before a redraw.
func (r *Renderer) Clear() {
    r.out.ClearScreen()
}

// Render writes the board, score, clock and status line.
func (r *Renderer) Render(s engine.Snapshot) error {
    var b strings.Builder
    for row := 0; row < 3; row++ {
        if row > 0 {
            b.WriteString("---+---+---\n")
        }
        for col := 0; col < 3; col++ {
            if col > 0 {
                b.WriteString("|")
            }
            idx := row*3 + col
            b.WriteString(" " + r.cell(s, idx) + " ")
        }
        b.WriteString("\n")
    }
    b.WriteString("\n")
    fmt.Fprintf(&b, "X %d : %d O   first to %d\n", s.Score.XWins, s.Score.OWins, s.Config.TargetScore)
    if s.TimerEnabled {
        fmt.Fprintf(&b, "%ds left\n", s.SecondsLeft)
    } else {
        fmt.Fprintf(&b, "timer paused (%ds)\n", s.SecondsLeft)
    }
    b.WriteString(r.out.String(s.Status()).Bold().String())
    b.WriteString("\n")
    _, err := io.WriteString(r.out, b.String())
    return err
}

func (r *Renderer) cell(s engine.Snapshot, idx int) string {
    mark := s.Board[idx]
    if mark == domain.Empty {
        return r.out.String(strconv.Itoa(idx + 1)).Faint().String()
    }
    st := r.out.String(mark.String()).Bold()
    switch mark {
    case domain.X:
        st = st.Foreground(r.out.Color("1"))
    case domain.O:
        st = st.Foreground(r.out.Color("4"))
    }
    if s.IsHighlightedCell(idx) {
        st = st.Reverse()
    }
    return st.String()
}

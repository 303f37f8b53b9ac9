package term

import (
    "bytes"
    "testing"

    "github.com/benbjohnson/clock"
    "github.com/muesli/termenv"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/jaminalder/tictactoe-hotseat/internal/domain"
    "github.com/jaminalder/tictactoe-hotseat/internal/engine"
)

func render(t *testing.T, s engine.Snapshot) string {
    t.Helper()
    var buf bytes.Buffer
    r := NewRenderer(&buf, termenv.WithProfile(termenv.Ascii))
    require.NoError(t, r.Render(s))
    return buf.String()
}

func TestRenderEmptyBoard(t *testing.T) {
    e := engine.New(domain.DefaultConfig(), engine.WithClock(clock.NewMock()))
    want := "" +
        " 1 | 2 | 3 \n" +
        "---+---+---\n" +
        " 4 | 5 | 6 \n" +
        "---+---+---\n" +
        " 7 | 8 | 9 \n" +
        "\n" +
        "X 0 : 0 O   first to 3\n" +
        "10s left\n" +
        "Current: X\n"
    assert.Equal(t, want, render(t, e.Snapshot()))
}

func TestRenderWinAndPausedTimer(t *testing.T) {
    e := engine.New(domain.DefaultConfig(), engine.WithClock(clock.NewMock()))
    for _, idx := range []int{0, 3, 1, 4, 2} {
        e.MakeMove(idx)
    }
    e.ToggleTimer()
    out := render(t, e.Snapshot())
    assert.Contains(t, out, " X | X | X \n")
    assert.Contains(t, out, " O | O | 6 \n")
    assert.Contains(t, out, "X 1 : 0 O")
    assert.Contains(t, out, "timer paused (10s)")
    assert.Contains(t, out, "X wins!")
}

func TestRenderMatchOver(t *testing.T) {
    cfg := domain.DefaultConfig()
    cfg.TargetScore = 1
    e := engine.New(cfg, engine.WithClock(clock.NewMock()))
    for _, idx := range []int{0, 3, 1, 4, 2} {
        e.MakeMove(idx)
    }
    assert.Contains(t, render(t, e.Snapshot()), "X wins the match!")
}

package app

import (
    "context"
    "errors"
    "fmt"
    "testing"
    "time"

    "github.com/benbjohnson/clock"
    "github.com/prometheus/client_golang/prometheus/testutil"

    "github.com/jaminalder/tictactoe-hotseat/internal/domain"
)

// minimal renderer for tests: encode marks placed and seconds left
func testRenderer(g Game) []byte {
    s := g.Snapshot
    return []byte(fmt.Sprintf("marks=%d secs=%d", 9-len(s.Board.EmptyCells()), s.SecondsLeft))
}

func newTestService(t *testing.T, opts ...Option) (*Service, *clock.Mock) {
    t.Helper()
    mock := clock.NewMock()
    opts = append([]Option{WithClock(mock), WithRenderer(testRenderer)}, opts...)
    s := NewService(opts...)
    t.Cleanup(s.Close)
    return s, mock
}

func receive(t *testing.T, ch <-chan []byte) string {
    t.Helper()
    select {
    case b, ok := <-ch:
        if !ok {
            t.Fatalf("channel closed unexpectedly")
        }
        return string(b)
    case <-time.After(2 * time.Second):
        t.Fatalf("timed out waiting for broadcast")
    }
    return ""
}

func TestCreateAndGet(t *testing.T) {
    s, _ := newTestService(t)
    g, err := s.CreateGame()
    if err != nil {
        t.Fatalf("CreateGame error: %v", err)
    }
    if g.ID == "" {
        t.Fatalf("expected non-empty game ID")
    }
    if cur, ok := g.Snapshot.Current(); !ok || cur != domain.X {
        t.Fatalf("expected initial turn X, got %v", g.Snapshot.State)
    }
    if g.Snapshot.Config != domain.DefaultConfig() {
        t.Fatalf("expected default config, got %+v", g.Snapshot.Config)
    }
    if g.Created.IsZero() || g.Updated.IsZero() {
        t.Fatalf("expected timestamps to be set")
    }
    got, ok := s.Get(g.ID)
    if !ok || got.ID != g.ID {
        t.Fatalf("Get should find created game")
    }
}

func TestCreateUsesServiceDefaults(t *testing.T) {
    cfg := domain.DefaultConfig()
    cfg.TargetScore = 5
    s, _ := newTestService(t, WithDefaults(cfg))
    g, err := s.CreateGame()
    if err != nil {
        t.Fatalf("CreateGame error: %v", err)
    }
    if g.Snapshot.Config.TargetScore != 5 {
        t.Fatalf("expected target 5, got %d", g.Snapshot.Config.TargetScore)
    }
}

func TestCreateGameWithRejectsInvalidConfig(t *testing.T) {
    s, _ := newTestService(t)
    cfg := domain.DefaultConfig()
    cfg.MoveTimeLimit = 0
    if _, err := s.CreateGameWith(cfg); !errors.Is(err, domain.ErrInvalidConfig) {
        t.Fatalf("expected ErrInvalidConfig, got %v", err)
    }
}

func TestUnknownGame(t *testing.T) {
    s, _ := newTestService(t)
    if _, ok := s.Get("nope"); ok {
        t.Fatalf("Get should miss unknown id")
    }
    cmds := map[string]func() (*Game, error){
        "move":      func() (*Game, error) { return s.Move("nope", 0) },
        "undo":      func() (*Game, error) { return s.Undo("nope") },
        "reset":     func() (*Game, error) { return s.Reset("nope") },
        "new match": func() (*Game, error) { return s.NewMatch("nope") },
        "timer":     func() (*Game, error) { return s.ToggleTimer("nope") },
        "configure": func() (*Game, error) { return s.Configure("nope", domain.DefaultConfig()) },
    }
    for name, cmd := range cmds {
        if _, err := cmd(); !errors.Is(err, ErrNotFound) {
            t.Fatalf("%s: expected ErrNotFound, got %v", name, err)
        }
    }
    if _, _, err := s.Subscribe(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
        t.Fatalf("subscribe: expected ErrNotFound, got %v", err)
    }
    if err := s.End("nope"); !errors.Is(err, ErrNotFound) {
        t.Fatalf("end: expected ErrNotFound, got %v", err)
    }
}

func TestMoveAlternatesAndRejectsOccupied(t *testing.T) {
    s, _ := newTestService(t)
    g, _ := s.CreateGame()

    st, err := s.Move(g.ID, 0)
    if err != nil {
        t.Fatalf("move failed: %v", err)
    }
    if st.Snapshot.Board[0] != domain.X {
        t.Fatalf("expected X at 0, got %v", st.Snapshot.Board[0])
    }
    if cur, _ := st.Snapshot.Current(); cur != domain.O {
        t.Fatalf("expected O to move, got %v", cur)
    }
    again, err := s.Move(g.ID, 0)
    if err != nil {
        t.Fatalf("rejected move should not error: %v", err)
    }
    if again.Snapshot != st.Snapshot {
        t.Fatalf("occupied cell should leave the game unchanged")
    }
}

func TestUndoResetAndNewMatch(t *testing.T) {
    s, _ := newTestService(t)
    g, _ := s.CreateGame()
    s.Move(g.ID, 4)
    st, _ := s.Undo(g.ID)
    if st.Snapshot.Board != (domain.Board{}) || st.Snapshot.CanUndo {
        t.Fatalf("undo should clear the only move")
    }

    // X wins the top row
    for _, idx := range []int{0, 3, 1, 4, 2} {
        s.Move(g.ID, idx)
    }
    st, _ = s.Get(g.ID)
    if st.Snapshot.Score.XWins != 1 {
        t.Fatalf("expected X to have 1 win, got %+v", st.Snapshot.Score)
    }
    st, _ = s.Reset(g.ID)
    if st.Snapshot.Board != (domain.Board{}) || st.Snapshot.Score.XWins != 1 {
        t.Fatalf("reset should clear the board and keep score, got %+v", st.Snapshot)
    }
    st, _ = s.NewMatch(g.ID)
    if st.Snapshot.Score != (domain.Score{}) {
        t.Fatalf("new match should zero the score, got %+v", st.Snapshot.Score)
    }
}

func TestToggleTimerAndConfigure(t *testing.T) {
    s, _ := newTestService(t)
    g, _ := s.CreateGame()
    st, _ := s.ToggleTimer(g.ID)
    if st.Snapshot.TimerEnabled {
        t.Fatalf("expected timer paused")
    }

    cfg := domain.DefaultConfig()
    cfg.MoveTimeLimit = 30
    st, err := s.Configure(g.ID, cfg)
    if err != nil {
        t.Fatalf("configure failed: %v", err)
    }
    if st.Snapshot.Config.MoveTimeLimit != 30 || st.Snapshot.SecondsLeft != 30 {
        t.Fatalf("expected 30s limit applied, got %+v", st.Snapshot)
    }

    cfg.TargetScore = -1
    if _, err := s.Configure(g.ID, cfg); !errors.Is(err, domain.ErrInvalidConfig) {
        t.Fatalf("expected ErrInvalidConfig, got %v", err)
    }
}

func TestSubscribeAndBroadcast(t *testing.T) {
    s, _ := newTestService(t)
    g, _ := s.CreateGame()

    ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
    defer cancel()
    ch, unsub, err := s.Subscribe(ctx, g.ID)
    if err != nil {
        t.Fatalf("subscribe failed: %v", err)
    }
    defer unsub()

    if _, err := s.Move(g.ID, 0); err != nil {
        t.Fatalf("move failed: %v", err)
    }
    if got := receive(t, ch); got != "marks=1 secs=10" {
        t.Fatalf("unexpected broadcast payload: %q", got)
    }
}

func TestTickerDrivesClock(t *testing.T) {
    s, mock := newTestService(t)
    g, _ := s.CreateGame()
    ch, unsub, _ := s.Subscribe(context.Background(), g.ID)
    defer unsub()

    mock.Add(TickInterval)
    if got := receive(t, ch); got != "marks=0 secs=9" {
        t.Fatalf("unexpected broadcast after tick: %q", got)
    }
    st, _ := s.Get(g.ID)
    if st.Snapshot.SecondsLeft != 9 {
        t.Fatalf("expected 9 seconds left, got %d", st.Snapshot.SecondsLeft)
    }
    if !st.Updated.Equal(mock.Now()) {
        t.Fatalf("expected Updated to follow the broadcast, got %v", st.Updated)
    }
}

func TestDropSlowSubscriber(t *testing.T) {
    s, _ := newTestService(t)
    g, _ := s.CreateGame()

    // Slow subscriber: never read
    slowCh, _, _ := s.Subscribe(context.Background(), g.ID)

    ctxFast, cancelFast := context.WithTimeout(context.Background(), time.Second*2)
    defer cancelFast()
    fastCh, unsubFast, _ := s.Subscribe(ctxFast, g.ID)
    defer unsubFast()

    s.Move(g.ID, 0)
    receive(t, fastCh)
    s.Move(g.ID, 4)
    if got := receive(t, fastCh); got != "marks=2 secs=10" {
        t.Fatalf("fast subscriber got %q", got)
    }

    // first update is still buffered, then the channel is closed
    <-slowCh
    if _, ok := <-slowCh; ok {
        t.Fatalf("slow subscriber should have been dropped")
    }
    if n := testutil.ToFloat64(s.Metrics().dropped); n != 1 {
        t.Fatalf("expected 1 dropped subscriber, got %v", n)
    }
}

func TestEndClosesSubscribers(t *testing.T) {
    s, _ := newTestService(t)
    g, _ := s.CreateGame()
    ch, _, _ := s.Subscribe(context.Background(), g.ID)

    if err := s.End(g.ID); err != nil {
        t.Fatalf("end failed: %v", err)
    }
    if _, ok := <-ch; ok {
        t.Fatalf("expected subscription closed")
    }
    if _, ok := s.Get(g.ID); ok {
        t.Fatalf("ended game should be gone")
    }
    if n := testutil.ToFloat64(s.Metrics().gamesActive); n != 0 {
        t.Fatalf("expected no active games, got %v", n)
    }
}

func TestMetricsCountCommands(t *testing.T) {
    s, _ := newTestService(t)
    g, _ := s.CreateGame()
    s.Move(g.ID, 0)
    s.Move(g.ID, 1)
    s.Undo(g.ID)

    if n := testutil.ToFloat64(s.Metrics().commands.WithLabelValues("move")); n != 2 {
        t.Fatalf("expected 2 moves counted, got %v", n)
    }
    if n := testutil.ToFloat64(s.Metrics().commands.WithLabelValues("undo")); n != 1 {
        t.Fatalf("expected 1 undo counted, got %v", n)
    }
    if n := testutil.ToFloat64(s.Metrics().gamesCreated); n != 1 {
        t.Fatalf("expected 1 game created, got %v", n)
    }
}

func TestMoveRejectedOnComputerTurn(t *testing.T) {
    cfg := domain.DefaultConfig()
    cfg.Opponent = domain.AI
    cfg.AIMoveDelay = time.Hour
    s, _ := newTestService(t, WithDefaults(cfg))
    g, _ := s.CreateGame()

    if _, err := s.Move(g.ID, 0); err != nil {
        t.Fatalf("X move failed: %v", err)
    }
    st, err := s.Move(g.ID, 4)
    if !errors.Is(err, ErrNotYourTurn) {
        t.Fatalf("expected ErrNotYourTurn, got %v", err)
    }
    if st == nil || st.Snapshot.Board[4] != domain.Empty {
        t.Fatalf("computer's cell should stay empty, got %+v", st)
    }
    if !st.Snapshot.AIPending {
        t.Fatalf("pending computer move should survive")
    }
    if n := testutil.ToFloat64(s.Metrics().commands.WithLabelValues("move")); n != 1 {
        t.Fatalf("expected only the X move counted, got %v", n)
    }
}

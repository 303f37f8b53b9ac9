package app

import (
    "context"
    "errors"
    "sync"
    "time"

    "github.com/benbjohnson/clock"
    "github.com/google/uuid"
    "go.uber.org/zap"

    "github.com/jaminalder/tictactoe-hotseat/internal/domain"
    "github.com/jaminalder/tictactoe-hotseat/internal/engine"
)

// Errors exposed by the service layer.
var (
    ErrNotFound    = errors.New("game not found")
    ErrNotYourTurn = errors.New("not your turn")
)

// TickInterval is how often each game's turn clock is advanced.
const TickInterval = time.Second

// Game is a point-in-time view of a hosted game.
type Game struct {
    ID       string
    Snapshot engine.Snapshot
    Created  time.Time
    Updated  time.Time
}

type subscriber struct {
    mu     sync.Mutex
    ch     chan []byte
    closed bool
}

// offer delivers b without blocking. A full subscriber is closed and
// reported as slow.
func (s *subscriber) offer(b []byte) bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed {
        return true
    }
    select {
    case s.ch <- b:
        return true
    default:
        s.closed = true
        close(s.ch)
        return false
    }
}

func (s *subscriber) close() {
    s.mu.Lock()
    defer s.mu.Unlock()
    if !s.closed {
        s.closed = true
        close(s.ch)
    }
}

type session struct {
    id      string
    eng     *engine.Engine
    created time.Time
    updated time.Time
    stop    context.CancelFunc
}

// Service hosts games, drives their clocks and fans out updates.
type Service struct {
    mu       sync.Mutex
    sessions map[string]*session
    subs     map[string]map[*subscriber]struct{}
    render   func(Game) []byte
    defaults domain.Config
    clk      clock.Clock
    log      *zap.Logger
    metrics  *Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for tickers and engines.
func WithClock(c clock.Clock) Option { return func(s *Service) { s.clk = c } }

// WithLogger sets the service logger; engines get a named child.
func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

// WithDefaults sets the config new games start with.
func WithDefaults(cfg domain.Config) Option { return func(s *Service) { s.defaults = cfg } }

// WithMetrics replaces the service's metrics.
func WithMetrics(m *Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithRenderer sets the broadcast renderer.
func WithRenderer(renderer func(Game) []byte) Option {
    return func(s *Service) { s.render = renderer }
}

// NewService creates a service. Without a renderer broadcasts carry no payload.
func NewService(opts ...Option) *Service {
    s := &Service{
        sessions: make(map[string]*session),
        subs:     make(map[string]map[*subscriber]struct{}),
        defaults: domain.DefaultConfig(),
        clk:      clock.New(),
        log:      zap.NewNop(),
    }
    for _, opt := range opts {
        opt(s)
    }
    if s.render == nil {
        s.render = func(Game) []byte { return nil }
    }
    if s.metrics == nil {
        s.metrics = NewMetrics(nil)
    }
    return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(Game) []byte) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if renderer == nil {
        s.render = func(Game) []byte { return nil }
        return
    }
    s.render = renderer
}

// Metrics returns the service's collectors.
func (s *Service) Metrics() *Metrics { return s.metrics }

// Clock returns the service's time source.
func (s *Service) Clock() clock.Clock { return s.clk }

// Defaults returns the config new games start with.
func (s *Service) Defaults() domain.Config { return s.defaults }

// CreateGame starts a game with the default config and its 1 Hz clock driver.
func (s *Service) CreateGame() (*Game, error) {
    return s.CreateGameWith(s.defaults)
}

// CreateGameWith starts a game with cfg.
func (s *Service) CreateGameWith(cfg domain.Config) (*Game, error) {
    if err := cfg.Validate(); err != nil {
        return nil, err
    }
    id := uuid.NewString()
    now := s.clk.Now()
    sess := &session{id: id, created: now, updated: now}
    sess.eng = engine.New(cfg,
        engine.WithClock(s.clk),
        engine.WithLogger(s.log.Named("engine").With(zap.String("game", id))),
        engine.WithObserver(func(snap engine.Snapshot) { s.broadcast(id, snap) }),
    )

    ctx, cancel := context.WithCancel(context.Background())
    sess.stop = cancel
    ticker := s.clk.Ticker(TickInterval)
    go s.drive(ctx, ticker, sess.eng)

    s.mu.Lock()
    s.sessions[id] = sess
    s.mu.Unlock()

    s.metrics.gamesCreated.Inc()
    s.metrics.gamesActive.Inc()
    s.log.Info("game created", zap.String("game", id),
        zap.Stringer("opponent", cfg.Opponent), zap.Stringer("difficulty", cfg.AIDifficulty))
    return &Game{ID: id, Snapshot: sess.eng.Snapshot(), Created: now, Updated: now}, nil
}

// drive is the periodic signal source for one engine.
func (s *Service) drive(ctx context.Context, ticker *clock.Ticker, eng *engine.Engine) {
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            eng.Tick()
        }
    }
}

// Get returns a copy of the game if present.
func (s *Service) Get(id string) (*Game, bool) {
    sess, ok := s.lookup(id)
    if !ok {
        return nil, false
    }
    return s.view(sess), true
}

// Move plays the current player's mark at idx. While the computer is to
// play it returns the unchanged game and ErrNotYourTurn.
func (s *Service) Move(id string, idx int) (*Game, error) {
    sess, ok := s.lookup(id)
    if !ok {
        return nil, ErrNotFound
    }
    if sess.eng.Snapshot().AITurn() {
        return s.view(sess), ErrNotYourTurn
    }
    return s.command(id, "move", func(e *engine.Engine) { e.MakeMove(idx) })
}

// Undo rewinds the last move (and the computer's reply).
func (s *Service) Undo(id string) (*Game, error) {
    return s.command(id, "undo", (*engine.Engine).UndoLastMove)
}

// Reset starts a new round.
func (s *Service) Reset(id string) (*Game, error) {
    return s.command(id, "reset", (*engine.Engine).ResetBoard)
}

// NewMatch zeroes the score and starts a new round.
func (s *Service) NewMatch(id string) (*Game, error) {
    return s.command(id, "new_match", (*engine.Engine).NewMatch)
}

// ToggleTimer pauses or resumes the turn clock.
func (s *Service) ToggleTimer(id string) (*Game, error) {
    return s.command(id, "toggle_timer", (*engine.Engine).ToggleTimer)
}

// Configure validates and installs cfg.
func (s *Service) Configure(id string, cfg domain.Config) (*Game, error) {
    if err := cfg.Validate(); err != nil {
        return nil, err
    }
    return s.command(id, "configure", func(e *engine.Engine) { e.UpdateConfig(cfg) })
}

// End stops a game's clock and pending computer move and forgets it.
func (s *Service) End(id string) error {
    s.mu.Lock()
    sess, ok := s.sessions[id]
    if ok {
        delete(s.sessions, id)
    }
    subs := s.subs[id]
    delete(s.subs, id)
    s.mu.Unlock()
    if !ok {
        return ErrNotFound
    }
    s.shutdown(sess)
    for sub := range subs {
        sub.close()
    }
    s.metrics.subscribers.Sub(float64(len(subs)))
    return nil
}

// Close ends every game.
func (s *Service) Close() {
    s.mu.Lock()
    ids := make([]string, 0, len(s.sessions))
    for id := range s.sessions {
        ids = append(ids, id)
    }
    s.mu.Unlock()
    for _, id := range ids {
        _ = s.End(id)
    }
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.sessions[id]; !ok {
        return nil, func() {}, ErrNotFound
    }
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    sub := &subscriber{ch: make(chan []byte, 1)}
    set[sub] = struct{}{}
    s.metrics.subscribers.Inc()

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            s.removeSubLocked(id, sub)
            s.mu.Unlock()
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub, nil
}

// command runs fn against the game's engine. The service lock is never held
// while the engine runs, since the engine's observer calls back into broadcast.
func (s *Service) command(id, name string, fn func(*engine.Engine)) (*Game, error) {
    sess, ok := s.lookup(id)
    if !ok {
        return nil, ErrNotFound
    }
    fn(sess.eng)
    s.metrics.commands.WithLabelValues(name).Inc()
    return s.view(sess), nil
}

func (s *Service) lookup(id string) (*session, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    sess, ok := s.sessions[id]
    return sess, ok
}

func (s *Service) view(sess *session) *Game {
    snap := sess.eng.Snapshot()
    s.mu.Lock()
    updated := sess.updated
    s.mu.Unlock()
    return &Game{ID: sess.id, Snapshot: snap, Created: sess.created, Updated: updated}
}

func (s *Service) shutdown(sess *session) {
    sess.stop()
    sess.eng.Stop()
    s.metrics.gamesActive.Dec()
    s.log.Info("game ended", zap.String("game", sess.id))
}

// broadcast fans a changed snapshot out to subscribers, dropping any that
// are too slow to take it.
func (s *Service) broadcast(id string, snap engine.Snapshot) {
    s.mu.Lock()
    sess, ok := s.sessions[id]
    if !ok {
        s.mu.Unlock()
        return
    }
    sess.updated = s.clk.Now()
    g := Game{ID: id, Snapshot: snap, Created: sess.created, Updated: sess.updated}
    subs := s.copySubsLocked(id)
    render := s.render
    s.mu.Unlock()

    payload := render(g)
    var toDrop []*subscriber
    for sub := range subs {
        if !sub.offer(payload) {
            toDrop = append(toDrop, sub)
        }
    }
    if len(toDrop) > 0 {
        s.mu.Lock()
        for _, sub := range toDrop {
            s.removeSubLocked(id, sub)
        }
        s.mu.Unlock()
        s.metrics.dropped.Add(float64(len(toDrop)))
        s.log.Debug("dropped slow subscribers", zap.String("game", id), zap.Int("count", len(toDrop)))
    }
}

func (s *Service) removeSubLocked(id string, sub *subscriber) {
    set, ok := s.subs[id]
    if !ok {
        return
    }
    if _, ok := set[sub]; ok {
        delete(set, sub)
        s.metrics.subscribers.Dec()
    }
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
    out := make(map[*subscriber]struct{})
    if set, ok := s.subs[id]; ok {
        for k := range set {
            out[k] = struct{}{}
        }
    }
    return out
}

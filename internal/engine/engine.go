// Package engine runs one tic-tac-toe match: board, turn clock, score,
// undo and the computer opponent.
//
// Every command is serialized by a mutex and is a silent no-op when its
// preconditions fail. The only work that outlives a command is the computer's
// move, armed on a clock.Clock timer after AIMoveDelay and cancelled by any
// command that could invalidate it.
package engine

import (
    "sync"

    "github.com/benbjohnson/clock"
    "go.uber.org/zap"

    "github.com/jaminalder/tictactoe-hotseat/internal/ai"
    "github.com/jaminalder/tictactoe-hotseat/internal/domain"
)

// StrategyFactory builds the computer strategy for a difficulty.
type StrategyFactory func(d domain.Difficulty, mark domain.Player) ai.Strategy

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for the deferred computer move.
func WithClock(c clock.Clock) Option { return func(e *Engine) { e.clk = c } }

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

// WithStrategies replaces ai.New.
func WithStrategies(f StrategyFactory) Option { return func(e *Engine) { e.newStrategy = f } }

// WithObserver registers fn to receive every changed snapshot. fn runs while
// the engine is locked and must not call back into the Engine.
func WithObserver(fn func(Snapshot)) Option { return func(e *Engine) { e.observe = fn } }

// Engine is safe for concurrent use.
type Engine struct {
    mu sync.Mutex

    cfg       domain.Config
    board     domain.Board
    state     domain.GameState
    match     domain.MatchState
    score     domain.Score
    countdown domain.Clock
    history   domain.History

    clk         clock.Clock
    newStrategy StrategyFactory
    strategy    ai.Strategy
    pending     *clock.Timer
    generation  uint64

    observe   func(Snapshot)
    published Snapshot
    log       *zap.Logger
}

// New starts a match with cfg. An invalid cfg is replaced by the defaults.
func New(cfg domain.Config, opts ...Option) *Engine {
    e := &Engine{
        clk:         clock.New(),
        newStrategy: ai.New,
        log:         zap.NewNop(),
    }
    for _, opt := range opts {
        opt(e)
    }
    if err := cfg.Validate(); err != nil {
        e.log.Warn("invalid config, using defaults", zap.Error(err))
        cfg = domain.DefaultConfig()
    }
    e.cfg = cfg
    e.strategy = e.newStrategy(cfg.AIDifficulty, domain.AIMark)
    e.countdown = domain.NewClock(cfg.MoveTimeLimit)
    e.newMatch()
    e.published = e.snapshot()
    return e
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
    e.mu.Lock()
    defer e.mu.Unlock()
    return e.snapshot()
}

// IsHighlightedCell reports whether idx is part of the current winning line.
func (e *Engine) IsHighlightedCell(idx int) bool {
    e.mu.Lock()
    defer e.mu.Unlock()
    win, ok := e.state.(domain.Win)
    return ok && win.Line.Contains(idx)
}

// CanUndo reports whether UndoLastMove would do anything.
func (e *Engine) CanUndo() bool {
    e.mu.Lock()
    defer e.mu.Unlock()
    return e.canUndo()
}

// MakeMove places the current player's mark at idx.
func (e *Engine) MakeMove(idx int) { e.do(func() { e.makeMove(idx) }) }

// Tick advances the turn clock by one second; the periodic driver calls it at 1 Hz.
func (e *Engine) Tick() { e.do(e.tick) }

// ToggleTimer pauses or resumes the turn clock without resetting it.
func (e *Engine) ToggleTimer() { e.do(e.toggleTimer) }

// ResetBoard starts a new round, keeping score and match state.
func (e *Engine) ResetBoard() { e.do(e.resetBoard) }

// NewMatch zeroes the score and starts a new round.
func (e *Engine) NewMatch() { e.do(e.newMatch) }

// UndoLastMove rewinds to the human's last decision point.
func (e *Engine) UndoLastMove() { e.do(e.undo) }

// UpdateConfig installs cfg. Changing the opponent, difficulty or target score
// starts a new match; anything else only resets the board.
func (e *Engine) UpdateConfig(cfg domain.Config) { e.do(func() { e.updateConfig(cfg) }) }

// Stop cancels a pending computer move. The engine stays usable.
func (e *Engine) Stop() { e.do(e.cancelAI) }

func (e *Engine) do(fn func()) {
    e.mu.Lock()
    defer e.mu.Unlock()
    fn()
    e.publish()
}

func (e *Engine) snapshot() Snapshot {
    return Snapshot{
        Config:       e.cfg,
        Board:        e.board,
        State:        e.state,
        Match:        e.match,
        TimerEnabled: e.countdown.Enabled(),
        SecondsLeft:  e.countdown.SecondsLeft(),
        Score:        e.score,
        CanUndo:      e.canUndo(),
        AIPending:    e.pending != nil,
    }
}

func (e *Engine) publish() {
    snap := e.snapshot()
    if snap == e.published {
        return
    }
    e.published = snap
    if e.observe != nil {
        e.observe(snap)
    }
}

func (e *Engine) makeMove(idx int) {
    if e.match.Finished() || !domain.InBounds(idx) {
        return
    }
    cur, ok := e.state.(domain.Playing)
    if !ok || e.board[idx] != domain.Empty {
        return
    }

    e.cancelAI()
    p := cur.Current
    e.board[idx] = p
    e.history.Record(idx, p)

    if line, ok := domain.WinningLine(p, e.board); ok {
        e.score.Add(p)
        e.state = domain.Win{Winner: p, Line: line}
        e.log.Debug("round won", zap.Stringer("winner", p), zap.Int("x", e.score.XWins), zap.Int("o", e.score.OWins))
        if e.score.Of(p) >= e.cfg.TargetScore {
            e.match = domain.MatchOver{Winner: p}
            e.log.Debug("match won", zap.Stringer("winner", p))
        }
        return
    }
    if e.board.Full() {
        e.state = domain.Draw{}
        e.log.Debug("round drawn")
        return
    }
    e.passTurn(p.Other())
}

func (e *Engine) tick() {
    if e.match.Finished() || !e.countdown.Enabled() {
        return
    }
    cur, ok := e.state.(domain.Playing)
    if !ok || !domain.IsClockSubject(cur.Current, e.cfg) {
        return
    }
    e.countdown.Tick()
    if !e.countdown.Expired() {
        return
    }
    e.cancelAI()
    e.log.Debug("turn timed out", zap.Stringer("player", cur.Current))
    e.passTurn(cur.Current.Other())
}

// passTurn hands the move to next, restarting the clock if next is timed.
func (e *Engine) passTurn(next domain.Player) {
    e.state = domain.Playing{Current: next}
    if domain.IsClockSubject(next, e.cfg) {
        e.countdown.Reset(e.cfg.MoveTimeLimit)
    }
    e.scheduleAI()
}

func (e *Engine) toggleTimer() {
    e.countdown.SetEnabled(!e.countdown.Enabled())
    if e.countdown.Enabled() {
        e.scheduleAI()
    }
}

func (e *Engine) resetBoard() {
    e.cancelAI()
    e.countdown.SetEnabled(true)
    e.board = domain.Board{}
    e.state = domain.Playing{Current: domain.X}
    e.countdown.Reset(e.cfg.MoveTimeLimit)
    e.history.Reset()
    e.scheduleAI()
}

func (e *Engine) newMatch() {
    e.cancelAI()
    e.score = domain.Score{}
    e.match = domain.InProgress{}
    e.resetBoard()
}

func (e *Engine) canUndo() bool {
    return !e.match.Finished() && !e.state.Over() && !e.history.IsEmpty()
}

func (e *Engine) undo() {
    if !e.canUndo() {
        return
    }
    e.cancelAI()

    var again domain.Player
    if e.cfg.Opponent == domain.AI {
        // drop the computer's reply first, if it got to play
        if last, _ := e.history.Last(); last.Player == domain.AIMark {
            again = e.undoOne().Player
        }
        if m := e.undoOne(); m.Player != domain.Empty {
            again = m.Player
        }
    } else {
        again = e.undoOne().Player
    }

    e.state = domain.Playing{Current: again}
    e.countdown.Reset(e.cfg.MoveTimeLimit)
    e.scheduleAI()
}

func (e *Engine) undoOne() domain.Move {
    m, ok := e.history.PopLast()
    if !ok {
        return domain.Move{}
    }
    e.board[m.Index] = domain.Empty
    return m
}

func (e *Engine) updateConfig(cfg domain.Config) {
    if cfg == e.cfg {
        return
    }
    if err := cfg.Validate(); err != nil {
        e.log.Debug("config rejected", zap.Error(err))
        return
    }
    e.cancelAI()
    old := e.cfg
    e.cfg = cfg
    if cfg.AIDifficulty != old.AIDifficulty {
        e.strategy = e.newStrategy(cfg.AIDifficulty, domain.AIMark)
    }
    if cfg.Opponent != old.Opponent || cfg.AIDifficulty != old.AIDifficulty || cfg.TargetScore != old.TargetScore {
        e.newMatch()
        return
    }
    e.resetBoard()
}

func (e *Engine) aiToMove() bool {
    if e.cfg.Opponent != domain.AI || !e.countdown.Enabled() || e.match.Finished() {
        return false
    }
    cur, ok := e.state.(domain.Playing)
    return ok && cur.Current == domain.AIMark
}

// scheduleAI arms the computer's move unless one is already pending.
func (e *Engine) scheduleAI() {
    if e.pending != nil || !e.aiToMove() {
        return
    }
    gen := e.generation
    delay := e.cfg.AIMoveDelay
    e.pending = e.clk.AfterFunc(delay, func() { e.fireAI(gen) })
    e.log.Debug("ai move scheduled", zap.Duration("delay", delay), zap.Uint64("generation", gen))
}

// cancelAI invalidates any armed move. A timer that already fired and is
// waiting on the lock sees a newer generation and drops its move.
func (e *Engine) cancelAI() {
    e.generation++
    if e.pending == nil {
        return
    }
    e.pending.Stop()
    e.pending = nil
    e.log.Debug("ai move cancelled", zap.Uint64("generation", e.generation))
}

func (e *Engine) fireAI(gen uint64) {
    e.mu.Lock()
    defer e.mu.Unlock()
    if gen != e.generation {
        e.log.Debug("stale ai move dropped", zap.Uint64("generation", gen))
        return
    }
    e.pending = nil
    if e.aiToMove() {
        if idx, ok := e.strategy.ChooseMove(e.board); ok {
            e.log.Debug("ai move", zap.Int("cell", idx), zap.Stringer("difficulty", e.cfg.AIDifficulty))
            e.makeMove(idx)
        }
    }
    e.publish()
}

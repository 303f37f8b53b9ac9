// Package term is the terminal front end: a line command parser and a
// Snapshot renderer.
package term

import (
    "errors"
    "fmt"
    "strconv"
    "strings"
    "time"

    "github.com/jaminalder/tictactoe-hotseat/internal/domain"
    "github.com/jaminalder/tictactoe-hotseat/internal/engine"
)

// Errors returned by Parse.
var (
    ErrUnknownCommand = errors.New("unknown command")
    ErrBadArgument    = errors.New("bad argument")
)

// Kind identifies a parsed command.
type Kind uint8

const (
    Move Kind = iota
    Undo
    Reset
    NewMatch
    ToggleTimer
    SetOpponent
    SetDifficulty
    SetLimit
    SetTarget
    SetDelay
    Help
    Quit
)

// Command is one parsed input line. Only the field matching Kind is set.
type Command struct {
    Kind       Kind
    Cell       int // board index, 0-8
    Opponent   domain.Opponent
    Difficulty domain.Difficulty
    N          int
    Delay      time.Duration
}

// Usage lists the accepted commands.
const Usage = `commands:
  1-9                 place a mark (cells numbered left to right, top to bottom)
  u, undo             take back the last move
  r, reset            start a new round
  n, new              start a new match
  t, timer            pause or resume the turn clock
  vs human|ai         choose the opponent
  ai <difficulty>     play the computer at random, heuristic or minimax
  limit <seconds>     seconds per turn
  target <wins>       round wins needed to take the match
  delay <duration>    computer thinking time, e.g. 450ms
  h, help             show this help
  q, quit             leave`

// Parse reads one command line.
func Parse(line string) (Command, error) {
    fields := strings.Fields(strings.ToLower(line))
    if len(fields) == 0 {
        return Command{}, fmt.Errorf("%w: empty line", ErrUnknownCommand)
    }
    name, args := fields[0], fields[1:]

    if n, err := strconv.Atoi(name); err == nil {
        if n < 1 || n > 9 || len(args) > 0 {
            return Command{}, fmt.Errorf("%w: cell must be 1-9, got %q", ErrBadArgument, line)
        }
        return Command{Kind: Move, Cell: n - 1}, nil
    }

    simple := map[string]Kind{
        "u": Undo, "undo": Undo,
        "r": Reset, "reset": Reset,
        "n": NewMatch, "new": NewMatch,
        "t": ToggleTimer, "timer": ToggleTimer,
        "h": Help, "help": Help, "?": Help,
        "q": Quit, "quit": Quit, "exit": Quit,
    }
    if k, ok := simple[name]; ok {
        if len(args) > 0 {
            return Command{}, fmt.Errorf("%w: %s takes no argument", ErrBadArgument, name)
        }
        return Command{Kind: k}, nil
    }

    if len(args) != 1 {
        if isArgCommand(name) {
            return Command{}, fmt.Errorf("%w: %s takes one argument", ErrBadArgument, name)
        }
        return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
    }
    arg := args[0]
    switch name {
    case "vs":
        o, err := domain.ParseOpponent(arg)
        if err != nil {
            return Command{}, fmt.Errorf("%w: %w", ErrBadArgument, err)
        }
        return Command{Kind: SetOpponent, Opponent: o}, nil
    case "ai":
        d, err := domain.ParseDifficulty(arg)
        if err != nil {
            return Command{}, fmt.Errorf("%w: %w", ErrBadArgument, err)
        }
        return Command{Kind: SetDifficulty, Difficulty: d}, nil
    case "limit", "target":
        n, err := strconv.Atoi(arg)
        if err != nil || n <= 0 {
            return Command{}, fmt.Errorf("%w: %s needs a positive number, got %q", ErrBadArgument, name, arg)
        }
        if name == "limit" {
            return Command{Kind: SetLimit, N: n}, nil
        }
        return Command{Kind: SetTarget, N: n}, nil
    case "delay":
        d, err := time.ParseDuration(arg)
        if err != nil || d < 0 {
            return Command{}, fmt.Errorf("%w: delay needs a duration like 450ms, got %q", ErrBadArgument, arg)
        }
        return Command{Kind: SetDelay, Delay: d}, nil
    }
    return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

func isArgCommand(name string) bool {
    switch name {
    case "vs", "ai", "limit", "target", "delay":
        return true
    }
    return false
}

// Game is the part of the engine a terminal session drives.
type Game interface {
    Snapshot() engine.Snapshot
    MakeMove(idx int)
    UndoLastMove()
    ResetBoard()
    NewMatch()
    ToggleTimer()
    UpdateConfig(cfg domain.Config)
}

// Apply runs c against g. Help and Quit are left to the caller. Moves typed
// while the computer is to play are ignored.
func Apply(g Game, c Command) {
    switch c.Kind {
    case Move:
        if g.Snapshot().AITurn() {
            return
        }
        g.MakeMove(c.Cell)
    case Undo:
        g.UndoLastMove()
    case Reset:
        g.ResetBoard()
    case NewMatch:
        g.NewMatch()
    case ToggleTimer:
        g.ToggleTimer()
    case SetOpponent, SetDifficulty, SetLimit, SetTarget, SetDelay:
        cfg := g.Snapshot().Config
        switch c.Kind {
        case SetOpponent:
            cfg.Opponent = c.Opponent
        case SetDifficulty:
            cfg.Opponent = domain.AI
            cfg.AIDifficulty = c.Difficulty
        case SetLimit:
            cfg.MoveTimeLimit = c.N
        case SetTarget:
            cfg.TargetScore = c.N
        case SetDelay:
            cfg.AIMoveDelay = c.Delay
        }
        g.UpdateConfig(cfg)
    }
}

package domain

import (
    "errors"
    "fmt"
    "strings"
    "time"
)

// Errors returned by config parsing and validation.
var (
    ErrInvalidConfig     = errors.New("invalid config")
    ErrUnknownOpponent   = errors.New("unknown opponent")
    ErrUnknownDifficulty = errors.New("unknown ai difficulty")
)

// Opponent selects who plays O.
type Opponent uint8

const (
    Human Opponent = iota
    AI
)

// AIMark is the side the computer plays; the human is always X.
const AIMark = O

func (o Opponent) String() string {
    switch o {
    case Human:
        return "human"
    case AI:
        return "ai"
    default:
        return fmt.Sprintf("opponent(%d)", uint8(o))
    }
}

// ParseOpponent accepts "human" or "ai", case-insensitively.
func ParseOpponent(s string) (Opponent, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "human":
        return Human, nil
    case "ai", "computer":
        return AI, nil
    }
    return 0, fmt.Errorf("%w: %q", ErrUnknownOpponent, s)
}

func (o Opponent) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Opponent) UnmarshalText(b []byte) error {
    v, err := ParseOpponent(string(b))
    if err != nil {
        return err
    }
    *o = v
    return nil
}

// Difficulty selects the computer strategy.
type Difficulty uint8

const (
    Random Difficulty = iota
    Heuristic
    Minimax
)

func (d Difficulty) String() string {
    switch d {
    case Random:
        return "random"
    case Heuristic:
        return "heuristic"
    case Minimax:
        return "minimax"
    default:
        return fmt.Sprintf("difficulty(%d)", uint8(d))
    }
}

// ParseDifficulty accepts "random", "heuristic" or "minimax".
func ParseDifficulty(s string) (Difficulty, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "random", "easy":
        return Random, nil
    case "heuristic", "smart":
        return Heuristic, nil
    case "minimax", "hard":
        return Minimax, nil
    }
    return 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

func (d Difficulty) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Difficulty) UnmarshalText(b []byte) error {
    v, err := ParseDifficulty(string(b))
    if err != nil {
        return err
    }
    *d = v
    return nil
}

// Config holds the match rules. It is comparable with ==.
type Config struct {
    MoveTimeLimit int           // seconds per clocked turn
    TargetScore   int           // round wins needed to take the match
    Opponent      Opponent
    AIDifficulty  Difficulty
    AIMoveDelay   time.Duration // pause before the computer commits its move
}

// DefaultConfig returns the rules a fresh game starts with.
func DefaultConfig() Config {
    return Config{
        MoveTimeLimit: 10,
        TargetScore:   3,
        Opponent:      Human,
        AIDifficulty:  Random,
        AIMoveDelay:   450 * time.Millisecond,
    }
}

// Validate checks the numeric bounds and enum ranges.
func (c Config) Validate() error {
    switch {
    case c.MoveTimeLimit <= 0:
        return fmt.Errorf("%w: move time limit must be positive, got %d", ErrInvalidConfig, c.MoveTimeLimit)
    case c.TargetScore <= 0:
        return fmt.Errorf("%w: target score must be positive, got %d", ErrInvalidConfig, c.TargetScore)
    case c.AIMoveDelay < 0:
        return fmt.Errorf("%w: ai move delay must not be negative, got %s", ErrInvalidConfig, c.AIMoveDelay)
    case c.Opponent > AI:
        return fmt.Errorf("%w: %s", ErrInvalidConfig, c.Opponent)
    case c.AIDifficulty > Minimax:
        return fmt.Errorf("%w: %s", ErrInvalidConfig, c.AIDifficulty)
    }
    return nil
}

// IsClockSubject reports whether p's turns are governed by the countdown.
// Against a human both sides are timed; against the computer only X is.
func IsClockSubject(p Player, c Config) bool {
    if c.Opponent == Human {
        return true
    }
    return p != AIMark
}

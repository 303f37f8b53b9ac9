// Package config loads the YAML settings file shared by the binaries.
package config

import (
    "bytes"
    "errors"
    "fmt"
    "io"
    "os"
    "time"

    "gopkg.in/yaml.v3"

    "github.com/jaminalder/tictactoe-hotseat/internal/domain"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

// Settings is the parsed settings file.
type Settings struct {
    Addr string
    Game domain.Config
}

// Default returns the settings used when no file is given.
func Default() Settings {
    return Settings{Addr: DefaultAddr, Game: domain.DefaultConfig()}
}

type file struct {
    Addr string   `yaml:"addr"`
    Game gameFile `yaml:"game"`
}

type gameFile struct {
    MoveTimeLimit int               `yaml:"move_time_limit"`
    TargetScore   int               `yaml:"target_score"`
    Opponent      domain.Opponent   `yaml:"opponent"`
    AIDifficulty  domain.Difficulty `yaml:"ai_difficulty"`
    AIMoveDelay   time.Duration     `yaml:"ai_move_delay"`
}

// Load reads and parses path. An empty path yields Default().
func Load(path string) (Settings, error) {
    if path == "" {
        return Default(), nil
    }
    data, err := os.ReadFile(path)
    if err != nil {
        return Settings{}, fmt.Errorf("read config: %w", err)
    }
    s, err := Parse(data)
    if err != nil {
        return Settings{}, fmt.Errorf("%s: %w", path, err)
    }
    return s, nil
}

// Parse decodes YAML settings. Missing keys keep their defaults; unknown keys
// are an error.
func Parse(data []byte) (Settings, error) {
    d := Default()
    f := file{
        Addr: d.Addr,
        Game: gameFile{
            MoveTimeLimit: d.Game.MoveTimeLimit,
            TargetScore:   d.Game.TargetScore,
            Opponent:      d.Game.Opponent,
            AIDifficulty:  d.Game.AIDifficulty,
            AIMoveDelay:   d.Game.AIMoveDelay,
        },
    }
    dec := yaml.NewDecoder(bytes.NewReader(data))
    dec.KnownFields(true)
    if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
        return Settings{}, fmt.Errorf("parse config: %w", err)
    }
    s := Settings{
        Addr: f.Addr,
        Game: domain.Config{
            MoveTimeLimit: f.Game.MoveTimeLimit,
            TargetScore:   f.Game.TargetScore,
            Opponent:      f.Game.Opponent,
            AIDifficulty:  f.Game.AIDifficulty,
            AIMoveDelay:   f.Game.AIMoveDelay,
        },
    }
    if err := s.Validate(); err != nil {
        return Settings{}, err
    }
    return s, nil
}

// Validate checks the address and the game rules.
func (s Settings) Validate() error {
    if s.Addr == "" {
        return fmt.Errorf("%w: addr must not be empty", domain.ErrInvalidConfig)
    }
    return s.Game.Validate()
}

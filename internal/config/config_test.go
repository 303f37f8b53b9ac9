package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/jaminalder/tictactoe-hotseat/internal/domain"
)

func TestEmptyPathYieldsDefaults(t *testing.T) {
    s, err := Load("")
    require.NoError(t, err)
    assert.Equal(t, Default(), s)
    assert.Equal(t, ":8080", s.Addr)
}

func TestParseFullFile(t *testing.T) {
    s, err := Parse([]byte(`
addr: "127.0.0.1:9000"
game:
  move_time_limit: 15
  target_score: 5
  opponent: ai
  ai_difficulty: minimax
  ai_move_delay: 250ms
`))
    require.NoError(t, err)
    assert.Equal(t, Settings{
        Addr: "127.0.0.1:9000",
        Game: domain.Config{
            MoveTimeLimit: 15,
            TargetScore:   5,
            Opponent:      domain.AI,
            AIDifficulty:  domain.Minimax,
            AIMoveDelay:   250 * time.Millisecond,
        },
    }, s)
}

func TestMissingKeysKeepDefaults(t *testing.T) {
    s, err := Parse([]byte("game:\n  target_score: 7\n"))
    require.NoError(t, err)
    want := domain.DefaultConfig()
    want.TargetScore = 7
    assert.Equal(t, want, s.Game)
    assert.Equal(t, DefaultAddr, s.Addr)
}

func TestEmptyDocumentYieldsDefaults(t *testing.T) {
    s, err := Parse(nil)
    require.NoError(t, err)
    assert.Equal(t, Default(), s)
}

func TestParseErrors(t *testing.T) {
    cases := []struct {
        name string
        yaml string
        is   error
    }{
        {"zero limit", "game:\n  move_time_limit: 0\n", domain.ErrInvalidConfig},
        {"negative delay", "game:\n  ai_move_delay: -1s\n", domain.ErrInvalidConfig},
        {"empty addr", "addr: \"\"\n", domain.ErrInvalidConfig},
        {"unknown opponent", "game:\n  opponent: robot\n", domain.ErrUnknownOpponent},
        {"unknown difficulty", "game:\n  ai_difficulty: godlike\n", domain.ErrUnknownDifficulty},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            _, err := Parse([]byte(tc.yaml))
            require.Error(t, err)
            assert.ErrorIs(t, err, tc.is)
        })
    }
}

func TestUnknownKeyRejected(t *testing.T) {
    _, err := Parse([]byte("port: 80\n"))
    assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
    path := filepath.Join(t.TempDir(), "tictactoe.yaml")
    require.NoError(t, os.WriteFile(path, []byte("game:\n  opponent: human\n  ai_difficulty: smart\n"), 0o600))
    s, err := Load(path)
    require.NoError(t, err)
    assert.Equal(t, domain.Heuristic, s.Game.AIDifficulty)

    _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
    assert.ErrorIs(t, err, os.ErrNotExist)
}

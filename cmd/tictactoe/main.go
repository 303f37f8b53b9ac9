// Command tictactoe plays tic-tac-toe in the terminal, hot-seat or against
// the computer.
package main

import (
    "bufio"
    "context"
    "errors"
    "flag"
    "fmt"
    "os"
    "os/signal"
    "syscall"

    "github.com/benbjohnson/clock"
    "go.uber.org/zap"
    "golang.org/x/sync/errgroup"

    "github.com/jaminalder/tictactoe-hotseat/internal/app"
    "github.com/jaminalder/tictactoe-hotseat/internal/config"
    "github.com/jaminalder/tictactoe-hotseat/internal/domain"
    "github.com/jaminalder/tictactoe-hotseat/internal/engine"
    "github.com/jaminalder/tictactoe-hotseat/internal/term"
)

var (
    configPath = flag.String("config", "", "Path to a YAML settings file")
    vsAI       = flag.String("ai", "", "Play the computer at this difficulty (random, heuristic, minimax)")
    debug      = flag.Bool("debug", false, "Debug logging to stderr")
)

var errQuit = errors.New("quit")

func main() {
    flag.Parse()
    if err := run(); err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }
}

func run() error {
    log := zap.NewNop()
    if *debug {
        var err error
        if log, err = zap.NewDevelopment(); err != nil {
            return fmt.Errorf("logger: %w", err)
        }
    }
    defer func() { _ = log.Sync() }()

    settings, err := config.Load(*configPath)
    if err != nil {
        return err
    }
    cfg := settings.Game
    if *vsAI != "" {
        d, err := domain.ParseDifficulty(*vsAI)
        if err != nil {
            return err
        }
        cfg.Opponent, cfg.AIDifficulty = domain.AI, d
    }

    // latest snapshot wins; the observer runs under the engine lock
    updates := make(chan engine.Snapshot, 1)
    observe := func(s engine.Snapshot) {
        for {
            select {
            case updates <- s:
                return
            default:
                select {
                case <-updates:
                default:
                }
            }
        }
    }

    clk := clock.New()
    e := engine.New(cfg, engine.WithClock(clk), engine.WithLogger(log), engine.WithObserver(observe))
    defer e.Stop()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    lines := make(chan string)
    go func() {
        sc := bufio.NewScanner(os.Stdin)
        for sc.Scan() {
            lines <- sc.Text()
        }
        close(lines)
    }()

    notes := make(chan string, 1)
    r := term.NewRenderer(os.Stdout)
    g, ctx := errgroup.WithContext(ctx)

    g.Go(func() error {
        ticker := clk.Ticker(app.TickInterval)
        defer ticker.Stop()
        for {
            select {
            case <-ctx.Done():
                return nil
            case <-ticker.C:
                e.Tick()
            }
        }
    })

    g.Go(func() error {
        draw := func(s engine.Snapshot, note string) error {
            r.Clear()
            if err := r.Render(s); err != nil {
                return err
            }
            if note != "" {
                fmt.Println(note)
            }
            fmt.Print("> ")
            return nil
        }
        if err := draw(e.Snapshot(), "type h for help"); err != nil {
            return err
        }
        for {
            select {
            case <-ctx.Done():
                return nil
            case s := <-updates:
                if err := draw(s, ""); err != nil {
                    return err
                }
            case n := <-notes:
                if err := draw(e.Snapshot(), n); err != nil {
                    return err
                }
            }
        }
    })

    g.Go(func() error {
        note := func(msg string) {
            select {
            case notes <- msg:
            case <-ctx.Done():
            }
        }
        for {
            select {
            case <-ctx.Done():
                return nil
            case line, ok := <-lines:
                if !ok {
                    return errQuit
                }
                cmd, err := term.Parse(line)
                switch {
                case err != nil:
                    note(err.Error())
                case cmd.Kind == term.Quit:
                    return errQuit
                case cmd.Kind == term.Help:
                    note(term.Usage)
                default:
                    term.Apply(e, cmd)
                }
            }
        }
    })

    if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
        return err
    }
    fmt.Println()
    return nil
}

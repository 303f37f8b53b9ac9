// Command tictactoe-server serves hot-seat and vs-computer games over HTTP.
package main

import (
    "context"
    "errors"
    "flag"
    "fmt"
    "net"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "go.uber.org/zap"
    "golang.org/x/sync/errgroup"

    "github.com/jaminalder/tictactoe-hotseat/internal/app"
    "github.com/jaminalder/tictactoe-hotseat/internal/config"
    "github.com/jaminalder/tictactoe-hotseat/internal/web"
)

var (
    configPath = flag.String("config", "", "Path to a YAML settings file")
    addr       = flag.String("addr", "", "Listen address (overrides the settings file)")
    debug      = flag.Bool("debug", false, "Development logging at debug level")
)

const shutdownTimeout = 5 * time.Second

func main() {
    flag.Parse()
    if err := run(); err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }
}

func newLogger() (*zap.Logger, error) {
    if *debug {
        return zap.NewDevelopment()
    }
    return zap.NewProduction()
}

func run() error {
    log, err := newLogger()
    if err != nil {
        return fmt.Errorf("logger: %w", err)
    }
    defer func() { _ = log.Sync() }()

    settings, err := config.Load(*configPath)
    if err != nil {
        return err
    }
    if *addr != "" {
        settings.Addr = *addr
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    svc := app.NewService(app.WithLogger(log), app.WithDefaults(settings.Game))
    defer svc.Close()
    srv := &http.Server{
        Addr:              settings.Addr,
        Handler:           web.NewServer(svc, log.Named("http")),
        ReadHeaderTimeout: 5 * time.Second,
        // event streams end with the process context
        BaseContext: func(net.Listener) context.Context { return ctx },
    }

    g, ctx := errgroup.WithContext(ctx)
    g.Go(func() error {
        log.Info("listening", zap.String("addr", settings.Addr),
            zap.Stringer("opponent", settings.Game.Opponent),
            zap.Stringer("difficulty", settings.Game.AIDifficulty))
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            return err
        }
        return nil
    })
    g.Go(func() error {
        <-ctx.Done()
        log.Info("shutting down")
        sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
        defer cancel()
        return srv.Shutdown(sctx)
    })
    return g.Wait()
}

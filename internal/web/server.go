package web

import (
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "go.uber.org/zap"

    "github.com/jaminalder/tictactoe-hotseat/internal/app"
)

// NewServer wires routes and returns an http.Handler. It also installs the
// board fragment as the service's broadcast renderer.
func NewServer(s *app.Service, log *zap.Logger) http.Handler {
    if log == nil {
        log = zap.NewNop()
    }
    r := chi.NewRouter()
    h := &handlers{svc: s, tpl: loadTemplates(), log: log}
    s.SetRenderer(func(g app.Game) []byte { return h.renderBoard(g, "") })

    r.Use(middleware.RequestID)
    r.Use(requestLogger(log))
    r.Use(middleware.Recoverer)

    r.Get("/", h.index)
    r.Post("/game", h.create)
    r.Handle("/metrics", promhttp.HandlerFor(s.Metrics().Gatherer(), promhttp.HandlerOpts{}))
    r.Route("/game/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Post("/move", h.move)
        r.Post("/undo", h.undo)
        r.Post("/reset", h.reset)
        r.Post("/new-match", h.newMatch)
        r.Post("/timer", h.toggleTimer)
        r.Post("/config", h.configure)
        r.Get("/events", h.events)
    })
    return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
            start := time.Now()
            defer func() {
                log.Debug("request",
                    zap.String("method", r.Method),
                    zap.String("path", r.URL.Path),
                    zap.Int("status", ww.Status()),
                    zap.Int("bytes", ww.BytesWritten()),
                    zap.Duration("took", time.Since(start)),
                    zap.String("request_id", middleware.GetReqID(r.Context())),
                )
            }()
            next.ServeHTTP(ww, r)
        })
    }
}

package web

import (
    "errors"
    "fmt"
    "html/template"
    "io"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/go-chi/chi/v5"
    "go.uber.org/zap"

    "github.com/jaminalder/tictactoe-hotseat/internal/app"
    "github.com/jaminalder/tictactoe-hotseat/internal/domain"
)

type handlers struct {
    svc *app.Service
    tpl *templates
    log *zap.Logger
}

func (h *handlers) renderBoard(g app.Game, errMsg string) []byte {
    return renderTemplate(h.tpl.board, "", newBoardView(g, errMsg))
}

func (h *handlers) writeBoard(w http.ResponseWriter, status int, g app.Game, errMsg string) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(status)
    _, _ = w.Write(h.renderBoard(g, errMsg))
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.index, "", nil))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
    _ = r.ParseForm()
    cfg, err := parseConfig(r.Form, h.svc.Defaults())
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    g, err := h.svc.CreateGameWith(cfg)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    http.Redirect(w, r, "/game/"+g.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    g, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    data := struct {
        ID        string
        BoardHTML template.HTML
    }{ID: g.ID, BoardHTML: template.HTML(h.renderBoard(*g, ""))}

    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.game, "", data))
}

func (h *handlers) move(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    before, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    _ = r.ParseForm()
    ri, errR := strconv.Atoi(r.Form.Get("r"))
    ci, errC := strconv.Atoi(r.Form.Get("c"))
    if errR != nil || errC != nil || ri < 0 || ri > 2 || ci < 0 || ci > 2 {
        h.writeBoard(w, http.StatusBadRequest, *before, "Out of bounds")
        return
    }
    g, err := h.svc.Move(id, ri*3+ci)
    if errors.Is(err, app.ErrNotYourTurn) {
        h.writeBoard(w, http.StatusConflict, *g, "Computer is to move")
        return
    }
    if err != nil {
        h.fail(w, r, err)
        return
    }
    var errMsg string
    if g.Snapshot == before.Snapshot {
        errMsg = rejection(before.Snapshot.Board[ri*3+ci], g)
    }
    h.writeBoard(w, http.StatusOK, *g, errMsg)
}

// rejection explains why a move left the game unchanged.
func rejection(cell domain.Player, g *app.Game) string {
    s := g.Snapshot
    switch {
    case s.Match.Finished():
        return "Match is over"
    case s.State.Over():
        return "Round is over"
    case cell != domain.Empty:
        return "Cell is occupied"
    default:
        return "Invalid move"
    }
}

func (h *handlers) command(fn func(string) (*app.Game, error)) http.HandlerFunc {
    return func(w http.ResponseWriter, r *http.Request) {
        g, err := fn(chi.URLParam(r, "id"))
        if err != nil {
            h.fail(w, r, err)
            return
        }
        h.writeBoard(w, http.StatusOK, *g, "")
    }
}

func (h *handlers) undo(w http.ResponseWriter, r *http.Request)  { h.command(h.svc.Undo)(w, r) }
func (h *handlers) reset(w http.ResponseWriter, r *http.Request) { h.command(h.svc.Reset)(w, r) }

func (h *handlers) newMatch(w http.ResponseWriter, r *http.Request) {
    h.command(h.svc.NewMatch)(w, r)
}

func (h *handlers) toggleTimer(w http.ResponseWriter, r *http.Request) {
    h.command(h.svc.ToggleTimer)(w, r)
}

func (h *handlers) configure(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    g, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    _ = r.ParseForm()
    cfg, err := parseConfig(r.Form, g.Snapshot.Config)
    if err == nil {
        g, err = h.svc.Configure(id, cfg)
    }
    if err != nil {
        if errors.Is(err, app.ErrNotFound) {
            http.NotFound(w, r)
            return
        }
        if cur, ok := h.svc.Get(id); ok {
            g = cur
        }
        h.writeBoard(w, http.StatusBadRequest, *g, err.Error())
        return
    }
    h.writeBoard(w, http.StatusOK, *g, "")
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
    switch {
    case errors.Is(err, app.ErrNotFound):
        http.NotFound(w, r)
    case errors.Is(err, domain.ErrInvalidConfig),
        errors.Is(err, domain.ErrUnknownOpponent),
        errors.Is(err, domain.ErrUnknownDifficulty):
        http.Error(w, err.Error(), http.StatusBadRequest)
    default:
        h.log.Error("command failed", zap.String("path", r.URL.Path), zap.Error(err))
        http.Error(w, "internal error", http.StatusInternalServerError)
    }
}

// parseConfig overlays the form's non-empty fields on base. The delay is in
// milliseconds.
func parseConfig(form map[string][]string, base domain.Config) (domain.Config, error) {
    get := func(k string) string {
        if v := form[k]; len(v) > 0 {
            return strings.TrimSpace(v[0])
        }
        return ""
    }
    cfg := base
    atoi := func(k string, dst *int) error {
        v := get(k)
        if v == "" {
            return nil
        }
        n, err := strconv.Atoi(v)
        if err != nil {
            return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidConfig, k)
        }
        *dst = n
        return nil
    }
    if err := atoi("limit", &cfg.MoveTimeLimit); err != nil {
        return base, err
    }
    if err := atoi("target", &cfg.TargetScore); err != nil {
        return base, err
    }
    var ms int
    if err := atoi("delay", &ms); err != nil {
        return base, err
    }
    if get("delay") != "" {
        cfg.AIMoveDelay = time.Duration(ms) * time.Millisecond
    }
    if v := get("opponent"); v != "" {
        o, err := domain.ParseOpponent(v)
        if err != nil {
            return base, err
        }
        cfg.Opponent = o
    }
    if v := get("difficulty"); v != "" {
        d, err := domain.ParseDifficulty(v)
        if err != nil {
            return base, err
        }
        cfg.AIDifficulty = d
    }
    if err := cfg.Validate(); err != nil {
        return base, err
    }
    return cfg, nil
}

var heartbeatInterval = 15 * time.Second

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("X-Accel-Buffering", "no")
    // In tests or non-EventSource requests, just acknowledge headers and return
    if r.Header.Get("Accept") != "text/event-stream" {
        w.WriteHeader(http.StatusOK)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        w.WriteHeader(http.StatusOK)
        return
    }
    ctx := r.Context()
    ch, unsub, err := h.svc.Subscribe(ctx, id)
    if err != nil {
        http.NotFound(w, r)
        return
    }
    defer unsub()
    ticker := h.svc.Clock().Ticker(heartbeatInterval)
    defer ticker.Stop()
    w.WriteHeader(http.StatusOK)
    flusher.Flush()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            _, _ = io.WriteString(w, ": ping\n\n")
            flusher.Flush()
        case b, ok := <-ch:
            if !ok {
                return
            }
            // SSE data lines may not contain raw newlines
            _, _ = io.WriteString(w, "event: board\n")
            for _, line := range strings.Split(string(b), "\n") {
                _, _ = fmt.Fprintf(w, "data: %s\n", line)
            }
            _, _ = io.WriteString(w, "\n")
            flusher.Flush()
        }
    }
}

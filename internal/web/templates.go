package web

import (
    "bytes"
    "html/template"
    "time"

    "github.com/jaminalder/tictactoe-hotseat/internal/app"
    "github.com/jaminalder/tictactoe-hotseat/internal/domain"
)

type templates struct {
    base  *template.Template
    game  *template.Template
    board *template.Template
    index *template.Template
}

func funcs() template.FuncMap {
    return template.FuncMap{
        "millis": func(d time.Duration) int64 { return d.Milliseconds() },
        "isAI":   func(o domain.Opponent) bool { return o == domain.AI },
    }
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
    // Define the board template within the same set so game can include it
    template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
    index := template.Must(template.Must(base.Clone()).New("content").Parse(indexTemplate))
    game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div id="board-slot" sse-swap="board" hx-swap="innerHTML">{{.BoardHTML}}</div>
</div>`))
    board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
    return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
    var buf bytes.Buffer
    var err error
    if name == "" {
        err = t.Execute(&buf, data)
    } else {
        err = t.ExecuteTemplate(&buf, name, data)
    }
    if err != nil {
        return []byte("template error: " + err.Error())
    }
    return buf.Bytes()
}

const indexTemplate = `<h1>Tic-Tac-Toe</h1>
<form action="/game" method="post">
  <label>Opponent
    <select name="opponent"><option value="human">Human</option><option value="ai">Computer</option></select>
  </label>
  <label>Difficulty
    <select name="difficulty"><option>random</option><option>heuristic</option><option>minimax</option></select>
  </label>
  <button>Create</button>
</form>`

const boardTemplate = `
<div id="board">
  <p class="status">{{.Status}}</p>
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <p class="score">X {{.Score.XWins}} : {{.Score.OWins}} O <small>(first to {{.Config.TargetScore}})</small></p>
  <p class="clock">{{if .TimerEnabled}}{{.SecondsLeft}}s left{{else}}Timer paused ({{.SecondsLeft}}s){{end}}</p>
  {{range .Rows}}
  <div class="row">
    {{range .}}
      <form hx-post="/game/{{$.ID}}/move" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="r" value="{{.Row}}">
        <input type="hidden" name="c" value="{{.Col}}">
        <button type="submit" class="cell{{if .Highlight}} win{{end}}"{{if not .Playable}} disabled{{end}}>{{.Mark}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  <div class="controls">
    <button hx-post="/game/{{.ID}}/undo" hx-target="#board" hx-swap="outerHTML"{{if not .CanUndo}} disabled{{end}}>Undo</button>
    <button hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML">New round</button>
    <button hx-post="/game/{{.ID}}/new-match" hx-target="#board" hx-swap="outerHTML">New match</button>
    <button hx-post="/game/{{.ID}}/timer" hx-target="#board" hx-swap="outerHTML">{{if .TimerEnabled}}Pause timer{{else}}Resume timer{{end}}</button>
  </div>
  <form class="config" hx-post="/game/{{.ID}}/config" hx-target="#board" hx-swap="outerHTML" method="post">
    <input type="number" name="limit" min="1" value="{{.Config.MoveTimeLimit}}">
    <input type="number" name="target" min="1" value="{{.Config.TargetScore}}">
    <select name="opponent">
      <option value="human"{{if not (isAI .Config.Opponent)}} selected{{end}}>Human</option>
      <option value="ai"{{if isAI .Config.Opponent}} selected{{end}}>Computer</option>
    </select>
    <select name="difficulty">
      {{$d := .Config.AIDifficulty.String}}
      {{range .Difficulties}}<option{{if eq . $d}} selected{{end}}>{{.}}</option>{{end}}
    </select>
    <input type="number" name="delay" min="0" value="{{millis .Config.AIMoveDelay}}">
    <button type="submit">Apply</button>
  </form>
</div>
`

type cellView struct {
    Row, Col  int
    Mark      string
    Highlight bool
    Playable  bool
}

// boardView is the template model for one game.
type boardView struct {
    ID           string
    Status       string
    Error        string
    Rows         [3][3]cellView
    Score        domain.Score
    Config       domain.Config
    SecondsLeft  int
    TimerEnabled bool
    CanUndo      bool
    Difficulties []string
}

func newBoardView(g app.Game, errMsg string) boardView {
    s := g.Snapshot
    v := boardView{
        ID:           g.ID,
        Status:       s.Status(),
        Error:        errMsg,
        Score:        s.Score,
        Config:       s.Config,
        SecondsLeft:  s.SecondsLeft,
        TimerEnabled: s.TimerEnabled,
        CanUndo:      s.CanUndo,
        Difficulties: []string{domain.Random.String(), domain.Heuristic.String(), domain.Minimax.String()},
    }
    _, live := s.Current()
    humanTurn := live && !s.Match.Finished() && !s.AITurn()
    for i, mark := range s.Board {
        v.Rows[i/3][i%3] = cellView{
            Row:       i / 3,
            Col:       i % 3,
            Mark:      mark.String(),
            Highlight: s.IsHighlightedCell(i),
            Playable:  humanTurn && mark == domain.Empty,
        }
    }
    return v
}

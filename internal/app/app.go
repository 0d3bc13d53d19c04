// Package app is the terminal host shell. It owns the tcell screen and
// the open panes, translates raw key and mouse events into editor
// intents, and renders each editor's visible lines.
//
// The shell is deliberately thin: all editing semantics live in the
// engine. The shell's own state is limited to focus, scroll position,
// and the search-bar input focus.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/quillforge/quill/internal/config"
	"github.com/quillforge/quill/internal/engine"
	"github.com/quillforge/quill/internal/script"
	"github.com/quillforge/quill/internal/session"
)

// ErrQuit signals a normal user-requested exit.
var ErrQuit = errors.New("quit")

// Options configures the application.
type Options struct {
	ConfigPath  string
	SessionPath string
	ScriptDir   string
	Files       []string
	ReadOnly    bool
	Logger      *slog.Logger
}

// searchField identifies which search-bar input has key focus.
type searchField int

const (
	fieldNone searchField = iota
	fieldQuery
	fieldReplace
)

// pane couples one editor with its shell-side view state.
type pane struct {
	ed        *engine.Editor
	path      string
	scrollTop int

	field        searchField
	replaceDraft string

	mouseDown bool

	// Render cache: shaped lines inside the engine's cache window,
	// valid for one (generation, revision) pair.
	cache    map[int][]cell
	cacheGen uint64
	cacheRev uint64
}

// App is the running application.
type App struct {
	screen tcell.Screen
	cfg    config.Config
	log    *slog.Logger

	panes []*pane
	focus int

	sess       *session.Store
	transforms []*script.Transform
	watcher    *config.Watcher

	width  int
	height int
}

// New builds the application: loads config and session, opens the
// requested files (or one empty pane), and compiles transform scripts.
func New(opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	sess, err := session.Open(opts.SessionPath)
	if err != nil {
		log.Warn("session unavailable", "error", err)
		sess, _ = session.Open(filepath.Join(os.TempDir(), "quill-session.json"))
	}

	transforms, err := script.LoadDir(opts.ScriptDir)
	if err != nil {
		log.Warn("transform scripts unavailable", "dir", opts.ScriptDir, "error", err)
	}
	for _, t := range transforms {
		log.Info("transform loaded", "name", t.Name)
	}

	a := &App{
		cfg:        cfg,
		log:        log,
		sess:       sess,
		transforms: transforms,
	}

	if len(opts.Files) == 0 {
		a.panes = append(a.panes, a.newPane("", "", opts.ReadOnly))
	}
	for _, file := range opts.Files {
		abs, err := filepath.Abs(file)
		if err != nil {
			abs = file
		}
		content := ""
		if data, err := os.ReadFile(abs); err == nil {
			content = string(data)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("opening %s: %w", file, err)
		}
		a.panes = append(a.panes, a.newPane(abs, content, opts.ReadOnly))
	}

	if opts.ConfigPath != "" {
		w, err := config.NewWatcher(opts.ConfigPath, a.onConfigReload, config.WithLogger(log))
		if err == nil {
			a.watcher = w
		} else {
			log.Warn("config watcher unavailable", "error", err)
		}
	}
	return a, nil
}

func (a *App) newPane(path, content string, readOnly bool) *pane {
	eopts := []engine.Option{
		engine.WithContent(content),
		engine.WithTabWidth(a.cfg.Editor.TabWidth),
		engine.WithMaxUndoEntries(a.cfg.Editor.MaxUndoEntries),
		engine.WithLineHeight(a.cfg.View.LineHeight),
		engine.WithMarginMultiplier(a.cfg.View.MarginMultiplier),
		engine.WithCaseSensitiveSearch(a.cfg.Search.CaseSensitive),
		engine.WithClipboard(systemClipboard{}),
	}
	if readOnly {
		eopts = append(eopts, engine.WithReadOnly())
	}

	p := &pane{ed: engine.New(eopts...), path: path, cache: make(map[int][]cell)}

	if path != "" && a.sess.Has(path) {
		st := a.sess.Get(path)
		p.ed.Apply(engine.MouseClick{Pos: engine.Position{Line: st.Line, Col: st.Col}})
		p.ed.Apply(engine.MouseRelease{})
		p.scrollTop = int(st.ScrollOffset / a.cfg.View.LineHeight)
		if st.SearchQuery != "" {
			p.ed.Apply(engine.SearchQueryChanged{Query: st.SearchQuery})
		}
		if st.CaseSensitive != p.ed.CaseSensitive() {
			p.ed.Apply(engine.ToggleCaseSensitive{})
		}
	}
	a.log.Info("pane opened", "path", path, "editor", p.ed.ID())
	return p
}

// onConfigReload runs on the watcher goroutine; it hands the new config
// to the event loop through the screen's event queue.
func (a *App) onConfigReload(cfg config.Config) {
	if a.screen != nil {
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(cfg))
	}
}

// Run initializes the terminal and processes events until quit.
func (a *App) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	screen.EnableMouse()
	screen.EnablePaste()
	a.screen = screen
	defer screen.Fini()

	if a.watcher != nil {
		if err := a.watcher.Start(); err != nil {
			a.log.Warn("config watcher failed to start", "error", err)
		}
		defer a.watcher.Stop()
	}

	a.width, a.height = screen.Size()
	a.syncViewport()

	for {
		a.draw()
		ev := screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := a.handleEvent(ev); err != nil {
			if errors.Is(err, ErrQuit) {
				a.saveSession()
				return nil
			}
			return err
		}
	}
}

func (a *App) handleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.width, a.height = ev.Size()
		a.screen.Sync()
		a.syncViewport()
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventPaste:
		// Bracketed paste delivers content as rune events between
		// start/end markers; nothing to do here.
	case *tcell.EventInterrupt:
		if cfg, ok := ev.Data().(config.Config); ok {
			a.cfg = cfg
			a.log.Info("configuration applied")
			a.invalidateAll()
		}
	}
	return nil
}

// focused returns the pane receiving input.
func (a *App) focused() *pane { return a.panes[a.focus] }

// nextPane cycles focus.
func (a *App) nextPane() {
	a.focus = (a.focus + 1) % len(a.panes)
	a.syncViewport()
}

// syncViewport reports the shell's geometry to the focused editor so
// page movement and the render window track the real viewport.
func (a *App) syncViewport() {
	p := a.focused()
	lh := a.cfg.View.LineHeight
	p.ed.Apply(engine.Scrolled{
		Offset:    float64(p.scrollTop) * lh,
		ViewportW: float64(a.width),
		ViewportH: float64(a.textRows()) * lh,
	})
}

// textRows returns the rows available for buffer text (status bar and,
// when open, the search bar are carved off the bottom).
func (a *App) textRows() int {
	rows := a.height - 1
	if a.focused().ed.SearchOpen() {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

// ensureCursorVisible adjusts scrollTop so the caret stays on screen,
// then reports the new scroll position to the engine.
func (a *App) ensureCursorVisible() {
	p := a.focused()
	line := p.ed.CursorPosition().Line
	rows := a.textRows()

	if line < p.scrollTop {
		p.scrollTop = line
	} else if line >= p.scrollTop+rows {
		p.scrollTop = line - rows + 1
	}
	a.syncViewport()
}

// scrollBy moves the viewport without moving the caret.
func (a *App) scrollBy(lines int) {
	p := a.focused()
	p.scrollTop += lines
	if max := p.ed.LineCount() - 1; p.scrollTop > max {
		p.scrollTop = max
	}
	if p.scrollTop < 0 {
		p.scrollTop = 0
	}
	a.syncViewport()
}

// save writes the focused pane's content back to its file.
func (a *App) save() {
	p := a.focused()
	if p.path == "" {
		a.log.Warn("no file name; cannot save")
		return
	}
	if err := os.WriteFile(p.path, []byte(p.ed.Content()), 0o644); err != nil {
		a.log.Error("save failed", "path", p.path, "error", err)
		return
	}
	p.ed.MarkSaved()
	a.log.Info("saved", "path", p.path, "bytes", len(p.ed.Content()))
}

// saveSession records per-pane state for the next run.
func (a *App) saveSession() {
	lh := a.cfg.View.LineHeight
	for _, p := range a.panes {
		if p.path == "" {
			continue
		}
		pos := p.ed.CursorPosition()
		err := a.sess.Put(p.path, session.State{
			Line:          pos.Line,
			Col:           pos.Col,
			ScrollOffset:  float64(p.scrollTop) * lh,
			SearchQuery:   p.ed.SearchQuery(),
			CaseSensitive: p.ed.CaseSensitive(),
		})
		if err != nil {
			a.log.Warn("session update failed", "path", p.path, "error", err)
		}
	}
	if err := a.sess.Save(); err != nil {
		a.log.Warn("session save failed", "error", err)
	}
}

// runTransform applies the i-th loaded transform to the focused editor.
func (a *App) runTransform(i int) {
	if i < 0 || i >= len(a.transforms) {
		return
	}
	t := a.transforms[i]
	if err := a.focused().ed.ApplyTransform(t.Name, t.Apply); err != nil {
		a.log.Error("transform failed", "name", t.Name, "error", err)
		return
	}
	a.log.Info("transform applied", "name", t.Name)
	a.ensureCursorVisible()
}

func (a *App) invalidateAll() {
	for _, p := range a.panes {
		p.cache = make(map[int][]cell)
	}
}

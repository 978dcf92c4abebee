// Package app wires every subsystem into the application controller:
// one loop serializes foreground input, zone handler events, and
// external API commands, then redraws at a bounded frame rate.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"mygrid/pkg/bookmarks"
	"mygrid/pkg/canvas"
	"mygrid/pkg/clip"
	"mygrid/pkg/command"
	"mygrid/pkg/grid"
	"mygrid/pkg/input"
	"mygrid/pkg/layout"
	"mygrid/pkg/modes"
	"mygrid/pkg/project"
	"mygrid/pkg/server"
	"mygrid/pkg/undo"
	"mygrid/pkg/viewport"
	"mygrid/pkg/zones"
)

// Options are the launch settings from the CLI.
type Options struct {
	FilePath string

	Server bool // enable the API ingress and continuous frames
	Host   string
	Port   int

	FIFO     bool
	FIFOPath string

	LayoutName string
	Headless   bool

	// APIBudget caps external commands applied per frame.
	APIBudget int

	// LayoutsDir overrides the platform layout directory (tests).
	LayoutsDir string
	// LogPath receives the session log; empty discards it.
	LogPath string
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Host:      "127.0.0.1",
		Port:      8765,
		FIFO:      true,
		FIFOPath:  "/tmp/mygrid.fifo",
		APIBudget: 10,
		LogPath:   "mygrid.log",
	}
}

// frameInterval is the loop cadence (~20 FPS).
const frameInterval = 50 * time.Millisecond

// Application owns all state. The run loop is the sole mutator of
// canvas, viewport, bookmarks, clipboard, and zone metadata.
type Application struct {
	opts Options

	canvas    *canvas.Canvas
	viewport  *viewport.Viewport
	grid      grid.Settings
	bookmarks *bookmarks.Manager
	clipboard *clip.Clipboard
	zones     *zones.Manager
	machine   *modes.Machine
	executor  *command.Executor
	layouts   *layout.Store
	undo      *undo.Manager

	queue *server.CommandQueue
	api   *server.Server

	screen  tcell.Screen
	events  chan tcell.Event
	logger  *clog.Logger
	logFile *os.File

	message string
	running bool
	created string // project created timestamp carried across saves
}

// New assembles an application. The terminal screen is acquired in
// Run so construction stays testable.
func New(opts Options) (*Application, error) {
	if opts.APIBudget < 1 {
		opts.APIBudget = 10
	}
	logger, logFile := newLogger(opts.LogPath)

	cv := canvas.New()
	vp := viewport.New(80, 23)
	bm := bookmarks.NewManager()
	cb := clip.New()
	zm := zones.NewManager(256, cb, logger)
	machine := modes.NewMachine(cv, vp, bm, cb)
	um := undo.NewManager(undo.DefaultMaxHistory)
	machine.SetUndoManager(um)

	layoutsDir := opts.LayoutsDir
	if layoutsDir == "" {
		var err error
		layoutsDir, err = layout.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve layouts directory: %w", err)
		}
	}
	store, err := layout.NewStore(layoutsDir)
	if err != nil {
		return nil, err
	}

	app := &Application{
		opts:      opts,
		canvas:    cv,
		viewport:  vp,
		grid:      grid.DefaultSettings(),
		bookmarks: bm,
		clipboard: cb,
		zones:     zm,
		machine:   machine,
		layouts:   store,
		undo:      um,
		queue:     server.NewCommandQueue(256),
		events:    make(chan tcell.Event, 64),
		logger:    logger,
		logFile:   logFile,
	}

	app.executor = &command.Executor{
		Canvas:    cv,
		Viewport:  vp,
		Grid:      &app.grid,
		Bookmarks: bm,
		Clipboard: cb,
		Zones:     zm,
		Machine:   machine,
		Layouts:   store,
		System:    clip.OSClipboard{},
		Undo:      um,
		SaveFunc:  app.saveProject,
	}
	return app, nil
}

// Executor exposes the command executor (tests and tooling).
func (a *Application) Executor() *command.Executor { return a.executor }

// Queue exposes the external command queue.
func (a *Application) Queue() *server.CommandQueue { return a.queue }

// saveProject captures and writes the project file.
func (a *Application) saveProject(path string) error {
	doc := project.Capture(filepath.Base(path), a.created, a.canvas, a.viewport, a.grid, a.bookmarks, a.zones)
	if a.created == "" {
		a.created = doc.Metadata.Created
	}
	return project.Save(path, doc)
}

// LoadProject reads a project file and installs its state, including
// zone re-creation. The current state is only replaced after a
// successful parse.
func (a *Application) LoadProject(path string) error {
	doc, err := project.Load(path)
	if err != nil {
		return err
	}
	zoneRecs, err := project.Restore(doc, a.canvas, a.viewport, &a.grid, a.bookmarks)
	if err != nil {
		return err
	}
	a.created = doc.Metadata.Created
	a.executor.FilePath = path
	a.executor.Created = doc.Metadata.Created
	a.undo.Clear()

	a.zones.Clear()
	for _, rec := range zoneRecs {
		z, err := a.zones.Create(rec.Name, rec.X, rec.Y, rec.Width, rec.Height, rec.Config.RecordToConfig())
		if err != nil {
			a.logger.Warnf("project zone %s: %v", rec.Name, err)
			continue
		}
		z.Description = rec.Description
		if rec.Bookmark != "" {
			key := []rune(rec.Bookmark)[0]
			z.Bookmark = key
			cx, cy := z.Center()
			a.bookmarks.Set(key, cx, cy, z.Name)
		}
	}
	a.logger.Infof("loaded project %s: %d cells, %d zones", path, a.canvas.Count(), a.zones.Count())
	return nil
}

// Run starts the server, acquires the terminal unless headless, and
// drives the loop until quit. Returns the process exit code.
func (a *Application) Run() int {
	if a.opts.FilePath != "" {
		if err := a.LoadProject(a.opts.FilePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
	}
	if a.opts.LayoutName != "" {
		res := a.executor.Execute("layout load " + a.opts.LayoutName)
		a.message = res.Message
	}

	if a.opts.Server {
		cfg := server.Config{
			TCPEnabled:      true,
			Host:            a.opts.Host,
			Port:            a.opts.Port,
			FIFOEnabled:     a.opts.FIFO,
			FIFOPath:        a.opts.FIFOPath,
			ResponseTimeout: 5 * time.Second,
		}
		a.api = server.New(a.queue, cfg, a.logger)
		if err := a.api.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			a.shutdown()
			return 1
		}
	}

	if !a.opts.Headless {
		screen, err := tcell.NewScreen()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to acquire terminal: %v\n", err)
			a.shutdown()
			return 1
		}
		if err := screen.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
			a.shutdown()
			return 1
		}
		screen.SetStyle(tcell.StyleDefault.
			Background(tcell.ColorReset).
			Foreground(tcell.ColorReset))
		screen.EnablePaste()
		a.screen = screen
		w, h := screen.Size()
		a.viewport.Resize(w, h-1)
		go a.pumpEvents()
	}

	a.loop()
	a.shutdown()
	return 0
}

// pumpEvents forwards tcell events to the loop. PollEvent returns nil
// after Fini, ending the pump.
func (a *Application) pumpEvents() {
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case a.events <- ev:
		default:
			// Never block the poller; a dropped event is repainted
			// on the next frame.
		}
	}
}

// loop is the serialized state transition described in the design:
// API commands, zone events, then foreground input, then a frame.
func (a *Application) loop() {
	a.running = true
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for a.running {
		a.drainAPI()
		a.zones.Drain(256)

		select {
		case ev := <-a.events:
			a.handleEvent(ev)
		case <-ticker.C:
		}

		if !a.opts.Headless && a.screen != nil {
			a.render()
		}
	}
}

// drainAPI applies at most APIBudget external commands this frame;
// the rest stay queued to preserve interactivity.
func (a *Application) drainAPI() {
	for i := 0; i < a.opts.APIBudget; i++ {
		req, ok := a.queue.Poll()
		if !ok {
			return
		}
		res := a.executor.Execute(req.Line)
		a.logger.Infof("api %s: %q -> %s", req.Source, req.Line, res.Status)
		if res.Message != "" {
			a.message = res.Message
		}
		if req.Reply != nil {
			req.Reply <- server.Response{Status: res.Status, Message: res.Message, Data: res.Data}
		}
		if res.Quit {
			a.running = false
			return
		}
	}
}

// handleEvent converts one tcell event and advances the state machine.
func (a *Application) handleEvent(tev tcell.Event) {
	switch ev := tev.(type) {
	case *tcell.EventResize:
		w, h := ev.Size()
		a.viewport.Resize(w, h-1)
		if a.screen != nil {
			a.screen.Sync()
		}
	case *tcell.EventPaste:
		// Bracketed paste: the runes between the markers arrive as
		// ordinary key events and type straight into EDIT mode.
	case *tcell.EventKey:
		a.handleKey(input.FromTcell(ev))
	}
}

func (a *Application) handleKey(ev input.Event) {
	// Ctrl+C quits from any mode except a focused PTY, which needs
	// the interrupt byte itself.
	if ev.Key == input.KeyCtrlC && a.machine.Mode() != modes.ModePTYFocused {
		a.running = false
		return
	}

	res := a.machine.Process(ev)

	if res.ForwardToPTY {
		a.forwardToZone(ev)
		return
	}
	if res.PTYScroll != 0 || res.PTYScrollEnd {
		a.scrollFocusedPTY(res)
		return
	}

	if res.Message != "" {
		a.message = res.Message
	}
	for _, line := range res.Commands {
		cmdRes := a.executor.Execute(line)
		if cmdRes.Message != "" {
			a.message = cmdRes.Message
		}
		if cmdRes.Quit {
			a.running = false
		}
	}
	if res.Quit {
		a.running = false
	}

	// Typing in EDIT mode dirties the project.
	if a.machine.Mode() == modes.ModeEdit && ev.Printable() {
		a.executor.MarkDirty()
	}
}

// forwardToZone routes input captured by a focused zone: PTY zones
// get the VT byte encoding, pager zones scroll their buffer.
func (a *Application) forwardToZone(ev input.Event) {
	name := a.machine.FocusedZone()
	z, ok := a.zones.Get(name)
	if !ok {
		a.machine.SetMode(modes.ModeNav)
		return
	}

	if z.Config.Type == zones.TypePager {
		_, ih := z.InnerSize()
		switch ev.Key {
		case input.KeyUp:
			z.Buffer.Scroll(1)
		case input.KeyDown:
			z.Buffer.Scroll(-1)
		case input.KeyPgUp:
			z.Buffer.Scroll(ih)
		case input.KeyPgDn:
			z.Buffer.Scroll(-ih)
		case input.KeyHome:
			z.Buffer.Scroll(z.Buffer.Len())
		case input.KeyEnd:
			z.Buffer.ScrollToTail()
		}
		return
	}

	if data := input.EncodeVT(ev); data != nil {
		if err := a.zones.Send(name, data); err != nil {
			a.message = err.Error()
		}
	}
}

func (a *Application) scrollFocusedPTY(res modes.Result) {
	z, ok := a.zones.Get(a.machine.FocusedZone())
	if !ok || z.Terminal == nil {
		return
	}
	if res.PTYScrollEnd {
		z.PTYScroll = 0
		return
	}
	z.PTYScroll += res.PTYScroll
	if z.PTYScroll < 0 {
		z.PTYScroll = 0
	}
	if max := z.Terminal.HistoryLen(); z.PTYScroll > max {
		z.PTYScroll = max
	}
}

// Step runs one loop iteration without a terminal: API drain, zone
// events, then the supplied input events. Drives headless tests.
func (a *Application) Step(events ...input.Event) {
	if !a.running {
		a.running = true
	}
	a.drainAPI()
	a.zones.Drain(256)
	for _, ev := range events {
		a.handleKey(ev)
	}
}

// Running reports whether the loop is (still) active.
func (a *Application) Running() bool { return a.running }

// Message returns the status-line message.
func (a *Application) Message() string { return a.message }

// shutdown releases everything in order: API ingress first so no new
// commands arrive, then zone handlers, then the terminal.
func (a *Application) shutdown() {
	if a.api != nil {
		a.api.Stop()
	}
	a.zones.StopAll()
	if a.screen != nil {
		a.screen.Fini()
		a.screen = nil
	}
	a.logger.Infof("shutdown complete")
	if a.logFile != nil {
		a.logFile.Close()
	}
}

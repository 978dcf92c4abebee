package command

import (
	"fmt"
	"strconv"
	"strings"

	"mygrid/pkg/layout"
	"mygrid/pkg/term"
	"mygrid/pkg/zones"
)

func canvasZoneConfig() zones.Config {
	return zones.Config{Type: zones.TypeClipboard}
}

func termLine(row []term.Cell) string {
	return term.Line(row)
}

// zoneGeometry parses "(X Y | here) W H" style arguments.
func (e *Executor) zoneGeometry(args []string) (x, y int64, w, h int, rest []string, err error) {
	if len(args) >= 1 && args[0] == "here" {
		x, y = e.Viewport.Cursor.X, e.Viewport.Cursor.Y
		args = args[1:]
		if len(args) < 2 {
			return 0, 0, 0, 0, nil, fmt.Errorf("missing W H")
		}
	} else {
		if len(args) < 4 {
			return 0, 0, 0, 0, nil, fmt.Errorf("missing X Y W H")
		}
		var e1, e2 error
		x, e1 = parseInt64(args[0])
		y, e2 = parseInt64(args[1])
		if e1 != nil || e2 != nil {
			return 0, 0, 0, 0, nil, fmt.Errorf("invalid coordinates")
		}
		args = args[2:]
	}
	var e1, e2 error
	w, e1 = parseSize(args[0])
	h, e2 = parseSize(args[1])
	if e1 != nil || e2 != nil {
		return 0, 0, 0, 0, nil, fmt.Errorf("invalid size")
	}
	return x, y, w, h, args[2:], nil
}

func (e *Executor) cmdZone(args []string, rest string) Result {
	if len(args) == 0 {
		return fail("Usage: zone SUBCOMMAND …")
	}
	sub := strings.ToLower(args[0])
	args = args[1:]

	switch sub {
	case "create":
		if len(args) < 1 {
			return fail("Usage: zone create NAME (X Y | here) W H")
		}
		name := args[0]
		x, y, w, h, _, err := e.zoneGeometry(args[1:])
		if err != nil {
			return fail("Usage: zone create NAME (X Y | here) W H: %v", err)
		}
		z, err := e.Zones.Create(name, x, y, w, h, zones.Config{Type: zones.TypeStatic})
		if err != nil {
			return fail("%v", err)
		}
		return ok("Zone %s created", z.Name)

	case "pipe":
		// zone pipe NAME W H CMD…
		if len(args) < 4 {
			return fail("Usage: zone pipe NAME W H CMD…")
		}
		w, e1 := parseSize(args[1])
		h, e2 := parseSize(args[2])
		if e1 != nil || e2 != nil {
			return fail("Usage: zone pipe NAME W H CMD…")
		}
		command := strings.Join(args[3:], " ")
		cur := e.Viewport.Cursor
		z, err := e.Zones.Create(args[0], cur.X, cur.Y, w, h, zones.Config{
			Type: zones.TypePipe, Command: command, AutoScroll: true,
		})
		if err != nil {
			return fail("%v", err)
		}
		return e.zoneCreated(z)

	case "watch":
		// zone watch NAME W H INTERVAL CMD…
		if len(args) < 5 {
			return fail("Usage: zone watch NAME W H INTERVAL CMD…")
		}
		w, e1 := parseSize(args[1])
		h, e2 := parseSize(args[2])
		if e1 != nil || e2 != nil {
			return fail("Usage: zone watch NAME W H INTERVAL CMD…")
		}
		interval, watchPath, err := zones.ParseWatchInterval(args[3])
		if err != nil {
			return fail("%v", err)
		}
		command := strings.Join(args[4:], " ")
		cur := e.Viewport.Cursor
		z, err := e.Zones.Create(args[0], cur.X, cur.Y, w, h, zones.Config{
			Type: zones.TypeWatch, Command: command,
			RefreshInterval: interval, WatchPath: watchPath, AutoScroll: true,
		})
		if err != nil {
			return fail("%v", err)
		}
		return e.zoneCreated(z)

	case "pty":
		// zone pty NAME W H [SHELL…]
		if len(args) < 3 {
			return fail("Usage: zone pty NAME W H [SHELL…]")
		}
		w, e1 := parseSize(args[1])
		h, e2 := parseSize(args[2])
		if e1 != nil || e2 != nil {
			return fail("Usage: zone pty NAME W H [SHELL…]")
		}
		shell := strings.Join(args[3:], " ")
		cur := e.Viewport.Cursor
		z, err := e.Zones.Create(args[0], cur.X, cur.Y, w, h, zones.Config{
			Type: zones.TypePTY, Shell: shell,
		})
		if err != nil {
			return fail("%v", err)
		}
		return e.zoneCreated(z)

	case "fifo":
		// zone fifo NAME W H PATH
		if len(args) < 4 {
			return fail("Usage: zone fifo NAME W H PATH")
		}
		w, e1 := parseSize(args[1])
		h, e2 := parseSize(args[2])
		if e1 != nil || e2 != nil {
			return fail("Usage: zone fifo NAME W H PATH")
		}
		cur := e.Viewport.Cursor
		z, err := e.Zones.Create(args[0], cur.X, cur.Y, w, h, zones.Config{
			Type: zones.TypeFIFO, Path: args[3], AutoScroll: true,
		})
		if err != nil {
			return fail("%v", err)
		}
		return e.zoneCreated(z)

	case "socket":
		// zone socket NAME W H PORT
		if len(args) < 4 {
			return fail("Usage: zone socket NAME W H PORT")
		}
		w, e1 := parseSize(args[1])
		h, e2 := parseSize(args[2])
		port, e3 := strconv.Atoi(args[3])
		if e1 != nil || e2 != nil || e3 != nil {
			return fail("Usage: zone socket NAME W H PORT")
		}
		cur := e.Viewport.Cursor
		z, err := e.Zones.Create(args[0], cur.X, cur.Y, w, h, zones.Config{
			Type: zones.TypeSocket, Port: port, AutoScroll: true,
		})
		if err != nil {
			return fail("%v", err)
		}
		return e.zoneCreated(z)

	case "pager":
		// zone pager NAME W H FILE
		if len(args) < 4 {
			return fail("Usage: zone pager NAME W H FILE")
		}
		w, e1 := parseSize(args[1])
		h, e2 := parseSize(args[2])
		if e1 != nil || e2 != nil {
			return fail("Usage: zone pager NAME W H FILE")
		}
		cur := e.Viewport.Cursor
		z, err := e.Zones.Create(args[0], cur.X, cur.Y, w, h, zones.Config{
			Type: zones.TypePager, Path: args[3],
		})
		if err != nil {
			return fail("%v", err)
		}
		return e.zoneCreated(z)

	case "delete":
		if len(args) < 1 {
			return fail("Usage: zone delete NAME")
		}
		if err := e.Zones.Delete(args[0]); err != nil {
			return fail("%v", err)
		}
		return ok("Zone %s deleted", args[0])

	case "goto":
		if len(args) < 1 {
			return fail("Usage: zone goto NAME")
		}
		z, found := e.Zones.Get(args[0])
		if !found {
			return fail("No zone named %q", args[0])
		}
		e.Viewport.SetCursor(z.X, z.Y)
		e.Viewport.EnsureCursorVisible(0)
		return ok("Moved to zone %s", z.Name)

	case "info":
		if len(args) < 1 {
			zs := e.Zones.List()
			if len(zs) == 0 {
				return ok("No zones")
			}
			lines := make([]string, len(zs))
			for i, z := range zs {
				lines[i] = z.Info()
			}
			return ok("%s", strings.Join(lines, "; "))
		}
		z, found := e.Zones.Get(args[0])
		if !found {
			return fail("No zone named %q", args[0])
		}
		return ok("%s", z.Info())

	case "refresh":
		if len(args) < 1 {
			return fail("Usage: zone refresh NAME")
		}
		if err := e.Zones.Refresh(args[0]); err != nil {
			return fail("%v", err)
		}
		return ok("Zone %s refreshed", args[0])

	case "pause":
		if len(args) < 1 {
			return fail("Usage: zone pause NAME")
		}
		if err := e.Zones.Pause(args[0]); err != nil {
			return fail("%v", err)
		}
		return ok("Zone %s paused", args[0])

	case "resume":
		if len(args) < 1 {
			return fail("Usage: zone resume NAME")
		}
		if err := e.Zones.Resume(args[0]); err != nil {
			return fail("%v", err)
		}
		return ok("Zone %s resumed", args[0])

	case "send":
		// zone send NAME TEXT — text is the rest of the line.
		if len(args) < 2 {
			return fail("Usage: zone send NAME TEXT")
		}
		name := args[0]
		// Recover the verbatim tail after "send NAME ".
		tail := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "send"))
		text := strings.TrimPrefix(strings.TrimPrefix(tail, name), " ")
		if err := e.Zones.Send(name, []byte(text+"\n")); err != nil {
			return fail("%v", err)
		}
		return ok("Sent to zone %s", name)

	case "focus":
		if len(args) < 1 {
			return fail("Usage: zone focus NAME")
		}
		z, found := e.Zones.Get(args[0])
		if !found {
			return fail("No zone named %q", args[0])
		}
		if z.Config.Type != zones.TypePTY && z.Config.Type != zones.TypePager {
			return fail("Zone %s is not interactive", z.Name)
		}
		e.Machine.FocusZone(z.Name)
		return ok("Focused zone %s (Esc to release)", z.Name)

	case "move":
		if len(args) < 3 {
			return fail("Usage: zone move NAME X Y")
		}
		x, e1 := parseInt64(args[1])
		y, e2 := parseInt64(args[2])
		if e1 != nil || e2 != nil {
			return fail("Usage: zone move NAME X Y")
		}
		if err := e.Zones.Move(args[0], x, y); err != nil {
			return fail("%v", err)
		}
		return ok("Zone %s moved to (%d, %d)", args[0], x, y)

	case "resize":
		if len(args) < 3 {
			return fail("Usage: zone resize NAME W H")
		}
		w, e1 := parseSize(args[1])
		h, e2 := parseSize(args[2])
		if e1 != nil || e2 != nil {
			return fail("Usage: zone resize NAME W H")
		}
		if err := e.Zones.Resize(args[0], w, h); err != nil {
			return fail("%v", err)
		}
		return ok("Zone %s resized to %dx%d", args[0], w, h)
	}
	return fail("Unknown zone subcommand: %s", sub)
}

// zoneCreated reports creation, surfacing a handler failure as an
// error result while the zone stays registered for refresh/delete.
func (e *Executor) zoneCreated(z *zones.Zone) Result {
	if z.State == zones.StateError {
		return fail("Zone %s created but failed to start: %s", z.Name, z.Err)
	}
	return ok("Zone %s created", z.Name)
}

func (e *Executor) cmdZones() Result {
	zs := e.Zones.List()
	if len(zs) == 0 {
		return ok("No zones")
	}
	parts := make([]string, len(zs))
	for i, z := range zs {
		parts[i] = fmt.Sprintf("%s[%c]", z.Name, z.Config.Type.TypeTag())
	}
	return ok("Zones: %s", strings.Join(parts, " "))
}

func (e *Executor) cmdLayout(args []string) Result {
	if e.Layouts == nil {
		return fail("Layouts are not available")
	}
	if len(args) == 0 {
		return fail("Usage: layout (list | load NAME [--clear] | save NAME [DESC] | delete NAME | info NAME)")
	}

	switch args[0] {
	case "list":
		names, err := e.Layouts.List()
		if err != nil {
			return fail("%v", err)
		}
		if len(names) == 0 {
			return ok("No layouts")
		}
		return ok("Layouts: %s", strings.Join(names, " "))

	case "load":
		if len(args) < 2 {
			return fail("Usage: layout load NAME [--clear]")
		}
		clear := len(args) >= 3 && args[2] == "--clear"
		return e.loadLayout(args[1], clear)

	case "save":
		if len(args) < 2 {
			return fail("Usage: layout save NAME [DESC]")
		}
		desc := strings.Join(args[2:], " ")
		cur := e.Viewport.Cursor
		l := layout.FromZones(args[1], desc, e.Zones.List(),
			&layout.Cursor{X: cur.X, Y: cur.Y})
		if err := e.Layouts.Save(l); err != nil {
			return fail("%v", err)
		}
		return ok("Layout %s saved (%d zones)", args[1], len(l.Zones))

	case "delete":
		if len(args) < 2 {
			return fail("Usage: layout delete NAME")
		}
		if err := e.Layouts.Delete(args[1]); err != nil {
			return fail("%v", err)
		}
		return ok("Layout %s deleted", args[1])

	case "info":
		if len(args) < 2 {
			return fail("Usage: layout info NAME")
		}
		l, err := e.Layouts.Load(args[1])
		if err != nil {
			return fail("%v", err)
		}
		names := make([]string, len(l.Zones))
		for i, z := range l.Zones {
			names[i] = fmt.Sprintf("%s(%s)", z.Name, z.Type)
		}
		return ok("%s: %s — zones: %s", l.Name, l.Description, strings.Join(names, " "))
	}
	return fail("Unknown layout subcommand: %s", args[0])
}

// loadLayout instantiates a template: every creatable zone is created
// (failures are reported but do not stop the rest), bookmarks install,
// and the template cursor applies.
func (e *Executor) loadLayout(name string, clear bool) Result {
	l, err := e.Layouts.Load(name)
	if err != nil {
		return fail("%v", err)
	}
	if err := l.Validate(); err != nil {
		return fail("Layout %s: %v", name, err)
	}
	if clear {
		e.Zones.Clear()
	}

	created := 0
	var failures []string
	for _, lz := range l.Zones {
		z, err := e.Zones.Create(lz.Name, lz.X, lz.Y, lz.Width, lz.Height, lz.Config())
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", lz.Name, err))
			continue
		}
		created++
		z.Description = lz.Description
		if lz.Bookmark != "" {
			// The zone bookmark lands on the zone center; `zone goto`
			// keeps the corner.
			key := []rune(lz.Bookmark)[0]
			z.Bookmark = key
			cx, cy := z.Center()
			e.Bookmarks.Set(key, cx, cy, z.Name)
		}
		if z.State == zones.StateError {
			failures = append(failures, fmt.Sprintf("%s: %s", z.Name, z.Err))
		}
	}
	if l.Cursor != nil {
		e.Viewport.SetCursor(l.Cursor.X, l.Cursor.Y)
		e.Viewport.EnsureCursorVisible(0)
	}

	if len(failures) > 0 {
		return ok("Layout %s: %d zones (%s)", name, created, strings.Join(failures, "; "))
	}
	return ok("Layout %s: %d zones", name, created)
}

func (e *Executor) cmdStatus() Result {
	cur := e.Viewport.Cursor
	zoneSummaries := make([]map[string]interface{}, 0, e.Zones.Count())
	for _, z := range e.Zones.List() {
		zoneSummaries = append(zoneSummaries, map[string]interface{}{
			"name":   z.Name,
			"type":   string(z.Config.Type),
			"x":      z.X,
			"y":      z.Y,
			"width":  z.Width,
			"height": z.Height,
			"state":  z.State.String(),
		})
	}

	res := ok("cursor=(%d,%d) cells=%d mode=%s", cur.X, cur.Y, e.Canvas.Count(), e.Machine.Mode())
	res.Data = map[string]interface{}{
		"cursor": map[string]int64{"x": cur.X, "y": cur.Y},
		"viewport": map[string]interface{}{
			"x": e.Viewport.X, "y": e.Viewport.Y,
			"width": e.Viewport.Width, "height": e.Viewport.Height,
		},
		"mode":  e.Machine.Mode().String(),
		"cells": e.Canvas.Count(),
		"dirty": e.dirty,
		"file":  e.FilePath,
		"zones": zoneSummaries,
	}
	return res
}

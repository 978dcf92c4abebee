// Package layout manages workspace templates: named YAML files
// describing a set of zones (and optionally a cursor position) that
// can be instantiated into a running editor.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mygrid/pkg/zones"
)

// Zone is one zone entry in a layout template.
type Zone struct {
	Name        string  `yaml:"name"`
	Type        string  `yaml:"type"`
	X           int64   `yaml:"x"`
	Y           int64   `yaml:"y"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Command     string  `yaml:"command,omitempty"`
	Interval    float64 `yaml:"interval,omitempty"` // seconds, WATCH zones
	WatchPath   string  `yaml:"watch_path,omitempty"`
	Shell       string  `yaml:"shell,omitempty"`
	Path        string  `yaml:"path,omitempty"`
	Port        int     `yaml:"port,omitempty"`
	Renderer    string  `yaml:"renderer,omitempty"`
	Scroll      *bool   `yaml:"scroll,omitempty"`
	MaxLines    int     `yaml:"max_lines,omitempty"`
	Bookmark    string  `yaml:"bookmark,omitempty"`
	Description string  `yaml:"description,omitempty"`
}

// Config converts the template entry into a runtime zone config.
func (z Zone) Config() zones.Config {
	cfg := zones.Config{
		Type:            zones.Type(z.Type),
		Command:         z.Command,
		RefreshInterval: time.Duration(z.Interval * float64(time.Second)),
		WatchPath:       z.WatchPath,
		Shell:           z.Shell,
		Path:            z.Path,
		Port:            z.Port,
		Renderer:        z.Renderer,
		AutoScroll:      true,
		MaxLines:        z.MaxLines,
	}
	if z.Scroll != nil {
		cfg.AutoScroll = *z.Scroll
	}
	cfg.Normalize()
	return cfg
}

// Cursor is an optional cursor position in a layout.
type Cursor struct {
	X int64 `yaml:"x"`
	Y int64 `yaml:"y"`
}

// Layout is a named workspace template.
type Layout struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Cursor      *Cursor `yaml:"cursor,omitempty"`
	Zones       []Zone  `yaml:"zones"`
}

// Validate checks the template for obvious problems before any zone
// is created.
func (l Layout) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("layout name cannot be empty")
	}
	seen := make(map[string]bool)
	for i, z := range l.Zones {
		if z.Name == "" {
			return fmt.Errorf("zone %d has no name", i)
		}
		key := strings.ToLower(z.Name)
		if seen[key] {
			return fmt.Errorf("duplicate zone name %q", z.Name)
		}
		seen[key] = true
		if err := z.Config().Validate(); err != nil {
			return fmt.Errorf("zone %q: %w", z.Name, err)
		}
	}
	return nil
}

// Store reads and writes layouts under a directory, one YAML file per
// layout named <name>.yaml.
type Store struct {
	dir string
}

// DefaultDir returns the platform layout directory:
// ~/.config/mygrid/layouts on Unix, %APPDATA%\mygrid\layouts on
// Windows.
func DefaultDir() (string, error) {
	if runtime.GOOS == "windows" {
		base := os.Getenv("APPDATA")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(base, "mygrid", "layouts"), nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "mygrid", "layouts"), nil
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create layouts directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) pathFor(name string) string {
	return filepath.Join(s.dir, name+".yaml")
}

// Save writes a layout template.
func (s *Store) Save(l Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(s.pathFor(l.Name), data, 0o644); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	return nil
}

// Load reads a layout by name.
func (s *Store) Load(name string) (Layout, error) {
	data, err := os.ReadFile(s.pathFor(name))
	if err != nil {
		return Layout{}, fmt.Errorf("read layout %q: %w", name, err)
	}
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("parse layout %q: %w", name, err)
	}
	if l.Name == "" {
		l.Name = name
	}
	return l, nil
}

// Delete removes a layout file.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.pathFor(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no layout named %q", name)
		}
		return fmt.Errorf("delete layout: %w", err)
	}
	return nil
}

// List returns the available layout names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") {
			names = append(names, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// FromZones builds a layout template from live zones, optionally with
// a cursor position.
func FromZones(name, description string, zs []*zones.Zone, cursor *Cursor) Layout {
	l := Layout{Name: name, Description: description, Cursor: cursor}
	for _, z := range zs {
		scroll := z.Config.AutoScroll
		entry := Zone{
			Name:        z.Name,
			Type:        string(z.Config.Type),
			X:           z.X,
			Y:           z.Y,
			Width:       z.Width,
			Height:      z.Height,
			Command:     z.Config.Command,
			Interval:    z.Config.RefreshInterval.Seconds(),
			WatchPath:   z.Config.WatchPath,
			Shell:       z.Config.Shell,
			Path:        z.Config.Path,
			Port:        z.Config.Port,
			Renderer:    z.Config.Renderer,
			Scroll:      &scroll,
			Description: z.Description,
		}
		if z.Config.MaxLines != zones.DefaultMaxLines {
			entry.MaxLines = z.Config.MaxLines
		}
		if z.Bookmark != 0 {
			entry.Bookmark = string(z.Bookmark)
		}
		l.Zones = append(l.Zones, entry)
	}
	return l
}

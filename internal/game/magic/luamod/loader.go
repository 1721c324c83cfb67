// Package luamod загружает Lua-моды, добавляющие новые поведения магии.
//
// A mod is a Lua 5.2 script that calls magic.register(kind, def) where def is
// a table with an optional name and any of the hooks can_cast, on_cast, apply
// and on_end. Registration into the magic registry happens in Install, before
// the first simulation tick.
package luamod

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/game/magic"
)

// Runtime owns the Lua state shared by every loaded mod.
//
// Not safe for concurrent use: hooks run on the simulation goroutine.
type Runtime struct {
	state     *lua.State
	logger    *slog.Logger
	behaviors []*Behavior
	byKind    map[data.MoveKind]*Behavior
	source    string // mod file being executed
}

// NewRuntime creates a Lua state with the standard libraries and the magic API.
func NewRuntime(logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	l := lua.NewState()
	lua.OpenLibraries(l)

	rt := &Runtime{
		state:  l,
		logger: logger,
		byKind: make(map[data.MoveKind]*Behavior),
	}
	rt.registerAPI()
	return rt
}

// LoadDir loads every *.lua file of dir in lexical order.
// A missing directory yields an empty runtime.
func LoadDir(ctx context.Context, dir string, logger *slog.Logger) (*Runtime, error) {
	rt := NewRuntime(logger)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			rt.logger.Info("mods directory not found, no mods loaded", "dir", dir)
			return rt, nil
		}
		return nil, fmt.Errorf("reading mods dir %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".lua") {
			continue
		}
		files = append(files, e.Name())
	}
	slices.Sort(files)

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("loading mods: %w", err)
		}
		if err := rt.LoadFile(filepath.Join(dir, name)); err != nil {
			return nil, err
		}
	}

	rt.logger.Info("mods loaded",
		"dir", dir,
		"files", len(files),
		"behaviors", len(rt.behaviors))
	return rt, nil
}

// LoadFile executes one mod script.
func (rt *Runtime) LoadFile(path string) error {
	rt.source = filepath.Base(path)
	defer func() { rt.source = "" }()

	if err := lua.LoadFile(rt.state, path, ""); err != nil {
		return fmt.Errorf("load lua %s: %w", path, err)
	}
	if err := rt.state.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("run lua %s: %w", path, err)
	}
	return nil
}

// LoadString executes mod source under the given chunk name.
func (rt *Runtime) LoadString(name, src string) error {
	rt.source = name
	defer func() { rt.source = "" }()

	if err := lua.LoadBuffer(rt.state, src, name, ""); err != nil {
		return fmt.Errorf("load lua %s: %w", name, err)
	}
	if err := rt.state.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("run lua %s: %w", name, err)
	}
	return nil
}

// Behaviors returns the loaded behaviors in registration order.
func (rt *Runtime) Behaviors() []*Behavior {
	return slices.Clone(rt.behaviors)
}

// Behavior returns the behavior a mod registered for kind.
func (rt *Runtime) Behavior(kind data.MoveKind) (*Behavior, bool) {
	b, ok := rt.byKind[kind]
	return b, ok
}

// Install puts every loaded behavior into the magic registry.
// Must be called before the first Manager.Update.
func (rt *Runtime) Install() {
	for _, b := range rt.behaviors {
		if prev, ok := magic.GetBehavior(b.kind); ok {
			rt.logger.Warn("mod behavior replaces built-in",
				"kind", b.kind,
				"previous", prev.Name(),
				"mod", b.name)
		}
		magic.RegisterBehavior(b.kind, b)
		rt.logger.Debug("mod behavior installed", "kind", b.kind, "name", b.name, "source", b.source)
	}
}

// add records a behavior registered by a script. A later registration for
// the same kind replaces the earlier one.
func (rt *Runtime) add(b *Behavior) {
	if prev, ok := rt.byKind[b.kind]; ok {
		rt.behaviors = slices.DeleteFunc(rt.behaviors, func(x *Behavior) bool { return x == prev })
	}
	rt.byKind[b.kind] = b
	rt.behaviors = append(rt.behaviors, b)
}

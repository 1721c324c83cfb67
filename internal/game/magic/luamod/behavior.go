package luamod

import (
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/game/magic"
)

// Lua hook names.
const (
	hookCanCast = "can_cast"
	hookOnCast  = "on_cast"
	hookApply   = "apply"
	hookOnEnd   = "on_end"
)

// Behavior adapts a Lua definition table to magic.Behavior.
// A hook missing in the table is a no-op; can_cast defaults to allow.
//
// Errors raised by a script are logged and degrade to "no effect".
type Behavior struct {
	rt     *Runtime
	kind   data.MoveKind
	name   string
	source string
	key    string // registry field holding the definition table
	hooks  map[string]bool
}

var (
	_ magic.CastValidator = (*Behavior)(nil)
	_ magic.CastHook      = (*Behavior)(nil)
	_ magic.ApplyHook     = (*Behavior)(nil)
	_ magic.EndHook       = (*Behavior)(nil)
)

func (b *Behavior) Name() string { return b.name }

// Kind returns the move kind the behavior is registered for.
func (b *Behavior) Kind() data.MoveKind { return b.kind }

// HasHook reports whether the script defines hook.
func (b *Behavior) HasHook(hook string) bool { return b.hooks[hook] }

func (b *Behavior) CanCast(ctx *magic.CastContext) bool {
	if !b.hooks[hookCanCast] {
		return true
	}
	allowed := false
	err := b.call(hookCanCast, func(l *lua.State) { pushCastContext(l, ctx) }, func(l *lua.State) {
		allowed = l.ToBoolean(-1)
	})
	if err != nil {
		b.logError(err, "spell", ctx.Spell.ID)
		return false
	}
	return allowed
}

func (b *Behavior) OnCast(ctx *magic.CastContext) {
	if !b.hooks[hookOnCast] {
		return
	}
	if err := b.call(hookOnCast, func(l *lua.State) { pushCastContext(l, ctx) }, nil); err != nil {
		b.logError(err, "spell", ctx.Spell.ID)
	}
}

func (b *Behavior) Apply(ctx *magic.HitContext) int32 {
	if !b.hooks[hookApply] {
		return 0
	}
	var dealt int32
	err := b.call(hookApply, func(l *lua.State) { pushHitContext(l, ctx) }, func(l *lua.State) {
		if n, ok := l.ToInteger(-1); ok && n > 0 {
			dealt = int32(n)
		}
	})
	if err != nil {
		b.logError(err, "spell", ctx.Spell.ID, "target", ctx.Target.ID())
		return 0
	}
	return dealt
}

func (b *Behavior) OnEnd(ctx *magic.EndContext) {
	if !b.hooks[hookOnEnd] {
		return
	}
	if err := b.call(hookOnEnd, func(l *lua.State) { pushEndContext(l, ctx) }, nil); err != nil {
		b.logError(err, "spell", ctx.Spell.ID, "reason", ctx.Reason)
	}
}

// call runs hook with one argument pushed by push. If read is set, the hook's
// single result is on top of the stack while read runs.
// The stack is restored whatever the outcome.
func (b *Behavior) call(hook string, push func(*lua.State), read func(*lua.State)) error {
	l := b.rt.state
	top := l.Top()
	defer l.SetTop(top)

	l.Field(lua.RegistryIndex, b.key)
	l.Field(-1, hook)
	if !l.IsFunction(-1) {
		return fmt.Errorf("mod behavior %s: %s is not a function", b.name, hook)
	}
	push(l)

	results := 0
	if read != nil {
		results = 1
	}
	if err := l.ProtectedCall(1, results, 0); err != nil {
		return fmt.Errorf("mod behavior %s.%s: %w", b.name, hook, err)
	}
	if read != nil {
		read(l)
	}
	return nil
}

func (b *Behavior) logError(err error, args ...any) {
	b.rt.logger.Warn("mod hook failed",
		append([]any{"mod", b.name, "source", b.source, "error", err}, args...)...)
}

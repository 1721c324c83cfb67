package magic

import (
	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/model"
)

// Behavior — поведение магии на статы, выбирается по MoveKind.
// Хуки опциональны: поведение реализует только нужные из
// CastValidator, CastHook, ApplyHook, EndHook.
//
// Ordering per sprite: OnCast → Apply* → OnEnd. A destroyed sprite
// receives no further hooks.
type Behavior interface {
	Name() string
}

// CastValidator rejects a cast before anything is committed.
// A rejected cast deducts no cost and spawns no sprite.
type CastValidator interface {
	CanCast(ctx *CastContext) bool
}

// CastHook fires once when the cast commits, after the shared cost deduction.
type CastHook interface {
	OnCast(ctx *CastContext)
}

// ApplyHook fires once per discrete hit. Returns net damage dealt, 0 for no damage.
type ApplyHook interface {
	Apply(ctx *HitContext) int32
}

// EndHook fires once when the sprite is destroyed.
// Sprite position may already be stale.
type EndHook interface {
	OnEnd(ctx *EndContext)
}

// CastContext carries the arguments of CastHook and CastValidator.
type CastContext struct {
	Manager     *Manager
	Caster      model.Ref
	Spell       *data.SpellDefinition
	Origin      model.Vec2
	Destination model.Vec2
	Target      model.Ref // optional
}

// HitContext carries the arguments of ApplyHook.
type HitContext struct {
	Manager *Manager
	Caster  model.Ref
	Target  model.Ref
	Spell   *data.SpellDefinition
	Sprite  *Sprite
}

// EndContext carries the arguments of EndHook.
type EndContext struct {
	Manager *Manager
	Caster  model.Ref
	Spell   *data.SpellDefinition
	Sprite  *Sprite
	Reason  EndReason
}

// EndReason qualifies why a sprite was destroyed.
type EndReason int8

const (
	EndCompleted EndReason = iota // Movement finished
	EndExpired                    // Lifetime elapsed
	EndExhausted                  // Hit consumed the sprite (or leaps ran out)
	EndBlocked                    // Terrain obstacle
	EndCancelled                  // Explicit cancellation
	EndMapChange                  // Map transition teardown
)

func (r EndReason) String() string {
	switch r {
	case EndCompleted:
		return "completed"
	case EndExpired:
		return "expired"
	case EndExhausted:
		return "exhausted"
	case EndBlocked:
		return "blocked"
	case EndCancelled:
		return "cancelled"
	case EndMapChange:
		return "map_change"
	default:
		return "unknown"
	}
}

// invokeApply runs the ApplyHook of b, if any.
// Panics on a sprite without spell or on a destroyed sprite: both are caller bugs.
func invokeApply(b Behavior, ctx *HitContext) int32 {
	if ctx.Sprite == nil || ctx.Sprite.spell == nil {
		panic("magic: apply on sprite without spell definition")
	}
	if ctx.Sprite.destroyed {
		panic("magic: apply on destroyed sprite")
	}
	h, ok := b.(ApplyHook)
	if !ok {
		return 0
	}
	return h.Apply(ctx)
}

// invokeEnd runs the EndHook of b, if any.
func invokeEnd(b Behavior, ctx *EndContext) {
	if ctx.Sprite.destroyed {
		panic("magic: end hook on destroyed sprite")
	}
	if h, ok := b.(EndHook); ok {
		h.OnEnd(ctx)
	}
}

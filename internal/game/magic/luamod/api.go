package luamod

import (
	"fmt"
	"math"

	"github.com/Shopify/go-lua"

	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/game/magic"
	"github.com/udisondev/magic2d/internal/model"
)

const characterTypeName = "magic2d.Character"

// registerAPI installs the global "magic" table and the Character type.
//
//	magic.register(kind, def)     kind is a number or a catalog name ("single")
//	magic.kind.<name>             numeric move kinds
//	magic.heal(ch, n)             returns the applied delta
//	magic.restore_mana(ch, n)
//	magic.restore_thew(ch, n)
//	magic.log(msg)
func (rt *Runtime) registerAPI() {
	l := rt.state

	lua.NewMetaTable(l, characterTypeName)
	l.NewTable()
	lua.SetFunctions(l, characterMethods, 0)
	l.SetField(-2, "__index")
	l.Pop(1)

	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "register", Function: rt.luaRegister},
		{Name: "log", Function: rt.luaLog},
		{Name: "heal", Function: luaHeal},
		{Name: "restore_mana", Function: luaRestoreMana},
		{Name: "restore_thew", Function: luaRestoreThew},
	}, 0)

	l.NewTable()
	for _, k := range data.KnownMoveKinds() {
		l.PushInteger(int(k))
		l.SetField(-2, k.String())
	}
	l.SetField(-2, "kind")

	l.SetGlobal("magic")
}

func (rt *Runtime) luaRegister(l *lua.State) int {
	var kind data.MoveKind
	if l.TypeOf(1) == lua.TypeString {
		name, _ := l.ToString(1)
		k, err := data.ParseMoveKind(name)
		if err != nil {
			lua.ArgumentError(l, 1, err.Error())
			return 0
		}
		kind = k
	} else {
		n := lua.CheckInteger(l, 1)
		if n < math.MinInt8 || n > math.MaxInt8 {
			lua.ArgumentError(l, 1, "move kind out of range")
			return 0
		}
		kind = data.MoveKind(n)
	}
	lua.CheckType(l, 2, lua.TypeTable)

	name := kind.String()
	l.Field(2, "name")
	if s, ok := l.ToString(-1); ok && s != "" {
		name = s
	}
	l.Pop(1)

	hooks := make(map[string]bool, 4)
	for _, h := range []string{hookCanCast, hookOnCast, hookApply, hookOnEnd} {
		l.Field(2, h)
		isFunc, isNil := l.IsFunction(-1), l.IsNil(-1)
		l.Pop(1)
		if isFunc {
			hooks[h] = true
			continue
		}
		if !isNil {
			lua.Errorf(l, "behavior %s: %s must be a function", name, h)
			return 0
		}
	}

	key := fmt.Sprintf("magic2d.behavior.%d", kind)
	l.PushValue(2)
	l.SetField(lua.RegistryIndex, key)

	rt.add(&Behavior{
		rt:     rt,
		kind:   kind,
		name:   name,
		source: rt.source,
		key:    key,
		hooks:  hooks,
	})
	rt.logger.Debug("mod behavior registered", "kind", kind, "name", name, "source", rt.source)
	return 0
}

func (rt *Runtime) luaLog(l *lua.State) int {
	msg := lua.CheckString(l, 1)
	rt.logger.Info(msg, "source", "lua")
	return 0
}

func luaHeal(l *lua.State) int {
	ref := checkCharacter(l, 1)
	l.PushInteger(int(magic.HealTarget(ref, checkInt32(l, 2))))
	return 1
}

func luaRestoreMana(l *lua.State) int {
	ref := checkCharacter(l, 1)
	l.PushInteger(int(magic.RestoreMana(ref, checkInt32(l, 2))))
	return 1
}

func luaRestoreThew(l *lua.State) int {
	ref := checkCharacter(l, 1)
	l.PushInteger(int(magic.RestoreThew(ref, checkInt32(l, 2))))
	return 1
}

var characterMethods = []lua.RegistryFunction{
	{Name: "id", Function: func(l *lua.State) int {
		l.PushInteger(int(checkCharacter(l, 1).ID()))
		return 1
	}},
	{Name: "name", Function: func(l *lua.State) int {
		l.PushString(checkCharacter(l, 1).Character().Name())
		return 1
	}},
	{Name: "level", Function: func(l *lua.State) int {
		l.PushInteger(int(checkCharacter(l, 1).Character().Level()))
		return 1
	}},
	{Name: "life", Function: intGetter(model.Ref.Life)},
	{Name: "life_max", Function: intGetter(model.Ref.LifeMax)},
	{Name: "mana", Function: intGetter(model.Ref.Mana)},
	{Name: "mana_max", Function: intGetter(model.Ref.ManaMax)},
	{Name: "thew", Function: intGetter(model.Ref.Thew)},
	{Name: "thew_max", Function: intGetter(model.Ref.ThewMax)},
	{Name: "is_alive", Function: func(l *lua.State) int {
		l.PushBoolean(checkCharacter(l, 1).IsAlive())
		return 1
	}},
	{Name: "is_player", Function: func(l *lua.State) int {
		l.PushBoolean(checkCharacter(l, 1).IsPlayer())
		return 1
	}},
	{Name: "is_enemy_of", Function: func(l *lua.State) int {
		a, b := checkCharacter(l, 1), checkCharacter(l, 2)
		l.PushBoolean(a.Character().IsEnemyOf(b.Character()))
		return 1
	}},
	{Name: "position", Function: func(l *lua.State) int {
		p := checkCharacter(l, 1).Position()
		l.PushNumber(p.X)
		l.PushNumber(p.Y)
		return 2
	}},
}

func intGetter(get func(model.Ref) int32) lua.Function {
	return func(l *lua.State) int {
		l.PushInteger(int(get(checkCharacter(l, 1))))
		return 1
	}
}

func pushCharacter(l *lua.State, ref model.Ref) {
	if ref.IsZero() {
		l.PushNil()
		return
	}
	l.PushUserData(ref)
	lua.SetMetaTableNamed(l, characterTypeName)
}

func checkCharacter(l *lua.State, index int) model.Ref {
	ud := lua.CheckUserData(l, index, characterTypeName)
	ref, ok := ud.(model.Ref)
	if !ok || ref.IsZero() {
		lua.ArgumentError(l, index, "character expected")
	}
	return ref
}

func checkInt32(l *lua.State, index int) int32 {
	n := lua.CheckInteger(l, index)
	if n < math.MinInt32 || n > math.MaxInt32 {
		lua.ArgumentError(l, index, "value out of int32 range")
	}
	return int32(n)
}

func pushSpell(l *lua.State, s *data.SpellDefinition) {
	l.NewTable()
	setString(l, "id", s.ID)
	setString(l, "name", s.Name)
	setInt(l, "move_kind", int(s.MoveKind))
	setInt(l, "special_kind", int(s.SpecialKind))
	setInt(l, "effect", int(s.Effect))
	setInt(l, "effect2", int(s.Effect2))
	setInt(l, "effect3", int(s.Effect3))
	setInt(l, "effect_mana", int(s.EffectMana))
	setInt(l, "mana_cost", int(s.ManaCost))
	setInt(l, "thew_cost", int(s.ThewCost))
	setInt(l, "life_cost", int(s.LifeCost))
	setInt(l, "max_level", int(s.MaxLevel))
	setString(l, "cast_sound", s.CastSound)
	setString(l, "vanish_sound", s.VanishSound)
	setString(l, "npc_file", s.NpcFile)
}

func pushVec(l *lua.State, v model.Vec2) {
	l.NewTable()
	l.PushNumber(v.X)
	l.SetField(-2, "x")
	l.PushNumber(v.Y)
	l.SetField(-2, "y")
}

// pushCastContext pushes the argument of can_cast and on_cast.
func pushCastContext(l *lua.State, ctx *magic.CastContext) {
	l.NewTable()
	pushSpell(l, ctx.Spell)
	l.SetField(-2, "spell")
	pushCharacter(l, ctx.Caster)
	l.SetField(-2, "caster")
	pushCharacter(l, ctx.Target)
	l.SetField(-2, "target")
	pushVec(l, ctx.Origin)
	l.SetField(-2, "origin")
	pushVec(l, ctx.Destination)
	l.SetField(-2, "destination")
	setFeedback(l, ctx.Manager)
}

// pushHitContext pushes the argument of apply. ctx.deal_damage() runs the
// standard damage routine and returns the net damage.
func pushHitContext(l *lua.State, ctx *magic.HitContext) {
	l.NewTable()
	pushSpell(l, ctx.Spell)
	l.SetField(-2, "spell")
	pushCharacter(l, ctx.Caster)
	l.SetField(-2, "caster")
	pushCharacter(l, ctx.Target)
	l.SetField(-2, "target")
	setInt(l, "sprite_id", int(ctx.Sprite.ID()))

	l.PushGoFunction(func(l *lua.State) int {
		if ctx.Sprite.IsDestroyed() {
			lua.Errorf(l, "deal_damage on destroyed sprite %d", ctx.Sprite.ID())
			return 0
		}
		l.PushInteger(int(magic.DealDamage(ctx.Caster, ctx.Target, ctx.Spell, ctx.Sprite)))
		return 1
	})
	l.SetField(-2, "deal_damage")

	l.PushGoFunction(func(*lua.State) int {
		ctx.Sprite.Exhaust()
		return 0
	})
	l.SetField(-2, "exhaust")
	setFeedback(l, ctx.Manager)
}

// pushEndContext pushes the argument of on_end.
func pushEndContext(l *lua.State, ctx *magic.EndContext) {
	l.NewTable()
	pushSpell(l, ctx.Spell)
	l.SetField(-2, "spell")
	pushCharacter(l, ctx.Caster)
	l.SetField(-2, "caster")
	setInt(l, "sprite_id", int(ctx.Sprite.ID()))
	setString(l, "reason", ctx.Reason.String())
	setFeedback(l, ctx.Manager)
}

// setFeedback adds play_sound and show_message to the table on top of the stack.
func setFeedback(l *lua.State, m *magic.Manager) {
	l.PushGoFunction(func(l *lua.State) int {
		m.PlaySound(lua.CheckString(l, 1))
		return 0
	})
	l.SetField(-2, "play_sound")
	l.PushGoFunction(func(l *lua.State) int {
		m.ShowMessage(lua.CheckString(l, 1))
		return 0
	})
	l.SetField(-2, "show_message")
}

func setString(l *lua.State, key, v string) {
	l.PushString(v)
	l.SetField(-2, key)
}

func setInt(l *lua.State, key string, v int) {
	l.PushInteger(v)
	l.SetField(-2, key)
}

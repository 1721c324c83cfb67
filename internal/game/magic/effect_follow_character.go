package magic

import (
	"log/slog"

	"github.com/udisondev/magic2d/internal/data"
)

// FollowCharacterBehavior — самобаф. Действует на кастера или на
// сражающегося союзного NPC, выбранного игроком. Что именно делает,
// решает SpecialKind заклинания.
//
// Invisibility and transformation timers are decayed by the character's own
// Status.Tick; OnEnd only detaches the buff.
type FollowCharacterBehavior struct{}

func (*FollowCharacterBehavior) Name() string { return "FollowCharacter" }

func (*FollowCharacterBehavior) OnCast(ctx *CastContext) {
	ctx.Manager.PlaySound(ctx.Spell.CastSound)
}

func (*FollowCharacterBehavior) Apply(ctx *HitContext) int32 {
	tc := ctx.Target.Character()
	if tc == nil || tc.IsDeath() {
		return 0
	}
	spell := ctx.Spell

	switch spell.SpecialKind {
	case data.SpecialAddLife:
		HealTarget(ctx.Target, spell.Effect)
		ctx.Sprite.Exhaust()
	case data.SpecialAddThew:
		RestoreThew(ctx.Target, spell.Effect)
		ctx.Sprite.Exhaust()
	case data.SpecialAddMana:
		RestoreMana(ctx.Target, spell.Effect)
		ctx.Sprite.Exhaust()
	case data.SpecialBuff:
		active, attached := tc.AddMagicSpriteInEffect(ctx.Sprite)
		if !attached {
			// Уже висит баф с таким именем: его таймер сброшен, новый спрайт не нужен.
			ctx.Sprite.Exhaust()
			slog.Debug("buff refreshed",
				"target", ctx.Target.ID(),
				"buff", active.BuffName())
		}
	case data.SpecialInvisible:
		tc.Status().SetInvisible(spell.InvisibleMs, false)
		ctx.Sprite.Exhaust()
	case data.SpecialInvisibleVisibleOnAttack:
		tc.Status().SetInvisible(spell.InvisibleMs, true)
		ctx.Sprite.Exhaust()
	case data.SpecialChangeCharacter:
		tc.ChangeCharacterBy(spell.ChangeCharacter, spell.TransformMs)
		ctx.Sprite.Exhaust()
	case data.SpecialRemoveAbnormal:
		tc.RemoveAbnormalState()
		ctx.Sprite.Exhaust()
	case data.SpecialChangeFlyIni:
		tc.FlyIniChangeBy(spell.FlyIni, spell.BuffMs)
		ctx.Sprite.Exhaust()
	default:
		ctx.Sprite.Exhaust()
	}
	return 0
}

func (*FollowCharacterBehavior) OnEnd(ctx *EndContext) {
	if tc := ctx.Sprite.Target().Character(); tc != nil {
		tc.RemoveMagicSpriteInEffect(ctx.Sprite)
	}
	ctx.Manager.PlaySound(ctx.Spell.VanishSound)
}

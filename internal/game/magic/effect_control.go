package magic

import "fmt"

// ControlBehavior — контроль разума: игрок берёт под управление NPC,
// уровень которого не выше MaxLevel заклинания.
type ControlBehavior struct{}

func (*ControlBehavior) Name() string { return "PlayerControl" }

func (*ControlBehavior) CanCast(ctx *CastContext) bool {
	if !ctx.Caster.IsPlayer() {
		return false
	}
	npc := ctx.Target.Npc()
	if npc == nil || npc.IsDeath() {
		ctx.Manager.ShowMessage("Нет цели для контроля")
		return false
	}
	if npc.Level() > ctx.Spell.MaxLevel {
		ctx.Manager.ShowMessage(fmt.Sprintf("%s слишком силён (уровень %d, максимум %d)",
			npc.Name(), npc.Level(), ctx.Spell.MaxLevel))
		return false
	}
	return true
}

func (*ControlBehavior) OnCast(ctx *CastContext) {
	ctx.Manager.PlaySound(ctx.Spell.CastSound)
	ctx.Manager.possess(ctx.Caster, ctx.Target)
}

func (*ControlBehavior) OnEnd(ctx *EndContext) {
	m := ctx.Manager
	if cur := m.Controlled(ctx.Caster); cur.Is(ctx.Sprite.Target()) {
		m.release(ctx.Caster)
	}
}

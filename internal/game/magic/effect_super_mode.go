package magic

// SuperModeBehavior hits every enemy in view when the sprite ends naturally.
// Cancelled or map-changed sprites deal nothing.
type SuperModeBehavior struct{}

func (*SuperModeBehavior) Name() string { return "SuperMode" }

func (*SuperModeBehavior) OnCast(ctx *CastContext) {
	ctx.Manager.PlaySound(ctx.Spell.CastSound)
	ctx.Manager.shake()
}

func (*SuperModeBehavior) Apply(ctx *HitContext) int32 {
	return DealDamage(ctx.Caster, ctx.Target, ctx.Spell, ctx.Sprite)
}

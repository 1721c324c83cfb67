package magic

// SimpleDamageBehavior — урон по столкнувшейся цели.
// Shared by every trajectory category whose only stat effect is damage.
type SimpleDamageBehavior struct{}

func (*SimpleDamageBehavior) Name() string { return "SimpleDamage" }

func (*SimpleDamageBehavior) OnCast(ctx *CastContext) {
	ctx.Manager.PlaySound(ctx.Spell.CastSound)
}

func (*SimpleDamageBehavior) Apply(ctx *HitContext) int32 {
	return DealDamage(ctx.Caster, ctx.Target, ctx.Spell, ctx.Sprite)
}

func (*SimpleDamageBehavior) OnEnd(ctx *EndContext) {
	ctx.Manager.PlaySound(ctx.Spell.VanishSound)
}

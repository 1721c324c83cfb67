package magic

// TrailingBehavior leaves short-lived damage zones behind the moving caster.
// The carrier sprite owns the registration; each zone is an independent
// fixed-position sprite with its own lifetime.
type TrailingBehavior struct{}

func (*TrailingBehavior) Name() string { return "Trailing" }

func (*TrailingBehavior) OnCast(ctx *CastContext) {
	ctx.Manager.PlaySound(ctx.Spell.CastSound)
	ctx.Manager.registerTrail(ctx.Caster, ctx.Spell, ctx.Origin)
}

func (*TrailingBehavior) Apply(ctx *HitContext) int32 {
	return DealDamage(ctx.Caster, ctx.Target, ctx.Spell, ctx.Sprite)
}

func (*TrailingBehavior) OnEnd(ctx *EndContext) {
	ctx.Manager.PlaySound(ctx.Spell.VanishSound)
	if !ctx.Sprite.IsTrailZone() {
		ctx.Manager.unregisterTrail(ctx.Caster, ctx.Sprite)
	}
}

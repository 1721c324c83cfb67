package magic

// SummonBehavior only plays sounds. The spawn request itself is dispatched by
// the Manager to its Spawner when the sprite ends naturally.
type SummonBehavior struct{}

func (*SummonBehavior) Name() string { return "Summon" }

func (*SummonBehavior) OnCast(ctx *CastContext) {
	ctx.Manager.PlaySound(ctx.Spell.CastSound)
}

func (*SummonBehavior) OnEnd(ctx *EndContext) {
	ctx.Manager.PlaySound(ctx.Spell.VanishSound)
}

package magic

import "log/slog"

// TransportBehavior teleports the caster to the cast destination when the
// sprite ends. One transport per caster at a time.
type TransportBehavior struct{}

func (*TransportBehavior) Name() string { return "Transport" }

func (*TransportBehavior) CanCast(ctx *CastContext) bool {
	return !ctx.Manager.InTransport(ctx.Caster)
}

func (*TransportBehavior) OnCast(ctx *CastContext) {
	ctx.Manager.PlaySound(ctx.Spell.CastSound)
	ctx.Manager.setInTransport(ctx.Caster, true)
}

func (*TransportBehavior) OnEnd(ctx *EndContext) {
	m := ctx.Manager
	defer m.setInTransport(ctx.Caster, false)

	c := ctx.Caster.Character()
	if c == nil || c.IsDeath() {
		return
	}
	switch ctx.Reason {
	case EndMapChange, EndCancelled:
		return
	}
	dest := ctx.Sprite.Destination()
	if w := m.World(); w != nil && w.IsObstacle(dest) {
		slog.Debug("transport destination blocked",
			"caster", ctx.Caster.ID(),
			"dest", dest)
		return
	}
	c.SetPosition(dest)
	m.PlaySound(ctx.Spell.VanishSound)
}

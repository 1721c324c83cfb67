package magic

import (
	"log/slog"

	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/model"
)

// EffectChannels computes raw damage channels from live caster stats.
//
// Formula per channel: base × (100 + equipment% + buff%) / 100.
// Channel 1 falls back to caster attack when the spell has no Effect,
// and additionally gets the flat equipment amount.
func EffectChannels(caster model.Ref, spell *data.SpellDefinition) model.DamageChannels {
	ch := model.DamageChannels{
		Effect:  spell.Effect,
		Effect2: spell.Effect2,
		Effect3: spell.Effect3,
		Mana:    spell.EffectMana,
	}

	c := caster.Character()
	if c == nil {
		return ch
	}

	if ch.Effect == 0 {
		ch.Effect = c.Attack(0)
	}

	equipPercent, equipAmount := c.MagicEffectBonus()
	percent := 100 + equipPercent + c.Status().AttackPercent()
	if percent < 0 {
		percent = 0
	}

	ch.Effect = scalePercent(ch.Effect, percent) + equipAmount
	ch.Effect2 = scalePercent(ch.Effect2, percent)
	ch.Effect3 = scalePercent(ch.Effect3, percent)
	ch.Effect = max(ch.Effect, 0)
	return ch
}

// DealDamage resolves the damage channels of spell against target and
// returns net damage after the target's own evasion and mitigation.
//
// Leaping spells use the sprite's frozen snapshot, so the roll is fixed per
// bounce. Everything else is recomputed from the caster.
func DealDamage(caster, target model.Ref, spell *data.SpellDefinition, sprite *Sprite) int32 {
	tc := target.Character()
	if tc == nil || tc.IsDeath() {
		return 0
	}

	var ch model.DamageChannels
	if spell.IsLeaping() && sprite != nil {
		ch = sprite.leap.Snapshot
	} else {
		ch = EffectChannels(caster, spell)
	}

	cc := caster.Character()
	damage := tc.TakeMagicDamage(cc, ch)
	if cc != nil {
		cc.Status().OnAttack()
	}

	slog.Debug("magic damage dealt",
		"spell", spell.ID,
		"caster", caster.ID(),
		"target", target.ID(),
		"channels", ch,
		"damage", damage)

	return damage
}

// HealTarget adds life clamped to LifeMax. Returns the delta actually applied.
// Dead characters are not healed.
func HealTarget(ref model.Ref, amount int32) int32 {
	c := ref.Character()
	if c == nil || amount <= 0 || c.IsDeath() {
		return 0
	}
	before := c.Life()
	c.SetLife(addClamped(before, amount, c.LifeMax()))
	return c.Life() - before
}

// RestoreMana adds mana clamped to ManaMax. Returns the delta actually applied.
func RestoreMana(ref model.Ref, amount int32) int32 {
	c := ref.Character()
	if c == nil || amount <= 0 || c.IsDeath() {
		return 0
	}
	before := c.Mana()
	c.SetMana(addClamped(before, amount, c.ManaMax()))
	return c.Mana() - before
}

// RestoreThew adds stamina clamped to ThewMax. Returns the delta actually applied.
func RestoreThew(ref model.Ref, amount int32) int32 {
	c := ref.Character()
	if c == nil || amount <= 0 || c.IsDeath() {
		return 0
	}
	before := c.Thew()
	c.SetThew(addClamped(before, amount, c.ThewMax()))
	return c.Thew() - before
}

// DeductCost subtracts casting costs from the caster.
// Mana and thew floor at 0, life at 1: a cast never kills its caster.
// Unset (<= 0) costs are skipped.
func DeductCost(caster model.Ref, spell *data.SpellDefinition) {
	c := caster.Character()
	if c == nil {
		return
	}
	if spell.ManaCost > 0 {
		c.SetMana(c.Mana() - spell.ManaCost)
	}
	if spell.ThewCost > 0 {
		c.SetThew(c.Thew() - spell.ThewCost)
	}
	if spell.LifeCost > 0 {
		if life := c.Life(); life > 0 {
			c.SetLife(max(life-spell.LifeCost, 1))
		}
	}
}

func scalePercent(v, percent int32) int32 {
	return int32(int64(v) * int64(percent) / 100)
}

// addClamped returns min(v+delta, limit) without int32 overflow.
func addClamped(v, delta, limit int32) int32 {
	sum := int64(v) + int64(delta)
	if sum > int64(limit) {
		return limit
	}
	return int32(sum)
}

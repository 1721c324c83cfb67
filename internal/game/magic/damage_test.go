package magic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/model"
)

func TestHealTarget(t *testing.T) {
	tests := []struct {
		name     string
		life     int32
		amount   int32
		want     int32
		wantLife int32
	}{
		{"partial", 50, 20, 20, 70},
		{"clamped to max", 90, 50, 10, 100},
		{"already full", 100, 30, 0, 100},
		{"zero amount", 50, 0, 0, 50},
		{"negative amount", 50, -10, 0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlayer(t, 1, model.Vec2{})
			p.SetLife(tt.life)

			got := HealTarget(model.PlayerRef(p), tt.amount)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantLife, p.Life())
		})
	}
}

func TestHealTarget_DeadOrMissing(t *testing.T) {
	p := newTestPlayer(t, 1, model.Vec2{})
	p.SetLife(0)

	assert.Equal(t, int32(0), HealTarget(model.PlayerRef(p), 50))
	assert.Equal(t, int32(0), p.Life())
	assert.Equal(t, int32(0), HealTarget(model.Ref{}, 50))
}

func TestRestoreManaAndThew(t *testing.T) {
	p := newTestPlayer(t, 1, model.Vec2{})
	ref := model.PlayerRef(p)
	p.SetMana(95)
	p.SetThew(40)

	assert.Equal(t, int32(5), RestoreMana(ref, 20))
	assert.Equal(t, int32(100), p.Mana())
	assert.Equal(t, int32(0), RestoreMana(ref, 20))

	assert.Equal(t, int32(30), RestoreThew(ref, 30))
	assert.Equal(t, int32(70), p.Thew())
}

func TestDeductCost(t *testing.T) {
	t.Run("mana scenario", func(t *testing.T) {
		p := newTestPlayer(t, 1, model.Vec2{})
		p.SetMana(50)

		DeductCost(model.PlayerRef(p), &data.SpellDefinition{ManaCost: 30})

		assert.Equal(t, int32(20), p.Mana())
	})

	t.Run("floors", func(t *testing.T) {
		p := newTestPlayer(t, 1, model.Vec2{})
		p.SetMana(10)
		p.SetThew(5)
		p.SetLife(10)

		DeductCost(model.PlayerRef(p), &data.SpellDefinition{ManaCost: 30, ThewCost: 30, LifeCost: 50})

		assert.Equal(t, int32(0), p.Mana())
		assert.Equal(t, int32(0), p.Thew())
		assert.Equal(t, int32(1), p.Life())
	})

	t.Run("life cost equal to life", func(t *testing.T) {
		p := newTestPlayer(t, 1, model.Vec2{})
		p.SetLife(30)

		DeductCost(model.PlayerRef(p), &data.SpellDefinition{LifeCost: 30})

		assert.Equal(t, int32(1), p.Life())
	})

	t.Run("unset costs skipped", func(t *testing.T) {
		p := newTestPlayer(t, 1, model.Vec2{})
		p.SetMana(40)
		p.SetThew(40)
		p.SetLife(40)

		DeductCost(model.PlayerRef(p), &data.SpellDefinition{ManaCost: 0, ThewCost: -5})

		assert.Equal(t, int32(40), p.Mana())
		assert.Equal(t, int32(40), p.Thew())
		assert.Equal(t, int32(40), p.Life())
	})

	t.Run("dead caster stays dead", func(t *testing.T) {
		p := newTestPlayer(t, 1, model.Vec2{})
		p.SetLife(0)

		DeductCost(model.PlayerRef(p), &data.SpellDefinition{LifeCost: 10})

		assert.Equal(t, int32(0), p.Life())
	})
}

func TestEffectChannels(t *testing.T) {
	p := newTestPlayer(t, 1, model.Vec2{})
	p.SetMagicEffectBonus(50, 7)
	spell := &data.SpellDefinition{Effect: 20, Effect2: 10, Effect3: 4, EffectMana: 3}

	ch := EffectChannels(model.PlayerRef(p), spell)

	assert.Equal(t, model.DamageChannels{Effect: 37, Effect2: 15, Effect3: 6, Mana: 3}, ch)
}

func TestEffectChannels_FallsBackToAttack(t *testing.T) {
	p := newTestPlayer(t, 1, model.Vec2{})
	p.SetAttack(25, 0, 0)

	ch := EffectChannels(model.PlayerRef(p), &data.SpellDefinition{})

	assert.Equal(t, int32(25), ch.Effect)
}

func TestDealDamage_Live(t *testing.T) {
	p := newTestPlayer(t, 1, model.Vec2{})
	enemy := newTestEnemy(2, model.Vec2{})
	enemy.SetDefense(10, 0, 0)

	got := DealDamage(model.PlayerRef(p), model.NpcRef(enemy), &data.SpellDefinition{ID: "x", Effect: 30}, nil)

	assert.Equal(t, int32(20), got)
	assert.Equal(t, int32(80), enemy.Life())
}

func TestDealDamage_MinimalFloor(t *testing.T) {
	p := newTestPlayer(t, 1, model.Vec2{})
	enemy := newTestEnemy(2, model.Vec2{})
	enemy.SetDefense(100, 0, 0)

	got := DealDamage(model.PlayerRef(p), model.NpcRef(enemy), &data.SpellDefinition{ID: "x", Effect: 30}, nil)

	assert.Equal(t, model.MinimalDamage, got)
}

func TestDealDamage_LeapUsesSnapshot(t *testing.T) {
	p := newTestPlayer(t, 1, model.Vec2{})
	enemy := newTestEnemy(2, model.Vec2{})
	spell := &data.SpellDefinition{ID: "chain", Effect: 40, LeapTimes: 2, LeapDecayPercent: 50}
	s := newSprite(1, spell, data.MoveSingle, model.PlayerRef(p), model.Ref{}, placement{}, model.Vec2{})

	// Stat changes after the cast do not affect the frozen snapshot.
	p.SetMagicEffectBonus(100, 100)
	require.True(t, s.advanceLeap())

	got := DealDamage(model.PlayerRef(p), model.NpcRef(enemy), spell, s)

	assert.Equal(t, int32(20), got)
}

func TestDealDamage_DeadTarget(t *testing.T) {
	p := newTestPlayer(t, 1, model.Vec2{})
	enemy := newTestEnemy(2, model.Vec2{})
	enemy.SetLife(0)

	assert.Equal(t, int32(0), DealDamage(model.PlayerRef(p), model.NpcRef(enemy), &data.SpellDefinition{Effect: 30}, nil))
}

func TestDealDamage_BreaksInvisibility(t *testing.T) {
	p := newTestPlayer(t, 1, model.Vec2{})
	p.Status().SetInvisible(5000, true)
	enemy := newTestEnemy(2, model.Vec2{})

	DealDamage(model.PlayerRef(p), model.NpcRef(enemy), &data.SpellDefinition{Effect: 30}, nil)

	assert.False(t, p.Status().IsInvisible())
}

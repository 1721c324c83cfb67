package magic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/model"
)

func selfSpell(kind data.SpecialKind) *data.SpellDefinition {
	return &data.SpellDefinition{
		ID:          "self",
		Name:        "Self",
		MoveKind:    data.MoveFollowCharacter,
		SpecialKind: kind,
	}
}

func TestFollowCharacter_HealsCaster(t *testing.T) {
	w := &testWorld{}
	p := newTestPlayer(t, 1, model.Vec2{})
	p.SetLife(50)
	w.add(model.PlayerRef(p))
	m := newTestManager(w)

	spell := selfSpell(data.SpecialAddLife)
	spell.Effect = 30
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell})

	require.NoError(t, err)
	assert.Equal(t, int32(80), p.Life())
	assert.Zero(t, m.SpriteCount())
}

func TestFollowCharacter_HealsFightingAlly(t *testing.T) {
	w := &testWorld{}
	p := newTestPlayer(t, 1, model.Vec2{})
	p.SetLife(50)
	ally := model.NewNpc(2, "Guard", model.NewVec2(30, 0), 5, 100, 0, 0, model.RelationFriend, model.NpcKindFighter)
	ally.SetLife(40)
	w.add(model.PlayerRef(p), model.NpcRef(ally))
	m := newTestManager(w)

	spell := selfSpell(data.SpecialAddLife)
	spell.Effect = 30
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell, Target: model.NpcRef(ally)})

	require.NoError(t, err)
	assert.Equal(t, int32(70), ally.Life())
	assert.Equal(t, int32(50), p.Life())
}

func TestFollowCharacter_EnemyTargetFallsBackToCaster(t *testing.T) {
	w := &testWorld{}
	p := newTestPlayer(t, 1, model.Vec2{})
	p.SetMana(10)
	enemy := newTestEnemy(2, model.Vec2{})
	enemy.SetMana(10)
	w.add(model.PlayerRef(p), model.NpcRef(enemy))
	m := newTestManager(w)

	spell := selfSpell(data.SpecialAddMana)
	spell.Effect = 25
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell, Target: model.NpcRef(enemy)})

	require.NoError(t, err)
	assert.Equal(t, int32(35), p.Mana())
	assert.Equal(t, int32(10), enemy.Mana())
}

func TestFollowCharacter_RestoreThew(t *testing.T) {
	m := newTestManager(&testWorld{})
	p := newTestPlayer(t, 1, model.Vec2{})
	p.SetThew(0)

	spell := selfSpell(data.SpecialAddThew)
	spell.Effect = 500
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell})

	require.NoError(t, err)
	assert.Equal(t, int32(100), p.Thew())
}

func TestFollowCharacter_BuffResetsInsteadOfStacking(t *testing.T) {
	m := newTestManager(&testWorld{})
	p := newTestPlayer(t, 1, model.Vec2{})

	spell := selfSpell(data.SpecialBuff)
	spell.Name = "Stone Skin"
	spell.BuffMs = 1000
	spell.DefenseBonus = 5

	first, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell})
	require.NoError(t, err)
	require.Len(t, p.Status().Buffs(), 1)
	assert.Equal(t, int32(5), p.Defense(0))

	m.Update(500)
	assert.Equal(t, int32(500), first[0].ElapsedMs())

	_, err = m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell})
	require.NoError(t, err)

	assert.Len(t, p.Status().Buffs(), 1)
	assert.Equal(t, 1, m.SpriteCount())
	assert.Zero(t, first[0].ElapsedMs())

	m.Update(600)
	assert.Len(t, p.Status().Buffs(), 1, "timer was reset, buff still active")

	m.Update(500)
	assert.Empty(t, p.Status().Buffs())
	assert.Equal(t, int32(0), p.Defense(0))
	assert.Zero(t, m.SpriteCount())
}

func TestFollowCharacter_BuffEndsWhenTargetDies(t *testing.T) {
	w := &testWorld{}
	p := newTestPlayer(t, 1, model.Vec2{})
	w.add(model.PlayerRef(p))
	m := newTestManager(w)

	spell := selfSpell(data.SpecialBuff)
	spell.BuffMs = 5000
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell})
	require.NoError(t, err)

	p.SetLife(0)
	m.Update(10)

	assert.Zero(t, m.SpriteCount())
	assert.Empty(t, p.Status().Buffs())
}

func TestFollowCharacter_StatusSubKinds(t *testing.T) {
	tests := []struct {
		name  string
		kind  data.SpecialKind
		setup func(p *model.Player)
		check func(t *testing.T, p *model.Player)
	}{
		{
			name: "invisible",
			kind: data.SpecialInvisible,
			check: func(t *testing.T, p *model.Player) {
				assert.True(t, p.Status().IsInvisible())
				p.Status().OnAttack()
				assert.True(t, p.Status().IsInvisible())
			},
		},
		{
			name: "invisible until attack",
			kind: data.SpecialInvisibleVisibleOnAttack,
			check: func(t *testing.T, p *model.Player) {
				assert.True(t, p.Status().IsInvisible())
				p.Status().OnAttack()
				assert.False(t, p.Status().IsInvisible())
			},
		},
		{
			name: "change character",
			kind: data.SpecialChangeCharacter,
			check: func(t *testing.T, p *model.Player) {
				assert.Equal(t, "wolf", p.Status().TransformHandle())
			},
		},
		{
			name: "remove abnormal",
			kind: data.SpecialRemoveAbnormal,
			setup: func(p *model.Player) {
				p.Status().SetAbnormal(model.AbnormalPoison, 5000)
			},
			check: func(t *testing.T, p *model.Player) {
				assert.False(t, p.Status().HasAbnormal(model.AbnormalPoison))
			},
		},
		{
			name: "change fly ini",
			kind: data.SpecialChangeFlyIni,
			check: func(t *testing.T, p *model.Player) {
				assert.Equal(t, "fireball", p.FlyIni())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(&testWorld{})
			p := newTestPlayer(t, 1, model.Vec2{})
			if tt.setup != nil {
				tt.setup(p)
			}
			spell := selfSpell(tt.kind)
			spell.InvisibleMs = 3000
			spell.TransformMs = 3000
			spell.BuffMs = 3000
			spell.ChangeCharacter = "wolf"
			spell.FlyIni = "fireball"

			_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell})

			require.NoError(t, err)
			tt.check(t, p)
			assert.Zero(t, m.SpriteCount())
		})
	}
}

func TestSuperMode_HitsEnemiesInViewAtEnd(t *testing.T) {
	w := &testWorld{}
	p := newTestPlayer(t, 1, model.Vec2{})
	near := newTestEnemy(2, model.NewVec2(100, 0))
	far := newTestEnemy(3, model.NewVec2(2000, 0))
	friend := model.NewNpc(4, "Guard", model.NewVec2(50, 0), 5, 100, 0, 0, model.RelationFriend, model.NpcKindFighter)
	w.add(model.PlayerRef(p), model.NpcRef(near), model.NpcRef(far), model.NpcRef(friend))
	m := newTestManager(w)

	spell := &data.SpellDefinition{ID: "storm", MoveKind: data.MoveSuperMode, Effect: 30, LifeMs: 200}
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell})
	require.NoError(t, err)
	assert.Equal(t, int32(DefaultScreenShakeMs), m.ScreenShake())

	m.Update(100)
	assert.Equal(t, int32(DefaultScreenShakeMs-100), m.ScreenShake())
	assert.Equal(t, int32(100), near.Life(), "no damage before the sprite ends")

	m.Update(100)
	assert.Equal(t, int32(70), near.Life())
	assert.Equal(t, int32(100), far.Life())
	assert.Equal(t, int32(100), friend.Life())
	assert.Zero(t, m.SpriteCount())
}

func TestSuperMode_CancelDealsNothing(t *testing.T) {
	w := &testWorld{}
	p := newTestPlayer(t, 1, model.Vec2{})
	near := newTestEnemy(2, model.NewVec2(100, 0))
	w.add(model.PlayerRef(p), model.NpcRef(near))
	m := newTestManager(w, WithScreenShake(800))

	spell := &data.SpellDefinition{ID: "storm", MoveKind: data.MoveSuperMode, Effect: 30, LifeMs: 200}
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell})
	require.NoError(t, err)
	assert.Equal(t, int32(800), m.ScreenShake())

	m.CancelAll(EndMapChange)

	assert.Equal(t, int32(100), near.Life())
	assert.Zero(t, m.ScreenShake())
}

func TestTrailing_DropsIndependentZones(t *testing.T) {
	w := &testWorld{}
	p := newTestPlayer(t, 1, model.Vec2{})
	enemy := newTestEnemy(2, model.NewVec2(40, 10))
	w.add(model.PlayerRef(p), model.NpcRef(enemy))
	m := newTestManager(w)

	spell := &data.SpellDefinition{
		ID:           "flame_trail",
		MoveKind:     data.MoveTrailing,
		Effect:       10,
		LifeMs:       1000,
		TrailKeepMs:  300,
		TrailSpacing: 32,
	}
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell})
	require.NoError(t, err)
	assert.True(t, m.IsTrailing(model.PlayerRef(p)))

	m.Update(10)
	assert.Equal(t, 1, m.SpriteCount(), "caster has not moved yet")

	p.SetPosition(model.NewVec2(40, 0))
	m.Update(10)
	require.Equal(t, 2, m.SpriteCount())
	assert.Equal(t, int32(90), enemy.Life())

	var zone *Sprite
	for _, s := range m.Sprites() {
		if s.IsTrailZone() {
			zone = s
		}
	}
	require.NotNil(t, zone)
	assert.Equal(t, data.MoveFixedPosition, zone.Kind())

	m.Update(300)
	assert.Equal(t, 1, m.SpriteCount(), "zone expired on its own")
	assert.Equal(t, int32(90), enemy.Life(), "zone hits once")
	assert.True(t, m.IsTrailing(model.PlayerRef(p)))

	m.Update(700)
	assert.Zero(t, m.SpriteCount())
	assert.False(t, m.IsTrailing(model.PlayerRef(p)))
}

func TestTransport_RelocatesAtEnd(t *testing.T) {
	w := &testWorld{}
	p := newTestPlayer(t, 1, model.Vec2{})
	w.add(model.PlayerRef(p))
	m := newTestManager(w)

	spell := &data.SpellDefinition{ID: "blink", MoveKind: data.MoveTransport, LifeMs: 300, ManaCost: 10}
	dest := model.NewVec2(200, 0)
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell, Destination: dest})
	require.NoError(t, err)
	assert.True(t, m.InTransport(model.PlayerRef(p)))

	_, err = m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell, Destination: dest})
	assert.ErrorIs(t, err, ErrCastRejected)
	assert.Equal(t, int32(90), p.Mana(), "rejected cast costs nothing")

	m.Update(300)

	assert.Equal(t, dest, p.Position())
	assert.False(t, m.InTransport(model.PlayerRef(p)))
}

func TestTransport_BlockedDestination(t *testing.T) {
	w := &testWorld{obstacle: func(pos model.Vec2) bool { return pos.X > 150 }}
	p := newTestPlayer(t, 1, model.Vec2{})
	w.add(model.PlayerRef(p))
	m := newTestManager(w)

	spell := &data.SpellDefinition{ID: "blink", MoveKind: data.MoveTransport, LifeMs: 100}
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell, Destination: model.NewVec2(200, 0)})
	require.NoError(t, err)

	m.Update(100)

	assert.Equal(t, model.Vec2{}, p.Position())
	assert.False(t, m.InTransport(model.PlayerRef(p)))
}

func TestTransport_MapChangeClearsFlag(t *testing.T) {
	m := newTestManager(&testWorld{})
	p := newTestPlayer(t, 1, model.Vec2{})

	spell := &data.SpellDefinition{ID: "blink", MoveKind: data.MoveTransport, LifeMs: 100}
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell, Destination: model.NewVec2(200, 0)})
	require.NoError(t, err)

	m.CancelAll(EndMapChange)

	assert.Equal(t, model.Vec2{}, p.Position())
	assert.False(t, m.InTransport(model.PlayerRef(p)))
}

func TestControl_PossessAndRelease(t *testing.T) {
	w := &testWorld{}
	p := newTestPlayer(t, 1, model.Vec2{})
	npc := newTestEnemy(2, model.NewVec2(50, 0))
	npc.SetFighting(true)
	w.add(model.PlayerRef(p), model.NpcRef(npc))
	m := newTestManager(w)

	spell := &data.SpellDefinition{ID: "charm", MoveKind: data.MovePlayerControl, MaxLevel: 5, LifeMs: 1000}
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell, Target: model.NpcRef(npc)})
	require.NoError(t, err)

	assert.True(t, m.Controlled(model.PlayerRef(p)).Is(model.NpcRef(npc)))
	assert.Equal(t, model.RelationFriend, npc.Relation())
	assert.Equal(t, uint32(1), npc.ControlledBy())
	assert.False(t, npc.IsFighting())

	m.Update(1000)

	assert.True(t, m.Controlled(model.PlayerRef(p)).IsZero())
	assert.Equal(t, model.RelationEnemy, npc.Relation())
	assert.Zero(t, npc.ControlledBy())
}

func TestControl_ReleaseKeepsLaterController(t *testing.T) {
	w := &testWorld{}
	p1 := newTestPlayer(t, 1, model.Vec2{})
	p2 := newTestPlayer(t, 3, model.NewVec2(0, 50))
	npc := newTestEnemy(2, model.NewVec2(50, 0))
	w.add(model.PlayerRef(p1), model.PlayerRef(p2), model.NpcRef(npc))
	m := newTestManager(w)

	spell := &data.SpellDefinition{ID: "charm", MoveKind: data.MovePlayerControl, MaxLevel: 5, LifeMs: 1000}
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p1), Spell: spell, Target: model.NpcRef(npc)})
	require.NoError(t, err)
	m.Update(500)

	_, err = m.Cast(CastRequest{Caster: model.PlayerRef(p2), Spell: spell, Target: model.NpcRef(npc)})
	require.NoError(t, err)
	require.Equal(t, uint32(3), npc.ControlledBy())

	// Контроль первого игрока истекает, второй остаётся.
	m.Update(500)

	assert.True(t, m.Controlled(model.PlayerRef(p1)).IsZero())
	assert.Equal(t, uint32(3), npc.ControlledBy())
	assert.Equal(t, model.RelationFriend, npc.Relation())

	m.Update(500)

	assert.True(t, m.Controlled(model.PlayerRef(p2)).IsZero())
	assert.Zero(t, npc.ControlledBy())
	assert.Equal(t, model.RelationEnemy, npc.Relation())
}

func TestControl_Validation(t *testing.T) {
	p, err := model.NewPlayer(1, 0, "Hero", model.Vec2{}, 10, 100, 100, 100)
	require.NoError(t, err)
	strong := model.NewNpc(2, "Ogre", model.Vec2{}, 9, 100, 0, 0, model.RelationEnemy, model.NpcKindFighter)
	dead := newTestEnemy(3, model.Vec2{})
	dead.SetLife(0)
	npcCaster := newTestEnemy(4, model.Vec2{})
	weak := newTestEnemy(5, model.Vec2{})

	spell := &data.SpellDefinition{ID: "charm", MoveKind: data.MovePlayerControl, MaxLevel: 5, ManaCost: 10}

	tests := []struct {
		name     string
		caster   model.Ref
		target   model.Ref
		messages int
	}{
		{"level above max", model.PlayerRef(p), model.NpcRef(strong), 1},
		{"dead target", model.PlayerRef(p), model.NpcRef(dead), 1},
		{"no target", model.PlayerRef(p), model.Ref{}, 1},
		{"player target", model.PlayerRef(p), model.PlayerRef(p), 1},
		{"npc caster", model.NpcRef(npcCaster), model.NpcRef(weak), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var shown []string
			m := newTestManager(&testWorld{}, WithMessenger(MessageFunc(func(text string) {
				shown = append(shown, text)
			})))
			manaBefore := tt.caster.Mana()

			_, err := m.Cast(CastRequest{Caster: tt.caster, Spell: spell, Target: tt.target})

			assert.ErrorIs(t, err, ErrCastRejected)
			assert.Len(t, shown, tt.messages)
			assert.Equal(t, manaBefore, tt.caster.Mana())
			assert.True(t, m.Controlled(tt.caster).IsZero())
		})
	}
}

func TestControl_MissingMessengerDoesNotFault(t *testing.T) {
	m := newTestManager(&testWorld{})
	p := newTestPlayer(t, 1, model.Vec2{})
	spell := &data.SpellDefinition{ID: "charm", MoveKind: data.MovePlayerControl, MaxLevel: 0}

	assert.NotPanics(t, func() {
		_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell, Target: model.NpcRef(newTestEnemy(2, model.Vec2{}))})
		assert.ErrorIs(t, err, ErrCastRejected)
	})
}

func TestSummon_DispatchesOnNaturalEnd(t *testing.T) {
	spawner := &testSpawner{}
	var sounds []string
	m := newTestManager(&testWorld{},
		WithSpawner(spawner),
		WithSoundPlayer(SoundFunc(func(name string) { sounds = append(sounds, name) })))
	p := newTestPlayer(t, 1, model.Vec2{})

	spell := &data.SpellDefinition{
		ID:          "wolf_call",
		MoveKind:    data.MoveSummon,
		NpcFile:     "wolf.ini",
		LifeMs:      200,
		CastSound:   "summon.wav",
		VanishSound: "poof.wav",
	}
	at := model.NewVec2(64, 64)
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell, Destination: at})
	require.NoError(t, err)

	m.Update(200)

	require.Len(t, spawner.calls, 1)
	assert.Equal(t, "wolf.ini", spawner.calls[0].npcFile)
	assert.Equal(t, at, spawner.calls[0].at)
	assert.True(t, spawner.calls[0].owner.Is(model.PlayerRef(p)))
	assert.Equal(t, []string{"summon.wav", "poof.wav"}, sounds)
}

func TestSummon_CancelledDoesNotSpawn(t *testing.T) {
	spawner := &testSpawner{}
	m := newTestManager(&testWorld{}, WithSpawner(spawner))
	p := newTestPlayer(t, 1, model.Vec2{})

	spell := &data.SpellDefinition{ID: "wolf_call", MoveKind: data.MoveSummon, NpcFile: "wolf.ini", LifeMs: 200}
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell, Destination: model.NewVec2(64, 64)})
	require.NoError(t, err)

	m.CancelAll(EndMapChange)

	assert.Empty(t, spawner.calls)
}

func TestSimpleDamage_Sounds(t *testing.T) {
	var sounds []string
	w := &testWorld{}
	p := newTestPlayer(t, 1, model.Vec2{})
	enemy := newTestEnemy(2, model.NewVec2(50, 0))
	w.add(model.PlayerRef(p), model.NpcRef(enemy))
	m := newTestManager(w, WithSoundPlayer(SoundFunc(func(name string) { sounds = append(sounds, name) })))

	spell := boltSpell()
	spell.CastSound = "cast.wav"
	spell.VanishSound = "vanish.wav"
	_, err := m.Cast(CastRequest{Caster: model.PlayerRef(p), Spell: spell, Destination: enemy.Position()})
	require.NoError(t, err)
	m.Update(50)

	assert.Equal(t, []string{"cast.wav", "vanish.wav"}, sounds)
}

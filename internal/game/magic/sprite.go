package magic

import (
	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/model"
)

// Defaults for catalog entries that leave motion fields unset.
const (
	defaultSpeed  = 200.0 // units per second
	defaultRange  = 320.0
	defaultRadius = 16.0
	defaultLifeMs = 1000

	// characterRadius is the collision radius of every character.
	characterRadius = 16.0
)

// LeapState — состояние прыгающей магии.
// Snapshot фиксируется один раз при создании и меняется только в advanceLeap.
type LeapState struct {
	Snapshot     model.DamageChannels
	Left         int32
	decayPercent int32
}

// Sprite — живой экземпляр одного каста: позиция, прогресс движения,
// время жизни, ссылки на кастера и цель.
//
// Owned by exactly one Manager; sprites never own one another.
type Sprite struct {
	id    uint64
	spell *data.SpellDefinition
	kind  data.MoveKind // effective trajectory kind

	caster model.Ref
	target model.Ref

	pos  model.Vec2
	dir  model.Vec2
	dest model.Vec2

	speed     float64
	radius    float64
	travelled float64
	maxTravel float64

	delayMs   int32
	elapsedMs int32
	lifeMs    int32 // 0 means no lifetime limit

	leap LeapState
	hits map[uint32]struct{}

	trailZone  bool
	pendingEnd EndReason
	ending     bool
	destroyed  bool
}

func newSprite(id uint64, spell *data.SpellDefinition, kind data.MoveKind, caster, target model.Ref, p placement, dest model.Vec2) *Sprite {
	s := &Sprite{
		id:     id,
		spell:  spell,
		kind:   kind,
		caster: caster,
		target: target,
		pos:    p.pos,
		dir:    p.dir,
		dest:   dest,
		speed:  spell.Speed,
		radius: spell.Radius,
		lifeMs: spell.LifeMs,
		hits:   make(map[uint32]struct{}),
	}
	s.delayMs = p.delayMs

	if s.speed <= 0 {
		s.speed = defaultSpeed
	}
	if s.radius <= 0 {
		s.radius = defaultRadius
	}
	s.maxTravel = spell.Range
	if s.maxTravel <= 0 {
		s.maxTravel = defaultRange
	}
	if kind == data.MoveThrow {
		s.maxTravel = p.pos.Distance(dest)
	}

	switch kind {
	case data.MoveFollowCharacter:
		if spell.SpecialKind == data.SpecialBuff && spell.BuffMs > 0 {
			s.lifeMs = spell.BuffMs
		}
		if s.lifeMs <= 0 {
			s.lifeMs = defaultLifeMs
		}
	case data.MoveFixedPosition, data.MoveFixedWall, data.MoveRegionBased,
		data.MoveSuperMode, data.MoveTrailing, data.MoveTransport,
		data.MovePlayerControl, data.MoveSummon:
		if s.lifeMs <= 0 {
			s.lifeMs = defaultLifeMs
		}
	}

	if spell.IsLeaping() {
		s.leap = LeapState{
			Snapshot:     EffectChannels(caster, spell),
			Left:         spell.LeapTimes,
			decayPercent: min(max(spell.LeapDecayPercent, 0), 100),
		}
	}
	return s
}

// ID returns the unique sprite id within its Manager.
func (s *Sprite) ID() uint64 { return s.id }

// Spell returns the owning spell definition.
func (s *Sprite) Spell() *data.SpellDefinition { return s.spell }

// Kind returns the effective trajectory kind. Trailing zones report MoveFixedPosition.
func (s *Sprite) Kind() data.MoveKind { return s.kind }

// Caster returns the caster reference.
func (s *Sprite) Caster() model.Ref { return s.caster }

// Target returns the current target reference (may be zero).
func (s *Sprite) Target() model.Ref { return s.target }

// Position returns the current position.
func (s *Sprite) Position() model.Vec2 { return s.pos }

// Destination returns the cast destination.
func (s *Sprite) Destination() model.Vec2 { return s.dest }

// Travelled returns the distance moved since launch or the last bounce.
func (s *Sprite) Travelled() float64 { return s.travelled }

// ElapsedMs returns the time the sprite has been alive.
func (s *Sprite) ElapsedMs() int32 { return s.elapsedMs }

// Leap returns the leap state (snapshot and leaps left).
func (s *Sprite) Leap() LeapState { return s.leap }

// IsTrailZone reports whether the sprite is a zone dropped behind a trailing caster.
func (s *Sprite) IsTrailZone() bool { return s.trailZone }

// IsDestroyed reports whether the sprite has been destroyed.
func (s *Sprite) IsDestroyed() bool { return s.destroyed }

// Exhaust asks the Manager to destroy the sprite at the end of the current step.
func (s *Sprite) Exhaust() {
	s.requestEnd(EndExhausted)
}

func (s *Sprite) requestEnd(reason EndReason) {
	if s.ending || s.destroyed {
		return
	}
	s.ending = true
	s.pendingEnd = reason
}

// advanceLeap consumes one leap and decays the snapshot.
// Returns false when no leaps are left.
func (s *Sprite) advanceLeap() bool {
	if s.leap.Left <= 0 {
		return false
	}
	s.leap.Left--
	keep := int64(100 - s.leap.decayPercent)
	decay := func(v int32) int32 { return int32(int64(v) * keep / 100) }
	s.leap.Snapshot = model.DamageChannels{
		Effect:  decay(s.leap.Snapshot.Effect),
		Effect2: decay(s.leap.Snapshot.Effect2),
		Effect3: decay(s.leap.Snapshot.Effect3),
		Mana:    decay(s.leap.Snapshot.Mana),
	}
	s.travelled = 0
	return true
}

// BuffName implements model.Buff.
func (s *Sprite) BuffName() string { return s.spell.Name }

// ResetLifetime implements model.Buff.
func (s *Sprite) ResetLifetime() { s.elapsedMs = 0 }

// AttackPercent implements model.Buff.
func (s *Sprite) AttackPercent() int32 { return s.spell.AttackPercent }

// DefenseBonus implements model.Buff.
func (s *Sprite) DefenseBonus() int32 { return s.spell.DefenseBonus }

func (s *Sprite) expired() bool {
	return s.lifeMs > 0 && s.elapsedMs >= s.lifeMs
}

// homing reports whether the sprite re-aims at its target every tick:
// FollowEnemy sprites always, leaping sprites after the first bounce.
func (s *Sprite) homing() bool {
	return s.kind == data.MoveFollowEnemy || (s.spell.IsLeaping() && s.leap.Left < s.spell.LeapTimes)
}

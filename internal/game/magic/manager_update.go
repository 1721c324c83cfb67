package magic

import (
	"cmp"
	"maps"
	"slices"

	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/model"
)

// Update advances the simulation by deltaMs.
//
// Порядок тика:
//  1. затухание тряски экрана;
//  2. перестройка spatial hash по живым персонажам;
//  3. trailing-зоны за движущимися кастерами;
//  4. движение, коллизии и время жизни каждого спрайта;
//  5. OnEnd для завершившихся спрайтов, затем удаление из коллекции.
//
// Sprites spawned during the tick start moving on the next one.
func (m *Manager) Update(deltaMs int32) {
	if deltaMs <= 0 {
		return
	}
	if m.screenShake > 0 {
		m.screenShake = max(m.screenShake-deltaMs, 0)
	}

	m.rebuildGrid()
	m.dropTrailZones()

	n := len(m.sprites)
	for i := 0; i < n; i++ {
		s := m.sprites[i]
		if s.destroyed || s.ending {
			continue
		}
		m.step(s, deltaMs)
	}

	m.flushEnding()
}

func (m *Manager) rebuildGrid() {
	m.grid.reset()
	if m.world == nil {
		return
	}
	for _, ref := range m.world.Characters() {
		if ref.IsAlive() {
			m.grid.insert(ref)
		}
	}
}

// dropTrailZones leaves a fixed-position zone behind every trailing caster
// that moved at least TrailSpacing since the previous drop.
func (m *Manager) dropTrailZones() {
	for _, id := range slices.Sorted(maps.Keys(m.trailing)) {
		e := m.trailing[id]
		if !e.caster.IsAlive() {
			continue
		}
		spacing := e.spell.TrailSpacing
		if spacing <= 0 {
			spacing = TileSize
		}
		pos := e.caster.Position()
		if pos.Distance(e.lastDrop) < spacing {
			continue
		}
		z := m.spawnTrailZone(e, pos)
		e.lastDrop = pos
		m.logger.Debug("trail zone dropped",
			"caster", e.caster.ID(),
			"spell", e.spell.ID,
			"sprite", z.id)
	}
}

func (m *Manager) step(s *Sprite, deltaMs int32) {
	if s.delayMs > 0 {
		if deltaMs <= s.delayMs {
			s.delayMs -= deltaMs
			return
		}
		deltaMs -= s.delayMs
		s.delayMs = 0
	}
	s.elapsedMs += deltaMs

	if isStationary(s.kind) {
		m.stepAnchored(s)
	} else if !m.stepMoving(s, deltaMs) {
		return
	}
	if s.ending {
		return
	}

	if s.kind != data.MoveThrow {
		m.collide(s)
		if s.ending {
			return
		}
	}

	if s.expired() {
		s.requestEnd(EndExpired)
	}
}

// stepAnchored keeps non-moving sprites attached to the character they act on.
func (m *Manager) stepAnchored(s *Sprite) {
	switch s.kind {
	case data.MoveFollowCharacter:
		if !s.target.IsAlive() {
			s.requestEnd(EndExhausted)
			return
		}
		s.pos = s.target.Position()
	case data.MoveSuperMode, data.MoveTrailing, data.MoveTransport:
		if !s.caster.IsZero() {
			s.pos = s.caster.Position()
		}
	case data.MovePlayerControl:
		if !s.target.IsAlive() {
			s.requestEnd(EndExhausted)
			return
		}
		s.pos = s.target.Position()
	}
}

// stepMoving advances a flying sprite. Returns false if the sprite ended.
func (m *Manager) stepMoving(s *Sprite, deltaMs int32) bool {
	if s.kind == data.MoveFollowEnemy && !s.target.IsAlive() {
		if next, ok := m.grid.nearest(s.pos, s.maxTravel, func(r model.Ref) bool {
			return m.canHit(s, r)
		}); ok {
			s.target = next
		}
	}
	if s.homing() && s.target.IsAlive() {
		if d := s.target.Position().Sub(s.pos).Normalize(); d != (model.Vec2{}) {
			s.dir = d
		}
	}

	dist := s.speed * float64(deltaMs) / 1000
	if s.kind == data.MoveThrow {
		dist = min(dist, s.maxTravel-s.travelled)
	}
	next := s.pos.Add(s.dir.Scale(dist))
	if m.world != nil && m.world.IsObstacle(next) {
		s.requestEnd(EndBlocked)
		return false
	}
	s.pos = next
	s.travelled += dist

	if s.travelled < s.maxTravel {
		return true
	}

	// Брошенная магия бьёт только в точке падения.
	if s.kind == data.MoveThrow {
		s.pos = s.dest
		m.collide(s)
	}
	s.requestEnd(EndCompleted)
	return false
}

// collide applies hits to every enemy overlapping s.
func (m *Manager) collide(s *Sprite) {
	if !collides(s.kind) {
		return
	}

	region := s.kind == data.MoveRegionBased && !s.trailZone
	radius := s.radius + characterRadius
	if region {
		// Bounding circle of every region shape.
		radius = float64(max(s.spell.RegionRadius, 1))*TileSize*1.5 + characterRadius
	}
	consumes := !isStationary(s.kind) && !s.spell.PassThrough

	var hitsThisStep []model.Ref
	m.grid.queryRadius(s.pos, radius, func(ref model.Ref, at model.Vec2) bool {
		if !m.canHit(s, ref) {
			return true
		}
		if region && !regionContains(s.spell.Region, s.spell.RegionRadius, s.pos, s.dir, at) {
			return true
		}
		hitsThisStep = append(hitsThisStep, ref)
		return !consumes
	})

	slices.SortFunc(hitsThisStep, func(a, b model.Ref) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	for _, ref := range hitsThisStep {
		m.hit(s, ref)
		if s.ending {
			return
		}
	}

	if consumes && len(hitsThisStep) > 0 {
		if s.spell.IsLeaping() {
			m.leap(s, hitsThisStep[0])
			return
		}
		s.requestEnd(EndExhausted)
	}
}

// collides reports whether sprites of kind hit characters by overlap.
func collides(kind data.MoveKind) bool {
	switch kind {
	case data.MoveNone, data.MoveFollowCharacter, data.MoveSuperMode, data.MoveTrailing,
		data.MoveTransport, data.MovePlayerControl, data.MoveSummon:
		return false
	default:
		return true
	}
}

// canHit reports whether s may hit ref: a live enemy of the caster not hit yet.
func (m *Manager) canHit(s *Sprite, ref model.Ref) bool {
	if !ref.IsAlive() || ref.Is(s.caster) {
		return false
	}
	if _, done := s.hits[ref.ID()]; done {
		return false
	}
	cc := s.caster.Character()
	if cc == nil {
		return false
	}
	return cc.IsEnemyOf(ref.Character())
}

// hit runs the behavior's Apply for one (sprite, target) pair and records
// the pair so it never fires twice.
func (m *Manager) hit(s *Sprite, target model.Ref) int32 {
	b, ok := GetBehavior(s.kind)
	if !ok {
		s.hits[target.ID()] = struct{}{}
		return 0
	}
	damage := invokeApply(b, &HitContext{
		Manager: m,
		Caster:  s.caster,
		Target:  target,
		Spell:   s.spell,
		Sprite:  s,
	})
	s.hits[target.ID()] = struct{}{}
	return damage
}

// leap bounces s from the character it just hit to the nearest un-hit enemy.
func (m *Manager) leap(s *Sprite, from model.Ref) {
	if !s.advanceLeap() {
		s.requestEnd(EndExhausted)
		return
	}
	leapRange := s.spell.LeapRange
	if leapRange <= 0 {
		leapRange = defaultRange
	}
	origin := from.Position()
	next, ok := m.grid.nearest(origin, leapRange, func(r model.Ref) bool {
		return m.canHit(s, r)
	})
	if !ok {
		s.requestEnd(EndExhausted)
		return
	}

	s.pos = origin
	s.target = next
	if d := next.Position().Sub(origin).Normalize(); d != (model.Vec2{}) {
		s.dir = d
	}
	m.logger.Debug("magic leap",
		"sprite", s.id,
		"from", from.ID(),
		"to", next.ID(),
		"left", s.leap.Left)
}

// flushEnding runs OnEnd for every sprite that ended and removes it.
func (m *Manager) flushEnding() {
	for i := 0; i < len(m.sprites); i++ {
		if s := m.sprites[i]; s.ending && !s.destroyed {
			m.finish(s)
		}
	}
	m.sprites = slices.DeleteFunc(m.sprites, func(s *Sprite) bool { return s.destroyed })
}

// finish destroys s. Category side effects of a natural end run first,
// then OnEnd, then the destroyed flag is set.
func (m *Manager) finish(s *Sprite) {
	reason := s.pendingEnd
	b, hasBehavior := GetBehavior(s.kind)

	if reason == EndCompleted || reason == EndExpired {
		switch s.kind {
		case data.MoveSuperMode:
			if hasBehavior {
				m.applyToEnemiesInView(s)
			}
		case data.MoveSummon:
			m.dispatchSummon(s)
		}
	}

	if hasBehavior {
		invokeEnd(b, &EndContext{
			Manager: m,
			Caster:  s.caster,
			Spell:   s.spell,
			Sprite:  s,
			Reason:  reason,
		})
	}
	s.destroyed = true
	s.ending = false

	m.logger.Debug("magic sprite destroyed",
		"sprite", s.id,
		"spell", s.spell.ID,
		"reason", reason)
}

// applyToEnemiesInView hits every live enemy of the caster within view radius.
func (m *Manager) applyToEnemiesInView(s *Sprite) {
	if m.world == nil {
		return
	}
	center := s.pos
	if s.caster.IsAlive() {
		center = s.caster.Position()
	}
	r2 := m.viewRadius * m.viewRadius
	for _, ref := range m.world.Characters() {
		if ref.Position().DistanceSquared(center) > r2 {
			continue
		}
		if !m.canHit(s, ref) {
			continue
		}
		m.hit(s, ref)
	}
}

func (m *Manager) dispatchSummon(s *Sprite) {
	if m.spawner == nil || s.spell.NpcFile == "" {
		return
	}
	m.spawner.Summon(s.caster, s.spell.NpcFile, s.pos)
}

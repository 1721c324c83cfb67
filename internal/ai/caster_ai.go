package ai

import (
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/magic2d/internal/game/magic"
	"github.com/udisondev/magic2d/internal/model"
)

// Caster accepts cast requests by spell ID. Implemented by *magic.Manager.
type Caster interface {
	CastByID(caster model.Ref, spellID string, dest model.Vec2, target model.Ref) ([]*magic.Sprite, error)
}

// CasterAI casts its rotation at the nearest living enemy, one spell per interval.
type CasterAI struct {
	self     model.Ref
	magic    Caster
	world    magic.World
	rotation []string

	intervalMs int32
	sinceMs    int32
	next       int

	isRunning atomic.Bool
	casts     atomic.Int32
	rejected  atomic.Int32
}

// NewCasterAI creates a caster AI. Empty rotation makes the AI idle.
func NewCasterAI(self model.Ref, caster Caster, world magic.World, rotation []string, intervalMs int32) *CasterAI {
	return &CasterAI{
		self:       self,
		magic:      caster,
		world:      world,
		rotation:   rotation,
		intervalMs: max(intervalMs, 1),
		sinceMs:    intervalMs, // first cast on the first tick
	}
}

// Start starts AI controller
func (ai *CasterAI) Start() {
	ai.isRunning.Store(true)
	slog.Debug("caster AI started",
		"character", ai.self.Character().Name(),
		"objectID", ai.self.ID(),
		"rotation", ai.rotation)
}

// Stop stops AI controller
func (ai *CasterAI) Stop() {
	ai.isRunning.Store(false)
	slog.Debug("caster AI stopped", "objectID", ai.self.ID())
}

// Character returns the controlled character.
func (ai *CasterAI) Character() model.Ref {
	return ai.self
}

// Casts returns the number of accepted casts.
func (ai *CasterAI) Casts() int32 {
	return ai.casts.Load()
}

// Rejected returns the number of casts refused by the magic manager.
func (ai *CasterAI) Rejected() int32 {
	return ai.rejected.Load()
}

// Tick performs one AI step.
func (ai *CasterAI) Tick(deltaMs int32) {
	if !ai.isRunning.Load() || len(ai.rotation) == 0 || !ai.self.IsAlive() {
		return
	}

	ai.sinceMs += deltaMs
	if ai.sinceMs < ai.intervalMs {
		return
	}

	target := ai.nearestEnemy()
	if target.IsZero() {
		return
	}
	ai.sinceMs = 0

	spellID := ai.rotation[ai.next%len(ai.rotation)]
	ai.next++

	if _, err := ai.magic.CastByID(ai.self, spellID, target.Position(), target); err != nil {
		ai.rejected.Add(1)
		if IsDebugEnabled() {
			slog.Debug("cast refused",
				"caster", ai.self.ID(),
				"spell", spellID,
				"err", err)
		}
		return
	}
	ai.casts.Add(1)
}

func (ai *CasterAI) nearestEnemy() model.Ref {
	self := ai.self.Character()
	pos := ai.self.Position()

	var (
		best     model.Ref
		bestDist float64
	)
	for _, r := range ai.world.Characters() {
		if !r.IsAlive() || r.Is(ai.self) || !self.IsEnemyOf(r.Character()) {
			continue
		}
		d := pos.DistanceSquared(r.Position())
		if best.IsZero() || d < bestDist {
			best, bestDist = r, d
		}
	}
	return best
}

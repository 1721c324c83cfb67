package magic

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/model"
)

// Default coordinator settings.
const (
	DefaultViewRadius    = 640.0
	DefaultScreenShakeMs = 500
)

var (
	ErrUnknownSpell   = errors.New("unknown spell")
	ErrCasterDead     = errors.New("caster is dead")
	ErrNotEnoughMana  = errors.New("not enough mana")
	ErrNotEnoughThew  = errors.New("not enough thew")
	ErrCastRejected   = errors.New("cast rejected")
	ErrSpriteNotFound = errors.New("sprite not found")
)

// CastRequest describes one cast.
type CastRequest struct {
	Caster      model.Ref
	Spell       *data.SpellDefinition
	Destination model.Vec2
	Target      model.Ref // optional
}

// trailEntry tracks a caster that leaves damage zones behind.
type trailEntry struct {
	caster   model.Ref
	spell    *data.SpellDefinition
	carrier  *Sprite
	lastDrop model.Vec2
}

// Manager — координатор жизненного цикла магии.
// Владеет всеми живыми спрайтами, вызывает хуки поведения в правильные
// моменты тика, считает коллизии и ведёт учёт по категориям
// (trailing-зоны, transport, контроль разума).
//
// Not thread-safe: all methods must be called from the simulation goroutine.
type Manager struct {
	world     World
	catalog   *data.Catalog
	sound     SoundPlayer
	messenger Messenger
	spawner   Spawner
	logger    *slog.Logger
	rng       *rand.Rand

	grid       *spatialHash
	viewRadius float64
	shakeMs    int32

	nextID  uint64
	sprites []*Sprite

	screenShake int32
	trailing    map[uint32]*trailEntry
	transport   map[uint32]struct{}
	possession  map[uint32]model.Ref // controller objectID → controlled NPC
}

// Option configures a Manager.
type Option func(*Manager)

// WithCatalog enables CastByID.
func WithCatalog(c *data.Catalog) Option {
	return func(m *Manager) { m.catalog = c }
}

// WithSoundPlayer sets the audio collaborator.
func WithSoundPlayer(p SoundPlayer) Option {
	return func(m *Manager) { m.sound = p }
}

// WithMessenger sets the feedback collaborator.
func WithMessenger(msg Messenger) Option {
	return func(m *Manager) { m.messenger = msg }
}

// WithSpawner sets the summon collaborator.
func WithSpawner(s Spawner) Option {
	return func(m *Manager) { m.spawner = s }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithRand sets the random source used by random trajectories.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

// WithCellSize sets the collision grid cell size.
func WithCellSize(size float64) Option {
	return func(m *Manager) { m.grid = newSpatialHash(size) }
}

// WithViewRadius sets the radius used by super-mode to find enemies in view.
func WithViewRadius(r float64) Option {
	return func(m *Manager) { m.viewRadius = r }
}

// WithScreenShake sets the screen-shake duration of super-mode casts.
func WithScreenShake(ms int32) Option {
	return func(m *Manager) { m.shakeMs = ms }
}

// NewManager creates a Manager for world.
func NewManager(world World, opts ...Option) *Manager {
	m := &Manager{
		world:      world,
		logger:     slog.Default(),
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		grid:       newSpatialHash(DefaultCellSize),
		viewRadius: DefaultViewRadius,
		shakeMs:    DefaultScreenShakeMs,
		sprites:    make([]*Sprite, 0, 64),
		trailing:   make(map[uint32]*trailEntry),
		transport:  make(map[uint32]struct{}),
		possession: make(map[uint32]model.Ref),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// World returns the map the manager runs on.
func (m *Manager) World() World { return m.world }

// Sprites returns a copy of the live sprite collection.
func (m *Manager) Sprites() []*Sprite {
	result := make([]*Sprite, 0, len(m.sprites))
	for _, s := range m.sprites {
		if !s.destroyed {
			result = append(result, s)
		}
	}
	return result
}

// SpriteCount returns the number of live sprites.
func (m *Manager) SpriteCount() int {
	n := 0
	for _, s := range m.sprites {
		if !s.destroyed {
			n++
		}
	}
	return n
}

// ScreenShake returns the remaining screen-shake time for the renderer.
func (m *Manager) ScreenShake() int32 { return m.screenShake }

// InTransport reports whether ref is being transported.
func (m *Manager) InTransport(ref model.Ref) bool {
	_, ok := m.transport[ref.ID()]
	return ok
}

// Controlled returns the NPC controlled by controller, zero Ref if none.
func (m *Manager) Controlled(controller model.Ref) model.Ref {
	return m.possession[controller.ID()]
}

// IsTrailing reports whether ref currently leaves trailing zones.
func (m *Manager) IsTrailing(ref model.Ref) bool {
	_, ok := m.trailing[ref.ID()]
	return ok
}

// PlaySound plays name through the audio collaborator. Empty names and a
// missing collaborator are ignored.
func (m *Manager) PlaySound(name string) {
	if m == nil || name == "" || m.sound == nil {
		return
	}
	m.sound.PlaySound(name)
}

// ShowMessage shows text through the feedback collaborator, if any.
func (m *Manager) ShowMessage(text string) {
	if m == nil || m.messenger == nil {
		return
	}
	m.messenger.ShowMessage(text)
}

// CastByID looks up spellID in the catalog and casts it.
func (m *Manager) CastByID(caster model.Ref, spellID string, dest model.Vec2, target model.Ref) ([]*Sprite, error) {
	spell := m.catalog.Get(spellID)
	if spell == nil {
		return nil, fmt.Errorf("casting %q: %w", spellID, ErrUnknownSpell)
	}
	return m.Cast(CastRequest{Caster: caster, Spell: spell, Destination: dest, Target: target})
}

// Cast commits a cast: validation, cost deduction, OnCast, sprite spawn.
// Self-targeting spells apply immediately.
//
// A move kind without a registered behavior still spawns sprites; they fly
// and collide but have no stat effect.
func (m *Manager) Cast(req CastRequest) ([]*Sprite, error) {
	if req.Spell == nil {
		return nil, ErrUnknownSpell
	}
	caster := req.Caster.Character()
	if caster == nil || caster.IsDeath() {
		return nil, ErrCasterDead
	}
	if req.Spell.ManaCost > 0 && caster.Mana() < req.Spell.ManaCost {
		return nil, fmt.Errorf("casting %s: %w (need %d, have %d)",
			req.Spell.ID, ErrNotEnoughMana, req.Spell.ManaCost, caster.Mana())
	}
	if req.Spell.ThewCost > 0 && caster.Thew() < req.Spell.ThewCost {
		return nil, fmt.Errorf("casting %s: %w (need %d, have %d)",
			req.Spell.ID, ErrNotEnoughThew, req.Spell.ThewCost, caster.Thew())
	}

	ctx := &CastContext{
		Manager:     m,
		Caster:      req.Caster,
		Spell:       req.Spell,
		Origin:      caster.Position(),
		Destination: req.Destination,
		Target:      req.Target,
	}

	behavior, hasBehavior := GetBehavior(req.Spell.MoveKind)
	if hasBehavior {
		if v, ok := behavior.(CastValidator); ok && !v.CanCast(ctx) {
			return nil, fmt.Errorf("casting %s: %w", req.Spell.ID, ErrCastRejected)
		}
	}

	DeductCost(req.Caster, req.Spell)

	if hasBehavior {
		if h, ok := behavior.(CastHook); ok {
			h.OnCast(ctx)
		}
	}

	spawned := m.spawn(ctx)

	m.logger.Debug("magic cast",
		"caster", caster.Name(),
		"spell", req.Spell.ID,
		"moveKind", req.Spell.MoveKind,
		"sprites", len(spawned))

	// Self-targeting categories act at once on the resolved character.
	if req.Spell.MoveKind == data.MoveFollowCharacter && hasBehavior {
		for _, s := range spawned {
			m.hit(s, s.target)
		}
		m.flushEnding()
	}

	return spawned, nil
}

// spawn creates sprites for a committed cast.
func (m *Manager) spawn(ctx *CastContext) []*Sprite {
	kind := ctx.Spell.MoveKind
	target := ctx.Target
	if kind == data.MoveFollowCharacter {
		target = followTarget(ctx.Caster, ctx.Target)
	}

	ps := placements(kind, ctx.Origin, ctx.Destination, m.rng)
	result := make([]*Sprite, 0, len(ps))
	for _, p := range ps {
		m.nextID++
		s := newSprite(m.nextID, ctx.Spell, kind, ctx.Caster, target, p, ctx.Destination)
		m.sprites = append(m.sprites, s)
		result = append(result, s)
	}

	if kind == data.MoveTrailing && len(result) > 0 {
		if e, ok := m.trailing[ctx.Caster.ID()]; ok && e.carrier == nil {
			e.carrier = result[0]
		}
	}
	return result
}

// spawnTrailZone drops a fixed-position damage zone for a trailing caster.
func (m *Manager) spawnTrailZone(e *trailEntry, at model.Vec2) *Sprite {
	m.nextID++
	s := newSprite(m.nextID, e.spell, data.MoveFixedPosition, e.caster, model.Ref{}, placement{pos: at}, at)
	s.trailZone = true
	s.lifeMs = e.spell.TrailKeepMs
	m.sprites = append(m.sprites, s)
	return s
}

// followTarget picks the character a self-buff acts on: a fighting ally
// selected by a player, otherwise the caster.
func followTarget(caster, target model.Ref) model.Ref {
	switch caster.Kind() {
	case model.RefPlayer:
		if n := target.Npc(); n != nil && n.IsFightingFriend() {
			return target
		}
		return caster
	case model.RefNpc, model.RefNone:
		return caster
	default:
		return caster
	}
}

// Cancel destroys one sprite immediately, running its OnEnd.
func (m *Manager) Cancel(spriteID uint64) error {
	for _, s := range m.sprites {
		if s.id == spriteID && !s.destroyed {
			s.requestEnd(EndCancelled)
			m.flushEnding()
			return nil
		}
	}
	return fmt.Errorf("cancelling sprite %d: %w", spriteID, ErrSpriteNotFound)
}

// CancelAll tears down every sprite (map transition). OnEnd runs synchronously
// for each one before the collection is discarded.
func (m *Manager) CancelAll(reason EndReason) {
	for _, s := range m.sprites {
		if s.destroyed {
			continue
		}
		s.ending = false
		s.requestEnd(reason)
		m.finish(s)
	}
	clear(m.sprites)
	m.sprites = m.sprites[:0]
	clear(m.trailing)
	clear(m.transport)
	for id, npc := range m.possession {
		if c := npc.Character(); c != nil && c.ControlledBy() == id {
			c.SetControlledBy(0, model.RelationNeutral)
		}
		delete(m.possession, id)
	}
	m.screenShake = 0
}

// registerTrail starts dropping zones behind caster.
func (m *Manager) registerTrail(caster model.Ref, spell *data.SpellDefinition, from model.Vec2) {
	m.trailing[caster.ID()] = &trailEntry{caster: caster, spell: spell, lastDrop: from}
}

// unregisterTrail stops the trail owned by carrier. Trails started by a later
// cast of the same caster are left alone.
func (m *Manager) unregisterTrail(caster model.Ref, carrier *Sprite) {
	e, ok := m.trailing[caster.ID()]
	if !ok {
		return
	}
	if e.carrier == nil || e.carrier == carrier {
		delete(m.trailing, caster.ID())
	}
}

func (m *Manager) setInTransport(ref model.Ref, v bool) {
	if v {
		m.transport[ref.ID()] = struct{}{}
		return
	}
	delete(m.transport, ref.ID())
}

// possess puts target under the control of controller, releasing any
// previously controlled NPC first.
func (m *Manager) possess(controller, target model.Ref) {
	m.release(controller)
	c := target.Character()
	if c == nil {
		return
	}
	c.SetControlledBy(controller.ID(), controller.Character().Relation())
	c.SetFighting(false)
	m.possession[controller.ID()] = target
}

func (m *Manager) release(controller model.Ref) {
	prev, ok := m.possession[controller.ID()]
	if !ok {
		return
	}
	// NPC мог уже перейти под контроль другого игрока.
	if c := prev.Character(); c != nil && c.ControlledBy() == controller.ID() {
		c.SetControlledBy(0, model.RelationNeutral)
	}
	delete(m.possession, controller.ID())
}

func (m *Manager) shake() {
	m.screenShake = max(m.screenShake, m.shakeMs)
}

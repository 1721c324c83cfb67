// Package world — простая арена для магии: прямоугольная карта со стенами
// и список персонажей на ней. Реализует magic.World и magic.Spawner.
package world

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/udisondev/magic2d/internal/model"
)

// Wall — прямоугольное препятствие, блокирующее магию.
type Wall struct {
	Min model.Vec2
	Max model.Vec2
}

// Contains reports whether pos lies inside the wall, borders included.
func (w Wall) Contains(pos model.Vec2) bool {
	return pos.X >= w.Min.X && pos.X <= w.Max.X && pos.Y >= w.Min.Y && pos.Y <= w.Max.Y
}

// World is a bounded arena. Everything outside [0,width]x[0,height] is an obstacle.
type World struct {
	mu sync.RWMutex

	width  float64
	height float64
	walls  []Wall

	chars []model.Ref
	byID  map[uint32]model.Ref

	ids       *ObjectIDGenerator
	templates map[string]NpcTemplate
	logger    *slog.Logger
}

// New creates an empty arena of the given size.
func New(width, height float64) *World {
	return &World{
		width:     width,
		height:    height,
		byID:      make(map[uint32]model.Ref),
		ids:       NewObjectIDGenerator(),
		templates: make(map[string]NpcTemplate),
		logger:    slog.Default(),
	}
}

// SetLogger replaces the logger used for spawn events.
func (w *World) SetLogger(l *slog.Logger) {
	if l != nil {
		w.logger = l
	}
}

// Size returns arena width and height.
func (w *World) Size() (float64, float64) {
	return w.width, w.height
}

// AddWall adds an obstacle.
func (w *World) AddWall(wall Wall) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.walls = append(w.walls, wall)
}

// IsObstacle reports whether terrain blocks magic at pos.
func (w *World) IsObstacle(pos model.Vec2) bool {
	if pos.X < 0 || pos.Y < 0 || pos.X > w.width || pos.Y > w.height {
		return true
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, wall := range w.walls {
		if wall.Contains(pos) {
			return true
		}
	}
	return false
}

// Characters returns a snapshot of every character on the arena, dead ones included.
func (w *World) Characters() []model.Ref {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.chars)
}

// Get returns the character with objectID, zero Ref if absent.
func (w *World) Get(objectID uint32) model.Ref {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.byID[objectID]
}

// AddPlayer creates a player at pos and places it on the arena.
func (w *World) AddPlayer(name string, pos model.Vec2, level, lifeMax, manaMax, thewMax int32) (*model.Player, error) {
	if w.IsObstacle(pos) {
		return nil, fmt.Errorf("placing player %s: position %v is blocked", name, pos)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	index := int32(0)
	for _, r := range w.chars {
		if r.IsPlayer() {
			index++
		}
	}
	p, err := model.NewPlayer(w.ids.NextPlayerID(), index, name, pos, level, lifeMax, manaMax, thewMax)
	if err != nil {
		return nil, fmt.Errorf("creating player: %w", err)
	}
	w.addLocked(model.PlayerRef(p))
	return p, nil
}

// AddNpc creates an NPC from template at pos with the given allegiance.
func (w *World) AddNpc(t NpcTemplate, pos model.Vec2, relation model.Relation) (*model.Npc, error) {
	if w.IsObstacle(pos) {
		return nil, fmt.Errorf("placing npc %s: position %v is blocked", t.Name, pos)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	n := t.spawn(w.ids.NextNpcID(), pos, relation)
	w.addLocked(model.NpcRef(n))
	return n, nil
}

func (w *World) addLocked(r model.Ref) {
	w.chars = append(w.chars, r)
	w.byID[r.ID()] = r
}

// RemoveDeadNpcs drops dead NPCs from the arena. Dead players stay.
// Returns the number of removed NPCs.
func (w *World) RemoveDeadNpcs() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	before := len(w.chars)
	w.chars = slices.DeleteFunc(w.chars, func(r model.Ref) bool {
		if r.IsPlayer() || r.IsAlive() {
			return false
		}
		delete(w.byID, r.ID())
		return true
	})
	return before - len(w.chars)
}

// TickStatus decays status timers (invisibility, transformation, fly-ini,
// abnormal states) of every character on the arena, dead ones included.
// Must run on the tick goroutine that drives the magic manager.
func (w *World) TickStatus(deltaMs int32) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, r := range w.chars {
		if c := r.Character(); c != nil {
			c.Status().Tick(deltaMs)
		}
	}
}

// CountAlive returns the number of living characters with relation.
func (w *World) CountAlive(relation model.Relation) int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	n := 0
	for _, r := range w.chars {
		if r.IsAlive() && r.Character().Relation() == relation {
			n++
		}
	}
	return n
}

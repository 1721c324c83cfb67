package world

import (
	"github.com/udisondev/magic2d/internal/model"
)

// NpcTemplate — параметры NPC, на которые ссылается npc_file магии призыва.
type NpcTemplate struct {
	Name    string        `yaml:"name"`
	Level   int32         `yaml:"level"`
	LifeMax int32         `yaml:"life_max"`
	ManaMax int32         `yaml:"mana_max"`
	ThewMax int32         `yaml:"thew_max"`
	Kind    model.NpcKind `yaml:"kind"`
}

// DefaultSummonTemplate is used when npc_file names no registered template.
var DefaultSummonTemplate = NpcTemplate{
	Name:    "Summoned",
	Level:   1,
	LifeMax: 50,
	ManaMax: 0,
	ThewMax: 50,
	Kind:    model.NpcKindFollower,
}

func (t NpcTemplate) spawn(objectID uint32, pos model.Vec2, relation model.Relation) *model.Npc {
	level := max(t.Level, 1)
	return model.NewNpc(objectID, t.Name, pos, level, t.LifeMax, t.ManaMax, t.ThewMax, relation, t.Kind)
}

// RegisterTemplate binds npcFile to a template for summoning.
func (w *World) RegisterTemplate(npcFile string, t NpcTemplate) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.templates[npcFile] = t
}

// Summon implements magic.Spawner: the NPC joins the owner's side and
// remembers its summoner. A blocked position falls back to the owner's.
func (w *World) Summon(owner model.Ref, npcFile string, at model.Vec2) {
	if owner.IsZero() {
		return
	}

	w.mu.RLock()
	t, ok := w.templates[npcFile]
	w.mu.RUnlock()
	if !ok {
		w.logger.Warn("unknown summon template, using default", "npc_file", npcFile)
		t = DefaultSummonTemplate
	}

	if w.IsObstacle(at) {
		at = owner.Position()
	}

	relation := owner.Character().Relation()
	n, err := w.AddNpc(t, at, relation)
	if err != nil {
		w.logger.Warn("summon failed", "npc_file", npcFile, "owner", owner.ID(), "err", err)
		return
	}
	n.SetNpcFile(npcFile)
	n.SetOwner(owner.ID())

	w.logger.Debug("npc summoned",
		"npc", n.ObjectID(),
		"npc_file", npcFile,
		"owner", owner.ID(),
		"x", at.X, "y", at.Y)
}

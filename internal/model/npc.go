package model

// NpcKind classifies non-player characters by their battle role.
type NpcKind int8

const (
	NpcKindNormal   NpcKind = iota // Townsfolk, never fights
	NpcKindFighter                 // Fights for its side
	NpcKindFollower                // Follows the player, fights when attacked
	NpcKindEventer                 // Script-driven, ignored by magic targeting
)

// Npc — неигровой персонаж (враг, союзник, нейтрал).
type Npc struct {
	*Character // embedded

	kind    NpcKind
	npcFile string // template handle the NPC was spawned from
	owner   uint32 // summoner objectID, 0 if not summoned
}

// NewNpc создаёт NPC с указанной стороной и ролью.
func NewNpc(objectID uint32, name string, pos Vec2, level, lifeMax, manaMax, thewMax int32, relation Relation, kind NpcKind) *Npc {
	c := NewCharacter(objectID, name, pos, level, lifeMax, manaMax, thewMax)
	c.SetRelation(relation)
	return &Npc{Character: c, kind: kind}
}

// Kind returns the battle role.
func (n *Npc) Kind() NpcKind {
	return n.kind
}

// NpcFile returns the template handle.
func (n *Npc) NpcFile() string {
	return n.npcFile
}

// SetNpcFile sets the template handle.
func (n *Npc) SetNpcFile(file string) {
	n.npcFile = file
}

// Owner returns the summoner objectID, 0 if not summoned.
func (n *Npc) Owner() uint32 {
	return n.owner
}

// SetOwner binds a summoned NPC to its summoner.
func (n *Npc) SetOwner(objectID uint32) {
	n.owner = objectID
}

// IsFightingFriend reports whether the NPC is a live ally able to fight.
// Only such allies may receive self-buffs cast by a player.
func (n *Npc) IsFightingFriend() bool {
	if n.IsDeath() || n.Relation() != RelationFriend {
		return false
	}
	return n.kind == NpcKindFighter || n.kind == NpcKindFollower
}

package model

// RefKind — дискриминант Ref.
type RefKind uint8

const (
	RefNone   RefKind = iota // Zero Ref, no character
	RefPlayer                // Ref points to a *Player
	RefNpc                   // Ref points to an *Npc
)

// Ref — ссылка на персонажа: Player или Npc.
// Никогда не владеет персонажем. Zero value означает "нет персонажа":
// все геттеры возвращают нули, сеттеры ничего не делают.
type Ref struct {
	kind   RefKind
	player *Player
	npc    *Npc
}

// PlayerRef wraps a player. Nil player yields the zero Ref.
func PlayerRef(p *Player) Ref {
	if p == nil {
		return Ref{}
	}
	return Ref{kind: RefPlayer, player: p}
}

// NpcRef wraps an NPC. Nil NPC yields the zero Ref.
func NpcRef(n *Npc) Ref {
	if n == nil {
		return Ref{}
	}
	return Ref{kind: RefNpc, npc: n}
}

// Kind returns the discriminant.
func (r Ref) Kind() RefKind {
	return r.kind
}

// IsZero reports whether the Ref points to nothing.
func (r Ref) IsZero() bool {
	return r.kind == RefNone
}

// IsPlayer reports whether the Ref points to a player.
func (r Ref) IsPlayer() bool {
	return r.kind == RefPlayer
}

// Player returns the player, nil for other kinds.
func (r Ref) Player() *Player {
	if r.kind != RefPlayer {
		return nil
	}
	return r.player
}

// Npc returns the NPC, nil for other kinds.
func (r Ref) Npc() *Npc {
	if r.kind != RefNpc {
		return nil
	}
	return r.npc
}

// Character returns the shared character part, nil for the zero Ref.
func (r Ref) Character() *Character {
	switch r.kind {
	case RefPlayer:
		return r.player.Character
	case RefNpc:
		return r.npc.Character
	case RefNone:
		return nil
	default:
		return nil
	}
}

// ID returns the objectID, 0 for the zero Ref.
func (r Ref) ID() uint32 {
	if c := r.Character(); c != nil {
		return c.ObjectID()
	}
	return 0
}

// Is reports whether both Refs point to the same character.
func (r Ref) Is(o Ref) bool {
	return !r.IsZero() && r.Character() == o.Character()
}

// IsAlive reports whether the Ref points to a living character.
func (r Ref) IsAlive() bool {
	c := r.Character()
	return c != nil && !c.IsDeath()
}

// Life returns current life.
func (r Ref) Life() int32 {
	if c := r.Character(); c != nil {
		return c.Life()
	}
	return 0
}

// LifeMax returns max life.
func (r Ref) LifeMax() int32 {
	if c := r.Character(); c != nil {
		return c.LifeMax()
	}
	return 0
}

// Mana returns current mana.
func (r Ref) Mana() int32 {
	if c := r.Character(); c != nil {
		return c.Mana()
	}
	return 0
}

// ManaMax returns max mana.
func (r Ref) ManaMax() int32 {
	if c := r.Character(); c != nil {
		return c.ManaMax()
	}
	return 0
}

// Thew returns current stamina.
func (r Ref) Thew() int32 {
	if c := r.Character(); c != nil {
		return c.Thew()
	}
	return 0
}

// ThewMax returns max stamina.
func (r Ref) ThewMax() int32 {
	if c := r.Character(); c != nil {
		return c.ThewMax()
	}
	return 0
}

// SetLife sets life, clamped to [0, LifeMax].
func (r Ref) SetLife(v int32) {
	if c := r.Character(); c != nil {
		c.SetLife(v)
	}
}

// SetMana sets mana, clamped to [0, ManaMax].
func (r Ref) SetMana(v int32) {
	if c := r.Character(); c != nil {
		c.SetMana(v)
	}
}

// SetThew sets stamina, clamped to [0, ThewMax].
func (r Ref) SetThew(v int32) {
	if c := r.Character(); c != nil {
		c.SetThew(v)
	}
}

// Position returns the character position, zero for the zero Ref.
func (r Ref) Position() Vec2 {
	if c := r.Character(); c != nil {
		return c.Position()
	}
	return Vec2{}
}

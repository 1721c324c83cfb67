package magic

import "github.com/udisondev/magic2d/internal/model"

// World is the map the magic lives on.
type World interface {
	// Characters returns every character on the map, dead ones included.
	Characters() []model.Ref
	// IsObstacle reports whether terrain blocks magic at pos.
	IsObstacle(pos model.Vec2) bool
}

// SoundPlayer plays a sound by name. Fire-and-forget.
type SoundPlayer interface {
	PlaySound(name string)
}

// Messenger shows a feedback line to the player.
type Messenger interface {
	ShowMessage(text string)
}

// Spawner places a summoned NPC owned by owner.
type Spawner interface {
	Summon(owner model.Ref, npcFile string, at model.Vec2)
}

// SoundFunc adapts a function to SoundPlayer.
type SoundFunc func(name string)

// PlaySound implements SoundPlayer.
func (f SoundFunc) PlaySound(name string) { f(name) }

// MessageFunc adapts a function to Messenger.
type MessageFunc func(text string)

// ShowMessage implements Messenger.
func (f MessageFunc) ShowMessage(text string) { f(text) }

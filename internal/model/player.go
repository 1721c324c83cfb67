package model

import (
	"fmt"
	"sync"
)

// Player — управляемый игроком персонаж.
// Добавляет player-specific данные к Character.
type Player struct {
	*Character // embedded

	index int32 // slot of the player in a party of controllable heroes

	playerMu sync.RWMutex // отдельный mutex для player data

	// Currently selected target. Zero Ref if none.
	target Ref
}

// NewPlayer создаёт нового игрока. Player всегда на стороне RelationFriend.
func NewPlayer(objectID uint32, index int32, name string, pos Vec2, level, lifeMax, manaMax, thewMax int32) (*Player, error) {
	if name == "" {
		return nil, fmt.Errorf("player name cannot be empty")
	}
	if level < 1 {
		return nil, fmt.Errorf("level must be >= 1, got %d", level)
	}
	c := NewCharacter(objectID, name, pos, level, lifeMax, manaMax, thewMax)
	c.SetRelation(RelationFriend)
	return &Player{Character: c, index: index}, nil
}

// Index returns the hero slot of this player.
func (p *Player) Index() int32 {
	return p.index
}

// Target returns the currently selected target.
func (p *Player) Target() Ref {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return p.target
}

// SetTarget sets the currently selected target.
func (p *Player) SetTarget(t Ref) {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.target = t
}

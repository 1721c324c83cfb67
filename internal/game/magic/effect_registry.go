package magic

import "github.com/udisondev/magic2d/internal/data"

// behaviorRegistry maps move kind → behavior.
// Populated by init() and by mod loading before the first Update.
// Not synchronized: registration during simulation ticks is not allowed.
var behaviorRegistry = map[data.MoveKind]Behavior{}

// simpleDamageKinds differ only in trajectory; stat semantics are identical.
var simpleDamageKinds = []data.MoveKind{
	data.MoveFixedPosition,
	data.MoveSingle,
	data.MoveLine,
	data.MoveCircle,
	data.MoveHeart,
	data.MoveSpiral,
	data.MoveSector,
	data.MoveRandomSector,
	data.MoveFixedWall,
	data.MoveWall,
	data.MoveRegionBased,
	data.MoveFollowEnemy,
	data.MoveThrow,
	data.MoveVMove,
}

// RegisterBehavior registers (or replaces) the behavior of a move kind.
func RegisterBehavior(kind data.MoveKind, b Behavior) {
	behaviorRegistry[kind] = b
}

// GetBehavior returns the behavior of a move kind.
// A miss means the category has no stat effect; it is not an error.
func GetBehavior(kind data.MoveKind) (Behavior, bool) {
	b, ok := behaviorRegistry[kind]
	return b, ok
}

func init() {
	simple := &SimpleDamageBehavior{}
	for _, kind := range simpleDamageKinds {
		RegisterBehavior(kind, simple)
	}
	RegisterBehavior(data.MoveFollowCharacter, &FollowCharacterBehavior{})
	RegisterBehavior(data.MoveSuperMode, &SuperModeBehavior{})
	RegisterBehavior(data.MoveTrailing, &TrailingBehavior{})
	RegisterBehavior(data.MoveTransport, &TransportBehavior{})
	RegisterBehavior(data.MovePlayerControl, &ControlBehavior{})
	RegisterBehavior(data.MoveSummon, &SummonBehavior{})
}

package world

import "sync/atomic"

// ObjectIDGenerator generates unique object IDs for characters of one arena.
//
// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = no character)
//	0x10000000 - 0x1FFFFFFF: Players
//	0x20000000 - 0x2FFFFFFF: NPCs, summoned ones included
type ObjectIDGenerator struct {
	nextPlayerID atomic.Uint32
	nextNpcID    atomic.Uint32
}

// NewObjectIDGenerator creates a new ID generator.
func NewObjectIDGenerator() *ObjectIDGenerator {
	gen := &ObjectIDGenerator{}
	gen.nextPlayerID.Store(0x10000000)
	gen.nextNpcID.Store(0x20000000)
	return gen
}

// NextPlayerID generates next unique player object ID.
// Thread-safe via atomic increment.
func (g *ObjectIDGenerator) NextPlayerID() uint32 {
	return g.nextPlayerID.Add(1)
}

// NextNpcID generates next unique NPC object ID.
// Thread-safe via atomic increment.
func (g *ObjectIDGenerator) NextNpcID() uint32 {
	return g.nextNpcID.Add(1)
}

// IsPlayerID reports whether id lies in the player range.
func IsPlayerID(id uint32) bool {
	return id >= 0x10000000 && id < 0x20000000
}

// IsNpcID reports whether id lies in the NPC range.
func IsNpcID(id uint32) bool {
	return id >= 0x20000000 && id < 0x30000000
}

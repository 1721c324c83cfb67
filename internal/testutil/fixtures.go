package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/model"
)

// NewPlayer создаёт игрока level 10 с life/mana/thew 100.
func NewPlayer(tb testing.TB, objectID uint32, pos model.Vec2) *model.Player {
	tb.Helper()
	p, err := model.NewPlayer(objectID, 0, "Hero", pos, 10, 100, 100, 100)
	if err != nil {
		tb.Fatalf("creating player: %v", err)
	}
	return p
}

// NewEnemy создаёт враждебного бойца level 5 с life 100.
func NewEnemy(objectID uint32, pos model.Vec2) *model.Npc {
	return model.NewNpc(objectID, "Goblin", pos, 5, 100, 50, 50, model.RelationEnemy, model.NpcKindFighter)
}

// NewCatalog builds a catalog or fails the test.
func NewCatalog(tb testing.TB, defs ...*data.SpellDefinition) *data.Catalog {
	tb.Helper()
	c, err := data.NewCatalog(defs)
	if err != nil {
		tb.Fatalf("building catalog: %v", err)
	}
	return c
}

// Bolt — одиночный снаряд: effect 30, mana 10, speed 1000, range 400.
func Bolt() *data.SpellDefinition {
	return &data.SpellDefinition{
		ID:       "bolt",
		Name:     "Bolt",
		MoveKind: data.MoveSingle,
		Effect:   30,
		ManaCost: 10,
		Speed:    1000,
		Range:    400,
	}
}

// ContextWithTimeout returns a context canceled at test cleanup.
func ContextWithTimeout(tb testing.TB, d time.Duration) context.Context {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	tb.Cleanup(cancel)
	return ctx
}

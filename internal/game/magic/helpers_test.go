package magic

import (
	"math/rand/v2"
	"testing"

	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/model"
)

// testWorld is an in-memory World.
type testWorld struct {
	chars    []model.Ref
	obstacle func(pos model.Vec2) bool
}

func (w *testWorld) Characters() []model.Ref { return w.chars }

func (w *testWorld) IsObstacle(pos model.Vec2) bool {
	if w.obstacle == nil {
		return false
	}
	return w.obstacle(pos)
}

func (w *testWorld) add(refs ...model.Ref) {
	w.chars = append(w.chars, refs...)
}

type recordedSummon struct {
	owner   model.Ref
	npcFile string
	at      model.Vec2
}

type testSpawner struct {
	calls []recordedSummon
}

func (s *testSpawner) Summon(owner model.Ref, npcFile string, at model.Vec2) {
	s.calls = append(s.calls, recordedSummon{owner: owner, npcFile: npcFile, at: at})
}

// recordingBehavior records hook invocations in order.
type recordingBehavior struct {
	calls   []string
	reasons []EndReason
	reject  bool
}

func (b *recordingBehavior) Name() string { return "Recording" }

func (b *recordingBehavior) CanCast(*CastContext) bool { return !b.reject }

func (b *recordingBehavior) OnCast(*CastContext) { b.calls = append(b.calls, "cast") }

func (b *recordingBehavior) Apply(*HitContext) int32 {
	b.calls = append(b.calls, "apply")
	return 0
}

func (b *recordingBehavior) OnEnd(ctx *EndContext) {
	b.calls = append(b.calls, "end")
	b.reasons = append(b.reasons, ctx.Reason)
}

// registerTestBehavior registers b for kind until the test ends.
func registerTestBehavior(t *testing.T, kind data.MoveKind, b Behavior) {
	t.Helper()
	prev, had := behaviorRegistry[kind]
	RegisterBehavior(kind, b)
	t.Cleanup(func() {
		if had {
			behaviorRegistry[kind] = prev
			return
		}
		delete(behaviorRegistry, kind)
	})
}

func newTestPlayer(t *testing.T, id uint32, pos model.Vec2) *model.Player {
	t.Helper()
	p, err := model.NewPlayer(id, 0, "Hero", pos, 10, 100, 100, 100)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	return p
}

func newTestEnemy(id uint32, pos model.Vec2) *model.Npc {
	return model.NewNpc(id, "Goblin", pos, 5, 100, 50, 50, model.RelationEnemy, model.NpcKindFighter)
}

func newTestManager(w *testWorld, opts ...Option) *Manager {
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	return NewManager(w, opts...)
}

func boltSpell() *data.SpellDefinition {
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

package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/magic2d/internal/game/magic"
	"github.com/udisondev/magic2d/internal/model"
	"github.com/udisondev/magic2d/internal/testutil"
	"github.com/udisondev/magic2d/internal/world"
)

type recordedCast struct {
	spellID string
	target  uint32
}

type fakeCaster struct {
	casts []recordedCast
	err   error
}

func (f *fakeCaster) CastByID(_ model.Ref, spellID string, _ model.Vec2, target model.Ref) ([]*magic.Sprite, error) {
	f.casts = append(f.casts, recordedCast{spellID: spellID, target: target.ID()})
	return nil, f.err
}

var wolf = world.NpcTemplate{Name: "Wolf", Level: 2, LifeMax: 60, ManaMax: 0, ThewMax: 30, Kind: model.NpcKindFighter}

func arena(t *testing.T) (*world.World, *model.Player, *model.Npc, *model.Npc) {
	t.Helper()
	w := world.New(2000, 2000)
	p, err := w.AddPlayer("Hero", model.NewVec2(100, 100), 10, 100, 100, 100)
	require.NoError(t, err)
	far, err := w.AddNpc(wolf, model.NewVec2(900, 100), model.RelationEnemy)
	require.NoError(t, err)
	near, err := w.AddNpc(wolf, model.NewVec2(300, 100), model.RelationEnemy)
	require.NoError(t, err)
	return w, p, far, near
}

func TestCasterAI_CastsRotationAtNearestEnemy(t *testing.T) {
	w, p, _, near := arena(t)
	fc := &fakeCaster{}
	ai := NewCasterAI(model.PlayerRef(p), fc, w, []string{"bolt", "nova"}, 100)
	ai.Start()

	for range 5 {
		ai.Tick(50)
	}

	// Ticks at 0ms (primed), 100ms, 200ms.
	require.Len(t, fc.casts, 3)
	assert.Equal(t, recordedCast{"bolt", near.ObjectID()}, fc.casts[0])
	assert.Equal(t, "nova", fc.casts[1].spellID)
	assert.Equal(t, "bolt", fc.casts[2].spellID)
	assert.Equal(t, int32(3), ai.Casts())
}

func TestCasterAI_SkipsDeadAndFriends(t *testing.T) {
	w, p, far, near := arena(t)
	near.SetLife(0)
	_, err := w.AddNpc(wolf, model.NewVec2(120, 100), model.RelationFriend)
	require.NoError(t, err)

	fc := &fakeCaster{}
	ai := NewCasterAI(model.PlayerRef(p), fc, w, []string{"bolt"}, 10)
	ai.Start()
	ai.Tick(10)

	require.Len(t, fc.casts, 1)
	assert.Equal(t, far.ObjectID(), fc.casts[0].target)
}

func TestCasterAI_IdleCases(t *testing.T) {
	w, p, far, near := arena(t)
	fc := &fakeCaster{}

	stopped := NewCasterAI(model.PlayerRef(p), fc, w, []string{"bolt"}, 10)
	stopped.Tick(100)

	empty := NewCasterAI(model.PlayerRef(p), fc, w, nil, 10)
	empty.Start()
	empty.Tick(100)

	far.SetLife(0)
	near.SetLife(0)
	noTarget := NewCasterAI(model.PlayerRef(p), fc, w, []string{"bolt"}, 10)
	noTarget.Start()
	noTarget.Tick(100)

	assert.Empty(t, fc.casts)
}

func TestCasterAI_CountsRejected(t *testing.T) {
	w, p, _, _ := arena(t)
	fc := &fakeCaster{err: errors.New("not enough mana")}
	ai := NewCasterAI(model.PlayerRef(p), fc, w, []string{"bolt"}, 10)
	ai.Start()

	ai.Tick(10)
	ai.Tick(10)

	assert.Equal(t, int32(0), ai.Casts())
	assert.Equal(t, int32(2), ai.Rejected())
}

func TestCasterAI_WithMagicManager(t *testing.T) {
	w, p, _, near := arena(t)
	catalog := testutil.NewCatalog(t, testutil.Bolt())

	mgr := magic.NewManager(w, magic.WithCatalog(catalog))
	ticks := NewTickManager(20, mgr)
	caster := NewCasterAI(model.PlayerRef(p), mgr, w, []string{"bolt"}, 1000)
	ticks.Register(caster)

	for range 20 {
		ticks.Tick()
	}

	assert.Equal(t, int32(1), caster.Casts())
	assert.Equal(t, int32(90), p.Mana())
	assert.Less(t, near.Life(), near.LifeMax())
}

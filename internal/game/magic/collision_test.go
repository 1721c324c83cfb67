package magic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/magic2d/internal/model"
)

func TestSpatialHash_QueryRadius(t *testing.T) {
	h := newSpatialHash(DefaultCellSize)
	near := newTestEnemy(1, model.NewVec2(10, 10))
	edge := newTestEnemy(2, model.NewVec2(-60, 0))
	far := newTestEnemy(3, model.NewVec2(500, 500))
	h.insert(model.NpcRef(near))
	h.insert(model.NpcRef(edge))
	h.insert(model.NpcRef(far))

	var found []uint32
	h.queryRadius(model.Vec2{}, 64, func(r model.Ref, _ model.Vec2) bool {
		found = append(found, r.ID())
		return true
	})

	assert.ElementsMatch(t, []uint32{1, 2}, found)
}

func TestSpatialHash_QueryStops(t *testing.T) {
	h := newSpatialHash(DefaultCellSize)
	for i := range uint32(5) {
		h.insert(model.NpcRef(newTestEnemy(i+1, model.NewVec2(float64(i), 0))))
	}

	calls := 0
	h.queryRadius(model.Vec2{}, 100, func(model.Ref, model.Vec2) bool {
		calls++
		return false
	})

	assert.Equal(t, 1, calls)
}

func TestSpatialHash_Nearest(t *testing.T) {
	h := newSpatialHash(32)
	a := newTestEnemy(1, model.NewVec2(100, 0))
	b := newTestEnemy(2, model.NewVec2(40, 0))
	c := newTestEnemy(3, model.NewVec2(-40, 0))
	for _, n := range []*model.Npc{a, b, c} {
		h.insert(model.NpcRef(n))
	}

	got, ok := h.nearest(model.Vec2{}, 200, func(model.Ref) bool { return true })
	require.True(t, ok)
	assert.Equal(t, uint32(2), got.ID(), "tie resolves to lower id")

	got, ok = h.nearest(model.Vec2{}, 200, func(r model.Ref) bool { return r.ID() == 1 })
	require.True(t, ok)
	assert.Equal(t, uint32(1), got.ID())

	_, ok = h.nearest(model.Vec2{}, 10, func(model.Ref) bool { return true })
	assert.False(t, ok)
}

func TestSpatialHash_Reset(t *testing.T) {
	h := newSpatialHash(DefaultCellSize)
	h.insert(model.NpcRef(newTestEnemy(1, model.Vec2{})))
	h.reset()

	assert.Zero(t, h.count)
	h.queryRadius(model.Vec2{}, 100, func(model.Ref, model.Vec2) bool {
		t.Fatal("grid must be empty after reset")
		return false
	})
}

func TestSpatialHash_ResetDropsStaleCells(t *testing.T) {
	h := newSpatialHash(DefaultCellSize)
	npc := newTestEnemy(1, model.Vec2{})

	for i := range 100 {
		h.reset()
		npc.SetPosition(model.NewVec2(float64(i)*DefaultCellSize*3, 0))
		h.insert(model.NpcRef(npc))
	}

	assert.LessOrEqual(t, len(h.cells), 2, "only the current and the previous cell may remain")
	assert.Equal(t, 1, h.count)
}

func TestSpatialHash_HugeRadius(t *testing.T) {
	h := newSpatialHash(DefaultCellSize)
	near := newTestEnemy(1, model.NewVec2(10, 0))
	far := newTestEnemy(2, model.NewVec2(5_000_000, -5_000_000))
	outside := newTestEnemy(3, model.NewVec2(9e7, 0))
	for _, n := range []*model.Npc{near, far, outside} {
		h.insert(model.NpcRef(n))
	}

	var found []uint32
	h.queryRadius(model.Vec2{}, 1e7, func(r model.Ref, _ model.Vec2) bool {
		found = append(found, r.ID())
		return true
	})
	assert.ElementsMatch(t, []uint32{1, 2}, found)

	got, ok := h.nearest(model.NewVec2(4_000_000, -4_000_000), 1e7, func(model.Ref) bool { return true })
	require.True(t, ok)
	assert.Equal(t, uint32(2), got.ID())
}

func TestSpatialHash_SparseQueryKeepsWindowOrder(t *testing.T) {
	h := newSpatialHash(DefaultCellSize)
	// Ячейки (2,0), (-1,1), (0,-2), (0,0).
	h.insert(model.NpcRef(newTestEnemy(1, model.NewVec2(130, 0))))
	h.insert(model.NpcRef(newTestEnemy(2, model.NewVec2(-10, 70))))
	h.insert(model.NpcRef(newTestEnemy(3, model.NewVec2(0, -70))))
	h.insert(model.NpcRef(newTestEnemy(4, model.NewVec2(0, 10))))

	var order []uint32
	h.queryRadius(model.Vec2{}, 200, func(r model.Ref, _ model.Vec2) bool {
		order = append(order, r.ID())
		return true
	})

	assert.Equal(t, []uint32{2, 3, 4, 1}, order)
}

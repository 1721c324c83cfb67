package magic

import (
	"cmp"
	"math"
	"slices"

	"github.com/udisondev/magic2d/internal/model"
)

// DefaultCellSize is the spatial hash cell size in world units (2×2 tiles).
const DefaultCellSize = 64.0

type cellKey struct {
	x, y int32
}

type gridEntry struct {
	ref model.Ref
	pos model.Vec2
}

// spatialHash — сетка для быстрых запросов "кто в радиусе".
// Перестраивается целиком в начале каждого Update: персонажей мало,
// а инкрементальное обновление позиций не окупается.
type spatialHash struct {
	cellSize float64
	cells    map[cellKey][]gridEntry
	count    int
}

func newSpatialHash(cellSize float64) *spatialHash {
	if cellSize < 1 {
		cellSize = 1
	}
	return &spatialHash{
		cellSize: cellSize,
		cells:    make(map[cellKey][]gridEntry),
	}
}

func (h *spatialHash) cellOf(p model.Vec2) cellKey {
	return cellKey{
		x: int32(math.Floor(p.X / h.cellSize)),
		y: int32(math.Floor(p.Y / h.cellSize)),
	}
}

// reset clears all cells. Slices of cells occupied in the previous
// rebuild are kept; cells left empty since then are dropped.
func (h *spatialHash) reset() {
	for k, v := range h.cells {
		if len(v) == 0 {
			delete(h.cells, k)
			continue
		}
		h.cells[k] = v[:0]
	}
	h.count = 0
}

func (h *spatialHash) insert(r model.Ref) {
	pos := r.Position()
	k := h.cellOf(pos)
	h.cells[k] = append(h.cells[k], gridEntry{ref: r, pos: pos})
	h.count++
}

// queryRadius calls fn for every entry whose center lies within radius of pos.
// Iteration stops when fn returns false.
func (h *spatialHash) queryRadius(pos model.Vec2, radius float64, fn func(r model.Ref, at model.Vec2) bool) {
	r2 := radius * radius

	loX, hiX := math.Floor((pos.X-radius)/h.cellSize), math.Floor((pos.X+radius)/h.cellSize)
	loY, hiY := math.Floor((pos.Y-radius)/h.cellSize), math.Floor((pos.Y+radius)/h.cellSize)

	// Окно запроса больше числа занятых ячеек: обходим только занятые,
	// в том же порядке (x, затем y), что и полный обход окна.
	if (hiX-loX+1)*(hiY-loY+1) > float64(len(h.cells)) {
		keys := make([]cellKey, 0, len(h.cells))
		for k, entries := range h.cells {
			x, y := float64(k.x), float64(k.y)
			if len(entries) == 0 || x < loX || x > hiX || y < loY || y > hiY {
				continue
			}
			keys = append(keys, k)
		}
		slices.SortFunc(keys, func(a, b cellKey) int {
			if c := cmp.Compare(a.x, b.x); c != 0 {
				return c
			}
			return cmp.Compare(a.y, b.y)
		})
		for _, k := range keys {
			if !h.visit(h.cells[k], pos, r2, fn) {
				return
			}
		}
		return
	}

	lo := h.cellOf(model.NewVec2(pos.X-radius, pos.Y-radius))
	hi := h.cellOf(model.NewVec2(pos.X+radius, pos.Y+radius))
	for cx := lo.x; cx <= hi.x; cx++ {
		for cy := lo.y; cy <= hi.y; cy++ {
			if !h.visit(h.cells[cellKey{cx, cy}], pos, r2, fn) {
				return
			}
		}
	}
}

// visit reports false once fn asked to stop.
func (h *spatialHash) visit(entries []gridEntry, pos model.Vec2, r2 float64, fn func(r model.Ref, at model.Vec2) bool) bool {
	for _, e := range entries {
		if e.pos.DistanceSquared(pos) > r2 {
			continue
		}
		if !fn(e.ref, e.pos) {
			return false
		}
	}
	return true
}

// nearest returns the closest entry within radius accepted by filter.
func (h *spatialHash) nearest(pos model.Vec2, radius float64, filter func(model.Ref) bool) (model.Ref, bool) {
	var (
		best     model.Ref
		bestDist = math.Inf(1)
		found    bool
	)
	h.queryRadius(pos, radius, func(r model.Ref, at model.Vec2) bool {
		if !filter(r) {
			return true
		}
		if d := at.DistanceSquared(pos); d < bestDist || (d == bestDist && r.ID() < best.ID()) {
			best, bestDist, found = r, d, true
		}
		return true
	})
	return best, found
}

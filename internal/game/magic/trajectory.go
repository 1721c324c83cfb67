package magic

import (
	"math"
	"math/rand/v2"

	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/model"
)

// TileSize is the map tile size in world units.
const TileSize = 32.0

const (
	lineCount     = 5
	lineSpacing   = TileSize
	circleCount   = 8
	heartCount    = 16
	spiralCount   = 16
	spiralDelayMs = 40
	heartDelayMs  = 30
	sectorCount   = 5
	sectorSpread  = math.Pi / 3 // 60°
	wallCount     = 5
	wallSpacing   = TileSize
	vCount        = 5
	vSpacing      = TileSize * 0.75
)

// placement is the initial position, direction and launch delay of one sprite.
type placement struct {
	pos     model.Vec2
	dir     model.Vec2
	delayMs int32
}

// placements expands one cast into initial sprite placements by trajectory shape.
// Unknown kinds fly as a single shot.
func placements(kind data.MoveKind, origin, dest model.Vec2, rng *rand.Rand) []placement {
	dir := dest.Sub(origin).Normalize()
	if dir == (model.Vec2{}) {
		dir = model.NewVec2(0, 1)
	}
	perp := model.NewVec2(-dir.Y, dir.X)

	switch kind {
	case data.MoveNone:
		return nil

	case data.MoveFixedPosition, data.MoveRegionBased, data.MoveSummon:
		return []placement{{pos: dest, dir: dir}}

	case data.MoveFollowCharacter, data.MoveSuperMode, data.MoveTrailing,
		data.MoveTransport, data.MovePlayerControl:
		return []placement{{pos: origin, dir: dir}}

	case data.MoveLine:
		result := make([]placement, 0, lineCount)
		for i := range lineCount {
			result = append(result, placement{
				pos: origin.Add(dir.Scale(float64(i) * lineSpacing)),
				dir: dir,
			})
		}
		return result

	case data.MoveCircle:
		return ring(origin, dir, circleCount, func(int) int32 { return 0 })

	case data.MoveHeart:
		// Symmetric delays make the ring open from the back and close at the front.
		return ring(origin, dir, heartCount, func(i int) int32 {
			d := i
			if d > heartCount/2 {
				d = heartCount - d
			}
			return int32((heartCount/2 - d) * heartDelayMs)
		})

	case data.MoveSpiral:
		return ring(origin, dir, spiralCount, func(i int) int32 { return int32(i * spiralDelayMs) })

	case data.MoveSector:
		result := make([]placement, 0, sectorCount)
		step := sectorSpread / float64(sectorCount-1)
		for i := range sectorCount {
			angle := -sectorSpread/2 + float64(i)*step
			result = append(result, placement{pos: origin, dir: dir.Rotate(angle)})
		}
		return result

	case data.MoveRandomSector:
		result := make([]placement, 0, sectorCount)
		for range sectorCount {
			angle := (rng.Float64() - 0.5) * sectorSpread
			result = append(result, placement{pos: origin, dir: dir.Rotate(angle)})
		}
		return result

	case data.MoveFixedWall:
		return wall(dest, perp, model.Vec2{})

	case data.MoveWall:
		return wall(origin, perp, dir)

	case data.MoveVMove:
		result := make([]placement, 0, vCount)
		for i := -(vCount / 2); i <= vCount/2; i++ {
			back := math.Abs(float64(i)) * vSpacing
			result = append(result, placement{
				pos: origin.Add(perp.Scale(float64(i) * vSpacing)).Sub(dir.Scale(back)),
				dir: dir,
			})
		}
		return result

	default:
		return []placement{{pos: origin, dir: dir}}
	}
}

func ring(origin, dir model.Vec2, count int, delay func(i int) int32) []placement {
	result := make([]placement, 0, count)
	step := 2 * math.Pi / float64(count)
	for i := range count {
		result = append(result, placement{
			pos:     origin,
			dir:     dir.Rotate(float64(i) * step),
			delayMs: delay(i),
		})
	}
	return result
}

func wall(center, perp, dir model.Vec2) []placement {
	result := make([]placement, 0, wallCount)
	for i := -(wallCount / 2); i <= wallCount/2; i++ {
		result = append(result, placement{
			pos: center.Add(perp.Scale(float64(i) * wallSpacing)),
			dir: dir,
		})
	}
	return result
}

// isStationary reports whether sprites of this kind never move on their own.
func isStationary(kind data.MoveKind) bool {
	switch kind {
	case data.MoveFixedPosition, data.MoveFixedWall, data.MoveRegionBased,
		data.MoveFollowCharacter, data.MoveSuperMode, data.MoveTrailing,
		data.MoveTransport, data.MovePlayerControl, data.MoveSummon:
		return true
	default:
		return false
	}
}

// regionContains tests pos against a region shape of radius tiles around center.
// The triangle opens along dir.
func regionContains(shape data.RegionShape, radiusTiles int32, center, dir, pos model.Vec2) bool {
	r := float64(max(radiusTiles, 1)) * TileSize
	d := pos.Sub(center)
	ax, ay := math.Abs(d.X), math.Abs(d.Y)

	switch shape {
	case data.RegionSquare:
		return ax <= r && ay <= r
	case data.RegionCross:
		half := TileSize / 2
		return (ax <= half && ay <= r) || (ay <= half && ax <= r)
	case data.RegionRectangle:
		return ax <= r && ay <= r/2
	case data.RegionIsoscelesTriangle:
		if dir == (model.Vec2{}) {
			dir = model.NewVec2(0, 1)
		}
		forward := d.X*dir.X + d.Y*dir.Y
		side := math.Abs(d.X*-dir.Y + d.Y*dir.X)
		return forward >= 0 && forward <= r && side <= forward/2+TileSize/2
	default:
		return ax <= r && ay <= r
	}
}

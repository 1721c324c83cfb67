package model

import "math"

// Vec2 — точка или вектор на 2D карте.
// Value type, передаётся по значению (immutable).
type Vec2 struct {
	X float64
	Y float64
}

// NewVec2 создаёт Vec2 с указанными координатами.
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add возвращает сумму векторов.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub возвращает разность векторов.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale умножает вектор на скаляр.
func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

// Len returns the vector length.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns a unit vector with the same direction.
// Zero vector stays zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Rotate rotates the vector by angle radians counter-clockwise.
func (v Vec2) Rotate(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt для производительности).
func (v Vec2) DistanceSquared(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return dx*dx + dy*dy
}

// Distance returns the euclidean distance to another point.
func (v Vec2) Distance(o Vec2) float64 {
	return math.Sqrt(v.DistanceSquared(o))
}

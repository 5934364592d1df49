package tiles

import (
	"iter"
	"math"

	"github.com/pthm-cable/tilephys/geom"
)

// Pos is an integer tile coordinate in world space.
type Pos struct {
	X, Y int32
}

// P is shorthand for Pos{x, y}.
func P(x, y int32) Pos {
	return Pos{X: x, Y: y}
}

// PosAt returns the tile containing the world point v.
func PosAt(v geom.Vec2) Pos {
	return Pos{floor(v.X), floor(v.Y)}
}

// Add returns p + o.
func (p Pos) Add(o Pos) Pos {
	return Pos{p.X + o.X, p.Y + o.Y}
}

// Sub returns p - o.
func (p Pos) Sub(o Pos) Pos {
	return Pos{p.X - o.X, p.Y - o.Y}
}

// Vec returns the world-space bottom-left corner of the tile.
func (p Pos) Vec() geom.Vec2 {
	return geom.V(float32(p.X), float32(p.Y))
}

// AABB returns the unit box covered by the tile.
func (p Pos) AABB() geom.AABB {
	return geom.NewAABB(p.Vec(), geom.One)
}

// Rect is a rectangle of tile positions anchored at its bottom-left tile.
type Rect struct {
	Min  Pos
	Size Pos
}

// NewRect creates a rect from its bottom-left tile and size.
func NewRect(bottomLeft, size Pos) Rect {
	return Rect{Min: bottomLeft, Size: size}
}

// RectFromAABB returns the smallest rect covering every tile that b touches:
// min is floored and max is ceiled.
func RectFromAABB(b geom.AABB) Rect {
	lo := Pos{floor(b.Left()), floor(b.Bottom())}
	hi := Pos{ceil(b.Right()), ceil(b.Top())}
	return Rect{Min: lo, Size: hi.Sub(lo)}
}

// Max returns the exclusive top-right corner.
func (r Rect) Max() Pos {
	return r.Min.Add(r.Size)
}

// AABB returns the world-space box the rect covers.
func (r Rect) AABB() geom.AABB {
	return geom.NewAABB(r.Min.Vec(), r.Size.Vec())
}

// Empty reports whether the rect covers no tiles.
func (r Rect) Empty() bool {
	return r.Size.X <= 0 || r.Size.Y <= 0
}

// Contains reports whether p lies inside the rect.
func (r Rect) Contains(p Pos) bool {
	hi := r.Max()
	return p.X >= r.Min.X && p.X < hi.X && p.Y >= r.Min.Y && p.Y < hi.Y
}

// Positions yields every tile in the rect, row by row from the bottom.
func (r Rect) Positions() iter.Seq[Pos] {
	return func(yield func(Pos) bool) {
		hi := r.Max()
		for y := r.Min.Y; y < hi.Y; y++ {
			for x := r.Min.X; x < hi.X; x++ {
				if !yield(Pos{x, y}) {
					return
				}
			}
		}
	}
}

func floor(f float32) int32 {
	return int32(math.Floor(float64(f)))
}

func ceil(f float32) int32 {
	return int32(math.Ceil(float64(f)))
}

package geom

// AABB is an axis-aligned bounding box anchored at its bottom-left corner.
// Size components are never negative.
type AABB struct {
	Min  Vec2 // bottom-left corner
	Size Vec2
}

// NewAABB creates a box from its bottom-left corner and size.
func NewAABB(bottomLeft, size Vec2) AABB {
	return AABB{Min: bottomLeft, Size: size}
}

// FromCenter creates a box of the given size centered on center.
func FromCenter(center, size Vec2) AABB {
	return AABB{Min: center.Sub(size.Scale(0.5)), Size: size}
}

// FromCorners creates a box spanning bottomLeft to topRight.
func FromCorners(bottomLeft, topRight Vec2) AABB {
	return AABB{Min: bottomLeft, Size: topRight.Sub(bottomLeft)}
}

// Containing returns the smallest box containing all given boxes.
// Returns false only when no boxes are given.
func Containing(boxes ...AABB) (AABB, bool) {
	if len(boxes) == 0 {
		return AABB{}, false
	}
	lo, hi := boxes[0].BottomLeft(), boxes[0].TopRight()
	for _, b := range boxes[1:] {
		lo = lo.Min(b.BottomLeft())
		hi = hi.Max(b.TopRight())
	}
	return FromCorners(lo, hi), true
}

func (b AABB) Left() float32   { return b.Min.X }
func (b AABB) Right() float32  { return b.Min.X + b.Size.X }
func (b AABB) Bottom() float32 { return b.Min.Y }
func (b AABB) Top() float32    { return b.Min.Y + b.Size.Y }
func (b AABB) Width() float32  { return b.Size.X }
func (b AABB) Height() float32 { return b.Size.Y }

func (b AABB) BottomLeft() Vec2  { return b.Min }
func (b AABB) BottomRight() Vec2 { return Vec2{b.Right(), b.Bottom()} }
func (b AABB) TopLeft() Vec2     { return Vec2{b.Left(), b.Top()} }
func (b AABB) TopRight() Vec2    { return b.Min.Add(b.Size) }

// Center returns the box midpoint.
func (b AABB) Center() Vec2 {
	return b.Min.Add(b.Size.Scale(0.5))
}

// Offset returns the box translated by d.
func (b AABB) Offset(d Vec2) AABB {
	b.Min = b.Min.Add(d)
	return b
}

// Lerp interpolates corner and size from b towards o.
func (b AABB) Lerp(o AABB, t float32) AABB {
	return AABB{Min: b.Min.Lerp(o.Min, t), Size: b.Size.Lerp(o.Size, t)}
}

// Quadrants splits the box into four equal children ordered bottom-left,
// bottom-right, top-left, top-right. The children tile the parent exactly.
func (b AABB) Quadrants() [4]AABB {
	half := b.Size.Scale(0.5)
	c := b.Min.Add(half)
	// Upper halves use the parent's far edge so float rounding never leaves a gap.
	upper := Vec2{b.Right() - c.X, b.Top() - c.Y}
	return [4]AABB{
		{Min: b.Min, Size: half},
		{Min: Vec2{c.X, b.Min.Y}, Size: Vec2{upper.X, half.Y}},
		{Min: Vec2{b.Min.X, c.Y}, Size: Vec2{half.X, upper.Y}},
		{Min: c, Size: upper},
	}
}

// Contains reports whether o lies inside b. Shared edges count as inside.
func (b AABB) Contains(o AABB) bool {
	return b.Left() <= o.Left() &&
		b.Right() >= o.Right() &&
		b.Bottom() <= o.Bottom() &&
		b.Top() >= o.Top()
}

// ContainsPoint reports whether p lies in [left, right) x [bottom, top).
func (b AABB) ContainsPoint(p Vec2) bool {
	return p.X >= b.Left() && p.X < b.Right() &&
		p.Y >= b.Bottom() && p.Y < b.Top()
}

// Intersects reports strict overlap. Boxes that only touch do not intersect.
func (b AABB) Intersects(o AABB) bool {
	return b.Left() < o.Right() &&
		b.Right() > o.Left() &&
		b.Bottom() < o.Top() &&
		b.Top() > o.Bottom()
}

// Intersection returns the overlapping region. It reports false when the
// overlap width or height is not greater than epsilon.
func (b AABB) Intersection(o AABB, epsilon float32) (AABB, bool) {
	left := max(b.Left(), o.Left())
	right := min(b.Right(), o.Right())
	bottom := max(b.Bottom(), o.Bottom())
	top := min(b.Top(), o.Top())
	w, h := right-left, top-bottom
	if w > epsilon && h > epsilon {
		return AABB{Min: Vec2{left, bottom}, Size: Vec2{w, h}}, true
	}
	return AABB{}, false
}

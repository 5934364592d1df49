package tiles

// Region dimensions in tiles.
const (
	RegionWidth  = 16
	RegionHeight = 16
	RegionTiles  = RegionWidth * RegionHeight
)

// Region is a 16x16 block of tiles stored in Morton (Z-order) so that
// neighbouring tiles share cache lines.
type Region struct {
	tiles [RegionTiles]Tile // zero means empty
	count int
}

// RegionOf returns the region containing the world tile p and p's position
// inside that region.
func RegionOf(p Pos) (region, local Pos) {
	region = Pos{floorDiv(p.X, RegionWidth), floorDiv(p.Y, RegionHeight)}
	local = p.Sub(RegionOrigin(region))
	return region, local
}

// RegionOrigin returns the world tile at the bottom-left of a region.
func RegionOrigin(region Pos) Pos {
	return Pos{region.X * RegionWidth, region.Y * RegionHeight}
}

// RegionRect returns the world tiles covered by a region.
func RegionRect(region Pos) Rect {
	return Rect{Min: RegionOrigin(region), Size: Pos{RegionWidth, RegionHeight}}
}

// Get returns the tile at a local position. Positions outside the region
// report empty.
func (r *Region) Get(local Pos) (Tile, bool) {
	if !inRegion(local) {
		return 0, false
	}
	t := r.tiles[mortonEncode(uint32(local.X), uint32(local.Y))]
	return t, t != 0
}

// Set stores a tile at a local position; the zero Tile clears it. Positions
// outside the region are ignored and report false.
func (r *Region) Set(local Pos, t Tile) bool {
	if !inRegion(local) {
		return false
	}
	i := mortonEncode(uint32(local.X), uint32(local.Y))
	switch {
	case r.tiles[i] == 0 && t != 0:
		r.count++
	case r.tiles[i] != 0 && t == 0:
		r.count--
	}
	r.tiles[i] = t
	return true
}

// Len returns the number of solid tiles.
func (r *Region) Len() int {
	return r.count
}

// Each calls fn for every solid tile in Morton order until fn returns false.
func (r *Region) Each(fn func(local Pos, t Tile) bool) {
	for i, t := range r.tiles {
		if t == 0 {
			continue
		}
		x, y := mortonDecode(uint32(i))
		if !fn(Pos{int32(x), int32(y)}, t) {
			return
		}
	}
}

func inRegion(p Pos) bool {
	return p.X >= 0 && p.X < RegionWidth && p.Y >= 0 && p.Y < RegionHeight
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mortonEncode interleaves the low 16 bits of x and y, x in the even bits.
func mortonEncode(x, y uint32) uint32 {
	return spread(x) | spread(y)<<1
}

func mortonDecode(code uint32) (x, y uint32) {
	return compact(code), compact(code >> 1)
}

func spread(v uint32) uint32 {
	v &= 0x0000ffff
	v = (v | v<<8) & 0x00ff00ff
	v = (v | v<<4) & 0x0f0f0f0f
	v = (v | v<<2) & 0x33333333
	v = (v | v<<1) & 0x55555555
	return v
}

func compact(v uint32) uint32 {
	v &= 0x55555555
	v = (v | v>>1) & 0x33333333
	v = (v | v>>2) & 0x0f0f0f0f
	v = (v | v>>4) & 0x00ff00ff
	v = (v | v>>8) & 0x0000ffff
	return v
}

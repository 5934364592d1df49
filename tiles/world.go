package tiles

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/tilephys/geom"
)

// ErrNotYetGenerated is returned when a tile's region has not been generated.
var ErrNotYetGenerated = errors.New("tiles: region not yet generated")

// World is a sparse grid of generated regions.
//
// World is not safe for concurrent mutation. The physics step reads it from
// several goroutines, so regions must only be generated or edited between
// steps.
type World struct {
	regions   map[Pos]*Region
	generator Generator
}

// NewWorld creates an empty world that fills new regions with gen.
// A nil generator leaves new regions empty.
func NewWorld(gen Generator) *World {
	return &World{
		regions:   make(map[Pos]*Region),
		generator: gen,
	}
}

// Tile returns the tile at p. The bool reports whether the cell is solid.
// Tiles in regions that were never generated return ErrNotYetGenerated.
func (w *World) Tile(p Pos) (Tile, bool, error) {
	rp, local := RegionOf(p)
	region, ok := w.regions[rp]
	if !ok {
		return 0, false, ErrNotYetGenerated
	}
	t, solid := region.Get(local)
	return t, solid, nil
}

// SetTile stores t at p, generating the region first if needed.
// The zero Tile clears the cell.
func (w *World) SetTile(p Pos, t Tile) {
	rp, local := RegionOf(p)
	w.GenerateRegion(rp).Set(local, t)
}

// Region returns a generated region.
func (w *World) Region(rp Pos) (*Region, error) {
	region, ok := w.regions[rp]
	if !ok {
		return nil, ErrNotYetGenerated
	}
	return region, nil
}

// Generated reports whether the region at rp exists.
func (w *World) Generated(rp Pos) bool {
	_, ok := w.regions[rp]
	return ok
}

// Len returns the number of generated regions.
func (w *World) Len() int {
	return len(w.regions)
}

// GenerateRegion returns the region at rp, generating it on first use.
func (w *World) GenerateRegion(rp Pos) *Region {
	if region, ok := w.regions[rp]; ok {
		return region
	}
	region := &Region{}
	if w.generator != nil {
		w.generator.Populate(rp, region)
	}
	w.regions[rp] = region
	slog.Debug("generated region", "x", rp.X, "y", rp.Y, "tiles", region.Len())
	return region
}

// GenerateAround generates every region overlapping b grown by margin on
// each side and returns how many regions were new.
func (w *World) GenerateAround(b geom.AABB, margin float32) int {
	grown := geom.FromCorners(
		b.BottomLeft().Sub(geom.V(margin, margin)),
		b.TopRight().Add(geom.V(margin, margin)),
	)
	tilesRect := RectFromAABB(grown)
	if tilesRect.Empty() {
		return 0
	}

	lo, _ := RegionOf(tilesRect.Min)
	hi, _ := RegionOf(tilesRect.Max().Sub(Pos{1, 1}))

	created := 0
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			rp := Pos{x, y}
			if !w.Generated(rp) {
				w.GenerateRegion(rp)
				created++
			}
		}
	}
	return created
}

// EachRegion calls fn for every generated region until fn returns false.
func (w *World) EachRegion(fn func(rp Pos, r *Region) bool) {
	for rp, r := range w.regions {
		if !fn(rp, r) {
			return
		}
	}
}

package tiles

import (
	"errors"
	"fmt"
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/tilephys/config"
)

// ErrUnknownGenerator is returned by NewGenerator for unrecognised names.
var ErrUnknownGenerator = errors.New("tiles: unknown generator")

// Generator fills a freshly created region. Implementations must be
// deterministic for a given region position.
type Generator interface {
	Populate(region Pos, r *Region)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(region Pos, r *Region)

// Populate calls f.
func (f GeneratorFunc) Populate(region Pos, r *Region) {
	f(region, r)
}

// NewGenerator builds the generator named by cfg.Generator.
func NewGenerator(cfg config.WorldConfig) (Generator, error) {
	switch cfg.Generator {
	case "flat":
		fill, err := ParseTile(cfg.Flat.Fill)
		if err != nil {
			return nil, fmt.Errorf("flat generator: %w", err)
		}
		return FlatGenerator{Fill: fill, Height: cfg.Flat.FillHeight}, nil
	case "terrain":
		return NewTerrainGenerator(cfg.Seed, cfg.Terrain), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, cfg.Generator)
	}
}

// FlatGenerator fills every column with Fill from y=0 up to Height. A nil
// Height fills every tile of every region.
type FlatGenerator struct {
	Fill   Tile
	Height *int32
}

// Populate implements Generator.
func (g FlatGenerator) Populate(region Pos, r *Region) {
	origin := RegionOrigin(region)
	for local := range RegionRect(Pos{}).Positions() {
		if g.Height != nil {
			y := origin.Y + local.Y
			if y < 0 || y >= *g.Height {
				continue
			}
		}
		r.Set(local, g.Fill)
	}
}

// TerrainGenerator builds rolling hills from layered 1D simplex noise.
// Each column is stone from y=0, then a dirt layer, then an optional grass cap.
type TerrainGenerator struct {
	cfg     config.TerrainConfig
	surface opensimplex.Noise
	dirt    opensimplex.Noise
}

// NewTerrainGenerator seeds both noise fields from seed.
func NewTerrainGenerator(seed int64, cfg config.TerrainConfig) *TerrainGenerator {
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}
	if cfg.Wavelength <= 0 {
		cfg.Wavelength = 1
	}
	return &TerrainGenerator{
		cfg:     cfg,
		surface: opensimplex.New(seed),
		dirt:    opensimplex.New(seed + 1),
	}
}

// Column returns the surface height of column x (exclusive top of the
// terrain) and the depth of its dirt layer.
func (g *TerrainGenerator) Column(x int32) (surface, dirtDepth int32) {
	fx := float64(x)

	height := g.cfg.BaseHeight
	amplitude := g.cfg.Amplitude
	wavelength := g.cfg.Wavelength
	for range g.cfg.Octaves {
		height += amplitude * g.surface.Eval2(fx/wavelength, 0)
		amplitude /= 2
		wavelength /= 2
	}

	depth := g.cfg.DirtDepth + g.cfg.DirtVariation*g.dirt.Eval2(fx/g.cfg.Wavelength, 0)
	return int32(math.Floor(height)), int32(math.Max(depth, 0))
}

// Populate implements Generator.
func (g *TerrainGenerator) Populate(region Pos, r *Region) {
	origin := RegionOrigin(region)
	for lx := int32(0); lx < RegionWidth; lx++ {
		surface, depth := g.Column(origin.X + lx)
		stoneTop := surface - depth

		for ly := int32(0); ly < RegionHeight; ly++ {
			y := origin.Y + ly
			if y < 0 || y >= surface {
				continue
			}

			t := Stone
			switch {
			case g.cfg.Grass && y == surface-1:
				t = Grass
			case y >= stoneTop:
				t = Dirt
			}
			r.Set(Pos{lx, ly}, t)
		}
	}
}

// Package tiles holds the procedurally generated tile grid that bodies
// collide against. A tile at integer position (x, y) covers [x, x+1) x [y, y+1)
// in world units. The grid is stored in 16x16 regions that are generated on
// demand by a Generator.
package tiles

import (
	"errors"
	"fmt"
)

// Tile is the kind of a solid tile. The zero value is never stored; empty
// cells are reported through the ok result of World.Tile.
type Tile uint8

const (
	Stone Tile = iota + 1
	Dirt
	Grass
)

var tileNames = map[Tile]string{
	Stone: "stone",
	Dirt:  "dirt",
	Grass: "grass",
}

// ErrUnknownTile is returned by ParseTile for unrecognised names.
var ErrUnknownTile = errors.New("unknown tile")

// String returns the tile's config name.
func (t Tile) String() string {
	if name, ok := tileNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tile(%d)", uint8(t))
}

// ParseTile maps a config name back to a Tile.
func ParseTile(name string) (Tile, error) {
	for t, n := range tileNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTile, name)
}

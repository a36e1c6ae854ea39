package world

import (
	_ "embed"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

//go:embed levels/default.yaml
var defaultLevelYAML []byte

const (
	cellSolid = '#'
	cellEmpty = '.'
	cellSpawn = 'S'
)

type Level struct {
	Name   string
	Spawn  r3.Vec
	Bounds Bounds
	Grid   *Grid
}

type levelFile struct {
	Name   string      `yaml:"name"`
	Spawn  []float64   `yaml:"spawn"`
	Bounds boundsFile  `yaml:"bounds"`
	Floor  *floorFile  `yaml:"floor"`
	Layers []layerFile `yaml:"layers"`
}

type boundsFile struct {
	MinY   int `yaml:"min_y"`
	Height int `yaml:"height"`
}

type floorFile struct {
	Y   int    `yaml:"y"`
	Min [2]int `yaml:"min"`
	Max [2]int `yaml:"max"`
}

// layerFile is one horizontal slice: row index is +Z, column index is +X,
// both offset by Origin.
type layerFile struct {
	Y      int      `yaml:"y"`
	Origin [2]int   `yaml:"origin"`
	Rows   []string `yaml:"rows"`
}

func DefaultLevel() (*Level, error) {
	return ParseLevel(defaultLevelYAML)
}

func LoadLevel(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	lvl, err := ParseLevel(data)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", path, err)
	}
	return lvl, nil
}

func ParseLevel(data []byte) (*Level, error) {
	var f levelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}

	lvl := &Level{
		Name:   f.Name,
		Bounds: Bounds{MinY: f.Bounds.MinY, Height: f.Bounds.Height},
		Grid:   NewGrid(),
	}
	if lvl.Bounds.Height <= 0 {
		lvl.Bounds = Bounds{MinY: -64, Height: 384}
	}

	if f.Floor != nil {
		lvl.Grid.Fill(
			BlockPos{X: f.Floor.Min[0], Y: f.Floor.Y, Z: f.Floor.Min[1]},
			BlockPos{X: f.Floor.Max[0], Y: f.Floor.Y, Z: f.Floor.Max[1]},
		)
	}

	spawnSet := false
	for li, layer := range f.Layers {
		for row, line := range layer.Rows {
			for col, ch := range line {
				x := layer.Origin[0] + col
				z := layer.Origin[1] + row
				switch ch {
				case cellSolid:
					lvl.Grid.SetSolid(x, layer.Y, z, true)
				case cellEmpty, ' ':
				case cellSpawn:
					lvl.Spawn = r3.Vec{X: float64(x) + 0.5, Y: float64(layer.Y), Z: float64(z) + 0.5}
					spawnSet = true
				default:
					return nil, fmt.Errorf("layer %d row %d col %d: unknown cell %q", li, row, col, ch)
				}
			}
		}
	}

	if len(f.Spawn) > 0 {
		if len(f.Spawn) != 3 {
			return nil, fmt.Errorf("spawn needs 3 coordinates, got %d", len(f.Spawn))
		}
		lvl.Spawn = r3.Vec{X: f.Spawn[0], Y: f.Spawn[1], Z: f.Spawn[2]}
		spawnSet = true
	}
	if !spawnSet {
		return nil, fmt.Errorf("level %q has no spawn point", f.Name)
	}
	return lvl, nil
}

package mapdef

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml"
)

// document is the on-disk form of a MapDef.
type document struct {
	VerticesWidth  int            `toml:"vertices_width"`
	VerticesLength int            `toml:"vertices_length"`
	Scale          []float64      `toml:"scale"`
	SpawnPoint     []float64      `toml:"spawn_point,omitempty"`
	HeightMap      []float64      `toml:"height_map"`
	Rocks          []rockDocument `toml:"rocks,omitempty"`
}

type rockDocument struct {
	Translation []float64 `toml:"translation"`
	Metadata    int64     `toml:"metadata"`
}

// Marshal encodes the map as TOML.
func (d *MapDef) Marshal() ([]byte, error) {
	doc := document{
		VerticesWidth:  d.VerticesWidth,
		VerticesLength: d.VerticesLength,
		Scale:          vecToSlice(d.Scale),
		HeightMap:      make([]float64, len(d.HeightMap)),
	}
	if d.SpawnPoint != nil {
		doc.SpawnPoint = vecToSlice(*d.SpawnPoint)
	}
	for i, h := range d.HeightMap {
		doc.HeightMap[i] = float64(h)
	}
	for _, r := range d.Rocks {
		doc.Rocks = append(doc.Rocks, rockDocument{Translation: vecToSlice(r.Translation), Metadata: int64(r.Metadata)})
	}
	return toml.Marshal(doc)
}

// Unmarshal decodes a TOML map and validates its dimensions.
func Unmarshal(data []byte) (*MapDef, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode map: %w", err)
	}
	d := &MapDef{
		VerticesWidth:  doc.VerticesWidth,
		VerticesLength: doc.VerticesLength,
		HeightMap:      make([]float32, len(doc.HeightMap)),
	}
	var err error
	if d.Scale, err = sliceToVec(doc.Scale); err != nil {
		return nil, fmt.Errorf("decode map scale: %w", err)
	}
	if doc.SpawnPoint != nil {
		p, err := sliceToVec(doc.SpawnPoint)
		if err != nil {
			return nil, fmt.Errorf("decode map spawn point: %w", err)
		}
		d.SpawnPoint = &p
	}
	for i, h := range doc.HeightMap {
		d.HeightMap[i] = float32(h)
	}
	for i, r := range doc.Rocks {
		t, err := sliceToVec(r.Translation)
		if err != nil {
			return nil, fmt.Errorf("decode rock %d: %w", i, err)
		}
		d.Rocks = append(d.Rocks, Rock{Translation: t, Metadata: uint32(r.Metadata)})
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks that the height map matches the declared dimensions.
func (d *MapDef) Validate() error {
	if d.VerticesWidth < 2 || d.VerticesLength < 2 {
		return fmt.Errorf("map needs at least 2x2 vertices, got %dx%d", d.VerticesWidth, d.VerticesLength)
	}
	if len(d.HeightMap) != d.VerticesWidth*d.VerticesLength {
		return fmt.Errorf("map has %d height samples, expected %d", len(d.HeightMap), d.VerticesWidth*d.VerticesLength)
	}
	return nil
}

// Load reads a map from a TOML file.
func Load(path string) (*MapDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}
	return Unmarshal(data)
}

// Save writes the map to a TOML file, replacing any existing file.
func (d *MapDef) Save(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("encode map: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write map: %w", err)
	}
	return nil
}

func vecToSlice(v mgl32.Vec3) []float64 {
	return []float64{float64(v[0]), float64(v[1]), float64(v[2])}
}

func sliceToVec(s []float64) (mgl32.Vec3, error) {
	if len(s) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(s))
	}
	return mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}, nil
}

package mapdef

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeebo/xxh3"
)

// Rock is a rock placement of a map.
type Rock struct {
	Translation mgl32.Vec3
	// Metadata is an arbitrary tag carried from the source data, usually the rock grade or id.
	Metadata uint32
}

// MapDef describes a map: a height field of VerticesWidth columns along X and VerticesLength rows
// along Y, the rocks lying on it and an optional spawn point.
type MapDef struct {
	VerticesWidth  int
	VerticesLength int
	// Scale holds the X and Y extents of the terrain and the multiplier applied to heights.
	Scale mgl32.Vec3
	// HeightMap holds VerticesWidth*VerticesLength samples, row by row.
	HeightMap  []float32
	Rocks      []Rock
	SpawnPoint *mgl32.Vec3
}

// Flat returns a flat map of the given extent without rocks.
func Flat(width, length float32) *MapDef {
	return &MapDef{
		VerticesWidth:  2,
		VerticesLength: 2,
		Scale:          mgl32.Vec3{width, length, 1},
		HeightMap:      make([]float32, 4),
	}
}

// Height returns the unscaled sample at column x, row y.
func (d *MapDef) Height(x, y int) float32 {
	return d.HeightMap[y*d.VerticesWidth+x]
}

// MinHeight returns the lowest unscaled sample of the map.
func (d *MapDef) MinHeight() float32 {
	if len(d.HeightMap) == 0 {
		return 0
	}
	m := d.HeightMap[0]
	for _, h := range d.HeightMap[1:] {
		m = min(m, h)
	}
	return m
}

// MaxHeight returns the highest unscaled sample of the map.
func (d *MapDef) MaxHeight() float32 {
	if len(d.HeightMap) == 0 {
		return 0
	}
	m := d.HeightMap[0]
	for _, h := range d.HeightMap[1:] {
		m = max(m, h)
	}
	return m
}

// RockCenters returns the translation of every rock.
func (d *MapDef) RockCenters() []mgl32.Vec3 {
	centers := make([]mgl32.Vec3, len(d.Rocks))
	for i, r := range d.Rocks {
		centers[i] = r.Translation
	}
	return centers
}

// Hash returns a digest of every field of the map, used to tell recorded runs apart.
func (d *MapDef) Hash() uint64 {
	buf := make([]byte, 0, 64+len(d.Rocks)*16+len(d.HeightMap)*4)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(d.VerticesWidth))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(d.VerticesLength))
	if d.SpawnPoint != nil {
		buf = appendVec(buf, *d.SpawnPoint)
	}
	buf = appendVec(buf, d.Scale)
	for _, r := range d.Rocks {
		buf = appendVec(buf, r.Translation)
		buf = binary.LittleEndian.AppendUint32(buf, r.Metadata)
	}
	for _, h := range d.HeightMap {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(h))
	}
	return xxh3.Hash(buf)
}

func appendVec(buf []byte, v mgl32.Vec3) []byte {
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

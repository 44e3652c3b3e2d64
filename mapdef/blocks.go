package mapdef

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/dozersim/dozersim/game"
	"github.com/go-gl/mathgl/mgl32"
)

// BrokenRock is a fragmented rock exported by a blast simulation.
type BrokenRock struct {
	Position mgl32.Vec3
	ID       uint32
}

// Block is an axis aligned block of intact rock. Position is the centre of the block and Size its
// full extent along each axis.
type Block struct {
	Position mgl32.Vec3
	Size     mgl32.Vec3
	ID       uint32
}

// Min returns the lowest corner of the block.
func (b Block) Min() mgl32.Vec3 {
	return b.Position.Sub(b.Size.Mul(0.5))
}

// Max returns the highest corner of the block.
func (b Block) Max() mgl32.Vec3 {
	return b.Position.Add(b.Size.Mul(0.5))
}

// ReadBrokenRocks parses CSV records with at least the columns x, y, z and id.
func ReadBrokenRocks(r io.Reader) ([]BrokenRock, error) {
	var rocks []BrokenRock
	err := readRecords(r, []string{"x", "y", "z", "id"}, func(v []float64) {
		rocks = append(rocks, BrokenRock{
			Position: mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])},
			ID:       uint32(v[3]),
		})
	})
	return rocks, err
}

// ReadBlocks parses CSV records with at least the columns x, y, z, dx, dy, dz and id.
func ReadBlocks(r io.Reader) ([]Block, error) {
	var blocks []Block
	err := readRecords(r, []string{"x", "y", "z", "dx", "dy", "dz", "id"}, func(v []float64) {
		blocks = append(blocks, Block{
			Position: mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])},
			Size:     mgl32.Vec3{float32(v[3]), float32(v[4]), float32(v[5])},
			ID:       uint32(v[6]),
		})
	})
	return blocks, err
}

// LoadBrokenRocks reads broken rocks from a CSV file.
func LoadBrokenRocks(path string) ([]BrokenRock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open broken rocks: %w", err)
	}
	defer f.Close()
	return ReadBrokenRocks(f)
}

// LoadBlocks reads intact rock blocks from a CSV file.
func LoadBlocks(path string) ([]Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open unbroken rocks: %w", err)
	}
	defer f.Close()
	return ReadBlocks(f)
}

// LoadAllRocks reads both files and moves everything so that the lowest block centre sits at the
// origin. Only the heights of the blocks are shifted, their horizontal placement is kept.
func LoadAllRocks(blocksPath, brokenPath string) ([]Rock, []Block, error) {
	broken, err := LoadBrokenRocks(brokenPath)
	if err != nil {
		return nil, nil, err
	}
	blocks, err := LoadBlocks(blocksPath)
	if err != nil {
		return nil, nil, err
	}
	rocks, blocks := Recentre(broken, blocks)
	return rocks, blocks, nil
}

// Recentre converts broken rocks to map rocks relative to the lowest block centre.
func Recentre(broken []BrokenRock, blocks []Block) ([]Rock, []Block) {
	var origin mgl32.Vec3
	if len(blocks) > 0 {
		origin = blocks[0].Position
		for _, b := range blocks[1:] {
			origin = game.MinVec3(origin, b.Position)
		}
	}
	shifted := make([]Block, len(blocks))
	for i, b := range blocks {
		b.Position[2] -= origin[2]
		shifted[i] = b
	}
	rocks := make([]Rock, len(broken))
	for i, r := range broken {
		rocks[i] = Rock{Translation: r.Position.Sub(origin), Metadata: r.ID}
	}
	return rocks, shifted
}

// GenerateHeightmap rasterises the top of the blocks onto a grid with the given spacing. It
// returns the samples row by row with the number of columns and rows. Cells no block covers
// stay at the lowest block bottom.
func GenerateHeightmap(blocks []Block, interval float32) ([]float32, int, int) {
	if len(blocks) == 0 || interval <= 0 {
		return nil, 0, 0
	}
	lo, hi := blocks[0].Min(), blocks[0].Max()
	for _, b := range blocks[1:] {
		lo, hi = game.MinVec3(lo, b.Min()), game.MaxVec3(hi, b.Max())
	}
	extent := hi.Sub(lo)
	cols := int(math32.Ceil(extent[0]/interval)) + 1
	rows := int(math32.Ceil(extent[1]/interval)) + 1

	heights := make([]float32, cols*rows)
	for i := range heights {
		heights[i] = lo[2]
	}
	for _, b := range blocks {
		relMin, relMax := b.Min().Sub(lo), b.Max().Sub(lo)
		x0, y0 := int(math32.Floor(relMin[0]/interval)), int(math32.Floor(relMin[1]/interval))
		x1, y1 := int(math32.Ceil(relMax[0]/interval)), int(math32.Ceil(relMax[1]/interval))
		for y := max(y0, 0); y <= min(y1, rows-1); y++ {
			for x := max(x0, 0); x <= min(x1, cols-1); x++ {
				heights[y*cols+x] = max(heights[y*cols+x], b.Max()[2])
			}
		}
	}
	return heights, cols, rows
}

// FromBlocks builds a map whose terrain is generated from blocks and whose rocks are the given
// broken rocks.
func FromBlocks(rocks []Rock, blocks []Block, interval float32) (*MapDef, error) {
	heights, cols, rows := GenerateHeightmap(blocks, interval)
	if cols < 2 || rows < 2 {
		return nil, errors.New("blocks do not cover enough ground for a height map")
	}
	return &MapDef{
		VerticesWidth:  cols,
		VerticesLength: rows,
		Scale:          mgl32.Vec3{float32(cols-1) * interval, float32(rows-1) * interval, 1},
		HeightMap:      heights,
		Rocks:          rocks,
	}, nil
}

// readRecords reads a CSV stream with a header row and calls fn with the requested columns of
// every record, parsed as numbers.
func readRecords(r io.Reader, columns []string, fn func([]float64)) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	index := make([]int, len(columns))
	for i, name := range columns {
		index[i] = -1
		for j, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				index[i] = j
				break
			}
		}
		if index[i] < 0 {
			return fmt.Errorf("missing column %q", name)
		}
	}

	values := make([]float64, len(columns))
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		for i, j := range index {
			if values[i], err = strconv.ParseFloat(strings.TrimSpace(record[j]), 64); err != nil {
				return fmt.Errorf("line %d column %s: %w", line, columns[i], err)
			}
		}
		fn(values)
	}
}

package session

import (
	"github.com/dozersim/dozersim/game"
	"github.com/go-gl/mathgl/mgl32"
)

// MuckPile is a named zone where moved material is counted.
type MuckPile struct {
	Name        string
	Center      mgl32.Vec3
	HalfExtents mgl32.Vec3
}

// AddMuckPile registers a zone whose particle count is reported in every frame.
func (s *Session) AddMuckPile(p MuckPile) {
	s.muckPiles = append(s.muckPiles, p)
}

// MuckPileCounts returns the number of particles inside each muck pile.
func (s *Session) MuckPileCounts() map[string]int {
	if len(s.muckPiles) == 0 {
		return nil
	}
	counts := make(map[string]int, len(s.muckPiles))
	ctx := s.seeder.Context()
	for _, pile := range s.muckPiles {
		counts[pile.Name] = 0
		if ctx == nil {
			continue
		}
		bb := game.BoxFromHalfExtents(pile.Center, pile.HalfExtents)
		for _, p := range ctx.Particles {
			if game.BoxContains(bb, p.Position) {
				counts[pile.Name]++
			}
		}
	}
	return counts
}

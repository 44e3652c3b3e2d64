package mapdef

import (
	"github.com/dozersim/dozersim/physics"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	wallDepth   = float32(10)
	wallMargin  = float32(15)
	floorHeight = float32(1)
)

// Terrain holds the handles of everything Build inserted into the world.
type Terrain struct {
	Body   physics.BodyHandle
	Ground physics.ColliderHandle
	Floor  physics.ColliderHandle
	Walls  [4]physics.ColliderHandle
}

// Build inserts the terrain of the map into the world. The height field is placed so that it
// spans [0, Scale.X] by [0, Scale.Y]. It is surrounded by four walls and underlaid by a floor that
// catches particles slipping between triangles. The ground and the floor are coupled with the
// particle solver, the walls are not.
func Build(w *physics.World, d *MapDef) Terrain {
	sx, sy, sz := d.Scale[0], d.Scale[1], d.Scale[2]
	body := w.Bodies.Insert(physics.NewRigidBody(physics.Fixed, mgl32.Vec3{sx / 2, sy / 2, 0}))

	t := Terrain{Body: body}
	field := physics.NewHeightField(d.VerticesLength, d.VerticesWidth, d.HeightMap, d.Scale)
	t.Ground = w.Colliders.InsertWithParent(physics.NewCollider("ground", field).WithCoupling(), body)

	depthHalf, heightHalf := wallDepth/2, (sz+wallMargin)/2
	alongX := physics.NewCuboid(sx/2+depthHalf, depthHalf, heightHalf)
	alongY := physics.NewCuboid(depthHalf, sy/2+depthHalf, heightHalf)
	walls := []struct {
		name  string
		shape physics.Cuboid
		pos   mgl32.Vec3
	}{
		{"wall left", alongX, mgl32.Vec3{0, -sy/2 - depthHalf, heightHalf}},
		{"wall right", alongX, mgl32.Vec3{0, sy/2 + depthHalf, heightHalf}},
		{"wall back", alongY, mgl32.Vec3{-sx/2 - depthHalf, 0, heightHalf}},
		{"wall front", alongY, mgl32.Vec3{sx/2 + depthHalf, 0, heightHalf}},
	}
	for i, wall := range walls {
		t.Walls[i] = w.Colliders.InsertWithParent(physics.NewCollider(wall.name, wall.shape).WithPosition(wall.pos), body)
	}

	floor := physics.NewCollider("floor bottom", physics.NewCuboid(sx, sy, floorHeight/2)).
		WithPosition(mgl32.Vec3{0, 0, d.MinHeight()*sz - floorHeight/2}).
		WithCoupling()
	t.Floor = w.Colliders.InsertWithParent(floor, body)
	return t
}

// Remove deletes the terrain from the world.
func (t Terrain) Remove(w *physics.World) {
	w.RemoveBody(t.Body)
}

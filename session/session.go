package session

import (
	"errors"
	"fmt"

	"github.com/dozersim/dozersim/accessory"
	"github.com/dozersim/dozersim/game"
	"github.com/dozersim/dozersim/mpm"
	"github.com/dozersim/dozersim/physics"
	"github.com/dozersim/dozersim/settings"
	"github.com/dozersim/dozersim/vehicle"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

// VehicleID identifies a vehicle for the lifetime of a session.
type VehicleID uint32

// Vehicle is a vehicle registered with the session. Its chassis body may be attached after the
// vehicle is added, the controller is created on the first tick where the body exists.
type Vehicle struct {
	ID     VehicleID
	Preset vehicle.Preset

	Chassis    *physics.BodyHandle
	Controller *vehicle.Controller
	Excavator  *accessory.ExcavatorControls
	Truck      *accessory.TruckControls
}

// Kind returns the kind of the vehicle.
func (v *Vehicle) Kind() vehicle.Kind {
	return v.Preset.Kind
}

// Config holds the simulation settings a session runs with.
type Config struct {
	MaxDT         float32
	FixedTimestep bool
	TickRate      int
	Gravity       float32
	Seeder        mpm.SeederConfig
}

// DefaultConfig returns the configuration matching the default settings.
func DefaultConfig() Config {
	return ConfigFromSettings(settings.DefaultSettings())
}

// ConfigFromSettings extracts the session configuration from the sandbox settings.
func ConfigFromSettings(s settings.Settings) Config {
	seeder := mpm.DefaultSeederConfig()
	seeder.NumSubsteps = s.Simulation.Substeps
	seeder.GravityFactor = float32(s.Simulation.GravityFactor)
	seeder.CellWidth = float32(s.Simulation.CellWidth)
	seeder.MinCoupledColliders = s.Simulation.MinCouplingColliders
	seeder.Capacity = s.Simulation.ParticleCapacity
	return Config{
		MaxDT:         float32(s.Simulation.MaxDT),
		FixedTimestep: s.Simulation.FixedTimestep,
		TickRate:      s.Simulation.TickRate,
		Gravity:       float32(s.Simulation.Gravity),
		Seeder:        seeder,
	}
}

// Session owns the world, the vehicles and the particle simulation, and advances them together.
// It is not safe for concurrent use, every method must be called from the simulation goroutine.
type Session struct {
	log  *logrus.Logger
	conf Config

	World *physics.World

	vehicles *orderedmap.OrderedMap[VehicleID, *Vehicle]
	nextID   VehicleID
	selected *VehicleID
	previous vehicle.InputState

	maps   []mpm.RockSource
	seeder *mpm.Seeder
	solver mpm.Solver

	muckPiles []MuckPile

	ExcavatorDef accessory.ExcavatorDef
	TruckDef     accessory.TruckDef

	tick    uint64
	elapsed float64
}

// New creates an empty session.
func New(log *logrus.Logger, conf Config) *Session {
	return &Session{
		log:          log,
		conf:         conf,
		World:        physics.NewWorld(mgl32.Vec3{0, 0, -conf.Gravity}),
		vehicles:     orderedmap.NewOrderedMap[VehicleID, *Vehicle](),
		seeder:       mpm.NewSeeder(conf.Seeder, log),
		solver:       mpm.NewCPUSolver(),
		ExcavatorDef: accessory.DefaultExcavatorDef(),
		TruckDef:     accessory.DefaultTruckDef(),
	}
}

// SetSolver replaces the particle solver.
func (s *Session) SetSolver(solver mpm.Solver) {
	s.solver = solver
}

// AddMap registers a map whose rocks are seeded as particles. Seeding waits until exactly one
// map is registered and loaded.
func (s *Session) AddMap(src mpm.RockSource) {
	s.maps = append(s.maps, src)
}

// Seeder returns the particle seeder of the session.
func (s *Session) Seeder() *mpm.Seeder {
	return s.seeder
}

// AddVehicle registers a vehicle without a chassis body.
func (s *Session) AddVehicle(p vehicle.Preset) VehicleID {
	s.nextID++
	id := s.nextID
	v := &Vehicle{ID: id, Preset: p}
	switch p.Kind {
	case vehicle.KindExcavator:
		v.Excavator = accessory.NewExcavatorControls(s.ExcavatorDef)
	case vehicle.KindTruck:
		v.Truck = accessory.NewTruckControls(s.TruckDef)
	}
	s.vehicles.Set(id, v)
	return id
}

// AttachBody sets the chassis body of a vehicle.
func (s *Session) AttachBody(id VehicleID, h physics.BodyHandle) error {
	v, ok := s.vehicles.Get(id)
	if !ok {
		return fmt.Errorf("attach body: unknown vehicle %d", id)
	}
	if _, ok := s.World.Bodies.Get(h); !ok {
		return fmt.Errorf("attach body: unknown body %d", h)
	}
	v.Chassis = &h
	v.Controller = nil
	return nil
}

// SpawnVehicle adds a vehicle and inserts its chassis into the world.
func (s *Session) SpawnVehicle(p vehicle.Preset, pos mgl32.Vec3, rot mgl32.Quat) VehicleID {
	id := s.AddVehicle(p)
	if err := s.AttachBody(id, p.Spawn(s.World, pos, rot)); err != nil {
		panic(err)
	}
	return id
}

// Despawn removes a vehicle and its chassis. A selection pointing at it is resolved on the next
// tick.
func (s *Session) Despawn(id VehicleID) bool {
	v, ok := s.vehicles.Get(id)
	if !ok {
		return false
	}
	if v.Chassis != nil {
		s.World.RemoveBody(*v.Chassis)
	}
	s.vehicles.Delete(id)
	return true
}

// Vehicle returns the vehicle with the given id.
func (s *Session) Vehicle(id VehicleID) (*Vehicle, bool) {
	return s.vehicles.Get(id)
}

// Vehicles returns every vehicle in insertion order.
func (s *Session) Vehicles() []*Vehicle {
	vehicles := make([]*Vehicle, 0, s.vehicles.Len())
	for el := s.vehicles.Front(); el != nil; el = el.Next() {
		vehicles = append(vehicles, el.Value)
	}
	return vehicles
}

// Selected returns the id of the vehicle receiving input.
func (s *Session) Selected() (VehicleID, bool) {
	if s.selected == nil {
		return 0, false
	}
	return *s.selected, true
}

// Select makes id the vehicle receiving input.
func (s *Session) Select(id VehicleID) error {
	if _, ok := s.vehicles.Get(id); !ok {
		return errors.New("select: unknown vehicle")
	}
	s.selected = &id
	return nil
}

// CycleSelection selects the vehicle added after the selected one, wrapping to the first.
func (s *Session) CycleSelection() (VehicleID, bool) {
	front := s.vehicles.Front()
	if front == nil {
		s.selected = nil
		return 0, false
	}
	next := front
	if s.selected != nil {
		if el := s.vehicles.GetElement(*s.selected); el != nil && el.Next() != nil {
			next = el.Next()
		}
	}
	id := next.Key
	s.selected = &id
	return id, true
}

// resolveSelection returns the selected vehicle, falling back to the first vehicle when the
// selection is unset or points at a vehicle that no longer exists.
func (s *Session) resolveSelection() *Vehicle {
	if s.selected != nil {
		if v, ok := s.vehicles.Get(*s.selected); ok {
			return v
		}
		s.log.Warnf("selected vehicle %d no longer exists, selecting the first vehicle", *s.selected)
		s.selected = nil
	}
	front := s.vehicles.Front()
	if front == nil {
		return nil
	}
	id := front.Key
	s.selected = &id
	return front.Value
}

// EffectiveDT returns the step the session advances by for a frame of length dt.
func (s *Session) EffectiveDT(dt float32) float32 {
	if s.conf.FixedTimestep && s.conf.TickRate > 0 {
		return 1 / float32(s.conf.TickRate)
	}
	maxDT := s.conf.MaxDT
	if maxDT <= 0 {
		maxDT = game.DefaultMaxDT
	}
	return min(dt, maxDT)
}

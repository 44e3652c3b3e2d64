package session

import (
	"github.com/dozersim/dozersim/vehicle"
	"github.com/go-gl/mathgl/mgl32"
)

// Tick advances the simulation by one frame of length dt with the keys currently held. Pressing
// Tab cycles the selected vehicle.
func (s *Session) Tick(input vehicle.InputState, dt float32) Frame {
	s.createControllers()

	if input.Pressed(vehicle.KeyTab) && !s.previous.Pressed(vehicle.KeyTab) {
		s.CycleSelection()
	}
	s.previous = input
	selected := s.resolveSelection()

	for el := s.vehicles.Front(); el != nil; el = el.Next() {
		v := el.Value
		if v.Controller == nil {
			continue
		}
		if v == selected {
			v.Controller.IntegrateActions(input, v.Preset.Params)
		} else {
			v.Controller.Stop()
		}
	}

	step := s.EffectiveDT(dt)
	if step > 0 {
		for el := s.vehicles.Front(); el != nil; el = el.Next() {
			v := el.Value
			if v.Controller == nil {
				continue
			}
			if _, ok := s.World.Bodies.Get(v.Controller.Chassis()); !ok {
				s.log.Warnf("chassis of vehicle %d was removed, dropping its controller", v.ID)
				v.Controller, v.Chassis = nil, nil
				continue
			}
			v.Controller.UpdateVehicle(step, s.World.Bodies, s.World.Colliders, s.World.Queries)
		}
		s.updateAccessories(selected, input, step)
		s.World.Step(step)

		if ctx, ok := s.seeder.Poll(s.World.Bodies, s.World.Colliders, s.maps); ok && s.solver != nil {
			s.solver.Step(ctx, s.World.Bodies, s.World.Colliders, step)
		}
		s.tick++
		s.elapsed += float64(step)
	}
	return s.Frame(step)
}

// createControllers builds the controller of every vehicle whose chassis exists.
func (s *Session) createControllers() {
	for el := s.vehicles.Front(); el != nil; el = el.Next() {
		v := el.Value
		if v.Controller != nil || v.Chassis == nil {
			continue
		}
		if _, ok := s.World.Bodies.Get(*v.Chassis); !ok {
			continue
		}
		v.Controller = vehicle.NewController(*v.Chassis, v.Preset.Params)
		if v.Excavator != nil && !v.Excavator.Link(s.World.Colliders, *v.Chassis) {
			s.log.Warnf("excavator %d has no arm colliders", v.ID)
		}
		if v.Truck != nil && !v.Truck.Link(s.World.Colliders, *v.Chassis) {
			s.log.Warnf("truck %d has no bed colliders", v.ID)
		}
		s.log.Debugf("created %s controller for vehicle %d", v.Kind(), v.ID)
	}
}

// updateAccessories feeds the accessory keys to the selected vehicle and poses the accessories of
// every vehicle.
func (s *Session) updateAccessories(selected *Vehicle, input vehicle.InputState, dt float32) {
	for el := s.vehicles.Front(); el != nil; el = el.Next() {
		v := el.Value
		if v.Controller == nil {
			continue
		}
		if v.Excavator != nil {
			if v == selected {
				v.Excavator.IntegrateInputs(input, dt, s.ExcavatorDef)
			}
			v.Excavator.Apply(s.World.Colliders, v.Excavator.Propagate(dt, s.ExcavatorDef), s.ExcavatorDef)
		}
		if v.Truck != nil {
			if v == selected {
				v.Truck.IntegrateInputs(input, dt, s.TruckDef)
			}
			v.Truck.Apply(s.World.Colliders, s.TruckDef)
		}
	}
}

// WheelFrame is the state of a wheel in a frame.
type WheelFrame struct {
	InContact        bool       `json:"inContact"`
	SuspensionLength float32    `json:"suspensionLength"`
	Rotation         float32    `json:"rotation"`
	EngineForce      float32    `json:"engineForce"`
	SteeringAngle    float32    `json:"steeringAngle"`
	Brake            float32    `json:"brake"`
	Center           mgl32.Vec3 `json:"center"`
}

// VehicleFrame is the state of a vehicle in a frame.
type VehicleFrame struct {
	ID       VehicleID    `json:"id"`
	Kind     string       `json:"kind"`
	Selected bool         `json:"selected"`
	Position mgl32.Vec3   `json:"position"`
	Rotation [4]float32   `json:"rotation"`
	Speed    float32      `json:"speed"`
	Wheels   []WheelFrame `json:"wheels,omitempty"`
}

// Frame is a snapshot of the session after a tick.
type Frame struct {
	Tick      uint64         `json:"tick"`
	Elapsed   float64        `json:"elapsed"`
	DT        float32        `json:"dt"`
	Vehicles  []VehicleFrame `json:"vehicles"`
	Seeder    string         `json:"seeder"`
	Particles int            `json:"particles"`
	MuckPiles map[string]int `json:"muckPiles,omitempty"`
}

// Frame returns a snapshot of the current state.
func (s *Session) Frame(dt float32) Frame {
	f := Frame{
		Tick:      s.tick,
		Elapsed:   s.elapsed,
		DT:        dt,
		Vehicles:  make([]VehicleFrame, 0, s.vehicles.Len()),
		Seeder:    s.seeder.State().String(),
		MuckPiles: s.MuckPileCounts(),
	}
	if ctx := s.seeder.Context(); ctx != nil {
		f.Particles = len(ctx.Particles)
	}
	for el := s.vehicles.Front(); el != nil; el = el.Next() {
		v := el.Value
		vf := VehicleFrame{ID: v.ID, Kind: string(v.Kind()), Selected: s.selected != nil && *s.selected == v.ID}
		if v.Chassis != nil {
			if b, ok := s.World.Bodies.Get(*v.Chassis); ok {
				vf.Position = b.Position
				vf.Rotation = [4]float32{b.Rotation.X(), b.Rotation.Y(), b.Rotation.Z(), b.Rotation.W}
			}
		}
		if v.Controller != nil {
			vf.Speed = v.Controller.CurrentVehicleSpeed()
			for _, w := range v.Controller.Wheels() {
				vf.Wheels = append(vf.Wheels, WheelFrame{
					InContact:        w.InContact,
					SuspensionLength: w.SuspensionLength,
					Rotation:         w.Rotation,
					EngineForce:      w.EngineForce,
					SteeringAngle:    w.SteeringAngle,
					Brake:            w.Brake,
					Center:           w.Center(),
				})
			}
		}
		f.Vehicles = append(f.Vehicles, vf)
	}
	return f
}

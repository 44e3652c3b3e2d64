package recorder

import "time"

// Models lists every table of the recording schema.
var Models = []interface{}{
	&Run{},
	&SeedingSummary{},
	&VehicleFrame{},
}

// Run is a single execution of the sandbox on a map.
type Run struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	MapHash   string    `json:"mapHash" gorm:"size:16;index:idx_run_map_hash"` // xxh3 digest of the map, in hex
	StartedAt time.Time `json:"startedAt"`
}

func (*Run) TableName() string {
	return "runs"
}

// SeedingSummary records how many rock particles were seeded in a run.
type SeedingSummary struct {
	ID        uint `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID     uint `json:"runId" gorm:"index:idx_seeding_run_id"`
	Total     int  `json:"total"`
	Removed   int  `json:"removed"`
	Simulated int  `json:"simulated"`
	Coupled   int  `json:"coupled"`
}

func (*SeedingSummary) TableName() string {
	return "seeding_summaries"
}

// VehicleFrame is the state of one vehicle at one tick.
type VehicleFrame struct {
	ID        uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID     uint    `json:"runId" gorm:"index:idx_vehicleframe_run_id"`
	Tick      uint64  `json:"tick" gorm:"index:idx_vehicleframe_tick"`
	VehicleID uint32  `json:"vehicleId"`
	Kind      string  `json:"kind" gorm:"size:16"`
	Selected  bool    `json:"selected"`
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Z         float32 `json:"z"`
	Speed     float32 `json:"speed"`
	Contacts  uint8   `json:"contacts"` // wheels touching the ground
}

func (*VehicleFrame) TableName() string {
	return "vehicle_frames"
}

package settings

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Settings contains everything that can be configured for the sandbox.
type Settings struct {
	// Debug lowers the log level to debug.
	Debug bool
	// Pprof starts the runtime statistics viewer.
	Pprof bool

	Simulation struct {
		// MaxDT caps the step handed to the vehicles and the particle solver.
		MaxDT float64
		// FixedTimestep steps by exactly 1/TickRate instead of the measured frame time.
		FixedTimestep bool
		TickRate      int
		Substeps      int
		// Gravity is the magnitude of gravity along -Z, scaled by GravityFactor for particles.
		Gravity              float64
		GravityFactor        float64
		CellWidth            float64
		MinCouplingColliders int
		ParticleCapacity     int
	}
	Map struct {
		// Path is a TOML map definition. A flat map of FlatSize is used when it is empty.
		Path             string
		FlatSize         float64
		BrokenRocksCSV   string
		UnbrokenRocksCSV string
		SamplingInterval float64
	}
	Recorder struct {
		Enabled bool
		// SqlitePath is the database file. An in-memory database is used when it is empty.
		SqlitePath string
	}
	Transport struct {
		Enabled bool
		Address string
	}
}

// DefaultSettings returns the default settings of the sandbox.
func DefaultSettings() Settings {
	s := Settings{}
	s.Simulation.MaxDT = 1.0 / 60.0
	s.Simulation.TickRate = 60
	s.Simulation.Substeps = 2
	s.Simulation.Gravity = 9.81
	s.Simulation.GravityFactor = 1
	s.Simulation.CellWidth = 0.5
	s.Simulation.MinCouplingColliders = 5
	s.Simulation.ParticleCapacity = 60000

	s.Map.FlatSize = 60
	s.Map.SamplingInterval = 1

	s.Transport.Enabled = true
	s.Transport.Address = "localhost:8081"
	return s
}

// Validate reports settings the simulation cannot run with.
func (s Settings) Validate() error {
	switch {
	case s.Simulation.MaxDT <= 0:
		return errors.New("simulation max dt must be positive")
	case s.Simulation.TickRate <= 0:
		return errors.New("simulation tick rate must be positive")
	case s.Simulation.Substeps <= 0:
		return errors.New("simulation substeps must be positive")
	case s.Map.SamplingInterval <= 0:
		return errors.New("map sampling interval must be positive")
	}
	return nil
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return errors.New("settings file already exists")
	}
	data, err := toml.Marshal(DefaultSettings())
	if err != nil {
		return fmt.Errorf("failed encoding default settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed creating settings file: %w", err)
	}
	return nil
}

// Load will load the settings from your settings file, and return an error if the file does not exist. Keys
// missing from the file keep their default value.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, errors.New("settings file doesn't exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("error reading config: %w", err)
	}

	s := DefaultSettings()
	if err = toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	return s, nil
}

// LoadOrCreate loads the settings at path, writing the defaults there first if the file does not exist.
func LoadOrCreate(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveDefault(path); err != nil {
			return Settings{}, err
		}
	}
	return Load(path)
}

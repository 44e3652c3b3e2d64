package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveDefault(path))
	assert.Error(t, SaveDefault(path), "saving over an existing file must fail")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "Debug = true\n\n[Simulation]\nTickRate = 30\nFixedTimestep = true\n\n[Transport]\nAddress = \"0.0.0.0:9000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.True(t, s.Debug)
	assert.Equal(t, 30, s.Simulation.TickRate)
	assert.True(t, s.Simulation.FixedTimestep)
	assert.Equal(t, "0.0.0.0:9000", s.Transport.Address)
	assert.Equal(t, DefaultSettings().Simulation.MaxDT, s.Simulation.MaxDT)
	assert.Equal(t, 60000, s.Simulation.ParticleCapacity)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[Simulation\nTickRate = "), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[Simulation]\nSubsteps = 0\n"), 0644))
	_, err = Load(invalid)
	assert.Error(t, err)
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	s, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

package mapdef

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// Asset is a map that may still be loading. It is safe to read from any goroutine while a
// loader fills it in.
type Asset struct {
	Path string
	def  atomic.Pointer[MapDef]
	err  atomic.Pointer[error]
}

// NewAsset returns an asset that is already loaded with d.
func NewAsset(d *MapDef) *Asset {
	a := &Asset{}
	a.def.Store(d)
	return a
}

// PendingAsset returns an asset for path that is loaded later with LoadNow.
func PendingAsset(path string) *Asset {
	return &Asset{Path: path}
}

// LoadNow reads the asset's file. It is meant to run off the simulation goroutine.
func (a *Asset) LoadNow() error {
	d, err := Load(a.Path)
	if err != nil {
		a.err.Store(&err)
		return err
	}
	a.err.Store(nil)
	a.def.Store(d)
	return nil
}

// Def returns the loaded map, or nil while it is still loading.
func (a *Asset) Def() *MapDef {
	return a.def.Load()
}

// Err returns the error that stopped the asset from loading, if any.
func (a *Asset) Err() error {
	if err := a.err.Load(); err != nil {
		return *err
	}
	return nil
}

// Rocks returns the rock centres of the map once it is loaded.
func (a *Asset) Rocks() ([]mgl32.Vec3, bool) {
	d := a.def.Load()
	if d == nil {
		return nil, false
	}
	return d.RockCenters(), true
}

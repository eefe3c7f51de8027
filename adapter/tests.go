package adapter

import (
	"context"
	"maps"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/table"
)

// StarXGalaxyDensity correlates star positions with galaxy density. It needs
// random catalogs, which are not available yet, so Call always fails.
type StarXGalaxyDensity struct {
	*Base
}

// NewStarXGalaxyDensity builds the adapter from cfg.Tests.
func NewStarXGalaxyDensity(cfg Config) (Adapter, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	a := &StarXGalaxyDensity{Base: NewBase(cfg.Tests.StarXGalaxyDensity(), cfg)}
	if err := a.SetupMasks(); err != nil {
		return nil, err
	}
	return a, nil
}

// Call returns an UnimplementedError.
func (a *StarXGalaxyDensity) Call(context.Context, Args, ...*table.Named) (any, error) {
	return nil, &stile.UnimplementedError{Feature: "random catalogs for " + a.Name()}
}

// StarXGalaxyShear measures tangential galaxy shear around stars.
type StarXGalaxyShear struct {
	*Base
}

// NewStarXGalaxyShear builds the adapter from cfg.Tests.
func NewStarXGalaxyShear(cfg Config) (Adapter, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	a := &StarXGalaxyShear{Base: NewBase(cfg.Tests.StarXGalaxyShear(), cfg)}
	if err := a.SetupMasks(); err != nil {
		return nil, err
	}
	return a, nil
}

// PSFFluxField is the column summarised by StatsPSFFlux.
const PSFFluxField = "flux.psf"

// StatsPSFFlux computes summary statistics of the PSF flux of galaxies.
type StatsPSFFlux struct {
	*Base
}

// NewStatsPSFFlux builds the adapter from cfg.Tests.
func NewStatsPSFFlux(cfg Config) (Adapter, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	b := NewBase(cfg.Tests.Stat(PSFFluxField), cfg)
	b.name += PSFFluxField
	a := &StatsPSFFlux{Base: b}
	if err := a.SetupMasks("galaxy"); err != nil {
		return nil, err
	}
	return a, nil
}

// GetRequiredColumns returns the PSF flux column only.
func (a *StatsPSFFlux) GetRequiredColumns() [][]string {
	return [][]string{{PSFFluxField}}
}

// Call runs the test verbosely.
func (a *StatsPSFFlux) Call(ctx context.Context, args Args, data ...*table.Named) (any, error) {
	merged := Args{"verbose": true}
	maps.Copy(merged, args)
	return a.SysTest().Run(ctx, merged, data...)
}

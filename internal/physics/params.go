package physics

import (
	"errors"
	"fmt"
	"math"
)

// Default tuning constants. They are empirical and must be preserved as-is.
const (
	DefaultMinimalMass      = 1.0
	DefaultObjectsDensity   = 20.0
	DefaultMarginFactor     = 9.0
	DefaultCenterAttraction = -0.002
	DefaultTimeStepMs       = 1.0
	DefaultMinSeparation    = 0.04
)

// Params holds the tunable constants of the layout physics.
type Params struct {
	// MinimalMass is the lower bound of every node's mass.
	MinimalMass float64 `json:"minimal_mass" yaml:"minimal_mass"`
	// ObjectsDensity is the ratio between radius and sqrt(mass).
	ObjectsDensity float64 `json:"objects_density" yaml:"objects_density"`
	// MarginFactor sets the desired gap between two node boundaries as a
	// multiple of ObjectsDensity.
	MarginFactor float64 `json:"margin_factor" yaml:"margin_factor"`
	// CenterAttraction scales the pull towards the origin, per unit of mass.
	CenterAttraction float64 `json:"center_attraction" yaml:"center_attraction"`
	// TimeStepMs is the integration step used by the frame loop.
	TimeStepMs float64 `json:"time_step_ms" yaml:"time_step_ms"`
	// MinSeparation is the smallest distance the pairwise force is evaluated
	// at, as a fraction of the pair's margin sum. Closer pairs, coincident
	// ones included, are treated as this far apart. At 0.04 the repulsion is
	// capped at 600 px/ms.
	MinSeparation float64 `json:"min_separation" yaml:"min_separation"`
}

// ObjectsMargin is the desired gap between two node boundaries, in pixels.
func (p Params) ObjectsMargin() float64 {
	return p.MarginFactor * p.ObjectsDensity
}

// DefaultParams returns the original tuning: density 20, margin 9*density,
// center attraction -0.002 and a 1ms time step.
func DefaultParams() Params {
	return Params{
		MinimalMass:      DefaultMinimalMass,
		ObjectsDensity:   DefaultObjectsDensity,
		MarginFactor:     DefaultMarginFactor,
		CenterAttraction: DefaultCenterAttraction,
		TimeStepMs:       DefaultTimeStepMs,
		MinSeparation:    DefaultMinSeparation,
	}
}

// Validate reports parameters that would make the simulation meaningless.
func (p Params) Validate() error {
	var errs []error
	check := func(name string, v float64, ok bool) {
		if math.IsNaN(v) || math.IsInf(v, 0) || !ok {
			errs = append(errs, fmt.Errorf("invalid %s: %v", name, v))
		}
	}
	check("minimal_mass", p.MinimalMass, p.MinimalMass > 0)
	check("objects_density", p.ObjectsDensity, p.ObjectsDensity > 0)
	check("margin_factor", p.MarginFactor, p.MarginFactor >= 0)
	check("center_attraction", p.CenterAttraction, true)
	check("time_step_ms", p.TimeStepMs, p.TimeStepMs > 0)
	check("min_separation", p.MinSeparation, p.MinSeparation > 0 && p.MinSeparation < 1)
	return errors.Join(errs...)
}

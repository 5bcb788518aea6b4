package prefs

import (
	"errors"
	"math"
)

// Validate reports every field of p that a kernel cannot integrate with.
// The returned error matches ErrInvalidParameter via errors.Is and each
// offending field is reachable as a *ParamError via errors.As.
//
// Damping outside [0,1] is accepted, as is a zero particle count.
func (p Prefs) Validate() error {
	var errs []error

	dt := float64(p.Timestep)
	switch {
	case math.IsNaN(dt) || math.IsInf(dt, 0):
		errs = append(errs, &ParamError{Field: "timestep", Value: dt, Reason: "must be finite"})
	case dt <= 0:
		errs = append(errs, &ParamError{Field: "timestep", Value: dt, Reason: "must be positive"})
	}

	damping := float64(p.Damping)
	if math.IsNaN(damping) || math.IsInf(damping, 0) {
		errs = append(errs, &ParamError{Field: "damping", Value: damping, Reason: "must be finite"})
	}

	eps2 := float64(p.SofteningSqr)
	switch {
	case math.IsNaN(eps2) || math.IsInf(eps2, 0):
		errs = append(errs, &ParamError{Field: "softeningSqr", Value: eps2, Reason: "must be finite"})
	case eps2 < 0:
		errs = append(errs, &ParamError{Field: "softeningSqr", Value: eps2, Reason: "must be non-negative"})
	}

	return errors.Join(errs...)
}

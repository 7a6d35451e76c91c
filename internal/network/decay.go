package network

import (
	"github.com/rotisserie/eris"
)

// DecayFunc weights a reachable target by its beeline distance in meters.
// Implementations are pure and stateless.
type DecayFunc func(beelineMeters float64) float64

// Decay function selector names accepted in configuration.
const (
	DecayNameNone       = "none"
	DecayNameStep       = "step"
	DecayNamePolynomial = "polynomial"
)

// DecayNone weights every target fully regardless of distance.
func DecayNone(float64) float64 { return 1 }

// DecayStep is the default step function reflecting observed walking-trip
// distance distributions.
func DecayStep(m float64) float64 {
	switch {
	case m < 400:
		return 1
	case m < 800:
		return 0.6
	case m < 1200:
		return 0.25
	case m < 1800:
		return 0.08
	default:
		return 0
	}
}

// DecayPolynomial is a degree-5 polynomial fit of trip attraction over
// distance, evaluated in kilometers and clamped to [0,1]. Beyond 1.5 km the
// weight is zero.
func DecayPolynomial(m float64) float64 {
	if m > 1500 {
		return 0
	}
	d := m / 1000
	w := (335.9229*pow5(d) - 1327.84*d*d*d*d + 1802.56*d*d*d - 935.68*d*d + 61.92*d + 100.1072) / 100
	if w > 1 {
		return 1
	}
	if w < 0 {
		return 0
	}
	return w
}

func pow5(d float64) float64 { return d * d * d * d * d }

// SelectDecay resolves a configuration selector to its decay function.
// An unrecognized name is a configuration error.
func SelectDecay(name string) (DecayFunc, error) {
	switch name {
	case DecayNameNone:
		return DecayNone, nil
	case DecayNameStep:
		return DecayStep, nil
	case DecayNamePolynomial:
		return DecayPolynomial, nil
	default:
		return nil, eris.Errorf("network: unknown decay function %q (want none, step or polynomial)", name)
	}
}

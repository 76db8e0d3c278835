// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package ranking

import (
	"math"
	"math/rand/v2"
)

// SampleBeta draws from Beta(alpha, beta) as X/(X+Y) with X~Gamma(alpha)
// and Y~Gamma(beta). Both shapes are floored to StateFloor first.
func SampleBeta(rng *rand.Rand, s BanditState) float64 {
	s = s.Clamp()
	x := sampleGamma(rng, s.Success)
	y := sampleGamma(rng, s.Failure)
	if x+y == 0 {
		// Both draws underflowed; only possible for tiny shapes.
		return s.Mean()
	}
	return x / (x + y)
}

// sampleGamma draws from Gamma(shape, 1) using Marsaglia and Tsang's
// squeeze method. Shapes below 1 are boosted: Gamma(a) = Gamma(a+1)*U^(1/a).
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		return sampleGamma(rng, shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		x2 := x * x
		if u < 1-0.0331*x2*x2 {
			return d * v
		}
		if math.Log(u) < 0.5*x2+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

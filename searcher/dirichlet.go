package searcher

import (
	"math"

	"golang.org/x/exp/rand"
)

// sampleDirichlet draws from a symmetric Dirichlet(alpha) distribution
// over n slots by normalizing n Gamma(alpha, 1) variates.
func sampleDirichlet(alpha float64, n int, rng *rand.Rand) []float64 {
	sample := make([]float64, n)
	sum := 0.0
	for i := range sample {
		sample[i] = sampleGamma(alpha, rng)
		sum += sample[i]
	}
	if sum == 0 {
		for i := range sample {
			sample[i] = 1 / float64(n)
		}
		return sample
	}
	for i := range sample {
		sample[i] /= sum
	}
	return sample
}

// sampleGamma draws from Gamma(shape, 1) with the Marsaglia-Tsang squeeze
// method. Shapes below one use the boosting identity
// Gamma(a) = Gamma(a+1) * U^(1/a).
func sampleGamma(shape float64, rng *rand.Rand) float64 {
	if shape < 1 {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		return sampleGamma(shape+1, rng) * math.Pow(u, 1/shape)
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
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if u > 0 && math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

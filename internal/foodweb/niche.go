package foodweb

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

type NicheOptions struct {
	// Tolerance is the accepted absolute deviation from the target connectance.
	Tolerance float64
	// MaxAttempts bounds the number of sampled webs before giving up.
	MaxAttempts int
	// BodyMassRatio is forwarded to the web as Z.
	BodyMassRatio float64
}

func DefaultNicheOptions() NicheOptions {
	return NicheOptions{
		Tolerance:     0.02,
		MaxAttempts:   1000,
		BodyMassRatio: DefaultBodyMassRatio,
	}
}

// Niche samples a web of s species with expected connectance c from the
// Williams-Martinez niche model. Webs with isolated species, consumers
// cut off from producers, or connectance outside the tolerance are
// rejected and resampled.
func Niche(s int, c float64, rng *rand.Rand, opts NicheOptions) (*FoodWeb, error) {
	if s < 2 {
		return nil, fmt.Errorf("%w: niche model needs at least 2 species, got %d", ErrEmpty, s)
	}
	if c <= 0 || c >= 0.5 {
		return nil, fmt.Errorf("%w: %v not in (0, 0.5)", ErrConnectance, c)
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultNicheOptions().MaxAttempts
	}
	if opts.BodyMassRatio == 0 {
		opts.BodyMassRatio = DefaultBodyMassRatio
	}

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		a := sampleNiche(s, c, rng)
		if hasIsolated(a) {
			continue
		}

		w, err := FromAdjacency(a, WithBodyMassRatio(opts.BodyMassRatio))
		if errors.Is(err, ErrDisconnected) || errors.Is(err, ErrNoProducer) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if math.Abs(w.Connectance()-c) > opts.Tolerance {
			continue
		}
		return w, nil
	}
	return nil, fmt.Errorf("%w: S=%d C=%v after %d attempts", ErrMaxAttempts, s, c, opts.MaxAttempts)
}

func sampleNiche(s int, c float64, rng *rand.Rand) [][]bool {
	beta := 1/(2*c) - 1

	n := make([]float64, s)
	for i := range n {
		n[i] = rng.Float64()
	}
	sort.Float64s(n)

	r := make([]float64, s)
	centre := make([]float64, s)
	for i := range n {
		// Beta(1, beta) by inversion.
		r[i] = n[i] * (1 - math.Pow(1-rng.Float64(), 1/beta))
		lo := r[i] / 2
		hi := math.Min(n[i], 1-r[i]/2)
		centre[i] = lo + rng.Float64()*(hi-lo)
	}
	r[0] = 0

	a := make([][]bool, s)
	for i := range a {
		a[i] = make([]bool, s)
		if r[i] == 0 {
			continue
		}
		for j := range n {
			if n[j] >= centre[i]-r[i]/2 && n[j] <= centre[i]+r[i]/2 {
				a[i][j] = true
			}
		}
	}
	return a
}

func hasIsolated(a [][]bool) bool {
	for i := range a {
		linked := false
		for j := range a {
			if (a[i][j] || a[j][i]) && i != j {
				linked = true
				break
			}
		}
		if !linked {
			return true
		}
	}
	return false
}

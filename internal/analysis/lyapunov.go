package analysis

import (
	"math"

	"github.com/san-kum/foodweb/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent by following a
// trajectory and a copy perturbed in its first living species, renormalising
// the separation back to the perturbation size after every step. A positive value indicates chaos.
// Systems that implement dynamo.Projector are projected after every step so
// extinctions apply to both copies.
func LyapunovExponent(dyn dynamo.System, integ dynamo.Integrator, x0 dynamo.State, dt, duration, perturbation float64) float64 {
	if len(x0) == 0 || dt <= 0 || perturbation <= 0 {
		return 0
	}
	proj, _ := dyn.(dynamo.Projector)

	x := x0.Clone()
	xp := x0.Clone()
	for i, v := range xp {
		if v > 0 {
			xp[i] += perturbation
			break
		}
	}
	// Integrators may reuse scratch buffers, so each copy gets its own clone.
	step := func(s dynamo.State, t float64) dynamo.State {
		next := integ.Step(dyn, s, t, dt).Clone()
		if proj != nil {
			next = proj.Project(next)
		}
		return next
	}

	sumLog := 0.0
	count := 0
	steps := int(math.Round(duration / dt))
	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		x = step(x, t)
		xp = step(xp, t)

		sep := xp.Sub(x).Norm()
		if sep > 0 {
			sumLog += math.Log(sep / perturbation)
			count++
			scale := perturbation / sep
			for j := range xp {
				xp[j] = x[j] + (xp[j]-x[j])*scale
			}
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}

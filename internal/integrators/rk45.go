package integrators

import (
	"math"

	"github.com/san-kum/foodweb/internal/dynamo"
)

// Dormand-Prince 5(4) tableau. The last row of dpA is the fifth-order
// solution, so the seventh stage is evaluated at the accepted state.
var (
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA = [7][]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	// dpE is the fifth-order weights minus the embedded fourth-order ones.
	dpE = [7]float64{
		35.0/384 - 5179.0/57600,
		0,
		500.0/1113 - 7571.0/16695,
		125.0/192 - 393.0/640,
		-2187.0/6784 + 92097.0/339200,
		11.0/84 - 187.0/2100,
		-1.0 / 40,
	}
)

// DefaultRK45Tolerance is the relative error Step holds each substep to.
const DefaultRK45Tolerance = 1e-6

type RK45 struct {
	// Tolerance is used by Step; StepAdaptive takes its own.
	Tolerance float64
	// MaxSubsteps bounds the work Step does for one dt.
	MaxSubsteps int

	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		Tolerance:   DefaultRK45Tolerance,
		MaxSubsteps: 10000,
		safety:      0.9,
		minScale:    0.2,
		maxScale:    10.0,
	}
}

// Step advances x by exactly dt, splitting it into accepted adaptive
// substeps. When MaxSubsteps runs out the remainder is taken as one
// unchecked step.
func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	end := t + dt
	eps := 1e-12 * math.Max(1, math.Abs(end))
	h := dt
	cur := x
	for i := 0; i < r.MaxSubsteps && end-t > eps; i++ {
		if t+h > end {
			h = end - t
		}
		next, hNext, err := r.StepAdaptive(dyn, cur, t, h, r.Tolerance)
		if err != nil {
			h = hNext
			continue
		}
		cur = next
		t += h
		h = math.Min(hNext, dt)
	}
	if end-t > eps {
		cur, _, _ = r.StepAdaptive(dyn, cur, t, end-t, math.Inf(1))
	}
	return cur
}

// StepAdaptive takes one trial step of size dt and proposes the next step
// size. It returns dynamo.ErrStepRejected when the error estimate exceeds tol.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64, error) {
	n := len(x)
	var k [7]dynamo.State
	stage := make(dynamo.State, n)

	for s := range dpA {
		for i := 0; i < n; i++ {
			sum := 0.0
			for j, a := range dpA[s] {
				sum += a * k[j][i]
			}
			stage[i] = x[i] + dt*sum
		}
		k[s] = dyn.Derive(stage, t+dpC[s]*dt).Clone()
	}
	xNew := stage

	errMax := 0.0
	for i := 0; i < n; i++ {
		est := 0.0
		for s, e := range dpE {
			est += e * k[s][i]
		}
		scale := math.Abs(x[i]) + math.Abs(dt*k[0][i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(dt*est)/scale)
	}

	ratio := errMax / tol
	var factor float64
	switch {
	case ratio > 1:
		factor = math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25))
	case ratio > 0:
		factor = math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2))
	default:
		factor = r.maxScale
	}

	if ratio > 1 {
		return xNew, dt * factor, dynamo.ErrStepRejected
	}
	return xNew, dt * factor, nil
}

package sweep

import (
	"fmt"
	"math"
)

// MaxPoints bounds the number of values Range and Linspace will produce.
const MaxPoints = 100000

// Range returns start, start+step, ... up to and including stop. A final
// value within half a step's rounding of stop is snapped to stop.
func Range(start, stop, step float64) ([]float64, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: step %v", ErrInvalidRange, step)
	}
	if stop < start || math.IsNaN(start) || math.IsNaN(stop) || math.IsInf(start, 0) || math.IsInf(stop, 0) {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrInvalidRange, start, stop)
	}
	span := math.Floor((stop-start)/step + 1e-9)
	if span+1 > MaxPoints {
		return nil, fmt.Errorf("%w: [%v, %v] by %v exceeds %d points", ErrInvalidRange, start, stop, step, MaxPoints)
	}
	n := int(span) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	if math.Abs(out[n-1]-stop) < 1e-9*math.Max(1, math.Abs(stop)) {
		out[n-1] = stop
	}
	return out, nil
}

// Linspace returns n evenly spaced values from a to b inclusive.
func Linspace(a, b float64, n int) ([]float64, error) {
	if n < 1 || n > MaxPoints {
		return nil, fmt.Errorf("%w: %d points", ErrInvalidRange, n)
	}
	if n == 1 {
		return []float64{a}, nil
	}
	out := make([]float64, n)
	h := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*h
	}
	out[n-1] = b
	return out, nil
}

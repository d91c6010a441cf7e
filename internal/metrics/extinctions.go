package metrics

import "github.com/san-kum/foodweb/internal/dynamo"

// Extinctions counts species that drop to zero biomass during a run.
type Extinctions struct {
	name  string
	alive []bool
	count int
}

func NewExtinctions() *Extinctions {
	return &Extinctions{name: "extinctions"}
}

func (e *Extinctions) Name() string { return e.name }

func (e *Extinctions) Observe(x dynamo.State, t float64) {
	if e.alive == nil {
		e.alive = make([]bool, len(x))
		for i, v := range x {
			e.alive[i] = v > 0
		}
		return
	}
	for i, v := range x {
		if e.alive[i] && v == 0 {
			e.count++
		}
		e.alive[i] = v > 0
	}
}

func (e *Extinctions) Value() float64 { return float64(e.count) }

func (e *Extinctions) Reset() {
	e.alive = nil
	e.count = 0
}

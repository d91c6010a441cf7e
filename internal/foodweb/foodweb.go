package foodweb

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultBodyMassRatio is the predator-prey body-mass ratio Z used when
// none is given. With Z = 1 every species has unit mass.
const DefaultBodyMassRatio = 1.0

type FoodWeb struct {
	adj       [][]bool
	producers []int
	consumers []int
	trophic   []float64
	mass      []float64
	z         float64
}

type Option func(*FoodWeb)

// WithBodyMassRatio sets the predator-prey body-mass ratio Z.
func WithBodyMassRatio(z float64) Option {
	return func(w *FoodWeb) { w.z = z }
}

// FromAdjacency builds a web from a square boolean matrix where a[i][j]
// means i eats j. The matrix is copied.
func FromAdjacency(a [][]bool, opts ...Option) (*FoodWeb, error) {
	s := len(a)
	if s == 0 {
		return nil, ErrEmpty
	}

	w := &FoodWeb{adj: make([][]bool, s), z: DefaultBodyMassRatio}
	for i, row := range a {
		if len(row) != s {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrNotSquare, i, len(row), s)
		}
		w.adj[i] = append([]bool(nil), row...)
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.z <= 0 || math.IsNaN(w.z) {
		return nil, fmt.Errorf("foodweb: body-mass ratio must be positive, got %v", w.z)
	}

	for i := 0; i < s; i++ {
		if len(w.Prey(i)) == 0 {
			w.producers = append(w.producers, i)
		} else {
			w.consumers = append(w.consumers, i)
		}
	}
	if len(w.producers) == 0 {
		return nil, ErrNoProducer
	}

	tl, err := trophicLevels(w)
	if err != nil {
		return nil, err
	}
	w.trophic = tl

	w.mass = make([]float64, s)
	for i, level := range tl {
		w.mass[i] = math.Pow(w.z, level-1)
	}

	return w, nil
}

// FromMatrix builds a web from a 0/1 integer matrix, the form used in
// config files. Any non-zero entry is a link.
func FromMatrix(m [][]int, opts ...Option) (*FoodWeb, error) {
	a := make([][]bool, len(m))
	for i, row := range m {
		a[i] = make([]bool, len(row))
		for j, v := range row {
			a[i][j] = v != 0
		}
	}
	return FromAdjacency(a, opts...)
}

// Chain builds a linear food chain of n species where species i eats i-1.
// Species 0 is the only producer.
func Chain(n int, opts ...Option) (*FoodWeb, error) {
	a := make([][]bool, n)
	for i := range a {
		a[i] = make([]bool, n)
		if i > 0 {
			a[i][i-1] = true
		}
	}
	return FromAdjacency(a, opts...)
}

func (w *FoodWeb) Richness() int { return len(w.adj) }

func (w *FoodWeb) Eats(i, j int) bool { return w.adj[i][j] }

func (w *FoodWeb) Prey(i int) []int {
	var prey []int
	for j, link := range w.adj[i] {
		if link {
			prey = append(prey, j)
		}
	}
	return prey
}

func (w *FoodWeb) Predators(j int) []int {
	var preds []int
	for i := range w.adj {
		if w.adj[i][j] {
			preds = append(preds, i)
		}
	}
	return preds
}

func (w *FoodWeb) IsProducer(i int) bool { return len(w.Prey(i)) == 0 }

func (w *FoodWeb) Producers() []int { return append([]int(nil), w.producers...) }

func (w *FoodWeb) Consumers() []int { return append([]int(nil), w.consumers...) }

func (w *FoodWeb) Links() int {
	n := 0
	for _, row := range w.adj {
		for _, link := range row {
			if link {
				n++
			}
		}
	}
	return n
}

// Connectance is L/S², the fraction of realised links.
func (w *FoodWeb) Connectance() float64 {
	s := float64(w.Richness())
	return float64(w.Links()) / (s * s)
}

func (w *FoodWeb) TrophicLevels() []float64 { return append([]float64(nil), w.trophic...) }

func (w *FoodWeb) BodyMass(i int) float64 { return w.mass[i] }

func (w *FoodWeb) BodyMasses() []float64 { return append([]float64(nil), w.mass...) }

func (w *FoodWeb) BodyMassRatio() float64 { return w.z }

// Matrix returns a 0/1 copy of the adjacency, suitable for serialisation.
func (w *FoodWeb) Matrix() [][]int {
	m := make([][]int, len(w.adj))
	for i, row := range w.adj {
		m[i] = make([]int, len(row))
		for j, link := range row {
			if link {
				m[i][j] = 1
			}
		}
	}
	return m
}

func (w *FoodWeb) String() string {
	return fmt.Sprintf("foodweb(S=%d, L=%d, C=%.3f, producers=%d)",
		w.Richness(), w.Links(), w.Connectance(), len(w.producers))
}

// trophicLevels solves TL_i = 1 + mean(TL_j for prey j of i), ignoring
// cannibal links. Every consumer must reach a producer.
func trophicLevels(w *FoodWeb) ([]float64, error) {
	s := w.Richness()
	if err := checkReachability(w); err != nil {
		return nil, err
	}

	m := mat.NewDense(s, s, nil)
	ones := mat.NewVecDense(s, nil)
	for i := 0; i < s; i++ {
		m.Set(i, i, 1)
		ones.SetVec(i, 1)

		prey := nonCannibalPrey(w, i)
		for _, j := range prey {
			m.Set(i, j, m.At(i, j)-1/float64(len(prey)))
		}
	}

	var tl mat.VecDense
	if err := tl.SolveVec(m, ones); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDisconnected, err)
	}

	out := make([]float64, s)
	for i := range out {
		out[i] = tl.AtVec(i)
	}
	return out, nil
}

func nonCannibalPrey(w *FoodWeb, i int) []int {
	var prey []int
	for _, j := range w.Prey(i) {
		if j != i {
			prey = append(prey, j)
		}
	}
	return prey
}

// checkReachability walks predator links outward from the producers.
func checkReachability(w *FoodWeb) error {
	fed := make([]bool, w.Richness())
	queue := append([]int(nil), w.producers...)
	for _, p := range queue {
		fed[p] = true
	}
	for len(queue) > 0 {
		j := queue[0]
		queue = queue[1:]
		for _, i := range w.Predators(j) {
			if !fed[i] {
				fed[i] = true
				queue = append(queue, i)
			}
		}
	}
	for i, ok := range fed {
		if !ok {
			return fmt.Errorf("%w: species %d", ErrDisconnected, i)
		}
	}
	return nil
}

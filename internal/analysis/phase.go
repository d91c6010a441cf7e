package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/foodweb/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhasePortrait holds the trajectory of two species against each other.
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []Point
}

// NewPhasePortrait takes the last n states of res (all when n <= 0) and
// projects them onto species xIdx and yIdx.
func NewPhasePortrait(res *dynamo.Result, xIdx, yIdx, last int) (*PhasePortrait, error) {
	final := res.Final()
	if xIdx < 0 || yIdx < 0 || xIdx >= len(final) || yIdx >= len(final) {
		return nil, fmt.Errorf("%w: phase indices (%d, %d) for %d species",
			dynamo.ErrDimensionMismatch, xIdx, yIdx, len(final))
	}
	tail := res.Tail(last)
	p := &PhasePortrait{XIndex: xIdx, YIndex: yIdx, Points: make([]Point, 0, len(tail))}
	for _, x := range tail {
		p.Points = append(p.Points, Point{X: x[xIdx], Y: x[yIdx]})
	}
	return p, nil
}

// ToASCII draws the portrait with 10% padding on each axis.
func (p *PhasePortrait) ToASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, pt := range p.Points {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	padX := (maxX - minX) * 0.1
	padY := (maxY - minY) * 0.1

	c := newCanvas(width, height, minX-padX, maxX+padX, minY-padY, maxY+padY)
	for _, pt := range p.Points {
		c.plot(pt.X, pt.Y, '•')
	}
	return c.String()
}

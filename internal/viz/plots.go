package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/sweep"
)

var ErrNoData = errors.New("nothing to plot")

const (
	plotHeight   = 10
	minPlotWidth = 40
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Green, asciigraph.Cyan, asciigraph.Yellow,
	asciigraph.Magenta, asciigraph.Blue, asciigraph.Red,
}

// SweepPlots draws total biomass, producer growth and persistence against
// the swept K values. Failed records leave gaps. The persistence axis always
// spans [0, 1].
func SweepPlots(records []sweep.Record) (string, error) {
	if len(records) == 0 {
		return "", ErrNoData
	}

	n := len(records)
	biomass := make([]float64, n)
	growth := make([]float64, n)
	persistence := make([]float64, n)
	for i, r := range records {
		biomass[i] = r.Biomass
		growth[i] = r.Growth
		persistence[i] = r.Persistence
	}

	span := fmt.Sprintf("K %.3g .. %.3g", records[0].K, records[n-1].K)
	var b strings.Builder
	b.WriteString(plot(biomass, "total biomass vs "+span))
	b.WriteString(plot(growth, "producer growth vs "+span))
	b.WriteString(plot(persistence, "persistence vs "+span,
		asciigraph.LowerBound(0), asciigraph.UpperBound(1)))
	return b.String(), nil
}

func plot(values []float64, caption string, extra ...asciigraph.Option) string {
	if !anyFinite(values) {
		return caption + ": no data\n\n"
	}
	opts := []asciigraph.Option{
		asciigraph.Height(plotHeight),
		asciigraph.Width(max(len(values), minPlotWidth)),
		asciigraph.Precision(3),
		asciigraph.Caption(caption),
	}
	opts = append(opts, extra...)
	return asciigraph.Plot(sanitize(values), opts...) + "\n\n"
}

// TrajectoryPlot draws the biomass of the given species over the last n
// states of res (all when n <= 0). Nil species selects every species.
func TrajectoryPlot(res *dynamo.Result, species []int, last int) (string, error) {
	tail := res.Tail(last)
	if len(tail) == 0 {
		return "", ErrNoData
	}
	dim := len(tail[0])
	if species == nil {
		species = make([]int, dim)
		for i := range species {
			species[i] = i
		}
	}

	series := make([][]float64, 0, len(species))
	legends := make([]string, 0, len(species))
	for _, s := range species {
		if s < 0 || s >= dim {
			return "", fmt.Errorf("%w: species %d of %d", dynamo.ErrDimensionMismatch, s, dim)
		}
		col := make([]float64, len(tail))
		for i, x := range tail {
			col[i] = x[s]
		}
		series = append(series, sanitize(col))
		legends = append(legends, fmt.Sprintf("B%d", s))
	}
	if len(series) == 0 {
		return "", ErrNoData
	}

	colors := make([]asciigraph.AnsiColor, len(series))
	for i := range colors {
		colors[i] = seriesColors[i%len(seriesColors)]
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(plotHeight+5),
		asciigraph.Width(70),
		asciigraph.Precision(3),
		asciigraph.LowerBound(0),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption("biomass over time"),
	), nil
}

// sanitize replaces infinities with NaN so they render as gaps.
func sanitize(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		if math.IsInf(x, 0) {
			x = math.NaN()
		}
		out[i] = x
	}
	return out
}

func anyFinite(v []float64) bool {
	for _, x := range v {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			return true
		}
	}
	return false
}

package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/foodweb/internal/dynamo"
)

// Tunable is a system whose parameters can be changed between runs.
type Tunable interface {
	dynamo.System
	dynamo.Configurable
}

type BifurcationPoint struct {
	Param  float64
	Values []float64
}

type BifurcationConfig struct {
	Param     string
	Values    []float64
	Species   int
	Dt        float64
	Transient float64
	Record    float64
	// Resolution merges extrema closer than this.
	Resolution float64
	Progress   func(i, n int)
}

func DefaultBifurcationConfig() BifurcationConfig {
	return BifurcationConfig{
		Param:      "K",
		Dt:         0.1,
		Transient:  1500,
		Record:     500,
		Resolution: 1e-3,
	}
}

// Restorer is implemented by systems that can save their whole parameter
// set, which GetParams may only summarise.
type Restorer interface {
	Checkpoint() func() error
}

// BifurcationDiagram runs dyn from x0 once per parameter value and records
// the distinct local extrema of one species after the transient. A run that
// settles to a fixed point contributes its final value. The parameters are
// restored before returning: in full when dyn is a Restorer, otherwise by
// setting the swept parameter back to its GetParams value.
func BifurcationDiagram(ctx context.Context, dyn Tunable, integ dynamo.Integrator, x0 dynamo.State, cfg BifurcationConfig) (results []BifurcationPoint, err error) {
	if cfg.Species < 0 || cfg.Species >= dyn.StateDim() {
		return nil, fmt.Errorf("%w: species %d out of range", dynamo.ErrDimensionMismatch, cfg.Species)
	}
	if cfg.Record <= 0 || cfg.Dt <= 0 {
		return nil, fmt.Errorf("%w: record window and dt must be positive", dynamo.ErrParameterBounds)
	}

	orig, ok := dyn.GetParams()[cfg.Param]
	if !ok {
		return nil, fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, cfg.Param)
	}
	restore := func() error { return dyn.SetParam(cfg.Param, orig) }
	if r, ok := dyn.(Restorer); ok {
		restore = r.Checkpoint()
	}
	defer func() {
		if rerr := restore(); rerr != nil && err == nil {
			err = fmt.Errorf("restore %s: %w", cfg.Param, rerr)
		}
	}()

	simCfg := dynamo.DefaultConfig()
	simCfg.Dt = cfg.Dt
	simCfg.Duration = cfg.Transient + cfg.Record
	keep := int(math.Round(cfg.Record / cfg.Dt))

	results = make([]BifurcationPoint, 0, len(cfg.Values))
	for i, v := range cfg.Values {
		if err = dyn.SetParam(cfg.Param, v); err != nil {
			return results, fmt.Errorf("%s=%g: %w", cfg.Param, v, err)
		}
		res, err := dynamo.New(dyn, integ).Run(ctx, x0.Clone(), simCfg)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", cfg.Param, v, err)
		}

		series := make([]float64, 0, keep+1)
		for _, x := range res.Tail(keep + 1) {
			series = append(series, x[cfg.Species])
		}
		results = append(results, BifurcationPoint{
			Param:  v,
			Values: distinct(extrema(series), cfg.Resolution),
		})
		if cfg.Progress != nil {
			cfg.Progress(i, len(cfg.Values))
		}
	}
	return results, nil
}

func extrema(series []float64) []float64 {
	var out []float64
	for i := 1; i < len(series)-1; i++ {
		prev, cur, next := series[i-1], series[i], series[i+1]
		if (cur > prev && cur >= next) || (cur < prev && cur <= next) {
			out = append(out, cur)
		}
	}
	if len(out) == 0 && len(series) > 0 {
		out = append(out, series[len(series)-1])
	}
	return out
}

func distinct(values []float64, resolution float64) []float64 {
	sort.Float64s(values)
	out := values[:0]
	for _, v := range values {
		if len(out) == 0 || v-out[len(out)-1] > resolution {
			out = append(out, v)
		}
	}
	return out
}

// BifurcationToASCII draws the diagram with the parameter on the x axis.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range data {
		for _, v := range p.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return ""
	}

	c := newCanvas(width, height, 0, float64(len(data)-1), lo, hi)
	for i, p := range data {
		for _, v := range p.Values {
			c.plot(float64(i), v, '•')
		}
	}
	return c.String()
}

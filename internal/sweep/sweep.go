// Package sweep runs a food web across a range of carrying capacities and
// collects one summary record per value.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/foodweb/internal/bioenergetic"
	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/metrics"
)

var ErrInvalidRange = errors.New("invalid sweep range")

// Record summarises the tail of one simulation in the sweep.
type Record struct {
	K           float64
	Biomass     float64
	Persistence float64
	Growth      float64
	Variability float64
	Err         error
}

// Runner is the part of an experiment the driver needs.
type Runner interface {
	ParamsFor(k float64) (bioenergetic.Params, error)
	RunWith(ctx context.Context, p bioenergetic.Params) (*dynamo.Result, error)
}

type Driver struct {
	Runner Runner
	// Window is the number of trailing states summarised; 0 means all.
	Window int
	// ContinueOnError stores per-K failures in Record.Err instead of
	// aborting the sweep.
	ContinueOnError bool
	Progress        func(i, n int, rec Record)
	Logger          *slog.Logger
}

func NewDriver(r Runner, window int) *Driver {
	return &Driver{Runner: r, Window: window}
}

// Run simulates every value of ks in order. Records come back in the order
// of ks. On a fail-fast error the records completed so far are returned
// along with the error.
func (d *Driver) Run(ctx context.Context, ks []float64) ([]Record, error) {
	if err := Validate(ks); err != nil {
		return nil, err
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	out := make([]Record, 0, len(ks))
	for i, k := range ks {
		select {
		case <-ctx.Done():
			return out, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		rec, err := d.runOne(ctx, k)
		if err != nil {
			err = fmt.Errorf("sweep index %d (K=%g): %w", i, k, err)
			if !d.ContinueOnError || errors.Is(err, dynamo.ErrContextCanceled) {
				return out, err
			}
			logger.Warn("sweep point failed", "index", i, "K", k, "err", err)
			rec = Record{K: k, Biomass: math.NaN(), Persistence: math.NaN(),
				Growth: math.NaN(), Variability: math.NaN(), Err: err}
		} else {
			logger.Debug("sweep point", "index", i, "K", k,
				"biomass", rec.Biomass, "persistence", rec.Persistence)
		}

		out = append(out, rec)
		if d.Progress != nil {
			d.Progress(i, len(ks), rec)
		}
	}
	return out, nil
}

func (d *Driver) runOne(ctx context.Context, k float64) (Record, error) {
	p, err := d.Runner.ParamsFor(k)
	if err != nil {
		return Record{}, err
	}
	res, err := d.Runner.RunWith(ctx, p)
	if err != nil {
		return Record{}, err
	}
	s := metrics.Summarize(res, p, d.Window)
	return Record{
		K:           k,
		Biomass:     s.Biomass,
		Persistence: s.Persistence,
		Growth:      s.Growth,
		Variability: s.Variability,
	}, nil
}

// Validate reports whether ks is a usable sweep: non-empty, finite and
// strictly positive.
func Validate(ks []float64) error {
	if len(ks) == 0 {
		return fmt.Errorf("%w: no values", ErrInvalidRange)
	}
	for i, k := range ks {
		if math.IsNaN(k) || math.IsInf(k, 0) || k <= 0 {
			return fmt.Errorf("%w: value %d is %v", ErrInvalidRange, i, k)
		}
	}
	return nil
}

// Failed returns the records that carry an error.
func Failed(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Package cluster standardizes county feature columns, partitions them with
// k-means and answers per-county cluster lookups.
package cluster

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/water-cli/internal/config"
	"github.com/sells-group/water-cli/internal/dataset"
	"github.com/sells-group/water-cli/internal/model"
)

// Options configures an Engine.
type Options struct {
	K              int
	Seed           uint64
	MaxIterations  int
	Tolerance      float64
	Inits          int
	Palette        []string
	DropIncomplete bool // exclude rows missing a selected feature instead of failing
}

// OptionsFromConfig maps the cluster config section onto engine options.
func OptionsFromConfig(cfg config.ClusterConfig) Options {
	return Options{
		K:              cfg.K,
		Seed:           cfg.Seed,
		MaxIterations:  cfg.MaxIterations,
		Tolerance:      cfg.Tolerance,
		Inits:          cfg.Inits,
		Palette:        cfg.Palette,
		DropIncomplete: cfg.DropIncomplete,
	}
}

// DefaultOptions returns k=4, seed 42 and the default palette.
func DefaultOptions() Options {
	return Options{
		K:             4,
		Seed:          42,
		MaxIterations: 300,
		Tolerance:     1e-4,
		Inits:         1,
		Palette:       config.DefaultPalette,
	}
}

// Observer receives one call per finished run.
type Observer interface {
	ObserveRun(selection string, rows int, seconds float64, err error)
}

// Engine runs cluster fits over a county table.
type Engine struct {
	opts     Options
	clock    clockwork.Clock
	observer Observer
}

// NewEngine creates an engine. A nil clock uses the real clock.
func NewEngine(opts Options, clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{opts: opts, clock: clock}
}

// WithObserver attaches an observer and returns the engine.
func (e *Engine) WithObserver(o Observer) *Engine {
	e.observer = o
	return e
}

// Options returns the engine options.
func (e *Engine) Options() Options { return e.opts }

// Run fits one selection over the table and returns the augmented table and
// centroids. The table is only read.
func (e *Engine) Run(ctx context.Context, table *dataset.Table, sel Selection) (*Result, error) {
	start := e.clock.Now()
	runID := uuid.New().String()
	log := zap.L().With(
		zap.String("component", "cluster.engine"),
		zap.String("run_id", runID),
		zap.String("selection", sel.Name),
	)

	res, rows, err := e.run(ctx, table, sel)
	elapsed := e.clock.Since(start)
	if e.observer != nil {
		e.observer.ObserveRun(sel.Name, rows, elapsed.Seconds(), err)
	}
	if err != nil {
		log.Debug("run failed", zap.Error(err))
		return nil, err
	}

	res.RunID = runID
	res.Seed = e.opts.Seed
	res.CreatedAt = start.UTC()
	res.Duration = elapsed

	log.Info("run complete",
		zap.Int("rows", rows),
		zap.Int("excluded", len(res.Excluded)),
		zap.Int("iterations", res.Iterations),
		zap.Float64("inertia", res.Inertia),
		zap.Duration("duration", elapsed),
	)
	return res, nil
}

func (e *Engine) run(ctx context.Context, table *dataset.Table, sel Selection) (*Result, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if table == nil {
		return nil, 0, eris.New("cluster: nil table")
	}
	if err := sel.Validate(); err != nil {
		return nil, 0, err
	}
	for _, c := range sel.Columns {
		if !table.HasColumn(c) {
			return nil, 0, invalid(c, "unknown column")
		}
	}

	palette, err := NewPalette(e.opts.Palette, e.opts.K)
	if err != nil {
		return nil, 0, err
	}

	records, excluded := e.usable(table.Records(), sel.Columns)
	if len(records) == 0 {
		return nil, 0, invalid("", "no complete rows for selection %s", sel.Name)
	}

	x, err := Matrix(records, sel.Columns)
	if err != nil {
		return nil, len(records), err
	}
	scaler, z, err := Standardize(x, sel.Columns)
	if err != nil {
		return nil, len(records), err
	}
	part, err := KMeans(z, KMeansOptions{
		K:             e.opts.K,
		MaxIterations: e.opts.MaxIterations,
		Tolerance:     e.opts.Tolerance,
		Inits:         e.opts.Inits,
		Seed:          e.opts.Seed,
	})
	if err != nil {
		return nil, len(records), err
	}

	res := newResult(sel, records, part, scaler, palette)
	res.Excluded = excluded
	return res, len(records), nil
}

// usable returns the records to fit. Without DropIncomplete every record is
// kept and gaps surface as validation errors from Matrix.
func (e *Engine) usable(records []model.CountyRecord, columns []string) ([]model.CountyRecord, []string) {
	if !e.opts.DropIncomplete {
		return records, nil
	}
	var keep []model.CountyRecord
	var dropped []string
	for _, r := range records {
		ok := true
		for _, c := range columns {
			if v, present := r.Value(c); !present || math.IsNaN(v) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, r)
		} else {
			dropped = append(dropped, r.FIPS)
		}
	}
	return keep, dropped
}

// RunAll fits each selection concurrently over the shared table. The first
// failure cancels the rest.
func (e *Engine) RunAll(ctx context.Context, table *dataset.Table, sels []Selection) (*Batch, error) {
	b := &Batch{results: make(map[string]*Result, len(sels))}
	for _, s := range sels {
		if _, dup := b.results[s.Name]; dup {
			return nil, invalid("selection", "duplicate name %q", s.Name)
		}
		b.results[s.Name] = nil
		b.order = append(b.order, s.Name)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range sels {
		g.Go(func() error {
			res, err := e.Run(gctx, table, s)
			if err != nil {
				return eris.Wrapf(err, "cluster: run %s", s.Name)
			}
			mu.Lock()
			b.results[s.Name] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return b, nil
}

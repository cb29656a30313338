package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/water-cli/internal/cluster"
	"github.com/sells-group/water-cli/internal/dashboard"
	"github.com/sells-group/water-cli/internal/dataset"
	"github.com/sells-group/water-cli/internal/geo"
	"github.com/sells-group/water-cli/internal/monitoring"
	"github.com/sells-group/water-cli/internal/timeseries"
)

// appEnv holds the loaded data and services shared by the commands.
type appEnv struct {
	Table      *dataset.Table
	Frame      *dataset.Frame      // may be nil
	Dictionary *dataset.Dictionary // may be nil
	Directory  *geo.Directory
	Series     *timeseries.Store // nil unless requested
	Catalog    *cluster.Catalog
	Engine     *cluster.Engine
	Metrics    *monitoring.Metrics
	Registry   *prometheus.Registry
}

// envOptions selects the optional data a command needs.
type envOptions struct {
	Series bool // load monthly and annual time series
	Frame  bool // load the display frame and data dictionary
}

// initEnv validates cfg for mode and loads the county table with everything
// the command asked for. Companion files load concurrently.
func initEnv(ctx context.Context, mode string, opts envOptions) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	table, err := dataset.Load(ctx, cfg.Data)
	if err != nil {
		return nil, eris.Wrap(err, "load county table")
	}

	catalog, err := cluster.LoadCatalog(cfg.Cluster.SelectionsFile)
	if err != nil {
		return nil, err
	}

	metrics, reg := monitoring.NewWithRegistry()
	env := &appEnv{
		Table:    table,
		Catalog:  catalog,
		Engine:   cluster.NewEngine(cluster.OptionsFromConfig(cfg.Cluster), clockwork.NewRealClock()).WithObserver(metrics),
		Metrics:  metrics,
		Registry: reg,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dir, err := loadDirectory(gctx, table)
		if err != nil {
			return err
		}
		env.Directory = dir
		return nil
	})
	if opts.Series {
		g.Go(func() error {
			s, err := timeseries.Load(gctx, cfg.Data.MonthlyPath, cfg.Data.AnnualPath)
			if err != nil {
				return eris.Wrap(err, "load time series")
			}
			env.Series = s
			return nil
		})
	}
	if opts.Frame {
		g.Go(func() error {
			if !exists(cfg.Data.FramePath) {
				return nil
			}
			f, err := dataset.LoadFrame(gctx, cfg.Data.FramePath)
			if err != nil {
				return err
			}
			env.Frame = f
			return nil
		})
		g.Go(func() error {
			if !exists(cfg.Data.DictionaryPath) {
				return nil
			}
			d, err := dataset.LoadDictionary(gctx, cfg.Data.DictionaryPath)
			if err != nil {
				return err
			}
			env.Dictionary = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("data loaded",
		zap.String("source", cfg.Data.Source),
		zap.Int("counties", table.Len()),
		zap.Int("directory", env.Directory.Len()),
		zap.Strings("selections", catalog.Names()),
	)
	return env, nil
}

// loadDirectory prefers a county shapefile, then the counties CSV, and falls
// back to the table's own fips, state and county columns.
func loadDirectory(ctx context.Context, table *dataset.Table) (*geo.Directory, error) {
	switch {
	case cfg.Data.CountiesShapefile != "":
		dir, err := geo.LoadShapefile(cfg.Data.CountiesShapefile)
		if err != nil {
			return nil, eris.Wrap(err, "load county shapefile")
		}
		return dir, nil
	case exists(cfg.Data.CountiesPath):
		dir, err := geo.LoadCountiesCSV(ctx, cfg.Data.CountiesPath)
		if err != nil {
			return nil, eris.Wrap(err, "load counties csv")
		}
		return dir, nil
	default:
		if cfg.Data.CountiesPath != "" {
			zap.L().Warn("counties file not found, using table",
				zap.String("path", cfg.Data.CountiesPath),
			)
		}
		return geo.FromTable(table)
	}
}

// renderer builds a dashboard renderer over the environment.
func (e *appEnv) renderer() (*dashboard.Renderer, error) {
	return dashboard.NewRenderer(dashboard.Deps{
		Table:      e.Table,
		Frame:      e.Frame,
		Dictionary: e.Dictionary,
		Directory:  e.Directory,
		Series:     e.Series,
		Catalog:    e.Catalog,
		Engine:     e.Engine,
		Content:    cfg.Dashboard,
	})
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

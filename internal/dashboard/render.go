package dashboard

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/water-cli/internal/cluster"
	"github.com/sells-group/water-cli/internal/config"
	"github.com/sells-group/water-cli/internal/dataset"
	"github.com/sells-group/water-cli/internal/geo"
	"github.com/sells-group/water-cli/internal/model"
	"github.com/sells-group/water-cli/internal/timeseries"
)

// Deps are the loaded data and services a Renderer reads from.
type Deps struct {
	Table      *dataset.Table
	Frame      *dataset.Frame
	Dictionary *dataset.Dictionary
	Directory  *geo.Directory
	Series     *timeseries.Store
	Catalog    *cluster.Catalog
	Engine     *cluster.Engine
	Content    config.DashboardConfig
}

// Renderer turns requests into page views.
type Renderer struct {
	deps Deps
}

// NewRenderer checks deps and fills defaults: the directory is built from the
// table, the frame mirrors the table and the catalog holds the built-ins.
func NewRenderer(deps Deps) (*Renderer, error) {
	if deps.Table == nil {
		return nil, eris.New("dashboard: table is required")
	}
	if deps.Engine == nil {
		return nil, eris.New("dashboard: engine is required")
	}
	if deps.Catalog == nil {
		deps.Catalog = cluster.DefaultCatalog()
	}
	if deps.Directory == nil {
		dir, err := geo.FromTable(deps.Table)
		if err != nil {
			return nil, eris.Wrap(err, "dashboard: build county directory")
		}
		deps.Directory = dir
	}
	if deps.Frame == nil {
		deps.Frame = dataset.FrameFromTable(deps.Table)
	}
	if deps.Content.MinYear == 0 {
		deps.Content.MinYear = timeseries.DefaultMinYear
	}
	return &Renderer{deps: deps}, nil
}

// Directory returns the county directory in use.
func (r *Renderer) Directory() *geo.Directory { return r.deps.Directory }

// Catalog returns the selection catalog in use.
func (r *Renderer) Catalog() *cluster.Catalog { return r.deps.Catalog }

// Cluster runs the named selection against the table. Unknown names are NotFound.
func (r *Renderer) Cluster(ctx context.Context, selection string) (*cluster.Result, error) {
	sel, err := r.deps.Catalog.Get(selection)
	if err != nil {
		return nil, err
	}
	return r.deps.Engine.Run(ctx, r.deps.Table, sel)
}

// Render builds the view for req.
func (r *Renderer) Render(ctx context.Context, req Request) (*View, error) {
	v := &View{Page: req.Page, Title: siteTitle, Subtitle: siteSubtitle}

	var err error
	switch req.Page {
	case PageAbout, "":
		v.Page = PageAbout
		v.About = &AboutView{Heading: "About this project", Paragraphs: aboutParagraphs, Sources: aboutSources}
	case PageEDA:
		v.EDA = &EDAView{Heading: "Exploratory Data Analysis", Paragraphs: edaParagraphs, Images: r.deps.Content.Images}
	case PageTimeSeries:
		v.TimeSeries, err = r.timeSeries(req)
	case PageMaps:
		v.Maps, err = r.maps(ctx, req)
	case PageClusters:
		v.Clusters, err = r.clusters(ctx, req)
	case PageDataFrame:
		v.DataFrame = &DataFrameView{
			Heading:           "Water Usage, Temperature, Drought, and Income Data",
			Table:             r.deps.Frame,
			DictionaryHeading: "Data Dictionary",
			Dictionary:        r.deps.Dictionary,
		}
	default:
		return nil, model.Invalid("page", "unknown page %q", req.Page)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Renderer) timeSeries(req Request) (*TimeSeriesView, error) {
	if r.deps.Series == nil {
		return nil, eris.New("dashboard: time series data is not loaded")
	}
	county, err := r.county(req)
	if err != nil {
		return nil, err
	}
	minYear := req.MinYear
	if minYear == 0 {
		minYear = r.deps.Content.MinYear
	}

	v := &TimeSeriesView{County: county, Chart: req.Chart}
	switch req.Chart {
	case ChartTemperature, "":
		v.Chart = ChartTemperature
		v.Heading, v.Note = temperatureHeading, temperatureNote
		v.Title = fmt.Sprintf("Temperature Trend for %s, %s", countyLabel(county.Name), county.State)
		v.Temperature, err = r.deps.Series.TemperatureTrend(county.FIPS, minYear)
	case ChartDrought:
		v.Heading, v.Note = droughtHeading, droughtNote
		v.Title = fmt.Sprintf("Average Minimum Drought Condition for %s, %s", countyLabel(county.Name), county.State)
		v.Drought, err = r.deps.Series.DroughtTrend(county.FIPS, minYear)
	default:
		return nil, model.Invalid("chart", "unknown time series chart %q", req.Chart)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Renderer) maps(ctx context.Context, req Request) (*MapsView, error) {
	sel, err := r.selection(req.Chart)
	if err != nil {
		return nil, err
	}
	res, err := r.deps.Engine.Run(ctx, r.deps.Table, sel)
	if err != nil {
		return nil, err
	}
	return &MapsView{
		Heading:  "What did we find?",
		EmbedURL: r.deps.Content.EmbedURL,
		Layer:    geo.ClusterLayer(res, r.deps.Directory),
	}, nil
}

func (r *Renderer) clusters(ctx context.Context, req Request) (*ClustersView, error) {
	sel, err := r.selection(req.Chart)
	if err != nil {
		return nil, err
	}
	county, err := r.county(req)
	if err != nil {
		return nil, err
	}
	rec, ok := r.deps.Table.Get(county.FIPS)
	if !ok {
		return nil, model.NotFound("county", county.FIPS)
	}

	res, err := r.deps.Engine.Run(ctx, r.deps.Table, sel)
	if err != nil {
		return nil, err
	}

	v := &ClustersView{
		Heading:    fmt.Sprintf("A brief overview of the data relevant to %s, %s:", countyLabel(county.Name), county.State),
		Intro:      clustersIntro,
		County:     county,
		Overview:   overview(rec),
		Selection:  sel,
		RunID:      res.RunID,
		Centroids:  res.Centroids,
		Points:     res.Assignments,
		Selections: r.deps.Catalog.Names(),
	}
	if a, err := res.Lookup(county.FIPS); err == nil {
		v.Assignment = &a
	} else if !model.IsNotFound(err) {
		return nil, err
	}
	return v, nil
}

func (r *Renderer) selection(name string) (cluster.Selection, error) {
	if name == "" {
		name = cluster.PublicSupply
	}
	sel, err := r.deps.Catalog.Get(name)
	if err != nil {
		return cluster.Selection{}, model.Invalid("chart", "unknown cluster chart %q", name)
	}
	return sel, nil
}

// county resolves the request's county by FIPS, or by state and name.
func (r *Renderer) county(req Request) (geo.County, error) {
	if req.FIPS != "" {
		return r.deps.Directory.ByFIPS(req.FIPS)
	}
	if req.State == "" || req.County == "" {
		return geo.County{}, model.Invalid("county", "state and county, or fips, are required")
	}
	return r.deps.Directory.Resolve(req.State, req.County)
}

func overview(rec model.CountyRecord) []OverviewItem {
	items := make([]OverviewItem, 0, len(overviewFields))
	for _, f := range overviewFields {
		it := OverviewItem{Column: f.column, Label: f.label}
		v, ok := rec.Value(f.column)
		switch {
		case !ok || math.IsNaN(v):
			it.Text = f.label + ": not available"
		case f.unit == "$":
			it.Value, it.Available = v, true
			it.Text = fmt.Sprintf("%s: $%d", f.label, int64(v))
		case f.unit != "":
			it.Value, it.Available = v, true
			it.Text = fmt.Sprintf("%s: %d %s", f.label, int64(v), f.unit)
		default:
			it.Value, it.Available = v, true
			it.Text = fmt.Sprintf("%s: %d", f.label, int64(v))
		}
		items = append(items, it)
	}
	return items
}

// countyLabel appends "County" to bare names such as "Adams".
func countyLabel(name string) string {
	lower := strings.ToLower(name)
	for _, suffix := range []string{"county", "parish", "borough", "city", "census area", "municipality"} {
		if strings.HasSuffix(lower, suffix) {
			return name
		}
	}
	return name + " County"
}

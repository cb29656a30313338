// Package dashboard renders the dashboard pages as data views. Every input
// arrives in a Request; the renderer keeps no per-user state.
package dashboard

import (
	"github.com/sells-group/water-cli/internal/cluster"
	"github.com/sells-group/water-cli/internal/config"
	"github.com/sells-group/water-cli/internal/dataset"
	"github.com/sells-group/water-cli/internal/geo"
	"github.com/sells-group/water-cli/internal/timeseries"
)

// Page identifies a dashboard page.
type Page string

// Dashboard pages in sidebar order.
const (
	PageAbout      Page = "about"
	PageEDA        Page = "eda"
	PageTimeSeries Page = "timeseries"
	PageMaps       Page = "maps"
	PageClusters   Page = "clusters"
	PageDataFrame  Page = "dataframe"
)

// Pages returns all pages in sidebar order.
func Pages() []Page {
	return []Page{PageAbout, PageEDA, PageTimeSeries, PageMaps, PageClusters, PageDataFrame}
}

// Time series chart types.
const (
	ChartTemperature = "temperature"
	ChartDrought     = "drought"
)

// Request carries the page, the selected county and the chart choice.
// A county is named by FIPS or by State and County. For the clusters and
// maps pages Chart is a selection name; for the time series page it is
// ChartTemperature or ChartDrought.
type Request struct {
	Page    Page   `json:"page"`
	State   string `json:"state,omitempty"`
	County  string `json:"county,omitempty"`
	FIPS    string `json:"fips,omitempty"`
	Chart   string `json:"chart,omitempty"`
	MinYear int    `json:"min_year,omitempty"`
}

// View is a rendered page. Exactly one page body is set.
type View struct {
	Page       Page            `json:"page"`
	Title      string          `json:"title"`
	Subtitle   string          `json:"subtitle"`
	About      *AboutView      `json:"about,omitempty"`
	EDA        *EDAView        `json:"eda,omitempty"`
	TimeSeries *TimeSeriesView `json:"timeseries,omitempty"`
	Maps       *MapsView       `json:"maps,omitempty"`
	Clusters   *ClustersView   `json:"clusters,omitempty"`
	DataFrame  *DataFrameView  `json:"dataframe,omitempty"`
}

// Link is a labelled URL.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// AboutView is the project description.
type AboutView struct {
	Heading    string   `json:"heading"`
	Paragraphs []string `json:"paragraphs"`
	Sources    []Link   `json:"sources"`
}

// EDAView is the exploratory analysis page: narrative and images.
type EDAView struct {
	Heading    string              `json:"heading"`
	Paragraphs []string            `json:"paragraphs"`
	Images     []config.ImageAsset `json:"images"`
}

// TimeSeriesView is one county's temperature or drought chart.
type TimeSeriesView struct {
	County      geo.County                   `json:"county"`
	Chart       string                       `json:"chart"`
	Heading     string                       `json:"heading"`
	Note        string                       `json:"note"`
	Title       string                       `json:"title"`
	Temperature *timeseries.TemperatureTrend `json:"temperature,omitempty"`
	Drought     *timeseries.DroughtTrend     `json:"drought,omitempty"`
}

// MapsView is the embedded map plus the cluster layer for a selection.
type MapsView struct {
	Heading  string     `json:"heading"`
	EmbedURL string     `json:"embed_url"`
	Layer    *geo.Layer `json:"layer,omitempty"`
}

// OverviewItem is one line of the county overview.
type OverviewItem struct {
	Column    string  `json:"column"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
	Text      string  `json:"text"`
}

// ClustersView is a fresh cluster run for a selection with the chosen
// county's overview and assignment.
type ClustersView struct {
	Heading    string               `json:"heading"`
	Intro      string               `json:"intro"`
	County     geo.County           `json:"county"`
	Overview   []OverviewItem       `json:"overview"`
	Selection  cluster.Selection    `json:"selection"`
	RunID      string               `json:"run_id"`
	Centroids  []cluster.Centroid   `json:"centroids"`
	Points     []cluster.Assignment `json:"points"`
	Assignment *cluster.Assignment  `json:"assignment,omitempty"` // nil when the county was excluded from the fit
	Selections []string             `json:"selections"`
}

// DataFrameView is the full data table and the data dictionary.
type DataFrameView struct {
	Heading           string              `json:"heading"`
	Table             *dataset.Frame      `json:"table"`
	DictionaryHeading string              `json:"dictionary_heading"`
	Dictionary        *dataset.Dictionary `json:"dictionary,omitempty"`
}

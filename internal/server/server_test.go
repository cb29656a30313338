package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/water-cli/internal/cluster"
	"github.com/sells-group/water-cli/internal/config"
	"github.com/sells-group/water-cli/internal/dashboard"
	"github.com/sells-group/water-cli/internal/dataset"
	"github.com/sells-group/water-cli/internal/geo"
	"github.com/sells-group/water-cli/internal/monitoring"
	"github.com/sells-group/water-cli/internal/timeseries"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testRenderer(t *testing.T) *dashboard.Renderer {
	t.Helper()
	tbl, err := dataset.FromRows(
		[]string{"fips", "state", "countyname", "population", "ps_wtotl", "do_psdel", "median_household_income"},
		[][]string{
			{"06037", "CA", "Los Angeles", "10014009", "500", "300", "71025"},
			{"01001", "AL", "Autauga", "58805", "1", "1", "57982"},
			{"48201", "TX", "Harris", "4731145", "5000", "10", "65788"},
			{"36061", "NY", "New York", "1694251", "10", "4000", "93651"},
		},
	)
	require.NoError(t, err)

	dir, err := geo.NewDirectory([]geo.County{
		{FIPS: "06037", State: "CA", Name: "Los Angeles", Lon: -118.2, Lat: 34.3, HasPoint: true},
		{FIPS: "01001", State: "AL", Name: "Autauga", Lon: -86.6, Lat: 32.5, HasPoint: true},
		{FIPS: "48201", State: "TX", Name: "Harris", Lon: -95.4, Lat: 29.8, HasPoint: true},
		{FIPS: "36061", State: "NY", Name: "New York", Lon: -73.9, Lat: 40.8, HasPoint: true},
	})
	require.NoError(t, err)

	jan2015 := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := timeseries.NewStore(
		[]timeseries.Month{{Month: jan2015, FIPS: "06037", MinTemp: 45, MaxTemp: 68, MeanTemp: 56, Moderate: 20}},
		[]timeseries.Year{{Year: 2015, FIPS: "06037", MeanTemp: 64}},
	)

	r, err := dashboard.NewRenderer(dashboard.Deps{
		Table:     tbl,
		Directory: dir,
		Series:    series,
		Engine:    cluster.NewEngine(cluster.DefaultOptions(), nil),
	})
	require.NoError(t, err)
	return r
}

func testServer(t *testing.T, cfg config.ServerConfig) (*Server, *monitoring.Metrics) {
	t.Helper()
	if cfg.CORSOrigins == nil {
		cfg.CORSOrigins = []string{"*"}
	}
	metrics, reg := monitoring.NewWithRegistry()
	s, err := New(cfg, testRenderer(t), metrics, reg)
	require.NoError(t, err)
	return s, metrics
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestNew_RequiresRenderer(t *testing.T) {
	_, err := New(config.ServerConfig{}, nil, nil, nil)
	assert.ErrorContains(t, err, "renderer is required")
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})
	rr := get(t, s.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, "ok", decode(t, rr)["status"])
}

func TestStates(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})
	rr := get(t, s.Handler(), "/api/states")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		States []string `json:"states"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body.States, 51)
}

func TestStateCounties(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})
	rr := get(t, s.Handler(), "/api/states/CA/counties")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Counties []geo.County `json:"counties"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Counties, 1)
	assert.Equal(t, "06037", body.Counties[0].FIPS)

	rr = get(t, s.Handler(), "/api/states/ZZ/counties")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, decode(t, rr)["error"], "not found")
}

func TestSelections(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})
	rr := get(t, s.Handler(), "/api/selections")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Selections []cluster.Selection `json:"selections"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Selections, 4)
	assert.Equal(t, cluster.PublicSupply, body.Selections[0].Name)
}

func TestCluster(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})
	rr := get(t, s.Handler(), "/api/clusters/public-supply")
	require.Equal(t, http.StatusOK, rr.Code)

	var body clusterResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotEmpty(t, body.RunID)
	assert.Equal(t, 4, body.K)
	assert.Len(t, body.Assignments, 4)
	assert.Len(t, body.Centroids, 4)
}

func TestCluster_Errors(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})

	rr := get(t, s.Handler(), "/api/clusters/unknown")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// irrigation columns are absent from the table
	rr = get(t, s.Handler(), "/api/clusters/irrigation")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, decode(t, rr)["error"], "invalid input")
}

func TestClusterCounty(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})
	rr := get(t, s.Handler(), "/api/clusters/public-supply/counties/6037")
	require.Equal(t, http.StatusOK, rr.Code)

	var a cluster.Assignment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &a))
	assert.Equal(t, "06037", a.FIPS)
	assert.Contains(t, config.DefaultPalette, a.Color)
	assert.Equal(t, 500.0, a.Values["ps_wtotl"])

	rr = get(t, s.Handler(), "/api/clusters/public-supply/counties/99999")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestClusterGeoJSON(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})
	rr := get(t, s.Handler(), "/api/clusters/population-income/geojson")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/geo+json", rr.Header().Get("Content-Type"))

	body := decode(t, rr)
	assert.Equal(t, "FeatureCollection", body["type"])
	assert.Len(t, body["features"], 4)
}

func TestTimeSeries(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})

	rr := get(t, s.Handler(), "/api/timeseries/06037?chart=drought&min_year=2012")
	require.Equal(t, http.StatusOK, rr.Code)
	var v dashboard.TimeSeriesView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.Equal(t, dashboard.ChartDrought, v.Chart)
	require.NotNil(t, v.Drought)
	require.Len(t, v.Drought.Monthly, 1)
	assert.Equal(t, 20.0, v.Drought.Monthly[0].ModeratePlus)

	rr = get(t, s.Handler(), "/api/timeseries/06037")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.Equal(t, dashboard.ChartTemperature, v.Chart)
}

func TestTimeSeries_Errors(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})

	tests := []struct {
		path string
		code int
	}{
		{"/api/timeseries/99999", http.StatusNotFound},
		{"/api/timeseries/01001", http.StatusNotFound},
		{"/api/timeseries/06037?chart=rainfall", http.StatusUnprocessableEntity},
		{"/api/timeseries/06037?min_year=soon", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := get(t, s.Handler(), tt.path)
			assert.Equal(t, tt.code, rr.Code)
			assert.NotEmpty(t, decode(t, rr)["error"])
		})
	}
}

func TestPage_Clusters(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})
	rr := get(t, s.Handler(), "/api/pages/clusters?state=CA&county=Los%20Angeles%20County&chart=public-supply")
	require.Equal(t, http.StatusOK, rr.Code)

	var v dashboard.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	require.NotNil(t, v.Clusters)
	require.NotNil(t, v.Clusters.Assignment)
	assert.Equal(t, "06037", v.Clusters.Assignment.FIPS)
	assert.Nil(t, v.About)
}

func TestPage_Errors(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})

	rr := get(t, s.Handler(), "/api/pages/settings")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = get(t, s.Handler(), "/api/pages/clusters?state=CA")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = get(t, s.Handler(), "/api/pages/clusters?state=CA&county=Orange")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUnknownRoute(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})
	rr := get(t, s.Handler(), "/api/nothing")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "route not found", decode(t, rr)["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/states", nil)
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRateLimit(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{RateLimit: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/api/states").Code)
	rr := get(t, s.Handler(), "/api/states")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))

	// health checks bypass the limiter
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/health").Code)
}

func TestCORS(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})
	req := httptest.NewRequest(http.MethodGet, "/api/states", nil)
	req.Header.Set("Origin", "https://example.org")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	s, metrics := testServer(t, config.ServerConfig{})

	get(t, s.Handler(), "/api/states")
	get(t, s.Handler(), "/api/states/ZZ/counties")
	get(t, s.Handler(), "/api/clusters/public-supply")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/api/states", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/api/states/{state}/counties", "404")))

	rr := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "water_http_requests_total")
}

func TestRun_GracefulShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	s, _ := testServer(t, config.ServerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, port) }()

	var ready bool
	for i := 0; i < 50; i++ {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
		if err == nil {
			_ = resp.Body.Close()
			ready = resp.StatusCode == http.StatusOK
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, ready, "server did not become ready in time")

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

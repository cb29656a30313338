package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/water-cli/internal/cluster"
	"github.com/sells-group/water-cli/internal/dashboard"
	"github.com/sells-group/water-cli/internal/geo"
	"github.com/sells-group/water-cli/internal/model"
)

type errorBody struct {
	Error string `json:"error"`
}

type clusterResponse struct {
	RunID       string               `json:"run_id"`
	Selection   cluster.Selection    `json:"selection"`
	K           int                  `json:"k"`
	Seed        uint64               `json:"seed"`
	Inertia     float64              `json:"inertia"`
	Iterations  int                  `json:"iterations"`
	Centroids   []cluster.Centroid   `json:"centroids"`
	Assignments []cluster.Assignment `json:"assignments"`
	Excluded    []string             `json:"excluded,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

// writeError maps NotFound to 404 and Validation to 422. Anything else is a
// 500 whose detail is only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case model.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case model.IsValidation(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	default:
		zap.L().Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"states": s.renderer.Directory().States()})
}

func (s *Server) handleStateCounties(w http.ResponseWriter, r *http.Request) {
	state := chi.URLParam(r, "state")
	counties, err := s.renderer.Directory().Counties(state)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": state, "counties": counties})
}

func (s *Server) handleSelections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]cluster.Selection{"selections": s.renderer.Catalog().List()})
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	res, err := s.renderer.Cluster(r.Context(), chi.URLParam(r, "selection"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clusterResponse{
		RunID:       res.RunID,
		Selection:   res.Selection,
		K:           res.K,
		Seed:        res.Seed,
		Inertia:     res.Inertia,
		Iterations:  res.Iterations,
		Centroids:   res.Centroids,
		Assignments: res.Assignments,
		Excluded:    res.Excluded,
	})
}

func (s *Server) handleClusterCounty(w http.ResponseWriter, r *http.Request) {
	res, err := s.renderer.Cluster(r.Context(), chi.URLParam(r, "selection"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := res.Lookup(chi.URLParam(r, "fips"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleClusterGeoJSON(w http.ResponseWriter, r *http.Request) {
	res, err := s.renderer.Cluster(r.Context(), chi.URLParam(r, "selection"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := geo.ClusterLayer(res, s.renderer.Directory()).MarshalGeoJSON()
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	minYear, err := minYearParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := s.renderer.Render(r.Context(), dashboard.Request{
		Page:    dashboard.PageTimeSeries,
		FIPS:    chi.URLParam(r, "fips"),
		Chart:   r.URL.Query().Get("chart"),
		MinYear: minYear,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v.TimeSeries)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	minYear, err := minYearParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	v, err := s.renderer.Render(r.Context(), dashboard.Request{
		Page:    dashboard.Page(chi.URLParam(r, "page")),
		State:   q.Get("state"),
		County:  q.Get("county"),
		FIPS:    q.Get("fips"),
		Chart:   q.Get("chart"),
		MinYear: minYear,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func minYearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("min_year")
	if raw == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 0 {
		return 0, model.Invalid("min_year", "must be a year, got %q", raw)
	}
	return y, nil
}

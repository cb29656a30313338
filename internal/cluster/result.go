package cluster

import (
	"slices"
	"time"

	"github.com/sells-group/water-cli/internal/model"
)

// Assignment is one county's row in the augmented table.
type Assignment struct {
	FIPS    string             `json:"fips"`
	State   string             `json:"state"`
	County  string             `json:"county"`
	Cluster int                `json:"cluster"`
	Color   string             `json:"color"`
	Values  map[string]float64 `json:"values"`
}

// Centroid is a cluster center in original units.
type Centroid struct {
	Cluster int                `json:"cluster"`
	Color   string             `json:"color"`
	Size    int                `json:"size"`
	Values  map[string]float64 `json:"values"`
}

// Result is the outcome of one run: the augmented table, the centroid table
// and fit statistics. A Result is never shared between runs.
type Result struct {
	RunID       string        `json:"run_id"`
	Selection   Selection     `json:"selection"`
	K           int           `json:"k"`
	Seed        uint64        `json:"seed"`
	CreatedAt   time.Time     `json:"created_at"`
	Duration    time.Duration `json:"duration_ns"`
	Inertia     float64       `json:"inertia"`
	Iterations  int           `json:"iterations"`
	Palette     Palette       `json:"palette"`
	Scaler      *Scaler       `json:"scaler"`
	Assignments []Assignment  `json:"assignments"`
	Centroids   []Centroid    `json:"centroids"`
	Excluded    []string      `json:"excluded,omitempty"`

	index map[string]int
}

func newResult(sel Selection, records []model.CountyRecord, part *Partition, scaler *Scaler, palette Palette) *Result {
	r := &Result{
		Selection:   sel,
		K:           len(part.Centers),
		Inertia:     part.Inertia,
		Iterations:  part.Iterations,
		Palette:     palette,
		Scaler:      scaler,
		Assignments: make([]Assignment, len(records)),
		Centroids:   make([]Centroid, len(part.Centers)),
		index:       make(map[string]int, len(records)),
	}

	for i, rec := range records {
		id := part.Labels[i]
		color, _ := palette.Color(id)
		r.Assignments[i] = Assignment{
			FIPS:    rec.FIPS,
			State:   rec.State,
			County:  rec.County,
			Cluster: id,
			Color:   color,
			Values:  rec.Subset(sel.Columns),
		}
		r.index[rec.FIPS] = i
	}

	for id, center := range part.Centers {
		orig := scaler.Inverse(center)
		values := make(map[string]float64, len(sel.Columns))
		for j, c := range sel.Columns {
			values[c] = orig[j]
		}
		color, _ := palette.Color(id)
		r.Centroids[id] = Centroid{
			Cluster: id,
			Color:   color,
			Size:    part.Sizes[id],
			Values:  values,
		}
	}
	return r
}

// Lookup returns the assignment for a county. The code is normalized first,
// so "6037" finds "06037". Counties outside the run are NotFound.
func (r *Result) Lookup(fips string) (Assignment, error) {
	key, ok := model.NormalizeFIPS(fips)
	if !ok {
		return Assignment{}, notFound("county", fips)
	}
	i, ok := r.index[key]
	if !ok {
		return Assignment{}, notFound("county", key)
	}
	return r.Assignments[i], nil
}

// Members returns the assignments of one cluster in FIPS order.
func (r *Result) Members(id int) []Assignment {
	var out []Assignment
	for _, a := range r.Assignments {
		if a.Cluster == id {
			out = append(out, a)
		}
	}
	return out
}

// Batch holds the results of several selections fitted over the same table.
type Batch struct {
	results map[string]*Result
	order   []string
}

// Names returns the selection names in the order they were requested.
func (b *Batch) Names() []string { return slices.Clone(b.order) }

// Result returns the run for a selection.
func (b *Batch) Result(selection string) (*Result, error) {
	r, ok := b.results[selection]
	if !ok {
		return nil, notFound("selection", selection)
	}
	return r, nil
}

// Lookup answers a per-county query against one selection's run.
func (b *Batch) Lookup(selection, fips string) (Assignment, error) {
	r, err := b.Result(selection)
	if err != nil {
		return Assignment{}, err
	}
	return r.Lookup(fips)
}

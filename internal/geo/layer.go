package geo

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/water-cli/internal/cluster"
)

// Layer is a GeoJSON point layer of cluster assignments.
type Layer struct {
	Selection string                     `json:"selection"`
	RunID     string                     `json:"run_id"`
	Features  *geojson.FeatureCollection `json:"features"`
	Missing   []string                   `json:"missing,omitempty"` // assigned counties without a point
}

// ClusterLayer places every assigned county at its directory point with
// fips, state, county, cluster and color properties.
func ClusterLayer(res *cluster.Result, dir *Directory) *Layer {
	l := &Layer{
		Selection: res.Selection.Name,
		RunID:     res.RunID,
		Features:  &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(res.Assignments))},
	}
	bounds := geom.NewBounds(geom.XY)

	for _, a := range res.Assignments {
		c, err := dir.ByFIPS(a.FIPS)
		if err != nil || !c.HasPoint {
			l.Missing = append(l.Missing, a.FIPS)
			continue
		}
		pt := geom.NewPointFlat(geom.XY, []float64{c.Lon, c.Lat}).SetSRID(4326)
		bounds.Extend(pt)

		name := a.County
		if name == "" {
			name = c.Name
		}
		l.Features.Features = append(l.Features.Features, &geojson.Feature{
			ID:       a.FIPS,
			Geometry: pt,
			Properties: map[string]any{
				"fips":    a.FIPS,
				"state":   a.State,
				"county":  name,
				"cluster": a.Cluster,
				"color":   a.Color,
			},
		})
	}

	if len(l.Features.Features) > 0 {
		l.Features.BBox = bounds
	}
	return l
}

// MarshalGeoJSON encodes the feature collection alone.
func (l *Layer) MarshalGeoJSON() ([]byte, error) {
	data, err := json.Marshal(l.Features)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode geojson")
	}
	return data, nil
}

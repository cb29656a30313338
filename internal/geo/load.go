package geo

import (
	"context"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/water-cli/internal/fetcher"
	"github.com/sells-group/water-cli/internal/model"
)

// LoadCountiesCSV reads the county reference file with columns
// FIPS, STATE, COUNTYNAME, LON and LAT.
func LoadCountiesCSV(ctx context.Context, path string) (*Directory, error) {
	header, rows, err := fetcher.ReadCSVFile(ctx, path)
	if err != nil {
		return nil, eris.Wrap(err, "geo: load counties")
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range []string{"fips", "state", "countyname"} {
		if _, ok := col[req]; !ok {
			return nil, eris.Errorf("geo: counties file %s missing %s column", path, req)
		}
	}

	counties := make([]County, 0, len(rows))
	for n, row := range rows {
		raw := field(row, col, "fips")
		fips, ok := model.NormalizeFIPS(raw)
		if !ok {
			return nil, eris.Errorf("geo: counties row %d: invalid fips %q", n+1, raw)
		}
		c := County{
			FIPS:  fips,
			State: strings.ToUpper(field(row, col, "state")),
			Name:  field(row, col, "countyname"),
		}
		lon, lonErr := strconv.ParseFloat(field(row, col, "lon"), 64)
		lat, latErr := strconv.ParseFloat(field(row, col, "lat"), 64)
		if lonErr == nil && latErr == nil {
			c.Lon, c.Lat, c.HasPoint = lon, lat, true
		}
		counties = append(counties, c)
	}

	d, err := NewDirectory(counties)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("geo: loaded counties", zap.String("path", path), zap.Int("counties", d.Len()))
	return d, nil
}

// LoadShapefile reads a TIGER/Line county shapefile. Counties are keyed by
// STATEFP+COUNTYFP (or GEOID) and located at INTPTLON/INTPTLAT, falling back to
// the center of the shape's bounding box.
func LoadShapefile(path string) (*Directory, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}
	attr := func(name string) string {
		idx, ok := fieldIdx[name]
		if !ok {
			return ""
		}
		return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
	}

	var counties []County
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		fips := attr("geoid")
		if fips == "" {
			fips = model.CombineFIPS(attr("statefp"), attr("countyfp"))
		}
		key, ok := model.NormalizeFIPS(fips)
		if !ok {
			skipped++
			continue
		}
		state, ok := model.StateAbbrForFIPS(model.StateFIPSOf(key))
		if !ok {
			skipped++
			continue
		}

		c := County{FIPS: key, State: state, Name: attr("name")}
		if c.Name == "" {
			c.Name = attr("namelsad")
		}
		lon, lonErr := strconv.ParseFloat(attr("intptlon"), 64)
		lat, latErr := strconv.ParseFloat(attr("intptlat"), 64)
		switch {
		case lonErr == nil && latErr == nil:
			c.Lon, c.Lat, c.HasPoint = lon, lat, true
		case shape != nil:
			box := shape.BBox()
			c.Lon, c.Lat, c.HasPoint = (box.MinX+box.MaxX)/2, (box.MinY+box.MaxY)/2, true
		}
		counties = append(counties, c)
	}

	if skipped > 0 {
		zap.L().Debug("geo: skipped shapefile records", zap.String("path", path), zap.Int("skipped", skipped))
	}
	return NewDirectory(counties)
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Package geo resolves U.S. counties by state and name and renders cluster
// assignments as GeoJSON map layers.
package geo

import (
	"slices"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/water-cli/internal/dataset"
	"github.com/sells-group/water-cli/internal/model"
)

// County is one directory entry. Lon and Lat locate an interior point when
// HasPoint is set.
type County struct {
	FIPS     string  `json:"fips"`
	State    string  `json:"state"`
	Name     string  `json:"name"`
	Lon      float64 `json:"lon,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	HasPoint bool    `json:"has_point"`
}

// Directory maps states to their counties and (state, name) pairs to FIPS codes.
// It is read-only after construction.
type Directory struct {
	counties []County
	byFIPS   map[string]int
	byState  map[string][]int
	byName   map[string]int
	byShort  map[string]int
}

// nameSuffixes are dropped when matching a bare county name like "Adams"
// against "Adams County".
var nameSuffixes = []string{
	" city and borough",
	" census area",
	" municipality",
	" borough",
	" county",
	" parish",
}

// NewDirectory indexes counties. Entries are ordered by state, then name.
func NewDirectory(counties []County) (*Directory, error) {
	sorted := slices.Clone(counties)
	slices.SortStableFunc(sorted, func(a, b County) int {
		if c := strings.Compare(a.State, b.State); c != 0 {
			return c
		}
		return strings.Compare(FoldName(a.Name), FoldName(b.Name))
	})

	d := &Directory{
		counties: sorted,
		byFIPS:   make(map[string]int, len(sorted)),
		byState:  make(map[string][]int),
		byName:   make(map[string]int, len(sorted)),
		byShort:  make(map[string]int, len(sorted)),
	}
	for i, c := range sorted {
		if _, dup := d.byFIPS[c.FIPS]; dup {
			return nil, eris.Errorf("geo: duplicate county fips %s", c.FIPS)
		}
		d.byFIPS[c.FIPS] = i
		d.byState[c.State] = append(d.byState[c.State], i)

		full := c.State + "|" + FoldName(c.Name)
		if _, ok := d.byName[full]; !ok {
			d.byName[full] = i
		}
		short := c.State + "|" + shortName(c.Name)
		if _, ok := d.byShort[short]; !ok {
			d.byShort[short] = i
		}
	}
	return d, nil
}

// FromTable builds a directory from the key columns of the county table.
// Entries carry no points.
func FromTable(t *dataset.Table) (*Directory, error) {
	counties := make([]County, 0, t.Len())
	for _, r := range t.Records() {
		if r.State == "" || r.County == "" {
			continue
		}
		counties = append(counties, County{FIPS: r.FIPS, State: r.State, Name: r.County})
	}
	return NewDirectory(counties)
}

// Len returns the number of counties.
func (d *Directory) Len() int { return len(d.counties) }

// States returns the state selector list. It is the fixed dashboard order,
// independent of which states the directory holds.
func (d *Directory) States() []string {
	return slices.Clone(model.StateAbbreviations)
}

// Counties returns a state's counties ordered by name.
func (d *Directory) Counties(state string) ([]County, error) {
	key := strings.ToUpper(strings.TrimSpace(state))
	idx, ok := d.byState[key]
	if !ok {
		return nil, model.NotFound("state", state)
	}
	out := make([]County, len(idx))
	for i, j := range idx {
		out[i] = d.counties[j]
	}
	return out, nil
}

// CountyNames returns a state's county names ordered by name.
func (d *Directory) CountyNames(state string) ([]string, error) {
	counties, err := d.Counties(state)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(counties))
	for i, c := range counties {
		names[i] = c.Name
	}
	return names, nil
}

// Resolve finds a county by state and name. Matching ignores case, accents
// and a trailing "County"-style suffix.
func (d *Directory) Resolve(state, name string) (County, error) {
	st := strings.ToUpper(strings.TrimSpace(state))
	if _, ok := d.byState[st]; !ok {
		return County{}, model.NotFound("state", state)
	}
	if i, ok := d.byName[st+"|"+FoldName(name)]; ok {
		return d.counties[i], nil
	}
	if i, ok := d.byShort[st+"|"+shortName(name)]; ok {
		return d.counties[i], nil
	}
	return County{}, model.NotFound("county", st+"/"+name)
}

// ByFIPS returns the county with a FIPS code. The code is normalized first.
func (d *Directory) ByFIPS(fips string) (County, error) {
	key, ok := model.NormalizeFIPS(fips)
	if !ok {
		return County{}, model.NotFound("county", fips)
	}
	i, ok := d.byFIPS[key]
	if !ok {
		return County{}, model.NotFound("county", key)
	}
	return d.counties[i], nil
}

// FoldName returns the matching key of a county name: accents removed,
// case folded and inner whitespace collapsed.
func FoldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(cases.Fold().String(out)), " ")
}

func shortName(s string) string {
	f := FoldName(s)
	for _, suf := range nameSuffixes {
		if trimmed, ok := strings.CutSuffix(f, suf); ok && trimmed != "" {
			return trimmed
		}
	}
	return f
}

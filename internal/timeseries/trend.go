package timeseries

import (
	"github.com/sells-group/water-cli/internal/model"
)

// DefaultMinYear is the first year shown when none is requested.
const DefaultMinYear = 2010

// Series names one plotted line and its color.
type Series struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// TemperatureSeries are the lines of a temperature chart, in draw order.
var TemperatureSeries = []Series{
	{Key: "low", Label: "Low Temp (F)", Color: "#EED78D"},
	{Key: "high", Label: "High Temp (F)", Color: "#C22B26"},
	{Key: "mean", Label: "Mean Temp (F)", Color: "#FFB632"},
	{Key: "annual_mean", Label: "Annual Mean Temp (F)", Color: "k"},
}

// DroughtSeries are the lines of a drought chart, in draw order.
var DroughtSeries = []Series{
	{Key: "exceptional", Label: "Exceptional Drought", Color: "#C22B26"},
	{Key: "extreme_plus", Label: "Extreme Drought", Color: "#D58900"},
	{Key: "severe_plus", Label: "Severe Drought", Color: "#FFB632"},
	{Key: "moderate_plus", Label: "Moderate Drought", Color: "#EED78D"},
}

// TemperaturePoint is one month of a temperature trend.
type TemperaturePoint struct {
	Month string  `json:"month"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Mean  float64 `json:"mean"`
}

// AnnualPoint is one year's mean temperature.
type AnnualPoint struct {
	Year int     `json:"year"`
	Mean float64 `json:"annual_mean"`
}

// TemperatureTrend is the monthly low/high/mean and annual mean series for a county.
type TemperatureTrend struct {
	FIPS    string             `json:"fips"`
	MinYear int                `json:"min_year"`
	YLabel  string             `json:"y_label"`
	Series  []Series           `json:"series"`
	Monthly []TemperaturePoint `json:"monthly"`
	Annual  []AnnualPoint      `json:"annual"`
}

// DroughtPoint is one month of cumulative drought coverage. Each category
// counts the population in that condition or worse.
type DroughtPoint struct {
	Month        string  `json:"month"`
	Exceptional  float64 `json:"exceptional"`
	ExtremePlus  float64 `json:"extreme_plus"`
	SeverePlus   float64 `json:"severe_plus"`
	ModeratePlus float64 `json:"moderate_plus"`
}

// DroughtTrend is the drought coverage series for a county.
type DroughtTrend struct {
	FIPS    string         `json:"fips"`
	MinYear int            `json:"min_year"`
	YLabel  string         `json:"y_label"`
	Series  []Series       `json:"series"`
	Monthly []DroughtPoint `json:"monthly"`
}

// TemperatureTrend returns the county's temperatures from minYear on.
// A minYear of zero uses DefaultMinYear. Counties with no monthly rows are NotFound.
func (s *Store) TemperatureTrend(fips string, minYear int) (*TemperatureTrend, error) {
	key, months, minYear, err := s.months(fips, minYear)
	if err != nil {
		return nil, err
	}

	t := &TemperatureTrend{
		FIPS:    key,
		MinYear: minYear,
		YLabel:  "Average Monthly Temperature (F)",
		Series:  TemperatureSeries,
		Monthly: make([]TemperaturePoint, 0, len(months)),
	}
	for _, m := range months {
		t.Monthly = append(t.Monthly, TemperaturePoint{
			Month: m.Month.Format("2006-01"),
			Low:   m.MinTemp,
			High:  m.MaxTemp,
			Mean:  m.MeanTemp,
		})
	}
	for _, y := range s.annual[key] {
		if y.Year >= minYear {
			t.Annual = append(t.Annual, AnnualPoint{Year: y.Year, Mean: y.MeanTemp})
		}
	}
	return t, nil
}

// DroughtTrend returns the county's cumulative drought coverage from minYear on.
func (s *Store) DroughtTrend(fips string, minYear int) (*DroughtTrend, error) {
	key, months, minYear, err := s.months(fips, minYear)
	if err != nil {
		return nil, err
	}

	t := &DroughtTrend{
		FIPS:    key,
		MinYear: minYear,
		YLabel:  "Percent Population Experiencing Designated Drought Condition or Worse",
		Series:  DroughtSeries,
		Monthly: make([]DroughtPoint, 0, len(months)),
	}
	for _, m := range months {
		extreme := max(m.Exceptional, m.Extreme)
		severe := max(extreme, m.Severe)
		t.Monthly = append(t.Monthly, DroughtPoint{
			Month:        m.Month.Format("2006-01"),
			Exceptional:  m.Exceptional,
			ExtremePlus:  extreme,
			SeverePlus:   severe,
			ModeratePlus: max(severe, m.Moderate),
		})
	}
	return t, nil
}

func (s *Store) months(fips string, minYear int) (string, []Month, int, error) {
	key, ok := model.NormalizeFIPS(fips)
	if !ok {
		return "", nil, 0, model.NotFound("county", fips)
	}
	all, ok := s.monthly[key]
	if !ok {
		return "", nil, 0, model.NotFound("county", key)
	}
	if minYear == 0 {
		minYear = DefaultMinYear
	}

	var out []Month
	for _, m := range all {
		if m.Month.Year() >= minYear {
			out = append(out, m)
		}
	}
	return key, out, minYear, nil
}

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/water-cli/internal/dashboard"
)

var timeseriesCmd = &cobra.Command{
	Use:   "timeseries",
	Short: "Show a county's temperature or drought trend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fips, _ := cmd.Flags().GetString("fips")
		state, _ := cmd.Flags().GetString("state")
		county, _ := cmd.Flags().GetString("county")
		chart, _ := cmd.Flags().GetString("chart")
		minYear, _ := cmd.Flags().GetInt("min-year")
		format, _ := cmd.Flags().GetString("format")

		if err := checkFormat(format, formatTable, formatJSON); err != nil {
			return err
		}
		if fips == "" && (state == "" || county == "") {
			return eris.New("--fips or both --state and --county are required")
		}

		ctx := cmd.Context()
		env, err := initEnv(ctx, "timeseries", envOptions{Series: true})
		if err != nil {
			return err
		}
		r, err := env.renderer()
		if err != nil {
			return err
		}

		v, err := r.Render(ctx, dashboard.Request{
			Page:    dashboard.PageTimeSeries,
			FIPS:    fips,
			State:   state,
			County:  county,
			Chart:   chart,
			MinYear: minYear,
		})
		if err != nil {
			return eris.Wrap(err, "timeseries")
		}

		if format == formatJSON {
			return writeJSON(cmd.OutOrStdout(), v.TimeSeries)
		}
		formatTimeSeries(cmd.OutOrStdout(), v.TimeSeries)
		return nil
	},
}

func init() {
	timeseriesCmd.Flags().String("fips", "", "county FIPS code")
	timeseriesCmd.Flags().String("state", "", "state abbreviation")
	timeseriesCmd.Flags().String("county", "", "county name")
	timeseriesCmd.Flags().String("chart", dashboard.ChartTemperature, "chart: temperature or drought")
	timeseriesCmd.Flags().Int("min-year", 0, "first year shown (default from config)")
	timeseriesCmd.Flags().String("format", formatTable, "output format: table or json")
	rootCmd.AddCommand(timeseriesCmd)
}

// formatTimeSeries writes the chart title and its monthly rows.
func formatTimeSeries(out io.Writer, v *dashboard.TimeSeriesView) {
	_, _ = fmt.Fprintln(out, v.Title)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	switch {
	case v.Temperature != nil:
		_, _ = fmt.Fprintln(w, "MONTH\tLOW_F\tHIGH_F\tMEAN_F")
		for _, p := range v.Temperature.Monthly {
			_, _ = fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\n", p.Month, p.Low, p.High, p.Mean)
		}
		_ = w.Flush()

		_, _ = fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "YEAR\tANNUAL_MEAN_F")
		for _, p := range v.Temperature.Annual {
			_, _ = fmt.Fprintf(w, "%d\t%.1f\n", p.Year, p.Mean)
		}
	case v.Drought != nil:
		_, _ = fmt.Fprintln(w, "MONTH\tEXCEPTIONAL\tEXTREME+\tSEVERE+\tMODERATE+")
		for _, p := range v.Drought.Monthly {
			_, _ = fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\t%.1f\n", p.Month, p.Exceptional, p.ExtremePlus, p.SeverePlus, p.ModeratePlus)
		}
	}
	_ = w.Flush()
}

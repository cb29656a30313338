package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/water-cli/internal/cluster"
	"github.com/sells-group/water-cli/internal/geo"
)

// Output formats.
const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Cluster counties by a selection of water usage columns",
}

// -- cluster run --

var clusterRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run k-means for one selection or all of them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("selection")
		all, _ := cmd.Flags().GetBool("all")
		format, _ := cmd.Flags().GetString("format")

		if err := checkFormat(format, formatTable, formatCSV, formatJSON); err != nil {
			return err
		}
		if (name == "") == !all {
			return eris.New("exactly one of --selection or --all is required")
		}

		ctx := cmd.Context()
		env, err := initEnv(ctx, "cluster", envOptions{})
		if err != nil {
			return err
		}

		var sels []cluster.Selection
		if all {
			sels = env.Catalog.List()
		} else {
			sel, err := env.Catalog.Get(name)
			if err != nil {
				return eris.Wrap(err, "cluster run")
			}
			sels = []cluster.Selection{sel}
		}

		batch, err := env.Engine.RunAll(ctx, env.Table, sels)
		if err != nil {
			return eris.Wrap(err, "cluster run")
		}
		results := make([]*cluster.Result, 0, len(sels))
		for _, n := range batch.Names() {
			res, err := batch.Result(n)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		return writeResults(cmd.OutOrStdout(), format, results)
	},
}

// -- cluster lookup --

var clusterLookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Show which cluster a county falls in",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("selection")
		fips, _ := cmd.Flags().GetString("fips")
		state, _ := cmd.Flags().GetString("state")
		county, _ := cmd.Flags().GetString("county")
		format, _ := cmd.Flags().GetString("format")

		if err := checkFormat(format, formatTable, formatJSON); err != nil {
			return err
		}
		if fips == "" && (state == "" || county == "") {
			return eris.New("--fips or both --state and --county are required")
		}

		ctx := cmd.Context()
		env, err := initEnv(ctx, "cluster", envOptions{})
		if err != nil {
			return err
		}

		c, err := resolveCounty(env.Directory, fips, state, county)
		if err != nil {
			return eris.Wrap(err, "cluster lookup")
		}
		sel, err := env.Catalog.Get(name)
		if err != nil {
			return eris.Wrap(err, "cluster lookup")
		}
		res, err := env.Engine.Run(ctx, env.Table, sel)
		if err != nil {
			return eris.Wrap(err, "cluster lookup")
		}
		a, err := res.Lookup(c.FIPS)
		if err != nil {
			return eris.Wrap(err, "cluster lookup")
		}

		if format == formatJSON {
			return writeJSON(cmd.OutOrStdout(), a)
		}
		formatAssignment(cmd.OutOrStdout(), sel, a)
		return nil
	},
}

func init() {
	clusterRunCmd.Flags().String("selection", "", "selection name")
	clusterRunCmd.Flags().Bool("all", false, "run every selection in the catalog")
	clusterRunCmd.Flags().String("format", formatTable, "output format: table, csv or json")

	clusterLookupCmd.Flags().String("selection", cluster.PublicSupply, "selection name")
	clusterLookupCmd.Flags().String("fips", "", "county FIPS code")
	clusterLookupCmd.Flags().String("state", "", "state abbreviation")
	clusterLookupCmd.Flags().String("county", "", "county name")
	clusterLookupCmd.Flags().String("format", formatTable, "output format: table or json")

	clusterCmd.AddCommand(clusterRunCmd)
	clusterCmd.AddCommand(clusterLookupCmd)
	rootCmd.AddCommand(clusterCmd)
}

func resolveCounty(dir *geo.Directory, fips, state, county string) (geo.County, error) {
	if fips != "" {
		return dir.ByFIPS(fips)
	}
	return dir.Resolve(state, county)
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return eris.Errorf("unsupported format %q (want %s)", format, strings.Join(allowed, ", "))
}

func writeResults(out io.Writer, format string, results []*cluster.Result) error {
	switch format {
	case formatJSON:
		if len(results) == 1 {
			return writeJSON(out, results[0])
		}
		return writeJSON(out, results)
	case formatCSV:
		return writeResultsCSV(out, results)
	default:
		for i, res := range results {
			if i > 0 {
				_, _ = fmt.Fprintln(out)
			}
			formatResult(out, res)
		}
		return nil
	}
}

// formatResult writes the run summary, centroids and assignments as tables.
func formatResult(out io.Writer, res *cluster.Result) {
	cols := res.Selection.Columns
	_, _ = fmt.Fprintf(out, "%s (run %s, k=%d, seed=%d, iterations=%d, inertia=%.4f)\n",
		res.Selection.Name, shortID(res.RunID), res.K, res.Seed, res.Iterations, res.Inertia)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "CLUSTER\tCOLOR\tSIZE\t%s\n", upperJoin(cols))
	for _, c := range res.Centroids {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", c.Cluster, c.Color, c.Size, joinValues(c.Values, cols))
	}
	_ = w.Flush()
	_, _ = fmt.Fprintln(out)

	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "FIPS\tSTATE\tCOUNTY\tCLUSTER\tCOLOR\t%s\n", upperJoin(cols))
	for _, a := range res.Assignments {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", a.FIPS, a.State, a.County, a.Cluster, a.Color, joinValues(a.Values, cols))
	}
	_ = w.Flush()

	if len(res.Excluded) > 0 {
		_, _ = fmt.Fprintf(out, "excluded (incomplete): %s\n", strings.Join(res.Excluded, ", "))
	}
}

// writeResultsCSV writes each augmented table under its own header row, since
// selections differ in columns.
func writeResultsCSV(out io.Writer, results []*cluster.Result) error {
	w := csv.NewWriter(out)
	for _, res := range results {
		cols := res.Selection.Columns
		header := append([]string{"selection", "fips", "state", "countyname"}, cols...)
		if err := w.Write(append(header, "cluster", "color")); err != nil {
			return eris.Wrap(err, "write csv header")
		}
		for _, a := range res.Assignments {
			row := []string{res.Selection.Name, a.FIPS, a.State, a.County}
			for _, c := range cols {
				row = append(row, strconv.FormatFloat(a.Values[c], 'f', -1, 64))
			}
			row = append(row, strconv.Itoa(a.Cluster), a.Color)
			if err := w.Write(row); err != nil {
				return eris.Wrap(err, "write csv row")
			}
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "flush csv")
}

// formatAssignment writes one county's cluster and feature values.
func formatAssignment(out io.Writer, sel cluster.Selection, a cluster.Assignment) {
	_, _ = fmt.Fprintf(out, "%s %s, %s: cluster %d (%s) in %s\n", a.FIPS, a.County, a.State, a.Cluster, a.Color, sel.Name)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range sel.Columns {
		_, _ = fmt.Fprintf(w, "  %s\t%s\n", c, strconv.FormatFloat(a.Values[c], 'f', -1, 64))
	}
	_ = w.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func upperJoin(cols []string) string {
	up := make([]string, len(cols))
	for i, c := range cols {
		up[i] = strings.ToUpper(c)
	}
	return strings.Join(up, "\t")
}

func joinValues(values map[string]float64, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = strconv.FormatFloat(values[c], 'f', 2, 64)
	}
	return strings.Join(parts, "\t")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

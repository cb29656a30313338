package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/water-cli/internal/geo"
)

var countiesCmd = &cobra.Command{
	Use:   "counties",
	Short: "List states, or the counties of one state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		state, _ := cmd.Flags().GetString("state")

		env, err := initEnv(cmd.Context(), "data", envOptions{})
		if err != nil {
			return err
		}

		if state == "" {
			formatStates(cmd.OutOrStdout(), env.Directory)
			return nil
		}
		counties, err := env.Directory.Counties(state)
		if err != nil {
			return eris.Wrap(err, "counties")
		}
		formatCounties(cmd.OutOrStdout(), counties)
		return nil
	},
}

func init() {
	countiesCmd.Flags().String("state", "", "state abbreviation, e.g. CA")
	rootCmd.AddCommand(countiesCmd)
}

// formatStates writes the state selector list with county counts.
func formatStates(out io.Writer, dir *geo.Directory) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STATE\tCOUNTIES")
	for _, st := range dir.States() {
		n := 0
		if counties, err := dir.Counties(st); err == nil {
			n = len(counties)
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\n", st, n)
	}
	_ = w.Flush()
}

// formatCounties writes one state's counties in name order.
func formatCounties(out io.Writer, counties []geo.County) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FIPS\tCOUNTY\tLON\tLAT")
	for _, c := range counties {
		if c.HasPoint {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\n", c.FIPS, c.Name, c.Lon, c.Lat)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t-\t-\n", c.FIPS, c.Name)
	}
	_ = w.Flush()
}

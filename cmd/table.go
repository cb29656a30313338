package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/water-cli/internal/dataset"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the county data table sorted by FIPS",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format, formatTable, formatCSV); err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), "data", envOptions{Frame: true})
		if err != nil {
			return err
		}
		frame := env.Frame
		if frame == nil {
			frame = dataset.FrameFromTable(env.Table)
		}

		if format == formatCSV {
			return writeFrameCSV(cmd.OutOrStdout(), frame)
		}
		formatFrame(cmd.OutOrStdout(), frame)
		return nil
	},
}

func init() {
	tableCmd.Flags().String("format", formatTable, "output format: table or csv")
	rootCmd.AddCommand(tableCmd)
}

func formatFrame(out io.Writer, f *dataset.Frame) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(f.Header, "\t"))
	for _, row := range f.Rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func writeFrameCSV(out io.Writer, f *dataset.Frame) error {
	w := csv.NewWriter(out)
	if err := w.Write(f.Header); err != nil {
		return eris.Wrap(err, "write csv header")
	}
	if err := w.WriteAll(f.Rows); err != nil {
		return eris.Wrap(err, "write csv rows")
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aswin0605itsme-droid/Eggai/internal/batch"
	"github.com/aswin0605itsme-droid/Eggai/internal/cli"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file.csv>",
		Short: "Predict every row of a measurements CSV",
		Long: `Predict the chick sex for every egg in a CSV of measurements.

The file needs mass, long_axis and short_axis columns and may start with an
id column. Rows are sent one at a time with a pause between calls to stay
within the provider's rate limit. Press Ctrl+C to stop early and keep the
rows finished so far.

Examples:
  eggai batch eggs.csv                       # Print results as a table
  eggai batch eggs.csv -o results.csv        # Also write a results CSV
  eggai batch eggs.csv -o out.csv --features # Include derived features`,
		Args: cobra.ExactArgs(1),
		RunE: runBatch,
	}

	cmd.Flags().StringP("output", "o", "", "Write results to this CSV file")
	cmd.Flags().Duration("delay", 0, "Pause between provider calls (default from batch.delay)")
	cmd.Flags().Bool("features", false, "Include derived features in the results CSV")
	_ = viper.BindPFlag("batch.delay", cmd.Flags().Lookup("delay"))

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	output, _ := cmd.Flags().GetString("output")
	withFeatures, _ := cmd.Flags().GetBool("features")

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	ds, err := batch.ParseCSV(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(cmd.Context(), "Partial results are kept.")
	defer stop()

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Processing %d eggs from %s", len(ds.Rows), args[0])))

	progress := cli.NewBatchProgress(out, len(ds.Rows))
	summary, runErr := a.newRunner().Run(ctx, ds.Rows, progress.Update)
	progress.Finish()
	if summary == nil {
		return runErr
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderResults(summary.Results, ds.HasID))
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderCounts(summary.Counts))

	if summary.Canceled {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Stopped after %d of %d rows.", len(summary.Results), len(ds.Rows))))
	} else {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Processed %d rows in %s.", len(summary.Results), summary.Elapsed.Round(time.Millisecond))))
	}

	if output != "" && len(summary.Results) > 0 {
		err := writeFile(output, func(w io.Writer) error {
			return batch.WriteResultsCSV(w, summary.Results, batch.ExportOptions{IncludeID: ds.HasID, IncludeFeatures: withFeatures})
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatInfo("Results written to "+output))
	}

	if runErr != nil && !errors.Is(runErr, ctx.Err()) {
		return runErr
	}
	return nil
}

func sampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a sample measurements CSV",
		Long: `Write a three-row sample CSV showing the expected batch input format.

Examples:
  eggai sample                    # Print to stdout
  eggai sample -o sample_eggs.csv # Write to a file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				return batch.WriteSampleCSV(cmd.OutOrStdout())
			}
			if err := writeFile(output, batch.WriteSampleCSV); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Sample written to "+output))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write the sample to this file")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aswin0605itsme-droid/Eggai/internal/analyzer"
	"github.com/aswin0605itsme-droid/Eggai/internal/cli"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze an egg photo",
		Long: `Analyze a photo of an egg and predict the chick sex. The analysis streams
to the terminal as it is written and the prediction is added to the log.

Examples:
  eggai analyze --batch B-12 egg.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("batch", "b", "", "Batch number recorded with the prediction (required)")
	_ = cmd.MarkFlagRequired("batch")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	batchNumber, _ := cmd.Flags().GetString("batch")

	img, err := readImage(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(out, cli.FormatTitle("Analyzing "+args[0]))
	images := analyzer.NewImageAnalyzer(a.predictor, a.log, a.logger)
	result, err := images.Analyze(cmd.Context(), batchNumber, img, func(frag string) {
		fmt.Fprint(out, frag)
	})
	fmt.Fprintln(out)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s %s\n", cli.FormatPrompt("Prediction:"), cli.FormatLabel(result.Label))
	fmt.Fprint(out, cli.RenderLog(a.log.Entries()))
	return nil
}

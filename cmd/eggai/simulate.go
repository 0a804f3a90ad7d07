package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aswin0605itsme-droid/Eggai/internal/cli"
	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/morphometry"
	"github.com/aswin0605itsme-droid/Eggai/internal/simulator"
)

func addMeasurementFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("mass", 0, "Egg mass in grams")
	cmd.Flags().Float64("long-axis", 0, "Long axis in millimetres")
	cmd.Flags().Float64("short-axis", 0, "Short axis in millimetres")
}

func measurementFromFlags(cmd *cobra.Command) model.Measurement {
	mass, _ := cmd.Flags().GetFloat64("mass")
	long, _ := cmd.Flags().GetFloat64("long-axis")
	short, _ := cmd.Flags().GetFloat64("short-axis")
	return model.Measurement{Mass: mass, LongAxis: long, ShortAxis: short}
}

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate the trained classifier for one egg",
		Long: `Derive morphometric features from three measurements and ask the model to
emulate a classifier trained on them. The result is not logged.

Examples:
  eggai simulate --mass 58.2 --long-axis 57.1 --short-axis 43.5`,
		Args: cobra.NoArgs,
		RunE: runSimulate,
	}
	addMeasurementFlags(cmd)
	return cmd
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	m := measurementFromFlags(cmd)

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := simulator.New(a.predictor, a.logger).Predict(cmd.Context(), m)
	if err != nil {
		return err
	}

	fmt.Fprint(out, cli.RenderFeatures(report.Measurement, report.Features))
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderBox("Simulated Prediction", fmt.Sprintf("%s  (confidence %.0f%%)",
		cli.FormatLabel(report.Prediction), report.Confidence*100)))
	return nil
}

func featuresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Compute derived features for one egg",
		Long: `Compute shape index, ovality, surface area, volume and density from three
measurements. No provider call is made.

Examples:
  eggai features --mass 58.2 --long-axis 57.1 --short-axis 43.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := measurementFromFlags(cmd)
			f, ok := morphometry.Compute(m)
			if !ok {
				return common.InvalidInput("long axis and mass cannot be zero")
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderFeatures(m, f))
			return nil
		},
	}
	addMeasurementFlags(cmd)
	return cmd
}

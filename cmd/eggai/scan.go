package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aswin0605itsme-droid/Eggai/internal/analyzer"
	"github.com/aswin0605itsme-droid/Eggai/internal/camera"
	"github.com/aswin0605itsme-droid/Eggai/internal/cli"
	"github.com/aswin0605itsme-droid/Eggai/internal/tui"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan eggs live from a camera",
		Long: `Open the live scan screen. Frames are read from a directory that a camera
writes snapshots into; the newest file is the current frame. Alignment is
checked continuously and a frame can be analyzed once the egg is well framed.

Examples:
  eggai scan --batch B-12                        # Use scan.frames_dir
  eggai scan --batch B-12 --frames ./snapshots   # Use another directory
  eggai scan --batch B-12 --auto --threshold 0.95`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}

	cmd.Flags().StringP("batch", "b", "", "Batch number recorded with predictions (required)")
	cmd.Flags().String("frames", "", "Directory the camera writes frames into")
	cmd.Flags().Bool("auto", false, "Start with auto-capture armed")
	cmd.Flags().Float64("threshold", 0, "Alignment confidence that triggers auto-capture")
	cmd.Flags().String("theme", "default", "Color theme (default, catppuccin-mocha)")
	_ = cmd.MarkFlagRequired("batch")

	_ = viper.BindPFlag("scan.frames_dir", cmd.Flags().Lookup("frames"))

	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	batchNumber, _ := cmd.Flags().GetString("batch")
	auto, _ := cmd.Flags().GetBool("auto")
	theme, _ := cmd.Flags().GetString("theme")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	scan := a.settings.Scan
	if cmd.Flags().Changed("threshold") {
		scan.Threshold, _ = cmd.Flags().GetFloat64("threshold")
	}
	if err := os.MkdirAll(scan.FramesDir, 0o750); err != nil {
		return fmt.Errorf("failed to create frames directory: %w", err)
	}

	source := camera.NewDirSource(scan.FramesDir, a.logger)
	session := analyzer.NewLiveSession(source, a.predictor, a.log, analyzer.LiveConfig{
		Interval:  scan.Interval,
		Gate:      scan.Gate,
		Threshold: scan.Threshold,
	}, a.logger)
	session.SetBatchNumber(batchNumber)
	session.SetAutoCapture(auto, scan.Threshold)

	if err := tui.RunLiveScan(ctx, tui.ScanConfig{Session: session, Log: a.log, Theme: theme}); err != nil {
		return err
	}

	entries := a.log.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No frames were analyzed."))
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), cli.RenderLog(entries))
	return nil
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aswin0605itsme-droid/Eggai/internal/cli"
	"github.com/aswin0605itsme-droid/Eggai/internal/common"
)

func imagineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imagine <prompt>",
		Short: "Generate an illustration from a prompt",
		Long: `Generate one square JPEG illustration from a text prompt.

Examples:
  eggai imagine "a cross-section of a fertile chicken egg" -o egg.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImagine,
	}
	cmd.Flags().StringP("output", "o", "generated.jpg", "File to write the image to")
	return cmd
}

func runImagine(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return common.InvalidInput("Please enter a prompt.")
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	img, err := a.predictor.GenerateImage(cmd.Context(), prompt)
	if err != nil {
		return common.NewUserError("Failed to generate image. Please try again.", err)
	}

	err = writeFile(output, func(w io.Writer) error {
		_, werr := w.Write(img.Data)
		return werr
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Image written to %s (%d bytes)", output, len(img.Data))))
	return nil
}

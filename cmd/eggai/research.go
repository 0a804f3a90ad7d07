package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aswin0605itsme-droid/Eggai/internal/cli"
	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/research"
)

func researchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research [prompt]",
		Short: "Ask research questions about egg sexing",
		Long: `Ask a question in one of four modes:

  think   in-depth reasoning with the larger model
  web     answer grounded in web search, with sources
  maps    nearby places, grounded in maps data (needs a location)
  video   a described video walkthrough of a topic

Without a prompt an interactive session starts. Type :mode <name> to switch
modes and an empty line or Ctrl+D to leave.

Examples:
  eggai research "How reliable is shape index for sexing?"
  eggai research --mode web "latest in-ovo sexing methods"
  eggai research --mode maps --lat 52.37 --lng 4.89 "hatcheries near me"
  eggai research --mode video "candling an egg"`,
		RunE: runResearch,
	}

	cmd.Flags().StringP("mode", "m", string(research.ModeThink), "Research mode (think, web, maps, video)")
	cmd.Flags().Float64("lat", 0, "Latitude for maps queries")
	cmd.Flags().Float64("lng", 0, "Longitude for maps queries")

	return cmd
}

func runResearch(cmd *cobra.Command, args []string) error {
	modeName, _ := cmd.Flags().GetString("mode")
	mode, err := research.ParseMode(modeName)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	loc := a.location()
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		loc = &model.Coordinate{Latitude: lat, Longitude: lng}
	}

	o := research.New(a.predictor, research.StaticLocator{Coordinate: loc}, a.logger)
	if err := o.SetMode(mode); err != nil {
		return err
	}

	if len(args) > 0 {
		return ask(cmd, o, strings.Join(args, " "))
	}
	return researchSession(cmd, o)
}

func researchSession(cmd *cobra.Command, o *research.Orchestrator) error {
	out := cmd.OutOrStdout()
	reader := cli.NewLineReader(cmd.InOrStdin())

	fmt.Fprintln(out, cli.FormatTitle("Research"))
	fmt.Fprintln(out, cli.FormatInfo("Type :mode <think|web|maps|video> to switch. Empty line to quit."))

	for {
		line, err := reader.Prompt(cmd.Context(), out, fmt.Sprintf("[%s] > ", o.Mode()))
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return nil
		}

		if name, ok := strings.CutPrefix(line, ":mode"); ok {
			mode, perr := research.ParseMode(name)
			if perr == nil {
				perr = o.SetMode(mode)
			}
			if perr != nil {
				fmt.Fprintln(out, cli.FormatError(common.UserMessage(perr)))
				continue
			}
			fmt.Fprintln(out, cli.FormatSuccess("Mode set to "+string(mode)))
			continue
		}

		if err := ask(cmd, o, line); err != nil {
			if cmd.Context().Err() != nil {
				return nil
			}
			fmt.Fprintln(out, cli.FormatError(common.UserMessage(err)))
		}
	}
}

func ask(cmd *cobra.Command, o *research.Orchestrator, prompt string) error {
	out := cmd.OutOrStdout()
	result, err := o.Query(cmd.Context(), prompt, func(frag string) {
		fmt.Fprint(out, frag)
	})
	if err != nil {
		return err
	}

	if result.Mode.Streams() {
		fmt.Fprintln(out)
	} else {
		fmt.Fprintln(out, result.Text)
	}
	if len(result.Citations) > 0 {
		fmt.Fprintln(out)
		fmt.Fprint(out, cli.RenderCitations(result.Citations))
	}
	return nil
}

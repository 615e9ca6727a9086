package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pulse/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [outputs...]",
		Short: "Evaluate a fixed number of frames and print the outputs",
		Long: "Evaluate the patch offline. Frame n is evaluated at n/fps seconds.\n" +
			"Outputs are paths such as .Result or mixer.Out; the patch outputs are used when none are given.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, _ := cmd.Flags().GetInt("frames")
			outputMode, _ := cmd.Flags().GetString("output-mode")
			inspect, _ := cmd.Flags().GetBool("inspect")
			changesOnly, _ := cmd.Flags().GetBool("changes-only")

			return c.app.Run(cmd.Context(), app.RunOptions{
				ConfigPath:  configPath(cmd),
				Frames:      frames,
				Outputs:     args,
				OutputMode:  outputMode,
				Inspect:     inspect,
				ChangesOnly: changesOnly,
			})
		},
	}

	cmd.Flags().IntP("frames", "n", 0, "Number of frames to evaluate (default: the patch setting)")
	cmd.Flags().StringP("output-mode", "o", "linear", "Output mode: linear or tui")
	cmd.Flags().BoolP("inspect", "i", false, "Keep the TUI open after the last frame")
	cmd.Flags().Bool("changes-only", false, "Only print frames whose outputs changed")

	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [outputs...]",
		Short: "Play the patch in real time and recompile resources on change",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputMode, _ := cmd.Flags().GetString("output-mode")
			ci, _ := cmd.Flags().GetBool("ci")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
			changesOnly, _ := cmd.Flags().GetBool("changes-only")

			// If --ci is set, override output-mode to "linear"
			if ci {
				outputMode = "linear"
			}

			return c.app.Watch(cmd.Context(), app.WatchOptions{
				ConfigPath:  configPath(cmd),
				Outputs:     args,
				OutputMode:  outputMode,
				ChangesOnly: changesOnly,
				MetricsAddr: metricsAddr,
			})
		},
	}

	cmd.Flags().StringP("output-mode", "o", "auto", "Output mode: auto, tui, or linear")
	cmd.Flags().Bool("ci", false, "Use linear output mode (shorthand for --output-mode=linear)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (default: the patch setting)")
	cmd.Flags().Bool("changes-only", true, "Only print frames whose outputs changed (linear mode)")

	return cmd
}

package cli

import (
	"fmt"
	"os"

	"timeline-cli/internal/replay"

	"github.com/spf13/cobra"
)

func newReplayCmd(app *App) *cobra.Command {
	var stableIDs bool

	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Play a gesture script through the coordinators and print the result",
		Long: `Runs every step of a YAML gesture script against the session (the
script's own session, --seed-file, or a random one) and prints the final
items, every live position broadcast and the commit journal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := replay.LoadScript(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, err := loadSession(app, cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			logger, closeLog, err := newLogger(os.Getenv(envDebugLog))
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeLog()

			opts := []replay.Option{replay.WithLogger(logger)}
			if stableIDs {
				n := 0
				opts = append(opts, replay.WithSessionIDs(func() string {
					n++
					return fmt.Sprintf("drag-%d", n)
				}))
			}
			res, err := replay.Run(cmd.Context(), sess, sc, opts...)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().BoolVar(&stableIDs, "stable-ids", false, "Number drag sessions drag-1, drag-2, ... instead of random ids")

	return cmd
}

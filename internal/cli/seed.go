package cli

import (
	"timeline-cli/internal/format"
	"timeline-cli/internal/seed"

	"github.com/spf13/cobra"
)

func newSeedCmd(app *App) *cobra.Command {
	var (
		rows  int
		items int
		seedN uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Print a random seed document (loadable with --seed-file)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			opts := cfg.SeedOptions(app.now())
			if cmd.Flags().Changed("rows") {
				opts.Rows = rows
			}
			if cmd.Flags().Changed("items") {
				opts.Items = items
			}
			gen := seed.NewGenerator(nil)
			if cmd.Flags().Changed("rand-seed") {
				gen = seed.NewSeededGenerator(seedN)
			}
			doc := seed.DocumentFor(gen.Generate(opts))

			// The document is meant to be saved and edited, so yaml unless a
			// format was asked for.
			out := *app
			if !cmd.Flags().Changed("format") && envOr(envFormat, "") == "" {
				out.Format = format.YAML
			}
			return writeOut(cmd, &out, doc)
		},
	}

	cmd.Flags().IntVar(&rows, "rows", seed.DefaultRowCount, "Number of rows")
	cmd.Flags().IntVar(&items, "items", seed.DefaultItemCount, "Number of items")
	cmd.Flags().Uint64Var(&seedN, "rand-seed", 0, "Seed the generator for reproducible output")

	return cmd
}

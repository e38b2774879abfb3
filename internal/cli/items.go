package cli

import (
	"github.com/spf13/cobra"
)

func newItemsCmd(app *App) *cobra.Command {
	var rowID string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "Print the items the TUI would start with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, err := loadSession(app, cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			if rowID != "" {
				if !hasRow(sess.Rows, rowID) {
					return writeErr(cmd, errNotFound("row", rowID))
				}
				kept := sess.Items[:0]
				for _, it := range sess.Items {
					if it.RowID == rowID {
						kept = append(kept, it)
					}
				}
				sess.Items = kept
			}
			return writeOut(cmd, app, map[string]any{
				"data": sess.Items,
				"meta": map[string]any{"range": sess.Range, "rows": sess.Rows},
			})
		},
	}

	cmd.Flags().StringVar(&rowID, "row", "", "Only items in this row")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect stored survey sessions",
	}
	cmd.AddCommand(newSessionsListCommand(opts))
	return cmd
}

func newSessionsListCommand(opts *options) *cobra.Command {
	var (
		completed bool
		page      int
		pageSize  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *bool
			if cmd.Flags().Changed("completed") {
				filter = &completed
			}

			sessions, total, err := opts.client().ListSessions(cmd.Context(), filter, page, pageSize)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), subtitleStyle.Render("No hay sesiones."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSessionTable(sessions, total))
			return nil
		},
	}
	cmd.Flags().BoolVar(&completed, "completed", false, "Only completed (true) or unfinished (false) sessions")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "Sessions per page (max 100)")
	return cmd
}

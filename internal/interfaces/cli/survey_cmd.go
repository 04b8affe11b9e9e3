package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newSurveyCommand(opts *options) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Take the survey in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			if err := client.Health(cmd.Context()); err != nil {
				return fmt.Errorf("backend not reachable at %s (run `encuesta serve`): %w", client.BaseURL(), err)
			}

			out := cmd.OutOrStdout()
			iv := &interview{api: client, ui: newTerminalPrompter(out)}
			view, err := iv.Run(cmd.Context())
			if errors.Is(err, errAborted) {
				fmt.Fprintln(out, subtitleStyle.Render("Encuesta cancelada."))
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, boxStyle.Render(titleStyle.Render("Tu diagnóstico")))
			fmt.Fprintln(out, renderReport(view.Report, width))
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Sesión %s completada. Descarga los datos con: encuesta export %s", view.ID, view.ID)))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "Report word-wrap width")
	return cmd
}

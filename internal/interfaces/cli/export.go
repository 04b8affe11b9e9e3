package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCommand(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Download the session data as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, filename, err := opts.client().Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if output == "" {
				output = filename
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Datos guardados en "+output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, '-' for stdout (default diagnostico-encuesta-ia-YYYY-MM-DD.json)")
	return cmd
}

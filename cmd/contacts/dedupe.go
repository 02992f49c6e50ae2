package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/outreach/internal/core"
)

func dedupeCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "dedupe <file>",
		Short: "Write a cleaned copy of a contact file",
		Long: `Normalize every phone number, drop duplicates and unreadable rows, and
write the result next to the input as <name>_deduped.csv. Use -o - for stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer in.Close()

			file, err := opts.newService(nil).Dedupe(cmd.Context(), core.FileRequest{
				FileName: args[0],
				Body:     in,
			})
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(file.Content)
				return err
			}
			if output == "" {
				output = filepath.Join(filepath.Dir(args[0]), file.FileName)
			}
			if err := os.WriteFile(output, file.Content, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			slog.Info("deduped contact file written",
				"output", output,
				"contacts", file.Result.TotalContacts,
				"duplicates", file.Result.Duplicates.Count,
				"invalid", file.Result.Invalid.Count,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d contacts, %d duplicates removed, %d invalid rows skipped\n",
				output, file.Result.TotalContacts, file.Result.Duplicates.Count, file.Result.Invalid.Count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default <name>_deduped.csv next to the input, - for stdout)")
	return cmd
}

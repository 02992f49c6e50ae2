package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/outreach/internal/contacts"
)

func inspectCmd(opts *rootOptions) *cobra.Command {
	var (
		asJSON bool
		show   int
	)
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a contact file",
		Long: `Parse a contact CSV and report the detected phone column, row and
contact counts, duplicate numbers and rows with unreadable numbers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.analyzeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Result)
			}
			if err := writeSummary(out, args[0], res.Result); err != nil {
				return err
			}
			if show > 0 && len(res.Result.Contacts) > 0 {
				fmt.Fprintln(out)
				n := min(show, len(res.Result.Contacts))
				return contacts.WriteCSV(out, res.Result.Contacts[:n], res.Result.FieldNames)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full parse result as JSON")
	cmd.Flags().IntVar(&show, "show", 0, "also print the first N contacts as CSV")
	return cmd
}

func writeSummary(w io.Writer, path string, res *contacts.ParseResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "File:\t%s\n", path)
	fmt.Fprintf(tw, "Phone column:\t%s -> %s\n", res.SourcePhoneColumn, res.PhoneColumnName)
	fmt.Fprintf(tw, "Fields:\t%s\n", strings.Join(res.FieldNames, ", "))
	fmt.Fprintf(tw, "Rows:\t%d\n", res.TotalRows)
	fmt.Fprintf(tw, "Contacts:\t%d\n", res.TotalContacts)
	fmt.Fprintf(tw, "Duplicates:\t%d\n", res.Duplicates.Count)
	if len(res.Duplicates.Numbers) > 0 {
		fmt.Fprintf(tw, "Duplicate numbers:\t%s\n", strings.Join(res.Duplicates.Numbers, ", "))
	}
	fmt.Fprintf(tw, "Invalid rows:\t%d\n", res.Invalid.Count)
	if len(res.Invalid.Lines) > 0 {
		lines := make([]string, len(res.Invalid.Lines))
		for i, l := range res.Invalid.Lines {
			lines[i] = fmt.Sprint(l)
		}
		fmt.Fprintf(tw, "Invalid lines:\t%s\n", strings.Join(lines, ", "))
	}
	return tw.Flush()
}

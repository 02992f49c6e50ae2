package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/outreach/internal/contacts"
)

func searchCmd(opts *rootOptions) *cobra.Command {
	var (
		fields    []string
		threshold float64
	)
	cmd := &cobra.Command{
		Use:   "search <file> <query>",
		Short: "Fuzzy-search the contacts in a file",
		Long: `Print, as CSV, the contacts whose fields contain the query or are
within a small edit distance of one of its words. Search all fields unless
--fields narrows it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.analyzeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			svc := opts.newService(nil)
			found := svc.SearchContacts(res.Result.Contacts, args[1], fields, threshold)
			return contacts.WriteCSV(cmd.OutOrStdout(), found, res.Result.FieldNames)
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "comma-separated fields to search (default all)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "maximum edit distance (default 3)")
	return cmd
}

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/outreach/internal/contacts"
)

func countriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the countries --country accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeCountries(cmd.OutOrStdout(), contacts.Countries())
		},
	}
}

func writeCountries(w io.Writer, list []contacts.Country) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ISO\tCODE\tDIGITS\tTRUNK\tNAME")
	for _, c := range list {
		trunk := c.TrunkPrefix
		if trunk == "" {
			trunk = "-"
		}
		fmt.Fprintf(tw, "%s\t+%s\t%d\t%s\t%s\n", c.ISO, c.CallingCode, c.NationalLength, trunk, c.Name)
	}
	return tw.Flush()
}

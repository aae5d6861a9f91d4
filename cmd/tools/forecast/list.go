package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crimecast/crimecast/internal/services"
)

func newListCmd(opts *options) *cobra.Command {
	var jurisdiction string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jurisdictions, or the categories of one jurisdiction",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := opts.loadStore(cfg)
			if err != nil {
				return err
			}
			return listSelections(cmd.OutOrStdout(), services.NewDatasetService(store), jurisdiction)
		},
	}

	cmd.Flags().StringVarP(&jurisdiction, "jurisdiction", "j", "", "list the categories of this jurisdiction")
	return cmd
}

func listSelections(out io.Writer, ds *services.DatasetService, jurisdiction string) error {
	if jurisdiction != "" {
		cats, err := ds.Categories(jurisdiction)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, strings.Join(cats, "\n"))
		return nil
	}

	summary := ds.Summary()
	for _, j := range ds.Jurisdictions() {
		cats, _ := ds.Categories(j)
		fmt.Fprintf(out, "%s (%d)\n", j, len(cats))
	}
	fmt.Fprintf(out, "%d records, dataset %s\n", summary.Records, summary.Version)
	return nil
}

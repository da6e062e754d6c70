package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/bigyambat/BioStream/palette"
)

func newTemplatesCmd() *cobra.Command {
	var category, query string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the node palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates := palette.Default().Filter(query, category)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(templates)
			}
			t := newTable("ID", "TYPE", "CATEGORY", "LABEL")
			for _, tpl := range templates {
				t.add(tpl.ID, string(tpl.Type), tpl.Category, tpl.Label)
			}
			t.render(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive search on label and description")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

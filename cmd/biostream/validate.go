package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	biostream "github.com/bigyambat/BioStream"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a workflow document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			p, err := biostream.ParseDocument(raw)
			if err != nil {
				color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "%s: invalid\n", args[0])
				return err
			}
			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(out, "%s: ok\n", args[0])
			fmt.Fprintf(out, "project %s %q: %d nodes, %d edges\n", p.ID, p.Name, len(p.Nodes), len(p.Edges))
			if order, err := biostream.TopologicalOrder(p.Nodes, p.Edges); err != nil {
				color.New(color.FgYellow).Fprintf(out, "warning: %v\n", err)
			} else {
				fmt.Fprintf(out, "run order: %v\n", order)
			}
			return nil
		},
	}
}

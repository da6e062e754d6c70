package main

import (
	"context"
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	biostream "github.com/bigyambat/BioStream"
)

func newSchemaCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the database tables",
	}
	cmd.AddCommand(schemaAction(g, "create", "Create the tables if missing", biostream.Store.CreateSchema))
	cmd.AddCommand(schemaAction(g, "drop", "Drop the tables and every saved project", biostream.Store.DropSchema))
	return cmd
}

func schemaAction(g *globalFlags, use, short string, run func(biostream.Store, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			store, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			if store == nil {
				return errors.New("no database configured")
			}
			if err := run(store, cmd.Context()); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "schema %s: ok (%s)\n", use, cfg.Database.Driver)
			return nil
		},
	}
}

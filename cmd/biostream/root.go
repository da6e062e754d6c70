package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bigyambat/BioStream/config"
	"github.com/bigyambat/BioStream/logging"
)

type globalFlags struct {
	configPath string
	envFiles   []string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "biostream",
		Short: "BioStream workflow editor server",
		Long: `BioStream hosts bioinformatics workflow editing sessions.

Examples:
  # Start the HTTP server with a config file
  biostream serve --config biostream.yaml

  # Create the database tables
  biostream schema create

  # List the node palette
  biostream templates

  # Check a workflow document
  biostream validate workflow.json`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", []string{".env"}, ".env files to load; missing files are skipped")

	root.AddCommand(newServeCmd(g))
	root.AddCommand(newSchemaCmd(g))
	root.AddCommand(newTemplatesCmd())
	root.AddCommand(newValidateCmd())
	return root
}

// setup loads the config and builds the logger.
func (g *globalFlags) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(g.configPath, g.envFiles...)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath   string
	backend      string
	path         string
	collection   string
	repairOnLoad bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "docarray",
		Short: "docarray CLI - inspect and maintain document collections",
		Long: `docarray opens a persisted document collection and runs maintenance or
inspection commands against it.

The collection is described by a YAML config file (--config) and can be
overridden with flags.

Examples:
  # List the collections of a bolt file
  docarray --path docs.db ls

  # Print the text of the first three documents
  docarray --path docs.db --collection books get '0:3#text'

  # Check the offset2id table against stored payloads
  docarray --config docarray.yaml verify`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "YAML config file")
	pf.StringVarP(&flags.backend, "backend", "b", "", "Backend: bolt|local|s3|minio")
	pf.StringVarP(&flags.path, "path", "p", "", "Bolt file or local blob directory")
	pf.StringVarP(&flags.collection, "collection", "n", "", "Collection name")
	pf.BoolVar(&flags.repairOnLoad, "repair-on-load", false, "Repair a diverged offset2id table when opening")

	load := func(cmd *cobra.Command) (Config, error) {
		cfg, err := loadConfig(flags.configPath)
		if err != nil {
			return cfg, err
		}
		if cmd.Flags().Changed("backend") {
			cfg.Backend = flags.backend
		}
		if cmd.Flags().Changed("path") {
			cfg.Path = flags.path
		}
		if cmd.Flags().Changed("collection") {
			cfg.Collection = flags.collection
		}
		if flags.repairOnLoad {
			cfg.RepairOnLoad = true
		}
		return cfg, cfg.validate()
	}

	root.AddCommand(
		newLsCmd(load),
		newLenCmd(load),
		newGetCmd(load),
		newDeleteCmd(load),
		newVerifyCmd(load),
		newRepairCmd(load),
		newExportCmd(load),
		newImportCmd(load),
	)
	return root
}

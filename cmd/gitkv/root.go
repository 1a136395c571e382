package main

import (
	"github.com/spf13/cobra"

	"github.com/lxr/gitkv/config"
)

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:   "gitkv",
		Short: "Git smart HTTP server over a key-value ref store",
		Long: `gitkv serves Git repositories over the smart HTTP protocol.  Refs are
read from a key-value store under "<owner>/<repo>/<refname>" keys;
pushed packfiles are decoded and logged but not stored.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the HCL configuration file")

	load := func() (*config.Config, error) {
		return config.Load(configPath)
	}
	root.AddCommand(
		newServeCmd(load),
		newUnpackCmd(),
		newPackCmd(),
		newRefsCmd(load),
		newVersionCmd(),
	)
	return root
}

// A configLoader returns the configuration selected by the --config
// flag.  It is called after flags are parsed.
type configLoader func() (*config.Config, error)

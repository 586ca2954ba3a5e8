package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd returns the root cobra command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dcipam",
		Short: "Generates data-center fabrics and assigns VLANs and IPv4 addressing to them",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

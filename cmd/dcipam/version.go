package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version",
		Run: func(cmd *cobra.Command, args []string) {
			v := viper.GetString(flagVersion)
			if v == "" {
				v = "unversioned"
			}
			fmt.Println(v)
		},
	}
}

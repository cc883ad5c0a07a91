package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridden at build time via -ldflags.
var Version = "v0.1.0-dev"

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show ip-gateway version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Println(Version)
			return nil
		},
	}
}

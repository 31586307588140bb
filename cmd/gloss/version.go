package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glosskit/gloss"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gloss",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gloss version %s\n", strings.TrimSpace(gloss.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

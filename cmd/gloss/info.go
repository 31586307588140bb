package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glosskit/gloss/internal/cli"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <page>",
	Short: "Print an edit-history summary for a page",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		debug, _ := cmd.Flags().GetBool("debug")
		if err := cli.RunInfo(cli.InfoOptions{Config: cfg, Page: args[0], Debug: debug}); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glosskit/gloss/internal/cli"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an annotation export file",
	Long: `Parses a JSON annotation export, normalizes the records and prints the
chapters they would produce. With --store the annotations are persisted so a
later review of the page can preload them.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		fallback, _ := cmd.Flags().GetString("section")
		page, _ := cmd.Flags().GetString("page")
		store, _ := cmd.Flags().GetBool("store")
		debug, _ := cmd.Flags().GetBool("debug")

		err = cli.RunImport(cli.ImportOptions{
			Config:          cfg,
			Path:            args[0],
			FallbackSection: fallback,
			Page:            page,
			Store:           store,
			Debug:           debug,
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("section", "", "Section path for records that carry none")
	importCmd.Flags().String("page", "", "Page title to store the annotations under")
	importCmd.Flags().Bool("store", false, "Persist the imported annotations")
}

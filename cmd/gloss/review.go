package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glosskit/gloss/internal/cli"
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review [heading-html]",
	Short: "Open an interactive review dialog",
	Long: `Opens a review dialog for a document heading. The heading's edit link
determines which page and section the finished review is appended to; pass
the heading HTML as the argument or via --heading.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		heading, _ := cmd.Flags().GetString("heading")
		if heading == "" && len(args) > 0 {
			heading = args[0]
		}
		loadStored, _ := cmd.Flags().GetBool("load")
		debug, _ := cmd.Flags().GetBool("debug")

		err = cli.RunReview(cli.ReviewOptions{
			Config:      cfg,
			HeadingHTML: heading,
			LoadStored:  loadStored,
			Debug:       debug,
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().String("heading", "", "Heading HTML carrying the section edit link")
	reviewCmd.Flags().Bool("load", false, "Preload the page's stored annotations")
}

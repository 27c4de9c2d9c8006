package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/backup"
)

var exportDir string

// exportCmd writes one markdown file per item to a directory.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all items to markdown files with YAML front matter",
	Long: `Export writes one markdown file per item to the target directory,
a YAML front-matter block of scalar fields followed by the item's content
as body. Import is not supported.`,
	Run: func(cmd *cobra.Command, args []string) {
		_, db := loadAndOpen()
		defer db.Close()

		result, err := backup.Export(context.Background(), db, exportDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("exported %d items to %s (run %s)\n", result.ItemCount, result.Dir, result.RunID)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "./export", "directory to write exported markdown files to")
	rootCmd.AddCommand(exportCmd)
}

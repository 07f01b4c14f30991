package cmd

import (
	"github.com/spf13/cobra"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Manage the face gallery",
	Long: `Build and inspect the gallery of reference face embeddings.
The gallery is built from a directory of reference images and stored either
as a single artifact file or in PostgreSQL (when DATABASE_URL is set).`,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
}

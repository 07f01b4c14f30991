package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "starmatch",
	Short: "A selfie-to-celebrity face matching service",
	Long: `Starmatch builds a gallery of face embeddings from reference images
and matches uploaded selfies against it. It ships a web server with a
single upload endpoint, a gallery builder, and a video scraper for
collecting reference face crops.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile  string
	logLevel string
	port     string
)

var rootCmd = &cobra.Command{
	Use:   "resume-analyzer",
	Short: "Résumé analysis API",
	Long: `resume-analyzer accepts résumé uploads, extracts their text and returns
AI-generated feedback. Each user may analyze one résumé.

Commands:
  serve  Start the HTTP API (default)`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

Configuration is read from the environment, after loading .env (or the file
given with --env-file).

Example:
  resume-analyzer serve --port 3001`,
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default is ./.env when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&port, "port", "", "override PORT")

	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

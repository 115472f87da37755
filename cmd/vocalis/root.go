// ABOUTME: Root command for the vocalis CLI
// ABOUTME: API key resolution, logging setup and shared flags
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vocalis-audio/vocalis-go/internal/version"
	"github.com/vocalis-audio/vocalis-go/pkg/client"
)

var (
	apiKey  string
	logFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:     "vocalis",
	Short:   "Speech synthesis from the command line",
	Version: version.Version,
	Long: `vocalis speaks text using the ElevenLabs API.

Audio starts playing while it is still downloading, so long passages
begin almost immediately. An API key is required, either via --api-key
or the VOCALIS_API_KEY environment variable.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if apiKey == "" {
			apiKey = os.Getenv("VOCALIS_API_KEY")
		}
		if apiKey == "" {
			return fmt.Errorf("no API key: set --api-key or VOCALIS_API_KEY")
		}

		if verbose {
			log.SetLevel(log.DebugLevel)
		}
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			log.SetOutput(f)
		}
		return nil
	},
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key (defaults to VOCALIS_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func newClient() *client.Client {
	return client.New(apiKey)
}

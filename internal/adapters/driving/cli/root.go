// Package cli provides the lexis command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services injected by main. Commands report "X service not configured"
// when the one they need is missing.
var (
	ingestionService driving.IngestionService
	retrievalService driving.RetrievalService
	answerService    driving.AnswerService
	documentService  driving.DocumentService
	settingsService  driving.SettingsService
	configStore      driven.ConfigStore
)

var rootCmd = &cobra.Command{
	Use:   "lexis",
	Short: "Ingest and retrieve legal documents",
	Long: `Lexis ingests legal documents (PDF, DOCX, TXT), splits them into
overlapping chunks, embeds each chunk and retrieves the passages most
similar to a question.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Services groups the core services the commands call.
type Services struct {
	Ingestion   driving.IngestionService
	Retrieval   driving.RetrievalService
	Answer      driving.AnswerService
	Document    driving.DocumentService
	Settings    driving.SettingsService
	ConfigStore driven.ConfigStore
}

// SetServices injects the core services.
func SetServices(s Services) {
	ingestionService = s.Ingestion
	retrievalService = s.Retrieval
	answerService = s.Answer
	documentService = s.Document
	settingsService = s.Settings
	configStore = s.ConfigStore
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

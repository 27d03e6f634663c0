package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// uploadFlags are shared by the ingest and watch commands.
type uploadFlags struct {
	owner    string
	docType  string
	citation string
	title    string
	public   bool
}

var ingestFlags uploadFlags

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]...",
	Short: "Ingest documents",
	Long: `Extracts text from each file, splits it into chunks, embeds the chunks
and stores the result. Supported formats: .pdf, .docx, .txt.

Each file is ingested independently; a failure does not stop the rest.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	addUploadFlags(ingestCmd, &ingestFlags)
	ingestCmd.Flags().StringVar(&ingestFlags.title, "title", "", "document title (single file only)")
	ingestCmd.Flags().StringVar(&ingestFlags.citation, "citation", "", "citation, e.g. [2020] UKSC 1")
	rootCmd.AddCommand(ingestCmd)
}

func addUploadFlags(cmd *cobra.Command, f *uploadFlags) {
	cmd.Flags().StringVarP(&f.owner, "owner", "o", "", "owning user ID")
	cmd.Flags().StringVarP(&f.docType, "type", "t", string(domain.DocumentTypeCase),
		"document type: case, statute, regulation, article")
	cmd.Flags().BoolVar(&f.public, "public", false, "make the document visible to all users")
}

func (f uploadFlags) upload(path string, content []byte) domain.Upload {
	return domain.Upload{
		FileName: filepath.Base(path),
		Content:  content,
		OwnerID:  f.owner,
		Title:    f.title,
		Type:     domain.DocumentType(f.docType),
		Citation: f.citation,
		Public:   f.public,
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}
	if ingestFlags.title != "" && len(args) > 1 {
		return errors.New("--title can only be used with a single file")
	}

	failed := 0
	for _, path := range args {
		if err := ingestFile(cmd.Context(), cmd, path, ingestFlags); err != nil {
			cmd.PrintErrf("  %s: %s (%v)\n", path, domain.ErrorCode(err), err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func ingestFile(ctx context.Context, cmd *cobra.Command, path string, f uploadFlags) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	result, err := ingestionService.Ingest(ctx, f.upload(path, content))
	if err != nil {
		return err
	}

	cmd.Printf("Ingested %s: document %s (%d chunks)\n", path, result.Document.ID, result.ChunkCount)
	return nil
}

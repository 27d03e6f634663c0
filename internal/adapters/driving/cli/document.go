package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
)

const timeLayout = "2006-01-02 15:04:05"

var errNoDocumentService = errors.New("document service not configured")

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect and remove ingested documents",
}

var (
	documentListUser string
	documentListType string
)

func init() {
	list := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Long:  `Lists public documents and, with --user, that user's private documents.`,
		Args:  cobra.NoArgs,
		RunE:  withDocuments(runDocumentList),
	}
	list.Flags().StringVarP(&documentListUser, "user", "u", "", "include this user's private documents")
	list.Flags().StringVarP(&documentListType, "type", "t", "", "only documents of this type")

	documentCmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "get <doc-id>",
			Short: "Show a document's summary",
			Args:  cobra.ExactArgs(1),
			RunE:  withDocuments(runDocumentGet),
		},
		&cobra.Command{
			Use:   "content <doc-id>",
			Short: "Print the text rebuilt from stored chunks",
			Args:  cobra.ExactArgs(1),
			RunE:  withDocuments(runDocumentContent),
		},
		&cobra.Command{
			Use:   "details <doc-id>",
			Short: "Show a document with its metadata",
			Args:  cobra.ExactArgs(1),
			RunE:  withDocuments(runDocumentDetails),
		},
		&cobra.Command{
			Use:   "delete <doc-id>",
			Short: "Delete a document and its chunks",
			Args:  cobra.ExactArgs(1),
			RunE:  withDocuments(runDocumentDelete),
		},
	)
	rootCmd.AddCommand(documentCmd)
}

type documentRunner func(cmd *cobra.Command, svc driving.DocumentService, args []string) error

// withDocuments fails the command early when no document service is wired.
func withDocuments(run documentRunner) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if documentService == nil {
			return errNoDocumentService
		}
		return run(cmd, documentService, args)
	}
}

func runDocumentList(cmd *cobra.Command, svc driving.DocumentService, _ []string) error {
	filter := domain.CorpusFilter{OwnerID: documentListUser}
	if documentListType != "" {
		filter.Types = []domain.DocumentType{domain.DocumentType(documentListType)}
	}

	docs, err := svc.List(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tACCESS\tTITLE\tCITATION")
	for i := range docs {
		d := &docs[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Type, visibility(d), d.Title, d.Citation)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, svc driving.DocumentService, args []string) error {
	doc, err := svc.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	return printFields(cmd.OutOrStdout(), [][2]string{
		{"Title", doc.Title},
		{"Type", string(doc.Type)},
		{"Citation", doc.Citation},
		{"Access", visibility(doc)},
		{"Created", doc.CreatedAt.Format(timeLayout)},
	})
}

func runDocumentContent(cmd *cobra.Command, svc driving.DocumentService, args []string) error {
	content, err := svc.GetContent(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("reading document content: %w", err)
	}
	cmd.Println(content)
	return nil
}

func runDocumentDetails(cmd *cobra.Command, svc driving.DocumentService, args []string) error {
	d, err := svc.GetDetails(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("reading document details: %w", err)
	}

	cmd.Printf("Document Details: %s\n\n", d.ID)
	err = printFields(cmd.OutOrStdout(), [][2]string{
		{"Title", d.Title},
		{"Type", string(d.Type)},
		{"Citation", d.Citation},
		{"Owner", d.OwnerID},
		{"Public", fmt.Sprint(d.Public)},
		{"Chunks", fmt.Sprint(d.ChunkCount)},
		{"Created", d.CreatedAt.Format(timeLayout)},
	})
	if err != nil || len(d.Metadata) == 0 {
		return err
	}

	cmd.Println("\n  Metadata:")
	for _, k := range slices.Sorted(maps.Keys(d.Metadata)) {
		cmd.Printf("    %s: %s\n", k, d.Metadata[k])
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, svc driving.DocumentService, args []string) error {
	if err := svc.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

// printFields writes aligned "label: value" rows, skipping empty values.
func printFields(w io.Writer, rows [][2]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(tw, "  %s:\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

func visibility(doc *domain.Document) string {
	switch {
	case doc.Public:
		return "public"
	case doc.OwnerID != "":
		return "private to " + doc.OwnerID
	}
	return "private"
}


package cli

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show [ref]",
	Short: "Show a mirrored document",
	Long: `Shows the normalised record of a document: title, type, metadata,
detected entities and every source path with the same content.

The reference is a content hash or a path indexed by a previous sync.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage mirrored documents",
	Long:  `List mirrored documents, print their text, or open their sources.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mirrored documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [ref]",
	Short: "Print the extracted text of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentOpenCmd = &cobra.Command{
	Use:   "open [ref]",
	Short: "Open the source file in the default application",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentOpen,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output the record as JSON")
	rootCmd.AddCommand(showCmd)

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentOpenCmd)
	rootCmd.AddCommand(documentCmd)
}

func resolveDocument(cmd *cobra.Command, ref string) (*driving.DocumentDetails, error) {
	if documentService == nil {
		return nil, errors.New("document service not configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return documentService.Resolve(ctx, ref)
}

func runShow(cmd *cobra.Command, args []string) error {
	details, err := resolveDocument(cmd, args[0])
	if err != nil {
		return err
	}
	doc := details.Document

	if showJSON {
		return writeJSON(cmd.OutOrStdout(), struct {
			*domain.NormalizedDocument
			Paths []string
		}{doc, details.Paths})
	}

	p := newPrinter(cmd.OutOrStdout())
	p.printf("%s %s\n\n", p.heading("Document:"), doc.Hash)
	p.printf("  Title:      %s\n", doc.Title)
	p.printf("  Type:       %s (%s)\n", doc.MIMEType, doc.Format)
	if doc.Metadata.Language != "" {
		p.printf("  Language:   %s\n", doc.Metadata.Language)
	}
	if doc.Metadata.Author != "" {
		p.printf("  Author:     %s\n", doc.Metadata.Author)
	}
	if doc.Metadata.CreatedAt != nil {
		p.printf("  Created:    %s\n", doc.Metadata.CreatedAt.Format(time.DateTime))
	}
	if doc.Metadata.PageCount > 0 {
		p.printf("  Pages:      %d\n", doc.Metadata.PageCount)
	}
	p.printf("  Normalised: %s\n", doc.NormalizedAt.Local().Format(time.DateTime))

	p.println("\n  Paths:")
	for _, path := range details.Paths {
		p.printf("    %s\n", p.path(path))
	}

	if doc.Summary != "" {
		p.printf("\n  Summary:\n    %s\n", doc.Summary)
	}

	if len(doc.Entities) > 0 {
		p.println("\n  Entities:")
		for _, e := range doc.Entities {
			p.printf("    %-8s %s\n", e.Type, e.Text)
		}
	}

	if len(doc.Metadata.Extra) > 0 {
		p.println("\n  Metadata:")
		keys := make([]string, 0, len(doc.Metadata.Extra))
		for k := range doc.Metadata.Extra {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			p.printf("    %s: %s\n", k, doc.Metadata.Extra[k])
		}
	}
	return nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	docs, err := documentService.List(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		cmd.Println("No documents mirrored yet.")
		return nil
	}

	p := newPrinter(cmd.OutOrStdout())
	for _, d := range docs {
		p.printf("  %s  %s\n", p.dim(shortHash(d.Document.Hash)), p.path(strings.Join(d.Paths, ", ")))
		if d.Document.Title != "" {
			p.printf("                %s\n", d.Document.Title)
		}
	}
	p.printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	details, err := resolveDocument(cmd, args[0])
	if err != nil {
		return err
	}
	cmd.Println(details.Document.Text)
	return nil
}

func runDocumentOpen(cmd *cobra.Command, args []string) error {
	if actionService == nil {
		return errors.New("result actions not configured")
	}
	details, err := resolveDocument(cmd, args[0])
	if err != nil {
		return err
	}
	if len(details.Paths) == 0 {
		return domain.NewError(domain.KindNotFound, "document %s has no source path", shortHash(details.Document.Hash))
	}

	result := &domain.SearchResult{Hash: details.Document.Hash, Path: details.Paths[0]}
	if err := actionService.OpenDocument(cmd.Context(), result); err != nil {
		return err
	}
	cmd.Printf("Opened %s in default application.\n", details.Paths[0])
	return nil
}

package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

var (
	searchMode   string
	searchLimit  int
	searchOffset int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search mirrored documents",
	Long: `Searches every synchronised document in one of three modes:

  keyword   tf-idf ranking over the extracted text (default)
  context   semantic similarity of embeddings (alias: semantic)
  filename  prefix and fuzzy matching of source paths (alias: name)`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "", "search mode: keyword, context or filename")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = configured default)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results, err := searchService.Search(ctx, domain.SearchQuery{
		Query:  args[0],
		Mode:   domain.SearchMode(searchMode),
		Limit:  searchLimit,
		Offset: searchOffset,
	})
	if err != nil {
		return err
	}

	if searchJSON {
		if results == nil {
			results = []domain.SearchResult{}
		}
		return writeJSON(cmd.OutOrStdout(), results)
	}
	outputSearchTable(newPrinter(cmd.OutOrStdout()), results)
	return nil
}

func outputSearchTable(p *printer, results []domain.SearchResult) {
	if len(results) == 0 {
		p.println("No results found.")
		return
	}

	p.println(p.heading("Results:"))
	p.println()
	for i := range results {
		r := &results[i]
		// Format: [N] path (score)
		p.printf("  [%d] %s %s\n", i+1, p.path(r.Path), p.dim("("+formatScore(r.Score)+")"))
		if r.Title != "" && r.Title != r.Path {
			p.printf("      %s\n", r.Title)
		}
		if r.Snippet != "" {
			p.printf("      %s\n", strings.ReplaceAll(r.Snippet, "\n", " "))
		}
		p.println()
	}
}

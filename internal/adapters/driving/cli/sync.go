package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// progressInterval is how often sync progress is polled.
var progressInterval = 500 * time.Millisecond

var (
	syncOut   string
	syncWatch bool
	syncJSON  bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [root]",
	Short: "Mirror a directory into an output directory",
	Long: `Normalises every document under root and writes one converted file per
source into the output directory, mirroring the source layout. Consecutive
runs are incremental: only added, modified and removed files are processed.

Without a root, every previously synchronised root is resynchronised into
its previous output directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncOut, "out", "o", "", "output directory (defaults to the root's previous output)")
	syncCmd.Flags().BoolVarP(&syncWatch, "watch", "w", false, "keep running and resync on every change")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "output the changeset as JSON")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 0 {
		if syncWatch {
			return domain.NewError(domain.KindInvalidInput, "--watch needs a root")
		}
		cmd.Println("Resynchronising all roots...")
		n, err := syncService.SyncAll(ctx)
		cmd.Printf("Resynchronised %d roots.\n", n)
		return err
	}

	root := args[0]
	if syncWatch {
		cmd.Printf("Watching %s (Ctrl+C to stop)...\n", root)
		return syncService.Watch(ctx, root, syncOut)
	}

	result, err := syncWithProgress(ctx, cmd, syncService, root, syncOut)
	var partial *domain.PartialSyncFailure
	if err != nil && !errors.As(err, &partial) {
		return err
	}

	summary := result.Changeset.Summary()
	if syncJSON {
		if jerr := writeJSON(cmd.OutOrStdout(), summary); jerr != nil {
			return jerr
		}
		return err
	}
	printChangeset(newPrinter(cmd.OutOrStdout()), result, summary)
	return err
}

// syncWithProgress runs a sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	syncer driving.Synchronizer,
	root, out string,
) (*driving.SyncResult, error) {
	type outcome struct {
		result *driving.SyncResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := syncer.SyncRoot(ctx, root, out)
		done <- outcome{result, err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case o := <-done:
			if lastCount > 0 {
				cmd.Println()
			}
			return o.result, o.err
		case <-ticker.C:
			status := syncer.Status()
			if status.Running && status.DocumentsProcessed > lastCount {
				cmd.Printf("\rProcessing... %d files (%d errors)", status.DocumentsProcessed, status.ErrorCount)
				lastCount = status.DocumentsProcessed
			}
		}
	}
}

func printChangeset(p *printer, result *driving.SyncResult, summary domain.ChangesetSummary) {
	if result.Snapshot != nil {
		p.printf("%s %s -> %s\n", p.heading("Synchronised"), p.path(result.Snapshot.Root), p.path(result.Snapshot.OutputDir))
	}
	p.printf("  added %d, modified %d, removed %d, failed %d\n",
		summary.Added, summary.Modified, summary.Removed, len(summary.Failed))
	for _, f := range summary.Failed {
		line := fmt.Sprintf("  ! %s: %s", f.Path, f.Reason)
		if f.Kind != "" {
			line = fmt.Sprintf("  ! %s: %s: %s", f.Path, f.Kind, f.Reason)
		}
		p.println(p.failure(line))
	}
}

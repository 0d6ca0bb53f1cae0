package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmirror/internal/adapters/driving/tui"
	"github.com/custodia-labs/docmirror/internal/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for docmirror.

The TUI searches mirrored documents by keyword, semantic context or file
name, browses the document list, resyncs stored roots and shares session
tokens. Background tasks run while it is open.

Controls:
  ↑/k, ↓/j - Navigate
  Tab      - Cycle search mode
  Enter    - Search / Select
  p        - Toggle snippet preview
  Esc      - Back / Cancel
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

// runProgram runs the bubbletea model. Tests replace it.
var runProgram = func(ctx context.Context, m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI ports from the bootstrapped services.
func tuiPorts() *tui.Ports {
	ports := &tui.Ports{
		Search:       searchService,
		Sync:         syncService,
		Document:     documentService,
		ResultAction: actionService,
		Session:      sessionService,
	}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			ports.DefaultMode = settings.Search.DefaultMode
		}
	}
	return ports
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Slog().Error("panic in TUI", "panic", r, "stack", string(debug.Stack()))
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			err = fmt.Errorf("tui panicked: %v", r)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	defer startScheduler(ctx)()

	if err := runProgram(ctx, app); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

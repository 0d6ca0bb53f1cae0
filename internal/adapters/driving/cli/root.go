// Package cli provides the docmirror command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
	"github.com/custodia-labs/docmirror/internal/logger"
)

// Command annotations that select how much of the application a command
// needs built before it runs.
const (
	skipBootstrap = "docmirror/skip-bootstrap"
	settingsOnly  = "docmirror/settings-only"
)

// Services holds the driving ports the commands call into.
type Services struct {
	Sync            driving.Synchronizer
	Search          driving.SearchService
	Document        driving.DocumentService
	Conversion      driving.ConversionService
	Session         driving.SessionService
	Settings        driving.SettingsService
	ResultAction    driving.ResultActionService
	Scheduler       driving.Scheduler
	SchedulerConfig domain.SchedulerConfig
}

// Bootstrap builds the services for a command from the config directory.
// The returned cleanup releases what the services hold open.
type Bootstrap func(ctx context.Context, configDir string) (*Services, func(), error)

// SettingsBootstrap opens only the settings for commands that edit them.
type SettingsBootstrap func(configDir string) (driving.SettingsService, error)

var (
	version   = "dev"
	verbose   bool
	configDir string

	bootstrap         Bootstrap
	settingsBootstrap SettingsBootstrap
	cleanup           func()

	syncService       driving.Synchronizer
	searchService     driving.SearchService
	documentService   driving.DocumentService
	conversionService driving.ConversionService
	sessionService    driving.SessionService
	settingsService   driving.SettingsService
	actionService     driving.ResultActionService
	scheduler         driving.Scheduler
	schedulerConfig   domain.SchedulerConfig
)

var rootCmd = &cobra.Command{
	Use:   "docmirror",
	Short: "Mirror, index and search a directory of documents",
	Long: `docmirror normalises the documents under a directory into structured
records, mirrors them into an output directory as XML, JSON, CSV or YAML,
and searches them by keyword, semantic context or filename.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.docmirror)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap installs the function that builds services before a command
// runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetSettingsBootstrap installs the function that opens the settings for
// the config commands.
func SetSettingsBootstrap(b SettingsBootstrap) {
	settingsBootstrap = b
}

// SetServices installs already-built services.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	syncService = s.Sync
	searchService = s.Search
	documentService = s.Document
	conversionService = s.Conversion
	sessionService = s.Session
	settingsService = s.Settings
	actionService = s.ResultAction
	scheduler = s.Scheduler
	schedulerConfig = s.SchedulerConfig
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}
	if cmd.Annotations[settingsOnly] == "true" {
		if settingsBootstrap == nil {
			return nil
		}
		svc, err := settingsBootstrap(configDir)
		if err != nil {
			return err
		}
		settingsService = svc
		return nil
	}
	if bootstrap == nil {
		return nil
	}

	services, done, err := bootstrap(cmd.Context(), configDir)
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

// Execute runs the root command and returns the process exit code.
// Failures are printed to errOut as "Kind: detail".
func Execute(ctx context.Context, errOut io.Writer) int {
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, errorLine(err))
		return 1
	}
	return 0
}

// errorLine renders err for the terminal. Classified failures print as
// their kind and detail without the wrapping context.
func errorLine(err error) string {
	var partial *domain.PartialSyncFailure
	if errors.As(err, &partial) {
		return partial.Error()
	}
	var e *domain.Error
	if errors.As(err, &e) {
		return e.Error()
	}
	if errors.Is(err, context.Canceled) {
		return "interrupted"
	}
	return "error: " + err.Error()
}

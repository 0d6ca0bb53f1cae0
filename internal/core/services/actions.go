package services

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/atotto/clipboard"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
	"github.com/custodia-labs/docmirror/internal/core/ports/driving"
)

// Operating system identifiers.
const (
	osDarwin  = "darwin"
	osLinux   = "linux"
	osWindows = "windows"
)

// Ensure ResultActionService implements the interface.
var _ driving.ResultActionService = (*ResultActionService)(nil)

// ResultActionService acts on search results: locating, opening and
// copying the source file behind a hit.
type ResultActionService struct {
	snapshots driven.SnapshotStore
	copyText  func(string) error
	open      func(string) error
}

// NewResultActionService creates a new result action service.
func NewResultActionService(snapshots driven.SnapshotStore) *ResultActionService {
	return &ResultActionService{
		snapshots: snapshots,
		copyText:  clipboard.WriteAll,
		open:      openPath,
	}
}

// Locate returns the absolute source path of a result. The result's path
// is matched against every stored root; the hash disambiguates roots that
// share a relative path.
func (s *ResultActionService) Locate(ctx context.Context, result *domain.SearchResult) (string, error) {
	if result == nil {
		return "", domain.NewError(domain.KindInvalidInput, "result is nil")
	}
	roots, err := s.snapshots.ListRoots(ctx)
	if err != nil {
		return "", fmt.Errorf("list roots: %w", err)
	}

	fallback := ""
	for _, root := range roots {
		snap, err := s.snapshots.LoadSnapshot(ctx, root)
		if err != nil {
			return "", fmt.Errorf("load snapshot %s: %w", root, err)
		}
		entry, ok := snap.Get(result.Path)
		if !ok {
			continue
		}
		abs := filepath.Join(snap.Root, filepath.FromSlash(entry.Path))
		if entry.Hash == result.Hash {
			return abs, nil
		}
		if fallback == "" {
			fallback = abs
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", domain.NewError(domain.KindNotFound, "%s is not in any synchronised root", result.Path)
}

// CopyToClipboard copies the result's absolute source path.
func (s *ResultActionService) CopyToClipboard(ctx context.Context, result *domain.SearchResult) error {
	p, err := s.Locate(ctx, result)
	if err != nil {
		return err
	}
	return s.copyText(p)
}

// OpenDocument opens the result's source file in the default application.
func (s *ResultActionService) OpenDocument(ctx context.Context, result *domain.SearchResult) error {
	p, err := s.Locate(ctx, result)
	if err != nil {
		return err
	}
	return s.open(p)
}

// openPath hands a file to the platform's default opener.
func openPath(p string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("open", p)
	case osLinux:
		cmd = exec.Command("xdg-open", p)
	case osWindows:
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", p)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

// LoadSnapshot returns the stored snapshot, or an empty one for new roots.
func (s *snapshotStore) LoadSnapshot(ctx context.Context, root string) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot(root)

	var takenAt int64
	err := s.store.db.QueryRowContext(ctx,
		"SELECT output_dir, taken_at FROM roots WHERE root = ?", root).
		Scan(&snap.OutputDir, &takenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading root %s: %w", root, err)
	}
	snap.TakenAt = fromUnixNano(takenAt)

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT path, hash, size, mod_time, mime_type
		FROM snapshot_entries WHERE root = ?
	`, root)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.SourceEntry
		var modTime int64
		if err := rows.Scan(&e.Path, &e.Hash, &e.Size, &modTime, &e.MIMEType); err != nil {
			return nil, fmt.Errorf("scanning snapshot entry: %w", err)
		}
		e.ModTime = fromUnixNano(modTime)
		snap.Entries[e.Path] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot entries: %w", err)
	}
	return snap, nil
}

// SaveSnapshot replaces the stored snapshot in a single transaction, so a
// crash leaves either the previous or the new snapshot.
func (s *snapshotStore) SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil || snap.Root == "" {
		return domain.NewError(domain.KindInvalidInput, "snapshot without root")
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO roots (root, output_dir, taken_at) VALUES (?, ?, ?)
		ON CONFLICT(root) DO UPDATE SET
			output_dir = excluded.output_dir,
			taken_at = excluded.taken_at
	`, snap.Root, snap.OutputDir, unixNano(snap.TakenAt))
	if err != nil {
		return fmt.Errorf("saving root: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_entries WHERE root = ?", snap.Root); err != nil {
		return fmt.Errorf("clearing snapshot entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_entries (root, path, hash, size, mod_time, mime_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, path := range snap.Paths() {
		e := snap.Entries[path]
		if _, err := stmt.ExecContext(ctx, snap.Root, path, e.Hash, e.Size,
			unixNano(e.ModTime), e.MIMEType); err != nil {
			return fmt.Errorf("saving snapshot entry %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListRoots returns every root with a stored snapshot, sorted.
func (s *snapshotStore) ListRoots(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT root FROM roots ORDER BY root")
	if err != nil {
		return nil, fmt.Errorf("querying roots: %w", err)
	}
	defer rows.Close()

	var roots []string
	for rows.Next() {
		var root string
		if err := rows.Scan(&root); err != nil {
			return nil, fmt.Errorf("scanning root: %w", err)
		}
		roots = append(roots, root)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating roots: %w", err)
	}
	return roots, nil
}

// DeleteSnapshot forgets a root; its entries cascade.
func (s *snapshotStore) DeleteSnapshot(ctx context.Context, root string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM roots WHERE root = ?", root); err != nil {
		return fmt.Errorf("deleting root: %w", err)
	}
	return nil
}

package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"macrodash/internal/catalog"
	"macrodash/internal/workbook"
)

// Store holds the current snapshot and swaps it atomically on reload.
// Readers never block on a reload in progress.
type Store struct {
	source  workbook.Source
	cat     *catalog.Catalog
	logger  *slog.Logger
	current atomic.Pointer[Snapshot]
	loaded  atomic.Bool

	reload    sync.Mutex
	listeners []func(*Snapshot)
}

// NewStore creates a store that starts with an empty snapshot.
func NewStore(source workbook.Source, cat *catalog.Catalog, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		source: source,
		cat:    cat,
		logger: logger.With(slog.String("component", "dataset")),
	}
	s.current.Store(Build(workbook.Empty(source.String()), cat))
	return s
}

// OnLoad registers fn to run after every successful load.
func (s *Store) OnLoad(fn func(*Snapshot)) {
	s.reload.Lock()
	defer s.reload.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Current returns the snapshot in use.
func (s *Store) Current() *Snapshot { return s.current.Load() }

// Loaded reports whether a load has completed since startup.
func (s *Store) Loaded() bool { return s.loaded.Load() }

// Source describes where snapshots are loaded from.
func (s *Store) Source() string { return s.source.String() }

// Load reads the source and replaces the current snapshot. A missing
// workbook yields an empty snapshot carrying a warning. Any other failure
// keeps the previous snapshot and is returned.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	s.reload.Lock()
	defer s.reload.Unlock()

	wb, err := s.source.Load(ctx)
	switch {
	case errors.Is(err, workbook.ErrWorkbookNotFound):
		msg := fmt.Sprintf("workbook %s not found; no data loaded", s.source)
		s.logger.WarnContext(ctx, "workbook not found", slog.String("source", s.source.String()))
		wb = workbook.Empty(s.source.String(), msg)
	case err != nil:
		s.logger.ErrorContext(ctx, "failed to load workbook",
			slog.String("source", s.source.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("load %s: %w", s.source, err)
	}

	snap := Build(wb, s.cat)
	s.current.Store(snap)
	s.loaded.Store(true)

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", s.source.String()),
		slog.Int("sheets", len(wb.SheetNames())),
		slog.Int("merged_rows", snap.Merged().Len()),
		slog.Int("monthly_rows", snap.Monthly().Len()),
		slog.Int("warnings", len(snap.Warnings())))
	for _, w := range snap.Warnings() {
		s.logger.WarnContext(ctx, "dataset warning", slog.String("warning", w))
	}

	for _, fn := range s.listeners {
		fn(snap)
	}
	return snap, nil
}

// Package sysstate wraps the Storage Engine's SystemState operations in
// the transaction boundary the rest of the core uses, giving
// get_current_state/update_current_state/checkpoint a single call each
// (spec §4.9).
package sysstate

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/coreerr"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

// Service exposes the System State operations.
type Service struct {
	db          *store.Store
	readTimeout time.Duration
}

// New constructs a Service over db. readTimeout bounds the reads
// (GetCurrent, ListCheckpoints); a non-positive value falls back to 10s
// (spec §5, config Retrieval.ReadTimeout).
func New(db *store.Store, readTimeout time.Duration) *Service {
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	return &Service{db: db, readTimeout: readTimeout}
}

// wrapTimeout turns a context deadline expiry into the wire-visible
// coreerr.KindTimeout, the same convention internal/search uses.
func wrapTimeout(err error) error {
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return coreerr.New(coreerr.KindTimeout, "read timed out")
	}
	return err
}

// GetCurrent returns the active state, creating a default one on first
// call.
func (s *Service) GetCurrent(ctx context.Context) (*store.SystemState, error) {
	ctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	var result *store.SystemState
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		st, err := store.GetCurrentState(ctx, tx)
		if err != nil {
			return err
		}
		result = st
		return nil
	})
	return result, wrapTimeout(err)
}

// UpdateRequest carries the three mutable fields update_current_state
// accepts (spec §4.9); an empty string leaves that field unchanged, same
// convention as the rest of this package's callers.
type UpdateRequest struct {
	Content  string
	Tags     []string
	Metadata string
}

// Update replaces the active row's mutable fields and bumps updated_at.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*store.SystemState, error) {
	var result *store.SystemState
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		st, err := store.UpdateCurrentState(ctx, tx, &store.SystemState{
			Content: req.Content,
			Tags:    req.Tags,
			Metadata: req.Metadata,
		})
		if err != nil {
			return err
		}
		result = st
		return nil
	})
	return result, err
}

// Checkpoint clones the active row into a named history entry.
func (s *Service) Checkpoint(ctx context.Context, name string) (*store.SystemState, error) {
	var result *store.SystemState
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		st, err := store.Checkpoint(ctx, tx, name)
		if err != nil {
			return err
		}
		result = st
		return nil
	})
	return result, err
}

// ListCheckpoints returns every retained checkpoint, most recent first.
func (s *Service) ListCheckpoints(ctx context.Context) ([]*store.SystemState, error) {
	ctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	var result []*store.SystemState
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		list, err := store.ListCheckpoints(ctx, tx)
		if err != nil {
			return err
		}
		result = list
		return nil
	})
	return result, wrapTimeout(err)
}

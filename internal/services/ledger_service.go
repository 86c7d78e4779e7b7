// Package services – LedgerService
//
// This file adapts the story_votes repository functions to the
// reaction.Ledger and reaction.Switcher contracts. It owns the translation of
// repository errors into ledger semantics: a duplicate row becomes
// ErrConflict, a missing story becomes ErrStoryNotFound, and every other
// error is passed through as a store failure.
package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/cuentos-backend/internal/domain"
	"github.com/tbourn/cuentos-backend/internal/reaction"
	"github.com/tbourn/cuentos-backend/internal/repo"
)

// LedgerService is the SQL-backed reaction ledger.
type LedgerService struct {
	DB *gorm.DB
}

var (
	_ reaction.Ledger   = (*LedgerService)(nil)
	_ reaction.Switcher = (*LedgerService)(nil)
)

func ledgerSpan(ctx context.Context, op, storyID string) (context.Context, trace.Span) {
	return otel.Tracer("services/LedgerService").Start(ctx, op,
		trace.WithAttributes(attribute.String("story.id", storyID)),
	)
}

// GetActiveReaction implements reaction.Ledger.
func (s *LedgerService) GetActiveReaction(ctx context.Context, storyID, voter string) (domain.ReactionType, bool, error) {
	ctx, span := ledgerSpan(ctx, "GetActiveReaction", storyID)
	defer span.End()

	r, err := repo.GetActiveReaction(ctx, s.DB, storyID, voter)
	if err != nil {
		return "", false, err
	}
	if r == nil {
		return "", false, nil
	}
	return r.ReactionType, true, nil
}

// InsertReaction implements reaction.Ledger.
func (s *LedgerService) InsertReaction(ctx context.Context, storyID, voter string, t domain.ReactionType) error {
	ctx, span := ledgerSpan(ctx, "InsertReaction", storyID)
	defer span.End()

	_, err := repo.InsertReaction(ctx, s.DB, storyID, voter, t)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrDuplicate) || isDuplicate(err):
		return ErrConflict
	case errors.Is(err, repo.ErrNotFound):
		return ErrStoryNotFound
	}
	return err
}

// DeleteReaction implements reaction.Ledger.
func (s *LedgerService) DeleteReaction(ctx context.Context, storyID, voter string) error {
	ctx, span := ledgerSpan(ctx, "DeleteReaction", storyID)
	defer span.End()

	_, err := repo.DeleteReaction(ctx, s.DB, storyID, voter)
	return err
}

// SwitchReaction implements reaction.Switcher. A missing row is reported as
// ErrConflict so the controller re-reads instead of guessing.
func (s *LedgerService) SwitchReaction(ctx context.Context, storyID, voter string, to domain.ReactionType) error {
	ctx, span := ledgerSpan(ctx, "SwitchReaction", storyID)
	defer span.End()

	_, err := repo.SwitchReaction(ctx, s.DB, storyID, voter, to)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrConflict
	}
	return err
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to repo.ErrDuplicate.
func isDuplicate(err error) bool {
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

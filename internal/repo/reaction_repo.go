// Package repo implements the data persistence layer for stories and the
// reaction ledger, backed by GORM. This file provides the ledger functions
// over the story_votes table.
//
// Every successful insert or delete adjusts the owning story's counter in the
// same transaction. Decrements are clamped at zero, so a counter that has
// drifted below the true row count stays at zero instead of going negative.
//
// Error semantics:
//   - GetActiveReaction returns (nil, nil) when no row exists.
//   - InsertReaction returns ErrDuplicate when the (story, voter) pair already
//     has a row and ErrNotFound when the story does not exist.
//   - DeleteReaction treats an absent row as success.
//   - SwitchReaction returns ErrNotFound when there is no row to switch.
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/cuentos-backend/internal/domain"
)

// counterColumn maps a reaction type to its stories counter column.
func counterColumn(t domain.ReactionType) (string, error) {
	switch t {
	case domain.ReactionRedFlag:
		return "reactions_red_flag", nil
	case domain.ReactionClown:
		return "reactions_clown", nil
	case domain.ReactionWow:
		return "reactions_wow", nil
	}
	return "", fmt.Errorf("repo: unknown reaction type %q", t)
}

// GetActiveReaction returns the voter's reaction on storyID, or nil when the
// voter has none.
func GetActiveReaction(ctx context.Context, db *gorm.DB, storyID, voter string) (*domain.Reaction, error) {
	var rows []domain.Reaction
	err := db.WithContext(ctx).
		Where("story_id = ? AND voter_fingerprint = ?", storyID, voter).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// InsertReaction records voter's reaction t on storyID and increments the
// matching counter.
func InsertReaction(ctx context.Context, db *gorm.DB, storyID, voter string, t domain.ReactionType) (*domain.Reaction, error) {
	col, err := counterColumn(t)
	if err != nil {
		return nil, err
	}
	r := &domain.Reaction{
		ID:               uuid.NewString(),
		StoryID:          storyID,
		VoterFingerprint: voter,
		ReactionType:     t,
		CreatedAt:        time.Now().UTC(),
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Taking the story row first also grabs SQLite's write lock up front.
		if err := bumpCounter(tx, storyID, col, 1); err != nil {
			return err
		}
		if err := tx.Create(r).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		return syncTotal(tx, storyID)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteReaction removes voter's reaction on storyID, if any, and decrements
// the matching counter (floor 0). It returns the removed row, or nil when
// there was nothing to remove.
func DeleteReaction(ctx context.Context, db *gorm.DB, storyID, voter string) (*domain.Reaction, error) {
	var removed *domain.Reaction
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := GetActiveReaction(ctx, tx, storyID, voter)
		if err != nil || cur == nil {
			return err
		}
		col, err := counterColumn(cur.ReactionType)
		if err != nil {
			return err
		}
		res := tx.Where("id = ?", cur.ID).Delete(&domain.Reaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := bumpCounter(tx, storyID, col, -1); err != nil {
			return err
		}
		removed = cur
		return syncTotal(tx, storyID)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// SwitchReaction changes the type of voter's existing reaction on storyID to
// t as a single-row update, moving one unit between the two counters in the
// same transaction. Switching to the current type is a no-op.
func SwitchReaction(ctx context.Context, db *gorm.DB, storyID, voter string, t domain.ReactionType) (*domain.Reaction, error) {
	to, err := counterColumn(t)
	if err != nil {
		return nil, err
	}
	var out *domain.Reaction
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := GetActiveReaction(ctx, tx, storyID, voter)
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrNotFound
		}
		if cur.ReactionType == t {
			out = cur
			return nil
		}
		from, err := counterColumn(cur.ReactionType)
		if err != nil {
			return err
		}
		if err := tx.Model(&domain.Reaction{}).Where("id = ?", cur.ID).
			Update("reaction_type", t).Error; err != nil {
			return err
		}
		res := tx.Model(&domain.Story{}).Where("id = ?", storyID).Updates(map[string]any{
			from: counterExpr(from, -1),
			to:   counterExpr(to, 1),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		cur.ReactionType = t
		out = cur
		return syncTotal(tx, storyID)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// counterExpr returns the SQL expression moving col by delta, clamped at 0
// for decrements.
func counterExpr(col string, delta int) clause.Expr {
	if delta < 0 {
		return gorm.Expr("MAX("+col+" - ?, 0)", -delta)
	}
	return gorm.Expr(col+" + ?", delta)
}

// bumpCounter moves one counter column of storyID by delta. A missing story
// yields ErrNotFound.
func bumpCounter(tx *gorm.DB, storyID, col string, delta int) error {
	res := tx.Model(&domain.Story{}).Where("id = ?", storyID).Update(col, counterExpr(col, delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// syncTotal recomputes total_reactions from the three counters.
func syncTotal(tx *gorm.DB, storyID string) error {
	return tx.Model(&domain.Story{}).Where("id = ?", storyID).
		UpdateColumn("total_reactions", gorm.Expr("reactions_red_flag + reactions_clown + reactions_wow")).Error
}

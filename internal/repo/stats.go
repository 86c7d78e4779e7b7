// Package repo implements the data persistence layer for stories and the
// reaction ledger, backed by GORM. This file provides small aggregate queries
// used for conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/cuentos-backend/internal/domain"
)

// StoriesStats returns the number of stories in category (all when empty)
// and the greatest UpdatedAt among them. Any reaction bumps a story's
// updated_at, so the pair changes whenever a listed counter moves.
//
// When there are no rows, count is 0 and maxUpdatedAt is nil.
func StoriesStats(ctx context.Context, db *gorm.DB, category domain.Category) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Story{})
	if category != "" {
		q = q.Where("category = ?", category)
	}

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// Package repo implements the data persistence layer for stories and the
// reaction ledger, backed by GORM. This file provides repository functions
// for the Story model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: persistence and query composition only. Length rules and
// trimming belong to services.StoryService.
//
// Error semantics:
//   - When a story is not found, functions return ErrNotFound
//     (gorm.ErrRecordNotFound).
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/cuentos-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateStory inserts a new story with zeroed counters. The ID is a random
// UUID and CreatedAt is set to UTC now.
func CreateStory(ctx context.Context, db *gorm.DB, category domain.Category, content string) (*domain.Story, error) {
	now := time.Now().UTC()
	s := &domain.Story{
		ID:        uuid.NewString(),
		Category:  category,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetStory fetches a single story by ID, or ErrNotFound.
func GetStory(ctx context.Context, db *gorm.DB, id string) (*domain.Story, error) {
	var s domain.Story
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListStories returns at most limit stories, optionally restricted to one
// category (empty category means all).
//
// SortRecent orders by created_at DESC. SortPopular orders by
// total_reactions DESC and breaks ties by created_at DESC. There is no
// offset: callers asking for "more" re-issue the same query.
func ListStories(ctx context.Context, db *gorm.DB, category domain.Category, sort domain.SortOrder, limit int) ([]domain.Story, error) {
	q := db.WithContext(ctx).Model(&domain.Story{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	switch sort {
	case domain.SortRecent:
		q = q.Order("created_at DESC").Order("id DESC")
	case domain.SortPopular:
		q = q.Order("total_reactions DESC").Order("created_at DESC").Order("id DESC")
	default:
		return nil, fmt.Errorf("repo: unsupported sort %q", sort)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	out := make([]domain.Story, 0, max(limit, 0))
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

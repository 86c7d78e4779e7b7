package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/cuentos-backend/internal/domain"
	"github.com/tbourn/cuentos-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// sqlRepo proxies the repo free functions, like the router's shim.
type sqlRepo struct{}

func (sqlRepo) CreateStory(ctx context.Context, db *gorm.DB, c domain.Category, content string) (*domain.Story, error) {
	return repo.CreateStory(ctx, db, c, content)
}

func (sqlRepo) GetStory(ctx context.Context, db *gorm.DB, id string) (*domain.Story, error) {
	return repo.GetStory(ctx, db, id)
}

func (sqlRepo) ListStories(ctx context.Context, db *gorm.DB, c domain.Category, s domain.SortOrder, limit int) ([]domain.Story, error) {
	return repo.ListStories(ctx, db, c, s, limit)
}

func (sqlRepo) StoriesStats(ctx context.Context, db *gorm.DB, c domain.Category) (int64, *time.Time, error) {
	return repo.StoriesStats(ctx, db, c)
}

func (sqlRepo) GetIdempotency(ctx context.Context, db *gorm.DB, voterID, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, db, voterID, scope, key, now)
}

func (sqlRepo) CreateIdempotency(ctx context.Context, db *gorm.DB, voterID, scope, key, storyID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, db, voterID, scope, key, storyID, status, ttl)
}

// Package services – StoryService
//
// This file implements StoryService: listing stories with a category filter
// and sort order, and creating new stories with length validation. Content is
// trimmed before it is stored and before the minimum length is checked; the
// maximum length and the "characters remaining" value use the untrimmed text,
// matching what the composer shows while typing.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/cuentos-backend/internal/domain"
	"github.com/tbourn/cuentos-backend/internal/utils"
)

// Defaults for StoryService limits.
const (
	DefaultPageSize = 50
	DefaultMinChars = 10
	DefaultMaxChars = 1000
	DefaultIdemTTL  = 24 * time.Hour
)

// StoryRepo defines the repository contract required by StoryService.
type StoryRepo interface {
	CreateStory(ctx context.Context, db *gorm.DB, category domain.Category, content string) (*domain.Story, error)
	GetStory(ctx context.Context, db *gorm.DB, id string) (*domain.Story, error)
	ListStories(ctx context.Context, db *gorm.DB, category domain.Category, sort domain.SortOrder, limit int) ([]domain.Story, error)
	StoriesStats(ctx context.Context, db *gorm.DB, category domain.Category) (int64, *time.Time, error)
}

// IdempotencyRepo stores the story produced by a keyed create request.
type IdempotencyRepo interface {
	GetIdempotency(ctx context.Context, db *gorm.DB, voterID, scope, key string, now time.Time) (*domain.Idempotency, error)
	CreateIdempotency(ctx context.Context, db *gorm.DB, voterID, scope, key, storyID string, status int, ttl time.Duration) (*domain.Idempotency, error)
}

// StoryService provides story listing and creation.
type StoryService struct {
	DB   *gorm.DB
	Repo StoryRepo
	// Idem is optional; without it Idempotency-Key headers are ignored.
	Idem IdempotencyRepo

	PageSize int
	MinChars int
	MaxChars int
	IdemTTL  time.Duration
}

// NewStoryService constructs a StoryService with the default limits.
func NewStoryService(db *gorm.DB, r StoryRepo, idem IdempotencyRepo) *StoryService {
	return &StoryService{
		DB:       db,
		Repo:     r,
		Idem:     idem,
		PageSize: DefaultPageSize,
		MinChars: DefaultMinChars,
		MaxChars: DefaultMaxChars,
		IdemTTL:  DefaultIdemTTL,
	}
}

// List returns at most PageSize stories. An empty category means all
// categories. limit <= 0 or above PageSize is capped to PageSize.
func (s *StoryService) List(ctx context.Context, category domain.Category, sort domain.SortOrder, limit int) ([]domain.Story, error) {
	tr := otel.Tracer("services/StoryService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("story.category", string(category)),
			attribute.String("story.sort", string(sort)),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	if category != "" && !category.Valid() {
		return nil, &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", category)}
	}
	if sort == "" {
		sort = domain.SortRecent
	}
	if sort != domain.SortRecent && sort != domain.SortPopular {
		return nil, &ValidationError{Field: "sort", Reason: fmt.Sprintf("unknown sort %q", sort)}
	}
	return s.Repo.ListStories(ctx, s.DB, category, sort, s.capLimit(limit))
}

// Stats returns the row count and latest update time for category, used to
// build list ETags.
func (s *StoryService) Stats(ctx context.Context, category domain.Category) (int64, *time.Time, error) {
	return s.Repo.StoriesStats(ctx, s.DB, category)
}

// Get returns one story or ErrStoryNotFound.
func (s *StoryService) Get(ctx context.Context, id string) (*domain.Story, error) {
	st, err := s.Repo.GetStory(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStoryNotFound
	}
	return st, err
}

// Create validates and stores a new story. Counters start at zero.
func (s *StoryService) Create(ctx context.Context, category domain.Category, content string) (*domain.Story, error) {
	tr := otel.Tracer("services/StoryService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("story.category", string(category))),
	)
	defer span.End()

	trimmed, err := s.Validate(category, content)
	if err != nil {
		return nil, err
	}
	st, err := s.Repo.CreateStory(ctx, s.DB, category, trimmed)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("story_id", st.ID).Str("category", string(category)).Msg("story created")
	return st, nil
}

// CreateOnce is Create with Idempotency-Key semantics: a repeated key from the
// same voter within IdemTTL returns the originally created story and
// replayed=true.
func (s *StoryService) CreateOnce(ctx context.Context, voterID, scope, key string, category domain.Category, content string) (st *domain.Story, replayed bool, err error) {
	if key == "" || s.Idem == nil {
		st, err = s.Create(ctx, category, content)
		return st, false, err
	}

	if rec, err := s.Idem.GetIdempotency(ctx, s.DB, voterID, scope, key, time.Now().UTC()); err == nil && rec != nil {
		if prev, err := s.Get(ctx, rec.StoryID); err == nil {
			return prev, true, nil
		}
	}

	st, err = s.Create(ctx, category, content)
	if err != nil {
		return nil, false, err
	}
	// Best effort: a lost record only costs dedupe on the next retry.
	if _, err := s.Idem.CreateIdempotency(ctx, s.DB, voterID, scope, key, st.ID, http.StatusCreated, s.ttl()); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("story_id", st.ID).Msg("idempotency record not stored")
	}
	return st, false, nil
}

// Validate checks category and content and returns the trimmed content.
func (s *StoryService) Validate(category domain.Category, content string) (string, error) {
	if !category.Valid() {
		return "", &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", category)}
	}
	left := s.CharsLeft(content)
	trimmed := strings.TrimSpace(content)
	if n := utf8.RuneCountInString(trimmed); n < s.minChars() {
		return "", &ValidationError{
			Field:     "content",
			Reason:    fmt.Sprintf("must be at least %d characters", s.minChars()),
			CharsLeft: &left,
		}
	}
	if left < 0 {
		return "", &ValidationError{
			Field:     "content",
			Reason:    fmt.Sprintf("must be at most %d characters", s.maxChars()),
			CharsLeft: &left,
		}
	}
	return trimmed, nil
}

// CharsLeft is the "characters remaining" value for content: MaxChars minus
// the untrimmed rune count.
func (s *StoryService) CharsLeft(content string) int {
	return s.maxChars() - utf8.RuneCountInString(content)
}

func (s *StoryService) capLimit(limit int) int {
	page := s.PageSize
	if page <= 0 {
		page = DefaultPageSize
	}
	if limit <= 0 {
		return page
	}
	return utils.ClampInt(limit, 1, page)
}

func (s *StoryService) minChars() int {
	if s.MinChars <= 0 {
		return DefaultMinChars
	}
	return s.MinChars
}

func (s *StoryService) maxChars() int {
	if s.MaxChars <= 0 {
		return DefaultMaxChars
	}
	return s.MaxChars
}

func (s *StoryService) ttl() time.Duration {
	if s.IdemTTL <= 0 {
		return DefaultIdemTTL
	}
	return s.IdemTTL
}

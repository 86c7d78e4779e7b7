// Package handlers exposes the public stories API over Gin.
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses (including conditional
// and replayed responses).
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/cuentos-backend/internal/domain"
	"github.com/tbourn/cuentos-backend/internal/http/middleware"
	"github.com/tbourn/cuentos-backend/internal/identity"
	"github.com/tbourn/cuentos-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// StoryService lists and creates stories.
type StoryService interface {
	List(ctx context.Context, category domain.Category, sort domain.SortOrder, limit int) ([]domain.Story, error)
	// Stats returns the row count and latest update time, used for ETags.
	Stats(ctx context.Context, category domain.Category) (int64, *time.Time, error)
	// CreateOnce creates a story, replaying the original when key was already
	// used by voterID on scope.
	CreateOnce(ctx context.Context, voterID, scope, key string, category domain.Category, content string) (*domain.Story, bool, error)
}

// ReactionService reads and toggles a voter's reaction on a story.
type ReactionService interface {
	Current(ctx context.Context, storyID, voter string) (domain.ReactionType, error)
	Toggle(ctx context.Context, storyID, voter string, t domain.ReactionType) (*services.ToggleResult, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for stories, reactions, and metadata.
type Handlers struct {
	stories   StoryService
	reactions ReactionService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(stories StoryService, reactions ReactionService) *Handlers {
	return &Handlers{stories: stories, reactions: reactions}
}

// voterID returns the identity resolved by middleware.Identity, deriving it
// from the request when the middleware did not run.
func voterID(c *gin.Context) string {
	if id := middleware.VoterID(c); id != "" {
		return id
	}
	return identity.Resolve(c.Request)
}

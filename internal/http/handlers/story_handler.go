// Story HTTP handlers.
//
// This file exposes REST endpoints for story resources:
//   - GET  /stories   (list, filtered and sorted, ETag support)
//   - POST /stories   (create, Idempotency-Key replay)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/cuentos-backend/internal/domain"
	"github.com/tbourn/cuentos-backend/internal/http/middleware"
	"github.com/tbourn/cuentos-backend/internal/utils"
)

// HeaderIdempotentReplayed marks a create response served from a stored key.
const HeaderIdempotentReplayed = "Idempotent-Replayed"

//
// DTOs
//

// CreateStoryRequest is the JSON payload for posting a story.
type CreateStoryRequest struct {
	Category domain.Category `json:"category" binding:"required" example:"confesiones"`
	// Content is trimmed before storage; 10 to 1000 characters.
	Content string `json:"content" binding:"required" example:"Le dije que estaba en el tráfico y seguía en la ducha."`
}

// ListStoriesResponse wraps a page of stories.
type ListStoriesResponse struct {
	Stories []domain.Story `json:"stories"`
}

//
// Handlers
//

// ListStories godoc
// @ID          listStories
// @Summary     List stories
// @Description Returns at most one page of stories. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Stories
// @Produce     json
//
// @Param       category       query   string  false "Category filter (empty = all)"  Enums(red_flags, confesiones, excusas, aprendizajes)
// @Param       sort           query   string  false "Sort order"                     Enums(recent, popular) default(recent)
// @Param       limit          query   int     false "Max items (capped at page size)" minimum(1) maximum(50) default(50)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.ListStoriesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ValidationErrorResponse "Unknown category or sort"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stories [get]
func (h *Handlers) ListStories(c *gin.Context) {
	ctx := c.Request.Context()
	category := domain.Category(c.Query("category"))
	sort, sortErr := domain.ParseSortOrder(c.Query("sort"))
	if sortErr != nil {
		sort = domain.SortOrder(c.Query("sort")) // rejected by the service below
	}
	limit := utils.AtoiDefault(c.Query("limit"), 0)

	// ETag pre-check (best effort), only for queries the service accepts.
	if sortErr == nil && (category == "" || category.Valid()) {
		if count, maxTS, err := h.stories.Stats(ctx, category); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			cat := string(category)
			if cat == "" {
				cat = "all"
			}
			etag := fmt.Sprintf(`W/"stories:%s:%s:%d:%d:%d"`, cat, sort, limit, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.stories.List(ctx, category, sort, limit)
	if err != nil {
		c.Writer.Header().Del("ETag")
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListStoriesResponse{Stories: items})
}

// CreateStory godoc
// @ID          createStory
// @Summary     Post a story
// @Description Creates an anonymous story. With an Idempotency-Key header, a retry returns the originally created story with 200 and Idempotent-Replayed: true.
// @Tags        Stories
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Client-generated key for safe retries"
// @Param       body             body    handlers.CreateStoryRequest  true  "Story payload"
//
// @Success     201  {object}  domain.Story
// @Success     200  {object}  domain.Story "Replayed"
// @Failure     400  {object}  handlers.ValidationErrorResponse "Validation failed"
// @Failure     429  {object}  handlers.ErrorResponse "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /stories [post]
func (h *Handlers) CreateStory(c *gin.Context) {
	var req CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	st, replayed, err := h.stories.CreateOnce(c.Request.Context(), voterID(c), middleware.IdempotencyScope(c), key, req.Category, req.Content)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	if replayed {
		c.Header(HeaderIdempotentReplayed, "true")
		ok(c, http.StatusOK, st)
		return
	}
	ok(c, http.StatusCreated, st)
}

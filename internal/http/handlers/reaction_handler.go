// Reaction HTTP handlers.
//
// This file exposes the per-voter reaction endpoints:
//   - GET  /stories/{id}/reaction    (the caller's active reaction)
//   - POST /stories/{id}/reactions   (tap a reaction: set, clear, or switch)
//
// The voter is the identity resolved by middleware.Identity. A tap that
// arrives while another tap for the same story and voter is being applied is
// dropped with 409 reaction_in_flight.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/cuentos-backend/internal/domain"
)

//
// DTOs
//

// ToggleReactionRequest is the JSON payload for a reaction tap.
type ToggleReactionRequest struct {
	Type domain.ReactionType `json:"type" binding:"required" example:"wow"`
}

// ReactionStateResponse is the caller's reaction on a story. Active is null
// when the caller has no reaction.
type ReactionStateResponse struct {
	StoryID string               `json:"story_id"`
	Active  *domain.ReactionType `json:"active"`
}

// ToggleReactionResponse is the state after a tap.
type ToggleReactionResponse struct {
	StoryID string               `json:"story_id"`
	Active  *domain.ReactionType `json:"active"`
	Counts  domain.Counts        `json:"counts"`
	// Story is re-read after the change so feeds can refresh in place.
	Story *domain.Story `json:"story"`
}

func activePtr(t domain.ReactionType) *domain.ReactionType {
	if t == "" {
		return nil
	}
	return &t
}

//
// Handlers
//

// GetReaction godoc
// @ID          getReaction
// @Summary     Get my reaction
// @Description Returns the caller's active reaction on a story, or null.
// @Tags        Reactions
// @Produce     json
//
// @Param       id                   path    string  true  "Story ID (UUID)"  format(uuid)
// @Param       X-Voter-Fingerprint  header  string  false "Client-computed identity (64 hex chars)"
//
// @Success     200  {object} handlers.ReactionStateResponse
// @Failure     404  {object} handlers.ErrorResponse "Story not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stories/{id}/reaction [get]
func (h *Handlers) GetReaction(c *gin.Context) {
	storyID := c.Param("id")
	t, err := h.reactions.Current(c.Request.Context(), storyID, voterID(c))
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, ReactionStateResponse{StoryID: storyID, Active: activePtr(t)})
}

// ToggleReaction godoc
// @ID          toggleReaction
// @Summary     Tap a reaction
// @Description Tapping the active reaction clears it, tapping another one switches to it, tapping with no reaction sets it.
// @Tags        Reactions
// @Accept      json
// @Produce     json
//
// @Param       id                   path    string  true  "Story ID (UUID)"  format(uuid)
// @Param       X-Voter-Fingerprint  header  string  false "Client-computed identity (64 hex chars)"
// @Param       body                 body    handlers.ToggleReactionRequest  true  "Reaction tap"
//
// @Success     200  {object} handlers.ToggleReactionResponse
// @Failure     400  {object} handlers.ValidationErrorResponse "Unknown reaction type"
// @Failure     404  {object} handlers.ErrorResponse "Story not found"
// @Failure     409  {object} handlers.ErrorResponse "Another tap is in flight"
// @Failure     503  {object} handlers.ErrorResponse "Store failure; state rolled back, retry"
// @Router      /stories/{id}/reactions [post]
func (h *Handlers) ToggleReaction(c *gin.Context) {
	var req ToggleReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	storyID := c.Param("id")
	res, err := h.reactions.Toggle(c.Request.Context(), storyID, voterID(c), req.Type)
	if err != nil {
		failService(c, err, ErrCodeReactionFailed)
		return
	}
	ok(c, http.StatusOK, ToggleReactionResponse{
		StoryID: storyID,
		Active:  activePtr(res.Snapshot.Active),
		Counts:  res.Snapshot.Counts,
		Story:   res.Story,
	})
}

// Identity and catalog handlers.
//
//   - GET /identity   (the caller's derived identity)
//   - GET /meta       (category and reaction catalogs for clients)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/cuentos-backend/internal/domain"
)

// IdentityResponse carries the caller's anonymous identity.
type IdentityResponse struct {
	Identity string `json:"identity" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
}

// CatalogEntry describes one category or reaction type.
type CatalogEntry struct {
	Value string `json:"value" example:"red_flags"`
	Label string `json:"label" example:"Red Flags"`
	Emoji string `json:"emoji" example:"🚩"`
}

// MetaResponse lists the closed sets clients render.
type MetaResponse struct {
	Categories []CatalogEntry `json:"categories"`
	Reactions  []CatalogEntry `json:"reactions"`
	MinChars   int            `json:"min_chars"`
	MaxChars   int            `json:"max_chars"`
	PageSize   int            `json:"page_size"`
}

var categoryCatalog = map[domain.Category]CatalogEntry{
	domain.CategoryRedFlags:     {Label: "Red Flags", Emoji: "🚩"},
	domain.CategoryConfesiones:  {Label: "Confesiones", Emoji: "💭"},
	domain.CategoryExcusas:      {Label: "Excusas", Emoji: "🤥"},
	domain.CategoryAprendizajes: {Label: "Aprendizajes", Emoji: "💡"},
}

var reactionCatalog = map[domain.ReactionType]CatalogEntry{
	domain.ReactionRedFlag: {Label: "Red Flag", Emoji: "🚩"},
	domain.ReactionClown:   {Label: "Payaso", Emoji: "🤡"},
	domain.ReactionWow:     {Label: "Wow", Emoji: "😮"},
}

// Limits are the story limits published by GET /meta.
type Limits struct {
	MinChars int
	MaxChars int
	PageSize int
}

// BuildMeta assembles the catalog in display order.
func BuildMeta(l Limits) MetaResponse {
	m := MetaResponse{
		Categories: make([]CatalogEntry, 0, len(domain.Categories)),
		Reactions:  make([]CatalogEntry, 0, len(domain.ReactionTypes)),
		MinChars:   l.MinChars,
		MaxChars:   l.MaxChars,
		PageSize:   l.PageSize,
	}
	for _, cat := range domain.Categories {
		e := categoryCatalog[cat]
		e.Value = string(cat)
		m.Categories = append(m.Categories, e)
	}
	for _, t := range domain.ReactionTypes {
		e := reactionCatalog[t]
		e.Value = string(t)
		m.Reactions = append(m.Reactions, e)
	}
	return m
}

// GetIdentity godoc
// @ID          getIdentity
// @Summary     Get my identity
// @Description Returns the anonymous identity derived from the request signals (or the well-formed X-Voter-Fingerprint header).
// @Tags        Meta
// @Produce     json
// @Success     200  {object} handlers.IdentityResponse
// @Router      /identity [get]
func (h *Handlers) GetIdentity(c *gin.Context) {
	c.Header("Cache-Control", "private, no-store")
	ok(c, http.StatusOK, IdentityResponse{Identity: voterID(c)})
}

// Meta godoc
// @ID          getMeta
// @Summary     Catalogs
// @Description Lists categories and reaction types with display labels and emoji, plus story limits.
// @Tags        Meta
// @Produce     json
// @Success     200  {object} handlers.MetaResponse
// @Router      /meta [get]
func Meta(l Limits) gin.HandlerFunc {
	body := BuildMeta(l)
	return func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=3600")
		ok(c, http.StatusOK, body)
	}
}

// Package domain defines the persistence models for stories and their
// reactions. These types are mapped with GORM and form the core data layer
// of the stories service.
package domain

import (
	"fmt"
	"time"
)

// Category is the closed set of story categories. Categories are assigned at
// creation and never change afterwards.
type Category string

const (
	CategoryRedFlags     Category = "red_flags"
	CategoryConfesiones  Category = "confesiones"
	CategoryExcusas      Category = "excusas"
	CategoryAprendizajes Category = "aprendizajes"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryRedFlags,
	CategoryConfesiones,
	CategoryExcusas,
	CategoryAprendizajes,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryRedFlags, CategoryConfesiones, CategoryExcusas, CategoryAprendizajes:
		return true
	}
	return false
}

// ParseCategory converts s into a Category, rejecting unknown values.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// ReactionType is the closed set of reactions a visitor can leave on a story.
// The three types are mutually exclusive per (story, voter).
type ReactionType string

const (
	ReactionRedFlag ReactionType = "red_flag"
	ReactionClown   ReactionType = "clown"
	ReactionWow     ReactionType = "wow"
)

// ReactionTypes lists every reaction type in display order.
var ReactionTypes = []ReactionType{ReactionRedFlag, ReactionClown, ReactionWow}

// Valid reports whether t is one of the known reaction types.
func (t ReactionType) Valid() bool {
	switch t {
	case ReactionRedFlag, ReactionClown, ReactionWow:
		return true
	}
	return false
}

// ParseReactionType converts s into a ReactionType, rejecting unknown values.
func ParseReactionType(s string) (ReactionType, error) {
	t := ReactionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown reaction type %q", s)
	}
	return t, nil
}

// SortOrder selects how story lists are ordered.
type SortOrder string

const (
	SortRecent  SortOrder = "recent"
	SortPopular SortOrder = "popular"
)

// ParseSortOrder maps s to a SortOrder. Empty input means SortRecent.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case "", SortRecent:
		return SortRecent, nil
	case SortPopular:
		return SortPopular, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Counts holds one counter per reaction type. The zero value is "no
// reactions".
type Counts struct {
	RedFlag int64 `json:"red_flag"`
	Clown   int64 `json:"clown"`
	Wow     int64 `json:"wow"`
}

// Get returns the counter for t. Unknown types read as zero.
func (c Counts) Get(t ReactionType) int64 {
	switch t {
	case ReactionRedFlag:
		return c.RedFlag
	case ReactionClown:
		return c.Clown
	case ReactionWow:
		return c.Wow
	}
	return 0
}

// Add returns a copy of c with delta applied to the counter for t. Counters
// never go below zero.
func (c Counts) Add(t ReactionType, delta int64) Counts {
	v := c.Get(t) + delta
	if v < 0 {
		v = 0
	}
	switch t {
	case ReactionRedFlag:
		c.RedFlag = v
	case ReactionClown:
		c.Clown = v
	case ReactionWow:
		c.Wow = v
	}
	return c
}

// Total is the sum of all counters.
func (c Counts) Total() int64 { return c.RedFlag + c.Clown + c.Wow }

// Story is an anonymous text post.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Category: one of Categories; immutable.
//   - Content: trimmed story text; immutable.
//   - ReactionsRedFlag / ReactionsClown / ReactionsWow: denormalized counts of
//     the story_votes rows of each type. Only the reaction ledger writes them.
//   - TotalReactions: sum of the three counters, kept for "popular" ordering.
//   - CreatedAt: creation time (UTC).
//   - UpdatedAt: bumped whenever a counter moves; used for list ETags.
type Story struct {
	ID               string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	Category         Category  `json:"category"           gorm:"type:varchar(16);not null;index:idx_stories_category_created,priority:1;check:category IN ('red_flags','confesiones','excusas','aprendizajes')"`
	Content          string    `json:"content"            gorm:"type:text;not null"`
	ReactionsRedFlag int64     `json:"reactions_red_flag" gorm:"not null;default:0"`
	ReactionsClown   int64     `json:"reactions_clown"    gorm:"not null;default:0"`
	ReactionsWow     int64     `json:"reactions_wow"      gorm:"not null;default:0"`
	TotalReactions   int64     `json:"total_reactions"    gorm:"not null;default:0;index:idx_stories_total"`
	CreatedAt        time.Time `json:"created_at"         gorm:"index:idx_stories_category_created,priority:2;index:idx_stories_created"`
	UpdatedAt        time.Time `json:"-"`
}

// TableName returns the database table name for Story.
func (Story) TableName() string { return "stories" }

// Counts returns the story's reaction counters.
func (s Story) Counts() Counts {
	return Counts{RedFlag: s.ReactionsRedFlag, Clown: s.ReactionsClown, Wow: s.ReactionsWow}
}

// Reaction is one voter's active reaction on a story. At most one row exists
// per (story_id, voter_fingerprint), enforced by a unique index. Rows are hard
// deleted: a soft-deleted row would keep occupying the unique slot.
//
// The story FK cascades so the ledger never keeps rows for a missing story.
type Reaction struct {
	ID               string       `json:"id"                gorm:"type:char(36);primaryKey"`
	StoryID          string       `json:"story_id"          gorm:"type:char(36);not null;uniqueIndex:ux_story_votes_story_voter,priority:1"`
	VoterFingerprint string       `json:"voter_fingerprint" gorm:"type:varchar(64);not null;uniqueIndex:ux_story_votes_story_voter,priority:2"`
	ReactionType     ReactionType `json:"reaction_type"     gorm:"type:varchar(16);not null;check:reaction_type IN ('red_flag','clown','wow')"`
	CreatedAt        time.Time    `json:"created_at"`

	Story Story `json:"-" gorm:"foreignKey:StoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Reaction.
func (Reaction) TableName() string { return "story_votes" }

package domain

import "time"

// Idempotency records the story produced by a previously processed create
// request, keyed by (voter_id, scope, key). Retries carrying the same
// Idempotency-Key get the original story back instead of a duplicate post.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	VoterID   string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_voter_scope_key,priority:1"`
	Scope     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_voter_scope_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_voter_scope_key,priority:3"`
	StoryID   string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

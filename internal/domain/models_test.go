package domain

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	if (Story{}).TableName() != "stories" {
		t.Fatalf("Story.TableName() = %q; want %q", (Story{}).TableName(), "stories")
	}
	if (Reaction{}).TableName() != "story_votes" {
		t.Fatalf("Reaction.TableName() = %q; want %q", (Reaction{}).TableName(), "story_votes")
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		if err != nil || got != c {
			t.Fatalf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	for _, bad := range []string{"", "all", "RED_FLAGS", "confesion"} {
		if _, err := ParseCategory(bad); err == nil {
			t.Fatalf("ParseCategory(%q) should fail", bad)
		}
	}
}

func TestParseReactionType(t *testing.T) {
	for _, rt := range ReactionTypes {
		got, err := ParseReactionType(string(rt))
		if err != nil || got != rt {
			t.Fatalf("ParseReactionType(%q) = %q, %v", rt, got, err)
		}
	}
	if _, err := ParseReactionType("like"); err == nil {
		t.Fatalf("expected error for unknown reaction type")
	}
}

func TestCounts_AddGetTotal(t *testing.T) {
	var c Counts
	c = c.Add(ReactionWow, 1)
	c = c.Add(ReactionWow, 1)
	c = c.Add(ReactionClown, 1)
	if c.Get(ReactionWow) != 2 || c.Get(ReactionClown) != 1 || c.Get(ReactionRedFlag) != 0 {
		t.Fatalf("unexpected counts: %+v", c)
	}
	if c.Total() != 3 {
		t.Fatalf("Total() = %d; want 3", c.Total())
	}

	// floor at zero
	c = c.Add(ReactionRedFlag, -1)
	c = c.Add(ReactionClown, -5)
	if c.RedFlag != 0 || c.Clown != 0 {
		t.Fatalf("counters went negative: %+v", c)
	}

	// unknown types are ignored
	if got := c.Add(ReactionType("nope"), 10); got != c {
		t.Fatalf("unknown type mutated counts: %+v", got)
	}
}

func TestMigrations_UniqueVote_AndCascade(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&Story{}, &Reaction{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()
	for _, tbl := range []any{&Story{}, &Reaction{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&Reaction{}, "ux_story_votes_story_voter") {
		t.Fatalf("expected unique index ux_story_votes_story_voter on story_votes")
	}
	if !m.HasIndex(&Story{}, "idx_stories_total") {
		t.Fatalf("expected index idx_stories_total on stories")
	}

	now := time.Now().UTC()
	st := &Story{ID: "s1", Category: CategoryExcusas, Content: "una excusa buena", CreatedAt: now, UpdatedAt: now}
	if err := db.Create(st).Error; err != nil {
		t.Fatalf("insert story: %v", err)
	}

	r1 := &Reaction{ID: "r1", StoryID: "s1", VoterFingerprint: "fp1", ReactionType: ReactionWow, CreatedAt: now}
	if err := db.Create(r1).Error; err != nil {
		t.Fatalf("insert reaction: %v", err)
	}

	// Same (story, voter) with a different type must still violate uniqueness.
	r2 := &Reaction{ID: "r2", StoryID: "s1", VoterFingerprint: "fp1", ReactionType: ReactionClown, CreatedAt: now}
	if err := db.Create(r2).Error; err == nil {
		t.Fatalf("expected unique violation on (story_id, voter_fingerprint)")
	}

	// Unknown reaction types are rejected by the CHECK constraint.
	r3 := &Reaction{ID: "r3", StoryID: "s1", VoterFingerprint: "fp2", ReactionType: ReactionType("meh"), CreatedAt: now}
	if err := db.Create(r3).Error; err == nil {
		t.Fatalf("expected CHECK violation for unknown reaction type")
	}

	// CASCADE: deleting the story removes its votes.
	if err := db.Delete(&Story{}, "id = ?", "s1").Error; err != nil {
		t.Fatalf("delete story: %v", err)
	}
	var cnt int64
	if err := db.Model(&Reaction{}).Where("story_id = ?", "s1").Count(&cnt).Error; err != nil {
		t.Fatalf("count votes: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("expected votes to cascade-delete with story, got %d", cnt)
	}
}

func TestStory_Counts(t *testing.T) {
	s := Story{ReactionsRedFlag: 1, ReactionsClown: 2, ReactionsWow: 3}
	c := s.Counts()
	if c.RedFlag != 1 || c.Clown != 2 || c.Wow != 3 || c.Total() != 6 {
		t.Fatalf("unexpected counts: %+v", c)
	}
}

func TestParseSortOrder(t *testing.T) {
	cases := map[string]SortOrder{"": SortRecent, "recent": SortRecent, "popular": SortPopular}
	for in, want := range cases {
		got, err := ParseSortOrder(in)
		if err != nil || got != want {
			t.Fatalf("ParseSortOrder(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseSortOrder("oldest"); err == nil {
		t.Fatalf("expected error for unknown sort")
	}
}

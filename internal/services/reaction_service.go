// Package services – ReactionService
//
// This file implements ReactionService, which serves reaction taps for one
// (story, voter) pair per request. Each call builds a short-lived
// reaction.Controller over the shared Guard, so taps for the same pair are
// serialized across requests (LocalGuard) or replicas (RedisGuard). After the
// transition the story is re-read so the caller gets store-side counters.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/cuentos-backend/internal/domain"
	"github.com/tbourn/cuentos-backend/internal/reaction"
)

// ReactionService coordinates reaction taps.
type ReactionService struct {
	Stories *StoryService
	Ledger  reaction.Ledger
	Guard   reaction.Guard

	// AtomicSwitch enables the single-operation A->B switch.
	AtomicSwitch bool
}

// NewReactionService wires a ReactionService. A nil guard gets a LocalGuard.
func NewReactionService(stories *StoryService, ledger reaction.Ledger, guard reaction.Guard, atomicSwitch bool) *ReactionService {
	if guard == nil {
		guard = reaction.NewLocalGuard()
	}
	return &ReactionService{Stories: stories, Ledger: ledger, Guard: guard, AtomicSwitch: atomicSwitch}
}

// ToggleResult is the outcome of a tap.
type ToggleResult struct {
	Snapshot reaction.Snapshot
	// Story is the re-read story, or the pre-tap story when the re-read
	// failed.
	Story *domain.Story
	// Mutated reports whether the store changed.
	Mutated bool
}

// Current returns the voter's active reaction on storyID ("" for none).
func (s *ReactionService) Current(ctx context.Context, storyID, voter string) (domain.ReactionType, error) {
	tr := otel.Tracer("services/ReactionService")
	ctx, span := tr.Start(ctx, "Current",
		trace.WithAttributes(attribute.String("story.id", storyID)),
	)
	defer span.End()

	if _, err := s.Stories.Get(ctx, storyID); err != nil {
		return "", err
	}
	t, found, err := s.Ledger.GetActiveReaction(ctx, storyID, voter)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return t, nil
}

// Toggle applies voter's tap on reaction t to storyID.
//
// Errors: *ValidationError for an unknown type, ErrStoryNotFound,
// ErrInFlight, ErrSwitchIncomplete, or a store failure. The result is
// non-nil whenever the story exists, including on error, and then holds the
// last confirmed state.
func (s *ReactionService) Toggle(ctx context.Context, storyID, voter string, t domain.ReactionType) (*ToggleResult, error) {
	tr := otel.Tracer("services/ReactionService")
	ctx, span := tr.Start(ctx, "Toggle",
		trace.WithAttributes(
			attribute.String("story.id", storyID),
			attribute.String("reaction.type", string(t)),
		),
	)
	defer span.End()

	if !t.Valid() {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown reaction type %q", t)}
	}

	st, err := s.Stories.Get(ctx, storyID)
	if err != nil {
		return nil, err
	}

	res := &ToggleResult{Story: st}
	ctl := reaction.NewController(s.Ledger, s.Guard, storyID, voter, st.Counts(), reaction.Options{
		AtomicSwitch: s.AtomicSwitch,
		ReadThrough:  true,
		OnMutated:    func(reaction.Snapshot) { res.Mutated = true },
	})
	defer ctl.Close()

	snap, terr := ctl.Toggle(ctx, t)
	res.Snapshot = snap

	if res.Mutated {
		if fresh, err := s.Stories.Get(ctx, storyID); err == nil {
			res.Story = fresh
			res.Snapshot.Counts = fresh.Counts()
		}
	}

	log := zerolog.Ctx(ctx)
	switch {
	case terr == nil:
		log.Debug().Str("story_id", storyID).Str("type", string(t)).Str("active", string(snap.Active)).Msg("reaction toggled")
	case errors.Is(terr, ErrInFlight):
		log.Debug().Str("story_id", storyID).Msg("reaction tap dropped while in flight")
	default:
		span.RecordError(terr)
		span.SetStatus(codes.Error, terr.Error())
		log.Warn().Err(terr).Str("story_id", storyID).Str("type", string(t)).Msg("reaction toggle failed")
	}
	return res, terr
}

// Package reaction implements the per-(story, voter) reaction state machine.
//
// A Controller tracks whether its voter has no reaction or one active
// reaction on a story, together with locally maintained counts. Toggle
// resolves a tap into one of three transitions against a Ledger:
//
//	NoReaction  --tap R--> Active(R)   insert
//	Active(R)   --tap R--> NoReaction  delete
//	Active(A)   --tap B--> Active(B)   delete, then insert
//
// The switch is two independent store operations. A failed delete aborts
// with Active(A) kept; a failed insert after a successful delete leaves the
// voter with NoReaction and reports ErrSwitchIncomplete. There is no
// automatic retry. When the ledger also implements Switcher and
// Options.AtomicSwitch is set, the switch is a single store operation.
//
// Transitions for the same (story, voter) pair are serialized by a Guard.
// A tap arriving while another is in flight is dropped with ErrInFlight.
package reaction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tbourn/cuentos-backend/internal/domain"
)

// Ledger is the store of one-reaction-per-voter-per-story rows.
type Ledger interface {
	// GetActiveReaction returns the stored type and found=true, or found=false
	// when there is no row. Not found is not an error.
	GetActiveReaction(ctx context.Context, storyID, voter string) (domain.ReactionType, bool, error)

	// InsertReaction creates the row, or returns ErrConflict when one exists.
	InsertReaction(ctx context.Context, storyID, voter string, t domain.ReactionType) error

	// DeleteReaction removes the row. An absent row is a successful no-op.
	DeleteReaction(ctx context.Context, storyID, voter string) error
}

// Switcher is implemented by ledgers that can change the type of an existing
// row in one operation. It returns ErrConflict when there is no row to
// switch.
type Switcher interface {
	SwitchReaction(ctx context.Context, storyID, voter string, to domain.ReactionType) error
}

// Snapshot is the observable controller state. An empty Active means the
// voter has no reaction.
type Snapshot struct {
	StoryID string              `json:"story_id"`
	Active  domain.ReactionType `json:"active"`
	Counts  domain.Counts       `json:"counts"`
	Pending bool                `json:"pending"`
}

// Options configures a Controller.
type Options struct {
	// AtomicSwitch uses Switcher for A->B when the ledger supports it.
	AtomicSwitch bool

	// ReadThrough re-reads the stored reaction after the guard is acquired
	// and before the transition is chosen. Short-lived controllers built per
	// request use it instead of Init so the read happens under the guard.
	ReadThrough bool

	// OnMutated runs after every transition that changed the store. It is
	// still called after Close, since the store change is real.
	OnMutated func(Snapshot)
}

// Controller is the reaction state for one (story, voter) pair. It is safe
// for concurrent use.
type Controller struct {
	ledger  Ledger
	guard   Guard
	storyID string
	voter   string
	opts    Options

	mu      sync.Mutex
	active  domain.ReactionType
	counts  domain.Counts
	pending bool
	subs    map[uint64]func(Snapshot)
	nextSub uint64

	closed atomic.Bool
}

// NewController returns a controller in NoReaction with the given starting
// counts. Call Init to load the stored reaction. A nil guard gets a private
// LocalGuard, which only serializes taps on this controller.
func NewController(ledger Ledger, guard Guard, storyID, voter string, counts domain.Counts, opts Options) *Controller {
	if guard == nil {
		guard = NewLocalGuard()
	}
	return &Controller{
		ledger:  ledger,
		guard:   guard,
		storyID: storyID,
		voter:   voter,
		opts:    opts,
		counts:  counts,
		subs:    make(map[uint64]func(Snapshot)),
	}
}

// Init reads the stored reaction and adopts it. This is the only read the
// controller issues on its own; the counters never decide the state.
func (c *Controller) Init(ctx context.Context) error {
	t, found, err := c.ledger.GetActiveReaction(ctx, c.storyID, c.voter)
	if err != nil {
		return err
	}
	if !found {
		t = ""
	}
	c.update(func() { c.active = t })
	return nil
}

// Toggle applies a tap on reaction t and returns the resulting snapshot.
//
// Errors: ErrInFlight (tap dropped), ErrSwitchIncomplete (wrapping the insert
// failure), or the ledger failure that caused a rollback. On every error path
// the snapshot holds the last confirmed state, and the tap may be retried.
func (c *Controller) Toggle(ctx context.Context, t domain.ReactionType) (Snapshot, error) {
	if !t.Valid() {
		return c.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	release, ok, err := c.guard.Acquire(ctx, GuardKey(c.storyID, c.voter))
	if err != nil {
		return c.Snapshot(), fmt.Errorf("reaction: acquire guard: %w", err)
	}
	if !ok {
		observe(transitionFor(c.Active(), t), outcomeInFlight)
		return c.Snapshot(), ErrInFlight
	}
	defer release()

	c.update(func() { c.pending = true })
	defer c.update(func() { c.pending = false })

	if c.opts.ReadThrough {
		if err := c.Init(ctx); err != nil {
			snap := c.Snapshot()
			snap.Pending = false
			return snap, err
		}
	}

	prev := c.Active()
	switch {
	case prev == "":
		err = c.set(ctx, t)
	case prev == t:
		err = c.clear(ctx, t)
	default:
		err = c.switchTo(ctx, prev, t)
	}

	snap := c.Snapshot()
	snap.Pending = false
	return snap, err
}

func (c *Controller) set(ctx context.Context, t domain.ReactionType) error {
	err := c.ledger.InsertReaction(ctx, c.storyID, c.voter, t)
	switch {
	case err == nil:
		c.update(func() {
			c.active = t
			c.counts = c.counts.Add(t, 1)
		})
		observe(transitionSet, outcomeOK)
		c.mutated()
		return nil
	case errors.Is(err, ErrConflict):
		observe(transitionSet, outcomeConflict)
		return c.adopt(ctx)
	default:
		observe(transitionSet, outcomeFailed)
		return err
	}
}

func (c *Controller) clear(ctx context.Context, t domain.ReactionType) error {
	if err := c.ledger.DeleteReaction(ctx, c.storyID, c.voter); err != nil {
		observe(transitionClear, outcomeFailed)
		return err
	}
	c.update(func() {
		c.active = ""
		c.counts = c.counts.Add(t, -1)
	})
	observe(transitionClear, outcomeOK)
	c.mutated()
	return nil
}

func (c *Controller) switchTo(ctx context.Context, from, to domain.ReactionType) error {
	if sw, ok := c.ledger.(Switcher); ok && c.opts.AtomicSwitch {
		err := sw.SwitchReaction(ctx, c.storyID, c.voter, to)
		switch {
		case err == nil:
			c.update(func() {
				c.active = to
				c.counts = c.counts.Add(from, -1).Add(to, 1)
			})
			observe(transitionSwitch, outcomeOK)
			c.mutated()
			return nil
		case errors.Is(err, ErrConflict):
			observe(transitionSwitch, outcomeConflict)
			return c.adopt(ctx)
		default:
			observe(transitionSwitch, outcomeFailed)
			return err
		}
	}

	if err := c.ledger.DeleteReaction(ctx, c.storyID, c.voter); err != nil {
		observe(transitionSwitch, outcomeFailed)
		return err
	}
	c.update(func() {
		c.active = ""
		c.counts = c.counts.Add(from, -1)
	})

	err := c.ledger.InsertReaction(ctx, c.storyID, c.voter, to)
	switch {
	case err == nil:
		c.update(func() {
			c.active = to
			c.counts = c.counts.Add(to, 1)
		})
		observe(transitionSwitch, outcomeOK)
		c.mutated()
		return nil
	case errors.Is(err, ErrConflict):
		observe(transitionSwitch, outcomeConflict)
		c.mutated()
		return c.adopt(ctx)
	default:
		observe(transitionSwitch, outcomeIncomplete)
		c.mutated()
		return fmt.Errorf("%w: %w", ErrSwitchIncomplete, err)
	}
}

// adopt re-reads the stored reaction after a conflict instead of retrying.
func (c *Controller) adopt(ctx context.Context) error {
	t, found, err := c.ledger.GetActiveReaction(ctx, c.storyID, c.voter)
	if err != nil {
		return fmt.Errorf("reaction: re-read after conflict: %w", err)
	}
	if !found {
		t = ""
	}
	c.update(func() { c.active = t })
	return nil
}

func (c *Controller) mutated() {
	if c.opts.OnMutated != nil {
		c.opts.OnMutated(c.Snapshot())
	}
}

// update applies fn and notifies subscribers, unless the controller has been
// closed.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return
	}
	fn()
	snap := c.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		s(snap)
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{StoryID: c.storyID, Active: c.active, Counts: c.counts, Pending: c.pending}
}

// Active returns the current reaction, or "" for NoReaction.
func (c *Controller) Active() domain.ReactionType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Subscribe registers fn to receive every state change. The returned func
// removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Close detaches the controller. Operations still in flight run to
// completion against the store but no longer change the state or notify
// subscribers.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed.Store(true)
	c.subs = map[uint64]func(Snapshot){}
	c.mu.Unlock()
}

func transitionFor(active, tapped domain.ReactionType) string {
	switch active {
	case "":
		return transitionSet
	case tapped:
		return transitionClear
	}
	return transitionSwitch
}

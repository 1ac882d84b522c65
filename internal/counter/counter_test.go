package counter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"magic-counter/internal/domain"
)

// fakeClock hands out timers that only fire when the test says so.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	stopped := t.stopped
	t.stopped = true
	return !stopped
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 6, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// fire runs every still-armed timer, simulating the debounce window
// elapsing.
func (c *fakeClock) fire() {
	c.mu.Lock()
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

func (c *fakeClock) armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type fakeDispatcher struct {
	mu      sync.Mutex
	actions []domain.Action
	err     error
}

func (d *fakeDispatcher) DispatchAction(ctx context.Context, gameID string, action domain.Action) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.actions = append(d.actions, action)
	return nil
}

func (d *fakeDispatcher) dispatched() []domain.Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Action(nil), d.actions...)
}

func newControl(clock Clock, dispatcher Dispatcher) *Control {
	return New(Config{
		GameID:     "game-1",
		PlayerID:   "seat-1",
		SourceID:   "seat-2",
		Clock:      clock,
		Dispatcher: dispatcher,
	})
}

func TestControl_CoalescesRapidPresses(t *testing.T) {
	clock := newFakeClock()
	dispatcher := &fakeDispatcher{}
	ctrl := newControl(clock, dispatcher)

	for i := 0; i < 5; i++ {
		ctrl.Tap(-1)
	}
	if got := dispatcher.dispatched(); len(got) != 0 {
		t.Fatalf("dispatched %d actions before flush, want 0", len(got))
	}
	if pending, _ := ctrl.Pending(); pending != -5 {
		t.Fatalf("pending = %d, want -5", pending)
	}

	clock.fire()

	actions := dispatcher.dispatched()
	if len(actions) != 1 {
		t.Fatalf("dispatched %d actions, want exactly 1", len(actions))
	}
	lc, ok := actions[0].(domain.LifeChange)
	if !ok {
		t.Fatalf("dispatched %T, want LifeChange", actions[0])
	}
	if lc.Value != -5 {
		t.Fatalf("value = %d, want -5", lc.Value)
	}
	if len(lc.To) != 1 || lc.To[0] != "seat-1" {
		t.Fatalf("to = %v, want [seat-1]", lc.To)
	}
	if lc.From != "seat-2" {
		t.Fatalf("from = %q, want seat-2", lc.From)
	}
	if pending, _ := ctrl.Pending(); pending != 0 {
		t.Fatalf("pending after flush = %d, want 0", pending)
	}
}

func TestControl_LongPressAccumulatesTens(t *testing.T) {
	clock := newFakeClock()
	dispatcher := &fakeDispatcher{}
	ctrl := newControl(clock, dispatcher)

	ctrl.LongPress(-1)
	ctrl.LongPress(-1)
	ctrl.Tap(1)
	clock.fire()

	actions := dispatcher.dispatched()
	if len(actions) != 1 {
		t.Fatalf("dispatched %d actions, want 1", len(actions))
	}
	if got := actions[0].(domain.LifeChange).Value; got != -19 {
		t.Fatalf("value = %d, want -19", got)
	}
}

func TestControl_EachPressReArmsTimer(t *testing.T) {
	clock := newFakeClock()
	ctrl := newControl(clock, &fakeDispatcher{})

	ctrl.Tap(-1)
	ctrl.Tap(-1)
	ctrl.Tap(-1)

	if got := clock.armed(); got != 1 {
		t.Fatalf("armed timers = %d, want 1 (prior timers cancelled)", got)
	}
}

func TestControl_ZeroDeltaFlushIsNoOp(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	ctrl := newControl(newFakeClock(), dispatcher)

	if err := ctrl.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := dispatcher.dispatched(); len(got) != 0 {
		t.Fatalf("dispatched %d actions, want 0", len(got))
	}

	ctrl.Tap(1)
	ctrl.Tap(-1)
	if err := ctrl.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := dispatcher.dispatched(); len(got) != 0 {
		t.Fatalf("cancelled-out delta dispatched %d actions, want 0", len(got))
	}
}

func TestControl_TogglesCapturedAtFlushTime(t *testing.T) {
	clock := newFakeClock()
	dispatcher := &fakeDispatcher{}
	ctrl := newControl(clock, dispatcher)

	ctrl.Tap(-1)
	ctrl.Tap(-1)
	// Toggled after the presses; flush must still carry them.
	ctrl.SetPoison(true)
	ctrl.SetCommander("cmd-1")
	clock.fire()

	lc := dispatcher.dispatched()[0].(domain.LifeChange)
	if !lc.Poison || lc.CommanderID != "cmd-1" {
		t.Fatalf("flushed action = %+v, want poison with commander attribution", lc)
	}

	// Toggles reset after a flush.
	ctrl.Tap(-1)
	clock.fire()
	lc = dispatcher.dispatched()[1].(domain.LifeChange)
	if lc.Poison || lc.CommanderID != "" {
		t.Fatalf("second flush = %+v, want toggles back at defaults", lc)
	}
}

func TestControl_SetSourceFollowsLatestPresser(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	ctrl := newControl(newFakeClock(), dispatcher)

	ctrl.SetSource("seat-3")
	ctrl.Tap(-1)
	if err := ctrl.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	ctrl.SetSource("seat-4")
	ctrl.Tap(-1)
	if err := ctrl.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	actions := dispatcher.dispatched()
	if len(actions) != 2 {
		t.Fatalf("dispatched %d actions, want 2", len(actions))
	}
	if got := actions[0].(domain.LifeChange).From; got != "seat-3" {
		t.Fatalf("first flush From = %q, want seat-3", got)
	}
	if got := actions[1].(domain.LifeChange).From; got != "seat-4" {
		t.Fatalf("second flush From = %q, want seat-4 (not a stale source)", got)
	}
}

func TestControl_FlushFailureKeepsDelta(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("store offline")}
	ctrl := newControl(newFakeClock(), dispatcher)

	ctrl.Tap(-1)
	if err := ctrl.Flush(context.Background()); err == nil {
		t.Fatal("expected flush error")
	}
	if pending, _ := ctrl.Pending(); pending != -1 {
		t.Fatalf("pending after failed flush = %d, want -1 (not lost)", pending)
	}

	dispatcher.mu.Lock()
	dispatcher.err = nil
	dispatcher.mu.Unlock()
	if err := ctrl.Flush(context.Background()); err != nil {
		t.Fatalf("retry flush: %v", err)
	}
	if got := dispatcher.dispatched(); len(got) != 1 {
		t.Fatalf("dispatched %d actions after retry, want 1", len(got))
	}
}

func TestControl_CloseFlushesPendingAndBlocksPresses(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	ctrl := newControl(newFakeClock(), dispatcher)

	ctrl.Tap(-1)
	ctrl.Tap(-1)
	if err := ctrl.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := dispatcher.dispatched(); len(got) != 1 {
		t.Fatalf("dispatched %d actions on close, want 1", len(got))
	}

	ctrl.Tap(-1)
	if pending, _ := ctrl.Pending(); pending != 0 {
		t.Fatalf("pending after close = %d, want presses ignored", pending)
	}
}

func TestControl_OnCommitObservesFlushedAction(t *testing.T) {
	clock := newFakeClock()
	dispatcher := &fakeDispatcher{}
	var committed []domain.LifeChange
	ctrl := New(Config{
		GameID:     "game-1",
		PlayerID:   "seat-1",
		Clock:      clock,
		Dispatcher: dispatcher,
		OnCommit: func(lc domain.LifeChange) {
			committed = append(committed, lc)
		},
	})

	ctrl.Tap(-1)
	clock.fire()

	if len(committed) != 1 || committed[0].Value != -1 {
		t.Fatalf("committed = %+v, want one -1 action", committed)
	}
}

func TestResolveStep(t *testing.T) {
	if got := ResolveStep(100 * time.Millisecond); got != 1 {
		t.Fatalf("short hold step = %d, want 1", got)
	}
	if got := ResolveStep(800 * time.Millisecond); got != 10 {
		t.Fatalf("long hold step = %d, want 10", got)
	}
}

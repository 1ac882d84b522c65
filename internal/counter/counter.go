// Package counter implements the commit/debounce protocol for life
// controls: rapid presses accumulate into one pending delta that commits
// as a single life-change action after an inactivity window, on a turn
// boundary, or on teardown.
package counter

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"magic-counter/internal/constants"
	"magic-counter/internal/domain"
	"magic-counter/internal/identity"
)

// Dispatcher appends committed actions to a game's log.
type Dispatcher interface {
	DispatchAction(ctx context.Context, gameID string, action domain.Action) error
}

// Config wires one Control to its game, target seat and collaborators.
type Config struct {
	GameID   string
	PlayerID string
	// SourceID is the initial acting-seat attribution; SetSource
	// overrides it on every press.
	SourceID   string
	Delay      time.Duration
	Clock      Clock
	Dispatcher Dispatcher
	// OnCommit observes each flushed action; attack flows use it to
	// detect monarch theft.
	OnCommit func(domain.LifeChange)
	Logger   zerolog.Logger
}

// Control is the per-life-display state machine: Idle while the pending
// delta is zero, Pending while a nonzero delta waits on an armed flush
// timer. Toggle state (poison, commander attribution) is captured at
// flush time, not per press.
type Control struct {
	mu sync.Mutex

	gameID     string
	playerID   string
	sourceID   string
	delay      time.Duration
	clock      Clock
	dispatcher Dispatcher
	onCommit   func(domain.LifeChange)
	logger     zerolog.Logger

	delta       int
	poison      bool
	commanderID string
	timer       Timer
	closed      bool
}

func New(cfg Config) *Control {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Delay <= 0 {
		cfg.Delay = constants.DebounceDelay
	}
	return &Control{
		gameID:     cfg.GameID,
		playerID:   cfg.PlayerID,
		sourceID:   cfg.SourceID,
		delay:      cfg.Delay,
		clock:      cfg.Clock,
		dispatcher: cfg.Dispatcher,
		onCommit:   cfg.OnCommit,
		logger:     cfg.Logger,
	}
}

// ResolveStep maps a press-and-hold duration to its delta magnitude.
func ResolveStep(held time.Duration) int {
	if held >= constants.LongPressThreshold {
		return constants.LongPressStep
	}
	return constants.TapStep
}

// Tap accumulates ±1 and re-arms the flush timer.
func (c *Control) Tap(direction int) {
	c.press(direction * constants.TapStep)
}

// LongPress accumulates ±10 and re-arms the flush timer.
func (c *Control) LongPress(direction int) {
	c.press(direction * constants.LongPressStep)
}

func (c *Control) press(step int) {
	if step == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.delta += step
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.clock.AfterFunc(c.delay, c.timerFired)
}

func (c *Control) timerFired() {
	if err := c.Flush(context.Background()); err != nil {
		c.logger.Error().Err(err).
			Str("game_id", c.gameID).
			Str("player_id", c.playerID).
			Msg("debounced flush failed, delta kept pending")
	}
}

// SetPoison marks the pending delta as poison counters instead of life.
func (c *Control) SetPoison(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.poison = on
}

// SetCommander attributes the pending delta to a commander.
func (c *Control) SetCommander(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commanderID = id
}

// SetSource attributes the pending delta to the acting seat. Callers set
// it on every press; a coalesced delta commits under its last presser.
func (c *Control) SetSource(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sourceID = id
}

// Pending returns the accumulated, uncommitted delta for optimistic
// display, and whether it is a poison delta.
func (c *Control) Pending() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delta, c.poison
}

// Flush commits the accumulated delta as one life-change action and
// resets to idle. A zero delta flushes to nothing. On dispatch failure
// the delta stays pending so it is not silently lost.
func (c *Control) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.delta == 0 {
		c.mu.Unlock()
		return nil
	}

	action := domain.LifeChange{
		ID:          identity.New(),
		CreatedAt:   c.clock.Now(),
		Value:       c.delta,
		From:        c.sourceID,
		To:          []string{c.playerID},
		CommanderID: c.commanderID,
		Poison:      c.poison,
	}

	if err := c.dispatcher.DispatchAction(ctx, c.gameID, action); err != nil {
		c.mu.Unlock()
		return err
	}

	c.delta = 0
	c.poison = false
	c.commanderID = ""
	onCommit := c.onCommit
	c.mu.Unlock()

	if onCommit != nil {
		onCommit(action)
	}
	return nil
}

// Discard drops the pending delta without committing, for teardown paths
// that explicitly abandon the change.
func (c *Control) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.delta = 0
	c.poison = false
	c.commanderID = ""
}

// Close flushes any pending delta and refuses further presses.
func (c *Control) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.Flush(ctx)
}

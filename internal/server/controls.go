package server

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"magic-counter/internal/counter"
	"magic-counter/internal/domain"
	"magic-counter/internal/service"
)

// ControlRegistry owns one debounce control per live life display,
// created lazily and hooked to the game's turn boundaries so pending
// deltas always flush before a turn-change lands in the log.
type ControlRegistry struct {
	games  *service.GameService
	delay  time.Duration
	logger zerolog.Logger

	mu       sync.Mutex
	controls map[controlKey]*controlEntry
}

type controlKey struct {
	gameID   string
	playerID string
}

type controlEntry struct {
	ctrl   *counter.Control
	detach func()
}

func NewControlRegistry(games *service.GameService, delay time.Duration, logger zerolog.Logger) *ControlRegistry {
	return &ControlRegistry{
		games:    games,
		delay:    delay,
		logger:   logger,
		controls: make(map[controlKey]*controlEntry),
	}
}

// Control returns the control for the given seat, creating and attaching
// it on first use. Source attribution is not fixed here; the press path
// sets it per press so a shared control never keeps a stale attacker.
func (r *ControlRegistry) Control(gameID, playerID string) *counter.Control {
	key := controlKey{gameID: gameID, playerID: playerID}

	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.controls[key]; ok {
		return entry.ctrl
	}

	ctrl := counter.New(counter.Config{
		GameID:     gameID,
		PlayerID:   playerID,
		Delay:      r.delay,
		Dispatcher: r.games,
		OnCommit:   r.monarchTheft(gameID),
		Logger:     r.logger,
	})
	detach := r.games.RegisterPreCommit(gameID, ctrl.Flush)
	r.controls[key] = &controlEntry{ctrl: ctrl, detach: detach}
	return ctrl
}

// monarchTheft steals the monarch when a committed action deals damage
// to its current holder.
func (r *ControlRegistry) monarchTheft(gameID string) func(domain.LifeChange) {
	return func(lc domain.LifeChange) {
		if lc.Value >= 0 || lc.Poison || lc.From == "" {
			return
		}
		game, ok := r.games.Game(gameID)
		if !ok {
			return
		}
		holder := domain.CurrentMonarch(game)
		if holder == "" {
			return
		}
		attacker, ok := game.PlayerByID(lc.From)
		if !ok || attacker.UserID == "" || attacker.UserID == holder {
			return
		}
		for _, targetID := range lc.To {
			target, ok := game.PlayerByID(targetID)
			if !ok || target.UserID != holder {
				continue
			}
			if err := r.games.StealMonarch(context.Background(), gameID, holder, attacker.UserID); err != nil {
				r.logger.Error().Err(err).Str("game_id", gameID).Msg("monarch theft dispatch failed")
			}
			return
		}
	}
}

// CloseGame flushes and detaches every control of the game; teardown
// never drops a delta that was meant to commit.
func (r *ControlRegistry) CloseGame(ctx context.Context, gameID string) {
	r.mu.Lock()
	var entries []*controlEntry
	for key, entry := range r.controls {
		if key.gameID == gameID {
			entries = append(entries, entry)
			delete(r.controls, key)
		}
	}
	r.mu.Unlock()

	for _, entry := range entries {
		if err := entry.ctrl.Close(ctx); err != nil {
			r.logger.Error().Err(err).Str("game_id", gameID).Msg("control close flush failed")
		}
		entry.detach()
	}
}

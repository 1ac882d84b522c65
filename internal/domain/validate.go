package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the repositories and services.
var (
	// ErrNotFound reports an operation against an entity that no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt reports a persisted collection that failed to load or
	// validate. The collection can be reset without touching the others.
	ErrCorrupt = errors.New("corrupt collection")
	// ErrInvalidImport reports an import payload rejected before any mutation.
	ErrInvalidImport = errors.New("invalid import payload")
)

// Shape validation used both by persistence load and by import. The rules
// are the minimal ones the derivation engine relies on; anything looser
// (dangling references, odd action values) is tolerated by the folds.

func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user: missing id")
	}
	if u.CreatedAt.IsZero() {
		return fmt.Errorf("user %s: missing createdAt", u.ID)
	}
	if u.Name == "" {
		return fmt.Errorf("user %s: missing name", u.ID)
	}
	return nil
}

func (d Deck) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("deck: missing id")
	}
	if d.CreatedAt.IsZero() {
		return fmt.Errorf("deck %s: missing createdAt", d.ID)
	}
	if d.Name == "" {
		return fmt.Errorf("deck %s: missing name", d.ID)
	}
	if len(d.Colors) == 0 {
		return fmt.Errorf("deck %s: colors must not be empty", d.ID)
	}
	for _, c := range d.Colors {
		if !validColor(c) {
			return fmt.Errorf("deck %s: unknown color %q", d.ID, c)
		}
	}
	if len(d.Commanders) > 2 {
		return fmt.Errorf("deck %s: at most two commanders", d.ID)
	}
	for _, o := range d.Options {
		if o != OptionMonarch && o != OptionInfect {
			return fmt.Errorf("deck %s: unknown option %q", d.ID, o)
		}
	}
	return nil
}

func (g Game) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("game: missing id")
	}
	if g.CreatedAt.IsZero() {
		return fmt.Errorf("game %s: missing createdAt", g.ID)
	}
	switch g.State {
	case StateSetup, StateActive, StateFinished:
	default:
		return fmt.Errorf("game %s: unknown state %q", g.ID, g.State)
	}
	if len(g.Players) < MinPlayers || len(g.Players) > MaxPlayers {
		return fmt.Errorf("game %s: player count %d out of range", g.ID, len(g.Players))
	}
	for _, p := range g.Players {
		if p.ID == "" {
			return fmt.Errorf("game %s: player missing id", g.ID)
		}
	}
	if g.StartingLife < MinStartingLife || g.StartingLife > MaxStartingLife {
		return fmt.Errorf("game %s: starting life %d out of range", g.ID, g.StartingLife)
	}
	for _, act := range g.Actions {
		if act.ActionID() == "" {
			return fmt.Errorf("game %s: action missing id", g.ID)
		}
		if act.ActionTime().IsZero() {
			return fmt.Errorf("game %s: action %s missing createdAt", g.ID, act.ActionID())
		}
	}
	return nil
}

func validColor(c ManaColor) bool {
	for _, known := range ManaColors {
		if c == known {
			return true
		}
	}
	return false
}

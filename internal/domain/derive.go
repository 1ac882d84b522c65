package domain

import (
	"time"
)

// CommanderDamageThreshold is the cumulative damage from a single
// commander that eliminates a player.
const CommanderDamageThreshold = 21

// The derivation engine. Every function here is a pure fold over
// game.Actions; none reads or writes a cached "current" field. Malformed
// entries (a life-change with no targets, an unknown player id) fold to a
// no-op contribution instead of failing.

// CurrentLife folds the log into the player's life total: starting life
// plus every non-poison life-change value targeting the player.
func CurrentLife(g Game, playerID string) int {
	life := g.StartingLife
	for _, act := range g.Actions {
		lc, ok := act.(LifeChange)
		if !ok || lc.Poison || !lc.Targets(playerID) {
			continue
		}
		life += lc.Value
	}
	return life
}

// PoisonCounters sums the player's poison-flagged deltas. Value signs
// follow the damage convention (negative = counters gained), so the total
// is the negated sum. The stored total may go negative after an
// over-removal; DisplayPoison applies the floor.
func PoisonCounters(g Game, playerID string) int {
	total := 0
	for _, act := range g.Actions {
		lc, ok := act.(LifeChange)
		if !ok || !lc.Poison || !lc.Targets(playerID) {
			continue
		}
		total -= lc.Value
	}
	return total
}

// DisplayPoison combines the stored poison total with a pending
// (uncommitted) delta and floors the result at zero. The floor applies at
// display only; stored deltas keep their sign.
func DisplayPoison(stored, pending int) int {
	if total := stored - pending; total > 0 {
		return total
	}
	return 0
}

// CommanderDamage returns cumulative attributed damage per commander for
// the player. Each commander is tracked independently; damage from two
// commanders never combines.
func CommanderDamage(g Game, playerID string) map[string]int {
	damage := make(map[string]int)
	for _, act := range g.Actions {
		lc, ok := act.(LifeChange)
		if !ok || lc.CommanderID == "" || lc.Value >= 0 || !lc.Targets(playerID) {
			continue
		}
		damage[lc.CommanderID] += -lc.Value
	}
	return damage
}

// IsPlayerEliminated reports whether the player is out of the game:
// life below 1, or 21+ cumulative damage from any single commander.
func IsPlayerEliminated(g Game, playerID string) bool {
	if CurrentLife(g, playerID) < 1 {
		return true
	}
	for _, dmg := range CommanderDamage(g, playerID) {
		if dmg >= CommanderDamageThreshold {
			return true
		}
	}
	return false
}

// CurrentMonarch returns the user holding the monarch: the target of the
// most recent monarch-change, falling back to the game's configured
// holder when no such action exists. Empty means no monarch.
func CurrentMonarch(g Game) string {
	for i := len(g.Actions) - 1; i >= 0; i-- {
		if mc, ok := g.Actions[i].(MonarchChange); ok {
			return mc.To
		}
	}
	return g.Monarch
}

// CurrentActivePlayer returns the seat whose turn it is, or empty when
// the game is not active, no turn has been recorded, or the last
// turn-change ended the game.
func CurrentActivePlayer(g Game) string {
	if g.State != StateActive {
		return ""
	}
	for i := len(g.Actions) - 1; i >= 0; i-- {
		if tc, ok := g.Actions[i].(TurnChange); ok {
			return tc.To
		}
	}
	return ""
}

// CurrentRound numbers rounds from 1, incrementing once every player has
// taken exactly one turn. The opening turn-change (empty From) does not
// count toward the cycle.
func CurrentRound(g Game) int {
	if len(g.Players) == 0 {
		return 1
	}
	handoffs := 0
	for _, act := range g.Actions {
		if tc, ok := act.(TurnChange); ok && tc.From != "" {
			handoffs++
		}
	}
	return handoffs/len(g.Players) + 1
}

// Turn is one bucket of the grouped log: a turn-change plus every action
// recorded before the next turn-change. Change is nil for the leading
// bucket of actions recorded before any turn exists (setup damage, or the
// whole log of an untracked game).
type Turn struct {
	Change  *TurnChange `json:"change,omitempty"`
	Actions ActionLog   `json:"actions,omitempty"`
}

// GroupActionsByTurn partitions the log into turn buckets in log order.
func GroupActionsByTurn(g Game) []Turn {
	var turns []Turn
	current := Turn{}
	started := false
	for _, act := range g.Actions {
		if tc, ok := act.(TurnChange); ok {
			if started || len(current.Actions) > 0 {
				turns = append(turns, current)
			}
			change := tc
			current = Turn{Change: &change}
			started = true
			continue
		}
		current.Actions = append(current.Actions, act)
	}
	if started || len(current.Actions) > 0 {
		turns = append(turns, current)
	}
	return turns
}

// GroupTurnsByRound buckets the grouped turns into rounds using the same
// every-player-has-gone-once rule as CurrentRound. History rendering and
// chart generation both consume this; keeping one grouping keeps them
// from diverging.
func GroupTurnsByRound(g Game) [][]Turn {
	turns := GroupActionsByTurn(g)
	if len(turns) == 0 {
		return nil
	}
	perRound := len(g.Players)
	var rounds [][]Turn
	var round []Turn
	handoffs := 0
	for _, t := range turns {
		if perRound > 0 && t.Change != nil && t.Change.From != "" {
			handoffs++
			// The turn that completes a full cycle opens the next round.
			if handoffs%perRound == 0 && len(round) > 0 {
				rounds = append(rounds, round)
				round = nil
			}
		}
		round = append(round, t)
	}
	if len(round) > 0 {
		rounds = append(rounds, round)
	}
	return rounds
}

// Duration measures from the first turn-change to the terminating one
// (empty To), or to now for a game still in progress. Zero when no turn
// has been recorded.
func Duration(g Game, now time.Time) time.Duration {
	var start time.Time
	end := now
	found := false
	for _, act := range g.Actions {
		tc, ok := act.(TurnChange)
		if !ok {
			continue
		}
		if !found {
			start = tc.CreatedAt
			found = true
		}
		if tc.To == "" {
			end = tc.CreatedAt
		}
	}
	if !found {
		return 0
	}
	return end.Sub(start)
}

package domain

import (
	"time"
)

// ManaColor is one of the six color symbols a deck can carry.
type ManaColor string

const (
	ColorWhite     ManaColor = "W"
	ColorBlue      ManaColor = "U"
	ColorBlack     ManaColor = "B"
	ColorRed       ManaColor = "R"
	ColorGreen     ManaColor = "G"
	ColorColorless ManaColor = "C"
)

// ManaColors lists every valid color symbol in WUBRG order.
var ManaColors = []ManaColor{ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen, ColorColorless}

// DeckOption gates an optional game mechanic for decks that use it.
type DeckOption string

const (
	OptionMonarch DeckOption = "monarch"
	OptionInfect  DeckOption = "infect"
)

// GameState is the lifecycle phase of a game. Transitions run
// setup -> active -> finished only.
type GameState string

const (
	StateSetup    GameState = "setup"
	StateActive   GameState = "active"
	StateFinished GameState = "finished"
)

// WinCondition records how a finished game was won.
type WinCondition string

const (
	WinCombat          WinCondition = "combat"
	WinCommanderDamage WinCondition = "commander-damage"
	WinPoison          WinCondition = "poison"
	WinConcede         WinCondition = "concede"
	WinOther           WinCondition = "other"
)

type User struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name"`
}

// Commander holds the subset of card-lookup metadata a deck keeps.
type Commander struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Type   string      `json:"type,omitempty"`
	Colors []ManaColor `json:"colors,omitempty"`
	Image  string      `json:"image,omitempty"`
}

type Deck struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	// CreatedBy is the owning user id; empty means the deck is global.
	CreatedBy  string       `json:"createdBy,omitempty"`
	Name       string       `json:"name"`
	Colors     []ManaColor  `json:"colors"`
	Commanders []Commander  `json:"commanders,omitempty"`
	Options    []DeckOption `json:"options,omitempty"`
}

// HasOption reports whether the deck enables the given mechanic.
func (d Deck) HasOption(opt DeckOption) bool {
	for _, o := range d.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// Player is one seat in a game. UserID and DeckID may dangle after the
// referenced entity is removed; readers resolve them to a placeholder.
type Player struct {
	ID     string `json:"id"`
	UserID string `json:"userId,omitempty"`
	DeckID string `json:"deckId,omitempty"`
}

// Game is the central aggregate. Life, turn, monarch, poison and
// elimination state are never stored; they are always refolded from
// Actions, the append-only log.
type Game struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	State        GameState `json:"state"`
	Players      []Player  `json:"players"`
	TurnTracking bool      `json:"turnTracking"`
	StartingLife int       `json:"startingLife"`
	Commanders   bool      `json:"commanders"`
	// Monarch is the fallback holder for games with no monarch-change
	// action yet. Empty means no monarch.
	Monarch      string       `json:"monarch,omitempty"`
	Winner       string       `json:"winner,omitempty"`
	WinCondition WinCondition `json:"winCondition,omitempty"`
	Actions      ActionLog    `json:"actions"`
}

// PlayerByID returns the seat with the given id.
func (g Game) PlayerByID(id string) (Player, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

const (
	// MinStartingLife and MaxStartingLife bound the configured life total.
	MinStartingLife = 1
	MaxStartingLife = 999
	// MinPlayers and MaxPlayers bound the seat count per game.
	MinPlayers = 1
	MaxPlayers = 6
)

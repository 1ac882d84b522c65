package service

import (
	"time"

	"magic-counter/internal/domain"
)

// PlayerView is the derived per-seat snapshot the presentation layer
// renders. Everything here is refolded from the action log.
type PlayerView struct {
	PlayerID        string         `json:"playerId"`
	UserID          string         `json:"userId,omitempty"`
	Name            string         `json:"name"`
	DeckName        string         `json:"deckName"`
	Life            int            `json:"life"`
	Poison          int            `json:"poison"`
	CommanderDamage map[string]int `json:"commanderDamage,omitempty"`
	Eliminated      bool           `json:"eliminated"`
	Active          bool           `json:"active"`
}

// GameView is the derived whole-game snapshot.
type GameView struct {
	GameID       string              `json:"gameId"`
	State        domain.GameState    `json:"state"`
	Round        int                 `json:"round"`
	ActivePlayer string              `json:"activePlayer,omitempty"`
	Monarch      string              `json:"monarch,omitempty"`
	MonarchName  string              `json:"monarchName,omitempty"`
	Winner       string              `json:"winner,omitempty"`
	WinCondition domain.WinCondition `json:"winCondition,omitempty"`
	DurationMS   int64               `json:"durationMs"`
	Players      []PlayerView        `json:"players"`
}

// ViewService assembles derived snapshots, resolving entity references
// through the library. It never mutates anything.
type ViewService struct {
	games   *GameService
	library *LibraryService
}

func NewViewService(games *GameService, library *LibraryService) *ViewService {
	return &ViewService{games: games, library: library}
}

// GameView folds the game's log into a render-ready snapshot.
func (s *ViewService) GameView(gameID string) (GameView, error) {
	game, ok := s.games.Game(gameID)
	if !ok {
		return GameView{}, domain.ErrNotFound
	}

	active := domain.CurrentActivePlayer(game)
	monarch := domain.CurrentMonarch(game)

	view := GameView{
		GameID:       game.ID,
		State:        game.State,
		Round:        domain.CurrentRound(game),
		ActivePlayer: active,
		Monarch:      monarch,
		Winner:       game.Winner,
		WinCondition: game.WinCondition,
		DurationMS:   domain.Duration(game, time.Now()).Milliseconds(),
		Players:      make([]PlayerView, len(game.Players)),
	}
	if monarch != "" {
		view.MonarchName = s.library.UserName(monarch)
	}

	for i, p := range game.Players {
		view.Players[i] = PlayerView{
			PlayerID:        p.ID,
			UserID:          p.UserID,
			Name:            s.library.UserName(p.UserID),
			DeckName:        s.library.DeckName(p.DeckID),
			Life:            domain.CurrentLife(game, p.ID),
			Poison:          domain.DisplayPoison(domain.PoisonCounters(game, p.ID), 0),
			CommanderDamage: domain.CommanderDamage(game, p.ID),
			Eliminated:      domain.IsPlayerEliminated(game, p.ID),
			Active:          active != "" && p.ID == active,
		}
	}
	return view, nil
}

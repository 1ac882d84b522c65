package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"magic-counter/internal/domain"
	"magic-counter/internal/identity"
	"magic-counter/internal/repository"
)

// PreCommitHook runs synchronously before a turn-change action is
// appended, so that pending debounced life changes land in the log ahead
// of the turn boundary.
type PreCommitHook func(ctx context.Context) error

// GameService owns the action log: every mutation of a game funnels
// through it, and derived reads are refolded from the log on each call.
type GameService struct {
	games  *repository.GameRepository
	logger zerolog.Logger

	mu        sync.Mutex
	hooks     map[string][]*hookEntry
	observers []func(gameID string)
}

type hookEntry struct {
	fn PreCommitHook
}

func NewGameService(games *repository.GameRepository, logger zerolog.Logger) *GameService {
	return &GameService{
		games:  games,
		logger: logger,
		hooks:  make(map[string][]*hookEntry),
	}
}

// AddGame creates a game in setup state with an empty log.
func (s *GameService) AddGame(ctx context.Context, players []domain.Player, turnTracking bool, startingLife int, commanders bool) (string, error) {
	game, err := s.games.Add(ctx, repository.NewGame{
		Players:      players,
		TurnTracking: turnTracking,
		StartingLife: startingLife,
		Commanders:   commanders,
	})
	if err != nil {
		return "", err
	}
	return game.ID, nil
}

func (s *GameService) RemoveGame(ctx context.Context, id string) error {
	if err := s.games.Remove(ctx, id); err != nil {
		return err
	}
	s.notify(id)
	return nil
}

func (s *GameService) UpdateGame(ctx context.Context, id string, mutate func(*domain.Game)) error {
	if err := s.games.Update(ctx, id, mutate); err != nil {
		return err
	}
	s.notify(id)
	return nil
}

func (s *GameService) Game(id string) (domain.Game, bool) {
	return s.games.Get(id)
}

func (s *GameService) Games() []domain.Game {
	return s.games.List()
}

// DispatchAction appends one action to the game's log. Turn-change
// actions first run every pre-commit hook registered for the game, in
// registration order, so hook-dispatched actions precede the boundary.
// Dispatching to a missing game is a no-op.
func (s *GameService) DispatchAction(ctx context.Context, gameID string, action domain.Action) error {
	if _, ok := action.(domain.TurnChange); ok {
		for _, entry := range s.hooksFor(gameID) {
			if err := entry.fn(ctx); err != nil {
				return fmt.Errorf("pre-commit hook: %w", err)
			}
		}
	}

	err := s.games.AppendAction(ctx, gameID, action)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Debug().Str("game_id", gameID).Msg("dispatch to missing game ignored")
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Debug().
		Str("game_id", gameID).
		Str("action_id", action.ActionID()).
		Str("action_type", string(action.ActionType())).
		Msg("action dispatched")
	s.notify(gameID)
	return nil
}

// RegisterPreCommit subscribes a hook to the game's turn boundaries and
// returns its unregister function. Unregistering removes only that hook.
func (s *GameService) RegisterPreCommit(gameID string, hook PreCommitHook) func() {
	entry := &hookEntry{fn: hook}
	s.mu.Lock()
	s.hooks[gameID] = append(s.hooks[gameID], entry)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		entries := s.hooks[gameID]
		for i, e := range entries {
			if e == entry {
				s.hooks[gameID] = append(entries[:i], entries[i+1:]...)
				return
			}
		}
	}
}

func (s *GameService) hooksFor(gameID string) []*hookEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*hookEntry(nil), s.hooks[gameID]...)
}

// UndoLastAction removes exactly the last log entry; an empty log is left
// untouched.
func (s *GameService) UndoLastAction(ctx context.Context, gameID string) error {
	if err := s.games.Update(ctx, gameID, func(g *domain.Game) {
		if len(g.Actions) > 0 {
			g.Actions = g.Actions[:len(g.Actions)-1]
		}
	}); err != nil {
		return err
	}
	s.notify(gameID)
	return nil
}

// RemoveAction deletes one action by id. Life changes are removable any
// time before the game finishes; a turn-change only while it is the most
// recent entry.
func (s *GameService) RemoveAction(ctx context.Context, gameID, actionID string) error {
	var removeErr error
	err := s.games.Update(ctx, gameID, func(g *domain.Game) {
		if g.State == domain.StateFinished {
			removeErr = fmt.Errorf("game %s is finished", gameID)
			return
		}
		for i, act := range g.Actions {
			if act.ActionID() != actionID {
				continue
			}
			if _, ok := act.(domain.TurnChange); ok && i != len(g.Actions)-1 {
				removeErr = fmt.Errorf("turn-change %s is not the most recent action", actionID)
				return
			}
			g.Actions = append(g.Actions[:i], g.Actions[i+1:]...)
			return
		}
		removeErr = domain.ErrNotFound
	})
	if err != nil {
		return err
	}
	if removeErr != nil {
		return removeErr
	}
	s.notify(gameID)
	return nil
}

// StartGame moves a setup game to active. Tracked games record the
// opening turn-change with an empty from.
func (s *GameService) StartGame(ctx context.Context, gameID, firstPlayerID string) error {
	game, ok := s.games.Get(gameID)
	if !ok {
		return domain.ErrNotFound
	}
	if game.State != domain.StateSetup {
		return fmt.Errorf("game %s is not in setup", gameID)
	}
	if game.TurnTracking {
		if _, ok := game.PlayerByID(firstPlayerID); !ok {
			return fmt.Errorf("player %s is not seated in game %s", firstPlayerID, gameID)
		}
	}

	if err := s.UpdateGame(ctx, gameID, func(g *domain.Game) {
		g.State = domain.StateActive
	}); err != nil {
		return err
	}
	if !game.TurnTracking {
		return nil
	}
	return s.DispatchAction(ctx, gameID, domain.TurnChange{
		ID:        identity.New(),
		CreatedAt: time.Now(),
		To:        firstPlayerID,
	})
}

// AdvanceTurn hands the turn to the given seat. Pending life deltas flush
// through the pre-commit hooks before the boundary is recorded.
func (s *GameService) AdvanceTurn(ctx context.Context, gameID, toPlayerID string) error {
	game, ok := s.games.Get(gameID)
	if !ok {
		return domain.ErrNotFound
	}
	if game.State != domain.StateActive {
		return fmt.Errorf("game %s is not active", gameID)
	}
	return s.DispatchAction(ctx, gameID, domain.TurnChange{
		ID:        identity.New(),
		CreatedAt: time.Now(),
		From:      domain.CurrentActivePlayer(game),
		To:        toPlayerID,
	})
}

// FinishGame records the terminating turn-change and moves the game to
// finished with its winner and win condition.
func (s *GameService) FinishGame(ctx context.Context, gameID, winnerUserID string, condition domain.WinCondition) error {
	game, ok := s.games.Get(gameID)
	if !ok {
		return domain.ErrNotFound
	}
	if game.State != domain.StateActive {
		return fmt.Errorf("game %s is not active", gameID)
	}
	if err := s.DispatchAction(ctx, gameID, domain.TurnChange{
		ID:        identity.New(),
		CreatedAt: time.Now(),
		From:      domain.CurrentActivePlayer(game),
	}); err != nil {
		return err
	}
	return s.UpdateGame(ctx, gameID, func(g *domain.Game) {
		g.State = domain.StateFinished
		g.Winner = winnerUserID
		g.WinCondition = condition
	})
}

// StealMonarch records the monarchy moving between users.
func (s *GameService) StealMonarch(ctx context.Context, gameID, fromUserID, toUserID string) error {
	return s.DispatchAction(ctx, gameID, domain.MonarchChange{
		ID:        identity.New(),
		CreatedAt: time.Now(),
		From:      fromUserID,
		To:        toUserID,
	})
}

// Derived read helpers, refolded on every call.

func (s *GameService) CurrentActivePlayer(gameID string) string {
	game, ok := s.games.Get(gameID)
	if !ok {
		return ""
	}
	return domain.CurrentActivePlayer(game)
}

func (s *GameService) CurrentRound(gameID string) int {
	game, ok := s.games.Get(gameID)
	if !ok {
		return 0
	}
	return domain.CurrentRound(game)
}

func (s *GameService) GroupActionsByRound(gameID string) [][]domain.Turn {
	game, ok := s.games.Get(gameID)
	if !ok {
		return nil
	}
	return domain.GroupTurnsByRound(game)
}

// RegisterObserver subscribes to game-change notifications; the websocket
// feed uses this to push fresh derived snapshots.
func (s *GameService) RegisterObserver(fn func(gameID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *GameService) notify(gameID string) {
	s.mu.Lock()
	observers := append([]func(string){}, s.observers...)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(gameID)
	}
}

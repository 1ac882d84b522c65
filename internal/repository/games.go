package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"magic-counter/internal/domain"
	"magic-counter/internal/identity"
)

type GameRepository struct {
	coll   *collection[domain.Game]
	logger zerolog.Logger
}

func NewGameRepository(sqlDB *sql.DB, logger zerolog.Logger) *GameRepository {
	return &GameRepository{
		coll:   newCollection(sqlDB, keyGames, domain.Game.Validate, logger),
		logger: logger,
	}
}

// NewGame carries the configuration of a game being created. Seats get
// their ids assigned here; the game starts in setup with an empty log.
type NewGame struct {
	Players      []domain.Player
	TurnTracking bool
	StartingLife int
	Commanders   bool
}

func (r *GameRepository) Add(ctx context.Context, data NewGame) (domain.Game, error) {
	players := make([]domain.Player, len(data.Players))
	for i, p := range data.Players {
		if p.ID == "" {
			p.ID = identity.New()
		}
		players[i] = p
	}
	game := domain.Game{
		ID:           identity.New(),
		CreatedAt:    time.Now(),
		State:        domain.StateSetup,
		Players:      players,
		TurnTracking: data.TurnTracking,
		StartingLife: data.StartingLife,
		Commanders:   data.Commanders,
		Actions:      domain.ActionLog{},
	}
	if err := game.Validate(); err != nil {
		return domain.Game{}, err
	}
	if err := r.coll.add(ctx, game); err != nil {
		return domain.Game{}, err
	}
	r.logger.Debug().
		Str("game_id", game.ID).
		Int("players", len(game.Players)).
		Int("starting_life", game.StartingLife).
		Bool("turn_tracking", game.TurnTracking).
		Msg("game added")
	return game, nil
}

// Update applies mutate against the latest stored game, the only safe
// shape for mutations arriving from debounce timers holding stale
// snapshots.
func (r *GameRepository) Update(ctx context.Context, id string, mutate func(*domain.Game)) error {
	return r.coll.update(ctx, func(g domain.Game) bool { return g.ID == id }, mutate)
}

// AppendAction appends one action to the game's log. Missing games
// surface domain.ErrNotFound; the dispatch layer downgrades that to a
// no-op.
func (r *GameRepository) AppendAction(ctx context.Context, id string, action domain.Action) error {
	return r.Update(ctx, id, func(g *domain.Game) {
		g.Actions = append(g.Actions, action)
	})
}

func (r *GameRepository) Remove(ctx context.Context, id string) error {
	return r.coll.remove(ctx, func(g domain.Game) bool { return g.ID == id })
}

func (r *GameRepository) Get(id string) (domain.Game, bool) {
	return r.coll.get(func(g domain.Game) bool { return g.ID == id })
}

func (r *GameRepository) List() []domain.Game {
	return r.coll.list()
}

func (r *GameRepository) Replace(ctx context.Context, games []domain.Game) error {
	return r.coll.replace(ctx, games)
}

func (r *GameRepository) Reset(ctx context.Context) error {
	return r.coll.reset(ctx)
}

func (r *GameRepository) Corrupt() bool {
	return r.coll.isCorrupt()
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"magic-counter/internal/domain"
	"magic-counter/internal/identity"
)

type DeckRepository struct {
	coll   *collection[domain.Deck]
	logger zerolog.Logger
}

func NewDeckRepository(sqlDB *sql.DB, logger zerolog.Logger) *DeckRepository {
	return &DeckRepository{
		coll:   newCollection(sqlDB, keyDecks, domain.Deck.Validate, logger),
		logger: logger,
	}
}

// NewDeck carries the caller-supplied fields of a deck being created.
type NewDeck struct {
	CreatedBy  string
	Name       string
	Colors     []domain.ManaColor
	Commanders []domain.Commander
	Options    []domain.DeckOption
}

func (r *DeckRepository) Add(ctx context.Context, data NewDeck) (domain.Deck, error) {
	deck := domain.Deck{
		ID:         identity.New(),
		CreatedAt:  time.Now(),
		CreatedBy:  data.CreatedBy,
		Name:       data.Name,
		Colors:     data.Colors,
		Commanders: data.Commanders,
		Options:    data.Options,
	}
	if err := deck.Validate(); err != nil {
		return domain.Deck{}, err
	}
	if err := r.coll.add(ctx, deck); err != nil {
		return domain.Deck{}, err
	}
	r.logger.Debug().Str("deck_id", deck.ID).Str("name", deck.Name).Msg("deck added")
	return deck, nil
}

func (r *DeckRepository) Update(ctx context.Context, id string, mutate func(*domain.Deck)) error {
	return r.coll.update(ctx, func(d domain.Deck) bool { return d.ID == id }, mutate)
}

func (r *DeckRepository) Remove(ctx context.Context, id string) error {
	return r.coll.remove(ctx, func(d domain.Deck) bool { return d.ID == id })
}

func (r *DeckRepository) Get(id string) (domain.Deck, bool) {
	return r.coll.get(func(d domain.Deck) bool { return d.ID == id })
}

func (r *DeckRepository) List() []domain.Deck {
	return r.coll.list()
}

func (r *DeckRepository) Replace(ctx context.Context, decks []domain.Deck) error {
	return r.coll.replace(ctx, decks)
}

func (r *DeckRepository) Reset(ctx context.Context) error {
	return r.coll.reset(ctx)
}

func (r *DeckRepository) Corrupt() bool {
	return r.coll.isCorrupt()
}

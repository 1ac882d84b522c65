package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"magic-counter/internal/domain"
	"magic-counter/internal/identity"
)

type UserRepository struct {
	coll   *collection[domain.User]
	logger zerolog.Logger
}

func NewUserRepository(sqlDB *sql.DB, logger zerolog.Logger) *UserRepository {
	return &UserRepository{
		coll:   newCollection(sqlDB, keyUsers, domain.User.Validate, logger),
		logger: logger,
	}
}

func (r *UserRepository) Add(ctx context.Context, name string) (domain.User, error) {
	user := domain.User{
		ID:        identity.New(),
		CreatedAt: time.Now(),
		Name:      name,
	}
	if err := r.coll.add(ctx, user); err != nil {
		return domain.User{}, err
	}
	r.logger.Debug().Str("user_id", user.ID).Str("name", name).Msg("user added")
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, mutate func(*domain.User)) error {
	return r.coll.update(ctx, func(u domain.User) bool { return u.ID == id }, mutate)
}

// Remove deletes the user without cascading; games and decks referencing
// it keep their dangling ids and resolve them to a placeholder on read.
func (r *UserRepository) Remove(ctx context.Context, id string) error {
	return r.coll.remove(ctx, func(u domain.User) bool { return u.ID == id })
}

func (r *UserRepository) Get(id string) (domain.User, bool) {
	return r.coll.get(func(u domain.User) bool { return u.ID == id })
}

func (r *UserRepository) List() []domain.User {
	return r.coll.list()
}

func (r *UserRepository) Replace(ctx context.Context, users []domain.User) error {
	return r.coll.replace(ctx, users)
}

func (r *UserRepository) Reset(ctx context.Context) error {
	return r.coll.reset(ctx)
}

func (r *UserRepository) Corrupt() bool {
	return r.coll.isCorrupt()
}

package service

import (
	"context"

	"github.com/rs/zerolog"

	"magic-counter/internal/domain"
	"magic-counter/internal/repository"
)

// UnknownName is the placeholder for dangling user/deck references.
const UnknownName = "Unknown"

// LibraryService fronts the user and deck collections. Removing an
// entity never cascades; readers resolve stale references through
// UserName/DeckName instead.
type LibraryService struct {
	users  *repository.UserRepository
	decks  *repository.DeckRepository
	logger zerolog.Logger
}

func NewLibraryService(users *repository.UserRepository, decks *repository.DeckRepository, logger zerolog.Logger) *LibraryService {
	return &LibraryService{users: users, decks: decks, logger: logger}
}

func (s *LibraryService) AddUser(ctx context.Context, name string) (domain.User, error) {
	return s.users.Add(ctx, name)
}

func (s *LibraryService) RenameUser(ctx context.Context, id, name string) error {
	return s.users.Update(ctx, id, func(u *domain.User) {
		u.Name = name
	})
}

func (s *LibraryService) RemoveUser(ctx context.Context, id string) error {
	return s.users.Remove(ctx, id)
}

func (s *LibraryService) Users() []domain.User {
	return s.users.List()
}

func (s *LibraryService) User(id string) (domain.User, bool) {
	return s.users.Get(id)
}

// UserName resolves a user id to a display name, falling back to the
// placeholder for removed or unset users.
func (s *LibraryService) UserName(id string) string {
	if id == "" {
		return UnknownName
	}
	if user, ok := s.users.Get(id); ok {
		return user.Name
	}
	return UnknownName
}

func (s *LibraryService) AddDeck(ctx context.Context, data repository.NewDeck) (domain.Deck, error) {
	return s.decks.Add(ctx, data)
}

func (s *LibraryService) UpdateDeck(ctx context.Context, id string, mutate func(*domain.Deck)) error {
	return s.decks.Update(ctx, id, mutate)
}

func (s *LibraryService) RemoveDeck(ctx context.Context, id string) error {
	return s.decks.Remove(ctx, id)
}

func (s *LibraryService) Decks() []domain.Deck {
	return s.decks.List()
}

func (s *LibraryService) Deck(id string) (domain.Deck, bool) {
	return s.decks.Get(id)
}

func (s *LibraryService) DeckName(id string) string {
	if id == "" {
		return UnknownName
	}
	if deck, ok := s.decks.Get(id); ok {
		return deck.Name
	}
	return UnknownName
}

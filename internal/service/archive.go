package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"magic-counter/internal/domain"
	"magic-counter/internal/repository"
)

// Snapshot is the export file shape: every collection plus the export
// timestamp. Import accepts the same shape.
type Snapshot struct {
	Users      []domain.User `json:"users"`
	Decks      []domain.Deck `json:"decks"`
	Games      []domain.Game `json:"games"`
	ExportedAt time.Time     `json:"exportedAt"`
}

// ArchiveService handles export, import and the per-collection
// destructive reset used to recover from corrupt persisted state.
type ArchiveService struct {
	users  *repository.UserRepository
	decks  *repository.DeckRepository
	games  *repository.GameRepository
	logger zerolog.Logger
}

func NewArchiveService(users *repository.UserRepository, decks *repository.DeckRepository, games *repository.GameRepository, logger zerolog.Logger) *ArchiveService {
	return &ArchiveService{users: users, decks: decks, games: games, logger: logger}
}

func (s *ArchiveService) Export() Snapshot {
	return Snapshot{
		Users:      s.users.List(),
		Decks:      s.decks.List(),
		Games:      s.games.List(),
		ExportedAt: time.Now(),
	}
}

// Import validates the whole payload before touching anything: a single
// invalid element rejects the import wholesale and existing state stays
// untouched. On success every collection is replaced.
func (s *ArchiveService) Import(ctx context.Context, data []byte) error {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
	}
	if err := validateSnapshot(snapshot); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
	}

	if err := s.users.Replace(ctx, snapshot.Users); err != nil {
		return err
	}
	if err := s.decks.Replace(ctx, snapshot.Decks); err != nil {
		return err
	}
	if err := s.games.Replace(ctx, snapshot.Games); err != nil {
		return err
	}

	s.logger.Info().
		Int("users", len(snapshot.Users)).
		Int("decks", len(snapshot.Decks)).
		Int("games", len(snapshot.Games)).
		Msg("import applied")
	return nil
}

func validateSnapshot(snapshot Snapshot) error {
	for _, u := range snapshot.Users {
		if err := u.Validate(); err != nil {
			return err
		}
	}
	for _, d := range snapshot.Decks {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	for _, g := range snapshot.Games {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Status reports which collections failed to load and await a reset.
type Status struct {
	Users bool `json:"users"`
	Decks bool `json:"decks"`
	Games bool `json:"games"`
}

func (s *ArchiveService) CorruptCollections() Status {
	return Status{
		Users: s.users.Corrupt(),
		Decks: s.decks.Corrupt(),
		Games: s.games.Corrupt(),
	}
}

// Reset discards a single collection, leaving the others alone.
func (s *ArchiveService) Reset(ctx context.Context, collection string) error {
	switch collection {
	case "users":
		return s.users.Reset(ctx)
	case "decks":
		return s.decks.Reset(ctx)
	case "games":
		return s.games.Reset(ctx)
	default:
		return fmt.Errorf("unknown collection %q", collection)
	}
}

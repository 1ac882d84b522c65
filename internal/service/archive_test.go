package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"magic-counter/internal/domain"
	"magic-counter/internal/repository"
)

func newTestArchive(t *testing.T) (*ArchiveService, *LibraryService) {
	t.Helper()
	db := newTestDB(t)
	users := repository.NewUserRepository(db, zerolog.Nop())
	decks := repository.NewDeckRepository(db, zerolog.Nop())
	games := repository.NewGameRepository(db, zerolog.Nop())
	return NewArchiveService(users, decks, games, zerolog.Nop()),
		NewLibraryService(users, decks, zerolog.Nop())
}

func TestArchive_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	archive, library := newTestArchive(t)

	user, err := library.AddUser(ctx, "Alice")
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	deck, err := library.AddDeck(ctx, repository.NewDeck{
		CreatedBy: user.ID,
		Name:      "Mono Red Burn",
		Colors:    []domain.ManaColor{domain.ColorRed},
	})
	if err != nil {
		t.Fatalf("add deck: %v", err)
	}

	exported, err := json.Marshal(archive.Export())
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}

	// A fresh install importing the snapshot ends up with the same data.
	fresh, freshLibrary := newTestArchive(t)
	if err := fresh.Import(ctx, exported); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := freshLibrary.UserName(user.ID); got != "Alice" {
		t.Fatalf("imported user name = %q, want Alice", got)
	}
	if got := freshLibrary.DeckName(deck.ID); got != "Mono Red Burn" {
		t.Fatalf("imported deck name = %q, want Mono Red Burn", got)
	}
}

func TestArchive_InvalidImportRejectedWholesale(t *testing.T) {
	ctx := context.Background()
	archive, library := newTestArchive(t)

	if _, err := library.AddUser(ctx, "Keeper"); err != nil {
		t.Fatalf("add user: %v", err)
	}

	// One invalid element anywhere in the payload rejects everything.
	payload := []byte(`{
		"users": [{"id":"u1","createdAt":"2026-01-01T00:00:00Z","name":"Valid"}],
		"decks": [{"id":"d1","createdAt":"2026-01-01T00:00:00Z","name":"No Colors","colors":[]}],
		"games": []
	}`)
	err := archive.Import(ctx, payload)
	if !errors.Is(err, domain.ErrInvalidImport) {
		t.Fatalf("import = %v, want ErrInvalidImport", err)
	}

	users := library.Users()
	if len(users) != 1 || users[0].Name != "Keeper" {
		t.Fatalf("users = %+v, want existing state untouched", users)
	}
}

func TestArchive_MalformedJSONRejected(t *testing.T) {
	archive, _ := newTestArchive(t)
	err := archive.Import(context.Background(), []byte(`{"users": [`))
	if !errors.Is(err, domain.ErrInvalidImport) {
		t.Fatalf("import = %v, want ErrInvalidImport", err)
	}
}

func TestArchive_ResetTargetsOneCollection(t *testing.T) {
	ctx := context.Background()
	archive, library := newTestArchive(t)

	if _, err := library.AddUser(ctx, "Alice"); err != nil {
		t.Fatalf("add user: %v", err)
	}
	if _, err := library.AddDeck(ctx, repository.NewDeck{
		Name:   "Azorius Control",
		Colors: []domain.ManaColor{domain.ColorWhite, domain.ColorBlue},
	}); err != nil {
		t.Fatalf("add deck: %v", err)
	}

	if err := archive.Reset(ctx, "decks"); err != nil {
		t.Fatalf("reset decks: %v", err)
	}
	if got := library.Decks(); len(got) != 0 {
		t.Fatalf("decks after reset = %d, want 0", len(got))
	}
	if got := library.Users(); len(got) != 1 {
		t.Fatalf("users after deck reset = %d, want 1 (untouched)", len(got))
	}

	if err := archive.Reset(ctx, "cards"); err == nil {
		t.Fatal("reset of an unknown collection must fail")
	}
}

func TestLibrary_NameFallbacks(t *testing.T) {
	ctx := context.Background()
	_, library := newTestArchive(t)

	user, err := library.AddUser(ctx, "Alice")
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	if got := library.UserName(user.ID); got != "Alice" {
		t.Fatalf("UserName = %q, want Alice", got)
	}
	if got := library.UserName(""); got != UnknownName {
		t.Fatalf("UserName(empty) = %q, want %q", got, UnknownName)
	}

	if err := library.RemoveUser(ctx, user.ID); err != nil {
		t.Fatalf("remove user: %v", err)
	}
	if got := library.UserName(user.ID); got != UnknownName {
		t.Fatalf("UserName(removed) = %q, want %q", got, UnknownName)
	}
	if got := library.DeckName("missing-deck"); got != UnknownName {
		t.Fatalf("DeckName(missing) = %q, want %q", got, UnknownName)
	}
}

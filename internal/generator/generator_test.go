package generator

import (
	"testing"

	"magic-counter/internal/domain"
)

func seededFixtures(t *testing.T, gen *Generator, userCount, deckCount int) ([]domain.User, []domain.Deck) {
	t.Helper()
	users := make([]domain.User, userCount)
	for i := range users {
		users[i] = gen.User()
	}
	decks := make([]domain.Deck, deckCount)
	for i := range decks {
		decks[i] = gen.Deck(users)
	}
	return users, decks
}

func TestGenerator_EntitiesValidate(t *testing.T) {
	gen := New(42)
	users, decks := seededFixtures(t, gen, 4, 6)

	for _, u := range users {
		if err := u.Validate(); err != nil {
			t.Fatalf("generated user invalid: %v", err)
		}
	}
	for _, d := range decks {
		if err := d.Validate(); err != nil {
			t.Fatalf("generated deck invalid: %v", err)
		}
	}
}

func TestGenerator_GameReplaysCleanly(t *testing.T) {
	gen := New(42)
	users, decks := seededFixtures(t, gen, 4, 3)

	for i := 0; i < 20; i++ {
		game, err := gen.Game(users, decks)
		if err != nil {
			t.Fatalf("game %d: %v", i, err)
		}
		if err := game.Validate(); err != nil {
			t.Fatalf("game %d invalid: %v", i, err)
		}
		if game.State != domain.StateFinished {
			t.Fatalf("game %d state = %q, want finished", i, game.State)
		}
		if game.Winner == "" || game.WinCondition == "" {
			t.Fatalf("game %d missing winner or win condition", i)
		}

		last, ok := game.Actions[len(game.Actions)-1].(domain.TurnChange)
		if !ok || last.To != "" {
			t.Fatalf("game %d does not end with a terminating turn-change", i)
		}
		if got := domain.CurrentActivePlayer(game); got != "" {
			t.Fatalf("game %d still has active player %q", i, got)
		}
	}
}

func TestGenerator_TurnsRotateSeatsInOrder(t *testing.T) {
	gen := New(7)
	users, decks := seededFixtures(t, gen, 4, 2)

	game, err := gen.Game(users, decks)
	if err != nil {
		t.Fatalf("game: %v", err)
	}

	seatIndex := make(map[string]int, len(game.Players))
	for i, p := range game.Players {
		seatIndex[p.ID] = i
	}

	expect := 0
	for _, act := range game.Actions {
		tc, ok := act.(domain.TurnChange)
		if !ok {
			continue
		}
		if tc.To == "" {
			break
		}
		if got := seatIndex[tc.To]; got != expect {
			t.Fatalf("turn went to seat %d, want %d", got, expect)
		}
		expect = (expect + 1) % len(game.Players)
	}
}

func TestGenerator_TimestampsAreMonotonic(t *testing.T) {
	gen := New(9)
	users, decks := seededFixtures(t, gen, 3, 2)

	game, err := gen.Game(users, decks)
	if err != nil {
		t.Fatalf("game: %v", err)
	}
	for i := 1; i < len(game.Actions); i++ {
		if game.Actions[i].ActionTime().Before(game.Actions[i-1].ActionTime()) {
			t.Fatalf("action %d timestamp precedes action %d", i, i-1)
		}
	}
}

func TestGenerator_GamePreconditions(t *testing.T) {
	gen := New(11)
	users, decks := seededFixtures(t, gen, 2, 1)

	if _, err := gen.Game(users[:1], decks); err == nil {
		t.Fatal("expected error for a single user")
	}
	if _, err := gen.Game(users, nil); err == nil {
		t.Fatal("expected error for no decks")
	}
}

func TestGenerator_DamageNeverTargetsActiveSeat(t *testing.T) {
	gen := New(13)
	users, decks := seededFixtures(t, gen, 4, 2)

	game, err := gen.Game(users, decks)
	if err != nil {
		t.Fatalf("game: %v", err)
	}
	active := ""
	for _, act := range game.Actions {
		switch a := act.(type) {
		case domain.TurnChange:
			active = a.To
		case domain.LifeChange:
			for _, target := range a.To {
				if target == active {
					t.Fatalf("active seat %s dealt damage to itself", active)
				}
			}
			if a.From != active {
				t.Fatalf("damage attributed to %s during %s's turn", a.From, active)
			}
		}
	}
}

// Package generator produces synthetic users, decks and played-out games
// for demos and developer tooling. Generated logs always replay cleanly
// through the derivation engine: turns rotate seats in order, the final
// turn-change ends the game.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"magic-counter/internal/domain"
	"magic-counter/internal/identity"
)

type Generator struct {
	rng *rand.Rand
}

// New returns a generator seeded for reproducibility; seed 0 picks the
// current time.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) User() domain.User {
	return domain.User{
		ID:        identity.New(),
		CreatedAt: time.Now(),
		Name:      pick(g.rng, userNames),
	}
}

// Deck generates a deck, randomly owned by one of the given users or
// global when none are supplied.
func (g *Generator) Deck(users []domain.User) domain.Deck {
	colorCount := 1 + g.rng.Intn(3)
	colors := make([]domain.ManaColor, 0, colorCount)
	for _, i := range g.rng.Perm(len(domain.ManaColors))[:colorCount] {
		colors = append(colors, domain.ManaColors[i])
	}

	deck := domain.Deck{
		ID:        identity.New(),
		CreatedAt: time.Now(),
		Name:      fmt.Sprintf("%s %s", pick(g.rng, deckAdjectives), pick(g.rng, deckNouns)),
		Colors:    colors,
	}
	if len(users) > 0 && g.rng.Intn(3) > 0 {
		deck.CreatedBy = users[g.rng.Intn(len(users))].ID
	}
	if g.rng.Intn(2) == 0 {
		deck.Commanders = []domain.Commander{{
			ID:     identity.New(),
			Name:   pick(g.rng, commanderNames),
			Type:   "Legendary Creature",
			Colors: colors,
		}}
	}
	if g.rng.Intn(4) == 0 {
		deck.Options = append(deck.Options, domain.OptionMonarch)
	}
	if g.rng.Intn(4) == 0 {
		deck.Options = append(deck.Options, domain.OptionInfect)
	}
	return deck
}

// Game simulates a finished, turn-tracked game between the given users
// and decks. It requires at least two users and one deck; asking for a
// tracked game without them is an explicit error rather than an invalid
// game.
func (g *Generator) Game(users []domain.User, decks []domain.Deck) (domain.Game, error) {
	if len(users) < 2 {
		return domain.Game{}, fmt.Errorf("random game needs at least two users, have %d", len(users))
	}
	if len(decks) == 0 {
		return domain.Game{}, fmt.Errorf("random game needs at least one deck")
	}

	playerCount := 2 + g.rng.Intn(3)
	if playerCount > len(users) {
		playerCount = len(users)
	}

	commanders := g.rng.Intn(2) == 0
	startingLife := 20
	if commanders {
		startingLife = 40
	}

	players := make([]domain.Player, playerCount)
	for i, idx := range g.rng.Perm(len(users))[:playerCount] {
		players[i] = domain.Player{
			ID:     identity.New(),
			UserID: users[idx].ID,
			DeckID: decks[g.rng.Intn(len(decks))].ID,
		}
	}

	createdAt := time.Now().Add(-time.Duration(1+g.rng.Intn(72)) * time.Hour)
	game := domain.Game{
		ID:           identity.New(),
		CreatedAt:    createdAt,
		State:        domain.StateFinished,
		Players:      players,
		TurnTracking: true,
		StartingLife: startingLife,
		Commanders:   commanders,
		Actions:      domain.ActionLog{},
	}

	g.simulate(&game)
	return game, nil
}

// simulate plays the game out: seats take turns in order, each turn deals
// some damage, and the last turn-change closes the game.
func (g *Generator) simulate(game *domain.Game) {
	clock := game.CreatedAt
	tick := func() time.Time {
		clock = clock.Add(time.Duration(20+g.rng.Intn(40)) * time.Second)
		return clock
	}

	players := game.Players
	game.Actions = append(game.Actions, domain.TurnChange{
		ID:        identity.New(),
		CreatedAt: tick(),
		To:        players[0].ID,
	})

	rounds := 2 + g.rng.Intn(4)
	active := 0
	for round := 0; round < rounds; round++ {
		for seat := range players {
			if round == 0 && seat == 0 {
				// Opening turn already recorded.
			} else {
				next := (active + 1) % len(players)
				game.Actions = append(game.Actions, domain.TurnChange{
					ID:        identity.New(),
					CreatedAt: tick(),
					From:      players[active].ID,
					To:        players[next].ID,
				})
				active = next
			}

			for hits := g.rng.Intn(3); hits > 0; hits-- {
				target := g.rng.Intn(len(players))
				if target == active {
					continue
				}
				game.Actions = append(game.Actions, domain.LifeChange{
					ID:        identity.New(),
					CreatedAt: tick(),
					Value:     -(1 + g.rng.Intn(8)),
					From:      players[active].ID,
					To:        []string{players[target].ID},
				})
			}
		}
	}

	game.Actions = append(game.Actions, domain.TurnChange{
		ID:        identity.New(),
		CreatedAt: tick(),
		From:      players[active].ID,
	})

	winner := players[g.rng.Intn(len(players))]
	game.Winner = winner.UserID
	game.WinCondition = domain.WinCombat
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

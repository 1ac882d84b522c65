package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"magic-counter/internal/api"
	"magic-counter/internal/constants"
	"magic-counter/internal/domain"
)

// CardService resolves free-text queries into commander candidates a
// deck can keep.
type CardService struct {
	cards  *api.CardClient
	logger zerolog.Logger
}

func NewCardService(cards *api.CardClient, logger zerolog.Logger) *CardService {
	return &CardService{cards: cards, logger: logger}
}

// Search autocompletes the query and fetches details for each candidate
// in parallel. Candidates whose detail fetch fails are dropped rather
// than failing the whole search.
func (s *CardService) Search(ctx context.Context, query string) ([]domain.Commander, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	suggestions, err := s.cards.Autocomplete(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("card autocomplete failed")
		return nil, fmt.Errorf("card autocomplete: %w", err)
	}

	names := suggestions.Data
	if len(names) > constants.CardSuggestionLimit {
		names = names[:constants.CardSuggestionLimit]
	}

	results := make([]*domain.Commander, len(names))
	g, gCtx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			card, err := s.cards.NamedCard(gCtx, name)
			if err != nil {
				s.logger.Warn().Err(err).Str("name", name).Msg("card detail fetch failed, dropping candidate")
				return nil
			}
			colors := make([]domain.ManaColor, 0, len(card.ColorIdentity))
			for _, c := range card.ColorIdentity {
				colors = append(colors, domain.ManaColor(c))
			}
			results[i] = &domain.Commander{
				ID:     card.ID,
				Name:   card.Name,
				Type:   card.TypeLine,
				Colors: colors,
				Image:  card.ImageURIs.ArtCrop,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	commanders := make([]domain.Commander, 0, len(results))
	for _, c := range results {
		if c != nil {
			commanders = append(commanders, *c)
		}
	}
	return commanders, nil
}

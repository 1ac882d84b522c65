package fx

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"magic-counter/internal/api"
	"magic-counter/internal/config"
	"magic-counter/internal/database"
	"magic-counter/internal/logger"
	"magic-counter/internal/repository"
	"magic-counter/internal/server"
	"magic-counter/internal/service"
)

func ProvideControlRegistry(games *service.GameService, cfg *config.Config, log zerolog.Logger) *server.ControlRegistry {
	return server.NewControlRegistry(games, cfg.DebounceDelay, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewUserRepository),
	fx.Provide(repository.NewDeckRepository),
	fx.Provide(repository.NewGameRepository),
	// api client
	fx.Provide(api.NewCardClient),
	// svc
	fx.Provide(service.NewLibraryService),
	fx.Provide(service.NewGameService),
	fx.Provide(service.NewViewService),
	fx.Provide(service.NewArchiveService),
	fx.Provide(service.NewCardService),
	// server
	fx.Provide(ProvideControlRegistry),
	fx.Provide(server.NewHub),
	fx.Provide(server.NewCounterServer),
)

package fx

import (
	"database/sql"

	"misfit-alliance/internal/ai"
	"misfit-alliance/internal/api"
	"misfit-alliance/internal/config"
	"misfit-alliance/internal/database"
	"misfit-alliance/internal/db"
	"misfit-alliance/internal/engine"
	"misfit-alliance/internal/ids"
	"misfit-alliance/internal/logger"
	"misfit-alliance/internal/proxy"
	"misfit-alliance/internal/repository"
	"misfit-alliance/internal/server"
	"misfit-alliance/internal/service"

	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

func ProvideNarrator(clock clockwork.Clock) *engine.Narrator {
	return engine.NewNarrator(engine.NewRand(), clock, ids.NanoID{})
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	fx.Provide(ProvideClock),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewPostRepository),
	fx.Provide(repository.NewStateRepository),
	fx.Provide(repository.NewMatchRepository),
	// ai
	fx.Provide(api.NewArkClient),
	fx.Provide(fx.Annotate(ai.NewGateway, fx.As(new(service.Collaborator)))),
	fx.Provide(ProvideNarrator),
	// svc
	fx.Provide(service.NewLeagueLock),
	fx.Provide(service.NewRosterService),
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewForumService),
	fx.Provide(service.NewDashboardService),
	// server
	fx.Provide(server.NewAllianceServer),
	fx.Provide(server.NewHealth),
	fx.Provide(proxy.NewHandler),
)

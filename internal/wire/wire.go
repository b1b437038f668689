package wire

import (
	"cinema-ticketing/internal/adaptor"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/internal/event"
	"cinema-ticketing/internal/usecase"
	"cinema-ticketing/pkg/database"
	"cinema-ticketing/pkg/middleware"
	"cinema-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the router and the services background jobs need
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Deps are the infrastructure clients built in main. Redis may be nil.
type Deps struct {
	DB        database.PgxIface
	Redis     redis.Scripter
	Publisher event.Publisher
}

func Wiring(repo *repository.Repository, deps Deps, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, deps.Publisher, logger)
	handler := adaptor.NewHandler(service, deps.DB, logger)

	router := setupRouter(handler, repo, deps, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	deps Deps,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())

	r.Get("/health", handler.Health.Check)

	wireAuth(r, handler.Auth, repo, logger)
	wireUser(r, handler.User, repo, logger)
	wireMovie(r, handler.Movie, repo, logger)
	wireHall(r, handler.Hall, repo, logger)
	wireSession(r, handler.Session, repo, logger)
	wireTicket(r, handler.Ticket, repo, deps.Redis, config, logger)
	wireReview(r, handler.Review, repo, logger)

	return r
}

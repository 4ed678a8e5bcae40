package router

import (
	"github.com/vrlink/vrlink-api/internal/application"
	"github.com/vrlink/vrlink-api/internal/container"
	pginfra "github.com/vrlink/vrlink-api/internal/infrastructure/postgres"
	handlers "github.com/vrlink/vrlink-api/internal/interface/http"
	"github.com/vrlink/vrlink-api/internal/router/modules"
)

// InitModules builds all application modules from the container singletons
// and registers them with the router registry. Called once during startup.
func InitModules(r *Registry) {
	repo := pginfra.NewUserRepository(container.GetPGPool())
	svc := application.NewService(
		repo,
		container.GetJWT(),
		container.GetConfig().LinkCodeSecret,
		container.GetRedis(),
		container.GetLogger(),
	)
	handler := handlers.NewAuthHandler(svc, container.GetLogger())

	r.Add(modules.NewAuthModule(handler, container.GetJWT()))
	r.Add(modules.NewHealthModule())
}

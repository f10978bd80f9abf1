package auth

import (
	"github.com/Rosario027/finalerp/internal/auth/repository"
	"github.com/Rosario027/finalerp/internal/auth/service"
	"github.com/Rosario027/finalerp/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(token.NewIssuer),
	fx.Provide(service.New),
)

package invoice

import (
	"github.com/Rosario027/finalerp/internal/invoice/numbering"
	"github.com/Rosario027/finalerp/internal/invoice/repository"
	"github.com/Rosario027/finalerp/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	numbering.Module,
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

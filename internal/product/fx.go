package product

import (
	"github.com/Rosario027/finalerp/internal/product/repository"
	"github.com/Rosario027/finalerp/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

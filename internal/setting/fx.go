package setting

import (
	"github.com/Rosario027/finalerp/internal/setting/repository"
	"github.com/Rosario027/finalerp/internal/setting/service"
	"go.uber.org/fx"
)

var Module = fx.Module("setting.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

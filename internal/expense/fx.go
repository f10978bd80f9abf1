package expense

import (
	"github.com/Rosario027/finalerp/internal/expense/service"
	"go.uber.org/fx"
)

var Module = fx.Module("expense.service",
	fx.Provide(service.New),
)

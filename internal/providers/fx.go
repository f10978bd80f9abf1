package providers

import (
	"github.com/Rosario027/finalerp/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	pdf.Module,
)

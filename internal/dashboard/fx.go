package dashboard

import (
	"go.uber.org/fx"

	"github.com/parkscope/parkscope/internal/dashboard/service"
)

var Module = fx.Module("dashboard",
	fx.Provide(service.NewService),
)

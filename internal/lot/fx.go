package lot

import (
	"go.uber.org/fx"

	"github.com/parkscope/parkscope/internal/lot/repository"
)

var Module = fx.Module("lot",
	fx.Provide(repository.Provide),
)

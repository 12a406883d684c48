package occupancy

import (
	"go.uber.org/fx"

	"github.com/parkscope/parkscope/internal/occupancy/repository"
)

var Module = fx.Module("occupancy",
	fx.Provide(repository.Provide),
)

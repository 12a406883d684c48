package history

import (
	"go.uber.org/fx"

	"github.com/parkscope/parkscope/internal/history/repository"
)

var Module = fx.Module("history",
	fx.Provide(repository.Provide),
)

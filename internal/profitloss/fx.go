package profitloss

import (
	"github.com/seatwise/seatwise/internal/profitloss/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profitloss.service",
	fx.Provide(service.New),
)

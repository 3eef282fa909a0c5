package subscription

import (
	"github.com/seatwise/seatwise/internal/subscription/repository"
	"github.com/seatwise/seatwise/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

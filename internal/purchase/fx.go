package purchase

import (
	"github.com/seatwise/seatwise/internal/purchase/repository"
	"github.com/seatwise/seatwise/internal/purchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

package sale

import (
	"github.com/seatwise/seatwise/internal/sale/repository"
	"github.com/seatwise/seatwise/internal/sale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sale.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

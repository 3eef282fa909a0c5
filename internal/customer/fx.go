package customer

import (
	"github.com/seatwise/seatwise/internal/customer/repository"
	"github.com/seatwise/seatwise/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

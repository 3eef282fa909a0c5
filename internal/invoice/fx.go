package invoice

import (
	"github.com/seatwise/seatwise/internal/invoice/repository"
	"github.com/seatwise/seatwise/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

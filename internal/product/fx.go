package product

import (
	"github.com/seatwise/seatwise/internal/product/repository"
	"github.com/seatwise/seatwise/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

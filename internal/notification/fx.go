package notification

import (
	"github.com/seatwise/seatwise/internal/notification/repository"
	"github.com/seatwise/seatwise/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

package migration

import (
	"strings"

	"github.com/seatwise/seatwise/internal/config"
	customerdomain "github.com/seatwise/seatwise/internal/customer/domain"
	invoicedomain "github.com/seatwise/seatwise/internal/invoice/domain"
	notificationdomain "github.com/seatwise/seatwise/internal/notification/domain"
	productdomain "github.com/seatwise/seatwise/internal/product/domain"
	purchasedomain "github.com/seatwise/seatwise/internal/purchase/domain"
	saledomain "github.com/seatwise/seatwise/internal/sale/domain"
	subscriptiondomain "github.com/seatwise/seatwise/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned SQL migrations run against postgres. Other dialects
		// (sqlite in dev, mysql) build the schema from the models.
		if strings.EqualFold(cfg.DBType, "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		return conn.AutoMigrate(
			&customerdomain.Customer{},
			&productdomain.Product{},
			&productdomain.PricingTier{},
			&purchasedomain.Purchase{},
			&saledomain.Sale{},
			&subscriptiondomain.Subscription{},
			&invoicedomain.Invoice{},
			&invoicedomain.InvoiceItem{},
			&notificationdomain.Notification{},
		)
	}),
)

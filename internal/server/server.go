package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/seatwise/seatwise/internal/cache"
	"github.com/seatwise/seatwise/internal/config"
	"github.com/seatwise/seatwise/internal/customer"
	customerdomain "github.com/seatwise/seatwise/internal/customer/domain"
	"github.com/seatwise/seatwise/internal/export/pdf"
	"github.com/seatwise/seatwise/internal/invoice"
	invoicedomain "github.com/seatwise/seatwise/internal/invoice/domain"
	"github.com/seatwise/seatwise/internal/metrics"
	"github.com/seatwise/seatwise/internal/notification"
	notificationdomain "github.com/seatwise/seatwise/internal/notification/domain"
	"github.com/seatwise/seatwise/internal/notifier"
	"github.com/seatwise/seatwise/internal/product"
	productdomain "github.com/seatwise/seatwise/internal/product/domain"
	"github.com/seatwise/seatwise/internal/profitloss"
	profitlossdomain "github.com/seatwise/seatwise/internal/profitloss/domain"
	"github.com/seatwise/seatwise/internal/purchase"
	purchasedomain "github.com/seatwise/seatwise/internal/purchase/domain"
	"github.com/seatwise/seatwise/internal/ratelimit"
	"github.com/seatwise/seatwise/internal/sale"
	saledomain "github.com/seatwise/seatwise/internal/sale/domain"
	"github.com/seatwise/seatwise/internal/subscription"
	subscriptiondomain "github.com/seatwise/seatwise/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	cache.Module,
	metrics.Module,
	ratelimit.Module,
	notifier.Module,
	pdf.Module,
	customer.Module,
	product.Module,
	purchase.Module,
	sale.Module,
	subscription.Module,
	invoice.Module,
	notification.Module,
	profitloss.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *metrics.HTTP) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogMiddleware(log))
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger

	customerSvc     customerdomain.Service
	productSvc      productdomain.Service
	purchaseSvc     purchasedomain.Service
	saleSvc         saledomain.Service
	subscriptionSvc subscriptiondomain.Service
	invoiceSvc      invoicedomain.Service
	notificationSvc notificationdomain.Service
	profitLossSvc   profitlossdomain.Service

	pdfRenderer  *pdf.Renderer
	writeLimiter *ratelimit.WriteLimiter
}

type ServerParams struct {
	fx.In

	Gin *gin.Engine
	Cfg config.Config
	DB  *gorm.DB
	Log *zap.Logger

	CustomerSvc     customerdomain.Service
	ProductSvc      productdomain.Service
	PurchaseSvc     purchasedomain.Service
	SaleSvc         saledomain.Service
	SubscriptionSvc subscriptiondomain.Service
	InvoiceSvc      invoicedomain.Service
	NotificationSvc notificationdomain.Service
	ProfitLossSvc   profitlossdomain.Service

	PDFRenderer  *pdf.Renderer
	WriteLimiter *ratelimit.WriteLimiter
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             p.Log.Named("http.server"),
		customerSvc:     p.CustomerSvc,
		productSvc:      p.ProductSvc,
		purchaseSvc:     p.PurchaseSvc,
		saleSvc:         p.SaleSvc,
		subscriptionSvc: p.SubscriptionSvc,
		invoiceSvc:      p.InvoiceSvc,
		notificationSvc: p.NotificationSvc,
		profitLossSvc:   p.ProfitLossSvc,
		pdfRenderer:     p.PDFRenderer,
		writeLimiter:    p.WriteLimiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(s.WriteRateLimit())

	s.registerCustomerRoutes(api)
	s.registerProductRoutes(api)
	s.registerPurchaseRoutes(api)
	s.registerSaleRoutes(api)
	s.registerSubscriptionRoutes(api)
	s.registerInvoiceRoutes(api)
	s.registerNotificationRoutes(api)
	s.registerReportRoutes(api)
}

func (s *Server) registerCustomerRoutes(api *gin.RouterGroup) {
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers", s.ListCustomers)
	api.GET("/customers/export", s.ExportCustomers)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PUT("/customers/:id", s.UpdateCustomer)
	api.DELETE("/customers/:id", s.DeleteCustomer)
}

func (s *Server) registerProductRoutes(api *gin.RouterGroup) {
	api.POST("/products", s.CreateProduct)
	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProductByID)
	api.PUT("/products/:id", s.UpdateProduct)
	api.DELETE("/products/:id", s.DeleteProduct)
	api.GET("/products/:id/availability", s.GetProductAvailability)

	api.POST("/products/:id/tiers", s.CreatePricingTier)
	api.PUT("/tiers/:id", s.UpdatePricingTier)
	api.DELETE("/tiers/:id", s.DeletePricingTier)
}

func (s *Server) registerPurchaseRoutes(api *gin.RouterGroup) {
	api.POST("/purchases", s.CreatePurchase)
	api.GET("/purchases", s.ListPurchases)
	api.GET("/purchases/:id", s.GetPurchaseByID)
	api.PUT("/purchases/:id", s.UpdatePurchase)
	api.DELETE("/purchases/:id", s.DeletePurchase)
}

func (s *Server) registerSaleRoutes(api *gin.RouterGroup) {
	api.POST("/sales", s.CreateSale)
	api.GET("/sales", s.ListSales)
	api.GET("/sales/export", s.ExportSales)
	api.GET("/sales/:id", s.GetSaleByID)
	api.PUT("/sales/:id", s.UpdateSale)
	api.DELETE("/sales/:id", s.DeleteSale)
}

func (s *Server) registerSubscriptionRoutes(api *gin.RouterGroup) {
	api.POST("/subscriptions", s.CreateSubscription)
	api.GET("/subscriptions", s.ListSubscriptions)
	api.GET("/subscriptions/expiring", s.ListExpiringSubscriptions)
	api.POST("/subscriptions/quote", s.QuoteSubscription)
	api.GET("/subscriptions/:id", s.GetSubscriptionByID)
	api.POST("/subscriptions/:id/cancel", s.CancelSubscription)
	api.POST("/subscriptions/:id/renew", s.RenewSubscription)
	api.DELETE("/subscriptions/:id", s.DeleteSubscription)
}

func (s *Server) registerInvoiceRoutes(api *gin.RouterGroup) {
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.POST("/invoices/:id/pay", s.PayInvoice)
	api.GET("/invoices/:id/pdf", s.DownloadInvoicePDF)
	api.DELETE("/invoices/:id", s.DeleteInvoice)
}

func (s *Server) registerNotificationRoutes(api *gin.RouterGroup) {
	api.POST("/notifications", s.CreateNotification)
	api.GET("/notifications", s.ListNotifications)
	api.GET("/notifications/unread-count", s.UnreadNotificationCount)
	api.POST("/notifications/mark-all-read", s.MarkAllNotificationsRead)
	api.GET("/notifications/:id", s.GetNotificationByID)
	api.POST("/notifications/:id/read", s.MarkNotificationRead)
	api.DELETE("/notifications/:id", s.DeleteNotification)
}

func (s *Server) registerReportRoutes(api *gin.RouterGroup) {
	api.GET("/reports/profit-loss", s.GetProfitLossReport)
	api.GET("/reports/profit-loss/export", s.ExportProfitLossReport)
}

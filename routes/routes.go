package routes

import (
	"net/http"

	"dairyflow-backend/config"
	"dairyflow-backend/controllers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter wires every HTTP route. gatherer may be nil to use the default
// Prometheus registry.
func SetupRouter(cfg *config.Config, h *controllers.Controller, logger *zap.Logger, gatherer prometheus.Gatherer) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	allowed := make(map[string]bool, len(cfg.CORSAllowOrigins))
	for _, origin := range cfg.CORSAllowOrigins {
		allowed[origin] = true
	}
	r.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return allowed[origin]
		},
	}))

	r.Use(config.PerformanceLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	r.GET("/public/bills", h.GetPublicBill)

	api := r.Group("/api")
	{
		customers := api.Group("/customers")
		{
			customers.POST("", h.CreateCustomer)
			customers.GET("", h.GetCustomers)
			customers.GET("/:id", h.GetCustomer)
			customers.PUT("/:id", h.UpdateCustomer)
			customers.DELETE("/:id", h.DeleteCustomer)

			customers.GET("/:id/calendar", h.GetCalendar)
			customers.GET("/:id/overrides/:date", h.GetOverride)
			customers.PUT("/:id/overrides/:date", h.SaveOverride)
			customers.DELETE("/:id/overrides/:date", h.DeleteOverride)

			customers.GET("/:id/bills", h.GetBills)
			customers.POST("/:id/bills", h.GenerateBill)
			customers.GET("/:id/bills/preview", h.PreviewBill)
			customers.GET("/:id/bills/:billId", h.GetBill)
			customers.PUT("/:id/bills/:billId/pay", h.MarkBillPaid)
			customers.GET("/:id/bills/:billId/link", h.GetBillLink)
			customers.POST("/:id/bills/:billId/notify", h.NotifyBill)
			customers.GET("/:id/bills/:billId/notifications", h.GetBillNotifications)
		}

		items := api.Group("/items")
		{
			items.POST("", h.CreateItem)
			items.GET("", h.GetItems)
			items.GET("/:id", h.GetItem)
			items.PUT("/:id", h.UpdateItem)
			items.DELETE("/:id", h.DeleteItem)
		}

		api.GET("/dashboard", h.GetDashboardOverview)
		api.GET("/reports", h.GetBillingReport)
	}

	return r
}

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Dominic0607/Order-System-sub000/internal/config"
	"github.com/Dominic0607/Order-System-sub000/internal/http/handlers"
	"github.com/Dominic0607/Order-System-sub000/internal/middleware"
	"github.com/Dominic0607/Order-System-sub000/internal/ws"
)

func NewRouter(h *handlers.Handler, logger *zap.Logger, cfg config.Config, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Cache-Control",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}
		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}
		r.Use(cors.Handler(options))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/console", func(r chi.Router) {
		r.Use(middleware.ConsoleAuth(cfg.JWTSecret))

		r.Get("/reports/pivot", h.ReportPivot)
		r.Post("/reports/drilldown", h.ReportDrillDown)

		r.Get("/orders", h.OrdersList)
		r.Patch("/orders/{orderID}", h.OrderUpdate)
		r.Post("/orders/refresh", h.OrdersRefresh)

		r.Get("/entities/{kind}", h.EntitiesList)
		r.Get("/exports/delivery-list", h.DeliveryListExport)
	})

	if wsServer != nil {
		r.Get("/ws/console", wsServer.Handle)
	}

	return r
}

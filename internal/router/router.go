package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alisoleah/qr-ordering-api/internal/config"
	"github.com/alisoleah/qr-ordering-api/internal/database"
	"github.com/alisoleah/qr-ordering-api/internal/handler"
	mw "github.com/alisoleah/qr-ordering-api/internal/middleware"
	"github.com/alisoleah/qr-ordering-api/internal/payment"
	"github.com/alisoleah/qr-ordering-api/internal/qr"
	"github.com/alisoleah/qr-ordering-api/internal/service"
)

// New creates a Chi router with all application routes wired up under /api.
// Guest endpoints are public; staff endpoints sit behind JWT auth.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	qrGen := qr.NewGenerator(cfg.BaseURL)
	providers := payment.NewRegistry(payment.Simulated{})

	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})
	settlementService := service.NewSettlementService(queries, pool, func(db database.DBTX) service.SettlementStore {
		return database.New(db)
	}, providers)
	billSplitService := service.NewBillSplitService(queries, pool, func(db database.DBTX) service.BillSplitStore {
		return database.New(db)
	}, qrGen)

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	menuHandler := handler.NewMenuHandler(queries)
	tableHandler := handler.NewTableHandler(queries, qrGen)
	orderHandler := handler.NewOrderHandler(orderService, queries)
	settlementHandler := handler.NewSettlementHandler(settlementService)
	billSplitHandler := handler.NewBillSplitHandler(billSplitService)

	r.Route("/api", func(r chi.Router) {
		// Public: guest phones hit these straight from QR codes.
		authHandler.RegisterRoutes(r)
		menuHandler.RegisterRoutes(r)
		orderHandler.RegisterGuestRoutes(r)
		settlementHandler.RegisterGuestRoutes(r)
		billSplitHandler.RegisterGuestRoutes(r)

		// Staff: JWT required.
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			r.Use(mw.RequireRole("ADMIN", "STAFF"))

			settlementHandler.RegisterAdminRoutes(r)
			billSplitHandler.RegisterAdminRoutes(r)
			r.Route("/admin/orders", orderHandler.RegisterAdminRoutes)

			// Table management is ADMIN only.
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole("ADMIN"))
				r.Route("/admin/tables", tableHandler.RegisterRoutes)
			})
		})
	})

	return r
}

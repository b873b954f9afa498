package server

import (
	"net/http"
	"strconv"
	"time"

	"ms-servicing/internal/auth"
	"ms-servicing/internal/logger"
	"ms-servicing/internal/models"
	"ms-servicing/internal/tickets/ticket_api"
	"ms-servicing/internal/users/user_api"
	"ms-servicing/internal/utils"
	"ms-servicing/internal/vehicles/vehicle_api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Deps struct {
	Tickets  *ticket_api.Handler
	Vehicles *vehicle_api.Handler
	Users    *user_api.Handler

	Verifier  auth.Verifier
	Customers auth.CustomerResolver
	// Cache may be nil.
	Cache  auth.IdentityCache
	Logger *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(d.Logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
	})

	r.Route("/api", func(r chi.Router) {
		d.Users.RegisterPublicRoutes(r)
		d.Vehicles.RegisterPublicRoutes(r)
		d.Logger.Info("ROUTER", "Public routes registered under /api")

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(d.Verifier, d.Customers, d.Cache, d.Logger))

			d.Users.RegisterCustomerRoutes(r)
			d.Vehicles.RegisterCustomerRoutes(r)
			d.Tickets.RegisterCustomerRoutes(r)
			d.Logger.Info("ROUTER", "Customer routes registered under /api")

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin))
				d.Tickets.RegisterAdminRoutes(r)
				d.Users.RegisterAdminRoutes(r)
			})
			d.Logger.Info("ROUTER", "Admin routes registered under /api/admin")
		})
	})
	return r
}

// RequestLogger logs method, path, status and latency of every request.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.LogAPI(r.Method, r.URL.Path, strconv.Itoa(status), time.Since(start).Round(time.Microsecond).String())
		})
	}
}

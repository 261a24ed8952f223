package http //nolint:revive // directory-based package name, imported with alias

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	requestTimeout = 30 * time.Second
	adminRealm     = "tokoss admin"
)

type AdminCredentials struct {
	User     string
	Password string
}

// NewRouter mounts the public shop API and, behind basic auth, the admin API.
// Admin routes answer 403 while no admin password is configured.
func NewRouter(h *Handler, admin AdminCredentials) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", h.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.HandleProducts)
		r.Get("/store", h.HandleStore)
		r.Post("/testimonials", h.HandleAddTestimonial)
		r.Post("/checkout", h.HandleCheckout)

		r.Route("/orders/{order_id}", func(r chi.Router) {
			r.Get("/", h.HandleOrder)
			r.Get("/qr", h.HandleQR)
			r.Post("/proof", h.HandleProof)
			r.Post("/cancel", h.HandleCancel)
		})

		r.Route("/admin", func(r chi.Router) {
			if admin.Password == "" {
				r.Use(adminDisabled)
			} else {
				r.Use(middleware.BasicAuth(adminRealm, map[string]string{admin.User: admin.Password}))
			}

			r.Get("/orders", h.HandleListOrders)
			r.Post("/orders/{order_id}/status", h.HandleResolveOrder)
			r.Get("/losses", h.HandleLosses)
			r.Post("/losses", h.HandleAddLoss)
			r.Get("/summary", h.HandleSummary)
			r.Post("/reset", h.HandleReset)
			r.Put("/products/{product_id}", h.HandleSaveProduct)
			r.Delete("/products/{product_id}", h.HandleDeleteProduct)
			r.Get("/settings", h.HandleSettings)
			r.Put("/settings", h.HandleSaveSettings)
			r.Put("/content", h.HandleSaveContent)
		})
	})

	return r
}

func adminDisabled(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin api disabled"})
	})
}

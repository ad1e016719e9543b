package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"retail-ops/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
	logger    *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string, logger *zap.Logger) http.Handler {
	h := &Handler{svc: svc, jwtSecret: jwtSecret, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))

	// Health (public)
	r.Get("/api/health", h.health)

	// Auth (public)
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20))
		r.Post("/api/auth/signup", h.signup)
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/logout", h.logout)
	})

	// Protected API routes: 401 JSON if unauthenticated.
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Stock watch streams; no body to limit.
		r.Get("/api/stock/watch", h.watchStock)

		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20)) // 1 MB

			r.Get("/api/auth/me", h.me)
			r.Delete("/api/auth/account", h.deleteAccount)

			// Catalog
			r.Get("/api/products", h.listProducts)
			r.Post("/api/products", h.createProduct)
			r.Get("/api/products/low-stock", h.listLowStock)
			r.Get("/api/products/{id}", h.getProduct)
			r.Put("/api/products/{id}", h.updateProduct)
			r.Delete("/api/products/{id}", h.deleteProduct)

			r.Get("/api/categories", h.listCategories)
			r.Post("/api/categories", h.createCategory)
			r.Put("/api/categories/{id}", h.updateCategory)
			r.Delete("/api/categories/{id}", h.deleteCategory)

			r.Get("/api/warehouses", h.listWarehouses)
			r.Post("/api/warehouses", h.createWarehouse)
			r.Get("/api/warehouses/{id}", h.getWarehouse)
			r.Put("/api/warehouses/{id}", h.updateWarehouse)
			r.Delete("/api/warehouses/{id}", h.deleteWarehouse)

			// Transfers
			r.Get("/api/transfers", h.listTransfers)
			r.Post("/api/transfers", h.createTransfer)
			r.Get("/api/transfers/{id}", h.getTransfer)
			r.Put("/api/transfers/{id}", h.updateTransfer)
			r.Delete("/api/transfers/{id}", h.deleteTransfer)
			r.Post("/api/transfers/{id}/dispatch", h.dispatchTransfer)
			r.Post("/api/transfers/{id}/receive", h.receiveTransfer)
			r.Post("/api/transfers/{id}/cancel", h.cancelTransfer)

			// Validation queue is owner-only.
			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole("owner"))
				r.Get("/api/transfers/pending-validation", h.listPendingValidation)
				r.Post("/api/transfers/{id}/validate", h.validateTransfer)
			})

			// Sales
			r.Post("/api/sales/checkout", h.checkout)
			r.Get("/api/sales", h.listTransactions)

			// Reporting
			r.Get("/api/dashboard", h.dashboard)

			// User administration is owner-only.
			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole("owner"))
				r.Get("/api/users", h.listProfiles)
				r.Put("/api/users/{id}/role", h.assignRole)
			})
		})
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// idParam extracts the {id} URL parameter as an int.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// Package handler exposes the storefront HTTP API: checkout, order
// confirmation reads, the session cart, the product catalog, contact
// submissions, and the API-key-guarded admin status transition.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/steelhaven/storefront/internal/domain/auth"
	"github.com/steelhaven/storefront/internal/domain/cart"
	"github.com/steelhaven/storefront/internal/domain/contact"
	"github.com/steelhaven/storefront/internal/domain/order"
	"github.com/steelhaven/storefront/internal/domain/product"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// APIKeyPepper is the HMAC pepper admin API keys are hashed with.
	APIKeyPepper []byte
}

// Handler routes storefront API requests to the domain services.
type Handler struct {
	orders   *order.Service
	contacts *contact.Service
	products product.Repository
	carts    cart.Persister
	apikeys  auth.Repository
	pepper   []byte
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	orders *order.Service,
	contacts *contact.Service,
	products product.Repository,
	carts cart.Persister,
	apikeys auth.Repository,
) *Handler {
	return &Handler{
		orders:   orders,
		contacts: contacts,
		products: products,
		carts:    carts,
		apikeys:  apikeys,
		pepper:   cfg.APIKeyPepper,
	}
}

// Routes returns the chi router for the /api subtree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/orders", h.placeOrder)
	r.Get("/orders/{ref}", h.getOrder)

	r.Post("/contact", h.submitContact)

	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addCartItem)
		r.Patch("/items/{id}", h.updateCartItem)
		r.Delete("/items/{id}", h.removeCartItem)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAPIKey(auth.ScopeManageOrders))
		r.Patch("/orders/{id}/status", h.updateOrderStatus)
	})

	return r
}

// respond writes v as a JSON response with the given status.
func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing left to do but note it.
		zap.L().Debug("response encode failed", zap.Error(err))
	}
}

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, errorResponse{Error: msg})
}

// serverError logs the underlying error and responds with a generic message.
// Storage error text never reaches the client.
func serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	zctx.From(r.Context()).Error(msg, zap.Error(err))
	respondError(w, http.StatusInternalServerError, msg)
}

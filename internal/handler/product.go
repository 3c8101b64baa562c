package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/steelhaven/storefront/internal/domain/product"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		serverError(w, r, "failed to list products", err)
		return
	}
	if products == nil {
		products = []product.Product{}
	}
	respond(w, http.StatusOK, map[string]any{"products": products})
}

// getProduct resolves the path segment as an ID first and falls back to the
// slug, so both /products/<uuid> and /products/<slug> work.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "id")

	p, err := h.products.GetByID(r.Context(), ref)
	if errors.Is(err, product.ErrNotFound) {
		p, err = h.products.GetBySlug(r.Context(), ref)
	}
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		serverError(w, r, "failed to load product", err)
		return
	}

	respond(w, http.StatusOK, map[string]any{"product": p})
}

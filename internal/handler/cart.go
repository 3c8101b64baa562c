package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/steelhaven/storefront/internal/domain/cart"
)

const (
	cartSessionHeader = "X-Cart-Session"
	cartSessionCookie = "cart_session"
)

// cartSession resolves the caller's cart session key, preferring the header
// over the cookie. When neither is present a fresh key is issued and echoed
// back in both the header and a cookie so either kind of client can keep it.
func cartSession(w http.ResponseWriter, r *http.Request) string {
	session := r.Header.Get(cartSessionHeader)
	if session == "" {
		if c, err := r.Cookie(cartSessionCookie); err == nil {
			session = c.Value
		}
	}
	if session == "" {
		session = uuid.NewString()
	}

	w.Header().Set(cartSessionHeader, session)
	http.SetCookie(w, &http.Cookie{
		Name:     cartSessionCookie,
		Value:    session,
		Path:     "/",
		MaxAge:   int(30 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return session
}

func (h *Handler) cartStore(w http.ResponseWriter, r *http.Request) *cart.Store {
	return cart.NewStore(r.Context(), cartSession(w, r), h.carts)
}

func cartResponse(s *cart.Store) map[string]any {
	lines := s.Lines()
	if lines == nil {
		lines = []cart.Line{}
	}
	return map[string]any{
		"lines":    lines,
		"count":    s.Count(),
		"subtotal": s.Subtotal(),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, cartResponse(h.cartStore(w, r)))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var line cart.Line
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if line.ID == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	s := h.cartStore(w, r)
	s.AddItem(r.Context(), line, line.Quantity)
	respond(w, http.StatusOK, cartResponse(s))
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s := h.cartStore(w, r)
	s.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), body.Quantity)
	respond(w, http.StatusOK, cartResponse(s))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.cartStore(w, r)
	s.RemoveItem(r.Context(), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, cartResponse(s))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	s := h.cartStore(w, r)
	s.Clear(r.Context())
	respond(w, http.StatusOK, cartResponse(s))
}

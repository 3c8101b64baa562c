package handler

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/steelhaven/storefront/internal/domain/contact"
)

type contactPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// submitContact handles the contact form. Like checkout it accepts either a
// JSON body or a classic form post.
func (h *Handler) submitContact(w http.ResponseWriter, r *http.Request) {
	payload, err := parseContact(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.contacts.Submit(r.Context(), contact.Submission{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Subject: payload.Subject,
		Message: payload.Message,
	})
	if err != nil {
		var verr *contact.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusBadRequest, verr.Error())
			return
		}
		serverError(w, r, "failed to submit contact message", err)
		return
	}

	respond(w, http.StatusOK, map[string]any{"ok": true})
}

func parseContact(r *http.Request) (*contactPayload, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var p contactPayload
	if ct == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			return nil, errors.New("invalid JSON body")
		}
		return &p, nil
	}

	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return nil, errors.New("invalid form body")
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, errors.New("invalid form body")
	}

	form := r.PostForm
	p.Name = form.Get("name")
	p.Email = form.Get("email")
	p.Phone = form.Get("phone")
	p.Subject = form.Get("subject")
	p.Message = form.Get("message")
	return &p, nil
}

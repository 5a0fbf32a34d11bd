package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/cartapi/internal/domain"
	"github.com/nikolayk812/cartapi/internal/port"
)

// maxBodyBytes caps the add-item request body.
const maxBodyBytes = 1 << 20

type CartHandler struct {
	svc    port.CartService
	pinger Pinger
	log    *slog.Logger
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func NewCartHandler(svc port.CartService, pinger Pinger, log *slog.Logger) *CartHandler {
	if log == nil {
		log = slog.Default()
	}

	return &CartHandler{
		svc:    svc,
		pinger: pinger,
		log:    log.With("component", "cart_handler"),
	}
}

// Routes mounts the cart API under /api/carts plus /health.
func (h *CartHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Route("/api/carts", func(r chi.Router) {
		r.Post("/", h.CreateCart)
		r.Route("/{cartId}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.DeleteCart)
			r.Post("/items", h.AddItem)
			r.Delete("/items/{itemId}", h.RemoveItem)
		})
	})

	return r
}

// CreateCart handles POST /api/carts?userId=...
func (h *CartHandler) CreateCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.CreateCart(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toCartResponse(cart))
}

// GetCart handles GET /api/carts/{cartId}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.GetCart(r.Context(), chi.URLParam(r, "cartId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toCartResponse(cart))
}

// AddItem handles POST /api/carts/{cartId}/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req *AddItemRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, ErrorResponse{
			Error:   "INVALID_ARGUMENT",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	// a JSON null body is a missing item
	var in *domain.ItemInput
	if req != nil {
		in = req.toDomain()
	}

	cart, err := h.svc.AddItemToCart(r.Context(), chi.URLParam(r, "cartId"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toCartResponse(cart))
}

// RemoveItem handles DELETE /api/carts/{cartId}/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.RemoveItemFromCart(r.Context(), chi.URLParam(r, "cartId"), chi.URLParam(r, "itemId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toCartResponse(cart))
}

// DeleteCart handles DELETE /api/carts/{cartId}
func (h *CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCart(r.Context(), chi.URLParam(r, "cartId")); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Health handles GET /health
func (h *CartHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.log.ErrorContext(r.Context(), "store ping failed", "err", err)
			h.writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "UNAVAILABLE"})
			return
		}
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "OK"})
}

func (h *CartHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := httpStatusFromError(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed",
			"err", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
		msg = "internal error"
	}

	h.writeJSON(w, r, status, ErrorResponse{Error: code, Message: msg})
}

func httpStatusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// writeJSON encodes before writing the header so an unencodable body still yields a 500.
func (h *CartHandler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.log.ErrorContext(r.Context(), "response encode failed",
			"err", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: "INTERNAL", Message: "internal error"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.log.WarnContext(r.Context(), "response write failed", "err", err)
	}
}

package pos

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-erp/internal/auth"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/pricing"
)

// Handler serves the POS terminal routes. Every route runs behind the bearer
// token middleware, which puts the terminal identity in context.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/cart", h.ShowCart)
	r.Post("/cart/items", h.AddItem)
	r.Patch("/cart/items/{itemID}", h.UpdateQuantity)
	r.Delete("/cart/items/{itemID}", h.RemoveItem)
	r.Post("/cart/discount", h.SetDiscount)
	r.Post("/cart/void", h.Void)
	r.Post("/cart/hold", h.Hold)
	r.Post("/cart/resume", h.Resume)
	r.Post("/checkout", h.BeginCheckout)
	r.Post("/checkout/cancel", h.CancelCheckout)
	r.Post("/checkout/complete", h.CompleteCheckout)
	return r
}

func (h *Handler) ShowCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Cart(claims.TerminalID))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req struct {
		Barcode  string  `json:"barcode,omitempty"`
		ItemID   int64   `json:"item_id,omitempty"`
		Quantity float64 `json:"quantity,omitempty"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	var (
		view CartView
		err  error
	)
	switch {
	case req.Barcode != "":
		view, err = h.service.AddItemByBarcode(r.Context(), claims.TerminalID, req.Barcode, req.Quantity)
	case req.ItemID > 0:
		view, err = h.service.AddItem(r.Context(), claims.TerminalID, req.ItemID, req.Quantity)
	default:
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "barcode or item_id is required")
		return
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "item id must be numeric")
		return
	}

	var req struct {
		Quantity float64 `json:"quantity"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	view, err := h.service.UpdateQuantity(claims.TerminalID, itemID, req.Quantity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "item id must be numeric")
		return
	}

	view, err := h.service.RemoveItem(claims.TerminalID, itemID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req struct {
		DiscountType  string  `json:"discount_type"`
		DiscountValue float64 `json:"discount_value"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	view, err := h.service.SetDiscount(claims.TerminalID, pricing.DiscountType(req.DiscountType), req.DiscountValue)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) Void(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Void(claims.TerminalID))
}

func (h *Handler) Hold(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	holdID, err := h.service.Hold(r.Context(), claims.TerminalID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"hold_id": holdID})
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req struct {
		HoldID string `json:"hold_id"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil || req.HoldID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "hold_id is required")
		return
	}

	view, err := h.service.Resume(r.Context(), claims.TerminalID, req.HoldID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	view, err := h.service.BeginCheckout(claims.TerminalID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	view, err := h.service.CancelCheckout(claims.TerminalID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var payment Payment
	if err := httpx.DecodeJSON(r, &payment); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	receipt, err := h.service.CompleteCheckout(r.Context(), claims.TerminalID, payment, claims.CashierID())
	if err != nil {
		h.logger.Error("complete checkout failed", slog.Any("error", err), slog.String("terminal", claims.TerminalID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, receipt)
}

func (h *Handler) claims(w http.ResponseWriter, r *http.Request) (*auth.TerminalClaims, bool) {
	claims := auth.TerminalFromContext(r.Context())
	if claims == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

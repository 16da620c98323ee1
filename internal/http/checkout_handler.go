package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/cart"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/stores"
)

type orderSubmitter interface {
	SubmitFromSnapshot(ctx context.Context, snap *domain.CartSnapshot, actor string) (map[string]interface{}, error)
}

type tableStatusUpdater interface {
	UpdateStatus(ctx context.Context, tableID, status string) error
}

// CheckoutHandler closes out a table: finalize the cart, submit the order,
// free the table.
type CheckoutHandler struct {
	engine  *cart.Engine
	orders  orderSubmitter
	tables  tableStatusUpdater
	timeout time.Duration
}

func NewCheckoutHandler(engine *cart.Engine, orders orderSubmitter, tables tableStatusUpdater, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		engine:  engine,
		orders:  orders,
		tables:  tables,
		timeout: timeout,
	}
}

type CheckoutResponseDTO struct {
	OrderID string               `json:"order_id"`
	TableID string               `json:"table_id"`
	Total   float64              `json:"total"`
	Payment string               `json:"payment"`
	Receipt *domain.CartSnapshot `json:"receipt"`
}

// POST /api/v1/tables/{table_id}/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	operator := getOperatorFromContext(r.Context())
	if operator == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing operator identity")
		return
	}

	tableID := chi.URLParam(r, "table_id")
	if tableID == "" {
		respondError(w, http.StatusBadRequest, "invalid_table_id", "table_id is required")
		return
	}

	snap, err := h.engine.FinalizeAfterPayment(ctx, tableID, operator)
	if err != nil {
		handleEngineError(w, err)
		return
	}

	// The cart session is already gone at this point. Order submission works
	// offline through the pending queue, so a failure here is a real bug.
	order, err := h.orders.SubmitFromSnapshot(ctx, snap, operator)
	if err != nil {
		log.Error().Err(err).
			Str("table_id", tableID).
			Str("request_id", getRequestID(r.Context())).
			Msg("order submission failed after finalize")
		respondError(w, http.StatusInternalServerError, "order_submission_failed", "cart was finalized but order submission failed")
		return
	}

	if err := h.tables.UpdateStatus(ctx, tableID, stores.TableAvailable); err != nil {
		log.Warn().Err(err).Str("table_id", tableID).Msg("failed to free table after checkout")
	}

	orderID, _ := order["id"].(string)
	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderID: orderID,
		TableID: tableID,
		Total:   snap.Total,
		Payment: snap.SelectedPayment,
		Receipt: snap,
	})
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/cart"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/domain"
)

type CartHandler struct {
	engine  *cart.Engine
	timeout time.Duration
}

func NewCartHandler(engine *cart.Engine, timeout time.Duration) *CartHandler {
	return &CartHandler{
		engine:  engine,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type SetDiscountRequestDTO struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

type SetPaymentRequestDTO struct {
	Method string `json:"method"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// SelectTable makes the table active, recovering an open comanda from the
// remote store when one exists.
func (h *CartHandler) SelectTable(w http.ResponseWriter, r *http.Request) {
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

	h.engine.InitializeTable(ctx, tableID, operator)
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	operator := getOperatorFromContext(r.Context())
	if operator == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing operator identity")
		return
	}
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) GetCartByTable(w http.ResponseWriter, r *http.Request) {
	operator := getOperatorFromContext(r.Context())
	if operator == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing operator identity")
		return
	}

	tableID := chi.URLParam(r, "table_id")
	data, ok := h.engine.GetCartByTable(tableID)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "no cart session for table")
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	operator := getOperatorFromContext(r.Context())
	if operator == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing operator identity")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_name", "name is required")
		return
	}
	if req.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}

	err := h.engine.AddItem(domain.Product{
		ID:    req.ProductID,
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	}, operator)
	if err != nil {
		handleEngineError(w, err)
		return
	}

	h.respondCart(w, http.StatusCreated)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	operator := getOperatorFromContext(r.Context())
	if operator == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing operator identity")
		return
	}

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Zero or negative removes the line, so the body is passed through as-is.
	if err := h.engine.SetQuantity(productID, req.Quantity, operator); err != nil {
		handleEngineError(w, err)
		return
	}

	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) IncreaseQuantity(w http.ResponseWriter, r *http.Request) {
	operator := getOperatorFromContext(r.Context())
	if operator == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing operator identity")
		return
	}

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := h.engine.IncreaseQuantity(productID, operator); err != nil {
		handleEngineError(w, err)
		return
	}
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	operator := getOperatorFromContext(r.Context())
	if operator == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing operator identity")
		return
	}

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := h.engine.DecreaseQuantity(productID, operator); err != nil {
		handleEngineError(w, err)
		return
	}
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	operator := getOperatorFromContext(r.Context())
	if operator == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing operator identity")
		return
	}

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := h.engine.RemoveItem(productID, operator); err != nil {
		handleEngineError(w, err)
		return
	}
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	operator := getOperatorFromContext(r.Context())
	if operator == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing operator identity")
		return
	}

	var req SetDiscountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	switch domain.DiscountType(req.Type) {
	case domain.DiscountPercentage, domain.DiscountAbsolute:
	default:
		respondError(w, http.StatusBadRequest, "invalid_discount_type", "type must be 'percentage' or 'absolute'")
		return
	}

	if err := h.engine.SetDiscount(domain.DiscountType(req.Type), req.Value, operator); err != nil {
		handleEngineError(w, err)
		return
	}
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	operator := getOperatorFromContext(r.Context())
	if operator == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing operator identity")
		return
	}

	var req SetPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Method == "" {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "method is required")
		return
	}

	if err := h.engine.SetPaymentMethod(req.Method, operator); err != nil {
		handleEngineError(w, err)
		return
	}
	h.respondCart(w, http.StatusOK)
}

// PersistCart opens the comanda for the active table.
func (h *CartHandler) PersistCart(w http.ResponseWriter, r *http.Request) {
	operator := getOperatorFromContext(r.Context())
	if operator == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing operator identity")
		return
	}

	if err := h.engine.PersistCart(operator); err != nil {
		handleEngineError(w, err)
		return
	}
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	operator := getOperatorFromContext(r.Context())
	if operator == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing operator identity")
		return
	}

	if err := h.engine.ClearCart(operator); err != nil {
		handleEngineError(w, err)
		return
	}
	h.respondCart(w, http.StatusOK)
}

// respondCart returns the current view of the active cart. An empty cart is
// still a valid view here, so the lookup goes through the table id.
func (h *CartHandler) respondCart(w http.ResponseWriter, status int) {
	tableID := h.engine.ActiveTable()
	data, ok := h.engine.GetCartByTable(tableID)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "no cart session for table")
		return
	}
	respondJSON(w, status, data)
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

func handleEngineError(w http.ResponseWriter, err error) {
	var httpStatus int
	var code string

	switch {
	case errors.Is(err, cart.ErrNoActiveTable):
		httpStatus = http.StatusConflict
		code = "no_active_table"
	case errors.Is(err, cart.ErrNoSession):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, cart.ErrStockExceeded):
		httpStatus = http.StatusConflict
		code = "stock_exceeded"
	case errors.Is(err, cart.ErrOutOfStock):
		httpStatus = http.StatusConflict
		code = "out_of_stock"
	case errors.Is(err, cart.ErrEmptyCart):
		httpStatus = http.StatusUnprocessableEntity
		code = "empty_cart"
	default:
		httpStatus = http.StatusInternalServerError
		code = "internal_error"
	}

	respondError(w, httpStatus, code, err.Error())
}

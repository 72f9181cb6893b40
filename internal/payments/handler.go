package payments

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hatbajar/marketplace/internal/pkg/httputil"
)

// Handler handles HTTP requests for the payments module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new payments handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/payments/intents", h.CreateIntent)
	r.Post("/orders", h.RecordOrder)
	r.Get("/orders", h.ListOrders)
}

// CreateIntentRequest represents the request body for creating an intent.
type CreateIntentRequest struct {
	AmountMinorUnits int64  `json:"amount" validate:"required,gt=0"`
	Currency         string `json:"currency" validate:"required,len=3"`
}

// CreateIntent handles POST /payments/intents.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	intent, err := h.service.CreateIntent(r.Context(), req.AmountMinorUnits, req.Currency)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, intent)
}

// RecordOrderRequest represents the request body for recording an order.
type RecordOrderRequest struct {
	ProductID        string `json:"productId" validate:"required"`
	ProductName      string `json:"productName" validate:"max=255"`
	AmountMinorUnits int64  `json:"amount" validate:"required,gt=0"`
	Currency         string `json:"currency" validate:"required,len=3"`
	TransactionID    string `json:"transactionId" validate:"required,max=255"`
}

// RecordOrder handles POST /orders.
func (h *Handler) RecordOrder(w http.ResponseWriter, r *http.Request) {
	var req RecordOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	order, err := h.service.RecordOrder(r.Context(), RecordOrderInput{
		UserEmail:        httputil.Subject(r.Context()),
		ProductID:        req.ProductID,
		ProductName:      req.ProductName,
		AmountMinorUnits: req.AmountMinorUnits,
		Currency:         req.Currency,
		TransactionID:    req.TransactionID,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, order)
}

// ListOrders handles GET /orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(), httputil.Subject(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, orders)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrInvalidAmount, Status: http.StatusBadRequest},
		{Error: ErrInvalidCurrency, Status: http.StatusBadRequest},
		{Error: ErrInvalidID, Status: http.StatusBadRequest},
	})
}

package wishlist

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hatbajar/marketplace/internal/pkg/httputil"
)

// Handler handles HTTP requests for the wishlist module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new wishlist handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/wishlist", h.AddItem)
	r.Get("/wishlist", h.ListItems)
	r.Delete("/wishlist/{id}", h.DeleteItem)
}

// AddItemRequest represents the request body for adding a wishlist item.
type AddItemRequest struct {
	ProductID   string `json:"productId" validate:"required"`
	ProductName string `json:"productName" validate:"max=255"`
	Market      string `json:"market" validate:"max=255"`
}

// AddItem handles POST /wishlist. The owner is always the caller; a
// userEmail in the body is ignored.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	item, err := h.service.AddItem(r.Context(), AddItemInput{
		ProductID:   req.ProductID,
		UserEmail:   httputil.Subject(r.Context()),
		ProductName: req.ProductName,
		Market:      req.Market,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, item)
}

// ListItems handles GET /wishlist.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListByUser(r.Context(), httputil.Subject(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, items)
}

// DeleteItem handles DELETE /wishlist/{id}.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "id"), httputil.Subject(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrItemNotFound, Status: http.StatusNotFound},
		{Error: ErrItemExists, Status: http.StatusConflict},
		{Error: ErrInvalidID, Status: http.StatusBadRequest},
		{Error: ErrNotOwner, Status: http.StatusForbidden},
	})
}

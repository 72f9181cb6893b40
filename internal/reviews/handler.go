package reviews

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hatbajar/marketplace/internal/pkg/httputil"
)

// Handler handles HTTP requests for the reviews module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new reviews handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterPublicRoutes registers routes open to anyone.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/products/{productId}/reviews", h.ListByProduct)
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/reviews", h.CreateReview)
	r.Put("/reviews/{id}", h.UpdateReview)
	r.Delete("/reviews/{id}", h.DeleteReview)
}

// CreateReviewRequest represents the request body for creating a review.
type CreateReviewRequest struct {
	ProductID string `json:"productId" validate:"required"`
	UserName  string `json:"userName" validate:"max=255"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"required,max=2000"`
}

// CreateReview handles POST /reviews.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	review, err := h.service.CreateReview(r.Context(), CreateReviewInput{
		ProductID: req.ProductID,
		UserEmail: httputil.Subject(r.Context()),
		UserName:  req.UserName,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, review)
}

// ListByProduct handles GET /products/{productId}/reviews.
func (h *Handler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListByProduct(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, reviews)
}

// UpdateReviewRequest represents the request body for editing a review.
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

// UpdateReview handles PUT /reviews/{id}.
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var req UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	review, err := h.service.UpdateReview(r.Context(),
		chi.URLParam(r, "id"), httputil.Subject(r.Context()), req.Rating, req.Comment)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, review)
}

// DeleteReview handles DELETE /reviews/{id}.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteReview(r.Context(), chi.URLParam(r, "id"), httputil.Subject(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrReviewNotFound, Status: http.StatusNotFound},
		{Error: ErrReviewExists, Status: http.StatusConflict},
		{Error: ErrInvalidID, Status: http.StatusBadRequest},
		{Error: ErrNotOwner, Status: http.StatusForbidden},
	})
}

package ads

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hatbajar/marketplace/internal/domain"
	"github.com/hatbajar/marketplace/internal/pkg/httputil"
)

// Handler handles HTTP requests for the ads module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new ads handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterPublicRoutes registers routes open to anyone.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/ads", h.ListActive)
}

// RegisterVendorRoutes registers routes that require the vendor role.
func (h *Handler) RegisterVendorRoutes(r chi.Router) {
	r.Post("/ads", h.CreateAd)
	r.Put("/ads/{id}", h.UpdateAd)
	r.Delete("/ads/{id}", h.DeleteAd)
	r.Get("/vendor/ads", h.ListVendorAds)
}

// RegisterAdminRoutes registers routes that require the admin role.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/admin/ads", h.ListAllAds)
	r.Patch("/admin/ads/{id}/status", h.ChangeStatus)
}

// CreateAdRequest represents the request body for creating an advertisement.
type CreateAdRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=255"`
	Description string    `json:"description" validate:"max=2000"`
	ImageURL    string    `json:"imageURL" validate:"omitempty,url"`
	ExpiresAt   time.Time `json:"expiresAt" validate:"required"`
}

// CreateAd handles POST /ads.
func (h *Handler) CreateAd(w http.ResponseWriter, r *http.Request) {
	var req CreateAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	ad, err := h.service.CreateAd(r.Context(), CreateAdInput{
		VendorEmail: httputil.Subject(r.Context()),
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, ad)
}

// ListActive handles GET /ads.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListActive(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

// ListVendorAds handles GET /vendor/ads.
func (h *Handler) ListVendorAds(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListByVendor(r.Context(), httputil.Subject(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

// ListAllAds handles GET /admin/ads.
func (h *Handler) ListAllAds(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListAll(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

// UpdateAdRequest represents the request body for editing an advertisement.
type UpdateAdRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=255"`
	Description string    `json:"description" validate:"max=2000"`
	ImageURL    string    `json:"imageURL" validate:"omitempty,url"`
	ExpiresAt   time.Time `json:"expiresAt" validate:"required"`
}

// UpdateAd handles PUT /ads/{id}.
func (h *Handler) UpdateAd(w http.ResponseWriter, r *http.Request) {
	var req UpdateAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	ad, err := h.service.UpdateAd(r.Context(),
		chi.URLParam(r, "id"),
		httputil.Subject(r.Context()),
		UpdateAdInput{
			Title:       req.Title,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			ExpiresAt:   req.ExpiresAt,
		},
	)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, ad)
}

// DeleteAd handles DELETE /ads/{id}.
func (h *Handler) DeleteAd(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteAd(r.Context(), chi.URLParam(r, "id"), httputil.Subject(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ChangeStatusRequest represents the request body for moderating an ad.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected expired"`
}

// ChangeStatus handles PATCH /admin/ads/{id}/status.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	ad, err := h.service.ChangeStatus(r.Context(),
		chi.URLParam(r, "id"), domain.AdStatus(req.Status))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, ad)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrAdNotFound, Status: http.StatusNotFound},
		{Error: ErrInvalidID, Status: http.StatusBadRequest},
		{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
		{Error: ErrExpiryInPast, Status: http.StatusBadRequest},
		{Error: ErrNotOwner, Status: http.StatusForbidden},
	})
}

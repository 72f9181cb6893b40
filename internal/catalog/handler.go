package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hatbajar/marketplace/internal/domain"
	"github.com/hatbajar/marketplace/internal/pkg/httputil"
)

// Handler handles HTTP requests for the catalog module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterPublicRoutes registers routes open to anyone.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Get("/products/lowest-prices", h.LowestPrices)
	r.Get("/products/latest", h.LatestProducts)
	r.Get("/products/{id}/prices", h.PriceHistory)
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/products/{id}", h.GetProduct)
}

// RegisterVendorRoutes registers routes that require the vendor role.
func (h *Handler) RegisterVendorRoutes(r chi.Router) {
	r.Post("/products", h.CreateProduct)
	r.Put("/products/{id}", h.UpdateProduct)
	r.Delete("/products/{id}", h.DeleteProduct)
	r.Post("/products/{id}/prices", h.AddPriceEntry)
	r.Get("/vendor/products", h.ListVendorProducts)
}

// RegisterAdminRoutes registers routes that require the admin role.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/admin/products", h.ListAllProducts)
	r.Patch("/admin/products/{id}/status", h.ChangeStatus)
}

// parseListingQuery builds a ListingQuery from query-string parameters.
func parseListingQuery(r *http.Request) (ListingQuery, string) {
	q := ListingQuery{SearchText: r.URL.Query().Get("search")}

	from, err := ParseDateParam(r.URL.Query().Get("from"), false)
	if err != nil {
		return q, "invalid from date"
	}
	q.DateFrom = from

	to, err := ParseDateParam(r.URL.Query().Get("to"), true)
	if err != nil {
		return q, "invalid to date"
	}
	q.DateTo = to

	switch sortKey := r.URL.Query().Get("sort"); SortKey(sortKey) {
	case "", SortPriceAsc, SortPriceDesc:
		q.SortKey = SortKey(sortKey)
	default:
		return q, "sort must be 'lowToHigh' or 'highToLow'"
	}

	if p := r.URL.Query().Get("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 1 {
			return q, "page must be a positive integer"
		}
		q.Page = parsed
	}

	if ps := r.URL.Query().Get("pageSize"); ps != "" {
		parsed, err := strconv.Atoi(ps)
		if err != nil || parsed < 1 {
			return q, "pageSize must be a positive integer"
		}
		q.PageSize = parsed
	}

	return q, ""
}

// ListProducts handles GET /products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, msg := parseListingQuery(r)
	if msg != "" {
		httputil.Error(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.service.ListApproved(r.Context(), q)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

// ListAllProducts handles GET /admin/products.
func (h *Handler) ListAllProducts(w http.ResponseWriter, r *http.Request) {
	q, msg := parseListingQuery(r)
	if msg != "" {
		httputil.Error(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.service.ListAll(r.Context(), q)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

// ListVendorProducts handles GET /vendor/products.
func (h *Handler) ListVendorProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListByVendor(r.Context(), httputil.Subject(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, products)
}

// GetProduct handles GET /products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, product)
}

// PriceHistory handles GET /products/{id}/prices.
func (h *Handler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	prices, err := h.service.PriceHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, map[string][]domain.PriceEntry{"prices": prices})
}

// LowestPrices handles GET /products/lowest-prices.
func (h *Handler) LowestPrices(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.LowestPricePerMarket(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, rows)
}

// LatestProducts handles GET /products/latest.
func (h *Handler) LatestProducts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.LatestPerMarket(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, rows)
}

// CreateProductRequest represents the request body for creating a product.
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Market      string  `json:"market" validate:"required,min=1,max=255"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	ImageURL    string  `json:"imageURL" validate:"omitempty,url"`
	Description string  `json:"description" validate:"max=2000"`
	VendorName  string  `json:"vendorName" validate:"max=255"`
}

// CreateProduct handles POST /products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), CreateProductInput{
		VendorEmail: httputil.Subject(r.Context()),
		VendorName:  req.VendorName,
		Name:        req.Name,
		Market:      req.Market,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, product)
}

// UpdateProductRequest represents the request body for updating a product.
type UpdateProductRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Market      string  `json:"market" validate:"required,min=1,max=255"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	ImageURL    string  `json:"imageURL" validate:"omitempty,url"`
	Description string  `json:"description" validate:"max=2000"`
}

// UpdateProduct handles PUT /products/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(),
		chi.URLParam(r, "id"),
		httputil.Subject(r.Context()),
		UpdateProductInput{
			Name:        req.Name,
			Market:      req.Market,
			Price:       req.Price,
			ImageURL:    req.ImageURL,
			Description: req.Description,
		},
	)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id"), httputil.Subject(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddPriceEntryRequest represents the request body for appending a price.
type AddPriceEntryRequest struct {
	Price float64 `json:"price" validate:"required,gt=0"`
}

// AddPriceEntry handles POST /products/{id}/prices.
func (h *Handler) AddPriceEntry(w http.ResponseWriter, r *http.Request) {
	var req AddPriceEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	product, err := h.service.AddPriceEntry(r.Context(),
		chi.URLParam(r, "id"), httputil.Subject(r.Context()), req.Price)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, product)
}

// ChangeStatusRequest represents the request body for moderating a product.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// ChangeStatus handles PATCH /admin/products/{id}/status.
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

	product, err := h.service.ChangeStatus(r.Context(),
		chi.URLParam(r, "id"), domain.ProductStatus(req.Status))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, product)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrProductNotFound, Status: http.StatusNotFound},
		{Error: ErrInvalidID, Status: http.StatusBadRequest},
		{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
		{Error: ErrNotOwner, Status: http.StatusForbidden},
	})
}

// Package rest provides the HTTP handlers of the storefront core.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/abgdnv/storefront/internal/availability"
	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/commerce"
	"github.com/abgdnv/storefront/internal/search"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ProductSource fetches product source data from the commerce backend.
type ProductSource interface {
	ProductByHandle(ctx context.Context, handle string) (*catalog.Product, error)
}

// CartService exposes the availability-gated cart mutations.
type CartService interface {
	AddItem(ctx context.Context, cartID, variantID string) error
	SetItemQuantity(ctx context.Context, cartID, lineID, variantID string, quantity int64) error
	RemoveItem(ctx context.Context, cartID, lineID string) error
}

// AvailabilityChecker computes availability snapshots.
type AvailabilityChecker interface {
	Check(ctx context.Context, req availability.Request) (availability.Snapshot, error)
}

type Handler struct {
	products  ProductSource
	carts     CartService
	checker   AvailabilityChecker
	separator string
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewHandler creates a new storefront API handler. The separator is the
// canonical hierarchical category separator used in filter expressions.
func NewHandler(products ProductSource, carts CartService, checker AvailabilityChecker, separator string, logger *slog.Logger) *Handler {
	return &Handler{
		products:  products,
		carts:     carts,
		checker:   checker,
		separator: separator,
		validate:  validator.New(),

		logger: logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes of the storefront core.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products/{slug}", h.ProductBySlug)
		r.Get("/availability", h.CheckAvailability)
		r.Get("/search/filter", h.SearchFilter)

		r.Route("/carts/{cartID}/items", func(r chi.Router) {
			r.Post("/", h.AddItem)
			r.Put("/{lineID}", h.UpdateItem)
			r.Delete("/{lineID}", h.RemoveItem)
		})
	})
	r.Get("/healthz", h.HealthCheck)
}

type productResponse struct {
	Product      *catalog.Product      `json:"product"`
	Combinations []catalog.Combination `json:"combinations"`
	Selected     *catalog.Combination  `json:"selected,omitempty"`
}

type addItemRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
}

type updateItemRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int64  `json:"quantity"   validate:"min=0"`
}

// ProductBySlug resolves a product from a slug that may carry encoded option
// selections, and returns its combinations plus the selected one. An explicit
// color query parameter overrides the slug; overrides that match no variant
// are ignored rather than rejected.
func (h *Handler) ProductBySlug(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	slug := chi.URLParam(r, "slug")
	handle := catalog.StripOptions(slug)
	selected := catalog.DecodeOptions(slug)
	if c := r.URL.Query().Get("color"); c != "" {
		selected["color"] = c
	}

	mLogger.DebugContext(r.Context(), "Received request to resolve product", "slug", slug, "handle", handle)
	product, err := h.products.ProductByHandle(r.Context(), handle)
	if err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "handle", handle)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with handle %s not found", handle))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error fetching product", "handle", handle, "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, fmt.Sprintf("Failed to fetch product with handle %s", handle))
		return
	}

	color := selected["color"]
	if !catalog.HasValidOption(product.Variants, "color", color) {
		color = ""
	}

	web.RespondJSON(w, mLogger, http.StatusOK, productResponse{
		Product:      product,
		Combinations: catalog.GetAllCombinations(product.Variants),
		Selected:     catalog.GetCombination(product, color),
	})
}

// CheckAvailability returns the availability snapshot for a (variant, cart)
// pair. A missing variant_id yields an unavailable snapshot, not an error.
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	req := availability.Request{
		VariantID: r.URL.Query().Get("variant_id"),
		CartID:    r.URL.Query().Get("cart_id"),
		ProductID: r.URL.Query().Get("product_id"),
	}

	mLogger.DebugContext(r.Context(), "Received availability check", "variant_id", req.VariantID, "cart_id", req.CartID)
	snapshot, err := h.checker.Check(r.Context(), req)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error checking availability", "variant_id", req.VariantID, "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to check availability")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, snapshot)
}

// AddItem adds one unit of a variant to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	cartID := chi.URLParam(r, "cartID")

	var dto addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, dto) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to add cart line", "cart_id", cartID, "variant_id", dto.VariantID)
	if err := h.carts.AddItem(r.Context(), cartID, dto.VariantID); err != nil {
		h.respondCartError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Cart line added", "cart_id", cartID, "variant_id", dto.VariantID)
	web.RespondJSON(w, mLogger, http.StatusCreated, nil)
}

// UpdateItem sets a cart line to an absolute quantity; zero removes the line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	cartID := chi.URLParam(r, "cartID")
	lineID := chi.URLParam(r, "lineID")

	var dto updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, dto) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to update cart line", "cart_id", cartID, "line_id", lineID, "quantity", dto.Quantity)
	if err := h.carts.SetItemQuantity(r.Context(), cartID, lineID, dto.VariantID, dto.Quantity); err != nil {
		h.respondCartError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Cart line updated", "cart_id", cartID, "line_id", lineID, "quantity", dto.Quantity)
	web.RespondJSON(w, mLogger, http.StatusOK, nil)
}

// RemoveItem deletes a cart line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	cartID := chi.URLParam(r, "cartID")
	lineID := chi.URLParam(r, "lineID")

	mLogger.DebugContext(r.Context(), "Received request to remove cart line", "cart_id", cartID, "line_id", lineID)
	if err := h.carts.RemoveItem(r.Context(), cartID, lineID); err != nil {
		h.respondCartError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Cart line removed", "cart_id", cartID, "line_id", lineID)
	web.RespondJSON(w, mLogger, http.StatusNoContent, nil)
}

// SearchFilter compiles facet query parameters into the filter expression for
// the search backend.
func (h *Handler) SearchFilter(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	q := r.URL.Query()

	params := search.FilterParams{
		Categories: q["category"],
		Vendors:    q["vendor"],
		Colors:     q["color"],
	}
	if v, ok, valid := parseFloatParam(q.Get("min_price")); valid {
		if ok {
			params.MinPrice = &v
		}
	} else {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid min_price")
		return
	}
	if v, ok, valid := parseFloatParam(q.Get("max_price")); valid {
		if ok {
			params.MaxPrice = &v
		}
	} else {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid max_price")
		return
	}
	if v, ok, valid := parseFloatParam(q.Get("rating")); valid {
		if ok {
			params.Rating = v
		}
	} else {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid rating")
		return
	}

	var collection *search.Collection
	if handle := q.Get("collection"); handle != "" {
		collection = &search.Collection{Handle: handle}
	}

	filter := search.BuildFilter(collection, params, h.separator)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]string{"filter": filter})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// respondCartError maps cart service errors to HTTP statuses. Out-of-stock is
// a rejection message, not a fault.
func (h *Handler) respondCartError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error) {
	switch {
	case errors.Is(err, cart.ErrOutOfStock):
		mLogger.WarnContext(r.Context(), "Cart mutation refused", "reason", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, cart.ErrOutOfStock.Error())
	case errors.Is(err, cart.ErrMissingCart), errors.Is(err, cart.ErrMissingVariant):
		web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
	default:
		mLogger.ErrorContext(r.Context(), "Error mutating cart", "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to update cart")
	}
}

// validateStruct validates a request DTO and writes the field-level failures
// as a validation_errors response. Returns false when the request is invalid.
func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dto any) bool {
	err := h.validate.Struct(dto)
	if err == nil {
		return true
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorResponse := make(map[string]string)
		for _, fieldErr := range validationErrors {
			errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
		return false
	}
	mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
	web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
	return false
}

// parseFloatParam parses an optional numeric query parameter.
// ok reports whether a value was present, valid whether it parsed.
func parseFloatParam(value string) (v float64, ok bool, valid bool) {
	if value == "" {
		return 0, false, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, false
	}
	return f, true, true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, _ := web.GetRequestID(r.Context())
	return h.logger.With("request_id", reqID)
}

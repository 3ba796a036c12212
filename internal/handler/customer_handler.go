package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bizops/internal/customer"
	"github.com/hitoshi/bizops/internal/model"
)

// CustomerServiceInterface は顧客ハンドラーが必要とするサービスインターフェース。
type CustomerServiceInterface interface {
	Create(ctx context.Context, input customer.CreateInput) (*model.Customer, error)
	Get(ctx context.Context, id string) (*model.Customer, error)
	List(ctx context.Context) ([]*model.Customer, error)
	ListNear(ctx context.Context, lng, lat, radiusKm float64) ([]*model.Customer, error)
}

// CustomerHandler は顧客管理のHTTPハンドラー。
type CustomerHandler struct {
	service CustomerServiceInterface
}

// NewCustomerHandler はCustomerHandlerを生成する。
func NewCustomerHandler(service CustomerServiceInterface) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// locationPayload は所在地のJSON表現。
type locationPayload struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// customerRequest は顧客作成リクエストのボディ。
type customerRequest struct {
	Name        string           `json:"name"`
	ContactName string           `json:"contact_name"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone"`
	Address     string           `json:"address"`
	Location    *locationPayload `json:"location"`
}

// customerResponse は顧客のAPIレスポンス。
type customerResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	ContactName string           `json:"contact_name,omitempty"`
	Email       string           `json:"email,omitempty"`
	Phone       string           `json:"phone,omitempty"`
	Address     string           `json:"address,omitempty"`
	Location    *locationPayload `json:"location,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

func toCustomerResponse(c *model.Customer) customerResponse {
	resp := customerResponse{
		ID:          c.ID,
		Name:        c.Name,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		CreatedAt:   c.CreatedAt,
	}
	if c.Location != nil {
		resp.Location = &locationPayload{Lng: c.Location.Lng, Lat: c.Location.Lat}
	}
	return resp
}

// Create は顧客を作成する。
// POST /api/customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	input := customer.CreateInput{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
	}
	if req.Location != nil {
		input.Location = &model.Location{Lng: req.Location.Lng, Lat: req.Location.Lat}
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCustomerResponse(created))
}

// List は顧客一覧を返す。
// GET /api/customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]customerResponse, len(customers))
	for i, c := range customers {
		results[i] = toCustomerResponse(c)
	}
	writeJSON(w, http.StatusOK, results)
}

// Get は顧客詳細を返す。
// GET /api/customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(c))
}

// ListNear は指定座標の近傍顧客を返す。
// GET /api/customers/near?lng=139.7&lat=35.69&radius_km=10
func (h *CustomerHandler) ListNear(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("lng", "数値で指定してください"))
		return
	}
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("lat", "数値で指定してください"))
		return
	}

	var radiusKm float64
	if raw := q.Get("radius_km"); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("radius_km", "数値で指定してください"))
			return
		}
	}

	customers, err := h.service.ListNear(r.Context(), lng, lat, radiusKm)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]customerResponse, len(customers))
	for i, c := range customers {
		results[i] = toCustomerResponse(c)
	}
	writeJSON(w, http.StatusOK, results)
}

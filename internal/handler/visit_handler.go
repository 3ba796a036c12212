package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bizops/internal/middleware"
	"github.com/hitoshi/bizops/internal/model"
	"github.com/hitoshi/bizops/internal/visit"
)

// VisitServiceInterface は訪問記録ハンドラーが必要とするサービスインターフェース。
type VisitServiceInterface interface {
	Create(ctx context.Context, input visit.CreateInput) (*model.Visit, error)
	Get(ctx context.Context, id string) (*model.Visit, error)
	List(ctx context.Context) ([]*model.Visit, error)
}

// VisitHandler は訪問記録のHTTPハンドラー。
type VisitHandler struct {
	service VisitServiceInterface
}

// NewVisitHandler はVisitHandlerを生成する。
func NewVisitHandler(service VisitServiceInterface) *VisitHandler {
	return &VisitHandler{service: service}
}

// visitRequest は訪問記録作成リクエストのボディ。
// 記録者は認証済みユーザーから決まるため受け取らない。
type visitRequest struct {
	RefType    string     `json:"ref_type"`
	RefID      string     `json:"ref_id"`
	CustomerID string     `json:"customer_id"`
	Date       *time.Time `json:"date"`
	DistanceKm float64    `json:"distance_km"`
	CostPerKm  float64    `json:"cost_per_km"`
}

// visitResponse は訪問記録のAPIレスポンス。
type visitResponse struct {
	ID              string    `json:"id"`
	RefType         string    `json:"ref_type"`
	RefID           string    `json:"ref_id,omitempty"`
	CustomerID      string    `json:"customer_id"`
	UserID          string    `json:"user_id,omitempty"`
	Date            time.Time `json:"date"`
	DistanceKm      float64   `json:"distance_km"`
	CostPerKm       float64   `json:"cost_per_km"`
	TotalTravelCost float64   `json:"total_travel_cost"`
	CreatedAt       time.Time `json:"created_at"`
}

func toVisitResponse(v *model.Visit) visitResponse {
	return visitResponse{
		ID:              v.ID,
		RefType:         string(v.RefType),
		RefID:           v.RefID,
		CustomerID:      v.CustomerID,
		UserID:          v.UserID,
		Date:            v.Date,
		DistanceKm:      v.DistanceKm,
		CostPerKm:       v.CostPerKm,
		TotalTravelCost: v.TotalTravelCost,
		CreatedAt:       v.CreatedAt,
	}
}

// Create は訪問記録を作成する。記録者は認証済みユーザーになる。
// POST /api/visits
func (h *VisitHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req visitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	input := visit.CreateInput{
		RefType:    req.RefType,
		RefID:      req.RefID,
		CustomerID: req.CustomerID,
		UserID:     user.ID,
		DistanceKm: req.DistanceKm,
		CostPerKm:  req.CostPerKm,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toVisitResponse(created))
}

// List は訪問記録一覧を返す。
// GET /api/visits
func (h *VisitHandler) List(w http.ResponseWriter, r *http.Request) {
	visits, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]visitResponse, len(visits))
	for i, v := range visits {
		results[i] = toVisitResponse(v)
	}
	writeJSON(w, http.StatusOK, results)
}

// Get は訪問記録詳細を返す。
// GET /api/visits/{id}
func (h *VisitHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVisitResponse(v))
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bizops/internal/material"
	"github.com/hitoshi/bizops/internal/model"
)

// MaterialServiceInterface は資材ハンドラーが必要とするサービスインターフェース。
type MaterialServiceInterface interface {
	Create(ctx context.Context, input material.CreateInput) (*model.RawMaterial, error)
	Get(ctx context.Context, id string) (*model.RawMaterial, error)
	List(ctx context.Context) ([]*model.RawMaterial, error)
}

// MaterialHandler は仕入資材のHTTPハンドラー。
type MaterialHandler struct {
	service MaterialServiceInterface
}

// NewMaterialHandler はMaterialHandlerを生成する。
func NewMaterialHandler(service MaterialServiceInterface) *MaterialHandler {
	return &MaterialHandler{service: service}
}

// materialRequest は資材登録リクエストのボディ。
type materialRequest struct {
	Name             string  `json:"name"`
	Vendor           string  `json:"vendor"`
	PurchaseQty      float64 `json:"purchase_qty"`
	PurchaseUnitCost float64 `json:"purchase_unit_cost"`
}

// materialResponse は資材のAPIレスポンス。
type materialResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Vendor           string    `json:"vendor,omitempty"`
	PurchaseQty      float64   `json:"purchase_qty"`
	PurchaseUnitCost float64   `json:"purchase_unit_cost"`
	TotalCost        float64   `json:"total_cost"`
	CreatedAt        time.Time `json:"created_at"`
}

func toMaterialResponse(m *model.RawMaterial) materialResponse {
	return materialResponse{
		ID:               m.ID,
		Name:             m.Name,
		Vendor:           m.Vendor,
		PurchaseQty:      m.PurchaseQty,
		PurchaseUnitCost: m.PurchaseUnitCost,
		TotalCost:        m.TotalCost,
		CreatedAt:        m.CreatedAt,
	}
}

// Create は資材を登録する。
// POST /api/materials
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	created, err := h.service.Create(r.Context(), material.CreateInput{
		Name:             req.Name,
		Vendor:           req.Vendor,
		PurchaseQty:      req.PurchaseQty,
		PurchaseUnitCost: req.PurchaseUnitCost,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMaterialResponse(created))
}

// List は資材一覧を返す。
// GET /api/materials
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	materials, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]materialResponse, len(materials))
	for i, m := range materials {
		results[i] = toMaterialResponse(m)
	}
	writeJSON(w, http.StatusOK, results)
}

// Get は資材詳細を返す。
// GET /api/materials/{id}
func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMaterialResponse(m))
}

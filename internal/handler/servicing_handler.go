package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bizops/internal/model"
	"github.com/hitoshi/bizops/internal/servicing"
)

// ServicingServiceInterface は修理作業ハンドラーが必要とするサービスインターフェース。
type ServicingServiceInterface interface {
	Create(ctx context.Context, input servicing.CreateInput) (*model.ServiceJob, error)
	Get(ctx context.Context, id string) (*model.ServiceJob, error)
	List(ctx context.Context) ([]*model.ServiceJob, error)
}

// ServicingHandler は修理作業のHTTPハンドラー。
type ServicingHandler struct {
	service ServicingServiceInterface
}

// NewServicingHandler はServicingHandlerを生成する。
func NewServicingHandler(service ServicingServiceInterface) *ServicingHandler {
	return &ServicingHandler{service: service}
}

// spareRequest は使用資材リクエスト。単価はサーバー側で確定するため受け取らない。
type spareRequest struct {
	RawMaterialID string  `json:"raw_material_id"`
	Qty           float64 `json:"qty"`
}

// serviceJobRequest は修理作業作成リクエストのボディ。
type serviceJobRequest struct {
	CustomerID    string         `json:"customer_id"`
	JobDesc       string         `json:"job_desc"`
	Spares        []spareRequest `json:"spares"`
	ServiceCharge float64        `json:"service_charge"`
}

// spareResponse は使用資材のAPIレスポンス。
type spareResponse struct {
	ID            string  `json:"id"`
	RawMaterialID string  `json:"raw_material_id"`
	Qty           float64 `json:"qty"`
	UnitCost      float64 `json:"unit_cost"`
	TotalCost     float64 `json:"total_cost"`
}

// serviceJobResponse は修理作業のAPIレスポンス。
type serviceJobResponse struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id"`
	JobDesc       string          `json:"job_desc,omitempty"`
	Spares        []spareResponse `json:"spares"`
	ServiceCharge float64         `json:"service_charge"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toServiceJobResponse(j *model.ServiceJob) serviceJobResponse {
	spares := make([]spareResponse, len(j.Spares))
	for i, s := range j.Spares {
		spares[i] = spareResponse{
			ID:            s.ID,
			RawMaterialID: s.RawMaterialID,
			Qty:           s.Qty,
			UnitCost:      s.UnitCost,
			TotalCost:     s.TotalCost,
		}
	}
	return serviceJobResponse{
		ID:            j.ID,
		CustomerID:    j.CustomerID,
		JobDesc:       j.JobDesc,
		Spares:        spares,
		ServiceCharge: j.ServiceCharge,
		CreatedAt:     j.CreatedAt,
	}
}

// Create は修理作業を作成する。
// POST /api/services
func (h *ServicingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req serviceJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	spares := make([]servicing.SpareInput, len(req.Spares))
	for i, s := range req.Spares {
		spares[i] = servicing.SpareInput{RawMaterialID: s.RawMaterialID, Qty: s.Qty}
	}

	created, err := h.service.Create(r.Context(), servicing.CreateInput{
		CustomerID:    req.CustomerID,
		JobDesc:       req.JobDesc,
		Spares:        spares,
		ServiceCharge: req.ServiceCharge,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toServiceJobResponse(created))
}

// List は修理作業一覧を返す。
// GET /api/services
func (h *ServicingHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]serviceJobResponse, len(jobs))
	for i, j := range jobs {
		results[i] = toServiceJobResponse(j)
	}
	writeJSON(w, http.StatusOK, results)
}

// Get は修理作業詳細を返す。
// GET /api/services/{id}
func (h *ServicingHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toServiceJobResponse(j))
}

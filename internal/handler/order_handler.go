package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bizops/internal/model"
	"github.com/hitoshi/bizops/internal/order"
)

// OrderServiceInterface は注文ハンドラーが必要とするサービスインターフェース。
type OrderServiceInterface interface {
	Create(ctx context.Context, input order.CreateInput) (*model.Order, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context) ([]*model.Order, error)
}

// OrderHandler は注文管理のHTTPハンドラー。
type OrderHandler struct {
	service OrderServiceInterface
}

// NewOrderHandler はOrderHandlerを生成する。
func NewOrderHandler(service OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: service}
}

// orderItemRequest は注文明細リクエスト。単価はサーバー側で確定するため受け取らない。
type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// orderRequest は注文作成リクエストのボディ。
type orderRequest struct {
	CustomerID string             `json:"customer_id"`
	Mode       string             `json:"mode"`
	Items      []orderItemRequest `json:"items"`
}

// orderItemResponse は注文明細のAPIレスポンス。
type orderItemResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Qty       int     `json:"qty"`
	BasePrice float64 `json:"base_price"`
	Total     float64 `json:"total"`
}

// orderResponse は注文のAPIレスポンス。
type orderResponse struct {
	ID         string              `json:"id"`
	CustomerID string              `json:"customer_id"`
	Items      []orderItemResponse `json:"items"`
	Mode       string              `json:"mode"`
	BaseTotal  float64             `json:"base_total"`
	CreatedAt  time.Time           `json:"created_at"`
}

func toOrderResponse(o *model.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Qty:       item.Qty,
			BasePrice: item.BasePrice,
			Total:     item.Total,
		}
	}
	return orderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Items:      items,
		Mode:       string(o.Mode),
		BaseTotal:  o.BaseTotal,
		CreatedAt:  o.CreatedAt,
	}
}

// Create は注文を作成する。
// POST /api/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	items := make([]order.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.ItemInput{ProductID: item.ProductID, Qty: item.Qty}
	}

	created, err := h.service.Create(r.Context(), order.CreateInput{
		CustomerID: req.CustomerID,
		Mode:       req.Mode,
		Items:      items,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(created))
}

// List は注文一覧を返す。
// GET /api/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]orderResponse, len(orders))
	for i, o := range orders {
		results[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, results)
}

// Get は注文詳細を返す。
// GET /api/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

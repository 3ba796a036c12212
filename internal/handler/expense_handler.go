package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bizops/internal/expense"
	"github.com/hitoshi/bizops/internal/model"
)

// ExpenseServiceInterface は経費ハンドラーが必要とするサービスインターフェース。
type ExpenseServiceInterface interface {
	Create(ctx context.Context, input expense.CreateInput) (*model.Expense, error)
	Get(ctx context.Context, id string) (*model.Expense, error)
	List(ctx context.Context, month string) ([]*model.Expense, error)
}

// ExpenseHandler は月次経費のHTTPハンドラー。
type ExpenseHandler struct {
	service ExpenseServiceInterface
}

// NewExpenseHandler はExpenseHandlerを生成する。
func NewExpenseHandler(service ExpenseServiceInterface) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// expenseRequest は経費登録リクエストのボディ。
type expenseRequest struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Month       string  `json:"month"`
}

// expenseResponse は経費のAPIレスポンス。
type expenseResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	Month       string    `json:"month"`
	CreatedAt   time.Time `json:"created_at"`
}

func toExpenseResponse(e *model.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Type:        string(e.Type),
		Description: e.Description,
		Amount:      e.Amount,
		Month:       e.Month,
		CreatedAt:   e.CreatedAt,
	}
}

// Create は経費を登録する。
// POST /api/expenses
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	created, err := h.service.Create(r.Context(), expense.CreateInput{
		Type:        req.Type,
		Description: req.Description,
		Amount:      req.Amount,
		Month:       req.Month,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseResponse(created))
}

// List は経費一覧を返す。monthクエリで月を絞り込める。
// GET /api/expenses?month=2026-08
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.service.List(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		results[i] = toExpenseResponse(e)
	}
	writeJSON(w, http.StatusOK, results)
}

// Get は経費詳細を返す。
// GET /api/expenses/{id}
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

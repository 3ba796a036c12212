package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bizops/internal/expense"
	"github.com/hitoshi/bizops/internal/model"
)

// --- モック定義 ---

type mockExpenseService struct {
	createFunc func(ctx context.Context, input expense.CreateInput) (*model.Expense, error)
	getFunc    func(ctx context.Context, id string) (*model.Expense, error)
	listFunc   func(ctx context.Context, month string) ([]*model.Expense, error)
}

func (m *mockExpenseService) Create(ctx context.Context, input expense.CreateInput) (*model.Expense, error) {
	return m.createFunc(ctx, input)
}

func (m *mockExpenseService) Get(ctx context.Context, id string) (*model.Expense, error) {
	return m.getFunc(ctx, id)
}

func (m *mockExpenseService) List(ctx context.Context, month string) ([]*model.Expense, error) {
	return m.listFunc(ctx, month)
}

var _ ExpenseServiceInterface = (*mockExpenseService)(nil)

func newExpenseTestRouter(h *ExpenseHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/expenses", h.Create)
	r.Get("/api/expenses", h.List)
	r.Get("/api/expenses/{id}", h.Get)
	return r
}

// --- テスト ---

func TestExpenseHandler_Create(t *testing.T) {
	service := &mockExpenseService{
		createFunc: func(_ context.Context, input expense.CreateInput) (*model.Expense, error) {
			if input.Month != "2026-08" {
				t.Errorf("対象月が期待と異なる: %s", input.Month)
			}
			return &model.Expense{
				ID:     "exp-1",
				Type:   model.ExpenseRent,
				Amount: input.Amount,
				Month:  input.Month,
			}, nil
		},
	}
	router := newExpenseTestRouter(NewExpenseHandler(service))

	body := `{"type":"RENT","amount":80000,"month":"2026-08"}`
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("ステータスコードが %d ではなく %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var resp expenseResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスボディの解析に失敗: %v", err)
	}
	if resp.Type != string(model.ExpenseRent) || resp.Amount != 80000 {
		t.Errorf("レスポンスが期待と異なる: %+v", resp)
	}
}

func TestExpenseHandler_Create_ValidationError(t *testing.T) {
	service := &mockExpenseService{
		createFunc: func(_ context.Context, _ expense.CreateInput) (*model.Expense, error) {
			return nil, model.NewValidationError("month", "YYYY-MM形式で指定してください")
		},
	}
	router := newExpenseTestRouter(NewExpenseHandler(service))

	body := `{"type":"RENT","amount":80000,"month":"August"}`
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("ステータスコードが %d ではなく %d", http.StatusBadRequest, rec.Code)
	}
}

func TestExpenseHandler_List_MonthFilter(t *testing.T) {
	service := &mockExpenseService{
		listFunc: func(_ context.Context, month string) ([]*model.Expense, error) {
			if month != "2026-08" {
				t.Errorf("月フィルタが期待と異なる: %s", month)
			}
			return []*model.Expense{{ID: "exp-1", Month: month}}, nil
		},
	}
	router := newExpenseTestRouter(NewExpenseHandler(service))

	req := httptest.NewRequest(http.MethodGet, "/api/expenses?month=2026-08", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータスコードが %d ではなく %d", http.StatusOK, rec.Code)
	}

	var resp []expenseResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスボディの解析に失敗: %v", err)
	}
	if len(resp) != 1 {
		t.Errorf("件数が1ではない: %d", len(resp))
	}
}

func TestExpenseHandler_List_NoFilter(t *testing.T) {
	service := &mockExpenseService{
		listFunc: func(_ context.Context, month string) ([]*model.Expense, error) {
			if month != "" {
				t.Errorf("月フィルタは空であるべき: %s", month)
			}
			return []*model.Expense{}, nil
		},
	}
	router := newExpenseTestRouter(NewExpenseHandler(service))

	req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("ステータスコードが %d ではなく %d", http.StatusOK, rec.Code)
	}
}

func TestExpenseHandler_Get_NotFound(t *testing.T) {
	service := &mockExpenseService{
		getFunc: func(_ context.Context, id string) (*model.Expense, error) {
			return nil, model.NewNotFoundError("経費", id)
		},
	}
	router := newExpenseTestRouter(NewExpenseHandler(service))

	req := httptest.NewRequest(http.MethodGet, "/api/expenses/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("ステータスコードが %d ではなく %d", http.StatusNotFound, rec.Code)
	}
}

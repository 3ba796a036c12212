// Package expense は月次経費のドメインロジックを提供する。
package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/bizops/internal/model"
	"github.com/hitoshi/bizops/internal/repository"
	"github.com/hitoshi/bizops/internal/security"
)

// CreateInput は経費登録の入力。
type CreateInput struct {
	Type        string
	Description string
	Amount      float64
	Month       string // 'YYYY-MM'
}

// Service は経費管理のサービス層。
type Service struct {
	repo      repository.ExpenseRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ExpenseRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// Create は経費を登録する。amountとmonth（'YYYY-MM'形式）は必須。
// typeが未指定の場合はOTHERになる。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Expense, error) {
	if input.Amount <= 0 {
		return nil, model.NewValidationError("amount", "0より大きい値を指定してください")
	}
	if input.Month == "" {
		return nil, model.NewValidationError("month", "必須項目です")
	}
	if !model.IsValidExpenseMonth(input.Month) {
		return nil, model.NewValidationError("month", "'YYYY-MM'形式で指定してください")
	}

	expenseType := model.ExpenseOther
	if input.Type != "" {
		expenseType = model.ExpenseType(input.Type)
		if !expenseType.IsValid() {
			return nil, model.NewValidationError("type", "RENT、OTHERのいずれかを指定してください")
		}
	}

	expense := &model.Expense{
		ID:          uuid.New().String(),
		Type:        expenseType,
		Description: s.sanitizer.Sanitize(input.Description),
		Amount:      input.Amount,
		Month:       input.Month,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("経費の登録に失敗しました: %w", err)
	}

	return expense, nil
}

// Get は指定IDの経費を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Expense, error) {
	expense, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("経費の取得に失敗しました: %w", err)
	}
	if expense == nil {
		return nil, model.NewNotFoundError("経費", id)
	}
	return expense, nil
}

// List は経費一覧を月降順で返す。
// monthが指定された場合は'YYYY-MM'形式を検証した上で該当月のみ返す。
func (s *Service) List(ctx context.Context, month string) ([]*model.Expense, error) {
	if month != "" {
		if !model.IsValidExpenseMonth(month) {
			return nil, model.NewValidationError("month", "'YYYY-MM'形式で指定してください")
		}
		expenses, err := s.repo.ListByMonth(ctx, month)
		if err != nil {
			return nil, fmt.Errorf("経費一覧の取得に失敗しました: %w", err)
		}
		return expenses, nil
	}

	expenses, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("経費一覧の取得に失敗しました: %w", err)
	}
	return expenses, nil
}

// Package visit は顧客訪問記録のドメインロジックを提供する。
package visit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/bizops/internal/model"
	"github.com/hitoshi/bizops/internal/repository"
)

// CreateInput は訪問記録作成の入力。
// UserIDは認証ゲートが注入したユーザーから設定され、クライアントからは受け取らない。
type CreateInput struct {
	RefType    string
	RefID      string
	CustomerID string
	UserID     string
	Date       time.Time
	DistanceKm float64
	CostPerKm  float64
}

// Service は訪問記録のサービス層。
// 移動費用のスナップショット計算を担う。
type Service struct {
	visitRepo    repository.VisitRepository
	customerRepo repository.CustomerRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(visitRepo repository.VisitRepository, customerRepo repository.CustomerRepository) *Service {
	return &Service{
		visitRepo:    visitRepo,
		customerRepo: customerRepo,
	}
}

// Create は訪問記録を作成する。
// total_travel_cost = distance_km × cost_per_km を保存時に確定する。
// ref_typeが未指定の場合はOTHER、dateが未指定の場合は現在時刻になる。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Visit, error) {
	if input.CustomerID == "" {
		return nil, model.NewValidationError("customer", "必須項目です")
	}
	if input.DistanceKm < 0 {
		return nil, model.NewValidationError("distanceKm", "0以上で指定してください")
	}
	if input.CostPerKm < 0 {
		return nil, model.NewValidationError("costPerKm", "0以上で指定してください")
	}

	refType := model.VisitRefOther
	if input.RefType != "" {
		refType = model.VisitRefType(input.RefType)
		if !refType.IsValid() {
			return nil, model.NewValidationError("refType", "ORDER、SERVICE、OTHERのいずれかを指定してください")
		}
	}

	customer, err := s.customerRepo.FindByID(ctx, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("顧客の取得に失敗しました: %w", err)
	}
	if customer == nil {
		return nil, model.NewNotFoundError("顧客", input.CustomerID)
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	visit := &model.Visit{
		ID:              uuid.New().String(),
		RefType:         refType,
		RefID:           input.RefID,
		CustomerID:      customer.ID,
		UserID:          input.UserID,
		Date:            date,
		DistanceKm:      input.DistanceKm,
		CostPerKm:       input.CostPerKm,
		TotalTravelCost: input.DistanceKm * input.CostPerKm,
		CreatedAt:       time.Now(),
	}

	if err := s.visitRepo.Create(ctx, visit); err != nil {
		return nil, fmt.Errorf("訪問記録の作成に失敗しました: %w", err)
	}

	return visit, nil
}

// Get は指定IDの訪問記録を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Visit, error) {
	visit, err := s.visitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("訪問記録の取得に失敗しました: %w", err)
	}
	if visit == nil {
		return nil, model.NewNotFoundError("訪問記録", id)
	}
	return visit, nil
}

// List は訪問記録一覧を訪問日降順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Visit, error) {
	visits, err := s.visitRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("訪問記録一覧の取得に失敗しました: %w", err)
	}
	return visits, nil
}

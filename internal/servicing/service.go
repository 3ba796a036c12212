// Package servicing は修理・保守作業のドメインロジックを提供する。
package servicing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/bizops/internal/model"
	"github.com/hitoshi/bizops/internal/repository"
	"github.com/hitoshi/bizops/internal/security"
)

// SpareInput は使用資材の入力。単価はクライアントから受け取らず、
// 使用時点の資材マスタからスナップショットする。
type SpareInput struct {
	RawMaterialID string
	Qty           float64
}

// CreateInput は修理作業作成の入力。
type CreateInput struct {
	CustomerID    string
	JobDesc       string
	Spares        []SpareInput
	ServiceCharge float64
}

// Service は修理作業のサービス層。
// 使用資材の単価・費用のスナップショット計算を担う。
type Service struct {
	jobRepo      repository.ServiceJobRepository
	customerRepo repository.CustomerRepository
	materialRepo repository.RawMaterialRepository
	sanitizer    security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	jobRepo repository.ServiceJobRepository,
	customerRepo repository.CustomerRepository,
	materialRepo repository.RawMaterialRepository,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		jobRepo:      jobRepo,
		customerRepo: customerRepo,
		materialRepo: materialRepo,
		sanitizer:    sanitizer,
	}
}

// Create は修理作業を作成する。
// 各使用資材のunit_costは現在の資材purchase_unit_costのスナップショットとなり、
// total_cost = qty × unit_cost を保存時に確定する。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.ServiceJob, error) {
	if input.CustomerID == "" {
		return nil, model.NewValidationError("customer", "必須項目です")
	}
	if input.ServiceCharge < 0 {
		return nil, model.NewValidationError("serviceCharge", "0以上で指定してください")
	}

	customer, err := s.customerRepo.FindByID(ctx, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("顧客の取得に失敗しました: %w", err)
	}
	if customer == nil {
		return nil, model.NewNotFoundError("顧客", input.CustomerID)
	}

	spares := make([]model.SpareUsed, 0, len(input.Spares))
	for i, spare := range input.Spares {
		if spare.RawMaterialID == "" {
			return nil, model.NewValidationError(fmt.Sprintf("spares[%d].rawMaterial", i), "必須項目です")
		}
		if spare.Qty <= 0 {
			return nil, model.NewValidationError(fmt.Sprintf("spares[%d].qty", i), "0より大きい値を指定してください")
		}

		material, err := s.materialRepo.FindByID(ctx, spare.RawMaterialID)
		if err != nil {
			return nil, fmt.Errorf("資材の取得に失敗しました: %w", err)
		}
		if material == nil {
			return nil, model.NewNotFoundError("資材", spare.RawMaterialID)
		}

		spares = append(spares, model.SpareUsed{
			ID:            uuid.New().String(),
			RawMaterialID: material.ID,
			Qty:           spare.Qty,
			UnitCost:      material.PurchaseUnitCost,
			TotalCost:     spare.Qty * material.PurchaseUnitCost,
		})
	}

	job := &model.ServiceJob{
		ID:            uuid.New().String(),
		CustomerID:    customer.ID,
		JobDesc:       s.sanitizer.Sanitize(input.JobDesc),
		Spares:        spares,
		ServiceCharge: input.ServiceCharge,
		CreatedAt:     time.Now(),
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("修理作業の作成に失敗しました: %w", err)
	}

	return job, nil
}

// Get は指定IDの修理作業を使用資材付きで返す。
func (s *Service) Get(ctx context.Context, id string) (*model.ServiceJob, error) {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("修理作業の取得に失敗しました: %w", err)
	}
	if job == nil {
		return nil, model.NewNotFoundError("修理作業", id)
	}
	return job, nil
}

// List は修理作業一覧を使用資材付きで作成日時降順で返す。
func (s *Service) List(ctx context.Context) ([]*model.ServiceJob, error) {
	jobs, err := s.jobRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("修理作業一覧の取得に失敗しました: %w", err)
	}
	return jobs, nil
}

// Package material は仕入資材のドメインロジックを提供する。
package material

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/bizops/internal/model"
	"github.com/hitoshi/bizops/internal/repository"
)

// CreateInput は資材登録の入力。
type CreateInput struct {
	Name             string
	Vendor           string
	PurchaseQty      float64
	PurchaseUnitCost float64
}

// Service は資材管理のサービス層。
// 仕入費用のスナップショット計算を担う。
type Service struct {
	repo repository.RawMaterialRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.RawMaterialRepository) *Service {
	return &Service{repo: repo}
}

// Create は資材を登録する。nameは必須。
// total_cost = purchase_qty × purchase_unit_cost を保存時に確定する。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.RawMaterial, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, model.NewValidationError("name", "必須項目です")
	}
	if input.PurchaseQty < 0 {
		return nil, model.NewValidationError("purchaseQty", "0以上で指定してください")
	}
	if input.PurchaseUnitCost < 0 {
		return nil, model.NewValidationError("purchaseUnitCost", "0以上で指定してください")
	}

	material := &model.RawMaterial{
		ID:               uuid.New().String(),
		Name:             name,
		Vendor:           strings.TrimSpace(input.Vendor),
		PurchaseQty:      input.PurchaseQty,
		PurchaseUnitCost: input.PurchaseUnitCost,
		TotalCost:        input.PurchaseQty * input.PurchaseUnitCost,
		CreatedAt:        time.Now(),
	}

	if err := s.repo.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("資材の登録に失敗しました: %w", err)
	}

	return material, nil
}

// Get は指定IDの資材を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.RawMaterial, error) {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("資材の取得に失敗しました: %w", err)
	}
	if material == nil {
		return nil, model.NewNotFoundError("資材", id)
	}
	return material, nil
}

// List は資材一覧を作成日時降順で返す。
func (s *Service) List(ctx context.Context) ([]*model.RawMaterial, error) {
	materials, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("資材一覧の取得に失敗しました: %w", err)
	}
	return materials, nil
}

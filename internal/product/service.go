// Package product は商品管理のドメインロジックを提供する。
package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/bizops/internal/model"
	"github.com/hitoshi/bizops/internal/repository"
	"github.com/hitoshi/bizops/internal/security"
)

// CreateInput は商品作成の入力。
type CreateInput struct {
	SKU         string
	Name        string
	Description string
	BasePrice   float64
	Mode        string
}

// Service は商品管理のサービス層。
type Service struct {
	repo      repository.ProductRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ProductRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// Create は商品を作成する。nameとbase_priceは必須。
// modeが未指定の場合はSALEになる。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, model.NewValidationError("name", "必須項目です")
	}
	if input.BasePrice < 0 {
		return nil, model.NewValidationError("basePrice", "0以上で指定してください")
	}

	mode := model.ModeSale
	if input.Mode != "" {
		mode = model.Mode(input.Mode)
		if !mode.IsValid() {
			return nil, model.NewValidationError("mode", "SALE、FREE、RENTALのいずれかを指定してください")
		}
	}

	product := &model.Product{
		ID:          uuid.New().String(),
		SKU:         strings.TrimSpace(input.SKU),
		Name:        s.sanitizer.Sanitize(name),
		Description: s.sanitizer.Sanitize(input.Description),
		BasePrice:   input.BasePrice,
		Mode:        mode,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("商品の作成に失敗しました: %w", err)
	}

	return product, nil
}

// Get は指定IDの商品を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	if product == nil {
		return nil, model.NewNotFoundError("商品", id)
	}
	return product, nil
}

// List は商品一覧を作成日時降順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("商品一覧の取得に失敗しました: %w", err)
	}
	return products, nil
}

// Package order は注文管理のドメインロジックを提供する。
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/bizops/internal/model"
	"github.com/hitoshi/bizops/internal/repository"
)

// ItemInput は注文明細の入力。単価はクライアントから受け取らず、
// 注文時点の商品マスタからスナップショットする。
type ItemInput struct {
	ProductID string
	Qty       int
}

// CreateInput は注文作成の入力。
type CreateInput struct {
	CustomerID string
	Mode       string
	Items      []ItemInput
}

// Service は注文管理のサービス層。
// 明細単価・合計のスナップショット計算を担う。
type Service struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
) *Service {
	return &Service{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
	}
}

// Create は注文を作成する。
// 各明細の単価は現在の商品base_priceのスナップショットとなり、
// total = qty × base_price、base_total = 全明細totalの合計を保存時に確定する。
// 以降の商品価格変更は過去の注文に影響しない。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Order, error) {
	if input.CustomerID == "" {
		return nil, model.NewValidationError("customer", "必須項目です")
	}
	if len(input.Items) == 0 {
		return nil, model.NewValidationError("items", "1件以上の明細が必要です")
	}

	mode := model.ModeSale
	if input.Mode != "" {
		mode = model.Mode(input.Mode)
		if !mode.IsValid() {
			return nil, model.NewValidationError("mode", "SALE、FREE、RENTALのいずれかを指定してください")
		}
	}

	customer, err := s.customerRepo.FindByID(ctx, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("顧客の取得に失敗しました: %w", err)
	}
	if customer == nil {
		return nil, model.NewNotFoundError("顧客", input.CustomerID)
	}

	items := make([]model.OrderItem, 0, len(input.Items))
	var baseTotal float64
	for i, item := range input.Items {
		if item.ProductID == "" {
			return nil, model.NewValidationError(fmt.Sprintf("items[%d].product", i), "必須項目です")
		}
		if item.Qty <= 0 {
			return nil, model.NewValidationError(fmt.Sprintf("items[%d].qty", i), "1以上で指定してください")
		}

		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("商品の取得に失敗しました: %w", err)
		}
		if product == nil {
			return nil, model.NewNotFoundError("商品", item.ProductID)
		}

		total := float64(item.Qty) * product.BasePrice
		items = append(items, model.OrderItem{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Qty:       item.Qty,
			BasePrice: product.BasePrice,
			Total:     total,
		})
		baseTotal += total
	}

	order := &model.Order{
		ID:         uuid.New().String(),
		CustomerID: customer.ID,
		Items:      items,
		Mode:       mode,
		BaseTotal:  baseTotal,
		CreatedAt:  time.Now(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("注文の作成に失敗しました: %w", err)
	}

	return order, nil
}

// Get は指定IDの注文を明細付きで返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("注文の取得に失敗しました: %w", err)
	}
	if order == nil {
		return nil, model.NewNotFoundError("注文", id)
	}
	return order, nil
}

// List は注文一覧を明細付きで作成日時降順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("注文一覧の取得に失敗しました: %w", err)
	}
	return orders, nil
}

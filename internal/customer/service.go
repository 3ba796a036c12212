// Package customer は顧客管理のドメインロジックを提供する。
package customer

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

// 近傍検索のデフォルト値。
const (
	defaultNearRadiusKm = 10.0
	defaultNearLimit    = 20

	// kmPerDegree は緯度1度あたりの概算距離（km）。
	// 矩形近傍検索の半径換算に使用する。
	kmPerDegree = 111.0
)

// CreateInput は顧客作成の入力。
type CreateInput struct {
	Name        string
	ContactName string
	Email       string
	Phone       string
	Address     string
	Location    *model.Location
}

// Service は顧客管理のサービス層。
// 顧客の作成、取得、一覧、近傍検索のビジネスロジックを提供する。
type Service struct {
	repo      repository.CustomerRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.CustomerRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// Create は顧客を作成する。nameは必須。
// 住所などの自由入力テキストは保存前にサニタイズされる。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, model.NewValidationError("name", "必須項目です")
	}

	if input.Location != nil {
		if err := validateCoordinates(input.Location.Lng, input.Location.Lat); err != nil {
			return nil, err
		}
	}

	customer := &model.Customer{
		ID:          uuid.New().String(),
		Name:        s.sanitizer.Sanitize(name),
		ContactName: s.sanitizer.Sanitize(input.ContactName),
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		Address:     s.sanitizer.Sanitize(input.Address),
		Location:    input.Location,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("顧客の作成に失敗しました: %w", err)
	}

	return customer, nil
}

// Get は指定IDの顧客を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("顧客の取得に失敗しました: %w", err)
	}
	if customer == nil {
		return nil, model.NewNotFoundError("顧客", id)
	}
	return customer, nil
}

// List は顧客一覧を作成日時降順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Customer, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("顧客一覧の取得に失敗しました: %w", err)
	}
	return customers, nil
}

// ListNear は指定座標から半径radiusKm（km）の近傍顧客を距離の近い順に返す。
// radiusKmが0以下の場合はデフォルト（10km）を使用する。
// 所在地が未登録の顧客は結果に含まれない。
func (s *Service) ListNear(ctx context.Context, lng, lat, radiusKm float64) ([]*model.Customer, error) {
	if err := validateCoordinates(lng, lat); err != nil {
		return nil, err
	}

	if radiusKm <= 0 {
		radiusKm = defaultNearRadiusKm
	}

	// kmを経度緯度の度数に換算する。高緯度ほど経度方向は広めになるが、
	// 近傍候補の絞り込み用途には十分。
	radiusDeg := radiusKm / kmPerDegree

	customers, err := s.repo.ListNear(ctx, lng, lat, radiusDeg, defaultNearLimit)
	if err != nil {
		return nil, fmt.Errorf("近傍顧客の検索に失敗しました: %w", err)
	}
	return customers, nil
}

// validateCoordinates は経度・緯度が有効範囲内であるかを検証する。
func validateCoordinates(lng, lat float64) error {
	if lng < -180 || lng > 180 {
		return model.NewValidationError("lng", "-180から180の範囲で指定してください")
	}
	if lat < -90 || lat > 90 {
		return model.NewValidationError("lat", "-90から90の範囲で指定してください")
	}
	return nil
}

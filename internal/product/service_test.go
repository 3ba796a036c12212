package product

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/bizops/internal/model"
	"github.com/hitoshi/bizops/internal/repository"
	"github.com/hitoshi/bizops/internal/security"
)

// --- モック定義 ---

type mockProductRepo struct {
	createFn   func(ctx context.Context, product *model.Product) error
	findByIDFn func(ctx context.Context, id string) (*model.Product, error)
	listFn     func(ctx context.Context) ([]*model.Product, error)
}

func (m *mockProductRepo) Create(ctx context.Context, product *model.Product) error {
	if m.createFn != nil {
		return m.createFn(ctx, product)
	}
	return nil
}

func (m *mockProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProductRepo) List(ctx context.Context) ([]*model.Product, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

var _ repository.ProductRepository = (*mockProductRepo)(nil)

func newTestService(repo repository.ProductRepository) *Service {
	return NewService(repo, security.NewTextSanitizer())
}

// --- テスト ---

func TestCreate_DefaultsModeToSale(t *testing.T) {
	var saved *model.Product
	repo := &mockProductRepo{
		createFn: func(ctx context.Context, product *model.Product) error {
			saved = product
			return nil
		},
	}
	s := newTestService(repo)

	got, err := s.Create(context.Background(), CreateInput{
		SKU:       "AC-100",
		Name:      "エアコンフィルター",
		BasePrice: 1500,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if got.Mode != model.ModeSale {
		t.Errorf("Mode = %q, want %q", got.Mode, model.ModeSale)
	}
	if saved == nil || saved.ID == "" {
		t.Error("product should be persisted with assigned ID")
	}
}

func TestCreate_ExplicitMode(t *testing.T) {
	s := newTestService(&mockProductRepo{})

	got, err := s.Create(context.Background(), CreateInput{
		Name:      "業務用エアコン",
		BasePrice: 98000,
		Mode:      "RENTAL",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got.Mode != model.ModeRental {
		t.Errorf("Mode = %q, want %q", got.Mode, model.ModeRental)
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	s := newTestService(&mockProductRepo{})

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing name", CreateInput{BasePrice: 1000}},
		{"negative price", CreateInput{Name: "フィルター", BasePrice: -1}},
		{"unknown mode", CreateInput{Name: "フィルター", BasePrice: 1000, Mode: "LEASE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), tt.input)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newTestService(&mockProductRepo{})

	_, err := s.Get(context.Background(), "missing-id")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNotFound {
		t.Errorf("error = %v, want not found error", err)
	}
}

func TestList_PropagatesStorageError(t *testing.T) {
	repo := &mockProductRepo{
		listFn: func(ctx context.Context) ([]*model.Product, error) {
			return nil, errors.New("connection refused")
		},
	}
	s := newTestService(repo)

	if _, err := s.List(context.Background()); err == nil {
		t.Fatal("expected storage error to propagate")
	}
}

// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/bizops/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	// メールアドレスは一意制約を持つため、高々1件が返る。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// 同一メールアドレスのレコードが既に存在する場合は一意制約違反エラーを返す
	// （IsUniqueViolationで判定できる）。
	Create(ctx context.Context, user *model.User) error
}

// CustomerRepository は顧客データの永続化インターフェース。
type CustomerRepository interface {
	// Create は顧客を作成する。
	Create(ctx context.Context, customer *model.Customer) error

	// FindByID は指定IDの顧客を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Customer, error)

	// List は顧客一覧を作成日時降順で返す。
	List(ctx context.Context) ([]*model.Customer, error)

	// ListNear は指定座標の近傍（経度緯度の度数で±radiusDegの矩形内）の顧客を
	// 距離の近い順に返す。locationが未設定の顧客は対象外。
	ListNear(ctx context.Context, lng, lat, radiusDeg float64, limit int) ([]*model.Customer, error)
}

// ProductRepository は商品データの永続化インターフェース。
type ProductRepository interface {
	// Create は商品を作成する。
	Create(ctx context.Context, product *model.Product) error

	// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Product, error)

	// List は商品一覧を作成日時降順で返す。
	List(ctx context.Context) ([]*model.Product, error)
}

// OrderRepository は注文データの永続化インターフェース。
type OrderRepository interface {
	// Create は注文と明細を同一トランザクションで作成する。
	Create(ctx context.Context, order *model.Order) error

	// FindByID は指定IDの注文を明細付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Order, error)

	// List は注文一覧を明細付きで作成日時降順で返す。
	List(ctx context.Context) ([]*model.Order, error)
}

// ServiceJobRepository は修理作業データの永続化インターフェース。
type ServiceJobRepository interface {
	// Create は修理作業と使用資材を同一トランザクションで作成する。
	Create(ctx context.Context, job *model.ServiceJob) error

	// FindByID は指定IDの修理作業を使用資材付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.ServiceJob, error)

	// List は修理作業一覧を使用資材付きで作成日時降順で返す。
	List(ctx context.Context) ([]*model.ServiceJob, error)
}

// RawMaterialRepository は資材データの永続化インターフェース。
type RawMaterialRepository interface {
	// Create は資材を作成する。
	Create(ctx context.Context, material *model.RawMaterial) error

	// FindByID は指定IDの資材を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.RawMaterial, error)

	// List は資材一覧を作成日時降順で返す。
	List(ctx context.Context) ([]*model.RawMaterial, error)
}

// VisitRepository は訪問記録の永続化インターフェース。
type VisitRepository interface {
	// Create は訪問記録を作成する。
	Create(ctx context.Context, visit *model.Visit) error

	// FindByID は指定IDの訪問記録を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Visit, error)

	// List は訪問記録一覧を訪問日降順で返す。
	List(ctx context.Context) ([]*model.Visit, error)
}

// ExpenseRepository は経費データの永続化インターフェース。
type ExpenseRepository interface {
	// Create は経費を作成する。
	Create(ctx context.Context, expense *model.Expense) error

	// FindByID は指定IDの経費を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Expense, error)

	// List は経費一覧を月降順で返す。
	List(ctx context.Context) ([]*model.Expense, error)

	// ListByMonth は指定月（'YYYY-MM'）の経費一覧を返す。
	ListByMonth(ctx context.Context, month string) ([]*model.Expense, error)
}

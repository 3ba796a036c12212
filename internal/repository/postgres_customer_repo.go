package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bizops/internal/model"
)

// PostgresCustomerRepo はPostgreSQLを使用した顧客リポジトリ。
type PostgresCustomerRepo struct {
	db *sql.DB
}

// NewPostgresCustomerRepo はPostgresCustomerRepoを生成する。
func NewPostgresCustomerRepo(db *sql.DB) *PostgresCustomerRepo {
	return &PostgresCustomerRepo{db: db}
}

// Create は顧客を作成する。locationが未設定の場合はNULLで保存する。
func (r *PostgresCustomerRepo) Create(ctx context.Context, customer *model.Customer) error {
	var lng, lat sql.NullFloat64
	if customer.Location != nil {
		lng = sql.NullFloat64{Float64: customer.Location.Lng, Valid: true}
		lat = sql.NullFloat64{Float64: customer.Location.Lat, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (id, name, contact_name, email, phone, address, location, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6,
		         CASE WHEN $7::float8 IS NULL THEN NULL ELSE point($7::float8, $8::float8) END,
		         $9)`,
		customer.ID, customer.Name, customer.ContactName, customer.Email,
		customer.Phone, customer.Address, lng, lat, customer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

// FindByID は指定IDの顧客を取得する。見つからない場合はnilを返す。
func (r *PostgresCustomerRepo) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, contact_name, email, phone, address, location::text, created_at
		 FROM customers WHERE id = $1`,
		id,
	)

	customer, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return customer, nil
}

// List は顧客一覧を作成日時降順で返す。
func (r *PostgresCustomerRepo) List(ctx context.Context) ([]*model.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, contact_name, email, phone, address, location::text, created_at
		 FROM customers ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	return collectCustomers(rows)
}

// ListNear は指定座標の近傍の顧客を距離の近い順に返す。
// 矩形絞り込み（box包含）はidx_customers_locationのGiSTインデックスを使用する。
func (r *PostgresCustomerRepo) ListNear(ctx context.Context, lng, lat, radiusDeg float64, limit int) ([]*model.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, contact_name, email, phone, address, location::text, created_at
		 FROM customers
		 WHERE location IS NOT NULL
		   AND location <@ box(point($1::float8 - $3::float8, $2::float8 - $3::float8),
		                       point($1::float8 + $3::float8, $2::float8 + $3::float8))
		 ORDER BY location <-> point($1::float8, $2::float8)
		 LIMIT $4`,
		lng, lat, radiusDeg, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers near point: %w", err)
	}
	defer rows.Close()

	return collectCustomers(rows)
}

// rowScanner はsql.Rowとsql.Rowsの共通スキャンインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCustomer は1行を顧客モデルに変換する。
func scanCustomer(row rowScanner) (*model.Customer, error) {
	customer := &model.Customer{}
	var location sql.NullString

	err := row.Scan(
		&customer.ID, &customer.Name, &customer.ContactName, &customer.Email,
		&customer.Phone, &customer.Address, &location, &customer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if location.Valid {
		loc, err := parsePoint(location.String)
		if err != nil {
			return nil, err
		}
		customer.Location = loc
	}

	return customer, nil
}

// collectCustomers は全行を顧客モデルのスライスに変換する。
func collectCustomers(rows *sql.Rows) ([]*model.Customer, error) {
	var customers []*model.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, nil
}

// compile-time interface check
var _ CustomerRepository = (*PostgresCustomerRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bizops/internal/model"
)

// PostgresRawMaterialRepo はPostgreSQLを使用した資材リポジトリ。
type PostgresRawMaterialRepo struct {
	db *sql.DB
}

// NewPostgresRawMaterialRepo はPostgresRawMaterialRepoを生成する。
func NewPostgresRawMaterialRepo(db *sql.DB) *PostgresRawMaterialRepo {
	return &PostgresRawMaterialRepo{db: db}
}

// Create は資材を作成する。
func (r *PostgresRawMaterialRepo) Create(ctx context.Context, material *model.RawMaterial) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO raw_materials (id, name, vendor, purchase_qty, purchase_unit_cost, total_cost, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		material.ID, material.Name, material.Vendor, material.PurchaseQty,
		material.PurchaseUnitCost, material.TotalCost, material.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert raw material: %w", err)
	}
	return nil
}

// FindByID は指定IDの資材を取得する。見つからない場合はnilを返す。
func (r *PostgresRawMaterialRepo) FindByID(ctx context.Context, id string) (*model.RawMaterial, error) {
	material := &model.RawMaterial{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, vendor, purchase_qty, purchase_unit_cost, total_cost, created_at
		 FROM raw_materials WHERE id = $1`,
		id,
	).Scan(&material.ID, &material.Name, &material.Vendor, &material.PurchaseQty,
		&material.PurchaseUnitCost, &material.TotalCost, &material.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find raw material: %w", err)
	}

	return material, nil
}

// List は資材一覧を作成日時降順で返す。
func (r *PostgresRawMaterialRepo) List(ctx context.Context) ([]*model.RawMaterial, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, vendor, purchase_qty, purchase_unit_cost, total_cost, created_at
		 FROM raw_materials ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list raw materials: %w", err)
	}
	defer rows.Close()

	var materials []*model.RawMaterial
	for rows.Next() {
		material := &model.RawMaterial{}
		if err := rows.Scan(&material.ID, &material.Name, &material.Vendor,
			&material.PurchaseQty, &material.PurchaseUnitCost,
			&material.TotalCost, &material.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan raw material: %w", err)
		}
		materials = append(materials, material)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate raw materials: %w", err)
	}

	return materials, nil
}

// compile-time interface check
var _ RawMaterialRepository = (*PostgresRawMaterialRepo)(nil)

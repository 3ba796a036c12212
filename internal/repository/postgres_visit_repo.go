package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bizops/internal/model"
)

// PostgresVisitRepo はPostgreSQLを使用した訪問記録リポジトリ。
type PostgresVisitRepo struct {
	db *sql.DB
}

// NewPostgresVisitRepo はPostgresVisitRepoを生成する。
func NewPostgresVisitRepo(db *sql.DB) *PostgresVisitRepo {
	return &PostgresVisitRepo{db: db}
}

// Create は訪問記録を作成する。user_idが空の場合はNULLで保存する。
func (r *PostgresVisitRepo) Create(ctx context.Context, visit *model.Visit) error {
	var userID sql.NullString
	if visit.UserID != "" {
		userID = sql.NullString{String: visit.UserID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO visits (id, ref_type, ref_id, customer_id, user_id, date,
		                     distance_km, cost_per_km, total_travel_cost, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		visit.ID, visit.RefType, visit.RefID, visit.CustomerID, userID, visit.Date,
		visit.DistanceKm, visit.CostPerKm, visit.TotalTravelCost, visit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert visit: %w", err)
	}
	return nil
}

// FindByID は指定IDの訪問記録を取得する。見つからない場合はnilを返す。
func (r *PostgresVisitRepo) FindByID(ctx context.Context, id string) (*model.Visit, error) {
	visit, err := scanVisit(r.db.QueryRowContext(ctx,
		`SELECT id, ref_type, ref_id, customer_id, user_id, date,
		        distance_km, cost_per_km, total_travel_cost, created_at
		 FROM visits WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find visit: %w", err)
	}
	return visit, nil
}

// List は訪問記録一覧を訪問日降順で返す。
func (r *PostgresVisitRepo) List(ctx context.Context) ([]*model.Visit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ref_type, ref_id, customer_id, user_id, date,
		        distance_km, cost_per_km, total_travel_cost, created_at
		 FROM visits ORDER BY date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	var visits []*model.Visit
	for rows.Next() {
		visit, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, visit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate visits: %w", err)
	}

	return visits, nil
}

// scanVisit は1行を訪問記録モデルに変換する。
func scanVisit(row rowScanner) (*model.Visit, error) {
	visit := &model.Visit{}
	var userID sql.NullString

	err := row.Scan(
		&visit.ID, &visit.RefType, &visit.RefID, &visit.CustomerID, &userID,
		&visit.Date, &visit.DistanceKm, &visit.CostPerKm,
		&visit.TotalTravelCost, &visit.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		visit.UserID = userID.String
	}

	return visit, nil
}

// compile-time interface check
var _ VisitRepository = (*PostgresVisitRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bizops/internal/model"
)

// PostgresExpenseRepo はPostgreSQLを使用した経費リポジトリ。
type PostgresExpenseRepo struct {
	db *sql.DB
}

// NewPostgresExpenseRepo はPostgresExpenseRepoを生成する。
func NewPostgresExpenseRepo(db *sql.DB) *PostgresExpenseRepo {
	return &PostgresExpenseRepo{db: db}
}

// Create は経費を作成する。
func (r *PostgresExpenseRepo) Create(ctx context.Context, expense *model.Expense) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, type, description, amount, month, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		expense.ID, expense.Type, expense.Description, expense.Amount,
		expense.Month, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// FindByID は指定IDの経費を取得する。見つからない場合はnilを返す。
func (r *PostgresExpenseRepo) FindByID(ctx context.Context, id string) (*model.Expense, error) {
	expense := &model.Expense{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, type, description, amount, month, created_at
		 FROM expenses WHERE id = $1`,
		id,
	).Scan(&expense.ID, &expense.Type, &expense.Description,
		&expense.Amount, &expense.Month, &expense.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find expense: %w", err)
	}

	return expense, nil
}

// List は経費一覧を月降順で返す。
func (r *PostgresExpenseRepo) List(ctx context.Context) ([]*model.Expense, error) {
	return r.query(ctx,
		`SELECT id, type, description, amount, month, created_at
		 FROM expenses ORDER BY month DESC, created_at DESC`,
	)
}

// ListByMonth は指定月（'YYYY-MM'）の経費一覧を返す。
// idx_expenses_month_typeの複合インデックスを使用する。
func (r *PostgresExpenseRepo) ListByMonth(ctx context.Context, month string) ([]*model.Expense, error) {
	return r.query(ctx,
		`SELECT id, type, description, amount, month, created_at
		 FROM expenses WHERE month = $1 ORDER BY type, created_at DESC`,
		month,
	)
}

// query は経費クエリを実行して全行をモデルに変換する。
func (r *PostgresExpenseRepo) query(ctx context.Context, q string, args ...any) ([]*model.Expense, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*model.Expense
	for rows.Next() {
		expense := &model.Expense{}
		if err := rows.Scan(&expense.ID, &expense.Type, &expense.Description,
			&expense.Amount, &expense.Month, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// compile-time interface check
var _ ExpenseRepository = (*PostgresExpenseRepo)(nil)

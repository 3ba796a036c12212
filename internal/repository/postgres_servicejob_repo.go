package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/bizops/internal/model"
)

// PostgresServiceJobRepo はPostgreSQLを使用した修理作業リポジトリ。
type PostgresServiceJobRepo struct {
	db *sql.DB
}

// NewPostgresServiceJobRepo はPostgresServiceJobRepoを生成する。
func NewPostgresServiceJobRepo(db *sql.DB) *PostgresServiceJobRepo {
	return &PostgresServiceJobRepo{db: db}
}

// Create は修理作業と使用資材を同一トランザクションで作成する。
func (r *PostgresServiceJobRepo) Create(ctx context.Context, job *model.ServiceJob) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO service_jobs (id, customer_id, job_desc, service_charge, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		job.ID, job.CustomerID, job.JobDesc, job.ServiceCharge, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert service job: %w", err)
	}

	for _, spare := range job.Spares {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO service_spares (id, service_job_id, raw_material_id, qty, unit_cost, total_cost)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			spare.ID, job.ID, spare.RawMaterialID, spare.Qty, spare.UnitCost, spare.TotalCost,
		)
		if err != nil {
			return fmt.Errorf("failed to insert service spare: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID は指定IDの修理作業を使用資材付きで取得する。見つからない場合はnilを返す。
func (r *PostgresServiceJobRepo) FindByID(ctx context.Context, id string) (*model.ServiceJob, error) {
	job := &model.ServiceJob{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, job_desc, service_charge, created_at
		 FROM service_jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.CustomerID, &job.JobDesc, &job.ServiceCharge, &job.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find service job: %w", err)
	}

	sparesByJob, err := r.loadSpares(ctx, []string{job.ID})
	if err != nil {
		return nil, err
	}
	job.Spares = sparesByJob[job.ID]

	return job, nil
}

// List は修理作業一覧を使用資材付きで作成日時降順で返す。
func (r *PostgresServiceJobRepo) List(ctx context.Context) ([]*model.ServiceJob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, job_desc, service_charge, created_at
		 FROM service_jobs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list service jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.ServiceJob
	var jobIDs []string
	for rows.Next() {
		job := &model.ServiceJob{}
		if err := rows.Scan(&job.ID, &job.CustomerID, &job.JobDesc,
			&job.ServiceCharge, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service job: %w", err)
		}
		jobs = append(jobs, job)
		jobIDs = append(jobIDs, job.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate service jobs: %w", err)
	}

	if len(jobs) == 0 {
		return jobs, nil
	}

	sparesByJob, err := r.loadSpares(ctx, jobIDs)
	if err != nil {
		return nil, err
	}
	for _, job := range jobs {
		job.Spares = sparesByJob[job.ID]
	}

	return jobs, nil
}

// loadSpares は指定作業群の使用資材をまとめて取得し、作業IDごとにグループ化して返す。
func (r *PostgresServiceJobRepo) loadSpares(ctx context.Context, jobIDs []string) (map[string][]model.SpareUsed, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, service_job_id, raw_material_id, qty, unit_cost, total_cost
		 FROM service_spares WHERE service_job_id = ANY($1) ORDER BY id`,
		pq.Array(jobIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load service spares: %w", err)
	}
	defer rows.Close()

	sparesByJob := make(map[string][]model.SpareUsed)
	for rows.Next() {
		var spare model.SpareUsed
		var jobID string
		if err := rows.Scan(&spare.ID, &jobID, &spare.RawMaterialID,
			&spare.Qty, &spare.UnitCost, &spare.TotalCost); err != nil {
			return nil, fmt.Errorf("failed to scan service spare: %w", err)
		}
		sparesByJob[jobID] = append(sparesByJob[jobID], spare)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate service spares: %w", err)
	}

	return sparesByJob, nil
}

// compile-time interface check
var _ ServiceJobRepository = (*PostgresServiceJobRepo)(nil)

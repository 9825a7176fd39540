package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/hiring-ingest/internal/core/job"
	pgdb "github.com/ogurasousui/hiring-ingest/internal/platform/db/postgres"
)

// JobRepository は PostgreSQL を利用した職種永続化の実装です。
type JobRepository struct {
	pool pgdb.Queryer
}

// NewJobRepository は JobRepository を生成します。
func NewJobRepository(pool pgdb.Queryer) *JobRepository {
	return &JobRepository{pool: pool}
}

// Insert は職種を新規作成します。
func (r *JobRepository) Insert(ctx context.Context, j *job.Job) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO jobs (id, title)
        VALUES ($1, $2)
    `, j.ID, j.Title)
	if err != nil {
		return translateJobPgError(err)
	}
	return nil
}

// Exists は指定 ID の職種が存在するかを返します。
func (r *JobRepository) Exists(ctx context.Context, id int) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// IDs は登録済みの職種 ID 集合を返します。
func (r *JobRepository) IDs(ctx context.Context) (map[int]struct{}, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT id FROM jobs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int]struct{})
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func translateJobPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return job.ErrAlreadyExists
	}
	return err
}

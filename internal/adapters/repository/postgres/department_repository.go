package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/hiring-ingest/internal/core/department"
	pgdb "github.com/ogurasousui/hiring-ingest/internal/platform/db/postgres"
)

const uniqueViolationCode = "23505"

// DepartmentRepository は PostgreSQL を利用した部署永続化の実装です。
type DepartmentRepository struct {
	pool pgdb.Queryer
}

// NewDepartmentRepository は DepartmentRepository を生成します。
func NewDepartmentRepository(pool pgdb.Queryer) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

// Insert は部署を新規作成します。ID は外部採番のため RETURNING は使いません。
func (r *DepartmentRepository) Insert(ctx context.Context, d *department.Department) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO departments (id, name)
        VALUES ($1, $2)
    `, d.ID, d.Name)
	if err != nil {
		return translateDepartmentPgError(err)
	}
	return nil
}

// Exists は指定 ID の部署が存在するかを返します。
func (r *DepartmentRepository) Exists(ctx context.Context, id int) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM departments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// IDs は登録済みの部署 ID 集合を返します。
func (r *DepartmentRepository) IDs(ctx context.Context) (map[int]struct{}, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT id FROM departments`)
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

func translateDepartmentPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return department.ErrAlreadyExists
	}
	return err
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/hiring-ingest/internal/core/employee"
	pgdb "github.com/ogurasousui/hiring-ingest/internal/platform/db/postgres"
)

const foreignKeyViolationCode = "23503"

// EmployeeRepository は PostgreSQL を利用した従業員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Insert は従業員を 1 件挿入します。
func (r *EmployeeRepository) Insert(ctx context.Context, e *employee.Employee) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO hired_employees (id, name, hired_at, department_id, job_id)
        VALUES ($1, $2, $3, $4, $5)
    `, e.ID, e.Name, e.HiredAt, e.DepartmentID, e.JobID)
	if err != nil {
		return translateEmployeePgError(err)
	}
	return nil
}

// InsertBatch はサブバッチを挿入します。トランザクション境界は呼び出し側の
// TransactionManager が制御するため、1 件でも失敗すればサブバッチ全体が巻き戻ります。
func (r *EmployeeRepository) InsertBatch(ctx context.Context, batch []*employee.Employee) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	for _, e := range batch {
		if _, err := exec.Exec(ctx, `
            INSERT INTO hired_employees (id, name, hired_at, department_id, job_id)
            VALUES ($1, $2, $3, $4, $5)
        `, e.ID, e.Name, e.HiredAt, e.DepartmentID, e.JobID); err != nil {
			return translateEmployeePgError(err)
		}
	}
	return nil
}

// Exists は指定 ID の従業員が存在するかを返します。挿入とはアトミックではありません。
func (r *EmployeeRepository) Exists(ctx context.Context, id int) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM hired_employees WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func translateEmployeePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrAlreadyExists
		case foreignKeyViolationCode:
			return employee.ErrInvalidForeignKey
		}
	}
	return err
}

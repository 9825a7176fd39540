package postgres

import (
	"context"

	"github.com/ogurasousui/hiring-ingest/internal/core/report"
	pgdb "github.com/ogurasousui/hiring-ingest/internal/platform/db/postgres"
)

// ReportRepository は PostgreSQL 上で固定の集計クエリを実行します。
type ReportRepository struct {
	pool pgdb.Queryer
}

// NewReportRepository は ReportRepository を生成します。
func NewReportRepository(pool pgdb.Queryer) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// HiredByQuarter は指定年の採用を部署・職種×四半期で集計します。
func (r *ReportRepository) HiredByQuarter(ctx context.Context, year int) ([]report.HiredByQuarterRow, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT d.name,
               j.title,
               COUNT(*) FILTER (WHERE EXTRACT(QUARTER FROM h.hired_at) = 1) AS q1,
               COUNT(*) FILTER (WHERE EXTRACT(QUARTER FROM h.hired_at) = 2) AS q2,
               COUNT(*) FILTER (WHERE EXTRACT(QUARTER FROM h.hired_at) = 3) AS q3,
               COUNT(*) FILTER (WHERE EXTRACT(QUARTER FROM h.hired_at) = 4) AS q4
          FROM hired_employees h
          JOIN departments d ON h.department_id = d.id
          JOIN jobs j ON h.job_id = j.id
         WHERE EXTRACT(YEAR FROM h.hired_at) = $1
         GROUP BY d.name, j.title
         ORDER BY d.name ASC, j.title ASC
    `, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]report.HiredByQuarterRow, 0, 16)
	for rows.Next() {
		var row report.HiredByQuarterRow
		if err := rows.Scan(&row.Department, &row.Job, &row.Q1, &row.Q2, &row.Q3, &row.Q4); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// HiringAboveAverage は指定年の採用数が部署平均を上回る部署を返します。
func (r *ReportRepository) HiringAboveAverage(ctx context.Context, year int) ([]report.AboveAverageRow, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT d.id,
               d.name,
               COUNT(h.id) AS hired
          FROM hired_employees h
          JOIN departments d ON h.department_id = d.id
         WHERE EXTRACT(YEAR FROM h.hired_at) = $1
         GROUP BY d.id, d.name
        HAVING COUNT(h.id) > (
            SELECT AVG(hired_count)
              FROM (
                SELECT COUNT(h2.id) AS hired_count
                  FROM hired_employees h2
                 WHERE EXTRACT(YEAR FROM h2.hired_at) = $1
                 GROUP BY h2.department_id
              ) AS dept_avg
        )
         ORDER BY hired DESC
    `, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]report.AboveAverageRow, 0, 8)
	for rows.Next() {
		var row report.AboveAverageRow
		if err := rows.Scan(&row.DepartmentID, &row.Department, &row.Hired); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/hiring-ingest/internal/core/department"
	"github.com/ogurasousui/hiring-ingest/internal/core/employee"
	"github.com/ogurasousui/hiring-ingest/internal/core/job"
)

const (
	// DefaultPageLimit は従業員ページングの既定ページサイズです。
	DefaultPageLimit = 1000
	// DefaultSubBatchSize はサブバッチ(1 トランザクションで確定する行数)の既定値です。
	// ページサイズとは独立した閾値です。
	DefaultSubBatchSize = 100
	// MaxBatchInsertSize はバッチ挿入エンドポイントが受け付ける最大レコード数です。
	MaxBatchInsertSize = 1000
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// UseCase は取り込みユースケースの公開インターフェースです。
type UseCase interface {
	LoadDepartments(ctx context.Context) (*Summary, error)
	LoadJobs(ctx context.Context) (*Summary, error)
	LoadEmployees(ctx context.Context, in LoadEmployeesInput) (*Summary, error)
	SeedEmployees(ctx context.Context) (*Summary, error)
	BatchInsertEmployees(ctx context.Context, records []EmployeeRecord) (*BatchInsertResult, error)
	BatchInsertDepartments(ctx context.Context, records []DepartmentRecord) (int, error)
	BatchInsertJobs(ctx context.Context, records []JobRecord) (int, error)
}

// Service は CSV ソースから 3 テーブルへの取り込みユースケースをまとめます。
type Service struct {
	blob         BlobSource
	departments  department.Repository
	jobs         job.Repository
	employees    employee.Repository
	tx           TransactionManager
	files        SourceFiles
	subBatchSize int
	log          *logrus.Entry
}

// Options は Service の調整可能な設定です。ゼロ値は既定値に正規化されます。
type Options struct {
	Files        SourceFiles
	SubBatchSize int
	Logger       *logrus.Entry
}

// NewService は Service を生成します。
func NewService(blob BlobSource, departments department.Repository, jobs job.Repository, employees employee.Repository, tx TransactionManager, opts Options) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	files := opts.Files
	if files.Departments == "" || files.Jobs == "" || files.Employees == "" {
		files = DefaultSourceFiles()
	}
	size := opts.SubBatchSize
	if size <= 0 {
		size = DefaultSubBatchSize
	}
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		blob:         blob,
		departments:  departments,
		jobs:         jobs,
		employees:    employees,
		tx:           tx,
		files:        files,
		subBatchSize: size,
		log:          log,
	}
}

// LoadEmployeesInput は従業員ページ取り込みの入力です。
type LoadEmployeesInput struct {
	Start        int
	Limit        int
	SkipExisting bool
}

// LoadDepartments は departments.csv 全体を取り込みます。ソースは小規模である前提で
// ページングせず、既存 ID の行はスキップし、残りを 1 トランザクションで確定します。
func (s *Service) LoadDepartments(ctx context.Context) (*Summary, error) {
	data, err := s.blob.Fetch(ctx, s.files.Departments)
	if err != nil {
		return nil, err
	}
	rows, err := decodeDepartmentRows(data)
	if err != nil {
		return nil, err
	}

	sum := newSummary(len(rows))
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		for _, row := range rows {
			id, ok := parseIntField(row.ID)
			if !ok {
				return fmt.Errorf("departments: %w: id %q", department.ErrInvalidID, row.ID)
			}
			exists, err := s.departments.Exists(txCtx, id)
			if err != nil {
				return err
			}
			if exists {
				sum.AlreadyExists++
				continue
			}
			if err := s.departments.Insert(txCtx, &department.Department{ID: id, Name: strings.TrimSpace(row.Name)}); err != nil {
				return err
			}
			sum.Inserted++
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"inserted": sum.Inserted, "already_exists": sum.AlreadyExists}).
		Info("departments loaded")
	return sum, nil
}

// LoadJobs は jobs.csv 全体を取り込みます。挙動は LoadDepartments と同じです。
func (s *Service) LoadJobs(ctx context.Context) (*Summary, error) {
	data, err := s.blob.Fetch(ctx, s.files.Jobs)
	if err != nil {
		return nil, err
	}
	rows, err := decodeJobRows(data)
	if err != nil {
		return nil, err
	}

	sum := newSummary(len(rows))
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		for _, row := range rows {
			id, ok := parseIntField(row.ID)
			if !ok {
				return fmt.Errorf("jobs: %w: id %q", job.ErrInvalidID, row.ID)
			}
			exists, err := s.jobs.Exists(txCtx, id)
			if err != nil {
				return err
			}
			if exists {
				sum.AlreadyExists++
				continue
			}
			if err := s.jobs.Insert(txCtx, &job.Job{ID: id, Title: strings.TrimSpace(row.Title)}); err != nil {
				return err
			}
			sum.Inserted++
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"inserted": sum.Inserted, "already_exists": sum.AlreadyExists}).
		Info("jobs loaded")
	return sum, nil
}

// LoadEmployees は hired_employees.csv の 1 ページ [start, start+limit) を取り込みます。
//
// スナップショットはページ開始時に 1 度だけ取得します。ページ実行中に挿入された
// 部署・職種は同一ページの検証には反映されません(意図した一貫性トレードオフ)。
// 存在チェックと挿入はアトミックではないため、同じ従業員 ID を持つ並行実行は
// コミット時に衝突し、負けた側のサブバッチ全体がエラーとして計上されます。
//
// 行レベルの失敗は集計に吸収され、ページ全体を中断しません。ページが空の場合は
// ErrNoMoreRecords を返し、呼び出し側のページングループへ終了を通知します。
// 呼び出し側は start += limit で反復し、processed < limit(短い最終ページ)か
// ErrNoMoreRecords を観測するまで繰り返します。
func (s *Service) LoadEmployees(ctx context.Context, in LoadEmployeesInput) (*Summary, error) {
	start := in.Start
	if start < 0 {
		start = 0
	}
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	s.log.WithFields(logrus.Fields{"start": start, "limit": limit}).Info("loading employees page")

	data, err := s.blob.Fetch(ctx, s.files.Employees)
	if err != nil {
		return nil, err
	}
	rows, err := decodeEmployeeRows(data)
	if err != nil {
		return nil, err
	}

	page := windowEmployeeRows(rows, start, limit)
	if len(page) == 0 {
		return nil, ErrNoMoreRecords
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	sum := newSummary(len(page))
	pending := make([]*employee.Employee, 0, s.subBatchSize)

	for _, row := range page {
		res := ValidateEmployeeRow(row, snap)
		switch res.Kind {
		case RowMissingFields, RowInvalidForeignKey:
			sum.Errors++
			if res.IDParsed {
				sum.ErrorIDs = append(sum.ErrorIDs, res.ID)
			}
			continue
		}

		if in.SkipExisting {
			exists, err := s.employees.Exists(ctx, res.Employee.ID)
			if err != nil {
				sum.Errors++
				sum.ErrorIDs = append(sum.ErrorIDs, res.Employee.ID)
				continue
			}
			if exists {
				sum.AlreadyExists++
				continue
			}
		}

		pending = append(pending, res.Employee)
		if len(pending) >= s.subBatchSize {
			s.flush(ctx, pending, sum)
			pending = make([]*employee.Employee, 0, s.subBatchSize)
		}
	}

	s.flush(ctx, pending, sum)

	s.log.WithFields(logrus.Fields{
		"processed":      sum.Processed,
		"inserted":       sum.Inserted,
		"already_exists": sum.AlreadyExists,
		"errors":         sum.Errors,
	}).Info("employees page loaded")
	return sum, nil
}

// flush はサブバッチ全体を 1 トランザクションで確定します。失敗時はサブバッチ全体を
// ロールバックし、全メンバーの ID をエラーとして計上します。行単位の再試行は行いません。
func (s *Service) flush(ctx context.Context, batch []*employee.Employee, sum *Summary) {
	if len(batch) == 0 {
		return
	}

	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.employees.InsertBatch(txCtx, batch)
	})
	if err != nil {
		sum.Errors += len(batch)
		for _, e := range batch {
			sum.ErrorIDs = append(sum.ErrorIDs, e.ID)
		}
		s.log.WithError(err).WithField("size", len(batch)).Warn("sub-batch rejected")
		return
	}
	sum.Inserted += len(batch)
}

func (s *Service) snapshot(ctx context.Context) (Snapshot, error) {
	deptIDs, err := s.departments.IDs(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot departments: %w", err)
	}
	jobIDs, err := s.jobs.IDs(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot jobs: %w", err)
	}
	return Snapshot{DepartmentIDs: deptIDs, JobIDs: jobIDs}, nil
}

// SeedEmployees は初期投入向けの非冪等モードです。ファイル全体を 1 パスで読み、
// 必須フィールドが欠けた行だけを落とし、残りを 1 トランザクションで挿入します。
// 挿入が 1 件でも失敗すると全体を中断し、部分的な集計は返しません。
func (s *Service) SeedEmployees(ctx context.Context) (*Summary, error) {
	data, err := s.blob.Fetch(ctx, s.files.Employees)
	if err != nil {
		return nil, err
	}
	rows, err := decodeEmployeeRows(data)
	if err != nil {
		return nil, err
	}

	sum := newSummary(len(rows))
	batch := make([]*employee.Employee, 0, len(rows))
	for _, row := range rows {
		id, idOK := parseIntField(row.ID)
		name := strings.TrimSpace(row.Name)
		hiredAt, hiredOK := parseHiredAt(row.HiredAt)
		deptID, deptOK := parseIntField(row.DepartmentID)
		jobID, jobOK := parseIntField(row.JobID)
		if !idOK || name == "" || !hiredOK || !deptOK || !jobOK {
			sum.Errors++
			if idOK {
				sum.ErrorIDs = append(sum.ErrorIDs, id)
			}
			continue
		}
		batch = append(batch, &employee.Employee{
			ID:           id,
			Name:         name,
			HiredAt:      hiredAt,
			DepartmentID: deptID,
			JobID:        jobID,
		})
	}

	if len(batch) > 0 {
		if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
			return s.employees.InsertBatch(txCtx, batch)
		}); err != nil {
			return nil, fmt.Errorf("seed employees: %w", err)
		}
	}
	sum.Inserted = len(batch)

	s.log.WithFields(logrus.Fields{"inserted": sum.Inserted, "dropped": sum.Errors}).
		Info("employees seeded")
	return sum, nil
}

// EmployeeRecord はバッチ挿入エンドポイントから渡される 1 レコードです。
// フィールドはすべて任意入力であり、欠落は検証段階で扱います。
type EmployeeRecord struct {
	ID           *int
	Name         *string
	Datetime     *string
	DepartmentID *int
	JobID        *int
}

// DepartmentRecord はバッチ挿入エンドポイントから渡される部署レコードです。
type DepartmentRecord struct {
	ID   *int
	Name *string
}

// JobRecord はバッチ挿入エンドポイントから渡される職種レコードです。
type JobRecord struct {
	ID    *int
	Title *string
}

// BatchInsertEmployees は最大 MaxBatchInsertSize 件の従業員レコードを検証して挿入します。
// 空の配列と上限超過は ErrEmptyBatch / ErrBatchTooLarge で拒否します。検証はページ取り込みと
// 同じく、開始時に 1 度だけ取得したスナップショットに対して行います。
func (s *Service) BatchInsertEmployees(ctx context.Context, records []EmployeeRecord) (*BatchInsertResult, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(records) > MaxBatchInsertSize {
		return nil, fmt.Errorf("%w: %d records", ErrBatchTooLarge, len(records))
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result := &BatchInsertResult{Errors: []BatchRowError{}}
	for i, rec := range records {
		emp, err := buildEmployee(rec, snap)
		if err != nil {
			result.Errors = append(result.Errors, BatchRowError{RowIndex: i, Message: err.Error()})
			continue
		}
		if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
			return s.employees.Insert(txCtx, emp)
		}); err != nil {
			result.Errors = append(result.Errors, BatchRowError{RowIndex: i, Message: err.Error()})
			continue
		}
		result.Inserted++
	}
	return result, nil
}

func buildEmployee(rec EmployeeRecord, snap Snapshot) (*employee.Employee, error) {
	if rec.ID == nil || rec.Name == nil || rec.Datetime == nil || rec.DepartmentID == nil || rec.JobID == nil {
		return nil, employee.ErrMissingFields
	}
	name := strings.TrimSpace(*rec.Name)
	if name == "" {
		return nil, employee.ErrMissingFields
	}
	hiredAt, ok := parseHiredAt(*rec.Datetime)
	if !ok {
		return nil, employee.ErrMissingFields
	}
	if _, ok := snap.DepartmentIDs[*rec.DepartmentID]; !ok {
		return nil, employee.ErrInvalidForeignKey
	}
	if _, ok := snap.JobIDs[*rec.JobID]; !ok {
		return nil, employee.ErrInvalidForeignKey
	}
	return &employee.Employee{
		ID:           *rec.ID,
		Name:         name,
		HiredAt:      hiredAt,
		DepartmentID: *rec.DepartmentID,
		JobID:        *rec.JobID,
	}, nil
}

// BatchInsertDepartments は部署レコードを挿入します。キー欠落などの不正なレコードは
// 黙ってスキップし、挿入できた件数だけを返します。
func (s *Service) BatchInsertDepartments(ctx context.Context, records []DepartmentRecord) (int, error) {
	inserted := 0
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		for _, rec := range records {
			if rec.ID == nil || rec.Name == nil {
				continue
			}
			name := strings.TrimSpace(*rec.Name)
			if name == "" {
				continue
			}
			exists, err := s.departments.Exists(txCtx, *rec.ID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := s.departments.Insert(txCtx, &department.Department{ID: *rec.ID, Name: name}); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// BatchInsertJobs は職種レコードを挿入します。挙動は BatchInsertDepartments と同じです。
func (s *Service) BatchInsertJobs(ctx context.Context, records []JobRecord) (int, error) {
	inserted := 0
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		for _, rec := range records {
			if rec.ID == nil || rec.Title == nil {
				continue
			}
			title := strings.TrimSpace(*rec.Title)
			if title == "" {
				continue
			}
			exists, err := s.jobs.Exists(txCtx, *rec.ID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := s.jobs.Insert(txCtx, &job.Job{ID: *rec.ID, Title: title}); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

var _ UseCase = (*Service)(nil)

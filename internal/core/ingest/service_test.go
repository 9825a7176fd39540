package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/hiring-ingest/internal/core/department"
	"github.com/ogurasousui/hiring-ingest/internal/core/employee"
	"github.com/ogurasousui/hiring-ingest/internal/core/job"
)

type fakeBlob struct {
	objects map[string]string
}

func (f *fakeBlob) Fetch(_ context.Context, name string) ([]byte, error) {
	data, ok := f.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, name)
	}
	return []byte(data), nil
}

type fakeDepartmentRepo struct {
	ids      map[int]struct{}
	inserted []*department.Department
	idsErr   error
}

func newFakeDepartmentRepo(ids ...int) *fakeDepartmentRepo {
	m := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return &fakeDepartmentRepo{ids: m}
}

func (f *fakeDepartmentRepo) Insert(_ context.Context, d *department.Department) error {
	f.ids[d.ID] = struct{}{}
	f.inserted = append(f.inserted, d)
	return nil
}

func (f *fakeDepartmentRepo) Exists(_ context.Context, id int) (bool, error) {
	_, ok := f.ids[id]
	return ok, nil
}

func (f *fakeDepartmentRepo) IDs(_ context.Context) (map[int]struct{}, error) {
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	return f.ids, nil
}

type fakeJobRepo struct {
	ids      map[int]struct{}
	inserted []*job.Job
}

func newFakeJobRepo(ids ...int) *fakeJobRepo {
	m := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return &fakeJobRepo{ids: m}
}

func (f *fakeJobRepo) Insert(_ context.Context, j *job.Job) error {
	f.ids[j.ID] = struct{}{}
	f.inserted = append(f.inserted, j)
	return nil
}

func (f *fakeJobRepo) Exists(_ context.Context, id int) (bool, error) {
	_, ok := f.ids[id]
	return ok, nil
}

func (f *fakeJobRepo) IDs(_ context.Context) (map[int]struct{}, error) {
	return f.ids, nil
}

type fakeEmployeeRepo struct {
	existing      map[int]struct{}
	inserted      []*employee.Employee
	batchCalls    int
	failBatchWith map[int]struct{}
	existsErrFor  map[int]struct{}
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{
		existing:      make(map[int]struct{}),
		failBatchWith: make(map[int]struct{}),
		existsErrFor:  make(map[int]struct{}),
	}
}

func (f *fakeEmployeeRepo) Insert(_ context.Context, e *employee.Employee) error {
	if _, ok := f.existing[e.ID]; ok {
		return employee.ErrAlreadyExists
	}
	f.existing[e.ID] = struct{}{}
	f.inserted = append(f.inserted, e)
	return nil
}

func (f *fakeEmployeeRepo) InsertBatch(_ context.Context, batch []*employee.Employee) error {
	f.batchCalls++
	for _, e := range batch {
		if _, ok := f.failBatchWith[e.ID]; ok {
			return employee.ErrInvalidForeignKey
		}
	}
	for _, e := range batch {
		f.existing[e.ID] = struct{}{}
		f.inserted = append(f.inserted, e)
	}
	return nil
}

func (f *fakeEmployeeRepo) Exists(_ context.Context, id int) (bool, error) {
	if _, ok := f.existsErrFor[id]; ok {
		return false, errors.New("store unavailable")
	}
	_, ok := f.existing[id]
	return ok, nil
}

type serviceFixture struct {
	svc   *Service
	blob  *fakeBlob
	depts *fakeDepartmentRepo
	jobs  *fakeJobRepo
	emps  *fakeEmployeeRepo
}

func newServiceFixture(objects map[string]string, opts Options) *serviceFixture {
	if opts.Logger == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		opts.Logger = logrus.NewEntry(silent)
	}
	f := &serviceFixture{
		blob:  &fakeBlob{objects: objects},
		depts: newFakeDepartmentRepo(1, 2),
		jobs:  newFakeJobRepo(1, 2),
		emps:  newFakeEmployeeRepo(),
	}
	f.svc = NewService(f.blob, f.depts, f.jobs, f.emps, nil, opts)
	return f
}

func TestLoadEmployees_PartialFailureAccounting(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{
		"hired_employees.csv": strings.Join([]string{
			"1,Alice,2021-04-01T10:00:00Z,1,1",
			"2,Bob,2021-05-01T10:00:00Z,99,1",
		}, "\n"),
	}, Options{})

	sum, err := f.svc.LoadEmployees(context.Background(), LoadEmployeesInput{Start: 0, Limit: 10})
	if err != nil {
		t.Fatalf("LoadEmployees returned error: %v", err)
	}

	if sum.Processed != 2 || sum.Inserted != 1 || sum.AlreadyExists != 0 || sum.Errors != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if len(sum.ErrorIDs) != 1 || sum.ErrorIDs[0] != 2 {
		t.Errorf("expected error_ids [2], got %v", sum.ErrorIDs)
	}
	if sum.Processed != sum.Inserted+sum.AlreadyExists+sum.Errors {
		t.Errorf("accounting identity violated: %+v", sum)
	}
	if len(f.emps.inserted) != 1 || f.emps.inserted[0].ID != 1 {
		t.Errorf("unexpected inserted employees: %+v", f.emps.inserted)
	}
}

func TestLoadEmployees_SkipExistingIsIdempotent(t *testing.T) {
	t.Parallel()

	objects := map[string]string{
		"hired_employees.csv": strings.Join([]string{
			"1,Alice,2021-04-01T10:00:00Z,1,1",
			"2,Bob,2021-05-01T10:00:00Z,2,2",
		}, "\n"),
	}
	f := newServiceFixture(objects, Options{})
	in := LoadEmployeesInput{Start: 0, Limit: 10, SkipExisting: true}

	first, err := f.svc.LoadEmployees(context.Background(), in)
	if err != nil {
		t.Fatalf("first pass returned error: %v", err)
	}
	if first.Inserted != 2 || first.AlreadyExists != 0 {
		t.Fatalf("unexpected first pass: %+v", first)
	}

	second, err := f.svc.LoadEmployees(context.Background(), in)
	if err != nil {
		t.Fatalf("second pass returned error: %v", err)
	}
	if second.Inserted != 0 || second.AlreadyExists != 2 || second.Errors != 0 {
		t.Errorf("expected second pass to skip everything, got %+v", second)
	}
}

func TestLoadEmployees_ErrorIDsOnlyForParsableIDs(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{
		"hired_employees.csv": strings.Join([]string{
			"abc,Alice,2021-04-01T10:00:00Z,1,1",
			"7,Bob,not-a-date,1,1",
		}, "\n"),
	}, Options{})

	sum, err := f.svc.LoadEmployees(context.Background(), LoadEmployeesInput{Limit: 10})
	if err != nil {
		t.Fatalf("LoadEmployees returned error: %v", err)
	}

	if sum.Errors != 2 {
		t.Errorf("expected 2 errors, got %+v", sum)
	}
	if len(sum.ErrorIDs) != 1 || sum.ErrorIDs[0] != 7 {
		t.Errorf("expected error_ids [7], got %v", sum.ErrorIDs)
	}
}

func TestLoadEmployees_EmptyPageSignalsNoMoreRecords(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{
		"hired_employees.csv": "1,Alice,2021-04-01T10:00:00Z,1,1",
	}, Options{})

	_, err := f.svc.LoadEmployees(context.Background(), LoadEmployeesInput{Start: 5, Limit: 10})
	if !errors.Is(err, ErrNoMoreRecords) {
		t.Fatalf("expected ErrNoMoreRecords, got %v", err)
	}
}

func TestLoadEmployees_PagingTermination(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{
		"hired_employees.csv": strings.Join([]string{
			"1,Alice,2021-04-01T10:00:00Z,1,1",
			"2,Bob,2021-05-01T10:00:00Z,1,1",
			"3,Carol,2021-06-01T10:00:00Z,1,1",
		}, "\n"),
	}, Options{})

	first, err := f.svc.LoadEmployees(context.Background(), LoadEmployeesInput{Start: 0, Limit: 2})
	if err != nil {
		t.Fatalf("first page returned error: %v", err)
	}
	if first.Processed != 2 {
		t.Errorf("expected full first page, got %+v", first)
	}

	second, err := f.svc.LoadEmployees(context.Background(), LoadEmployeesInput{Start: 2, Limit: 2})
	if err != nil {
		t.Fatalf("second page returned error: %v", err)
	}
	if second.Processed != 1 {
		t.Errorf("expected short final page, got %+v", second)
	}

	if _, err := f.svc.LoadEmployees(context.Background(), LoadEmployeesInput{Start: 4, Limit: 2}); !errors.Is(err, ErrNoMoreRecords) {
		t.Fatalf("expected ErrNoMoreRecords past the end, got %v", err)
	}
}

func TestLoadEmployees_FailedSubBatchCountsAllMembers(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{
		"hired_employees.csv": strings.Join([]string{
			"1,Alice,2021-04-01T10:00:00Z,1,1",
			"2,Bob,2021-05-01T10:00:00Z,1,1",
			"3,Carol,2021-06-01T10:00:00Z,1,1",
			"4,Dan,2021-07-01T10:00:00Z,1,1",
		}, "\n"),
	}, Options{SubBatchSize: 2})
	f.emps.failBatchWith[3] = struct{}{}

	sum, err := f.svc.LoadEmployees(context.Background(), LoadEmployeesInput{Limit: 10})
	if err != nil {
		t.Fatalf("LoadEmployees returned error: %v", err)
	}

	if sum.Inserted != 2 || sum.Errors != 2 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if len(sum.ErrorIDs) != 2 || sum.ErrorIDs[0] != 3 || sum.ErrorIDs[1] != 4 {
		t.Errorf("expected error_ids [3 4], got %v", sum.ErrorIDs)
	}
	if f.emps.batchCalls != 2 {
		t.Errorf("expected 2 sub-batch flushes, got %d", f.emps.batchCalls)
	}
}

func TestLoadEmployees_ExistsFailureCountsAsRowError(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{
		"hired_employees.csv": strings.Join([]string{
			"1,Alice,2021-04-01T10:00:00Z,1,1",
			"2,Bob,2021-05-01T10:00:00Z,1,1",
		}, "\n"),
	}, Options{})
	f.emps.existsErrFor[1] = struct{}{}

	sum, err := f.svc.LoadEmployees(context.Background(), LoadEmployeesInput{Limit: 10, SkipExisting: true})
	if err != nil {
		t.Fatalf("LoadEmployees returned error: %v", err)
	}

	if sum.Inserted != 1 || sum.Errors != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if len(sum.ErrorIDs) != 1 || sum.ErrorIDs[0] != 1 {
		t.Errorf("expected error_ids [1], got %v", sum.ErrorIDs)
	}
}

func TestLoadEmployees_SnapshotTakenOncePerPage(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{
		"hired_employees.csv": strings.Join([]string{
			"1,Alice,2021-04-01T10:00:00Z,5,1",
			"2,Bob,2021-05-01T10:00:00Z,5,1",
		}, "\n"),
	}, Options{})

	sum, err := f.svc.LoadEmployees(context.Background(), LoadEmployeesInput{Limit: 10})
	if err != nil {
		t.Fatalf("LoadEmployees returned error: %v", err)
	}
	if sum.Errors != 2 {
		t.Errorf("expected both rows rejected against the stale snapshot, got %+v", sum)
	}

	f.depts.ids[5] = struct{}{}

	sum, err = f.svc.LoadEmployees(context.Background(), LoadEmployeesInput{Limit: 10})
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}
	if sum.Inserted != 2 {
		t.Errorf("expected fresh snapshot to accept both rows, got %+v", sum)
	}
}

func TestLoadEmployees_BlobMissing(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{}, Options{})

	_, err := f.svc.LoadEmployees(context.Background(), LoadEmployeesInput{Limit: 10})
	if !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestLoadDepartments(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{
		"departments.csv": strings.Join([]string{
			"1,Supply Chain",
			"3,Engineering",
		}, "\n"),
	}, Options{})

	sum, err := f.svc.LoadDepartments(context.Background())
	if err != nil {
		t.Fatalf("LoadDepartments returned error: %v", err)
	}

	if sum.Processed != 2 || sum.Inserted != 1 || sum.AlreadyExists != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if len(f.depts.inserted) != 1 || f.depts.inserted[0].ID != 3 || f.depts.inserted[0].Name != "Engineering" {
		t.Errorf("unexpected inserted departments: %+v", f.depts.inserted)
	}
}

func TestLoadJobs(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{
		"jobs.csv": strings.Join([]string{
			"2,Recruiter",
			"4,Data Engineer",
		}, "\n"),
	}, Options{})

	sum, err := f.svc.LoadJobs(context.Background())
	if err != nil {
		t.Fatalf("LoadJobs returned error: %v", err)
	}

	if sum.Inserted != 1 || sum.AlreadyExists != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if len(f.jobs.inserted) != 1 || f.jobs.inserted[0].Title != "Data Engineer" {
		t.Errorf("unexpected inserted jobs: %+v", f.jobs.inserted)
	}
}

func TestSeedEmployees_DropsInvalidRows(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{
		"hired_employees.csv": strings.Join([]string{
			"1,Alice,2021-04-01T10:00:00Z,1,1",
			"2,,2021-05-01T10:00:00Z,1,1",
			"3,Carol,2021-06-01T10:00:00Z,1,1",
		}, "\n"),
	}, Options{})

	sum, err := f.svc.SeedEmployees(context.Background())
	if err != nil {
		t.Fatalf("SeedEmployees returned error: %v", err)
	}

	if sum.Processed != 3 || sum.Inserted != 2 || sum.Errors != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if f.emps.batchCalls != 1 {
		t.Errorf("expected a single batch insert, got %d", f.emps.batchCalls)
	}
}

func TestSeedEmployees_AbortsOnInsertFailure(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{
		"hired_employees.csv": "1,Alice,2021-04-01T10:00:00Z,1,1",
	}, Options{})
	f.emps.failBatchWith[1] = struct{}{}

	if _, err := f.svc.SeedEmployees(context.Background()); err == nil {
		t.Fatal("expected error when batch insert fails")
	}
	if len(f.emps.inserted) != 0 {
		t.Errorf("expected no partial inserts, got %+v", f.emps.inserted)
	}
}

func TestBatchInsertEmployees_SizeBounds(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{}, Options{})

	if _, err := f.svc.BatchInsertEmployees(context.Background(), nil); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}

	tooMany := make([]EmployeeRecord, MaxBatchInsertSize+1)
	if _, err := f.svc.BatchInsertEmployees(context.Background(), tooMany); !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestBatchInsertEmployees_AcceptsMaximumSize(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{}, Options{})

	records := make([]EmployeeRecord, MaxBatchInsertSize)
	for i := range records {
		id := i + 1
		name := "Employee"
		dt := "2021-04-01T10:00:00Z"
		dept, jobID := 1, 1
		records[i] = EmployeeRecord{ID: &id, Name: &name, Datetime: &dt, DepartmentID: &dept, JobID: &jobID}
	}

	result, err := f.svc.BatchInsertEmployees(context.Background(), records)
	if err != nil {
		t.Fatalf("BatchInsertEmployees returned error: %v", err)
	}
	if result.Inserted != MaxBatchInsertSize || len(result.Errors) != 0 {
		t.Errorf("unexpected result: inserted=%d errors=%d", result.Inserted, len(result.Errors))
	}
}

func TestBatchInsertEmployees_PerRecordErrors(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{}, Options{})

	id1, id2, id3 := 1, 2, 3
	name := "Alice"
	dt := "2021-04-01T10:00:00Z"
	dept, jobID := 1, 1
	badDept := 99

	records := []EmployeeRecord{
		{ID: &id1, Name: &name, Datetime: &dt, DepartmentID: &dept, JobID: &jobID},
		{ID: &id2, Name: &name, Datetime: &dt, DepartmentID: &badDept, JobID: &jobID},
		{ID: &id3, Name: nil, Datetime: &dt, DepartmentID: &dept, JobID: &jobID},
	}

	result, err := f.svc.BatchInsertEmployees(context.Background(), records)
	if err != nil {
		t.Fatalf("BatchInsertEmployees returned error: %v", err)
	}

	if result.Inserted != 1 {
		t.Errorf("expected 1 inserted, got %d", result.Inserted)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %+v", result.Errors)
	}
	if result.Errors[0].RowIndex != 1 || result.Errors[1].RowIndex != 2 {
		t.Errorf("unexpected row indexes: %+v", result.Errors)
	}
}

func TestBatchInsertDepartments_SkipsInvalidRecords(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{}, Options{})

	id3, id1 := 3, 1
	name := "Engineering"
	records := []DepartmentRecord{
		{ID: &id3, Name: &name},
		{ID: nil, Name: &name},
		{ID: &id1, Name: &name}, // already seeded
	}

	inserted, err := f.svc.BatchInsertDepartments(context.Background(), records)
	if err != nil {
		t.Fatalf("BatchInsertDepartments returned error: %v", err)
	}
	if inserted != 1 {
		t.Errorf("expected 1 inserted, got %d", inserted)
	}
}

func TestBatchInsertJobs_SkipsInvalidRecords(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(map[string]string{}, Options{})

	id5 := 5
	title := "Analyst"
	empty := "  "
	records := []JobRecord{
		{ID: &id5, Title: &title},
		{ID: &id5, Title: &empty},
	}

	inserted, err := f.svc.BatchInsertJobs(context.Background(), records)
	if err != nil {
		t.Fatalf("BatchInsertJobs returned error: %v", err)
	}
	if inserted != 1 {
		t.Errorf("expected 1 inserted, got %d", inserted)
	}
}

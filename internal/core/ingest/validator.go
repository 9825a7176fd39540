package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/hiring-ingest/internal/core/employee"
)

// Snapshot はページ開始時点で有効だった部署・職種 ID の集合です。
// ページ内の全行に対して同じ値を使い回します。ページ実行中の挿入は反映されません。
type Snapshot struct {
	DepartmentIDs map[int]struct{}
	JobIDs        map[int]struct{}
}

// RowKind は行検証の分類結果です。
type RowKind int

const (
	// RowValid は構築済み Employee を伴う有効行です。
	RowValid RowKind = iota
	// RowMissingFields は必須フィールドの欠落(数値・日時の解釈失敗を含む)です。
	RowMissingFields
	// RowInvalidForeignKey は department_id または job_id がスナップショットに存在しない行です。
	RowInvalidForeignKey
)

// RowResult は 1 行の検証結果です。ID はテキストとして解釈できた場合のみ有効です。
type RowResult struct {
	Kind     RowKind
	Employee *employee.Employee
	ID       int
	IDParsed bool
}

// 日時は ISO-8601 テキストで与えられます。末尾の Z は UTC オフセットとして扱います。
var hiredAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseHiredAt(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range hiredAtLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseIntField(raw string) (int, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ValidateEmployeeRow は 1 行を検証し、ちょうど 1 つの分類に割り当てます。
// 純粋関数であり、ストアへの問い合わせは行いません。
func ValidateEmployeeRow(row employeeRow, snap Snapshot) RowResult {
	res := RowResult{}
	if id, ok := parseIntField(row.ID); ok {
		res.ID = id
		res.IDParsed = true
	}

	name := strings.TrimSpace(row.Name)
	hiredAt, hiredOK := parseHiredAt(row.HiredAt)
	deptID, deptOK := parseIntField(row.DepartmentID)
	jobID, jobOK := parseIntField(row.JobID)

	if !res.IDParsed || name == "" || !hiredOK || !deptOK || !jobOK {
		res.Kind = RowMissingFields
		return res
	}

	if _, ok := snap.DepartmentIDs[deptID]; !ok {
		res.Kind = RowInvalidForeignKey
		return res
	}
	if _, ok := snap.JobIDs[jobID]; !ok {
		res.Kind = RowInvalidForeignKey
		return res
	}

	res.Kind = RowValid
	res.Employee = &employee.Employee{
		ID:           res.ID,
		Name:         name,
		HiredAt:      hiredAt,
		DepartmentID: deptID,
		JobID:        jobID,
	}
	return res
}

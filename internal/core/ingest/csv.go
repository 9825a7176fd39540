package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// ソースデータにはヘッダ行が存在せず、列は位置で対応付けます。
const (
	departmentColumns = 2 // id, name
	jobColumns        = 2 // id, title
	employeeColumns   = 5 // id, name, datetime, department_id, job_id
)

// departmentRow は departments.csv の 1 行を未解釈のテキストとして保持します。
type departmentRow struct {
	ID   string
	Name string
}

// jobRow は jobs.csv の 1 行を未解釈のテキストとして保持します。
type jobRow struct {
	ID    string
	Title string
}

// employeeRow は hired_employees.csv の 1 行を未解釈のテキストとして保持します。
type employeeRow struct {
	ID           string
	Name         string
	HiredAt      string
	DepartmentID string
	JobID        string
}

func newCSVReader(data []byte, columns int) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = columns
	r.TrimLeadingSpace = true
	return r
}

func decodeDepartmentRows(data []byte) ([]departmentRow, error) {
	r := newCSVReader(data, departmentColumns)
	var rows []departmentRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: departments: %v", ErrDecode, err)
		}
		rows = append(rows, departmentRow{ID: record[0], Name: record[1]})
	}
}

func decodeJobRows(data []byte) ([]jobRow, error) {
	r := newCSVReader(data, jobColumns)
	var rows []jobRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: jobs: %v", ErrDecode, err)
		}
		rows = append(rows, jobRow{ID: record[0], Title: record[1]})
	}
}

func decodeEmployeeRows(data []byte) ([]employeeRow, error) {
	r := newCSVReader(data, employeeColumns)
	var rows []employeeRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: hired_employees: %v", ErrDecode, err)
		}
		rows = append(rows, employeeRow{
			ID:           record[0],
			Name:         record[1],
			HiredAt:      record[2],
			DepartmentID: record[3],
			JobID:        record[4],
		})
	}
}

// windowEmployeeRows は行列から [start, start+limit) のスライスを返します。
// ヘッダ行が無いため、スキップは純粋に行数ベースです。
func windowEmployeeRows(rows []employeeRow, start, limit int) []employeeRow {
	if start < 0 {
		start = 0
	}
	if start >= len(rows) {
		return nil
	}
	end := start + limit
	if limit <= 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ogurasousui/hiring-ingest/internal/core/ingest"
)

type employeeBatchItem struct {
	ID           *int    `json:"id"`
	Name         *string `json:"name"`
	Datetime     *string `json:"datetime"`
	DepartmentID *int    `json:"department_id"`
	JobID        *int    `json:"job_id"`
}

type departmentBatchItem struct {
	ID   *int    `json:"id"`
	Name *string `json:"department"`
}

type jobBatchItem struct {
	ID    *int    `json:"id"`
	Title *string `json:"job"`
}

// UploadBatch は最大 1000 件の従業員レコードを検証して挿入します。
func (h *Handler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	var items []employeeBatchItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON array of employee records")
		return
	}

	records := make([]ingest.EmployeeRecord, 0, len(items))
	for _, item := range items {
		records = append(records, ingest.EmployeeRecord{
			ID:           item.ID,
			Name:         item.Name,
			Datetime:     item.Datetime,
			DepartmentID: item.DepartmentID,
			JobID:        item.JobID,
		})
	}

	result, err := h.ingest.BatchInsertEmployees(r.Context(), records)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyBatch) || errors.Is(err, ingest.ErrBatchTooLarge) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// InsertDepartments は部署レコードを挿入します。不正なレコードは黙ってスキップします。
func (h *Handler) InsertDepartments(w http.ResponseWriter, r *http.Request) {
	var items []departmentBatchItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON array of department records")
		return
	}

	records := make([]ingest.DepartmentRecord, 0, len(items))
	for _, item := range items {
		records = append(records, ingest.DepartmentRecord{ID: item.ID, Name: item.Name})
	}

	inserted, err := h.ingest.BatchInsertDepartments(r.Context(), records)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"inserted": inserted})
}

// InsertJobs は職種レコードを挿入します。不正なレコードは黙ってスキップします。
func (h *Handler) InsertJobs(w http.ResponseWriter, r *http.Request) {
	var items []jobBatchItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON array of job records")
		return
	}

	records := make([]ingest.JobRecord, 0, len(items))
	for _, item := range items {
		records = append(records, ingest.JobRecord{ID: item.ID, Title: item.Title})
	}

	inserted, err := h.ingest.BatchInsertJobs(r.Context(), records)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"inserted": inserted})
}

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ogurasousui/hiring-ingest/internal/core/ingest"
)

// uploadFilesResponse はソースごとの結果をまとめた複合レスポンスです。
// 失敗したソースはサマリの代わりに {"error": message} を持ちます。
type uploadFilesResponse struct {
	Departments    any   `json:"departments"`
	Jobs           any   `json:"jobs"`
	HiredEmployees []any `json:"hired_employees"`
}

func errorMarker(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

// UploadFiles は 3 ソースを順に取り込みます。各ソースは独立に保護され、
// 従業員はページングループで全ページを処理します。
func (h *Handler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := uploadFilesResponse{HiredEmployees: []any{}}

	if sum, err := h.ingest.LoadDepartments(ctx); err != nil {
		resp.Departments = errorMarker(err)
	} else {
		resp.Departments = sum
	}

	if sum, err := h.ingest.LoadJobs(ctx); err != nil {
		resp.Jobs = errorMarker(err)
	} else {
		resp.Jobs = sum
	}

	// processed < limit が短い最終ページの合図です。エラーはマーカーとして
	// 収集済みの結果に追記し、ループを止めます。
	start := 0
	limit := ingest.DefaultPageLimit
	for {
		sum, err := h.ingest.LoadEmployees(ctx, ingest.LoadEmployeesInput{
			Start:        start,
			Limit:        limit,
			SkipExisting: true,
		})
		if err != nil {
			resp.HiredEmployees = append(resp.HiredEmployees, errorMarker(err))
			break
		}
		resp.HiredEmployees = append(resp.HiredEmployees, sum)
		if sum.Processed < limit {
			break
		}
		start += limit
	}

	writeJSON(w, http.StatusOK, resp)
}

func pageParams(r *http.Request) (start, limit int, err error) {
	start = 0
	limit = ingest.DefaultPageLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("start")); raw != "" {
		start, err = strconv.Atoi(raw)
		if err != nil || start < 0 {
			return 0, 0, errors.New("start must be a non-negative integer")
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
	}
	return start, limit, nil
}

// UploadEmployeesPage は従業員ソースの 1 ページだけを取り込みます。
func (h *Handler) UploadEmployeesPage(w http.ResponseWriter, r *http.Request) {
	start, limit, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sum, err := h.ingest.LoadEmployees(r.Context(), ingest.LoadEmployeesInput{
		Start:        start,
		Limit:        limit,
		SkipExisting: true,
	})
	if err != nil {
		if errors.Is(err, ingest.ErrNoMoreRecords) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// SeedEmployees は初期投入向けの非冪等モードです。
func (h *Handler) SeedEmployees(w http.ResponseWriter, r *http.Request) {
	sum, err := h.ingest.SeedEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

package handler

import (
	"net/http"
)

type hiredByQuarterItem struct {
	Department string `json:"department"`
	Job        string `json:"job"`
	Q1         int    `json:"Q1"`
	Q2         int    `json:"Q2"`
	Q3         int    `json:"Q3"`
	Q4         int    `json:"Q4"`
}

type aboveAverageItem struct {
	ID         int    `json:"id"`
	Department string `json:"department"`
	Hired      int    `json:"hired"`
}

// HiredByQuarter は部署・職種ごとの四半期別採用数レポートを返します。
func (h *Handler) HiredByQuarter(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.HiredByQuarter(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]hiredByQuarterItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, hiredByQuarterItem{
			Department: row.Department,
			Job:        row.Job,
			Q1:         row.Q1,
			Q2:         row.Q2,
			Q3:         row.Q3,
			Q4:         row.Q4,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

// HiringAboveAverage は部署平均超過レポートを返します。
func (h *Handler) HiringAboveAverage(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.HiringAboveAverage(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]aboveAverageItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, aboveAverageItem{
			ID:         row.DepartmentID,
			Department: row.Department,
			Hired:      row.Hired,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ogurasousui/hiring-ingest/internal/adapters/queue"
)

// EnqueueEmployeesPage は 1 ページ分の取り込みをキューに積み、タスク ID を返します。
func (h *Handler) EnqueueEmployeesPage(w http.ResponseWriter, r *http.Request) {
	start, limit, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	taskID, err := h.broker.Enqueue(r.Context(), start, limit, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id": taskID,
		"status":  "accepted",
	})
}

// TaskState はタスク ID で実行状態と結果を返します。
func (h *Handler) TaskState(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["task_id"]

	state, err := h.broker.State(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, queue.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Health は非同期キューのバッキングストアへの疎通を返します。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.broker.Health(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

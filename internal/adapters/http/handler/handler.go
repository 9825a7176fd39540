package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/hiring-ingest/internal/adapters/queue"
	"github.com/ogurasousui/hiring-ingest/internal/core/ingest"
	"github.com/ogurasousui/hiring-ingest/internal/core/report"
)

// TaskBroker は非同期トリガーが利用するキュー操作の抽象です。
type TaskBroker interface {
	Enqueue(ctx context.Context, start, limit int, skipExisting bool) (string, error)
	State(ctx context.Context, id string) (*queue.TaskState, error)
	Health(ctx context.Context) error
}

// Handler は HTTP エンドポイントの薄い実装です。業務ロジックはユースケース層に委譲します。
type Handler struct {
	ingest  ingest.UseCase
	reports report.UseCase
	broker  TaskBroker
	log     *logrus.Entry
}

// New は Handler を生成します。
func New(ingestSvc ingest.UseCase, reportSvc report.UseCase, broker TaskBroker, log *logrus.Entry) *Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{ingest: ingestSvc, reports: reportSvc, broker: broker, log: log}
}

// Router は全エンドポイントを登録した mux.Router を返します。
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/upload-files", h.UploadFiles).Methods(http.MethodPost)
	r.HandleFunc("/upload-hired-employees", h.UploadEmployeesPage).Methods(http.MethodPost)
	r.HandleFunc("/upload-hired-employees/async", h.EnqueueEmployeesPage).Methods(http.MethodPost)
	r.HandleFunc("/seed-hired-employees", h.SeedEmployees).Methods(http.MethodPost)
	r.HandleFunc("/upload-batch", h.UploadBatch).Methods(http.MethodPost)
	r.HandleFunc("/departments", h.InsertDepartments).Methods(http.MethodPost)
	r.HandleFunc("/jobs", h.InsertJobs).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{task_id}", h.TaskState).Methods(http.MethodGet)
	r.HandleFunc("/report/hired-by-quarter", h.HiredByQuarter).Methods(http.MethodGet)
	r.HandleFunc("/report/hiring-above-average", h.HiringAboveAverage).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	return r
}

package queue

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/hiring-ingest/internal/core/ingest"
)

const defaultPollTimeout = 5 * time.Second

// taskSource は Worker が消費するキュー操作の抽象です。
type taskSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*Task, error)
	MarkRunning(ctx context.Context, id string) error
	MarkSucceeded(ctx context.Context, id string, sum *ingest.Summary) error
	MarkFailed(ctx context.Context, id, message string) error
}

// Worker はキューからページ取り込みタスクを取り出して実行します。
type Worker struct {
	source      taskSource
	svc         ingest.UseCase
	pollTimeout time.Duration
	log         *logrus.Entry
}

// NewWorker は Worker を生成します。
func NewWorker(source taskSource, svc ingest.UseCase, log *logrus.Entry) *Worker {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Worker{source: source, svc: svc, pollTimeout: defaultPollTimeout, log: log}
}

// Run はコンテキストがキャンセルされるまでタスクを処理し続けます。
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		task, err := w.source.Dequeue(ctx, w.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.WithError(err).Warn("dequeue failed")
			continue
		}
		if task == nil {
			continue
		}

		w.process(ctx, task)
	}
}

func (w *Worker) process(ctx context.Context, task *Task) {
	log := w.log.WithField("task_id", task.ID)
	if err := w.source.MarkRunning(ctx, task.ID); err != nil {
		log.WithError(err).Warn("mark running failed")
	}

	sum, err := w.svc.LoadEmployees(ctx, ingest.LoadEmployeesInput{
		Start:        task.Start,
		Limit:        task.Limit,
		SkipExisting: task.SkipExisting,
	})
	if err != nil {
		// ErrNoMoreRecords も失敗として記録します。呼び出し側はメッセージで区別できます。
		if markErr := w.source.MarkFailed(ctx, task.ID, err.Error()); markErr != nil {
			log.WithError(markErr).Warn("mark failed failed")
		}
		if !errors.Is(err, ingest.ErrNoMoreRecords) {
			log.WithError(err).Warn("task failed")
		}
		return
	}

	if err := w.source.MarkSucceeded(ctx, task.ID, sum); err != nil {
		log.WithError(err).Warn("mark succeeded failed")
		return
	}
	log.WithFields(logrus.Fields{"inserted": sum.Inserted, "errors": sum.Errors}).Info("task completed")
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/hiring-ingest/internal/core/ingest"
)

// Status はタスクの状態です。
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// ErrTaskNotFound は指定されたタスク ID の状態が存在しないことを示します。
var ErrTaskNotFound = errors.New("queue: task not found")

// Task はキューに積まれる 1 回分のページ取り込み指示です。
type Task struct {
	ID           string `json:"id"`
	Start        int    `json:"start"`
	Limit        int    `json:"limit"`
	SkipExisting bool   `json:"skip_existing"`
}

// TaskState はタスク ID で参照できる実行状態と結果です。
type TaskState struct {
	TaskID  string          `json:"task_id"`
	Status  Status          `json:"status"`
	Result  *ingest.Summary `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
}

// RedisQueue は redis をバッキングストアとするタスクキュー兼結果ストアです。
// 配送は at-least-once であり、ページ取り込みが skip_existing=true で冪等である
// ことに安全性を依存します。
type RedisQueue struct {
	client    *redis.Client
	prefix    string
	resultTTL time.Duration
	log       *logrus.Entry
}

// NewRedisQueue は RedisQueue を生成します。
func NewRedisQueue(client *redis.Client, prefix string, resultTTL time.Duration, log *logrus.Entry) *RedisQueue {
	if prefix == "" {
		prefix = "hiring-ingest"
	}
	if resultTTL <= 0 {
		resultTTL = 24 * time.Hour
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RedisQueue{client: client, prefix: prefix, resultTTL: resultTTL, log: log}
}

func (q *RedisQueue) queueKey() string {
	return q.prefix + ":tasks"
}

func (q *RedisQueue) stateKey(id string) string {
	return q.prefix + ":task:" + id
}

// Enqueue はページ取り込みタスクを積み、採番したタスク ID を返します。
func (q *RedisQueue) Enqueue(ctx context.Context, start, limit int, skipExisting bool) (string, error) {
	task := Task{ID: uuid.NewString(), Start: start, Limit: limit, SkipExisting: skipExisting}
	payload, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("queue: marshal task: %w", err)
	}

	if err := q.setState(ctx, &TaskState{TaskID: task.ID, Status: StatusPending}); err != nil {
		return "", err
	}
	if err := q.client.LPush(ctx, q.queueKey(), payload).Err(); err != nil {
		return "", fmt.Errorf("queue: enqueue: %w", err)
	}

	q.log.WithFields(logrus.Fields{"task_id": task.ID, "start": start, "limit": limit}).
		Info("task enqueued")
	return task.ID, nil
}

// Dequeue はタスクを 1 件取り出します。timeout の間タスクが無ければ nil を返します。
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	res, err := q.client.BRPop(ctx, timeout, q.queueKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("queue: dequeue: %w", err)
	}
	// BRPop はキー名と値のペアを返します。
	if len(res) != 2 {
		return nil, fmt.Errorf("queue: unexpected brpop reply: %v", res)
	}

	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, fmt.Errorf("queue: unmarshal task: %w", err)
	}
	return &task, nil
}

// MarkRunning はタスクを実行中に遷移させます。
func (q *RedisQueue) MarkRunning(ctx context.Context, id string) error {
	return q.setState(ctx, &TaskState{TaskID: id, Status: StatusRunning})
}

// MarkSucceeded は実行結果を保存します。
func (q *RedisQueue) MarkSucceeded(ctx context.Context, id string, sum *ingest.Summary) error {
	return q.setState(ctx, &TaskState{TaskID: id, Status: StatusSucceeded, Result: sum})
}

// MarkFailed は失敗メッセージを保存します。
func (q *RedisQueue) MarkFailed(ctx context.Context, id, message string) error {
	return q.setState(ctx, &TaskState{TaskID: id, Status: StatusFailed, Message: message})
}

func (q *RedisQueue) setState(ctx context.Context, state *TaskState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("queue: marshal state: %w", err)
	}
	if err := q.client.Set(ctx, q.stateKey(state.TaskID), payload, q.resultTTL).Err(); err != nil {
		return fmt.Errorf("queue: set state: %w", err)
	}
	return nil
}

// State はタスクの現在の状態を返します。
func (q *RedisQueue) State(ctx context.Context, id string) (*TaskState, error) {
	payload, err := q.client.Get(ctx, q.stateKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("queue: get state: %w", err)
	}

	var state TaskState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("queue: unmarshal state: %w", err)
	}
	return &state, nil
}

// Health はバッキングストアへの疎通を確認します。
func (q *RedisQueue) Health(ctx context.Context) error {
	if err := q.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("queue: ping: %w", err)
	}
	return nil
}

package job

import "context"

// Repository は職種永続化の抽象です。
type Repository interface {
	Insert(ctx context.Context, j *Job) error
	Exists(ctx context.Context, id int) (bool, error)
	// IDs は登録済みの職種 ID 集合を返します。外部キー検証のスナップショットに利用します。
	IDs(ctx context.Context) (map[int]struct{}, error)
}

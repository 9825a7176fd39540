package employee

import "context"

// Repository は従業員永続化の抽象です。
type Repository interface {
	Insert(ctx context.Context, e *Employee) error
	// InsertBatch はサブバッチを一括挿入します。トランザクション境界は呼び出し側が制御します。
	InsertBatch(ctx context.Context, batch []*Employee) error
	Exists(ctx context.Context, id int) (bool, error)
}

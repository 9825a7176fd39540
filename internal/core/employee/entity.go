package employee

import "time"

// Employee は採用済み従業員エンティティです。ID は外部システムで採番され、
// 取り込みパイプライン経由でのみ作成されます(更新・削除の経路はありません)。
type Employee struct {
	ID           int
	Name         string
	HiredAt      time.Time
	DepartmentID int
	JobID        int
}

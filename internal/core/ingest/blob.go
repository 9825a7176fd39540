package ingest

import "context"

// BlobSource は名前付き blob を取得する機能の抽象です。部分取得は行わず、
// 常にオブジェクト全体を読み込みます。存在しない名前には ErrBlobNotFound を返します。
type BlobSource interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// SourceFiles は取り込み対象となる 3 つの論理ファイル名です。
type SourceFiles struct {
	Departments string
	Jobs        string
	Employees   string
}

// DefaultSourceFiles は元データ側の既定のファイル名を返します。
func DefaultSourceFiles() SourceFiles {
	return SourceFiles{
		Departments: "departments.csv",
		Jobs:        "jobs.csv",
		Employees:   "hired_employees.csv",
	}
}

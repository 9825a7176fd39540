package ingest

import "errors"

var (
	// ErrNoMoreRecords は指定ページに行が存在しないことを示します。
	// ページングループの終了シグナルであり、利用者向けの失敗ではありません。
	ErrNoMoreRecords = errors.New("ingest: no more records to process")

	// ErrBlobNotFound は指定された名前の blob が存在しないことを示します。
	ErrBlobNotFound = errors.New("ingest: blob not found")

	// ErrDecode は CSV ソースが不正な形式であることを示します。
	ErrDecode = errors.New("ingest: malformed csv source")

	ErrEmptyBatch    = errors.New("ingest: batch is empty")
	ErrBatchTooLarge = errors.New("ingest: batch exceeds maximum size")
)

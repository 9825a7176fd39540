package ingest

// Summary は 1 回の取り込み実行の結果集計です。永続化されず、呼び出し元へ
// そのまま JSON として返されます。
type Summary struct {
	Processed     int   `json:"processed"`
	Inserted      int   `json:"inserted"`
	AlreadyExists int   `json:"already_exists"`
	Errors        int   `json:"errors"`
	ErrorIDs      []int `json:"error_ids"`
}

func newSummary(processed int) *Summary {
	return &Summary{Processed: processed, ErrorIDs: []int{}}
}

// BatchRowError はバッチ挿入で失敗した 1 レコードの位置とメッセージです。
type BatchRowError struct {
	RowIndex int    `json:"row_index"`
	Message  string `json:"error_message"`
}

// BatchInsertResult はバッチ挿入エンドポイント向けの結果です。
type BatchInsertResult struct {
	Inserted int             `json:"inserted"`
	Errors   []BatchRowError `json:"errors"`
}

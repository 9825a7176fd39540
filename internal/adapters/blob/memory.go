package blob

import (
	"context"
	"fmt"

	"github.com/ogurasousui/hiring-ingest/internal/core/ingest"
)

// MemorySource はメモリ上の blob 実装です。テストとローカル検証に利用します。
type MemorySource struct {
	objects map[string][]byte
}

// NewMemorySource は MemorySource を生成します。
func NewMemorySource(objects map[string][]byte) *MemorySource {
	if objects == nil {
		objects = make(map[string][]byte)
	}
	return &MemorySource{objects: objects}
}

// Put は名前付き blob を登録します。
func (s *MemorySource) Put(name string, data []byte) {
	s.objects[name] = data
}

// Fetch は登録済み blob を返します。未登録の名前には ErrBlobNotFound を返します。
func (s *MemorySource) Fetch(_ context.Context, name string) ([]byte, error) {
	data, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ingest.ErrBlobNotFound, name)
	}
	return data, nil
}

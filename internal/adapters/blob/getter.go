package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"

	"github.com/ogurasousui/hiring-ingest/internal/core/ingest"
)

// GetterSource は hashicorp/go-getter を用いて名前付き blob を取得します。
// base には go-getter が解決できる URL(file://, http(s)://, s3:// など)を指定し、
// 論理名は base 配下のオブジェクト名として解決されます。部分取得は行いません。
type GetterSource struct {
	base string
}

// NewGetterSource は GetterSource を生成します。
func NewGetterSource(base string) *GetterSource {
	return &GetterSource{base: strings.TrimRight(base, "/")}
}

// Fetch は base/name のオブジェクト全体をメモリへ読み込みます。
func (s *GetterSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "hiring-blob-*")
	if err != nil {
		return nil, fmt.Errorf("blob: temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	dst := filepath.Join(tmpDir, filepath.Base(name))
	client := &getter.Client{
		Ctx:  ctx,
		Src:  s.base + "/" + name,
		Dst:  dst,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ingest.ErrBlobNotFound, name)
		}
		return nil, fmt.Errorf("blob: fetch %s: %w", name, err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		return nil, fmt.Errorf("blob: read %s: %w", name, err)
	}
	return data, nil
}

func isNotFound(err error) bool {
	if errors.Is(err, os.ErrNotExist) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "no such file") || strings.Contains(msg, "404")
}

package report

import "context"

// DefaultYear はレポート対象の既定の年です。
const DefaultYear = 2021

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// UseCase はレポートユースケースの公開インターフェースです。
type UseCase interface {
	HiredByQuarter(ctx context.Context) ([]HiredByQuarterRow, error)
	HiringAboveAverage(ctx context.Context) ([]AboveAverageRow, error)
}

// Service は固定年の集計レポートを提供します。
type Service struct {
	repo Repository
	tx   TransactionManager
	year int
}

// NewService は Service を生成します。year が 0 以下の場合は DefaultYear を使います。
func NewService(repo Repository, tx TransactionManager, year int) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if year <= 0 {
		year = DefaultYear
	}
	return &Service{repo: repo, tx: tx, year: year}
}

// HiredByQuarter は四半期別採用レポートを返します。
func (s *Service) HiredByQuarter(ctx context.Context) ([]HiredByQuarterRow, error) {
	var rows []HiredByQuarterRow
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.HiredByQuarter(txCtx, s.year)
		if err != nil {
			return err
		}
		rows = result
		return nil
	}); err != nil {
		return nil, err
	}
	return rows, nil
}

// HiringAboveAverage は部署平均超過レポートを返します。
func (s *Service) HiringAboveAverage(ctx context.Context) ([]AboveAverageRow, error) {
	var rows []AboveAverageRow
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.HiringAboveAverage(txCtx, s.year)
		if err != nil {
			return err
		}
		rows = result
		return nil
	}); err != nil {
		return nil, err
	}
	return rows, nil
}

var _ UseCase = (*Service)(nil)

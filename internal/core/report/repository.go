package report

import "context"

// Repository は集計レポートの読み取り専用の抽象です。
type Repository interface {
	// HiredByQuarter は指定年の採用を部署・職種で集計し、四半期別の件数を返します。
	// 並び順は部署名、職種名の昇順です。
	HiredByQuarter(ctx context.Context, year int) ([]HiredByQuarterRow, error)
	// HiringAboveAverage は指定年の採用数が部署平均を上回る部署を、採用数の降順で返します。
	HiringAboveAverage(ctx context.Context, year int) ([]AboveAverageRow, error)
}

package report

// HiredByQuarterRow は部署×職種ごとの四半期別採用数です。
type HiredByQuarterRow struct {
	Department string
	Job        string
	Q1         int
	Q2         int
	Q3         int
	Q4         int
}

// AboveAverageRow は部署平均を上回る採用数を持つ部署の 1 行です。
type AboveAverageRow struct {
	DepartmentID int
	Department   string
	Hired        int
}

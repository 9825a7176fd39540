package department

// Department は部署エンティティです。ID は外部システムで採番されます。
type Department struct {
	ID   int
	Name string
}

package job

// Job は職種エンティティです。ID は外部システムで採番されます。
type Job struct {
	ID    int
	Title string
}

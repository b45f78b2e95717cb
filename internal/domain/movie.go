package domain

// Movie 是电影库中的一条记录。
//
// 约束：
// - 载入后只读（Store 不提供任何修改方法）
// - Actors 保持声明顺序（用于 "who acted in" 的输出顺序）
type Movie struct {
	Title    string   `json:"title"`
	Year     int      `json:"year"`
	Director string   `json:"director"`
	Actors   []string `json:"actors"`
}

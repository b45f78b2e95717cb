// Package catalog 定义问答所依赖的电影数据源接口，并提供内存实现 Store。
package catalog

import "context"

// Catalog 把“数据从哪来”限制在实现内部；chat 的 action 只依赖这组查询。
//
// 约束：
// - 返回的切片按数据源的自然顺序排列（Store 为声明顺序）
// - 查不到结果返回空切片 + nil error；error 只表示数据源本身不可用
// - 名称比较一律大小写不敏感
type Catalog interface {
	Name() string

	// TitlesByYear 返回 from <= year <= to 的电影标题（闭区间）。
	TitlesByYear(ctx context.Context, from, to int) ([]string, error)
	TitlesByDirector(ctx context.Context, director string) ([]string, error)
	// TitlesByActor 返回演员表中包含 actor 的电影标题。
	TitlesByActor(ctx context.Context, actor string) ([]string, error)

	DirectorsOf(ctx context.Context, title string) ([]string, error)
	ActorsIn(ctx context.Context, title string) ([]string, error)
	YearsOf(ctx context.Context, title string) ([]int, error)
}

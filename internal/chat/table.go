package chat

import "github.com/John-Robertt/moviechat/internal/match"

// PatternAction 把一个 query 模板绑定到对应的 Action。
type PatternAction struct {
	Pattern match.Pattern
	Action  Action
}

// Table 是有序的 pattern/action 列表；顺序即匹配优先级（先匹配先赢）。
type Table []PatternAction

// NewTable 复制 entries 构造 Table（调用方之后修改切片不影响 Table）。
func NewTable(entries ...PatternAction) Table {
	return Table(append([]PatternAction(nil), entries...))
}

// Entry 用模板字符串构造一条 PatternAction。
func Entry(pattern string, a Action) PatternAction {
	return PatternAction{Pattern: match.ParsePattern(pattern), Action: a}
}

// Find 按声明顺序返回第一条匹配的条目及其 Binding。
func (t Table) Find(tokens []string) (PatternAction, match.Binding, bool) {
	for _, pa := range t {
		if b, ok := match.Match(pa.Pattern, tokens); ok {
			return pa, b, true
		}
	}
	return PatternAction{}, nil, false
}

// DefaultTable 返回内置的电影问答模板。
func DefaultTable() Table {
	return NewTable(
		Entry("what movies were made in _", TitleByYear),
		Entry("what movies were made between _ and _", TitleByYearRange),
		Entry("what movies were made before _", TitleBeforeYear),
		Entry("what movies were made after _", TitleAfterYear),
		Entry("who directed %", DirectorByTitle),
		Entry("who was the director of %", DirectorByTitle),
		Entry("what movies were directed by %", TitleByDirector),
		Entry("who acted in %", ActorsByTitle),
		Entry("when was % made", YearByTitle),
		Entry("in what movies did % appear", TitleByActor),
	)
}

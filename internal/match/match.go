// Package match 实现 query 模板的 token 级匹配。
//
// 模板由三类 token 组成：
//   - 普通字面量：必须与输入 token 完全相同
//   - "_"：恰好匹配一个 token
//   - "%"：匹配一个或多个 token（最短优先，失败时回溯）
//
// 匹配失败是正常结果（ok=false），不是错误。
package match

import "strings"

const (
	// One 匹配恰好一个 token。
	One = "_"
	// Many 匹配一个或多个 token。
	Many = "%"
)

// Pattern 是已切分好的模板 token 序列。
type Pattern []string

// ParsePattern 把 "what movies were made in _" 这样的模板切分为 Pattern。
func ParsePattern(s string) Pattern {
	return Pattern(strings.Fields(s))
}

func (p Pattern) String() string { return strings.Join(p, " ") }

// Wildcards 返回模板中通配符的个数（即成功匹配后 Binding 的长度）。
func (p Pattern) Wildcards() int {
	n := 0
	for _, t := range p {
		if t == One || t == Many {
			n++
		}
	}
	return n
}

// Binding 是一次成功匹配捕获到的 token 分组，按通配符在模板中的出现顺序排列。
type Binding [][]string

// Text 返回第 i 个捕获分组（以空格连接）；越界返回空串。
func (b Binding) Text(i int) string {
	if i < 0 || i >= len(b) {
		return ""
	}
	return strings.Join(b[i], " ")
}

// Tokenize 把原始输入规范化为 token 序列：去掉 '?'、转小写、按空白切分。
func Tokenize(s string) []string {
	s = strings.ReplaceAll(s, "?", "")
	return strings.Fields(strings.ToLower(s))
}

// Match 尝试用 p 匹配 tokens。
// 成功时返回按通配符顺序排列的 Binding（无通配符的模板返回空 Binding）。
func Match(p Pattern, tokens []string) (Binding, bool) {
	b := make(Binding, 0, p.Wildcards())
	return match(p, tokens, b)
}

func match(p Pattern, src []string, acc Binding) (Binding, bool) {
	if len(p) == 0 {
		if len(src) == 0 {
			return acc, true
		}
		return nil, false
	}
	if len(src) == 0 {
		return nil, false
	}

	switch p[0] {
	case One:
		return match(p[1:], src[1:], appendGroup(acc, src[:1]))
	case Many:
		// 剩余模板里每个 token 至少要消费一个输入 token，据此限定 % 的最大长度。
		max := len(src) - len(p[1:])
		for n := 1; n <= max; n++ {
			if b, ok := match(p[1:], src[n:], appendGroup(acc, src[:n])); ok {
				return b, true
			}
		}
		return nil, false
	default:
		if p[0] != src[0] {
			return nil, false
		}
		return match(p[1:], src[1:], acc)
	}
}

// appendGroup 复制后再追加，避免回溯分支之间共享底层数组。
func appendGroup(acc Binding, group []string) Binding {
	out := make(Binding, len(acc), len(acc)+1)
	copy(out, acc)
	return append(out, append([]string(nil), group...))
}

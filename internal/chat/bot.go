package chat

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/John-Robertt/moviechat/internal/catalog"
	"github.com/John-Robertt/moviechat/internal/domain"
	"github.com/John-Robertt/moviechat/internal/match"
)

// Bot 是单轮问答的调度器：规范化 -> 按序匹配 -> 执行 Action -> 兜底。
//
// Bot 本身无状态（Limit 除外，由 REPL 的 "limit N" 修改），可以对多个 Catalog 复用同一张 Table。
type Bot struct {
	Table   Table
	Catalog catalog.Catalog

	// Limit > 0 时截断非兜底回答。
	Limit int
}

// Answer 回答一条自然语言 query。
func (b *Bot) Answer(ctx context.Context, query string) domain.Answer {
	ans := domain.Answer{Query: strings.TrimSpace(query)}

	pa, binding, ok := b.Table.Find(match.Tokenize(query))
	if !ok {
		slog.DebugContext(ctx, "no pattern matched", "query", ans.Query)
		ans.Status = domain.StatusNotUnderstood
		ans.Lines = []string{domain.NotUnderstood}
		return ans
	}
	ans.Pattern = pa.Pattern.String()
	slog.DebugContext(ctx, "pattern matched", "pattern", ans.Pattern, "binding", binding)

	lines := pa.Action(ctx, binding, b.Catalog)
	if len(lines) == 0 {
		ans.Status = domain.StatusNoAnswers
		ans.Lines = []string{domain.NoAnswers}
		return ans
	}
	if b.Limit > 0 && len(lines) > b.Limit {
		lines = lines[:b.Limit]
	}
	ans.Status = domain.StatusOK
	ans.Lines = append([]string(nil), lines...)
	return ans
}

// ErrLimitUsage 表示 limit 指令格式错误。
var ErrLimitUsage = errors.New("usage: limit <positive integer>")

// IsBye 报告输入是否为退出指令。
func IsBye(line string) bool {
	tokens := match.Tokenize(line)
	if len(tokens) != 1 {
		return false
	}
	switch tokens[0] {
	case "bye", "exit", "quit":
		return true
	default:
		return false
	}
}

// ParseLimit 解析 REPL 的 "limit N" 指令。
//
// 返回值：
// - isCmd：输入是否为 limit 指令（以 "limit" 开头）
// - n：解析出的上限（仅 err==nil 时有效，且 > 0）
func ParseLimit(line string) (n int, isCmd bool, err error) {
	tokens := match.Tokenize(line)
	if len(tokens) == 0 || tokens[0] != "limit" {
		return 0, false, nil
	}
	if len(tokens) != 2 {
		return 0, true, ErrLimitUsage
	}
	n, err = strconv.Atoi(tokens[1])
	if err != nil || n <= 0 {
		return 0, true, ErrLimitUsage
	}
	return n, true, nil
}

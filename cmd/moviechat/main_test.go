package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"unicode"

	"github.com/John-Robertt/moviechat/internal/catalog"
	"github.com/John-Robertt/moviechat/internal/chat"
	"github.com/John-Robertt/moviechat/internal/config"
	"github.com/John-Robertt/moviechat/internal/domain"
)

func TestParseArgs(t *testing.T) {
	ca, err := parseArgs([]string{"--source=TMDB", "--limit", "3", "-v", "who", "directed", "--movies", "m.json", "heat"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !ca.CLI.SourceSet || ca.CLI.Source != config.SourceTMDB {
		t.Fatalf("期望 source=tmdb，实际=%+v", ca.CLI)
	}
	if !ca.CLI.LimitSet || ca.CLI.Limit != 3 {
		t.Fatalf("期望 limit=3，实际=%+v", ca.CLI)
	}
	if ca.CLI.MoviesFile != "m.json" || !ca.Verbose {
		t.Fatalf("解析结果不符合预期：%+v", ca)
	}
	if got := strings.Join(ca.Query, " "); got != "who directed heat" {
		t.Fatalf("期望 query=%q，实际=%q", "who directed heat", got)
	}
}

func TestParseArgs_DoubleDashStopsFlags(t *testing.T) {
	ca, err := parseArgs([]string{"--", "--limit", "x"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if ca.CLI.LimitSet || len(ca.Query) != 2 {
		t.Fatalf("-- 之后应全部作为问题，实际=%+v", ca)
	}
}

func TestParseArgs_Errors(t *testing.T) {
	cases := [][]string{
		{"--limit"},
		{"--limit", "0"},
		{"--limit=abc"},
		{"--source", "imdb"},
		{"--movies="},
		{"--config", " "},
		{"--nope"},
	}
	for _, args := range cases {
		if _, err := parseArgs(args); err == nil {
			t.Fatalf("期望参数错误：%q", args)
		}
	}
}

func TestEmitAnswer_NoTTYWritesSingleJSON(t *testing.T) {
	var buf bytes.Buffer
	emitAnswer(&buf, domain.Answer{Query: "q", Status: domain.StatusOK, Lines: []string{"a", "b"}}, false)

	var got domain.Answer
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("stdout 不是合法的 Answer JSON：%v\n%q", err, buf.String())
	}
	if got.Status != domain.StatusOK || len(got.Lines) != 2 {
		t.Fatalf("JSON 内容不符合预期：%+v", got)
	}

	buf.Reset()
	emitAnswer(&buf, domain.Answer{Lines: []string{"a", "b"}}, true)
	if buf.String() != "a\nb\n" {
		t.Fatalf("TTY 输出不符合预期：%q", buf.String())
	}
}

func TestBuildCatalog_Local(t *testing.T) {
	c, err := buildCatalog(config.EffectiveConfig{Source: config.SourceLocal})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if c.Name() != catalog.BuiltinName {
		t.Fatalf("期望内置电影库，实际=%q", c.Name())
	}

	// 未配置 api key 时 tmdb 不会被注册。
	_, err = buildCatalog(config.EffectiveConfig{Source: config.SourceTMDB})
	if err == nil {
		t.Fatalf("期望 tmdb 不可用")
	}
}

func TestBuildCatalog_MoviesFile(t *testing.T) {
	path := filepath.Join("..", "..", "internal", "catalog", "testdata", "movies.json")
	c, err := buildCatalog(config.EffectiveConfig{Source: config.SourceLocal, MoviesFile: path})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if c.Name() != config.SourceLocal {
		t.Fatalf("期望 source=local，实际=%q", c.Name())
	}

	_, err = buildCatalog(config.EffectiveConfig{Source: config.SourceLocal, MoviesFile: filepath.Join(t.TempDir(), "none.json")})
	if err == nil {
		t.Fatalf("期望文件不存在时报错")
	}
}

func TestRunREPL(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		"what movies were made in 2010",
		"",
		"tell me a joke",
		"what movies were made in 1850",
		"limit 1",
		"what movies were made between 1990 and 1999",
		"limit nope",
		"BYE",
		"who directed inception",
	}, "\n"))
	var out bytes.Buffer
	bot := &chat.Bot{Table: chat.DefaultTable(), Catalog: catalog.Default()}

	if err := runREPL(context.Background(), newScanPrompter(in, &out), bot); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	got := out.String()
	for _, want := range []string{
		" 1. Inception",
		domain.NotUnderstood,
		domain.NoAnswers,
		"OK, at most 1 answers.",
		chat.ErrLimitUsage.Error(),
		farewell,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("输出缺少 %q：\n%s", want, got)
		}
	}
	if strings.Contains(got, " 2. ") {
		t.Fatalf("limit 1 后不应出现第二条：\n%s", got)
	}
	if strings.Contains(got, "Christopher Nolan") {
		t.Fatalf("bye 之后不应继续回答：\n%s", got)
	}
	if bot.Limit != 1 {
		t.Fatalf("期望 limit=1，实际=%d", bot.Limit)
	}
	// 会话内文案与回答保持同一种语言（英文）。
	for _, r := range got {
		if unicode.Is(unicode.Han, r) {
			t.Fatalf("会话输出不应混入中文：\n%s", got)
		}
	}
}

func TestRunREPL_EOFEndsSession(t *testing.T) {
	var out bytes.Buffer
	bot := &chat.Bot{Table: chat.DefaultTable(), Catalog: catalog.Default()}

	if err := runREPL(context.Background(), newScanPrompter(strings.NewReader("who directed inception"), &out), bot); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !strings.Contains(out.String(), "Christopher Nolan") || !strings.HasSuffix(out.String(), farewell+"\n") {
		t.Fatalf("输出不符合预期：\n%s", out.String())
	}
}

func TestPrintSetupError_HintByCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&config.Error{Code: config.ErrCodeMissingAPIKey}, config.EnvAPIKey},
		{&config.Error{Code: config.ErrCodeNotFound, Path: "x.json"}, "--config"},
		{&config.Error{Code: config.ErrCodeInvalid, Path: "x.json"}, "提示"},
		{&sourceError{Err: errors.New("boom")}, "boom"},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		printSetupError(&buf, c.err)
		if !strings.Contains(buf.String(), c.want) {
			t.Fatalf("err=%v 期望输出包含 %q，实际：%q", c.err, c.want, buf.String())
		}
	}
}

func TestAnswerForSetupError(t *testing.T) {
	ans := answerForSetupError(" who directed heat ", &config.Error{Code: config.ErrCodeMissingAPIKey})
	if ans.Status != domain.StatusError || ans.ErrorCode != config.ErrCodeMissingAPIKey {
		t.Fatalf("不符合预期：%+v", ans)
	}
	if ans.Query != "who directed heat" || ans.Lines == nil || len(ans.Lines) != 0 {
		t.Fatalf("query/lines 不符合预期：%+v", ans)
	}

	ans = answerForSetupError("q", &sourceError{Err: errors.New("boom")})
	if ans.ErrorCode != errCodeSource {
		t.Fatalf("期望 error_code=%q，实际=%q", errCodeSource, ans.ErrorCode)
	}
}

func TestNewLogger_DefaultShowsErrorsOnly(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, false)
	l.Warn("hidden warn")
	l.Debug("hidden debug")
	l.Error("catalog query failed")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "catalog query failed") {
		t.Fatalf("默认级别输出不符合预期：%q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, true).Debug("pattern matched")
	if !strings.Contains(buf.String(), "pattern matched") {
		t.Fatalf("-v 时应输出 debug：%q", buf.String())
	}
}

func TestRunREPL_CatalogFailureVisibleOnStderr(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(newLogger(&logs, false))
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out bytes.Buffer
	bot := &chat.Bot{Table: chat.DefaultTable(), Catalog: brokenCatalog{}}
	if err := runREPL(context.Background(), newScanPrompter(strings.NewReader("who acted in heat\nbye\n"), &out), bot); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !strings.Contains(out.String(), domain.NoAnswers) {
		t.Fatalf("期望回答 %q：\n%s", domain.NoAnswers, out.String())
	}
	if logs.Len() == 0 {
		t.Fatalf("数据源失败时 stderr 不应为空")
	}
}

type brokenCatalog struct{ catalog.Catalog }

func (brokenCatalog) Name() string { return "broken" }

func (brokenCatalog) ActorsIn(context.Context, string) ([]string, error) {
	return nil, errors.New("connection refused")
}

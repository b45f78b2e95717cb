package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/John-Robertt/moviechat/internal/catalog"
	"github.com/John-Robertt/moviechat/internal/chat"
	"github.com/John-Robertt/moviechat/internal/config"
	"github.com/John-Robertt/moviechat/internal/domain"
	"github.com/John-Robertt/moviechat/internal/infra/cache"
	"github.com/John-Robertt/moviechat/internal/infra/httpx"
	"github.com/John-Robertt/moviechat/internal/nfo"
	"github.com/John-Robertt/moviechat/internal/provider"
	"github.com/John-Robertt/moviechat/internal/provider/tmdb"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "chat":
		if code := chatCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	case "ask":
		if code := askCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	case "export":
		if code := exportCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func chatCmd(args []string) int {
	ca, code, ok := parseOrUsage(args, printChatUsage)
	if !ok {
		return code
	}
	if len(ca.Query) > 0 {
		fmt.Fprintf(os.Stderr, "参数错误：chat 不接受位置参数 %q\n\n", strings.Join(ca.Query, " "))
		printChatUsage()
		return 2
	}

	bot, err := setup(ca)
	if err != nil {
		printSetupError(os.Stderr, err)
		return 1
	}

	// 终端 raw 模式下 Ctrl-C 由 ReadLine 处理；管道模式保持默认的 SIGINT 行为。
	p, restore, err := newPrompter(os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化终端失败：%v\n", err)
		return 1
	}
	defer restore()
	if t, ok := p.(*term.Terminal); ok {
		// raw 模式下日志也经由 Terminal 输出（换行需要转换成 \r\n）。
		slog.SetDefault(newLogger(t, ca.Verbose))
	}

	if err := runREPL(context.Background(), p, bot); err != nil {
		restore()
		fmt.Fprintf(os.Stderr, "读取输入失败：%v\n", err)
		return 1
	}
	return 0
}

func askCmd(args []string) int {
	ca, code, ok := parseOrUsage(args, printAskUsage)
	if !ok {
		return code
	}
	if len(ca.Query) == 0 {
		fmt.Fprint(os.Stderr, "参数错误：缺少问题\n\n")
		printAskUsage()
		return 2
	}

	query := strings.Join(ca.Query, " ")
	tty := isTTY(os.Stdout)

	bot, err := setup(ca)
	if err != nil {
		printSetupError(os.Stderr, err)
		if !tty {
			// stdout 非 TTY 时仍然只输出一个 Answer JSON。
			emitAnswer(os.Stdout, answerForSetupError(query, err), false)
		}
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ans := bot.Answer(ctx, query)
	emitAnswer(os.Stdout, ans, tty)
	if ans.IsFallback() {
		return 1
	}
	return 0
}

// exportCmd 把本地电影库（内置或 --movies）写成媒体库目录下的 NFO 文件。
func exportCmd(args []string) int {
	ca, code, ok := parseOrUsage(args, printExportUsage)
	if !ok {
		return code
	}
	if ca.CLI.SourceSet && ca.CLI.Source != config.SourceLocal {
		fmt.Fprint(os.Stderr, "参数错误：export 只支持 --source local\n\n")
		printExportUsage()
		return 2
	}
	if len(ca.Query) != 1 {
		fmt.Fprint(os.Stderr, "参数错误：需要且只能有一个输出目录\n\n")
		printExportUsage()
		return 2
	}
	initLogger(ca.Verbose)

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}
	cli := ca.CLI
	cli.Source, cli.SourceSet = config.SourceLocal, true
	eff, err := config.LoadEffective(cwd, cli, nil)
	if err != nil {
		printSetupError(os.Stderr, err)
		return 1
	}

	store, err := localStore(eff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取电影库失败：%v\n", err)
		return 1
	}

	dir := ca.Query[0]
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cwd, dir)
	}
	n, err := nfo.WriteLibrary(dir, store.Movies())
	if err != nil {
		fmt.Fprintf(os.Stderr, "导出失败：%v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "完成：写入 %d 个 %s 到 %s\n", n, nfo.FileName, dir)
	return 0
}

func parseOrUsage(args []string, usage func()) (cliArgs, int, bool) {
	for _, a := range args {
		if isHelp(a) {
			usage()
			return cliArgs{}, 0, false
		}
	}
	ca, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		usage()
		return cliArgs{}, 2, false
	}
	return ca, 0, true
}

// setup 加载配置、配置日志并构造 Bot。
func setup(ca cliArgs) (*chat.Bot, error) {
	initLogger(ca.Verbose)

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("读取当前目录失败：%w", err)
	}

	eff, err := config.LoadEffective(cwd, ca.CLI, nil)
	if err != nil {
		return nil, err
	}

	c, err := buildCatalog(eff)
	if err != nil {
		return nil, &sourceError{Err: err}
	}
	slog.Debug("catalog ready", "source", c.Name(), "limit", eff.Limit, "movies_file", eff.MoviesFile, "cache", eff.CacheMode)

	return &chat.Bot{Table: chat.DefaultTable(), Catalog: c, Limit: eff.Limit}, nil
}

// errCodeSource 是数据源初始化失败（读取 --movies、代理配置等）的 error_code。
const errCodeSource = "source_unavailable"

type sourceError struct{ Err error }

func (e *sourceError) Error() string { return "初始化数据源失败：" + e.Err.Error() }
func (e *sourceError) Unwrap() error { return e.Err }

// errorCode 返回 setup 错误的 error_code：配置错误沿用 config 的 code，其余为 source_unavailable。
func errorCode(err error) string {
	if code := config.Code(err); code != "" {
		return code
	}
	return errCodeSource
}

// printSetupError 输出错误本身，并按 error_code 追加一行处理建议。
func printSetupError(w io.Writer, err error) {
	fmt.Fprintf(w, "%v\n", err)
	switch errorCode(err) {
	case config.ErrCodeMissingAPIKey:
		fmt.Fprintf(w, "提示：在环境变量或 %s 中设置 %s=<key>，或改用 --source local\n", config.EnvFileName, config.EnvAPIKey)
	case config.ErrCodeNotFound:
		fmt.Fprintf(w, "提示：检查 --config 路径；不指定时读取 ./%s（可选）\n", config.FileName)
	case config.ErrCodeInvalid:
		fmt.Fprint(w, "提示：修正配置文件中的字段后重试（字段说明见 moviechat chat --help）\n")
	}
}

func answerForSetupError(query string, err error) domain.Answer {
	return domain.Answer{
		Query:     strings.TrimSpace(query),
		Status:    domain.StatusError,
		Lines:     []string{},
		ErrorCode: errorCode(err),
		ErrorMsg:  err.Error(),
	}
}

// buildCatalog 注册所有可用数据源，再按 eff.Source 取出。
func buildCatalog(eff config.EffectiveConfig) (catalog.Catalog, error) {
	local, err := localStore(eff)
	if err != nil {
		return nil, err
	}
	sources := []catalog.Catalog{local}

	if eff.TMDBAPIKey != "" {
		hc, err := httpx.NewClient(eff.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("proxy.url 无效：%w", err)
		}
		sources = append(sources, &tmdb.Client{
			APIKey:     eff.TMDBAPIKey,
			BaseURL:    eff.TMDBBaseURL,
			HTTP:       hc,
			Cache:      cache.New(eff.CacheDir, eff.CacheMode == config.CacheRead),
			MaxResults: eff.TMDBMaxResults,
		})
	}

	reg, err := provider.NewRegistry(sources...)
	if err != nil {
		return nil, err
	}
	c, ok := reg.Get(eff.Source)
	if !ok {
		return nil, fmt.Errorf("source %q 不可用（已注册：%s）", eff.Source, strings.Join(reg.Names(), ", "))
	}
	return c, nil
}

// localStore：eff.MoviesFile 为空时使用内置电影库。
func localStore(eff config.EffectiveConfig) (*catalog.Store, error) {
	if eff.MoviesFile == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(eff.MoviesFile)
}

type cliArgs struct {
	CLI     config.CLIArgs
	Verbose bool
	Query   []string
}

func parseArgs(args []string) (cliArgs, error) {
	ca := cliArgs{}

	// value 读取 "--flag v" 或 "--flag=v" 两种写法。
	value := func(i *int, a, name string) (string, bool, error) {
		if a == name {
			if *i+1 >= len(args) {
				return "", true, fmt.Errorf("%s 需要一个值", name)
			}
			*i++
			return args[*i], true, nil
		}
		if strings.HasPrefix(a, name+"=") {
			return strings.TrimPrefix(a, name+"="), true, nil
		}
		return "", false, nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]

		if a == "--" {
			ca.Query = append(ca.Query, args[i+1:]...)
			break
		}
		if a == "-v" || a == "--verbose" {
			ca.Verbose = true
			continue
		}

		if v, ok, err := value(&i, a, "--source"); ok {
			if err != nil {
				return cliArgs{}, err
			}
			v = strings.ToLower(strings.TrimSpace(v))
			if err := config.ValidateSource(v); err != nil {
				return cliArgs{}, fmt.Errorf("--source：%w", err)
			}
			ca.CLI.Source, ca.CLI.SourceSet = v, true
			continue
		}
		if v, ok, err := value(&i, a, "--movies"); ok {
			if err != nil {
				return cliArgs{}, err
			}
			if strings.TrimSpace(v) == "" {
				return cliArgs{}, fmt.Errorf("--movies 不能为空")
			}
			ca.CLI.MoviesFile = v
			continue
		}
		if v, ok, err := value(&i, a, "--config"); ok {
			if err != nil {
				return cliArgs{}, err
			}
			if strings.TrimSpace(v) == "" {
				return cliArgs{}, fmt.Errorf("--config 不能为空")
			}
			ca.CLI.ConfigPath = v
			continue
		}
		if v, ok, err := value(&i, a, "--limit"); ok {
			if err != nil {
				return cliArgs{}, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return cliArgs{}, fmt.Errorf("--limit 必须为正整数，实际是 %q", v)
			}
			ca.CLI.Limit, ca.CLI.LimitSet = n, true
			continue
		}

		if strings.HasPrefix(a, "-") {
			return cliArgs{}, fmt.Errorf("未知参数 %q", a)
		}
		ca.Query = append(ca.Query, a)
	}
	return ca, nil
}

func initLogger(verbose bool) {
	slog.SetDefault(newLogger(os.Stderr, verbose))
}

// newLogger：默认只输出 Error（数据源失败）；-v 时输出 Debug（匹配过程等）。
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// emitAnswer：TTY 输出可读文本；非 TTY 时 stdout 只输出一个 Answer JSON。
func emitAnswer(w io.Writer, ans domain.Answer, tty bool) {
	if !tty {
		enc := json.NewEncoder(w)
		_ = enc.Encode(ans)
		return
	}
	for _, l := range ans.Lines {
		fmt.Fprintln(w, l)
	}
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func isTTY(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

const flagsHelp = `参数：
  --source    数据源：local|tmdb（未指定则读配置文件；最终默认 local）
  --movies    外部电影库：.json、.html 表格或 NFO 媒体库目录，仅 source=local
  --limit     每次回答的最大条目数（默认 10）
  --config    配置文件路径（默认读取 ./moviechat.json，可选）
  -v, --verbose  在 stderr 输出调试日志
  -h, --help  显示帮助
`

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  moviechat chat [--source local|tmdb] [--movies FILE] [--limit N] [--config FILE]
  moviechat ask  [参数] <问题...>
  moviechat export [--movies FILE|DIR] [--config FILE] <输出目录>

命令：
  chat   交互式问答（输入 bye 退出）
  ask    回答单个问题（stdout 非 TTY 时输出 JSON）
  export 把本地电影库导出为媒体库目录（每部电影一个 movie.nfo）

使用 "moviechat chat --help" 查看详细说明。
`)
}

func printChatUsage() {
	fmt.Fprint(os.Stdout, `用法：
  moviechat chat [--source local|tmdb] [--movies FILE] [--limit N] [--config FILE]

`+flagsHelp+`
会话内指令：
  limit N     修改结果上限
  bye         退出
`)
}

func printAskUsage() {
	fmt.Fprint(os.Stdout, `用法：
  moviechat ask [参数] <问题...>

例如：
  moviechat ask what movies were made in 2010

`+flagsHelp+`
退出码：0 有答案；1 无答案/无法理解或配置错误；2 参数错误
`)
}

func printExportUsage() {
	fmt.Fprint(os.Stdout, `用法：
  moviechat export [--movies FILE|DIR] [--config FILE] <输出目录>

输出布局：<输出目录>/<Title (Year)>/movie.nfo，已存在则覆盖。
导出的目录可以再通过 --movies 读回。
`)
}

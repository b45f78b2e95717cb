package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// ErrCodeNotFound 表示通过 --config 显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingAPIKey 表示 source=tmdb 但找不到 TMDB_API_KEY。
	ErrCodeMissingAPIKey = "config_missing_api_key"
)

const (
	// FileName 是 cwd 下默认读取的配置文件名。
	FileName = "moviechat.json"
	// EnvFileName 是 cwd 下默认读取的 dotenv 文件名。
	EnvFileName = ".env"
	// EnvAPIKey 是 TMDB api key 的环境变量名。
	EnvAPIKey = "TMDB_API_KEY"

	SourceLocal = "local"
	SourceTMDB  = "tmdb"

	// DefaultLimit 是回答条目数的内置默认上限。
	DefaultLimit = 10

	CacheOff   = "off"
	CacheRead  = "read"
	CacheWrite = "write"
)

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息，保证 CLI 能覆盖配置文件。
type CLIArgs struct {
	ConfigPath string

	Source    string
	SourceSet bool

	MoviesFile string

	Limit    int
	LimitSet bool
}

// FileConfig 对应 moviechat.json 的解析结构。
type FileConfig struct {
	Source     string       `json:"source"`
	Limit      int          `json:"limit"`
	MoviesFile string       `json:"movies_file"`
	Proxy      *ProxyConfig `json:"proxy"`
	CacheDir   string       `json:"cache_dir"`
	CacheMode  string       `json:"cache_mode"`
	TMDB       *TMDBConfig  `json:"tmdb"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

type TMDBConfig struct {
	BaseURL    string `json:"base_url"`
	MaxResults int    `json:"max_results"`
}

// EffectiveConfig 是合并并规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Source string
	Limit  int

	// MoviesFile 为空表示使用内置电影库；非空时是 clean + absolute 路径。
	MoviesFile string

	ProxyURL  string
	CacheDir  string
	CacheMode string

	TMDBAPIKey     string
	TMDBBaseURL    string
	TMDBMaxResults int
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingAPIKey:
		return fmt.Sprintf("%s：source=tmdb 需要环境变量 %s（可写入 %s）", e.Code, EnvAPIKey, EnvFileName)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件与 .env，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：必须存在
// 2) 否则尝试 <cwd>/moviechat.json（可选）
// 3) <cwd>/.env 可选；进程环境变量优先于 .env
//
// 覆盖优先级（固定）：
// - source / limit / movies_file：CLI > config > 默认
// - 其他字段：仅由 config 控制
//
// getenv 为 nil 时使用 os.Getenv（测试可注入）。
func LoadEffective(cwd string, cli CLIArgs, getenv func(string) string) (EffectiveConfig, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	required := false
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		required = true
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if required && !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}

	dotenv, err := readDotenv(filepath.Join(cwdAbs, EnvFileName))
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: filepath.Join(cwdAbs, EnvFileName), Err: err}
	}
	apiKey := strings.TrimSpace(getenv(EnvAPIKey))
	if apiKey == "" {
		apiKey = strings.TrimSpace(dotenv[EnvAPIKey])
	}

	// 配置文件里的相对路径以配置文件所在目录为基准。
	return merge(cwdAbs, filepath.Dir(cfgPath), cli, fc, cfgPath, apiKey)
}

func merge(cwdAbs, cfgDir string, cli CLIArgs, fc FileConfig, cfgPath, apiKey string) (EffectiveConfig, error) {
	invalid := func(format string, args ...any) error {
		return &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf(format, args...)}
	}

	// source：CLI > config > 默认
	source := SourceLocal
	if cli.SourceSet {
		source = strings.ToLower(strings.TrimSpace(cli.Source))
	} else if strings.TrimSpace(fc.Source) != "" {
		source = strings.ToLower(strings.TrimSpace(fc.Source))
	}
	if err := ValidateSource(source); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// limit：CLI > config > 默认；0 表示未指定。
	limit := DefaultLimit
	if cli.LimitSet {
		limit = cli.Limit
	} else if fc.Limit != 0 {
		limit = fc.Limit
	}
	if limit < 1 {
		return EffectiveConfig{}, invalid("limit 必须为正整数，实际是 %d", limit)
	}

	movies := ""
	if strings.TrimSpace(cli.MoviesFile) != "" {
		movies = absCleanFrom(cwdAbs, cli.MoviesFile)
	} else if strings.TrimSpace(fc.MoviesFile) != "" {
		movies = absCleanFrom(cfgDir, fc.MoviesFile)
	}
	if movies != "" && source != SourceLocal {
		return EffectiveConfig{}, invalid("movies_file 只能与 source=local 一起使用")
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return EffectiveConfig{}, invalid("proxy.url 无效：%q", proxyURL)
		}
	}

	cacheMode := strings.ToLower(strings.TrimSpace(fc.CacheMode))
	switch cacheMode {
	case "":
		cacheMode = CacheWrite
	case CacheOff, CacheRead, CacheWrite:
	default:
		return EffectiveConfig{}, invalid("cache_mode 只能是 off/read/write，实际是 %q", fc.CacheMode)
	}
	cacheDir := ""
	if cacheMode != CacheOff {
		if strings.TrimSpace(fc.CacheDir) != "" {
			cacheDir = absCleanFrom(cfgDir, fc.CacheDir)
		} else {
			cacheDir = defaultCacheDir()
		}
		if cacheDir == "" {
			// 平台没有用户缓存目录：退化为不缓存。
			cacheMode = CacheOff
		}
	}

	tmdbBase, tmdbMax := "", 0
	if fc.TMDB != nil {
		tmdbBase = strings.TrimSpace(fc.TMDB.BaseURL)
		tmdbMax = fc.TMDB.MaxResults
	}
	if tmdbBase != "" {
		u, err := url.Parse(tmdbBase)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return EffectiveConfig{}, invalid("tmdb.base_url 必须是 http/https：%q", tmdbBase)
		}
	}
	if tmdbMax < 0 {
		return EffectiveConfig{}, invalid("tmdb.max_results 不能为负数")
	}

	if source == SourceTMDB && apiKey == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingAPIKey, Path: cfgPath}
	}

	return EffectiveConfig{
		Source:         source,
		Limit:          limit,
		MoviesFile:     movies,
		ProxyURL:       proxyURL,
		CacheDir:       cacheDir,
		CacheMode:      cacheMode,
		TMDBAPIKey:     apiKey,
		TMDBBaseURL:    tmdbBase,
		TMDBMaxResults: tmdbMax,
	}, nil
}

// ValidateSource 校验数据源名称。
func ValidateSource(s string) error {
	switch s {
	case SourceLocal, SourceTMDB:
		return nil
	case "":
		return fmt.Errorf("source 不能为空")
	default:
		return fmt.Errorf("source 只能是 local 或 tmdb，实际是 %q", s)
	}
}

func defaultCacheDir() string {
	d, err := os.UserCacheDir()
	if err != nil || d == "" {
		return ""
	}
	return filepath.Join(d, "moviechat")
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件；exists 表示文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}

// readDotenv 只读取 .env 内容，不修改进程环境变量。
func readDotenv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return godotenv.Read(path)
}

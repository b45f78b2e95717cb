package chat

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"

	"github.com/John-Robertt/moviechat/internal/catalog"
	"github.com/John-Robertt/moviechat/internal/match"
	"github.com/John-Robertt/moviechat/internal/provider"
)

// Action 根据捕获的 Binding 查询 Catalog，返回结果文本。
//
// 约束：Action 不返回 error；查不到或数据源出错都返回空切片，兜底文案由 Bot 统一给出。
type Action func(ctx context.Context, b match.Binding, c catalog.Catalog) []string

const (
	minYear = 1
	maxYear = 9999
)

// parseYear 把捕获的 token 解析为年份；非数字或超出 [1, 9999] 视为无效。
func parseYear(s string) (int, bool) {
	y, err := strconv.Atoi(s)
	if err != nil || y < minYear || y > maxYear {
		return 0, false
	}
	return y, true
}

// TitleByYear: what movies were made in _
func TitleByYear(ctx context.Context, b match.Binding, c catalog.Catalog) []string {
	y, ok := parseYear(b.Text(0))
	if !ok {
		return nil
	}
	return run(ctx, c, "titles_by_year", func() ([]string, error) {
		return c.TitlesByYear(ctx, y, y)
	})
}

// TitleByYearRange: what movies were made between _ and _（闭区间）
func TitleByYearRange(ctx context.Context, b match.Binding, c catalog.Catalog) []string {
	from, ok1 := parseYear(b.Text(0))
	to, ok2 := parseYear(b.Text(1))
	if !ok1 || !ok2 {
		return nil
	}
	return run(ctx, c, "titles_by_year_range", func() ([]string, error) {
		return c.TitlesByYear(ctx, from, to)
	})
}

// TitleBeforeYear: what movies were made before _（不含该年）
func TitleBeforeYear(ctx context.Context, b match.Binding, c catalog.Catalog) []string {
	y, ok := parseYear(b.Text(0))
	if !ok {
		return nil
	}
	return run(ctx, c, "titles_before_year", func() ([]string, error) {
		return c.TitlesByYear(ctx, math.MinInt, y-1)
	})
}

// TitleAfterYear: what movies were made after _（不含该年）
func TitleAfterYear(ctx context.Context, b match.Binding, c catalog.Catalog) []string {
	y, ok := parseYear(b.Text(0))
	if !ok {
		return nil
	}
	return run(ctx, c, "titles_after_year", func() ([]string, error) {
		return c.TitlesByYear(ctx, y+1, math.MaxInt)
	})
}

// DirectorByTitle: who directed % / who was the director of %
func DirectorByTitle(ctx context.Context, b match.Binding, c catalog.Catalog) []string {
	return run(ctx, c, "directors_of", func() ([]string, error) {
		return c.DirectorsOf(ctx, b.Text(0))
	})
}

// TitleByDirector: what movies were directed by %
func TitleByDirector(ctx context.Context, b match.Binding, c catalog.Catalog) []string {
	return run(ctx, c, "titles_by_director", func() ([]string, error) {
		return c.TitlesByDirector(ctx, b.Text(0))
	})
}

// ActorsByTitle: who acted in %
func ActorsByTitle(ctx context.Context, b match.Binding, c catalog.Catalog) []string {
	return run(ctx, c, "actors_in", func() ([]string, error) {
		return c.ActorsIn(ctx, b.Text(0))
	})
}

// YearByTitle: when was % made
func YearByTitle(ctx context.Context, b match.Binding, c catalog.Catalog) []string {
	return run(ctx, c, "years_of", func() ([]string, error) {
		years, err := c.YearsOf(ctx, b.Text(0))
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(years))
		for _, y := range years {
			out = append(out, strconv.Itoa(y))
		}
		return out, nil
	})
}

// TitleByActor: in what movies did % appear
func TitleByActor(ctx context.Context, b match.Binding, c catalog.Catalog) []string {
	return run(ctx, c, "titles_by_actor", func() ([]string, error) {
		return c.TitlesByActor(ctx, b.Text(0))
	})
}

// run 执行一次 Catalog 查询，把 error 降级为空结果并记录日志。
//
// 失败以 Error 级别记录，默认日志级别下也会出现在 stderr。
func run(ctx context.Context, c catalog.Catalog, op string, q func() ([]string, error)) []string {
	out, err := q()
	if err != nil {
		slog.ErrorContext(ctx, "catalog query failed", "source", c.Name(), "op", op, "err", err)
		var he *provider.HTTPStatusError
		if errors.As(err, &he) && he.Unauthorized() {
			slog.ErrorContext(ctx, "tmdb rejected the api key; check TMDB_API_KEY (environment or .env)", "status", he.StatusCode)
		}
		return nil
	}
	return out
}

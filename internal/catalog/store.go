package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/John-Robertt/moviechat/internal/domain"
)

var _ Catalog = (*Store)(nil)

// Store 是只读的内存电影库（按声明顺序保存）。
// 电影数量很小，所有查询都是一次线性扫描，不建索引。
type Store struct {
	name   string
	movies []domain.Movie
}

// NewStore 校验并复制 movies，返回只读 Store。
func NewStore(name string, movies []domain.Movie) (*Store, error) {
	out := make([]domain.Movie, 0, len(movies))
	for i, m := range movies {
		m.Title = strings.TrimSpace(m.Title)
		m.Director = strings.TrimSpace(m.Director)
		if m.Title == "" {
			return nil, fmt.Errorf("第 %d 条记录缺少 title", i+1)
		}
		if m.Year <= 0 {
			return nil, fmt.Errorf("%q 的 year 无效：%d", m.Title, m.Year)
		}
		actors := make([]string, 0, len(m.Actors))
		for _, a := range m.Actors {
			if a = strings.TrimSpace(a); a != "" {
				actors = append(actors, a)
			}
		}
		m.Actors = actors
		out = append(out, m)
	}
	return &Store{name: name, movies: out}, nil
}

func (s *Store) Name() string { return s.name }

// Len 返回电影条数。
func (s *Store) Len() int { return len(s.movies) }

// Movies 返回全部记录的副本。
func (s *Store) Movies() []domain.Movie {
	out := make([]domain.Movie, len(s.movies))
	for i, m := range s.movies {
		m.Actors = append([]string(nil), m.Actors...)
		out[i] = m
	}
	return out
}

func (s *Store) TitlesByYear(_ context.Context, from, to int) ([]string, error) {
	return s.titlesWhere(func(m domain.Movie) bool {
		return from <= m.Year && m.Year <= to
	}), nil
}

func (s *Store) TitlesByDirector(_ context.Context, director string) ([]string, error) {
	director = normName(director)
	return s.titlesWhere(func(m domain.Movie) bool {
		return strings.EqualFold(normName(m.Director), director)
	}), nil
}

func (s *Store) TitlesByActor(_ context.Context, actor string) ([]string, error) {
	actor = normName(actor)
	return s.titlesWhere(func(m domain.Movie) bool {
		for _, a := range m.Actors {
			if strings.EqualFold(normName(a), actor) {
				return true
			}
		}
		return false
	}), nil
}

func (s *Store) DirectorsOf(_ context.Context, title string) ([]string, error) {
	out := []string{}
	for _, i := range s.lookupTitle(title) {
		out = appendUnique(out, s.movies[i].Director)
	}
	return out, nil
}

func (s *Store) ActorsIn(_ context.Context, title string) ([]string, error) {
	out := []string{}
	for _, i := range s.lookupTitle(title) {
		for _, a := range s.movies[i].Actors {
			out = appendUnique(out, a)
		}
	}
	return out, nil
}

func (s *Store) YearsOf(_ context.Context, title string) ([]int, error) {
	out := []int{}
	for _, i := range s.lookupTitle(title) {
		y := s.movies[i].Year
		dup := false
		for _, x := range out {
			if x == y {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, y)
		}
	}
	return out, nil
}

func (s *Store) titlesWhere(keep func(domain.Movie) bool) []string {
	out := []string{}
	for _, m := range s.movies {
		if keep(m) {
			out = append(out, m.Title)
		}
	}
	return out
}

// lookupTitle 返回标题匹配的记录下标（声明顺序）。
//
// 规则：
// 1) 大小写不敏感的精确匹配（可能多条，例如同名翻拍）
// 2) 没有精确匹配时做模糊子序列匹配，只保留通过 wordsMatch 的候选中距离最小的那一档
func (s *Store) lookupTitle(title string) []int {
	title = normName(title)
	if title == "" {
		return nil
	}

	var exact []int
	for i, m := range s.movies {
		if strings.EqualFold(normName(m.Title), title) {
			exact = append(exact, i)
		}
	}
	if len(exact) > 0 {
		return exact
	}

	targets := make([]string, len(s.movies))
	for i, m := range s.movies {
		targets[i] = normName(m.Title)
	}
	ranks := fuzzy.RankFindFold(title, targets)
	if len(ranks) == 0 {
		return nil
	}
	sort.Sort(ranks)

	out := make([]int, 0, len(ranks))
	best := -1
	for _, r := range ranks {
		if !wordsMatch(title, r.Target) {
			continue
		}
		if best >= 0 && r.Distance != best {
			break
		}
		best = r.Distance
		out = append(out, r.OriginalIndex)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Ints(out)
	return out
}

// minPrefixLen 是按词前缀匹配的最短长度；更短的词必须与标题中的词完全相同。
const minPrefixLen = 3

// wordsMatch 报告 query 的每个词是否按顺序对应 target 中的某个词：
// 完全相同，或长度 >= minPrefixLen 时为该词的前缀（大小写不敏感）。
func wordsMatch(query, target string) bool {
	qs := strings.Fields(strings.ToLower(query))
	ts := strings.Fields(strings.ToLower(target))
	j := 0
	for _, q := range qs {
		for ; j < len(ts); j++ {
			if ts[j] == q || (len(q) >= minPrefixLen && strings.HasPrefix(ts[j], q)) {
				break
			}
		}
		if j == len(ts) {
			return false
		}
		j++
	}
	return len(qs) > 0
}

func normName(s string) string { return strings.Join(strings.Fields(s), " ") }

func appendUnique(dst []string, s string) []string {
	for _, x := range dst {
		if strings.EqualFold(x, s) {
			return dst
		}
	}
	return append(dst, s)
}

package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/John-Robertt/moviechat/internal/catalog"
	"github.com/John-Robertt/moviechat/internal/infra/cache"
	providerx "github.com/John-Robertt/moviechat/internal/provider"
)

const (
	// Name 是该数据源的注册名。
	Name = "tmdb"
	// DefaultBaseURL 是 TMDB v3 API 的默认根地址。
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultMaxResults 是单次查询返回的最大条目数。
	DefaultMaxResults = 10

	// firstFilmYear 之前没有电影；区间下界小于它时直接省略 gte 参数。
	firstFilmYear = 1874
)

var _ catalog.Catalog = (*Client)(nil)

// Client 把 TMDB 的 HTTP API 适配为 catalog.Catalog。
//
// 约束：
// - 人名/片名先搜索，再取第一条搜索结果的详情（与 TMDB 网站的默认排序一致）
// - 只缓存 2xx 的响应体；缓存 key 不含 api_key
// - 返回条目数不超过 MaxResults
type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
	Cache   cache.Store

	MaxResults int
}

func (*Client) Name() string { return Name }

func (c *Client) baseURL() string {
	u := strings.TrimSpace(c.BaseURL)
	if u == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

func (c *Client) maxResults() int {
	if c.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return c.MaxResults
}

type movieResult struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Job         string `json:"job"`
}

type personResult struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type pagedMovies struct {
	Results []movieResult `json:"results"`
}

type pagedPeople struct {
	Results []personResult `json:"results"`
}

type credits struct {
	Cast []struct {
		Name  string `json:"name"`
		Title string `json:"title"`
		Order int    `json:"order"`
	} `json:"cast"`
	Crew []struct {
		Name  string `json:"name"`
		Title string `json:"title"`
		Job   string `json:"job"`
	} `json:"crew"`
}

type movieDetails struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Credits     credits `json:"credits"`
}

// now 可在测试中替换。
var now = time.Now

// TitlesByYear 使用 /discover/movie 的 primary_release_date 区间过滤。
//
// 上界超出 9999（"after Y"）时按当前年份截止，不返回尚未上映的电影。
func (c *Client) TitlesByYear(ctx context.Context, from, to int) ([]string, error) {
	if to > 9999 {
		to = now().Year()
	}
	if from > to {
		return []string{}, nil
	}
	q := url.Values{}
	if from >= firstFilmYear {
		q.Set("primary_release_date.gte", fmt.Sprintf("%04d-01-01", from))
	}
	if to < firstFilmYear {
		return []string{}, nil
	}
	q.Set("primary_release_date.lte", fmt.Sprintf("%04d-12-31", to))
	q.Set("sort_by", "popularity.desc")

	var page pagedMovies
	if err := c.get(ctx, "/discover/movie", q, &page); err != nil {
		return nil, err
	}
	return c.titles(page.Results), nil
}

func (c *Client) TitlesByDirector(ctx context.Context, director string) ([]string, error) {
	id, ok, err := c.searchPerson(ctx, director)
	if err != nil || !ok {
		return []string{}, err
	}
	var cr credits
	if err := c.get(ctx, "/person/"+strconv.Itoa(id)+"/movie_credits", nil, &cr); err != nil {
		return nil, err
	}
	out := []string{}
	for _, m := range cr.Crew {
		if m.Job != "Director" || strings.TrimSpace(m.Title) == "" {
			continue
		}
		out = appendUnique(out, m.Title)
		if len(out) >= c.maxResults() {
			break
		}
	}
	return out, nil
}

func (c *Client) TitlesByActor(ctx context.Context, actor string) ([]string, error) {
	id, ok, err := c.searchPerson(ctx, actor)
	if err != nil || !ok {
		return []string{}, err
	}
	var cr credits
	if err := c.get(ctx, "/person/"+strconv.Itoa(id)+"/movie_credits", nil, &cr); err != nil {
		return nil, err
	}
	out := []string{}
	for _, m := range cr.Cast {
		if strings.TrimSpace(m.Title) == "" {
			continue
		}
		out = appendUnique(out, m.Title)
		if len(out) >= c.maxResults() {
			break
		}
	}
	return out, nil
}

func (c *Client) DirectorsOf(ctx context.Context, title string) ([]string, error) {
	d, ok, err := c.movieByTitle(ctx, title)
	if err != nil || !ok {
		return []string{}, err
	}
	out := []string{}
	for _, p := range d.Credits.Crew {
		if p.Job == "Director" {
			out = appendUnique(out, p.Name)
		}
	}
	return out, nil
}

func (c *Client) ActorsIn(ctx context.Context, title string) ([]string, error) {
	d, ok, err := c.movieByTitle(ctx, title)
	if err != nil || !ok {
		return []string{}, err
	}
	cast := d.Credits.Cast
	sort.SliceStable(cast, func(i, j int) bool { return cast[i].Order < cast[j].Order })

	out := []string{}
	for _, p := range cast {
		out = appendUnique(out, p.Name)
		if len(out) >= c.maxResults() {
			break
		}
	}
	return out, nil
}

// YearsOf 只看第一条搜索结果的上映年份（与 TMDB 搜索的相关度排序一致）。
func (c *Client) YearsOf(ctx context.Context, title string) ([]int, error) {
	var page pagedMovies
	if err := c.get(ctx, "/search/movie", url.Values{"query": {title}}, &page); err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return []int{}, nil
	}
	if y := yearFromRelease(page.Results[0].ReleaseDate); y > 0 {
		return []int{y}, nil
	}
	return []int{}, nil
}

func (c *Client) searchPerson(ctx context.Context, name string) (int, bool, error) {
	var page pagedPeople
	if err := c.get(ctx, "/search/person", url.Values{"query": {name}}, &page); err != nil {
		return 0, false, err
	}
	if len(page.Results) == 0 {
		return 0, false, nil
	}
	return page.Results[0].ID, true, nil
}

func (c *Client) movieByTitle(ctx context.Context, title string) (movieDetails, bool, error) {
	var page pagedMovies
	if err := c.get(ctx, "/search/movie", url.Values{"query": {title}}, &page); err != nil {
		return movieDetails{}, false, err
	}
	if len(page.Results) == 0 {
		return movieDetails{}, false, nil
	}

	var d movieDetails
	q := url.Values{"append_to_response": {"credits"}}
	if err := c.get(ctx, "/movie/"+strconv.Itoa(page.Results[0].ID), q, &d); err != nil {
		return movieDetails{}, false, err
	}
	return d, true, nil
}

func (c *Client) titles(results []movieResult) []string {
	out := []string{}
	for _, m := range results {
		if strings.TrimSpace(m.Title) == "" {
			continue
		}
		out = append(out, m.Title)
		if len(out) >= c.maxResults() {
			break
		}
	}
	return out
}

// get 请求 path 并把 JSON 解码到 v；命中缓存时不发请求。
func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	if c.HTTP == nil {
		return errors.New("http client 不能为空")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("TMDB api key 为空")
	}
	if q == nil {
		q = url.Values{}
	}

	// url.Values.Encode 按 key 排序，可直接作为稳定的缓存 key。
	key := cache.Key(path, q.Encode())
	if b, ok, err := c.Cache.Read(Name, key); err == nil && ok {
		if err := json.Unmarshal(b, v); err == nil {
			return nil
		}
	}

	full := url.Values{}
	for k, vs := range q {
		full[k] = vs
	}
	full.Set("api_key", c.APIKey)
	u := c.baseURL() + path + "?" + full.Encode()

	b, err := fetchJSON(ctx, c.HTTP, u, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("解析 %s 响应失败：%w", path, err)
	}
	// 缓存写失败不影响本次回答。
	_ = c.Cache.Write(Name, key, b)
	return nil
}

func fetchJSON(ctx context.Context, c *http.Client, u, display string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			StatusMessage string `json:"status_message"`
		}
		_ = json.Unmarshal(b, &body)
		// URL 只保留 path，避免 api_key 出现在错误信息里。
		return nil, &providerx.HTTPStatusError{URL: display, StatusCode: resp.StatusCode, Message: body.StatusMessage}
	}
	return b, nil
}

func appendUnique(dst []string, s string) []string {
	for _, x := range dst {
		if x == s {
			return dst
		}
	}
	return append(dst, s)
}

func yearFromRelease(release string) int {
	release = strings.TrimSpace(release)
	if len(release) < 4 {
		return 0
	}
	y, err := strconv.Atoi(release[:4])
	if err != nil {
		return 0
	}
	return y
}

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/moviechat/internal/domain"
	"github.com/John-Robertt/moviechat/internal/nfo"
	"github.com/John-Robertt/moviechat/internal/scan"
)

// Load 读取外部电影库：
// - 目录：媒体库目录，递归读取其中的 *.nfo（见 LoadLibrary）
// - .json：domain.Movie 数组
// - .html / .htm：页面中第一个带 Title/Year/Director/Cast 表头的 <table>
//
// Store 的名称固定为 "local"（外部文件只是替换内置数据）。
func Load(path string) (*Store, error) {
	if fi, err := os.Stat(path); err != nil {
		return nil, err
	} else if fi.IsDir() {
		return LoadLibrary(path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var movies []domain.Movie
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		movies, err = ParseJSON(b)
	case ".html", ".htm":
		movies, err = ParseHTMLTable(b)
	default:
		return nil, fmt.Errorf("不支持的电影库文件类型：%q（仅支持目录/.json/.html）", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("解析 %q 失败：%w", path, err)
	}
	return NewStore(BuiltinName, movies)
}

// LoadLibrary 读取媒体库目录（Kodi/Jellyfin 布局）下的全部 *.nfo，按相对路径排序。
//
// 解析失败的 NFO 直接报错（带路径），不静默跳过。
func LoadLibrary(root string) (*Store, error) {
	files, err := scan.Files(root, []string{".nfo"}, nil)
	if err != nil {
		return nil, err
	}

	movies := make([]domain.Movie, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f.AbsPath)
		if err != nil {
			return nil, err
		}
		m, err := nfo.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("解析 %q 失败：%w", f.RelPath, err)
		}
		movies = append(movies, m)
	}
	return NewStore(BuiltinName, movies)
}

// ParseJSON 解析 domain.Movie 数组。
func ParseJSON(b []byte) ([]domain.Movie, error) {
	var movies []domain.Movie
	if err := json.Unmarshal(b, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// ParseHTMLTable 从 HTML 中解析电影表格。
//
// 约束：
//   - 只看第一个表头同时包含 title 与 year 的 <table>（表头大小写不敏感，允许 "Film"/"Released" 等别名）
//   - Cast 列按逗号或 <br> 分隔
//   - 空行与 year 无法解析的行直接跳过（维基类表格常见的分组行）
func ParseHTMLTable(b []byte) ([]domain.Movie, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	var (
		movies []domain.Movie
		found  bool
	)
	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		cols := columnIndex(tbl)
		if cols.title < 0 || cols.year < 0 {
			return true
		}
		found = true

		tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() == 0 {
				return
			}
			title := cellText(cells, cols.title)
			year, err := strconv.Atoi(firstDigits(cellText(cells, cols.year)))
			if title == "" || err != nil {
				return
			}
			m := domain.Movie{
				Title:    title,
				Year:     year,
				Director: cellText(cells, cols.director),
			}
			if cols.cast >= 0 && cols.cast < cells.Length() {
				m.Actors = splitCast(cells.Eq(cols.cast))
			}
			movies = append(movies, m)
		})
		return false
	})
	if !found {
		return nil, fmt.Errorf("未找到包含 title/year 表头的表格")
	}
	return movies, nil
}

type columns struct {
	title, year, director, cast int
}

func columnIndex(tbl *goquery.Selection) columns {
	c := columns{title: -1, year: -1, director: -1, cast: -1}
	tbl.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		switch strings.ToLower(normName(th.Text())) {
		case "title", "film", "movie":
			c.title = i
		case "year", "released", "release year":
			c.year = i
		case "director", "directed by", "director(s)":
			c.director = i
		case "cast", "actors", "starring":
			c.cast = i
		}
	})
	return c
}

func cellText(cells *goquery.Selection, i int) string {
	if i < 0 || i >= cells.Length() {
		return ""
	}
	return normName(cells.Eq(i).Text())
}

func splitCast(td *goquery.Selection) []string {
	// <br> 不产生文本，先替换为逗号再统一切分。
	td.Find("br").ReplaceWithHtml(",")
	var out []string
	for _, part := range strings.Split(td.Text(), ",") {
		if part = normName(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

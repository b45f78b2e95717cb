package nfo

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/John-Robertt/moviechat/internal/domain"
	"github.com/John-Robertt/moviechat/internal/infra/fsx"
)

// FileName 是每部电影目录下的 NFO 文件名（Kodi/Jellyfin/Emby 都识别）。
const FileName = "movie.nfo"

type movie struct {
	XMLName xml.Name `xml:"movie"`

	Title     string `xml:"title"`
	SortTitle string `xml:"sorttitle,omitempty"`
	Year      int    `xml:"year,omitempty"`
	Premiered string `xml:"premiered,omitempty"`

	Directors []string `xml:"director,omitempty"`
	Actors    []actor  `xml:"actor,omitempty"`
}

type actor struct {
	Name  string `xml:"name"`
	Role  string `xml:"role,omitempty"`
	Order *int   `xml:"order,omitempty"`
}

// Encode 把 Movie 转成媒体库可读取的 NFO（XML）。
//
// 规则：
// - 字符串去空白；演员去重并保持输入顺序，<order> 从 0 开始
// - 没有导演时不输出 <director>
func Encode(m domain.Movie) ([]byte, error) {
	title := strings.TrimSpace(m.Title)
	if title == "" {
		return nil, fmt.Errorf("title 不能为空")
	}

	out := movie{
		Title:     title,
		SortTitle: sortTitle(title),
		Year:      m.Year,
	}
	if d := strings.TrimSpace(m.Director); d != "" {
		out.Directors = []string{d}
	}

	actors := normList(m.Actors)
	if len(actors) > 0 {
		out.Actors = make([]actor, 0, len(actors))
		for i, a := range actors {
			order := i
			out.Actors = append(out.Actors, actor{Name: a, Order: &order})
		}
	}

	b, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	// 约定：输出带 standalone="yes" 的 XML 头，便于与常见刮削器产物兼容。
	const header = `<?xml version="1.0" encoding="UTF-8" standalone="yes" ?>` + "\n"
	return append([]byte(header), b...), nil
}

// Decode 解析一个 <movie> NFO。
//
// 兼容刮削器的常见写法：
// - <year> 缺失时回退到 <premiered> 的前 4 位
// - 多个 <director> 只取第一个非空值
// - 有 <order> 的演员按 order 排在前面，其余按文档顺序排在后面
func Decode(b []byte) (domain.Movie, error) {
	var in movie
	dec := xml.NewDecoder(bytes.NewReader(b))
	// 刮削器产物偶尔带非 UTF-8 声明；内容本身按 UTF-8 读取。
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	if err := dec.Decode(&in); err != nil {
		return domain.Movie{}, err
	}

	m := domain.Movie{
		Title: strings.TrimSpace(in.Title),
		Year:  in.Year,
	}
	if m.Year == 0 {
		if p := strings.TrimSpace(in.Premiered); len(p) >= 4 {
			if y, err := strconv.Atoi(p[:4]); err == nil {
				m.Year = y
			}
		}
	}
	for _, d := range in.Directors {
		if d = strings.TrimSpace(d); d != "" {
			m.Director = d
			break
		}
	}

	sortActors(in.Actors)
	names := make([]string, 0, len(in.Actors))
	for _, a := range in.Actors {
		names = append(names, a.Name)
	}
	m.Actors = normList(names)
	return m, nil
}

// DirName 返回电影在媒体库中的目录名："Title (Year)"，去掉路径不安全字符。
func DirName(m domain.Movie) string {
	title := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, strings.TrimSpace(m.Title))
	title = strings.Trim(title, ". ")
	if title == "" {
		title = "untitled"
	}
	if m.Year > 0 {
		return fmt.Sprintf("%s (%d)", title, m.Year)
	}
	return title
}

// WriteLibrary 把 movies 写成 <root>/<DirName>/movie.nfo，已存在则覆盖；返回写入的文件数。
//
// 两部电影映射到同一目录时报错，避免静默覆盖。
func WriteLibrary(root string, movies []domain.Movie) (int, error) {
	seen := make(map[string]string, len(movies))
	for _, m := range movies {
		dir := DirName(m)
		key := strings.ToLower(dir)
		if prev, ok := seen[key]; ok {
			return 0, fmt.Errorf("目录冲突：%q 与 %q 都映射到 %q", prev, m.Title, dir)
		}
		seen[key] = m.Title
	}

	n := 0
	for _, m := range movies {
		b, err := Encode(m)
		if err != nil {
			return n, fmt.Errorf("%q：%w", m.Title, err)
		}
		if err := fsx.WriteFileAtomicReplace(filepath.Join(root, DirName(m)), FileName, b); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// sortTitle 去掉英文冠词，媒体库按它排序。
func sortTitle(title string) string {
	lower := strings.ToLower(title)
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(lower, art) && len(title) > len(art) {
			return title[len(art):]
		}
	}
	return ""
}

func sortActors(as []actor) {
	key := func(a actor) int {
		if a.Order == nil {
			return math.MaxInt
		}
		return *a.Order
	}
	sort.SliceStable(as, func(i, j int) bool { return key(as[i]) < key(as[j]) })
}

func normList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := m[s]; ok {
			continue
		}
		m[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

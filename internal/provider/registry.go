package provider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/John-Robertt/moviechat/internal/catalog"
)

// Registry 是数据源的只读注册表（按 name 索引）。
// 数据源数量极小，map 足够。
type Registry struct {
	byName map[string]catalog.Catalog
}

func NewRegistry(sources ...catalog.Catalog) (Registry, error) {
	byName := make(map[string]catalog.Catalog, len(sources))
	for _, c := range sources {
		if c == nil {
			return Registry{}, fmt.Errorf("source 不能为空")
		}
		name := strings.ToLower(strings.TrimSpace(c.Name()))
		if name == "" {
			return Registry{}, fmt.Errorf("source.Name 不能为空")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("重复的 source：%q", name)
		}
		byName[name] = c
	}
	return Registry{byName: byName}, nil
}

func (r Registry) Get(name string) (catalog.Catalog, bool) {
	if r.byName == nil {
		return nil, false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	c, ok := r.byName[name]
	return c, ok
}

// Names 返回已注册的 source 名称（已排序）。
func (r Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

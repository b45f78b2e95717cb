package provider

import (
	"testing"

	"github.com/John-Robertt/moviechat/internal/catalog"
	"github.com/John-Robertt/moviechat/internal/domain"
)

func TestRegistry_GetIsCaseInsensitive(t *testing.T) {
	reg, err := NewRegistry(catalog.Default())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	c, ok := reg.Get("  LOCAL ")
	if !ok || c.Name() != "local" {
		t.Fatalf("期望命中 local，实际 ok=%v", ok)
	}
	if _, ok := reg.Get("tmdb"); ok {
		t.Fatalf("未注册的 source 不应命中")
	}
}

func TestRegistry_RejectDuplicate(t *testing.T) {
	other, err := catalog.NewStore("Local", []domain.Movie{{Title: "x", Year: 2000}})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, err := NewRegistry(catalog.Default(), other); err == nil {
		t.Fatalf("期望重复 source 报错，但得到 nil")
	}
}

func TestRegistry_RejectNil(t *testing.T) {
	if _, err := NewRegistry(nil); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestRegistry_ZeroValue(t *testing.T) {
	var reg Registry
	if _, ok := reg.Get("local"); ok {
		t.Fatalf("零值 Registry 不应命中")
	}
	if n := len(reg.Names()); n != 0 {
		t.Fatalf("期望 0 个名称，实际 %d", n)
	}
}

func TestHTTPStatusError_Message(t *testing.T) {
	e := &HTTPStatusError{StatusCode: 401, Message: "Invalid API key"}
	if e.Error() != "HTTP 401: Invalid API key" {
		t.Fatalf("错误信息不符合预期：%q", e.Error())
	}
	if !e.Unauthorized() {
		t.Fatalf("401 应视为鉴权失败")
	}
	if (&HTTPStatusError{StatusCode: 500}).Error() != "HTTP 500" {
		t.Fatalf("无 message 时只输出状态码")
	}
}

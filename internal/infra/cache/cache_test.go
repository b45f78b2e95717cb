package cache

import (
	"errors"
	"os"
	"testing"
)

func TestStore_ReadWrite(t *testing.T) {
	root := t.TempDir()
	key := Key("/search/movie", "query=inception")

	s := New(root, false)
	if err := s.Write("tmdb", key, []byte(`{"results":[]}`)); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, ok, err := s.Read("tmdb", key)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !ok {
		t.Fatalf("期望命中缓存，但 ok=false")
	}
	if string(b) != `{"results":[]}` {
		t.Fatalf("内容不一致：%q", string(b))
	}

	path, err := s.Path("tmdb", key)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("期望文件存在，但 Stat 失败：%v", err)
	}
}

func TestStore_ReadOnlyRejectWrite(t *testing.T) {
	root := t.TempDir()
	key := Key("/discover/movie")

	s := New(root, true)
	err := s.Write("tmdb", key, []byte(`{}`))
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("期望 ErrReadOnly，实际：%v", err)
	}

	path, err := s.Path("tmdb", key)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("期望文件不存在，但 Stat err=%v", err)
	}
}

func TestStore_DisabledIsNoop(t *testing.T) {
	s := New("  ", false)
	if s.Enabled() {
		t.Fatalf("Root 为空时应禁用")
	}
	if err := s.Write("tmdb", Key("x"), []byte("x")); err != nil {
		t.Fatalf("禁用时写入应直接忽略，实际：%v", err)
	}
	if _, ok, err := s.Read("tmdb", Key("x")); ok || err != nil {
		t.Fatalf("禁用时读取应 miss，实际 ok=%v err=%v", ok, err)
	}
}

func TestStore_RejectTraversal(t *testing.T) {
	s := New(t.TempDir(), false)
	if err := s.Write("../x", Key("x"), []byte("x")); err == nil {
		t.Fatalf("期望非法名称报错，但得到 nil")
	}
}

func TestKey_StableAndSeparated(t *testing.T) {
	if Key("a", "b") != Key("a", "b") {
		t.Fatalf("相同输入应得到相同 key")
	}
	if Key("ab", "") == Key("a", "b") {
		t.Fatalf("分段不同应得到不同 key")
	}
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/moviechat/internal/infra/fsx"
)

// Store 提供 <root>/<source>/ 下的响应缓存读写。
//
// 约束：
// - ReadOnly=true：只允许读（cache_mode=read）
// - Root 为空：视为禁用，读永远 miss、写直接忽略
type Store struct {
	Root     string
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(root string, readOnly bool) Store {
	root = strings.TrimSpace(root)
	if root != "" {
		root = filepath.Clean(root)
	}
	return Store{
		Root:     root,
		ReadOnly: readOnly,
	}
}

// Enabled 报告缓存是否启用。
func (s Store) Enabled() bool { return s.Root != "" }

// Key 把请求的组成部分（path、规范化后的 query 等）哈希为稳定的文件名。
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// Path 返回缓存条目的绝对路径。
func (s Store) Path(source, key string) (string, error) {
	src, err := cleanName(source)
	if err != nil {
		return "", err
	}
	k, err := cleanName(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Root, src, k+".json"), nil
}

func (s Store) Read(source, key string) ([]byte, bool, error) {
	if !s.Enabled() {
		return nil, false, nil
	}
	path, err := s.Path(source, key)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s Store) Write(source, key string, body []byte) error {
	if !s.Enabled() {
		return nil
	}
	if s.ReadOnly {
		return ErrReadOnly
	}
	src, err := cleanName(source)
	if err != nil {
		return err
	}
	k, err := cleanName(key)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomicReplace(filepath.Join(s.Root, src), k+".json", body)
}

var nameRE = regexp.MustCompile(`^[a-z0-9_]+$`)

func cleanName(p string) (string, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return "", fmt.Errorf("缓存名称不能为空")
	}
	// 最小约束：避免路径穿越。
	if !nameRE.MatchString(p) {
		return "", fmt.Errorf("非法缓存名称：%q", p)
	}
	return p, nil
}

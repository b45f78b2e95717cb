package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// File 是扫描得到的一个文件。
type File struct {
	AbsPath string
	RelPath string
}

// Files 扫描 root 下扩展名属于 exts 的文件（大小写不敏感，如 ".nfo"）。
//
// 规则（硬约束）：
// - 隐藏目录（以 '.' 开头，root 本身除外）整体跳过
// - excludeDirs 均视为相对 root 的路径（若是绝对路径，则按绝对路径处理）
//
// 结果按 RelPath 排序。
func Files(root string, exts []string, excludeDirs []string) ([]File, error) {
	root = filepath.Clean(root)
	excluded := buildExcluded(root, excludeDirs)

	want := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		want[strings.ToLower(e)] = struct{}{}
	}

	files := make([]File, 0, 64)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || isExcluded(path, excluded)) {
				return filepath.SkipDir
			}
			return nil
		}
		if isExcluded(path, excluded) {
			return nil
		}

		if _, ok := want[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, File{AbsPath: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 强制稳定输出，避免不同平台/文件系统行为差异带来的不确定性。
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		// x 是相对路径：相对 root。
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, base+sep)
}

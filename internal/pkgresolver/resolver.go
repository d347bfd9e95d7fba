package pkgresolver

import (
	"fmt"
	"go/build"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// PackageNameResolver 将导入路径解析为真实包名
//
// 查找顺序：缓存 → 项目内部包 → 标准库 → GOMODCACHE → 根据路径推断
type PackageNameResolver struct {
	projectRoot string

	moduleOnce sync.Once
	modulePath string

	mu    sync.RWMutex
	cache map[string]string
}

// NewPackageNameResolver 创建解析器，projectRoot 为包含 go.mod 的目录，可以为空
func NewPackageNameResolver(projectRoot string) *PackageNameResolver {
	return &PackageNameResolver{
		projectRoot: projectRoot,
		cache:       make(map[string]string),
	}
}

// GetPackageName 获取导入路径对应的真实包名
//
//	"fmt"                        → "fmt"
//	"net/http"                   → "http"
//	"github.com/samber/lo"       → "lo"
//	"gopkg.in/yaml.v3"           → "yaml"
//	"github.com/foo/bar/v2"      → "bar"（找不到源码时按路径推断）
//
// 找不到包源码时不返回错误，按路径推断包名
func (r *PackageNameResolver) GetPackageName(importPath string) (string, error) {
	if importPath == "" {
		return "", fmt.Errorf("导入路径为空")
	}

	r.mu.RLock()
	name, ok := r.cache[importPath]
	r.mu.RUnlock()
	if ok {
		return name, nil
	}

	name = GuessPackageName(importPath)
	if dir, err := r.locate(importPath); err == nil {
		if actual, err := readPackageName(dir); err == nil {
			name = actual
		}
	}

	r.mu.Lock()
	r.cache[importPath] = name
	r.mu.Unlock()
	return name, nil
}

// ModulePath 返回项目 go.mod 中声明的模块路径
func (r *PackageNameResolver) ModulePath() string {
	r.moduleOnce.Do(func() {
		if r.projectRoot == "" {
			return
		}
		r.modulePath, _ = readModulePath(filepath.Join(r.projectRoot, "go.mod"))
	})
	return r.modulePath
}

// locate 返回导入路径对应的磁盘目录
func (r *PackageNameResolver) locate(importPath string) (string, error) {
	if mod := r.ModulePath(); mod != "" {
		if importPath == mod {
			return r.projectRoot, nil
		}
		if rel, ok := strings.CutPrefix(importPath, mod+"/"); ok {
			return filepath.Join(r.projectRoot, filepath.FromSlash(rel)), nil
		}
	}

	if IsStdLib(importPath) {
		dir := filepath.Join(build.Default.GOROOT, "src", filepath.FromSlash(importPath))
		if isDir(dir) {
			return dir, nil
		}
		return "", fmt.Errorf("标准库 %s 不存在", importPath)
	}

	return findInModCache(importPath)
}

// IsStdLib 判断导入路径是否属于标准库：第一段不包含点
func IsStdLib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}

var (
	majorVersionRegex = regexp.MustCompile(`^v[0-9]+$`)
	gopkgInRegex      = regexp.MustCompile(`\.v[0-9]+$`)
)

// GuessPackageName 仅根据导入路径推断包名
func GuessPackageName(importPath string) string {
	parts := strings.Split(importPath, "/")
	name := parts[len(parts)-1]
	// github.com/foo/bar/v2 → bar
	if majorVersionRegex.MatchString(name) && len(parts) > 1 {
		name = parts[len(parts)-2]
	}
	// gopkg.in/yaml.v3 → yaml
	name = gopkgInRegex.ReplaceAllString(name, "")
	// go-difflib → difflib, sqlx-go → sqlx
	name = strings.TrimPrefix(name, "go-")
	name = strings.TrimSuffix(name, "-go")
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, ".", "")
	return name
}

// findInModCache 在 GOMODCACHE 中查找第三方包目录
func findInModCache(importPath string) (string, error) {
	modCache := os.Getenv("GOMODCACHE")
	if modCache == "" {
		goPath := os.Getenv("GOPATH")
		if goPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("无法获取用户主目录: %w", err)
			}
			goPath = filepath.Join(home, "go")
		}
		modCache = filepath.Join(goPath, "pkg", "mod")
	}

	parts := strings.Split(importPath, "/")
	for i := len(parts); i >= 1; i-- {
		modulePath := strings.Join(parts[:i], "/")
		matches, err := filepath.Glob(filepath.Join(modCache, filepath.FromSlash(encodeModulePath(modulePath))+"@*"))
		if err != nil || len(matches) == 0 {
			continue
		}
		// 字典序最大的版本通常最新
		sort.Strings(matches)
		dir := filepath.Join(matches[len(matches)-1], filepath.FromSlash(path.Join(parts[i:]...)))
		if isDir(dir) {
			return dir, nil
		}
	}
	return "", fmt.Errorf("未找到第三方包 %s", importPath)
}

// encodeModulePath 模块缓存中大写字母编码为 ! 加小写
//
//	github.com/Xuanwo/gg → github.com/!xuanwo/gg
func encodeModulePath(p string) string {
	var sb strings.Builder
	for _, c := range p {
		if c >= 'A' && c <= 'Z' {
			sb.WriteByte('!')
			c += 'a' - 'A'
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// readPackageName 读取目录中第一个非测试 Go 文件的 package 声明
func readPackageName(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("读取目录失败 %s: %w", dir, err)
	}
	fset := token.NewFileSet()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.PackageClauseOnly)
		if err != nil || f.Name == nil {
			continue
		}
		return f.Name.Name, nil
	}
	return "", fmt.Errorf("目录 %s 中没有找到 Go 源文件", dir)
}

// readModulePath 读取 go.mod 的 module 行
func readModulePath(goModPath string) (string, error) {
	content, err := os.ReadFile(goModPath)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "module "); ok {
			return strings.Trim(strings.TrimSpace(rest), `"`), nil
		}
	}
	return "", fmt.Errorf("未在 go.mod 中找到模块名称")
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

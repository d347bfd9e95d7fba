package declparse

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/donutnomad/typeutils/internal/pkgresolver"
)

// PackageResolver 包名解析器接口
type PackageResolver interface {
	GetPackageName(importPath string) (string, error)
}

// ParseContext 解析上下文，持有包名解析器
type ParseContext struct {
	resolver     PackageResolver
	projectRoot  string
	resolverOnce sync.Once
}

// NewParseContext 创建解析上下文，项目根目录从工作目录向上查找 go.mod
func NewParseContext() *ParseContext {
	root, _ := findProjectRoot()
	return &ParseContext{projectRoot: root}
}

// NewParseContextWithRoot 创建解析上下文（指定项目根目录）
func NewParseContextWithRoot(projectRoot string) *ParseContext {
	return &ParseContext{projectRoot: projectRoot}
}

// NewParseContextWithResolver 创建解析上下文（指定 PackageResolver，用于测试）
func NewParseContextWithResolver(resolver PackageResolver) *ParseContext {
	return &ParseContext{resolver: resolver}
}

// Resolver 获取包名解析器（延迟初始化）
func (c *ParseContext) Resolver() PackageResolver {
	c.resolverOnce.Do(func() {
		if c.resolver == nil {
			c.resolver = pkgresolver.NewPackageNameResolver(c.projectRoot)
		}
	})
	return c.resolver
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindProjectRoot(dir)
}

// FindProjectRoot 从 startDir 向上查找包含 go.mod 的目录
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("未找到项目根目录（go.mod文件）从 %s 开始", startDir)
		}
		dir = parent
	}
}

package declparse

import (
	"go/token"

	"github.com/donutnomad/typeutils/typeutils"
)

// ImportInfo 导入信息
type ImportInfo struct {
	Alias       string // 显式别名（如果有）
	PackageName string // 真实包名（从 package 声明读取）
	ImportPath  string // 完整导入路径
}

// TypeInfo 一个类型声明的解析结果
type TypeInfo struct {
	Name        string
	PackageName string
	FilePath    string
	Pos         token.Position

	TypeParams     typeutils.Generics // 原始类型的类型参数
	Underlying     string             // 类型表达式原文，枚举生成时复用
	UnderlyingRefs []string           // Underlying 中引用的包标识符
	Shape          typeutils.Shape

	// Imports 源文件中的导入，key 为源码中使用的包标识符
	Imports map[string]*ImportInfo
}

// Import 按源码中的包标识符查找导入
func (t *TypeInfo) Import(ident string) (*ImportInfo, bool) {
	info, ok := t.Imports[ident]
	return info, ok
}

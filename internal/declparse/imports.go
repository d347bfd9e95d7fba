package declparse

import (
	"go/ast"
	"strconv"

	"github.com/donutnomad/typeutils/internal/pkgresolver"
)

// extractImports 提取文件中的导入信息，key 为源码中引用该包使用的标识符
// 空白导入和点导入不会出现在类型表达式的包前缀中，直接跳过
func (c *ParseContext) extractImports(file *ast.File) map[string]*ImportInfo {
	imports := make(map[string]*ImportInfo)
	resolver := c.Resolver()

	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}

		var alias string
		if imp.Name != nil {
			alias = imp.Name.Name
			if alias == "_" || alias == "." {
				continue
			}
		}

		var packageName string
		if resolver != nil {
			packageName, _ = resolver.GetPackageName(importPath)
		}
		if packageName == "" {
			packageName = pkgresolver.GuessPackageName(importPath)
		}

		ident := alias
		if ident == "" {
			ident = packageName
		}
		imports[ident] = &ImportInfo{
			Alias:       alias,
			PackageName: packageName,
			ImportPath:  importPath,
		}
	}

	return imports
}

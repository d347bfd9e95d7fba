package declparse

import (
	"go/ast"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/donutnomad/typeutils/typeutils"
)

// collectVariants 收集同目录同包文件中类型为 typeName 的常量
//
// 以下三种写法都算作枚举值：
//
//	StatusActive Status = 1     // 显式类型
//	StatusFrozen                // const 块中隐式重复上一行的类型和表达式
//	StatusBanned = Status(3)    // 类型转换
//
// 文件按名称排序，文件内按声明顺序。
func collectVariants(filename, pkgName, typeName string) ([]typeutils.Variant, error) {
	dir := filepath.Dir(filename)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)

	var variants []typeutils.Variant
	for _, path := range files {
		s, err := parseSource(path)
		if err != nil {
			// 同包其他文件解析失败不影响当前类型
			if path == filename {
				return nil, err
			}
			continue
		}
		if s.file.Name.Name != pkgName {
			continue
		}
		variants = append(variants, constVariants(s, typeName)...)
	}
	return variants, nil
}

func constVariants(s *source, typeName string) []typeutils.Variant {
	var variants []typeutils.Variant
	for _, decl := range s.file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.CONST {
			continue
		}

		var (
			prevType   ast.Expr
			prevValues []ast.Expr
		)
		for _, spec := range genDecl.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}

			typ, values, implicit := vs.Type, vs.Values, false
			if typ == nil && len(values) == 0 {
				typ, values, implicit = prevType, prevValues, true
			} else {
				prevType, prevValues = typ, values
			}

			for i, name := range vs.Names {
				if name.Name == "_" {
					continue
				}
				var value ast.Expr
				if i < len(values) {
					value = values[i]
				}
				if !isTypeRef(typ, typeName) && (typ != nil || !isConversion(value, typeName)) {
					continue
				}

				v := typeutils.Variant{Name: name.Name}
				if !implicit && value != nil {
					v.Value = s.text(value)
				}
				doc := vs.Doc
				if doc == nil && len(genDecl.Specs) == 1 {
					doc = genDecl.Doc
				}
				v.Doc = commentLines(doc)
				v.Comment = strings.Join(commentLines(vs.Comment), " ")
				variants = append(variants, v)
			}
		}
	}
	return variants
}

func isTypeRef(expr ast.Expr, typeName string) bool {
	ident, ok := expr.(*ast.Ident)
	return ok && ident.Name == typeName
}

// isConversion 判断表达式是否为 typeName(x)
func isConversion(expr ast.Expr, typeName string) bool {
	call, ok := ast.Unparen(expr).(*ast.CallExpr)
	return ok && len(call.Args) == 1 && isTypeRef(ast.Unparen(call.Fun), typeName)
}

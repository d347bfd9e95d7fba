package declparse

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"strconv"
	"strings"

	"github.com/donutnomad/typeutils/typeutils"
)

// basicTypes 可以作为枚举底层类型的预声明类型
var basicTypes = map[string]bool{
	"bool": true, "string": true, "byte": true, "rune": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
}

// source 已解析的单个文件
type source struct {
	fset *token.FileSet
	file *ast.File
	src  []byte
}

// text 返回节点对应的源码原文
func (s *source) text(node ast.Node) string {
	return string(s.src[s.fset.Position(node.Pos()).Offset:s.fset.Position(node.End()).Offset])
}

func parseSource(filename string) (*source, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析文件失败: %w", err)
	}
	return &source{fset: fset, file: file, src: src}, nil
}

// ParseType 解析指定文件中的类型声明（包级便捷函数）
func ParseType(filename, typeName string) (*TypeInfo, error) {
	return NewParseContext().ParseType(filename, typeName)
}

// ParseType 解析指定文件中的类型声明，并将其归类为 typeutils.Shape
//
//	struct{...}        → 结构体
//	struct{}           → 空结构体
//	[N]T               → 数组
//	基础类型/包外类型   → 枚举，常量从同目录同包的文件中收集
//	其他               → 不支持
func (c *ParseContext) ParseType(filename, typeName string) (*TypeInfo, error) {
	s, err := parseSource(filename)
	if err != nil {
		return nil, err
	}

	spec := findTypeSpec(s.file, typeName)
	if spec == nil {
		return nil, fmt.Errorf("未找到类型 %s", typeName)
	}

	info := &TypeInfo{
		Name:           typeName,
		PackageName:    s.file.Name.Name,
		FilePath:       filename,
		Pos:            s.fset.Position(spec.Name.Pos()),
		Underlying:     s.text(spec.Type),
		UnderlyingRefs: packageRefs(spec.Type),
		Imports:        c.extractImports(s.file),
	}
	if spec.TypeParams != nil && len(spec.TypeParams.List) > 0 {
		info.TypeParams = typeParams(s, spec.TypeParams)
	}

	info.Shape, err = c.classify(s, spec, filename)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func findTypeSpec(file *ast.File, typeName string) *ast.TypeSpec {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			if typeSpec, ok := spec.(*ast.TypeSpec); ok && typeSpec.Name.Name == typeName {
				return typeSpec
			}
		}
	}
	return nil
}

func typeParams(s *source, list *ast.FieldList) typeutils.Generics {
	open := s.fset.Position(list.Opening).Offset
	closing := s.fset.Position(list.Closing).Offset
	g := typeutils.Generics{Raw: strings.TrimSpace(string(s.src[open+1 : closing]))}
	for _, field := range list.List {
		for _, name := range field.Names {
			g.Params = append(g.Params, name.Name)
		}
	}
	return g
}

func (c *ParseContext) classify(s *source, spec *ast.TypeSpec, filename string) (typeutils.Shape, error) {
	if spec.Assign.IsValid() {
		return typeutils.UnsupportedShape("类型别名"), nil
	}

	switch t := ast.Unparen(spec.Type).(type) {
	case *ast.StructType:
		fields := structFields(s, t)
		if len(fields) == 0 {
			return typeutils.UnitShape(), nil
		}
		return typeutils.RecordShape(fields...), nil

	case *ast.ArrayType:
		if t.Len == nil {
			return typeutils.UnsupportedShape("切片类型"), nil
		}
		return typeutils.TupleShape(arrayLen(t.Len)), nil

	case *ast.Ident, *ast.SelectorExpr:
		variants, err := collectVariants(filename, s.file.Name.Name, spec.Name.Name)
		if err != nil {
			return typeutils.Shape{}, err
		}
		if ident, ok := t.(*ast.Ident); ok && !basicTypes[ident.Name] && len(variants) == 0 {
			return typeutils.UnsupportedShape(fmt.Sprintf("基于 %s 定义且没有常量的类型", ident.Name)), nil
		}
		return typeutils.UnionShape(variants...), nil

	case *ast.InterfaceType:
		return typeutils.UnsupportedShape("接口"), nil
	case *ast.FuncType:
		return typeutils.UnsupportedShape("函数类型"), nil
	case *ast.MapType:
		return typeutils.UnsupportedShape("map 类型"), nil
	case *ast.ChanType:
		return typeutils.UnsupportedShape("channel 类型"), nil
	case *ast.StarExpr:
		return typeutils.UnsupportedShape("指针类型"), nil
	case *ast.IndexExpr, *ast.IndexListExpr:
		return typeutils.UnsupportedShape("泛型实例化类型"), nil
	default:
		return typeutils.UnsupportedShape("不支持的类型表达式"), nil
	}
}

// arrayLen 解析数组长度字面量，常量表达式无法求值时返回 -1
func arrayLen(expr ast.Expr) int {
	lit, ok := ast.Unparen(expr).(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return -1
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(lit.Value, "_", ""), 0, 64)
	if err != nil {
		return -1
	}
	return int(n)
}

// structFields 提取结构体字段，空白字段 _ 被跳过
func structFields(s *source, st *ast.StructType) []typeutils.Field {
	if st.Fields == nil {
		return nil
	}
	var fields []typeutils.Field
	for _, f := range st.Fields.List {
		base := typeutils.Field{
			Type:    s.text(f.Type),
			Refs:    packageRefs(f.Type),
			Doc:     commentLines(f.Doc),
			Comment: strings.Join(commentLines(f.Comment), " "),
		}
		if f.Tag != nil {
			base.Tag = f.Tag.Value
		}

		if len(f.Names) == 0 {
			field := base
			field.Name = embeddedName(f.Type)
			field.Visibility = typeutils.VisibilityOf(field.Name)
			field.Embedded = true
			fields = append(fields, field)
			continue
		}
		for _, name := range f.Names {
			if name.Name == "_" {
				continue
			}
			field := base
			field.Name = name.Name
			field.Visibility = typeutils.VisibilityOf(name.Name)
			fields = append(fields, field)
		}
	}
	return fields
}

// embeddedName 嵌入字段的字段名为类型名
//
//	Base → Base, *Base → Base, gorm.Model → Model, Page[T] → Page
func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	case *ast.ParenExpr:
		return embeddedName(t.X)
	default:
		return ""
	}
}

// packageRefs 收集类型表达式中引用的包标识符，按出现顺序去重
func packageRefs(expr ast.Expr) []string {
	var refs []string
	seen := make(map[string]bool)
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := sel.X.(*ast.Ident); ok && !seen[ident.Name] {
			seen[ident.Name] = true
			refs = append(refs, ident.Name)
		}
		return false
	})
	return refs
}

// commentLines 返回注释内容，去掉 // 前缀
func commentLines(cg *ast.CommentGroup) []string {
	if cg == nil {
		return nil
	}
	var lines []string
	for _, c := range cg.List {
		text := strings.TrimPrefix(c.Text, "//")
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
		lines = append(lines, strings.TrimSpace(text))
	}
	return lines
}

package pickgen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/donutnomad/gg"
	"github.com/donutnomad/typeutils/internal/declparse"
	"github.com/donutnomad/typeutils/internal/utils"
	"github.com/donutnomad/typeutils/typeutils"
	"github.com/samber/lo"
)

// buildDefinition 为同一输出文件的所有类型生成 gg 定义
func buildDefinition(outputs []*typeOutput) *gg.Generator {
	gen := gg.New()
	gen.SetPackage(outputs[0].info.PackageName)
	group := gen.Body()

	imports := make(map[string]*declparse.ImportInfo)
	addImports := func(info *declparse.TypeInfo, refs []string) {
		for _, ref := range refs {
			if imp, ok := info.Import(ref); ok {
				imports[imp.ImportPath] = imp
			}
		}
	}

	for _, out := range outputs {
		for _, decl := range out.decls {
			switch decl.Shape.Kind {
			case typeutils.KindRecord:
				buildStruct(group, out.info, decl)
				for _, f := range decl.Shape.Fields {
					addImports(out.info, f.Refs)
				}
			case typeutils.KindTaggedUnion:
				buildEnum(group, out.info, decl)
				addImports(out.info, out.info.UnderlyingRefs)
			}
		}
	}

	paths := lo.Keys(imports)
	slices.Sort(paths)
	for _, path := range paths {
		if alias := imports[path].Alias; alias != "" {
			gen.PAlias(path, alias)
		} else {
			gen.P(path)
		}
	}
	return gen
}

// buildDoc 生成类型的文档注释：来源说明，透传注解，能力注解
func buildDoc(group *gg.Group, decl typeutils.TypeDecl) {
	group.Append(gg.LineComment("%s 从 %s %s 生成", decl.Name, decl.Original, decl.Action.Kind))

	// 能力注解总是最后一个
	caps := decl.Capabilities()
	passthrough := decl.Annotations
	if len(caps) > 0 {
		passthrough = passthrough[:len(passthrough)-1]
	}
	for _, ann := range passthrough {
		group.Append(gg.LineComment("%s", ann.String()))
	}
	if len(caps) > 0 {
		group.Append(gg.LineComment("@%s", strings.Join(caps, " @")))
	}
}

// buildStruct 生成结构体定义及 From/New 辅助函数
//
// 字段按原文输出，保留类型、标签、注释和嵌入形式
func buildStruct(group *gg.Group, info *declparse.TypeInfo, decl typeutils.TypeDecl) {
	group.AddLine()
	buildDoc(group, decl)
	group.Append(gg.S("%s", structSource(decl)))

	if !helpersAllowed(info, decl) {
		return
	}
	self := decl.Name + decl.Generics.Use()
	source := info.Name + info.TypeParams.Use()
	buildFromMethod(group, self, source, decl.Shape.Fields)
	buildNewFunction(group, decl, self, source)
}

func structSource(decl typeutils.TypeDecl) string {
	fields := decl.Shape.Fields
	if len(fields) == 0 {
		return fmt.Sprintf("type %s%s struct{}", decl.Name, decl.Generics.Decl())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "type %s%s struct {\n", decl.Name, decl.Generics.Decl())
	for _, f := range fields {
		for _, line := range f.Doc {
			sb.WriteString("\t//")
			if line != "" {
				sb.WriteString(" " + line)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\t")
		if !f.Embedded {
			sb.WriteString(f.Name + " ")
		}
		sb.WriteString(f.Type)
		if f.Tag != "" {
			sb.WriteString(" " + f.Tag)
		}
		if f.Comment != "" {
			sb.WriteString(" // " + f.Comment)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// helpersAllowed 原始类型的每个类型参数都必须出现在生成类型中，否则无法写出 *Orig[T]
func helpersAllowed(info *declparse.TypeInfo, decl typeutils.TypeDecl) bool {
	return lo.Every(decl.Generics.Params, info.TypeParams.Params)
}

// buildFromMethod 生成 From 方法
// func (t *Target) From(src *Source)
func buildFromMethod(group *gg.Group, self, source string, fields []typeutils.Field) {
	group.AddLine()
	group.Append(gg.LineComment("From 从 %s 复制字段值", source))

	fn := group.NewFunction("From").
		WithReceiver("t", "*"+self).
		AddParameter("src", "*"+source)
	for _, f := range fields {
		fn.AddBody(gg.S("t.%s = src.%s", f.Name, f.SourceName()))
	}
}

// buildNewFunction 生成构造函数
// func NewTarget(src *Source) Target
func buildNewFunction(group *gg.Group, decl typeutils.TypeDecl, self, source string) {
	name := constructorName(decl.Name)

	group.AddLine()
	group.Append(gg.LineComment("%s 从 %s 创建 %s", name, source, decl.Name))

	group.NewFunction(name+decl.Generics.Decl()).
		AddParameter("src", "*"+source).
		AddResult("", self).
		AddBody(
			gg.S("var result %s", self),
			gg.S("result.From(src)"),
			gg.Return(gg.S("result")),
		)
}

// constructorName 导出类型为 NewUserBasic，非导出类型为 newUserBasic
func constructorName(typeName string) string {
	if utils.IsExported(typeName) {
		return "New" + typeName
	}
	return "new" + utils.Export(typeName)
}

// buildEnum 生成枚举类型、常量及转换函数
//
//	type LiveStatus int
//	const LiveStatusActive LiveStatus = LiveStatus(StatusActive)
func buildEnum(group *gg.Group, info *declparse.TypeInfo, decl typeutils.TypeDecl) {
	group.AddLine()
	buildDoc(group, decl)
	group.Append(gg.Type(decl.Name, info.Underlying))

	variants := decl.Shape.Variants
	constNames := lo.Map(variants, func(v typeutils.Variant, _ int) string {
		return variantName(info.Name, decl.Name, v.Name)
	})
	if len(variants) > 0 {
		consts := gg.Const()
		for i, v := range variants {
			consts.AddTypedField(constNames[i], decl.Name, gg.S("%s(%s)", decl.Name, v.Name))
		}
		group.AddLine()
		group.Append(consts)
	}

	// Values 列出全部枚举值
	valuesName := decl.Name + "Values"
	group.AddLine()
	group.Append(gg.LineComment("%s 返回 %s 的全部取值", valuesName, decl.Name))
	group.NewFunction(valuesName).
		AddResult("", "[]"+decl.Name).
		AddBody(gg.Return(gg.S("[]%s{%s}", decl.Name, strings.Join(constNames, ", "))))

	if !info.TypeParams.IsEmpty() {
		return
	}

	toName := "To" + utils.Export(info.Name)
	group.AddLine()
	group.Append(gg.LineComment("%s 转换为 %s", toName, info.Name))
	group.NewFunction(toName).
		WithReceiver("v", decl.Name).
		AddResult("", info.Name).
		AddBody(gg.Return(gg.S("%s(v)", info.Name)))

	group.AddLine()
	group.Append(gg.LineComment("From 从 %s 转换，值不属于 %s 时返回 false", info.Name, decl.Name))
	fn := group.NewFunction("From").
		WithReceiver("v", "*"+decl.Name).
		AddParameter("src", info.Name).
		AddResult("", "bool")
	if len(variants) > 0 {
		sw := gg.Switch("src")
		sw.NewCase(gg.S("%s", strings.Join(caseNames(info, variants), ", "))).
			AddBody(
				gg.S("*v = %s(src)", decl.Name),
				gg.Return(gg.S("true")),
			)
		fn.AddBody(sw)
	}
	fn.AddBody(gg.Return(gg.S("false")))
}

// variantName 生成类型中枚举常量的名称
//
//	StatusActive (Status → LiveStatus) → LiveStatusActive
//	Active       (Status → LiveStatus) → LiveStatusActive
func variantName(original, output, variant string) string {
	rest, ok := utils.TrimPrefixName(variant, original)
	if !ok {
		rest, ok = utils.TrimPrefixName(variant, utils.Unexport(original))
	}
	if !ok {
		rest = variant
	}
	return output + utils.Export(rest)
}

// caseNames 返回 From switch 的 case 列表
// 别名常量（如 StatusDefault = StatusActive）与其指向的常量值相同，只保留第一个
func caseNames(info *declparse.TypeInfo, variants []typeutils.Variant) []string {
	values := make(map[string]string, len(info.Shape.Variants))
	for _, v := range info.Shape.Variants {
		values[v.Name] = v.Value
	}
	root := func(name string) string {
		for range len(values) {
			target := aliasTarget(info.Name, values[name])
			if _, ok := values[target]; !ok || target == name {
				break
			}
			name = target
		}
		return name
	}
	names := lo.UniqBy(variants, func(v typeutils.Variant) string { return root(v.Name) })
	return lo.Map(names, func(v typeutils.Variant, _ int) string { return v.Name })
}

// aliasTarget 取出 X 或 Status(X) 形式的常量值中引用的常量名
func aliasTarget(typeName, value string) string {
	value = strings.TrimSpace(value)
	if inner, ok := strings.CutPrefix(value, typeName+"("); ok {
		value = strings.TrimSpace(strings.TrimSuffix(inner, ")"))
	}
	return value
}

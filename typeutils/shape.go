package typeutils

import (
	"github.com/donutnomad/typeutils/internal/utils"
	"github.com/samber/lo"
)

// ShapeKind 原始类型的形状
type ShapeKind int

const (
	KindUnsupported ShapeKind = iota // 接口、函数、map、别名等
	KindRecord                       // 含命名字段的结构体
	KindTuple                        // 定长数组，成员只有位置没有名字
	KindUnit                         // struct{}
	KindTaggedUnion                  // 枚举：基础类型上的具名类型及其常量
)

func (k ShapeKind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindTuple:
		return "tuple"
	case KindUnit:
		return "unit"
	case KindTaggedUnion:
		return "union"
	default:
		return "unsupported"
	}
}

// label 错误信息中使用的中文名称
func (k ShapeKind) label() string {
	switch k {
	case KindRecord:
		return "结构体"
	case KindTuple:
		return "数组类型"
	case KindUnit:
		return "空结构体"
	case KindTaggedUnion:
		return "枚举类型"
	default:
		return "不支持的类型"
	}
}

// memberLabel 成员的中文称呼
func (k ShapeKind) memberLabel() string {
	if k == KindTaggedUnion {
		return "枚举值"
	}
	return "字段"
}

// Visibility 标识符的可见性，在 Go 中由首字母大小写决定
type Visibility int

const (
	VisInherited  Visibility = iota // 未指定，保持原样
	VisExported                     // export
	VisUnexported                   // unexport
)

func (v Visibility) String() string {
	switch v {
	case VisExported:
		return "export"
	case VisUnexported:
		return "unexport"
	default:
		return "inherited"
	}
}

// Apply 按可见性重写标识符大小写
func (v Visibility) Apply(name string) string {
	switch v {
	case VisExported:
		return utils.Export(name)
	case VisUnexported:
		return utils.Unexport(name)
	default:
		return name
	}
}

// VisibilityOf 返回标识符当前的可见性
func VisibilityOf(name string) Visibility {
	if utils.IsExported(name) {
		return VisExported
	}
	return VisUnexported
}

// Field 结构体字段
type Field struct {
	Name       string
	Visibility Visibility
	Type       string   // 类型表达式原文
	Tag        string   // 含反引号的 tag 原文，可为空
	Embedded   bool     // 嵌入字段，Name 为类型名
	Refs       []string // Type 中引用的包标识符
	Doc        []string // 字段文档注释，不含 //
	Comment    string   // 行尾注释，不含 //

	// Source 生成字段改名后记录原字段名，未改名时为空
	Source string
}

// SourceName 返回原始类型中对应的字段名
func (f Field) SourceName() string {
	if f.Source != "" {
		return f.Source
	}
	return f.Name
}

// Variant 枚举值
type Variant struct {
	Name    string
	Value   string // 常量值表达式原文，iota 隐式重复时为空
	Doc     []string
	Comment string
}

// Shape 类型形状，构造后不再修改
type Shape struct {
	Kind     ShapeKind
	Fields   []Field   // KindRecord
	Arity    int       // KindTuple
	Variants []Variant // KindTaggedUnion
	Desc     string    // KindUnsupported 时的描述，如 "接口"
}

func RecordShape(fields ...Field) Shape {
	return Shape{Kind: KindRecord, Fields: fields}
}

func TupleShape(arity int) Shape {
	return Shape{Kind: KindTuple, Arity: arity}
}

func UnitShape() Shape {
	return Shape{Kind: KindUnit}
}

func UnionShape(variants ...Variant) Shape {
	return Shape{Kind: KindTaggedUnion, Variants: variants}
}

func UnsupportedShape(desc string) Shape {
	return Shape{Kind: KindUnsupported, Desc: desc}
}

// MemberNames 返回具名成员的名称，按声明顺序
func (s Shape) MemberNames() []string {
	switch s.Kind {
	case KindRecord:
		return lo.Map(s.Fields, func(f Field, _ int) string { return f.Name })
	case KindTaggedUnion:
		return lo.Map(s.Variants, func(v Variant, _ int) string { return v.Name })
	default:
		return nil
	}
}

// HasMember 判断是否存在指定名称的成员
func (s Shape) HasMember(name string) bool {
	return lo.Contains(s.MemberNames(), name)
}

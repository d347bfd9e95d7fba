package typeutils

import (
	"go/token"
	"strings"
)

// 注解名称
const (
	AnnotationPick   = "Pick"
	AnnotationOmit   = "Omit"
	AnnotationDerive = "Derive"
)

// Annotation 类型文档注释中的一个注解，如 @Pick(UserBasic {ID, Name})
type Annotation struct {
	Name     string
	Args     string // 括号内的原文
	HasArgs  bool   // 是否带括号
	Unclosed bool   // 括号未闭合
	Raw      string // 注解原文，含 @

	Pos     token.Position // @ 的位置
	ArgsPos token.Position // Args 第一个字符的位置
}

func (a Annotation) String() string {
	if a.Raw != "" {
		return a.Raw
	}
	if !a.HasArgs {
		return "@" + a.Name
	}
	return "@" + a.Name + "(" + a.Args + ")"
}

// ActionKind 操作类型
type ActionKind int

const (
	ActionPick ActionKind = iota + 1 // 保留选中的成员
	ActionOmit                       // 去掉选中的成员
)

func (k ActionKind) String() string {
	switch k {
	case ActionPick:
		return AnnotationPick
	case ActionOmit:
		return AnnotationOmit
	default:
		return "unknown"
	}
}

// Generics 生成类型的类型参数
type Generics struct {
	Raw    string   // 方括号内的原文，如 "T any, K comparable"
	Params []string // 参数名，如 [T K]
}

// IsEmpty 是否没有类型参数
func (g Generics) IsEmpty() bool {
	return len(g.Params) == 0
}

// Decl 声明形式 [T any, K comparable]，无参数时为空
func (g Generics) Decl() string {
	if g.IsEmpty() {
		return ""
	}
	return "[" + g.Raw + "]"
}

// Use 实例化形式 [T, K]，无参数时为空
func (g Generics) Use() string {
	if g.IsEmpty() {
		return ""
	}
	return "[" + strings.Join(g.Params, ", ") + "]"
}

// SelectedMember 选择列表中的一项
type SelectedMember struct {
	Name       string
	Visibility Visibility // 仅 Pick 结构体时生效
	Pos        token.Position
}

// Selection 非空的成员选择列表
type Selection []SelectedMember

// Names 返回选择的成员名
func (s Selection) Names() []string {
	names := make([]string, len(s))
	for i, m := range s {
		names[i] = m.Name
	}
	return names
}

// Lookup 按成员名查找选择项
func (s Selection) Lookup(name string) (SelectedMember, bool) {
	for _, m := range s {
		if m.Name == name {
			return m, true
		}
	}
	return SelectedMember{}, false
}

// Action 一个 @Pick 或 @Omit 注解解析后的结果
type Action struct {
	Kind         ActionKind
	Capabilities []string // 之前的 @Derive 累积的能力
	Name         string   // 注解中书写的类型名
	Visibility   Visibility
	Generics     Generics
	Selection    Selection
	Pos          token.Position
}

// OutputName 按可见性修正后的输出类型名
func (a Action) OutputName() string {
	return a.Visibility.Apply(a.Name)
}

// Decl 待处理的原始类型声明
type Decl struct {
	Name        string
	Pos         token.Position
	Shape       Shape
	Annotations []Annotation // 文档注释中的全部注解，按出现顺序
}

// Request 解析后的请求，生命周期为 Parse → Validate → Synthesize
type Request struct {
	Name        string
	Pos         token.Position
	Shape       Shape
	Passthrough []Annotation // 原样复制到每个生成类型的注解
	Actions     []Action     // 至少一个
}

// TypeDecl 生成的类型声明
type TypeDecl struct {
	Name        string
	Visibility  Visibility
	Generics    Generics
	Shape       Shape        // KindRecord 或 KindTaggedUnion
	Annotations []Annotation // 透传注解在前，能力注解最后

	Original string // 原始类型名
	Action   Action
}

// Capabilities 返回生成类型附加的能力，没有时为空
func (d TypeDecl) Capabilities() []string {
	return d.Action.Capabilities
}

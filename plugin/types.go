package plugin

import (
	"cmp"
	"go/ast"
	"go/token"
	"path/filepath"
	"slices"

	"github.com/donutnomad/gg"
)

// TargetKind 表示注解目标的类型
type TargetKind int

const (
	TargetStruct TargetKind = iota + 1 // 结构体
	TargetType                         // 其他具名类型（枚举、数组、别名等）
)

func (k TargetKind) String() string {
	switch k {
	case TargetStruct:
		return "struct"
	case TargetType:
		return "type"
	default:
		return "unknown"
	}
}

// Annotation 表示注释中的一个注解
//
//	@Name
//	@Name(args)
type Annotation struct {
	Name     string // 注解名称，如 "Pick", "Derive"
	Args     string // 括号内的原文
	HasArgs  bool   // 是否带括号
	Unclosed bool   // 括号未闭合，Args 为该行剩余部分
	Raw      string // 原始注解文本，含 @

	Pos     token.Position // @ 所在位置
	ArgsPos token.Position // Args 第一个字符的位置
}

// Target 表示注解的目标
type Target struct {
	Kind        TargetKind
	Name        string
	PackageName string
	FilePath    string
	Position    token.Position

	// AST 节点（可选，用于深度解析）
	Node ast.Node
}

// AnnotatedTarget 表示带注解的目标
// Annotations 是目标文档注释中的全部注解，不只是生成器关心的那些
type AnnotatedTarget struct {
	Target      *Target
	Annotations []*Annotation
}

// ScanResult 表示扫描结果
type ScanResult struct {
	Structs []*AnnotatedTarget // 带注解的结构体
	Types   []*AnnotatedTarget // 带注解的其他类型

	// PackageConfigs 包级配置
	// key: 包目录
	PackageConfigs map[string]*PackageConfig
}

// All 返回所有带注解的目标，按文件路径和位置排序
func (r *ScanResult) All() []*AnnotatedTarget {
	result := make([]*AnnotatedTarget, 0, len(r.Structs)+len(r.Types))
	result = append(result, r.Structs...)
	result = append(result, r.Types...)
	slices.SortStableFunc(result, compareTargets)
	return result
}

func compareTargets(a, b *AnnotatedTarget) int {
	return cmp.Or(
		cmp.Compare(a.Target.FilePath, b.Target.FilePath),
		cmp.Compare(a.Target.Position.Offset, b.Target.Position.Offset),
	)
}

// GenerateContext 生成上下文，传递给 Generator
type GenerateContext struct {
	Targets        []*AnnotatedTarget        // 该 Generator 需要处理的目标
	PackageConfigs map[string]*PackageConfig // 包级配置，key: 包目录
	DefaultOutput  string                    // 命令行指定的默认输出路径（最低优先级）
	Verbose        bool                      // 详细输出
}

// GetPackageConfig 获取文件所在包的配置
func (c *GenerateContext) GetPackageConfig(filePath string) *PackageConfig {
	if c.PackageConfigs == nil {
		return nil
	}
	return c.PackageConfigs[filepath.Dir(filePath)]
}

// GenerateResult 生成结果
// Generator 返回 gg 定义，由聚合器统一处理
type GenerateResult struct {
	// Definitions 是生成的 gg 定义
	// key: 输出文件路径
	Definitions map[string]*gg.Generator

	// Errors 错误列表，单个目标失败不影响其他目标
	Errors []error
}

// PackageConfig 包级生成配置
// 通过 // go:typeutils: 注释定义
// 示例:
//
//	// go:typeutils: -output `$FILE_types`
//	// go:typeutils: plugin:pickgen -output `types_generated`
type PackageConfig struct {
	PackageDir string

	// DefaultOutput 默认输出路径（对所有插件生效）
	DefaultOutput string

	// PluginOutputs 插件特定的输出路径
	// key: 插件名（小写）
	PluginOutputs map[string]string
}

// GetPluginOutput 获取指定插件的输出路径
// 优先返回插件特定配置，其次返回默认配置，最后返回空字符串
func (c *PackageConfig) GetPluginOutput(pluginName string) string {
	if c == nil {
		return ""
	}
	if output, ok := c.PluginOutputs[pluginName]; ok {
		return output
	}
	return c.DefaultOutput
}

// NewGenerateResult 创建新的生成结果
func NewGenerateResult() *GenerateResult {
	return &GenerateResult{
		Definitions: make(map[string]*gg.Generator),
	}
}

// AddDefinition 添加 gg 定义
func (r *GenerateResult) AddDefinition(path string, gen *gg.Generator) {
	if r.Definitions == nil {
		r.Definitions = make(map[string]*gg.Generator)
	}
	r.Definitions[path] = gen
}

// AddError 添加错误
func (r *GenerateResult) AddError(err error) {
	r.Errors = append(r.Errors, err)
}

// HasErrors 检查是否有错误
func (r *GenerateResult) HasErrors() bool {
	return len(r.Errors) > 0
}

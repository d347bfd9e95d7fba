package plugin

import (
	"cmp"
	"strings"
)

// Generator 是代码生成器接口
type Generator interface {
	// Name 返回生成器名称，也用于 go:typeutils: plugin:<name> 配置
	Name() string

	// Annotations 返回该生成器支持的注解列表
	// 一个注解只能绑定一个生成器
	Annotations() []string

	// SupportedTargets 返回支持的目标类型
	SupportedTargets() []TargetKind

	// Usages 返回注解用法说明，用于帮助文本
	Usages() []Usage

	// Priority 返回生成器优先级
	// 数字越小优先级越高，输出合并时优先级高的在前面
	// 默认值为 100
	Priority() int

	// Generate 执行代码生成
	// 返回的 GenerateResult 包含 gg 定义，由聚合器统一处理
	Generate(ctx *GenerateContext) (*GenerateResult, error)
}

// Usage 一条注解用法
type Usage struct {
	Syntax      string // 如 @Pick([export|unexport] Name[T any] {A, B})
	Description string
}

// BaseGenerator 提供基础实现，可嵌入
type BaseGenerator struct {
	name        string
	annotations []string
	targets     []TargetKind
	usages      []Usage
	priority    int // 优先级，数字越小优先级越高
}

func NewBaseGenerator(name string, annotations []string, targets []TargetKind) *BaseGenerator {
	return &BaseGenerator{
		name:        name,
		annotations: annotations,
		targets:     targets,
		priority:    100,
	}
}

func (g *BaseGenerator) Name() string {
	return g.name
}

func (g *BaseGenerator) Annotations() []string {
	return g.annotations
}

func (g *BaseGenerator) SupportedTargets() []TargetKind {
	return g.targets
}

func (g *BaseGenerator) Usages() []Usage {
	return g.usages
}

// AddUsage 添加一条注解用法
func (g *BaseGenerator) AddUsage(syntax, description string) *BaseGenerator {
	g.usages = append(g.usages, Usage{Syntax: syntax, Description: description})
	return g
}

// Priority 返回生成器优先级
func (g *BaseGenerator) Priority() int {
	return g.priority
}

// SetPriority 设置生成器优先级，数字越小优先级越高
func (g *BaseGenerator) SetPriority(priority int) *BaseGenerator {
	g.priority = priority
	return g
}

func compareGenerators(a, b Generator) int {
	return cmp.Or(
		cmp.Compare(a.Priority(), b.Priority()),
		strings.Compare(a.Name(), b.Name()),
	)
}

package pickgen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/typeutils/internal/declparse"
	"github.com/donutnomad/typeutils/plugin"
	"github.com/donutnomad/typeutils/typeutils"
	"github.com/samber/lo"
)

const (
	generatorName = "pickgen"
	defaultOutput = "$FILE_pick.go"
)

// PickGenerator 实现 plugin.Generator 接口
// 同时处理 @Pick、@Omit 和 @Derive 三个注解
type PickGenerator struct {
	plugin.BaseGenerator
}

// NewPickGenerator 创建 Pick 生成器
func NewPickGenerator() *PickGenerator {
	gen := &PickGenerator{
		BaseGenerator: *plugin.NewBaseGenerator(
			generatorName,
			[]string{typeutils.AnnotationPick, typeutils.AnnotationOmit, typeutils.AnnotationDerive},
			[]plugin.TargetKind{plugin.TargetStruct, plugin.TargetType},
		),
	}
	gen.SetPriority(40)
	gen.AddUsage("@Pick([export|unexport] Name[T any] {A, unexport B})", "保留选中的字段或枚举值").
		AddUsage("@Omit([export|unexport] Name[T any] {A, B})", "去掉选中的字段或枚举值").
		AddUsage("@Derive(Cap1, Cap2)", "为下一个 @Pick/@Omit 生成的类型附加 @Cap1 @Cap2")
	return gen
}

// typeOutput 一个原始类型及其生成的全部类型
type typeOutput struct {
	info  *declparse.TypeInfo
	decls []typeutils.TypeDecl
}

// Generate 执行代码生成
// 单个类型出错时记录错误并继续处理其他类型
func (g *PickGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()
	if len(ctx.Targets) == 0 {
		return result, nil
	}

	parseCtx := declparse.NewParseContext()
	fileOutputs := make(map[string][]*typeOutput)

	for _, at := range ctx.Targets {
		out, err := g.process(parseCtx, at, ctx.Verbose)
		if err != nil {
			result.AddError(err)
			continue
		}

		outputPath := plugin.GetOutputPath(at.Target, defaultOutput, ctx.GetPackageConfig(at.Target.FilePath), generatorName, ctx.DefaultOutput)
		fileOutputs[outputPath] = append(fileOutputs[outputPath], out)

		if ctx.Verbose {
			names := lo.Map(out.decls, func(d typeutils.TypeDecl, _ int) string { return d.Name })
			fmt.Printf("[%s] 处理类型 %s -> %s (%s)\n", generatorName, at.Target.Name, strings.Join(names, ", "), outputPath)
		}
	}

	outputPaths := lo.Keys(fileOutputs)
	slices.Sort(outputPaths)
	for _, outputPath := range outputPaths {
		outputs := fileOutputs[outputPath]
		// 按原始类型名称排序
		slices.SortFunc(outputs, func(a, b *typeOutput) int {
			return strings.Compare(a.info.Name, b.info.Name)
		})
		result.AddDefinition(outputPath, buildDefinition(outputs))
	}

	return result, nil
}

// process 解析类型声明并生成全部类型，不渲染
func (g *PickGenerator) process(parseCtx *declparse.ParseContext, at *plugin.AnnotatedTarget, verbose bool) (*typeOutput, error) {
	target := at.Target
	info, err := parseCtx.ParseType(target.FilePath, target.Name)
	if err != nil {
		return nil, fmt.Errorf("%s: 解析类型 %s 失败: %w", target.Position, target.Name, err)
	}

	req, err := typeutils.Parse(typeutils.Decl{
		Name:        info.Name,
		Pos:         info.Pos,
		Shape:       info.Shape,
		Annotations: convertAnnotations(at.Annotations),
	})
	if err != nil {
		return nil, err
	}
	if verbose {
		fmt.Printf("[%s] %s", generatorName, spew.Sdump(req.Actions))
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	decls, err := req.Synthesize()
	if err != nil {
		return nil, err
	}

	for _, decl := range decls {
		if decl.Shape.Kind == typeutils.KindTaggedUnion && !decl.Generics.IsEmpty() {
			return nil, fmt.Errorf("%s: %s 是枚举类型，不支持泛型参数 %s", decl.Action.Pos, decl.Name, decl.Generics.Decl())
		}
	}
	return &typeOutput{info: info, decls: decls}, nil
}

func convertAnnotations(annotations []*plugin.Annotation) []typeutils.Annotation {
	return lo.Map(annotations, func(a *plugin.Annotation, _ int) typeutils.Annotation {
		return typeutils.Annotation{
			Name:     a.Name,
			Args:     a.Args,
			HasArgs:  a.HasArgs,
			Unclosed: a.Unclosed,
			Raw:      a.Raw,
			Pos:      a.Pos,
			ArgsPos:  a.ArgsPos,
		}
	})
}

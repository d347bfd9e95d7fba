package plugin

import (
	"bufio"
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// DirectivePrefix 包级配置指令
const DirectivePrefix = "go:typeutils:"

// generatedSuffixes 生成文件的后缀，扫描时跳过
var generatedSuffixes = []string{"_test.go", "_pick.go", "_gen.go"}

// Scanner 两阶段并行注解扫描器
// 第一阶段：快速文本匹配，找出可能包含注解的文件
// 第二阶段：对匹配的文件进行 AST 解析
type Scanner struct {
	workers int
	verbose bool

	// 注解过滤器（可选）
	annotationFilter []string
}

// ScannerOption 扫描器选项
type ScannerOption func(*Scanner)

func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithScannerVerbose(v bool) ScannerOption {
	return func(s *Scanner) {
		s.verbose = v
	}
}

// WithAnnotationFilter 只保留至少带有其中一个注解的目标
// 目标上的注解列表保持完整，不会被过滤
func WithAnnotationFilter(annotations ...string) ScannerOption {
	return func(s *Scanner) {
		s.annotationFilter = annotations
	}
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// quickMatchRegex 快速匹配注解名
var quickMatchRegex = regexp.MustCompile(`@(\w+)`)

// Scan 扫描指定路径
// 支持: ./... ./pkg/... ./pkg /abs/path/... file.go
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	allFiles, err := s.collectFiles(patterns)
	if err != nil {
		return nil, err
	}

	// ========== 第一阶段：快速匹配 ==========
	matchedFiles := parallel(ctx, s.workers, allFiles, func(file string) (string, bool) {
		matched, err := s.QuickMatchFile(file)
		return file, err == nil && matched
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.verbose {
		fmt.Printf("扫描 %d 个文件，%d 个可能包含注解\n", len(allFiles), len(matchedFiles))
	}

	// ========== 第二阶段：AST 解析 ==========
	parsed := parallel(ctx, s.workers, matchedFiles, func(file string) (*fileResult, bool) {
		r, err := s.parseFile(file)
		if err != nil {
			if s.verbose {
				fmt.Printf("跳过文件 %s: %v\n", file, err)
			}
			return nil, false
		}
		return r, true
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return mergeResults(parsed), nil
}

// parallel 用固定数量的工作者处理输入，返回 fn 第二个返回值为 true 的结果
func parallel[In, Out any](ctx context.Context, workers int, inputs []In, fn func(In) (Out, bool)) []Out {
	if len(inputs) == 0 {
		return nil
	}

	inCh := make(chan In)
	outCh := make(chan Out, len(inputs))

	var wg sync.WaitGroup
	for range max(workers, 1) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for in := range inCh {
				if out, ok := fn(in); ok {
					outCh <- out
				}
			}
		}()
	}

	go func() {
		defer close(inCh)
		for _, in := range inputs {
			select {
			case <-ctx.Done():
				return
			case inCh <- in:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	var outputs []Out
	for out := range outCh {
		outputs = append(outputs, out)
	}
	return outputs
}

// QuickMatchFile 快速检查文件是否包含注解或 go:typeutils: 配置
// 用于 dev 模式判断文件是否需要触发代码生成
func (s *Scanner) QuickMatchFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		// 只检查注释行
		if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "/*") {
			continue
		}

		if strings.Contains(trimmed, DirectivePrefix) {
			return true, nil
		}

		for _, match := range quickMatchRegex.FindAllStringSubmatch(trimmed, -1) {
			if len(s.annotationFilter) == 0 || lo.Contains(s.annotationFilter, match[1]) {
				return true, nil
			}
		}
	}

	return false, scanner.Err()
}

// fileResult 单个文件的解析结果
type fileResult struct {
	structs   []*AnnotatedTarget
	types     []*AnnotatedTarget
	pkgConfig *PackageConfig
}

func mergeResults(results []*fileResult) *ScanResult {
	result := &ScanResult{
		PackageConfigs: make(map[string]*PackageConfig),
	}
	for _, r := range results {
		result.Structs = append(result.Structs, r.structs...)
		result.Types = append(result.Types, r.types...)
		if r.pkgConfig == nil {
			continue
		}

		pkgDir := r.pkgConfig.PackageDir
		existing, ok := result.PackageConfigs[pkgDir]
		if !ok {
			result.PackageConfigs[pkgDir] = r.pkgConfig
			continue
		}
		// 合并配置：如果新配置有值，覆盖旧配置
		if r.pkgConfig.DefaultOutput != "" {
			if existing.DefaultOutput != "" && existing.DefaultOutput != r.pkgConfig.DefaultOutput {
				fmt.Printf("警告: 包 %s 中存在多个不同的 %s 默认输出配置，使用后发现的配置\n", pkgDir, DirectivePrefix)
			}
			existing.DefaultOutput = r.pkgConfig.DefaultOutput
		}
		for k, v := range r.pkgConfig.PluginOutputs {
			if existingV, ok := existing.PluginOutputs[k]; ok && existingV != v {
				fmt.Printf("警告: 包 %s 中插件 %s 存在多个不同的输出配置，使用后发现的配置\n", pkgDir, k)
			}
			existing.PluginOutputs[k] = v
		}
	}

	// 工作者完成顺序不确定，按文件和位置排序保证输出稳定
	slices.SortFunc(result.Structs, compareTargets)
	slices.SortFunc(result.Types, compareTargets)
	return result
}

// parseFile AST 解析单个文件
func (s *Scanner) parseFile(filePath string) (*fileResult, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	if ast.IsGenerated(file) {
		return &fileResult{}, nil
	}

	result := &fileResult{
		pkgConfig: s.parsePackageConfig(file, filePath),
	}
	for _, decl := range file.Decls {
		d, ok := decl.(*ast.GenDecl)
		if !ok || d.Tok != token.TYPE {
			continue
		}
		s.parseTypeDecl(fset, filePath, file.Name.Name, d, result)
	}
	return result, nil
}

// parseTypeDecl 解析类型声明
// 单个类型的注释挂在 GenDecl 上，type ( ... ) 分组内的注释挂在 TypeSpec 上
func (s *Scanner) parseTypeDecl(fset *token.FileSet, filePath, packageName string, decl *ast.GenDecl, result *fileResult) {
	for _, spec := range decl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}

		doc := typeSpec.Doc
		if doc == nil && !decl.Lparen.IsValid() {
			doc = decl.Doc
		}
		annotations := ParseCommentGroup(fset, doc)
		if len(annotations) == 0 {
			continue
		}
		if len(s.annotationFilter) > 0 && len(FilterByNames(annotations, s.annotationFilter...)) == 0 {
			continue
		}

		target := &Target{
			Name:        typeSpec.Name.Name,
			PackageName: packageName,
			FilePath:    filePath,
			Position:    fset.Position(typeSpec.Name.Pos()),
			Node:        typeSpec,
		}
		at := &AnnotatedTarget{Target: target, Annotations: annotations}

		if _, isStruct := typeSpec.Type.(*ast.StructType); isStruct && !typeSpec.Assign.IsValid() {
			target.Kind = TargetStruct
			result.structs = append(result.structs, at)
		} else {
			target.Kind = TargetType
			result.types = append(result.types, at)
		}
	}
}

// collectFiles 收集所有需要扫描的文件
func (s *Scanner) collectFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		if recursive {
			pattern = strings.TrimSuffix(pattern, "/...")
		}

		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if strings.HasSuffix(absPath, ".go") {
				add(absPath)
			}
			continue
		}

		err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == absPath {
					return nil
				}
				name := d.Name()
				if !recursive || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
					name == "vendor" || name == "testdata" {
					return filepath.SkipDir
				}
				return nil
			}
			if IsSourceFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// IsSourceFile 判断是否为需要扫描的 Go 源文件（排除测试文件和生成文件）
func IsSourceFile(path string) bool {
	if !strings.HasSuffix(path, ".go") {
		return false
	}
	return !lo.SomeBy(generatedSuffixes, func(suffix string) bool {
		return strings.HasSuffix(path, suffix)
	})
}

// 默认扫描器
var defaultScanner = NewScanner()

func Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	return defaultScanner.Scan(ctx, patterns...)
}

func ScanWithFilter(ctx context.Context, annotations []string, patterns ...string) (*ScanResult, error) {
	return NewScanner(WithAnnotationFilter(annotations...)).Scan(ctx, patterns...)
}

// directiveRegex 匹配 go:typeutils: 指令
// 支持两种格式：//go:typeutils: 和 // go:typeutils:
var directiveRegex = regexp.MustCompile(`^go:typeutils:\s*(.*)`)

// parsePackageConfig 解析包级 go:typeutils: 配置
// 支持格式:
//
//	//go:typeutils: -output `$FILE_types`
//	// go:typeutils: plugin:pickgen -output `types_generated`
func (s *Scanner) parsePackageConfig(file *ast.File, filePath string) *PackageConfig {
	var lines []string
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimPrefix(c.Text, "//")
			text = strings.TrimPrefix(text, "/*")
			text = strings.TrimSuffix(text, "*/")
			text = strings.TrimSpace(text)

			if matches := directiveRegex.FindStringSubmatch(text); len(matches) > 1 {
				lines = append(lines, matches[1])
			}
		}
	}

	if len(lines) == 0 {
		return nil
	}
	if len(lines) > 1 {
		fmt.Printf("警告: 文件 %s 定义了多个 %s 指令，将被忽略\n", filePath, DirectivePrefix)
		return nil
	}

	return parseDirectiveLine(lines[0], filePath)
}

// parseDirectiveLine 解析单行 go:typeutils: 配置
// 格式:
//
//	-output `xxx`                         // 默认输出
//	plugin:pickgen -output `xxx`          // 插件特定输出
func parseDirectiveLine(line string, filePath string) *PackageConfig {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	config := &PackageConfig{
		PackageDir:    filepath.Dir(filePath),
		PluginOutputs: make(map[string]string),
	}

	parts := splitDirectiveArgs(line)
	var currentPlugin string
	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "plugin:") {
			currentPlugin = strings.ToLower(strings.TrimPrefix(part, "plugin:"))
		} else if part == "-output" && i+1 < len(parts) {
			i++
			output := trimQuotes(parts[i])
			if currentPlugin == "" {
				config.DefaultOutput = output
			} else {
				config.PluginOutputs[currentPlugin] = output
			}
		}
	}

	if config.DefaultOutput == "" && len(config.PluginOutputs) == 0 {
		return nil
	}
	return config
}

// splitDirectiveArgs 按空白分割指令参数，引号内的空白保留
func splitDirectiveArgs(line string) []string {
	var parts []string
	var current strings.Builder
	var quote byte

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == 0 && (c == '`' || c == '"' || c == '\''):
			quote = c
			current.WriteByte(c)
		case quote != 0 && c == quote:
			quote = 0
			current.WriteByte(c)
		case quote == 0 && (c == ' ' || c == '\t'):
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// trimQuotes 去除引号
func trimQuotes(s string) string {
	if len(s) >= 2 && strings.ContainsRune("`\"'", rune(s[0])) && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

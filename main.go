package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/donutnomad/typeutils/pickgen"
	"github.com/donutnomad/typeutils/plugin"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
)

func init() {
	// 集中注册所有生成器
	plugin.MustRegister(pickgen.NewPickGenerator())
}

var (
	verbose  = pflag.BoolP("verbose", "v", false, "详细输出")
	help     = pflag.BoolP("help", "h", false, "显示帮助信息")
	output   = pflag.StringP("output", "o", "", "默认输出路径（支持模板变量 $FILE, $PACKAGE），为空时每个生成器输出到自己的默认文件")
	noOutput = pflag.Bool("no-output", false, "只生成不写入文件，用于检查注解")
	async    = pflag.Bool("async", true, "异步执行生成器")
	debounce = pflag.Duration("debounce", 2*time.Second, "dev 模式下的防抖动时间")
)

func main() {
	pflag.Usage = usage
	pflag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	args := pflag.Args()

	// 默认命令是 gen
	if len(args) == 0 {
		runGen([]string{"./..."})
		return
	}

	switch args[0] {
	case "gen":
		runGen(args[1:])
	case "dev":
		runDev(args[1:])
	default:
		// 不是子命令，当作路径参数处理
		runGen(args)
	}
}

func runGen(args []string) {
	patterns := args
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	registry := plugin.Global()
	if len(registry.Generators()) == 0 {
		fmt.Fprintln(os.Stderr, "错误: 没有已注册的生成器")
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("已注册 %d 个生成器:\n", len(registry.Generators()))
		for _, gen := range registry.Generators() {
			anns := lo.Map(gen.Annotations(), func(item string, _ int) string {
				return "@" + item
			})
			fmt.Printf("  - %s (%s)\n", gen.Name(), strings.Join(anns, ","))
		}
		fmt.Println()
	}

	opts := &plugin.RunOptions{
		Registry: registry,
		Patterns: patterns,
		Verbose:  *verbose,
		Output:   *output,
		Async:    *async,
		DryRun:   *noOutput,
	}

	stats, err := plugin.RunWithOptionsAndStats(context.Background(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}

	if stats != nil && (stats.FileCount > 0 || *verbose) {
		fmt.Printf("\n统计: 扫描 %d 个目标, 生成 %d 个文件\n", stats.TargetCount, stats.FileCount)
		fmt.Printf("耗时: 扫描 %v, 生成 %v, 总计 %v\n", stats.ScanDuration, stats.GenerateDuration, stats.TotalDuration)
	}
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `typeutils - 基于注解的 Pick/Omit 类型生成工具

用法:
  typeutils [选项] [路径...]
  typeutils [选项] gen [路径...]
  typeutils [选项] dev [路径...]

命令:
  gen     执行代码生成（默认）
  dev     启动开发模式，监听文件变动自动生成

路径:
  支持 Go 包路径模式，如:
    ./...          递归扫描当前目录及子目录（默认）
    ./models/...   递归扫描 models 目录
    ./models       只扫描 models 目录

选项:
`)
	pflag.PrintDefaults()

	registry := plugin.Global()
	if len(registry.Generators()) > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "\n支持的注解:\n")
		_, _ = fmt.Fprint(os.Stderr, plugin.FormatHelpText(registry))
	}

	_, _ = fmt.Fprintf(os.Stderr, `
模板变量:
  $FILE     - 源文件名（不含 .go 后缀）
  $PACKAGE  - 包名

示例:
  typeutils                              扫描当前目录（默认 ./...）
  typeutils -v ./models/...              详细模式扫描 models 目录
  typeutils -o '$FILE_types' ./...       指定输出文件名
  typeutils --no-output ./...            只检查注解，不写文件
  typeutils --debounce 500ms dev ./...   开发模式，监听文件变动
`)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/donutnomad/typeutils/plugin"
	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"golang.org/x/tools/imports"
)

// DevOptions dev 命令选项
type DevOptions struct {
	Patterns []string      // 监听的路径模式
	Verbose  bool          // 详细输出
	Output   string        // 默认输出路径
	Async    bool          // 异步执行
	Debounce time.Duration // 同一目录两次生成之间的最短间隔
}

// runDev 启动开发模式
func runDev(args []string) {
	patterns := args
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	registry := plugin.Global()
	if len(registry.Generators()) == 0 {
		fmt.Fprintln(os.Stderr, "错误: 没有已注册的生成器")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := dev(ctx, registry, &DevOptions{
		Patterns: patterns,
		Verbose:  *verbose,
		Output:   *output,
		Async:    *async,
		Debounce: *debounce,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// dev 先完整生成一次，然后监听文件变动，直到 ctx 结束
func dev(ctx context.Context, registry *plugin.Registry, opts *DevOptions) error {
	roots, err := parseWatchRoots(opts.Patterns)
	if err != nil {
		return err
	}
	dirs, err := collectWatchDirs(roots)
	if err != nil {
		return fmt.Errorf("收集监听目录失败: %w", err)
	}
	if len(dirs) == 0 {
		return errors.New("没有找到需要监听的目录")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}
	defer fsw.Close()

	w := newDevWatcher(ctx, opts, registry)
	w.fsw = fsw
	w.roots = roots
	defer w.debounce.Stop()

	for _, dir := range dirs {
		if err := w.addDir(dir); err != nil {
			return err
		}
	}

	runGenerate(ctx, registry, opts, opts.Patterns)

	fmt.Printf("开发模式已启动，监听 %d 个目录\n", len(dirs))
	fmt.Println("按 Ctrl+C 退出")
	fmt.Println()

	err = w.loop(ctx)
	fmt.Println("\n正在退出...")
	return err
}

// watchRoot 一个监听路径模式
type watchRoot struct {
	dir       string // 绝对路径
	recursive bool   // 以 /... 结尾
}

// contains 判断目录是否在监听范围内
func (r watchRoot) contains(dir string) bool {
	if dir == r.dir {
		return true
	}
	if !r.recursive {
		return false
	}
	rel, err := filepath.Rel(r.dir, dir)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

func parseWatchRoots(patterns []string) ([]watchRoot, error) {
	roots := make([]watchRoot, 0, len(patterns))
	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		dir, err := filepath.Abs(strings.TrimSuffix(pattern, "/..."))
		if err != nil {
			return nil, err
		}
		roots = append(roots, watchRoot{dir: dir, recursive: recursive})
	}
	return roots, nil
}

// skipWatchDir 与扫描器一致，跳过隐藏目录、_ 开头的目录、vendor 和 testdata
func skipWatchDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata"
}

// collectWatchDirs 收集所有需要监听的目录，单个文件的路径模式被忽略
func collectWatchDirs(roots []watchRoot) ([]string, error) {
	var dirs []string
	for _, root := range roots {
		info, err := os.Stat(root.dir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			continue
		}
		if !root.recursive {
			dirs = append(dirs, root.dir)
			continue
		}
		sub, err := walkDirs(root.dir)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, sub...)
	}
	return lo.Uniq(dirs), nil
}

// walkDirs 返回 root 及其下所有未被跳过的子目录
func walkDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipWatchDir(d.Name()) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

// devWatcher 把文件事件转换为按包目录防抖的生成任务
type devWatcher struct {
	opts     *DevOptions
	scanner  *plugin.Scanner
	fsw      *fsnotify.Watcher
	roots    []watchRoot
	debounce *debouncer
}

func newDevWatcher(ctx context.Context, opts *DevOptions, registry *plugin.Registry) *devWatcher {
	return &devWatcher{
		opts:    opts,
		scanner: plugin.NewScanner(plugin.WithAnnotationFilter(registry.Annotations()...)),
		debounce: newDebouncer(opts.Debounce, func(pkgDir string) {
			if ctx.Err() != nil {
				return
			}
			runGenerate(ctx, registry, opts, []string{pkgDir})
		}),
	}
}

func (w *devWatcher) addDir(dir string) error {
	if w.fsw == nil {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("添加监听目录失败 %s: %w", dir, err)
	}
	if w.opts.Verbose {
		fmt.Printf("监听目录: %s\n", dir)
	}
	return nil
}

func (w *devWatcher) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("监听错误: %v\n", err)
		}
	}
}

// handle 处理单个文件事件
// 新建的子目录加入监听；带注解且语法正确的源文件触发所在目录的生成
func (w *devWatcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.watchNewDir(path)
			return
		}
	}

	// 跳过测试文件和生成的文件，避免生成结果再次触发生成
	if !plugin.IsSourceFile(path) {
		return
	}

	matched, err := w.scanner.QuickMatchFile(path)
	if err != nil {
		if w.opts.Verbose {
			fmt.Printf("检查注解失败 %s: %v\n", path, err)
		}
		return
	}
	if !matched {
		if w.opts.Verbose {
			fmt.Printf("跳过文件（无注解）: %s\n", path)
		}
		return
	}

	if err := checkSyntax(path); err != nil {
		fmt.Printf("语法错误 %s: %v\n", path, err)
		return
	}

	if w.opts.Verbose {
		fmt.Printf("检测到文件变化: %s\n", path)
	}
	w.debounce.Trigger(filepath.Dir(path))
}

// watchNewDir 新目录位于递归监听范围内时加入监听
func (w *devWatcher) watchNewDir(dir string) {
	if skipWatchDir(filepath.Base(dir)) {
		return
	}
	if !lo.SomeBy(w.roots, func(r watchRoot) bool { return r.recursive && r.contains(dir) }) {
		return
	}
	dirs, err := walkDirs(dir)
	if err != nil {
		fmt.Printf("监听新目录失败 %s: %v\n", dir, err)
		return
	}
	for _, d := range dirs {
		if err := w.addDir(d); err != nil {
			fmt.Println(err)
		}
	}
}

// runGenerate 对给定路径执行一次生成，错误只打印不退出
func runGenerate(ctx context.Context, registry *plugin.Registry, opts *DevOptions, patterns []string) {
	if opts.Verbose {
		fmt.Printf("触发代码生成: %s\n", strings.Join(patterns, " "))
	}

	stats, err := plugin.RunWithOptionsAndStats(ctx, &plugin.RunOptions{
		Registry: registry,
		Patterns: patterns,
		Verbose:  opts.Verbose,
		Output:   opts.Output,
		Async:    opts.Async,
	})
	if err != nil {
		fmt.Printf("生成失败: %v\n", err)
		return
	}

	if stats != nil && stats.FileCount > 0 {
		fmt.Printf("生成完成: %d 个文件 (耗时: %v)\n", stats.FileCount, stats.TotalDuration)
	} else if opts.Verbose {
		fmt.Println("生成完成: 无文件生成")
	}
}

// checkSyntax 检查文件语法，不修改文件
func checkSyntax(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = imports.Process(path, content, &imports.Options{
		AllErrors:  true,
		Comments:   true,
		FormatOnly: true,
	})
	return err
}

// debouncer 按 key 合并 delay 时间内的多次触发，只执行最后一次
type debouncer struct {
	delay time.Duration
	fn    func(key string)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

func newDebouncer(delay time.Duration, fn func(key string)) *debouncer {
	return &debouncer{
		delay:  delay,
		fn:     fn,
		timers: make(map[string]*time.Timer),
	}
}

// Trigger 重新开始 key 的计时
func (d *debouncer) Trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if prev, ok := d.timers[key]; ok {
		prev.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// 已被新的 Trigger 取代或已停止
		if d.stopped || d.timers[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()

		d.fn(key)
	})
	d.timers[key] = timer
}

// Pending 返回等待执行的 key 数量
func (d *debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Stop 取消全部等待中的任务，之后的 Trigger 不再生效
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}

package plugin

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// FormatHelpText 为所有注册的生成器生成帮助文本
// 用法列按显示宽度对齐，说明中的中文不会打乱排版
func FormatHelpText(registry *Registry) string {
	generators := registry.Generators()
	if len(generators) == 0 {
		return "  (暂无已注册的生成器)\n"
	}

	var sb strings.Builder
	for _, gen := range generators {
		usages := gen.Usages()
		if len(usages) == 0 && len(gen.Annotations()) == 0 {
			continue
		}

		annotations := make([]string, 0, len(gen.Annotations()))
		for _, ann := range gen.Annotations() {
			annotations = append(annotations, "@"+ann)
		}
		sb.WriteString(fmt.Sprintf("  %s - %s\n", gen.Name(), strings.Join(annotations, " ")))

		width := 0
		for _, u := range usages {
			width = max(width, runewidth.StringWidth(u.Syntax))
		}
		for _, u := range usages {
			sb.WriteString("    ")
			sb.WriteString(runewidth.FillRight(u.Syntax, width))
			if u.Description != "" {
				sb.WriteString("  ")
				sb.WriteString(u.Description)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

package utils

import (
	"fmt"
	"os"

	"golang.org/x/tools/imports"
)

// FormatSource 格式化生成的源码并整理 imports
// 格式化失败时返回原始内容和错误，便于排查生成结果
func FormatSource(filename string, src []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: false,
	})
	if err != nil {
		return src, err
	}
	return formatted, nil
}

// WriteFormat 格式化源码后写入文件
// 格式化失败时仍写入未格式化的内容，并返回错误
func WriteFormat(filename string, src []byte) error {
	formatted, ferr := FormatSource(filename, src)
	if err := os.WriteFile(filename, formatted, 0644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	if ferr != nil {
		return fmt.Errorf("格式化 %s 失败: %w", filename, ferr)
	}
	return nil
}

package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// commonInitialisms 常见首字母缩略词列表，导出/取消导出时整体转换大小写
var commonInitialisms = map[string]bool{
	"API": true, "ASCII": true, "CPU": true, "CSS": true, "DNS": true, "EOF": true,
	"GUID": true, "HTML": true, "HTTP": true, "HTTPS": true, "ID": true, "IP": true,
	"JSON": true, "LHS": true, "QPS": true, "RAM": true, "RHS": true, "RPC": true,
	"SLA": true, "SMTP": true, "SSH": true, "TLS": true, "TTL": true, "UID": true,
	"UI": true, "UUID": true, "URI": true, "URL": true, "UTF8": true, "VM": true,
	"XML": true, "XSRF": true, "XSS": true,
}

// IsExported 判断标识符是否导出
func IsExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// Export 将标识符转换为导出形式
//
//	name   -> Name
//	id     -> ID
//	urlMap -> URLMap
func Export(name string) string {
	if name == "" || IsExported(name) {
		return name
	}
	// 开头的小写单词是缩略词时整体大写
	end := 0
	for end < len(name) {
		c := name[end]
		if c >= 'a' && c <= 'z' || end > 0 && c >= '0' && c <= '9' {
			end++
			continue
		}
		break
	}
	if head := strings.ToUpper(name[:end]); commonInitialisms[head] {
		return head + name[end:]
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// Unexport 将标识符转换为非导出形式
//
//	Name       -> name
//	ID         -> id
//	HTTPServer -> httpServer
func Unexport(name string) string {
	if name == "" || !IsExported(name) {
		return name
	}
	runes := []rune(name)
	upper := 0
	for upper < len(runes) && (unicode.IsUpper(runes[upper]) || upper > 0 && unicode.IsDigit(runes[upper])) {
		upper++
	}
	switch {
	case upper == len(runes):
		// 全大写，如 ID、URL
		return strings.ToLower(name)
	case upper > 1:
		// 连续大写前缀，保留最后一个大写字母作为下一个单词的开头
		for i := 0; i < upper-1; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
		return string(runes)
	default:
		runes[0] = unicode.ToLower(runes[0])
		return string(runes)
	}
}

// TrimPrefixName 去掉标识符的前缀并返回剩余部分，前缀不匹配时返回 false
//
//	TrimPrefixName("StatusActive", "Status") -> "Active", true
func TrimPrefixName(name, prefix string) (string, bool) {
	if prefix == "" || !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
		return name, false
	}
	rest := name[len(prefix):]
	r, _ := utf8.DecodeRuneInString(rest)
	if r != '_' && !unicode.IsUpper(r) && !unicode.IsDigit(r) {
		return name, false
	}
	return strings.TrimPrefix(rest, "_"), true
}

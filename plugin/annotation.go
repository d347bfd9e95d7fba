package plugin

import (
	"go/ast"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
)

// ParseCommentGroup 解析注释组中的所有注解，位置精确到列
func ParseCommentGroup(fset *token.FileSet, cg *ast.CommentGroup) []*Annotation {
	if cg == nil {
		return nil
	}
	var annotations []*Annotation
	for _, c := range cg.List {
		pos := fset.Position(c.Slash)
		text := c.Text[2:]
		if strings.HasPrefix(c.Text, "/*") {
			text = strings.TrimSuffix(text, "*/")
		}
		pos.Column += 2
		pos.Offset += 2
		annotations = append(annotations, ParseAnnotations(text, pos)...)
	}
	return annotations
}

// ParseAnnotations 从注释文本中解析所有注解
// pos 为 text 第一个字符的位置，多行文本的后续行从第 1 列开始计算
//
// 括号内允许嵌套 () [] {} 以及引号，直到与开头匹配的 ) 为止；
// 同一行内找不到匹配的 ) 时标记为 Unclosed。
func ParseAnnotations(text string, pos token.Position) []*Annotation {
	var annotations []*Annotation
	linePos := pos
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			linePos.Line++
			linePos.Column = 1
		}
		annotations = append(annotations, parseLine(line, linePos)...)
		linePos.Offset += len(line) + 1
	}
	return annotations
}

func parseLine(line string, pos token.Position) []*Annotation {
	var annotations []*Annotation
	at := func(off int) token.Position {
		p := pos
		p.Column += off
		p.Offset += off
		return p
	}

	for i := 0; i < len(line); i++ {
		if line[i] != '@' || (i > 0 && isWordBefore(line[:i])) {
			continue
		}
		end := scanIdent(line, i+1)
		if end == i+1 {
			continue
		}

		ann := &Annotation{
			Name: line[i+1 : end],
			Raw:  line[i:end],
			Pos:  at(i),
		}
		if end < len(line) && line[end] == '(' {
			ann.HasArgs = true
			ann.ArgsPos = at(end + 1)
			closing, ok := scanArgs(line, end+1)
			if ok {
				ann.Args = line[end+1 : closing]
				ann.Raw = line[i : closing+1]
				end = closing + 1
			} else {
				ann.Args = line[end+1:]
				ann.Raw = line[i:]
				ann.Unclosed = true
				end = len(line)
			}
		}
		annotations = append(annotations, ann)
		i = end - 1
	}
	return annotations
}

// isWordBefore 判断 @ 前是否紧跟标识符字符，如邮箱地址 a@b.com
func isWordBefore(prefix string) bool {
	r, _ := utf8.DecodeLastRuneInString(prefix)
	return isIdentRune(r)
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// scanIdent 返回从 start 开始的标识符结束位置，标识符不能以数字开头
func scanIdent(s string, start int) int {
	i := start
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isIdentRune(r) || (i == start && unicode.IsDigit(r)) {
			break
		}
		i += size
	}
	return i
}

// scanArgs 从 start 开始查找与开头 ( 匹配的 ) 的位置
func scanArgs(s string, start int) (int, bool) {
	var stack []byte
	var quote byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' && quote != '`' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(':
			stack = append(stack, ')')
		case '[':
			stack = append(stack, ']')
		case '{':
			stack = append(stack, '}')
		case ')', ']', '}':
			if len(stack) == 0 {
				if c == ')' {
					return i, true
				}
				continue
			}
			if stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return 0, false
}

// FilterByNames 过滤指定名称的注解
func FilterByNames(annotations []*Annotation, names ...string) []*Annotation {
	if len(names) == 0 {
		return annotations
	}
	return lo.Filter(annotations, func(ann *Annotation, _ int) bool {
		return lo.Contains(names, ann.Name)
	})
}

// HasAnnotation 检查是否包含指定注解
func HasAnnotation(annotations []*Annotation, name string) bool {
	return GetAnnotation(annotations, name) != nil
}

// GetAnnotation 获取第一个指定名称的注解
func GetAnnotation(annotations []*Annotation, name string) *Annotation {
	ann, _ := lo.Find(annotations, func(ann *Annotation) bool {
		return ann.Name == name
	})
	return ann
}

package typeutils

import (
	"fmt"
	"go/scanner"
	"go/token"
	"strings"
)

// 可见性关键字
const (
	keywordExport   = "export"
	keywordUnexport = "unexport"
)

type lexeme struct {
	off int
	tok token.Token
	lit string
}

// argParser 解析注解括号内的参数
//
//	body     = [ visibility ] Ident [ "[" typeParams "]" ] "{" member { "," member } "}"
//	member   = [ visibility ] Ident
//	derive   = Ident { "," Ident }
//
// export / unexport 后面紧跟标识符时才是关键字，否则当作成员名
type argParser struct {
	src  string
	base token.Position
	toks []lexeme
	i    int
}

func newArgParser(src string, base token.Position) (*argParser, error) {
	p := &argParser{src: src, base: base}

	fset := token.NewFileSet()
	file := fset.AddFile("", -1, len(src))
	var (
		s        scanner.Scanner
		firstErr error
	)
	s.Init(file, []byte(src), func(pos token.Position, msg string) {
		if firstErr == nil {
			firstErr = syntaxErrorf(p.at(pos.Offset), "%s", msg)
		}
	}, 0)

	for {
		pos, tok, lit := s.Scan()
		// 换行和结尾自动插入的分号
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		p.toks = append(p.toks, lexeme{off: file.Offset(pos), tok: tok, lit: lit})
		if tok == token.EOF {
			break
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return p, nil
}

// at 将参数内的偏移量换算为源码位置，注解参数不跨行
func (p *argParser) at(off int) token.Position {
	if !p.base.IsValid() {
		return token.Position{}
	}
	pos := p.base
	pos.Offset += off
	pos.Column += off
	return pos
}

func (p *argParser) peek() lexeme {
	return p.toks[p.i]
}

func (p *argParser) peekAt(n int) lexeme {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *argParser) next() lexeme {
	t := p.toks[p.i]
	if t.tok != token.EOF {
		p.i++
	}
	return t
}

func (p *argParser) errorf(t lexeme, format string, args ...any) error {
	return syntaxErrorf(p.at(t.off), format, args...)
}

func describe(t lexeme) string {
	switch t.tok {
	case token.EOF:
		return "结尾"
	case token.IDENT:
		return fmt.Sprintf("标识符 %s", t.lit)
	case token.STRING, token.INT, token.FLOAT, token.CHAR, token.IMAG:
		return t.lit
	default:
		return fmt.Sprintf("'%s'", t.tok)
	}
}

func (p *argParser) expect(tok token.Token, want string) (lexeme, error) {
	t := p.next()
	if t.tok != tok {
		return t, p.errorf(t, "期望%s，得到 %s", want, describe(t))
	}
	return t, nil
}

func (p *argParser) expectEOF() error {
	if t := p.peek(); t.tok != token.EOF {
		return p.errorf(t, "多余的内容 %s", describe(t))
	}
	return nil
}

// visibility 读取可选的可见性关键字
func (p *argParser) visibility() Visibility {
	t := p.peek()
	if t.tok != token.IDENT || p.peekAt(1).tok != token.IDENT {
		return VisInherited
	}
	switch t.lit {
	case keywordExport:
		p.next()
		return VisExported
	case keywordUnexport:
		p.next()
		return VisUnexported
	}
	return VisInherited
}

// typeParams 读取方括号内的类型参数，保留原文
func (p *argParser) typeParams() (Generics, error) {
	open := p.next()
	depth := 1
	var (
		params    []string
		expectArg = true
	)
	for depth > 0 {
		t := p.next()
		switch t.tok {
		case token.EOF:
			return Generics{}, p.errorf(open, "类型参数缺少 ']'")
		case token.LBRACK, token.LPAREN, token.LBRACE:
			depth++
		case token.RBRACK, token.RPAREN, token.RBRACE:
			depth--
			if depth == 0 {
				if t.tok != token.RBRACK {
					return Generics{}, p.errorf(t, "类型参数括号不匹配")
				}
				raw := strings.TrimSpace(p.src[open.off+1 : t.off])
				if raw == "" {
					return Generics{}, p.errorf(open, "类型参数列表不能为空")
				}
				return Generics{Raw: raw, Params: params}, nil
			}
		case token.COMMA:
			if depth == 1 {
				expectArg = true
				continue
			}
		}
		if expectArg && depth == 1 {
			if t.tok != token.IDENT {
				return Generics{}, p.errorf(t, "期望类型参数名，得到 %s", describe(t))
			}
			params = append(params, t.lit)
		}
		expectArg = false
	}
	return Generics{}, p.errorf(open, "类型参数缺少 ']'")
}

// selection 读取 {a, b, export c}
func (p *argParser) selection() (Selection, error) {
	if _, err := p.expect(token.LBRACE, " '{'"); err != nil {
		return nil, err
	}
	if t := p.peek(); t.tok == token.RBRACE {
		return nil, p.errorf(t, "选择列表不能为空")
	}

	var sel Selection
	for {
		vis := p.visibility()
		t, err := p.expect(token.IDENT, "成员名")
		if err != nil {
			return nil, err
		}
		sel = append(sel, SelectedMember{Name: t.lit, Visibility: vis, Pos: p.at(t.off)})

		t = p.next()
		switch t.tok {
		case token.COMMA:
			if n := p.peek(); n.tok == token.RBRACE {
				return nil, p.errorf(t, "选择列表末尾不能有逗号")
			}
		case token.RBRACE:
			return sel, nil
		default:
			return nil, p.errorf(t, "期望 ',' 或 '}'，得到 %s", describe(t))
		}
	}
}

// parseAction 解析 @Pick / @Omit 注解
func parseAction(kind ActionKind, ann Annotation) (Action, error) {
	if err := checkArgs(ann); err != nil {
		return Action{}, err
	}
	p, err := newArgParser(ann.Args, ann.ArgsPos)
	if err != nil {
		return Action{}, err
	}

	action := Action{Kind: kind, Pos: ann.Pos}
	action.Visibility = p.visibility()
	name, err := p.expect(token.IDENT, "类型名")
	if err != nil {
		return Action{}, err
	}
	action.Name = name.lit

	if p.peek().tok == token.LBRACK {
		if action.Generics, err = p.typeParams(); err != nil {
			return Action{}, err
		}
	}
	if action.Selection, err = p.selection(); err != nil {
		return Action{}, err
	}
	if err := p.expectEOF(); err != nil {
		return Action{}, err
	}
	return action, nil
}

// parseCapabilities 解析 @Derive(A, B)
func parseCapabilities(ann Annotation) ([]string, error) {
	if err := checkArgs(ann); err != nil {
		return nil, err
	}
	p, err := newArgParser(ann.Args, ann.ArgsPos)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.tok == token.EOF {
		return nil, p.errorf(t, "@%s 至少需要一个能力", ann.Name)
	}

	var caps []string
	for {
		t, err := p.expect(token.IDENT, "能力名")
		if err != nil {
			return nil, err
		}
		caps = append(caps, t.lit)
		if p.peek().tok != token.COMMA {
			break
		}
		p.next()
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return caps, nil
}

func checkArgs(ann Annotation) error {
	if !ann.HasArgs {
		return syntaxErrorf(ann.Pos, "@%s 缺少括号参数", ann.Name)
	}
	if ann.Unclosed {
		return syntaxErrorf(ann.Pos, "@%s 缺少 ')'", ann.Name)
	}
	return nil
}

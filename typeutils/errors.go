package typeutils

import (
	"errors"
	"fmt"
	"go/token"
)

var (
	ErrNoActions            = errors.New("没有指定任何 Pick/Omit 操作")
	ErrUnsupportedDataKind  = errors.New("不支持的类型种类")
	ErrUnsupportedKind      = errors.New("操作不支持该类型形状")
	ErrUnknownMember        = errors.New("成员不存在")
	ErrDuplicateMember      = errors.New("成员重复")
	ErrDanglingCapabilities = errors.New("@Derive 之后没有对应的操作")
	ErrSyntax               = errors.New("注解语法错误")
	ErrInternal             = errors.New("内部错误")
)

// Error 描述一次失败的转换，Kind 为上面的哨兵错误之一
type Error struct {
	Kind error
	Pos  token.Position

	Original   string     // 原始类型名
	ActionKind ActionKind // 出错的操作，未涉及时为零值
	Action     string     // 操作的输出类型名
	Member     string     // 出错的成员名
	Shape      ShapeKind

	Msg string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

func syntaxErrorf(pos token.Position, format string, args ...any) error {
	return &Error{Kind: ErrSyntax, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// AsError 取出错误链中的 *Error
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

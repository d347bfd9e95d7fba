package typeutils

import (
	"fmt"
	"go/token"
	"strings"
)

// Parse 将类型声明上的注解解析为请求
//
// @Derive 累积的能力附加到其后的第一个 @Pick/@Omit，其他注解原样透传。
// 不支持的类型种类在查看任何注解之前就被拒绝。
func Parse(decl Decl) (*Request, error) {
	if decl.Shape.Kind == KindUnsupported {
		desc := decl.Shape.Desc
		if desc == "" {
			desc = KindUnsupported.label()
		}
		return nil, &Error{
			Kind:     ErrUnsupportedDataKind,
			Pos:      decl.Pos,
			Original: decl.Name,
			Shape:    KindUnsupported,
			Msg:      fmt.Sprintf("%s 是%s，不能使用 Pick/Omit", decl.Name, desc),
		}
	}

	req := &Request{
		Name:  decl.Name,
		Pos:   decl.Pos,
		Shape: decl.Shape,
	}

	var (
		pending    []string
		pendingPos token.Position
	)
	for _, ann := range decl.Annotations {
		switch ann.Name {
		case AnnotationDerive:
			caps, err := parseCapabilities(ann)
			if err != nil {
				return nil, err
			}
			if len(pending) == 0 {
				pendingPos = ann.Pos
			}
			pending = append(pending, caps...)

		case AnnotationPick, AnnotationOmit:
			kind := ActionPick
			if ann.Name == AnnotationOmit {
				kind = ActionOmit
			}
			action, err := parseAction(kind, ann)
			if err != nil {
				return nil, err
			}
			action.Capabilities = pending
			pending = nil
			req.Actions = append(req.Actions, action)

		default:
			req.Passthrough = append(req.Passthrough, ann)
		}
	}

	if len(pending) > 0 {
		return nil, &Error{
			Kind:     ErrDanglingCapabilities,
			Pos:      pendingPos,
			Original: decl.Name,
			Shape:    decl.Shape.Kind,
			Msg:      fmt.Sprintf("%s 的 @Derive(%s) 之后没有 @Pick 或 @Omit 注解", decl.Name, strings.Join(pending, ", ")),
		}
	}
	if len(req.Actions) == 0 {
		return nil, &Error{
			Kind:     ErrNoActions,
			Pos:      decl.Pos,
			Original: decl.Name,
			Shape:    decl.Shape.Kind,
			Msg:      fmt.Sprintf("%s 没有任何 @Pick 或 @Omit 注解", decl.Name),
		}
	}
	return req, nil
}

// Generate 依次执行解析、校验、生成
func Generate(decl Decl) ([]TypeDecl, error) {
	req, err := Parse(decl)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req.Synthesize()
}

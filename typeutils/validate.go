package typeutils

import (
	"fmt"
	"strings"
)

// Validate 按声明顺序检查每个操作，遇到第一个错误即返回
//
//	         Pick  Omit
//	结构体    ✓     ✓
//	枚举      ✓     ✓
//	数组      ✗     ✗
//	空结构体  ✗     ✗
func (r *Request) Validate() error {
	for _, action := range r.Actions {
		if err := r.validateAction(action); err != nil {
			return err
		}
	}
	return nil
}

func (r *Request) validateAction(action Action) error {
	switch r.Shape.Kind {
	case KindRecord, KindTaggedUnion:
	case KindTuple, KindUnit:
		return &Error{
			Kind:       ErrUnsupportedKind,
			Pos:        action.Pos,
			Original:   r.Name,
			ActionKind: action.Kind,
			Action:     action.OutputName(),
			Shape:      r.Shape.Kind,
			Msg:        fmt.Sprintf("%s 操作不支持%s %s", action.Kind, r.Shape.Kind.label(), r.Name),
		}
	default:
		return &Error{
			Kind:     ErrUnsupportedDataKind,
			Pos:      r.Pos,
			Original: r.Name,
			Shape:    r.Shape.Kind,
			Msg:      fmt.Sprintf("%s 是%s，不能使用 Pick/Omit", r.Name, r.Shape.Kind.label()),
		}
	}

	members := r.Shape.MemberNames()
	seen := make(map[string]bool, len(action.Selection))
	for _, m := range action.Selection {
		if !r.Shape.HasMember(m.Name) {
			return &Error{
				Kind:       ErrUnknownMember,
				Pos:        m.Pos,
				Original:   r.Name,
				ActionKind: action.Kind,
				Action:     action.OutputName(),
				Member:     m.Name,
				Shape:      r.Shape.Kind,
				Msg: fmt.Sprintf("%s 操作 %s 中的%s `%s` 在 %s 中不存在，可用%s: %s",
					action.Kind, action.OutputName(), r.Shape.Kind.memberLabel(), m.Name, r.Name,
					r.Shape.Kind.memberLabel(), strings.Join(members, ", ")),
			}
		}
		if seen[m.Name] {
			return &Error{
				Kind:       ErrDuplicateMember,
				Pos:        m.Pos,
				Original:   r.Name,
				ActionKind: action.Kind,
				Action:     action.OutputName(),
				Member:     m.Name,
				Shape:      r.Shape.Kind,
				Msg: fmt.Sprintf("%s 操作 %s 中的%s `%s` 重复",
					action.Kind, action.OutputName(), r.Shape.Kind.memberLabel(), m.Name),
			}
		}
		seen[m.Name] = true
	}

	if action.Kind == ActionPick && r.Shape.Kind == KindRecord {
		return r.checkRenamedFields(action)
	}
	return nil
}

// checkRenamedFields 可见性覆盖会改变字段名首字母，改名后的字段不能与其他保留字段同名
func (r *Request) checkRenamedFields(action Action) error {
	owners := make(map[string]string, len(action.Selection))
	for _, f := range r.Shape.Fields {
		m, ok := action.Selection.Lookup(f.Name)
		if !ok {
			continue
		}
		name := m.Visibility.Apply(f.Name)
		if owner, dup := owners[name]; dup {
			// 报告在带覆盖的那一项上
			if m.Visibility == VisInherited {
				m, _ = action.Selection.Lookup(owner)
			}
			return &Error{
				Kind:       ErrDuplicateMember,
				Pos:        m.Pos,
				Original:   r.Name,
				ActionKind: action.Kind,
				Action:     action.OutputName(),
				Member:     name,
				Shape:      r.Shape.Kind,
				Msg: fmt.Sprintf("%s 操作 %s 中 `%s` 与 `%s` 改名后都为 `%s`",
					action.Kind, action.OutputName(), owner, f.Name, name),
			}
		}
		owners[name] = f.Name
	}
	return nil
}

package typeutils

import (
	"fmt"
	"slices"
	"strings"
)

// Synthesize 为每个操作生成一个类型声明，顺序与操作一致
//
// 成员始终保持原始类型中的声明顺序，与选择列表的书写顺序无关。
// 调用前需要先 Validate。
func (r *Request) Synthesize() ([]TypeDecl, error) {
	decls := make([]TypeDecl, 0, len(r.Actions))
	for _, action := range r.Actions {
		decl, err := r.synthesize(action)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

func (r *Request) synthesize(action Action) (TypeDecl, error) {
	var shape Shape
	switch {
	case action.Kind == ActionPick && r.Shape.Kind == KindRecord:
		shape = RecordShape(pickFields(r.Shape.Fields, action.Selection)...)
	case action.Kind == ActionOmit && r.Shape.Kind == KindRecord:
		shape = RecordShape(omitFields(r.Shape.Fields, action.Selection)...)
	case action.Kind == ActionPick && r.Shape.Kind == KindTaggedUnion:
		shape = UnionShape(filterVariants(r.Shape.Variants, action.Selection, true)...)
	case action.Kind == ActionOmit && r.Shape.Kind == KindTaggedUnion:
		shape = UnionShape(filterVariants(r.Shape.Variants, action.Selection, false)...)
	default:
		return TypeDecl{}, &Error{
			Kind:       ErrInternal,
			Pos:        action.Pos,
			Original:   r.Name,
			ActionKind: action.Kind,
			Action:     action.OutputName(),
			Shape:      r.Shape.Kind,
			Msg:        fmt.Sprintf("内部错误: %s 操作作用于%s %s", action.Kind, r.Shape.Kind.label(), r.Name),
		}
	}

	annotations := slices.Clone(r.Passthrough)
	if len(action.Capabilities) > 0 {
		annotations = append(annotations, capabilityAnnotation(action.Capabilities))
	}

	return TypeDecl{
		Name:        action.OutputName(),
		Visibility:  action.Visibility,
		Generics:    action.Generics,
		Shape:       shape,
		Annotations: annotations,
		Original:    r.Name,
		Action:      action,
	}, nil
}

// capabilityAnnotation 能力汇总为一个 @Derive 注解
func capabilityAnnotation(caps []string) Annotation {
	args := strings.Join(caps, ", ")
	return Annotation{
		Name:    AnnotationDerive,
		Args:    args,
		HasArgs: true,
		Raw:     "@" + AnnotationDerive + "(" + args + ")",
	}
}

// pickFields 保留选中的字段，并应用可见性覆盖
// 嵌入字段改名后变为普通字段
func pickFields(fields []Field, sel Selection) []Field {
	var out []Field
	for _, f := range fields {
		m, ok := sel.Lookup(f.Name)
		if !ok {
			continue
		}
		if m.Visibility != VisInherited {
			if name := m.Visibility.Apply(f.Name); name != f.Name {
				f.Source = f.Name
				f.Name = name
				f.Embedded = false
			}
			f.Visibility = m.Visibility
		}
		out = append(out, f)
	}
	return out
}

// omitFields 去掉选中的字段，可见性覆盖被忽略
func omitFields(fields []Field, sel Selection) []Field {
	var out []Field
	for _, f := range fields {
		if _, ok := sel.Lookup(f.Name); !ok {
			out = append(out, f)
		}
	}
	return out
}

func filterVariants(variants []Variant, sel Selection, keep bool) []Variant {
	var out []Variant
	for _, v := range variants {
		if _, ok := sel.Lookup(v.Name); ok == keep {
			out = append(out, v)
		}
	}
	return out
}

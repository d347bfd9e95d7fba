package typeutils

import "go/token"

func ann(name, args string) Annotation {
	return Annotation{
		Name:    name,
		Args:    args,
		HasArgs: true,
		Raw:     "@" + name + "(" + args + ")",
		Pos:     token.Position{Filename: "user.go", Line: 3, Column: 4},
		ArgsPos: token.Position{Filename: "user.go", Line: 3, Column: 4 + len(name) + 2},
	}
}

func pick(args string) Annotation   { return ann(AnnotationPick, args) }
func omit(args string) Annotation   { return ann(AnnotationOmit, args) }
func derive(args string) Annotation { return ann(AnnotationDerive, args) }

func marker(name string) Annotation {
	return Annotation{Name: name, Raw: "@" + name}
}

// recordABC struct{ a, b, c int }，全部非导出
func recordABC() Shape {
	return RecordShape(
		Field{Name: "a", Visibility: VisUnexported, Type: "int"},
		Field{Name: "b", Visibility: VisUnexported, Type: "string", Tag: "`json:\"b\"`"},
		Field{Name: "c", Visibility: VisUnexported, Type: "bool"},
	)
}

// unionABC 枚举 A, B, C
func unionABC() Shape {
	return UnionShape(
		Variant{Name: "A", Value: "iota"},
		Variant{Name: "B"},
		Variant{Name: "C"},
	)
}

func decl(name string, shape Shape, anns ...Annotation) Decl {
	return Decl{
		Name:        name,
		Pos:         token.Position{Filename: "user.go", Line: 6, Column: 6},
		Shape:       shape,
		Annotations: anns,
	}
}

func fieldNames(d TypeDecl) []string {
	return d.Shape.MemberNames()
}

package declparse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/donutnomad/typeutils/typeutils"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// writeFiles 在临时目录中写入一组源文件，返回目录
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

// newContext 创建一个不访问文件系统解析包名的上下文
func newContext(t *testing.T) *ParseContext {
	t.Helper()
	ctrl := gomock.NewController(t)
	resolver := NewMockPackageResolver(ctrl)
	resolver.EXPECT().GetPackageName(gomock.Any()).Return("", nil).AnyTimes()
	return NewParseContextWithResolver(resolver)
}

func parseOne(t *testing.T, src, typeName string) *TypeInfo {
	t.Helper()
	dir := writeFiles(t, map[string]string{"model.go": src})
	info, err := newContext(t).ParseType(filepath.Join(dir, "model.go"), typeName)
	require.NoError(t, err)
	return info
}

func fieldNames(fields []typeutils.Field) []string {
	return lo.Map(fields, func(f typeutils.Field, _ int) string { return f.Name })
}

func variantNames(variants []typeutils.Variant) []string {
	return lo.Map(variants, func(v typeutils.Variant, _ int) string { return v.Name })
}

func TestParseType_Record(t *testing.T) {
	src := `package model

import (
	"time"

	sq "database/sql"
)

type Base struct{ ID int }

// User 用户
type User struct {
	Base
	// Name 用户名
	Name      string ` + "`json:\"name\"`" + ` // 必填
	email     string
	CreatedAt time.Time
	Nullable  sq.NullString
	_         int
	X, Y      int
}
`
	info := parseOne(t, src, "User")

	assert.Equal(t, "User", info.Name)
	assert.Equal(t, "model", info.PackageName)
	assert.Equal(t, typeutils.KindRecord, info.Shape.Kind)
	assert.Equal(t, []string{"Base", "Name", "email", "CreatedAt", "Nullable", "X", "Y"}, fieldNames(info.Shape.Fields))

	base := info.Shape.Fields[0]
	assert.True(t, base.Embedded)
	assert.Equal(t, "Base", base.Type)

	name := info.Shape.Fields[1]
	assert.Equal(t, "string", name.Type)
	assert.Equal(t, "`json:\"name\"`", name.Tag)
	assert.Equal(t, []string{"Name 用户名"}, name.Doc)
	assert.Equal(t, "必填", name.Comment)
	assert.Equal(t, typeutils.VisExported, name.Visibility)

	assert.Equal(t, typeutils.VisUnexported, info.Shape.Fields[2].Visibility)
	assert.Equal(t, []string{"time"}, info.Shape.Fields[3].Refs)
	assert.Equal(t, []string{"sq"}, info.Shape.Fields[4].Refs)

	imp, ok := info.Import("sq")
	require.True(t, ok)
	assert.Equal(t, "database/sql", imp.ImportPath)
	assert.Equal(t, "sq", imp.Alias)

	imp, ok = info.Import("time")
	require.True(t, ok)
	assert.Equal(t, "time", imp.PackageName)
	assert.Empty(t, imp.Alias)
}

func TestParseType_EmbeddedNames(t *testing.T) {
	src := `package model

import "sync"

type Page[T any] struct{ Items []T }
type Base struct{}

type Holder struct {
	*Base
	sync.Mutex
	Page[int]
}
`
	info := parseOne(t, src, "Holder")
	assert.Equal(t, []string{"Base", "Mutex", "Page"}, fieldNames(info.Shape.Fields))
	for _, f := range info.Shape.Fields {
		assert.True(t, f.Embedded, f.Name)
	}
	assert.Equal(t, "*Base", info.Shape.Fields[0].Type)
}

func TestParseType_Unit(t *testing.T) {
	info := parseOne(t, "package model\n\ntype Empty struct{}\n", "Empty")
	assert.Equal(t, typeutils.KindUnit, info.Shape.Kind)
}

func TestParseType_Tuple(t *testing.T) {
	src := `package model

const size = 4

type Pair [2]string
type Quad [size]int
`
	info := parseOne(t, src, "Pair")
	assert.Equal(t, typeutils.KindTuple, info.Shape.Kind)
	assert.Equal(t, 2, info.Shape.Arity)

	info = parseOne(t, src, "Quad")
	assert.Equal(t, typeutils.KindTuple, info.Shape.Kind)
	assert.Equal(t, -1, info.Shape.Arity)
}

func TestParseType_Enum(t *testing.T) {
	src := `package model

type Status int

const (
	// StatusActive 正常
	StatusActive Status = iota + 1
	StatusFrozen // 冻结
	_
	StatusBanned
)

const StatusDeleted = Status(9)

const unrelated = 3
`
	info := parseOne(t, src, "Status")
	assert.Equal(t, typeutils.KindTaggedUnion, info.Shape.Kind)
	assert.Equal(t, "int", info.Underlying)
	assert.Equal(t, []string{"StatusActive", "StatusFrozen", "StatusBanned", "StatusDeleted"}, variantNames(info.Shape.Variants))

	active := info.Shape.Variants[0]
	assert.Equal(t, "iota + 1", active.Value)
	assert.Equal(t, []string{"StatusActive 正常"}, active.Doc)
	assert.Equal(t, "冻结", info.Shape.Variants[1].Comment)
	assert.Empty(t, info.Shape.Variants[1].Value)
}

func TestParseType_EnumAcrossFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"b_consts.go": "package model\n\nconst LevelHigh Level = \"high\"\n",
		"a_type.go":   "package model\n\ntype Level string\n\nconst LevelLow Level = \"low\"\n",
		"other.go":    "package other\n\nconst LevelMid Level = \"mid\"\n",
		"x_test.go":   "package model\n\nconst LevelTest Level = \"test\"\n",
	})
	info, err := newContext(t).ParseType(filepath.Join(dir, "a_type.go"), "Level")
	require.NoError(t, err)
	assert.Equal(t, []string{"LevelLow", "LevelHigh"}, variantNames(info.Shape.Variants))
}

func TestParseType_EmptyBasicUnion(t *testing.T) {
	info := parseOne(t, "package model\n\ntype Code uint8\n", "Code")
	assert.Equal(t, typeutils.KindTaggedUnion, info.Shape.Kind)
	assert.Empty(t, info.Shape.Variants)
}

func TestParseType_Unsupported(t *testing.T) {
	src := `package model

type Base struct{}

type Alias = Base
type Named Base
type Reader interface{ Read() }
type List []int
type Handler func()
type Index map[string]int
type Ptr *Base
`
	for _, name := range []string{"Alias", "Named", "Reader", "List", "Handler", "Index", "Ptr"} {
		t.Run(name, func(t *testing.T) {
			info := parseOne(t, src, name)
			assert.Equal(t, typeutils.KindUnsupported, info.Shape.Kind)
			assert.NotEmpty(t, info.Shape.Desc)
		})
	}
}

func TestParseType_TypeParams(t *testing.T) {
	src := `package model

type Page[T any, K comparable] struct {
	Items []T
	Key   K
}
`
	info := parseOne(t, src, "Page")
	assert.Equal(t, "T any, K comparable", info.TypeParams.Raw)
	assert.Equal(t, []string{"T", "K"}, info.TypeParams.Params)
}

func TestParseType_NotFound(t *testing.T) {
	dir := writeFiles(t, map[string]string{"model.go": "package model\n\ntype A struct{}\n"})
	_, err := newContext(t).ParseType(filepath.Join(dir, "model.go"), "B")
	assert.ErrorContains(t, err, "未找到类型 B")
}

func TestParseType_ResolverPackageName(t *testing.T) {
	src := `package model

import "example.com/go-things/v2"

type Box struct {
	Item things.Item
}
`
	dir := writeFiles(t, map[string]string{"model.go": src})
	ctrl := gomock.NewController(t)
	resolver := NewMockPackageResolver(ctrl)
	resolver.EXPECT().GetPackageName("example.com/go-things/v2").Return("things", nil)

	info, err := NewParseContextWithResolver(resolver).ParseType(filepath.Join(dir, "model.go"), "Box")
	require.NoError(t, err)

	imp, ok := info.Import("things")
	require.True(t, ok)
	assert.Equal(t, "example.com/go-things/v2", imp.ImportPath)
	assert.Equal(t, []string{"things"}, info.Shape.Fields[0].Refs)
}

func TestFindProjectRoot(t *testing.T) {
	dir := writeFiles(t, map[string]string{"go.mod": "module example.com/m\n"})
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))

	root, err := FindProjectRoot(sub)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestParseType_SelectorUnion(t *testing.T) {
	src := `package model

import "database/sql"

type Level sql.IsolationLevel

const LevelDefault = Level(sql.LevelDefault)
`
	info := parseOne(t, src, "Level")
	assert.Equal(t, typeutils.KindTaggedUnion, info.Shape.Kind)
	assert.Equal(t, "sql.IsolationLevel", info.Underlying)
	assert.Equal(t, []string{"sql"}, info.UnderlyingRefs)
	assert.Equal(t, []string{"LevelDefault"}, variantNames(info.Shape.Variants))
	assert.Equal(t, "Level(sql.LevelDefault)", info.Shape.Variants[0].Value)
}

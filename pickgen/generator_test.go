package pickgen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/donutnomad/typeutils/internal/utils"
	"github.com/donutnomad/typeutils/plugin"
	"github.com/donutnomad/typeutils/typeutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generate 扫描 src 写成的 model.go，返回生成结果和格式化后的输出
func generate(t *testing.T, src string) (*plugin.GenerateResult, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "model.go")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	gen := NewPickGenerator()
	scan, err := plugin.NewScanner(plugin.WithAnnotationFilter(gen.Annotations()...)).Scan(context.Background(), dir)
	require.NoError(t, err)

	result, err := gen.Generate(&plugin.GenerateContext{Targets: scan.All()})
	require.NoError(t, err)

	def, ok := result.Definitions[filepath.Join(dir, "model_pick.go")]
	if !ok {
		return result, ""
	}
	formatted, err := utils.FormatSource("model_pick.go", def.Bytes())
	require.NoError(t, err, string(def.Bytes()))
	return result, string(formatted)
}

func TestGenerate_Struct(t *testing.T) {
	src := `package model

import (
	"time"

	sq "database/sql"
)

// User 用户
// @Gsql
// @Derive(Setter, Slice)
// @Pick(UserBasic {ID, Name, unexport CreatedAt})
// @Omit(unexport userSafe {Password, Note})
type User struct {
	ID        int64  ` + "`json:\"id\"`" + `
	Name      string // 用户名
	Password  string
	CreatedAt time.Time
	Note      sq.NullString
}
`
	result, out := generate(t, src)
	require.Empty(t, result.Errors)

	assert.Contains(t, out, "// UserBasic 从 User Pick 生成\n// @Gsql\n// @Setter @Slice\ntype UserBasic struct {")
	assert.Regexp(t, "ID\\s+int64\\s+`json:\"id\"`", out)
	assert.Regexp(t, `Name\s+string\s+// 用户名`, out)
	assert.Regexp(t, `createdAt\s+time\.Time`, out)
	assert.Regexp(t, `func \(t \*UserBasic\) From\(src \*User\)`, out)
	assert.Contains(t, out, "t.createdAt = src.CreatedAt")
	assert.Regexp(t, `func NewUserBasic\(src \*User\) UserBasic`, out)

	// 能力只属于紧随其后的第一个操作
	assert.Contains(t, out, "// userSafe 从 User Omit 生成\n// @Gsql\ntype userSafe struct {")
	assert.Regexp(t, `func newUserSafe\(src \*User\) userSafe`, out)
	assert.NotContains(t, out, "Password")

	assert.Contains(t, out, `"time"`)
	// Note 被 Omit，database/sql 不需要导入
	assert.NotContains(t, out, "database/sql")
}

func TestGenerate_StructImportsAlias(t *testing.T) {
	src := `package model

import sq "database/sql"

// @Pick(Nullable {Note})
type Row struct {
	ID   int
	Note sq.NullString
}
`
	result, out := generate(t, src)
	require.Empty(t, result.Errors)
	assert.Contains(t, out, `sq "database/sql"`)
	assert.Regexp(t, `Note\s+sq\.NullString`, out)
}

func TestGenerate_Generics(t *testing.T) {
	src := `package model

// @Pick(PageItems[T any] {Items})
// @Pick(PageTotal {Total})
type Page[T any] struct {
	Items []T
	Total int
}
`
	result, out := generate(t, src)
	require.Empty(t, result.Errors)

	assert.Contains(t, out, "type PageItems[T any] struct {")
	assert.Regexp(t, `func \(t \*PageItems\[T\]\) From\(src \*Page\[T\]\)`, out)
	assert.Regexp(t, `func NewPageItems\[T any\]\(src \*Page\[T\]\) PageItems\[T\]`, out)

	// PageTotal 没有类型参数 T，无法引用 Page[T]，不生成辅助函数
	assert.Contains(t, out, "type PageTotal struct {")
	assert.NotContains(t, out, "*PageTotal")
	assert.NotContains(t, out, "NewPageTotal")
}

func TestGenerate_Enum(t *testing.T) {
	src := `package model

// Status 状态
// @Omit(LiveStatus {StatusDeleted})
// @Pick(unexport goneStatus {StatusDeleted})
type Status int

const (
	StatusActive Status = iota + 1
	StatusFrozen
	StatusDeleted
)
`
	result, out := generate(t, src)
	require.Empty(t, result.Errors)

	assert.Contains(t, out, "// LiveStatus 从 Status Omit 生成\ntype LiveStatus int")
	assert.Regexp(t, `LiveStatusActive\s+LiveStatus\s+=\s+LiveStatus\(StatusActive\)`, out)
	assert.Regexp(t, `LiveStatusFrozen\s+LiveStatus\s+=\s+LiveStatus\(StatusFrozen\)`, out)
	assert.NotContains(t, out, "LiveStatusDeleted")
	assert.Contains(t, out, "[]LiveStatus{LiveStatusActive, LiveStatusFrozen}")
	assert.Regexp(t, `func \(v LiveStatus\) ToStatus\(\) Status`, out)
	assert.Regexp(t, `func \(v \*LiveStatus\) From\(src Status\) bool`, out)
	assert.Contains(t, out, "case StatusActive, StatusFrozen:")

	assert.Contains(t, out, "type goneStatus int")
	assert.Regexp(t, `goneStatusDeleted\s+goneStatus\s+=\s+goneStatus\(StatusDeleted\)`, out)
}

func TestGenerate_ErrorIsolation(t *testing.T) {
	src := `package model

// @Pick(UserBasic {ID, Missing})
type User struct {
	ID int
}

// @Pick(OrderBasic {ID})
type Order struct {
	ID int
}

// @Pick(PairFirst {A})
type Pair [2]int

// @Pick(Generic[T any] {StatusA})
type Status int

const StatusA Status = 1
`
	result, out := generate(t, src)
	require.Len(t, result.Errors, 3)

	assert.True(t, errors.Is(result.Errors[0], typeutils.ErrUnknownMember))
	assert.Contains(t, result.Errors[0].Error(), "Missing")
	assert.True(t, errors.Is(result.Errors[1], typeutils.ErrUnsupportedKind))
	assert.Contains(t, result.Errors[2].Error(), "不支持泛型参数")

	// 其他类型照常生成
	assert.Contains(t, out, "type OrderBasic struct {")
	assert.NotContains(t, out, "UserBasic")
}

func TestGenerate_DanglingCapabilities(t *testing.T) {
	src := `package model

// @Derive(Setter)
type A struct{ ID int }

// @Pick(B1 {ID})
// @Derive(Setter)
type B struct{ ID int }
`
	result, out := generate(t, src)
	require.Len(t, result.Errors, 2)
	for _, err := range result.Errors {
		assert.True(t, errors.Is(err, typeutils.ErrDanglingCapabilities), err.Error())
	}
	assert.Empty(t, out)
}

func TestGenerate_UnsupportedDataKind(t *testing.T) {
	src := `package model

type Base struct{ ID int }

// @Pick(X {ID})
type Alias = Base
`
	result, _ := generate(t, src)
	require.Len(t, result.Errors, 1)
	assert.True(t, errors.Is(result.Errors[0], typeutils.ErrUnsupportedDataKind))
}

func TestGenerate_SyntaxErrorPosition(t *testing.T) {
	src := `package model

// @Pick(UserBasic {ID,})
type User struct{ ID int }
`
	result, _ := generate(t, src)
	require.Len(t, result.Errors, 1)
	assert.True(t, errors.Is(result.Errors[0], typeutils.ErrSyntax))

	e, ok := typeutils.AsError(result.Errors[0])
	require.True(t, ok)
	assert.Equal(t, 3, e.Pos.Line)
	assert.Equal(t, "model.go", filepath.Base(e.Pos.Filename))
}

func TestGenerate_OutputConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.go")
	require.NoError(t, os.WriteFile(path, []byte("package model\n\n// @Pick(A {ID})\ntype User struct{ ID int }\n"), 0644))

	gen := NewPickGenerator()
	target := &plugin.AnnotatedTarget{
		Target: &plugin.Target{Kind: plugin.TargetStruct, Name: "User", PackageName: "model", FilePath: path},
		Annotations: []*plugin.Annotation{
			{Name: "Pick", Args: "A {ID}", HasArgs: true, Raw: "@Pick(A {ID})"},
		},
	}

	result, err := gen.Generate(&plugin.GenerateContext{
		Targets: []*plugin.AnnotatedTarget{target},
		PackageConfigs: map[string]*plugin.PackageConfig{
			dir: {PackageDir: dir, PluginOutputs: map[string]string{"pickgen": "types_gen"}},
		},
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	assert.Contains(t, result.Definitions, filepath.Join(dir, "types_gen.go"))

	result, err = gen.Generate(&plugin.GenerateContext{Targets: []*plugin.AnnotatedTarget{target}, DefaultOutput: "$PACKAGE_types"})
	require.NoError(t, err)
	assert.Contains(t, result.Definitions, filepath.Join(dir, "model_types.go"))
}

func TestNewPickGenerator(t *testing.T) {
	gen := NewPickGenerator()
	assert.Equal(t, "pickgen", gen.Name())
	assert.Equal(t, []string{"Pick", "Omit", "Derive"}, gen.Annotations())
	assert.Equal(t, 40, gen.Priority())
	assert.Len(t, gen.Usages(), 3)

	r := plugin.NewRegistry()
	require.NoError(t, r.Register(gen))
	assert.Contains(t, plugin.FormatHelpText(r), "@Derive(Cap1, Cap2)")
}

func TestGenerate_EnumAliases(t *testing.T) {
	src := `package model

// @Pick(LiveStatus {StatusActive, StatusDefault, StatusFallback, StatusFrozen})
type Status int

const (
	StatusActive Status = iota + 1
	StatusFrozen
)

const (
	StatusDefault  Status = StatusActive
	StatusFallback        = Status(StatusDefault)
)
`
	result, out := generate(t, src)
	require.Empty(t, result.Errors)

	// 别名常量保留在常量块中
	assert.Regexp(t, `LiveStatusDefault\s+LiveStatus\s+=\s+LiveStatus\(StatusDefault\)`, out)
	assert.Regexp(t, `LiveStatusFallback\s+LiveStatus\s+=\s+LiveStatus\(StatusFallback\)`, out)
	// switch 中同值的常量只出现一次
	assert.Contains(t, out, "case StatusActive, StatusFrozen:")
	assert.NotContains(t, out, "case StatusActive, StatusDefault")
}

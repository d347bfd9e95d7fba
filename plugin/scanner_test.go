package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func targetNames(targets []*AnnotatedTarget) []string {
	return lo.Map(targets, func(t *AnnotatedTarget, _ int) string { return t.Target.Name })
}

func TestScanner_Scan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "user.go"), `package model

// User 用户
// @Derive(Setter)
// @Pick(UserBasic {ID})
// @Gsql
type User struct {
	ID int
}

type Plain struct{}

type (
	// Status 状态
	// @Omit(LiveStatus {StatusDeleted})
	Status int

	// @Setter
	Other struct{}
)
`)
	writeFile(t, filepath.Join(dir, "user_pick.go"), "package model\n\n// @Pick(X {ID})\ntype Y struct{}\n")
	writeFile(t, filepath.Join(dir, "user_test.go"), "package model\n\n// @Pick(X {ID})\ntype Z struct{}\n")
	writeFile(t, filepath.Join(dir, "gen.go"), "// Code generated by typeutils. DO NOT EDIT.\n\npackage model\n\n// @Pick(X {ID})\ntype W struct{}\n")
	writeFile(t, filepath.Join(dir, "sub", "sub.go"), "package sub\n\n// @Pick(X {ID})\ntype S struct{ ID int }\n")

	scanner := NewScanner(WithAnnotationFilter("Pick", "Omit", "Derive"), WithWorkers(2))
	result, err := scanner.Scan(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"User"}, targetNames(result.Structs))
	assert.Equal(t, []string{"Status"}, targetNames(result.Types))

	user := result.Structs[0]
	assert.Equal(t, TargetStruct, user.Target.Kind)
	assert.Equal(t, "model", user.Target.PackageName)
	// 注解列表完整保留，包括不属于过滤器的 @Gsql
	assert.Equal(t, []string{"Derive", "Pick", "Gsql"}, names(user.Annotations))

	status := result.Types[0]
	assert.Equal(t, TargetType, status.Target.Kind)
	assert.Equal(t, []string{"Omit"}, names(status.Annotations))
}

func TestScanner_Recursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "package a\n\n// @Pick(X {ID})\ntype A struct{ ID int }\n")
	writeFile(t, filepath.Join(dir, "sub", "b.go"), "package sub\n\n// @Pick(X {ID})\ntype B struct{ ID int }\n")
	writeFile(t, filepath.Join(dir, "vendor", "v.go"), "package v\n\n// @Pick(X {ID})\ntype V struct{ ID int }\n")
	writeFile(t, filepath.Join(dir, "_ignored", "i.go"), "package i\n\n// @Pick(X {ID})\ntype I struct{ ID int }\n")

	result, err := NewScanner().Scan(context.Background(), dir+"/...")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, targetNames(result.All()))
}

func TestScanner_SingleFileAndMissingPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.go")
	writeFile(t, file, "package a\n\n// @Pick(X {ID})\ntype A struct{ ID int }\n")

	result, err := Scan(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, targetNames(result.All()))

	_, err = Scan(context.Background(), filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestScanner_QuickMatchFile(t *testing.T) {
	dir := t.TempDir()
	withPick := filepath.Join(dir, "pick.go")
	withOther := filepath.Join(dir, "other.go")
	withDirective := filepath.Join(dir, "directive.go")
	writeFile(t, withPick, "package a\n\n// @Pick(X {ID})\ntype A struct{}\n")
	writeFile(t, withOther, "package a\n\n// @Setter\ntype B struct{}\nvar s = \"@Pick\"\n")
	writeFile(t, withDirective, "package a\n\n//go:typeutils: -output `types`\n")

	scanner := NewScanner(WithAnnotationFilter("Pick"))
	for path, want := range map[string]bool{withPick: true, withOther: false, withDirective: true} {
		got, err := scanner.QuickMatchFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
}

func TestScanner_PackageConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "doc.go"), "// go:typeutils: -output `$FILE_types` plugin:pickgen -output \"picked\"\npackage a\n")
	writeFile(t, filepath.Join(dir, "a.go"), "package a\n\n// @Pick(X {ID})\ntype A struct{ ID int }\n")

	result, err := ScanWithFilter(context.Background(), []string{"Pick"}, dir)
	require.NoError(t, err)

	cfg := result.PackageConfigs[dir]
	require.NotNil(t, cfg)
	assert.Equal(t, "$FILE_types", cfg.DefaultOutput)
	assert.Equal(t, "picked", cfg.GetPluginOutput("pickgen"))
	assert.Equal(t, "$FILE_types", cfg.GetPluginOutput("other"))
}

func TestParseDirectiveLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    string
		plugins map[string]string
	}{
		{"default", "-output `out`", "out", map[string]string{}},
		{"plugin", "plugin:PickGen -output 'a b'", "", map[string]string{"pickgen": "a b"}},
		{"missing value", "-output", "", nil},
		{"empty", "  ", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := parseDirectiveLine(tt.line, "/p/a.go")
			if tt.plugins == nil {
				assert.Nil(t, cfg)
				return
			}
			require.NotNil(t, cfg)
			assert.Equal(t, "/p", cfg.PackageDir)
			assert.Equal(t, tt.want, cfg.DefaultOutput)
			assert.Equal(t, tt.plugins, cfg.PluginOutputs)
		})
	}
}

func TestIsSourceFile(t *testing.T) {
	assert.True(t, IsSourceFile("user.go"))
	assert.False(t, IsSourceFile("user_test.go"))
	assert.False(t, IsSourceFile("user_pick.go"))
	assert.False(t, IsSourceFile("user_gen.go"))
	assert.False(t, IsSourceFile("README.md"))
}

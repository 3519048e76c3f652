package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_ExcludeCommonNoise(t *testing.T) {
	m := New(nil)

	excluded := []struct {
		path  string
		isDir bool
	}{
		{".git", true},
		{".git/config", false},
		{"web/node_modules", true},
		{"web/node_modules/react/index.js", false},
		{"assets/logo.png", false},
		{"backup.tar.gz", false},
		{".env", false},
		{"config/.env.production", false},
		{"yarn.lock", false},
		{"public/app.min.js", false},
	}
	for _, tc := range excluded {
		assert.True(t, m.Excluded(tc.path, tc.isDir), "expected %q to be excluded", tc.path)
	}

	included := []string{"main.go", "src/app.py", "README.md", "docs/guide.md", ".gitignore"}
	for _, p := range included {
		assert.True(t, m.ShouldInclude(p, false), "expected %q to be included", p)
	}
}

func TestDirectoryPatternMatchesOnlyDirectories(t *testing.T) {
	m := New(nil)
	m.CompileLines("test", "logs/")

	assert.True(t, m.Excluded("logs", true))
	assert.True(t, m.Excluded("logs/today.txt", false))
	assert.True(t, m.Excluded("svc/logs/today.txt", false))
	assert.False(t, m.Excluded("logs", false), "a file named logs is not a directory")
}

func TestAnchoredPatterns(t *testing.T) {
	m := New(nil)
	m.CompileLines("test", "/TODO.txt", "docs/internal/")

	assert.True(t, m.Excluded("TODO.txt", false))
	assert.False(t, m.Excluded("pkg/TODO.txt", false))

	assert.True(t, m.Excluded("docs/internal/plan.md", false))
	assert.False(t, m.Excluded("other/docs/internal/plan.md", false))
}

func TestWildcards(t *testing.T) {
	m := New(nil)
	m.CompileLines("test", "*.gen.go", "tmp?.txt", "**/fixtures/**")

	assert.True(t, m.Excluded("api/types.gen.go", false))
	assert.False(t, m.Excluded("api/types.go", false))
	assert.True(t, m.Excluded("tmp1.txt", false))
	assert.False(t, m.Excluded("tmp12.txt", false))
	assert.True(t, m.Excluded("a/b/fixtures/data.json", false))
}

func TestNegationLastMatchWins(t *testing.T) {
	m := New(nil)
	m.CompileLines("test", "*.md", "!README.md")

	assert.True(t, m.Excluded("CHANGELOG.md", false))
	assert.False(t, m.Excluded("README.md", false))

	// A project file can re-include one of the defaults.
	m.CompileLines("test", "!.env.staging")
	assert.False(t, m.Excluded(".env.staging", false))
	assert.False(t, m.Excluded(".env.example", false), "templates are re-included by the defaults")
	assert.True(t, m.Excluded(".env.local", false))
}

func TestForceIncludeAlwaysWins(t *testing.T) {
	m := New(nil)
	m.CompileLines("test", "templates/")
	m.AddForceInclude("./templates/", "static/css")

	assert.True(t, m.Excluded("templates/base.html", false))
	assert.True(t, m.ShouldInclude("templates/base.html", false))
	assert.True(t, m.ShouldInclude("static/css/site.css", false))
	assert.False(t, m.ShouldInclude("static/js/site.js", false))

	assert.True(t, m.HasForcedBelow("static"))
	assert.False(t, m.HasForcedBelow("media"))
	assert.Equal(t, []string{"templates", "static/css"}, m.ForceIncludes())
}

func TestForceIncludeIsSegmentAware(t *testing.T) {
	m := New(nil)
	m.AddForceInclude("docs")

	assert.True(t, m.IsForced("docs"))
	assert.True(t, m.IsForced("docs/a.md"))
	assert.False(t, m.IsForced("docsite/a.md"))
}

func TestLoad_ReadsProjectFileAndIgnoresComments(t *testing.T) {
	root := t.TempDir()
	content := "# generated files\n\n*.pb.go\r\n  \n\\#literal\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultFileName), []byte(content), 0o644))

	m, err := Load(root, "", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, len(defaultPatterns)+2, m.Patterns())
	assert.True(t, m.Excluded("api/v1/service.pb.go", false))
	assert.True(t, m.Excluded("#literal", false))
	assert.False(t, m.Excluded("generated files", false))
}

func TestLoad_MissingFileMeansDefaultsOnly(t *testing.T) {
	m, err := Load(t.TempDir(), "", []string{"dist/"}, nil)
	require.NoError(t, err)

	assert.Equal(t, len(defaultPatterns), m.Patterns())
	assert.True(t, m.ShouldInclude("dist/bundle.js", false))
}

func TestLoad_UnreadableFileIsAnError(t *testing.T) {
	root := t.TempDir()
	// A directory in place of the rules file cannot be read.
	require.NoError(t, os.Mkdir(filepath.Join(root, DefaultFileName), 0o755))

	_, err := Load(root, "", nil, nil)
	assert.Error(t, err)
}

func TestMatchWithPatternReportsRule(t *testing.T) {
	m := New(nil)
	m.CompileLines("custom", "secret-notes.txt")

	matched, p := m.MatchWithPattern("notes/secret-notes.txt", false)
	require.True(t, matched)
	require.NotNil(t, p)
	assert.Equal(t, "custom", p.Source)
	assert.Equal(t, 1, p.LineNo)

	matched, p = m.MatchWithPattern("main.go", false)
	assert.False(t, matched)
	assert.Nil(t, p)
}

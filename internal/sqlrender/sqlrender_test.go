package sqlrender

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenNamesConsistent(t *testing.T) {
	// Every dbtype must expose the same token-name set, or a template valid
	// for one type would silently fail for another.
	reference := TokenNames(KnownDBTypes[0])
	require.NotEmpty(t, reference)

	for _, dbtype := range KnownDBTypes[1:] {
		assert.Equalf(t, reference, TokenNames(dbtype), "token names differ for dbtype %s", dbtype)
	}
}

func TestIsKnownDBType(t *testing.T) {
	for _, dbtype := range KnownDBTypes {
		assert.True(t, IsKnownDBType(dbtype))
	}
	assert.False(t, IsKnownDBType("oracle"))
	assert.False(t, IsKnownDBType(""))
}

func TestRenderSubstitutesTokens(t *testing.T) {
	tests := []struct {
		dbtype string
		want   string
	}{
		{"mysql", "CREATE TABLE t (started TIMESTAMP NULL DEFAULT null, at now());"},
		{"postgres", "CREATE TABLE t (started TIMESTAMP WITHOUT TIME ZONE, at now());"},
		{"sqlite", "CREATE TABLE t (started TIMESTAMP, at strftime('%s000', 'now'));"},
	}

	const template = "CREATE TABLE t (started {{TIMESTAMP_NULL}}, at {{now}});"
	for _, tt := range tests {
		t.Run(tt.dbtype, func(t *testing.T) {
			r, err := NewRenderer(tt.dbtype, "tmpl.sql")
			require.NoError(t, err)

			out, err := r.Render(template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderSourceToken(t *testing.T) {
	r, err := NewRenderer("postgres", "jsettlers-tables-tmpl.sql")
	require.NoError(t, err)

	out, err := r.Render("-- generated from {{render_src}}")
	require.NoError(t, err)
	assert.Equal(t, "-- generated from jsettlers-tables-tmpl.sql", out)
}

func TestRenderUnknownToken(t *testing.T) {
	r, err := NewRenderer("mysql", "tmpl.sql")
	require.NoError(t, err)

	_, err = r.Render("SELECT {{no_such_token}};")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template token {{no_such_token}}")
}

func TestNewRendererUnknownDBType(t *testing.T) {
	_, err := NewRenderer("oracle", "tmpl.sql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only: mysql postgres sqlite")
}

func TestRenderFileWithPlaceholder(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "tmpl.sql")
	require.NoError(t, os.WriteFile(inPath, []byte("{{set_session_tz_utc}}\n"), 0644))

	r, err := NewRenderer("postgres", inPath)
	require.NoError(t, err)
	require.NoError(t, r.RenderFile(inPath, filepath.Join(dir, "out-%s.sql")))

	data, err := os.ReadFile(filepath.Join(dir, "out-postgres.sql"))
	require.NoError(t, err)
	assert.Equal(t, "SET TIME ZONE 'UTC';\n", string(data))
}

func TestCompareFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "tmpl.sql")
	require.NoError(t, os.WriteFile(inPath, []byte("at {{now}}\n"), 0644))

	upToDate := filepath.Join(dir, "rendered-mysql.sql")
	require.NoError(t, os.WriteFile(upToDate, []byte("at now()\n"), 0644))
	stale := filepath.Join(dir, "stale-mysql.sql")
	require.NoError(t, os.WriteFile(stale, []byte("at CURRENT_TIMESTAMP\n"), 0644))

	r, err := NewRenderer("mysql", inPath)
	require.NoError(t, err)

	assert.NoError(t, r.CompareFile(inPath, filepath.Join(dir, "rendered-%s.sql")))

	err = r.CompareFile(inPath, stale)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contents differ")
}

func TestValidatePlaceholder(t *testing.T) {
	_, ok := ValidatePlaceholder("out-%s.sql")
	assert.True(t, ok)

	_, ok = ValidatePlaceholder("plain.sql")
	assert.True(t, ok)

	tok, ok := ValidatePlaceholder("out-%d.sql")
	assert.False(t, ok)
	assert.Equal(t, "%d", tok)
}

package render_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dbd-project/dbd/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderStringSubstitutesSchemaAndTable(t *testing.T) {
	env, err := render.NewEnvironment(t.TempDir())
	require.NoError(t, err)

	vars := render.BuildContext("analytics", "orders", map[string]interface{}{"region": "us-east"})
	out, err := env.RenderString("inline", "select * from {{ schema }}.{{ table }} where region = '{{ session.region }}'", vars)
	require.NoError(t, err)
	assert.Equal(t, "select * from analytics.orders where region = 'us-east'", out)
}

func TestRenderStringAppliesSprigFilter(t *testing.T) {
	env, err := render.NewEnvironment(t.TempDir())
	require.NoError(t, err)

	out, err := env.RenderString("inline", "{{ name | upper }}", map[string]interface{}{"name": "orders"})
	require.NoError(t, err)
	assert.Equal(t, "ORDERS", out)
}

func TestRenderFileResolvesRelativeToRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.sql.j2"), []byte("create table {{ table }} (id int);"), 0o644))

	env, err := render.NewEnvironment(dir)
	require.NoError(t, err)

	out, err := env.RenderFile("model.sql.j2", map[string]interface{}{"table": "customers"})
	require.NoError(t, err)
	assert.Equal(t, "create table customers (id int);", out)
}

func TestBuildContextExposesProcessEnv(t *testing.T) {
	require.NoError(t, os.Setenv("DBD_RENDER_TEST_VAR", "hello"))
	defer os.Unsetenv("DBD_RENDER_TEST_VAR")

	ctx := render.BuildContext("s", "t", nil)
	env, ok := ctx["env"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "hello", env["DBD_RENDER_TEST_VAR"])
}

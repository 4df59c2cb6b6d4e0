package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiodesk/pkg/errors"
)

func writeTemplate(t *testing.T, base, rel, content string) string {
	t.Helper()
	path := filepath.Join(base, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegistryLoadAndRender(t *testing.T) {
	base := t.TempDir()
	path := writeTemplate(t, base, "agents/support.tmpl", "Hello {{.Name}}")

	reg, err := NewRegistry(base)
	require.NoError(t, err)

	tmpl, err := reg.GetTemplate("agents/support")
	require.NoError(t, err)

	rendered, err := tmpl.Render(map[string]string{"Name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Alice", rendered)

	// Parsed content is fixed at load time.
	require.NoError(t, os.WriteFile(path, []byte("Hi {{.Name}}"), 0o644))
	rendered, err = tmpl.Render(map[string]string{"Name": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Bob", rendered)
}

func TestRegistryLazyLoad(t *testing.T) {
	base := t.TempDir()
	reg, err := NewRegistry(base)
	require.NoError(t, err)

	writeTemplate(t, base, "prompts/greeting.tmpl", "Welcome {{.Client}}")

	rendered, err := reg.Render("prompts/greeting", map[string]string{"Client": "CLIENT_0001"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome CLIENT_0001", rendered)
}

func TestRegistryFuncs(t *testing.T) {
	base := t.TempDir()
	writeTemplate(t, base, "agents/tools.tmpl", "{{bullets .Tools}}|{{upper .Name}}")

	reg, err := NewRegistry(base)
	require.NoError(t, err)

	rendered, err := reg.Render("agents/tools", map[string]any{
		"Tools": []string{"get_total_revenue", "get_top_services"},
		"Name":  "dash",
	})
	require.NoError(t, err)
	assert.Equal(t, "- get_total_revenue\n- get_top_services|DASH", rendered)
}

func TestRegistryMissingTemplate(t *testing.T) {
	reg, err := NewRegistry(t.TempDir())
	require.NoError(t, err)

	_, err = reg.Render("agents/unknown", nil)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Error(t, reg.MustHave("agents/unknown"))
}

func TestRegistryMissingKeyFails(t *testing.T) {
	base := t.TempDir()
	writeTemplate(t, base, "prompts/strict.tmpl", "{{.Text}}")

	reg, err := NewRegistry(base)
	require.NoError(t, err)

	_, err = reg.Render("prompts/strict", map[string]string{})
	assert.Error(t, err)
}

func TestEmbeddedTemplates(t *testing.T) {
	reg := Get()
	require.NoError(t, reg.MustHave(Required()...))
	assert.Equal(t, []string{AgentDashboard, AgentSupport, PromptFinalAnswer, PromptTranslate}, reg.List())

	out, err := reg.Render("prompts/translate", map[string]string{"Text": "hola"})
	require.NoError(t, err)
	assert.Contains(t, out, `"hola"`)
}

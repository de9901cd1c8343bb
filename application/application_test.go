package application

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/stasis-go/pkg/stasis"
)

const testConfig = `
stasis:
  references: none
  max-depth: 32
logging:
  stasis:
    level: debug
`

func writeConfig(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	return path
}

func TestRunWithFlag(t *testing.T) {
	path := writeConfig(t)
	for _, args := range [][]string{
		{"--config", path},
		{"--config=" + path},
	} {
		app := New()
		require.NoError(t, app.Run(args))
		assert.Equal(t, path, app.ConfigPath())
		assert.Equal(t, stasis.ReferencesNone, app.Config().References)
		assert.Equal(t, stasis.ReferencesNone, app.Registry().References().Name())
		assert.Equal(t, 32, app.Config().MaxDepth)
		assert.NotNil(t, app.Logger("stasis"))
		assert.NotNil(t, app.Logger("other"))
	}
}

func TestRunWithEnv(t *testing.T) {
	t.Setenv(envConfigPath, writeConfig(t))
	app := New()
	require.NoError(t, app.Run(nil))
	assert.Equal(t, stasis.ReferencesNone, app.Config().References)
}

func TestRunWithoutConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	app := New()
	require.NoError(t, app.Run(nil))
	assert.Empty(t, app.ConfigPath())
	assert.Equal(t, stasis.ReferencesIdentity, app.Registry().References().Name())

	data, err := stasis.Marshal(app.Registry(), "hello")
	require.NoError(t, err)
	v, err := stasis.Unmarshal(app.Registry(), data)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestRunErrors(t *testing.T) {
	assert.Error(t, New().Run([]string{"--config"}))
	assert.Error(t, New().Run([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}))
}

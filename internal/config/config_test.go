package config

import (
	"os"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/multilingual-go/languages"
)

func memFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := AppFs
	AppFs = afero.NewMemMapFs()
	homedir.DisableCache = true
	t.Setenv("HOME", "/home/tester")
	t.Cleanup(func() { AppFs = prev })
	return AppFs
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if prev, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, prev) })
		} else {
			t.Cleanup(func() { os.Unsetenv(k) })
		}
		os.Unsetenv(k)
	}
}

const sample = `
schema_path: models.yaml
provider: sqlite
database_url: file:test.db
default_language: pl
debug: true
languages:
  - code: en
    name: English
  - code: pl
    name: Polish
`

func TestLoadConfigFile(t *testing.T) {
	fs := memFs(t)
	unsetEnv(t, "MLQUERY_PROVIDER", "MLQUERY_DATABASE_URL")
	require.NoError(t, afero.WriteFile(fs, "/work/mlquery.yaml", []byte(sample), 0o644))

	cfg, err := LoadConfig("/work/mlquery.yaml")
	require.NoError(t, err)
	assert.Equal(t, "models.yaml", cfg.SchemaPath)
	assert.Equal(t, "sqlite", cfg.Provider)
	assert.Equal(t, "file:test.db", cfg.DatabaseURL)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/work/mlquery.yaml", cfg.File)
	require.Len(t, cfg.Languages, 2)
	assert.Equal(t, "pl", cfg.Languages[1].Code)

	langs, err := cfg.LanguageRegistry()
	require.NoError(t, err)
	assert.Equal(t, 2, langs.Len())
	assert.Equal(t, "pl", langs.Default().Code)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	fs := memFs(t)
	require.NoError(t, afero.WriteFile(fs, "/work/mlquery.yaml", []byte(sample), 0o644))
	t.Setenv("MLQUERY_PROVIDER", "mysql")

	cfg, err := LoadConfig("/work/mlquery.yaml")
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Provider)
}

func TestDotEnv(t *testing.T) {
	fs := memFs(t)
	unsetEnv(t, "MLQUERY_DATABASE_URL", "MLQUERY_PROVIDER", "DATABASE_URL")
	require.NoError(t, afero.WriteFile(fs, "/work/empty.yaml", []byte("debug: false\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, ".env", []byte("MLQUERY_DATABASE_URL=postgres://localhost/app\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, ".env.local", []byte("MLQUERY_DATABASE_URL=file:local.db\n"), 0o644))

	cfg, err := LoadConfig("/work/empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, "file:local.db", cfg.DatabaseURL, ".env.local wins over .env")
	assert.Equal(t, "sqlite", cfg.Provider)
	assert.Equal(t, "schema.yaml", cfg.SchemaPath)

	langs, err := cfg.LanguageRegistry()
	require.NoError(t, err)
	assert.Nil(t, langs)
}

func TestConfigFileIsOptional(t *testing.T) {
	memFs(t)
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.File)

	_, err = LoadConfig("/missing.yaml")
	assert.Error(t, err)
}

func TestInvalidDefaultLanguage(t *testing.T) {
	cfg := &Config{
		Languages:       []languages.Definition{{Code: "en"}},
		DefaultLanguage: "de",
	}
	_, err := cfg.LanguageRegistry()
	assert.Error(t, err)
}

func TestSaveConfig(t *testing.T) {
	memFs(t)
	unsetEnv(t, "MLQUERY_PROVIDER")
	path, err := SaveConfig(&Config{
		SchemaPath:      "models.yaml",
		Provider:        "postgresql",
		DefaultLanguage: "en",
		Languages:       []languages.Definition{{Code: "en", Name: "English"}, {Code: "zh-cn", Name: "Chinese"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/.config/mlquery/.mlquery.yaml", path)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgresql", cfg.Provider)
	require.Len(t, cfg.Languages, 2)
	assert.Equal(t, "zh-cn", cfg.Languages[1].Code)
}

func TestDetectProvider(t *testing.T) {
	assert.Equal(t, "mysql", DetectProvider("mysql://root@localhost/app"))
	assert.Equal(t, "mysql", DetectProvider("root:pw@tcp(localhost:3306)/app"))
	assert.Equal(t, "sqlite", DetectProvider("file:app.db?cache=shared"))
	assert.Equal(t, "sqlite", DetectProvider(":memory:"))
	assert.Equal(t, "postgresql", DetectProvider("postgres://localhost/app"))
}

// Package config loads settings from .mlquery.yaml, MLQUERY_* environment
// variables and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/multilingual-go/languages"
)

// AppFs is the filesystem configuration and schema files are read from.
var AppFs = afero.NewOsFs()

const (
	fileName  = ".mlquery"
	envPrefix = "MLQUERY"
)

// Config holds the application configuration
type Config struct {
	SchemaPath      string
	DatabaseURL     string
	Provider        string
	Debug           bool
	DefaultLanguage string
	Languages       []languages.Definition
	// File is the configuration file that was read, "" when none was found.
	File string
}

// LoadConfig loads configuration from the config file, the environment and
// .env files. An explicit file must exist; otherwise .mlquery.yaml is looked
// up in the working directory, the home directory and ~/.config/mlquery.
func LoadConfig(file string) (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	// .env.local overrides .env; neither overrides the real environment.
	for _, name := range []string{".env.local", ".env"} {
		if err := loadDotEnv(name); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetFs(AppFs)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "mlquery"))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("schema_path", "schema.yaml")
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		SchemaPath:      v.GetString("schema_path"),
		DatabaseURL:     v.GetString("database_url"),
		Provider:        v.GetString("provider"),
		Debug:           v.GetBool("debug"),
		DefaultLanguage: v.GetString("default_language"),
		File:            v.ConfigFileUsed(),
	}
	if err := v.UnmarshalKey("languages", &cfg.Languages); err != nil {
		return nil, fmt.Errorf("config: languages: %w", err)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.Provider == "" && cfg.DatabaseURL != "" {
		cfg.Provider = DetectProvider(cfg.DatabaseURL)
	}
	return cfg, nil
}

// loadDotEnv sets variables from an env file that are not already set.
func loadDotEnv(name string) error {
	f, err := AppFs.Open(name)
	if err != nil {
		return nil
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	for k, val := range vars {
		if _, set := os.LookupEnv(k); !set {
			os.Setenv(k, val)
		}
	}
	return nil
}

// DetectProvider guesses the provider from a connection string.
func DetectProvider(connStr string) string {
	switch {
	case strings.HasPrefix(connStr, "mysql://"), strings.Contains(connStr, "@tcp("):
		return "mysql"
	case strings.Contains(connStr, "sqlite"), strings.HasPrefix(connStr, "file:"),
		strings.HasSuffix(connStr, ".db"), connStr == ":memory:":
		return "sqlite"
	}
	return "postgresql"
}

// LanguageRegistry builds the configured language registry. It returns nil
// when no languages are configured so the schema file's list applies.
func (c *Config) LanguageRegistry() (*languages.Registry, error) {
	if len(c.Languages) == 0 {
		return nil, nil
	}
	reg, err := languages.NewRegistry(c.Languages...)
	if err != nil {
		return nil, err
	}
	if c.DefaultLanguage != "" {
		if err := reg.SetDefault(c.DefaultLanguage); err != nil {
			return nil, fmt.Errorf("config: default_language: %w", err)
		}
	}
	return reg, nil
}

// SaveConfig writes cfg to ~/.config/mlquery/.mlquery.yaml and returns the path.
func SaveConfig(cfg *Config) (string, error) {
	v := viper.New()
	v.SetFs(AppFs)
	v.Set("schema_path", cfg.SchemaPath)
	v.Set("provider", cfg.Provider)
	v.Set("debug", cfg.Debug)
	if cfg.DefaultLanguage != "" {
		v.Set("default_language", cfg.DefaultLanguage)
	}
	if len(cfg.Languages) > 0 {
		langs := make([]map[string]string, len(cfg.Languages))
		for i, l := range cfg.Languages {
			langs[i] = map[string]string{"code": l.Code, "name": l.Name}
		}
		v.Set("languages", langs)
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(home, ".config", "mlquery")
	if err := AppFs.MkdirAll(configPath, 0755); err != nil {
		return "", err
	}

	configFile := filepath.Join(configPath, fileName+".yaml")
	return configFile, v.WriteConfigAs(configFile)
}

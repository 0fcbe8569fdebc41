package commands

import (
	"fmt"

	"github.com/satishbabariya/multilingual-go/internal/config"
	"github.com/satishbabariya/multilingual-go/schema"
)

// loadRegistry reads the configured schema file. Languages from the config
// take precedence over the ones the schema file declares.
func loadRegistry() (*schema.Registry, error) {
	doc, err := schema.Load(config.AppFs, cfg.SchemaPath)
	if err != nil {
		return nil, err
	}
	langs, err := cfg.LanguageRegistry()
	if err != nil {
		return nil, err
	}
	reg, err := doc.Build(langs)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", cfg.SchemaPath, err)
	}
	return reg, nil
}

// providerOrDefault returns the explicit provider, the configured one or postgresql.
func providerOrDefault(flag string) string {
	switch {
	case flag != "":
		return flag
	case cfg != nil && cfg.Provider != "":
		return cfg.Provider
	default:
		return "postgresql"
	}
}

func modelNames(reg *schema.Registry) []string {
	models := reg.Models()
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	return names
}

package schema

import (
	"bytes"
	"fmt"

	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/multilingual-go/languages"
)

// SupportedVersions is the range of schema file versions Parse accepts.
const SupportedVersions = ">= 1.0, < 2.0"

// Document is a parsed schema file.
type Document struct {
	Version         string                 `yaml:"version"`
	Languages       []languages.Definition `yaml:"languages"`
	DefaultLanguage string                 `yaml:"defaultLanguage"`
	Models          []*Model               `yaml:"models"`
}

// Parse decodes a YAML schema document and checks its version.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	if doc.Version == "" {
		return nil, fmt.Errorf("schema: missing version")
	}
	v, err := version.NewVersion(doc.Version)
	if err != nil {
		return nil, fmt.Errorf("schema: invalid version %q: %w", doc.Version, err)
	}
	constraint := version.MustConstraints(version.NewConstraint(SupportedVersions))
	if !constraint.Check(v) {
		return nil, fmt.Errorf("schema: version %s not supported (want %s)", v, SupportedVersions)
	}
	return &doc, nil
}

// Load reads and parses a schema file from fs.
func Load(fs afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	return Parse(data)
}

// Build registers the document's models. When langs is nil the document's own
// language list is used.
func (d *Document) Build(langs *languages.Registry) (*Registry, error) {
	if langs == nil {
		var err error
		langs, err = languages.NewRegistry(d.Languages...)
		if err != nil {
			return nil, err
		}
	}
	if d.DefaultLanguage != "" {
		if err := langs.SetDefault(d.DefaultLanguage); err != nil {
			return nil, err
		}
	}

	reg := NewRegistry(langs)
	if err := reg.Register(d.Models...); err != nil {
		return nil, err
	}
	return reg, nil
}

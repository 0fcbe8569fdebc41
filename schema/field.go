package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind classifies a field by how it relates rows.
type Kind int

const (
	Scalar Kind = iota
	ForeignKey
	OneToOne
	ManyToMany
)

func (k Kind) String() string {
	switch k {
	case ForeignKey:
		return "foreignKey"
	case OneToOne:
		return "oneToOne"
	case ManyToMany:
		return "manyToMany"
	default:
		return "scalar"
	}
}

// ParseKind parses the textual form used in schema files.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "scalar":
		return Scalar, nil
	case "foreignkey", "fk":
		return ForeignKey, nil
	case "onetoone", "o2o":
		return OneToOne, nil
	case "manytomany", "m2m":
		return ManyToMany, nil
	}
	return Scalar, fmt.Errorf("unknown field kind %q", s)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*k = parsed
	return nil
}

// Field is a model attribute. Relation fields carry the target model name in To.
type Field struct {
	Name        string `yaml:"name"`
	Column      string `yaml:"column"`
	Type        string `yaml:"type"`
	Kind        Kind   `yaml:"kind"`
	Nullable    bool   `yaml:"nullable"`
	PrimaryKey  bool   `yaml:"primaryKey"`
	To          string `yaml:"to"`
	ToField     string `yaml:"toField"`
	Through     string `yaml:"through"`
	RelatedName string `yaml:"relatedName"`

	// ParentLink marks the implicit one-to-one from a child model to a parent.
	ParentLink bool `yaml:"-"`

	model  *Model
	target *Model
}

// Model returns the model declaring the field.
func (f *Field) Model() *Model { return f.model }

// Target returns the related model for relation fields.
func (f *Field) Target() *Model { return f.target }

// IsRelation reports whether the field points at another model.
func (f *Field) IsRelation() bool { return f.Kind != Scalar }

// Concrete reports whether the field is stored as a column of its model's table.
func (f *Field) Concrete() bool { return f.Kind != ManyToMany }

// TargetField returns the field on the target model a relation points at.
func (f *Field) TargetField() *Field {
	if f.target == nil {
		return nil
	}
	if f.ToField != "" {
		if tf, ok := f.target.Field(f.ToField); ok {
			return tf
		}
	}
	return f.target.PK()
}

// ThroughTable returns the association table of a many-to-many field.
func (f *Field) ThroughTable() string {
	if f.Through != "" {
		return f.Through
	}
	return f.model.Table + "_" + f.Name
}

// ThroughColumns returns the association table columns pointing at the
// declaring model and at the target model.
func (f *Field) ThroughColumns() (source, target string) {
	src := strings.ToLower(f.model.Name)
	dst := strings.ToLower(f.target.Name)
	if src == dst {
		return "from_" + src + "_id", "to_" + dst + "_id"
	}
	return src + "_id", dst + "_id"
}

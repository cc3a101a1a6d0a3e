package services

import (
	"github.com/creativedestruction/searchdash/internal/core/domain"
)

// SchemaRegistry holds the canonical weighted field list for every document shape.
// Weights are relevance priors and are only changed by a deployment, followed
// by a reindex.
type SchemaRegistry struct {
	schema domain.Schema
}

// DefaultSchema returns the built-in schema: identity fields weighted highest,
// free text lower and raw links lowest.
func DefaultSchema() domain.Schema {
	return domain.Schema{
		Fields: []domain.FieldSpec{
			{Name: "username", Weight: 5.0, Type: domain.FieldTypeText},
			{Name: "handle", Weight: 5.0, Type: domain.FieldTypeText},
			{Name: "content", Weight: 3.0, Type: domain.FieldTypeText},
			{Name: "source", Weight: 1.0, Type: domain.FieldTypeText},
			{Name: "title", Weight: 5.0, Type: domain.FieldTypeText},
			{Name: "channel", Weight: 3.0, Type: domain.FieldTypeText},
			{Name: "guild", Weight: 3.0, Type: domain.FieldTypeText},
			{Name: "author", Weight: 5.0, Type: domain.FieldTypeText},
			{Name: "message_link", Weight: 1.0, Type: domain.FieldTypeText},
		},
		Prefixes: DefaultPrefixes(),
	}
}

// DefaultPrefixes returns the key prefixes of the three document shapes.
func DefaultPrefixes() []domain.PrefixBinding {
	return []domain.PrefixBinding{
		{Prefix: "Tweet:", Shape: domain.ShapeTweet},
		{Prefix: "Spaces:", Shape: domain.ShapeSpace},
		{Prefix: "discord_message:", Shape: domain.ShapeDiscordMessage},
	}
}

// NewSchemaRegistry creates a registry for the given schema.
// The schema is validated and copied.
func NewSchemaRegistry(schema domain.Schema) (*SchemaRegistry, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &SchemaRegistry{schema: schema.Clone()}, nil
}

// NewDefaultSchemaRegistry creates a registry holding DefaultSchema.
func NewDefaultSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{schema: DefaultSchema()}
}

// Describe returns a copy of the schema.
func (r *SchemaRegistry) Describe() domain.Schema {
	return r.schema.Clone()
}

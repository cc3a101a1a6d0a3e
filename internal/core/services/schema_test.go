package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creativedestruction/searchdash/internal/core/domain"
)

func TestDefaultSchema(t *testing.T) {
	schema := DefaultSchema()

	require.NoError(t, schema.Validate())
	assert.Equal(t, []string{
		"username", "handle", "content", "source", "title",
		"channel", "guild", "author", "message_link",
	}, schema.FieldNames())

	username, ok := schema.Field("username")
	require.True(t, ok)
	content, ok := schema.Field("content")
	require.True(t, ok)
	link, ok := schema.Field("message_link")
	require.True(t, ok)
	assert.Greater(t, username.Weight, content.Weight)
	assert.Greater(t, content.Weight, link.Weight)

	assert.Equal(t, domain.ShapeTweet, schema.Classify("Tweet:1"))
	assert.Equal(t, domain.ShapeSpace, schema.Classify("Spaces:1"))
	assert.Equal(t, domain.ShapeDiscordMessage, schema.Classify("discord_message:1"))
}

func TestNewSchemaRegistry_Invalid(t *testing.T) {
	_, err := NewSchemaRegistry(domain.Schema{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSchemaRegistry_DescribeReturnsCopy(t *testing.T) {
	registry := NewDefaultSchemaRegistry()

	schema := registry.Describe()
	schema.Fields[0].Weight = 100

	again := registry.Describe()
	assert.Equal(t, 5.0, again.Fields[0].Weight)
}

package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSchema() Schema {
	return Schema{
		Fields: []FieldSpec{
			{Name: "username", Weight: 5},
			{Name: "content", Weight: 3},
		},
		Prefixes: []PrefixBinding{
			{Prefix: "Tweet:", Shape: ShapeTweet},
			{Prefix: "Spaces:", Shape: ShapeSpace},
			{Prefix: "discord_message:", Shape: ShapeDiscordMessage},
		},
	}
}

func TestSchema_Validate(t *testing.T) {
	assert.NoError(t, testSchema().Validate())
}

func TestSchema_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Schema)
	}{
		{"no fields", func(s *Schema) { s.Fields = nil }},
		{"duplicate field", func(s *Schema) { s.Fields = append(s.Fields, FieldSpec{Name: "content", Weight: 1}) }},
		{"zero weight", func(s *Schema) { s.Fields[0].Weight = 0 }},
		{"negative weight", func(s *Schema) { s.Fields[1].Weight = -1 }},
		{"blank name", func(s *Schema) { s.Fields[0].Name = " " }},
		{"bad type", func(s *Schema) { s.Fields[0].Type = "TAG" }},
		{"no prefixes", func(s *Schema) { s.Prefixes = nil }},
		{"empty prefix", func(s *Schema) { s.Prefixes[0].Prefix = "" }},
		{"overlapping prefix", func(s *Schema) {
			s.Prefixes = append(s.Prefixes, PrefixBinding{Prefix: "Tweet:archived:", Shape: ShapeTweet})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSchema().Clone()
			tt.mutate(&s)
			err := s.Validate()
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestSchema_Classify(t *testing.T) {
	s := testSchema()

	assert.Equal(t, ShapeDiscordMessage, s.Classify("discord_message:42"))
	assert.Equal(t, ShapeTweet, s.Classify("Tweet:1"))
	assert.Equal(t, ShapeSpace, s.Classify("Spaces:abc"))
	assert.Equal(t, ShapeUnknown, s.Classify("Unrelated:1"))
	assert.Equal(t, ShapeUnknown, s.Classify(""))
	assert.Equal(t, ShapeUnknown, s.Classify("tweet:1"))
}

func TestSchema_Classify_LongestPrefixWins(t *testing.T) {
	s := Schema{Prefixes: []PrefixBinding{
		{Prefix: "a:", Shape: ShapeTweet},
		{Prefix: "a:b:", Shape: ShapeSpace},
	}}

	assert.Equal(t, ShapeSpace, s.Classify("a:b:1"))
	assert.Equal(t, ShapeTweet, s.Classify("a:c:1"))
}

func TestSchema_Accessors(t *testing.T) {
	s := testSchema()

	assert.Equal(t, []string{"username", "content"}, s.FieldNames())
	assert.Equal(t, []string{"Tweet:", "Spaces:", "discord_message:"}, s.PrefixList())

	f, ok := s.Field("content")
	assert.True(t, ok)
	assert.Equal(t, 3.0, f.Weight)
	assert.Equal(t, FieldTypeText, f.EffectiveType())

	_, ok = s.Field("missing")
	assert.False(t, ok)
}

func TestSchema_CloneIsIndependent(t *testing.T) {
	s := testSchema()
	c := s.Clone()
	c.Fields[0].Weight = 100

	assert.Equal(t, 5.0, s.Fields[0].Weight)
}

func TestIndexInfo_Matches(t *testing.T) {
	s := testSchema()
	info := IndexInfo{
		Name: "idx:all",
		Fields: []FieldSpec{
			{Name: "content", Weight: 3, Type: FieldTypeText},
			{Name: "username", Weight: 5, Type: FieldTypeText},
		},
		Prefixes: []string{"discord_message:", "Tweet:", "Spaces:"},
	}

	assert.True(t, info.Matches(s), "order of fields and prefixes is irrelevant")

	changedWeight := info
	changedWeight.Fields = []FieldSpec{{Name: "content", Weight: 2}, {Name: "username", Weight: 5}}
	assert.False(t, changedWeight.Matches(s))

	missingField := info
	missingField.Fields = info.Fields[:1]
	assert.False(t, missingField.Matches(s))

	renamed := info
	renamed.Fields = []FieldSpec{{Name: "content", Weight: 3}, {Name: "handle", Weight: 5}}
	assert.False(t, renamed.Matches(s))

	otherPrefixes := info
	otherPrefixes.Prefixes = []string{"Tweet:", "Spaces:"}
	assert.False(t, otherPrefixes.Matches(s))
}

func TestIndexPolicy_IsValid(t *testing.T) {
	assert.True(t, IndexPolicyReuse.IsValid())
	assert.True(t, IndexPolicyForceFresh.IsValid())
	assert.False(t, IndexPolicy("sometimes").IsValid())
}

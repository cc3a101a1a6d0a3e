package domain

import (
	"fmt"
	"sort"
	"strings"
)

// FieldType is the indexing type of a schema field.
type FieldType string

// FieldTypeText is a full-text field. It is the only type the index declares.
const FieldTypeText FieldType = "TEXT"

// FieldSpec is a named, weighted, searchable attribute shared across shapes.
type FieldSpec struct {
	// Name is the hash field name.
	Name string

	// Weight is the relevance multiplier for matches in this field.
	Weight float64

	// Type is the indexing type. Empty means TEXT.
	Type FieldType
}

// Validate checks the field has a name and a positive weight.
func (f FieldSpec) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: field name is required", ErrInvalidInput)
	}
	if f.Weight <= 0 {
		return fmt.Errorf("%w: field %q weight must be positive, got %v", ErrInvalidInput, f.Name, f.Weight)
	}
	if f.Type != "" && f.Type != FieldTypeText {
		return fmt.Errorf("%w: field %q has unsupported type %q", ErrInvalidInput, f.Name, f.Type)
	}
	return nil
}

// EffectiveType returns the field type, defaulting to TEXT.
func (f FieldSpec) EffectiveType() FieldType {
	if f.Type == "" {
		return FieldTypeText
	}
	return f.Type
}

// PrefixBinding maps a key prefix to the shape of the documents stored under it.
type PrefixBinding struct {
	Prefix string
	Shape  Shape
}

// Schema is the ordered field list of the index plus the key prefixes it covers.
// A document's key prefix, not its content, decides its shape.
type Schema struct {
	Fields   []FieldSpec
	Prefixes []PrefixBinding
}

// Validate checks field names are unique, weights are positive and
// no prefix is a prefix of another.
func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: schema has no fields", ErrInvalidInput)
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if err := f.Validate(); err != nil {
			return err
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidInput, f.Name)
		}
		seen[f.Name] = true
	}

	if len(s.Prefixes) == 0 {
		return fmt.Errorf("%w: schema has no key prefixes", ErrInvalidInput)
	}
	for i, a := range s.Prefixes {
		if a.Prefix == "" {
			return fmt.Errorf("%w: empty key prefix", ErrInvalidInput)
		}
		for j, b := range s.Prefixes {
			if i != j && strings.HasPrefix(b.Prefix, a.Prefix) {
				return fmt.Errorf("%w: key prefix %q overlaps %q", ErrInvalidInput, a.Prefix, b.Prefix)
			}
		}
	}
	return nil
}

// FieldNames returns the field names in declaration order.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// PrefixList returns the key prefixes in declaration order.
func (s Schema) PrefixList() []string {
	prefixes := make([]string, len(s.Prefixes))
	for i, p := range s.Prefixes {
		prefixes[i] = p.Prefix
	}
	return prefixes
}

// Field looks up a field by name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Classify returns the shape of the document stored at key using the
// longest matching prefix. Keys under no known prefix are ShapeUnknown.
func (s Schema) Classify(key string) Shape {
	shape := ShapeUnknown
	best := -1
	for _, p := range s.Prefixes {
		if len(p.Prefix) > best && strings.HasPrefix(key, p.Prefix) {
			shape = p.Shape
			best = len(p.Prefix)
		}
	}
	return shape
}

// Clone returns a deep copy of the schema.
func (s Schema) Clone() Schema {
	return Schema{
		Fields:   append([]FieldSpec(nil), s.Fields...),
		Prefixes: append([]PrefixBinding(nil), s.Prefixes...),
	}
}

// IndexDefinition binds a schema to an index name.
type IndexDefinition struct {
	Name   string
	Schema Schema
}

// IndexInfo is what the store reports about an existing index.
type IndexInfo struct {
	// Name is the index name.
	Name string

	// Fields are the declared attributes with their weights.
	Fields []FieldSpec

	// Prefixes are the key prefixes the index is bound to.
	Prefixes []string

	// NumDocs is the number of documents the index currently holds.
	NumDocs int

	// Raw holds the remaining scalar properties as reported by the store.
	Raw map[string]string
}

const weightEpsilon = 1e-6

// Matches reports whether the index was built from the given schema:
// same field names, types and weights, bound to the same prefixes.
func (i IndexInfo) Matches(s Schema) bool {
	if len(i.Fields) != len(s.Fields) {
		return false
	}
	for _, got := range i.Fields {
		want, ok := s.Field(got.Name)
		if !ok {
			return false
		}
		if got.EffectiveType() != want.EffectiveType() {
			return false
		}
		diff := got.Weight - want.Weight
		if diff > weightEpsilon || diff < -weightEpsilon {
			return false
		}
	}

	have := append([]string(nil), i.Prefixes...)
	want := s.PrefixList()
	if len(have) != len(want) {
		return false
	}
	sort.Strings(have)
	sort.Strings(want)
	for k := range have {
		if have[k] != want[k] {
			return false
		}
	}
	return true
}

// IndexOutcome describes what EnsureIndex did.
type IndexOutcome string

// Index outcomes.
const (
	// IndexOutcomeAlreadyExists means a matching index was found and left alone.
	IndexOutcomeAlreadyExists IndexOutcome = "already_exists"

	// IndexOutcomeCreated means no index existed and one was created.
	IndexOutcomeCreated IndexOutcome = "created"

	// IndexOutcomeRecreated means an index was dropped and created again.
	IndexOutcomeRecreated IndexOutcome = "recreated"
)

// IndexStatus is the result of ensuring the index.
type IndexStatus struct {
	Outcome IndexOutcome

	// Reindexed is the number of documents re-written after the index was ensured.
	Reindexed int

	// ReindexFailed is the number of documents that could not be re-written.
	ReindexFailed int
}

// IndexPolicy selects how startup treats an existing index.
type IndexPolicy string

// Index policies.
const (
	// IndexPolicyReuse keeps a matching index and recreates a mismatched one.
	IndexPolicyReuse IndexPolicy = "reuse"

	// IndexPolicyForceFresh drops and recreates the index on every startup.
	IndexPolicyForceFresh IndexPolicy = "force-fresh"
)

// IsValid returns true if the policy is recognised.
func (p IndexPolicy) IsValid() bool {
	return p == IndexPolicyReuse || p == IndexPolicyForceFresh
}

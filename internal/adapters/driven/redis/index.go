package redis

import (
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/creativedestruction/searchdash/internal/core/domain"
)

// createOptions maps an index definition onto FT.CREATE ... ON HASH PREFIX ...
// SCHEMA ... Every schema field is TEXT.
func createOptions(def domain.IndexDefinition) (*goredis.FTCreateOptions, []*goredis.FieldSchema) {
	prefixes := def.Schema.PrefixList()
	opts := &goredis.FTCreateOptions{
		OnHash: true,
		Prefix: make([]interface{}, 0, len(prefixes)),
	}
	for _, p := range prefixes {
		opts.Prefix = append(opts.Prefix, p)
	}

	schema := make([]*goredis.FieldSchema, 0, len(def.Schema.Fields))
	for _, f := range def.Schema.Fields {
		schema = append(schema, &goredis.FieldSchema{
			FieldName: f.Name,
			FieldType: goredis.SearchFieldTypeText,
			Weight:    f.Weight,
		})
	}
	return opts, schema
}

// indexInfo converts a decoded FT.INFO reply. Attributes without a
// reported weight get the server default of 1.
func indexInfo(name string, res goredis.FTInfoResult) *domain.IndexInfo {
	info := &domain.IndexInfo{
		Name:     name,
		NumDocs:  res.NumDocs,
		Prefixes: res.IndexDefinition.Prefixes,
		Fields:   make([]domain.FieldSpec, 0, len(res.Attributes)),
		Raw: map[string]string{
			"key_type":               res.IndexDefinition.KeyType,
			"num_docs":               strconv.Itoa(res.NumDocs),
			"max_doc_id":             strconv.Itoa(res.MaxDocID),
			"num_terms":              strconv.Itoa(res.NumTerms),
			"num_records":            strconv.Itoa(res.NumRecords),
			"indexing":               strconv.Itoa(res.Indexing),
			"percent_indexed":        formatFloat(res.PercentIndexed),
			"hash_indexing_failures": strconv.Itoa(res.HashIndexingFailures),
			"inverted_sz_mb":         formatFloat(res.InvertedSzMB),
		},
	}
	if res.IndexName != "" {
		info.Name = res.IndexName
	}

	for _, a := range res.Attributes {
		spec := domain.FieldSpec{
			Name:   a.Attribute,
			Type:   domain.FieldType(strings.ToUpper(a.Type)),
			Weight: a.Weight,
		}
		if spec.Name == "" {
			spec.Name = a.Identifier
		}
		if spec.Weight == 0 {
			spec.Weight = 1
		}
		info.Fields = append(info.Fields, spec)
	}
	return info
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

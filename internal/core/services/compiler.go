package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/creativedestruction/searchdash/internal/core/domain"
)

// specialChars matches every query-grammar special character, together with
// an escape that may already precede it. Replacing the whole match with
// "\" + char escapes bare characters and leaves escaped ones untouched.
var specialChars = regexp.MustCompile(`\\?([&|!{}\[\]^"~*?:\\()])`)

// EscapeQuery escapes the store grammar's special characters in a single pass.
// Escaping an already-escaped string returns it unchanged.
func EscapeQuery(text string) string {
	return specialChars.ReplaceAllString(text, `\$1`)
}

// QueryCompiler turns raw user text into a store expression.
type QueryCompiler struct{}

// NewQueryCompiler creates a query compiler.
func NewQueryCompiler() *QueryCompiler {
	return &QueryCompiler{}
}

// Compile builds the expression and retrieval options for req.
// It only fails on invalid input; raw expressions are not pre-validated and
// a store-side parse error surfaces when the query is executed.
func (c *QueryCompiler) Compile(req domain.QueryRequest, schema domain.Schema) (domain.CompiledQuery, error) {
	if err := req.Validate(); err != nil {
		return domain.CompiledQuery{}, err
	}

	q := domain.CompiledQuery{
		RawText:    req.RawText,
		Mode:       req.Mode,
		Offset:     req.Offset,
		Limit:      req.Limit,
		WithScores: req.WantScores,
	}

	switch req.Mode {
	case domain.QueryModeWeighted:
		if len(schema.Fields) == 0 {
			return domain.CompiledQuery{}, fmt.Errorf("%w: schema has no fields", domain.ErrInvalidInput)
		}
		q.Expression = weightedExpression(req.RawText, schema.FieldNames())
		q.Highlight = true
		q.Summarize = true

	case domain.QueryModeRaw:
		q.Expression = "(" + req.RawText + ")"
		q.Highlight = true
		q.Summarize = true

	case domain.QueryModeFuzzy:
		q.Expression = "*" + EscapeQuery(req.RawText) + "*"
		q.NoContent = true
	}

	return q, nil
}

// weightedExpression ORs the text across every field: @a:(text) | @b:(text).
// Ranking across fields comes from the index's field weights.
func weightedExpression(text string, fields []string) string {
	clauses := make([]string, len(fields))
	for i, f := range fields {
		clauses[i] = "@" + f + ":(" + text + ")"
	}
	return strings.Join(clauses, " | ")
}

package memory

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/creativedestruction/searchdash/internal/core/domain"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokPipe
	tokField
	tokWord
)

type token struct {
	kind   tokenKind
	text   string
	offset int
	lead   bool // leading "*"
	trail  bool // trailing "*"
}

// reserved characters that must be escaped inside a word.
const reserved = `&!{}[]^"~?:`

func syntaxError(offset int, format string, args ...any) error {
	return fmt.Errorf("%w: syntax error at offset %d: %s", domain.ErrQueryRejected, offset, fmt.Sprintf(format, args...))
}

func lex(expr string) ([]token, error) {
	runes := []rune(expr)
	var tokens []token

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, offset: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, offset: i})
			i++
		case r == '|':
			tokens = append(tokens, token{kind: tokPipe, offset: i})
			i++
		case r == '@':
			start := i
			i++
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			if i == start+1 || i >= len(runes) || runes[i] != ':' {
				return nil, syntaxError(start, "expected @field:")
			}
			tokens = append(tokens, token{kind: tokField, text: string(runes[start+1 : i]), offset: start})
			i++
		default:
			tok, next, err := lexWord(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next
		}
	}

	return append(tokens, token{kind: tokEOF, offset: len(runes)}), nil
}

func lexWord(runes []rune, start int) (token, int, error) {
	tok := token{kind: tokWord, offset: start}
	var b strings.Builder

	i := start
	if runes[i] == '*' {
		tok.lead = true
		i++
	}
	for i < len(runes) {
		r := runes[i]
		if unicode.IsSpace(r) || r == '(' || r == ')' || r == '|' {
			break
		}
		switch {
		case r == '\\':
			if i+1 >= len(runes) {
				return token{}, 0, syntaxError(i, "dangling escape")
			}
			b.WriteRune(runes[i+1])
			i += 2
			continue
		case r == '*':
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) || runes[i+1] == ')' || runes[i+1] == '|' {
				tok.trail = true
				i++
				continue
			}
			return token{}, 0, syntaxError(i, "unsupported wildcard position")
		case strings.ContainsRune(reserved, r) || r == '@':
			return token{}, 0, syntaxError(i, "unexpected %q", r)
		}
		b.WriteRune(r)
		i++
	}

	tok.text = strings.ToLower(b.String())
	if tok.text == "" {
		return token{}, 0, syntaxError(start, "empty term")
	}
	return tok, i, nil
}

// node is a parsed query expression.
type node interface {
	// eval reports whether doc matches within scope and the weighted score.
	eval(doc map[string]string, scope []domain.FieldSpec) (bool, float64)
}

type orNode []node

func (n orNode) eval(doc map[string]string, scope []domain.FieldSpec) (bool, float64) {
	matched, score := false, 0.0
	for _, child := range n {
		if ok, s := child.eval(doc, scope); ok {
			matched = true
			score += s
		}
	}
	return matched, score
}

type andNode []node

func (n andNode) eval(doc map[string]string, scope []domain.FieldSpec) (bool, float64) {
	score := 0.0
	for _, child := range n {
		ok, s := child.eval(doc, scope)
		if !ok {
			return false, 0
		}
		score += s
	}
	return true, score
}

type fieldNode struct {
	field domain.FieldSpec
	child node
}

func (n fieldNode) eval(doc map[string]string, _ []domain.FieldSpec) (bool, float64) {
	return n.child.eval(doc, []domain.FieldSpec{n.field})
}

type wordNode struct {
	text  string
	lead  bool
	trail bool
}

func (n wordNode) eval(doc map[string]string, scope []domain.FieldSpec) (bool, float64) {
	score := 0.0
	for _, f := range scope {
		if v, ok := doc[f.Name]; ok && n.matches(v) {
			score += f.Weight
		}
	}
	return score > 0, score
}

func (n wordNode) matches(value string) bool {
	lower := strings.ToLower(value)
	if n.lead && n.trail {
		return strings.Contains(lower, n.text)
	}
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		switch {
		case n.lead && strings.HasSuffix(tok, n.text):
			return true
		case n.trail && strings.HasPrefix(tok, n.text):
			return true
		case tok == n.text:
			return true
		}
	}
	return false
}

type parser struct {
	tokens []token
	pos    int
	schema domain.Schema
}

// parseQuery parses expr against the index schema.
func parseQuery(expr string, schema domain.Schema) (node, error) {
	tokens, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, schema: schema}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, syntaxError(tok.offset, "unexpected token")
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseExpr() (node, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	alts := orNode{first}
	for p.peek().kind == tokPipe {
		p.next()
		n, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		alts = append(alts, n)
	}
	if len(alts) == 1 {
		return first, nil
	}
	return alts, nil
}

func (p *parser) parseTerm() (node, error) {
	var factors andNode
	for {
		switch p.peek().kind {
		case tokPipe, tokRParen, tokEOF:
			if len(factors) == 0 {
				return nil, syntaxError(p.peek().offset, "expected term")
			}
			if len(factors) == 1 {
				return factors[0], nil
			}
			return factors, nil
		}
		n, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		factors = append(factors, n)
	}
}

func (p *parser) parseFactor() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokField:
		field, ok := p.schema.Field(tok.text)
		if !ok {
			return nil, fmt.Errorf("%w: unknown field `%s` at offset %d", domain.ErrQueryRejected, tok.text, tok.offset)
		}
		child, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return fieldNode{field: field, child: child}, nil

	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, syntaxError(closing.offset, "missing closing parenthesis")
		}
		return inner, nil

	case tokWord:
		return wordNode{text: tok.text, lead: tok.lead, trail: tok.trail}, nil

	default:
		return nil, syntaxError(tok.offset, "unexpected token")
	}
}

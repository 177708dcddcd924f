// Package expr implements the built-in rule language for field visibility.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-mapadmin/pkg/visibility"
)

// Evaluator is a small, dependency-free rule evaluator.
//
// Supported forms:
//   - truthiness: `published`
//   - equality: `status == "active"`, `featured != true`, `srid == 4326`
//   - ordered comparisons on numbers: `population >= 1000`, `zoom < 12`
//   - composition: `a && b`, `a || b`, `!(a && b)`, parentheses
//
// Identifiers resolve against visibility.Context.Values with dot-path
// traversal; the `extras.` prefix switches resolution to Context.Extras.
type Evaluator struct{}

// New returns the built-in evaluator.
func New() *Evaluator { return &Evaluator{} }

// Eval parses and evaluates a rule. Empty rules are visible.
func (e *Evaluator) Eval(fieldPath, rule string, ctx visibility.Context) (bool, error) {
	_ = fieldPath
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}

	lexemes, err := scan(trimmed)
	if err != nil {
		return false, err
	}
	if len(lexemes) == 0 {
		return true, nil
	}

	parser := &ruleParser{lexemes: lexemes}
	node, err := parser.parseOr()
	if err != nil {
		return false, err
	}
	if parser.pos < len(parser.lexemes) {
		return false, fmt.Errorf("visibility/expr: unexpected token %q", parser.lexemes[parser.pos].text)
	}
	return node.eval(ctx)
}

type lexemeKind int

const (
	lexIdent lexemeKind = iota
	lexString
	lexNumber
	lexBool
	lexNull
	lexEq
	lexNeq
	lexLt
	lexLte
	lexGt
	lexGte
	lexAnd
	lexOr
	lexNot
	lexOpen
	lexClose
)

type lexeme struct {
	kind lexemeKind
	text string
}

type scanner struct {
	input string
	pos   int
}

func (s *scanner) done() bool { return s.pos >= len(s.input) }

func (s *scanner) peek() byte {
	if s.done() {
		return 0
	}
	return s.input[s.pos]
}

func (s *scanner) advance() byte {
	ch := s.input[s.pos]
	s.pos++
	return ch
}

func scan(input string) ([]lexeme, error) {
	s := &scanner{input: input}
	var out []lexeme

	for !s.done() {
		switch ch := s.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			s.advance()
		case ch == '(':
			s.advance()
			out = append(out, lexeme{kind: lexOpen, text: "("})
		case ch == ')':
			s.advance()
			out = append(out, lexeme{kind: lexClose, text: ")"})
		case ch == '!':
			s.advance()
			if s.peek() == '=' {
				s.advance()
				out = append(out, lexeme{kind: lexNeq, text: "!="})
			} else {
				out = append(out, lexeme{kind: lexNot, text: "!"})
			}
		case ch == '=':
			s.advance()
			if s.peek() != '=' {
				return nil, errors.New("visibility/expr: unexpected '='; use '=='")
			}
			s.advance()
			out = append(out, lexeme{kind: lexEq, text: "=="})
		case ch == '<':
			s.advance()
			if s.peek() == '=' {
				s.advance()
				out = append(out, lexeme{kind: lexLte, text: "<="})
			} else {
				out = append(out, lexeme{kind: lexLt, text: "<"})
			}
		case ch == '>':
			s.advance()
			if s.peek() == '=' {
				s.advance()
				out = append(out, lexeme{kind: lexGte, text: ">="})
			} else {
				out = append(out, lexeme{kind: lexGt, text: ">"})
			}
		case ch == '&':
			s.advance()
			if s.peek() != '&' {
				return nil, errors.New("visibility/expr: unexpected '&'; use '&&'")
			}
			s.advance()
			out = append(out, lexeme{kind: lexAnd, text: "&&"})
		case ch == '|':
			s.advance()
			if s.peek() != '|' {
				return nil, errors.New("visibility/expr: unexpected '|'; use '||'")
			}
			s.advance()
			out = append(out, lexeme{kind: lexOr, text: "||"})
		case ch == '"' || ch == '\'':
			text, err := s.scanString()
			if err != nil {
				return nil, err
			}
			out = append(out, lexeme{kind: lexString, text: text})
		default:
			out = append(out, s.scanWord())
		}
	}

	return out, nil
}

func (s *scanner) scanString() (string, error) {
	quote := s.advance()
	start := s.pos
	escaped := false
	for !s.done() {
		ch := s.advance()
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == quote {
			// Re-quote so strconv.Unquote handles escapes.
			raw := string(quote) + s.input[start:s.pos-1] + string(quote)
			value, err := strconv.Unquote(raw)
			if err != nil {
				return "", fmt.Errorf("visibility/expr: invalid string literal: %w", err)
			}
			return value, nil
		}
	}
	return "", errors.New("visibility/expr: unterminated string literal")
}

func (s *scanner) scanWord() lexeme {
	start := s.pos
	for !s.done() {
		switch s.peek() {
		case ' ', '\t', '\n', '\r', '(', ')', '!', '=', '&', '|', '<', '>':
			return classifyWord(s.input[start:s.pos])
		}
		s.pos++
	}
	return classifyWord(s.input[start:s.pos])
}

func classifyWord(raw string) lexeme {
	switch strings.ToLower(raw) {
	case "true", "false":
		return lexeme{kind: lexBool, text: strings.ToLower(raw)}
	case "null", "nil":
		return lexeme{kind: lexNull, text: "null"}
	}
	if ch := raw[0]; (ch >= '0' && ch <= '9') || ch == '-' || ch == '+' {
		return lexeme{kind: lexNumber, text: raw}
	}
	return lexeme{kind: lexIdent, text: raw}
}

type node interface {
	eval(ctx visibility.Context) (bool, error)
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(ctx)
}

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(ctx)
}

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type truthyNode struct{ identifier string }

func (n truthyNode) eval(ctx visibility.Context) (bool, error) {
	value, ok := resolve(ctx, n.identifier)
	if !ok {
		return false, nil
	}
	return truthy(value), nil
}

type compareNode struct {
	identifier string
	op         lexemeKind
	literal    lexeme
}

func (n compareNode) eval(ctx visibility.Context) (bool, error) {
	value, _ := resolve(ctx, n.identifier)

	switch n.op {
	case lexEq, lexNeq:
		equal, err := n.literalEquals(value)
		if err != nil {
			return false, err
		}
		if n.op == lexNeq {
			return !equal, nil
		}
		return equal, nil
	case lexLt, lexLte, lexGt, lexGte:
		if n.literal.kind != lexNumber {
			return false, fmt.Errorf("visibility/expr: ordered comparison requires a number literal, got %q", n.literal.text)
		}
		want, err := strconv.ParseFloat(n.literal.text, 64)
		if err != nil {
			return false, fmt.Errorf("visibility/expr: invalid number literal %q", n.literal.text)
		}
		got, ok := coerceNumber(value)
		if !ok {
			return false, nil
		}
		switch n.op {
		case lexLt:
			return got < want, nil
		case lexLte:
			return got <= want, nil
		case lexGt:
			return got > want, nil
		default:
			return got >= want, nil
		}
	default:
		return false, fmt.Errorf("visibility/expr: unsupported operator")
	}
}

func (n compareNode) literalEquals(value any) (bool, error) {
	switch n.literal.kind {
	case lexNull:
		return value == nil, nil
	case lexBool:
		want := n.literal.text == "true"
		got, _ := coerceBool(value)
		return got == want, nil
	case lexNumber:
		want, err := strconv.ParseFloat(n.literal.text, 64)
		if err != nil {
			return false, fmt.Errorf("visibility/expr: invalid number literal %q", n.literal.text)
		}
		got, ok := coerceNumber(value)
		if !ok {
			got = 0
		}
		return got == want, nil
	case lexString, lexIdent:
		// Bare identifiers on the right compare as strings to keep rules
		// forgiving about quoting.
		return coerceString(value) == n.literal.text, nil
	default:
		return false, errors.New("visibility/expr: unsupported literal")
	}
}

type ruleParser struct {
	lexemes []lexeme
	pos     int
}

func (p *ruleParser) match(kind lexemeKind) bool {
	if p.pos >= len(p.lexemes) || p.lexemes[p.pos].kind != kind {
		return false
	}
	p.pos++
	return true
}

func (p *ruleParser) matchAny(kinds ...lexemeKind) (lexemeKind, bool) {
	if p.pos >= len(p.lexemes) {
		return 0, false
	}
	for _, kind := range kinds {
		if p.lexemes[p.pos].kind == kind {
			p.pos++
			return kind, true
		}
	}
	return 0, false
}

func (p *ruleParser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(lexOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *ruleParser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.match(lexAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *ruleParser) parseUnary() (node, error) {
	if p.match(lexNot) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *ruleParser) parsePrimary() (node, error) {
	if p.match(lexOpen) {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.match(lexClose) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}

	if p.pos >= len(p.lexemes) {
		return nil, errors.New("visibility/expr: empty expression")
	}
	ident := p.lexemes[p.pos]
	if ident.kind != lexIdent {
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", ident.text)
	}
	p.pos++

	op, ok := p.matchAny(lexEq, lexNeq, lexLt, lexLte, lexGt, lexGte)
	if !ok {
		return truthyNode{identifier: ident.text}, nil
	}

	if p.pos >= len(p.lexemes) {
		return nil, errors.New("visibility/expr: missing literal")
	}
	lit := p.lexemes[p.pos]
	switch lit.kind {
	case lexString, lexNumber, lexBool, lexNull, lexIdent:
		p.pos++
	default:
		return nil, fmt.Errorf("visibility/expr: expected literal, got %q", lit.text)
	}

	return compareNode{identifier: ident.text, op: op, literal: lit}, nil
}

// resolve reads an identifier from the context. The `extras.` prefix selects
// Context.Extras; everything else resolves against Context.Values.
func resolve(ctx visibility.Context, key string) (any, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}

	if strings.HasPrefix(strings.ToLower(key), "extras.") {
		return walkPath(ctx.Extras, strings.TrimSpace(key[len("extras."):]))
	}
	return walkPath(ctx.Values, key)
}

func walkPath(values map[string]any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if len(values) == 0 || path == "" {
		return nil, false
	}

	// A flat key containing dots wins over traversal; render values often
	// arrive keyed "office.address".
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, part := range strings.Split(path, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, false
		}
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case nil:
		return false, false
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return parsed, true
		}
		return strings.TrimSpace(v) != "", true
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		return v != 0, true
	default:
		return truthy(value), true
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}

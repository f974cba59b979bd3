// Package expr evaluates the small boolean language used by page visible_if
// rules:
//
//   - truthiness: `has_income`
//   - comparisons: `residency == "resident"`, `children != 0`
//   - composition: `a == "1" && !b`, `(a || b) && c`
//
// Identifiers are question codes read through visibility.Context.Lookup;
// `extras.` prefixed identifiers read visibility.Context.Extras.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-declaration/pkg/visibility"
)

// Evaluator implements visibility.Evaluator.
type Evaluator struct{}

var _ visibility.Evaluator = Evaluator{}

// New returns an Evaluator.
func New() Evaluator { return Evaluator{} }

// Eval parses and evaluates rule. An empty rule is true.
func (Evaluator) Eval(rule string, ctx visibility.Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return false, err
	}
	stream := &tokenStream{tokens: tokens}
	node, err := parseOr(stream)
	if err != nil {
		return false, err
	}
	if stream.pos < len(stream.tokens) {
		return false, fmt.Errorf("expr: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return node.eval(ctx), nil
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '!', '=', '&', '|':
		return true
	default:
		return false
	}
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case ch == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				i += 2
				continue
			}
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
			i++
		case ch == '=' || ch == '&' || ch == '|':
			if i+1 >= len(input) || input[i+1] != ch {
				return nil, fmt.Errorf("expr: unexpected %q; use %q", string(ch), string([]byte{ch, ch}))
			}
			kind := map[byte]tokenKind{'=': tokenEq, '&': tokenAnd, '|': tokenOr}[ch]
			tokens = append(tokens, token{kind: kind, raw: input[i : i+2]})
			i += 2
		case ch == '"' || ch == '\'':
			end := i + 1
			for end < len(input) && input[end] != ch {
				if input[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(input) {
				return nil, errors.New("expr: unterminated string literal")
			}
			body := input[i+1 : end]
			if ch == '\'' {
				body = strings.ReplaceAll(body, `"`, `\"`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return nil, fmt.Errorf("expr: invalid string literal: %w", err)
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
			i = end + 1
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			raw := input[start:i]
			switch {
			case strings.EqualFold(raw, "true") || strings.EqualFold(raw, "false"):
				tokens = append(tokens, token{kind: tokenBool, raw: strings.ToLower(raw)})
			case looksLikeNumber(raw):
				tokens = append(tokens, token{kind: tokenNumber, raw: raw})
			default:
				tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
			}
		}
	}
	return tokens, nil
}

func looksLikeNumber(raw string) bool {
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil
}

type node interface {
	eval(ctx visibility.Context) bool
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) bool { return n.left.eval(ctx) || n.right.eval(ctx) }

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) bool { return n.left.eval(ctx) && n.right.eval(ctx) }

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) bool { return !n.inner.eval(ctx) }

type truthyNode struct{ identifier string }

func (n truthyNode) eval(ctx visibility.Context) bool {
	value, ok := lookup(ctx, n.identifier)
	return ok && truthy(value)
}

type compareNode struct {
	identifier string
	negate     bool
	literal    token
}

func (n compareNode) eval(ctx visibility.Context) bool {
	value, _ := lookup(ctx, n.identifier)
	var equal bool
	switch n.literal.kind {
	case tokenBool:
		equal = truthy(value) == (n.literal.raw == "true")
	case tokenNumber:
		want, _ := strconv.ParseFloat(n.literal.raw, 64)
		got, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(value), ",", "."), 64)
		equal = err == nil && got == want
	default:
		equal = value == n.literal.raw
	}
	return equal != n.negate
}

type tokenStream struct {
	tokens []token
	pos    int
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos < len(s.tokens) && s.tokens[s.pos].kind == kind {
		s.pos++
		return true
	}
	return false
}

func parseOr(s *tokenStream) (node, error) {
	left, err := parseAnd(s)
	if err != nil {
		return nil, err
	}
	for s.match(tokenOr) {
		right, err := parseAnd(s)
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func parseAnd(s *tokenStream) (node, error) {
	left, err := parseUnary(s)
	if err != nil {
		return nil, err
	}
	for s.match(tokenAnd) {
		right, err := parseUnary(s)
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func parseUnary(s *tokenStream) (node, error) {
	if s.match(tokenNot) {
		inner, err := parseUnary(s)
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return parsePrimary(s)
}

func parsePrimary(s *tokenStream) (node, error) {
	if s.match(tokenLParen) {
		inner, err := parseOr(s)
		if err != nil {
			return nil, err
		}
		if !s.match(tokenRParen) {
			return nil, errors.New("expr: missing closing ')'")
		}
		return inner, nil
	}

	if s.pos >= len(s.tokens) {
		return nil, errors.New("expr: empty expression")
	}
	ident := s.tokens[s.pos]
	if ident.kind != tokenIdentifier {
		return nil, fmt.Errorf("expr: expected identifier, got %q", ident.raw)
	}
	s.pos++

	negate := false
	switch {
	case s.match(tokenEq):
	case s.match(tokenNeq):
		negate = true
	default:
		return truthyNode{identifier: ident.raw}, nil
	}

	if s.pos >= len(s.tokens) {
		return nil, errors.New("expr: missing literal")
	}
	lit := s.tokens[s.pos]
	s.pos++
	switch lit.kind {
	case tokenString, tokenNumber, tokenBool:
	case tokenIdentifier:
		// bare words compare as strings
		lit.kind = tokenString
	default:
		return nil, fmt.Errorf("expr: expected literal, got %q", lit.raw)
	}
	return compareNode{identifier: ident.raw, negate: negate, literal: lit}, nil
}

func lookup(ctx visibility.Context, identifier string) (string, bool) {
	if rest, ok := strings.CutPrefix(identifier, "extras."); ok {
		value, found := ctx.Extras[rest]
		if !found || value == nil {
			return "", false
		}
		return fmt.Sprint(value), true
	}
	if ctx.Lookup == nil {
		return "", false
	}
	return ctx.Lookup(identifier)
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "no":
		return false
	default:
		return true
	}
}

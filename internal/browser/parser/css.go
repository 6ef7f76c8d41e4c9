// internal/browser/parser/css.go
package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSelector is wrapped by every error returned from Parse.
var ErrInvalidSelector = errors.New("invalid css selector")

// SyntaxError reports where in the input the grammar was violated.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid css selector %q at offset %d: %s", e.Input, e.Pos, e.Msg)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidSelector).
func (e *SyntaxError) Unwrap() error { return ErrInvalidSelector }

// SelectorGroup represents a comma-separated list of selectors (e.g., "h1, h2 .title").
type SelectorGroup []ComplexSelector

// ComplexSelector represents a sequence of compound selectors joined by combinators (e.g., "div > p").
type ComplexSelector struct {
	Selectors []SimpleSelectorWithCombinator
}

// SimpleSelectorWithCombinator pairs a compound selector with its preceding combinator.
type SimpleSelectorWithCombinator struct {
	Combinator     Combinator
	SimpleSelector SimpleSelector
}

// SimpleSelector represents one compound selector (tag, ID, classes, attributes, pseudos).
type SimpleSelector struct {
	TagName       string
	ID            string
	Classes       []string
	Attributes    []AttributeSelector
	PseudoClasses []PseudoSelector
	PseudoElement string
}

// AttributeSelector represents a CSS attribute selector like `[href]` or `[target="_blank" i]`.
type AttributeSelector struct {
	Name     string
	Operator string // "", "=", "~=", "|=", "^=", "$=", "*="
	Value    string
	Modifier string // "", "i", "s"
}

// PseudoSelector is a pseudo-class such as `:hover` or `:not(.a, .b)`.
// Selector holds the parsed argument for the selector-taking pseudo-classes,
// Argument the raw text for the rest (e.g. `2n+1`).
type PseudoSelector struct {
	Name     string
	Argument string
	Selector SelectorGroup
}

// Combinator defines the relationship between compound selectors.
type Combinator int

const (
	CombinatorNone            Combinator = iota // No combinator (first selector)
	CombinatorDescendant                        // Space
	CombinatorChild                             // >
	CombinatorAdjacentSibling                   // +
	CombinatorGeneralSibling                    // ~
)

func (c Combinator) String() string {
	switch c {
	case CombinatorDescendant:
		return " "
	case CombinatorChild:
		return ">"
	case CombinatorAdjacentSibling:
		return "+"
	case CombinatorGeneralSibling:
		return "~"
	default:
		return ""
	}
}

// pseudo-classes whose argument is itself a selector list.
var selectorPseudos = map[string]bool{
	"not":   true,
	"is":    true,
	"where": true,
	"has":   true,
}

// CalculateSpecificity calculates the (a, b, c) specificity of a complex selector.
func (cs ComplexSelector) CalculateSpecificity() (int, int, int) {
	a, b, c := 0, 0, 0
	for _, s := range cs.Selectors {
		sa, sb, sc := s.SimpleSelector.CalculateSpecificity()
		a += sa
		b += sb
		c += sc
	}
	return a, b, c
}

// CalculateSpecificity calculates for a compound selector.
func (s SimpleSelector) CalculateSpecificity() (a, b, c int) {
	if s.ID != "" {
		a = 1
	}
	// Attribute selectors, classes and pseudo-classes have the same specificity.
	b = len(s.Classes) + len(s.Attributes) + len(s.PseudoClasses)
	if s.TagName != "" && s.TagName != "*" {
		c = 1
	}
	if s.PseudoElement != "" {
		c++
	}
	return a, b, c
}

// IsValid checks if the selector has at least one component.
func (s SimpleSelector) IsValid() bool {
	return s.TagName != "" || s.ID != "" || len(s.Classes) > 0 || len(s.Attributes) > 0 ||
		len(s.PseudoClasses) > 0 || s.PseudoElement != ""
}

// Parse validates input against the selector-list grammar and returns its
// structure. Unlike browser engines it never recovers: the first deviation
// is reported as a *SyntaxError.
func Parse(input string) (SelectorGroup, error) {
	p := NewParser(input)
	group, err := p.parseSelectorList(false)
	if err != nil {
		return nil, err
	}
	p.consumeWhitespace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.currentChar())
	}
	return group, nil
}

// Validate is Parse for callers that only need the verdict.
func Validate(input string) error {
	_, err := Parse(input)
	return err
}

// Parser holds the state of the CSS selector parser.
type Parser struct {
	input string
	pos   int
	depth int
}

func NewParser(input string) *Parser {
	return &Parser{input: input, pos: 0}
}

const maxNesting = 32

// parseSelectorList parses a comma-separated list of complex selectors. When
// nested is set, the list ends at the closing parenthesis of a pseudo-class
// and may start with a combinator (relative selectors, as in :has(> p)).
func (p *Parser) parseSelectorList(nested bool) (SelectorGroup, error) {
	var group SelectorGroup
	for {
		p.consumeWhitespace()
		if p.eof() || p.currentChar() == ',' || (nested && p.currentChar() == ')') {
			return nil, p.errorf("expected selector")
		}
		complexSel, err := p.parseComplexSelector(nested)
		if err != nil {
			return nil, err
		}
		group = append(group, complexSel)

		p.consumeWhitespace()
		if !p.eof() && p.currentChar() == ',' {
			p.consumeChar()
			continue
		}
		return group, nil
	}
}

// parseComplexSelector parses a sequence of compound selectors and combinators.
func (p *Parser) parseComplexSelector(relative bool) (ComplexSelector, error) {
	var complexSelector ComplexSelector
	combinator := CombinatorNone

	if relative {
		if c, ok := p.parseExplicitCombinator(); ok {
			combinator = c
		}
	}

	for {
		p.consumeWhitespace()
		if p.eof() || !p.startsCompound() {
			if combinator == CombinatorNone && len(complexSelector.Selectors) == 0 {
				return complexSelector, p.errorf("expected selector")
			}
			return complexSelector, p.errorf("expected selector after combinator %q", combinator.String())
		}

		simple, err := p.parseSimpleSelector()
		if err != nil {
			return complexSelector, err
		}
		complexSelector.Selectors = append(complexSelector.Selectors, SimpleSelectorWithCombinator{
			Combinator:     combinator,
			SimpleSelector: simple,
		})

		// A pseudo-element must be the last compound in the chain.
		if simple.PseudoElement != "" {
			p.consumeWhitespace()
			if !p.eof() && p.startsCompoundOrCombinator() {
				return complexSelector, p.errorf("pseudo-element ::%s must end the selector", simple.PseudoElement)
			}
			return complexSelector, nil
		}

		hadSpace := p.consumeWhitespace()
		if p.eof() || p.currentChar() == ',' || p.currentChar() == ')' {
			return complexSelector, nil
		}

		if c, ok := p.parseExplicitCombinator(); ok {
			combinator = c
			continue
		}
		if hadSpace && p.startsCompound() {
			combinator = CombinatorDescendant
			continue
		}
		return complexSelector, p.errorf("unexpected %q", p.currentChar())
	}
}

func (p *Parser) parseExplicitCombinator() (Combinator, bool) {
	p.consumeWhitespace()
	if p.eof() {
		return CombinatorNone, false
	}
	switch p.currentChar() {
	case '>':
		p.consumeChar()
		return CombinatorChild, true
	case '+':
		p.consumeChar()
		return CombinatorAdjacentSibling, true
	case '~':
		p.consumeChar()
		return CombinatorGeneralSibling, true
	}
	return CombinatorNone, false
}

func (p *Parser) startsCompound() bool {
	if p.eof() {
		return false
	}
	ch := p.currentChar()
	return ch == '*' || ch == '#' || ch == '.' || ch == '[' || ch == ':' || p.startsIdentifier()
}

func (p *Parser) startsCompoundOrCombinator() bool {
	ch := p.currentChar()
	return p.startsCompound() || ch == '>' || ch == '+' || ch == '~'
}

// parseSimpleSelector parses a single compound selector (e.g., div#id.class1[attr]:hover).
func (p *Parser) parseSimpleSelector() (SimpleSelector, error) {
	selector := SimpleSelector{}

	// Universal or Tag Name
	if p.currentChar() == '*' {
		p.consumeChar()
		selector.TagName = "*"
	} else if p.startsIdentifier() {
		name, err := p.parseIdentifier()
		if err != nil {
			return selector, err
		}
		selector.TagName = strings.ToLower(name)
	}

	// IDs, Classes, Attributes and Pseudos
	for !p.eof() {
		switch p.currentChar() {
		case '#':
			p.consumeChar()
			id, err := p.parseIdentifier()
			if err != nil {
				return selector, err
			}
			if selector.ID != "" {
				return selector, p.errorf("compound selector has more than one id")
			}
			selector.ID = id
		case '.':
			p.consumeChar()
			class, err := p.parseIdentifier()
			if err != nil {
				return selector, err
			}
			selector.Classes = append(selector.Classes, class)
		case '[':
			p.consumeChar() // consume '['
			attr, err := p.parseAttributeSelector()
			if err != nil {
				return selector, err
			}
			selector.Attributes = append(selector.Attributes, attr)
		case ':':
			p.consumeChar()
			if !p.eof() && p.currentChar() == ':' {
				p.consumeChar()
				name, err := p.parseIdentifier()
				if err != nil {
					return selector, err
				}
				selector.PseudoElement = strings.ToLower(name)
				return selector, nil
			}
			pseudo, err := p.parsePseudoClass()
			if err != nil {
				return selector, err
			}
			selector.PseudoClasses = append(selector.PseudoClasses, pseudo)
		default:
			goto done
		}
	}

done:
	if !selector.IsValid() {
		return selector, p.errorf("expected selector")
	}
	return selector, nil
}

// parseAttributeSelector parses the contents of `[...]` for an attribute selector.
func (p *Parser) parseAttributeSelector() (AttributeSelector, error) {
	p.consumeWhitespace()
	name, err := p.parseIdentifier()
	if err != nil {
		return AttributeSelector{}, err
	}
	p.consumeWhitespace()

	if p.eof() {
		return AttributeSelector{}, p.errorf("unexpected end of input in attribute selector")
	}

	// If we hit ']', it's a presence selector like `[disabled]`.
	if p.currentChar() == ']' {
		p.consumeChar()
		return AttributeSelector{Name: name}, nil
	}

	var operator string
	switch ch := p.currentChar(); ch {
	case '=':
		p.consumeChar()
		operator = "="
	case '~', '|', '^', '$', '*':
		p.consumeChar()
		if p.eof() || p.currentChar() != '=' {
			return AttributeSelector{}, p.errorf("expected '=' after %q in attribute selector", ch)
		}
		p.consumeChar()
		operator = string(ch) + "="
	default:
		return AttributeSelector{}, p.errorf("unexpected %q in attribute selector", ch)
	}

	p.consumeWhitespace()
	if p.eof() {
		return AttributeSelector{}, p.errorf("expected attribute value")
	}

	var value string
	if p.currentChar() == '"' || p.currentChar() == '\'' {
		value, err = p.parseQuotedString()
	} else {
		value, err = p.parseIdentifier()
	}
	if err != nil {
		return AttributeSelector{}, err
	}

	attr := AttributeSelector{Name: name, Operator: operator, Value: value}

	if p.consumeWhitespace() && p.startsIdentifier() {
		mod, err := p.parseIdentifier()
		if err != nil {
			return AttributeSelector{}, err
		}
		mod = strings.ToLower(mod)
		if mod != "i" && mod != "s" {
			return AttributeSelector{}, p.errorf("unknown attribute modifier %q", mod)
		}
		attr.Modifier = mod
		p.consumeWhitespace()
	}

	if p.eof() || p.currentChar() != ']' {
		return AttributeSelector{}, p.errorf("expected ']' to close attribute selector")
	}
	p.consumeChar() // consume ']'
	return attr, nil
}

// parsePseudoClass parses the name (and optional argument) following ':'.
func (p *Parser) parsePseudoClass() (PseudoSelector, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return PseudoSelector{}, err
	}
	pseudo := PseudoSelector{Name: strings.ToLower(name)}
	if p.eof() || p.currentChar() != '(' {
		return pseudo, nil
	}
	p.consumeChar() // consume '('

	if selectorPseudos[pseudo.Name] {
		p.depth++
		if p.depth > maxNesting {
			return pseudo, p.errorf("selector nesting too deep")
		}
		group, err := p.parseSelectorList(pseudo.Name == "has")
		p.depth--
		if err != nil {
			return pseudo, err
		}
		pseudo.Selector = group
	} else {
		start := p.pos
		if err := p.skipBalanced(); err != nil {
			return pseudo, err
		}
		pseudo.Argument = strings.TrimSpace(p.input[start:p.pos])
		if pseudo.Argument == "" {
			return pseudo, p.errorf("empty argument to :%s()", pseudo.Name)
		}
	}

	p.consumeWhitespace()
	if p.eof() || p.currentChar() != ')' {
		return pseudo, p.errorf("expected ')' to close :%s(", pseudo.Name)
	}
	p.consumeChar()
	return pseudo, nil
}

// skipBalanced advances to the ')' matching an already consumed '('.
func (p *Parser) skipBalanced() error {
	depth := 0
	for !p.eof() {
		switch ch := p.currentChar(); ch {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return nil
			}
			depth--
		case '"', '\'':
			if _, err := p.parseQuotedString(); err != nil {
				return err
			}
			continue
		}
		p.pos++
	}
	return p.errorf("unterminated '('")
}

// --- Lexer-like Helpers ---

func (p *Parser) errorf(format string, args ...any) error {
	return &SyntaxError{Input: p.input, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *Parser) currentChar() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) peek(n int) byte {
	if p.pos+n >= len(p.input) {
		return 0
	}
	return p.input[p.pos+n]
}

func (p *Parser) consumeChar() byte {
	ch := p.currentChar()
	if !p.eof() {
		p.pos++
	}
	return ch
}

// consumeWhitespace reports whether anything was skipped.
func (p *Parser) consumeWhitespace() bool {
	start := p.pos
	for !p.eof() && isWhitespace(p.currentChar()) {
		p.pos++
	}
	return p.pos > start
}

func (p *Parser) parseQuotedString() (string, error) {
	quote := p.consumeChar()
	var b strings.Builder
	for !p.eof() {
		ch := p.consumeChar()
		switch {
		case ch == '\\':
			if p.eof() {
				return "", p.errorf("unterminated escape in string")
			}
			b.WriteByte(p.consumeChar())
		case ch == quote:
			return b.String(), nil
		case ch == '\n':
			return "", p.errorf("newline in string")
		default:
			b.WriteByte(ch)
		}
	}
	return "", p.errorf("unterminated string")
}

// startsIdentifier follows the CSS ident-token start rules: a name-start
// char, or '-' followed by a name-start char, '-' or an escape.
func (p *Parser) startsIdentifier() bool {
	ch := p.currentChar()
	switch {
	case isValidIdentifierStart(ch):
		return true
	case ch == '\\':
		return p.peek(1) != 0 && p.peek(1) != '\n'
	case ch == '-':
		next := p.peek(1)
		return isValidIdentifierStart(next) || next == '-' || next == '\\'
	}
	return false
}

func (p *Parser) parseIdentifier() (string, error) {
	if !p.startsIdentifier() {
		if p.eof() {
			return "", p.errorf("expected identifier, got end of input")
		}
		return "", p.errorf("expected identifier, got %q", p.currentChar())
	}
	var b strings.Builder
	for !p.eof() {
		ch := p.currentChar()
		if ch == '\\' {
			p.consumeChar()
			if p.eof() {
				return "", p.errorf("unterminated escape")
			}
			b.WriteByte(p.consumeChar())
			continue
		}
		if !isValidIdentifierChar(ch) {
			break
		}
		b.WriteByte(p.consumeChar())
	}
	return b.String(), nil
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isValidIdentifierStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch >= 0x80
}

func isValidIdentifierChar(ch byte) bool {
	return isValidIdentifierStart(ch) || ch == '-' || (ch >= '0' && ch <= '9')
}

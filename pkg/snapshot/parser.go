package snapshot

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/platinummonkey/apicheck/pkg/apimodel"
)

// Parser turns snapshot text into an apimodel.Model in a single forward
// pass with one token of lookahead.
type Parser struct {
	scanner  *Scanner
	current  Token
	next     Token
	dialect  *Dialect
	filename string
	builder  *apimodel.Builder
	classPos map[string]Position
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithDialect selects the keyword tables used by the parser.
func WithDialect(d *Dialect) ParserOption {
	return func(p *Parser) {
		if d != nil {
			p.dialect = d
		}
	}
}

// WithFilename sets the file name reported in parse errors.
func WithFilename(name string) ParserOption {
	return func(p *Parser) {
		p.filename = name
	}
}

// NewParser creates a parser over content.
func NewParser(content string, opts ...ParserOption) *Parser {
	p := &Parser{
		scanner:  NewScanner(content),
		dialect:  DefaultDialect(),
		classPos: make(map[string]Position),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses snapshot text into a Model.
func Parse(content string, opts ...ParserOption) (*apimodel.Model, error) {
	return NewParser(content, opts...).Parse()
}

// ParseFile reads and parses a snapshot file. I/O errors are returned as
// they come from the filesystem.
func ParseFile(path string, opts ...ParserOption) (*apimodel.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts = append([]ParserOption{WithFilename(path)}, opts...)
	return Parse(string(data), opts...)
}

// Parse parses the whole input and returns the model.
func (p *Parser) Parse() (*apimodel.Model, error) {
	p.builder = apimodel.NewBuilder()

	// Initialize by reading the first two tokens
	p.advance()
	p.advance()

	for p.current.Type != TokenEOF {
		if err := p.parsePackage(); err != nil {
			return nil, err
		}
	}

	model, err := p.builder.Build()
	if err != nil {
		var cycle *apimodel.CycleError
		if errors.As(err, &cycle) {
			return nil, &ParseError{File: p.filename, Pos: p.classPos[cycle.Class], Msg: err.Error(), Err: err}
		}
		return nil, err
	}
	return model, nil
}

// advance moves to the next token, dropping comments.
func (p *Parser) advance() {
	p.current = p.next
	for {
		tok, _ := p.scanner.Scan()
		if tok.Type != TokenComment {
			p.next = tok
			return
		}
	}
}

func (p *Parser) isPunct(text string) bool {
	return p.current.Type == TokenPunctuation && p.current.Text == text
}

func (p *Parser) isWord(text string) bool {
	return p.current.Type == TokenIdentifier && p.current.Text == text
}

func (p *Parser) errorAt(pos Position, format string, args ...interface{}) *ParseError {
	return &ParseError{File: p.filename, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) unexpected(expected string) *ParseError {
	if p.current.Type == TokenError {
		return p.errorAt(p.current.Pos, "%s", p.current.Text)
	}
	return &ParseError{
		File:     p.filename,
		Pos:      p.current.Pos,
		Expected: expected,
		Found:    p.current.describe(),
	}
}

// unclosed reports a bracket that was never closed at the bracket itself.
func (p *Parser) unclosed(open Token, what string) *ParseError {
	return p.errorAt(open.Pos, "unclosed '%s' for %s (found %s at %s)", open.Text, what, p.current.describe(), p.current.Pos)
}

// atBlockBoundary reports whether the current token can only appear after a
// missing closing bracket.
func (p *Parser) atBlockBoundary() bool {
	switch {
	case p.current.Type == TokenEOF:
		return true
	case p.current.Type == TokenPunctuation:
		switch p.current.Text {
		case ";", "{", "}", ")":
			return true
		}
	}
	return false
}

func (p *Parser) expectPunct(text string) error {
	if !p.isPunct(text) {
		return p.unexpected("'" + text + "'")
	}
	p.advance()
	return nil
}

// expectName consumes a non-keyword identifier.
func (p *Parser) expectName(what string) (Token, error) {
	tok := p.current
	if tok.Type != TokenIdentifier || p.dialect.isKeyword(tok.Text) {
		return tok, p.unexpected(what)
	}
	p.advance()
	return tok, nil
}

func (p *Parser) parsePackage() error {
	if !p.isWord("package") {
		return p.unexpected("'package'")
	}
	p.advance()

	nameTok, err := p.expectName("package name")
	if err != nil {
		return err
	}
	open := p.current
	if err := p.expectPunct("{"); err != nil {
		return err
	}
	p.builder.AddPackage(nameTok.Text)

	for {
		switch {
		case p.isPunct("}"):
			p.advance()
			return nil
		case p.current.Type == TokenEOF, p.isWord("package"):
			return p.unclosed(open, "package "+nameTok.Text)
		}
		if err := p.parseClass(nameTok.Text); err != nil {
			return err
		}
	}
}

func (p *Parser) parseClass(pkg string) error {
	kind, ok := p.dialect.classKind(p.current.Text)
	if p.current.Type != TokenIdentifier || !ok {
		return p.unexpected("class declaration")
	}
	p.advance()

	class := &apimodel.ClassType{
		Package:    pkg,
		Kind:       kind,
		Visibility: p.dialect.defaultVis,
	}
	if vis, ok := p.dialect.visibility(p.current.Text); ok && p.current.Type == TokenIdentifier {
		class.Visibility = vis
		p.advance()
	}
	for p.current.Type == TokenIdentifier {
		mod, ok := p.dialect.modifier(p.current.Text, false)
		if !ok {
			break
		}
		class.Modifiers |= mod
		p.advance()
	}

	nameTok, err := p.expectName("class name")
	if err != nil {
		return err
	}
	if p.current.Type == TokenIdentifier && !p.isWord("extends") && !p.isWord("implements") {
		return p.errorAt(nameTok.Pos, "unrecognized modifier '%s'", nameTok.Text)
	}
	class.Name = nameTok.Text

	if p.isPunct("<") {
		if class.TypeParams, err = p.parseTypeParams(); err != nil {
			return err
		}
	}
	if p.isWord("extends") {
		p.advance()
		if kind == apimodel.KindInterface || kind == apimodel.KindAnnotation {
			if class.Interfaces, err = p.parseTypeList(); err != nil {
				return err
			}
		} else if class.Superclass, err = p.parseType(); err != nil {
			return err
		}
	}
	if p.isWord("implements") {
		p.advance()
		list, err := p.parseTypeList()
		if err != nil {
			return err
		}
		class.Interfaces = append(class.Interfaces, list...)
	}

	open := p.current
	if err := p.expectPunct("{"); err != nil {
		return err
	}
	if err := p.builder.AddClass(class); err != nil {
		return &ParseError{File: p.filename, Pos: nameTok.Pos, Msg: err.Error(), Err: err}
	}
	p.classPos[class.FullName()] = nameTok.Pos

	for {
		switch {
		case p.isPunct("}"):
			p.advance()
			return nil
		case p.current.Type == TokenEOF, p.isWord("package"):
			return p.unclosed(open, kind.String()+" "+class.FullName())
		}
		if _, isClass := p.dialect.classKind(p.current.Text); isClass && p.current.Type == TokenIdentifier {
			return p.unclosed(open, kind.String()+" "+class.FullName())
		}
		if err := p.parseMember(class); err != nil {
			return err
		}
	}
}

func (p *Parser) parseMember(class *apimodel.ClassType) error {
	kwTok := p.current
	kind, ok := p.dialect.memberKind(kwTok.Text)
	if kwTok.Type != TokenIdentifier || !ok {
		return p.unexpected("member declaration")
	}
	p.advance()

	mem := &apimodel.Member{Kind: kind, Visibility: p.dialect.defaultVis}
	if vis, ok := p.dialect.visibility(p.current.Text); ok && p.current.Type == TokenIdentifier {
		mem.Visibility = vis
		p.advance()
	}
	for p.current.Type == TokenIdentifier {
		mod, ok := p.dialect.modifier(p.current.Text, true)
		if !ok {
			break
		}
		mem.Modifiers |= mod
		p.advance()
	}

	var err error
	switch kind {
	case apimodel.MemberConstructor, apimodel.MemberMethod:
		if p.isPunct("<") {
			if mem.TypeParams, err = p.parseTypeParams(); err != nil {
				return err
			}
		}
		leadTok := p.current
		if kind == apimodel.MemberMethod {
			if mem.ReturnType, err = p.parseType(); err != nil {
				return err
			}
		}
		nameTok, err := p.expectName("member name")
		if err != nil {
			return err
		}
		if p.current.Type == TokenIdentifier {
			return p.errorAt(leadTok.Pos, "unrecognized modifier '%s'", leadTok.Text)
		}
		mem.Name = nameTok.Text
		if mem.Params, err = p.parseParams(); err != nil {
			return err
		}
		if p.isWord("throws") {
			p.advance()
			if mem.Throws, err = p.parseTypeList(); err != nil {
				return err
			}
		}
	case apimodel.MemberField:
		typeTok := p.current
		if mem.Type, err = p.parseType(); err != nil {
			return err
		}
		nameTok, err := p.expectName("field name")
		if err != nil {
			return err
		}
		if p.current.Type == TokenIdentifier {
			return p.errorAt(typeTok.Pos, "unrecognized modifier '%s'", typeTok.Text)
		}
		mem.Name = nameTok.Text
		if p.isPunct("=") {
			p.advance()
			if mem.Value, err = p.parseLiteral(); err != nil {
				return err
			}
			mem.HasValue = true
		}
	}

	if err := p.expectPunct(";"); err != nil {
		return err
	}
	if err := p.builder.AddMember(class, mem); err != nil {
		return &ParseError{File: p.filename, Pos: kwTok.Pos, Msg: err.Error(), Err: err}
	}
	return nil
}

// parseType parses a type expression and returns its normalized text.
func (p *Parser) parseType() (string, error) {
	tok, err := p.expectName("type")
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(tok.Text)

	for p.isPunct("<") {
		args, err := p.parseTypeArgs()
		if err != nil {
			return "", err
		}
		sb.WriteString(args)
		if !p.isPunct(".") {
			break
		}
		p.advance()
		inner, err := p.expectName("nested type name")
		if err != nil {
			return "", err
		}
		sb.WriteString("." + inner.Text)
	}
	for p.isPunct("[") {
		open := p.current
		p.advance()
		if !p.isPunct("]") {
			return "", p.unclosed(open, "array type "+sb.String())
		}
		p.advance()
		sb.WriteString("[]")
	}
	if p.isPunct("...") {
		p.advance()
		sb.WriteString("...")
	}
	return sb.String(), nil
}

func (p *Parser) parseTypeArgs() (string, error) {
	open := p.current
	p.advance()

	var args []string
	for {
		var arg string
		if p.isPunct("?") {
			p.advance()
			arg = "?"
			if p.isWord("extends") || p.isWord("super") {
				bound := p.current.Text
				p.advance()
				t, err := p.parseType()
				if err != nil {
					return "", err
				}
				arg += " " + bound + " " + t
			}
		} else {
			t, err := p.parseType()
			if err != nil {
				return "", err
			}
			arg = t
		}
		args = append(args, arg)

		switch {
		case p.isPunct(","):
			p.advance()
		case p.isPunct(">"):
			p.advance()
			return "<" + strings.Join(args, ", ") + ">", nil
		default:
			return "", p.unclosed(open, "type arguments")
		}
	}
}

func (p *Parser) parseTypeParams() ([]apimodel.TypeParam, error) {
	open := p.current
	p.advance()

	var params []apimodel.TypeParam
	for {
		nameTok, err := p.expectName("type parameter name")
		if err != nil {
			return nil, err
		}
		param := apimodel.TypeParam{Name: nameTok.Text}
		if p.isWord("extends") {
			p.advance()
			for {
				bound, err := p.parseType()
				if err != nil {
					return nil, err
				}
				param.Bounds = append(param.Bounds, bound)
				if !p.isPunct("&") {
					break
				}
				p.advance()
			}
		}
		params = append(params, param)

		switch {
		case p.isPunct(","):
			p.advance()
		case p.isPunct(">"):
			p.advance()
			return params, nil
		default:
			return nil, p.unclosed(open, "type parameters")
		}
	}
}

func (p *Parser) parseTypeList() ([]string, error) {
	var list []string
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		list = append(list, t)
		if !p.isPunct(",") {
			return list, nil
		}
		p.advance()
	}
}

// parseParams parses a parenthesized parameter type list. Parameter names,
// when present, are skipped.
func (p *Parser) parseParams() ([]string, error) {
	open := p.current
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	params := []string{}
	if p.isPunct(")") {
		p.advance()
		return params, nil
	}
	for {
		t, err := p.parseType()
		if err != nil {
			if p.atBlockBoundary() && !p.isPunct(")") {
				return nil, p.unclosed(open, "parameter list")
			}
			return nil, err
		}
		params = append(params, t)
		if p.current.Type == TokenIdentifier && !p.dialect.isKeyword(p.current.Text) {
			p.advance()
		}

		switch {
		case p.isPunct(","):
			p.advance()
		case p.isPunct(")"):
			p.advance()
			return params, nil
		default:
			return nil, p.unclosed(open, "parameter list")
		}
	}
}

func (p *Parser) parseLiteral() (string, error) {
	tok := p.current
	switch {
	case p.isPunct("-"):
		p.advance()
		if p.current.Type != TokenNumber {
			return "", p.unexpected("numeric literal")
		}
		text := "-" + p.current.Text
		p.advance()
		return text, nil
	case tok.Type == TokenNumber, tok.Type == TokenString:
		p.advance()
		return tok.Text, nil
	case p.isWord("true"), p.isWord("false"), p.isWord("null"):
		p.advance()
		return tok.Text, nil
	}
	return "", p.unexpected("constant literal")
}

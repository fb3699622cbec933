package snapshot

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType represents the type of token
type TokenType string

const (
	TokenIdentifier  TokenType = "IDENTIFIER"
	TokenString      TokenType = "STRING"
	TokenNumber      TokenType = "NUMBER"
	TokenPunctuation TokenType = "PUNCTUATION"
	TokenComment     TokenType = "COMMENT"
	TokenEOF         TokenType = "EOF"
	TokenError       TokenType = "ERROR"
)

// Position is a location in the snapshot text. Line and Column are 1-based.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token
type Token struct {
	Type TokenType
	Text string
	Pos  Position
}

// describe renders the token for "found ..." diagnostics.
func (t Token) describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of file"
	case TokenError:
		return t.Text
	default:
		return "'" + t.Text + "'"
	}
}

// Scanner splits snapshot text into tokens.
type Scanner struct {
	src    []rune
	ch     rune // current character, -1 at EOF
	offset int  // offset of ch
	line   int
	column int
}

// NewScanner creates a new Scanner
func NewScanner(content string) *Scanner {
	s := &Scanner{
		src:    []rune(content),
		offset: -1,
		line:   1,
		column: 0,
	}
	s.next()
	return s
}

// next reads the next character into s.ch and updates line/column.
func (s *Scanner) next() {
	if s.ch == '\n' {
		s.line++
		s.column = 0
	}
	s.offset++
	if s.offset >= len(s.src) {
		s.ch = -1
		s.offset = len(s.src)
		return
	}
	s.ch = s.src[s.offset]
	s.column++
}

// peek returns the character after the current one without advancing.
func (s *Scanner) peek() rune {
	if s.offset+1 >= len(s.src) {
		return -1
	}
	return s.src[s.offset+1]
}

func (s *Scanner) skipWhitespace() {
	for s.ch != -1 && unicode.IsSpace(s.ch) {
		s.next()
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$' || r == '@'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}

// scanIdentifier scans a possibly dotted identifier. A dot is only part of
// the identifier when another identifier follows it, so "String..." scans
// as an identifier followed by an ellipsis.
func (s *Scanner) scanIdentifier() string {
	var sb strings.Builder
	sb.WriteRune(s.ch)
	s.next()
	for {
		switch {
		case isIdentPart(s.ch):
			sb.WriteRune(s.ch)
			s.next()
		case s.ch == '.' && isIdentStart(s.peek()) && s.peek() != '@':
			sb.WriteRune(s.ch)
			s.next()
		default:
			return sb.String()
		}
	}
}

// scanNumber scans decimal, hex, floating and suffixed literals.
func (s *Scanner) scanNumber() string {
	var sb strings.Builder
	hex := s.ch == '0' && (s.peek() == 'x' || s.peek() == 'X')
	for {
		prev := s.ch
		sb.WriteRune(s.ch)
		s.next()
		switch {
		case unicode.IsDigit(s.ch) || unicode.IsLetter(s.ch) || s.ch == '.' || s.ch == '_':
		case !hex && (prev == 'e' || prev == 'E') && (s.ch == '+' || s.ch == '-'):
		default:
			return sb.String()
		}
	}
}

// scanString scans a quoted literal and returns it as written, quotes and
// escapes included.
func (s *Scanner) scanString() (string, error) {
	quote := s.ch
	var sb strings.Builder
	sb.WriteRune(quote)
	s.next()

	for s.ch != quote {
		switch s.ch {
		case -1, '\n':
			return "", fmt.Errorf("unterminated string literal")
		case '\\':
			sb.WriteRune(s.ch)
			s.next()
			switch s.ch {
			case 'n', 'r', 't', 'b', 'f', '0', '\\', '"', '\'':
			case 'u':
				sb.WriteRune(s.ch)
				s.next()
				for i := 0; i < 4; i++ {
					if !strings.ContainsRune("0123456789abcdefABCDEF", s.ch) {
						return "", fmt.Errorf("invalid unicode escape sequence")
					}
					sb.WriteRune(s.ch)
					s.next()
				}
				continue
			default:
				return "", fmt.Errorf("invalid escape sequence: \\%c", s.ch)
			}
		}
		sb.WriteRune(s.ch)
		s.next()
	}
	sb.WriteRune(quote)
	s.next()
	return sb.String(), nil
}

// scanComment consumes a line or block comment.
func (s *Scanner) scanComment() (string, error) {
	var sb strings.Builder
	sb.WriteRune(s.ch)
	s.next()

	if s.ch == '/' {
		for s.ch != '\n' && s.ch != -1 {
			sb.WriteRune(s.ch)
			s.next()
		}
		return sb.String(), nil
	}

	sb.WriteRune(s.ch) // '*'
	s.next()
	for {
		switch {
		case s.ch == -1:
			return "", fmt.Errorf("unterminated block comment")
		case s.ch == '*' && s.peek() == '/':
			sb.WriteString("*/")
			s.next()
			s.next()
			return sb.String(), nil
		default:
			sb.WriteRune(s.ch)
			s.next()
		}
	}
}

// Scan returns the next token. On a lexical error the returned token has
// type TokenError and carries the message in Text.
func (s *Scanner) Scan() (Token, error) {
	s.skipWhitespace()

	tok := Token{Pos: Position{Line: s.line, Column: s.column, Offset: s.offset}}

	switch {
	case s.ch == -1:
		tok.Type = TokenEOF
	case isIdentStart(s.ch):
		tok.Type = TokenIdentifier
		tok.Text = s.scanIdentifier()
	case unicode.IsDigit(s.ch) || (s.ch == '.' && unicode.IsDigit(s.peek())):
		tok.Type = TokenNumber
		tok.Text = s.scanNumber()
	case s.ch == '"' || s.ch == '\'':
		text, err := s.scanString()
		if err != nil {
			tok.Type = TokenError
			tok.Text = err.Error()
			return tok, err
		}
		tok.Type = TokenString
		tok.Text = text
	case s.ch == '/' && (s.peek() == '/' || s.peek() == '*'):
		text, err := s.scanComment()
		if err != nil {
			tok.Type = TokenError
			tok.Text = err.Error()
			return tok, err
		}
		tok.Type = TokenComment
		tok.Text = text
	case s.ch == '.' && s.peek() == '.':
		s.next()
		s.next()
		if s.ch != '.' {
			tok.Type = TokenError
			tok.Text = "unexpected character: ."
			return tok, fmt.Errorf("%s", tok.Text)
		}
		s.next()
		tok.Type = TokenPunctuation
		tok.Text = "..."
	case isPunctuation(s.ch):
		tok.Type = TokenPunctuation
		tok.Text = string(s.ch)
		s.next()
	default:
		tok.Type = TokenError
		tok.Text = fmt.Sprintf("unexpected character: %c", s.ch)
		s.next()
		return tok, fmt.Errorf("%s", tok.Text)
	}

	return tok, nil
}

// isPunctuation checks if a rune is a punctuation character
func isPunctuation(r rune) bool {
	switch r {
	case ';', ',', '=', '{', '}', '[', ']', '(', ')', '<', '>', '?', '&', '-', '.':
		return true
	default:
		return false
	}
}

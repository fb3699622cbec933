package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, content string) []Token {
	t.Helper()
	s := NewScanner(content)
	var tokens []Token
	for {
		tok, err := s.Scan()
		require.NoError(t, err)
		if tok.Type == TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func TestScanner_Tokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"dotted identifier", "java.lang.String", []string{"java.lang.String"}},
		{"varargs", "java.lang.String...", []string{"java.lang.String", "..."}},
		{"generics", "Map<K,V>", []string{"Map", "<", "K", ",", "V", ">"}},
		{"nested generics close", "List<List<T>>", []string{"List", "<", "List", "<", "T", ">", ">"}},
		{"annotation kind", "@interface", []string{"@interface"}},
		{"wildcard", "? extends T", []string{"?", "extends", "T"}},
		{"negative number", "-12L", []string{"-", "12L"}},
		{"float exponent", "1.5e-3f", []string{"1.5e-3f"}},
		{"hex", "0x1F", []string{"0x1F"}},
		{"string escapes", `"a\"bA"`, []string{`"a\"bA"`}},
		{"char", `'\n'`, []string{`'\n'`}},
		{"array", "int[]", []string{"int", "[", "]"}},
		{"line comment", "x; // 0x1f\ny", []string{"x", ";", "// 0x1f", "y"}},
		{"block comment", "a /* b */ c", []string{"a", "/* b */", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, tok := range scanAll(t, tt.input) {
				got = append(got, tok.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanner_Positions(t *testing.T) {
	tokens := scanAll(t, "package p {\n  class C {\n")
	require.Len(t, tokens, 6)
	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 0}, tokens[0].Pos)
	assert.Equal(t, Position{Line: 1, Column: 11, Offset: 10}, tokens[2].Pos)
	assert.Equal(t, Position{Line: 2, Column: 3, Offset: 14}, tokens[3].Pos)
}

func TestScanner_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unterminated string", `"abc`, "unterminated string literal"},
		{"bad escape", `"\q"`, "invalid escape sequence"},
		{"unterminated comment", "/* abc", "unterminated block comment"},
		{"stray character", "#", "unexpected character: #"},
		{"two dots", "..x", "unexpected character: ."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := NewScanner(tt.input).Scan()
			require.Error(t, err)
			assert.Equal(t, TokenError, tok.Type)
			assert.Contains(t, tok.Text, tt.want)
		})
	}
}

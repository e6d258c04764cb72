package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/ploxvm/lang/scanner"
	"github.com/mna/ploxvm/lang/token"
)

func scanAll(src string) []scanner.Lexeme {
	s := scanner.New(src)
	var out []scanner.Lexeme
	for {
		lx := s.Scan()
		out = append(out, lx)
		if lx.Kind == token.EOF {
			return out
		}
	}
}

func TestScanPunctuatorsAndOperators(t *testing.T) {
	lxs := scanAll("(){},.-+;*/ != = == < <= > >=")
	want := []token.Token{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.COMMA,
		token.DOT, token.MINUS, token.PLUS, token.SEMI, token.STAR, token.SLASH,
		token.BANG_EQ, token.EQ, token.EQ_EQ, token.LT, token.LT_EQ, token.GT,
		token.GT_EQ, token.EOF,
	}
	require.Len(t, lxs, len(want))
	for i, w := range want {
		require.Equal(t, w, lxs[i].Kind, "token %d", i)
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	lxs := scanAll("var x = print")
	require.Equal(t, []token.Token{token.VAR, token.IDENTIFIER, token.EQ, token.PRINT, token.EOF},
		[]token.Token{lxs[0].Kind, lxs[1].Kind, lxs[2].Kind, lxs[3].Kind, lxs[4].Kind})
	require.Equal(t, "x", lxs[1].Text)
}

func TestScanNumber(t *testing.T) {
	lxs := scanAll("123 4.5")
	require.Equal(t, token.NUMBER, lxs[0].Kind)
	require.Equal(t, "123", lxs[0].Text)
	require.Equal(t, token.NUMBER, lxs[1].Kind)
	require.Equal(t, "4.5", lxs[1].Text)
}

func TestScanString(t *testing.T) {
	lxs := scanAll(`"hello world"`)
	require.Equal(t, token.STRING, lxs[0].Kind)
	require.Equal(t, `"hello world"`, lxs[0].Text)
}

func TestScanUnterminatedString(t *testing.T) {
	lxs := scanAll(`"hello`)
	require.Equal(t, token.ERROR, lxs[0].Kind)
	require.Equal(t, "Unterminated string.", lxs[0].Text)
}

func TestScanUnexpectedCharacter(t *testing.T) {
	lxs := scanAll("@")
	require.Equal(t, token.ERROR, lxs[0].Kind)
	require.Equal(t, "Unexpected character.", lxs[0].Text)
}

func TestScanSkipsCommentsAndWhitespace(t *testing.T) {
	lxs := scanAll("// a comment\n  \tvar\n// another\nx")
	require.Equal(t, []token.Token{token.VAR, token.IDENTIFIER, token.EOF},
		[]token.Token{lxs[0].Kind, lxs[1].Kind, lxs[2].Kind})
	require.Equal(t, 2, lxs[0].Line)
	require.Equal(t, 4, lxs[1].Line)
}

func TestRuneCount(t *testing.T) {
	require.Equal(t, 3, scanner.RuneCount("abc"))
	require.Equal(t, 1, scanner.RuneCount("é"))
}

package frontend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []token {
	t.Helper()
	l := newLexer(src)
	var toks []token
	for {
		tok, err := l.next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.kind == tokenEOF {
			return toks
		}
	}
}

func kinds(toks []token) []tokenKind {
	out := make([]tokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.kind
	}
	return out
}

func TestLexerTokens(t *testing.T) {
	toks := lexAll(t, "fn main() { const x = 1; return x + 2 * 3; }")
	require.Equal(t, []tokenKind{
		tokenFn, tokenIdent, tokenLParen, tokenRParen, tokenLBrace,
		tokenConst, tokenIdent, tokenEqual, tokenInteger, tokenSemicolon,
		tokenReturn, tokenIdent, tokenPlus, tokenInteger, tokenStar, tokenInteger, tokenSemicolon,
		tokenRBrace, tokenEOF,
	}, kinds(toks))
	require.Equal(t, "main", toks[1].lexeme)
	require.Equal(t, "x", toks[6].lexeme)
	require.Equal(t, "1", toks[8].lexeme)
}

func TestLexerPunctuation(t *testing.T) {
	toks := lexAll(t, "x.0, y: i64; -(a)")
	require.Equal(t, []tokenKind{
		tokenIdent, tokenDot, tokenInteger, tokenComma,
		tokenIdent, tokenColon, tokenIdent, tokenSemicolon,
		tokenMinus, tokenLParen, tokenIdent, tokenRParen, tokenEOF,
	}, kinds(toks))
}

func TestLexerLineComments(t *testing.T) {
	toks := lexAll(t, "fn // a comment\nmain")
	require.Equal(t, []tokenKind{tokenFn, tokenIdent, tokenEOF}, kinds(toks))
	require.Equal(t, 2, toks[1].line)
	require.Equal(t, 1, toks[1].col)
}

func TestLexerPositions(t *testing.T) {
	toks := lexAll(t, "fn main")
	require.Equal(t, 1, toks[0].line)
	require.Equal(t, 1, toks[0].col)
	require.Equal(t, 4, toks[1].col)
}

func TestLexerRejectsUnknownCharacter(t *testing.T) {
	l := newLexer("fn @")
	_, err := l.next()
	require.NoError(t, err)
	_, err = l.next()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected character")
}

// Package frontend lexes and parses source text, populating the symbol
// table with SSA function bodies. The parser emits SSA directly: every
// computing expression allocates the next local, and constant
// subexpressions fold before any instruction is emitted.
package frontend

import "fmt"

type tokenKind byte

const (
	tokenInvalid tokenKind = iota
	tokenEOF
	tokenIdent
	tokenInteger

	tokenFn
	tokenConst
	tokenReturn

	tokenLParen
	tokenRParen
	tokenLBrace
	tokenRBrace
	tokenComma
	tokenColon
	tokenSemicolon
	tokenEqual
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenPercent
	tokenDot
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of file"
	case tokenIdent:
		return "identifier"
	case tokenInteger:
		return "integer"
	case tokenFn:
		return "'fn'"
	case tokenConst:
		return "'const'"
	case tokenReturn:
		return "'return'"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenLBrace:
		return "'{'"
	case tokenRBrace:
		return "'}'"
	case tokenComma:
		return "','"
	case tokenColon:
		return "':'"
	case tokenSemicolon:
		return "';'"
	case tokenEqual:
		return "'='"
	case tokenPlus:
		return "'+'"
	case tokenMinus:
		return "'-'"
	case tokenStar:
		return "'*'"
	case tokenSlash:
		return "'/'"
	case tokenPercent:
		return "'%'"
	case tokenDot:
		return "'.'"
	default:
		panic(fmt.Sprintf("BUG: invalid token kind %d", k))
	}
}

type token struct {
	kind   tokenKind
	lexeme string
	line   int
	col    int
}

var keywords = map[string]tokenKind{
	"fn":     tokenFn,
	"const":  tokenConst,
	"return": tokenReturn,
}

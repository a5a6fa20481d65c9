package frontend

import (
	"fmt"
	"math"
	"strconv"

	"github.com/exp-lang/exp/internal/ssa"
)

// Parse parses source text into mod, one symbol per function
// definition, in declaration order.
func Parse(mod *ssa.Module, source string) error {
	p := &parser{lex: newLexer(source), mod: mod}
	if err := p.bump(); err != nil {
		return err
	}
	for p.tok.kind != tokenEOF {
		if err := p.parseFunction(); err != nil {
			return err
		}
	}
	return nil
}

type parser struct {
	lex *lexer
	tok token
	mod *ssa.Module

	fn *ssa.Function
	// bindings maps a const or parameter name to the operand it stands
	// for within the current function.
	bindings map[ssa.StringID]ssa.Operand
}

func (p *parser) bump() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%d:%d: %s", p.tok.line, p.tok.col, fmt.Sprintf(format, args...))
}

func (p *parser) expect(k tokenKind) (token, error) {
	if p.tok.kind != k {
		return token{}, p.errorf("expected %s, found %s", k, p.tok.kind)
	}
	tok := p.tok
	if err := p.bump(); err != nil {
		return token{}, err
	}
	return tok, nil
}

func (p *parser) accept(k tokenKind) (bool, error) {
	if p.tok.kind != k {
		return false, nil
	}
	return true, p.bump()
}

type parameter struct {
	name ssa.StringID
	typ  *ssa.Type
}

func (p *parser) parseFunction() error {
	if _, err := p.expect(tokenFn); err != nil {
		return err
	}
	nameTok, err := p.expect(tokenIdent)
	if err != nil {
		return err
	}
	nameID := p.mod.Strings.Intern(nameTok.lexeme)

	params, err := p.parseParameters()
	if err != nil {
		return err
	}

	p.fn = ssa.NewFunction()
	p.bindings = make(map[ssa.StringID]ssa.Operand, len(params))
	for _, param := range params {
		p.bindings[param.name] = ssa.SSAOperand(p.fn.NewArgument(param.name, param.typ))
	}

	if err := p.parseBlock(); err != nil {
		return err
	}

	if !p.mod.Symbols.Insert(nameID, ssa.Symbol{
		Kind: ssa.SymbolKindFunction,
		Body: p.fn,
	}) {
		return fmt.Errorf("%d:%d: redefinition of %q", nameTok.line, nameTok.col, nameTok.lexeme)
	}
	p.mod.DeclOrder = append(p.mod.DeclOrder, nameID)
	p.fn, p.bindings = nil, nil
	return nil
}

func (p *parser) parseParameters() ([]parameter, error) {
	if _, err := p.expect(tokenLParen); err != nil {
		return nil, err
	}
	var params []parameter
	for p.tok.kind != tokenRParen {
		if len(params) > 0 {
			if _, err := p.expect(tokenComma); err != nil {
				return nil, err
			}
		}
		nameTok, err := p.expect(tokenIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenColon); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, parameter{name: p.mod.Strings.Intern(nameTok.lexeme), typ: typ})
	}
	return params, p.bump()
}

func (p *parser) parseType() (*ssa.Type, error) {
	if ok, err := p.accept(tokenLParen); err != nil {
		return nil, err
	} else if ok {
		var elems []*ssa.Type
		for p.tok.kind != tokenRParen {
			if len(elems) > 0 {
				if _, err := p.expect(tokenComma); err != nil {
					return nil, err
				}
			}
			elem, err := p.parseType()
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
		if err := p.bump(); err != nil {
			return nil, err
		}
		return p.mod.Types.Tuple(elems), nil
	}

	tok, err := p.expect(tokenIdent)
	if err != nil {
		return nil, err
	}
	scalars := map[string]func() *ssa.Type{
		"nil":  p.mod.Types.Nil,
		"bool": p.mod.Types.Bool,
		"i8":   p.mod.Types.I8,
		"i16":  p.mod.Types.I16,
		"i32":  p.mod.Types.I32,
		"i64":  p.mod.Types.I64,
		"u8":   p.mod.Types.U8,
		"u16":  p.mod.Types.U16,
		"u32":  p.mod.Types.U32,
		"u64":  p.mod.Types.U64,
	}
	if f, ok := scalars[tok.lexeme]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("%d:%d: unknown type %q", tok.line, tok.col, tok.lexeme)
}

func (p *parser) parseBlock() error {
	if _, err := p.expect(tokenLBrace); err != nil {
		return err
	}
	for p.tok.kind != tokenRBrace {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	return p.bump()
}

func (p *parser) parseStatement() error {
	switch p.tok.kind {
	case tokenConst:
		if err := p.bump(); err != nil {
			return err
		}
		nameTok, err := p.expect(tokenIdent)
		if err != nil {
			return err
		}
		if _, err := p.expect(tokenEqual); err != nil {
			return err
		}
		value, err := p.parseExpr(0)
		if err != nil {
			return err
		}
		if _, err := p.expect(tokenSemicolon); err != nil {
			return err
		}
		nameID := p.mod.Strings.Intern(nameTok.lexeme)
		if _, bound := p.bindings[nameID]; bound {
			return fmt.Errorf("%d:%d: redefinition of %q", nameTok.line, nameTok.col, nameTok.lexeme)
		}
		if value.Kind == ssa.OperandKindSSA {
			p.fn.LocalAt(value.SSA()).Name = nameID
		}
		p.bindings[nameID] = value
		return nil
	case tokenReturn:
		if err := p.bump(); err != nil {
			return err
		}
		value, err := p.parseExpr(0)
		if err != nil {
			return err
		}
		if _, err := p.expect(tokenSemicolon); err != nil {
			return err
		}
		p.fn.Block.Append(ssa.NewRet(value))
		return nil
	default:
		return p.errorf("expected a statement, found %s", p.tok.kind)
	}
}

func binaryOpcode(k tokenKind) (ssa.Opcode, int) {
	switch k {
	case tokenPlus:
		return ssa.OpcodeAdd, 1
	case tokenMinus:
		return ssa.OpcodeSub, 1
	case tokenStar:
		return ssa.OpcodeMul, 2
	case tokenSlash:
		return ssa.OpcodeDiv, 2
	case tokenPercent:
		return ssa.OpcodeMod, 2
	default:
		return 0, 0
	}
}

// parseExpr is precedence climbing over the binary operators.
func (p *parser) parseExpr(minPrec int) (ssa.Operand, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return ssa.Operand{}, err
	}
	for {
		op, prec := binaryOpcode(p.tok.kind)
		if prec == 0 || prec < minPrec {
			return lhs, nil
		}
		opTok := p.tok
		if err := p.bump(); err != nil {
			return ssa.Operand{}, err
		}
		rhs, err := p.parseExpr(prec + 1)
		if err != nil {
			return ssa.Operand{}, err
		}
		lhs, err = p.emitBinary(op, lhs, rhs, opTok)
		if err != nil {
			return ssa.Operand{}, err
		}
	}
}

// emitBinary folds immediate operands at parse time; anything else
// emits the instruction and yields the fresh SSA result.
func (p *parser) emitBinary(op ssa.Opcode, lhs, rhs ssa.Operand, at token) (ssa.Operand, error) {
	if lhs.IsImmediate() && rhs.IsImmediate() {
		folded, err := foldBinary(op, lhs.Imm(), rhs.Imm())
		if err != nil {
			return ssa.Operand{}, fmt.Errorf("%d:%d: %s", at.line, at.col, err)
		}
		return ssa.I64Operand(folded), nil
	}
	result := p.fn.NewLocal(ssa.StringIDInvalid)
	p.fn.Block.Append(ssa.NewBinop(op, ssa.SSAOperand(result), lhs, rhs))
	return ssa.SSAOperand(result), nil
}

func foldBinary(op ssa.Opcode, x, y int64) (int64, error) {
	switch op {
	case ssa.OpcodeAdd:
		r := x + y
		if (r > x) != (y > 0) {
			return 0, fmt.Errorf("integer overflow in constant expression")
		}
		return r, nil
	case ssa.OpcodeSub:
		r := x - y
		if (r < x) != (y > 0) {
			return 0, fmt.Errorf("integer overflow in constant expression")
		}
		return r, nil
	case ssa.OpcodeMul:
		r := x * y
		if (x != 0 && r/x != y) || (x == -1 && y == math.MinInt64) {
			return 0, fmt.Errorf("integer overflow in constant expression")
		}
		return r, nil
	case ssa.OpcodeDiv:
		if y == 0 {
			return 0, fmt.Errorf("division by zero in constant expression")
		}
		if x == math.MinInt64 && y == -1 {
			return 0, fmt.Errorf("integer overflow in constant expression")
		}
		return x / y, nil
	case ssa.OpcodeMod:
		if y == 0 {
			return 0, fmt.Errorf("division by zero in constant expression")
		}
		return x % y, nil
	default:
		panic(fmt.Sprintf("BUG: %s is not a binary opcode", op))
	}
}

func (p *parser) parseUnary() (ssa.Operand, error) {
	at := p.tok
	if ok, err := p.accept(tokenMinus); err != nil {
		return ssa.Operand{}, err
	} else if ok {
		operand, err := p.parseUnary()
		if err != nil {
			return ssa.Operand{}, err
		}
		if operand.IsImmediate() {
			if operand.Imm() == math.MinInt64 {
				return ssa.Operand{}, fmt.Errorf("%d:%d: integer overflow in constant expression", at.line, at.col)
			}
			return ssa.I64Operand(-operand.Imm()), nil
		}
		result := p.fn.NewLocal(ssa.StringIDInvalid)
		p.fn.Block.Append(ssa.NewNeg(ssa.SSAOperand(result), operand))
		return ssa.SSAOperand(result), nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ssa.Operand, error) {
	operand, err := p.parsePrimary()
	if err != nil {
		return ssa.Operand{}, err
	}
	for p.tok.kind == tokenDot {
		if err := p.bump(); err != nil {
			return ssa.Operand{}, err
		}
		indexTok, err := p.expect(tokenInteger)
		if err != nil {
			return ssa.Operand{}, err
		}
		index, err := strconv.ParseInt(indexTok.lexeme, 10, 32)
		if err != nil {
			return ssa.Operand{}, fmt.Errorf("%d:%d: tuple index out of range: %s", indexTok.line, indexTok.col, indexTok.lexeme)
		}
		result := p.fn.NewLocal(ssa.StringIDInvalid)
		p.fn.Block.Append(ssa.NewDot(ssa.SSAOperand(result), operand, ssa.I32Operand(int32(index))))
		operand = ssa.SSAOperand(result)
	}
	return operand, nil
}

func (p *parser) parsePrimary() (ssa.Operand, error) {
	switch p.tok.kind {
	case tokenInteger:
		tok := p.tok
		if err := p.bump(); err != nil {
			return ssa.Operand{}, err
		}
		v, err := strconv.ParseInt(tok.lexeme, 10, 64)
		if err != nil {
			return ssa.Operand{}, fmt.Errorf("%d:%d: integer literal out of range: %s", tok.line, tok.col, tok.lexeme)
		}
		return ssa.I64Operand(v), nil
	case tokenIdent:
		tok := p.tok
		if err := p.bump(); err != nil {
			return ssa.Operand{}, err
		}
		if p.tok.kind == tokenLParen {
			return p.parseCall(tok)
		}
		nameID := p.mod.Strings.Intern(tok.lexeme)
		operand, bound := p.bindings[nameID]
		if !bound {
			return ssa.Operand{}, fmt.Errorf("%d:%d: undefined name %q", tok.line, tok.col, tok.lexeme)
		}
		return operand, nil
	case tokenLParen:
		return p.parseParenOrTuple()
	default:
		return ssa.Operand{}, p.errorf("expected an expression, found %s", p.tok.kind)
	}
}

// parseCall emits the CALL with its actual arguments interned as one
// constant tuple.
func (p *parser) parseCall(nameTok token) (ssa.Operand, error) {
	if _, err := p.expect(tokenLParen); err != nil {
		return ssa.Operand{}, err
	}
	var args []ssa.Operand
	for p.tok.kind != tokenRParen {
		if len(args) > 0 {
			if _, err := p.expect(tokenComma); err != nil {
				return ssa.Operand{}, err
			}
		}
		arg, err := p.parseExpr(0)
		if err != nil {
			return ssa.Operand{}, err
		}
		args = append(args, arg)
	}
	if err := p.bump(); err != nil {
		return ssa.Operand{}, err
	}

	label := p.mod.InternLabel(nameTok.lexeme)
	argsIndex := p.mod.Constants.Append(ssa.TupleValue(args))
	result := p.fn.NewLocal(ssa.StringIDInvalid)
	p.fn.Block.Append(ssa.NewCall(ssa.SSAOperand(result), ssa.LabelOperand(label), ssa.ConstantOperand(argsIndex)))
	return ssa.SSAOperand(result), nil
}

// parseParenOrTuple disambiguates grouping from a tuple literal by the
// first comma.
func (p *parser) parseParenOrTuple() (ssa.Operand, error) {
	if _, err := p.expect(tokenLParen); err != nil {
		return ssa.Operand{}, err
	}
	var elems []ssa.Operand
	for p.tok.kind != tokenRParen {
		if len(elems) > 0 {
			if _, err := p.expect(tokenComma); err != nil {
				return ssa.Operand{}, err
			}
		}
		elem, err := p.parseExpr(0)
		if err != nil {
			return ssa.Operand{}, err
		}
		elems = append(elems, elem)
	}
	if err := p.bump(); err != nil {
		return ssa.Operand{}, err
	}
	switch len(elems) {
	case 0:
		return ssa.Operand{}, p.errorf("empty parentheses are not an expression")
	case 1:
		return elems[0], nil
	default:
		index := p.mod.Constants.Append(ssa.TupleValue(elems))
		return ssa.ConstantOperand(index), nil
	}
}

package parser

import (
	"strconv"

	"github.com/ctran-lang/ctran/pkg/cabs"
	"github.com/ctran-lang/ctran/pkg/lexer"
)

var assignOps = map[lexer.TokenType]cabs.AssignOp{
	lexer.TokenAssign:        cabs.AssignSimple,
	lexer.TokenPlusAssign:    cabs.AssignAdd,
	lexer.TokenMinusAssign:   cabs.AssignSub,
	lexer.TokenStarAssign:    cabs.AssignMul,
	lexer.TokenSlashAssign:   cabs.AssignDiv,
	lexer.TokenPercentAssign: cabs.AssignMod,
	lexer.TokenAndAssign:     cabs.AssignAnd,
	lexer.TokenOrAssign:      cabs.AssignOr,
	lexer.TokenXorAssign:     cabs.AssignXor,
	lexer.TokenShlAssign:     cabs.AssignShl,
	lexer.TokenShrAssign:     cabs.AssignShr,
}

// One map per precedence level, loosest binding first
var (
	logicalOrOps  = map[lexer.TokenType]cabs.BinaryOp{lexer.TokenOr: cabs.OpOr}
	logicalAndOps = map[lexer.TokenType]cabs.BinaryOp{lexer.TokenAnd: cabs.OpAnd}
	bitOrOps      = map[lexer.TokenType]cabs.BinaryOp{lexer.TokenPipe: cabs.OpBitOr}
	bitXorOps     = map[lexer.TokenType]cabs.BinaryOp{lexer.TokenCaret: cabs.OpBitXor}
	bitAndOps     = map[lexer.TokenType]cabs.BinaryOp{lexer.TokenAmpersand: cabs.OpBitAnd}
	equalityOps   = map[lexer.TokenType]cabs.BinaryOp{
		lexer.TokenEq: cabs.OpEq,
		lexer.TokenNe: cabs.OpNe,
	}
	relationalOps = map[lexer.TokenType]cabs.BinaryOp{
		lexer.TokenLt: cabs.OpLt,
		lexer.TokenLe: cabs.OpLe,
		lexer.TokenGt: cabs.OpGt,
		lexer.TokenGe: cabs.OpGe,
	}
	shiftOps = map[lexer.TokenType]cabs.BinaryOp{
		lexer.TokenShl: cabs.OpShl,
		lexer.TokenShr: cabs.OpShr,
	}
	additiveOps = map[lexer.TokenType]cabs.BinaryOp{
		lexer.TokenPlus:  cabs.OpAdd,
		lexer.TokenMinus: cabs.OpSub,
	}
	multiplicativeOps = map[lexer.TokenType]cabs.BinaryOp{
		lexer.TokenStar:    cabs.OpMul,
		lexer.TokenSlash:   cabs.OpDiv,
		lexer.TokenPercent: cabs.OpMod,
	}
)

var prefixOps = map[lexer.TokenType]cabs.UnaryOp{
	lexer.TokenMinus:     cabs.OpNeg,
	lexer.TokenPlus:      cabs.OpPlus,
	lexer.TokenNot:       cabs.OpNot,
	lexer.TokenTilde:     cabs.OpBitNot,
	lexer.TokenStar:      cabs.OpDeref,
	lexer.TokenAmpersand: cabs.OpAddrOf,
	lexer.TokenIncrement: cabs.OpPreInc,
	lexer.TokenDecrement: cabs.OpPreDec,
}

// ParseExpression parses a full expression, assignment level and below
func (p *Parser) ParseExpression() (cabs.Expr, error) {
	return p.parseAssignment()
}

// parseAssignment handles the right-associative assignment operators.
// The left side is parsed at the conditional level first; the assignment
// operator, if present, then claims it as a target.
func (p *Parser) parseAssignment() (cabs.Expr, error) {
	left, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if op, ok := assignOps[p.curToken.Type]; ok {
		p.nextToken()
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return cabs.Assign{Op: op, Target: left, Value: right}, nil
	}
	return left, nil
}

// parseConditional handles the ternary operator. The middle expression
// is a full expression; the else arm recurses at this level, which makes
// a ? b : c ? d : e group to the right.
func (p *Parser) parseConditional() (cabs.Expr, error) {
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.curToken.Type != lexer.TokenQuestion {
		return cond, nil
	}
	p.nextToken()
	then, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenColon); err != nil {
		return nil, err
	}
	els, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return cabs.Conditional{Cond: cond, Then: then, Else: els}, nil
}

// parseBinaryLevel implements one left-associative precedence level:
// operands come from the next-tighter level, and operators at this level
// fold left to right.
func (p *Parser) parseBinaryLevel(next func() (cabs.Expr, error), ops map[lexer.TokenType]cabs.BinaryOp) (cabs.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.curToken.Type]
		if !ok {
			return left, nil
		}
		p.nextToken()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = cabs.Binary{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseLogicalOr() (cabs.Expr, error) {
	return p.parseBinaryLevel(p.parseLogicalAnd, logicalOrOps)
}

func (p *Parser) parseLogicalAnd() (cabs.Expr, error) {
	return p.parseBinaryLevel(p.parseBitOr, logicalAndOps)
}

func (p *Parser) parseBitOr() (cabs.Expr, error) {
	return p.parseBinaryLevel(p.parseBitXor, bitOrOps)
}

func (p *Parser) parseBitXor() (cabs.Expr, error) {
	return p.parseBinaryLevel(p.parseBitAnd, bitXorOps)
}

func (p *Parser) parseBitAnd() (cabs.Expr, error) {
	return p.parseBinaryLevel(p.parseEquality, bitAndOps)
}

func (p *Parser) parseEquality() (cabs.Expr, error) {
	return p.parseBinaryLevel(p.parseRelational, equalityOps)
}

func (p *Parser) parseRelational() (cabs.Expr, error) {
	return p.parseBinaryLevel(p.parseShift, relationalOps)
}

func (p *Parser) parseShift() (cabs.Expr, error) {
	return p.parseBinaryLevel(p.parseAdditive, shiftOps)
}

func (p *Parser) parseAdditive() (cabs.Expr, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, additiveOps)
}

func (p *Parser) parseMultiplicative() (cabs.Expr, error) {
	return p.parseBinaryLevel(p.parseUnary, multiplicativeOps)
}

// parseUnary handles prefix operators, casts, and sizeof. Star and
// ampersand are unary here because this function is only reached where
// an operand is required; the binary readings live in the level maps.
func (p *Parser) parseUnary() (cabs.Expr, error) {
	switch p.curToken.Type {
	case lexer.TokenMinus, lexer.TokenPlus, lexer.TokenNot, lexer.TokenTilde,
		lexer.TokenStar, lexer.TokenAmpersand,
		lexer.TokenIncrement, lexer.TokenDecrement:
		op := prefixOps[p.curToken.Type]
		p.nextToken()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return cabs.Unary{Op: op, Expr: operand}, nil
	case lexer.TokenSizeof:
		return p.parseSizeof()
	case lexer.TokenLParen:
		// A type name after '(' means a cast; anything else falls
		// through to the grouping parenthesis in parsePrimary.
		if p.isTypeName(p.peekToken) {
			p.nextToken()
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if err := p.expect(lexer.TokenRParen); err != nil {
				return nil, err
			}
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return cabs.Cast{Type: typ, Expr: operand}, nil
		}
		return p.parsePostfix()
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parseSizeof() (cabs.Expr, error) {
	p.nextToken()
	if p.curToken.Type == lexer.TokenLParen && p.isTypeName(p.peekToken) {
		p.nextToken()
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TokenRParen); err != nil {
			return nil, err
		}
		return cabs.SizeofType{Type: typ}, nil
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return cabs.SizeofExpr{Expr: operand}, nil
}

// isTypeName reports whether tok can begin a type name: a type keyword,
// or an identifier the registry knows as a typedef or tag.
func (p *Parser) isTypeName(tok lexer.Token) bool {
	if tok.Type.IsTypeKeyword() {
		return true
	}
	return tok.Type == lexer.TokenIdent && p.types.IsType(tok.Literal)
}

func (p *Parser) parsePostfix() (cabs.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.curToken.Type {
		case lexer.TokenLParen:
			p.nextToken()
			var args []cabs.Expr
			for p.curToken.Type != lexer.TokenRParen {
				arg, err := p.parseAssignment()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.curToken.Type != lexer.TokenComma {
					break
				}
				p.nextToken()
			}
			if err := p.expect(lexer.TokenRParen); err != nil {
				return nil, err
			}
			expr = cabs.Call{Func: expr, Args: args}
		case lexer.TokenLBracket:
			p.nextToken()
			idx, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expect(lexer.TokenRBracket); err != nil {
				return nil, err
			}
			expr = cabs.Index{Array: expr, Index: idx}
		case lexer.TokenDot, lexer.TokenArrow:
			arrow := p.curToken.Type == lexer.TokenArrow
			p.nextToken()
			if p.curToken.Type != lexer.TokenIdent {
				return nil, p.errExpected("identifier")
			}
			expr = cabs.Member{Expr: expr, Name: p.curToken.Literal, IsArrow: arrow}
			p.nextToken()
		case lexer.TokenIncrement:
			p.nextToken()
			expr = cabs.Unary{Op: cabs.OpPostInc, Expr: expr}
		case lexer.TokenDecrement:
			p.nextToken()
			expr = cabs.Unary{Op: cabs.OpPostDec, Expr: expr}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (cabs.Expr, error) {
	switch p.curToken.Type {
	case lexer.TokenInt:
		v, err := strconv.ParseInt(p.curToken.Literal, 0, 64)
		if err != nil {
			return nil, p.errMsgf("invalid integer literal %q", p.curToken.Literal)
		}
		p.nextToken()
		return cabs.Constant{Value: v}, nil
	case lexer.TokenFloat:
		v, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			return nil, p.errMsgf("invalid float literal %q", p.curToken.Literal)
		}
		p.nextToken()
		return cabs.FloatLiteral{Value: v}, nil
	case lexer.TokenChar:
		lit := p.curToken.Literal
		p.nextToken()
		return cabs.CharLiteral{Value: lit[0]}, nil
	case lexer.TokenString:
		lit := p.curToken.Literal
		p.nextToken()
		return cabs.StringLiteral{Value: lit}, nil
	case lexer.TokenIdent:
		name := p.curToken.Literal
		p.nextToken()
		return cabs.Variable{Name: name}, nil
	case lexer.TokenLParen:
		p.nextToken()
		e, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TokenRParen); err != nil {
			return nil, err
		}
		// A lone identifier in parentheses directly followed by an
		// operand reads as a cast through an unknown type name.
		if v, ok := e.(cabs.Variable); ok && startsOperand(p.curToken.Type) {
			if lexErr := p.l.Err(); lexErr != nil {
				return nil, lexErr
			}
			return nil, &ParseError{
				Kind: ErrTypeAmbiguity,
				Got:  p.curToken,
				Msg:  "'(" + v.Name + ")' looks like a cast, but '" + v.Name + "' is not a declared type name",
			}
		}
		return e, nil
	default:
		return nil, p.errExpected("expression")
	}
}

// startsOperand reports whether t can only begin an operand, never
// continue an expression
func startsOperand(t lexer.TokenType) bool {
	switch t {
	case lexer.TokenIdent, lexer.TokenInt, lexer.TokenFloat,
		lexer.TokenChar, lexer.TokenString:
		return true
	}
	return false
}

package parser

import (
	"github.com/ctran-lang/ctran/pkg/cabs"
	"github.com/ctran-lang/ctran/pkg/lexer"
)

// ParseStatement parses a single statement. Declarations are recognized
// by their leading token: a type keyword, a storage class, or an
// identifier the registry knows as a type name.
func (p *Parser) ParseStatement() (cabs.Stmt, error) {
	switch p.curToken.Type {
	case lexer.TokenSemicolon:
		p.nextToken()
		return cabs.Empty{}, nil
	case lexer.TokenLBrace:
		return p.parseBlock()
	case lexer.TokenReturn:
		return p.parseReturn()
	case lexer.TokenIf:
		return p.parseIf()
	case lexer.TokenWhile:
		return p.parseWhile()
	case lexer.TokenDo:
		return p.parseDoWhile()
	case lexer.TokenFor:
		return p.parseFor()
	case lexer.TokenSwitch:
		return p.parseSwitch()
	case lexer.TokenBreak:
		p.nextToken()
		if err := p.expect(lexer.TokenSemicolon); err != nil {
			return nil, err
		}
		return cabs.Break{}, nil
	case lexer.TokenContinue:
		p.nextToken()
		if err := p.expect(lexer.TokenSemicolon); err != nil {
			return nil, err
		}
		return cabs.Continue{}, nil
	case lexer.TokenGoto:
		return p.parseGoto()
	case lexer.TokenTypedef:
		td, err := p.parseTypedef()
		if err != nil {
			return nil, err
		}
		return td, nil
	case lexer.TokenStruct, lexer.TokenUnion, lexer.TokenEnum:
		return p.parseAggregateStmt()
	case lexer.TokenIdent:
		if p.peekToken.Type == lexer.TokenColon {
			name := p.curToken.Literal
			p.nextToken()
			p.nextToken()
			stmt, err := p.ParseStatement()
			if err != nil {
				return nil, err
			}
			return cabs.Label{Name: name, Stmt: stmt}, nil
		}
		if p.types.IsType(p.curToken.Literal) {
			return p.parseDeclStmt()
		}
		return p.parseExprStmt()
	default:
		if p.curToken.Type.IsTypeKeyword() || p.curToken.Type.IsStorageClass() {
			return p.parseDeclStmt()
		}
		return p.parseExprStmt()
	}
}

func (p *Parser) parseBlock() (*cabs.Block, error) {
	if err := p.expect(lexer.TokenLBrace); err != nil {
		return nil, err
	}
	b := &cabs.Block{}
	for p.curToken.Type != lexer.TokenRBrace {
		if p.AtEOF() {
			return nil, p.errExpected("'}'")
		}
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, stmt)
	}
	p.nextToken()
	return b, nil
}

func (p *Parser) parseExprStmt() (cabs.Stmt, error) {
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	return cabs.Computation{Expr: expr}, nil
}

func (p *Parser) parseReturn() (cabs.Stmt, error) {
	p.nextToken()
	if p.curToken.Type == lexer.TokenSemicolon {
		p.nextToken()
		return cabs.Return{}, nil
	}
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	return cabs.Return{Expr: expr}, nil
}

func (p *Parser) parseIf() (cabs.Stmt, error) {
	p.nextToken()
	if err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	then, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	stmt := cabs.If{Cond: cond, Then: then}
	if p.curToken.Type == lexer.TokenElse {
		p.nextToken()
		els, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (cabs.Stmt, error) {
	p.nextToken()
	if err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	body, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	return cabs.While{Cond: cond, Body: body}, nil
}

func (p *Parser) parseDoWhile() (cabs.Stmt, error) {
	p.nextToken()
	body, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenWhile); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	return cabs.DoWhile{Body: body, Cond: cond}, nil
}

func (p *Parser) parseFor() (cabs.Stmt, error) {
	p.nextToken()
	if err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	var stmt cabs.For

	switch {
	case p.curToken.Type == lexer.TokenSemicolon:
		p.nextToken()
	case p.curToken.Type.IsTypeKeyword() ||
		(p.curToken.Type == lexer.TokenIdent && p.types.IsType(p.curToken.Literal)):
		// C99 declaration in the init slot
		base, err := p.parseTypeBase()
		if err != nil {
			return nil, err
		}
		for {
			d, err := p.parseDeclarator(base, true)
			if err != nil {
				return nil, err
			}
			stmt.InitDecl = append(stmt.InitDecl, d)
			if p.curToken.Type != lexer.TokenComma {
				break
			}
			p.nextToken()
		}
		if err := p.expect(lexer.TokenSemicolon); err != nil {
			return nil, err
		}
	default:
		init, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Init = init
		if err := p.expect(lexer.TokenSemicolon); err != nil {
			return nil, err
		}
	}

	if p.curToken.Type != lexer.TokenSemicolon {
		cond, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	}
	if err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	if p.curToken.Type != lexer.TokenRParen {
		step, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Step = step
	}
	if err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	body, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

func (p *Parser) parseSwitch() (cabs.Stmt, error) {
	p.nextToken()
	if err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenLBrace); err != nil {
		return nil, err
	}
	stmt := cabs.Switch{Expr: expr}
	for p.curToken.Type != lexer.TokenRBrace {
		if p.AtEOF() {
			return nil, p.errExpected("'}'")
		}
		var c cabs.SwitchCase
		switch p.curToken.Type {
		case lexer.TokenCase:
			p.nextToken()
			ce, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			c.Expr = ce
		case lexer.TokenDefault:
			p.nextToken()
		default:
			return nil, p.errExpected("'case'", "'default'")
		}
		if err := p.expect(lexer.TokenColon); err != nil {
			return nil, err
		}
		for p.curToken.Type != lexer.TokenCase &&
			p.curToken.Type != lexer.TokenDefault &&
			p.curToken.Type != lexer.TokenRBrace {
			if p.AtEOF() {
				return nil, p.errExpected("'}'")
			}
			s, err := p.ParseStatement()
			if err != nil {
				return nil, err
			}
			c.Stmts = append(c.Stmts, s)
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	p.nextToken()
	return stmt, nil
}

func (p *Parser) parseGoto() (cabs.Stmt, error) {
	p.nextToken()
	if p.curToken.Type != lexer.TokenIdent {
		return nil, p.errExpected("identifier")
	}
	label := p.curToken.Literal
	p.nextToken()
	if err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	return cabs.Goto{Label: label}, nil
}

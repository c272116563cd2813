// Package parser builds cabs syntax trees from C token streams
package parser

import (
	"github.com/ctran-lang/ctran/pkg/cabs"
	"github.com/ctran-lang/ctran/pkg/ctypes"
	"github.com/ctran-lang/ctran/pkg/lexer"
)

// Parser consumes tokens from a lexer with one token of lookahead. It
// carries a type-name registry that grows as typedefs and aggregate tags
// are declared, which drives cast-vs-parenthesis disambiguation.
type Parser struct {
	l         *lexer.Lexer
	curToken  lexer.Token
	peekToken lexer.Token
	types     *ctypes.Registry
}

// New creates a parser reading from l
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, types: ctypes.NewRegistry()}
	// Prime curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// Types returns the registry of type names seen so far
func (p *Parser) Types() *ctypes.Registry {
	return p.types
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// AtEOF reports whether all input has been consumed
func (p *Parser) AtEOF() bool {
	return p.curToken.Type == lexer.TokenEOF
}

// SkipToStatementBoundary advances past the next semicolon or closing
// brace so a driver can resume after a parse error and report several
// errors in one run.
func (p *Parser) SkipToStatementBoundary() {
	for !p.AtEOF() {
		t := p.curToken.Type
		p.nextToken()
		if t == lexer.TokenSemicolon || t == lexer.TokenRBrace {
			return
		}
	}
}

func (p *Parser) expect(t lexer.TokenType) error {
	if p.curToken.Type != t {
		return p.errExpected("'" + t.String() + "'")
	}
	p.nextToken()
	return nil
}

// ParseProgram parses a whole translation unit, stopping at the first
// error
func (p *Parser) ParseProgram() (*cabs.Program, error) {
	prog := &cabs.Program{}
	for !p.AtEOF() {
		def, err := p.ParseDefinition()
		if err != nil {
			return nil, err
		}
		prog.Definitions = append(prog.Definitions, def)
	}
	return prog, nil
}

// ParseDefinition parses one top-level definition: a function, a global
// variable, a typedef, or a struct/union/enum declaration.
func (p *Parser) ParseDefinition() (cabs.Definition, error) {
	switch p.curToken.Type {
	case lexer.TokenTypedef:
		td, err := p.parseTypedef()
		if err != nil {
			return nil, err
		}
		return td, nil
	case lexer.TokenStruct, lexer.TokenUnion, lexer.TokenEnum:
		kw := p.curToken.Type
		p.nextToken()
		tag := ""
		if p.curToken.Type == lexer.TokenIdent {
			tag = p.curToken.Literal
			p.nextToken()
		}
		if p.curToken.Type == lexer.TokenLBrace {
			def, err := p.parseAggregateBody(kw, tag)
			if err != nil {
				return nil, err
			}
			if err := p.expect(lexer.TokenSemicolon); err != nil {
				return nil, err
			}
			p.types.DefineTag(tagKind(kw), tag)
			return def, nil
		}
		if tag == "" {
			return nil, p.errExpected("identifier")
		}
		return p.parseTopLevel("", tagType(kw, tag))
	default:
		storage := ""
		for p.curToken.Type.IsStorageClass() {
			storage = p.curToken.Literal
			p.nextToken()
		}
		base, err := p.parseTypeBase()
		if err != nil {
			return nil, err
		}
		return p.parseTopLevel(storage, base)
	}
}

// parseTopLevel finishes a definition once the base type is known:
// either a function (definition or prototype) or a global variable.
// Globals take one declarator, in any spelling a block-scope
// declaration accepts.
func (p *Parser) parseTopLevel(storage string, base ctypes.Type) (cabs.Definition, error) {
	typ := base
	for p.curToken.Type == lexer.TokenStar {
		typ = ctypes.Pointer(typ)
		p.nextToken()
	}
	if p.curToken.Type == lexer.TokenIdent && p.peekToken.Type == lexer.TokenLParen {
		name := p.curToken.Literal
		p.nextToken()
		return p.parseFunction(typ, name)
	}

	d, err := p.parseDeclarator(typ, true)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	return cabs.VarDef{
		StorageClass: storage,
		Type:         d.Type,
		Name:         d.Name,
		Initializer:  d.Initializer,
	}, nil
}

func (p *Parser) parseFunction(ret ctypes.Type, name string) (cabs.Definition, error) {
	p.nextToken() // (
	fn := cabs.FunDef{Return: ret, Name: name}

	if p.curToken.Type == lexer.TokenVoid && p.peekToken.Type == lexer.TokenRParen {
		p.nextToken() // f(void) means no parameters
	}
	for p.curToken.Type != lexer.TokenRParen {
		if p.AtEOF() {
			return nil, p.errExpected("')'")
		}
		if p.curToken.Type == lexer.TokenEllipsis {
			fn.Variadic = true
			p.nextToken()
			break
		}
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, param)
		if p.curToken.Type != lexer.TokenComma {
			break
		}
		p.nextToken()
	}
	if err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}

	if p.curToken.Type == lexer.TokenSemicolon {
		p.nextToken() // prototype
		return fn, nil
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func (p *Parser) parseParam() (cabs.Param, error) {
	base, err := p.parseTypeBase()
	if err != nil {
		return cabs.Param{}, err
	}
	typ := base
	for p.curToken.Type == lexer.TokenStar {
		typ = ctypes.Pointer(typ)
		p.nextToken()
	}
	name := ""
	if p.curToken.Type == lexer.TokenIdent {
		name = p.curToken.Literal
		p.nextToken()
	}
	typ, err = p.parseArraySuffix(typ)
	if err != nil {
		return cabs.Param{}, err
	}
	return cabs.Param{Type: typ, Name: name}, nil
}

package parser

import (
	"strconv"

	"github.com/ctran-lang/ctran/pkg/cabs"
	"github.com/ctran-lang/ctran/pkg/ctypes"
	"github.com/ctran-lang/ctran/pkg/lexer"
)

// parseTypeBase parses qualifiers, signedness, and the base type
// specifier, without any declarator parts. Pointer stars stay with the
// declarator so that comma-separated declarators each get their own.
func (p *Parser) parseTypeBase() (ctypes.Type, error) {
	var isConst, isVolatile, sawSigned, sawUnsigned bool
prefix:
	for {
		switch p.curToken.Type {
		case lexer.TokenConst:
			isConst = true
			p.nextToken()
		case lexer.TokenVolatile:
			isVolatile = true
			p.nextToken()
		case lexer.TokenRestrict:
			p.nextToken()
		case lexer.TokenSigned:
			sawSigned = true
			p.nextToken()
		case lexer.TokenUnsigned:
			sawUnsigned = true
			p.nextToken()
		default:
			break prefix
		}
	}
	sign := ctypes.Signed
	if sawUnsigned {
		sign = ctypes.Unsigned
	}

	var typ ctypes.Type
	switch p.curToken.Type {
	case lexer.TokenVoid:
		typ = ctypes.Tvoid{}
		p.nextToken()
	case lexer.TokenChar_:
		typ = ctypes.Tint{Size: ctypes.I8, Sign: sign}
		p.nextToken()
	case lexer.TokenShort:
		p.nextToken()
		if p.curToken.Type == lexer.TokenInt_ {
			p.nextToken()
		}
		typ = ctypes.Tint{Size: ctypes.I16, Sign: sign}
	case lexer.TokenInt_:
		typ = ctypes.Tint{Size: ctypes.I32, Sign: sign}
		p.nextToken()
	case lexer.TokenLong:
		p.nextToken()
		if p.curToken.Type == lexer.TokenLong {
			p.nextToken()
		}
		if p.curToken.Type == lexer.TokenInt_ {
			p.nextToken()
		}
		typ = ctypes.Tlong{Sign: sign}
	case lexer.TokenFloat_:
		typ = ctypes.Tfloat{Size: ctypes.F32}
		p.nextToken()
	case lexer.TokenDouble:
		typ = ctypes.Tfloat{Size: ctypes.F64}
		p.nextToken()
	case lexer.TokenStruct, lexer.TokenUnion, lexer.TokenEnum:
		kw := p.curToken.Type
		p.nextToken()
		if p.curToken.Type != lexer.TokenIdent {
			return nil, p.errExpected("identifier")
		}
		typ = tagType(kw, p.curToken.Literal)
		p.nextToken()
	case lexer.TokenIdent:
		if !p.types.IsType(p.curToken.Literal) {
			return nil, p.errExpected("type name")
		}
		typ = ctypes.Tnamed{Name: p.curToken.Literal}
		p.nextToken()
	default:
		if !sawSigned && !sawUnsigned {
			return nil, p.errExpected("type specifier")
		}
		// bare signed/unsigned defaults to int
		typ = ctypes.Tint{Size: ctypes.I32, Sign: sign}
	}

	if isConst || isVolatile {
		typ = ctypes.Tqualified{Const: isConst, Volatile: isVolatile, Elem: typ}
	}
	return typ, nil
}

// parseType parses a full type name as used in casts, sizeof, and
// typedef targets: base specifier followed by pointer stars.
func (p *Parser) parseType() (ctypes.Type, error) {
	typ, err := p.parseTypeBase()
	if err != nil {
		return nil, err
	}
	for p.curToken.Type == lexer.TokenStar {
		typ = ctypes.Pointer(typ)
		p.nextToken()
	}
	return typ, nil
}

// parseDeclarator parses one declarator against a shared base type:
// pointer stars, the name (possibly in a parenthesized pointer form like
// (*p)[10]), array dimensions, and an optional initializer.
func (p *Parser) parseDeclarator(base ctypes.Type, withInit bool) (cabs.Decl, error) {
	typ := base
	for p.curToken.Type == lexer.TokenStar {
		typ = ctypes.Pointer(typ)
		p.nextToken()
	}

	var name string
	if p.curToken.Type == lexer.TokenLParen && p.peekToken.Type == lexer.TokenStar {
		p.nextToken()
		ptrs := 0
		for p.curToken.Type == lexer.TokenStar {
			ptrs++
			p.nextToken()
		}
		if p.curToken.Type != lexer.TokenIdent {
			return cabs.Decl{}, p.errExpected("identifier")
		}
		name = p.curToken.Literal
		p.nextToken()
		if err := p.expect(lexer.TokenRParen); err != nil {
			return cabs.Decl{}, err
		}
		// suffix dimensions bind to the base before the inner stars
		elem, err := p.parseArraySuffix(typ)
		if err != nil {
			return cabs.Decl{}, err
		}
		for ; ptrs > 0; ptrs-- {
			elem = ctypes.Pointer(elem)
		}
		typ = elem
	} else {
		if p.curToken.Type != lexer.TokenIdent {
			return cabs.Decl{}, p.errExpected("identifier")
		}
		name = p.curToken.Literal
		p.nextToken()
		var err error
		typ, err = p.parseArraySuffix(typ)
		if err != nil {
			return cabs.Decl{}, err
		}
	}

	d := cabs.Decl{Type: typ, Name: name}
	if withInit && p.curToken.Type == lexer.TokenAssign {
		p.nextToken()
		init, err := p.parseAssignment()
		if err != nil {
			return cabs.Decl{}, err
		}
		d.Initializer = init
	}
	return d, nil
}

// parseArraySuffix parses zero or more [N] dimensions. An empty pair
// yields an incomplete array. Dimensions fold right to left so that
// a[2][3] is an array of 2 arrays of 3 elements.
func (p *Parser) parseArraySuffix(elem ctypes.Type) (ctypes.Type, error) {
	var dims []int64
	for p.curToken.Type == lexer.TokenLBracket {
		p.nextToken()
		if p.curToken.Type == lexer.TokenRBracket {
			dims = append(dims, -1)
			p.nextToken()
			continue
		}
		if p.curToken.Type != lexer.TokenInt {
			return nil, p.errExpected("constant array size")
		}
		n, err := strconv.ParseInt(p.curToken.Literal, 0, 64)
		if err != nil {
			return nil, p.errMsgf("invalid array size %q", p.curToken.Literal)
		}
		p.nextToken()
		if err := p.expect(lexer.TokenRBracket); err != nil {
			return nil, err
		}
		dims = append(dims, n)
	}
	for i := len(dims) - 1; i >= 0; i-- {
		elem = ctypes.Tarray{Elem: elem, Size: dims[i]}
	}
	return elem, nil
}

// parseDeclStmt parses a declaration statement with one or more
// comma-separated declarators. Storage classes are accepted and dropped
// at block scope.
func (p *Parser) parseDeclStmt() (cabs.Stmt, error) {
	for p.curToken.Type.IsStorageClass() {
		p.nextToken()
	}
	base, err := p.parseTypeBase()
	if err != nil {
		return nil, err
	}
	stmt := cabs.DeclStmt{}
	for {
		d, err := p.parseDeclarator(base, true)
		if err != nil {
			return nil, err
		}
		stmt.Decls = append(stmt.Decls, d)
		if p.curToken.Type != lexer.TokenComma {
			break
		}
		p.nextToken()
	}
	if err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseAggregateStmt parses a statement that starts with struct, union,
// or enum: either a standalone type declaration, or a variable
// declaration whose base type is the aggregate, with or without an
// inline body.
func (p *Parser) parseAggregateStmt() (cabs.Stmt, error) {
	kw := p.curToken.Type
	p.nextToken()
	tag := ""
	if p.curToken.Type == lexer.TokenIdent {
		tag = p.curToken.Literal
		p.nextToken()
	}

	var def cabs.Definition
	if p.curToken.Type == lexer.TokenLBrace {
		var err error
		def, err = p.parseAggregateBody(kw, tag)
		if err != nil {
			return nil, err
		}
	} else if tag == "" {
		return nil, p.errExpected("identifier", "'{'")
	}

	if def != nil && p.curToken.Type == lexer.TokenSemicolon {
		p.nextToken()
		p.types.DefineTag(tagKind(kw), tag)
		return def.(cabs.Stmt), nil
	}

	// An identifier (or pointer star) after the specifier means the
	// aggregate is the base type of a variable declaration.
	base := tagType(kw, tag)
	stmt := cabs.DeclStmt{Aggregate: def}
	for {
		d, err := p.parseDeclarator(base, true)
		if err != nil {
			return nil, err
		}
		stmt.Decls = append(stmt.Decls, d)
		if p.curToken.Type != lexer.TokenComma {
			break
		}
		p.nextToken()
	}
	if err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	if def != nil {
		p.types.DefineTag(tagKind(kw), tag)
	}
	return stmt, nil
}

// parseAggregateBody parses { ... } of a struct, union, or enum, with
// the opening brace as the current token.
func (p *Parser) parseAggregateBody(kw lexer.TokenType, tag string) (cabs.Definition, error) {
	p.nextToken()

	if kw == lexer.TokenEnum {
		var values []cabs.EnumValue
		for p.curToken.Type != lexer.TokenRBrace {
			if p.curToken.Type != lexer.TokenIdent {
				return nil, p.errExpected("identifier")
			}
			v := cabs.EnumValue{Name: p.curToken.Literal}
			p.nextToken()
			if p.curToken.Type == lexer.TokenAssign {
				p.nextToken()
				e, err := p.parseConditional()
				if err != nil {
					return nil, err
				}
				v.Value = e
			}
			values = append(values, v)
			if p.curToken.Type != lexer.TokenComma {
				break
			}
			p.nextToken() // trailing comma allowed
		}
		if err := p.expect(lexer.TokenRBrace); err != nil {
			return nil, err
		}
		return cabs.EnumDef{Name: tag, Values: values}, nil
	}

	var fields []cabs.Field
	for p.curToken.Type != lexer.TokenRBrace {
		if p.AtEOF() {
			return nil, p.errExpected("'}'")
		}
		base, err := p.parseTypeBase()
		if err != nil {
			return nil, err
		}
		for {
			d, err := p.parseDeclarator(base, false)
			if err != nil {
				return nil, err
			}
			fields = append(fields, cabs.Field{Type: d.Type, Name: d.Name})
			if p.curToken.Type != lexer.TokenComma {
				break
			}
			p.nextToken()
		}
		if err := p.expect(lexer.TokenSemicolon); err != nil {
			return nil, err
		}
	}
	p.nextToken()
	if kw == lexer.TokenUnion {
		return cabs.UnionDef{Name: tag, Fields: fields}, nil
	}
	return cabs.StructDef{Name: tag, Fields: fields}, nil
}

// parseTypedef parses a typedef, registering the new name once the
// whole declaration has been consumed. Aggregates defined in place
// (typedef struct {...} Name) keep their body on the definition.
func (p *Parser) parseTypedef() (cabs.TypedefDef, error) {
	p.nextToken()
	var def cabs.TypedefDef

	switch p.curToken.Type {
	case lexer.TokenStruct, lexer.TokenUnion, lexer.TokenEnum:
		kw := p.curToken.Type
		p.nextToken()
		tag := ""
		if p.curToken.Type == lexer.TokenIdent {
			tag = p.curToken.Literal
			p.nextToken()
		}
		if p.curToken.Type == lexer.TokenLBrace {
			inline, err := p.parseAggregateBody(kw, tag)
			if err != nil {
				return cabs.TypedefDef{}, err
			}
			def.InlineType = inline
			p.types.DefineTag(tagKind(kw), tag)
		} else if tag == "" {
			return cabs.TypedefDef{}, p.errExpected("identifier", "'{'")
		}
		def.Type = tagType(kw, tag)
		for p.curToken.Type == lexer.TokenStar {
			def.Type = ctypes.Pointer(def.Type)
			p.nextToken()
		}
	default:
		typ, err := p.parseType()
		if err != nil {
			return cabs.TypedefDef{}, err
		}
		def.Type = typ
	}

	if p.curToken.Type != lexer.TokenIdent {
		return cabs.TypedefDef{}, p.errExpected("identifier")
	}
	def.Name = p.curToken.Literal
	p.nextToken()
	if err := p.expect(lexer.TokenSemicolon); err != nil {
		return cabs.TypedefDef{}, err
	}
	p.types.DefineTypedef(def.Name)
	return def, nil
}

func tagType(kw lexer.TokenType, tag string) ctypes.Type {
	switch kw {
	case lexer.TokenUnion:
		return ctypes.Tunion{Name: tag}
	case lexer.TokenEnum:
		return ctypes.Tenum{Name: tag}
	}
	return ctypes.Tstruct{Name: tag}
}

func tagKind(kw lexer.TokenType) ctypes.NameKind {
	switch kw {
	case lexer.TokenUnion:
		return ctypes.KindUnionTag
	case lexer.TokenEnum:
		return ctypes.KindEnumTag
	}
	return ctypes.KindStructTag
}

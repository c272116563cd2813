package parser

import (
	"fmt"
	"strings"

	"github.com/ctran-lang/ctran/pkg/lexer"
)

// ErrorKind classifies parse errors
type ErrorKind int

const (
	// ErrUnexpectedToken is the general case: the token at the reported
	// position cannot continue any production
	ErrUnexpectedToken ErrorKind = iota
	// ErrPrematureEOF means input ended inside an open construct
	ErrPrematureEOF
	// ErrTypeAmbiguity means a parenthesized identifier was followed by
	// an operand, which only makes sense as a cast through an undeclared
	// type name
	ErrTypeAmbiguity
)

// ParseError reports a syntax error with the offending token's position
type ParseError struct {
	Kind     ErrorKind
	Got      lexer.Token
	Expected []string
	Msg      string
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = fmt.Sprintf("expected %s, got %s",
			strings.Join(e.Expected, " or "), tokenDisplay(e.Got))
	}
	return fmt.Sprintf("line %d, col %d: %s", e.Got.Line, e.Got.Column, msg)
}

func tokenDisplay(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokenEOF:
		return "end of input"
	case lexer.TokenIdent, lexer.TokenInt, lexer.TokenFloat:
		return fmt.Sprintf("'%s'", tok.Literal)
	case lexer.TokenString:
		return fmt.Sprintf("\"%s\"", tok.Literal)
	default:
		return fmt.Sprintf("'%s'", tok.Type.String())
	}
}

// errExpected builds a ParseError at the current token. A pending lexer
// error takes precedence, since an illegal token is its symptom.
func (p *Parser) errExpected(expected ...string) error {
	if err := p.l.Err(); err != nil {
		return err
	}
	kind := ErrUnexpectedToken
	if p.curToken.Type == lexer.TokenEOF {
		kind = ErrPrematureEOF
	}
	return &ParseError{Kind: kind, Got: p.curToken, Expected: expected}
}

func (p *Parser) errMsgf(format string, args ...interface{}) error {
	if err := p.l.Err(); err != nil {
		return err
	}
	return &ParseError{
		Kind: ErrUnexpectedToken,
		Got:  p.curToken,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Package lexer tokenizes C source code
package lexer

import (
	"fmt"
	"unicode"
)

// LexError reports a malformed literal with its source position.
type LexError struct {
	Msg    string
	Line   int
	Column int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Msg)
}

// Lexer tokenizes C source code. Multi-character operators are matched
// greedily: the longest valid token at the current position wins.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // next reading position
	ch      byte // current character
	line    int
	column  int
	err     *LexError
}

// New creates a new Lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Err returns the first lexical error encountered, or nil.
func (l *Lexer) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

func (l *Lexer) setError(line, column int, format string, args ...interface{}) {
	if l.err == nil {
		l.err = &LexError{Msg: fmt.Sprintf(format, args...), Line: line, Column: column}
	}
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) peekChar2() byte {
	if l.readPos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.readPos+1]
}

// Tokenize consumes the whole input and returns the token stream,
// terminated by an EOF token. The first lexical error aborts the scan.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenIllegal && l.err != nil {
			return nil, l.err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			// an unterminated comment surfaces here, not as a token
			if l.err != nil {
				return nil, l.err
			}
			return tokens, nil
		}
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	l.skipComments()
	l.skipWhitespace()

	tok := Token{Line: l.line, Column: l.column}

	switch l.ch {
	case 0:
		tok.Type = TokenEOF
		tok.Literal = ""
	case '+':
		switch l.peekChar() {
		case '+':
			tok.Type = TokenIncrement
			tok.Literal = "++"
			l.readChar()
		case '=':
			tok.Type = TokenPlusAssign
			tok.Literal = "+="
			l.readChar()
		default:
			tok = l.newToken(TokenPlus, l.ch)
		}
	case '-':
		switch l.peekChar() {
		case '-':
			tok.Type = TokenDecrement
			tok.Literal = "--"
			l.readChar()
		case '=':
			tok.Type = TokenMinusAssign
			tok.Literal = "-="
			l.readChar()
		case '>':
			tok.Type = TokenArrow
			tok.Literal = "->"
			l.readChar()
		default:
			tok = l.newToken(TokenMinus, l.ch)
		}
	case '*':
		if l.peekChar() == '=' {
			tok.Type = TokenStarAssign
			tok.Literal = "*="
			l.readChar()
		} else {
			tok = l.newToken(TokenStar, l.ch)
		}
	case '/':
		if l.peekChar() == '=' {
			tok.Type = TokenSlashAssign
			tok.Literal = "/="
			l.readChar()
		} else {
			tok = l.newToken(TokenSlash, l.ch)
		}
	case '%':
		if l.peekChar() == '=' {
			tok.Type = TokenPercentAssign
			tok.Literal = "%="
			l.readChar()
		} else {
			tok = l.newToken(TokenPercent, l.ch)
		}
	case '=':
		if l.peekChar() == '=' {
			tok.Type = TokenEq
			tok.Literal = "=="
			l.readChar()
		} else {
			tok = l.newToken(TokenAssign, l.ch)
		}
	case '!':
		if l.peekChar() == '=' {
			tok.Type = TokenNe
			tok.Literal = "!="
			l.readChar()
		} else {
			tok = l.newToken(TokenNot, l.ch)
		}
	case '<':
		if l.peekChar() == '<' {
			if l.peekChar2() == '=' {
				tok.Type = TokenShlAssign
				tok.Literal = "<<="
				l.readChar()
				l.readChar()
			} else {
				tok.Type = TokenShl
				tok.Literal = "<<"
				l.readChar()
			}
		} else if l.peekChar() == '=' {
			tok.Type = TokenLe
			tok.Literal = "<="
			l.readChar()
		} else {
			tok = l.newToken(TokenLt, l.ch)
		}
	case '>':
		if l.peekChar() == '>' {
			if l.peekChar2() == '=' {
				tok.Type = TokenShrAssign
				tok.Literal = ">>="
				l.readChar()
				l.readChar()
			} else {
				tok.Type = TokenShr
				tok.Literal = ">>"
				l.readChar()
			}
		} else if l.peekChar() == '=' {
			tok.Type = TokenGe
			tok.Literal = ">="
			l.readChar()
		} else {
			tok = l.newToken(TokenGt, l.ch)
		}
	case '&':
		switch l.peekChar() {
		case '&':
			tok.Type = TokenAnd
			tok.Literal = "&&"
			l.readChar()
		case '=':
			tok.Type = TokenAndAssign
			tok.Literal = "&="
			l.readChar()
		default:
			tok = l.newToken(TokenAmpersand, l.ch)
		}
	case '|':
		switch l.peekChar() {
		case '|':
			tok.Type = TokenOr
			tok.Literal = "||"
			l.readChar()
		case '=':
			tok.Type = TokenOrAssign
			tok.Literal = "|="
			l.readChar()
		default:
			tok = l.newToken(TokenPipe, l.ch)
		}
	case '^':
		if l.peekChar() == '=' {
			tok.Type = TokenXorAssign
			tok.Literal = "^="
			l.readChar()
		} else {
			tok = l.newToken(TokenCaret, l.ch)
		}
	case '~':
		tok = l.newToken(TokenTilde, l.ch)
	case '?':
		tok = l.newToken(TokenQuestion, l.ch)
	case ':':
		tok = l.newToken(TokenColon, l.ch)
	case '(':
		tok = l.newToken(TokenLParen, l.ch)
	case ')':
		tok = l.newToken(TokenRParen, l.ch)
	case '{':
		tok = l.newToken(TokenLBrace, l.ch)
	case '}':
		tok = l.newToken(TokenRBrace, l.ch)
	case '[':
		tok = l.newToken(TokenLBracket, l.ch)
	case ']':
		tok = l.newToken(TokenRBracket, l.ch)
	case ';':
		tok = l.newToken(TokenSemicolon, l.ch)
	case ',':
		tok = l.newToken(TokenComma, l.ch)
	case '.':
		if isDigit(l.peekChar()) {
			tok.Type, tok.Literal = l.readNumber()
			return tok
		}
		if l.peekChar() == '.' && l.peekChar2() == '.' {
			tok.Type = TokenEllipsis
			tok.Literal = "..."
			l.readChar()
			l.readChar()
		} else {
			tok = l.newToken(TokenDot, l.ch)
		}
	case '"':
		lit, ok := l.readString(tok.Line, tok.Column)
		if !ok {
			tok.Type = TokenIllegal
			return tok
		}
		tok.Type = TokenString
		tok.Literal = lit
		return tok
	case '\'':
		lit, ok := l.readCharLit(tok.Line, tok.Column)
		if !ok {
			tok.Type = TokenIllegal
			return tok
		}
		tok.Type = TokenChar
		tok.Literal = lit
		return tok
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) {
			tok.Type, tok.Literal = l.readNumber()
			return tok
		} else {
			l.setError(tok.Line, tok.Column, "unexpected character %q", string(l.ch))
			tok = l.newToken(TokenIllegal, l.ch)
		}
	}

	l.readChar()
	return tok
}

func (l *Lexer) newToken(tokenType TokenType, ch byte) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: l.line, Column: l.column}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipComments() {
	for l.ch == '/' {
		if l.peekChar() == '/' {
			// Single-line comment
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			l.skipWhitespace()
		} else if l.peekChar() == '*' {
			// Multi-line comment
			line, column := l.line, l.column
			l.readChar() // consume /
			l.readChar() // consume *
			terminated := false
			for {
				if l.ch == 0 {
					break
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar() // consume *
					l.readChar() // consume /
					terminated = true
					break
				}
				l.readChar()
			}
			if !terminated {
				l.setError(line, column, "unterminated comment")
			}
			l.skipWhitespace()
		} else {
			break
		}
	}
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

// readNumber scans an integer or floating literal. Hex integers and
// exponent notation are recognized; type suffixes are consumed and dropped.
func (l *Lexer) readNumber() (TokenType, string) {
	pos := l.pos
	kind := TokenInt

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) {
			l.readChar()
		}
		lit := l.input[pos:l.pos]
		l.skipNumberSuffix()
		return TokenInt, lit
	}

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) || l.ch == '.' && l.pos > pos {
		kind = TokenFloat
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekChar2())) {
			kind = TokenFloat
			l.readChar() // e
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	lit := l.input[pos:l.pos]
	l.skipNumberSuffix()
	return kind, lit
}

func (l *Lexer) skipNumberSuffix() {
	for l.ch == 'u' || l.ch == 'U' || l.ch == 'l' || l.ch == 'L' ||
		l.ch == 'f' || l.ch == 'F' {
		l.readChar()
	}
}

// readString scans a string literal, decoding escape sequences. The
// returned literal is the decoded value without the surrounding quotes.
func (l *Lexer) readString(line, column int) (string, bool) {
	l.readChar() // consume opening quote
	var out []byte
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			l.setError(line, column, "unterminated string literal")
			return "", false
		}
		if l.ch == '\\' {
			l.readChar()
			decoded, ok := decodeEscape(l.ch)
			if !ok {
				l.setError(line, column, "invalid escape sequence '\\%s' in string literal", string(l.ch))
				return "", false
			}
			out = append(out, decoded)
			l.readChar()
			continue
		}
		out = append(out, l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote
	return string(out), true
}

// readCharLit scans a character literal, decoding a single escape.
func (l *Lexer) readCharLit(line, column int) (string, bool) {
	l.readChar() // consume opening quote
	if l.ch == 0 || l.ch == '\n' || l.ch == '\'' {
		l.setError(line, column, "empty or unterminated character literal")
		return "", false
	}
	var value byte
	if l.ch == '\\' {
		l.readChar()
		decoded, ok := decodeEscape(l.ch)
		if !ok {
			l.setError(line, column, "invalid escape sequence '\\%s' in character literal", string(l.ch))
			return "", false
		}
		value = decoded
	} else {
		value = l.ch
	}
	l.readChar()
	if l.ch != '\'' {
		l.setError(line, column, "unterminated character literal")
		return "", false
	}
	l.readChar() // consume closing quote
	return string(value), true
}

func decodeEscape(ch byte) (byte, bool) {
	switch ch {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'a':
		return 7, true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'v':
		return '\v', true
	case '0':
		return 0, true
	case '\\':
		return '\\', true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	case '?':
		return '?', true
	}
	return 0, false
}

func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch)) || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

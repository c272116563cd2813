package lexer

import (
	"strings"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `int main() { return 42; }`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenInt_, "int"},
		{TokenIdent, "main"},
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenLBrace, "{"},
		{TokenReturn, "return"},
		{TokenInt, "42"},
		{TokenSemicolon, ";"},
		{TokenRBrace, "}"},
		{TokenEOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `+ - * / % = == != < <= > >= && || ! & | ^ ~ << >> ? :
+= -= *= /= %= &= |= ^= <<= >>= ++ -- -> . ...`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenPlus, "+"},
		{TokenMinus, "-"},
		{TokenStar, "*"},
		{TokenSlash, "/"},
		{TokenPercent, "%"},
		{TokenAssign, "="},
		{TokenEq, "=="},
		{TokenNe, "!="},
		{TokenLt, "<"},
		{TokenLe, "<="},
		{TokenGt, ">"},
		{TokenGe, ">="},
		{TokenAnd, "&&"},
		{TokenOr, "||"},
		{TokenNot, "!"},
		{TokenAmpersand, "&"},
		{TokenPipe, "|"},
		{TokenCaret, "^"},
		{TokenTilde, "~"},
		{TokenShl, "<<"},
		{TokenShr, ">>"},
		{TokenQuestion, "?"},
		{TokenColon, ":"},
		{TokenPlusAssign, "+="},
		{TokenMinusAssign, "-="},
		{TokenStarAssign, "*="},
		{TokenSlashAssign, "/="},
		{TokenPercentAssign, "%="},
		{TokenAndAssign, "&="},
		{TokenOrAssign, "|="},
		{TokenXorAssign, "^="},
		{TokenShlAssign, "<<="},
		{TokenShrAssign, ">>="},
		{TokenIncrement, "++"},
		{TokenDecrement, "--"},
		{TokenArrow, "->"},
		{TokenDot, "."},
		{TokenEllipsis, "..."},
		{TokenEOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

// The longest operator at the current position always wins, so a+++b
// is a ++ + b, never a + ++ b.
func TestMaximalMunch(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"a+++b", []TokenType{TokenIdent, TokenIncrement, TokenPlus, TokenIdent}},
		{"a---b", []TokenType{TokenIdent, TokenDecrement, TokenMinus, TokenIdent}},
		{"x<<=2", []TokenType{TokenIdent, TokenShlAssign, TokenInt}},
		{"x<<2", []TokenType{TokenIdent, TokenShl, TokenInt}},
		{"x<2", []TokenType{TokenIdent, TokenLt, TokenInt}},
		{"x>>=2", []TokenType{TokenIdent, TokenShrAssign, TokenInt}},
		{"p->x", []TokenType{TokenIdent, TokenArrow, TokenIdent}},
		{"a&&&b", []TokenType{TokenIdent, TokenAnd, TokenAmpersand, TokenIdent}},
	}

	for _, tt := range tests {
		l := New(tt.input)
		for i, want := range tt.expected {
			tok := l.NextToken()
			if tok.Type != want {
				t.Errorf("%q token %d: expected %q, got %q", tt.input, i, want, tok.Type)
			}
		}
		if tok := l.NextToken(); tok.Type != TokenEOF {
			t.Errorf("%q: expected EOF, got %q", tt.input, tok.Type)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `typedef struct union enum sizeof static const unsigned char long double`

	expected := []TokenType{
		TokenTypedef, TokenStruct, TokenUnion, TokenEnum, TokenSizeof,
		TokenStatic, TokenConst, TokenUnsigned, TokenChar_, TokenLong,
		TokenDouble, TokenEOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: expected %q, got %q", i, want, tok.Type)
		}
	}
}

func TestComments(t *testing.T) {
	input := `int a; // line comment
/* block
   comment */ int b; /* inline */ int c;`

	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenInt_, "int"},
		{TokenIdent, "a"},
		{TokenSemicolon, ";"},
		{TokenInt_, "int"},
		{TokenIdent, "b"},
		{TokenSemicolon, ";"},
		{TokenInt_, "int"},
		{TokenIdent, "c"},
		{TokenSemicolon, ";"},
		{TokenEOF, ""},
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ || tok.Literal != want.lit {
			t.Fatalf("token %d: expected %q %q, got %q %q",
				i, want.typ, want.lit, tok.Type, tok.Literal)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
		literal  string
	}{
		{"42", TokenInt, "42"},
		{"0", TokenInt, "0"},
		{"0x2a", TokenInt, "0x2a"},
		{"0XFF", TokenInt, "0XFF"},
		{"10L", TokenInt, "10"},
		{"42u", TokenInt, "42"},
		{"3.14", TokenFloat, "3.14"},
		{"0.5", TokenFloat, "0.5"},
		{".5", TokenFloat, ".5"},
		{"1.", TokenFloat, "1."},
		{"1e9", TokenFloat, "1e9"},
		{"1.5e-3", TokenFloat, "1.5e-3"},
		{"2E+10", TokenFloat, "2E+10"},
		{"3.14f", TokenFloat, "3.14"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expected {
			t.Errorf("%q: expected type %q, got %q", tt.input, tt.expected, tok.Type)
		}
		if tok.Literal != tt.literal {
			t.Errorf("%q: expected literal %q, got %q", tt.input, tt.literal, tok.Literal)
		}
	}
}

func TestStringAndCharLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
		literal  string
	}{
		{`"hello"`, TokenString, "hello"},
		{`""`, TokenString, ""},
		{`"a\nb"`, TokenString, "a\nb"},
		{`"tab\there"`, TokenString, "tab\there"},
		{`"quote\"inside"`, TokenString, `quote"inside`},
		{`"back\\slash"`, TokenString, `back\slash`},
		{`'a'`, TokenChar, "a"},
		{`'\n'`, TokenChar, "\n"},
		{`'\0'`, TokenChar, "\x00"},
		{`'\''`, TokenChar, "'"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expected {
			t.Errorf("%q: expected type %q, got %q", tt.input, tt.expected, tok.Type)
		}
		if tok.Literal != tt.literal {
			t.Errorf("%q: expected literal %q, got %q", tt.input, tt.literal, tok.Literal)
		}
	}
}

func TestTokenPositions(t *testing.T) {
	input := "int x;\ny = 1;"

	expected := []struct {
		typ  TokenType
		line int
		col  int
	}{
		{TokenInt_, 1, 1},
		{TokenIdent, 1, 5},
		{TokenSemicolon, 1, 6},
		{TokenIdent, 2, 1},
		{TokenAssign, 2, 3},
		{TokenInt, 2, 5},
		{TokenSemicolon, 2, 6},
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ {
			t.Fatalf("token %d: expected %q, got %q", i, want.typ, tok.Type)
		}
		if tok.Line != want.line || tok.Column != want.col {
			t.Errorf("token %d (%q): expected %d:%d, got %d:%d",
				i, tok.Literal, want.line, want.col, tok.Line, tok.Column)
		}
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		input   string
		wantMsg string
	}{
		{`"unterminated`, "unterminated string literal"},
		{"\"newline\nin string\"", "unterminated string literal"},
		{`''`, "empty or unterminated character literal"},
		{`'ab'`, "unterminated character literal"},
		{`'\q'`, "invalid escape sequence"},
		{`"\q"`, "invalid escape sequence"},
		{"/* never closed", "unterminated comment"},
		{"int @ x;", "unexpected character"},
	}

	for _, tt := range tests {
		_, err := New(tt.input).Tokenize()
		if err == nil {
			t.Errorf("%q: expected error, got none", tt.input)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantMsg) {
			t.Errorf("%q: expected error containing %q, got %q", tt.input, tt.wantMsg, err)
		}
	}
}

func TestLexErrorPosition(t *testing.T) {
	_, err := New("x = 1;\ny = @;").Tokenize()
	if err == nil {
		t.Fatal("expected error")
	}
	lexErr, ok := err.(*LexError)
	if !ok {
		t.Fatalf("expected *LexError, got %T", err)
	}
	if lexErr.Line != 2 || lexErr.Column != 5 {
		t.Errorf("expected position 2:5, got %d:%d", lexErr.Line, lexErr.Column)
	}
}

func TestTokenize(t *testing.T) {
	tokens, err := New("return 0;").Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(tokens))
	}
	if tokens[len(tokens)-1].Type != TokenEOF {
		t.Error("token stream should end with EOF")
	}
}

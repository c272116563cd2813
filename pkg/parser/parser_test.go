package parser

import (
	"errors"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ctran-lang/ctran/pkg/cabs"
	"github.com/ctran-lang/ctran/pkg/ctypes"
	"github.com/ctran-lang/ctran/pkg/lexer"
)

// TestSpec represents a test case from parse.yaml
type TestSpec struct {
	Name   string `yaml:"name"`
	Input  string `yaml:"input"`
	Render string `yaml:"render"`
}

// TestFile represents the parse.yaml file structure
type TestFile struct {
	Tests []TestSpec `yaml:"tests"`
}

func renderProgram(t *testing.T, prog *cabs.Program) string {
	t.Helper()
	var sb strings.Builder
	cabs.NewPrinter(&sb).PrintProgram(prog)
	return sb.String()
}

func TestParseYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/parse.yaml")
	if err != nil {
		t.Fatalf("failed to read parse.yaml: %v", err)
	}

	var testFile TestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse parse.yaml: %v", err)
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			p := New(lexer.New(tc.Input))
			prog, err := p.ParseProgram()
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			got := strings.TrimRight(renderProgram(t, prog), "\n")
			want := strings.TrimRight(tc.Render, "\n")
			if got != want {
				t.Errorf("render mismatch\nwant:\n%s\ngot:\n%s", want, got)
			}
		})
	}
}

func parseExpr(t *testing.T, input string) cabs.Expr {
	t.Helper()
	p := New(lexer.New(input))
	e, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("%q: unexpected error: %v", input, err)
	}
	return e
}

func TestExpressionRendering(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "1 + 2 * 3"},
		{"(1 + 2) * 3", "(1 + 2) * 3"},
		{"1 - 2 - 3", "1 - 2 - 3"},
		{"1 - (2 - 3)", "1 - (2 - 3)"},
		{"a = b = 5", "a = b = 5"},
		{"x = y += 2", "x = y += 2"},
		{"a ? b : c ? d : e", "a ? b : c ? d : e"},
		{"(a ? b : c) ? d : e", "(a ? b : c) ? d : e"},
		{"x << 2 | y >> 3", "x << 2 | y >> 3"},
		{"a & b | c ^ d", "a & b | c ^ d"},
		{"(a | b) & c", "(a | b) & c"},
		{"!a && ~b || c", "!a && ~b || c"},
		{"-x * 3", "-x * 3"},
		{"- -x", "- -x"},
		{"a+++b", "a++ + b"},
		{"*p++", "*p++"},
		{"(*p)++", "(*p)++"},
		{"(*p)[i]", "(*p)[i]"},
		{"*p[i]", "*p[i]"},
		{"f(a, b)[2].x->y", "f(a, b)[2].x->y"},
		{"sizeof(x + 1)", "sizeof (x + 1)"},
		{"sizeof x", "sizeof x"},
		{"(int)x + 1", "(int)x + 1"},
		{"(int *)p", "(int *)p"},
		{"(unsigned long)n", "(unsigned long)n"},
		{"((int *)p)->x", "((int *)p)->x"},
		{"&a", "&a"},
		{"a & b", "a & b"},
		{"arr[i][j]", "arr[i][j]"},
		{"s.a.b", "s.a.b"},
		{"f(g(x), y + 1)", "f(g(x), y + 1)"},
		{"f(a = 1)", "f(a = 1)"},
	}

	for _, tt := range tests {
		e := parseExpr(t, tt.input)
		if got := cabs.RenderExpr(e); got != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestPrecedenceShape(t *testing.T) {
	// 1 + 2 * 3 groups as 1 + (2 * 3)
	e := parseExpr(t, "1 + 2 * 3")
	add, ok := e.(cabs.Binary)
	if !ok || add.Op != cabs.OpAdd {
		t.Fatalf("expected top-level +, got %#v", e)
	}
	if mul, ok := add.Right.(cabs.Binary); !ok || mul.Op != cabs.OpMul {
		t.Errorf("expected * on the right of +, got %#v", add.Right)
	}

	// subtraction is left-associative
	e = parseExpr(t, "1 - 2 - 3")
	sub, ok := e.(cabs.Binary)
	if !ok || sub.Op != cabs.OpSub {
		t.Fatalf("expected top-level -, got %#v", e)
	}
	if inner, ok := sub.Left.(cabs.Binary); !ok || inner.Op != cabs.OpSub {
		t.Errorf("expected - on the left of -, got %#v", sub.Left)
	}

	// assignment is right-associative
	e = parseExpr(t, "a = b = c")
	asg, ok := e.(cabs.Assign)
	if !ok {
		t.Fatalf("expected assignment, got %#v", e)
	}
	if _, ok := asg.Value.(cabs.Assign); !ok {
		t.Errorf("expected nested assignment on the right, got %#v", asg.Value)
	}

	// the conditional else arm groups to the right
	e = parseExpr(t, "a ? b : c ? d : e")
	cond, ok := e.(cabs.Conditional)
	if !ok {
		t.Fatalf("expected conditional, got %#v", e)
	}
	if _, ok := cond.Else.(cabs.Conditional); !ok {
		t.Errorf("expected nested conditional in else arm, got %#v", cond.Else)
	}

	// a - -b: binary minus then unary minus
	e = parseExpr(t, "a - -b")
	sub, ok = e.(cabs.Binary)
	if !ok || sub.Op != cabs.OpSub {
		t.Fatalf("expected binary -, got %#v", e)
	}
	if neg, ok := sub.Right.(cabs.Unary); !ok || neg.Op != cabs.OpNeg {
		t.Errorf("expected unary - on the right, got %#v", sub.Right)
	}
}

// A parenthesized identifier is a cast only when the name is a declared
// type; otherwise it is a grouping parenthesis.
func TestCastDisambiguation(t *testing.T) {
	// foo is not a type here, so this is addition
	e := parseExpr(t, "(foo) + 1")
	add, ok := e.(cabs.Binary)
	if !ok || add.Op != cabs.OpAdd {
		t.Fatalf("expected binary +, got %#v", e)
	}
	if v, ok := add.Left.(cabs.Variable); !ok || v.Name != "foo" {
		t.Errorf("expected variable foo on the left, got %#v", add.Left)
	}

	// after a typedef the same tokens parse as a cast of +1
	p := New(lexer.New("typedef int foo; (foo) + 1"))
	if _, err := p.ParseStatement(); err != nil {
		t.Fatalf("typedef: unexpected error: %v", err)
	}
	e2, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("cast expression: unexpected error: %v", err)
	}
	cast, ok := e2.(cabs.Cast)
	if !ok {
		t.Fatalf("expected cast, got %#v", e2)
	}
	if !ctypes.Equal(cast.Type, ctypes.Tnamed{Name: "foo"}) {
		t.Errorf("expected cast to foo, got %v", cast.Type)
	}
	if plus, ok := cast.Expr.(cabs.Unary); !ok || plus.Op != cabs.OpPlus {
		t.Errorf("expected unary + operand, got %#v", cast.Expr)
	}
}

func TestTypeAmbiguityError(t *testing.T) {
	p := New(lexer.New("(foo) 5"))
	_, err := p.ParseExpression()
	if err == nil {
		t.Fatal("expected error, got none")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Kind != ErrTypeAmbiguity {
		t.Errorf("expected ErrTypeAmbiguity, got %v", perr.Kind)
	}
	if !strings.Contains(err.Error(), "not a declared type name") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestSizeofForms(t *testing.T) {
	e := parseExpr(t, "sizeof(int)")
	st, ok := e.(cabs.SizeofType)
	if !ok {
		t.Fatalf("expected SizeofType, got %#v", e)
	}
	if !ctypes.Equal(st.Type, ctypes.Int()) {
		t.Errorf("expected int, got %v", st.Type)
	}

	// an unknown name in parens is a parenthesized expression operand
	e = parseExpr(t, "sizeof(foo)")
	se, ok := e.(cabs.SizeofExpr)
	if !ok {
		t.Fatalf("expected SizeofExpr, got %#v", e)
	}
	if v, ok := se.Expr.(cabs.Variable); !ok || v.Name != "foo" {
		t.Errorf("expected variable foo, got %#v", se.Expr)
	}

	e = parseExpr(t, "sizeof(int *)")
	st, ok = e.(cabs.SizeofType)
	if !ok {
		t.Fatalf("expected SizeofType, got %#v", e)
	}
	if !ctypes.Equal(st.Type, ctypes.Pointer(ctypes.Int())) {
		t.Errorf("expected int *, got %v", st.Type)
	}
}

func TestIncDecPlacement(t *testing.T) {
	e := parseExpr(t, "x++")
	post, ok := e.(cabs.Unary)
	if !ok || post.Op != cabs.OpPostInc {
		t.Fatalf("expected postfix ++, got %#v", e)
	}

	e = parseExpr(t, "++x")
	pre, ok := e.(cabs.Unary)
	if !ok || pre.Op != cabs.OpPreInc {
		t.Fatalf("expected prefix ++, got %#v", e)
	}

	if got := cabs.RenderExpr(parseExpr(t, "x++ + ++y")); got != "x++ + ++y" {
		t.Errorf("expected %q, got %q", "x++ + ++y", got)
	}
}

func TestParseErrors(t *testing.T) {
	t.Run("missing initializer expression", func(t *testing.T) {
		p := New(lexer.New("int x = ;"))
		_, err := p.ParseStatement()
		if err == nil {
			t.Fatal("expected error, got none")
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected *ParseError, got %T", err)
		}
		if perr.Got.Type != lexer.TokenSemicolon {
			t.Errorf("expected error at ';', got %v", perr.Got.Type)
		}
		if !strings.Contains(err.Error(), "expected expression") {
			t.Errorf("unexpected message: %v", err)
		}
	})

	t.Run("premature end of input", func(t *testing.T) {
		p := New(lexer.New("1 +"))
		_, err := p.ParseExpression()
		if err == nil {
			t.Fatal("expected error, got none")
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected *ParseError, got %T", err)
		}
		if perr.Kind != ErrPrematureEOF {
			t.Errorf("expected ErrPrematureEOF, got %v", perr.Kind)
		}
		if !strings.Contains(err.Error(), "end of input") {
			t.Errorf("unexpected message: %v", err)
		}
	})

	t.Run("missing close paren", func(t *testing.T) {
		p := New(lexer.New("if (x return 1;"))
		_, err := p.ParseStatement()
		if err == nil {
			t.Fatal("expected error, got none")
		}
		if !strings.Contains(err.Error(), "expected ')'") {
			t.Errorf("unexpected message: %v", err)
		}
	})

	t.Run("error position is reported", func(t *testing.T) {
		p := New(lexer.New("x = 1;\ny = ;"))
		if _, err := p.ParseStatement(); err != nil {
			t.Fatalf("first statement: unexpected error: %v", err)
		}
		_, err := p.ParseStatement()
		if err == nil {
			t.Fatal("expected error, got none")
		}
		if !strings.HasPrefix(err.Error(), "line 2, col 5:") {
			t.Errorf("expected position prefix, got %v", err)
		}
	})
}

// A lexer error surfaces through the parser instead of a confusing
// unexpected-token message about an illegal token.
func TestLexErrorPropagation(t *testing.T) {
	p := New(lexer.New(`x = "unterminated`))
	_, err := p.ParseStatement()
	if err == nil {
		t.Fatal("expected error, got none")
	}
	var lerr *lexer.LexError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *lexer.LexError, got %T", err)
	}
	if !strings.Contains(err.Error(), "unterminated string literal") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestTypedefVisibility(t *testing.T) {
	// before the typedef, myint is just an identifier
	p := New(lexer.New("myint x;"))
	if _, err := p.ParseStatement(); err == nil {
		t.Error("expected error for undeclared type name, got none")
	}

	// after the typedef, myint declares and casts
	p = New(lexer.New("typedef int myint; myint x = (myint)2;"))
	if _, err := p.ParseStatement(); err != nil {
		t.Fatalf("typedef: unexpected error: %v", err)
	}
	stmt, err := p.ParseStatement()
	if err != nil {
		t.Fatalf("declaration: unexpected error: %v", err)
	}
	ds, ok := stmt.(cabs.DeclStmt)
	if !ok || len(ds.Decls) != 1 {
		t.Fatalf("expected declaration statement, got %#v", stmt)
	}
	if !ctypes.Equal(ds.Decls[0].Type, ctypes.Tnamed{Name: "myint"}) {
		t.Errorf("expected type myint, got %v", ds.Decls[0].Type)
	}
	if _, ok := ds.Decls[0].Initializer.(cabs.Cast); !ok {
		t.Errorf("expected cast initializer, got %#v", ds.Decls[0].Initializer)
	}
	if !p.Types().IsType("myint") {
		t.Error("registry should know myint")
	}
}

func TestStatementRendering(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"return;", "return;\n"},
		{"x += 2;", "x += 2;\n"},
		{";", ";\n"},
		{"goto end;", "goto end;\n"},
		{"int a = 1, b = 2;", "int a = 1;\nint b = 2;\n"},
		{"const int c = 5;", "const int c = 5;\n"},
		{"unsigned u;", "unsigned int u;\n"},
		{"struct Point p;", "struct Point p;\n"},
		{"int (*p)[10];", "int (*p)[10];\n"},
		{"char *names[4];", "char *names[4];\n"},
		{"int m[2][3];", "int m[2][3];\n"},
		{"for (i = 0; i < 10; i++) x += i;", "for (i = 0; i < 10; i++)\n  x += i;\n"},
		{"for (;;) break;", "for (;;)\n  break;\n"},
		{"while (x) { x--; }", "while (x)\n{\n  x--;\n}\n"},
		{"{ x = 1; }", "{\n  x = 1;\n}\n"},
		{"do x--; while (x);", "do\n  x--;\nwhile (x);\n"},
		{
			"struct Node { int value; struct Node *next; };",
			"struct Node {\n  int value;\n  struct Node *next;\n};\n",
		},
		{
			"struct Point { int x; int y; } p;",
			"struct Point {\n  int x;\n  int y;\n} p;\n",
		},
	}

	for _, tt := range tests {
		p := New(lexer.New(tt.input))
		stmt, err := p.ParseStatement()
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if got := cabs.RenderStmt(stmt); got != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

// Rendering is stable: printing a parsed program and reparsing the
// output yields the same text again.
func TestRoundTripStable(t *testing.T) {
	sources := []string{
		"int main() { return (1 + 2) * 3; }",
		"int x = 0x2a;",
		"double d = 2.5e-8;",
		"int f(void) { int a = 1, b = a + 2; return b; }",
		"typedef struct { int x; int y; } Point;",
		"int g(int n) { if (n) if (n > 1) return 1; else return 2; return 0; }",
		"void h(void) { for (int i = 0; i < 3; i++) work(i); }",
		"long big = 1e9;",
		"int (*grid)[10];",
	}

	for _, src := range sources {
		p := New(lexer.New(src))
		prog, err := p.ParseProgram()
		if err != nil {
			t.Errorf("%q: unexpected error: %v", src, err)
			continue
		}
		first := renderProgram(t, prog)

		p2 := New(lexer.New(first))
		prog2, err := p2.ParseProgram()
		if err != nil {
			t.Errorf("%q: reparse error: %v\nrendered:\n%s", src, err, first)
			continue
		}
		second := renderProgram(t, prog2)
		if first != second {
			t.Errorf("%q: unstable render\nfirst:\n%s\nsecond:\n%s", src, first, second)
		}
	}
}

func TestBatchErrorRecovery(t *testing.T) {
	p := New(lexer.New("int x = ;\nint y = 1;\nint z = ;\n"))
	var errs []error
	var defs []cabs.Definition
	for !p.AtEOF() {
		def, err := p.ParseDefinition()
		if err != nil {
			errs = append(errs, err)
			p.SkipToStatementBoundary()
			continue
		}
		defs = append(defs, def)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if len(defs) != 1 {
		t.Fatalf("expected 1 good definition, got %d", len(defs))
	}
	vd, ok := defs[0].(cabs.VarDef)
	if !ok || vd.Name != "y" {
		t.Errorf("expected definition of y, got %#v", defs[0])
	}
}

// Package cabs provides AST rendering back to C source text
package cabs

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ctran-lang/ctran/pkg/ctypes"
)

// Operator precedence levels, loosest to tightest. An operand is wrapped
// in parentheses exactly when its own level binds more weakly than the
// context its parent requires.
const (
	precNone = iota // statement or argument position, accepts anything
	precAssign
	precCond
	precLogOr
	precLogAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precPrimary
)

var binaryPrec = map[BinaryOp]int{
	OpOr:     precLogOr,
	OpAnd:    precLogAnd,
	OpBitOr:  precBitOr,
	OpBitXor: precBitXor,
	OpBitAnd: precBitAnd,
	OpEq:     precEquality,
	OpNe:     precEquality,
	OpLt:     precRelational,
	OpLe:     precRelational,
	OpGt:     precRelational,
	OpGe:     precRelational,
	OpShl:    precShift,
	OpShr:    precShift,
	OpAdd:    precAdditive,
	OpSub:    precAdditive,
	OpMul:    precMultiplicative,
	OpDiv:    precMultiplicative,
	OpMod:    precMultiplicative,
}

func exprPrec(e Expr) int {
	switch ex := e.(type) {
	case Assign:
		return precAssign
	case Conditional:
		return precCond
	case Binary:
		return binaryPrec[ex.Op]
	case Unary:
		if ex.Op.IsPostfix() {
			return precPostfix
		}
		return precUnary
	case Cast, SizeofExpr:
		return precUnary
	case Call, Index, Member:
		return precPostfix
	default:
		return precPrimary
	}
}

// Printer outputs an AST as C source text
type Printer struct {
	w      io.Writer
	indent int
}

// NewPrinter creates a new AST printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, indent: 0}
}

// PrintProgram prints a complete translation unit
func (p *Printer) PrintProgram(prog *Program) {
	for _, def := range prog.Definitions {
		p.printDefinition(def)
		fmt.Fprintln(p.w)
	}
}

// RenderExpr renders a single expression with minimal parenthesization.
func RenderExpr(e Expr) string {
	var sb strings.Builder
	p := NewPrinter(&sb)
	p.printExpr(e, precNone)
	return sb.String()
}

// RenderStmt renders a single statement, including a trailing newline.
func RenderStmt(s Stmt) string {
	var sb strings.Builder
	p := NewPrinter(&sb)
	p.printStmt(s)
	return sb.String()
}

func (p *Printer) writeIndent() {
	fmt.Fprint(p.w, strings.Repeat("  ", p.indent))
}

func (p *Printer) printDefinition(def Definition) {
	switch d := def.(type) {
	case FunDef:
		p.printFunDef(d)
	case TypedefDef:
		p.printTypedefDef(d)
	case StructDef:
		p.printStructDef(d)
	case UnionDef:
		p.printUnionDef(d)
	case EnumDef:
		p.printEnumDef(d)
	case VarDef:
		p.printVarDef(d)
	default:
		fmt.Fprintf(p.w, "/* unknown definition %T */\n", def)
	}
}

func (p *Printer) printFunDef(f FunDef) {
	fmt.Fprintf(p.w, "%s(", FormatDecl(f.Return, f.Name))
	for i, param := range f.Params {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprint(p.w, FormatDecl(param.Type, param.Name))
	}
	if f.Variadic {
		if len(f.Params) > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprint(p.w, "...")
	}
	if f.Body == nil {
		// Function declaration (prototype)
		fmt.Fprintln(p.w, ");")
	} else {
		fmt.Fprintln(p.w, ")")
		p.printBlock(f.Body)
	}
}

func (p *Printer) printTypedefDef(t TypedefDef) {
	if t.InlineType != nil {
		switch inline := t.InlineType.(type) {
		case StructDef:
			p.printAggregateHeader("struct", inline.Name)
			p.printFields(inline.Fields)
			fmt.Fprintf(p.w, "} %s;\n", t.Name)
			return
		case UnionDef:
			p.printAggregateHeader("union", inline.Name)
			p.printFields(inline.Fields)
			fmt.Fprintf(p.w, "} %s;\n", t.Name)
			return
		case EnumDef:
			p.printAggregateHeader("enum", inline.Name)
			p.printEnumValues(inline.Values)
			fmt.Fprintf(p.w, "} %s;\n", t.Name)
			return
		}
	}
	fmt.Fprintf(p.w, "typedef %s;\n", FormatDecl(t.Type, t.Name))
}

func (p *Printer) printAggregateHeader(keyword, tag string) {
	fmt.Fprint(p.w, "typedef "+keyword)
	if tag != "" {
		fmt.Fprint(p.w, " "+tag)
	}
	fmt.Fprintln(p.w, " {")
}

func (p *Printer) printFields(fields []Field) {
	p.indent++
	for _, field := range fields {
		p.writeIndent()
		fmt.Fprintf(p.w, "%s;\n", FormatDecl(field.Type, field.Name))
	}
	p.indent--
}

func (p *Printer) printEnumValues(values []EnumValue) {
	p.indent++
	for i, val := range values {
		p.writeIndent()
		fmt.Fprint(p.w, val.Name)
		if val.Value != nil {
			fmt.Fprint(p.w, " = ")
			p.printExpr(val.Value, precCond)
		}
		if i < len(values)-1 {
			fmt.Fprint(p.w, ",")
		}
		fmt.Fprintln(p.w)
	}
	p.indent--
}

func (p *Printer) printStructDef(s StructDef) {
	if s.Name != "" {
		fmt.Fprintf(p.w, "struct %s {\n", s.Name)
	} else {
		fmt.Fprintln(p.w, "struct {")
	}
	p.printFields(s.Fields)
	p.writeIndent()
	fmt.Fprintln(p.w, "};")
}

func (p *Printer) printUnionDef(u UnionDef) {
	if u.Name != "" {
		fmt.Fprintf(p.w, "union %s {\n", u.Name)
	} else {
		fmt.Fprintln(p.w, "union {")
	}
	p.printFields(u.Fields)
	p.writeIndent()
	fmt.Fprintln(p.w, "};")
}

func (p *Printer) printEnumDef(e EnumDef) {
	if e.Name != "" {
		fmt.Fprintf(p.w, "enum %s {\n", e.Name)
	} else {
		fmt.Fprintln(p.w, "enum {")
	}
	p.printEnumValues(e.Values)
	p.writeIndent()
	fmt.Fprintln(p.w, "};")
}

func (p *Printer) printVarDef(v VarDef) {
	if v.StorageClass != "" {
		fmt.Fprintf(p.w, "%s ", v.StorageClass)
	}
	fmt.Fprint(p.w, FormatDecl(v.Type, v.Name))
	if v.Initializer != nil {
		fmt.Fprint(p.w, " = ")
		p.printExpr(v.Initializer, precAssign)
	}
	fmt.Fprintln(p.w, ";")
}

func (p *Printer) printBlock(b *Block) {
	p.writeIndent()
	fmt.Fprintln(p.w, "{")
	p.indent++
	for _, stmt := range b.Items {
		p.printStmt(stmt)
	}
	p.indent--
	p.writeIndent()
	fmt.Fprintln(p.w, "}")
}

// printBody prints the body of a control statement: a block keeps its
// braces at the statement's level, anything else indents one step.
func (p *Printer) printBody(stmt Stmt) {
	switch s := stmt.(type) {
	case Block:
		p.printBlock(&s)
	case *Block:
		p.printBlock(s)
	default:
		p.indent++
		p.printStmt(stmt)
		p.indent--
	}
}

func (p *Printer) printStmt(stmt Stmt) {
	// A block appearing as a statement in its own right prints at the
	// current level; blocks serving as control-statement bodies go
	// through printBody.
	switch s := stmt.(type) {
	case Block:
		p.printBlock(&s)
		return
	case *Block:
		p.printBlock(s)
		return
	}

	p.writeIndent()
	switch s := stmt.(type) {
	case Return:
		fmt.Fprint(p.w, "return")
		if s.Expr != nil {
			fmt.Fprint(p.w, " ")
			p.printExpr(s.Expr, precNone)
		}
		fmt.Fprintln(p.w, ";")
	case Computation:
		p.printExpr(s.Expr, precNone)
		fmt.Fprintln(p.w, ";")
	case If:
		fmt.Fprint(p.w, "if (")
		p.printExpr(s.Cond, precNone)
		fmt.Fprintln(p.w, ")")
		p.printBody(p.guardedThen(s))
		if s.Else != nil {
			p.writeIndent()
			fmt.Fprintln(p.w, "else")
			p.printBody(s.Else)
		}
	case While:
		fmt.Fprint(p.w, "while (")
		p.printExpr(s.Cond, precNone)
		fmt.Fprintln(p.w, ")")
		p.printBody(s.Body)
	case DoWhile:
		fmt.Fprintln(p.w, "do")
		p.printBody(s.Body)
		p.writeIndent()
		fmt.Fprint(p.w, "while (")
		p.printExpr(s.Cond, precNone)
		fmt.Fprintln(p.w, ");")
	case For:
		fmt.Fprint(p.w, "for (")
		if len(s.InitDecl) > 0 {
			p.printDeclList(s.InitDecl)
		} else if s.Init != nil {
			p.printExpr(s.Init, precNone)
		}
		fmt.Fprint(p.w, ";")
		if s.Cond != nil {
			fmt.Fprint(p.w, " ")
			p.printExpr(s.Cond, precNone)
		}
		fmt.Fprint(p.w, ";")
		if s.Step != nil {
			fmt.Fprint(p.w, " ")
			p.printExpr(s.Step, precNone)
		}
		fmt.Fprintln(p.w, ")")
		p.printBody(s.Body)
	case Break:
		fmt.Fprintln(p.w, "break;")
	case Continue:
		fmt.Fprintln(p.w, "continue;")
	case Switch:
		fmt.Fprint(p.w, "switch (")
		p.printExpr(s.Expr, precNone)
		fmt.Fprintln(p.w, ") {")
		for _, c := range s.Cases {
			p.writeIndent()
			if c.Expr == nil {
				fmt.Fprintln(p.w, "default:")
			} else {
				fmt.Fprint(p.w, "case ")
				p.printExpr(c.Expr, precCond)
				fmt.Fprintln(p.w, ":")
			}
			p.indent++
			for _, cs := range c.Stmts {
				p.printStmt(cs)
			}
			p.indent--
		}
		p.writeIndent()
		fmt.Fprintln(p.w, "}")
	case Goto:
		fmt.Fprintf(p.w, "goto %s;\n", s.Label)
	case Label:
		fmt.Fprintf(p.w, "%s:\n", s.Name)
		p.printStmt(s.Stmt)
	case Empty:
		fmt.Fprintln(p.w, ";")
	case DeclStmt:
		if s.Aggregate != nil {
			p.printAggregateDecl(s)
			break
		}
		for i, decl := range s.Decls {
			if i > 0 {
				p.writeIndent()
			}
			fmt.Fprint(p.w, FormatDecl(decl.Type, decl.Name))
			if decl.Initializer != nil {
				fmt.Fprint(p.w, " = ")
				p.printExpr(decl.Initializer, precAssign)
			}
			fmt.Fprintln(p.w, ";")
		}
	case StructDef:
		p.printStructDef(s)
	case UnionDef:
		p.printUnionDef(s)
	case EnumDef:
		p.printEnumDef(s)
	case TypedefDef:
		p.printTypedefDef(s)
	default:
		fmt.Fprintf(p.w, "/* unknown stmt %T */;\n", stmt)
	}
}

// printAggregateDecl prints a declaration whose base type is an aggregate
// defined in place: struct X { ... } p;
func (p *Printer) printAggregateDecl(s DeclStmt) {
	switch a := s.Aggregate.(type) {
	case StructDef:
		if a.Name != "" {
			fmt.Fprintf(p.w, "struct %s {\n", a.Name)
		} else {
			fmt.Fprintln(p.w, "struct {")
		}
		p.printFields(a.Fields)
	case UnionDef:
		if a.Name != "" {
			fmt.Fprintf(p.w, "union %s {\n", a.Name)
		} else {
			fmt.Fprintln(p.w, "union {")
		}
		p.printFields(a.Fields)
	case EnumDef:
		if a.Name != "" {
			fmt.Fprintf(p.w, "enum %s {\n", a.Name)
		} else {
			fmt.Fprintln(p.w, "enum {")
		}
		p.printEnumValues(a.Values)
	}
	p.writeIndent()
	fmt.Fprint(p.w, "}")
	for i, decl := range s.Decls {
		if i > 0 {
			fmt.Fprint(p.w, ",")
		}
		_, d := declarator(decl.Type, decl.Name)
		fmt.Fprint(p.w, " "+d)
		if decl.Initializer != nil {
			fmt.Fprint(p.w, " = ")
			p.printExpr(decl.Initializer, precAssign)
		}
	}
	fmt.Fprintln(p.w, ";")
}

// guardedThen braces a then-branch that ends in an else-less if, so the
// printed else cannot reattach to the inner if on reparse.
func (p *Printer) guardedThen(s If) Stmt {
	if s.Else == nil {
		return s.Then
	}
	if inner, ok := s.Then.(If); ok && inner.Else == nil {
		return Block{Items: []Stmt{s.Then}}
	}
	return s.Then
}

// printDeclList prints declarations for a C99 for-loop init: the first
// declarator carries the base type, the rest share it.
func (p *Printer) printDeclList(decls []Decl) {
	for i, decl := range decls {
		if i == 0 {
			fmt.Fprint(p.w, FormatDecl(decl.Type, decl.Name))
		} else {
			_, d := declarator(decl.Type, decl.Name)
			fmt.Fprint(p.w, ", "+d)
		}
		if decl.Initializer != nil {
			fmt.Fprint(p.w, " = ")
			p.printExpr(decl.Initializer, precAssign)
		}
	}
}

func (p *Printer) printExpr(expr Expr, ctx int) {
	if exprPrec(expr) < ctx {
		fmt.Fprint(p.w, "(")
		p.printExpr(expr, precNone)
		fmt.Fprint(p.w, ")")
		return
	}

	switch e := expr.(type) {
	case Constant:
		fmt.Fprintf(p.w, "%d", e.Value)
	case FloatLiteral:
		fmt.Fprint(p.w, formatFloat(e.Value))
	case StringLiteral:
		fmt.Fprintf(p.w, "\"%s\"", escapeString(e.Value, '"'))
	case CharLiteral:
		fmt.Fprintf(p.w, "'%s'", escapeString(string(e.Value), '\''))
	case Variable:
		fmt.Fprint(p.w, e.Name)
	case Unary:
		p.printUnary(e)
	case Binary:
		prec := binaryPrec[e.Op]
		p.printExpr(e.Left, prec)
		fmt.Fprintf(p.w, " %s ", e.Op.String())
		p.printExpr(e.Right, prec+1)
	case Assign:
		p.printExpr(e.Target, precUnary)
		fmt.Fprintf(p.w, " %s ", e.Op.String())
		p.printExpr(e.Value, precAssign)
	case Conditional:
		p.printExpr(e.Cond, precLogOr)
		fmt.Fprint(p.w, " ? ")
		p.printExpr(e.Then, precNone)
		fmt.Fprint(p.w, " : ")
		p.printExpr(e.Else, precCond)
	case Cast:
		fmt.Fprintf(p.w, "(%s)", FormatDecl(e.Type, ""))
		p.printExpr(e.Expr, precUnary)
	case SizeofType:
		fmt.Fprintf(p.w, "sizeof(%s)", FormatDecl(e.Type, ""))
	case SizeofExpr:
		fmt.Fprint(p.w, "sizeof ")
		p.printExpr(e.Expr, precUnary)
	case Call:
		p.printExpr(e.Func, precPostfix)
		fmt.Fprint(p.w, "(")
		for i, arg := range e.Args {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			p.printExpr(arg, precAssign)
		}
		fmt.Fprint(p.w, ")")
	case Index:
		p.printExpr(e.Array, precPostfix)
		fmt.Fprint(p.w, "[")
		p.printExpr(e.Index, precNone)
		fmt.Fprint(p.w, "]")
	case Member:
		p.printExpr(e.Expr, precPostfix)
		if e.IsArrow {
			fmt.Fprint(p.w, "->")
		} else {
			fmt.Fprint(p.w, ".")
		}
		fmt.Fprint(p.w, e.Name)
	default:
		fmt.Fprintf(p.w, "/* unknown expr %T */", expr)
	}
}

func (p *Printer) printUnary(u Unary) {
	if u.Op.IsPostfix() {
		p.printExpr(u.Expr, precPostfix)
		fmt.Fprint(p.w, u.Op.String())
		return
	}
	fmt.Fprint(p.w, u.Op.String())
	if pastes(u.Op, u.Expr) {
		// -(-x) must not print as --x
		fmt.Fprint(p.w, " ")
	}
	p.printExpr(u.Expr, precUnary)
}

// pastes reports whether printing op directly against its operand would
// merge into a different token.
func pastes(op UnaryOp, operand Expr) bool {
	inner, ok := operand.(Unary)
	if !ok {
		return false
	}
	switch op {
	case OpNeg:
		return inner.Op == OpNeg || inner.Op == OpPreDec
	case OpPlus:
		return inner.Op == OpPlus || inner.Op == OpPreInc
	case OpAddrOf:
		return inner.Op == OpAddrOf
	}
	return false
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func escapeString(s string, quote byte) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '\n':
			sb.WriteString("\\n")
		case '\t':
			sb.WriteString("\\t")
		case '\r':
			sb.WriteString("\\r")
		case 7:
			sb.WriteString("\\a")
		case '\b':
			sb.WriteString("\\b")
		case '\f':
			sb.WriteString("\\f")
		case '\v':
			sb.WriteString("\\v")
		case 0:
			sb.WriteString("\\0")
		case '\\':
			sb.WriteString("\\\\")
		case quote:
			sb.WriteByte('\\')
			sb.WriteByte(quote)
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

// FormatDecl renders a declarator: the C spelling of typ applied to name.
// An empty name yields the abstract declarator used in casts and sizeof.
// Composition order follows C: a pointer to an array of 10 ints named p
// comes out as "int (*p)[10]".
func FormatDecl(typ ctypes.Type, name string) string {
	base, decl := declarator(typ, name)
	if decl == "" {
		return base
	}
	return base + " " + decl
}

func declarator(typ ctypes.Type, inner string) (base, decl string) {
	switch t := typ.(type) {
	case ctypes.Tpointer:
		inner = "*" + inner
		switch t.Elem.(type) {
		case ctypes.Tarray, ctypes.Tfunction:
			inner = "(" + inner + ")"
		}
		return declarator(t.Elem, inner)
	case ctypes.Tarray:
		if t.Size < 0 {
			inner += "[]"
		} else {
			inner += fmt.Sprintf("[%d]", t.Size)
		}
		return declarator(t.Elem, inner)
	case ctypes.Tfunction:
		params := make([]string, 0, len(t.Params))
		for _, param := range t.Params {
			params = append(params, FormatDecl(param, ""))
		}
		if t.VarArg {
			params = append(params, "...")
		}
		inner += "(" + strings.Join(params, ", ") + ")"
		return declarator(t.Return, inner)
	case ctypes.Tqualified:
		quals := ""
		if t.Const {
			quals += "const "
		}
		if t.Volatile {
			quals += "volatile "
		}
		base, decl = declarator(t.Elem, inner)
		return quals + base, decl
	default:
		return typ.String(), inner
	}
}

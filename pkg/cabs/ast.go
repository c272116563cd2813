// Package cabs defines the abstract syntax tree for C
package cabs

import "github.com/ctran-lang/ctran/pkg/ctypes"

// Node is the base interface for all AST nodes
type Node interface {
	implCabsNode()
}

// Expr is the interface for all expression nodes
type Expr interface {
	Node
	implCabsExpr()
}

// Stmt is the interface for all statement nodes
type Stmt interface {
	Node
	implCabsStmt()
}

// Definition is the interface for top-level definitions
type Definition interface {
	Node
	implDefinition()
}

// BinaryOp represents binary operators
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd // &&
	OpOr  // ||
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl // <<
	OpShr // >>
)

func (op BinaryOp) String() string {
	names := []string{"+", "-", "*", "/", "%", "<", "<=", ">", ">=", "==", "!=", "&&", "||", "&", "|", "^", "<<", ">>"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// UnaryOp represents unary operators, prefix and postfix
type UnaryOp int

const (
	OpNeg     UnaryOp = iota // -
	OpPlus                   // +
	OpNot                    // !
	OpBitNot                 // ~
	OpDeref                  // *
	OpAddrOf                 // &
	OpPreInc                 // ++x
	OpPreDec                 // --x
	OpPostInc                // x++
	OpPostDec                // x--
)

func (op UnaryOp) String() string {
	names := []string{"-", "+", "!", "~", "*", "&", "++", "--", "++", "--"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// IsPostfix reports whether op attaches after its operand.
func (op UnaryOp) IsPostfix() bool {
	return op == OpPostInc || op == OpPostDec
}

// AssignOp represents assignment operators, simple and compound
type AssignOp int

const (
	AssignSimple AssignOp = iota // =
	AssignAdd                    // +=
	AssignSub                    // -=
	AssignMul                    // *=
	AssignDiv                    // /=
	AssignMod                    // %=
	AssignAnd                    // &=
	AssignOr                     // |=
	AssignXor                    // ^=
	AssignShl                    // <<=
	AssignShr                    // >>=
)

func (op AssignOp) String() string {
	names := []string{"=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>="}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// Constant represents an integer constant
type Constant struct {
	Value int64
}

// FloatLiteral represents a floating-point constant
type FloatLiteral struct {
	Value float64
}

// CharLiteral represents a character constant (decoded value)
type CharLiteral struct {
	Value byte
}

// StringLiteral represents a string constant (decoded value)
type StringLiteral struct {
	Value string
}

// Variable represents an identifier expression
type Variable struct {
	Name string
}

// Unary represents a unary expression; the op decides prefix vs postfix
type Unary struct {
	Op   UnaryOp
	Expr Expr
}

// Binary represents a binary expression
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Assign represents an assignment: target op= value
type Assign struct {
	Op     AssignOp
	Target Expr
	Value  Expr
}

// Conditional represents the ternary operator: cond ? then : else
type Conditional struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Cast represents a cast expression: (type)expr
type Cast struct {
	Type ctypes.Type
	Expr Expr
}

// SizeofType represents sizeof applied to a parenthesized type
type SizeofType struct {
	Type ctypes.Type
}

// SizeofExpr represents sizeof applied to an expression
type SizeofExpr struct {
	Expr Expr
}

// Call represents a function call
type Call struct {
	Func Expr
	Args []Expr
}

// Index represents array subscript access: arr[idx]
type Index struct {
	Array Expr
	Index Expr
}

// Member represents member access, direct (p.x) or through a pointer (p->x)
type Member struct {
	Expr    Expr
	Name    string
	IsArrow bool
}

// Computation represents an expression statement
type Computation struct {
	Expr Expr
}

// Decl represents one declarator in a declaration
type Decl struct {
	Type        ctypes.Type
	Name        string
	Initializer Expr // nil when absent
}

// DeclStmt represents a declaration statement, possibly with several
// comma-separated declarators. Aggregate holds a struct/union/enum
// defined inline as the base type (struct X {...} p;).
type DeclStmt struct {
	Aggregate Definition
	Decls     []Decl
}

// Empty represents a lone semicolon
type Empty struct{}

// Block represents a compound statement
type Block struct {
	Items []Stmt
}

// If represents an if/else statement
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil when absent
}

// While represents a while loop
type While struct {
	Cond Expr
	Body Stmt
}

// DoWhile represents a do-while loop
type DoWhile struct {
	Body Stmt
	Cond Expr
}

// For represents a for loop; Init and InitDecl are mutually exclusive
type For struct {
	Init     Expr   // nil when absent
	InitDecl []Decl // C99 declaration in the init slot
	Cond     Expr   // nil when absent
	Step     Expr   // nil when absent
	Body     Stmt
}

// Switch represents a switch statement
type Switch struct {
	Expr  Expr
	Cases []SwitchCase
}

// SwitchCase is one case (or default, when Expr is nil) arm of a switch
type SwitchCase struct {
	Expr  Expr
	Stmts []Stmt
}

// Break represents a break statement
type Break struct{}

// Continue represents a continue statement
type Continue struct{}

// Goto represents a goto statement
type Goto struct {
	Label string
}

// Label represents a labeled statement
type Label struct {
	Name string
	Stmt Stmt
}

// Return represents a return statement
type Return struct {
	Expr Expr // nil for bare return
}

// Field represents a struct or union field
type Field struct {
	Type ctypes.Type
	Name string
}

// StructDef represents a struct definition; usable at statement level or
// as a top-level definition
type StructDef struct {
	Name   string
	Fields []Field
}

// UnionDef represents a union definition
type UnionDef struct {
	Name   string
	Fields []Field
}

// EnumValue is one enumerator, with an optional constant expression
type EnumValue struct {
	Name  string
	Value Expr
}

// EnumDef represents an enum definition
type EnumDef struct {
	Name   string
	Values []EnumValue
}

// TypedefDef represents a typedef; InlineType carries an aggregate defined
// in place (typedef struct {...} Name)
type TypedefDef struct {
	Name       string
	Type       ctypes.Type
	InlineType Definition // StructDef, UnionDef, or EnumDef; nil otherwise
}

// Param represents a function parameter
type Param struct {
	Type ctypes.Type
	Name string
}

// FunDef represents a function definition or prototype (nil Body)
type FunDef struct {
	Return   ctypes.Type
	Name     string
	Params   []Param
	Variadic bool
	Body     *Block
}

// VarDef represents a top-level variable definition
type VarDef struct {
	StorageClass string // "", "static", "extern", ...
	Type         ctypes.Type
	Name         string
	Initializer  Expr
}

// Program is one parsed translation unit
type Program struct {
	Definitions []Definition
}

// Marker methods for interface implementation
func (Constant) implCabsNode() {}
func (Constant) implCabsExpr() {}

func (FloatLiteral) implCabsNode() {}
func (FloatLiteral) implCabsExpr() {}

func (CharLiteral) implCabsNode() {}
func (CharLiteral) implCabsExpr() {}

func (StringLiteral) implCabsNode() {}
func (StringLiteral) implCabsExpr() {}

func (Variable) implCabsNode() {}
func (Variable) implCabsExpr() {}

func (Unary) implCabsNode() {}
func (Unary) implCabsExpr() {}

func (Binary) implCabsNode() {}
func (Binary) implCabsExpr() {}

func (Assign) implCabsNode() {}
func (Assign) implCabsExpr() {}

func (Conditional) implCabsNode() {}
func (Conditional) implCabsExpr() {}

func (Cast) implCabsNode() {}
func (Cast) implCabsExpr() {}

func (SizeofType) implCabsNode() {}
func (SizeofType) implCabsExpr() {}

func (SizeofExpr) implCabsNode() {}
func (SizeofExpr) implCabsExpr() {}

func (Call) implCabsNode() {}
func (Call) implCabsExpr() {}

func (Index) implCabsNode() {}
func (Index) implCabsExpr() {}

func (Member) implCabsNode() {}
func (Member) implCabsExpr() {}

func (Computation) implCabsNode() {}
func (Computation) implCabsStmt() {}

func (DeclStmt) implCabsNode() {}
func (DeclStmt) implCabsStmt() {}

func (Empty) implCabsNode() {}
func (Empty) implCabsStmt() {}

func (Block) implCabsNode() {}
func (Block) implCabsStmt() {}

func (If) implCabsNode() {}
func (If) implCabsStmt() {}

func (While) implCabsNode() {}
func (While) implCabsStmt() {}

func (DoWhile) implCabsNode() {}
func (DoWhile) implCabsStmt() {}

func (For) implCabsNode() {}
func (For) implCabsStmt() {}

func (Switch) implCabsNode() {}
func (Switch) implCabsStmt() {}

func (Break) implCabsNode() {}
func (Break) implCabsStmt() {}

func (Continue) implCabsNode() {}
func (Continue) implCabsStmt() {}

func (Goto) implCabsNode() {}
func (Goto) implCabsStmt() {}

func (Label) implCabsNode() {}
func (Label) implCabsStmt() {}

func (Return) implCabsNode() {}
func (Return) implCabsStmt() {}

func (StructDef) implCabsNode()   {}
func (StructDef) implCabsStmt()   {}
func (StructDef) implDefinition() {}

func (UnionDef) implCabsNode()   {}
func (UnionDef) implCabsStmt()   {}
func (UnionDef) implDefinition() {}

func (EnumDef) implCabsNode()   {}
func (EnumDef) implCabsStmt()   {}
func (EnumDef) implDefinition() {}

func (TypedefDef) implCabsNode()   {}
func (TypedefDef) implCabsStmt()   {}
func (TypedefDef) implDefinition() {}

func (FunDef) implCabsNode()   {}
func (FunDef) implDefinition() {}

func (VarDef) implCabsNode()   {}
func (VarDef) implDefinition() {}

// Package ctypes defines the C type model used by the parser and renderer
package ctypes

// Type is the interface for all C types
type Type interface {
	implType()
	String() string
}

// Signedness represents signed/unsigned for integer types
type Signedness int

const (
	Signed Signedness = iota
	Unsigned
)

func (s Signedness) String() string {
	if s == Signed {
		return "signed"
	}
	return "unsigned"
}

// IntSize represents the size of integer types
type IntSize int

const (
	I8 IntSize = iota
	I16
	I32
)

// FloatSize represents the size of floating-point types
type FloatSize int

const (
	F32 FloatSize = iota
	F64
)

// Tvoid represents the void type
type Tvoid struct{}

// Tint represents integer types (char, short, int)
type Tint struct {
	Size IntSize
	Sign Signedness
}

// Tlong represents the long type (64-bit)
type Tlong struct {
	Sign Signedness
}

// Tfloat represents floating-point types (float, double)
type Tfloat struct {
	Size FloatSize
}

// Tpointer represents pointer types
type Tpointer struct {
	Elem Type
}

// Tarray represents array types
type Tarray struct {
	Elem Type
	Size int64 // -1 for incomplete array
}

// Tfunction represents function types
type Tfunction struct {
	Params []Type
	Return Type
	VarArg bool
}

// Tstruct refers to a struct type by tag
type Tstruct struct {
	Name string
}

// Tunion refers to a union type by tag
type Tunion struct {
	Name string
}

// Tenum refers to an enum type by tag
type Tenum struct {
	Name string
}

// Tnamed refers to a typedef name
type Tnamed struct {
	Name string
}

// Tqualified wraps a type with const/volatile qualifiers
type Tqualified struct {
	Const    bool
	Volatile bool
	Elem     Type
}

// Marker methods for Type interface
func (Tvoid) implType()      {}
func (Tint) implType()       {}
func (Tlong) implType()      {}
func (Tfloat) implType()     {}
func (Tpointer) implType()   {}
func (Tarray) implType()     {}
func (Tfunction) implType()  {}
func (Tstruct) implType()    {}
func (Tunion) implType()     {}
func (Tenum) implType()      {}
func (Tnamed) implType()     {}
func (Tqualified) implType() {}

// String methods render the C spelling of base types. Composite spellings
// that require declarator composition live in the cabs printer.
func (Tvoid) String() string { return "void" }

func (t Tint) String() string {
	sign := ""
	if t.Sign == Unsigned {
		sign = "unsigned "
	}
	switch t.Size {
	case I8:
		return sign + "char"
	case I16:
		return sign + "short"
	case I32:
		return sign + "int"
	}
	return sign + "int"
}

func (t Tlong) String() string {
	if t.Sign == Unsigned {
		return "unsigned long"
	}
	return "long"
}

func (t Tfloat) String() string {
	if t.Size == F32 {
		return "float"
	}
	return "double"
}

func (t Tpointer) String() string {
	if t.Elem == nil {
		return "void *"
	}
	return t.Elem.String() + " *"
}

func (t Tarray) String() string {
	if t.Size < 0 {
		return t.Elem.String() + "[]"
	}
	return t.Elem.String() + "[...]"
}

func (t Tfunction) String() string {
	return "function"
}

func (t Tstruct) String() string {
	return "struct " + t.Name
}

func (t Tunion) String() string {
	return "union " + t.Name
}

func (t Tenum) String() string {
	return "enum " + t.Name
}

func (t Tnamed) String() string {
	return t.Name
}

func (t Tqualified) String() string {
	s := ""
	if t.Const {
		s += "const "
	}
	if t.Volatile {
		s += "volatile "
	}
	return s + t.Elem.String()
}

// Common type constructors

// Int returns a signed 32-bit int type
func Int() Type {
	return Tint{Size: I32, Sign: Signed}
}

// UInt returns an unsigned 32-bit int type
func UInt() Type {
	return Tint{Size: I32, Sign: Unsigned}
}

// Char returns a signed char type
func Char() Type {
	return Tint{Size: I8, Sign: Signed}
}

// Short returns a signed short type
func Short() Type {
	return Tint{Size: I16, Sign: Signed}
}

// Long returns a signed long type
func Long() Type {
	return Tlong{Sign: Signed}
}

// Float returns a float (32-bit) type
func Float() Type {
	return Tfloat{Size: F32}
}

// Double returns a double (64-bit) type
func Double() Type {
	return Tfloat{Size: F64}
}

// Void returns the void type
func Void() Type {
	return Tvoid{}
}

// Pointer returns a pointer to the given type
func Pointer(elem Type) Type {
	return Tpointer{Elem: elem}
}

// Array returns an array type
func Array(elem Type, size int64) Type {
	return Tarray{Elem: elem, Size: size}
}

// Equal checks if two types are equal
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch ta := a.(type) {
	case Tvoid:
		_, ok := b.(Tvoid)
		return ok
	case Tint:
		tb, ok := b.(Tint)
		return ok && ta.Size == tb.Size && ta.Sign == tb.Sign
	case Tlong:
		tb, ok := b.(Tlong)
		return ok && ta.Sign == tb.Sign
	case Tfloat:
		tb, ok := b.(Tfloat)
		return ok && ta.Size == tb.Size
	case Tpointer:
		tb, ok := b.(Tpointer)
		return ok && Equal(ta.Elem, tb.Elem)
	case Tarray:
		tb, ok := b.(Tarray)
		return ok && ta.Size == tb.Size && Equal(ta.Elem, tb.Elem)
	case Tstruct:
		tb, ok := b.(Tstruct)
		return ok && ta.Name == tb.Name
	case Tunion:
		tb, ok := b.(Tunion)
		return ok && ta.Name == tb.Name
	case Tenum:
		tb, ok := b.(Tenum)
		return ok && ta.Name == tb.Name
	case Tnamed:
		tb, ok := b.(Tnamed)
		return ok && ta.Name == tb.Name
	case Tqualified:
		tb, ok := b.(Tqualified)
		return ok && ta.Const == tb.Const && ta.Volatile == tb.Volatile && Equal(ta.Elem, tb.Elem)
	case Tfunction:
		tb, ok := b.(Tfunction)
		if !ok || ta.VarArg != tb.VarArg || len(ta.Params) != len(tb.Params) {
			return false
		}
		if !Equal(ta.Return, tb.Return) {
			return false
		}
		for i, p := range ta.Params {
			if !Equal(p, tb.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

package ctypes

import "testing"

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		typ      Type
		expected string
	}{
		{Void(), "void"},
		{Int(), "int"},
		{UInt(), "unsigned int"},
		{Char(), "char"},
		{Short(), "short"},
		{Long(), "long"},
		{Tlong{Sign: Unsigned}, "unsigned long"},
		{Float(), "float"},
		{Double(), "double"},
		{Tstruct{Name: "Point"}, "struct Point"},
		{Tunion{Name: "Value"}, "union Value"},
		{Tenum{Name: "Color"}, "enum Color"},
		{Tnamed{Name: "size_t"}, "size_t"},
		{Tqualified{Const: true, Elem: Int()}, "const int"},
		{Tqualified{Const: true, Volatile: true, Elem: Char()}, "const volatile char"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b  Type
		equal bool
	}{
		{Int(), Int(), true},
		{Int(), UInt(), false},
		{Int(), Long(), false},
		{Char(), Tint{Size: I8, Sign: Signed}, true},
		{Pointer(Int()), Pointer(Int()), true},
		{Pointer(Int()), Pointer(Char()), false},
		{Array(Int(), 10), Array(Int(), 10), true},
		{Array(Int(), 10), Array(Int(), 5), false},
		{Array(Int(), -1), Array(Int(), -1), true},
		{Tstruct{Name: "A"}, Tstruct{Name: "A"}, true},
		{Tstruct{Name: "A"}, Tstruct{Name: "B"}, false},
		{Tstruct{Name: "A"}, Tunion{Name: "A"}, false},
		{Tnamed{Name: "t"}, Tnamed{Name: "t"}, true},
		{
			Tqualified{Const: true, Elem: Int()},
			Tqualified{Const: true, Elem: Int()},
			true,
		},
		{
			Tqualified{Const: true, Elem: Int()},
			Tqualified{Volatile: true, Elem: Int()},
			false,
		},
		{
			Tfunction{Params: []Type{Int()}, Return: Void()},
			Tfunction{Params: []Type{Int()}, Return: Void()},
			true,
		},
		{
			Tfunction{Params: []Type{Int()}, Return: Void()},
			Tfunction{Params: []Type{Int()}, Return: Void(), VarArg: true},
			false,
		},
		{nil, nil, true},
		{Int(), nil, false},
	}

	for i, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.equal {
			t.Errorf("tests[%d]: Equal(%v, %v) = %v, expected %v", i, tt.a, tt.b, got, tt.equal)
		}
	}
}

package ctypes

import (
	"sort"
	"testing"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"int", "char", "void", "unsigned", "double"} {
		if !r.IsType(name) {
			t.Errorf("builtin %q should be registered", name)
		}
		kind, ok := r.Kind(name)
		if !ok || kind != KindBuiltin {
			t.Errorf("builtin %q: expected KindBuiltin, got %v", name, kind)
		}
	}
	if r.IsType("size_t") {
		t.Error("size_t should not be registered in a fresh registry")
	}
}

func TestRegistryDefine(t *testing.T) {
	r := NewRegistry()

	r.DefineTypedef("size_t")
	if !r.IsType("size_t") {
		t.Error("size_t should be registered after DefineTypedef")
	}
	if kind, _ := r.Kind("size_t"); kind != KindTypedef {
		t.Errorf("expected KindTypedef, got %v", kind)
	}

	r.DefineTag(KindStructTag, "Point")
	if kind, _ := r.Kind("Point"); kind != KindStructTag {
		t.Errorf("expected KindStructTag, got %v", kind)
	}

	// anonymous tags are not registered
	r.DefineTag(KindUnionTag, "")
	if r.IsType("") {
		t.Error("empty tag should not be registered")
	}
}

// The registry is append-only: a later declaration never changes what an
// earlier name means.
func TestRegistryAppendOnly(t *testing.T) {
	r := NewRegistry()
	r.DefineTypedef("node")
	r.DefineTag(KindStructTag, "node")

	kind, ok := r.Kind("node")
	if !ok || kind != KindTypedef {
		t.Errorf("expected first registration to win, got %v", kind)
	}

	r.DefineTypedef("int")
	if kind, _ := r.Kind("int"); kind != KindBuiltin {
		t.Errorf("builtin should not be replaced, got %v", kind)
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	r.DefineTypedef("myint")
	names := r.Names()
	if !sort.StringsAreSorted(names) {
		t.Error("Names should be sorted")
	}
	found := false
	for _, n := range names {
		if n == "myint" {
			found = true
		}
	}
	if !found {
		t.Error("Names should include myint")
	}
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	r.DefineTypedef("a")

	snap := r.Snapshot()
	if !snap.IsType("a") {
		t.Error("snapshot should carry existing names")
	}

	r.DefineTypedef("b")
	if snap.IsType("b") {
		t.Error("snapshot should be independent of later definitions")
	}
	snap.DefineTypedef("c")
	if r.IsType("c") {
		t.Error("original should be independent of snapshot definitions")
	}
}

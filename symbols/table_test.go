package symbols_test

import (
	"testing"

	"github.com/gosuda/basicir/symbols"
)

func TestResolveTypeSuffix(t *testing.T) {
	tbl := symbols.New()
	cases := []struct {
		suffix byte
		want   symbols.DataType
	}{
		{'%', symbols.Int32},
		{'&', symbols.Int64},
		{'@', symbols.Int64},
		{'!', symbols.Float32},
		{'#', symbols.Float64},
		{'$', symbols.String},
	}
	for _, c := range cases {
		got, err := tbl.ResolveType("X", c.suffix)
		if err != nil {
			t.Fatalf("suffix %q: %v", c.suffix, err)
		}
		if got != c.want {
			t.Fatalf("suffix %q: got %v want %v", c.suffix, got, c.want)
		}
	}
}

func TestResolveTypeDefaultTable(t *testing.T) {
	tbl := symbols.New()
	dt, err := tbl.ResolveType("Xyz", 0)
	if err != nil || dt != symbols.Float64 {
		t.Fatalf("expected unset letter to default to Float64, got %v, %v", dt, err)
	}
	tbl.SetDefaultDataType('A', 'F', symbols.Int32)
	dt, _ = tbl.ResolveType("apple", 0)
	if dt != symbols.Int32 {
		t.Fatalf("DEFINT A-F: got %v want Int32", dt)
	}
	dt, _ = tbl.ResolveType("gamma", 0)
	if dt != symbols.Float64 {
		t.Fatalf("letter outside range should be unaffected, got %v", dt)
	}
}

func TestAddVariableOrUDFIdempotent(t *testing.T) {
	tbl := symbols.New()
	name := symbols.VariableName{Bare: "A", Type: symbols.Int32}
	factory := func(n symbols.VariableName) symbols.Entry { return &symbols.Variable{Name: n} }

	visits := 0
	visitor := func(id int, e symbols.Entry) error { visits++; return nil }

	id1, err := tbl.AddVariableOrUDF(name, factory, visitor)
	if err != nil {
		t.Fatal(err)
	}
	id2, err := tbl.AddVariableOrUDF(name, factory, visitor)
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("expected idempotent id, got %d and %d", id1, id2)
	}
	if visits != 2 {
		t.Fatalf("expected visitor called each time, got %d calls", visits)
	}

	// A%/A! are distinct VariableNames and must get distinct ids.
	otherName := symbols.VariableName{Bare: "A", Type: symbols.Float32}
	id3, err := tbl.AddVariableOrUDF(otherName, factory, nil)
	if err != nil {
		t.Fatal(err)
	}
	if id3 == id1 {
		t.Fatalf("A%% and A! must resolve to distinct entries")
	}
}

func TestTmpAndCompatibleWith(t *testing.T) {
	tbl := symbols.New()
	base := tbl.AddTmp(symbols.Float64, nil)
	compat := tbl.AddTmpCompatibleWith(base)
	if tbl.DataTypeOf(compat) != symbols.Float64 {
		t.Fatalf("expected compatible tmp to share type Float64")
	}
}

func TestLabelInterning(t *testing.T) {
	tbl := symbols.New()
	l1 := tbl.AddNamedLabel("LOOP")
	l2 := tbl.AddNamedLabel("LOOP")
	if l1 != l2 {
		t.Fatalf("named label must intern: got %d and %d", l1, l2)
	}
	n1 := tbl.AddLineLabel(100)
	n2 := tbl.AddLineLabel(100)
	if n1 != n2 {
		t.Fatalf("line label must intern: got %d and %d", n1, n2)
	}
	if l1 == n1 {
		t.Fatalf("named and numbered labels must not collide")
	}
	g1 := tbl.AddGotoTarget()
	g2 := tbl.AddGotoTarget()
	if g1 == g2 {
		t.Fatalf("synthetic goto targets must be distinct per call")
	}
}

func TestDeclarationScopeParamShadowing(t *testing.T) {
	tbl := symbols.New()
	global := symbols.VariableName{Bare: "N", Type: symbols.Int32}
	factory := func(n symbols.VariableName) symbols.Entry { return &symbols.Variable{Name: n} }
	globalID, err := tbl.AddVariableOrUDF(global, factory, nil)
	if err != nil {
		t.Fatal(err)
	}

	udfID := tbl.AddGotoTarget() // stand-in id, scope push doesn't care what it names
	tbl.PushDeclarationScope(udfID)
	paramID, err := tbl.AddParam(global)
	if err != nil {
		t.Fatal(err)
	}
	if paramID == globalID {
		t.Fatalf("parameter must shadow global with a distinct id")
	}
	insideID, err := tbl.AddVariableOrUDF(global, factory, nil)
	if err != nil {
		t.Fatal(err)
	}
	if insideID != paramID {
		t.Fatalf("reference inside scope must resolve to the parameter, got %d want %d", insideID, paramID)
	}
	tbl.PopScope()

	outsideID, err := tbl.AddVariableOrUDF(global, factory, nil)
	if err != nil {
		t.Fatal(err)
	}
	if outsideID != globalID {
		t.Fatalf("reference outside scope must resolve back to the global, got %d want %d", outsideID, globalID)
	}
}

func TestPopScopeWithoutPushPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic popping an empty scope stack")
		}
	}()
	symbols.New().PopScope()
}

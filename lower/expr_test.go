package lower_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gosuda/basicir/ast"
	"github.com/gosuda/basicir/ir"
	"github.com/gosuda/basicir/lower"
	"github.com/gosuda/basicir/parser"
	"github.com/gosuda/basicir/symbols"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return prog
}

func mustLower(t *testing.T, src string) (*symbols.Table, *ir.IR) {
	t.Helper()
	prog := mustParse(t, src)
	l := lower.New(false)
	if err := l.Lower(prog); err != nil {
		t.Fatalf("lower failed: %v", err)
	}
	return l.Symbols(), l.IR()
}

func lowerErr(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return lower.New(false).Lower(prog)
}

func opcodesOf(seq *ir.IR) []string {
	out := make([]string, seq.Len())
	for i, in := range seq.All() {
		out[i] = in.Op().String()
	}
	return out
}

func containsOp(seq *ir.IR, op ir.OpCode) bool {
	for _, in := range seq.All() {
		if in.Op() == op {
			return true
		}
	}
	return false
}

func TestIntegerAdditionAndPromotion(t *testing.T) {
	tbl, seq := mustLower(t, `10 LET A% = 1 + 2`)
	if !containsOp(seq, ir.ADDI32) {
		t.Fatalf("expected ADDI32 in %v", opcodesOf(seq))
	}
	if !containsOp(seq, ir.ASSIGN) {
		t.Fatalf("expected ASSIGN in %v", opcodesOf(seq))
	}
	if tbl.Len() == 0 {
		t.Fatalf("expected symbol table entries")
	}
}

func TestFloatPromotionWidensAddition(t *testing.T) {
	_, seq := mustLower(t, `10 LET A# = 1 + 2.5`)
	if !containsOp(seq, ir.ADDF64) {
		t.Fatalf("expected ADDF64 (Int32 joined with Float64) in %v", opcodesOf(seq))
	}
}

func TestStringConcatDoesNotUseArithmeticAdd(t *testing.T) {
	_, seq := mustLower(t, `10 LET A$ = "foo" + "bar"`)
	if !containsOp(seq, ir.CONCAT) {
		t.Fatalf("expected CONCAT in %v", opcodesOf(seq))
	}
	if containsOp(seq, ir.ADDI32) || containsOp(seq, ir.ADDF64) {
		t.Fatalf("string + must not lower to a numeric add: %v", opcodesOf(seq))
	}
}

func TestMixedStringNumericAdditionIsRejected(t *testing.T) {
	err := lowerErr(t, `10 LET A$ = "foo" + 1`)
	if err == nil {
		t.Fatalf("expected a semantic error mixing string and numeric operands")
	}
	serr, ok := err.(*lower.SemanticError)
	if !ok {
		t.Fatalf("expected *SemanticError, got %T: %v", err, err)
	}
	if serr.Code != lower.DataTypeMismatch {
		t.Fatalf("expected DataTypeMismatch, got %v", serr.Code)
	}
}

func TestComparisonPicksStringFamilyWhenEitherSideIsString(t *testing.T) {
	_, seq := mustLower(t, `10 IF "a" = "b" THEN PRINT 1`)
	if !containsOp(seq, ir.EQSTR) {
		t.Fatalf("expected EQSTR in %v", opcodesOf(seq))
	}
}

func TestDivisionAlwaysProducesFloat64(t *testing.T) {
	_, seq := mustLower(t, `10 LET A# = 1 / 2`)
	if !containsOp(seq, ir.FDIV) {
		t.Fatalf("expected FDIV in %v", opcodesOf(seq))
	}
}

func TestIndexingScalarVariableIsRejected(t *testing.T) {
	err := lowerErr(t, "10 LET A% = 1\n20 LET B% = A%(1)")
	if err == nil {
		t.Fatalf("expected an error indexing a scalar variable")
	}
	serr, ok := err.(*lower.SemanticError)
	if !ok {
		t.Fatalf("expected *SemanticError, got %T: %v", err, err)
	}
	if serr.Code != lower.ScalarVariableCannotBeIndexed {
		t.Fatalf("expected ScalarVariableCannotBeIndexed, got %v", serr.Code)
	}
}

func TestArrayReferenceLowersIndexOps(t *testing.T) {
	src := "10 DIM A%(10)\n20 LET A%(2) = 5\n30 LET B% = A%(2)"
	_, seq := mustLower(t, src)
	if !containsOp(seq, ir.RESET_ARRAY_IDX) || !containsOp(seq, ir.SET_ARRAY_IDX) || !containsOp(seq, ir.ARRAYREF) {
		t.Fatalf("expected array indexing opcodes in %v", opcodesOf(seq))
	}
}

func TestUDFCallLowersScopeAndReturnCopy(t *testing.T) {
	src := "10 DEF FN DBL(X) = X * 2\n20 LET A% = FNDBL(3)"
	_, seq := mustLower(t, src)
	ops := opcodesOf(seq)
	for _, want := range []ir.OpCode{ir.PUSH_RT_SCOPE, ir.COPY, ir.GOTO_LABEL, ir.POP_RT_SCOPE, ir.GOTO_CALLER} {
		if !containsOp(seq, want) {
			t.Fatalf("expected %v in %v", want, ops)
		}
	}
}

func TestUDFWrongArgCountIsRejected(t *testing.T) {
	err := lowerErr(t, "10 DEF FN DBL(X) = X * 2\n20 LET A% = FNDBL(1, 2)")
	if err == nil {
		t.Fatalf("expected InsufficientUDFArgs error")
	}
	serr, ok := err.(*lower.SemanticError)
	if !ok {
		t.Fatalf("expected *SemanticError, got %T: %v", err, err)
	}
	if serr.Code != lower.InsufficientUDFArgs {
		t.Fatalf("expected InsufficientUDFArgs, got %v", serr.Code)
	}
}

func TestUDFParameterShadowsGlobalOfSameBareName(t *testing.T) {
	src := "10 LET X% = 100\n20 DEF FN DBL(X) = X * 2\n30 LET A% = FNDBL(3)\n40 LET B% = X%"
	tbl, seq := mustLower(t, src)
	// X carries no sigil, so it defaults to Float64 and X * 2 upcasts to
	// MULF64, not MULI32 — the point of the test is the distinct-symbol
	// shadowing below, not the multiplication's numeric family.
	if !containsOp(seq, ir.MULF64) {
		t.Fatalf("expected MULF64 for the UDF body multiplication in %v", opcodesOf(seq))
	}
	// The global X% must still read back as 100, i.e. the UDF's parameter X
	// is a distinct symbol table entry from the global.
	if tbl.Len() < 2 {
		t.Fatalf("expected at least global X%% and param X as distinct entries")
	}
}

func TestUnaryMinusRejectsStringOperand(t *testing.T) {
	err := lowerErr(t, `10 LET A$ = -"x"`)
	if err == nil {
		t.Fatalf("expected an error negating a string")
	}
}

func TestUnaryMinusPreservesOperandType(t *testing.T) {
	_, seq := mustLower(t, `10 LET A# = -1.5`)
	if !containsOp(seq, ir.UNARY_MINUS) {
		t.Fatalf("expected UNARY_MINUS in %v", opcodesOf(seq))
	}
}

func TestLogicalOperatorsLowerToBitwiseFamily(t *testing.T) {
	_, seq := mustLower(t, `10 LET A% = 1 AND 2`)
	if !containsOp(seq, ir.AND) {
		t.Fatalf("expected AND in %v", opcodesOf(seq))
	}
}

func TestNumericLiteralParsingErrorSurfacesAsSemanticError(t *testing.T) {
	// An out-of-range integer literal should be rejected by numlit.Parse
	// and surfaced as a DataTypeMismatch, not a panic or an internal error.
	huge := strings.Repeat("9", 40)
	err := lowerErr(t, "10 LET A% = "+huge)
	if err == nil {
		t.Fatalf("expected an error for an unrepresentable literal")
	}
	var serr *lower.SemanticError
	if !errors.As(err, &serr) {
		t.Fatalf("expected a *lower.SemanticError, got %T: %v", err, err)
	}
	if serr.Code != lower.DataTypeMismatch {
		t.Fatalf("expected DataTypeMismatch, got %v", serr.Code)
	}
}

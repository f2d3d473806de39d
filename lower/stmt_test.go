package lower_test

import (
	"testing"

	"github.com/gosuda/basicir/ir"
	"github.com/gosuda/basicir/lower"
)

func TestPrintFlushesAfterEveryStatement(t *testing.T) {
	_, seq := mustLower(t, `10 PRINT "hi"`)
	if !containsOp(seq, ir.PRINT) || !containsOp(seq, ir.FLUSH) {
		t.Fatalf("expected PRINT and FLUSH in %v", opcodesOf(seq))
	}
}

func countOp(seq *ir.IR, op ir.OpCode) int {
	n := 0
	for _, in := range seq.All() {
		if in.Op() == op {
			n++
		}
	}
	return n
}

func TestPrintWithoutTrailingSeparatorAppendsNewline(t *testing.T) {
	_, seq := mustLower(t, `10 PRINT "hi"`)
	if got := countOp(seq, ir.PRINT); got != 2 {
		t.Fatalf("expected 2 PRINT instructions (arg + newline), got %d: %v", got, opcodesOf(seq))
	}
}

func TestPrintWithTrailingSeparatorSuppressesNewline(t *testing.T) {
	_, seq := mustLower(t, `10 PRINT "hi";`)
	if got := countOp(seq, ir.PRINT); got != 1 {
		t.Fatalf("expected 1 PRINT instruction (arg only, no newline), got %d: %v", got, opcodesOf(seq))
	}
}

func TestInputWithoutPromptDefaultsToQuestionMark(t *testing.T) {
	_, seq := mustLower(t, "10 LET A% = 0\n20 INPUT A%")
	if !containsOp(seq, ir.PARAM2) {
		t.Fatalf("expected a PARAM2 side-channel instruction carrying the default prompt in %v", opcodesOf(seq))
	}
}

func TestInputWithPromptLowersPromptLiteral(t *testing.T) {
	_, seq := mustLower(t, "10 LET A% = 0\n20 INPUT \"Name\"; A%")
	if !containsOp(seq, ir.PARAM2) {
		t.Fatalf("expected a PARAM2 side-channel instruction carrying the prompt in %v", opcodesOf(seq))
	}
}

func TestWriteHashUsesFileVariantWhenFileNumberGiven(t *testing.T) {
	_, seq := mustLower(t, `10 OPEN "f" FOR OUTPUT AS #1
20 WRITE #1, "hi"`)
	if !containsOp(seq, ir.WRITEHASH) {
		t.Fatalf("expected WRITEHASH in %v", opcodesOf(seq))
	}
	if containsOp(seq, ir.WRITE) {
		t.Fatalf("did not expect bare WRITE alongside WRITE #: %v", opcodesOf(seq))
	}
}

func TestInputLowersToInputOpcode(t *testing.T) {
	_, seq := mustLower(t, "10 LET A% = 0\n20 INPUT A%")
	if !containsOp(seq, ir.INPUT) {
		t.Fatalf("expected INPUT in %v", opcodesOf(seq))
	}
}

func TestLineInputUsesLineInputOpcode(t *testing.T) {
	_, seq := mustLower(t, "10 LET A$ = \"\"\n20 LINE INPUT A$")
	if !containsOp(seq, ir.LINEINPUT) {
		t.Fatalf("expected LINEINPUT in %v", opcodesOf(seq))
	}
}

func TestDataAndReadRoundtrip(t *testing.T) {
	_, seq := mustLower(t, "10 DATA 1, 2, 3\n20 LET A% = 0\n30 READ A%")
	if !containsOp(seq, ir.DATA) || !containsOp(seq, ir.READ) {
		t.Fatalf("expected DATA and READ in %v", opcodesOf(seq))
	}
}

func TestRestoreWithoutTargetUsesNullTarget(t *testing.T) {
	_, seq := mustLower(t, `10 RESTORE`)
	if !containsOp(seq, ir.RESTORE) {
		t.Fatalf("expected RESTORE in %v", opcodesOf(seq))
	}
}

func TestRestoreWithLineTargetResolvesLineLabel(t *testing.T) {
	_, seq := mustLower(t, "10 RESTORE 20\n20 DATA 1")
	if !containsOp(seq, ir.RESTORE) {
		t.Fatalf("expected RESTORE in %v", opcodesOf(seq))
	}
}

func TestRandomizeWithoutSeedUsesTimerVariant(t *testing.T) {
	_, seq := mustLower(t, `10 RANDOMIZE`)
	if !containsOp(seq, ir.RANDOMIZE_TIMER) {
		t.Fatalf("expected RANDOMIZE_TIMER in %v", opcodesOf(seq))
	}
}

func TestRandomizeWithSeedUsesSeededVariant(t *testing.T) {
	_, seq := mustLower(t, `10 RANDOMIZE 42`)
	if !containsOp(seq, ir.RANDOMIZE) {
		t.Fatalf("expected RANDOMIZE in %v", opcodesOf(seq))
	}
	if containsOp(seq, ir.RANDOMIZE_TIMER) {
		t.Fatalf("did not expect RANDOMIZE_TIMER when a seed is given: %v", opcodesOf(seq))
	}
}

func TestSwapRejectsMismatchedTypes(t *testing.T) {
	err := lowerErr(t, "10 LET A% = 1\n20 LET B$ = \"x\"\n30 SWAP A%, B$")
	if err == nil {
		t.Fatalf("expected an error swapping a numeric and a string variable")
	}
}

func TestOpenCloseFieldGetPutSequence(t *testing.T) {
	src := `10 OPEN "data.dat" FOR RANDOM AS #1
20 FIELD #1, 10 AS A$, 22 AS B$
30 PUT #1, 1
40 GET #1, 1
50 CLOSE #1`
	_, seq := mustLower(t, src)
	for _, want := range []ir.OpCode{ir.OPEN, ir.FIELD, ir.PUT, ir.GET, ir.CLOSE} {
		if !containsOp(seq, want) {
			t.Fatalf("expected %v in %v", want, opcodesOf(seq))
		}
	}
}

func TestCloseWithNoArgsClosesAll(t *testing.T) {
	_, seq := mustLower(t, `10 CLOSE`)
	if !containsOp(seq, ir.CLOSE_ALL) {
		t.Fatalf("expected CLOSE_ALL in %v", opcodesOf(seq))
	}
}

func TestLsetRsetLowerToDistinctOpcodes(t *testing.T) {
	src := "10 LET A$ = \"\"\n20 LSET A$ = \"x\"\n30 RSET A$ = \"y\""
	_, seq := mustLower(t, src)
	if !containsOp(seq, ir.LSET) || !containsOp(seq, ir.RSET) {
		t.Fatalf("expected LSET and RSET in %v", opcodesOf(seq))
	}
}

func TestCallStatementDispatchesGraphicsWhenEnabled(t *testing.T) {
	prog := mustParse(t, `10 CALL CLS`)
	l := lower.New(true)
	if err := l.Lower(prog); err != nil {
		t.Fatalf("lower failed with graphics enabled: %v", err)
	}
	if !containsOp(l.IR(), ir.CLS) {
		t.Fatalf("expected CLS in %v", opcodesOf(l.IR()))
	}
}

func TestCallStatementRejectsGraphicsWhenDisabled(t *testing.T) {
	err := lowerErr(t, `10 CALL CLS`)
	if err == nil {
		t.Fatalf("expected graphics statement to be rejected without -graphics")
	}
	serr, ok := err.(*lower.SemanticError)
	if !ok {
		t.Fatalf("expected *SemanticError, got %T: %v", err, err)
	}
	if serr.Code != lower.BadArgument {
		t.Fatalf("expected BadArgument, got %v", serr.Code)
	}
}

func TestCallStatementDispatchesArrayIntrinsics(t *testing.T) {
	src := "10 DIM A%(4)\n20 DIM B%(4)\n30 CALL ARRAYCOPY(B%, A%)"
	_, seq := mustLower(t, src)
	if !containsOp(seq, ir.ARRAYCOPY) {
		t.Fatalf("expected ARRAYCOPY in %v", opcodesOf(seq))
	}
}

func TestBuiltinFunctionAbsPreservesArgumentType(t *testing.T) {
	_, seq := mustLower(t, `10 LET A# = ABS(-1.5)`)
	if !containsOp(seq, ir.ABS) {
		t.Fatalf("expected ABS in %v", opcodesOf(seq))
	}
}

func TestBuiltinFunctionLenRequiresStringArgument(t *testing.T) {
	err := lowerErr(t, `10 LET A% = LEN(1)`)
	if err == nil {
		t.Fatalf("expected LEN(numeric) to be rejected")
	}
}

func TestBuiltinFunctionLenOnStringLowers(t *testing.T) {
	_, seq := mustLower(t, `10 LET A% = LEN("hello")`)
	if !containsOp(seq, ir.LEN) {
		t.Fatalf("expected LEN in %v", opcodesOf(seq))
	}
}

func TestBuiltinFunctionMidUsesThreeOperandSideChannel(t *testing.T) {
	_, seq := mustLower(t, `10 LET A$ = MID$("hello", 2, 3)`)
	if !containsOp(seq, ir.MIDDLR) {
		t.Fatalf("expected MIDDLR in %v", opcodesOf(seq))
	}
	if !containsOp(seq, ir.PARAM2) {
		t.Fatalf("expected a PARAM2 side-channel instruction for the 3-arg call in %v", opcodesOf(seq))
	}
}

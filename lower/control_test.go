package lower_test

import (
	"testing"

	"github.com/gosuda/basicir/ir"
	"github.com/gosuda/basicir/lower"
)

func TestIfThenElseSingleLine(t *testing.T) {
	src := "10 LET A% = 1\n20 IF A% = 1 THEN PRINT 1 ELSE PRINT 2"
	_, seq := mustLower(t, src)
	if !containsOp(seq, ir.GOTO_LABEL_IF) || !containsOp(seq, ir.GOTO_LABEL) {
		t.Fatalf("expected branch opcodes in %v", opcodesOf(seq))
	}
	labels := ir.LabelIndex(seq)
	if len(labels) == 0 {
		t.Fatalf("expected at least one LABEL instruction")
	}
	for _, in := range seq.All() {
		if in.Op() == ir.GOTO_LABEL || in.Op() == ir.GOTO_LABEL_IF {
			if _, ok := labels[in.Op2()]; in.Op() == ir.GOTO_LABEL_IF && !ok {
				t.Fatalf("GOTO_LABEL_IF target %d is not a known label id", in.Op2())
			}
			if in.Op() == ir.GOTO_LABEL {
				if _, ok := labels[in.Op1()]; !ok {
					t.Fatalf("GOTO_LABEL target %d is not a known label id", in.Op1())
				}
			}
		}
	}
}

func TestNestedIfBeginEndIf(t *testing.T) {
	src := `10 LET A% = 5
20 IF A% > 0 THEN BEGIN
30   IF A% > 10 THEN BEGIN
40     PRINT 1
50   END IF
60 ELSE BEGIN
70   PRINT 2
80 END IF`
	_, seq := mustLower(t, src)
	if !containsOp(seq, ir.GTI32) {
		t.Fatalf("expected GTI32 comparisons in %v", opcodesOf(seq))
	}
	// Every forward-patch placeholder must have been overwritten; no
	// GOTO_LABEL/GOTO_LABEL_IF should still carry a NULLID target.
	for _, in := range seq.All() {
		switch in.Op() {
		case ir.GOTO_LABEL:
			if in.Op1() == -1 {
				t.Fatalf("unpatched GOTO_LABEL at result=%d", in.Result())
			}
		case ir.GOTO_LABEL_IF:
			if in.Op2() == -1 {
				t.Fatalf("unpatched GOTO_LABEL_IF at result=%d", in.Result())
			}
		}
	}
}

func TestWhileWendLoopsBackToTop(t *testing.T) {
	src := "10 LET A% = 0\n20 WHILE A% < 3\n30 LET A% = A% + 1\n40 WEND"
	_, seq := mustLower(t, src)
	if !containsOp(seq, ir.LTI32) {
		t.Fatalf("expected LTI32 for the loop condition in %v", opcodesOf(seq))
	}
	if !containsOp(seq, ir.NOT) {
		t.Fatalf("expected the negated condition (NOT) driving loop exit in %v", opcodesOf(seq))
	}
}

func TestForNextWithDefaultStep(t *testing.T) {
	src := "10 FOR I% = 1 TO 3\n20 PRINT I%\n30 NEXT I%"
	_, seq := mustLower(t, src)
	for _, want := range []ir.OpCode{ir.ASSIGN, ir.ADDI32, ir.AND, ir.OR, ir.GOTO_LABEL_IF} {
		if !containsOp(seq, want) {
			t.Fatalf("expected %v in %v", want, opcodesOf(seq))
		}
	}
}

func TestForNextWithNegativeStepDescends(t *testing.T) {
	src := "10 FOR I% = 3 TO 1 STEP -1\n20 PRINT I%\n30 NEXT I%"
	_, seq := mustLower(t, src)
	if !containsOp(seq, ir.GEI32) || !containsOp(seq, ir.LTI32) {
		t.Fatalf("expected both ascending and descending continuation tests in %v", opcodesOf(seq))
	}
}

func TestNextVariableMismatchIsRejected(t *testing.T) {
	err := lowerErr(t, "10 FOR I% = 1 TO 3\n20 PRINT I%\n30 NEXT J%")
	if err == nil {
		t.Fatalf("expected NEXT J%% to be rejected inside FOR I%%")
	}
	serr, ok := err.(*lower.SemanticError)
	if !ok {
		t.Fatalf("expected *SemanticError, got %T: %v", err, err)
	}
	if serr.Code != lower.NextWithoutFor {
		t.Fatalf("expected NextWithoutFor, got %v", serr.Code)
	}
}

func TestGotoTargetsLineNumber(t *testing.T) {
	src := "10 GOTO 30\n20 PRINT 1\n30 PRINT 2"
	_, seq := mustLower(t, src)
	if !containsOp(seq, ir.GOTO_LINENUM) {
		t.Fatalf("expected GOTO_LINENUM in %v", opcodesOf(seq))
	}
}

func TestGosubPushesReturnLabel(t *testing.T) {
	src := "10 GOSUB 30\n20 PRINT 1\n30 PRINT 2\n40 RETURN"
	_, seq := mustLower(t, src)
	if !containsOp(seq, ir.PUSH_RETLABEL) || !containsOp(seq, ir.RETURN) {
		t.Fatalf("expected PUSH_RETLABEL and RETURN in %v", opcodesOf(seq))
	}
}

func TestDefFnEachCallCopiesReturnIntoFreshTemp(t *testing.T) {
	// Each call must copy the shared ReturnID into a fresh temp so a later
	// call doesn't clobber an earlier call's result.
	src := `10 DEF FN FACT(N) = N
20 LET A% = FNFACT(3)
30 LET B% = FNFACT(4)`
	_, seq := mustLower(t, src)
	copyCount := 0
	for _, in := range seq.All() {
		if in.Op() == ir.COPY {
			copyCount++
		}
	}
	if copyCount < 4 {
		t.Fatalf("expected at least 4 COPY instructions (2 param binds + 2 return copies), got %d", copyCount)
	}
}

func TestDefFnBodyTypeMustMatchDeclaredReturnType(t *testing.T) {
	err := lowerErr(t, `10 DEF FN BAD$(X) = X * 2`)
	if err == nil {
		t.Fatalf("expected a numeric body under a string-returning DEF FN$ to be rejected")
	}
}

func TestLabelStatementInternsSameNameOnce(t *testing.T) {
	// Every numbered line emits its own LABEL in addition to the named
	// label, so three numbered lines plus SKIP: yield four LABEL
	// instructions; what this test actually verifies is that SKIP is
	// interned once and GOTO SKIP resolves to that same label id.
	src := "10 GOTO SKIP\n20 PRINT 1\nSKIP:\n30 PRINT 2"
	tbl, seq := mustLower(t, src)
	labels := ir.LabelIndex(seq)
	if len(labels) != 4 {
		t.Fatalf("expected four LABEL instructions (one per numbered line plus SKIP), got %d", len(labels))
	}
	var gotoTarget int
	found := false
	for _, in := range seq.All() {
		if in.Op() == ir.GOTO_LABEL {
			gotoTarget = in.Op1()
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a GOTO_LABEL instruction for GOTO SKIP")
	}
	if _, ok := labels[gotoTarget]; !ok {
		t.Fatalf("GOTO SKIP target %d does not resolve to a known label id", gotoTarget)
	}
	if tbl.Len() == 0 {
		t.Fatalf("expected the label to be interned into the symbol table")
	}
}

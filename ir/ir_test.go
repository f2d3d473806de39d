package ir_test

import (
	"testing"

	"github.com/gosuda/basicir/ir"
)

func TestEmitAndPatch(t *testing.T) {
	seq := ir.New()
	target := seq.Emit(ir.SourceLoc{Line: 1}, ir.GOTO_LABEL, ir.NULLID, ir.NULLID, ir.NULLID)
	seq.Emit(ir.SourceLoc{Line: 2}, ir.LABEL, 42, ir.NULLID, ir.NULLID)

	if target.Op1() != ir.NULLID {
		t.Fatalf("expected placeholder Op1, got %d", target.Op1())
	}
	target.PatchOp1(42)
	if target.Op1() != 42 {
		t.Fatalf("patch did not stick: got %d", target.Op1())
	}
	if target.Op() != ir.GOTO_LABEL {
		t.Fatalf("Op must remain immutable across patches")
	}
}

func TestOrderingPreserved(t *testing.T) {
	seq := ir.New()
	for i := 0; i < 5; i++ {
		seq.Emit(ir.SourceLoc{}, ir.VALUE, ir.NULLID, ir.NULLID, i)
	}
	for i := 0; i < 5; i++ {
		if got := seq.At(i).Result(); got != i {
			t.Fatalf("position %d: got result %d want %d", i, got, i)
		}
	}
}

func TestLabelIndexUniqueness(t *testing.T) {
	seq := ir.New()
	seq.Emit(ir.SourceLoc{}, ir.VALUE, ir.NULLID, ir.NULLID, 0)
	seq.Emit(ir.SourceLoc{}, ir.LABEL, 7, ir.NULLID, ir.NULLID)
	seq.Emit(ir.SourceLoc{}, ir.VALUE, ir.NULLID, ir.NULLID, 1)

	idx := ir.LabelIndex(seq)
	if pos, ok := idx[7]; !ok || pos != 1 {
		t.Fatalf("expected label 7 at position 1, got %d, %v", pos, ok)
	}
	if len(idx) != 1 {
		t.Fatalf("expected exactly one label, got %d", len(idx))
	}
}

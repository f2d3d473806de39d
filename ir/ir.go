package ir

// NULLID mirrors symbols.NULLID: the sentinel operand/result value meaning
// "no entry". Duplicated here rather than imported so this package stays
// free of a dependency on the symbol table it merely references ids from.
const NULLID = -1

// IR is an append-only sequence of Instructions. A position in the
// sequence is the interpreter's implicit program-counter value once
// execution begins; lowering never removes or reorders an emitted
// Instruction, only patches its operands.
type IR struct {
	instrs []*Instruction
}

// New returns an empty IR.
func New() *IR {
	return &IR{}
}

// Emit appends a new Instruction and returns it so the caller can retain a
// handle for later PatchOp1/PatchOp2 calls.
func (ir *IR) Emit(loc SourceLoc, op OpCode, op1, op2, result int) *Instruction {
	in := &Instruction{loc: loc, op: op, op1: op1, op2: op2, result: result}
	ir.instrs = append(ir.instrs, in)
	return in
}

// Len reports the number of instructions emitted so far.
func (ir *IR) Len() int {
	return len(ir.instrs)
}

// At returns the instruction at position pos, which also serves as its
// program-counter value.
func (ir *IR) At(pos int) *Instruction {
	return ir.instrs[pos]
}

// All returns every instruction in emit order. The returned slice aliases
// internal storage and must not be mutated by the caller; instructions
// themselves may still be patched via their own PatchOp1/PatchOp2.
func (ir *IR) All() []*Instruction {
	return ir.instrs
}

// IndexOf returns the position of instr within the sequence, or -1 if
// instr was not emitted by this IR. Used by label resolution passes that
// need an instruction's final program-counter value.
func (ir *IR) IndexOf(instr *Instruction) int {
	for i, in := range ir.instrs {
		if in == instr {
			return i
		}
	}
	return -1
}

// LabelIndex builds the label-id to instruction-index mapping the
// interpreter contract (spec §6) says is precomputed once before
// execution begins, by scanning every LABEL instruction's Op1. Lowering's
// own tests use this to assert label uniqueness and patch completeness
// without a real interpreter.
func LabelIndex(seq *IR) map[int]int {
	idx := make(map[int]int)
	for pos, in := range seq.instrs {
		if in.op == LABEL {
			idx[in.op1] = pos
		}
	}
	return idx
}

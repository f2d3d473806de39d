package ir

// SourceLoc locates the source construct an Instruction was emitted for,
// carried through for diagnostics; the interpreter never inspects it.
type SourceLoc struct {
	Line       int
	StartIndex int
	StopIndex  int
	Text       string
}

// Instruction is one three-address IR op: an opcode, up to two operand
// ids, and a result id, each either NULLID or a symbols.Entry id. Op and
// Result are fixed at emit time; Op1 and Op2 may be patched afterwards to
// resolve a forward reference (a goto to a label not yet positioned).
type Instruction struct {
	loc    SourceLoc
	op     OpCode
	op1    int
	op2    int
	result int
}

// Loc returns the instruction's source location.
func (in *Instruction) Loc() SourceLoc { return in.loc }

// Op returns the instruction's opcode.
func (in *Instruction) Op() OpCode { return in.op }

// Op1 returns the first operand id, or NULLID.
func (in *Instruction) Op1() int { return in.op1 }

// Op2 returns the second operand id, or NULLID.
func (in *Instruction) Op2() int { return in.op2 }

// Result returns the result id, or NULLID.
func (in *Instruction) Result() int { return in.result }

// PatchOp1 overwrites the first operand id. Used to back-patch a forward
// branch target once its label's final id (or, later, its resolved
// program-counter position) is known.
func (in *Instruction) PatchOp1(id int) { in.op1 = id }

// PatchOp2 overwrites the second operand id, for the same purpose as
// PatchOp1.
func (in *Instruction) PatchOp2(id int) { in.op2 = id }

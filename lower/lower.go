// Package lower implements the tree-walking lowering pass that turns a
// parsed BASIC program into a linear, typed, three-address IR plus the
// symbol table describing every name it references.
package lower

import (
	"fmt"
	"strings"

	"github.com/gosuda/basicir/ast"
	"github.com/gosuda/basicir/ir"
	"github.com/gosuda/basicir/symbols"
)

// Lowerer walks a parsed *ast.Program and emits IR into a fresh symbol
// table and instruction sequence. A Lowerer is single-use: construct one
// with New per compilation.
type Lowerer struct {
	tbl      *symbols.Table
	seq      *ir.IR
	graphics bool

	curLine int

	// nodeResult binds each expression node to the Instruction whose
	// Result carries its value, mirroring the parse-tree adapter
	// contract's nodeToInstruction map (§6): a parent lowering rule
	// reads a child's result id back out of this map.
	nodeResult map[ast.Expr]*ir.Instruction

	curUDF int // symbols id of the UDF currently being lowered, or NULLID
}

// New returns a Lowerer ready to lower a program. graphics mirrors the
// original implementation's constructor flag gating console/graphics/
// sound statement lowering: when false, those statements are rejected
// with a BadArgument semantic error instead of being lowered.
func New(graphics bool) *Lowerer {
	return &Lowerer{
		tbl:        symbols.New(),
		seq:        ir.New(),
		graphics:   graphics,
		nodeResult: make(map[ast.Expr]*ir.Instruction),
		curUDF:     symbols.NULLID,
	}
}

// Symbols returns the symbol table populated by lowering.
func (l *Lowerer) Symbols() *symbols.Table { return l.tbl }

// IR returns the instruction sequence emitted by lowering.
func (l *Lowerer) IR() *ir.IR { return l.seq }

// Lower walks prog's lines and statements in order, emitting IR. It
// returns the first SemanticError or InternalError encountered; lowering
// never continues past the first failure.
func (l *Lowerer) Lower(prog *ast.Program) error {
	for _, line := range prog.Lines {
		if err := l.lowerLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (l *Lowerer) lowerLine(line *ast.Line) error {
	l.curLine = line.Pos.Line
	if line.Number != 0 {
		id := l.tbl.AddLineLabel(line.Number)
		l.emit(line.Pos, ir.LABEL, id, symbols.NULLID, symbols.NULLID)
	} else if line.Label != "" {
		id := l.tbl.AddNamedLabel(line.Label)
		l.emit(line.Pos, ir.LABEL, id, symbols.NULLID, symbols.NULLID)
	}
	for _, stmt := range line.Statements {
		if err := l.lowerStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// emit appends an instruction at pos, converting the ast source position
// into ir.SourceLoc.
func (l *Lowerer) emit(pos ast.Pos, op ir.OpCode, op1, op2, result int) *ir.Instruction {
	return l.seq.Emit(ir.SourceLoc{
		Line:       l.curLine,
		StartIndex: pos.StartIndex,
		StopIndex:  pos.StopIndex,
	}, op, op1, op2, result)
}

// excerpt renders a short human-readable snippet identifying the failing
// construct for a SemanticError, from whatever text the ast node itself
// carries (BASIC's grammar productions are terse enough that this is
// usually the whole offending construct).
func excerpt(parts ...string) string {
	return strings.Join(parts, " ")
}

func (l *Lowerer) semanticErr(code ErrorCode, reason string, parts ...string) error {
	return newSemanticError(code, excerpt(parts...), fmt.Sprintf("line %d: %s", l.curLine, reason))
}

func (l *Lowerer) internalErr(format string, args ...interface{}) error {
	return newInternalError("line %d: %s", l.curLine, fmt.Sprintf(format, args...))
}

// splitNameSuffix separates a BASIC identifier's type sigil (one of
// %&@!#$) from its bare name. An identifier with no recognised sigil is
// returned unchanged with suffix 0.
func splitNameSuffix(name string) (bare string, suffix byte) {
	if name == "" {
		return name, 0
	}
	last := name[len(name)-1]
	switch last {
	case '%', '&', '@', '!', '#', '$':
		return name[:len(name)-1], last
	default:
		return name, 0
	}
}

// resolveVariableName resolves a raw identifier (bare name plus optional
// trailing sigil) into a symbols.VariableName using the table's default
// type table for unsuffixed names.
func (l *Lowerer) resolveVariableName(rawName string) (symbols.VariableName, error) {
	bare, suffix := splitNameSuffix(rawName)
	dt, err := l.tbl.ResolveType(bare, suffix)
	if err != nil {
		return symbols.VariableName{}, err
	}
	return symbols.VariableName{Bare: strings.ToUpper(bare), Type: dt}, nil
}

// result looks up the Instruction bound to an already-lowered expression
// node. A miss is an internal compiler bug: every Expr must be lowered
// (and bound via bindResult) before any rule that reads its result id.
func (l *Lowerer) result(e ast.Expr) (*ir.Instruction, error) {
	instr, ok := l.nodeResult[e]
	if !ok {
		return nil, l.internalErr("no instruction bound for expression node %T", e)
	}
	return instr, nil
}

func (l *Lowerer) bindResult(e ast.Expr, instr *ir.Instruction) *ir.Instruction {
	l.nodeResult[e] = instr
	return instr
}
